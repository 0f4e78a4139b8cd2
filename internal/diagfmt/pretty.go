package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"prettypy/internal/diag"
	"prettypy/internal/source"
)

var (
	errColor  = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow, color.Bold)
	infoColor = color.New(color.FgCyan, color.Bold)
	posColor  = color.New(color.Bold)
	fixColor  = color.New(color.FgGreen)
)

// Pretty renders diagnostics in a human-readable form, one finding per
// block:
//
//	<path>:<line>:<col>: <SEV> [CODE]: <message>
//
// followed by the offending source line with a caret and, optionally, the
// attached fix titles. Expects bag.Sort() to have been called.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	for _, d := range bag.Items() {
		writePretty(w, d, fs, opts)
	}
}

func writePretty(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	f := fs.Get(d.Primary.File)
	start, _ := fs.Resolve(d.Primary)
	path := f.FormatPath(opts.PathMode.String(), fs.BaseDir())

	pos := fmt.Sprintf("%s:%d:%d:", path, start.Line, start.Col)
	sev := d.Severity.String()
	if opts.Color {
		pos = posColor.Sprint(pos)
		sev = severityColor(d.Severity).Sprint(sev)
	}
	fmt.Fprintf(w, "%s %s [%s]: %s\n", pos, sev, d.Code.ID(), d.Message)

	if opts.ShowContext {
		if line := f.LineText(int(start.Line)); line != "" {
			fmt.Fprintf(w, "  %s\n", line)
			caret := strings.Repeat(" ", int(start.Col-1)) + marker(d.Primary)
			fmt.Fprintf(w, "  %s\n", caret)
		}
	}

	for _, n := range d.Notes {
		fmt.Fprintf(w, "  note: %s\n", n.Msg)
	}

	if opts.ShowFixes {
		for _, fx := range d.Fixes {
			title := "fix: " + fx.Title
			if opts.Color {
				title = fixColor.Sprint(title)
			}
			fmt.Fprintf(w, "  %s\n", title)
		}
	}
}

func severityColor(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return errColor
	case diag.SevWarning:
		return warnColor
	default:
		return infoColor
	}
}

func marker(span source.Span) string {
	// An empty span is an insertion point; a single caret marks it.
	if span.Empty() || span.Len() == 1 {
		return "^"
	}
	return "^" + strings.Repeat("~", int(span.Len()-1))
}
