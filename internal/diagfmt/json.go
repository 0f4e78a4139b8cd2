package diagfmt

import (
	"encoding/json"
	"io"

	"prettypy/internal/diag"
	"prettypy/internal/source"
)

// LocationJSON is a file location in JSON output.
type LocationJSON struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty"`
}

// FixEditJSON is one text edit in JSON output.
type FixEditJSON struct {
	Location LocationJSON `json:"location"`
	NewText  string       `json:"new_text"`
	OldText  string       `json:"old_text,omitempty"`
}

// FixJSON is one fix suggestion in JSON output.
type FixJSON struct {
	ID    string        `json:"id,omitempty"`
	Title string        `json:"title"`
	Edits []FixEditJSON `json:"edits,omitempty"`
}

// DiagnosticJSON is one diagnostic in JSON output.
type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Fixes    []FixJSON    `json:"fixes,omitempty"`
}

// PayloadJSON is the top-level JSON document.
type PayloadJSON struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Total       int              `json:"total"`
	Truncated   bool             `json:"truncated,omitempty"`
}

// JSON renders diagnostics as an indented JSON document.
// Expects bag.Sort() to have been called for deterministic output.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	items := bag.Items()
	payload := PayloadJSON{
		Diagnostics: make([]DiagnosticJSON, 0, len(items)),
		Total:       len(items),
	}
	for i, d := range items {
		if opts.Max > 0 && i >= opts.Max {
			payload.Truncated = true
			break
		}
		dj := DiagnosticJSON{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Message:  d.Message,
			Location: location(d.Primary, fs, opts),
		}
		if opts.IncludeFixes {
			for _, fx := range d.Fixes {
				fj := FixJSON{ID: fx.ID, Title: fx.Title}
				for _, e := range fx.Edits {
					fj.Edits = append(fj.Edits, FixEditJSON{
						Location: location(e.Span, fs, opts),
						NewText:  e.NewText,
						OldText:  e.OldText,
					})
				}
				dj.Fixes = append(dj.Fixes, fj)
			}
		}
		payload.Diagnostics = append(payload.Diagnostics, dj)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func location(span source.Span, fs *source.FileSet, opts JSONOpts) LocationJSON {
	f := fs.Get(span.File)
	loc := LocationJSON{
		File:      f.FormatPath(opts.PathMode.String(), fs.BaseDir()),
		StartByte: span.Start,
		EndByte:   span.End,
	}
	if opts.IncludePositions {
		start, end := fs.Resolve(span)
		loc.StartLine, loc.StartCol = start.Line, start.Col
		loc.EndLine, loc.EndCol = end.Line, end.Col
	}
	return loc
}
