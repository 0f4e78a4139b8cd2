package rules

import (
	"fmt"

	"prettypy/internal/diag"
	"prettypy/internal/header"
	"prettypy/internal/source"
)

// CheckShebang verifies that line 1 of f is the canonical shebang. It emits
// at most one diagnostic, carrying the fix, and reports whether f conforms.
func CheckShebang(p header.Profile, f *source.File, r diag.Reporter) bool {
	ins := p.Inspect(f)
	if ins.ShebangOK {
		return true
	}

	if ins.HasShebang {
		// A shebang is present but wrong: replace its line in place. The
		// line's own terminator is outside the span and survives untouched.
		span, _ := f.LineSpan(1)
		d := diag.NewError(diag.HdrShebangMismatch, span,
			fmt.Sprintf("shebang is %q, expected %q", ins.Shebang, p.Shebang))
		d = d.WithFix(
			fixID("shebang-replace", f),
			"replace shebang with the canonical interpreter line",
			diag.TextEdit{Span: span, NewText: p.Shebang, OldText: ins.Shebang},
		)
		r.Report(d)
		return false
	}

	// No shebang at all: insert one as a new first line, shifting every
	// existing line down by one.
	at := source.Span{File: f.ID, Start: 0, End: 0}
	d := diag.NewError(diag.HdrShebangMissing, at, "missing shebang line")
	d = d.WithFix(
		fixID("shebang-insert", f),
		"insert the canonical interpreter line",
		diag.TextEdit{Span: at, NewText: p.Shebang + string(f.DominantNewline())},
	)
	r.Report(d)
	return false
}

func fixID(kind string, f *source.File) string {
	return fmt.Sprintf("%s-%d", kind, f.ID)
}
