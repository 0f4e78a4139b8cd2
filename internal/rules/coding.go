package rules

import (
	"fmt"

	"prettypy/internal/diag"
	"prettypy/internal/header"
	"prettypy/internal/source"
)

// CheckCoding verifies that f declares the canonical encoding within its
// first two lines. The declaration's required position is immediately after
// the shebang line when one exists, else line 1; the fixer replaces a
// declaration found there or inserts the canonical line at that position.
func CheckCoding(p header.Profile, f *source.File, r diag.Reporter) bool {
	ins := p.Inspect(f)
	if ins.CodingOK {
		return true
	}

	pos := 1
	if ins.HasShebang {
		pos = 2
	}

	text := f.LineText(pos)
	if token, ok := header.CodingTokenAt(text); ok {
		// A declaration sits at the canonical position but names the
		// wrong encoding: replace the whole line.
		span, _ := f.LineSpan(pos)
		d := diag.NewError(diag.HdrCodingMismatch, span,
			fmt.Sprintf("coding is %q, expected %q", token, p.CodingToken))
		if !header.KnownEncoding(token) {
			d = diag.NewError(diag.HdrCodingUnknown, span,
				fmt.Sprintf("coding %q is not a registered encoding, expected %q", token, p.CodingToken)).
				WithNote(span, "token was not found in the IANA character set registry")
		}
		d = d.WithFix(
			fixID("coding-replace", f),
			"replace coding declaration with the canonical one",
			diag.TextEdit{Span: span, NewText: p.CodingLine(), OldText: text},
		)
		r.Report(d)
		return false
	}

	at, newText := codingInsertion(p, f, pos)
	d := diag.NewError(diag.HdrCodingMissing, at, "missing coding declaration")
	d = d.WithFix(
		fixID("coding-insert", f),
		"insert the canonical coding declaration",
		diag.TextEdit{Span: at, NewText: newText},
	)
	r.Report(d)
	return false
}

// codingInsertion picks the insertion point and text for a missing coding
// line. Inserting before an existing line produces "decl + newline"; landing
// past a final line that has no terminator produces "newline + decl" so the
// preceding line's bytes stay untouched.
func codingInsertion(p header.Profile, f *source.File, pos int) (source.Span, string) {
	nl := string(f.DominantNewline())
	decl := p.CodingLine()

	if span, ok := f.LineSpan(pos); ok {
		return source.Span{File: f.ID, Start: span.Start, End: span.Start}, decl + nl
	}

	end := uint32(len(f.Content))
	at := source.Span{File: f.ID, Start: end, End: end}
	if n := f.LineCount(); n > 0 && f.Lines[n-1].End == f.Lines[n-1].FullEnd {
		return at, nl + decl
	}
	return at, decl + nl
}
