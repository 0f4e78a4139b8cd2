package diag

import (
	"prettypy/internal/source"
)

// Note attaches secondary context to a diagnostic.
type Note struct {
	Span source.Span
	Msg  string
}

// TextEdit replaces the bytes in Span with NewText. OldText, when non-empty,
// acts as a guard: the engine refuses the edit if the current bytes differ.
type TextEdit struct {
	Span    source.Span
	NewText string
	OldText string
}

// Fix describes an automated correction as a set of byte-precise edits.
type Fix struct {
	ID    string
	Title string
	Edits []TextEdit
}

// Diagnostic is one finding against one file.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
	Fixes    []Fix
}

func New(sev Severity, code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
	}
}

func NewError(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

func NewWarning(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevWarning, code, primary, msg)
}

func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}

func (d Diagnostic) WithFix(id, title string, edits ...TextEdit) Diagnostic {
	d.Fixes = append(d.Fixes, Fix{ID: id, Title: title, Edits: edits})
	return d
}
