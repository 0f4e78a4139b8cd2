// Package diag defines the diagnostic model shared by all rule checkers.
//
// Diagnostic is the central record: a severity, a stable numeric code, a
// human message, a primary source.Span and optional notes and fixes. Fixes
// are data-only: byte-precise TextEdits that internal/fix applies. OldText on
// an edit is an optional guard the engine validates before touching bytes.
//
// Rule checkers emit through a diag.Reporter so emission stays decoupled from
// storage; BagReporter aggregates into a Bag, which supports sorting and
// deduplication for deterministic output. Rendering lives in
// internal/diagfmt, application of fixes in internal/fix.
package diag
