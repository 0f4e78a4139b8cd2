// Package rules implements the header conformance rules: the shebang line
// and the coding declaration. Style conformance is not a rule here; it is
// delegated to internal/style by the driver.
//
// The header rules are pure: they inspect a loaded file and emit diagnostics
// through a diag.Reporter. A non-conforming header diagnostic carries exactly
// one byte-precise fix edit (replace the offending line, or insert the
// canonical one at its required position) that internal/fix applies. Bytes
// outside the targeted line are never part of an edit, and re-running a rule
// on fixed output yields no diagnostics, which is what makes fixing
// idempotent.
package rules
