package diag

// Reporter is the minimal contract rule checkers use to emit findings.
// Implementations: BagReporter (collects into a Bag), NopReporter.
type Reporter interface {
	Report(d Diagnostic)
}

// BagReporter collects reported diagnostics into a Bag.
type BagReporter struct {
	Bag *Bag
}

func (r BagReporter) Report(d Diagnostic) {
	if r.Bag != nil {
		r.Bag.Add(d)
	}
}

// NopReporter drops every diagnostic. Useful when only the conformance
// boolean of a rule matters.
type NopReporter struct{}

func (NopReporter) Report(Diagnostic) {}
