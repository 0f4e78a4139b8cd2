package driver

import (
	"errors"
	"io"

	"prettypy/internal/diag"
	"prettypy/internal/fix"
	"prettypy/internal/header"
	"prettypy/internal/source"
	"prettypy/internal/style"
	"prettypy/internal/walker"
)

// ErrNoDirs is returned when an operation is invoked with no directories.
var ErrNoDirs = errors.New("no directories supplied")

// Rule names one of the three rule families.
type Rule string

const (
	// RuleShebang is the interpreter directive rule.
	RuleShebang Rule = "shebang"
	// RuleCoding is the text encoding declaration rule.
	RuleCoding Rule = "coding"
	// RulePEP8 is the delegated style rule.
	RulePEP8 Rule = "pep8"
)

// Status captures progress state for one file.
type Status string

const (
	// StatusQueued indicates the file is waiting to be processed.
	StatusQueued Status = "queued"
	// StatusWorking indicates the file is being processed.
	StatusWorking Status = "working"
	// StatusDone indicates the file was processed.
	StatusDone Status = "done"
	// StatusError indicates processing the file failed.
	StatusError Status = "error"
)

// Event reports progress for a file during a batch operation.
type Event struct {
	File   string
	Rule   Rule
	Status Status
	Err    error
}

// ProgressSink consumes progress events.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// Options configures a batch operation. The zero value selects the canonical
// python profile, the .py predicate, the autopep8 tool and stderr warnings.
type Options struct {
	Profile        *header.Profile
	Predicate      walker.Predicate
	Tool           style.Tool
	MaxDiagnostics int
	BaseDir        string
	Stderr         io.Writer
	Progress       ProgressSink
}

// CheckResult aggregates one check operation over a directory set.
type CheckResult struct {
	// OK is true only when every enumerated file conforms and no file
	// failed to be read.
	OK bool
	// Files is the number of candidate files enumerated.
	Files int
	// Skipped counts binary candidates excluded with a warning.
	Skipped int
	// Errored counts files and subtrees that could not be read.
	Errored int

	Bag     *diag.Bag
	FileSet *source.FileSet
}

// FixResult aggregates one fix operation over a directory set.
type FixResult struct {
	// Files is the number of candidate files enumerated.
	Files int
	// Failed counts files that could not be read or written.
	Failed int
	// Skipped counts binary candidates excluded with a warning.
	Skipped int

	// Applied describes header fixes performed by the edit engine.
	// Nil for the style rule, which rewrites through the external tool.
	Applied *fix.ApplyResult
	// StyleFixed lists paths rewritten by the external tool.
	StyleFixed []string

	// Bag holds the findings that triggered fixes plus any I/O or tool
	// failures encountered along the way.
	Bag *diag.Bag

	FileSet *source.FileSet
}
