// Package driver orchestrates the rule families over directory sets: it ties
// enumeration, per-file checking and fixing together and aggregates results.
// Processing is strictly sequential: one file is fully read, checked and
// fixed before the next is considered.
package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"prettypy/internal/diag"
	"prettypy/internal/fix"
	"prettypy/internal/header"
	"prettypy/internal/rules"
	"prettypy/internal/source"
	"prettypy/internal/style"
	"prettypy/internal/walker"
)

const defaultMaxDiagnostics = 100

// CheckShebang checks line 1 of every candidate file under dirs.
func CheckShebang(ctx context.Context, dirs []string, opts *Options) (*CheckResult, error) {
	return checkHeader(ctx, dirs, opts, RuleShebang, rules.CheckShebang)
}

// CheckCoding checks the coding declaration of every candidate file.
func CheckCoding(ctx context.Context, dirs []string, opts *Options) (*CheckResult, error) {
	return checkHeader(ctx, dirs, opts, RuleCoding, rules.CheckCoding)
}

// FixShebang rewrites non-conforming shebang lines in place, file by file.
func FixShebang(ctx context.Context, dirs []string, opts *Options) (*FixResult, error) {
	return fixHeader(ctx, dirs, opts, RuleShebang, rules.CheckShebang)
}

// FixCoding rewrites non-conforming coding declarations in place.
func FixCoding(ctx context.Context, dirs []string, opts *Options) (*FixResult, error) {
	return fixHeader(ctx, dirs, opts, RuleCoding, rules.CheckCoding)
}

// CheckPEP8 delegates style checking of every candidate file to the external
// tool. A missing tool aborts the whole operation; it is never reported as a
// style violation.
func CheckPEP8(ctx context.Context, dirs []string, opts *Options) (*CheckResult, error) {
	b, err := newBatch(dirs, opts, RulePEP8)
	if err != nil {
		return nil, err
	}

	res := &CheckResult{OK: true, Files: len(b.files), Bag: b.bag, FileSet: b.fs}
	for _, path := range b.files {
		b.emit(Event{File: path, Rule: RulePEP8, Status: StatusWorking})

		f, ok := b.loadFile(path, res.record())
		if !ok {
			continue
		}

		clean, _, err := b.tool.Check(ctx, path)
		if err != nil {
			if errors.Is(err, style.ErrToolNotFound) {
				b.bag.Add(diag.NewError(diag.StyToolMissing, fileSpan(f), err.Error()))
				res.OK = false
				return res, err
			}
			b.warnf("cannot check style of %s: %v", path, err)
			b.bag.Add(diag.NewError(diag.StyToolFailed, fileSpan(f), err.Error()))
			res.Errored++
			res.OK = false
			b.emit(Event{File: path, Rule: RulePEP8, Status: StatusError, Err: err})
			continue
		}
		if !clean {
			b.bag.Add(diag.NewError(diag.StyViolation, fileSpan(f),
				fmt.Sprintf("style does not conform to %s", b.tool.Name())))
			res.OK = false
		}
		b.emit(Event{File: path, Rule: RulePEP8, Status: StatusDone})
	}
	res.Skipped = b.skipped
	res.Errored += b.walkErrors
	if b.walkErrors > 0 {
		res.OK = false
	}
	return res, nil
}

// FixPEP8 delegates style fixing of every candidate file to the external
// tool, which rewrites files in place. The rewritten content is not
// inspected beyond the tool's own exit status.
func FixPEP8(ctx context.Context, dirs []string, opts *Options) (*FixResult, error) {
	b, err := newBatch(dirs, opts, RulePEP8)
	if err != nil {
		return nil, err
	}

	res := &FixResult{Files: len(b.files), StyleFixed: make([]string, 0), Bag: b.bag, FileSet: b.fs}
	for _, path := range b.files {
		b.emit(Event{File: path, Rule: RulePEP8, Status: StatusWorking})

		f, ok := b.loadFile(path, func() { res.Failed++ })
		if !ok {
			continue
		}

		if err := b.tool.Fix(ctx, path); err != nil {
			if errors.Is(err, style.ErrToolNotFound) {
				return nil, err
			}
			b.warnf("cannot fix style of %s: %v", path, err)
			b.bag.Add(diag.NewError(diag.StyToolFailed, fileSpan(f), err.Error()))
			res.Failed++
			b.emit(Event{File: path, Rule: RulePEP8, Status: StatusError, Err: err})
			continue
		}
		res.StyleFixed = append(res.StyleFixed, path)
		b.emit(Event{File: path, Rule: RulePEP8, Status: StatusDone})
	}
	res.Skipped = b.skipped
	res.Failed += b.walkErrors
	return res, nil
}

type headerRule func(header.Profile, *source.File, diag.Reporter) bool

func checkHeader(_ context.Context, dirs []string, opts *Options, rule Rule, check headerRule) (*CheckResult, error) {
	b, err := newBatch(dirs, opts, rule)
	if err != nil {
		return nil, err
	}

	res := &CheckResult{OK: true, Files: len(b.files), Bag: b.bag, FileSet: b.fs}
	for _, path := range b.files {
		b.emit(Event{File: path, Rule: rule, Status: StatusWorking})

		f, ok := b.loadFile(path, res.record())
		if !ok {
			continue
		}
		if !check(b.profile, f, diag.BagReporter{Bag: b.bag}) {
			res.OK = false
		}
		b.emit(Event{File: path, Rule: rule, Status: StatusDone})
	}
	res.Skipped = b.skipped
	res.Errored += b.walkErrors
	if b.walkErrors > 0 {
		res.OK = false
	}
	return res, nil
}

func fixHeader(_ context.Context, dirs []string, opts *Options, rule Rule, check headerRule) (*FixResult, error) {
	b, err := newBatch(dirs, opts, rule)
	if err != nil {
		return nil, err
	}

	res := &FixResult{
		Files:   len(b.files),
		Applied: &fix.ApplyResult{},
		Bag:     b.bag,
		FileSet: b.fs,
	}
	for _, path := range b.files {
		b.emit(Event{File: path, Rule: rule, Status: StatusWorking})

		f, ok := b.loadFile(path, func() { res.Failed++ })
		if !ok {
			continue
		}

		// One file at a time: collect this file's finding and apply its fix
		// before the next file is even loaded.
		bag := diag.NewBag(1)
		if check(b.profile, f, diag.BagReporter{Bag: bag}) {
			b.emit(Event{File: path, Rule: rule, Status: StatusDone})
			continue
		}
		b.bag.Merge(bag)
		applied, err := fix.Apply(b.fs, bag.Items())
		if applied != nil {
			res.Applied.Applied = append(res.Applied.Applied, applied.Applied...)
			res.Applied.Skipped = append(res.Applied.Skipped, applied.Skipped...)
			res.Applied.FileChanges = append(res.Applied.FileChanges, applied.FileChanges...)
		}
		if err != nil && !errors.Is(err, fix.ErrNoFixes) {
			b.warnf("cannot fix %s of %s: %v", rule, path, err)
			b.bag.Add(diag.NewError(diag.IOWriteFailed, fileSpan(f), err.Error()))
			res.Failed++
			b.emit(Event{File: path, Rule: rule, Status: StatusError, Err: err})
			continue
		}
		b.emit(Event{File: path, Rule: rule, Status: StatusDone})
	}
	res.Skipped = b.skipped
	res.Failed += b.walkErrors
	return res, nil
}

// batch holds the shared state of one operation over a directory set.
type batch struct {
	profile    header.Profile
	tool       style.Tool
	stderr     io.Writer
	progress   ProgressSink
	fs         *source.FileSet
	bag        *diag.Bag
	files      []string
	walkErrors int
	skipped    int
}

func newBatch(dirs []string, opts *Options, rule Rule) (*batch, error) {
	if len(dirs) == 0 {
		return nil, ErrNoDirs
	}
	if opts == nil {
		opts = &Options{}
	}

	b := &batch{
		profile:  header.DefaultProfile(),
		tool:     opts.Tool,
		stderr:   opts.Stderr,
		progress: opts.Progress,
	}
	if opts.Profile != nil {
		b.profile = *opts.Profile
	}
	if b.tool == nil {
		b.tool = style.NewAutopep8()
	}
	if b.stderr == nil {
		b.stderr = os.Stderr
	}

	maxDiags := opts.MaxDiagnostics
	if maxDiags <= 0 {
		maxDiags = defaultMaxDiagnostics
	}
	b.bag = diag.NewBag(maxDiags)

	if opts.BaseDir != "" {
		b.fs = source.NewFileSetWithBase(opts.BaseDir)
	} else {
		b.fs = source.NewFileSet()
	}

	pred := opts.Predicate
	if pred == nil {
		pred = walker.PythonFiles
	}
	b.files = walker.Walk(dirs, pred, func(path string, err error) {
		b.warnf("cannot read %s: %v", path, err)
		b.walkErrors++
	})

	for _, path := range b.files {
		b.emit(Event{File: path, Rule: rule, Status: StatusQueued})
	}
	return b, nil
}

// loadFile loads path into the file set. Unreadable files invoke onErr and
// are skipped; binary files are skipped with a warning. Both conditions also
// land in the bag so machine output carries them, not only stderr. The
// unreadable file gets a virtual placeholder entry, which the fix engine
// refuses to touch.
func (b *batch) loadFile(path string, onErr func()) (*source.File, bool) {
	id, err := b.fs.Load(path)
	if err != nil {
		b.warnf("cannot read %s: %v", path, err)
		ph := b.fs.AddVirtual(path, nil)
		b.bag.Add(diag.NewError(diag.IOUnreadable, source.Span{File: ph},
			fmt.Sprintf("cannot read file: %v", err)))
		onErr()
		b.emit(Event{File: path, Status: StatusError, Err: err})
		return nil, false
	}
	f := b.fs.Get(id)
	if f.Flags&source.FileBinary != 0 {
		b.warnf("skipping binary file %s", path)
		b.bag.Add(diag.NewWarning(diag.IOBinaryFile, source.Span{File: id}, "binary file skipped"))
		b.skipped++
		b.emit(Event{File: path, Status: StatusDone})
		return nil, false
	}
	return f, true
}

func (b *batch) warnf(format string, args ...any) {
	fmt.Fprintf(b.stderr, "prettypy: warning: "+format+"\n", args...)
}

func (b *batch) emit(evt Event) {
	if b.progress != nil {
		b.progress.OnEvent(evt)
	}
}

func (r *CheckResult) record() func() {
	return func() {
		r.Errored++
		r.OK = false
	}
}

func fileSpan(f *source.File) source.Span {
	return source.Span{File: f.ID}
}
