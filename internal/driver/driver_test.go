package driver

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"prettypy/internal/diag"
	"prettypy/internal/source"
	"prettypy/internal/style"
)

// stubTool substitutes the external formatter in tests.
type stubTool struct {
	dirty   map[string]bool
	missing bool
	fixed   []string
}

func (s *stubTool) Name() string { return "stub" }

func (s *stubTool) Check(_ context.Context, path string) (bool, []byte, error) {
	if s.missing {
		return false, nil, fmt.Errorf("stub: %w", style.ErrToolNotFound)
	}
	return !s.dirty[filepath.Base(path)], nil, nil
}

func (s *stubTool) Fix(_ context.Context, path string) error {
	if s.missing {
		return fmt.Errorf("stub: %w", style.ErrToolNotFound)
	}
	s.fixed = append(s.fixed, filepath.Base(path))
	return nil
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testOpts() *Options {
	return &Options{Stderr: io.Discard}
}

func TestCheckShebangAggregates(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.py", "#!/usr/bin/env python\n")
	writeFile(t, dir, "bad.py", "print('hi')\n")

	res, err := CheckShebang(context.Background(), []string{dir}, testOpts())
	if err != nil {
		t.Fatal(err)
	}
	if res.OK {
		t.Fatalf("expected aggregate false with one bad file")
	}
	if res.Files != 2 {
		t.Fatalf("expected 2 files, got %d", res.Files)
	}
	if res.Bag.Len() != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", res.Bag.Len())
	}
}

func TestFixShebangThenCheckPasses(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.py", "#!/usr/bin/python\nprint('a')\n")
	writeFile(t, dir, "b.py", "print('b')\n")

	fixRes, err := FixShebang(context.Background(), []string{dir}, testOpts())
	if err != nil {
		t.Fatal(err)
	}
	if len(fixRes.Applied.Applied) != 2 {
		t.Fatalf("expected 2 applied fixes, got %d", len(fixRes.Applied.Applied))
	}
	if fixRes.Failed != 0 {
		t.Fatalf("expected no failures, got %d", fixRes.Failed)
	}

	checkRes, err := CheckShebang(context.Background(), []string{dir}, testOpts())
	if err != nil {
		t.Fatal(err)
	}
	if !checkRes.OK {
		t.Fatalf("expected aggregate true after fixing")
	}
}

func TestFixShebangIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.py", "print('a')\n")

	if _, err := FixShebang(context.Background(), []string{dir}, testOpts()); err != nil {
		t.Fatal(err)
	}
	once, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	res, err := FixShebang(context.Background(), []string{dir}, testOpts())
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Applied.Applied) != 0 {
		t.Fatalf("second run must be a no-op, applied %d fixes", len(res.Applied.Applied))
	}
	twice, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(once) != string(twice) {
		t.Fatalf("second run altered bytes:\n%q\n%q", once, twice)
	}
}

func TestFixShebangThenCodingScenario(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.py", "print(\"hi\")\n")

	if _, err := FixShebang(context.Background(), []string{dir}, testOpts()); err != nil {
		t.Fatal(err)
	}
	if _, err := FixCoding(context.Background(), []string{dir}, testOpts()); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "#!/usr/bin/env python\n# -*- coding: utf-8 -*-\nprint(\"hi\")\n"
	if string(got) != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestConformantFilesAreNoOps(t *testing.T) {
	dir := t.TempDir()
	content := "#!/usr/bin/env python\n# -*- coding: utf-8 -*-\nprint('hi')\n"
	path := writeFile(t, dir, "ok.py", content)

	for _, op := range []func(context.Context, []string, *Options) (*FixResult, error){FixShebang, FixCoding} {
		if _, err := op(context.Background(), []string{dir}, testOpts()); err != nil {
			t.Fatal(err)
		}
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != content {
		t.Fatalf("fix must be byte-identical on conformant input")
	}

	for _, op := range []func(context.Context, []string, *Options) (*CheckResult, error){CheckShebang, CheckCoding} {
		res, err := op(context.Background(), []string{dir}, testOpts())
		if err != nil {
			t.Fatal(err)
		}
		if !res.OK {
			t.Fatalf("expected conformant file to pass")
		}
	}
}

func TestCheckPEP8UsesInjectedTool(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "clean.py", "x = 1\n")
	writeFile(t, dir, "messy.py", "x=1\n")

	tool := &stubTool{dirty: map[string]bool{"messy.py": true}}
	opts := testOpts()
	opts.Tool = tool

	res, err := CheckPEP8(context.Background(), []string{dir}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.OK {
		t.Fatalf("expected style violation to fail the aggregate")
	}
	if res.Bag.Len() != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", res.Bag.Len())
	}
}

func TestStyleToolMissingAborts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.py", "x = 1\n")

	opts := testOpts()
	opts.Tool = &stubTool{missing: true}

	res, err := CheckPEP8(context.Background(), []string{dir}, opts)
	if err == nil {
		t.Fatalf("expected missing tool to abort the check")
	}
	if res == nil || res.OK {
		t.Fatalf("aborted check must still report failure")
	}
	if !res.Bag.HasErrors() || res.Bag.Items()[0].Code != diag.StyToolMissing {
		t.Fatalf("expected a StyToolMissing finding, got %+v", res.Bag.Items())
	}
	if _, err := FixPEP8(context.Background(), []string{dir}, opts); err == nil {
		t.Fatalf("expected missing tool to abort the fix")
	}
}

func TestFixPEP8ReportsRewrittenFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.py", "x=1\n")

	tool := &stubTool{}
	opts := testOpts()
	opts.Tool = tool

	res, err := FixPEP8(context.Background(), []string{dir}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.StyleFixed) != 1 || len(tool.fixed) != 1 {
		t.Fatalf("expected the tool to rewrite one file, got %v", res.StyleFixed)
	}
}

func TestNoDirsIsAnError(t *testing.T) {
	if _, err := CheckShebang(context.Background(), nil, testOpts()); err != ErrNoDirs {
		t.Fatalf("expected ErrNoDirs, got %v", err)
	}
}

func TestBinaryFilesSkippedWithWarning(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bin.py", "\x00\x01\x02")
	writeFile(t, dir, "ok.py", "#!/usr/bin/env python\n")

	var stderr strings.Builder
	opts := &Options{Stderr: &stderr}

	res, err := CheckShebang(context.Background(), []string{dir}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !res.OK {
		t.Fatalf("binary files must not fail the aggregate")
	}
	if res.Skipped != 1 {
		t.Fatalf("expected 1 skipped file, got %d", res.Skipped)
	}
	if !strings.Contains(stderr.String(), "binary") {
		t.Fatalf("expected a binary-file warning, got %q", stderr.String())
	}
	if res.Bag.HasErrors() || !res.Bag.HasWarnings() {
		t.Fatalf("binary skip must land in the bag as a warning only")
	}
	if res.Bag.Items()[0].Code != diag.IOBinaryFile {
		t.Fatalf("expected IOBinaryFile, got %v", res.Bag.Items()[0].Code)
	}
}

func TestCheckUnreadableCandidateFailsAggregate(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ok.py", "#!/usr/bin/env python\n")
	// A dangling symlink is unreadable regardless of the invoking user.
	broken := filepath.Join(dir, "broken.py")
	if err := os.Symlink(filepath.Join(dir, "nonexistent"), broken); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	var stderr strings.Builder
	opts := &Options{Stderr: &stderr}

	res, err := CheckShebang(context.Background(), []string{dir}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.OK {
		t.Fatalf("unreadable candidate must fail the aggregate")
	}
	if res.Errored != 1 {
		t.Fatalf("expected 1 errored file, got %d", res.Errored)
	}
	if !strings.Contains(stderr.String(), "broken.py") {
		t.Fatalf("warning must name the file, got %q", stderr.String())
	}
	if !res.Bag.HasErrors() || res.Bag.Items()[0].Code != diag.IOUnreadable {
		t.Fatalf("expected an IOUnreadable finding, got %+v", res.Bag.Items())
	}
	ph, ok := res.FileSet.GetByPath(broken)
	if !ok || ph.Flags&source.FileVirtual == 0 {
		t.Fatalf("unreadable file must get a virtual placeholder entry")
	}
}

func TestFixUnreadableCandidateCountsFailed(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.py")
	if err := os.Symlink(filepath.Join(dir, "nonexistent"), broken); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	res, err := FixShebang(context.Background(), []string{dir}, testOpts())
	if err != nil {
		t.Fatal(err)
	}
	if res.Failed != 1 {
		t.Fatalf("expected 1 failed file, got %d", res.Failed)
	}
	if len(res.Applied.Applied) != 0 {
		t.Fatalf("nothing must be applied, got %d", len(res.Applied.Applied))
	}
	if !res.Bag.HasErrors() || res.Bag.Items()[0].Code != diag.IOUnreadable {
		t.Fatalf("expected an IOUnreadable finding, got %+v", res.Bag.Items())
	}
}

func TestFixResultBagCarriesFindings(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.py", "print('a')\n")

	res, err := FixShebang(context.Background(), []string{dir}, testOpts())
	if err != nil {
		t.Fatal(err)
	}
	if res.Bag.Len() != 1 {
		t.Fatalf("expected the fixed finding in the bag, got %d", res.Bag.Len())
	}
	if res.Bag.Items()[0].Code != diag.HdrShebangMissing {
		t.Fatalf("expected HdrShebangMissing, got %v", res.Bag.Items()[0].Code)
	}
}

func TestProgressEventsSequence(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.py", "print('a')\n")

	events := make([]Event, 0, 8)
	opts := testOpts()
	opts.Progress = sinkFunc(func(evt Event) { events = append(events, evt) })

	if _, err := CheckShebang(context.Background(), []string{dir}, opts); err != nil {
		t.Fatal(err)
	}

	var statuses []Status
	for _, evt := range events {
		statuses = append(statuses, evt.Status)
	}
	want := []Status{StatusQueued, StatusWorking, StatusDone}
	if len(statuses) != len(want) {
		t.Fatalf("expected %v, got %v", want, statuses)
	}
	for i := range want {
		if statuses[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, statuses)
		}
	}
}

type sinkFunc func(Event)

func (f sinkFunc) OnEvent(evt Event) { f(evt) }
