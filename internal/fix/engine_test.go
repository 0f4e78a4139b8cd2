package fix

import (
	"os"
	"path/filepath"
	"testing"

	"prettypy/internal/diag"
	"prettypy/internal/source"
)

func TestPatchReplaceKeepsSurroundingBytes(t *testing.T) {
	content := []byte("#!/usr/bin/python\r\nprint('hi')\r\n")
	got, err := Patch(content, []diag.TextEdit{{
		Span:    source.Span{Start: 0, End: 17},
		NewText: "#!/usr/bin/env python",
		OldText: "#!/usr/bin/python",
	}})
	if err != nil {
		t.Fatalf("Patch failed: %v", err)
	}
	want := "#!/usr/bin/env python\r\nprint('hi')\r\n"
	if string(got) != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestPatchGuardMismatch(t *testing.T) {
	_, err := Patch([]byte("abc"), []diag.TextEdit{{
		Span:    source.Span{Start: 0, End: 3},
		NewText: "xyz",
		OldText: "abd",
	}})
	if err == nil {
		t.Fatalf("expected guard mismatch error")
	}
}

func TestPatchSpanOutOfRange(t *testing.T) {
	_, err := Patch([]byte("ab"), []diag.TextEdit{{
		Span:    source.Span{Start: 1, End: 9},
		NewText: "x",
	}})
	if err == nil {
		t.Fatalf("expected out-of-range error")
	}
}

func TestApplyWritesFileOnce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.py")
	if err := os.WriteFile(path, []byte("print('hi')\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	fs := source.NewFileSetWithBase(dir)
	id, err := fs.Load(path)
	if err != nil {
		t.Fatal(err)
	}

	d := diag.NewError(diag.HdrShebangMissing, source.Span{File: id}, "missing shebang line")
	d = d.WithFix("shebang-insert-0", "insert the canonical interpreter line",
		diag.TextEdit{Span: source.Span{File: id}, NewText: "#!/usr/bin/env python\n"})

	res, err := Apply(fs, []diag.Diagnostic{d})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if len(res.Applied) != 1 || len(res.FileChanges) != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "#!/usr/bin/env python\nprint('hi')\n" {
		t.Fatalf("unexpected file content: %q", got)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o755 {
		t.Fatalf("expected mode 0755 to be preserved, got %v", info.Mode().Perm())
	}
}

func TestApplySkipsVirtualFiles(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("v.py", []byte("x = 1\n"))

	d := diag.NewError(diag.HdrShebangMissing, source.Span{File: id}, "missing shebang line")
	d = d.WithFix("shebang-insert-0", "insert",
		diag.TextEdit{Span: source.Span{File: id}, NewText: "#!/usr/bin/env python\n"})

	res, err := Apply(fs, []diag.Diagnostic{d})
	if err != ErrNoFixes {
		t.Fatalf("expected ErrNoFixes, got %v", err)
	}
	if len(res.Skipped) != 1 || res.Skipped[0].Reason != "target file is virtual" {
		t.Fatalf("expected virtual-file skip, got %+v", res.Skipped)
	}
}

func TestApplyNoFixes(t *testing.T) {
	fs := source.NewFileSet()
	if _, err := Apply(fs, nil); err != ErrNoFixes {
		t.Fatalf("expected ErrNoFixes, got %v", err)
	}
}

func TestApplyReportsWriteFailure(t *testing.T) {
	fs := source.NewFileSet()
	// A path inside a directory that does not exist makes the write fail.
	path := filepath.Join(t.TempDir(), "gone", "a.py")
	id := fs.Add(path, []byte("print('hi')\n"), 0)

	at := source.Span{File: id, Start: 0, End: 0}
	d := diag.NewError(diag.HdrShebangMissing, at, "missing shebang line")
	d = d.WithFix("shebang-insert-0", "insert the canonical interpreter line",
		diag.TextEdit{Span: at, NewText: "#!/usr/bin/env python\n"})

	res, err := Apply(fs, []diag.Diagnostic{d})
	if err == nil {
		t.Fatalf("expected a write error")
	}
	if len(res.Applied) != 1 {
		t.Fatalf("the in-memory patch must still be recorded, got %d", len(res.Applied))
	}
	if len(res.FileChanges) != 0 {
		t.Fatalf("a failed write must not count as a file change")
	}
}
