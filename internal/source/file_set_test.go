package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestScanLinesMixedTerminators(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("mixed.py", []byte("one\ntwo\r\nthree\rfour"))
	f := fs.Get(id)

	if got := f.LineCount(); got != 4 {
		t.Fatalf("expected 4 lines, got %d", got)
	}
	want := []string{"one", "two", "three", "four"}
	for i, text := range want {
		if got := f.LineText(i + 1); got != text {
			t.Fatalf("line %d: expected %q, got %q", i+1, text, got)
		}
	}
}

func TestScanLinesTrailingNewline(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("a.py", []byte("only\n"))
	f := fs.Get(id)

	if got := f.LineCount(); got != 1 {
		t.Fatalf("expected 1 line, got %d", got)
	}
	ln := f.Lines[0]
	if ln.End != 4 || ln.FullEnd != 5 {
		t.Fatalf("unexpected line extents: %+v", ln)
	}
}

func TestDominantNewline(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    Newline
	}{
		{"empty", "", NewlineLF},
		{"no terminator", "x", NewlineLF},
		{"lf", "a\nb\n", NewlineLF},
		{"crlf majority", "a\r\nb\r\nc\n", NewlineCRLF},
		{"cr only", "a\rb\r", NewlineCR},
		{"lf majority", "a\nb\nc\r\n", NewlineLF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := NewFileSet()
			f := fs.Get(fs.AddVirtual("f.py", []byte(tt.content)))
			if got := f.DominantNewline(); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestAddSniffsFlags(t *testing.T) {
	fs := NewFileSet()

	bom := fs.Get(fs.AddVirtual("bom.py", []byte("\xEF\xBB\xBF#!x\n")))
	if bom.Flags&FileHasBOM == 0 {
		t.Fatalf("expected FileHasBOM to be set")
	}

	bin := fs.Get(fs.AddVirtual("bin.py", []byte("ab\x00cd")))
	if bin.Flags&FileBinary == 0 {
		t.Fatalf("expected FileBinary to be set")
	}
}

func TestLoadPreservesBytes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "raw.py")
	content := []byte("#!/usr/bin/env python\r\nprint('hi')\r\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := fs.Get(id).Content; string(got) != string(content) {
		t.Fatalf("content was altered on load:\n%q\n%q", content, got)
	}
}

func TestResolveLineCol(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("r.py", []byte("ab\ncd\n"))

	start, end := fs.Resolve(Span{File: id, Start: 3, End: 5})
	if start.Line != 2 || start.Col != 1 {
		t.Fatalf("unexpected start: %+v", start)
	}
	if end.Line != 2 || end.Col != 3 {
		t.Fatalf("unexpected end: %+v", end)
	}
}

func TestFormatPathModes(t *testing.T) {
	fs := NewFileSet()
	fs.SetBaseDir("/work/project")
	f := fs.Get(fs.AddVirtual("/work/project/pkg/script.py", nil))

	if got := f.FormatPath("relative", fs.BaseDir()); got != "pkg/script.py" {
		t.Fatalf("relative = %q", got)
	}
	if got := f.FormatPath("basename", fs.BaseDir()); got != "script.py" {
		t.Fatalf("basename = %q", got)
	}
	if got := f.FormatPath("absolute", fs.BaseDir()); !filepath.IsAbs(got) {
		t.Fatalf("absolute = %q", got)
	}
}
