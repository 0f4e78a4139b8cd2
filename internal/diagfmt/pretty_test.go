package diagfmt

import (
	"encoding/json"
	"strings"
	"testing"

	"prettypy/internal/diag"
	"prettypy/internal/source"
)

func sampleBag(t *testing.T) (*diag.Bag, *source.FileSet) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("bad.py", []byte("#!/usr/bin/python\nprint('hi')\n"))
	span, _ := fs.Get(id).LineSpan(1)

	bag := diag.NewBag(8)
	d := diag.NewError(diag.HdrShebangMismatch, span, `shebang is "#!/usr/bin/python", expected "#!/usr/bin/env python"`)
	d = d.WithFix("shebang-replace-0", "replace shebang with the canonical interpreter line",
		diag.TextEdit{Span: span, NewText: "#!/usr/bin/env python", OldText: "#!/usr/bin/python"})
	bag.Add(d)
	bag.Sort()
	return bag, fs
}

func TestPrettyOutput(t *testing.T) {
	bag, fs := sampleBag(t)

	var sb strings.Builder
	Pretty(&sb, bag, fs, PrettyOpts{ShowContext: true, ShowFixes: true})
	out := sb.String()

	for _, want := range []string{
		"bad.py:1:1:",
		"ERROR [HDR1002]",
		"#!/usr/bin/python",
		"^",
		"fix: replace shebang",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("pretty output missing %q:\n%s", want, out)
		}
	}
}

func TestPrettyRendersNotesAndInsertionMarker(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("n.py", []byte("print('hi')\n"))

	bag := diag.NewBag(8)
	at := source.Span{File: id, Start: 0, End: 0}
	d := diag.NewError(diag.HdrCodingMissing, at, "missing coding declaration")
	d = d.WithNote(at, "declaration must sit on one of the first two lines")
	bag.Add(d)

	var sb strings.Builder
	Pretty(&sb, bag, fs, PrettyOpts{ShowContext: true})
	out := sb.String()

	if !strings.Contains(out, "note: declaration must sit") {
		t.Fatalf("pretty output missing the note:\n%s", out)
	}
	if !strings.Contains(out, "^") {
		t.Fatalf("empty insertion span must still get a caret:\n%s", out)
	}
	if strings.Contains(out, "~") {
		t.Fatalf("empty span must not get a range marker:\n%s", out)
	}
}

func TestJSONOutput(t *testing.T) {
	bag, fs := sampleBag(t)

	var sb strings.Builder
	err := JSON(&sb, bag, fs, JSONOpts{IncludePositions: true, IncludeFixes: true})
	if err != nil {
		t.Fatal(err)
	}

	var payload PayloadJSON
	if err := json.Unmarshal([]byte(sb.String()), &payload); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if payload.Total != 1 || len(payload.Diagnostics) != 1 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	d := payload.Diagnostics[0]
	if d.Code != "HDR1002" || d.Location.StartLine != 1 {
		t.Fatalf("unexpected diagnostic: %+v", d)
	}
	if len(d.Fixes) != 1 || len(d.Fixes[0].Edits) != 1 {
		t.Fatalf("expected fix with one edit: %+v", d)
	}
}

func TestJSONTruncation(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("x.py", []byte("a\nb\n"))
	bag := diag.NewBag(8)
	for i := 0; i < 3; i++ {
		bag.Add(diag.NewError(diag.HdrShebangMissing, source.Span{File: id}, "missing shebang line"))
	}

	var sb strings.Builder
	if err := JSON(&sb, bag, fs, JSONOpts{Max: 2}); err != nil {
		t.Fatal(err)
	}
	var payload PayloadJSON
	if err := json.Unmarshal([]byte(sb.String()), &payload); err != nil {
		t.Fatal(err)
	}
	if !payload.Truncated || len(payload.Diagnostics) != 2 || payload.Total != 3 {
		t.Fatalf("unexpected truncation behavior: %+v", payload)
	}
}
