package fix

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"prettypy/internal/diag"
	"prettypy/internal/source"
)

// ErrNoFixes is returned when no fixes were applied.
var ErrNoFixes = errors.New("no applicable fixes found")

// AppliedFix records a successfully applied fix.
type AppliedFix struct {
	ID        string
	Title     string
	Code      diag.Code
	Message   string
	Path      string
	EditCount int
}

// SkippedFix captures a skipped or failed fix with a reason.
type SkippedFix struct {
	ID     string
	Title  string
	Reason string
}

// FileChange summarises modifications performed on a file.
type FileChange struct {
	Path      string
	EditCount int
}

// ApplyResult aggregates applied fixes, skipped ones, and file changes.
type ApplyResult struct {
	Applied     []AppliedFix
	Skipped     []SkippedFix
	FileChanges []FileChange
}

type candidate struct {
	diag diag.Diagnostic
	fix  diag.Fix
}

// Apply collects the fixes attached to diagnostics and applies all of them,
// file by file. Each file's content is patched in memory and written back
// once with its original permission bits; bytes outside the edit spans are
// carried over untouched. A fix whose guard no longer matches the file is
// skipped with a reason rather than failing the batch.
func Apply(fs *source.FileSet, diagnostics []diag.Diagnostic) (*ApplyResult, error) {
	result := &ApplyResult{
		Applied:     make([]AppliedFix, 0),
		Skipped:     make([]SkippedFix, 0),
		FileChanges: make([]FileChange, 0),
	}
	if fs == nil {
		return result, fmt.Errorf("fix: FileSet is nil")
	}

	candidates := gatherCandidates(result, diagnostics)
	if len(candidates) == 0 {
		return result, ErrNoFixes
	}
	sortCandidates(candidates)

	buffers := make(map[source.FileID][]byte)
	fileEditCount := make(map[source.FileID]int)
	dirty := make([]source.FileID, 0, len(candidates))

	for _, cand := range candidates {
		file := fs.Get(cand.fix.Edits[0].Span.File)
		if file.Flags&source.FileVirtual != 0 {
			result.Skipped = append(result.Skipped, SkippedFix{
				ID:     cand.fix.ID,
				Title:  cand.fix.Title,
				Reason: "target file is virtual",
			})
			continue
		}

		base, touched := buffers[file.ID]
		if !touched {
			base = file.Content
		}
		// patch works on a copy so a failed fix cannot corrupt the staged bytes
		patched, reason := patch(append([]byte(nil), base...), cand.fix.Edits)
		if reason != "" {
			result.Skipped = append(result.Skipped, SkippedFix{
				ID:     cand.fix.ID,
				Title:  cand.fix.Title,
				Reason: reason,
			})
			continue
		}

		if !touched {
			dirty = append(dirty, file.ID)
		}
		buffers[file.ID] = patched
		fileEditCount[file.ID] += len(cand.fix.Edits)

		result.Applied = append(result.Applied, AppliedFix{
			ID:        cand.fix.ID,
			Title:     cand.fix.Title,
			Code:      cand.diag.Code,
			Message:   cand.diag.Message,
			Path:      file.FormatPath("auto", fs.BaseDir()),
			EditCount: len(cand.fix.Edits),
		})
	}

	if len(result.Applied) == 0 {
		return result, ErrNoFixes
	}

	for _, fileID := range dirty {
		file := fs.Get(fileID)
		mode := os.FileMode(0o644)
		if info, err := os.Stat(file.Path); err == nil {
			mode = info.Mode()
		}
		if err := os.WriteFile(file.Path, buffers[fileID], mode); err != nil {
			return result, fmt.Errorf("write %s: %w", file.Path, err)
		}
		result.FileChanges = append(result.FileChanges, FileChange{
			Path:      file.FormatPath("relative", fs.BaseDir()),
			EditCount: fileEditCount[fileID],
		})
	}

	sort.SliceStable(result.FileChanges, func(i, j int) bool {
		return result.FileChanges[i].Path < result.FileChanges[j].Path
	})
	return result, nil
}

// Patch applies edits to a copy of content and returns the new bytes.
// Exposed for callers that stage content themselves (tests, previews).
func Patch(content []byte, edits []diag.TextEdit) ([]byte, error) {
	patched, reason := patch(append([]byte(nil), content...), edits)
	if reason != "" {
		return nil, errors.New(reason)
	}
	return patched, nil
}

func gatherCandidates(result *ApplyResult, diagnostics []diag.Diagnostic) []candidate {
	cands := make([]candidate, 0)
	for _, d := range diagnostics {
		for _, f := range d.Fixes {
			if len(f.Edits) == 0 {
				result.Skipped = append(result.Skipped, SkippedFix{
					ID:     f.ID,
					Title:  f.Title,
					Reason: "fix has no edits",
				})
				continue
			}
			cands = append(cands, candidate{diag: d, fix: f})
		}
	}
	return cands
}

// sortCandidates orders candidates by file, span, code and ID so the apply
// pipeline is deterministic regardless of diagnostic emission order.
func sortCandidates(candidates []candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		di, dj := candidates[i].diag, candidates[j].diag
		if di.Primary.File != dj.Primary.File {
			return di.Primary.File < dj.Primary.File
		}
		if di.Primary.Start != dj.Primary.Start {
			return di.Primary.Start < dj.Primary.Start
		}
		if di.Primary.End != dj.Primary.End {
			return di.Primary.End < dj.Primary.End
		}
		if di.Code != dj.Code {
			return di.Code < dj.Code
		}
		return candidates[i].fix.ID < candidates[j].fix.ID
	})
}

// patch splices edits into working, highest offset first so earlier spans
// stay valid. Returns a non-empty reason instead of mutating on any guard
// or range violation.
func patch(working []byte, edits []diag.TextEdit) ([]byte, string) {
	sorted := append([]diag.TextEdit(nil), edits...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Span.Start == sorted[j].Span.Start {
			return sorted[i].Span.End > sorted[j].Span.End
		}
		return sorted[i].Span.Start > sorted[j].Span.Start
	})

	for _, edit := range sorted {
		start, end := int(edit.Span.Start), int(edit.Span.End)
		if start < 0 || end < start || end > len(working) {
			return nil, "edit span out of range"
		}
		if edit.OldText != "" && string(working[start:end]) != edit.OldText {
			return nil, "existing text does not match expected content"
		}
		suffix := append([]byte(nil), working[end:]...)
		working = append(append(working[:start], []byte(edit.NewText)...), suffix...)
	}
	return working, ""
}
