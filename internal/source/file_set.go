package source

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"fortio.org/safecast"
)

// FileSet manages a collection of files and resolves spans to positions.
type FileSet struct {
	files   []File
	index   map[string]FileID // path -> id
	baseDir string            // base directory for relative path display
}

// NewFileSet creates a new empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{
		files: make([]File, 0),
		index: make(map[string]FileID),
	}
}

// NewFileSetWithBase creates a FileSet with an explicit base directory.
func NewFileSetWithBase(baseDir string) *FileSet {
	fs := NewFileSet()
	fs.baseDir = baseDir
	return fs
}

// BaseDir returns the base directory, falling back to the working directory.
func (fileSet *FileSet) BaseDir() string {
	if fileSet.baseDir == "" {
		if wd, err := os.Getwd(); err == nil {
			return wd
		}
	}
	return fileSet.baseDir
}

// SetBaseDir sets the base directory for relative path display.
func (fileSet *FileSet) SetBaseDir(dir string) {
	fileSet.baseDir = dir
}

// Add stores raw content, scans line extents and sniffs flags, returning a
// new FileID. A file with the same path gets a fresh ID; the index always
// points at the latest version.
func (fileSet *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	if bytes.HasPrefix(content, []byte{0xEF, 0xBB, 0xBF}) {
		flags |= FileHasBOM
	}
	if bytes.IndexByte(content, 0) >= 0 {
		flags |= FileBinary
	}
	normalizedPath := normalizePath(path)

	lenFiles, err := safecast.Conv[uint32](len(fileSet.files))
	if err != nil {
		panic(fmt.Errorf("len files overflow: %w", err))
	}
	id := FileID(lenFiles)
	fileSet.files = append(fileSet.files, File{
		ID:      id,
		Path:    normalizedPath,
		Content: content,
		Lines:   scanLines(content),
		Flags:   flags,
	})
	fileSet.index[normalizedPath] = id
	return id
}

// Load reads a file from disk byte-for-byte and calls Add. Terminators and
// BOMs are preserved; fixes must not disturb bytes they do not target.
func (fileSet *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return fileSet.Add(path, content, 0), nil
}

// AddVirtual adds an in-memory file with the FileVirtual flag.
func (fileSet *FileSet) AddVirtual(name string, content []byte) FileID {
	return fileSet.Add(name, content, FileVirtual)
}

// Get returns the file metadata for the given ID.
func (fileSet *FileSet) Get(id FileID) *File {
	return &fileSet.files[id]
}

// GetByPath returns the latest *File for a path, if one was loaded.
func (fileSet *FileSet) GetByPath(path string) (*File, bool) {
	if id, ok := fileSet.index[normalizePath(path)]; ok {
		return &fileSet.files[id], true
	}
	return nil, false
}

// Len returns the number of files in the set.
func (fileSet *FileSet) Len() int {
	return len(fileSet.files)
}

// Resolve converts a span into line and column positions.
func (fileSet *FileSet) Resolve(span Span) (start, end LineCol) {
	f := &fileSet.files[span.File]
	return f.toLineCol(span.Start), f.toLineCol(span.End)
}

// LineCount returns the number of lines in the file. A trailing terminator
// does not open a new empty line.
func (f *File) LineCount() int {
	return len(f.Lines)
}

// LineText returns the text of line n (1-based) without its terminator.
// Out-of-range lines yield "".
func (f *File) LineText(n int) string {
	if n < 1 || n > len(f.Lines) {
		return ""
	}
	ln := f.Lines[n-1]
	return string(f.Content[ln.Start:ln.End])
}

// LineSpan returns the span of line n's text, excluding the terminator.
func (f *File) LineSpan(n int) (Span, bool) {
	if n < 1 || n > len(f.Lines) {
		return Span{}, false
	}
	ln := f.Lines[n-1]
	return Span{File: f.ID, Start: ln.Start, End: ln.End}, true
}

func (f *File) toLineCol(off uint32) LineCol {
	if len(f.Lines) == 0 {
		return LineCol{Line: 1, Col: off + 1}
	}
	// binary search: greatest line whose Start <= off
	lo, hi := 0, len(f.Lines)-1
	for lo <= hi {
		mid := (lo + hi) >> 1
		if f.Lines[mid].Start <= off {
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	if hi < 0 {
		return LineCol{Line: 1, Col: off + 1}
	}
	line, err := safecast.Conv[uint32](hi)
	if err != nil {
		panic(fmt.Errorf("line number overflow: %w", err))
	}
	return LineCol{Line: line + 1, Col: off - f.Lines[hi].Start + 1}
}

// FormatPath formats the file path for display.
// mode: "absolute", "relative", "basename", "auto"
func (f *File) FormatPath(mode, baseDir string) string {
	switch mode {
	case "absolute":
		if abs, err := filepath.Abs(f.Path); err == nil {
			return filepath.ToSlash(abs)
		}
		return f.Path

	case "relative":
		if baseDir == "" {
			if wd, err := os.Getwd(); err == nil {
				baseDir = wd
			}
		}
		if rel, err := filepath.Rel(baseDir, f.Path); err == nil {
			return filepath.ToSlash(rel)
		}
		return f.Path

	case "basename":
		return filepath.Base(f.Path)

	case "auto":
		// short or relative paths as-is, long absolute paths by basename
		if len(f.Path) < 40 || !filepath.IsAbs(f.Path) {
			return f.Path
		}
		return filepath.Base(f.Path)

	default:
		return f.Path
	}
}

func normalizePath(p string) string {
	// one canonical form for cross-platform diffs
	return filepath.ToSlash(filepath.Clean(p))
}
