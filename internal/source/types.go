package source

type (
	// FileID uniquely identifies a file within a FileSet.
	FileID uint32
	// FileFlags encodes metadata about a loaded file.
	FileFlags uint8
)

const (
	// FileVirtual indicates the file was added from memory (test, stdin, etc.).
	FileVirtual FileFlags = 1 << iota
	// FileHasBOM indicates the content starts with a UTF-8 byte order mark.
	FileHasBOM
	// FileBinary indicates the content looks like binary data (NUL sniff).
	FileBinary
)

// Line records the byte extents of a single line: Start is the first byte,
// End is one past the last text byte, FullEnd is one past the terminator.
// For a final line without a trailing terminator, End == FullEnd.
type Line struct {
	Start   uint32
	End     uint32
	FullEnd uint32
}

// File captures metadata and raw content for a single file. Content is kept
// byte-for-byte as read from disk; terminators are not normalized.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	Lines   []Line
	Flags   FileFlags
}

// LineCol represents a human-readable position in a file.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based
}
