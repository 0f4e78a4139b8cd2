package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Header rules (shebang and coding declaration)
	HdrInfo            Code = 1000
	HdrShebangMissing  Code = 1001
	HdrShebangMismatch Code = 1002
	HdrCodingMissing   Code = 1003
	HdrCodingMismatch  Code = 1004
	HdrCodingUnknown   Code = 1005

	// Style rules (external formatter)
	StyInfo        Code = 2000
	StyViolation   Code = 2001
	StyToolMissing Code = 2002
	StyToolFailed  Code = 2003

	// Enumeration and file access
	IOInfo        Code = 3000
	IOUnreadable  Code = 3001
	IOBinaryFile  Code = 3002
	IOWriteFailed Code = 3003
)

var codeDescription = map[Code]string{
	UnknownCode: "Unknown diagnostic",

	HdrInfo:            "Header information",
	HdrShebangMissing:  "Missing shebang line",
	HdrShebangMismatch: "Shebang does not invoke the canonical interpreter",
	HdrCodingMissing:   "Missing coding declaration",
	HdrCodingMismatch:  "Coding declaration names a non-canonical encoding",
	HdrCodingUnknown:   "Coding declaration names an unrecognized encoding",

	StyInfo:        "Style information",
	StyViolation:   "Style does not conform to the configured formatter",
	StyToolMissing: "External formatter is not installed",
	StyToolFailed:  "External formatter failed to run",

	IOInfo:        "I/O information",
	IOUnreadable:  "File or directory could not be read",
	IOBinaryFile:  "File looks like binary data",
	IOWriteFailed: "File could not be written",
}

func (c Code) ID() string {
	switch {
	case c >= HdrInfo && c < StyInfo:
		return fmt.Sprintf("HDR%04d", int(c))
	case c >= StyInfo && c < IOInfo:
		return fmt.Sprintf("STY%04d", int(c))
	case c >= IOInfo && c < IOInfo+1000:
		return fmt.Sprintf("IO%04d", int(c))
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
