package header

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/encoding/ianaindex"

	"prettypy/internal/source"
)

// Canonical header values, matching what the fixers write out.
const (
	CanonicalShebang     = "#!/usr/bin/env python"
	CanonicalCodingToken = "utf-8"
)

// ShebangMarker matches any shebang, conformant or not.
var ShebangMarker = regexp.MustCompile(`^#!`)

// codingAny matches any coding declaration and captures its token.
var codingAny = regexp.MustCompile(`coding[:=][ \t]*([-\w]+)`)

// Profile holds the canonical header values a project expects and the
// compiled patterns that recognize conformant variants of them.
type Profile struct {
	Shebang     string
	CodingToken string

	shebangOK *regexp.Regexp
	codingOK  *regexp.Regexp
}

// NewProfile compiles a profile for the given canonical shebang line and
// coding token. Interior whitespace in the shebang is matched flexibly, the
// way the fixer's output plus tab/space variants all count as conformant.
func NewProfile(shebang, codingToken string) (Profile, error) {
	shebang = strings.TrimSpace(shebang)
	codingToken = strings.TrimSpace(codingToken)
	if !ShebangMarker.MatchString(shebang) {
		return Profile{}, fmt.Errorf("header: shebang must start with #!: %q", shebang)
	}
	if codingToken == "" {
		return Profile{}, fmt.Errorf("header: empty coding token")
	}

	parts := strings.Fields(shebang)
	quoted := make([]string, len(parts))
	for i, p := range parts {
		quoted[i] = regexp.QuoteMeta(p)
	}
	shebangOK, err := regexp.Compile(`^` + strings.Join(quoted, `[ \t]+`) + `[ \t]*$`)
	if err != nil {
		return Profile{}, fmt.Errorf("header: bad shebang pattern: %w", err)
	}
	codingOK, err := regexp.Compile(`coding[:=][ \t]*` + regexp.QuoteMeta(codingToken))
	if err != nil {
		return Profile{}, fmt.Errorf("header: bad coding pattern: %w", err)
	}
	return Profile{
		Shebang:     shebang,
		CodingToken: codingToken,
		shebangOK:   shebangOK,
		codingOK:    codingOK,
	}, nil
}

// DefaultProfile returns the profile for the canonical python header.
func DefaultProfile() Profile {
	p, err := NewProfile(CanonicalShebang, CanonicalCodingToken)
	if err != nil {
		panic(err)
	}
	return p
}

// CodingLine returns the canonical coding declaration the fixer writes.
func (p Profile) CodingLine() string {
	return fmt.Sprintf("# -*- coding: %s -*-", p.CodingToken)
}

// ShebangConforms reports whether a line-1 text is an acceptable shebang.
func (p Profile) ShebangConforms(line string) bool {
	return p.shebangOK.MatchString(line)
}

// CodingConforms reports whether a line declares the canonical encoding.
func (p Profile) CodingConforms(line string) bool {
	return p.codingOK.MatchString(line)
}

// Inspection captures what the first two lines of a file declare.
type Inspection struct {
	HasShebang bool // line 1 starts with #!
	ShebangOK  bool
	Shebang    string // line 1 text when HasShebang

	CodingLineNo int // 1-based line of the coding declaration, 0 when absent
	CodingToken  string
	CodingOK     bool
}

// Inspect reads the first two lines of a file and extracts the current
// shebang and coding values. Only those lines are semantically interpreted;
// the rest of the file is opaque.
func (p Profile) Inspect(f *source.File) Inspection {
	var ins Inspection

	line1 := f.LineText(1)
	if ShebangMarker.MatchString(line1) {
		ins.HasShebang = true
		ins.Shebang = line1
		ins.ShebangOK = p.ShebangConforms(line1)
	}

	// The coding declaration may only occupy line 1 or line 2; it conforms
	// when either of those lines declares the canonical encoding. Line 2 is
	// inspected first, respecting the shebang's priority as line 1.
	ins.CodingOK = p.CodingConforms(f.LineText(1)) || p.CodingConforms(f.LineText(2))
	for n := 2; n >= 1; n-- {
		m := codingAny.FindStringSubmatch(f.LineText(n))
		if m == nil {
			continue
		}
		ins.CodingLineNo = n
		ins.CodingToken = m[1]
		break
	}
	return ins
}

// CodingTokenAt extracts the coding token from a single line, if any.
func CodingTokenAt(line string) (string, bool) {
	m := codingAny.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// KnownEncoding reports whether the IANA character-set registry recognizes
// the token. Used to distinguish a typo from a deliberate exotic encoding.
func KnownEncoding(token string) bool {
	_, err := ianaindex.IANA.Encoding(token)
	return err == nil
}
