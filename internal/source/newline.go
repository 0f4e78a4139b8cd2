package source

// Newline identifies a line terminator style.
type Newline string

const (
	NewlineLF   Newline = "\n"
	NewlineCR   Newline = "\r"
	NewlineCRLF Newline = "\r\n"
)

// DominantNewline returns the most frequent terminator in the file, so that
// inserted lines match the file's existing convention. Ties are broken in the
// order CRLF, CR, LF; a file with no terminators defaults to LF.
func (f *File) DominantNewline() Newline {
	var lf, cr, crlf int
	for _, ln := range f.Lines {
		switch f.terminator(ln) {
		case NewlineCRLF:
			crlf++
		case NewlineCR:
			cr++
		case NewlineLF:
			lf++
		}
	}
	switch {
	case crlf >= cr && crlf >= lf && crlf > 0:
		return NewlineCRLF
	case cr >= lf && cr > 0:
		return NewlineCR
	case lf > 0:
		return NewlineLF
	}
	return NewlineLF
}

func (f *File) terminator(ln Line) Newline {
	if ln.End == ln.FullEnd {
		return ""
	}
	return Newline(f.Content[ln.End:ln.FullEnd])
}

// scanLines splits content into line records without copying. Recognizes LF,
// CRLF and lone CR terminators.
func scanLines(content []byte) []Line {
	lines := make([]Line, 0, 16)
	start := 0
	i := 0
	for i < len(content) {
		switch content[i] {
		case '\n':
			lines = append(lines, Line{Start: uint32(start), End: uint32(i), FullEnd: uint32(i + 1)})
			i++
			start = i
		case '\r':
			end := i
			i++
			if i < len(content) && content[i] == '\n' {
				i++
			}
			lines = append(lines, Line{Start: uint32(start), End: uint32(end), FullEnd: uint32(i)})
			start = i
		default:
			i++
		}
	}
	if start < len(content) {
		lines = append(lines, Line{Start: uint32(start), End: uint32(len(content)), FullEnd: uint32(len(content))})
	}
	return lines
}
