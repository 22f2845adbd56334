package cdx

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// lineSplitter re-assembles lines from fixed-size chunks so a line cut in
// half by a read boundary is decoded only once it is complete.
type lineSplitter struct {
	pending []byte
	latin1  int
}

// feed appends a chunk and returns the complete lines it closes.
func (s *lineSplitter) feed(chunk []byte) []string {
	s.pending = append(s.pending, chunk...)

	var lines []string

	for {
		i := bytes.IndexByte(s.pending, '\n')
		if i < 0 {
			break
		}

		lines = append(lines, s.decode(s.pending[:i]))
		s.pending = s.pending[i+1:]
	}

	// Reclaim the consumed prefix.
	if len(s.pending) == 0 {
		s.pending = s.pending[:0:0]
	}

	return lines
}

// flush returns the trailing line that had no newline, if any.
func (s *lineSplitter) flush() (string, bool) {
	if len(s.pending) == 0 {
		return "", false
	}

	line := s.decode(s.pending)
	s.pending = nil

	return line, true
}

// decode is best-effort UTF-8 with an ISO-8859-1 fallback.
func (s *lineSplitter) decode(raw []byte) string {
	raw = bytes.TrimSuffix(raw, []byte{'\r'})
	if utf8.Valid(raw) {
		return string(raw)
	}

	s.latin1++

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return strings.ToValidUTF8(string(raw), "�")
	}

	return string(decoded)
}
