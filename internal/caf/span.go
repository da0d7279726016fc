// Package caf implements the CAF document format: a human-editable scene and
// configuration language whose documents round-trip losslessly between text
// and an in-memory tree.
//
// Every syntax element owns the Fill (whitespace and comments) that precedes
// it, so an untouched document is written back byte-for-byte. Values convert
// to a generic JSON tree, and back again with the help of a schema.Registry
// that decides how JSON arrays and objects map onto CAF composites.
package caf

import "strings"

// Span is a read position inside a source text. Spans are values: advancing
// returns a new Span and never modifies the receiver, so a failed parse
// attempt leaves the caller's Span untouched.
type Span struct {
	src string
	off int
}

// NewSpan returns a Span positioned at the start of src.
func NewSpan(src string) Span {
	return Span{src: src}
}

// Rest returns the unconsumed text.
func (s Span) Rest() string {
	return s.src[s.off:]
}

// Offset returns the byte offset of the span inside its source.
func (s Span) Offset() int {
	return s.off
}

// IsEmpty reports whether all input has been consumed.
func (s Span) IsEmpty() bool {
	return s.off >= len(s.src)
}

// HasPrefix reports whether the unconsumed text starts with prefix.
func (s Span) HasPrefix(prefix string) bool {
	return strings.HasPrefix(s.Rest(), prefix)
}

func (s Span) peek() byte {
	if s.IsEmpty() {
		return 0
	}
	return s.src[s.off]
}

func (s Span) advance(n int) Span {
	s.off += n
	return s
}

// hasKeyword reports whether the span starts with word followed by a
// non-identifier byte (or the end of input).
func (s Span) hasKeyword(word string) bool {
	if !s.HasPrefix(word) {
		return false
	}
	rest := s.Rest()
	return len(rest) == len(word) || !isIdentByte(rest[len(word)])
}

// position returns the 1-based line and column of the span.
func (s Span) position() (int, int) {
	consumed := s.src[:s.off]
	line := strings.Count(consumed, "\n") + 1
	col := s.off - strings.LastIndexByte(consumed, '\n')
	return line, col
}

func (s Span) errorf(format string, args ...any) *ParseError {
	line, col := s.position()
	return newParseError(line, col, format, args...)
}

func isIdentByte(b byte) bool {
	return b == '_' || isDigit(b) || isLower(b) || isUpper(b)
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isLower(b byte) bool { return b >= 'a' && b <= 'z' }
func isUpper(b byte) bool { return b >= 'A' && b <= 'Z' }

// scanWhile returns the length of the longest prefix of the span whose bytes
// all satisfy pred.
func (s Span) scanWhile(pred func(byte) bool) int {
	rest := s.Rest()
	n := 0
	for n < len(rest) && pred(rest[n]) {
		n++
	}
	return n
}
