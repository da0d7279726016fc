package caf

import (
	"strings"

	"github.com/mcncl/cafkit/internal/models"
)

// String is a double-quoted string literal.
type String struct {
	Fill  Fill
	Value string

	// literal is the source text between the quotes; it is written back
	// for as long as Value still equals what it decoded to.
	literal string
	decoded string
}

// NewString builds a String with default fill.
func NewString(value string) *String {
	return &String{Value: value}
}

// Write serializes the value.
func (s *String) Write(w RawWriter) error {
	return s.WriteWithSpace(w, "")
}

// WriteWithSpace serializes the value, using space if the fill is empty.
func (s *String) WriteWithSpace(w RawWriter, space string) error {
	if err := s.Fill.WriteOrElse(w, space); err != nil {
		return err
	}
	return s.writeQuoted(w)
}

func (s *String) writeQuoted(w RawWriter) error {
	if _, err := w.WriteString(`"`); err != nil {
		return err
	}
	if s.literal != "" && s.Value == s.decoded {
		if _, err := w.WriteString(s.literal); err != nil {
			return err
		}
	} else if err := FormatEscapedStrContents(w, s.Value); err != nil {
		return err
	}
	_, err := w.WriteString(`"`)
	return err
}

// ToJSON returns the string.
func (s *String) ToJSON() (models.JSONValue, error) {
	return s.Value, nil
}

// RecoverFill copies only the fill of other, leaving the value alone.
func (s *String) RecoverFill(other Value) {
	recoverLeading(s, other)
}

func (s *String) leadingFill() *Fill       { return &s.Fill }
func (s *String) walkFills(fn func(*Fill)) { fn(&s.Fill) }

// scanStringLiteral returns the raw text between the quotes of the string
// literal at the front of content and the span after the closing quote.
func scanStringLiteral(content Span) (string, Span, error) {
	if content.peek() != '"' {
		return "", content, content.errorf("expected '\"'")
	}
	rest := content.Rest()
	for i := 1; i < len(rest); i++ {
		switch rest[i] {
		case '\\':
			i++
		case '"':
			return rest[1:i], content.advance(i + 1), nil
		case '\n':
			return "", content, content.advance(i).errorf("newline in string literal")
		}
	}
	return "", content, content.errorf("unterminated string literal")
}

func parseString(content Span, fill Fill) (Value, Span, error) {
	literal, after, err := scanStringLiteral(content)
	if err != nil {
		return nil, content, err
	}
	if strings.IndexFunc(literal, func(r rune) bool { return r < 0x20 && r != '\t' }) >= 0 {
		return nil, content, content.errorf("unescaped control character in string literal")
	}
	decoded, err := Unescape(literal)
	if err != nil {
		return nil, content, content.errorf("%v", err)
	}
	return &String{Fill: fill, Value: decoded, literal: literal, decoded: decoded}, after, nil
}
