package caf

import (
	"io"
	"strings"
)

// RawWriter is the sink CAF text is serialized into. bytes.Buffer,
// strings.Builder and bufio.Writer all satisfy it.
type RawWriter interface {
	io.Writer
	io.StringWriter
}

// Fill is the insignificant text (whitespace and comments) in front of a
// syntax element.
type Fill struct {
	text string
}

// NewFill wraps raw text as a Fill. The text is not validated.
func NewFill(text string) Fill {
	return Fill{text: text}
}

// String returns the raw fill text.
func (f Fill) String() string {
	return f.text
}

// IsEmpty reports whether the fill has no text.
func (f Fill) IsEmpty() bool {
	return f.text == ""
}

// HasNewline reports whether the fill spans a line break.
func (f Fill) HasNewline() bool {
	return strings.Contains(f.text, "\n")
}

// IsWhitespace reports whether the fill holds no comments.
func (f Fill) IsWhitespace() bool {
	return strings.Trim(f.text, " \t\r\n") == ""
}

// Write writes the fill verbatim.
func (f Fill) Write(w RawWriter) error {
	if f.text == "" {
		return nil
	}
	_, err := w.WriteString(f.text)
	return err
}

// WriteOrElse writes the fill, or def when the fill is empty.
func (f Fill) WriteOrElse(w RawWriter, def string) error {
	if f.text == "" {
		if def == "" {
			return nil
		}
		_, err := w.WriteString(def)
		return err
	}
	_, err := w.WriteString(f.text)
	return err
}

// Recover replaces this fill with a copy of other.
func (f *Fill) Recover(other Fill) {
	f.text = other.text
}

// ParseFill consumes the whitespace and comments at the front of content.
// Line comments run up to and including the next newline; block comments
// must be closed.
func ParseFill(content Span) (Fill, Span, error) {
	start := content
	for !content.IsEmpty() {
		switch {
		case content.peek() == ' ', content.peek() == '\t', content.peek() == '\r', content.peek() == '\n':
			content = content.advance(1)
		case content.HasPrefix("//"):
			end := strings.IndexByte(content.Rest(), '\n')
			if end < 0 {
				content = content.advance(len(content.Rest()))
			} else {
				content = content.advance(end + 1)
			}
		case content.HasPrefix("/*"):
			end := strings.Index(content.Rest()[2:], "*/")
			if end < 0 {
				return Fill{}, start, content.errorf("unterminated block comment")
			}
			content = content.advance(end + 4)
		default:
			return NewFill(start.src[start.off:content.off]), content, nil
		}
	}
	return NewFill(start.src[start.off:content.off]), content, nil
}
