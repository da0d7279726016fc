package caf

import (
	"github.com/mcncl/cafkit/internal/models"
)

// Value is a node in a CAF value tree: None, *Bool, *Number, *String,
// *Array, *Tuple, *Struct, *Map or *Enum.
type Value interface {
	// Write serializes the value with no default leading space.
	Write(w RawWriter) error
	// WriteWithSpace serializes the value, writing space in place of an
	// empty leading fill.
	WriteWithSpace(w RawWriter, space string) error
	// ToJSON converts the value to its JSON form.
	ToJSON() (models.JSONValue, error)
	// RecoverFill copies formatting from a previous version of the value.
	RecoverFill(other Value)

	leadingFill() *Fill
	walkFills(fn func(*Fill))
}

// recoverLeading handles RecoverFill across different value kinds: only the
// leading fill has a counterpart.
func recoverLeading(v Value, other Value) {
	if other == nil {
		return
	}
	v.leadingFill().Recover(*other.leadingFill())
}

// ParseValue parses one value at the front of content. fill is the
// already-consumed fill that becomes the value's leading fill.
func ParseValue(content Span, fill Fill) (Value, Span, error) {
	switch c := content.peek(); {
	case content.IsEmpty():
		return nil, content, content.errorf("expected a value, found end of input")
	case c == '[':
		return parseArray(content, fill)
	case c == '(':
		return parseTuple(content, fill)
	case c == '{':
		return parseBraced(content, fill)
	case c == '"':
		return parseString(content, fill)
	case c == '-' || isDigit(c):
		return parseNumber(content, fill)
	case isUpper(c):
		return parseEnum(content, fill)
	case content.hasKeyword("true"):
		return &Bool{Fill: fill, Value: true}, content.advance(4), nil
	case content.hasKeyword("false"):
		return &Bool{Fill: fill, Value: false}, content.advance(5), nil
	case content.hasKeyword("none"):
		return &None{Fill: fill}, content.advance(4), nil
	default:
		return nil, content, content.errorf("expected a value, found %q", string(c))
	}
}

// startsValue reports whether a value could begin at content.
func startsValue(content Span) bool {
	c := content.peek()
	switch {
	case content.IsEmpty():
		return false
	case c == '[', c == '(', c == '{', c == '"', c == '-', isDigit(c), isUpper(c):
		return true
	default:
		return content.hasKeyword("true") || content.hasKeyword("false") || content.hasKeyword("none")
	}
}

// ParseValueString parses text holding a single value surrounded by optional
// fill. Trailing fill is discarded.
func ParseValueString(text string) (Value, error) {
	fill, content, err := ParseFill(NewSpan(text))
	if err != nil {
		return nil, err
	}
	v, content, err := ParseValue(content, fill)
	if err != nil {
		return nil, err
	}
	_, content, err = ParseFill(content)
	if err != nil {
		return nil, err
	}
	if !content.IsEmpty() {
		return nil, content.errorf("unexpected content after value")
	}
	return v, nil
}

// None is the `none` literal, the CAF form of JSON null.
type None struct {
	Fill Fill
}

// Write serializes the value.
func (n *None) Write(w RawWriter) error {
	return n.WriteWithSpace(w, "")
}

// WriteWithSpace serializes the value, using space if the fill is empty.
func (n *None) WriteWithSpace(w RawWriter, space string) error {
	if err := n.Fill.WriteOrElse(w, space); err != nil {
		return err
	}
	_, err := w.WriteString("none")
	return err
}

// ToJSON returns nil.
func (n *None) ToJSON() (models.JSONValue, error) {
	return nil, nil
}

// RecoverFill copies the fill of other.
func (n *None) RecoverFill(other Value) {
	recoverLeading(n, other)
}

func (n *None) leadingFill() *Fill       { return &n.Fill }
func (n *None) walkFills(fn func(*Fill)) { fn(&n.Fill) }
