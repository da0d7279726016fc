package caf

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mcncl/cafkit/internal/models"
)

// NumberKind tags the numeric domain of a Number.
type NumberKind int

const (
	NumberUint NumberKind = iota
	NumberInt
	NumberFloat
)

// String returns the kind name.
func (k NumberKind) String() string {
	switch k {
	case NumberFloat:
		return "float"
	case NumberInt:
		return "signed"
	default:
		return "unsigned"
	}
}

func (k NumberKind) unexpectedName() string {
	if k == NumberFloat {
		return "floating point"
	}
	return "integer"
}

// Number is a numeric literal. It keeps the source text so untouched numbers
// are written back exactly, and a tagged value so the numeric domain
// (float, unsigned, signed) survives conversion to and from JSON.
type Number struct {
	Fill Fill

	text string
	kind NumberKind
	f    float64
	u    uint64
	i    int64
}

// NewUint builds an unsigned Number with default fill.
func NewUint(u uint64) *Number {
	return &Number{text: strconv.FormatUint(u, 10), kind: NumberUint, u: u}
}

// NewInt builds a Number from a signed integer. Non-negative values are
// stored as unsigned, matching what parsing their text would produce.
func NewInt(i int64) *Number {
	if i >= 0 {
		return NewUint(uint64(i))
	}
	return &Number{text: strconv.FormatInt(i, 10), kind: NumberInt, i: i}
}

// NewFloat builds a float Number. The text always carries a fraction or an
// exponent so that it parses back as a float.
func NewFloat(f float64) (*Number, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("cannot represent %v as a number literal", f)
	}
	text := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(text, ".eE") {
		text += ".0"
	}
	return &Number{text: text, kind: NumberFloat, f: f}, nil
}

// NumberFromText builds a Number from a numeric literal, e.g. "3", "-2" or
// "1.5e3". The text must follow the JSON number grammar.
func NumberFromText(text string) (*Number, error) {
	if n := scanNumber(text); n != len(text) || n == 0 {
		return nil, fmt.Errorf("invalid number literal %q", text)
	}
	return numberFromValidText(text), nil
}

func numberFromValidText(text string) *Number {
	n := &Number{text: text}
	if !strings.ContainsAny(text, ".eE") {
		if strings.HasPrefix(text, "-") {
			if i, err := strconv.ParseInt(text, 10, 64); err == nil {
				n.kind, n.i = NumberInt, i
				return n
			}
		} else if u, err := strconv.ParseUint(text, 10, 64); err == nil {
			n.kind, n.u = NumberUint, u
			return n
		}
	}
	// Fractions, exponents and integers too wide for 64 bits.
	f, _ := strconv.ParseFloat(text, 64)
	n.kind, n.f = NumberFloat, f
	return n
}

// Kind returns the numeric domain of the number.
func (n *Number) Kind() NumberKind {
	return n.kind
}

// Text returns the literal text of the number.
func (n *Number) Text() string {
	if n.text == "" {
		return "0"
	}
	return n.text
}

// AsFloat returns the value if the number is a float.
func (n *Number) AsFloat() (float64, bool) {
	return n.f, n.kind == NumberFloat
}

// AsUint returns the value if the number is unsigned.
func (n *Number) AsUint() (uint64, bool) {
	return n.u, n.kind == NumberUint
}

// AsInt returns the value if the number is signed.
func (n *Number) AsInt() (int64, bool) {
	return n.i, n.kind == NumberInt
}

// Write serializes the value.
func (n *Number) Write(w RawWriter) error {
	return n.WriteWithSpace(w, "")
}

// WriteWithSpace serializes the value, using space if the fill is empty.
func (n *Number) WriteWithSpace(w RawWriter, space string) error {
	if err := n.Fill.WriteOrElse(w, space); err != nil {
		return err
	}
	_, err := w.WriteString(n.Text())
	return err
}

// ToJSON returns the number as a json.Number holding the literal text.
func (n *Number) ToJSON() (models.JSONValue, error) {
	return json.Number(n.Text()), nil
}

// RecoverFill copies only the fill of other, leaving the value alone.
func (n *Number) RecoverFill(other Value) {
	recoverLeading(n, other)
}

func (n *Number) leadingFill() *Fill       { return &n.Fill }
func (n *Number) walkFills(fn func(*Fill)) { fn(&n.Fill) }

// scanNumber returns the length of the JSON-number literal at the front of
// s, or 0 if there is none.
//
//	-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?
func scanNumber(s string) int {
	i := 0
	if i < len(s) && s[i] == '-' {
		i++
	}
	switch {
	case i < len(s) && s[i] == '0':
		i++
	case i < len(s) && s[i] >= '1' && s[i] <= '9':
		for i < len(s) && isDigit(s[i]) {
			i++
		}
	default:
		return 0
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		if j == i+1 {
			return 0
		}
		i = j
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k == j {
			return 0
		}
		i = k
	}
	return i
}

func parseNumber(content Span, fill Fill) (Value, Span, error) {
	n := scanNumber(content.Rest())
	if n == 0 {
		return nil, content, content.errorf("malformed number")
	}
	after := content.advance(n)
	if isIdentByte(after.peek()) || after.peek() == '.' {
		return nil, content, after.errorf("malformed number")
	}
	num := numberFromValidText(content.Rest()[:n])
	num.Fill = fill
	return num, after, nil
}
