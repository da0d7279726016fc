package caf

import (
	"github.com/mcncl/cafkit/internal/models"
)

// Bool is a `true` or `false` literal.
type Bool struct {
	Fill  Fill
	Value bool
}

// NewBool builds a Bool with default fill.
func NewBool(value bool) *Bool {
	return &Bool{Value: value}
}

// Write serializes the value.
func (b *Bool) Write(w RawWriter) error {
	return b.WriteWithSpace(w, "")
}

// WriteWithSpace serializes the value, using space if the fill is empty.
func (b *Bool) WriteWithSpace(w RawWriter, space string) error {
	if err := b.Fill.WriteOrElse(w, space); err != nil {
		return err
	}
	text := "false"
	if b.Value {
		text = "true"
	}
	_, err := w.WriteString(text)
	return err
}

// ToJSON returns the bool.
func (b *Bool) ToJSON() (models.JSONValue, error) {
	return b.Value, nil
}

// RecoverFill copies only the fill of other, leaving the value alone.
func (b *Bool) RecoverFill(other Value) {
	recoverLeading(b, other)
}

func (b *Bool) leadingFill() *Fill       { return &b.Fill }
func (b *Bool) walkFills(fn func(*Fill)) { fn(&b.Fill) }
