package caf

import (
	"fmt"

	"github.com/mcncl/cafkit/internal/models"
	"github.com/mcncl/cafkit/internal/schema"
)

// Tuple is a parenthesized sequence of values: `(a b)`. It is the CAF form
// of tuples and tuple structs. A one-entry tuple is a newtype and converts
// to JSON as its inner value.
type Tuple struct {
	StartFill Fill
	Entries   []Value
	EndFill   Fill
}

// NewTuple builds a Tuple with default fill around the given entries.
func NewTuple(entries ...Value) *Tuple {
	return &Tuple{Entries: entries}
}

// Write serializes the value.
func (t *Tuple) Write(w RawWriter) error {
	return t.WriteWithSpace(w, "")
}

// WriteWithSpace serializes the value, using space if the start fill is
// empty.
func (t *Tuple) WriteWithSpace(w RawWriter, space string) error {
	if err := t.StartFill.WriteOrElse(w, space); err != nil {
		return err
	}
	if _, err := w.WriteString("("); err != nil {
		return err
	}
	if err := writeSequence(w, t.Entries); err != nil {
		return err
	}
	if err := t.EndFill.Write(w); err != nil {
		return err
	}
	_, err := w.WriteString(")")
	return err
}

// ToJSON converts a newtype to its inner value and anything else to an
// array.
func (t *Tuple) ToJSON() (models.JSONValue, error) {
	if len(t.Entries) == 1 {
		return t.Entries[0].ToJSON()
	}
	return sequenceToJSON(t.Entries)
}

// TupleFromJSON converts JSON into a Tuple whose entries have the given
// field types.
func TupleFromJSON(val models.JSONValue, typePath string, fields []schema.Field, reg *schema.Registry) (*Tuple, error) {
	if len(fields) == 1 {
		v, err := FromJSON(val, reg.Resolve(fields[0].Type), reg)
		if err != nil {
			return nil, err
		}
		return &Tuple{Entries: []Value{v}}, nil
	}

	items, ok := models.AsArray(val)
	if !ok {
		return nil, shapeErr(typePath, val, "an array")
	}
	if len(items) != len(fields) {
		return nil, shapeErr(typePath, val, fmt.Sprintf("an array of %d elements", len(fields)))
	}
	entries := make([]Value, 0, len(items))
	for i, elem := range items {
		v, err := FromJSON(elem, reg.Resolve(fields[i].Type), reg)
		if err != nil {
			return nil, err
		}
		entries = append(entries, v)
	}
	return &Tuple{Entries: entries}, nil
}

// RecoverFill recovers start fill, entries by position, then end fill.
func (t *Tuple) RecoverFill(other Value) {
	o, ok := other.(*Tuple)
	if !ok {
		recoverLeading(t, other)
		return
	}
	t.StartFill.Recover(o.StartFill)
	recoverSequence(t.Entries, o.Entries)
	t.EndFill.Recover(o.EndFill)
}

func (t *Tuple) leadingFill() *Fill { return &t.StartFill }

func (t *Tuple) walkFills(fn func(*Fill)) {
	fn(&t.StartFill)
	for _, e := range t.Entries {
		e.walkFills(fn)
	}
	fn(&t.EndFill)
}

func parseTuple(content Span, fill Fill) (Value, Span, error) {
	entries, endFill, after, err := parseSequence(content.advance(1), ')')
	if err != nil {
		return nil, content, err
	}
	return &Tuple{StartFill: fill, Entries: entries, EndFill: endFill}, after, nil
}
