package caf

import (
	"fmt"

	"github.com/mcncl/cafkit/internal/models"
	"github.com/mcncl/cafkit/internal/schema"
)

// Array is a bracketed sequence of values: `[a b c]`.
type Array struct {
	// StartFill precedes the opening `[`.
	StartFill Fill
	Entries   []Value
	// EndFill precedes the closing `]`.
	EndFill Fill
}

// NewArray builds an Array with default fill around the given entries.
func NewArray(entries ...Value) *Array {
	return &Array{Entries: entries}
}

// Write serializes the value.
func (a *Array) Write(w RawWriter) error {
	return a.WriteWithSpace(w, "")
}

// WriteWithSpace serializes the array. Entries after the first are
// separated by a single space unless their own fill says otherwise.
func (a *Array) WriteWithSpace(w RawWriter, space string) error {
	if err := a.StartFill.WriteOrElse(w, space); err != nil {
		return err
	}
	if _, err := w.WriteString("["); err != nil {
		return err
	}
	if err := writeSequence(w, a.Entries); err != nil {
		return err
	}
	if err := a.EndFill.Write(w); err != nil {
		return err
	}
	_, err := w.WriteString("]")
	return err
}

// ToJSON converts each entry in order.
func (a *Array) ToJSON() (models.JSONValue, error) {
	return sequenceToJSON(a.Entries)
}

// ArrayFromJSON converts a JSON array into an Array. info must describe a
// list or a fixed-size array; every element is converted with its item type.
func ArrayFromJSON(val models.JSONValue, info *schema.TypeInfo, reg *schema.Registry) (*Array, error) {
	items, ok := models.AsArray(val)
	if !ok {
		return nil, shapeErr(info.TypePath(), val, "an array")
	}
	switch info.Kind {
	case schema.KindList, schema.KindArray:
	default:
		return nil, shapeErr(info.TypePath(), val, "a list/array type; type is "+string(info.Kind))
	}
	if info.Kind == schema.KindArray && len(items) != info.Len {
		return nil, shapeErr(info.TypePath(), val, fmt.Sprintf("an array of %d elements", info.Len))
	}

	item := reg.Resolve(info.Item)
	entries := make([]Value, 0, len(items))
	for _, elem := range items {
		v, err := FromJSON(elem, item, reg)
		if err != nil {
			return nil, err
		}
		entries = append(entries, v)
	}
	return &Array{Entries: entries}, nil
}

// RecoverFill recovers the start fill, then each entry paired by position,
// then the end fill. Entries without a counterpart keep their own fill.
func (a *Array) RecoverFill(other Value) {
	o, ok := other.(*Array)
	if !ok {
		recoverLeading(a, other)
		return
	}
	a.StartFill.Recover(o.StartFill)
	recoverSequence(a.Entries, o.Entries)
	a.EndFill.Recover(o.EndFill)
}

func (a *Array) leadingFill() *Fill { return &a.StartFill }

func (a *Array) walkFills(fn func(*Fill)) {
	fn(&a.StartFill)
	for _, e := range a.Entries {
		e.walkFills(fn)
	}
	fn(&a.EndFill)
}

func parseArray(content Span, fill Fill) (Value, Span, error) {
	entries, endFill, after, err := parseSequence(content.advance(1), ']')
	if err != nil {
		return nil, content, err
	}
	return &Array{StartFill: fill, Entries: entries, EndFill: endFill}, after, nil
}

// parseSequence parses whitespace-separated values up to and including the
// closing delimiter. content starts just past the opening delimiter.
func parseSequence(content Span, closing byte) ([]Value, Fill, Span, error) {
	var entries []Value
	for {
		fill, next, err := ParseFill(content)
		if err != nil {
			return nil, Fill{}, content, err
		}
		if next.peek() == closing {
			return entries, fill, next.advance(1), nil
		}
		if next.IsEmpty() {
			return nil, Fill{}, content, next.errorf("expected '%c', found end of input", closing)
		}
		if len(entries) > 0 && fill.IsEmpty() {
			return nil, Fill{}, content, next.errorf("expected whitespace between entries")
		}
		v, after, err := ParseValue(next, fill)
		if err != nil {
			return nil, Fill{}, content, err
		}
		entries = append(entries, v)
		content = after
	}
}

func writeSequence(w RawWriter, entries []Value) error {
	for i, e := range entries {
		space := " "
		if i == 0 {
			space = ""
		}
		if err := e.WriteWithSpace(w, space); err != nil {
			return err
		}
	}
	return nil
}

func sequenceToJSON(entries []Value) (models.JSONArray, error) {
	out := make(models.JSONArray, 0, len(entries))
	for _, e := range entries {
		j, err := e.ToJSON()
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, nil
}

func recoverSequence(entries, other []Value) {
	for i := range min(len(entries), len(other)) {
		entries[i].RecoverFill(other[i])
	}
}
