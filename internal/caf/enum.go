package caf

import (
	"github.com/mcncl/cafkit/internal/models"
	"github.com/mcncl/cafkit/internal/schema"
)

// Enum is an enum variant: `Name`, `Name(a b)` or `Name{f:v}`. The payload,
// when present, is a *Tuple or a *Struct written directly after the name.
type Enum struct {
	Fill    Fill
	Variant string
	Payload Value
}

// NewEnum builds a unit variant with default fill.
func NewEnum(variant string) *Enum {
	return &Enum{Variant: variant}
}

// Write serializes the value.
func (e *Enum) Write(w RawWriter) error {
	return e.WriteWithSpace(w, "")
}

// WriteWithSpace serializes the value, using space if the fill is empty.
func (e *Enum) WriteWithSpace(w RawWriter, space string) error {
	if err := e.Fill.WriteOrElse(w, space); err != nil {
		return err
	}
	if _, err := w.WriteString(e.Variant); err != nil {
		return err
	}
	if e.Payload == nil {
		return nil
	}
	return e.Payload.Write(w)
}

// ToJSON converts a unit variant to its name and a payload variant to a
// single-key object.
func (e *Enum) ToJSON() (models.JSONValue, error) {
	if e.Payload == nil {
		return e.Variant, nil
	}
	inner, err := e.Payload.ToJSON()
	if err != nil {
		return nil, err
	}
	return models.JSONObject{e.Variant: inner}, nil
}

// EnumFromJSON converts a variant name or a single-key object into an Enum
// of the given enum type. Variants are matched by JSON name, then CAF name.
func EnumFromJSON(val models.JSONValue, info *schema.TypeInfo, reg *schema.Registry) (*Enum, error) {
	if name, ok := val.(string); ok {
		variant, found := info.VariantForJSON(name)
		if !found {
			return nil, shapeErr(info.TypePath(), val, "one of the variants "+info.VariantList())
		}
		if variant.Kind != schema.VariantUnit {
			return nil, shapeErr(info.TypePath(), val, "a payload for variant "+variant.Name)
		}
		return NewEnum(variant.Name), nil
	}

	obj, ok := models.AsObject(val)
	if !ok || len(obj) != 1 {
		return nil, shapeErr(info.TypePath(), val, "a variant name or a single-key object")
	}
	var name string
	for k := range obj {
		name = k
	}
	variant, found := info.VariantForJSON(name)
	if !found {
		return nil, shapeErr(info.TypePath(), val, "one of the variants "+info.VariantList())
	}

	path := info.TypePath() + "::" + variant.Name
	switch variant.Kind {
	case schema.VariantTuple:
		t, err := TupleFromJSON(obj[name], path, variant.Fields, reg)
		if err != nil {
			return nil, err
		}
		return &Enum{Variant: variant.Name, Payload: t}, nil
	case schema.VariantStruct:
		s, err := StructFromJSON(obj[name], path, variant.Fields, reg)
		if err != nil {
			return nil, err
		}
		return &Enum{Variant: variant.Name, Payload: s}, nil
	default:
		return nil, shapeErr(path, val, "a bare variant name for unit variant "+variant.Name)
	}
}

// RecoverFill recovers the fill and, when both sides carry a payload of the
// same kind, the payload's fill.
func (e *Enum) RecoverFill(other Value) {
	o, ok := other.(*Enum)
	if !ok {
		recoverLeading(e, other)
		return
	}
	e.Fill.Recover(o.Fill)
	if e.Payload != nil && o.Payload != nil {
		e.Payload.RecoverFill(o.Payload)
	}
}

func (e *Enum) leadingFill() *Fill { return &e.Fill }

func (e *Enum) walkFills(fn func(*Fill)) {
	fn(&e.Fill)
	if e.Payload != nil {
		e.Payload.walkFills(fn)
	}
}

func parseEnum(content Span, fill Fill) (Value, Span, error) {
	n := content.scanWhile(isIdentByte)
	e := &Enum{Fill: fill, Variant: content.Rest()[:n]}
	after := content.advance(n)

	var err error
	switch after.peek() {
	case '(':
		e.Payload, after, err = parseTuple(after, Fill{})
	case '{':
		var s *Struct
		s, after, err = parseStructBody(after.advance(1))
		e.Payload = s
	}
	if err != nil {
		return nil, content, err
	}
	return e, after, nil
}
