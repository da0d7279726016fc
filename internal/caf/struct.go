package caf

import (
	"strings"

	"github.com/mcncl/cafkit/internal/models"
	"github.com/mcncl/cafkit/internal/schema"
)

// StructField is one `name:value` pair of a Struct.
type StructField struct {
	// Fill precedes the field name.
	Fill Fill
	Name string
	// ColonFill precedes the `:`.
	ColonFill Fill
	Value     Value
}

// Struct is a braced list of named fields: `{x:1 y:2}`. Field names are
// lowercase identifiers.
type Struct struct {
	StartFill Fill
	Fields    []StructField
	EndFill   Fill
}

// NewStruct builds an empty Struct with default fill.
func NewStruct() *Struct {
	return &Struct{}
}

// Add appends a field with default fill.
func (s *Struct) Add(name string, value Value) *Struct {
	s.Fields = append(s.Fields, StructField{Name: name, Value: value})
	return s
}

// Get returns the value of the named field.
func (s *Struct) Get(name string) (Value, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Write serializes the value.
func (s *Struct) Write(w RawWriter) error {
	return s.WriteWithSpace(w, "")
}

// WriteWithSpace serializes the value, using space if the start fill is
// empty.
func (s *Struct) WriteWithSpace(w RawWriter, space string) error {
	if err := s.StartFill.WriteOrElse(w, space); err != nil {
		return err
	}
	if _, err := w.WriteString("{"); err != nil {
		return err
	}
	for i, f := range s.Fields {
		sep := " "
		if i == 0 {
			sep = ""
		}
		if err := f.Fill.WriteOrElse(w, sep); err != nil {
			return err
		}
		if _, err := w.WriteString(f.Name); err != nil {
			return err
		}
		if err := f.ColonFill.Write(w); err != nil {
			return err
		}
		if _, err := w.WriteString(":"); err != nil {
			return err
		}
		if err := f.Value.Write(w); err != nil {
			return err
		}
	}
	if err := s.EndFill.Write(w); err != nil {
		return err
	}
	_, err := w.WriteString("}")
	return err
}

// ToJSON converts the fields into a JSON object.
func (s *Struct) ToJSON() (models.JSONValue, error) {
	obj := make(models.JSONObject, len(s.Fields))
	for _, f := range s.Fields {
		j, err := f.Value.ToJSON()
		if err != nil {
			return nil, err
		}
		obj[f.Name] = j
	}
	return obj, nil
}

// StructFromJSON converts a JSON object into a Struct with the given fields.
// Fields come out in schema order; keys missing from the object are left
// out and keys the schema does not know are an error. A field is read from
// its JSON key, or from its CAF name so that ToJSON output converts back.
func StructFromJSON(val models.JSONValue, typePath string, fields []schema.Field, reg *schema.Registry) (*Struct, error) {
	obj, ok := models.AsObject(val)
	if !ok {
		return nil, shapeErr(typePath, val, "an object")
	}
	known := make(map[string]bool, 2*len(fields))
	for _, f := range fields {
		known[f.Name] = true
		known[f.JSONKey()] = true
	}
	for key := range obj {
		if !known[key] {
			return nil, shapeErr(typePath, val, "no field named "+key)
		}
	}

	out := &Struct{}
	for _, f := range fields {
		elem, present := obj[f.JSONKey()]
		if !present {
			elem, present = obj[f.Name]
		}
		if !present {
			continue
		}
		v, err := FromJSON(elem, reg.Resolve(f.Type), reg)
		if err != nil {
			return nil, err
		}
		out.Fields = append(out.Fields, StructField{Name: f.Name, Value: v})
	}
	return out, nil
}

// RecoverFill recovers fills field by field. Fields pair up by position,
// as for arrays.
func (s *Struct) RecoverFill(other Value) {
	o, ok := other.(*Struct)
	if !ok {
		recoverLeading(s, other)
		return
	}
	s.StartFill.Recover(o.StartFill)
	for i := range min(len(s.Fields), len(o.Fields)) {
		s.Fields[i].Fill.Recover(o.Fields[i].Fill)
		s.Fields[i].ColonFill.Recover(o.Fields[i].ColonFill)
		s.Fields[i].Value.RecoverFill(o.Fields[i].Value)
	}
	s.EndFill.Recover(o.EndFill)
}

func (s *Struct) leadingFill() *Fill { return &s.StartFill }

func (s *Struct) walkFills(fn func(*Fill)) {
	fn(&s.StartFill)
	for i := range s.Fields {
		fn(&s.Fields[i].Fill)
		fn(&s.Fields[i].ColonFill)
		s.Fields[i].Value.walkFills(fn)
	}
	fn(&s.EndFill)
}

// MapEntry is one `key:value` pair of a Map. The key's own fill leads the
// entry.
type MapEntry struct {
	Key       Value
	ColonFill Fill
	Value     Value
}

// Map is a braced list of value-keyed entries: `{"a":1 "b":2}`.
type Map struct {
	StartFill Fill
	Entries   []MapEntry
	EndFill   Fill
}

// NewMap builds an empty Map with default fill.
func NewMap() *Map {
	return &Map{}
}

// Add appends an entry with default fill.
func (m *Map) Add(key, value Value) *Map {
	m.Entries = append(m.Entries, MapEntry{Key: key, Value: value})
	return m
}

// Write serializes the value.
func (m *Map) Write(w RawWriter) error {
	return m.WriteWithSpace(w, "")
}

// WriteWithSpace serializes the value, using space if the start fill is
// empty.
func (m *Map) WriteWithSpace(w RawWriter, space string) error {
	if err := m.StartFill.WriteOrElse(w, space); err != nil {
		return err
	}
	if _, err := w.WriteString("{"); err != nil {
		return err
	}
	for i, e := range m.Entries {
		sep := " "
		if i == 0 {
			sep = ""
		}
		if err := e.Key.WriteWithSpace(w, sep); err != nil {
			return err
		}
		if err := e.ColonFill.Write(w); err != nil {
			return err
		}
		if _, err := w.WriteString(":"); err != nil {
			return err
		}
		if err := e.Value.Write(w); err != nil {
			return err
		}
	}
	if err := m.EndFill.Write(w); err != nil {
		return err
	}
	_, err := w.WriteString("}")
	return err
}

// ToJSON converts the entries into a JSON object. Every key must be a
// String.
func (m *Map) ToJSON() (models.JSONValue, error) {
	obj := make(models.JSONObject, len(m.Entries))
	for _, e := range m.Entries {
		key, ok := e.Key.(*String)
		if !ok {
			var sb strings.Builder
			if err := e.Key.Write(&sb); err != nil {
				return nil, err
			}
			return nil, shapeErr("map key", strings.TrimSpace(sb.String()), "a string key")
		}
		j, err := e.Value.ToJSON()
		if err != nil {
			return nil, err
		}
		obj[key.Value] = j
	}
	return obj, nil
}

// MapFromJSON converts a JSON object into a Map with String keys, in sorted
// key order.
func MapFromJSON(val models.JSONValue, info *schema.TypeInfo, reg *schema.Registry) (*Map, error) {
	obj, ok := models.AsObject(val)
	if !ok {
		return nil, shapeErr(info.TypePath(), val, "an object")
	}
	valueType := reg.Resolve(info.Value)
	out := &Map{}
	for _, key := range models.SortedKeys(obj) {
		v, err := FromJSON(obj[key], valueType, reg)
		if err != nil {
			return nil, err
		}
		out.Entries = append(out.Entries, MapEntry{Key: NewString(key), Value: v})
	}
	return out, nil
}

// RecoverFill recovers fills entry by entry, paired by position.
func (m *Map) RecoverFill(other Value) {
	o, ok := other.(*Map)
	if !ok {
		recoverLeading(m, other)
		return
	}
	m.StartFill.Recover(o.StartFill)
	for i := range min(len(m.Entries), len(o.Entries)) {
		m.Entries[i].Key.RecoverFill(o.Entries[i].Key)
		m.Entries[i].ColonFill.Recover(o.Entries[i].ColonFill)
		m.Entries[i].Value.RecoverFill(o.Entries[i].Value)
	}
	m.EndFill.Recover(o.EndFill)
}

func (m *Map) leadingFill() *Fill { return &m.StartFill }

func (m *Map) walkFills(fn func(*Fill)) {
	fn(&m.StartFill)
	for i := range m.Entries {
		m.Entries[i].Key.walkFills(fn)
		fn(&m.Entries[i].ColonFill)
		m.Entries[i].Value.walkFills(fn)
	}
	fn(&m.EndFill)
}

// parseBraced parses `{...}` as a Struct when the first key is a lowercase
// identifier (or the braces are empty) and as a Map otherwise.
func parseBraced(content Span, fill Fill) (Value, Span, error) {
	inner := content.advance(1)
	_, next, err := ParseFill(inner)
	if err != nil {
		return nil, content, err
	}
	if next.peek() == '}' || isLower(next.peek()) || next.peek() == '_' {
		s, after, err := parseStructBody(inner)
		if err != nil {
			return nil, content, err
		}
		s.StartFill = fill
		return s, after, nil
	}
	m, after, err := parseMapBody(inner)
	if err != nil {
		return nil, content, err
	}
	m.StartFill = fill
	return m, after, nil
}

func parseStructBody(content Span) (*Struct, Span, error) {
	s := &Struct{}
	for {
		fill, next, err := ParseFill(content)
		if err != nil {
			return nil, content, err
		}
		if next.peek() == '}' {
			s.EndFill = fill
			return s, next.advance(1), nil
		}
		if len(s.Fields) > 0 && fill.IsEmpty() {
			return nil, content, next.errorf("expected whitespace between fields")
		}
		if !isLower(next.peek()) && next.peek() != '_' {
			return nil, content, next.errorf("expected a field name or '}'")
		}
		n := next.scanWhile(isIdentByte)
		name := next.Rest()[:n]
		colonFill, afterName, err := ParseFill(next.advance(n))
		if err != nil {
			return nil, content, err
		}
		if afterName.peek() != ':' {
			return nil, content, afterName.errorf("expected ':' after field %q", name)
		}
		valueFill, valueStart, err := ParseFill(afterName.advance(1))
		if err != nil {
			return nil, content, err
		}
		v, after, err := ParseValue(valueStart, valueFill)
		if err != nil {
			return nil, content, err
		}
		s.Fields = append(s.Fields, StructField{Fill: fill, Name: name, ColonFill: colonFill, Value: v})
		content = after
	}
}

func parseMapBody(content Span) (*Map, Span, error) {
	m := &Map{}
	for {
		fill, next, err := ParseFill(content)
		if err != nil {
			return nil, content, err
		}
		if next.peek() == '}' {
			m.EndFill = fill
			return m, next.advance(1), nil
		}
		if len(m.Entries) > 0 && fill.IsEmpty() {
			return nil, content, next.errorf("expected whitespace between entries")
		}
		key, afterKey, err := ParseValue(next, fill)
		if err != nil {
			return nil, content, err
		}
		colonFill, colon, err := ParseFill(afterKey)
		if err != nil {
			return nil, content, err
		}
		if colon.peek() != ':' {
			return nil, content, colon.errorf("expected ':' after map key")
		}
		valueFill, valueStart, err := ParseFill(colon.advance(1))
		if err != nil {
			return nil, content, err
		}
		v, after, err := ParseValue(valueStart, valueFill)
		if err != nil {
			return nil, content, err
		}
		m.Entries = append(m.Entries, MapEntry{Key: key, ColonFill: colonFill, Value: v})
		content = after
	}
}
