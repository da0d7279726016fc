// Package schema describes the types CAF values convert into. A Registry
// maps type IDs to TypeInfo nodes; the JSON conversion layer consults it to
// decide how a JSON array or object maps onto CAF composites.
package schema

import (
	"fmt"
	"strings"

	"github.com/mcncl/cafkit/internal/errors"
)

// Kind is the structural kind of a type.
type Kind string

const (
	KindBool        Kind = "bool"
	KindInt         Kind = "int"
	KindUint        Kind = "uint"
	KindFloat       Kind = "float"
	KindString      Kind = "string"
	KindList        Kind = "list"
	KindArray       Kind = "array"
	KindTuple       Kind = "tuple"
	KindTupleStruct Kind = "tuple_struct"
	KindStruct      Kind = "struct"
	KindEnum        Kind = "enum"
	KindMap         Kind = "map"
	KindOption      Kind = "option"
)

func (k Kind) valid() bool {
	switch k {
	case KindBool, KindInt, KindUint, KindFloat, KindString, KindList, KindArray,
		KindTuple, KindTupleStruct, KindStruct, KindEnum, KindMap, KindOption:
		return true
	}
	return false
}

// VariantKind is the payload shape of an enum variant.
type VariantKind string

const (
	VariantUnit   VariantKind = "unit"
	VariantTuple  VariantKind = "tuple"
	VariantStruct VariantKind = "struct"
)

// Field is a named (struct) or positional (tuple) member referring to
// another type by ID. Tuple fields leave Name empty. JSON is set when the
// JSON object key differs from the CAF field name.
type Field struct {
	Name string `yaml:"name,omitempty"`
	JSON string `yaml:"json,omitempty"`
	Type string `yaml:"type"`
}

// JSONKey returns the object key the field is read from in JSON.
func (f Field) JSONKey() string {
	if f.JSON != "" {
		return f.JSON
	}
	return f.Name
}

// Variant is one case of an enum. JSON is set when the JSON name of the
// variant differs from its CAF name.
type Variant struct {
	Name   string      `yaml:"name"`
	JSON   string      `yaml:"json,omitempty"`
	Kind   VariantKind `yaml:"kind,omitempty"`
	Fields []Field     `yaml:"fields,omitempty"`
}

// JSONKey returns the name the variant is written as in JSON.
func (v Variant) JSONKey() string {
	if v.JSON != "" {
		return v.JSON
	}
	return v.Name
}

// TypeInfo describes one registered type. Which of the reference fields are
// used depends on Kind:
//   - list, array, option: Item (and Len for array)
//   - tuple, tuple_struct, struct: Fields
//   - enum: Variants
//   - map: Key and Value
type TypeInfo struct {
	ID       string    `yaml:"id"`
	Kind     Kind      `yaml:"kind"`
	Item     string    `yaml:"item,omitempty"`
	Len      int       `yaml:"len,omitempty"`
	Fields   []Field   `yaml:"fields,omitempty"`
	Variants []Variant `yaml:"variants,omitempty"`
	Key      string    `yaml:"key,omitempty"`
	Value    string    `yaml:"value,omitempty"`
}

// TypePath returns the name used for the type in error messages.
func (t *TypeInfo) TypePath() string {
	return t.ID
}

// Variant looks up an enum variant by name.
func (t *TypeInfo) Variant(name string) (Variant, bool) {
	for _, v := range t.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return Variant{}, false
}

// VariantForJSON looks up an enum variant by its JSON name, falling back to
// the CAF name.
func (t *TypeInfo) VariantForJSON(key string) (Variant, bool) {
	for _, v := range t.Variants {
		if v.JSON != "" && v.JSON == key {
			return v, true
		}
	}
	return t.Variant(key)
}

// VariantList returns the variant names formatted for error messages.
func (t *TypeInfo) VariantList() string {
	names := make([]string, len(t.Variants))
	for i, v := range t.Variants {
		names[i] = "`" + v.Name + "`"
	}
	return strings.Join(names, ", ")
}

// refs returns every type ID the type refers to.
func (t *TypeInfo) refs() []string {
	var out []string
	for _, id := range []string{t.Item, t.Key, t.Value} {
		if id != "" {
			out = append(out, id)
		}
	}
	for _, f := range t.Fields {
		out = append(out, f.Type)
	}
	for _, v := range t.Variants {
		for _, f := range v.Fields {
			out = append(out, f.Type)
		}
	}
	return out
}

// Registry holds TypeInfo nodes by ID. It is built up front and then only
// read, so it can be shared between concurrent conversions.
type Registry struct {
	types map[string]*TypeInfo
	order []string
}

// NewRegistry creates a registry holding the primitive types.
func NewRegistry() *Registry {
	r := &Registry{types: make(map[string]*TypeInfo)}
	for _, p := range []TypeInfo{
		{ID: "bool", Kind: KindBool},
		{ID: "i8", Kind: KindInt},
		{ID: "i16", Kind: KindInt},
		{ID: "i32", Kind: KindInt},
		{ID: "i64", Kind: KindInt},
		{ID: "u8", Kind: KindUint},
		{ID: "u16", Kind: KindUint},
		{ID: "u32", Kind: KindUint},
		{ID: "u64", Kind: KindUint},
		{ID: "f32", Kind: KindFloat},
		{ID: "f64", Kind: KindFloat},
		{ID: "String", Kind: KindString},
	} {
		r.add(p)
	}
	return r
}

func (r *Registry) add(info TypeInfo) {
	r.types[info.ID] = &info
	r.order = append(r.order, info.ID)
}

// Register adds a type. References to other types are not checked here so
// that types can be registered in any order; call Validate once the
// registry is complete.
func (r *Registry) Register(info TypeInfo) error {
	if info.ID == "" {
		return fmt.Errorf("type has no id")
	}
	if _, exists := r.types[info.ID]; exists {
		return fmt.Errorf("type %q: %w", info.ID, errors.ErrDuplicateType)
	}
	if !info.Kind.valid() {
		return fmt.Errorf("type %q: unknown kind %q", info.ID, info.Kind)
	}
	if err := checkShape(&info); err != nil {
		return fmt.Errorf("type %q: %w", info.ID, err)
	}
	r.add(info)
	return nil
}

func checkShape(info *TypeInfo) error {
	switch info.Kind {
	case KindList, KindOption:
		if info.Item == "" {
			return fmt.Errorf("%s needs an item type", info.Kind)
		}
	case KindArray:
		if info.Item == "" || info.Len <= 0 {
			return fmt.Errorf("array needs an item type and a positive len")
		}
	case KindTuple, KindTupleStruct:
		if len(info.Fields) == 0 {
			return fmt.Errorf("%s needs at least one field", info.Kind)
		}
	case KindStruct:
		seen := make(map[string]bool, len(info.Fields))
		for _, f := range info.Fields {
			if f.Name == "" || seen[f.Name] {
				return fmt.Errorf("struct field names must be unique and non-empty")
			}
			seen[f.Name] = true
		}
		keys := make(map[string]bool, len(info.Fields))
		for _, f := range info.Fields {
			if keys[f.JSONKey()] {
				return fmt.Errorf("struct field json key %q is used twice", f.JSONKey())
			}
			keys[f.JSONKey()] = true
		}
	case KindEnum:
		if len(info.Variants) == 0 {
			return fmt.Errorf("enum needs at least one variant")
		}
		for i := range info.Variants {
			v := &info.Variants[i]
			if v.Kind == "" {
				v.Kind = VariantUnit
			}
			if v.Kind == VariantUnit && len(v.Fields) > 0 {
				return fmt.Errorf("unit variant %q cannot have fields", v.Name)
			}
			if v.Kind != VariantUnit && len(v.Fields) == 0 {
				return fmt.Errorf("variant %q needs fields", v.Name)
			}
		}
	case KindMap:
		if info.Value == "" {
			return fmt.Errorf("map needs a value type")
		}
		if info.Key == "" {
			info.Key = "String"
		}
	}
	return nil
}

// Validate checks that every type reference resolves.
func (r *Registry) Validate() error {
	for _, id := range r.order {
		for _, ref := range r.types[id].refs() {
			if _, ok := r.types[ref]; !ok {
				return fmt.Errorf("type %q refers to %q: %w", id, ref, errors.ErrUnknownType)
			}
		}
	}
	return nil
}

// Get looks up a type by ID.
func (r *Registry) Get(id string) (*TypeInfo, bool) {
	info, ok := r.types[id]
	return info, ok
}

// Resolve returns the type with the given ID. The conversion layer only
// resolves IDs taken from a validated registry, so a miss is a bug in how
// the registry was built and panics.
func (r *Registry) Resolve(id string) *TypeInfo {
	info, ok := r.types[id]
	if !ok {
		panic(fmt.Sprintf("schema: type %q is not registered", id))
	}
	return info
}

// IDs returns the registered type IDs in registration order.
func (r *Registry) IDs() []string {
	return append([]string(nil), r.order...)
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	return len(r.order)
}
