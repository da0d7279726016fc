package schema

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/iancoleman/strcase"
)

// SchemaType handles JSON Schema type field which can be string or array of strings
type SchemaType struct {
	Types []string
}

// UnmarshalJSON handles both string and array forms of type
func (st *SchemaType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		st.Types = []string{s}
		return nil
	}

	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		st.Types = arr
		return nil
	}

	return fmt.Errorf("type must be string or array of strings")
}

// Primary returns the first non-null type, or "null" if that is the only
// one.
func (st SchemaType) Primary() string {
	for _, t := range st.Types {
		if t != "null" {
			return t
		}
	}
	if len(st.Types) > 0 {
		return st.Types[0]
	}
	return ""
}

// IsNullable returns true if "null" is one of the allowed types
func (st SchemaType) IsNullable() bool {
	for _, t := range st.Types {
		if t == "null" {
			return true
		}
	}
	return false
}

// AdditionalProperties handles JSON Schema additionalProperties which can be bool or Schema
type AdditionalProperties struct {
	Allowed bool
	Schema  *Schema
}

// UnmarshalJSON handles both boolean and schema forms
func (ap *AdditionalProperties) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		ap.Allowed = b
		ap.Schema = nil
		return nil
	}

	var s Schema
	if err := json.Unmarshal(data, &s); err == nil {
		ap.Allowed = true
		ap.Schema = &s
		return nil
	}

	return fmt.Errorf("additionalProperties must be boolean or schema")
}

// Schema is the subset of a JSON Schema document that maps onto registry
// types.
type Schema struct {
	Ref   string     `json:"$ref,omitempty"`
	Title string     `json:"title,omitempty"`
	Type  SchemaType `json:"type,omitempty"`

	Properties           map[string]*Schema    `json:"properties,omitempty"`
	AdditionalProperties *AdditionalProperties `json:"additionalProperties,omitempty"`

	Items    *Schema `json:"items,omitempty"`
	MinItems *int    `json:"minItems,omitempty"`
	MaxItems *int    `json:"maxItems,omitempty"`

	Enum     []interface{} `json:"enum,omitempty"`
	Nullable bool          `json:"nullable,omitempty"`
	AllOf    []*Schema     `json:"allOf,omitempty"`

	Definitions map[string]*Schema `json:"definitions,omitempty"`
	Defs        map[string]*Schema `json:"$defs,omitempty"`
}

// ParseJSONSchema parses a JSON Schema document.
func ParseJSONSchema(data []byte) (*Schema, error) {
	var s Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse JSON Schema: %w", err)
	}
	return &s, nil
}

// FromJSONSchema converts every definition of s, and s itself when it
// describes an object, into registry types.
func FromJSONSchema(s *Schema, rootName string) (*Registry, error) {
	return NewConverter(s).Convert(rootName)
}

// Converter turns JSON Schema nodes into registry types.
type Converter struct {
	schema       *Schema
	reg          *Registry
	definitions  map[string]*Schema
	resolvedRefs map[string]string
	inProgress   map[string]bool
}

// NewConverter creates a new schema converter
func NewConverter(s *Schema) *Converter {
	definitions := make(map[string]*Schema)
	for k, v := range s.Definitions {
		definitions[k] = v
	}
	for k, v := range s.Defs {
		definitions[k] = v
	}

	return &Converter{
		schema:       s,
		reg:          NewRegistry(),
		definitions:  definitions,
		resolvedRefs: make(map[string]string),
		inProgress:   make(map[string]bool),
	}
}

// Convert builds the registry. Definitions are converted in name order; the
// root schema is converted under rootName (or its title) when it has a type.
func (c *Converter) Convert(rootName string) (*Registry, error) {
	names := make([]string, 0, len(c.definitions))
	for name := range c.definitions {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := c.resolveRef("#/$defs/" + name); err != nil {
			return nil, err
		}
	}

	if c.schema.Type.Primary() != "" || len(c.schema.Properties) > 0 || c.schema.Ref != "" {
		if rootName == "" {
			rootName = c.schema.Title
			if rootName == "" {
				rootName = "Root"
			}
		}
		if _, err := c.convertSchema(c.schema, strcase.ToCamel(rootName)); err != nil {
			return nil, fmt.Errorf("failed to convert schema: %w", err)
		}
	}

	if err := c.reg.Validate(); err != nil {
		return nil, err
	}
	return c.reg, nil
}

// convertSchema returns the ID of the registry type for schema, registering
// it (and anything it refers to) on the way.
func (c *Converter) convertSchema(schema *Schema, suggestedName string) (string, error) {
	if schema.Ref != "" {
		return c.resolveRef(schema.Ref)
	}
	if len(schema.AllOf) > 0 {
		return c.convertSchema(c.mergeAllOf(schema.AllOf), suggestedName)
	}

	id, err := c.convertNonNull(schema, suggestedName)
	if err != nil {
		return "", err
	}
	if schema.Nullable || schema.Type.IsNullable() {
		return c.ensure(TypeInfo{ID: "Option<" + id + ">", Kind: KindOption, Item: id})
	}
	return id, nil
}

func (c *Converter) convertNonNull(schema *Schema, suggestedName string) (string, error) {
	schemaType := schema.Type.Primary()
	if schemaType == "" {
		if len(schema.Properties) > 0 {
			schemaType = "object"
		} else if schema.Items != nil {
			schemaType = "array"
		}
	}

	switch schemaType {
	case "object":
		return c.convertObject(schema, suggestedName)
	case "array":
		return c.convertArray(schema, suggestedName)
	case "string":
		if len(schema.Enum) > 0 {
			return c.convertEnum(schema, suggestedName)
		}
		return "String", nil
	case "integer":
		return "i64", nil
	case "number":
		return "f64", nil
	case "boolean":
		return "bool", nil
	default:
		return "", fmt.Errorf("%s: unsupported schema type %q", suggestedName, schemaType)
	}
}

// convertObject maps an object with properties to a struct and a
// property-less object with typed additionalProperties to a map.
func (c *Converter) convertObject(schema *Schema, name string) (string, error) {
	if len(schema.Properties) == 0 && schema.AdditionalProperties != nil && schema.AdditionalProperties.Schema != nil {
		valueID, err := c.convertSchema(schema.AdditionalProperties.Schema, name+"Value")
		if err != nil {
			return "", err
		}
		return c.ensure(TypeInfo{ID: "Map<String, " + valueID + ">", Kind: KindMap, Key: "String", Value: valueID})
	}

	propNames := make([]string, 0, len(schema.Properties))
	for prop := range schema.Properties {
		propNames = append(propNames, prop)
	}
	sort.Strings(propNames)

	fields := make([]Field, 0, len(propNames))
	for _, prop := range propNames {
		typeID, err := c.convertSchema(schema.Properties[prop], name+strcase.ToCamel(prop))
		if err != nil {
			return "", fmt.Errorf("failed to convert property %s: %w", prop, err)
		}
		fields = append(fields, fieldFor(prop, typeID))
	}
	return c.ensure(TypeInfo{ID: name, Kind: KindStruct, Fields: fields})
}

// convertArray maps an array to a fixed-size array when minItems equals
// maxItems and to a list otherwise.
func (c *Converter) convertArray(schema *Schema, name string) (string, error) {
	if schema.Items == nil {
		return "", fmt.Errorf("%s: array schema has no items", name)
	}
	itemID, err := c.convertSchema(schema.Items, singularize(name))
	if err != nil {
		return "", fmt.Errorf("failed to convert array items: %w", err)
	}
	if schema.MinItems != nil && schema.MaxItems != nil && *schema.MinItems == *schema.MaxItems && *schema.MinItems > 0 {
		n := *schema.MinItems
		return c.ensure(TypeInfo{ID: fmt.Sprintf("[%s; %d]", itemID, n), Kind: KindArray, Item: itemID, Len: n})
	}
	return c.ensure(TypeInfo{ID: "List<" + itemID + ">", Kind: KindList, Item: itemID})
}

// convertEnum maps a string enum to an enum of unit variants named after
// the PascalCase form of each value. The value itself is kept as the
// variant's JSON name when the two differ.
func (c *Converter) convertEnum(schema *Schema, name string) (string, error) {
	variants := make([]Variant, 0, len(schema.Enum))
	for _, v := range schema.Enum {
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("%s: enum values must be strings, got %v", name, v)
		}
		variant := Variant{Name: strcase.ToCamel(s), Kind: VariantUnit}
		if !validVariantName(variant.Name) {
			return "", fmt.Errorf("%s: enum value %q has no usable variant name", name, s)
		}
		if variant.Name != s {
			variant.JSON = s
		}
		variants = append(variants, variant)
	}
	return c.ensure(TypeInfo{ID: name, Kind: KindEnum, Variants: variants})
}

// ensure registers info unless a type with its ID already exists.
func (c *Converter) ensure(info TypeInfo) (string, error) {
	if _, ok := c.reg.Get(info.ID); ok {
		return info.ID, nil
	}
	if err := c.reg.Register(info); err != nil {
		return "", err
	}
	return info.ID, nil
}

// resolveRef converts the definition a local $ref points at, once.
func (c *Converter) resolveRef(ref string) (string, error) {
	defName, ok := refName(ref)
	if !ok {
		return "", fmt.Errorf("external $ref not supported: %s", ref)
	}
	key := "#/$defs/" + defName
	if id, ok := c.resolvedRefs[key]; ok {
		return id, nil
	}
	defSchema, ok := c.definitions[defName]
	if !ok {
		return "", fmt.Errorf("unresolved $ref: %s", ref)
	}

	id := strcase.ToCamel(defName)
	if c.inProgress[key] {
		// A recursive reference. The struct under construction will be
		// registered under id before Validate runs.
		return id, nil
	}
	c.inProgress[key] = true
	defer delete(c.inProgress, key)

	got, err := c.convertSchema(defSchema, id)
	if err != nil {
		return "", err
	}
	c.resolvedRefs[key] = got
	return got, nil
}

// fieldFor names a struct field after a JSON property. Properties that are
// already CAF field names are kept; others are snake_cased and remember the
// property as their JSON key.
func fieldFor(prop, typeID string) Field {
	if validFieldName(prop) {
		return Field{Name: prop, Type: typeID}
	}
	name := strcase.ToSnake(prop)
	if !validFieldName(name) {
		name = "_" + name
	}
	return Field{Name: name, JSON: prop, Type: typeID}
}

func validFieldName(s string) bool {
	if s == "" || !(s[0] == '_' || (s[0] >= 'a' && s[0] <= 'z')) {
		return false
	}
	return strings.IndexFunc(s, func(r rune) bool { return !isIdentRune(r) }) < 0
}

func validVariantName(s string) bool {
	if s == "" || s[0] < 'A' || s[0] > 'Z' {
		return false
	}
	return strings.IndexFunc(s, func(r rune) bool { return !isIdentRune(r) }) < 0
}

func isIdentRune(r rune) bool {
	return r == '_' || (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func refName(ref string) (string, bool) {
	for _, prefix := range []string{"#/definitions/", "#/$defs/"} {
		if strings.HasPrefix(ref, prefix) {
			return strings.TrimPrefix(ref, prefix), true
		}
	}
	return "", false
}

// mergeAllOf merges multiple schemas from allOf
func (c *Converter) mergeAllOf(schemas []*Schema) *Schema {
	merged := &Schema{
		Properties: make(map[string]*Schema),
	}

	for _, s := range schemas {
		resolved := s
		if name, ok := refName(s.Ref); ok {
			if defSchema, found := c.definitions[name]; found {
				resolved = defSchema
			}
		}
		for k, v := range resolved.Properties {
			merged.Properties[k] = v
		}
		if merged.Title == "" && resolved.Title != "" {
			merged.Title = resolved.Title
		}
	}

	merged.Type = SchemaType{Types: []string{"object"}}
	return merged
}

// singularize attempts to singularize a name
func singularize(s string) string {
	lower := strings.ToLower(s)

	if strings.HasSuffix(lower, "ies") && len(s) > 3 {
		return s[:len(s)-3] + "y"
	}
	if strings.HasSuffix(lower, "ses") && len(s) > 3 {
		return s[:len(s)-2]
	}
	if strings.HasSuffix(lower, "s") && len(s) > 1 {
		return s[:len(s)-1]
	}

	return s
}
