package schema

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// registryFile is the on-disk layout of a YAML registry:
//
//	types:
//	  - id: Color
//	    kind: struct
//	    fields:
//	      - {name: r, type: f32}
type registryFile struct {
	Types []TypeInfo `yaml:"types"`
}

// ParseFile loads a registry from path. Files ending in .json are read as
// JSON Schema; anything else as a YAML registry.
func ParseFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		s, err := ParseJSONSchema(data)
		if err != nil {
			return nil, err
		}
		return FromJSONSchema(s, "")
	}
	return ParseBytes(data)
}

// ParseBytes parses a YAML registry. Unknown keys are rejected and every type
// reference must resolve.
func ParseBytes(data []byte) (*Registry, error) {
	var file registryFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !stderrors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse registry: %w", err)
	}

	reg := NewRegistry()
	for _, info := range file.Types {
		if err := reg.Register(info); err != nil {
			return nil, err
		}
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return reg, nil
}

// ParseString parses a YAML registry from a string
func ParseString(s string) (*Registry, error) {
	return ParseBytes([]byte(s))
}

// MarshalYAML writes the non-primitive types of the registry in the layout
// ParseBytes reads.
func (r *Registry) MarshalYAML() (interface{}, error) {
	file := registryFile{}
	primitives := NewRegistry()
	for _, id := range r.order {
		if _, builtin := primitives.types[id]; builtin {
			continue
		}
		file.Types = append(file.Types, *r.types[id])
	}
	return file, nil
}
