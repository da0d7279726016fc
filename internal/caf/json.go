package caf

import (
	"encoding/json"

	"github.com/mcncl/cafkit/internal/models"
	"github.com/mcncl/cafkit/internal/schema"
)

// FromJSON converts a JSON value into a CAF value of the type described by
// info. The registry resolves every nested type reference; it is only read.
// The schema kind picks the decoding branch and a JSON value of the wrong
// shape is reported as a *ShapeError, never coerced.
func FromJSON(val models.JSONValue, info *schema.TypeInfo, reg *schema.Registry) (Value, error) {
	switch info.Kind {
	case schema.KindOption:
		if val == nil {
			return &None{}, nil
		}
		return FromJSON(val, reg.Resolve(info.Item), reg)
	case schema.KindBool:
		b, ok := val.(bool)
		if !ok {
			return nil, shapeErr(info.TypePath(), val, "a boolean")
		}
		return NewBool(b), nil
	case schema.KindInt, schema.KindUint, schema.KindFloat:
		return numberFromJSON(val, info)
	case schema.KindString:
		s, ok := val.(string)
		if !ok {
			return nil, shapeErr(info.TypePath(), val, "a string")
		}
		return NewString(s), nil
	case schema.KindList, schema.KindArray:
		return ArrayFromJSON(val, info, reg)
	case schema.KindTuple, schema.KindTupleStruct:
		return TupleFromJSON(val, info.TypePath(), info.Fields, reg)
	case schema.KindStruct:
		return StructFromJSON(val, info.TypePath(), info.Fields, reg)
	case schema.KindEnum:
		return EnumFromJSON(val, info, reg)
	case schema.KindMap:
		return MapFromJSON(val, info, reg)
	default:
		return nil, shapeErr(info.TypePath(), val, "a supported type kind, not "+string(info.Kind))
	}
}

func numberFromJSON(val models.JSONValue, info *schema.TypeInfo) (Value, error) {
	switch v := val.(type) {
	case json.Number:
		n, err := NumberFromText(string(v))
		if err != nil {
			return nil, shapeErr(info.TypePath(), val, "a number")
		}
		return n, nil
	case float64:
		n, err := NewFloat(v)
		if err != nil {
			return nil, shapeErr(info.TypePath(), val, "a finite number")
		}
		return n, nil
	case int:
		return NewInt(int64(v)), nil
	case int64:
		return NewInt(v), nil
	case uint64:
		return NewUint(v), nil
	default:
		return nil, shapeErr(info.TypePath(), val, "a number")
	}
}
