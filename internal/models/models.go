package models

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
)

// JSONValue is a generic type to represent any JSON value.
// This can be a string, json.Number, boolean, nil, JSONObject or JSONArray.
// It is an alias so that the maps and slices encoding/json produces convert
// to JSONObject and JSONArray directly.
type JSONValue = interface{}

// JSONObject represents a JSON object, which is a map of strings to JSONValues.
type JSONObject map[string]JSONValue

// JSONArray represents a JSON array, which is a slice of JSONValues.
type JSONArray []JSONValue

// Normalize converts the generic maps and slices produced by encoding/json
// into JSONObject and JSONArray, recursively.
func Normalize(val JSONValue) JSONValue {
	switch v := val.(type) {
	case map[string]interface{}:
		obj := make(JSONObject, len(v))
		for key, value := range v {
			obj[key] = Normalize(value)
		}
		return obj
	case JSONObject:
		obj := make(JSONObject, len(v))
		for key, value := range v {
			obj[key] = Normalize(value)
		}
		return obj
	case []interface{}:
		arr := make(JSONArray, len(v))
		for i, value := range v {
			arr[i] = Normalize(value)
		}
		return arr
	case JSONArray:
		arr := make(JSONArray, len(v))
		for i, value := range v {
			arr[i] = Normalize(value)
		}
		return arr
	default:
		return v
	}
}

// Plain is the inverse of Normalize for consumers that only understand the
// built-in types: objects become map[string]any, arrays []any, and
// json.Number becomes int64 or float64.
func Plain(val JSONValue) any {
	switch v := val.(type) {
	case JSONObject:
		out := make(map[string]any, len(v))
		for key, value := range v {
			out[key] = Plain(value)
		}
		return out
	case map[string]interface{}:
		return Plain(JSONObject(v))
	case JSONArray:
		out := make([]any, len(v))
		for i, value := range v {
			out[i] = Plain(value)
		}
		return out
	case []interface{}:
		return Plain(JSONArray(v))
	case json.Number:
		if i, err := strconv.ParseInt(string(v), 10, 64); err == nil {
			return i
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return string(v)
	default:
		return v
	}
}

// AsObject returns val as a JSONObject if it is an object of either the
// named or the built-in map type.
func AsObject(val JSONValue) (JSONObject, bool) {
	switch v := val.(type) {
	case JSONObject:
		return v, true
	case map[string]interface{}:
		return JSONObject(v), true
	default:
		return nil, false
	}
}

// AsArray returns val as a JSONArray if it is an array of either the named
// or the built-in slice type.
func AsArray(val JSONValue) (JSONArray, bool) {
	switch v := val.(type) {
	case JSONArray:
		return v, true
	case []interface{}:
		return JSONArray(v), true
	default:
		return nil, false
	}
}

// SortedKeys returns the keys of obj in lexical order.
func SortedKeys(obj JSONObject) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Describe renders val as compact JSON for error messages.
func Describe(val JSONValue) string {
	b, err := json.Marshal(val)
	if err != nil {
		return fmt.Sprintf("%v", val)
	}
	return string(b)
}
