package providers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Object is a decoded JSON object from an upstream whose field names drift
// between API versions. Lookups take several candidate names and use the first present.
type Object map[string]any

// DecodeObject decodes data as a JSON object. Numbers are kept as json.Number.
func DecodeObject(data []byte) (Object, error) {
	var obj Object
	if err := decode(data, &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("expected JSON object")
	}
	return obj, nil
}

// DecodeArray decodes data as a JSON array of objects. Non-object elements are dropped.
func DecodeArray(data []byte) ([]Object, error) {
	var raw []any
	if err := decode(data, &raw); err != nil {
		return nil, err
	}
	return toObjects(raw), nil
}

func decode(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// String returns the first of keys holding a JSON string
func (o Object) String(keys ...string) string {
	for _, key := range keys {
		if s, ok := o[key].(string); ok {
			return s
		}
	}
	return ""
}

// ID returns the first of keys holding a non-empty string or a number, as text
func (o Object) ID(keys ...string) string {
	for _, key := range keys {
		switch v := o[key].(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				return v
			}
		case json.Number:
			return v.String()
		}
	}
	return ""
}

// Int64 returns the first of keys holding an integer number
func (o Object) Int64(keys ...string) (int64, bool) {
	for _, key := range keys {
		if n, ok := o[key].(json.Number); ok {
			if i, err := n.Int64(); err == nil {
				return i, true
			}
		}
	}
	return 0, false
}

// Object returns the nested object under key, or nil
func (o Object) Object(key string) Object {
	if m, ok := o[key].(map[string]any); ok {
		return Object(m)
	}
	return nil
}

// Array returns the objects of the array under key
func (o Object) Array(key string) []Object {
	raw, _ := o[key].([]any)
	return toObjects(raw)
}

// Path walks nested objects; it returns nil when any step is missing
func (o Object) Path(keys ...string) Object {
	cur := o
	for _, key := range keys {
		if cur == nil {
			return nil
		}
		cur = cur.Object(key)
	}
	return cur
}

// JoinNames joins the first of keys found in each object with sep, skipping blanks
func JoinNames(items []Object, sep string, keys ...string) string {
	var names []string
	for _, item := range items {
		if name := strings.TrimSpace(item.String(keys...)); name != "" {
			names = append(names, name)
		}
	}
	return strings.Join(names, sep)
}

func toObjects(raw []any) []Object {
	out := make([]Object, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]any); ok {
			out = append(out, Object(m))
		}
	}
	return out
}
