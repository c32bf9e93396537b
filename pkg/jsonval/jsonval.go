// Package jsonval provides total lookups over loosely typed JSON documents.
//
// A Value is either absent (the zero Value), or present and holding whatever
// encoding/json decoded at that position. Every accessor returns a usable
// result regardless of the shape of the document, so callers describe what
// they want instead of checking types at each level.
package jsonval

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

type Value struct {
	raw     any
	present bool
}

// Parse decodes a JSON document, keeping numbers as they were rendered.
func Parse(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return Value{}, err
	}
	return Of(raw), nil
}

// Of wraps an already decoded value.
func Of(raw any) Value {
	return Value{raw: raw, present: true}
}

func (v Value) Present() bool {
	return v.present
}

func (v Value) IsNull() bool {
	return v.present && v.raw == nil
}

func (v Value) Raw() any {
	return v.raw
}

// Key returns the member `name` of an object, or an absent value.
func (v Value) Key(name string) Value {
	obj, ok := v.raw.(map[string]any)
	if !ok {
		return Value{}
	}
	member, ok := obj[name]
	if !ok {
		return Value{}
	}
	return Of(member)
}

// Index returns the i-th element of an array, or an absent value.
func (v Value) Index(i int) Value {
	arr, ok := v.raw.([]any)
	if !ok || i < 0 || i >= len(arr) {
		return Value{}
	}
	return Of(arr[i])
}

// Array returns the elements of an array, nil for anything else.
func (v Value) Array() []Value {
	arr, ok := v.raw.([]any)
	if !ok {
		return nil
	}
	out := make([]Value, len(arr))
	for i, elem := range arr {
		out[i] = Of(elem)
	}
	return out
}

func (v Value) IsObject() bool {
	_, ok := v.raw.(map[string]any)
	return ok
}

func (v Value) IsArray() bool {
	_, ok := v.raw.([]any)
	return ok
}

// Where returns the first object element of an array whose `field` member is
// the string `value`.
func (v Value) Where(field, value string) Value {
	for _, elem := range v.Array() {
		s, ok := elem.Key(field).String()
		if ok && s == value {
			return elem
		}
	}
	return Value{}
}

func (v Value) String() (string, bool) {
	s, ok := v.raw.(string)
	return s, ok
}

// Number returns a number exactly as it appeared in the document.
func (v Value) Number() (string, bool) {
	switch n := v.raw.(type) {
	case json.Number:
		return n.String(), true
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64), true
	}
	return "", false
}

func (v Value) Bool() (bool, bool) {
	b, ok := v.raw.(bool)
	return b, ok
}

// Scalar renders a string or a number, rejecting everything else.
func (v Value) Scalar() (string, bool) {
	if s, ok := v.String(); ok {
		return s, true
	}
	return v.Number()
}

// StringOr returns the trimmed string at v, or def when v is not a non-empty
// string.
func (v Value) StringOr(def string) string {
	s, ok := v.String()
	s = strings.TrimSpace(s)
	if !ok || s == "" {
		return def
	}
	return s
}
