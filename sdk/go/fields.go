package launchsdk

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// object is a decoded JSON object whose members are still raw.
// A key that is missing and a key that holds null are told apart by lookup.
type object struct {
	path   string
	fields map[string]json.RawMessage
}

func decodeObject(path string, raw json.RawMessage) (object, error) {
	if isNull(raw) {
		return object{}, malformed(path, "expected object, got null")
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return object{}, &MalformedResponseError{Path: path, Reason: "expected object", Err: err}
	}
	return object{path: path, fields: fields}, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func indexPath(path string, i int) string {
	return fmt.Sprintf("%s[%d]", path, i)
}

func (o object) at(key string) string { return joinPath(o.path, key) }

// lookup reports the raw member and whether the key is present at all.
func (o object) lookup(key string) (json.RawMessage, bool) {
	raw, ok := o.fields[key]
	return raw, ok
}

// value returns the member only when it is present and not null.
func (o object) value(key string) (json.RawMessage, bool) {
	raw, ok := o.lookup(key)
	if !ok || isNull(raw) {
		return nil, false
	}
	return raw, true
}

func decodeScalar(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func (o object) optString(key string) (*string, error) {
	raw, ok := o.value(key)
	if !ok {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, &MalformedResponseError{Path: o.at(key), Reason: "expected string", Err: err}
	}
	return &s, nil
}

func (o object) reqString(key string) (string, error) {
	s, err := o.optString(key)
	if err != nil {
		return "", err
	}
	if s == nil {
		return "", malformed(o.at(key), "required field missing")
	}
	return *s, nil
}

func (o object) optInt(key string) (*int, error) {
	raw, ok := o.value(key)
	if !ok {
		return nil, nil
	}
	n, present, err := toInt(raw)
	if err != nil {
		return nil, &MalformedResponseError{Path: o.at(key), Reason: "expected integer", Err: err}
	}
	if !present {
		return nil, nil
	}
	return &n, nil
}

func (o object) reqInt(key string) (int, error) {
	n, err := o.optInt(key)
	if err != nil {
		return 0, err
	}
	if n == nil {
		return 0, malformed(o.at(key), "required field missing")
	}
	return *n, nil
}

// toInt accepts JSON numbers and numeric strings. An empty string counts as absent.
func toInt(raw json.RawMessage) (int, bool, error) {
	v, err := decodeScalar(raw)
	if err != nil {
		return 0, false, err
	}
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return int(i), true, nil
		}
		f, err := t.Float64()
		if err != nil {
			return 0, false, err
		}
		if f != math.Trunc(f) {
			return 0, false, fmt.Errorf("%s is not integral", t)
		}
		if f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, false, fmt.Errorf("%s is out of range", t)
		}
		return int(f), true, nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false, nil
		}
		i, err := strconv.Atoi(s)
		if err != nil {
			return 0, false, err
		}
		return i, true, nil
	default:
		return 0, false, fmt.Errorf("unexpected %T", v)
	}
}

func (o object) optFloat(key string) (*float64, error) {
	raw, ok := o.value(key)
	if !ok {
		return nil, nil
	}
	v, err := decodeScalar(raw)
	if err != nil {
		return nil, &MalformedResponseError{Path: o.at(key), Reason: "expected number", Err: err}
	}
	var f float64
	switch t := v.(type) {
	case json.Number:
		f, err = t.Float64()
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil, nil
		}
		f, err = strconv.ParseFloat(s, 64)
	default:
		err = fmt.Errorf("unexpected %T", v)
	}
	if err != nil {
		return nil, &MalformedResponseError{Path: o.at(key), Reason: "expected number", Err: err}
	}
	return &f, nil
}

// optBool accepts JSON booleans and 0/1 style numbers.
func (o object) optBool(key string) (*bool, error) {
	raw, ok := o.value(key)
	if !ok {
		return nil, nil
	}
	v, err := decodeScalar(raw)
	if err != nil {
		return nil, &MalformedResponseError{Path: o.at(key), Reason: "expected boolean", Err: err}
	}
	var b bool
	switch t := v.(type) {
	case bool:
		b = t
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, &MalformedResponseError{Path: o.at(key), Reason: "expected boolean", Err: err}
		}
		b = f != 0
	default:
		return nil, malformed(o.at(key), fmt.Sprintf("expected boolean, got %T", v))
	}
	return &b, nil
}

// optArray returns the elements of an array member. present is false only when the
// key is missing; an explicit null yields an empty, non-nil slice.
func (o object) optArray(key string) (elems []json.RawMessage, present bool, err error) {
	raw, ok := o.lookup(key)
	if !ok {
		return nil, false, nil
	}
	if isNull(raw) {
		return []json.RawMessage{}, true, nil
	}
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, true, &MalformedResponseError{Path: o.at(key), Reason: "expected array", Err: err}
	}
	if elems == nil {
		elems = []json.RawMessage{}
	}
	return elems, true, nil
}

func (o object) optStrings(key string) ([]string, error) {
	elems, present, err := o.optArray(key)
	if err != nil || !present {
		return nil, err
	}
	out := make([]string, 0, len(elems))
	for i, raw := range elems {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, &MalformedResponseError{Path: indexPath(o.at(key), i), Reason: "expected string", Err: err}
		}
		out = append(out, s)
	}
	return out, nil
}

// optObject decodes an object member. Missing and null both report ok=false.
func (o object) optObject(key string) (object, bool, error) {
	raw, ok := o.value(key)
	if !ok {
		return object{}, false, nil
	}
	obj, err := decodeObject(o.at(key), raw)
	if err != nil {
		return object{}, true, err
	}
	return obj, true, nil
}

// fieldReader reads optional members of one object and keeps the first error.
type fieldReader struct {
	obj object
	err error
}

func (o object) reader() *fieldReader { return &fieldReader{obj: o} }

func (r *fieldReader) str(key string) *string {
	if r.err != nil {
		return nil
	}
	v, err := r.obj.optString(key)
	r.err = err
	return v
}

func (r *fieldReader) integer(key string) *int {
	if r.err != nil {
		return nil
	}
	v, err := r.obj.optInt(key)
	r.err = err
	return v
}

func (r *fieldReader) float(key string) *float64 {
	if r.err != nil {
		return nil
	}
	v, err := r.obj.optFloat(key)
	r.err = err
	return v
}

func (r *fieldReader) boolean(key string) *bool {
	if r.err != nil {
		return nil
	}
	v, err := r.obj.optBool(key)
	r.err = err
	return v
}

func (r *fieldReader) stringList(key string) []string {
	if r.err != nil {
		return nil
	}
	v, err := r.obj.optStrings(key)
	r.err = err
	return v
}
