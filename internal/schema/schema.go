// Package schema validates the structure of decoded third-party JSON against
// a table of field specs before any of it is trusted.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

type Kind int

const (
	String Kind = iota + 1
	Number
	Bool
	Object
	Array
	StringOrNumber
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Number:
		return "number"
	case Bool:
		return "boolean"
	case Object:
		return "object"
	case Array:
		return "array"
	case StringOrNumber:
		return "string or number"
	default:
		return "unknown"
	}
}

// Field describes one required (or optional) value. Path segments are
// separated by dots; a trailing "[]" on a segment applies the rest of the
// path to every element of that array, e.g. "items[].snippet.title". An
// absent array has no elements to check; list the array as its own Field to
// require it. Fields nested under an Optional object are skipped when that
// object is absent. Declaring an element itself ("items[]") as Nullable skips
// every field nested under a null element.
type Field struct {
	Path     string
	Kind     Kind
	Optional bool // absent (or null) is accepted
	Nullable bool // present but null is accepted; null array elements are skipped
}

// Schema is a field-spec table.
type Schema []Field

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Errors collects every violation found in one document.
type Errors []ValidationError

func (e Errors) Error() string {
	msgs := make([]string, 0, len(e))
	for i := range e {
		msgs = append(msgs, e[i].Error())
	}
	return "invalid payload: " + strings.Join(msgs, "; ")
}

// Decode parses raw JSON into generic maps and slices, keeping numbers as
// json.Number.
func Decode(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return doc, nil
}

// Validate checks doc against every field in the table.
func (s Schema) Validate(doc any) error {
	optional := make(map[string]bool)
	nullElems := make(map[string]bool)
	for _, f := range s {
		if f.Optional {
			optional[strings.TrimSuffix(f.Path, "[]")] = true
		}
		if f.Nullable && strings.HasSuffix(f.Path, "[]") {
			nullElems[strings.TrimSuffix(f.Path, "[]")] = true
		}
	}

	var errs Errors
	for _, f := range s {
		w := walker{field: f, optional: optional, nullElems: nullElems}
		errs = append(errs, w.walk(doc, strings.Split(f.Path, "."), "", "")...)
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateJSON decodes raw and validates it.
func (s Schema) ValidateJSON(raw []byte) error {
	doc, err := Decode(raw)
	if err != nil {
		return err
	}
	return s.Validate(doc)
}

type walker struct {
	field     Field
	optional  map[string]bool
	nullElems map[string]bool // declared array paths whose elements may be null
}

// walk descends one segment. trail is the concrete path used in messages
// ("items[2].id"); tmpl is the declared form ("items[].id").
func (w walker) walk(value any, segs []string, trail, tmpl string) []ValidationError {
	f := w.field
	seg := segs[0]
	iterate := strings.HasSuffix(seg, "[]")
	name := strings.TrimSuffix(seg, "[]")
	path := join(trail, name)
	decl := join(tmpl, name)
	last := len(segs) == 1
	skippable := (last && f.Optional) || (!last && w.optional[decl])

	obj, ok := value.(map[string]any)
	if !ok {
		return []ValidationError{{Field: pathOrRoot(trail), Message: "must be an object"}}
	}

	child, present := obj[name]
	if !present {
		if skippable || iterate {
			return nil
		}
		return []ValidationError{{Field: path, Message: "is required"}}
	}
	if child == nil {
		if skippable || (last && !iterate && f.Nullable) {
			return nil
		}
		return []ValidationError{{Field: path, Message: "must not be null"}}
	}

	if !iterate {
		if last {
			return f.check(child, path)
		}
		return w.walk(child, segs[1:], path, decl)
	}

	arr, ok := child.([]any)
	if !ok {
		return []ValidationError{{Field: path, Message: "must be an array"}}
	}
	var errs []ValidationError
	for i, el := range arr {
		elPath := fmt.Sprintf("%s[%d]", path, i)
		if el == nil && (f.Nullable || w.nullElems[decl]) {
			continue
		}
		if last {
			errs = append(errs, f.check(el, elPath)...)
			continue
		}
		errs = append(errs, w.walk(el, segs[1:], elPath, decl+"[]")...)
	}
	return errs
}

func (f Field) check(v any, path string) []ValidationError {
	if matches(f.Kind, v) {
		return nil
	}
	return []ValidationError{{Field: path, Message: "must be a " + f.Kind.String()}}
}

func matches(kind Kind, v any) bool {
	switch kind {
	case String:
		_, ok := v.(string)
		return ok
	case Number:
		return isNumber(v)
	case Bool:
		_, ok := v.(bool)
		return ok
	case Object:
		_, ok := v.(map[string]any)
		return ok
	case Array:
		_, ok := v.([]any)
		return ok
	case StringOrNumber:
		_, ok := v.(string)
		return ok || isNumber(v)
	default:
		return false
	}
}

func isNumber(v any) bool {
	switch v.(type) {
	case json.Number, float64, int, int64:
		return true
	default:
		return false
	}
}

func join(trail, name string) string {
	if trail == "" {
		return name
	}
	return trail + "." + name
}

func pathOrRoot(trail string) string {
	if trail == "" {
		return "$"
	}
	return trail
}
