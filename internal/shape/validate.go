// Package shape checks the key set of decoded configuration mappings.
//
// Configuration documents decoded by encoding/json or gopkg.in/yaml.v3 arrive
// as generic values. Validate confirms a value is a mapping carrying exactly
// the keys a backend expects and returns a normalized copy of it.
package shape

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrTypeMismatch is matched by *TypeError.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrMissingProperties is matched by *MissingPropertiesError.
	ErrMissingProperties = errors.New("missing required properties")
	// ErrUnexpectedProperties is matched by *UnexpectedPropertiesError.
	ErrUnexpectedProperties = errors.New("unexpected properties")
)

// TypeError reports a value whose JSON shape is not the one expected.
type TypeError struct {
	Context  string // optional prefix, e.g. "ENV"
	Expected string
	Found    string
}

func (e *TypeError) Error() string {
	prefix := ""
	if e.Context != "" {
		prefix = fmt.Sprintf("unexpected value for %s type: ", e.Context)
	}
	if e.Found == "null" {
		return fmt.Sprintf("%sexpected %s, found null", prefix, article(e.Expected))
	}
	return fmt.Sprintf("%sexpected %s, found %s", prefix, article(e.Expected), article(e.Found))
}

func (e *TypeError) Unwrap() error { return ErrTypeMismatch }

// MissingPropertiesError reports required keys absent from a mapping.
type MissingPropertiesError struct {
	Required []string
	Missing  []string
}

func (e *MissingPropertiesError) Error() string {
	return fmt.Sprintf("missing required properties: %s", strings.Join(e.Missing, ", "))
}

func (e *MissingPropertiesError) Unwrap() error { return ErrMissingProperties }

// UnexpectedPropertiesError reports keys outside the allowed set.
type UnexpectedPropertiesError struct {
	Allowed    []string
	Unexpected []string
}

func (e *UnexpectedPropertiesError) Error() string {
	return fmt.Sprintf("unexpected properties found: %s", strings.Join(e.Unexpected, ", "))
}

func (e *UnexpectedPropertiesError) Unwrap() error { return ErrUnexpectedProperties }

// Validate checks that object is a mapping holding every key in required and,
// unless allowUnknown is set, no key outside required and optional.
//
// The returned map holds each required key and each optional key present in
// object, with values copied verbatim. Absent optional keys are omitted and
// unknown keys are dropped even when allowed.
func Validate(object any, required, optional []string, allowUnknown bool) (map[string]any, error) {
	m, ok := AsMapping(object)
	if !ok {
		return nil, &TypeError{Expected: "object", Found: Describe(object)}
	}

	var missing []string
	for _, k := range required {
		if _, ok := m[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingPropertiesError{
			Required: append([]string(nil), required...),
			Missing:  missing,
		}
	}

	if !allowUnknown {
		allowed := make(map[string]struct{}, len(required)+len(optional))
		allowedList := make([]string, 0, len(required)+len(optional))
		for _, k := range append(append([]string(nil), required...), optional...) {
			if _, dup := allowed[k]; !dup {
				allowed[k] = struct{}{}
				allowedList = append(allowedList, k)
			}
		}
		var unexpected []string
		for k := range m {
			if _, ok := allowed[k]; !ok {
				unexpected = append(unexpected, k)
			}
		}
		if len(unexpected) > 0 {
			sort.Strings(unexpected)
			return nil, &UnexpectedPropertiesError{Allowed: allowedList, Unexpected: unexpected}
		}
	}

	out := make(map[string]any, len(required)+len(optional))
	for _, k := range required {
		out[k] = m[k]
	}
	for _, k := range optional {
		if v, ok := m[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

// AsMapping returns v as a string-keyed map when it is one of the mapping
// types produced by encoding/json or gopkg.in/yaml.v3. Nil maps are not mappings.
func AsMapping(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		if m == nil {
			return nil, false
		}
		return m, true
	case map[any]any:
		if m == nil {
			return nil, false
		}
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	case map[string]string:
		if m == nil {
			return nil, false
		}
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[k] = val
		}
		return out, true
	default:
		return nil, false
	}
}

// Describe names the JSON type of a decoded value.
func Describe(v any) string {
	switch m := v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return "number"
	case []any, []string:
		return "array"
	case map[string]any:
		if m == nil {
			return "null"
		}
		return "object"
	case map[any]any:
		if m == nil {
			return "null"
		}
		return "object"
	case map[string]string:
		if m == nil {
			return "null"
		}
		return "object"
	}
	return fmt.Sprintf("%T", v)
}

func article(noun string) string {
	if noun == "" {
		return noun
	}
	switch noun[0] {
	case 'a', 'e', 'i', 'o', 'u':
		return "an " + noun
	}
	return "a " + noun
}
