package transform

import (
	"fmt"
	"sort"

	"github.com/systmms/confsecrets/internal/shape"
)

// Variant tags recognized as the single key of a configuration mapping.
const (
	TagRaw         = "RAW"
	TagEnv         = "ENV"
	TagKeychain    = "KEYCHAIN"
	TagOnePassword = "1PASSWORD"
	TagAsk         = "ASK"
)

// Variant is the classification of a configuration value. It is implemented
// only by Raw, Env, Keychain, OnePassword, Ask and Unknown.
type Variant interface {
	// Tag returns the variant tag, or "" for Unknown.
	Tag() string
	isVariant()
}

// Raw is a value passed through verbatim: any non-mapping, an empty mapping
// or a {RAW: ...} mapping (which is returned whole).
type Raw struct{ Value any }

// Env references an environment variable.
type Env struct{ Payload any }

// Keychain references an OS keychain entry.
type Keychain struct{ Payload any }

// OnePassword references a field of a 1Password item.
type OnePassword struct{ Payload any }

// Ask asks the operator for the value.
type Ask struct{ Payload any }

// Unknown is a mapping with several keys or an unrecognized single key.
type Unknown struct{ Keys []string }

func (Raw) Tag() string         { return TagRaw }
func (Env) Tag() string         { return TagEnv }
func (Keychain) Tag() string    { return TagKeychain }
func (OnePassword) Tag() string { return TagOnePassword }
func (Ask) Tag() string         { return TagAsk }
func (Unknown) Tag() string     { return "" }

func (Raw) isVariant()         {}
func (Env) isVariant()         {}
func (Keychain) isVariant()    {}
func (OnePassword) isVariant() {}
func (Ask) isVariant()         {}
func (Unknown) isVariant()     {}

// Classify determines the variant of a decoded configuration value.
func Classify(value any) Variant {
	m, ok := shape.AsMapping(value)
	if !ok {
		return Raw{Value: value}
	}

	switch len(m) {
	case 0:
		return Raw{Value: value}
	case 1:
	default:
		return Unknown{Keys: sortedKeys(m)}
	}

	for key, payload := range m {
		switch key {
		case TagRaw:
			return Raw{Value: value}
		case TagEnv:
			return Env{Payload: payload}
		case TagKeychain:
			return Keychain{Payload: payload}
		case TagOnePassword:
			return OnePassword{Payload: payload}
		case TagAsk:
			return Ask{Payload: payload}
		}
	}
	return Unknown{Keys: sortedKeys(m)}
}

// optionsKey returns the lowercase options entry for a tag.
func optionsKey(tag string) string {
	switch tag {
	case TagEnv:
		return "env"
	case TagKeychain:
		return "keychain"
	case TagOnePassword:
		return "1password"
	case TagAsk:
		return "ask"
	}
	panic(fmt.Sprintf("transform: no options for tag %q", tag))
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
