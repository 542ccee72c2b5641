package transform

import (
	"time"

	"github.com/systmms/confsecrets/internal/shape"
)

// Options are resolution options. Top-level keys apply to every variant;
// the lowercase entries "env", "keychain", "1password" and "ask" hold
// per-variant overrides.
type Options map[string]any

// For returns the effective options of a variant: the top-level options
// shallow-merged with the variant's own entry, whose keys win. The result
// never holds a typeName key, so For is idempotent. A missing or non-mapping
// entry counts as empty.
func (o Options) For(typeName string) Options {
	out := make(Options, len(o))
	for k, v := range o {
		out[k] = v
	}
	if sub, ok := shape.AsMapping(o[typeName]); ok {
		for k, v := range sub {
			out[k] = v
		}
	}
	delete(out, typeName)
	return out
}

// Bool returns the boolean stored at key, or def when absent or not a boolean.
func (o Options) Bool(key string, def bool) bool {
	if b, ok := o[key].(bool); ok {
		return b
	}
	return def
}

// String returns the string stored at key, or def when absent or not a string.
func (o Options) String(key, def string) string {
	if s, ok := o[key].(string); ok {
		return s
	}
	return def
}

// Duration reads a number of milliseconds stored at key. Absent, non-numeric
// and negative values yield def.
func (o Options) Duration(key string, def time.Duration) time.Duration {
	var ms float64
	switch n := o[key].(type) {
	case int:
		ms = float64(n)
	case int64:
		ms = float64(n)
	case uint64:
		ms = float64(n)
	case float64:
		ms = n
	default:
		return def
	}
	if ms < 0 {
		return def
	}
	return time.Duration(ms * float64(time.Millisecond))
}
