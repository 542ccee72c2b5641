package transform

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnresolvedReference is matched by *UnresolvedReferenceError.
	ErrUnresolvedReference = errors.New("unresolved reference")
	// ErrUnsupportedVariant is matched by *UnsupportedVariantError.
	ErrUnsupportedVariant = errors.New("unsupported value type")
	// ErrNoKeychain is returned for KEYCHAIN references when no keychain is configured.
	ErrNoKeychain = errors.New("no keychain is configured")
	// ErrNotInteractive is returned for ASK references when nobody can answer.
	ErrNotInteractive = errors.New("cannot ask for a value in non-interactive mode")
)

// UnresolvedReferenceError reports a reference whose target does not exist.
// Fields identifies the target: "name" for ENV, "service" and "account" for
// KEYCHAIN, "uuid" and "field" for 1PASSWORD.
type UnresolvedReferenceError struct {
	Variant string
	Fields  map[string]string
}

func (e *UnresolvedReferenceError) Error() string {
	switch e.Variant {
	case TagEnv:
		return fmt.Sprintf("the requested environment variable %q is not defined", e.Fields["name"])
	case TagKeychain:
		return fmt.Sprintf("could not find keychain entry for account %s and service %s", e.Fields["account"], e.Fields["service"])
	case TagOnePassword:
		return fmt.Sprintf("could not find field %q in 1password item %q", e.Fields["field"], e.Fields["uuid"])
	}
	return fmt.Sprintf("could not resolve %s reference", e.Variant)
}

func (e *UnresolvedReferenceError) Unwrap() error { return ErrUnresolvedReference }

// UnsupportedVariantError reports a mapping that names no known variant.
type UnsupportedVariantError struct {
	Keys []string
}

func (e *UnsupportedVariantError) Error() string {
	return fmt.Sprintf("unsupported value type: expected a single key of %s, found keys: %s",
		strings.Join([]string{TagRaw, TagEnv, TagKeychain, TagOnePassword, TagAsk}, ", "),
		strings.Join(e.Keys, ", "))
}

func (e *UnsupportedVariantError) Unwrap() error { return ErrUnsupportedVariant }
