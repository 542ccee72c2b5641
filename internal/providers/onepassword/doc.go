// Package onepassword drives the 1Password CLI (`op`) as a subprocess.
//
// A Runner owns the session token for one account. Before every command it
// probes the current session with `op signin --raw` and, when the session is
// missing or expired, performs an interactive signin: either asking for the
// master password through an injected Asker and piping it to `op`, or
// letting `op` read the password from the inherited terminal.
//
// Client builds item lookups on top of a Runner and decodes the JSON `op`
// prints. Item understands both the v1 (`op get item`) and v2
// (`op item get --format json`) item layouts.
//
// The token is seeded from OP_SESSION_<account>, kept in a memguard enclave
// and never written to disk.
package onepassword
