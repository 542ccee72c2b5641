package testutil

// Env is a fake process environment.
//
// Example usage:
//
//	env := testutil.Env{"OP_SESSION_my": "token"}
//	deps := transform.Deps{LookupEnv: env.Lookup}
type Env map[string]string

// Lookup has the signature of os.LookupEnv.
func (e Env) Lookup(key string) (string, bool) {
	v, ok := e[key]
	return v, ok
}

// Getenv has the signature of os.Getenv.
func (e Env) Getenv(key string) string {
	return e[key]
}
