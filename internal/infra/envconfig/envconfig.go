package envconfig

import (
	"os"
	"strings"
)

// Environment is a point-in-time view of process environment variables.
// Resolution never reads the process environment directly so tests can
// present arbitrary layered input.
type Environment map[string]string

// FromOS captures the current process environment.
func FromOS() Environment {
	env := make(Environment)
	for _, kv := range os.Environ() {
		if i := strings.IndexByte(kv, '='); i > 0 {
			env[kv[:i]] = kv[i+1:]
		}
	}
	return env
}

// Get returns the trimmed value for key, or "" when unset.
func (e Environment) Get(key string) string {
	return strings.TrimSpace(e[key])
}

// Has reports whether key is set to a non-empty value.
func (e Environment) Has(key string) bool {
	return e.Get(key) != ""
}
