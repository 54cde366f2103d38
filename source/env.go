package source

import (
	"os"
	"strings"
)

// Environ reads the live process environment on every lookup.
// Concurrent mutation of the environment during resolution is visible; use
// Snapshot when resolution must observe a single point in time.
type Environ struct {
	lookup func(string) (string, bool)
}

// Env returns a Source backed by os.LookupEnv.
// A variable that is set to the empty string is present.
func Env() Environ {
	return Environ{lookup: os.LookupEnv}
}

func (e Environ) Lookup(key string) (string, bool) {
	return e.lookup(key)
}

// Snapshot copies the current process environment into a Map.
func Snapshot() Map {
	return SnapshotOf(os.Environ)
}

// SnapshotOf builds a Map from KEY=VALUE pairs returned by environ.
// Entries without '=' are skipped; the value keeps any further '=' characters.
func SnapshotOf(environ func() []string) Map {
	pairs := environ()
	m := make(Map, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			continue
		}
		m[k] = v
	}
	return m
}
