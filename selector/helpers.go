package selector

import (
	"sort"
	"strings"
)

// Options control how a lookup key is split and matched against map keys.
type Options struct {
	// Separator splits a key into path tokens. Empty means the key is a single token.
	Separator string
	// FoldCase matches map keys case-insensitively when no exact key exists.
	FoldCase bool
}

// Split breaks key into path tokens on sep.
//
// Examples:
//
//	Split("server.host", ".")   → ["server", "host"]
//	Split("SERVER_HOST", "_")   → ["SERVER", "HOST"]
//	Split("server.host", "")    → ["server.host"]
func Split(key, sep string) []string {
	if sep == "" {
		return []string{key}
	}
	return strings.Split(key, sep)
}

// lookupKey finds name in m. An exact key always wins; with fold the
// lexicographically first case-insensitive match is used so results are stable.
func lookupKey(m map[string]any, name string, fold bool) (any, bool) {
	if v, ok := m[name]; ok {
		return v, true
	}
	if !fold {
		return nil, false
	}
	var candidates []string
	for k := range m {
		if strings.EqualFold(k, name) {
			candidates = append(candidates, k)
		}
	}
	if len(candidates) == 0 {
		return nil, false
	}
	sort.Strings(candidates)
	return m[candidates[0]], true
}
