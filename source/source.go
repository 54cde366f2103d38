// Package source provides the lookup sources envoke resolves against: the
// process environment, dotenv files, structured configuration documents and
// ordered combinations of them.
//
// Every type here satisfies envoke.Source:
//
//	Lookup(key string) (string, bool)
//
// Absence is reported with ok=false, never with an error.
package source

// Source looks up raw string values by key.
type Source interface {
	Lookup(key string) (string, bool)
}

// Func adapts a plain function to a Source.
type Func func(key string) (string, bool)

func (f Func) Lookup(key string) (string, bool) { return f(key) }

// Map is an in-memory Source. Useful for tests and for file-backed overlays.
type Map map[string]string

func (m Map) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// Overlay returns a Source that consults layers in order.
// The first layer holding the key wins; later layers are only used for keys
// the earlier ones lack.
func Overlay(layers ...Source) Source {
	return overlay(layers)
}

type overlay []Source

func (o overlay) Lookup(key string) (string, bool) {
	for _, l := range o {
		if l == nil {
			continue
		}
		if v, ok := l.Lookup(key); ok {
			return v, true
		}
	}
	return "", false
}
