package envoke

// Source is the lookup capability the engine resolves against.
// Absence is reported through ok, never as an error.
//
// Implementations for the process environment, dotenv files and structured
// documents live in the source subpackage.
type Source interface {
	Lookup(key string) (value string, ok bool)
}

// SourceFunc adapts a plain function to Source.
type SourceFunc func(key string) (string, bool)

// Lookup calls f(key).
func (f SourceFunc) Lookup(key string) (string, bool) { return f(key) }
