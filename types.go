package envoke

import (
	"encoding"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Default collection delimiters. There is no escaping: a delimiter inside a
// value cannot be told apart from a separator.
const (
	DefaultItemDelimiter = ","
	DefaultPairDelimiter = "="
)

var (
	errEmptyElement = errors.New("empty element")
	errMissingKey   = errors.New("key-value pair has no key")
	errMissingValue = errors.New("key-value pair has no value")
)

// Delimiters split collection values.
type Delimiters struct {
	Item string // between elements
	Pair string // between a map key and its value
}

func (d Delimiters) item() string {
	if d.Item == "" {
		return DefaultItemDelimiter
	}
	return d.Item
}

func (d Delimiters) pair() string {
	if d.Pair == "" {
		return DefaultPairDelimiter
	}
	return d.Pair
}

// Type converts a raw string into a typed value.
type Type interface {
	Name() string
	Parse(raw string, d Delimiters) (any, error)
}

type scalar struct {
	name  string
	parse func(string) (any, error)
}

func (s scalar) Name() string { return s.name }

// Parse trims surrounding whitespace before converting.
func (s scalar) Parse(raw string, _ Delimiters) (any, error) {
	return s.parse(strings.TrimSpace(raw))
}

// Scalar builds a Type from a conversion function.
func Scalar[T any](name string, fn func(string) (T, error)) Type {
	return scalar{
		name: name,
		parse: func(s string) (any, error) {
			v, err := fn(s)
			if err != nil {
				return nil, err
			}
			return v, nil
		},
	}
}

// Text builds a Type for any type whose pointer implements encoding.TextUnmarshaler.
//
//	ip := envoke.Text[net.IP]("ip")
func Text[T any, PT interface {
	*T
	encoding.TextUnmarshaler
}](name string) Type {
	return Scalar(name, func(s string) (T, error) {
		var v T
		err := PT(&v).UnmarshalText([]byte(s))
		return v, err
	})
}

// Built-in scalar types.
var (
	String   = Scalar("string", func(s string) (string, error) { return s, nil })
	Bool     = Scalar("bool", strconv.ParseBool)
	Int      = Scalar("int", strconv.Atoi)
	Int8     = Scalar("int8", func(s string) (int8, error) { n, err := strconv.ParseInt(s, 10, 8); return int8(n), err })
	Int16    = Scalar("int16", func(s string) (int16, error) { n, err := strconv.ParseInt(s, 10, 16); return int16(n), err })
	Int32    = Scalar("int32", func(s string) (int32, error) { n, err := strconv.ParseInt(s, 10, 32); return int32(n), err })
	Int64    = Scalar("int64", func(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) })
	Uint     = Scalar("uint", func(s string) (uint, error) { n, err := strconv.ParseUint(s, 10, 0); return uint(n), err })
	Uint8    = Scalar("uint8", func(s string) (uint8, error) { n, err := strconv.ParseUint(s, 10, 8); return uint8(n), err })
	Uint16   = Scalar("uint16", func(s string) (uint16, error) { n, err := strconv.ParseUint(s, 10, 16); return uint16(n), err })
	Uint32   = Scalar("uint32", func(s string) (uint32, error) { n, err := strconv.ParseUint(s, 10, 32); return uint32(n), err })
	Uint64   = Scalar("uint64", func(s string) (uint64, error) { return strconv.ParseUint(s, 10, 64) })
	Float32  = Scalar("float32", func(s string) (float32, error) { f, err := strconv.ParseFloat(s, 32); return float32(f), err })
	Float64  = Scalar("float64", func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
	Duration = Scalar("duration", time.ParseDuration)
	URL      = Scalar("url", url.Parse)
)

type optional struct {
	elem Type
}

// Optional marks t as optional: when no source key is present and no default
// is declared the field resolves to nil instead of failing.
func Optional(t Type) Type {
	if IsOptional(t) {
		return t
	}
	return optional{elem: t}
}

func (o optional) Name() string { return "optional " + o.elem.Name() }

func (o optional) Parse(raw string, d Delimiters) (any, error) { return o.elem.Parse(raw, d) }

// IsOptional reports whether t was built with Optional.
func IsOptional(t Type) bool {
	_, ok := t.(optional)
	return ok
}

type sequence struct {
	elem   Type
	unique bool
}

// SliceOf parses delimited values into a []any of elem values.
// Empty input yields an empty slice.
func SliceOf(elem Type) Type { return sequence{elem: elem} }

// SetOf is SliceOf without duplicates; the first occurrence keeps its position.
func SetOf(elem Type) Type { return sequence{elem: elem, unique: true} }

func (s sequence) Name() string {
	if s.unique {
		return "set of " + s.elem.Name()
	}
	return "slice of " + s.elem.Name()
}

func (s sequence) Parse(raw string, d Delimiters) (any, error) {
	segments := splitItems(raw, d.item())
	out := make([]any, 0, len(segments))
	var seen map[any]struct{}
	if s.unique {
		seen = make(map[any]struct{}, len(segments))
	}

	for i, seg := range segments {
		v, err := parseSegment(s.elem, seg, i, d)
		if err != nil {
			return nil, err
		}
		if s.unique {
			if containsValue(out, seen, v) {
				continue
			}
		}
		out = append(out, v)
	}
	return out, nil
}

// containsValue reports whether v is already in out, recording it in seen when hashable.
func containsValue(out []any, seen map[any]struct{}, v any) bool {
	if hashable(v) {
		if _, dup := seen[v]; dup {
			return true
		}
		seen[v] = struct{}{}
		return false
	}
	for _, o := range out {
		if reflect.DeepEqual(o, v) {
			return true
		}
	}
	return false
}

// hashable reports whether v can be used as a map key or compared with ==.
// net.IP and other slice-backed values cannot.
func hashable(v any) bool {
	return v != nil && reflect.TypeOf(v).Comparable()
}

func sameValue(a, b any) bool {
	if hashable(a) && hashable(b) {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

// Pair is one key/value entry of a parsed map.
type Pair struct {
	Key   any
	Value any
}

// Pairs is a parsed map that keeps the order keys first appeared in.
// A repeated key keeps its first position and takes the last value.
type Pairs []Pair

// Get returns the value stored under key.
func (p Pairs) Get(key any) (any, bool) {
	if i := p.index(key); i >= 0 {
		return p[i].Value, true
	}
	return nil, false
}

// index returns the position of key in p, or -1.
func (p Pairs) index(key any) int {
	for i, kv := range p {
		if sameValue(kv.Key, key) {
			return i
		}
	}
	return -1
}

// Map converts p into a map keyed by the string form of each key.
func (p Pairs) Map() map[string]any {
	out := make(map[string]any, len(p))
	for _, kv := range p {
		out[fmt.Sprint(kv.Key)] = kv.Value
	}
	return out
}

type mapping struct {
	key, val Type
}

// MapOf parses "k=v,k=v" into Pairs. Each element is split on the first pair delimiter.
func MapOf(key, val Type) Type { return mapping{key: key, val: val} }

func (m mapping) Name() string { return "map of " + m.key.Name() + " to " + m.val.Name() }

func (m mapping) Parse(raw string, d Delimiters) (any, error) {
	segments := splitItems(raw, d.item())
	out := make(Pairs, 0, len(segments))
	index := make(map[any]int, len(segments))

	for i, seg := range segments {
		k, v, ok := strings.Cut(seg, d.pair())
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		switch {
		case strings.TrimSpace(seg) == "":
			return nil, &ParseError{Segment: seg, Index: i, Type: m.Name(), Err: errEmptyElement}
		case k == "":
			return nil, &ParseError{Segment: seg, Index: i, Type: m.Name(), Err: errMissingKey}
		case !ok || v == "":
			return nil, &ParseError{Segment: seg, Index: i, Type: m.Name(), Err: errMissingValue}
		}

		pk, err := m.key.Parse(k, d)
		if err != nil {
			return nil, &ParseError{Segment: seg, Index: i, Type: m.key.Name(), Err: err}
		}
		pv, err := m.val.Parse(v, d)
		if err != nil {
			return nil, &ParseError{Segment: seg, Index: i, Type: m.val.Name(), Err: err}
		}

		j := -1
		if hashable(pk) {
			if at, dup := index[pk]; dup {
				j = at
			} else {
				index[pk] = len(out)
			}
		} else {
			j = out.index(pk)
		}
		if j >= 0 {
			out[j].Value = pv
			continue
		}
		out = append(out, Pair{Key: pk, Value: pv})
	}
	return out, nil
}

func splitItems(raw, delim string) []string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, delim)
}

func parseSegment(elem Type, seg string, i int, d Delimiters) (any, error) {
	if strings.TrimSpace(seg) == "" {
		return nil, &ParseError{Segment: seg, Index: i, Type: elem.Name(), Err: errEmptyElement}
	}
	v, err := elem.Parse(seg, d)
	if err != nil {
		return nil, &ParseError{Segment: seg, Index: i, Type: elem.Name(), Err: err}
	}
	return v, nil
}

// isScalar reports whether t parses a single value rather than a collection.
func isScalar(t Type) bool {
	switch t.(type) {
	case sequence, mapping, optional:
		return false
	}
	return t != nil
}

// elemType strips Optional.
func elemType(t Type) Type {
	if o, ok := t.(optional); ok {
		return o.elem
	}
	return t
}
