package envoke

import (
	"fmt"
	"reflect"
	"strings"

	"go.uber.org/multierr"
)

// Node is a resolvable schema: *RecordSchema or *VariantSchema.
type Node interface {
	node()
}

// Default is the fallback used when no candidate key is present.
// A Func is called on every resolution; otherwise Value is used as is.
// Defaults are never parsed or validated.
type Default struct {
	Value any
	Func  func() any
}

// Static returns a Default holding v.
func Static(v any) *Default { return &Default{Value: v} }

// Computed returns a Default that calls fn.
func Computed(fn func() any) *Default { return &Default{Func: fn} }

func (d *Default) value() any {
	if d.Func != nil {
		return d.Func()
	}
	return d.Value
}

// Transform converts the raw string in two steps: it is first parsed as
// ArgType, then handed to Fn.
type Transform struct {
	ArgType Type
	Fn      func(arg any) (any, error)
}

// TransformFunc builds an infallible Transform.
func TransformFunc[A, T any](arg Type, fn func(A) T) *Transform {
	return TryTransformFunc(arg, func(a A) (T, error) { return fn(a), nil })
}

// TryTransformFunc builds a Transform whose error is reported as a parse failure.
func TryTransformFunc[A, T any](arg Type, fn func(A) (T, error)) *Transform {
	return &Transform{
		ArgType: arg,
		Fn: func(v any) (any, error) {
			a, ok := v.(A)
			if !ok {
				var want A
				return nil, fmt.Errorf("transform expects %T, got %T", want, v)
			}
			out, err := fn(a)
			if err != nil {
				return nil, err
			}
			return out, nil
		},
	}
}

// Validation holds the hooks run on a value read from a source.
// Before sees the parse argument (ArgType when a Transform is set), After the final value.
type Validation struct {
	Before func(any) error
	After  func(any) error
}

// Check adapts a typed predicate to a Validation hook.
func Check[T any](fn func(T) error) func(any) error {
	return func(v any) error {
		t, ok := v.(T)
		if !ok {
			var want T
			return fmt.Errorf("expected %T, got %T", want, v)
		}
		return fn(t)
	}
}

// Field describes how one value is resolved.
//
// Env lists candidate names tried in order; each goes through the Naming in
// effect. FromEnv with an empty Env derives the single candidate from Name.
// A field with Nested set resolves a nested schema and must not declare Env,
// Default or Parse.
type Field struct {
	Name          string
	Type          Type
	Env           []string
	FromEnv       bool
	Default       *Default
	Parse         *Transform
	Validate      Validation
	Delimiter     string // collection item delimiter, "," when empty
	PairDelimiter string // map key/value delimiter, "=" when empty
	NoPrefix      bool
	NoSuffix      bool
	Naming        *Naming // overrides the inherited naming
	Nested        Node
}

func (f *Field) hasEnv() bool { return f.FromEnv || len(f.Env) > 0 }

func (f *Field) optional() bool { return IsOptional(f.Type) }

// keys returns the concrete lookup keys in declaration order.
func (f *Field) keys(n Naming) []string {
	names := f.Env
	if len(names) == 0 {
		if !f.FromEnv {
			return nil
		}
		names = []string{f.Name}
	}
	keys := make([]string, len(names))
	for i, name := range names {
		keys[i] = n.Key(strings.TrimSpace(name), f.NoPrefix, f.NoSuffix)
	}
	return keys
}

// RecordSchema is an ordered list of fields sharing a naming configuration.
// A nil Naming inherits the enclosing one.
type RecordSchema struct {
	Naming *Naming
	Fields []Field
}

func (*RecordSchema) node() {}

// VariantCase is one alternative of a VariantSchema.
//
// With a discriminant the case is selected when the discriminant equals one of
// Values (Name when empty) or Aliases. Name and Aliases are recased with the
// variant naming's Case before comparing; Values are compared verbatim.
type VariantCase struct {
	Name    string
	Values  []string
	Aliases []string
	Default bool // selected when the discriminant matches no case
	Schema  *RecordSchema
}

func (c *VariantCase) matchValues(cs Case) []string {
	out := make([]string, 0, len(c.Values)+len(c.Aliases)+1)
	if len(c.Values) > 0 {
		out = append(out, c.Values...)
	} else {
		out = append(out, cs.Apply(c.Name))
	}
	for _, a := range c.Aliases {
		out = append(out, cs.Apply(a))
	}
	return out
}

// VariantSchema is a tagged union of record schemas.
// Without a Discriminant the cases are tried in order and the first that
// resolves wins.
type VariantSchema struct {
	Naming       *Naming
	Discriminant *Field
	Cases        []VariantCase
}

func (*VariantSchema) node() {}

// inherit picks the naming for a nested schema: an explicit field override,
// then the schema's own, then the parent's.
func inherit(parent Naming, own, override *Naming) Naming {
	switch {
	case override != nil:
		return *override
	case own != nil:
		return *own
	default:
		return parent
	}
}

// Validate checks n for construction errors without looking anything up.
// Every problem found is returned as a *SchemaError, combined with multierr.
func Validate(n Node) error {
	v := &schemaValidator{stack: make(map[Node]bool)}
	v.node(n, nil)
	return v.errs
}

type schemaValidator struct {
	stack map[Node]bool
	errs  error
}

func (v *schemaValidator) fail(path []string, format string, args ...any) {
	v.errs = multierr.Append(v.errs, &SchemaError{Path: path, Reason: fmt.Sprintf(format, args...)})
}

func (v *schemaValidator) node(n Node, path []string) {
	if isNilNode(n) {
		v.fail(path, "schema is nil")
		return
	}
	if v.stack[n] {
		v.fail(path, "schema contains itself")
		return
	}
	v.stack[n] = true
	defer delete(v.stack, n)

	switch s := n.(type) {
	case *RecordSchema:
		v.record(s, path)
	case *VariantSchema:
		v.variant(s, path)
	default:
		v.fail(path, "unsupported schema node %T", n)
	}
}

func (v *schemaValidator) naming(n *Naming, path []string) {
	if n != nil && !n.Case.valid() {
		v.fail(path, "invalid naming convention %d", int(n.Case))
	}
}

func (v *schemaValidator) record(s *RecordSchema, path []string) {
	v.naming(s.Naming, path)

	seen := make(map[string]bool, len(s.Fields))
	for i := range s.Fields {
		f := &s.Fields[i]
		if f.Name == "" {
			v.fail(path, "field %d has no name", i)
			continue
		}
		if seen[f.Name] {
			v.fail(path, "duplicate field %q", f.Name)
		}
		seen[f.Name] = true
		v.field(f, childPath(path, f.Name))
	}
}

func (v *schemaValidator) field(f *Field, path []string) {
	v.naming(f.Naming, path)

	if !isNilNode(f.Nested) {
		if f.hasEnv() || f.Default != nil || f.Parse != nil {
			v.fail(path, "nested field cannot declare env, default or parse")
		}
		v.node(f.Nested, path)
		return
	}
	if f.Nested != nil {
		v.fail(path, "nested schema is nil")
		return
	}

	if f.Type == nil {
		v.fail(path, "field has no type")
	} else {
		v.valueType(f.Type, path)
	}
	if f.Default != nil && f.Default.Value != nil && f.Default.Func != nil {
		v.fail(path, "both a static and a computed default are set")
	}
	if f.Parse != nil {
		switch {
		case f.Parse.ArgType == nil:
			v.fail(path, "parse function without an argument type")
		case f.Parse.Fn == nil:
			v.fail(path, "parse argument type without a function")
		default:
			v.valueType(f.Parse.ArgType, path)
		}
	}
	if !f.hasEnv() && f.Default == nil && !f.optional() {
		v.fail(path, "field has no source: declare env, a default or an optional type")
	}
	v.env(f.Env, path)

	parsed := f.Type
	if f.Parse != nil && f.Parse.ArgType != nil {
		parsed = f.Parse.ArgType
	}
	if _, ok := elemType(parsed).(mapping); ok {
		d := Delimiters{Item: f.Delimiter, Pair: f.PairDelimiter}
		if d.item() == d.pair() {
			v.fail(path, "item delimiter %q equals the pair delimiter", d.item())
		}
	}
}

func (v *schemaValidator) env(names []string, path []string) {
	seen := make(map[string]bool, len(names))
	for i, name := range names {
		name = strings.TrimSpace(name)
		switch {
		case name == "":
			v.fail(path, "env entry %d is empty", i)
		case seen[name]:
			v.fail(path, "duplicate env key %q", name)
		}
		seen[name] = true
	}
}

func (v *schemaValidator) valueType(t Type, path []string) {
	switch tt := elemType(t).(type) {
	case sequence:
		if !isScalar(tt.elem) {
			v.fail(path, "%s: element type must be a scalar", tt.Name())
		}
	case mapping:
		if !isScalar(tt.key) {
			v.fail(path, "%s: key type must be a scalar", tt.Name())
		}
		if !isScalar(tt.val) {
			v.fail(path, "%s: value type must be a scalar", tt.Name())
		}
	case nil:
		v.fail(path, "optional of nil type")
	}
}

func (v *schemaValidator) variant(s *VariantSchema, path []string) {
	v.naming(s.Naming, path)
	if len(s.Cases) == 0 {
		v.fail(path, "variant schema has no cases")
		return
	}

	var cs Case
	if s.Naming != nil {
		cs = s.Naming.Case
	}
	if s.Discriminant != nil {
		d := s.Discriminant
		dpath := childPath(path, d.Name)
		if d.Name == "" {
			v.fail(path, "discriminant has no name")
		}
		if !isNilNode(d.Nested) {
			v.fail(dpath, "discriminant cannot be nested")
		} else {
			if d.Type != nil && !isScalar(elemType(d.Type)) {
				v.fail(dpath, "discriminant must be a scalar")
			}
			if !d.hasEnv() && d.Default == nil && !d.optional() {
				v.fail(dpath, "discriminant has no source")
			}
		}
	}

	names := make(map[string]bool, len(s.Cases))
	values := make(map[string]string)
	defaults := 0
	for i := range s.Cases {
		c := &s.Cases[i]
		if c.Name == "" {
			v.fail(path, "case %d has no name", i)
			continue
		}
		if names[c.Name] {
			v.fail(path, "duplicate case %q", c.Name)
		}
		names[c.Name] = true
		if c.Default {
			defaults++
		}
		if s.Discriminant != nil {
			for _, m := range c.matchValues(cs) {
				if prev, dup := values[m]; dup {
					v.fail(path, "cases %q and %q both match %q", prev, c.Name, m)
					continue
				}
				values[m] = c.Name
			}
		}
		if c.Schema == nil {
			v.fail(path, "case %q has no schema", c.Name)
			continue
		}
		v.node(c.Schema, path)
	}

	switch {
	case defaults > 1:
		v.fail(path, "%d default cases, at most one allowed", defaults)
	case defaults == 1 && s.Discriminant == nil:
		v.fail(path, "a default case requires a discriminant")
	}
}

// isNilNode reports whether n is nil or a typed nil pointer.
func isNilNode(n Node) bool {
	if n == nil {
		return true
	}
	rv := reflect.ValueOf(n)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// caseNames lists case names for log and error messages.
func caseNames(cases []VariantCase) string {
	names := make([]string, len(cases))
	for i := range cases {
		names[i] = cases[i].Name
	}
	return strings.Join(names, ", ")
}
