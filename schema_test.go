package envoke

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	leaf := func(name string) Field { return Field{Name: name, Type: String, FromEnv: true} }

	tests := []struct {
		name   string
		node   Node
		reason string
	}{
		{
			name:   "nil schema",
			node:   (*RecordSchema)(nil),
			reason: "schema is nil",
		},
		{
			name:   "empty field name",
			node:   &RecordSchema{Fields: []Field{{Type: String, FromEnv: true}}},
			reason: "field 0 has no name",
		},
		{
			name:   "duplicate field",
			node:   &RecordSchema{Fields: []Field{leaf("a"), leaf("a")}},
			reason: `duplicate field "a"`,
		},
		{
			name: "both default forms",
			node: &RecordSchema{Fields: []Field{{
				Name: "a", Type: Int, FromEnv: true,
				Default: &Default{Value: 1, Func: func() any { return 2 }},
			}}},
			reason: "both a static and a computed default are set",
		},
		{
			name: "transform without argument type",
			node: &RecordSchema{Fields: []Field{{
				Name: "a", Type: Int, FromEnv: true,
				Parse: &Transform{Fn: func(v any) (any, error) { return v, nil }},
			}}},
			reason: "parse function without an argument type",
		},
		{
			name:   "leaf without type",
			node:   &RecordSchema{Fields: []Field{{Name: "a", FromEnv: true}}},
			reason: "field has no type",
		},
		{
			name:   "field without source",
			node:   &RecordSchema{Fields: []Field{{Name: "a", Type: Int}}},
			reason: "field has no source",
		},
		{
			name: "nested field with env",
			node: &RecordSchema{Fields: []Field{{
				Name: "a", FromEnv: true,
				Nested: &RecordSchema{Fields: []Field{leaf("b")}},
			}}},
			reason: "nested field cannot declare env, default or parse",
		},
		{
			name:   "typed nil nested schema",
			node:   &RecordSchema{Fields: []Field{{Name: "a", Nested: (*RecordSchema)(nil)}}},
			reason: "nested schema is nil",
		},
		{
			name:   "invalid case",
			node:   &RecordSchema{Naming: &Naming{Case: Case(42)}, Fields: []Field{leaf("a")}},
			reason: "invalid naming convention 42",
		},
		{
			name:   "set of non-scalar",
			node:   &RecordSchema{Fields: []Field{{Name: "a", Type: SetOf(SliceOf(Int)), FromEnv: true}}},
			reason: "set of slice of int: element type must be a scalar",
		},
		{
			name:   "map with non-scalar key",
			node:   &RecordSchema{Fields: []Field{{Name: "a", Type: MapOf(SliceOf(String), Int), FromEnv: true}}},
			reason: "key type must be a scalar",
		},
		{
			name:   "map delimiters collide",
			node:   &RecordSchema{Fields: []Field{{Name: "a", Type: MapOf(String, Int), FromEnv: true, Delimiter: "="}}},
			reason: `item delimiter "=" equals the pair delimiter`,
		},
		{
			name: "map argument delimiters collide",
			node: &RecordSchema{Fields: []Field{{
				Name: "a", Type: Int, FromEnv: true, Delimiter: ":", PairDelimiter: ":",
				Parse: TransformFunc(MapOf(String, Int), func(p Pairs) int { return len(p) }),
			}}},
			reason: `item delimiter ":" equals the pair delimiter`,
		},
		{
			name:   "duplicate env key",
			node:   &RecordSchema{Fields: []Field{{Name: "a", Type: Int, Env: []string{"A", " A "}}}},
			reason: `duplicate env key "A"`,
		},
		{
			name:   "blank env key",
			node:   &RecordSchema{Fields: []Field{{Name: "a", Type: Int, Env: []string{"A", "  "}}}},
			reason: "env entry 1 is empty",
		},
		{
			name:   "empty variant",
			node:   &VariantSchema{},
			reason: "variant schema has no cases",
		},
		{
			name: "duplicate match values",
			node: &VariantSchema{
				Discriminant: &Field{Name: "mode", FromEnv: true},
				Cases: []VariantCase{
					{Name: "Prod", Aliases: []string{"Dev"}, Schema: &RecordSchema{}},
					{Name: "Dev", Schema: &RecordSchema{}},
				},
			},
			reason: `cases "Prod" and "Dev" both match "Dev"`,
		},
		{
			name: "two default cases",
			node: &VariantSchema{
				Discriminant: &Field{Name: "mode", FromEnv: true},
				Cases: []VariantCase{
					{Name: "A", Default: true, Schema: &RecordSchema{}},
					{Name: "B", Default: true, Schema: &RecordSchema{}},
				},
			},
			reason: "2 default cases, at most one allowed",
		},
		{
			name: "default case without discriminant",
			node: &VariantSchema{Cases: []VariantCase{
				{Name: "A", Default: true, Schema: &RecordSchema{}},
			}},
			reason: "a default case requires a discriminant",
		},
		{
			name:   "case without schema",
			node:   &VariantSchema{Cases: []VariantCase{{Name: "A"}}},
			reason: `case "A" has no schema`,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := Validate(tc.node)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrSchema)
			assert.Contains(t, err.Error(), tc.reason)
		})
	}
}

func TestValidate_Cycle(t *testing.T) {
	t.Parallel()

	self := &RecordSchema{}
	self.Fields = []Field{{Name: "self", Nested: self}}

	err := Validate(self)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchema)

	var se *SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, []string{"self"}, se.Path)
	assert.Equal(t, "schema contains itself", se.Reason)
}

func TestValidate_Aggregates(t *testing.T) {
	t.Parallel()

	s := &RecordSchema{Fields: []Field{
		{Name: "a"},
		{Name: "b", Type: Int},
	}}
	err := Validate(s)
	require.Error(t, err)
	// a: no type and no source; b: no source.
	assert.Len(t, multierr.Errors(err), 3)
}

func TestValidate_Valid(t *testing.T) {
	t.Parallel()

	s := &RecordSchema{
		Naming: &Naming{Prefix: "app", Case: CaseScreamingSnake},
		Fields: []Field{
			{Name: "port", Type: Int, FromEnv: true, Default: Static(8080)},
			{Name: "hosts", Type: SliceOf(String), Env: []string{"HOSTS", "HOST"}},
			{Name: "token", Type: Optional(String), NoPrefix: true},
			{Name: "db", Nested: &RecordSchema{Fields: []Field{
				{Name: "dsn", Type: String, FromEnv: true},
			}}},
			{Name: "mode", Nested: &VariantSchema{
				Discriminant: &Field{Name: "mode", FromEnv: true},
				Cases: []VariantCase{
					{Name: "a", Schema: &RecordSchema{}},
					{Name: "b", Default: true, Schema: &RecordSchema{}},
				},
			}},
		},
	}
	assert.NoError(t, Validate(s))
}

func TestResolve_SchemaErrorBeforeLookup(t *testing.T) {
	t.Parallel()

	lookups := 0
	src := SourceFunc(func(string) (string, bool) {
		lookups++
		return "", false
	})
	s := &RecordSchema{Fields: []Field{
		{Name: "ok", Type: String, FromEnv: true},
		{Name: "broken", FromEnv: true},
	}}

	_, err := Resolve(s, src)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchema)
	assert.Zero(t, lookups)
}
