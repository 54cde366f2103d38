package envoke

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")

	t.Run("SchemaError", func(t *testing.T) {
		t.Parallel()
		err := &SchemaError{Path: []string{"db", "port"}, Reason: "field has no type"}
		assert.EqualError(t, err, "envoke: invalid schema: db.port: field has no type")
		assert.ErrorIs(t, err, ErrSchema)

		root := &SchemaError{Reason: "variant schema has no cases"}
		assert.EqualError(t, root, "envoke: invalid schema: <root>: variant schema has no cases")
	})

	t.Run("ParseError", func(t *testing.T) {
		t.Parallel()
		whole := &ParseError{Key: "PORT", Value: "x", Index: -1, Type: "int", Err: cause}
		assert.EqualError(t, whole, "parse \"x\" from `PORT` as int: boom")
		assert.ErrorIs(t, whole, ErrParse)
		assert.ErrorIs(t, whole, cause)

		elem := &ParseError{Key: "PORTS", Value: "1,x", Segment: "x", Index: 1, Type: "int", Err: cause}
		assert.EqualError(t, elem, "parse element 1 (\"x\") of \"1,x\" from `PORTS` as int: boom")
	})

	t.Run("ValidationError", func(t *testing.T) {
		t.Parallel()
		err := &ValidationError{Stage: StageBefore, Key: "PORT", Err: cause}
		assert.EqualError(t, err, "before validation of `PORT` failed: boom")
		assert.ErrorIs(t, err, ErrValidation)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("FieldError", func(t *testing.T) {
		t.Parallel()
		err := &FieldError{Path: []string{"a", "b"}, Err: &MissingVariableError{Keys: []string{"A_B"}}}
		assert.EqualError(t, err, "a.b: none of the variables (`A_B`) was found")
		assert.ErrorIs(t, err, ErrMissingVariable)
	})

	t.Run("VariantResolutionError", func(t *testing.T) {
		t.Parallel()
		err := &VariantResolutionError{
			Cause:    cause,
			Attempts: []VariantAttempt{{Tag: "a", Err: errors.New("first")}, {Tag: "b", Err: cause}},
		}
		assert.EqualError(t, err, `none of 2 variants resolved, last tried "b": boom`)
		assert.ErrorIs(t, err, ErrNoVariant)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("childPath does not alias", func(t *testing.T) {
		t.Parallel()
		parent := make([]string, 1, 4)
		parent[0] = "root"
		a := childPath(parent, "a")
		b := childPath(parent, "b")
		assert.Equal(t, []string{"root", "a"}, a)
		assert.Equal(t, []string{"root", "b"}, b)
	})
}
