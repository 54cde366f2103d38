package envoke

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSchema          = errors.New("envoke: invalid schema")
	ErrMissingVariable = errors.New("envoke: missing variable")
	ErrParse           = errors.New("envoke: parse failed")
	ErrValidation      = errors.New("envoke: validation failed")
	ErrNoVariant       = errors.New("envoke: no variant resolved")
)

// SchemaError reports a malformed schema. It is returned before any key is looked up.
type SchemaError struct {
	Path   []string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrSchema, joinPath(e.Path), e.Reason)
}

func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

// MissingVariableError means none of the candidate keys was present and no default applied.
type MissingVariableError struct {
	Keys []string
}

func (e *MissingVariableError) Error() string {
	quoted := make([]string, len(e.Keys))
	for i, k := range e.Keys {
		quoted[i] = "`" + k + "`"
	}
	return fmt.Sprintf("none of the variables (%s) was found", strings.Join(quoted, ", "))
}

func (e *MissingVariableError) Is(target error) bool { return target == ErrMissingVariable }

// ParseError means a raw value, or one element of a delimited value, could not be converted.
// Index is -1 when the value failed as a whole.
type ParseError struct {
	Key     string
	Value   string
	Segment string
	Index   int
	Type    string
	Err     error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	if e.Index >= 0 {
		fmt.Fprintf(&b, "parse element %d (%q) of %q", e.Index, e.Segment, e.Value)
	} else {
		fmt.Fprintf(&b, "parse %q", e.Value)
	}
	if e.Key != "" {
		fmt.Fprintf(&b, " from `%s`", e.Key)
	}
	if e.Type != "" {
		fmt.Fprintf(&b, " as %s", e.Type)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// Stage tells which validation hook rejected a value.
type Stage string

const (
	StageBefore Stage = "before"
	StageAfter  Stage = "after"
)

// ValidationError means a Before or After hook rejected a value.
type ValidationError struct {
	Stage Stage
	Key   string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s validation of `%s` failed: %v", e.Stage, e.Key, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// FieldError qualifies a field failure with its dotted path from the schema root.
type FieldError struct {
	Path []string
	Err  error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", joinPath(e.Path), e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// VariantAttempt records one failed variant during trial resolution.
type VariantAttempt struct {
	Tag string
	Err error
}

// VariantResolutionError means no variant could be resolved.
// Cause is the error of the last variant tried; Attempts holds every failure in order.
// When a discriminant matched no case, Discriminant holds its value and Cause wraps ErrNoVariant.
// Path is informational; a nested failure is reported inside a *FieldError carrying the same path.
type VariantResolutionError struct {
	Path         []string
	Discriminant string
	Cause        error
	Attempts     []VariantAttempt
}

func (e *VariantResolutionError) Error() string {
	if len(e.Attempts) == 0 {
		return fmt.Sprintf("no variant resolved: %v", e.Cause)
	}
	last := e.Attempts[len(e.Attempts)-1]
	return fmt.Sprintf("none of %d variants resolved, last tried %q: %v", len(e.Attempts), last.Tag, e.Cause)
}

func (e *VariantResolutionError) Unwrap() error { return e.Cause }

func (e *VariantResolutionError) Is(target error) bool { return target == ErrNoVariant }

func joinPath(path []string) string {
	if len(path) == 0 {
		return "<root>"
	}
	return strings.Join(path, ".")
}

// childPath returns path+name without aliasing the parent's backing array.
func childPath(path []string, name string) []string {
	out := make([]string, len(path)+1)
	copy(out, path)
	out[len(path)] = name
	return out
}
