package envoke

import (
	"fmt"
	"slices"

	"go.uber.org/zap"
)

// Variant is a resolved variant: the tag of the chosen case and its record.
type Variant struct {
	tag    string
	record *Record
}

// Tag returns the name of the chosen case.
func (v *Variant) Tag() string { return v.tag }

// Record returns the fields of the chosen case.
func (v *Variant) Record() *Record { return v.record }

// Plain returns a single-entry map from the tag to the record's fields.
func (v *Variant) Plain() any {
	return map[string]any{v.tag: v.record.Plain()}
}

// Decode copies the chosen case's record into out. A string target receives the tag.
func (v *Variant) Decode(out any) error { return decode(v, out, v.record.tagName) }

func (r *resolution) variant(s *VariantSchema, naming Naming, path []string) (*Variant, error) {
	if s.Discriminant != nil {
		return r.dispatch(s, naming, path)
	}
	return r.trial(s, naming, path)
}

// trial resolves the cases in order and keeps the first that succeeds.
// When all fail, the last failure is the reported cause.
func (r *resolution) trial(s *VariantSchema, naming Naming, path []string) (*Variant, error) {
	attempts := make([]VariantAttempt, 0, len(s.Cases))
	for i := range s.Cases {
		c := &s.Cases[i]
		rec, err := r.record(c.Schema, inherit(naming, c.Schema.Naming, nil), path)
		if err == nil {
			r.log.Debug("variant resolved", zap.String("path", joinPath(path)), zap.String("tag", c.Name))
			return &Variant{tag: c.Name, record: rec}, nil
		}
		r.log.Debug("variant attempt failed", zap.String("path", joinPath(path)), zap.String("tag", c.Name))
		attempts = append(attempts, VariantAttempt{Tag: c.Name, Err: err})
	}

	return nil, &VariantResolutionError{
		Path:     path,
		Cause:    attempts[len(attempts)-1].Err,
		Attempts: attempts,
	}
}

// dispatch resolves the discriminant and then only the case it selects.
// A failure of that case is returned as is; no other case is tried.
func (r *resolution) dispatch(s *VariantSchema, naming Naming, path []string) (*Variant, error) {
	d := *s.Discriminant
	if d.Type == nil {
		d.Type = String
	}
	dpath := childPath(path, d.Name)
	raw, err := r.field(&d, naming, dpath)
	if err != nil {
		return nil, qualify(dpath, err)
	}

	var value string
	if raw != nil {
		value = fmt.Sprint(raw)
	}

	// Only the variant's own case convention applies to case names.
	var cs Case
	if s.Naming != nil {
		cs = s.Naming.Case
	}
	c := matchCase(s.Cases, value, cs)
	if c == nil {
		return nil, &VariantResolutionError{
			Path:         path,
			Discriminant: value,
			Cause:        fmt.Errorf("%w: discriminant %q matches none of %s", ErrNoVariant, value, caseNames(s.Cases)),
		}
	}
	r.log.Debug("discriminant matched", zap.String("path", joinPath(path)), zap.String("tag", c.Name))

	rec, err := r.record(c.Schema, inherit(naming, c.Schema.Naming, nil), path)
	if err != nil {
		return nil, err
	}
	return &Variant{tag: c.Name, record: rec}, nil
}

// matchCase returns the case matching value, else the default case, else nil.
func matchCase(cases []VariantCase, value string, cs Case) *VariantCase {
	var fallback *VariantCase
	for i := range cases {
		c := &cases[i]
		if slices.Contains(c.matchValues(cs), value) {
			return c
		}
		if c.Default && fallback == nil {
			fallback = c
		}
	}
	return fallback
}
