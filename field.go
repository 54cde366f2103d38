package envoke

import (
	"go.uber.org/zap"
)

// field resolves one field. The returned error is not yet path-qualified.
func (r *resolution) field(f *Field, naming Naming, path []string) (any, error) {
	if f.Nested != nil {
		return r.nested(f, naming, path)
	}
	if f.Naming != nil {
		naming = *f.Naming
	}

	keys := f.keys(naming)
	for _, key := range keys {
		raw, ok := r.src.Lookup(key)
		if !ok {
			continue
		}
		// The first present key is final, even if its value does not parse.
		r.log.Debug("key selected", zap.String("path", joinPath(path)), zap.String("key", key))
		return f.parseValue(key, raw)
	}

	switch {
	case f.Default != nil:
		r.log.Debug("default applied", zap.String("path", joinPath(path)), zap.Strings("keys", keys))
		return f.Default.value(), nil
	case f.optional():
		r.log.Debug("optional left empty", zap.String("path", joinPath(path)), zap.Strings("keys", keys))
		return nil, nil
	}
	return nil, &MissingVariableError{Keys: keys}
}

// parseValue runs Before, the parser or transform, then After on a found value.
func (f *Field) parseValue(key, raw string) (any, error) {
	d := Delimiters{Item: f.Delimiter, Pair: f.PairDelimiter}

	t := elemType(f.Type)
	if f.Parse != nil {
		t = elemType(f.Parse.ArgType)
	}
	arg, err := t.Parse(raw, d)
	if err != nil {
		return nil, qualifyParseError(key, raw, t, err)
	}

	if f.Validate.Before != nil {
		if err := f.Validate.Before(arg); err != nil {
			return nil, &ValidationError{Stage: StageBefore, Key: key, Err: err}
		}
	}

	v := arg
	if f.Parse != nil {
		v, err = f.Parse.Fn(arg)
		if err != nil {
			return nil, &ParseError{Key: key, Value: raw, Index: -1, Type: f.Type.Name(), Err: err}
		}
	}

	if f.Validate.After != nil {
		if err := f.Validate.After(v); err != nil {
			return nil, &ValidationError{Stage: StageAfter, Key: key, Err: err}
		}
	}
	return v, nil
}

// qualifyParseError attaches the key and raw value. Element errors from
// collections keep their index and segment.
func qualifyParseError(key, raw string, t Type, err error) error {
	if pe, ok := err.(*ParseError); ok {
		pe.Key, pe.Value = key, raw
		return pe
	}
	return &ParseError{Key: key, Value: raw, Index: -1, Type: t.Name(), Err: err}
}

func (r *resolution) nested(f *Field, naming Naming, path []string) (any, error) {
	switch n := f.Nested.(type) {
	case *RecordSchema:
		return r.record(n, inherit(naming, n.Naming, f.Naming), path)
	case *VariantSchema:
		return r.variant(n, inherit(naming, n.Naming, f.Naming), path)
	}
	return nil, &SchemaError{Path: path, Reason: "unsupported nested schema"}
}
