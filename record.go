package envoke

import (
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Record is a resolved record: field values in declaration order.
type Record struct {
	names   []string
	values  map[string]any
	tagName string
}

// Get returns the value of the named field. Nested fields hold *Record or *Variant.
func (r *Record) Get(name string) (any, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Fields returns the field names in declaration order.
func (r *Record) Fields() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Plain returns the record as a map[string]any.
func (r *Record) Plain() any {
	out := make(map[string]any, len(r.names))
	for _, name := range r.names {
		out[name] = plain(r.values[name])
	}
	return out
}

// Decode copies the record into out, a pointer to a struct or map.
func (r *Record) Decode(out any) error { return decode(r, out, r.tagName) }

func (r *Record) set(name string, v any) {
	r.names = append(r.names, name)
	r.values[name] = v
}

// record resolves every field and reports all failing fields, not only the first.
func (r *resolution) record(s *RecordSchema, naming Naming, path []string) (*Record, error) {
	rec := &Record{
		names:   make([]string, 0, len(s.Fields)),
		values:  make(map[string]any, len(s.Fields)),
		tagName: r.tagName,
	}

	var errs error
	for i := range s.Fields {
		f := &s.Fields[i]
		fp := childPath(path, f.Name)
		v, err := r.field(f, naming, fp)
		if err != nil {
			errs = multierr.Append(errs, qualify(fp, err))
			continue
		}
		rec.set(f.Name, v)
	}
	if errs != nil {
		r.log.Debug("record failed", zap.String("path", joinPath(path)), zap.Int("errors", len(multierr.Errors(errs))))
		return nil, errs
	}
	return rec, nil
}

// qualify wraps err in a *FieldError unless it already consists of them,
// which is the case for nested records.
func qualify(path []string, err error) error {
	for _, e := range multierr.Errors(err) {
		if _, ok := e.(*FieldError); !ok {
			return &FieldError{Path: path, Err: err}
		}
	}
	return err
}

func plain(v any) any {
	switch t := v.(type) {
	case *Record:
		return t.Plain()
	case *Variant:
		return t.Plain()
	case Pairs:
		out := make(map[string]any, len(t))
		for k, v := range t.Map() {
			out[k] = plain(v)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plain(e)
		}
		return out
	}
	return v
}
