package envoke

import (
	"fmt"

	"go.uber.org/zap"
)

// DefaultTagName is the struct tag Decode reads field names from.
const DefaultTagName = "envoke"

// Value is a resolved schema node: *Record or *Variant.
type Value interface {
	// Plain converts the value into maps, slices and scalars.
	Plain() any
	// Decode copies the value into the struct pointed to by out.
	Decode(out any) error
}

type options struct {
	logger  *zap.Logger
	tagName string
}

// Option configures a single resolution.
type Option func(*options)

// WithLogger sets the logger used for debug events. Values are never logged.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithTagName sets the struct tag used when decoding resolved values.
func WithTagName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.tagName = name
		}
	}
}

func newOptions(opts []Option) *options {
	o := &options{logger: zap.NewNop(), tagName: DefaultTagName}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// resolution is the per-call state. Nothing outlives the call.
type resolution struct {
	src     Source
	log     *zap.Logger
	tagName string
}

// Resolve validates node and resolves it against src.
//
// Schema problems are returned before any lookup. A record failure lists one
// *FieldError per failing field (see multierr.Errors); no partial record is
// returned.
func Resolve(node Node, src Source, opts ...Option) (Value, error) {
	if err := Validate(node); err != nil {
		return nil, err
	}
	if src == nil {
		return nil, fmt.Errorf("%w: nil source", ErrSchema)
	}

	o := newOptions(opts)
	r := &resolution{src: src, log: o.logger, tagName: o.tagName}

	switch n := node.(type) {
	case *RecordSchema:
		rec, err := r.record(n, inherit(Naming{}, n.Naming, nil), nil)
		if err != nil {
			return nil, err
		}
		return rec, nil
	case *VariantSchema:
		v, err := r.variant(n, inherit(Naming{}, n.Naming, nil), nil)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
	return nil, fmt.Errorf("%w: unsupported schema node %T", ErrSchema, node)
}

// ResolveRecord is Resolve for a record schema.
func ResolveRecord(s *RecordSchema, src Source, opts ...Option) (*Record, error) {
	v, err := Resolve(s, src, opts...)
	if err != nil {
		return nil, err
	}
	return v.(*Record), nil
}

// ResolveVariant is Resolve for a variant schema.
func ResolveVariant(s *VariantSchema, src Source, opts ...Option) (*Variant, error) {
	v, err := Resolve(s, src, opts...)
	if err != nil {
		return nil, err
	}
	return v.(*Variant), nil
}

// Load resolves node and decodes the result into a new T.
func Load[T any](node Node, src Source, opts ...Option) (T, error) {
	var out T
	v, err := Resolve(node, src, opts...)
	if err != nil {
		return out, err
	}
	if err := v.Decode(&out); err != nil {
		return out, err
	}
	return out, nil
}
