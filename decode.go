package envoke

import (
	"encoding"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
)

var errInvalidDecodeCondition = errors.New("invalid decode condition")

// DecodeError means a resolved value could not be stored in the target type.
type DecodeError struct {
	From  reflect.Type
	To    reflect.Type
	Cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s into %s: %v", e.From, e.To, e.Cause)
}

func (e *DecodeError) Unwrap() error { return e.Cause }

// decode copies a resolved value into out. Struct fields are matched by the
// tagName tag, falling back to a case-insensitive match on the field name.
func decode(v Value, out any, tagName string) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: tagName,
		Result:  out,
		DecodeHook: composeDecodeHooks(
			recordHookFunc(),
			variantHookFunc(),
			pairsHookFunc(),
			timeDurationHookFunc(),
			textUnmarshalerHookFunc(),
		),
	})
	if err != nil {
		return err
	}
	return dec.Decode(v)
}

// composeDecodeHooks runs the first hook whose condition holds.
func composeDecodeHooks(hs ...mapstructure.DecodeHookFunc) mapstructure.DecodeHookFuncValue {
	return func(f, t reflect.Value) (any, error) {
		for _, h := range hs {
			v, err := mapstructure.DecodeHookExec(h, f, t)
			if err == nil {
				return v, nil
			}
			if errors.Is(err, errInvalidDecodeCondition) {
				continue
			}
			return nil, &DecodeError{From: f.Type(), To: t.Type(), Cause: err}
		}
		return f.Interface(), nil
	}
}

var (
	recordType   = reflect.TypeOf((*Record)(nil))
	variantType  = reflect.TypeOf((*Variant)(nil))
	pairsType    = reflect.TypeOf(Pairs(nil))
	durationType = reflect.TypeOf(time.Duration(0))
)

// recordHookFunc exposes a record's fields one level at a time; nested values
// pass through the hooks again as mapstructure descends.
func recordHookFunc() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, _ reflect.Type, data any) (any, error) {
		if f != recordType {
			return nil, errInvalidDecodeCondition
		}
		return fieldMap(data.(*Record)), nil
	}
}

func fieldMap(rec *Record) map[string]any {
	out := make(map[string]any, len(rec.names))
	for _, name := range rec.names {
		out[name] = rec.values[name]
	}
	return out
}

func variantHookFunc() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f != variantType {
			return nil, errInvalidDecodeCondition
		}
		v := data.(*Variant)
		if t.Kind() == reflect.String {
			return v.tag, nil
		}
		return fieldMap(v.record), nil
	}
}

// pairsHookFunc turns Pairs into a map keyed by the parsed keys.
// Keys that cannot be map keys are replaced by their string form.
// A slice target keeps the order as a list of Pair.
func pairsHookFunc() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f != pairsType {
			return nil, errInvalidDecodeCondition
		}
		p := data.(Pairs)
		if t.Kind() == reflect.Slice {
			return p, nil
		}
		out := make(map[any]any, len(p))
		for _, kv := range p {
			k := kv.Key
			if !hashable(k) {
				k = fmt.Sprint(k)
			}
			out[k] = kv.Value
		}
		return out, nil
	}
}

func timeDurationHookFunc() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if t != durationType || f == durationType {
			return nil, errInvalidDecodeCondition
		}

		switch f.Kind() {
		case reflect.String:
			return time.ParseDuration(data.(string))
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return time.Duration(reflect.ValueOf(data).Int()), nil
		default:
			return nil, errInvalidDecodeCondition
		}
	}
}

func textUnmarshalerHookFunc() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String || t.Kind() == reflect.String {
			return nil, errInvalidDecodeCondition
		}
		result := reflect.New(t)
		u, ok := result.Interface().(encoding.TextUnmarshaler)
		if !ok {
			return nil, errInvalidDecodeCondition
		}
		if err := u.UnmarshalText([]byte(reflect.ValueOf(data).String())); err != nil {
			return nil, err
		}
		return result.Elem().Interface(), nil
	}
}
