package schemafile

import (
	"fmt"
	"net"
	"strings"

	"github.com/containeroo/envoke"
)

var scalars = map[string]envoke.Type{
	"string":   envoke.String,
	"bool":     envoke.Bool,
	"int":      envoke.Int,
	"int8":     envoke.Int8,
	"int16":    envoke.Int16,
	"int32":    envoke.Int32,
	"int64":    envoke.Int64,
	"uint":     envoke.Uint,
	"uint8":    envoke.Uint8,
	"uint16":   envoke.Uint16,
	"uint32":   envoke.Uint32,
	"uint64":   envoke.Uint64,
	"float32":  envoke.Float32,
	"float64":  envoke.Float64,
	"duration": envoke.Duration,
	"url":      envoke.URL,
	"ip":       envoke.Text[net.IP]("ip"),
}

// ParseType maps a type expression to an engine type.
//
//	int, duration, ...  scalars
//	[]T                 slice
//	set[T]              set
//	map[K]V             map
//	?T                  optional
func ParseType(expr string) (envoke.Type, error) {
	expr = strings.TrimSpace(expr)

	switch {
	case expr == "":
		return nil, fmt.Errorf("empty type")
	case strings.HasPrefix(expr, "?"):
		t, err := ParseType(expr[1:])
		if err != nil {
			return nil, err
		}
		return envoke.Optional(t), nil
	case strings.HasPrefix(expr, "[]"):
		t, err := ParseType(expr[2:])
		if err != nil {
			return nil, err
		}
		return envoke.SliceOf(t), nil
	case strings.HasPrefix(expr, "set[") && strings.HasSuffix(expr, "]"):
		t, err := ParseType(expr[len("set[") : len(expr)-1])
		if err != nil {
			return nil, err
		}
		return envoke.SetOf(t), nil
	case strings.HasPrefix(expr, "map["):
		return parseMapType(expr)
	}

	if t, ok := scalars[expr]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("unknown type %q", expr)
}

func parseMapType(expr string) (envoke.Type, error) {
	inner := expr[len("map["):]
	depth := 1
	for i, r := range inner {
		switch r {
		case '[':
			depth++
		case ']':
			depth--
		}
		if depth == 0 {
			k, err := ParseType(inner[:i])
			if err != nil {
				return nil, err
			}
			v, err := ParseType(inner[i+1:])
			if err != nil {
				return nil, err
			}
			return envoke.MapOf(k, v), nil
		}
	}
	return nil, fmt.Errorf("unbalanced brackets in %q", expr)
}
