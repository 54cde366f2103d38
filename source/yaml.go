package source

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// YAML reads a YAML file into a Document.
// A document whose root is not a mapping yields an empty Document.
func YAML(path string, opts ...DocumentOption) (*Document, error) {
	data, err := readDocument("YAML", path)
	if err != nil {
		return nil, err
	}
	doc, err := ParseYAML(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse YAML in %q: %w", path, err)
	}
	return doc, nil
}

// ParseYAML parses YAML into a Document.
func ParseYAML(data []byte, opts ...DocumentOption) (*Document, error) {
	var content any
	if err := yaml.Unmarshal(data, &content); err != nil {
		return nil, err
	}
	root, ok := normalizeYAML(content).(map[string]any)
	if !ok {
		// If the root isn't a map, navigation will fail cleanly on the empty map.
		root = map[string]any{}
	}
	return newDocument(FormatYAML, root, opts), nil
}

// normalizeYAML turns map[any]any (non-string keys) into map[string]any so
// the selector can walk every mapping the same way.
func normalizeYAML(val any) any {
	switch v := val.(type) {
	case map[string]any:
		for k, vv := range v {
			v[k] = normalizeYAML(vv)
		}
		return v
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, vv := range v {
			out[fmt.Sprint(k)] = normalizeYAML(vv)
		}
		return out
	case []any:
		for i, elem := range v {
			v[i] = normalizeYAML(elem)
		}
		return v
	default:
		return v
	}
}

func encodeYAML(val any) (string, error) {
	data, err := yaml.Marshal(val)
	if err != nil {
		return "", fmt.Errorf("failed to encode YAML value: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
