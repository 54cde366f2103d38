package source

import (
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// TOML reads a TOML file into a Document.
func TOML(path string, opts ...DocumentOption) (*Document, error) {
	data, err := readDocument("TOML", path)
	if err != nil {
		return nil, err
	}
	doc, err := ParseTOML(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TOML in %q: %w", path, err)
	}
	return doc, nil
}

// ParseTOML parses TOML into a Document. Local dates and times render through
// their String methods, offset date-times as RFC 3339.
func ParseTOML(data []byte, opts ...DocumentOption) (*Document, error) {
	var content map[string]any
	if err := toml.Unmarshal(data, &content); err != nil {
		return nil, err
	}
	if content == nil {
		content = map[string]any{}
	}
	return newDocument(FormatTOML, content, opts), nil
}

func encodeTOML(val any) (string, error) {
	data, err := toml.Marshal(val)
	if err != nil {
		return "", fmt.Errorf("failed to encode TOML value: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
