package source

import (
	"encoding/json"
	"fmt"
)

// JSON reads a JSON object file into a Document.
func JSON(path string, opts ...DocumentOption) (*Document, error) {
	data, err := readDocument("JSON", path)
	if err != nil {
		return nil, err
	}
	doc, err := ParseJSON(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse JSON in %q: %w", path, err)
	}
	return doc, nil
}

// ParseJSON parses a JSON object into a Document.
func ParseJSON(data []byte, opts ...DocumentOption) (*Document, error) {
	var content map[string]any
	if err := json.Unmarshal(data, &content); err != nil {
		return nil, err
	}
	if content == nil {
		content = map[string]any{}
	}
	return newDocument(FormatJSON, content, opts), nil
}

func encodeJSON(val any) (string, error) {
	data, err := json.Marshal(val)
	if err != nil {
		return "", fmt.Errorf("failed to encode JSON value: %w", err)
	}
	return string(data), nil
}
