package source

import (
	"fmt"

	"gopkg.in/ini.v1"
)

// INI reads an INI file into a Document.
// Keys of the default section sit at the top level; every other section is a
// nested map, so "server.port" reads key port of section [server].
func INI(path string, opts ...DocumentOption) (*Document, error) {
	data, err := readDocument("INI", path)
	if err != nil {
		return nil, err
	}
	doc, err := ParseINI(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse INI in %q: %w", path, err)
	}
	return doc, nil
}

// ParseINI parses INI data into a Document.
func ParseINI(data []byte, opts ...DocumentOption) (*Document, error) {
	cfg, err := ini.Load(data)
	if err != nil {
		return nil, err
	}

	content := make(map[string]any)
	for _, section := range cfg.Sections() {
		keys := section.KeysHash()
		if section.Name() == ini.DefaultSection {
			for k, v := range keys {
				content[k] = v
			}
			continue
		}
		m := make(map[string]any, len(keys))
		for k, v := range keys {
			m[k] = v
		}
		content[section.Name()] = m
	}
	return newDocument(FormatINI, content, opts), nil
}
