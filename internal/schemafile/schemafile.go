// Package schemafile builds engine schemas from YAML documents.
//
// A document is a record when it lists fields and a variant when it lists
// cases:
//
//	naming: {prefix: app, case: SCREAMING_SNAKE_CASE}
//	fields:
//	  - name: port
//	    type: int
//	    env: true
//	    default: "8080"
//	    validate: {min: 1, max: 65535}
//	  - name: storage
//	    schema:
//	      discriminant: {name: kind, env: true}
//	      cases:
//	        - name: s3
//	          fields: [{name: bucket, type: string, env: true}]
package schemafile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/containeroo/envoke"
	"gopkg.in/yaml.v3"
)

// Document is a record or variant schema.
type Document struct {
	Naming       *NamingDoc `yaml:"naming"`
	Fields       []FieldDoc `yaml:"fields"`
	Discriminant *FieldDoc  `yaml:"discriminant"`
	Cases        []CaseDoc  `yaml:"cases"`
}

// NamingDoc mirrors envoke.Naming with the case given as a token.
type NamingDoc struct {
	Prefix    string `yaml:"prefix"`
	Suffix    string `yaml:"suffix"`
	Delimiter string `yaml:"delimiter"`
	Case      string `yaml:"case"`
}

// FieldDoc describes one field. Schema makes it a nested field.
type FieldDoc struct {
	Name          string       `yaml:"name"`
	Type          string       `yaml:"type"`
	Env           Env          `yaml:"env"`
	Default       *Literal     `yaml:"default"`
	Delimiter     string       `yaml:"delimiter"`
	PairDelimiter string       `yaml:"pair_delimiter"`
	NoPrefix      bool         `yaml:"no_prefix"`
	NoSuffix      bool         `yaml:"no_suffix"`
	Naming        *NamingDoc   `yaml:"naming"`
	Validate      *ValidateDoc `yaml:"validate"`
	Schema        *Document    `yaml:"schema"`
}

// CaseDoc is one variant case; its fields form the case's record.
type CaseDoc struct {
	Name    string     `yaml:"name"`
	Values  []string   `yaml:"values"`
	Aliases []string   `yaml:"aliases"`
	Default bool       `yaml:"default"`
	Naming  *NamingDoc `yaml:"naming"`
	Fields  []FieldDoc `yaml:"fields"`
}

// Env accepts true (derive from the name), a single key or a list of keys.
type Env struct {
	FromName bool
	Keys     []string
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (e *Env) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.ShortTag() == "!!bool" {
			return n.Decode(&e.FromName)
		}
		e.Keys = []string{n.Value}
		return nil
	case yaml.SequenceNode:
		return n.Decode(&e.Keys)
	}
	return fmt.Errorf("line %d: env must be a bool, a key or a list of keys", n.Line)
}

// Literal is a default value written as a scalar; it is parsed with the field type.
type Literal string

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *Literal) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: default must be a scalar", n.Line)
	}
	*l = Literal(n.Value)
	return nil
}

// Load reads and builds the schema at path.
func Load(path string) (envoke.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML schema document and builds it. Unknown keys are errors.
func Parse(data []byte) (envoke.Node, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty schema document", envoke.ErrSchema)
		}
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	return doc.Build()
}

// Build converts the document into an engine schema and validates it.
func (d *Document) Build() (envoke.Node, error) {
	n, err := d.node(nil)
	if err != nil {
		return nil, err
	}
	if err := envoke.Validate(n); err != nil {
		return nil, err
	}
	return n, nil
}

func (d *Document) node(path []string) (envoke.Node, error) {
	naming, err := d.Naming.build(path)
	if err != nil {
		return nil, err
	}

	if len(d.Cases) == 0 && d.Discriminant == nil {
		fields, err := buildFields(d.Fields, path)
		if err != nil {
			return nil, err
		}
		return &envoke.RecordSchema{Naming: naming, Fields: fields}, nil
	}

	if len(d.Fields) > 0 {
		return nil, schemaError(path, "a schema has either fields or cases")
	}
	vs := &envoke.VariantSchema{Naming: naming}
	if d.Discriminant != nil {
		if d.Discriminant.Schema != nil {
			return nil, schemaError(path, "discriminant cannot be nested")
		}
		if d.Discriminant.Type == "" {
			d.Discriminant.Type = "string"
		}
		f, err := d.Discriminant.build(childPath(path, d.Discriminant.Name))
		if err != nil {
			return nil, err
		}
		vs.Discriminant = &f
	}
	for _, c := range d.Cases {
		cnaming, err := c.Naming.build(path)
		if err != nil {
			return nil, err
		}
		fields, err := buildFields(c.Fields, path)
		if err != nil {
			return nil, err
		}
		vs.Cases = append(vs.Cases, envoke.VariantCase{
			Name:    c.Name,
			Values:  c.Values,
			Aliases: c.Aliases,
			Default: c.Default,
			Schema:  &envoke.RecordSchema{Naming: cnaming, Fields: fields},
		})
	}
	return vs, nil
}

func buildFields(docs []FieldDoc, path []string) ([]envoke.Field, error) {
	fields := make([]envoke.Field, 0, len(docs))
	for i := range docs {
		f, err := docs[i].build(childPath(path, docs[i].Name))
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}

func (f *FieldDoc) build(path []string) (envoke.Field, error) {
	out := envoke.Field{
		Name:          f.Name,
		Env:           f.Env.Keys,
		FromEnv:       f.Env.FromName,
		Delimiter:     f.Delimiter,
		PairDelimiter: f.PairDelimiter,
		NoPrefix:      f.NoPrefix,
		NoSuffix:      f.NoSuffix,
	}

	naming, err := f.Naming.build(path)
	if err != nil {
		return out, err
	}
	out.Naming = naming

	if f.Schema != nil {
		if f.Type != "" || f.Validate != nil {
			return out, schemaError(path, "nested field cannot declare a type or validation")
		}
		n, err := f.Schema.node(path)
		if err != nil {
			return out, err
		}
		out.Nested = n
		// env and default are rejected by envoke.Validate.
		if f.Default != nil {
			out.Default = envoke.Static(string(*f.Default))
		}
		return out, nil
	}

	t, err := ParseType(f.Type)
	if err != nil {
		return out, schemaError(path, err.Error())
	}
	out.Type = t

	if f.Default != nil {
		v, err := t.Parse(string(*f.Default), envoke.Delimiters{Item: f.Delimiter, Pair: f.PairDelimiter})
		if err != nil {
			return out, schemaError(path, fmt.Sprintf("default %q: %v", string(*f.Default), err))
		}
		out.Default = envoke.Static(v)
	}

	if f.Validate != nil {
		check, err := f.Validate.build()
		if err != nil {
			return out, schemaError(path, err.Error())
		}
		out.Validate = envoke.Validation{After: check}
	}
	return out, nil
}

func (n *NamingDoc) build(path []string) (*envoke.Naming, error) {
	if n == nil {
		return nil, nil
	}
	out := &envoke.Naming{Prefix: n.Prefix, Suffix: n.Suffix, Delimiter: n.Delimiter}
	if n.Case != "" {
		c, err := envoke.ParseCase(n.Case)
		if err != nil {
			var se *envoke.SchemaError
			if errors.As(err, &se) {
				se.Path = path
			}
			return nil, err
		}
		out.Case = c
	}
	return out, nil
}

func childPath(path []string, name string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, name)
}

func schemaError(path []string, reason string) error {
	return &envoke.SchemaError{Path: path, Reason: reason}
}
