package source

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/containeroo/envoke/selector"
)

// Format names a structured document syntax.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatINI  Format = "ini"
)

// Document is a Source over a parsed configuration file.
// The file is read and parsed once, when the Document is created.
//
// A lookup key is split on the separator (default ".") and walked through
// the document; see selector.Navigate for the matching rules. Scalars are
// returned as strings, lists of scalars joined with the list delimiter
// (default ","), maps of scalars rendered as "k=v" pairs joined the same way,
// and anything deeper re-encoded in the document's own format.
type Document struct {
	format    Format
	data      map[string]any
	sel       selector.Options
	listDelim string
}

// DocumentOption configures a Document.
type DocumentOption func(*Document)

// WithSeparator sets the string that splits lookup keys into path tokens.
func WithSeparator(sep string) DocumentOption {
	return func(d *Document) { d.sel.Separator = sep }
}

// WithFoldCase matches document keys case-insensitively.
// Combined with WithSeparator("_") a key like APP_DB_HOST finds app.db.host.
func WithFoldCase() DocumentOption {
	return func(d *Document) { d.sel.FoldCase = true }
}

// WithListDelimiter sets the delimiter used to flatten lists and maps of scalars.
func WithListDelimiter(delim string) DocumentOption {
	return func(d *Document) { d.listDelim = delim }
}

func newDocument(format Format, data map[string]any, opts []DocumentOption) *Document {
	d := &Document{
		format:    format,
		data:      data,
		sel:       selector.Options{Separator: "."},
		listDelim: ",",
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Open reads a document, picking the format from the file extension
// (.json, .yaml, .yml, .toml, .ini).
func Open(path string, opts ...DocumentOption) (*Document, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON(path, opts...)
	case ".yaml", ".yml":
		return YAML(path, opts...)
	case ".toml":
		return TOML(path, opts...)
	case ".ini":
		return INI(path, opts...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
	}
}

// Format reports the syntax the document was parsed from.
func (d *Document) Format() Format { return d.format }

func (d *Document) Lookup(key string) (string, bool) {
	val, err := selector.Navigate(d.data, selector.Split(key, d.sel.Separator), d.sel)
	if err != nil || val == nil {
		return "", false
	}
	s, err := d.render(val)
	if err != nil {
		return "", false
	}
	return s, true
}

func (d *Document) render(val any) (string, error) {
	if s, ok := scalarString(val); ok {
		return s, nil
	}
	switch v := val.(type) {
	case []any:
		parts := make([]string, 0, len(v))
		for _, elem := range v {
			s, ok := scalarString(elem)
			if !ok {
				return d.encode(val)
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, d.listDelim), nil
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(v))
		for _, k := range keys {
			s, ok := scalarString(v[k])
			if !ok {
				return d.encode(val)
			}
			parts = append(parts, k+"="+s)
		}
		return strings.Join(parts, d.listDelim), nil
	}
	return d.encode(val)
}

func (d *Document) encode(val any) (string, error) {
	switch d.format {
	case FormatYAML:
		return encodeYAML(val)
	case FormatTOML:
		return encodeTOML(val)
	default:
		return encodeJSON(val)
	}
}

// scalarString renders the scalar types the decoders produce.
func scalarString(val any) (string, bool) {
	switch v := val.(type) {
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case uint64:
		return strconv.FormatUint(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case time.Time:
		return v.Format(time.RFC3339Nano), true
	case fmt.Stringer:
		return v.String(), true
	}
	return "", false
}

func readDocument(kind, path string) ([]byte, error) {
	path = os.ExpandEnv(path)
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: empty %s file path", ErrNotFound, kind)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, mapOpenError(kind, path, err)
	}
	return data, nil
}
