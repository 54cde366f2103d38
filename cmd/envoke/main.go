package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/containeroo/envoke"
	"github.com/containeroo/envoke/internal/logging"
	"github.com/containeroo/envoke/internal/schemafile"
	"github.com/containeroo/envoke/source"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type flags struct {
	schema    string
	dotenv    []string
	files     []string
	separator string
	snapshot  bool
	expand    bool
	format    string
	logLevel  string
	logFormat string
}

func parseFlags(args []string, stderr io.Writer) (*flags, error) {
	app := kingpin.New("envoke", "Resolve typed configuration from the environment, dotenv and config files")
	app.UsageWriter(stderr)
	app.ErrorWriter(stderr)

	f := &flags{}
	app.Flag("schema", "Path to the YAML schema document").Required().StringVar(&f.schema)
	app.Flag("dotenv", "Dotenv file used beneath the environment (repeatable)").StringsVar(&f.dotenv)
	app.Flag("file", "JSON, YAML, TOML or INI config file (repeatable, earlier wins)").StringsVar(&f.files)
	app.Flag("key-separator", "Separator splitting lookup keys into config file paths").Default("_").StringVar(&f.separator)
	app.Flag("snapshot", "Resolve against a copy of the environment taken at startup").BoolVar(&f.snapshot)
	app.Flag("expand", "Expand ${NAME} references in values").BoolVar(&f.expand)
	app.Flag("format", "Output format").Default("json").EnumVar(&f.format, "json", "yaml")
	app.Flag("log-level", "Log level").Default("warn").StringVar(&f.logLevel)
	app.Flag("log-format", "Log format").Default("console").EnumVar(&f.logFormat, "json", "console")

	if _, err := app.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	f, err := parseFlags(args, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "envoke: %v\n", err)
		return 2
	}

	logger, err := logging.New(stderr, f.logLevel, f.logFormat)
	if err != nil {
		fmt.Fprintf(stderr, "envoke: %v\n", err)
		return 2
	}
	defer func() {
		_ = logger.Sync()
	}()

	node, err := schemafile.Load(f.schema)
	if err != nil {
		return fail(stderr, err)
	}

	src, err := buildSource(f, logger)
	if err != nil {
		return fail(stderr, err)
	}

	v, err := envoke.Resolve(node, src, envoke.WithLogger(logger))
	if err != nil {
		return fail(stderr, err)
	}

	if err := write(stdout, f.format, printable(v.Plain())); err != nil {
		return fail(stderr, err)
	}
	return 0
}

// buildSource layers env over config files over dotenv files.
func buildSource(f *flags, logger *zap.Logger) (envoke.Source, error) {
	layers := source.NewLayered()

	if f.snapshot {
		layers.Register("env", source.Snapshot())
	} else {
		layers.Register("env", source.Env())
	}

	for _, path := range f.files {
		// APP_DB_HOST finds app.db.host, app_db_host or APP.DB_HOST.
		doc, err := source.Open(path, source.WithSeparator(f.separator), source.WithFoldCase())
		if err != nil {
			return nil, err
		}
		layers.Register("file:"+path, doc)
	}

	if len(f.dotenv) > 0 {
		m, err := source.Dotenv(f.dotenv...)
		if err != nil {
			return nil, err
		}
		layers.Register("dotenv", m)
	}
	logger.Debug("source layers", zap.Strings("layers", layers.Names()))

	if f.expand {
		return source.Expand(layers), nil
	}
	return layers, nil
}

// fail prints one line per error and returns the exit code.
func fail(w io.Writer, err error) int {
	for _, e := range multierr.Errors(err) {
		fmt.Fprintf(w, "envoke: %v\n", e)
	}
	return 1
}

func write(w io.Writer, format string, v any) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}

// printable replaces values without a natural encoding by their string form.
func printable(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = printable(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = printable(e)
		}
		return out
	case time.Duration:
		return t.String()
	case fmt.Stringer:
		return t.String()
	}
	return v
}
