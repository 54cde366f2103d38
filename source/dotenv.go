package source

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"os"

	"github.com/joho/godotenv"
)

// Dotenv reads dotenv files into a Map. For a key defined in several files the
// last file wins. The files are read once; the Map does not track later edits.
//
// Accepted syntax is godotenv's: KEY=VALUE lines, optional "export ", single or
// double quotes, # comments.
//
// Place the result beneath the live environment so real variables win:
//
//	file, err := source.Dotenv(".env")
//	src := source.Overlay(source.Env(), file)
func Dotenv(paths ...string) (Map, error) {
	out := make(Map)
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return nil, mapOpenError("dotenv", p, err)
		}
		vals, err := godotenv.Parse(f)
		f.Close() // nolint:errcheck
		if err != nil {
			return nil, fmt.Errorf("failed to parse dotenv file %q: %w", p, err)
		}
		maps.Copy(out, vals)
	}
	return out, nil
}

// ParseDotenv reads dotenv syntax from r.
func ParseDotenv(r io.Reader) (Map, error) {
	vals, err := godotenv.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse dotenv: %w", err)
	}
	return Map(vals), nil
}

// mapOpenError maps file system errors to the package sentinels.
func mapOpenError(kind, path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s file %s", ErrNotFound, kind, path)
	}
	if errors.Is(err, fs.ErrPermission) {
		return fmt.Errorf("%w: %s file %s", ErrForbidden, kind, path)
	}
	return fmt.Errorf("failed to read %s file %q: %w", kind, path, err)
}
