package source

import "errors"

var (
	ErrNotFound          = errors.New("source: not found")
	ErrForbidden         = errors.New("source: forbidden")
	ErrBadReference      = errors.New("source: bad reference")
	ErrUnsupportedFormat = errors.New("source: unsupported format")
)
