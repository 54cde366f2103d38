package selector

import (
	"fmt"
	"strconv"
	"strings"
)

// Navigate walks through a nested structure of maps and arrays using path tokens,
// typically produced by Split.
//
// At a map level the longest run of remaining tokens, joined by opts.Separator,
// that names a key is tried first, then shorter runs. This lets one flat key
// reach both shapes:
//
//	API_PORT with "_" → {"api_port": 1}      (run of two tokens)
//	API_PORT with "_" → {"api": {"port": 1}} (one token per level)
//
// At an array level the token must be an integer index.
func Navigate(data any, tokens []string, opts Options) (any, error) {
	if len(tokens) == 0 {
		return data, nil
	}

	switch curr := data.(type) {
	case map[string]any:
		for n := len(tokens); n >= 1; n-- {
			name := strings.Join(tokens[:n], opts.Separator)
			val, ok := lookupKey(curr, name, opts.FoldCase)
			if !ok {
				continue
			}
			// A shorter run may still succeed when this branch dead-ends.
			if out, err := Navigate(val, tokens[n:], opts); err == nil {
				return out, nil
			}
		}
		return nil, fmt.Errorf("key %q not found", strings.Join(tokens, opts.Separator))

	case []any:
		idx, err := strconv.Atoi(tokens[0])
		if err != nil {
			return nil, fmt.Errorf("%q is not a valid array index", tokens[0])
		}
		if idx < 0 || idx >= len(curr) {
			return nil, fmt.Errorf("array index %d out of bounds", idx)
		}
		return Navigate(curr[idx], tokens[1:], opts)

	default:
		// Neither a map nor a slice → cannot descend further
		return nil, fmt.Errorf("path segment %q not found", tokens[0])
	}
}
