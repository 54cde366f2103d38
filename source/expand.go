package source

import (
	"fmt"
	"strings"
)

// maxExpandPasses bounds nested expansion; deeper chains are treated as cycles.
const maxExpandPasses = 8

// Expand returns a Source whose values have ${NAME} references replaced with
// the value of NAME in src itself.
func Expand(src Source) Source {
	return expander{src: src, refs: src}
}

// ExpandWith is Expand with references looked up in refs instead of src.
func ExpandWith(src, refs Source) Source {
	return expander{src: src, refs: refs}
}

type expander struct {
	src  Source
	refs Source
}

// Lookup expands the value found in src. A value with a malformed or cyclic
// reference is returned unexpanded; Lookup has no way to report the error.
func (e expander) Lookup(key string) (string, bool) {
	v, ok := e.src.Lookup(key)
	if !ok {
		return "", false
	}
	out, err := Interpolate(v, e.refs)
	if err != nil {
		return v, true
	}
	return out, true
}

// Interpolate replaces ${NAME} tokens in s with values from refs.
// Unknown names expand to the empty string. Use \${ to emit a literal ${.
// A bare '$' not followed by '{' is literal.
// Malformed tokens (missing '}' or empty ${}) and reference chains deeper than
// eight passes return ErrBadReference.
func Interpolate(s string, refs Source) (string, error) {
	out := s

	for pass := 0; pass < maxExpandPasses; pass++ {
		var b strings.Builder
		b.Grow(len(out))
		expanded := false // set only when a ${...} token is replaced

		for p := 0; p < len(out); {
			dollarRel := strings.IndexByte(out[p:], '$')
			if dollarRel < 0 {
				b.WriteString(out[p:])
				break
			}
			dollar := p + dollarRel

			// \${ -> emit "${" (drop the backslash); not an expansion
			if isEscapedDollarBrace(out, p, dollar) {
				b.WriteString(out[p : dollar-1])
				b.WriteString(`\${`)
				p = dollar + 2
				continue
			}

			b.WriteString(out[p:dollar])

			if !isTokenStart(out, dollar) {
				b.WriteByte('$')
				p = dollar + 1
				continue
			}

			start, end, err := tokenBounds(out, dollar)
			if err != nil {
				return "", err
			}
			name := strings.TrimSpace(out[start:end])
			val, _ := refs.Lookup(name)

			b.WriteString(val)
			p = end + 1
			expanded = true
		}

		out = b.String()
		if !expanded {
			return unescapeDollarBrace(out), nil
		}
	}

	if strings.Contains(strings.ReplaceAll(out, `\${`, ""), "${") {
		return "", fmt.Errorf("%w: expansion depth exceeded", ErrBadReference)
	}
	return unescapeDollarBrace(out), nil
}

// Escapes survive every pass as \${ and are only unescaped once expansion is
// done, so an escaped token is never expanded by a later pass.
func unescapeDollarBrace(s string) string {
	return strings.ReplaceAll(s, `\${`, "${")
}

// isEscapedDollarBrace reports whether out has "\${" with '\' immediately before '$'.
func isEscapedDollarBrace(out string, p, dollar int) bool {
	return dollar > p && out[dollar-1] == '\\' &&
		dollar+1 < len(out) &&
		out[dollar+1] == '{'
}

// isTokenStart reports whether "$" at index dollar begins a "${...}" token.
func isTokenStart(out string, dollar int) bool {
	return dollar+1 < len(out) && out[dollar+1] == '{'
}

// tokenBounds returns [start,end) of the token contents inside "${...}" and validates it.
func tokenBounds(out string, dollar int) (start, end int, err error) {
	start = dollar + 2
	closeRel := strings.IndexByte(out[start:], '}')
	if closeRel < 0 {
		return 0, 0, fmt.Errorf("%w: missing closing '}' at offset %d", ErrBadReference, dollar)
	}
	end = start + closeRel
	if strings.TrimSpace(out[start:end]) == "" {
		return 0, 0, fmt.Errorf("%w: empty ${} at offset %d", ErrBadReference, dollar)
	}
	return start, end, nil
}
