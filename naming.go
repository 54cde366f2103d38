package envoke

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/iancoleman/strcase"
)

// Case is a naming convention applied to a joined lookup key.
type Case int

const (
	CaseNone Case = iota
	CaseLower
	CaseUpper
	CasePascal
	CaseCamel
	CaseSnake
	CaseScreamingSnake
	CaseKebab
	CaseScreamingKebab
)

var caseTokens = []struct {
	token string
	c     Case
}{
	{"lower", CaseLower},
	{"upper", CaseUpper},
	{"PascalCase", CasePascal},
	{"camelCase", CaseCamel},
	{"snake_case", CaseSnake},
	{"SCREAMING_SNAKE_CASE", CaseScreamingSnake},
	{"kebab-case", CaseKebab},
	{"SCREAMING-KEBAB-CASE", CaseScreamingKebab},
	// aliases
	{"lowercase", CaseLower},
	{"UPPERCASE", CaseUpper},
	{"UPPER", CaseUpper},
}

// ParseCase maps a convention token to a Case. Tokens are matched case-sensitively.
// An unknown token yields a *SchemaError that suggests the closest known token.
func ParseCase(token string) (Case, error) {
	for _, t := range caseTokens {
		if t.token == token {
			return t.c, nil
		}
	}
	reason := fmt.Sprintf("unexpected naming convention %q", token)
	if m := closestCaseToken(token); m != "" {
		reason += fmt.Sprintf(", did you mean %q?", m)
	}
	return CaseNone, &SchemaError{Reason: reason}
}

func closestCaseToken(token string) string {
	best, bestDist := "", -1
	for _, t := range caseTokens {
		d := levenshtein.ComputeDistance(strings.ToLower(token), strings.ToLower(t.token))
		if bestDist < 0 || d < bestDist {
			best, bestDist = t.token, d
		}
	}
	// Suggestions further away than half the token are noise.
	if bestDist > len(token)/2+1 {
		return ""
	}
	return best
}

// String returns the canonical token of c.
func (c Case) String() string {
	if c == CaseNone {
		return ""
	}
	for _, t := range caseTokens {
		if t.c == c {
			return t.token
		}
	}
	return fmt.Sprintf("Case(%d)", int(c))
}

func (c Case) valid() bool { return c >= CaseNone && c <= CaseScreamingKebab }

// Apply recases s. Word boundaries are underscores, hyphens, dots, spaces and
// case transitions, including the end of an acronym ("HTTPServer" is two words).
func (c Case) Apply(s string) string {
	switch c {
	case CaseLower:
		return strings.ToLower(strings.Join(words(s), ""))
	case CaseUpper:
		return strings.ToUpper(strings.Join(words(s), ""))
	case CasePascal:
		return joinTitled(words(s), true)
	case CaseCamel:
		return joinTitled(words(s), false)
	case CaseSnake:
		return strcase.ToSnake(s)
	case CaseScreamingSnake:
		return strcase.ToScreamingSnake(s)
	case CaseKebab:
		return strcase.ToKebab(s)
	case CaseScreamingKebab:
		return strcase.ToScreamingKebab(s)
	default:
		return s
	}
}

// words splits s the same way for every convention, lowercased.
func words(s string) []string {
	var out []string
	for _, w := range strings.Split(strcase.ToSnake(s), "_") {
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}

func joinTitled(ws []string, first bool) string {
	var b strings.Builder
	for i, w := range ws {
		if i == 0 && !first {
			b.WriteString(w)
			continue
		}
		b.WriteString(strings.ToUpper(w[:1]) + w[1:])
	}
	return b.String()
}

// DefaultDelimiter joins prefix, name and suffix when Naming.Delimiter is empty.
const DefaultDelimiter = "_"

// Naming turns logical names into concrete lookup keys.
// Record schemas inherit the Naming of their parent unless they set their own.
type Naming struct {
	Prefix    string
	Suffix    string
	Delimiter string
	Case      Case
}

func (n Naming) delimiter() string {
	if n.Delimiter == "" {
		return DefaultDelimiter
	}
	return n.Delimiter
}

// Key joins prefix, name and suffix with the delimiter and applies the case convention.
// Without a case the joined string is returned as is, so Naming{}.Key(name, false, false) == name.
func (n Naming) Key(name string, noPrefix, noSuffix bool) string {
	delim := n.delimiter()

	parts := make([]string, 0, 3)
	if n.Prefix != "" && !noPrefix {
		parts = append(parts, n.Prefix)
	}
	parts = append(parts, name)
	if n.Suffix != "" && !noSuffix {
		parts = append(parts, n.Suffix)
	}
	joined := strings.Join(parts, delim)

	if n.Case == CaseNone {
		return joined
	}
	// The recaser only knows the usual binding characters.
	if !isBindingDelimiter(delim) {
		joined = strings.ReplaceAll(joined, delim, "_")
	}
	return n.Case.Apply(joined)
}

func isBindingDelimiter(d string) bool {
	switch d {
	case "_", "-", ".", " ":
		return true
	}
	return false
}
