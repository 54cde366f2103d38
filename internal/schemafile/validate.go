package schemafile

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateDoc holds declarative checks run on values read from a source.
// Min and Max follow validator's min and max tags: they bound numbers,
// durations (written like 1s) and lengths of strings and collections.
// OneOf and Pattern compare the value's string form.
type ValidateDoc struct {
	OneOf   []string `yaml:"one_of"`
	Min     *Literal `yaml:"min"`
	Max     *Literal `yaml:"max"`
	Pattern string   `yaml:"pattern"`
}

func (v *ValidateDoc) build() (func(any) error, error) {
	var re *regexp.Regexp
	if v.Pattern != "" {
		var err error
		if re, err = regexp.Compile(v.Pattern); err != nil {
			return nil, fmt.Errorf("invalid pattern: %w", err)
		}
	}
	if err := v.checkBounds(); err != nil {
		return nil, err
	}

	bounds := v.boundsTag()
	oneOf := oneOfTag(v.OneOf)

	return func(val any) error {
		if oneOf != "" {
			if err := check(fmt.Sprint(val), oneOf); err != nil {
				return v.describe(err)
			}
		}
		if bounds != "" {
			if err := check(val, bounds); err != nil {
				return v.describe(err)
			}
		}
		if re != nil && !re.MatchString(fmt.Sprint(val)) {
			return fmt.Errorf("must match %q", v.Pattern)
		}
		return nil
	}, nil
}

// checkBounds rejects bounds that are neither numbers nor durations, and min > max.
func (v *ValidateDoc) checkBounds() error {
	var parsed []float64
	for _, b := range []*Literal{v.Min, v.Max} {
		if b == nil {
			continue
		}
		n, ok := boundValue(string(*b))
		if !ok {
			return fmt.Errorf("bound %q is neither a number nor a duration", string(*b))
		}
		parsed = append(parsed, n)
	}
	if v.Min != nil && v.Max != nil && parsed[0] > parsed[1] {
		return fmt.Errorf("min %s is greater than max %s", string(*v.Min), string(*v.Max))
	}
	return nil
}

func boundValue(s string) (float64, bool) {
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return n, true
	}
	if d, err := time.ParseDuration(s); err == nil {
		return float64(d), true
	}
	return 0, false
}

func (v *ValidateDoc) boundsTag() string {
	var rules []string
	if v.Min != nil {
		rules = append(rules, "min="+string(*v.Min))
	}
	if v.Max != nil {
		rules = append(rules, "max="+string(*v.Max))
	}
	return strings.Join(rules, ",")
}

// oneOfTag quotes values holding spaces; validator splits oneof on spaces.
func oneOfTag(values []string) string {
	if len(values) == 0 {
		return ""
	}
	quoted := make([]string, len(values))
	for i, s := range values {
		if strings.ContainsAny(s, " ") {
			s = "'" + s + "'"
		}
		quoted[i] = s
	}
	return "oneof=" + strings.Join(quoted, " ")
}

// check runs a validator tag. validator panics when a bound does not fit the
// value's kind, for example a fractional min on an int.
func check(val any, tag string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("rule %q does not apply to %T: %v", tag, val, r)
		}
	}()
	return validate.Var(val, tag)
}

func (v *ValidateDoc) describe(err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return err
	}
	switch fe := errs[0]; fe.Tag() {
	case "oneof":
		return fmt.Errorf("must be one of %s", strings.Join(v.OneOf, ", "))
	case "min":
		return fmt.Errorf("must be at least %s", fe.Param())
	case "max":
		return fmt.Errorf("must be at most %s", fe.Param())
	default:
		return fmt.Errorf("failed %s=%s", fe.Tag(), fe.Param())
	}
}
