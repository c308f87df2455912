package xsd

import (
	"fmt"
	"math/big"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Check reports whether raw is a valid lexical value of the type.
func (st *SimpleType) Check(raw string) error {
	if st.Parent != nil {
		err := st.Parent.Check(raw)
		if err != nil {
			return err
		}
	}

	value := normalizeSpace(st.Base, raw)

	if st.Parent == nil {
		err := checkBuiltin(st.Base, value)
		if err != nil {
			return err
		}
	}

	if len(st.Enumeration) > 0 && !slices.Contains(st.Enumeration, value) {
		return fmt.Errorf("value %q is not one of [%s]", value, strings.Join(st.Enumeration, ", "))
	}

	length := utf8.RuneCountInString(value)
	if st.MinLength >= 0 && length < st.MinLength {
		return fmt.Errorf("value %q is shorter than %d characters", value, st.MinLength)
	}

	if st.MaxLength >= 0 && length > st.MaxLength {
		return fmt.Errorf("value %q is longer than %d characters", value, st.MaxLength)
	}

	if st.TotalDigits >= 0 && countDigits(value) > st.TotalDigits {
		return fmt.Errorf("value %q has more than %d digits", value, st.TotalDigits)
	}

	if st.MinInclusive != nil || st.MaxInclusive != nil {
		n, ok := new(big.Int).SetString(strings.TrimPrefix(value, "+"), 10)
		if !ok {
			return fmt.Errorf("value %q is not an integer", value)
		}

		if st.MinInclusive != nil && n.Cmp(st.MinInclusive) < 0 {
			return fmt.Errorf("value %s is less than %s", value, st.MinInclusive)
		}

		if st.MaxInclusive != nil && n.Cmp(st.MaxInclusive) > 0 {
			return fmt.Errorf("value %s is greater than %s", value, st.MaxInclusive)
		}
	}

	for _, re := range st.Patterns {
		if !re.MatchString(value) {
			return fmt.Errorf("value %q does not match pattern %s", value, strings.TrimSuffix(strings.TrimPrefix(re.String(), "^(?:"), ")$"))
		}
	}

	return nil
}

// --- Private api ---

var (
	integerRe = regexp.MustCompile(`^[+-]?[0-9]+$`)
	dateRe    = regexp.MustCompile(`^([0-9]{4}-[0-9]{2}-[0-9]{2})(Z|[+-]([0-9]{2}):([0-9]{2}))?$`)
)

func normalizeSpace(base, raw string) string {
	switch base {
	case "string":
		return raw
	case "normalizedString":
		return strings.Map(func(r rune) rune {
			if r == '\t' || r == '\n' || r == '\r' {
				return ' '
			}

			return r
		}, raw)
	default:
		return strings.Join(strings.Fields(raw), " ")
	}
}

func checkBuiltin(base, value string) error {
	switch base {
	case "integer", "nonNegativeInteger", "positiveInteger":
		if !integerRe.MatchString(value) {
			return fmt.Errorf("value %q is not an integer", value)
		}

		n, _ := new(big.Int).SetString(strings.TrimPrefix(value, "+"), 10)

		if base == "nonNegativeInteger" && n.Sign() < 0 {
			return fmt.Errorf("value %s is negative", value)
		}

		if base == "positiveInteger" && n.Sign() <= 0 {
			return fmt.Errorf("value %s is not positive", value)
		}
	case "date":
		return checkDate(value)
	case "boolean":
		switch value {
		case "true", "false", "1", "0":
		default:
			return fmt.Errorf("value %q is not a boolean", value)
		}
	}

	return nil
}

func checkDate(value string) error {
	m := dateRe.FindStringSubmatch(value)
	if m == nil {
		return fmt.Errorf("value %q is not a date (YYYY-MM-DD)", value)
	}

	_, err := time.Parse(time.DateOnly, m[1])
	if err != nil {
		return fmt.Errorf("value %q is not a valid date", value)
	}

	if m[3] != "" {
		hh, _ := strconv.Atoi(m[3])
		mm, _ := strconv.Atoi(m[4])

		if hh > 14 || mm > 59 || (hh == 14 && mm != 0) {
			return fmt.Errorf("value %q has an invalid timezone", value)
		}
	}

	return nil
}

func countDigits(value string) int {
	digits := strings.TrimLeft(value, "+-")
	if i := strings.IndexByte(digits, '.'); i >= 0 {
		digits = strings.TrimRight(digits[:i]+digits[i+1:], "0")
	}

	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		return 1
	}

	return len(digits)
}
