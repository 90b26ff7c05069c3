package dataprocessing

import (
	"fmt"
	"math"
	"path"
	"regexp"
	"strconv"
	"strings"
)

var (
	leadingNumber = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)
	nonSlugRun    = regexp.MustCompile(`[^a-z0-9]+`)
)

// ToFloat coerces a raw cell value into a number. Thousands separators are
// stripped and trailing decoration ("12.5 m") is ignored. Blank and
// non-numeric input yields nil; NaN and infinities never escape.
func ToFloat(v any) *float64 {
	switch x := v.(type) {
	case nil:
		return nil
	case float64:
		return finite(x)
	case float32:
		return finite(float64(x))
	case int:
		f := float64(x)
		return &f
	case int64:
		f := float64(x)
		return &f
	case bool:
		return nil
	case string:
		return parseLeadingFloat(x)
	default:
		return parseLeadingFloat(fmt.Sprint(x))
	}
}

func parseLeadingFloat(s string) *float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return nil
	}
	m := leadingNumber.FindString(s)
	if m == "" {
		return nil
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return nil
	}
	return finite(f)
}

func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// EnsureNonNegative clamps a value to zero or above; nil passes through.
func EnsureNonNegative(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := math.Max(0, *f)
	return &v
}

// ParseCoordinate reads a single coordinate component. For text such as
// "-25.7461, 28.1881" only the part before the first comma is used.
func ParseCoordinate(v any) *float64 {
	s, ok := v.(string)
	if !ok {
		return ToFloat(v)
	}
	if i := strings.Index(s, ","); i >= 0 {
		s = s[:i]
	}
	return ToFloat(strings.TrimSpace(s))
}

// Slugify lower-cases s and collapses every run of characters outside
// [a-z0-9] into a single hyphen, trimming hyphens at either end.
func Slugify(s string) string {
	s = nonSlugRun.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(s, "-")
}

// FilenameStem returns the base name of a file without its extension.
func FilenameStem(filename string) string {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(filename), `\`, "/"))
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSuffix(base, path.Ext(base))
}

func textOf(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strings.ToUpper(strconv.FormatBool(x))
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}
