package validate

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/fieldpath"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/i18n"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/value"
)

var (
	identifierRe = regexp.MustCompile(`^[a-zA-Z_][0-9a-zA-Z_$]{0,127}$`)
	nameRe       = regexp.MustCompile(`^[0-9a-zA-Z_.\-][0-9a-zA-Z_.\-\s]{0,127}$`)
	timeoutRe    = regexp.MustCompile(`^\s*(\d+\s*(ms|w|d|h|m|s)\s*)+$`)
	timeoutPart  = regexp.MustCompile(`(\d+)\s*(ms|w|d|h|m|s)`)

	// MemoryRe and CPURe match the resource quantities accepted for step
	// containers, e.g. 500Mi, 2Gi or 0.5, 500m.
	MemoryRe = regexp.MustCompile(`^\d+(\.\d+)?(Mi|Gi|M|G)?$`)
	CPURe    = regexp.MustCompile(`^\d+(\.\d+)?m?$`)
)

// Checker applies rules against one document, writing failures to Errs.
// Labels passed to its methods are i18n keys.
type Checker struct {
	Doc       map[string]any
	Errs      *Errors
	GetString i18n.GetString
}

func NewChecker(doc map[string]any, errs *Errors, getString i18n.GetString) *Checker {
	if getString == nil {
		getString = i18n.Default()
	}
	return &Checker{Doc: doc, Errs: errs, GetString: getString}
}

// Value classifies the leaf at path.
func (c *Checker) Value(path string) value.Value {
	raw, _ := fieldpath.Get(c.Doc, path)
	return value.Of(raw)
}

func (c *Checker) fail(path, key string, args ...any) {
	c.Errs.Add(path, c.GetString(key, args...))
}

func (c *Checker) label(key string) string { return c.GetString(key) }

// Required fails when path holds no value. Runtime inputs and expressions
// count as present.
func (c *Checker) Required(path, label string) bool {
	if c.Value(path).Empty() {
		c.fail(path, "validation.required", c.label(label))
		return false
	}
	return true
}

// fixedString returns the string at path when it is fixed and non-empty.
func (c *Checker) fixedString(path string) (string, bool) {
	v := c.Value(path)
	if !v.IsFixed() || v.Empty() {
		return "", false
	}
	s, ok := v.Raw().(string)
	if !ok {
		s = fmt.Sprintf("%v", v.Raw())
	}
	return s, true
}

func (c *Checker) OneOf(path, label string, options ...string) {
	s, ok := c.fixedString(path)
	if !ok {
		return
	}
	for _, o := range options {
		if o == s {
			return
		}
	}
	c.fail(path, "validation.oneOf", c.label(label), strings.Join(options, ", "))
}

func (c *Checker) Identifier(path, label string) {
	if !c.Required(path, label) {
		return
	}
	if s, ok := c.fixedString(path); ok && !identifierRe.MatchString(s) {
		c.fail(path, "validation.identifier", c.label(label))
	}
}

func (c *Checker) Name(path, label string) {
	if !c.Required(path, label) {
		return
	}
	if s, ok := c.fixedString(path); ok && !nameRe.MatchString(s) {
		c.fail(path, "validation.name", c.label(label))
	}
}

// Timeout validates a duration string of the form "1d 2h 30m 10s 500ms".
func (c *Checker) Timeout(path, label string, minimum time.Duration) {
	s, ok := c.fixedString(path)
	if !ok {
		return
	}
	d, err := ParseTimeout(s)
	if err != nil {
		c.fail(path, "validation.timeout", c.label(label))
		return
	}
	if d < minimum {
		c.fail(path, "validation.timeoutMinimum", c.label(label), FormatTimeout(minimum))
	}
}

// Pattern validates a fixed string against re. example is shown in the
// message.
func (c *Checker) Pattern(path, label string, re *regexp.Regexp, example string) {
	s, ok := c.fixedString(path)
	if !ok {
		return
	}
	if !re.MatchString(s) {
		c.fail(path, "validation.quantity", c.label(label), example)
	}
}

// StringList validates a fixed list of non-empty strings.
func (c *Checker) StringList(path, label string, minItems int) {
	v := c.Value(path)
	if !v.IsFixed() {
		return
	}
	if v.IsUnset() {
		if minItems > 0 {
			c.fail(path, "validation.required", c.label(label))
		}
		return
	}

	list, ok := v.Raw().([]any)
	if !ok {
		c.fail(path, "validation.list", c.label(label))
		return
	}
	if len(list) < minItems {
		c.fail(path, "validation.minItems", c.label(label), minItems)
		return
	}
	for i, item := range list {
		if value.Of(item).Empty() {
			c.fail(fieldpath.Index(path, i), "validation.required", c.label(label))
		}
	}
}

// StringMap validates a fixed object whose values are scalars and whose keys
// are not blank.
func (c *Checker) StringMap(path, label string) {
	v := c.Value(path)
	if !v.IsFixed() || v.IsUnset() {
		return
	}
	m, ok := v.Raw().(map[string]any)
	if !ok {
		c.fail(path, "validation.map", c.label(label))
		return
	}
	for k, item := range m {
		if strings.TrimSpace(k) == "" {
			c.fail(path, "validation.emptyKey", c.label(label))
			return
		}
		switch item.(type) {
		case string, float64, bool, nil:
		default:
			c.fail(path, "validation.map", c.label(label))
			return
		}
	}
}

func (c *Checker) Bool(path, label string) {
	v := c.Value(path)
	if !v.IsFixed() || v.IsUnset() {
		return
	}
	switch r := v.Raw().(type) {
	case bool:
	case string:
		if _, err := strconv.ParseBool(r); err != nil {
			c.fail(path, "validation.bool", c.label(label))
		}
	default:
		c.fail(path, "validation.bool", c.label(label))
	}
}

// Number returns the fixed numeric value at path. Numeric strings are
// accepted since YAML authors often quote them.
func (c *Checker) Number(path, label string) (float64, bool) {
	v := c.Value(path)
	if !v.IsFixed() || v.IsUnset() {
		return 0, false
	}
	switch r := v.Raw().(type) {
	case float64:
		return r, true
	case int:
		return float64(r), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(r), 64)
		if err == nil {
			return f, true
		}
	}
	c.fail(path, "validation.number", c.label(label))
	return 0, false
}

// IntRange validates a whole number in [lo, hi] and returns it.
func (c *Checker) IntRange(path, label, msgKey string, lo, hi int) (int, bool) {
	f, ok := c.Number(path, label)
	if !ok {
		return 0, false
	}
	if f != math.Trunc(f) || f < float64(lo) || f > float64(hi) {
		c.fail(path, msgKey, c.label(label))
		return 0, false
	}
	return int(f), true
}

// ParseTimeout parses "1w 2d 3h 4m 5s 600ms" style durations.
func ParseTimeout(s string) (time.Duration, error) {
	if !timeoutRe.MatchString(s) {
		return 0, fmt.Errorf("invalid timeout %q", s)
	}

	var total time.Duration
	for _, m := range timeoutPart.FindAllStringSubmatch(s, -1) {
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid timeout %q: %w", s, err)
		}
		var unit time.Duration
		switch m[2] {
		case "w":
			unit = 7 * 24 * time.Hour
		case "d":
			unit = 24 * time.Hour
		case "h":
			unit = time.Hour
		case "m":
			unit = time.Minute
		case "s":
			unit = time.Second
		case "ms":
			unit = time.Millisecond
		}
		total += time.Duration(n) * unit
	}
	return total, nil
}

// FormatTimeout renders d in the same notation ParseTimeout reads.
func FormatTimeout(d time.Duration) string {
	if d == 0 {
		return "0s"
	}

	var parts []string
	units := []struct {
		suffix string
		size   time.Duration
	}{
		{"d", 24 * time.Hour},
		{"h", time.Hour},
		{"m", time.Minute},
		{"s", time.Second},
		{"ms", time.Millisecond},
	}
	for _, u := range units {
		if n := d / u.size; n > 0 {
			parts = append(parts, strconv.FormatInt(int64(n), 10)+u.suffix)
			d -= n * u.size
		}
	}
	return strings.Join(parts, " ")
}
