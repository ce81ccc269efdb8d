// Package fieldpath addresses leaves of JSON-like step documents using dotted
// and indexed paths such as "spec.instructions[2].spec.variation".
package fieldpath

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// WithPrefix composes a field name with the prefix of the position the
// editor is mounted at. An empty prefix means the document root.
func WithPrefix(prefix, name string) string {
	if prefix == "" {
		return name
	}
	if name == "" {
		return prefix
	}
	return prefix + "." + name
}

// Index returns the path of the i-th element of the list at base.
func Index(base string, i int) string {
	return base + "[" + strconv.Itoa(i) + "]"
}

// Segment is one step of a parsed path. Exactly one of Key or Index is
// meaningful, as indicated by IsIndex.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

var ErrInvalidPath = errors.New("invalid field path")

// MaxIndex is the largest list index a path may name. Set pads lists with
// nils up to the index it writes.
const MaxIndex = 9999

// Parse splits a path into its segments.
func Parse(path string) ([]Segment, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}

	var segs []Segment

	for _, part := range strings.Split(path, ".") {
		if part == "" {
			return nil, fmt.Errorf("%w: %q has an empty segment", ErrInvalidPath, path)
		}

		key := part
		rest := ""
		if i := strings.IndexByte(part, '['); i >= 0 {
			key, rest = part[:i], part[i:]
		}

		if key != "" {
			segs = append(segs, Segment{Key: key})
		}

		for rest != "" {
			end := strings.IndexByte(rest, ']')
			if rest[0] != '[' || end < 0 {
				return nil, fmt.Errorf("%w: %q has an unterminated index", ErrInvalidPath, path)
			}
			idx, err := strconv.Atoi(rest[1:end])
			if err != nil || idx < 0 {
				return nil, fmt.Errorf("%w: %q has a bad index %q", ErrInvalidPath, path, rest[1:end])
			}
			if idx > MaxIndex {
				return nil, fmt.Errorf("%w: %q has index %d above %d", ErrInvalidPath, path, idx, MaxIndex)
			}
			segs = append(segs, Segment{Index: idx, IsIndex: true})
			rest = rest[end+1:]
		}
	}

	return segs, nil
}

// Get returns the value at path and whether it exists.
func Get(doc any, path string) (any, bool) {
	segs, err := Parse(path)
	if err != nil {
		return nil, false
	}

	cur := doc
	for _, seg := range segs {
		switch node := cur.(type) {
		case map[string]any:
			if seg.IsIndex {
				return nil, false
			}
			v, ok := node[seg.Key]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			if !seg.IsIndex || seg.Index >= len(node) {
				return nil, false
			}
			cur = node[seg.Index]
		default:
			return nil, false
		}
	}
	return cur, true
}

// Set writes v at path, creating intermediate maps and lists as needed. Lists
// are grown with nil elements up to the addressed index.
func Set(doc map[string]any, path string, v any) error {
	segs, err := Parse(path)
	if err != nil {
		return err
	}
	if segs[0].IsIndex {
		return fmt.Errorf("%w: %q starts with an index", ErrInvalidPath, path)
	}
	if doc == nil {
		return errors.New("cannot set a field on a nil document")
	}

	_, err = set(doc, segs, v, path)
	return err
}

func set(node any, segs []Segment, v any, path string) (any, error) {
	if len(segs) == 0 {
		return v, nil
	}

	seg := segs[0]

	if seg.IsIndex {
		list, ok := node.([]any)
		if !ok {
			if node != nil {
				return nil, fmt.Errorf("%w: %q indexes a non-list value", ErrInvalidPath, path)
			}
			list = []any{}
		}
		for len(list) <= seg.Index {
			list = append(list, nil)
		}
		child, err := set(list[seg.Index], segs[1:], v, path)
		if err != nil {
			return nil, err
		}
		list[seg.Index] = child
		return list, nil
	}

	m, ok := node.(map[string]any)
	if !ok {
		if node != nil {
			return nil, fmt.Errorf("%w: %q descends into a non-object value", ErrInvalidPath, path)
		}
		m = map[string]any{}
	}
	child, err := set(m[seg.Key], segs[1:], v, path)
	if err != nil {
		return nil, err
	}
	m[seg.Key] = child
	return m, nil
}

// Delete removes the value at path. Removing a list element sets it to nil so
// sibling indexes stay stable. Missing paths are not an error.
func Delete(doc map[string]any, path string) {
	segs, err := Parse(path)
	if err != nil {
		return
	}

	parentPath := segs[:len(segs)-1]
	last := segs[len(segs)-1]

	var parent any = doc
	for _, seg := range parentPath {
		switch node := parent.(type) {
		case map[string]any:
			parent = node[seg.Key]
		case []any:
			if seg.Index >= len(node) {
				return
			}
			parent = node[seg.Index]
		default:
			return
		}
	}

	switch node := parent.(type) {
	case map[string]any:
		if !last.IsIndex {
			delete(node, last.Key)
		}
	case []any:
		if last.IsIndex && last.Index < len(node) {
			node[last.Index] = nil
		}
	}
}

// Walk calls fn for every leaf of doc. Object keys are visited in sorted
// order so the output is deterministic. Empty objects and lists are leaves.
func Walk(doc any, fn func(path string, v any)) {
	walk("", doc, fn)
}

func walk(path string, node any, fn func(string, any)) {
	switch n := node.(type) {
	case map[string]any:
		if len(n) == 0 && path != "" {
			fn(path, n)
			return
		}
		keys := make([]string, 0, len(n))
		for k := range n {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			walk(WithPrefix(path, k), n[k], fn)
		}
	case []any:
		if len(n) == 0 {
			fn(path, n)
			return
		}
		for i, item := range n {
			walk(Index(path, i), item, fn)
		}
	default:
		fn(path, n)
	}
}

// Clone deep copies maps and lists. Scalars are returned as-is.
func Clone(v any) any {
	switch n := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(n))
		for k, item := range n {
			out[k] = Clone(item)
		}
		return out
	case []any:
		out := make([]any, len(n))
		for i, item := range n {
			out[i] = Clone(item)
		}
		return out
	case map[string]string:
		out := make(map[string]any, len(n))
		for k, item := range n {
			out[k] = item
		}
		return out
	case []string:
		out := make([]any, len(n))
		for i, item := range n {
			out[i] = item
		}
		return out
	default:
		return v
	}
}

// Flatten lists every leaf of doc as path and a printable value.
func Flatten(doc any) [][2]string {
	var out [][2]string
	Walk(doc, func(path string, v any) {
		out = append(out, [2]string{path, Format(v)})
	})
	return out
}

// Format renders a leaf the way the variables view shows it.
func Format(v any) string {
	switch n := v.(type) {
	case nil:
		return ""
	case string:
		return n
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(n)
	case map[string]any:
		return "{}"
	case []any:
		return "[]"
	default:
		return fmt.Sprintf("%v", n)
	}
}

// IsDescendant reports whether path equals base or lives below it.
func IsDescendant(path, base string) bool {
	if path == base {
		return true
	}
	return strings.HasPrefix(path, base+".") || strings.HasPrefix(path, base+"[")
}
