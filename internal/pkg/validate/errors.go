// Package validate holds path-keyed validation errors and the rule helpers
// used by step and instruction schemas.
package validate

import (
	"encoding/json"
	"sort"
	"strings"
)

// Errors maps field paths to messages, keeping the order in which paths
// first failed. Only the first message per path is kept.
type Errors struct {
	order []string
	msgs  map[string]string
}

func NewErrors() *Errors {
	return &Errors{msgs: make(map[string]string)}
}

func (e *Errors) Add(path, msg string) {
	if _, ok := e.msgs[path]; ok {
		return
	}
	e.order = append(e.order, path)
	e.msgs[path] = msg
}

func (e *Errors) Has(path string) bool {
	_, ok := e.msgs[path]
	return ok
}

func (e *Errors) Get(path string) string { return e.msgs[path] }

func (e *Errors) Len() int {
	if e == nil {
		return 0
	}
	return len(e.order)
}

func (e *Errors) Empty() bool { return e.Len() == 0 }

// Paths returns the failed paths in insertion order.
func (e *Errors) Paths() []string {
	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}

func (e *Errors) Map() map[string]string {
	out := make(map[string]string, len(e.msgs))
	for k, v := range e.msgs {
		out[k] = v
	}
	return out
}

func (e *Errors) Merge(other *Errors) {
	if other == nil {
		return
	}
	for _, p := range other.order {
		e.Add(p, other.msgs[p])
	}
}

// Filter returns the errors whose path satisfies keep.
func (e *Errors) Filter(keep func(path string) bool) *Errors {
	out := NewErrors()
	for _, p := range e.order {
		if keep(p) {
			out.Add(p, e.msgs[p])
		}
	}
	return out
}

// Err returns the errors as an error value, or nil when there are none.
func (e *Errors) Err() error {
	if e.Empty() {
		return nil
	}
	return &Error{Errors: e}
}

func (e *Errors) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.msgs)
}

func (e *Errors) UnmarshalJSON(data []byte) error {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	*e = *NewErrors()
	for _, k := range keys {
		e.Add(k, m[k])
	}
	return nil
}

// Error wraps a non-empty Errors so it can travel as an error.
type Error struct {
	Errors *Errors
}

func (e *Error) Error() string {
	parts := make([]string, 0, e.Errors.Len())
	for _, p := range e.Errors.order {
		parts = append(parts, p+": "+e.Errors.msgs[p])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
