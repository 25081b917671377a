package models

import "sort"

// ErrorSet maps a field name to a human-readable validation message. An empty
// set means the input is valid.
type ErrorSet map[string]string

// Empty reports whether the set has no errors.
func (e ErrorSet) Empty() bool {
	return len(e) == 0
}

// Add records msg for field unless the field already has a message; the first
// failing rule wins.
func (e ErrorSet) Add(field, msg string) {
	if _, exists := e[field]; exists {
		return
	}
	e[field] = msg
}

// Has reports whether field has an error.
func (e ErrorSet) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// Fields returns the invalid field names in display order, so callers can
// focus the first error. Unknown fields sort last, alphabetically.
func (e ErrorSet) Fields() []string {
	out := make([]string, 0, len(e))
	for f := range e {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		oi, oj := FieldOrder(out[i]), FieldOrder(out[j])
		switch {
		case oi < 0 && oj < 0:
			return out[i] < out[j]
		case oi < 0:
			return false
		case oj < 0:
			return true
		}
		return oi < oj
	})
	return out
}

// First returns the first invalid field in display order.
func (e ErrorSet) First() (string, bool) {
	fields := e.Fields()
	if len(fields) == 0 {
		return "", false
	}
	return fields[0], true
}

// Merge copies entries of other that are not already present.
func (e ErrorSet) Merge(other ErrorSet) {
	for f, msg := range other {
		e.Add(f, msg)
	}
}
