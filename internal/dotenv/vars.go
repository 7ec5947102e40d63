// SPDX-License-Identifier: MPL-2.0

package dotenv

import (
	"iter"
	"maps"
	"slices"
)

type (
	// quoteKind records how a value was written in the source file.
	quoteKind uint8

	// entry is a single parsed assignment.
	entry struct {
		key   string
		value string
		// source is the value as handed to the reference expander. It differs
		// from value only for double-quoted values, where escaped '$' and '\'
		// stay escaped so expansion does not reinterpret them.
		source string
		quote  quoteKind
	}

	// Vars is an ordered, immutable set of loaded variables. Keys keep the
	// position of their first assignment in the file; a later assignment of
	// the same key replaces the value in place.
	//
	// The zero value is an empty set.
	Vars struct {
		entries []entry
		index   map[string]int
	}
)

const (
	quoteNone quoteKind = iota
	quoteDouble
	quoteSingle
)

// FromMap builds a Vars from a plain map. Keys are ordered lexically, which
// keeps results deterministic for callers that did not read a file.
func FromMap(m map[string]string) Vars {
	var v Vars
	for _, key := range slices.Sorted(maps.Keys(m)) {
		v.set(entry{key: key, value: m[key], source: m[key]})
	}
	return v
}

// Len returns the number of variables.
func (v Vars) Len() int { return len(v.entries) }

// Get returns the value for key and whether it is present.
func (v Vars) Get(key string) (string, bool) {
	i, ok := v.index[key]
	if !ok {
		return "", false
	}
	return v.entries[i].value, true
}

// Keys returns the variable names in file order.
func (v Vars) Keys() []string {
	keys := make([]string, len(v.entries))
	for i, e := range v.entries {
		keys[i] = e.key
	}
	return keys
}

// All iterates over the variables in file order.
func (v Vars) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, e := range v.entries {
			if !yield(e.key, e.value) {
				return
			}
		}
	}
}

// Map returns a copy of the variables as a plain map.
func (v Vars) Map() map[string]string {
	m := make(map[string]string, len(v.entries))
	for _, e := range v.entries {
		m[e.key] = e.value
	}
	return m
}

// Filter returns a new Vars holding the variables for which keep returns
// true, in the same order. The receiver is not modified.
func (v Vars) Filter(keep func(key string) bool) Vars {
	var out Vars
	for _, e := range v.entries {
		if keep(e.key) {
			out.set(e)
		}
	}
	return out
}

// set appends e or replaces the value of an existing key in place.
func (v *Vars) set(e entry) {
	if v.index == nil {
		v.index = make(map[string]int)
	}
	if i, ok := v.index[e.key]; ok {
		v.entries[i] = e
		return
	}
	v.index[e.key] = len(v.entries)
	v.entries = append(v.entries, e)
}
