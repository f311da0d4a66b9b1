// Copyright 2021 The easyhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package header provides the ordered header multimap used to accumulate
// custom request headers before they are handed to the transport engine.
//
// Header names are stored exactly as given. No canonicalization or case
// folding is done at this layer, so "X-Trace" and "x-trace" are distinct
// names. Callers control the casing that appears on the wire.
package header

import "iter"

// A Multimap maps header names to an ordered sequence of values.
//
// Adding a value never replaces or deduplicates existing values. Names
// are remembered in the order they were first added, which makes the
// iteration order of All deterministic. The zero value is an empty
// Multimap ready to use.
type Multimap struct {
	names  []string
	values map[string][]string
}

// A Field is a single header name and value pair.
type Field struct {
	Name  string
	Value string
}

// Add appends value to the sequence of values for name.
func (m *Multimap) Add(name, value string) {
	if m.values == nil {
		m.values = make(map[string][]string)
	}
	vs, ok := m.values[name]
	if !ok {
		m.names = append(m.names, name)
	}
	m.values[name] = append(vs, value)
}

// Values returns the values added for name, in the order they were
// added. The lookup is an exact string match. If name was never added,
// Values returns nil.
//
// The returned slice must not be modified.
func (m *Multimap) Values(name string) []string {
	return m.values[name]
}

// Len returns the number of distinct names in the Multimap.
func (m *Multimap) Len() int {
	return len(m.names)
}

// Empty reports whether no header has been added.
func (m *Multimap) Empty() bool {
	return len(m.names) == 0
}

// All returns an iterator over every name and value pair. Names are
// yielded in first-insertion order and, for a name with several values,
// one pair is yielded per value in insertion order.
func (m *Multimap) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, name := range m.names {
			for _, v := range m.values[name] {
				if !yield(name, v) {
					return
				}
			}
		}
	}
}

// Clone returns a deep copy of m.
func (m *Multimap) Clone() *Multimap {
	c := &Multimap{}
	for name, v := range m.All() {
		c.Add(name, v)
	}
	return c
}

// Fields returns an iterator over fs in slice order. It is a
// convenience for passing an ordered list of pairs wherever an
// iter.Seq2 of name and value is accepted.
func Fields(fs ...Field) iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, f := range fs {
			if !yield(f.Name, f.Value) {
				return
			}
		}
	}
}
