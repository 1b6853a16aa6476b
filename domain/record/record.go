// Package record models the mutable attribute bag the host hands to the
// engine. The engine mutates the record in place and never owns its
// lifecycle.
package record

import "seqcode/domain/core"

// Record maps attribute names to tagged values.
type Record map[string]core.Value

// Contains reports whether the record carries the named attribute at all.
// The empty attribute name is never contained, so a definition with no
// trigger attribute can never fire on an update.
func (r Record) Contains(name string) bool {
	if name == "" {
		return false
	}
	_, ok := r[name]
	return ok
}

// Get returns the value for the named attribute.
func (r Record) Get(name string) (core.Value, bool) {
	v, ok := r[name]
	return v, ok
}

// Set writes an attribute value in place.
func (r Record) Set(name string, v core.Value) {
	r[name] = v
}

// BlankAt reports whether the named attribute is absent or holds a blank
// value. A populated attribute must never be overwritten by generation.
func (r Record) BlankAt(name string) bool {
	v, ok := r[name]
	if !ok {
		return true
	}
	return v.IsBlank()
}

// Clone copies the record one level deep. Values are immutable, so a shallow
// value copy is enough.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
