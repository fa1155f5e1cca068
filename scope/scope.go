// Package scope implements the interpreter's variable scope chain (spec
// component D): a Map of name bindings per element frame, chained to its
// ancestor frame's Map, plus an Arena that associates a Map with a
// vdom.Element without needing to add a field to that external interface.
//
// The original stores a scope pointer directly on the document tree node;
// since vdom.Element here is an interface owned by an external package
// (go-xmldom, wrapped), this instead keeps a slice-backed arena plus a
// side-table index from Element to its slot, the translation the
// interpreter's design notes call for (spec §9).
package scope

import "github.com/agentflare-ai/hvml-go/value"

// Map holds name bindings for one frame, chained to its lexical parent.
// Temporary variables (`$name`) are looked up by walking Parent until
// found; a name bound in more than one ancestor shadows the outer one.
type Map struct {
	Parent   *Map
	bindings map[string]value.Value
}

// NewMap creates a scope chained to parent (nil for a document root).
func NewMap(parent *Map) *Map {
	return &Map{Parent: parent, bindings: map[string]value.Value{}}
}

// Define binds name in this scope directly, taking ownership of v
// (overwriting and releasing any previous binding of the same name in
// this scope, not in an ancestor).
func (m *Map) Define(name string, v value.Value) {
	if old, ok := m.bindings[name]; ok && old != nil {
		old.Unref()
	}
	m.bindings[name] = v
}

// LookupLocal resolves name in this scope only, without walking Parent.
func (m *Map) LookupLocal(name string) (value.Value, bool) {
	v, ok := m.bindings[name]
	return v, ok
}

// Lookup resolves name by walking from this scope up through Parent,
// matching the ancestor-scope-chain rule for unqualified temporary
// variable names.
func (m *Map) Lookup(name string) (value.Value, bool) {
	for s := m; s != nil; s = s.Parent {
		if v, ok := s.bindings[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Assign finds the nearest scope (this one or an ancestor) that already
// binds name and overwrites it there; it returns false without creating
// a new binding if name is unbound anywhere in the chain, since plain
// assignment (as opposed to Define) never introduces a new variable.
func (m *Map) Assign(name string, v value.Value) bool {
	for s := m; s != nil; s = s.Parent {
		if old, ok := s.bindings[name]; ok {
			if old != nil {
				old.Unref()
			}
			s.bindings[name] = v
			return true
		}
	}
	return false
}

// Names returns the locally bound names, for diagnostics and snapshotting.
func (m *Map) Names() []string {
	out := make([]string, 0, len(m.bindings))
	for k := range m.bindings {
		out = append(out, k)
	}
	return out
}

// Destroy releases every value this scope owns directly. Callers are
// responsible for destroying child scopes before their parent (the frame
// stack's pop order gives this post-order when the step loop calls
// Arena.Destroy).
func (m *Map) Destroy() {
	for k, v := range m.bindings {
		if v != nil {
			v.Unref()
		}
		delete(m.bindings, k)
	}
}
