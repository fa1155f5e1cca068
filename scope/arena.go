package scope

import "github.com/agentflare-ai/hvml-go/vdom"

// Arena owns the slice-backed storage for every scope Map in a document,
// indexed by the vdom.Element it belongs to. A frame created for an
// element reuses the same Map across AFTER_PUSHED/RERUN re-entry (spec
// component E's frame-state machine), which is why CreateIfAbsent, not a
// plain Create, is the entry point.
type Arena struct {
	maps  []*Map
	index map[vdom.Element]int
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{index: map[vdom.Element]int{}}
}

// CreateIfAbsent returns the Map already associated with el, or creates
// one chained to parent and records it.
func (a *Arena) CreateIfAbsent(el vdom.Element, parent *Map) *Map {
	if i, ok := a.index[el]; ok {
		return a.maps[i]
	}
	m := NewMap(parent)
	a.index[el] = len(a.maps)
	a.maps = append(a.maps, m)
	return m
}

// Get returns the Map for el, if one has been created.
func (a *Arena) Get(el vdom.Element) (*Map, bool) {
	i, ok := a.index[el]
	if !ok {
		return nil, false
	}
	return a.maps[i], true
}

// Destroy releases el's scope (if any) and removes it from the index.
// Callers must destroy an element's own scope before its parent's, which
// the frame stack's pop order (children pop before their parent frame)
// already guarantees.
func (a *Arena) Destroy(el vdom.Element) {
	i, ok := a.index[el]
	if !ok {
		return
	}
	a.maps[i].Destroy()
	delete(a.index, el)
}
