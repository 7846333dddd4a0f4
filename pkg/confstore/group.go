package confstore

import "strings"

// Group is an ordered mapping of keys to string values. Keys are unique and
// stored with their case preserved; Lookup compares them case-insensitively.
type Group struct {
	keys   []string
	values map[string]string
}

// NewGroup returns an empty Group.
func NewGroup() *Group {
	return &Group{values: map[string]string{}}
}

// GroupOf builds a Group from alternating keys and values.
func GroupOf(kvs ...string) *Group {
	g := NewGroup()
	for i := 0; i+1 < len(kvs); i += 2 {
		g.Set(kvs[i], kvs[i+1])
	}
	return g
}

// Set sets key to value. A new key is appended after the existing ones.
func (g *Group) Set(key, value string) {
	if _, ok := g.values[key]; !ok {
		g.keys = append(g.keys, key)
	}
	g.values[key] = value
}

// Get returns the value of key, matched exactly.
func (g *Group) Get(key string) (string, bool) {
	v, ok := g.values[key]
	return v, ok
}

// Lookup returns the value of the first key equal to key under Unicode case
// folding.
func (g *Group) Lookup(key string) (string, bool) {
	if v, ok := g.values[key]; ok {
		return v, true
	}
	for _, k := range g.keys {
		if strings.EqualFold(k, key) {
			return g.values[k], true
		}
	}
	return "", false
}

// Delete removes key, matched exactly, and reports whether it existed.
func (g *Group) Delete(key string) bool {
	if _, ok := g.values[key]; !ok {
		return false
	}
	delete(g.values, key)
	for i, k := range g.keys {
		if k == key {
			g.keys = append(g.keys[:i:i], g.keys[i+1:]...)
			break
		}
	}
	return true
}

// Keys returns the keys in order.
func (g *Group) Keys() []string {
	return append([]string(nil), g.keys...)
}

// Len returns the number of keys.
func (g *Group) Len() int { return len(g.keys) }

// Each calls f with each key and value in order.
func (g *Group) Each(f func(key, value string)) {
	for _, k := range g.keys {
		f(k, g.values[k])
	}
}

// Equal reports whether two groups have the same keys, values and order.
func (g *Group) Equal(other *Group) bool {
	if g.Len() != other.Len() {
		return false
	}
	for i, k := range g.keys {
		if other.keys[i] != k || other.values[k] != g.values[k] {
			return false
		}
	}
	return true
}

// Groups is an ordered set of named groups.
type Groups struct {
	names  []string
	groups map[string]*Group
}

// NewGroups returns an empty set of groups.
func NewGroups() *Groups {
	return &Groups{groups: map[string]*Group{}}
}

// Get returns the named group, or nil if it doesn't exist.
func (gs *Groups) Get(name string) *Group { return gs.groups[name] }

// Exists reports whether the named group exists.
func (gs *Groups) Exists(name string) bool {
	_, ok := gs.groups[name]
	return ok
}

// Put stores g under name, replacing any existing group of the same name
// while keeping its position.
func (gs *Groups) Put(name string, g *Group) {
	if _, ok := gs.groups[name]; !ok {
		gs.names = append(gs.names, name)
	}
	gs.groups[name] = g
}

// Names returns the group names in order.
func (gs *Groups) Names() []string {
	return append([]string(nil), gs.names...)
}

// Len returns the number of groups.
func (gs *Groups) Len() int { return len(gs.names) }

// ensure returns the named group, creating an empty one if needed.
func (gs *Groups) ensure(name string) *Group {
	if g, ok := gs.groups[name]; ok {
		return g
	}
	g := NewGroup()
	gs.Put(name, g)
	return g
}
