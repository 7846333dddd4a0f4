package framework

import (
	"sort"
	"strings"
)

// DataStore holds option values. Keys are case-insensitive and keep the case
// they were first set with. Lookups that miss fall back to the parent store,
// if any.
type DataStore struct {
	parent  *DataStore
	entries map[string]*dsEntry
}

type dsEntry struct {
	name  string
	value string
	user  bool
}

// NewDataStore returns an empty DataStore whose lookups fall back to parent,
// which may be nil.
func NewDataStore(parent *DataStore) *DataStore {
	return &DataStore{parent: parent, entries: map[string]*dsEntry{}}
}

// Set sets a user-defined value.
func (ds *DataStore) Set(name, value string) { ds.set(name, value, true) }

// SetDefault sets a value that was not chosen by the user.
func (ds *DataStore) SetDefault(name, value string) { ds.set(name, value, false) }

func (ds *DataStore) set(name, value string, user bool) {
	k := strings.ToLower(name)
	if e, ok := ds.entries[k]; ok {
		e.value, e.user = value, user
		return
	}
	ds.entries[k] = &dsEntry{name, value, user}
}

// Get looks up a value in this store and then in the parent.
func (ds *DataStore) Get(name string) (string, bool) {
	if e, ok := ds.entries[strings.ToLower(name)]; ok {
		return e.value, true
	}
	if ds.parent != nil {
		return ds.parent.Get(name)
	}
	return "", false
}

// Has reports whether this store, not counting the parent, has name.
func (ds *DataStore) Has(name string) bool {
	_, ok := ds.entries[strings.ToLower(name)]
	return ok
}

// UserDefined reports whether name was set with Set.
func (ds *DataStore) UserDefined(name string) bool {
	e, ok := ds.entries[strings.ToLower(name)]
	return ok && e.user
}

// Unset removes name from this store and reports whether it was present.
func (ds *DataStore) Unset(name string) bool {
	k := strings.ToLower(name)
	_, ok := ds.entries[k]
	delete(ds.entries, k)
	return ok
}

// ClearNonUserDefined removes all values not set with Set.
func (ds *DataStore) ClearNonUserDefined() {
	for k, e := range ds.entries {
		if !e.user {
			delete(ds.entries, k)
		}
	}
}

// Names returns the names in this store, sorted case-insensitively.
func (ds *DataStore) Names() []string {
	names := make([]string, 0, len(ds.entries))
	for _, e := range ds.entries {
		names = append(names, e.name)
	}
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
	return names
}

// Map returns the values of this store and its ancestors, with this store
// taking precedence.
func (ds *DataStore) Map() map[string]string {
	m := map[string]string{}
	if ds.parent != nil {
		m = ds.parent.Map()
	}
	for _, e := range ds.entries {
		for k := range m {
			if strings.EqualFold(k, e.name) {
				delete(m, k)
			}
		}
		m[e.name] = e.value
	}
	return m
}
