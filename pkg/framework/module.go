package framework

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Module types.
const (
	TypeExploit   = "exploit"
	TypeAuxiliary = "auxiliary"
	TypePost      = "post"
)

var moduleTypes = map[string]bool{TypeExploit: true, TypeAuxiliary: true, TypePost: true}

// Option describes a module option.
type Option struct {
	Name        string
	Default     string
	Required    bool
	Description string
}

// Module is an instance of a module. Each call to CreateModule returns a new
// instance with its own datastore.
type Module interface {
	// Name is the full reference name, e.g. "exploit/multi/handler".
	Name() string
	Type() string
	Description() string
	Options() []Option
	Datastore() *DataStore
	// PayloadCompatible reports whether the module can deliver the payload.
	PayloadCompatible(payload string) bool
	// ExploitSimple runs the module with opts layered over its datastore.
	ExploitSimple(fw *Framework, opts map[string]string, out io.Writer) error
}

// Factory creates an instance of a module.
type Factory func() Module

// BaseModule implements the bookkeeping part of Module. Concrete modules
// embed it and add ExploitSimple.
type BaseModule struct {
	ModName string
	ModDesc string
	ModOpts []Option

	ds *DataStore
}

// Name implements Module.
func (m *BaseModule) Name() string { return m.ModName }

// Type implements Module.
func (m *BaseModule) Type() string {
	t, _, _ := strings.Cut(m.ModName, "/")
	return t
}

// Description implements Module.
func (m *BaseModule) Description() string { return m.ModDesc }

// Options implements Module.
func (m *BaseModule) Options() []Option { return m.ModOpts }

// Datastore implements Module.
func (m *BaseModule) Datastore() *DataStore { return m.ds }

// PayloadCompatible implements Module. Only exploits take payloads.
func (m *BaseModule) PayloadCompatible(payload string) bool {
	return m.Type() == TypeExploit
}

func (m *BaseModule) setup(parent *DataStore) {
	m.ds = NewDataStore(parent)
	for _, opt := range m.ModOpts {
		if opt.Default != "" {
			m.ds.SetDefault(opt.Name, opt.Default)
		}
	}
}

type setupper interface{ setup(parent *DataStore) }

// Resolve merges the datastore of m with opts and checks required options.
func Resolve(m Module, opts map[string]string) (map[string]string, error) {
	values := m.Datastore().Map()
	for k, v := range opts {
		for existing := range values {
			if strings.EqualFold(existing, k) {
				delete(values, existing)
			}
		}
		values[k] = v
	}
	var missing []string
	for _, opt := range m.Options() {
		if opt.Required && lookupFold(values, opt.Name) == "" {
			missing = append(missing, opt.Name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required options: %s", strings.Join(missing, ", "))
	}
	return values, nil
}

func lookupFold(m map[string]string, key string) string {
	if v, ok := m[key]; ok {
		return v
	}
	for k, v := range m {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

// RegisterModule adds a module to the registry. Names must start with a
// module type; a bad name is recorded as a load error.
func (fw *Framework) RegisterModule(name string, f Factory) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	t, rest, _ := strings.Cut(name, "/")
	if !moduleTypes[t] || rest == "" {
		fw.loadErrors[name] = fmt.Errorf("unknown module type %q", t)
		return
	}
	if _, dup := fw.modules[name]; dup {
		fw.loadWarnings[name] = "module registered twice; keeping the latest"
	}
	fw.modules[name] = f
}

// CreateModule creates a module instance by its full name, or by a suffix
// that identifies exactly one module, e.g. "multi/handler".
func (fw *Framework) CreateModule(name string) (Module, bool) {
	fw.mu.RLock()
	f, ok := fw.modules[name]
	if !ok {
		var matches []string
		for full := range fw.modules {
			if strings.HasSuffix(full, "/"+name) {
				matches = append(matches, full)
			}
		}
		if len(matches) == 1 {
			f, ok = fw.modules[matches[0]], true
		}
	}
	fw.mu.RUnlock()
	if !ok {
		return nil, false
	}
	m := f()
	if s, ok := m.(setupper); ok {
		s.setup(fw.datastore)
	}
	return m, true
}

// Modules returns the sorted names of all registered modules.
func (fw *Framework) Modules() []string {
	fw.mu.RLock()
	defer fw.mu.RUnlock()
	names := make([]string, 0, len(fw.modules))
	for name := range fw.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RegisterPayload adds a payload.
func (fw *Framework) RegisterPayload(name, desc string) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	fw.payloads[name] = desc
}

// IsPayloadValid reports whether name is a known payload.
func (fw *Framework) IsPayloadValid(name string) bool {
	fw.mu.RLock()
	defer fw.mu.RUnlock()
	_, ok := fw.payloads[name]
	return ok
}

// Payloads returns the sorted names of all payloads.
func (fw *Framework) Payloads() []string {
	fw.mu.RLock()
	defer fw.mu.RUnlock()
	names := make([]string, 0, len(fw.payloads))
	for name := range fw.payloads {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
