package framework

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"src.kitcon.sh/pkg/dispatch"
)

// Host is the part of the console available to plugins.
type Host interface {
	// RunSingle runs one command line as if typed at the prompt.
	RunSingle(line string)
	// Output is where the console prints.
	Output() io.Writer
}

// Plugin is a loaded plugin.
type Plugin interface {
	Name() string
	Description() string
	// Handler returns the commands the plugin adds, or nil.
	Handler() dispatch.Handler
	// Cleanup is called when the plugin is unloaded.
	Cleanup()
}

// PluginFactory instantiates a plugin.
type PluginFactory func(host Host, opts map[string]string) (Plugin, error)

// RegisterPlugin makes a plugin available to LoadPlugin.
func (fw *Framework) RegisterPlugin(name string, f PluginFactory) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	fw.pluginFactories[name] = f
}

// PluginName normalizes a plugin path like "plugins/alias.so" to "alias".
func PluginName(path string) string {
	base := filepath.Base(filepath.ToSlash(path))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// LoadPlugin instantiates and records a plugin.
func (fw *Framework) LoadPlugin(path string, host Host, opts map[string]string) (Plugin, error) {
	name := PluginName(path)
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if _, loaded := fw.plugins[name]; loaded {
		return nil, fmt.Errorf("plugin %s is already loaded", name)
	}
	f, ok := fw.pluginFactories[name]
	if !ok {
		return nil, fmt.Errorf("no plugin named %s", name)
	}
	p, err := f(host, opts)
	if err != nil {
		return nil, fmt.Errorf("plugin %s: %w", name, err)
	}
	fw.plugins[name] = p
	return p, nil
}

// UnloadPlugin cleans up and forgets a plugin.
func (fw *Framework) UnloadPlugin(name string) (Plugin, bool) {
	fw.mu.Lock()
	p, ok := fw.plugins[name]
	delete(fw.plugins, name)
	fw.mu.Unlock()
	if ok {
		p.Cleanup()
	}
	return p, ok
}

// Plugins returns the loaded plugins sorted by name.
func (fw *Framework) Plugins() []Plugin {
	fw.mu.RLock()
	defer fw.mu.RUnlock()
	list := make([]Plugin, 0, len(fw.plugins))
	for _, p := range fw.plugins {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name() < list[j].Name() })
	return list
}
