// Package alias implements the alias plugin, which lets users name command
// lines.
//
// Aliases defined with the alias command become commands of their own.
// Aliases can also be predefined in the "plugins/alias" config group.
package alias

import (
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"src.kitcon.sh/pkg/confstore"
	"src.kitcon.sh/pkg/dispatch"
	"src.kitcon.sh/pkg/framework"
)

// Name of the plugin.
const Name = "alias"

// ConfigGroup holds predefined aliases.
const ConfigGroup = "plugins/alias"

var validName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.-]*$`)

// maxDepth bounds how deeply aliases may expand into other aliases.
const maxDepth = 10

// Register makes the plugin available to the framework.
func Register(fw *framework.Framework) {
	fw.RegisterPlugin(Name, New)
}

// Plugin is the alias plugin. It is its own command handler.
type Plugin struct {
	host    framework.Host
	out     io.Writer
	aliases map[string]string
	// Number of alias expansions in progress.
	depth int
}

// New instantiates the plugin. Options are taken as predefined aliases.
func New(host framework.Host, opts map[string]string) (framework.Plugin, error) {
	p := &Plugin{host: host, out: host.Output(), aliases: map[string]string{}}
	for name, value := range opts {
		if err := p.define(name, value); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Plugin) Name() string { return Name }

func (p *Plugin) Description() string { return "Adds the ability to alias console commands" }

func (p *Plugin) Handler() dispatch.Handler { return p }

// Cleanup forgets all aliases.
func (p *Plugin) Cleanup() { p.aliases = map[string]string{} }

// Aliases returns the defined aliases.
func (p *Plugin) Aliases() map[string]string {
	m := make(map[string]string, len(p.aliases))
	for k, v := range p.aliases {
		m[k] = v
	}
	return m
}

// LoadConfig reads predefined aliases from the config file. Invalid entries
// are skipped.
func (p *Plugin) LoadConfig(path string) {
	g := (confstore.Store{Path: path}).Load().Get(ConfigGroup)
	if g == nil {
		return
	}
	g.Each(func(name, value string) {
		if err := p.define(name, value); err != nil {
			fmt.Fprintf(p.out, "[-] %v\n", err)
		}
	})
}

func (p *Plugin) define(name, value string) error {
	if !validName.MatchString(name) {
		return fmt.Errorf("invalid alias name %q", name)
	}
	if name == "alias" {
		return fmt.Errorf("cannot alias the alias command")
	}
	words := strings.Fields(value)
	if len(words) == 0 {
		return fmt.Errorf("alias %s has an empty value", name)
	}
	if words[0] == name {
		return fmt.Errorf("alias %s cannot expand to itself", name)
	}
	p.aliases[name] = value
	return nil
}

// Commands implements dispatch.Handler.
func (p *Plugin) Commands() map[string]string {
	cmds := map[string]string{"alias": "create or view an alias"}
	for name, value := range p.aliases {
		cmds[name] = "alias for " + value
	}
	return cmds
}

// Invoke implements dispatch.Handler.
func (p *Plugin) Invoke(cmd string, args []string) error {
	if cmd != "alias" {
		value, ok := p.aliases[cmd]
		if !ok {
			return fmt.Errorf("unknown alias %s", cmd)
		}
		if p.depth >= maxDepth {
			return fmt.Errorf("alias %s: expansion nested more than %d levels, aliases may form a cycle", cmd, maxDepth)
		}
		p.depth++
		defer func() { p.depth-- }()
		p.host.RunSingle(strings.Join(append([]string{value}, args...), " "))
		return nil
	}
	switch len(args) {
	case 0:
		names := make([]string, 0, len(p.aliases))
		for name := range p.aliases {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(p.out, "alias %s %s\n", name, p.aliases[name])
		}
	case 1:
		if args[0] == "-c" {
			p.Cleanup()
			return nil
		}
		value, ok := p.aliases[args[0]]
		if !ok {
			return fmt.Errorf("%s is not aliased", args[0])
		}
		fmt.Fprintf(p.out, "alias %s %s\n", args[0], value)
	default:
		if args[0] == "-c" {
			delete(p.aliases, args[1])
			return nil
		}
		return p.define(args[0], strings.Join(args[1:], " "))
	}
	return nil
}
