package console

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"src.kitcon.sh/pkg/buildinfo"
	"src.kitcon.sh/pkg/confstore"
	"src.kitcon.sh/pkg/framework"
	"src.kitcon.sh/pkg/persist"
)

// Phase is a step of bringing the console up. Run is skipped when When is
// not nil and returns false. An error from Run is reported, and stops the
// phases that follow only if Fatal is set.
type Phase struct {
	Name  string
	When  func(*Driver) bool
	Run   func(*Driver) error
	Fatal bool
}

// Phases run by New, in order.
var phases = []Phase{
	{Name: "diagnostics", When: hasLoadProblems, Run: (*Driver).reportLoadProblems},
	{Name: "workspace", When: needsWorkspace, Run: (*Driver).defaultWorkspace},
	{Name: "ui-start", Run: func(d *Driver) error {
		d.fw.Events().AnnounceUIStart(buildinfo.Revision())
		return nil
	}},
	{Name: "splash",
		When: func(d *Driver) bool { return d.opts.StopSplash != nil },
		Run: func(d *Driver) error {
			d.opts.StopSplash()
			return nil
		}},
	{Name: "banner",
		When: func(d *Driver) bool { return !d.opts.NoBanner },
		Run: func(d *Driver) error {
			d.println(d.banner())
			return nil
		}},
	{Name: "av-warning",
		When: func(d *Driver) bool { return d.fw.Corrupted() },
		Run: func(d *Driver) error {
			d.printWarning("The installation is missing files. Antivirus software may have quarantined them;")
			d.printWarning("exclude the installation directory from scanning and reinstall.")
			return nil
		}},
	{Name: "plugins",
		When: func(d *Driver) bool { return len(d.opts.Plugins) > 0 },
		Run: func(d *Driver) error {
			for _, p := range d.opts.Plugins {
				d.RunSingle("load " + p)
			}
			return nil
		}},
	{Name: "command-callback", Run: func(d *Driver) error {
		d.fw.Events().OnCommand(d.onCommand)
		return nil
	}},
	{Name: "cache-rebuild",
		When: func(d *Driver) bool { return d.fw.DB().Active() },
		Run: func(d *Driver) error {
			d.fw.RebuildCacheAsync(context.Background())
			return nil
		}},
	{Name: "ui-config", Run: (*Driver).loadUIConfig},
	{Name: "resource-scripts",
		When: func(d *Driver) bool { return len(d.opts.Resources) > 0 },
		Run: func(d *Driver) error {
			for _, path := range d.opts.Resources {
				if d.exiting {
					break
				}
				if err := d.runResource(path); err != nil {
					d.printError("%v", err)
				}
			}
			return nil
		}},
	{Name: "persistent-handlers",
		When: func(d *Driver) bool { return d.opts.PersistFile != "" },
		Run: func(d *Driver) error {
			n := persist.Restore(d.opts.PersistFile, d.fw, d.out, func(err error) {
				d.printError("%v", err)
			})
			if n > 0 {
				d.printGood("Restored %d persistent handler(s)", n)
			}
			return nil
		}},
	{Name: "extra-commands",
		When: func(d *Driver) bool { return len(d.opts.Commands) > 0 },
		Run: func(d *Driver) error {
			for _, cmds := range d.opts.Commands {
				for _, cmd := range strings.Split(cmds, ";") {
					if d.exiting {
						return nil
					}
					d.RunSingle(cmd)
				}
			}
			return nil
		}},
	{Name: "deferred-warnings",
		When: func(d *Driver) bool { return d.editorWarning != nil },
		Run: func(d *Driver) error {
			d.printWarning("%v", d.editorWarning)
			return nil
		}},
}

// PhaseNames returns the names of the startup phases, in order.
func PhaseNames() []string {
	names := make([]string, len(phases))
	for i, p := range phases {
		names[i] = p.Name
	}
	return names
}

func (d *Driver) runPhases(ps []Phase) error {
	for _, p := range ps {
		if p.When != nil && !p.When(d) {
			logger.Debug("skipping startup phase", "phase", p.Name)
			continue
		}
		logger.Debug("running startup phase", "phase", p.Name)
		if err := p.Run(d); err != nil {
			if p.Fatal {
				return fmt.Errorf("%s: %w", p.Name, err)
			}
			logger.Warn("startup phase failed", "phase", p.Name, "err", err)
			d.printError("%s: %v", p.Name, err)
		}
	}
	return nil
}

func hasLoadProblems(d *Driver) bool {
	return len(d.fw.LoadErrors())+len(d.fw.LoadWarnings()) > 0
}

func (d *Driver) reportLoadProblems() error {
	errs := d.fw.LoadErrors()
	for _, name := range sortedKeys(errs) {
		d.printWarning("Failed to load module %s: %v", name, errs[name])
	}
	warnings := d.fw.LoadWarnings()
	for _, name := range sortedKeys(warnings) {
		d.printWarning("Module %s: %s", name, warnings[name])
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func needsWorkspace(d *Driver) bool {
	db := d.fw.DB()
	return db.Active() && db.Workspace() == nil
}

func (d *Driver) defaultWorkspace() error {
	db := d.fw.DB()
	ws, err := db.DefaultWorkspace()
	if err != nil {
		return err
	}
	return db.SetWorkspace(ws)
}

func (d *Driver) onCommand(line string) {
	logger.Debug("command", "line", line)
	if d.sessionLog != nil {
		fmt.Fprintf(d.sessionLog, "%s%s\n", d.Prompt(), line)
	}
}

// loadUIConfig applies the directives saved in the UI group. Unknown
// workspaces are ignored.
func (d *Driver) loadUIConfig() error {
	g := d.conf.Load().Get(confstore.UIGroup)
	if g == nil {
		return nil
	}
	if name, ok := g.Lookup(confstore.KeyActiveModule); ok && name != "" {
		d.RunSingle("use " + name)
	}
	if name, ok := g.Lookup(confstore.KeyActiveWorkspace); ok && name != "" {
		db := d.fw.DB()
		if ws, ok := db.FindWorkspace(name); ok {
			if err := db.SetWorkspace(ws); err != nil && !errors.Is(err, framework.ErrDBInactive) {
				return err
			}
		}
	}
	return nil
}
