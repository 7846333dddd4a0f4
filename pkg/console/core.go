package console

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"src.kitcon.sh/pkg/buildinfo"
	"src.kitcon.sh/pkg/confstore"
	"src.kitcon.sh/pkg/dispatch"
	"src.kitcon.sh/pkg/framework"
	"src.kitcon.sh/pkg/persist"
)

// coreCommands is the floor of the dispatcher stack.
type coreCommands struct{ d *Driver }

var coreCommandDescs = map[string]string{
	"?":         "Help menu",
	"help":      "Help menu",
	"set":       "Sets a variable to a value",
	"setg":      "Sets a global variable to a value",
	"unset":     "Unsets one or more variables",
	"unsetg":    "Unsets one or more global variables",
	"get":       "Gets the value of a variable",
	"save":      "Saves the active datastores",
	"use":       "Interact with a module by name",
	"back":      "Move back from the current context",
	"workspace": "Switch between workspaces",
	"load":      "Load a plugin",
	"unload":    "Unload a plugin",
	"jobs":      "Displays and manages jobs",
	"resource":  "Run the commands stored in a file",
	"banner":    "Display the banner",
	"version":   "Show the version",
	"history":   "Show command history",
	"exit":      "Exit the console",
	"quit":      "Exit the console",
}

func (c *coreCommands) Name() string { return "Core" }

func (c *coreCommands) Commands() map[string]string { return coreCommandDescs }

func (c *coreCommands) Invoke(cmd string, args []string) error {
	d := c.d
	switch cmd {
	case "?", "help":
		d.help()
	case "set":
		return d.set(args, false)
	case "setg":
		return d.set(args, true)
	case "unset":
		return d.unset(args, false)
	case "unsetg":
		return d.unset(args, true)
	case "get":
		return d.get(args)
	case "save":
		return d.save()
	case "use":
		if len(args) != 1 {
			return errors.New("usage: use <module>")
		}
		d.use(args[0])
	case "back":
		d.back()
	case "workspace":
		return d.workspace(args)
	case "load":
		return d.loadPlugin(args)
	case "unload":
		return d.unloadPlugin(args)
	case "jobs":
		return d.jobs(args)
	case "resource":
		if len(args) == 0 {
			return errors.New("usage: resource <path>...")
		}
		for _, path := range args {
			if err := d.runResource(path); err != nil {
				return err
			}
		}
	case "banner":
		d.println(d.banner())
	case "version":
		for _, line := range buildinfo.Lines() {
			d.println(line)
		}
	case "history":
		return d.showHistory(args)
	case "exit", "quit":
		d.exit(args)
	default:
		return fmt.Errorf("unhandled core command %s", cmd)
	}
	return nil
}

func (d *Driver) help() {
	d.stack.Each(func(h dispatch.Handler) bool {
		cmds := h.Commands()
		names := make([]string, 0, len(cmds))
		for name := range cmds {
			names = append(names, name)
		}
		sort.Strings(names)
		rows := make([][]string, len(names))
		for i, name := range names {
			rows[i] = []string{name, cmds[name]}
		}
		table(d.out, h.Name()+" Commands", []string{"Command", "Description"}, rows)
		return true
	})
}

// datastore returns the store that set and unset act upon. Without an
// active module, every assignment is global.
func (d *Driver) datastore(global bool) (*framework.DataStore, bool) {
	if global || d.active == nil {
		return d.fw.Datastore(), true
	}
	return d.active.Datastore(), false
}

func (d *Driver) set(args []string, global bool) error {
	ds, global := d.datastore(global)
	switch len(args) {
	case 0:
		rows := [][]string{}
		for _, name := range ds.Names() {
			v, _ := ds.Get(name)
			rows = append(rows, []string{name, v})
		}
		title := "Global"
		if !global {
			title = "Module: " + d.active.Name()
		}
		table(d.out, title, []string{"Name", "Value"}, rows)
		return nil
	case 1:
		v, _ := ds.Get(args[0])
		d.println(args[0] + " => " + v)
		return nil
	}
	name, value := args[0], strings.Join(args[1:], " ")
	if !d.hooks.OnSet(global, name, value) {
		return nil
	}
	ds.Set(name, value)
	d.println(name + " => " + value)
	return nil
}

func (d *Driver) unset(args []string, global bool) error {
	if len(args) == 0 {
		return errors.New("usage: unset <name>...")
	}
	ds, global := d.datastore(global)
	for _, name := range args {
		d.hooks.OnUnset(global, name)
		if ds.Unset(name) {
			d.printStatus("Unsetting %s...", name)
		}
	}
	return nil
}

func (d *Driver) get(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: get <name>...")
	}
	ds, _ := d.datastore(false)
	for _, name := range args {
		v, _ := ds.Get(name)
		d.println(name + " => " + v)
	}
	return nil
}

// save writes the global datastore to the core group and the active module
// and workspace to the UI group.
func (d *Driver) save() error {
	if d.opts.ConfigFile == "" {
		return errors.New("no config file to save to")
	}
	core := confstore.NewGroup()
	ds := d.fw.Datastore()
	for _, name := range ds.Names() {
		v, _ := ds.Get(name)
		core.Set(name, v)
	}
	ui := confstore.NewGroup()
	if d.active != nil {
		ui.Set(confstore.KeyActiveModule, d.active.Name())
	}
	if ws := d.fw.DB().Workspace(); ws != nil {
		ui.Set(confstore.KeyActiveWorkspace, ws.Name)
	}
	groups := []struct {
		name string
		g    *confstore.Group
	}{{confstore.CoreGroup, core}, {confstore.UIGroup, ui}}
	for _, group := range groups {
		if err := d.conf.Save(group.name, group.g); err != nil {
			return fmt.Errorf("cannot save configuration: %w", err)
		}
	}
	d.printGood("Saved configuration to: %s", d.opts.ConfigFile)
	return nil
}

func (d *Driver) use(name string) {
	m, ok := d.fw.CreateModule(name)
	if !ok {
		d.printError("Failed to load module: %s", name)
		return
	}
	d.back()
	d.active = m
	d.activeCmd = &moduleCommands{d}
	d.stack.Push(d.activeCmd)
}

func (d *Driver) back() {
	if d.activeCmd != nil {
		d.stack.Remove(d.activeCmd.Name())
	}
	d.active, d.activeCmd = nil, nil
}

func (d *Driver) workspace(args []string) error {
	db := d.fw.DB()
	if !db.Active() {
		d.printWarning("Database not connected")
		return nil
	}
	fs := pflag.NewFlagSet("workspace", pflag.ContinueOnError)
	fs.SetOutput(d.out)
	add := fs.StringP("add", "a", "", "add a workspace")
	del := fs.StringP("delete", "d", "", "delete a workspace")
	if err := fs.Parse(args); err != nil {
		return err
	}
	switch {
	case *add != "":
		ws, err := db.AddWorkspace(*add)
		if err != nil {
			return err
		}
		d.printGood("Added workspace: %s", ws.Name)
		return db.SetWorkspace(ws)
	case *del != "":
		if err := db.DeleteWorkspace(*del); err != nil {
			return err
		}
		d.printStatus("Deleted workspace: %s", *del)
		if db.Workspace() == nil {
			return d.defaultWorkspace()
		}
		return nil
	case fs.NArg() == 1:
		ws, ok := db.FindWorkspace(fs.Arg(0))
		if !ok {
			return fmt.Errorf("workspace not found: %s", fs.Arg(0))
		}
		if err := db.SetWorkspace(ws); err != nil {
			return err
		}
		d.printStatus("Workspace: %s", ws.Name)
		return nil
	}
	names, err := db.Workspaces()
	if err != nil {
		return err
	}
	current := ""
	if ws := db.Workspace(); ws != nil {
		current = ws.Name
	}
	for _, name := range names {
		if name == current {
			d.println("* " + name)
		} else {
			d.println("  " + name)
		}
	}
	return nil
}

// parseKVs parses arguments of the form key=value.
func parseKVs(args []string) (map[string]string, error) {
	opts := map[string]string{}
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("bad option %q, want key=value", arg)
		}
		opts[k] = v
	}
	return opts, nil
}

func (d *Driver) loadPlugin(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: load <plugin> [key=value]...")
	}
	opts, err := parseKVs(args[1:])
	if err != nil {
		return err
	}
	p, err := d.fw.LoadPlugin(args[0], d, opts)
	if err != nil {
		return err
	}
	if h := p.Handler(); h != nil {
		if c, ok := h.(dispatch.Configurer); ok && d.opts.ConfigFile != "" {
			c.LoadConfig(d.opts.ConfigFile)
		}
		d.stack.Push(h)
	}
	d.printGood("Successfully loaded plugin: %s", p.Name())
	return nil
}

func (d *Driver) unloadPlugin(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: unload <plugin>")
	}
	name := framework.PluginName(args[0])
	p, ok := d.fw.UnloadPlugin(name)
	if !ok {
		return fmt.Errorf("plugin %s is not loaded", name)
	}
	if h := p.Handler(); h != nil {
		d.stack.Remove(h.Name())
	}
	d.printStatus("Successfully unloaded plugin: %s", name)
	return nil
}

func (d *Driver) jobs(args []string) error {
	fs := pflag.NewFlagSet("jobs", pflag.ContinueOnError)
	fs.SetOutput(d.out)
	kill := fs.IntP("kill", "k", -1, "stop a job")
	killAll := fs.BoolP("kill-all", "K", false, "stop all jobs")
	persistID := fs.IntP("persist", "P", -1, "restore a job on startup")
	if err := fs.Parse(args); err != nil {
		return err
	}
	js := d.fw.Jobs()
	switch {
	case *killAll:
		d.printStatus("Stopping all jobs...")
		js.StopAll()
	case *kill >= 0:
		if err := js.Stop(*kill); err != nil {
			return err
		}
		d.printStatus("Stopping job %d", *kill)
	case *persistID >= 0:
		job, ok := js.Get(*persistID)
		if !ok {
			return fmt.Errorf("invalid job identifier: %d", *persistID)
		}
		if d.opts.PersistFile == "" {
			return errors.New("no file to persist jobs to")
		}
		err := persist.Add(d.opts.PersistFile, persist.Record{Module: job.Module, Options: job.Options})
		if err != nil {
			return fmt.Errorf("cannot persist job %d: %w", job.ID, err)
		}
		d.printGood("Added persistence to job %d", job.ID)
	default:
		rows := [][]string{}
		for _, job := range js.List() {
			rows = append(rows, []string{strconv.Itoa(job.ID), job.Name, job.Module,
				job.Started.Format("2006-01-02 15:04:05")})
		}
		table(d.out, "Jobs", []string{"Id", "Name", "Module", "Started"}, rows)
	}
	return nil
}

const defaultHistoryLen = 100

func (d *Driver) showHistory(args []string) error {
	if d.history == nil {
		return errors.New("command history is not kept")
	}
	n := defaultHistoryLen
	if len(args) > 0 {
		var err error
		if n, err = strconv.Atoi(args[0]); err != nil || n < 0 {
			return fmt.Errorf("bad history length %q", args[0])
		}
	}
	cmds, err := d.history.LastCmds(n)
	if err != nil {
		return err
	}
	for _, cmd := range cmds {
		fmt.Fprintf(d.out, "%5d  %s\n", cmd.Seq, cmd.Text)
	}
	return nil
}

func (d *Driver) exit(args []string) {
	force := len(args) > 0 && (args[0] == "-y" || args[0] == "-f")
	if n := d.fw.Jobs().Len(); d.opts.ConfirmExit && n > 0 && !force {
		if !d.confirm(fmt.Sprintf("There are %d active jobs. Exit anyway?", n)) {
			return
		}
	}
	d.exiting = true
}
