package console

import (
	"errors"
	"fmt"
	"strconv"
)

// moduleCommands is pushed onto the dispatcher stack while a module is in
// use.
type moduleCommands struct{ d *Driver }

var moduleCommandDescs = map[string]string{
	"show":    "Displays the options or compatible payloads of the module",
	"info":    "Displays information about the module",
	"run":     "Runs the module",
	"exploit": "Runs the module",
}

func (c *moduleCommands) Name() string { return "Module" }

func (c *moduleCommands) Commands() map[string]string { return moduleCommandDescs }

func (c *moduleCommands) Invoke(cmd string, args []string) error {
	d := c.d
	m := d.active
	if m == nil {
		return errors.New("no module in use")
	}
	switch cmd {
	case "show":
		if len(args) != 1 {
			return errors.New("usage: show options|payloads")
		}
		switch args[0] {
		case "options":
			d.showOptions()
		case "payloads":
			d.showPayloads()
		default:
			return fmt.Errorf("invalid parameter %q, use show options|payloads", args[0])
		}
	case "info":
		d.println()
		d.println("       Name: " + m.Name())
		d.println("       Type: " + m.Type())
		d.println("Description: " + m.Description())
		d.showOptions()
	case "run", "exploit":
		opts, err := parseKVs(args)
		if err != nil {
			return err
		}
		return m.ExploitSimple(d.fw, opts, d.out)
	default:
		return fmt.Errorf("unhandled module command %s", cmd)
	}
	return nil
}

func (d *Driver) showOptions() {
	m := d.active
	rows := [][]string{}
	for _, opt := range m.Options() {
		v, _ := m.Datastore().Get(opt.Name)
		rows = append(rows, []string{opt.Name, v, yesNo(opt.Required), opt.Description})
	}
	table(d.out, "Module options ("+m.Name()+")",
		[]string{"Name", "Current Setting", "Required", "Description"}, rows)
}

func (d *Driver) showPayloads() {
	rows := [][]string{}
	for i, name := range d.fw.Payloads() {
		if d.active.PayloadCompatible(name) {
			rows = append(rows, []string{strconv.Itoa(i), name})
		}
	}
	table(d.out, "Compatible Payloads", []string{"#", "Name"}, rows)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
