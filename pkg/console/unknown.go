package console

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Outcome is the result of resolving a command no handler accepts.
type Outcome int

// Possible outcomes.
const (
	// Rejected means that the command names the console itself.
	Rejected Outcome = iota
	// PassedThrough means that the command was run as a program.
	PassedThrough
	// Unknown means that the command was reported as unknown.
	Unknown
	// SwitchedModule means that the command named a module, which is now in
	// use.
	SwitchedModule
)

var outcomeNames = [...]string{"rejected", "passed-through", "unknown", "switched-module"}

func (o Outcome) String() string {
	if int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

const maxSuggestionDistance = 2

// resolveUnknown handles a command line whose first word no handler accepts.
// The first step that applies wins:
//
//  1. A command naming the console itself is rejected.
//  2. With passthrough allowed, a program of the same name on PATH is run.
//  3. A command naming a module is reported as unknown, then the user is
//     offered to switch to the module.
//  4. Anything else is reported as unknown.
func (d *Driver) resolveUnknown(token string, words []string) Outcome {
	if token == d.launcher {
		d.printError("%s is already running", d.launcher)
		return Rejected
	}
	if d.opts.AllowPassthru {
		if path, err := d.search(token); err == nil {
			d.printStatus("exec: %s", strings.Join(words, " "))
			d.println()
			if err := d.spawn(path, words[1:], d.out); err != nil {
				d.printError("%s: %v", token, err)
			}
			return PassedThrough
		}
	}
	if _, ok := d.fw.CreateModule(token); ok {
		d.reportUnknown(token)
		if d.confirm(fmt.Sprintf("This is a module we can load. Do you want to use %s?", token)) {
			d.RunSingle("use " + token)
			return SwitchedModule
		}
		return Unknown
	}
	d.reportUnknown(token)
	return Unknown
}

func (d *Driver) reportUnknown(token string) {
	if s := d.suggest(token); len(s) > 0 {
		d.printError("Unknown command: %s. Did you mean %s?", token, strings.Join(s, ", "))
	} else {
		d.printError("Unknown command: %s", token)
	}
}

// suggest returns the commands within a small edit distance of token,
// closest first.
func (d *Driver) suggest(token string) []string {
	type candidate struct {
		name string
		dist int
	}
	var candidates []candidate
	for _, name := range d.stack.Commands() {
		dist := levenshtein.ComputeDistance(strings.ToLower(token), strings.ToLower(name))
		if dist <= maxSuggestionDistance && dist < len(name) {
			candidates = append(candidates, candidate{name, dist})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].dist < candidates[j].dist
	})
	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.name
	}
	return names
}

// spawn runs a program, copying its combined output to out line by line, and
// waits for it to exit.
func spawn(path string, args []string, out io.Writer) error {
	cmd := exec.Command(path, args...)
	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw
	if err := cmd.Start(); err != nil {
		return err
	}
	waitErr := make(chan error, 1)
	go func() {
		err := cmd.Wait()
		pw.Close()
		waitErr <- err
	}()
	r := bufio.NewReader(pr)
	for {
		line, err := r.ReadString('\n')
		if line != "" {
			io.WriteString(out, line)
		}
		if err != nil {
			break
		}
	}
	err := <-waitErr
	if _, ok := err.(*exec.ExitError); ok {
		// The program has spoken for itself.
		logger.Debug("passthrough exited", "path", path, "err", err)
		return nil
	}
	return err
}
