// Package console implements the interactive console driving the toolkit.
//
// A Driver resolves each command line against a stack of command handlers,
// falling back to running programs on PATH and to offering to switch to a
// module of the same name. Construction brings the driver to the point where
// it is ready to read input, through the phases listed in startup.go.
package console

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"src.kitcon.sh/pkg/confstore"
	"src.kitcon.sh/pkg/dispatch"
	"src.kitcon.sh/pkg/errutil"
	"src.kitcon.sh/pkg/framework"
	"src.kitcon.sh/pkg/fsutil"
	"src.kitcon.sh/pkg/hooks"
	"src.kitcon.sh/pkg/lineedit"
	"src.kitcon.sh/pkg/logutil"
	"src.kitcon.sh/pkg/store"
)

var logger = logutil.Source(logutil.SourceBase)

// ErrNoFramework is returned by New when Options.Framework is nil.
var ErrNoFramework = errors.New("no framework to drive")

// Driver is an interactive console.
type Driver struct {
	opts Options
	fw   *framework.Framework

	in     io.Reader
	out    *output
	errOut io.Writer

	conf    confstore.Store
	hooks   *hooks.Registry
	stack   *dispatch.Stack
	history store.DBStore

	editor        lineedit.Editor
	editorWarning *lineedit.Warning

	active    framework.Module
	activeCmd *moduleCommands

	sessionLog *os.File
	consoleLog *os.File

	launcher string
	exiting  bool

	// Replaced in tests.
	search  func(name string) (string, error)
	spawn   func(path string, args []string, out io.Writer) error
	confirm func(question string) bool
}

// New creates a Driver reading from fds[0] and writing to fds[1], and runs
// the startup phases. Problems during startup are reported and skipped; an
// error is returned only if the console cannot run at all.
func New(fds [3]*os.File, opts Options) (*Driver, error) {
	d, err := newDriver(fds, opts)
	if err != nil {
		return nil, err
	}
	if err := d.selectEditor(); err != nil {
		if d.history != nil {
			d.history.Close()
		}
		return nil, err
	}
	d.loadPreconfig()
	d.populate()
	if err := d.runPhases(phases); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

// newDriver creates a Driver without acquiring a line editor or running any
// startup phase.
func newDriver(fds [3]*os.File, opts Options) (*Driver, error) {
	if opts.Framework == nil {
		return nil, ErrNoFramework
	}
	d := &Driver{
		opts:     opts,
		fw:       opts.Framework,
		in:       fds[0],
		out:      &output{w: fds[1]},
		errOut:   fds[2],
		conf:     confstore.Store{Path: opts.ConfigFile},
		launcher: opts.Launcher,
		search:   fsutil.SearchExecutable,
		spawn:    spawn,
	}
	if opts.Input != nil {
		d.in = opts.Input
	}
	if opts.Output != nil {
		d.out.w = opts.Output
	}
	if d.launcher == "" {
		d.launcher = launcherName(os.Args[0])
	}
	if d.opts.Path == nil {
		d.opts.Path = lineedit.DefaultPath()
	}
	d.confirm = d.askYesNo
	d.hooks = hooks.New(d)
	if opts.HistoryFile != "" {
		st, err := store.NewStore(opts.HistoryFile)
		if err != nil {
			// History is a convenience.
			logger.Warn("cannot open history", "path", opts.HistoryFile, "err", err)
		} else {
			d.history = st
		}
	}
	return d, nil
}

func launcherName(arg0 string) string {
	base := filepath.Base(arg0)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (d *Driver) selectEditor() error {
	ed, warning, err := lineedit.Select(d.opts.Path, d.opts.SystemReadline, d.opener())
	if err != nil {
		return fmt.Errorf("cannot start the console: %w", err)
	}
	d.editor, d.editorWarning = ed, warning
	return nil
}

func (d *Driver) opener() lineedit.Opener {
	if d.opts.Opener != nil {
		return d.opts.Opener
	}
	in, inOK := d.in.(*os.File)
	out, outOK := d.out.w.(*os.File)
	if inOK && outOK {
		return lineedit.Open(in, out)
	}
	return func(name string) (lineedit.Editor, error) {
		if name == lineedit.Bundled {
			return lineedit.NewBundled(d.in, d.out), nil
		}
		return nil, lineedit.ErrNotTerminal
	}
}

// loadPreconfig passes every setting in the core group through the variable
// hooks and stores the accepted ones in the global datastore.
func (d *Driver) loadPreconfig() {
	g := d.conf.Load().Get(confstore.CoreGroup)
	if g == nil {
		return
	}
	g.Each(func(k, v string) {
		if d.hooks.OnSet(true, k, v) {
			d.fw.Datastore().Set(k, v)
		}
	})
}

// populate builds the dispatcher stack with the core commands at its floor.
func (d *Driver) populate() {
	d.stack = dispatch.New(&coreCommands{d})
	d.stack.Configure(d.opts.ConfigFile)
}

// Framework returns the toolkit the console drives.
func (d *Driver) Framework() *framework.Framework { return d.fw }

// ActiveModule returns the module in use, or nil.
func (d *Driver) ActiveModule() framework.Module { return d.active }

// Errorf reports an error to the user.
func (d *Driver) Errorf(format string, args ...any) { d.printError(format, args...) }

// Output returns where the console prints.
func (d *Driver) Output() io.Writer { return d.out }

// Stack returns the dispatcher stack.
func (d *Driver) Stack() *dispatch.Stack { return d.stack }

// Prompt returns the prompt shown before each line.
func (d *Driver) Prompt() string {
	if d.active == nil {
		return "kitcon > "
	}
	typ, rest, _ := strings.Cut(d.active.Name(), "/")
	return fmt.Sprintf("kitcon %s(%s) > ", typ, rest)
}

// RunSingle runs one command line.
func (d *Driver) RunSingle(line string) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}
	d.fw.Events().AnnounceCommand(line)
	words := splitWords(line)
	if len(words) == 0 {
		return
	}
	cmd, args := words[0], words[1:]
	if h, ok := d.stack.Resolve(cmd); ok {
		if err := h.Invoke(cmd, args); err != nil {
			d.printError("%v", err)
		}
		return
	}
	d.resolveUnknown(cmd, words)
}

// Exiting reports whether an exit command was run.
func (d *Driver) Exiting() bool { return d.exiting }

// Run reads and runs command lines until input ends or an exit command is
// run.
func (d *Driver) Run() {
	cooldown := time.Second
	for !d.exiting {
		line, err := d.editor.ReadLine(d.Prompt())
		if err == io.EOF {
			d.println()
			break
		} else if err != nil {
			fmt.Fprintln(d.errOut, "Editor error:", err)
			if d.editor.Backend() != lineedit.Bundled {
				fmt.Fprintln(d.errOut, "Falling back to basic line editor")
				d.editor.Close()
				d.editor = lineedit.NewBundled(d.in, d.out)
			} else {
				fmt.Fprintln(d.errOut, "Restarting editor in", cooldown)
				time.Sleep(cooldown)
				if cooldown < time.Minute {
					cooldown *= 2
				}
			}
			continue
		}
		cooldown = time.Second
		d.addHistory(line)
		d.RunSingle(line)
	}
}

func (d *Driver) addHistory(line string) {
	if d.history == nil || strings.TrimSpace(line) == "" {
		return
	}
	if _, err := d.history.AddCmd(line); err != nil {
		logger.Warn("cannot add command to history", "err", err)
	}
}

func (d *Driver) askYesNo(question string) bool {
	answer, err := d.editor.ReadLine(question + " [y/N] ")
	if err != nil {
		return false
	}
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(answer)), "y")
}

// Close announces that the console is stopping and releases what it holds.
// The framework is left to its owner.
func (d *Driver) Close() error {
	d.fw.Events().AnnounceUIStop()
	d.SetSessionLogging(false)
	d.SetConsoleLogging(false)
	var errs []error
	if d.editor != nil {
		errs = append(errs, d.editor.Close())
	}
	if d.history != nil {
		errs = append(errs, d.history.Close())
		d.history = nil
	}
	return errutil.Multi(errs...)
}
