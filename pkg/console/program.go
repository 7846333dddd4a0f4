package console

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"src.kitcon.sh/pkg/framework"
	"src.kitcon.sh/pkg/fsutil"
	"src.kitcon.sh/pkg/prog"
	"src.kitcon.sh/pkg/store"
)

// Files in the home directory.
const (
	configFile  = "config"
	historyFile = "history"
	dbFile      = "db"
	persistFile = "persistent_handlers.yml"
)

// Program runs the console.
type Program struct {
	// Register, if not nil, is called with the framework before the console
	// starts. It is the place to register plugins.
	Register func(fw *framework.Framework)
}

// Run implements prog.Program.
func (p Program) Run(fds [3]*os.File, f *prog.Flags) error {
	home, err := homeDir(f.Home)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(home, 0o700); err != nil {
		return fmt.Errorf("cannot create home directory: %w", err)
	}

	var st store.DBStore
	if s, err := store.NewStore(filepath.Join(home, dbFile)); err != nil {
		// The console works without a database, just without workspaces.
		fmt.Fprintln(fds[2], "Warning: cannot open database:", err)
	} else {
		st = s
	}
	fw := framework.New(framework.Config{Store: st})
	defer fw.Shutdown()
	if p.Register != nil {
		p.Register(fw)
	}

	opts := DefaultOptions()
	opts.Framework = fw
	opts.AllowPassthru = !f.NoPassthru
	opts.SystemReadline = f.SystemReadline
	opts.ConfirmExit = f.ConfirmExit
	opts.NoBanner = f.Quiet
	opts.Home = home
	opts.ConfigFile = orDefault(f.Config, filepath.Join(home, configFile))
	opts.HistoryFile = orDefault(f.History, filepath.Join(home, historyFile))
	opts.PersistFile = filepath.Join(home, persistFile)
	opts.Resources = f.Resources
	opts.Commands = f.Commands
	opts.Plugins = f.Plugins
	if !f.Quiet && isatty.IsTerminal(fds[1].Fd()) {
		fmt.Fprint(fds[1], "Starting the kitcon console...")
		opts.StopSplash = func() { fmt.Fprint(fds[1], "\r\033[K") }
	}

	d, err := New(fds, opts)
	if err != nil {
		ShowFatal(fds[2], err)
		return prog.Exit(1)
	}
	defer d.Close()
	if !d.Exiting() {
		d.Run()
	}
	return nil
}

func homeDir(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	home, err := fsutil.GetHome("")
	if err != nil {
		return "", fmt.Errorf("cannot find home directory: %w", err)
	}
	return filepath.Join(home, ".kitcon"), nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
