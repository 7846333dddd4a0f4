package console

import (
	"io"

	"src.kitcon.sh/pkg/framework"
	"src.kitcon.sh/pkg/lineedit"
)

// Options keeps configuration for New.
type Options struct {
	// Framework is the toolkit driven by the console. It is required.
	Framework *framework.Framework

	// AllowPassthru lets unknown commands run as programs found on PATH.
	AllowPassthru bool
	// SystemReadline prefers the system line editor to the bundled one.
	SystemReadline bool
	// ConfirmExit asks before exiting while jobs are running.
	ConfirmExit bool
	// NoBanner suppresses the banner.
	NoBanner bool

	// Home is the directory for logs. Paths below default to files in it.
	Home string
	// ConfigFile holds the config groups.
	ConfigFile string
	// HistoryFile holds the command history. If empty, history is not kept.
	HistoryFile string
	// PersistFile lists the handlers restored on startup.
	PersistFile string

	// Resources are scripts run after startup, in order.
	Resources []string
	// Commands are run after the resource scripts. Each may hold several
	// commands separated by ";".
	Commands []string
	// Plugins are loaded during startup.
	Plugins []string

	// Launcher is the name of the console's own executable, which is never
	// passed through. Defaults to the base name of os.Args[0].
	Launcher string

	// Input and Output override the files passed to New.
	Input  io.Reader
	Output io.Writer

	// Path is the line editor resolution path. Defaults to
	// lineedit.DefaultPath().
	Path *lineedit.Path
	// Opener overrides how line editors are acquired.
	Opener lineedit.Opener
	// StopSplash, if not nil, is called to stop the startup indicator.
	StopSplash func()
}

// DefaultOptions returns Options with the default settings.
func DefaultOptions() Options {
	return Options{AllowPassthru: true}
}
