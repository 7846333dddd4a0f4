// Package prog provides the entry point to kitcon: it parses command-line
// flags and runs a Program with them.
package prog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"src.kitcon.sh/pkg/buildinfo"
	"src.kitcon.sh/pkg/logutil"
)

// EnvPrefix is the prefix of environment variables overriding flags. For
// example, KITCON_NO_PASSTHRU overrides --no-passthru.
const EnvPrefix = "KITCON"

// Flags keeps command-line flags.
type Flags struct {
	NoPassthru     bool
	SystemReadline bool
	ConfirmExit    bool
	Quiet          bool

	History string
	Config  string
	Home    string
	Log     string

	Resources []string
	Commands  []string
	Plugins   []string
}

// Names of the flags, which are also the viper keys.
const (
	flagNoPassthru     = "no-passthru"
	flagSystemReadline = "system-readline"
	flagConfirmExit    = "confirm-exit"
	flagQuiet          = "quiet"
	flagHistory        = "history"
	flagConfig         = "config"
	flagHome           = "home"
	flagLog            = "log"
	flagResource       = "resource"
	flagExecute        = "execute-command"
	flagPlugin         = "plugin"
)

func newRootCommand(fds [3]*os.File, run func(f *Flags) error) *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:           "kitcon",
		Short:         "Interactive console for the toolkit",
		Version:       buildinfo.FullVersion(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(flagsFrom(v, cmd.Flags()))
		},
	}
	cmd.SetOut(fds[1])
	cmd.SetErr(fds[2])

	fs := cmd.Flags()
	fs.Bool(flagNoPassthru, false, "do not run unknown commands as programs")
	fs.Bool(flagSystemReadline, false, "use the system line editor instead of the bundled one")
	fs.Bool(flagConfirmExit, false, "ask before exiting while jobs are running")
	fs.BoolP(flagQuiet, "q", false, "do not print the banner")
	fs.String(flagHistory, "", "file to keep command history in (default $HOME/.kitcon/history)")
	fs.String(flagConfig, "", "config file (default $HOME/.kitcon/config)")
	fs.String(flagHome, "", "directory for kitcon files (default $HOME/.kitcon)")
	fs.String(flagLog, "", "file to write the debug log to")
	fs.StringArrayP(flagResource, "r", nil, "run the commands in a resource file; may be repeated")
	fs.StringArrayP(flagExecute, "x", nil, "run commands, separated by ';'; may be repeated")
	fs.StringArray(flagPlugin, nil, "load a plugin on startup; may be repeated")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	// Errors can only come from a nil flag set.
	_ = v.BindPFlags(fs)
	return cmd
}

// Scalar flags are read through viper, so that the environment can override
// them. Repeatable flags are taken from the command line only.
func flagsFrom(v *viper.Viper, fs *pflag.FlagSet) *Flags {
	array := func(name string) []string {
		values, _ := fs.GetStringArray(name)
		return values
	}
	return &Flags{
		NoPassthru:     v.GetBool(flagNoPassthru),
		SystemReadline: v.GetBool(flagSystemReadline),
		ConfirmExit:    v.GetBool(flagConfirmExit),
		Quiet:          v.GetBool(flagQuiet),
		History:        v.GetString(flagHistory),
		Config:         v.GetString(flagConfig),
		Home:           v.GetString(flagHome),
		Log:            v.GetString(flagLog),
		Resources:      array(flagResource),
		Commands:       array(flagExecute),
		Plugins:        array(flagPlugin),
	}
}

// Run parses command-line flags and runs the program. It returns the exit
// status of the program.
func Run(fds [3]*os.File, args []string, p Program) int {
	ran := false
	cmd := newRootCommand(fds, func(f *Flags) error {
		ran = true
		if f.Log != "" {
			if err := logutil.SetOutputFile(f.Log); err != nil {
				fmt.Fprintln(fds[2], "Warning: cannot open log file:", err)
			}
		}
		return p.Run(fds, f)
	})
	cmd.SetArgs(args[1:])

	err := cmd.Execute()
	if err == nil {
		return 0
	}
	var exit exitError
	if errors.As(err, &exit) {
		return exit.exit
	}
	if msg := err.Error(); msg != "" {
		fmt.Fprintln(fds[2], msg)
	}
	var bad badUsageError
	if !ran || errors.As(err, &bad) {
		fmt.Fprint(fds[2], cmd.UsageString())
	}
	return 2
}

// Program represents the program run by Run.
type Program interface {
	Run(fds [3]*os.File, f *Flags) error
}

// BadUsage returns a special error that may be returned by Program.Run. It
// causes Run to print out a message, the usage information and exit with 2.
func BadUsage(msg string) error { return badUsageError{msg} }

type badUsageError struct{ msg string }

func (e badUsageError) Error() string { return e.msg }

// Exit returns a special error that may be returned by Program.Run. It causes
// Run to exit with the given code without printing any error messages.
// Exit(0) returns nil.
func Exit(exit int) error {
	if exit == 0 {
		return nil
	}
	return exitError{exit}
}

type exitError struct{ exit int }

func (e exitError) Error() string { return "" }
