// Package hooks runs side effects when console variables are set or unset.
//
// Variable names are normalized before lookup: case is folded and dashes and
// underscores are dropped, so "log-level", "LogLevel" and "LOG_LEVEL" all
// name the same hook.
package hooks

import (
	"regexp"
	"sort"
	"strings"

	"src.kitcon.sh/pkg/framework"
	"src.kitcon.sh/pkg/logutil"
	"src.kitcon.sh/pkg/sshclient"
)

// Names of the built-in hooks.
const (
	SessionLogging = "session-logging"
	ConsoleLogging = "console-logging"
	LogLevel       = "log-level"
	Payload        = "payload"
	SSHIdent       = "ssh-ident"
)

// Target is what the built-in hooks act upon.
type Target interface {
	SetSessionLogging(on bool)
	SetConsoleLogging(on bool)
	// Framework returns the toolkit, or nil if it doesn't exist yet.
	Framework() *framework.Framework
	// ActiveModule returns the module in use, or nil.
	ActiveModule() framework.Module
	// Errorf reports an error to the user.
	Errorf(format string, args ...any)
}

// Hook is a pair of callbacks. OnSet returns false to reject the value. Either
// callback may be nil.
type Hook struct {
	OnSet   func(global bool, value string) bool
	OnUnset func(global bool)
}

// Registry maps normalized variable names to hooks.
type Registry struct {
	hooks map[string]Hook
}

var truthy = regexp.MustCompile(`(?i)^(y|t|1)`)

// Truthy reports whether a value enables a boolean setting.
func Truthy(value string) bool { return truthy.MatchString(value) }

// Normalize returns the lookup key for a variable name.
func Normalize(name string) string {
	return strings.NewReplacer("-", "", "_", "").Replace(strings.ToLower(name))
}

// New returns a Registry with the built-in hooks acting on t.
func New(t Target) *Registry {
	r := &Registry{hooks: map[string]Hook{}}
	r.Register(SessionLogging, Hook{
		OnSet: func(global bool, value string) bool {
			if global {
				t.SetSessionLogging(Truthy(value))
			}
			return true
		},
		OnUnset: func(global bool) {
			if global {
				t.SetSessionLogging(false)
			}
		},
	})
	r.Register(ConsoleLogging, Hook{
		OnSet: func(global bool, value string) bool {
			if global {
				t.SetConsoleLogging(Truthy(value))
			}
			return true
		},
		OnUnset: func(global bool) {
			if global {
				t.SetConsoleLogging(false)
			}
		},
	})
	r.Register(LogLevel, Hook{
		OnSet: func(_ bool, value string) bool {
			level, err := logutil.ParseLevel(value)
			if err != nil {
				t.Errorf("invalid log level %q: %v", value, err)
				return false
			}
			logutil.SetLevel(logutil.SourceCore, level)
			logutil.SetLevel(logutil.SourceBase, level)
			return true
		},
		OnUnset: func(bool) {
			logutil.ResetLevel(logutil.SourceCore)
			logutil.ResetLevel(logutil.SourceBase)
		},
	})
	r.Register(Payload, Hook{
		OnSet: func(_ bool, value string) bool { return handlePayload(t, value) },
	})
	r.Register(SSHIdent, Hook{
		OnSet: func(_ bool, value string) bool {
			if _, err := sshclient.SetClientVersion(value); err != nil {
				t.Errorf("failed to set SSH identification: %v", err)
			}
			return true
		},
	})
	return r
}

func handlePayload(t Target, value string) bool {
	fw := t.Framework()
	if fw == nil {
		return true
	}
	if !fw.IsPayloadValid(value) {
		t.Errorf("the value specified for PAYLOAD is not valid")
		return false
	}
	if m := t.ActiveModule(); m != nil {
		if !m.PayloadCompatible(value) {
			t.Errorf("%s is not a compatible payload for %s", value, m.Name())
			return false
		}
		return true
	}
	fw.Datastore().ClearNonUserDefined()
	return true
}

// Register adds or replaces the hook for a name.
func (r *Registry) Register(name string, h Hook) {
	r.hooks[Normalize(name)] = h
}

// Lookup returns the hook for a name.
func (r *Registry) Lookup(name string) (Hook, bool) {
	h, ok := r.hooks[Normalize(name)]
	return h, ok
}

// OnSet runs the set hook for name and reports whether the value is accepted.
// Names without hooks accept any value.
func (r *Registry) OnSet(global bool, name, value string) bool {
	h, ok := r.Lookup(name)
	if !ok || h.OnSet == nil {
		return true
	}
	return h.OnSet(global, value)
}

// OnUnset runs the unset hook for name, if any.
func (r *Registry) OnUnset(global bool, name string) {
	if h, ok := r.Lookup(name); ok && h.OnUnset != nil {
		h.OnUnset(global)
	}
}

// Names returns the normalized names of all hooks, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.hooks))
	for name := range r.hooks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
