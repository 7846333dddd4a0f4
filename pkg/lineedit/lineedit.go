// Package lineedit selects and implements the line-input backends of the
// console.
//
// There are two backends. The system backend is a raw-mode terminal line
// editor with history and cursor movement; it only works when input is a
// terminal. The bundled backend reads lines from any reader and always works.
package lineedit

import (
	"errors"
	"fmt"
	"slices"

	"src.kitcon.sh/pkg/errutil"
	"src.kitcon.sh/pkg/logutil"
)

var logger = logutil.GetLogger("[lineedit] ")

// Names of the backends.
const (
	System  = "system"
	Bundled = "bundled"
)

// Editor reads lines of input.
type Editor interface {
	// Backend returns the name of the backend.
	Backend() string
	// ReadLine shows the prompt and reads one line, without the line ending.
	// It returns io.EOF when input is exhausted.
	ReadLine(prompt string) (string, error)
	Close() error
}

// Path is the ordered list of backends consulted when acquiring an editor.
// The zero value is empty.
type Path struct {
	names []string
}

// DefaultPath returns the path used when nothing else is configured: the
// bundled backend, then the system backend.
func DefaultPath() *Path { return NewPath(Bundled, System) }

// NewPath returns a Path with the given names.
func NewPath(names ...string) *Path { return &Path{slices.Clone(names)} }

// Names returns a copy of the names on the path, in order.
func (p *Path) Names() []string { return slices.Clone(p.names) }

// remove takes name off the path and returns a function restoring the path
// to exactly what it was.
func (p *Path) remove(name string) (restore func()) {
	saved := slices.Clone(p.names)
	p.names = slices.DeleteFunc(p.names, func(s string) bool { return s == name })
	return func() { p.names = saved }
}

// Opener acquires the backend with the given name.
type Opener func(name string) (Editor, error)

// Warning is a non-fatal failure to acquire the preferred backend. It should
// be shown to the user after initialization finishes.
type Warning struct {
	Backend string
	Err     error
}

func (w *Warning) Error() string {
	return fmt.Sprintf("failed to load the %s line editor, falling back: %v", w.Backend, w.Err)
}

func (w *Warning) Unwrap() error { return w.Err }

// ErrEmptyPath is returned when no backend is on the path.
var ErrEmptyPath = errors.New("no line editor backend available")

// Select acquires an editor by trying the backends on path in order. If
// preferSystem is true, the bundled backend is taken off the path for a first
// attempt; if that fails, the attempt is retried once with the full path and
// the first failure is returned as a Warning. An error is returned only when
// no backend could be acquired. The path is left in its original order.
func Select(path *Path, preferSystem bool, open Opener) (Editor, *Warning, error) {
	if !preferSystem {
		ed, err := acquire(path, open)
		return ed, nil, err
	}
	ed, err := acquireWithout(path, Bundled, open)
	if err == nil {
		return ed, nil, nil
	}
	warning := &Warning{Backend: System, Err: err}
	logger.Warn("system line editor unavailable", "err", err)
	ed, err = acquire(path, open)
	if err != nil {
		return nil, warning, fmt.Errorf("cannot load any line editor: %w", errutil.Multi(warning.Err, err))
	}
	return ed, warning, nil
}

func acquireWithout(path *Path, name string, open Opener) (Editor, error) {
	restore := path.remove(name)
	defer restore()
	return acquire(path, open)
}

func acquire(path *Path, open Opener) (Editor, error) {
	if len(path.names) == 0 {
		return nil, ErrEmptyPath
	}
	var errs []error
	for _, name := range path.names {
		ed, err := open(name)
		if err == nil {
			logger.Debug("line editor acquired", "backend", name)
			return ed, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", name, err))
	}
	return nil, errutil.Multi(errs...)
}
