// Package testutil contains common test utilities.
//
// Helpers taking a [testing.TB] fail the test on errors; the others only need
// a place to register cleanups.
package testutil

import (
	"os"
	"path/filepath"
)

// Cleanuper wraps the Cleanup method. It is a subset of [testing.TB], thus
// satisfied by [*testing.T] and [*testing.B].
type Cleanuper interface {
	Cleanup(func())
}

// Set sets *p to v for the duration of a test.
func Set[T any](c Cleanuper, p *T, v T) {
	old := *p
	*p = v
	c.Cleanup(func() { *p = old })
}

// Setenv sets an environment variable for the duration of a test. Unlike
// [testing.T.Setenv], it works with any Cleanuper.
func Setenv(c Cleanuper, name, value string) {
	if old, ok := os.LookupEnv(name); ok {
		c.Cleanup(func() { os.Setenv(name, old) })
	} else {
		c.Cleanup(func() { os.Unsetenv(name) })
	}
	os.Setenv(name, value)
}

// TempDir creates a temporary directory that is removed when the test
// finishes. Symlinks in the returned path are resolved, so that it compares
// equal to paths the code under test derives from it.
func TempDir(c Cleanuper) string {
	dir, err := os.MkdirTemp("", "kitcontest")
	if err == nil {
		dir, err = filepath.EvalSymlinks(dir)
	}
	if err != nil {
		panic(err)
	}
	c.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}
