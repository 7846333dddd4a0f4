// Package storedefs contains definitions of the store API.
//
// It is a separate package so that packages that only depend on the store API
// does not need to depend on the concrete implementation.
package storedefs

import "errors"

var (
	// ErrNoMatchingCmd is the error returned when a command history query
	// completes with no result.
	ErrNoMatchingCmd = errors.New("no matching command line")
	// ErrNoWorkspace is returned when a workspace doesn't exist.
	ErrNoWorkspace = errors.New("no such workspace")
)

// Store is an interface satisfied by the storage service.
type Store interface {
	AddCmd(text string) (int, error)
	DelCmd(seq int) error
	Cmd(seq int) (string, error)
	CmdsWithSeq(from, upto int) ([]Cmd, error)
	LastCmds(n int) ([]Cmd, error)

	AddWorkspace(name string) error
	DelWorkspace(name string) error
	HasWorkspace(name string) (bool, error)
	Workspaces() ([]string, error)
	CurrentWorkspace() (string, error)
	SetCurrentWorkspace(name string) error

	SetModuleCache(names []string) error
	ModuleCache() ([]string, error)
}

// Cmd is an entry in the command history.
type Cmd struct {
	Text string
	Seq  int
}
