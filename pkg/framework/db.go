package framework

import (
	"errors"

	"src.kitcon.sh/pkg/store"
	"src.kitcon.sh/pkg/store/storedefs"
)

// DefaultWorkspaceName is the name of the workspace created when none exists.
const DefaultWorkspaceName = "default"

// ErrDBInactive is returned by DB operations when there is no database.
var ErrDBInactive = errors.New("database not connected")

// Workspace is a named partition of the persistent state.
type Workspace struct {
	Name string
}

// DB is the persistent store of the toolkit. A DB without a backing store is
// inactive; queries on it find nothing.
type DB struct {
	st store.DBStore
}

// NewDB wraps a store, which may be nil.
func NewDB(st store.DBStore) *DB { return &DB{st: st} }

// Active reports whether the DB has a backing store.
func (db *DB) Active() bool { return db != nil && db.st != nil }

// Store returns the backing store, or nil.
func (db *DB) Store() store.DBStore {
	if !db.Active() {
		return nil
	}
	return db.st
}

// FindWorkspace looks up a workspace by name.
func (db *DB) FindWorkspace(name string) (*Workspace, bool) {
	if !db.Active() {
		return nil, false
	}
	ok, err := db.st.HasWorkspace(name)
	if err != nil || !ok {
		return nil, false
	}
	return &Workspace{Name: name}, true
}

// DefaultWorkspace returns the default workspace, creating it if needed.
func (db *DB) DefaultWorkspace() (*Workspace, error) {
	if !db.Active() {
		return nil, ErrDBInactive
	}
	if err := db.st.AddWorkspace(DefaultWorkspaceName); err != nil {
		return nil, err
	}
	return &Workspace{Name: DefaultWorkspaceName}, nil
}

// Workspace returns the current workspace, or nil if none is set.
func (db *DB) Workspace() *Workspace {
	if !db.Active() {
		return nil
	}
	name, err := db.st.CurrentWorkspace()
	if err != nil || name == "" {
		return nil
	}
	return &Workspace{Name: name}
}

// SetWorkspace makes ws the current workspace.
func (db *DB) SetWorkspace(ws *Workspace) error {
	if !db.Active() {
		return ErrDBInactive
	}
	return db.st.SetCurrentWorkspace(ws.Name)
}

// AddWorkspace creates a workspace.
func (db *DB) AddWorkspace(name string) (*Workspace, error) {
	if !db.Active() {
		return nil, ErrDBInactive
	}
	if err := db.st.AddWorkspace(name); err != nil {
		return nil, err
	}
	return &Workspace{Name: name}, nil
}

// DeleteWorkspace deletes a workspace.
func (db *DB) DeleteWorkspace(name string) error {
	if !db.Active() {
		return ErrDBInactive
	}
	return db.st.DelWorkspace(name)
}

// Workspaces lists the workspace names.
func (db *DB) Workspaces() ([]string, error) {
	if !db.Active() {
		return nil, ErrDBInactive
	}
	return db.st.Workspaces()
}

// IsNoWorkspace reports whether err means that a workspace doesn't exist.
func IsNoWorkspace(err error) bool {
	return errors.Is(err, storedefs.ErrNoWorkspace)
}
