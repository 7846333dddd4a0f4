// Package framework is the toolkit behind the console: a registry of modules
// and payloads, the global datastore, the event bus, the persistent
// workspace database, running jobs and plugins.
package framework

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"src.kitcon.sh/pkg/logutil"
	"src.kitcon.sh/pkg/store"
)

var logger = logutil.Source(logutil.SourceCore)

// Config keeps configuration for New.
type Config struct {
	// Store backs the workspace database. If nil, the database is inactive.
	Store store.DBStore
	// InstallRoot is the directory IntegrityFiles are relative to.
	InstallRoot string
	// IntegrityFiles are files that must exist under InstallRoot. Missing files
	// usually mean that antivirus software quarantined part of the
	// installation.
	IntegrityFiles []string
	// NoBuiltins skips registering the built-in modules and payloads.
	NoBuiltins bool
}

// Framework is an instance of the toolkit.
type Framework struct {
	cfg Config

	events    EventBus
	jobs      Jobs
	db        *DB
	datastore *DataStore

	mu              sync.RWMutex
	modules         map[string]Factory
	payloads        map[string]string
	pluginFactories map[string]PluginFactory
	plugins         map[string]Plugin
	loadErrors      map[string]error
	loadWarnings    map[string]string
}

// New creates a Framework.
func New(cfg Config) *Framework {
	fw := &Framework{
		cfg:             cfg,
		db:              NewDB(cfg.Store),
		datastore:       NewDataStore(nil),
		modules:         map[string]Factory{},
		payloads:        map[string]string{},
		pluginFactories: map[string]PluginFactory{},
		plugins:         map[string]Plugin{},
		loadErrors:      map[string]error{},
		loadWarnings:    map[string]string{},
	}
	if !cfg.NoBuiltins {
		registerBuiltins(fw)
	}
	return fw
}

// Events returns the event bus.
func (fw *Framework) Events() *EventBus { return &fw.events }

// Jobs returns the job table.
func (fw *Framework) Jobs() *Jobs { return &fw.jobs }

// DB returns the persistent database.
func (fw *Framework) DB() *DB { return fw.db }

// Datastore returns the global datastore.
func (fw *Framework) Datastore() *DataStore { return fw.datastore }

// LoadErrors returns the modules that failed to register, with the reasons.
func (fw *Framework) LoadErrors() map[string]error {
	fw.mu.RLock()
	defer fw.mu.RUnlock()
	m := make(map[string]error, len(fw.loadErrors))
	for k, v := range fw.loadErrors {
		m[k] = v
	}
	return m
}

// LoadWarnings returns the warnings recorded while registering modules.
func (fw *Framework) LoadWarnings() map[string]string {
	fw.mu.RLock()
	defer fw.mu.RUnlock()
	m := make(map[string]string, len(fw.loadWarnings))
	for k, v := range fw.loadWarnings {
		m[k] = v
	}
	return m
}

// Corrupted reports whether any of the integrity files is missing.
func (fw *Framework) Corrupted() bool {
	for _, name := range fw.cfg.IntegrityFiles {
		if _, err := os.Stat(filepath.Join(fw.cfg.InstallRoot, name)); err != nil {
			return true
		}
	}
	return false
}

// RebuildCache writes the names of all modules to the module cache of the
// database. It does nothing when the database is inactive.
func (fw *Framework) RebuildCache(ctx context.Context) error {
	if !fw.db.Active() {
		return nil
	}
	names := fw.Modules()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fw.db.Store().SetModuleCache(names)
}

// RebuildCacheAsync runs RebuildCache on its own goroutine and returns a
// channel that is closed when it finishes. Callers are free to ignore it.
func (fw *Framework) RebuildCacheAsync(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := fw.RebuildCache(ctx); err != nil {
			logger.Warn("module cache rebuild failed", "err", err)
			return
		}
		logger.Debug("module cache rebuilt")
	}()
	return done
}

// Shutdown stops all jobs, unloads all plugins and closes the database.
func (fw *Framework) Shutdown() error {
	fw.jobs.StopAll()
	for _, p := range fw.Plugins() {
		fw.UnloadPlugin(p.Name())
	}
	if st := fw.db.Store(); st != nil {
		return st.Close()
	}
	return nil
}
