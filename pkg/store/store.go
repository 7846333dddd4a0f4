// Package store defines the permanent storage service, backed by bbolt.
package store

import (
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
	"src.kitcon.sh/pkg/logutil"
	"src.kitcon.sh/pkg/store/storedefs"
)

var logger = logutil.GetLogger("[store] ")

const dbTimeout = time.Second

// Names of buckets.
const (
	bucketCmd       = "cmd"
	bucketWorkspace = "workspace"
	bucketMeta      = "meta"
	bucketModCache  = "module_cache"
)

var initDB = map[string](func(*bolt.Tx) error){}

// DBStore is the permanent storage backend. It is safe for use from multiple
// goroutines; bbolt serializes writers.
type DBStore interface {
	storedefs.Store
	Close() error
}

type dbStore struct {
	db *bolt.DB
}

// NewStore creates a new Store from the given file.
func NewStore(dbname string) (DBStore, error) {
	db, err := bolt.Open(dbname, 0644, &bolt.Options{Timeout: dbTimeout})
	if err != nil {
		return nil, err
	}
	return NewStoreFromDB(db)
}

// NewStoreFromDB creates a new Store from a bolt DB.
func NewStoreFromDB(db *bolt.DB) (DBStore, error) {
	logger.Debug("initializing store", "path", db.Path())
	st := &dbStore{db: db}
	err := db.Update(func(tx *bolt.Tx) error {
		for name, fn := range initDB {
			err := fn(tx)
			if err != nil {
				return fmt.Errorf("failed to %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return st, nil
}

// Close closes the underlying database.
func (s *dbStore) Close() error {
	return s.db.Close()
}
