package store

import (
	"time"

	bolt "go.etcd.io/bbolt"
	. "src.kitcon.sh/pkg/store/storedefs"
)

const keyCurrentWorkspace = "current_workspace"

func init() {
	initDB["initialize workspace table"] = func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketWorkspace))
		return err
	}
	initDB["initialize metadata table"] = func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketMeta))
		return err
	}
}

// AddWorkspace creates a workspace. Adding an existing workspace is a no-op.
func (s *dbStore) AddWorkspace(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketWorkspace))
		if b.Get([]byte(name)) != nil {
			return nil
		}
		return b.Put([]byte(name), []byte(time.Now().UTC().Format(time.RFC3339)))
	})
}

// DelWorkspace deletes a workspace. If it is the current workspace, the
// current workspace is cleared.
func (s *dbStore) DelWorkspace(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketWorkspace))
		if b.Get([]byte(name)) == nil {
			return ErrNoWorkspace
		}
		meta := tx.Bucket([]byte(bucketMeta))
		if string(meta.Get([]byte(keyCurrentWorkspace))) == name {
			if err := meta.Delete([]byte(keyCurrentWorkspace)); err != nil {
				return err
			}
		}
		return b.Delete([]byte(name))
	})
}

// HasWorkspace reports whether a workspace exists.
func (s *dbStore) HasWorkspace(name string) (bool, error) {
	var exists bool
	err := s.db.View(func(tx *bolt.Tx) error {
		exists = tx.Bucket([]byte(bucketWorkspace)).Get([]byte(name)) != nil
		return nil
	})
	return exists, err
}

// Workspaces lists all workspaces in lexicographical order.
func (s *dbStore) Workspaces() ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketWorkspace)).ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	return names, err
}

// CurrentWorkspace returns the name of the current workspace, or "" if none is
// set.
func (s *dbStore) CurrentWorkspace() (string, error) {
	var name string
	err := s.db.View(func(tx *bolt.Tx) error {
		name = string(tx.Bucket([]byte(bucketMeta)).Get([]byte(keyCurrentWorkspace)))
		return nil
	})
	return name, err
}

// SetCurrentWorkspace switches to an existing workspace.
func (s *dbStore) SetCurrentWorkspace(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket([]byte(bucketWorkspace)).Get([]byte(name)) == nil {
			return ErrNoWorkspace
		}
		return tx.Bucket([]byte(bucketMeta)).Put([]byte(keyCurrentWorkspace), []byte(name))
	})
}
