package store

import (
	bolt "go.etcd.io/bbolt"
)

func init() {
	initDB["initialize module cache table"] = func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketModCache))
		return err
	}
}

// SetModuleCache replaces the module cache with the given module names.
func (s *dbStore) SetModuleCache(names []string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(bucketModCache)); err != nil && err != bolt.ErrBucketNotFound {
			return err
		}
		b, err := tx.CreateBucket([]byte(bucketModCache))
		if err != nil {
			return err
		}
		for _, name := range names {
			if err := b.Put([]byte(name), []byte{}); err != nil {
				return err
			}
		}
		return nil
	})
}

// ModuleCache returns the cached module names in lexicographical order.
func (s *dbStore) ModuleCache() ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketModCache)).ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	return names, err
}
