package store

import (
	"encoding/binary"
	"slices"

	bolt "go.etcd.io/bbolt"
	"src.kitcon.sh/pkg/store/storedefs"
)

func init() {
	initDB["initialize command history table"] = func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketCmd))
		return err
	}
}

// Keys of the history bucket are big-endian sequence numbers, so cursor order
// is chronological.
func seqKey(seq int) []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(seq))
}

func keySeq(k []byte) int { return int(binary.BigEndian.Uint64(k)) }

// AddCmd appends a command line to the history and returns its sequence
// number. A line equal to the latest entry is not added again; its sequence
// number is returned instead.
func (s *dbStore) AddCmd(text string) (int, error) {
	var seq int
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketCmd))
		if k, v := b.Cursor().Last(); k != nil && string(v) == text {
			seq = keySeq(k)
			return nil
		}
		next, err := b.NextSequence()
		if err != nil {
			return err
		}
		seq = int(next)
		return b.Put(seqKey(seq), []byte(text))
	})
	return seq, err
}

// DelCmd deletes the history entry with the given sequence number.
func (s *dbStore) DelCmd(seq int) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketCmd)).Delete(seqKey(seq))
	})
}

// Cmd returns the history entry with the given sequence number.
func (s *dbStore) Cmd(seq int) (string, error) {
	var text string
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucketCmd)).Get(seqKey(seq))
		if v == nil {
			return storedefs.ErrNoMatchingCmd
		}
		text = string(v)
		return nil
	})
	return text, err
}

// CmdsWithSeq returns the entries with sequence numbers in [from, upto).
func (s *dbStore) CmdsWithSeq(from, upto int) ([]storedefs.Cmd, error) {
	var cmds []storedefs.Cmd
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(bucketCmd)).Cursor()
		for k, v := c.Seek(seqKey(max(from, 0))); k != nil && keySeq(k) < upto; k, v = c.Next() {
			cmds = append(cmds, storedefs.Cmd{Text: string(v), Seq: keySeq(k)})
		}
		return nil
	})
	return cmds, err
}

// LastCmds returns the n latest entries, oldest first.
func (s *dbStore) LastCmds(n int) ([]storedefs.Cmd, error) {
	var cmds []storedefs.Cmd
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(bucketCmd)).Cursor()
		for k, v := c.Last(); k != nil && len(cmds) < n; k, v = c.Prev() {
			cmds = append(cmds, storedefs.Cmd{Text: string(v), Seq: keySeq(k)})
		}
		return nil
	})
	slices.Reverse(cmds)
	return cmds, err
}
