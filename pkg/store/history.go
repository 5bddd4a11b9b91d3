package store

import (
	"encoding/binary"

	bolt "go.etcd.io/bbolt"
)

// AddCmd appends code to the history and returns its sequence number. Code
// that is the same as the latest entry is not added again; the sequence number
// of the latest entry is returned instead.
func (s *Store) AddCmd(code string) (int, error) {
	var seq uint64
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketCmd))
		if k, v := b.Cursor().Last(); k != nil && string(v) == code {
			seq = unmarshalSeq(k)
			return nil
		}
		var err error
		seq, err = b.NextSequence()
		if err != nil {
			return err
		}
		return b.Put(marshalSeq(seq), []byte(code))
	})
	return int(seq), err
}

// CmdsWithSeq returns all entries with sequence numbers within [from, upto),
// oldest first.
func (s *Store) CmdsWithSeq(from, upto int) ([]Cmd, error) {
	var cmds []Cmd
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(bucketCmd)).Cursor()
		for k, v := c.Seek(marshalSeq(uint64(from))); k != nil && unmarshalSeq(k) < uint64(upto); k, v = c.Next() {
			cmds = append(cmds, Cmd{Text: string(v), Seq: int(unmarshalSeq(k))})
		}
		return nil
	})
	return cmds, err
}

// LastCmds returns the newest n entries, oldest first.
func (s *Store) LastCmds(n int) ([]Cmd, error) {
	var cmds []Cmd
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(bucketCmd)).Cursor()
		for k, v := c.Last(); k != nil && len(cmds) < n; k, v = c.Prev() {
			cmds = append(cmds, Cmd{Text: string(v), Seq: int(unmarshalSeq(k))})
		}
		return nil
	})
	for i, j := 0, len(cmds)-1; i < j; i, j = i+1, j-1 {
		cmds[i], cmds[j] = cmds[j], cmds[i]
	}
	return cmds, err
}

// TrimCmds deletes all but the newest keep entries, and returns the number of
// deleted entries. Sequence numbers of deleted entries are not reused.
func (s *Store) TrimCmds(keep int) (int, error) {
	deleted := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(bucketCmd)).Cursor()
		k, _ := c.Last()
		for i := 0; k != nil && i < keep; i++ {
			k, _ = c.Prev()
		}
		var old [][]byte
		for ; k != nil; k, _ = c.Prev() {
			old = append(old, append([]byte(nil), k...))
		}
		b := tx.Bucket([]byte(bucketCmd))
		for _, k := range old {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		deleted = len(old)
		return nil
	})
	if deleted > 0 {
		logger.Printf("trimmed %d history entries", deleted)
	}
	return deleted, err
}

func marshalSeq(seq uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, seq)
	return b
}

func unmarshalSeq(key []byte) uint64 {
	return binary.BigEndian.Uint64(key)
}
