// Package store keeps the history of code entered in the REPL, in a bbolt
// database.
package store

import (
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
	"src.kl.sh/pkg/logutil"
)

var logger = logutil.GetLogger("[store] ")

// ErrNoMatchingCmd is the error returned when a query on the history
// completes with no result.
var ErrNoMatchingCmd = errors.New("no matching command line")

// Cmd is an entry in the history.
type Cmd struct {
	Text string
	Seq  int
}

// Store is the history database.
type Store struct {
	db *bolt.DB
}

const bucketCmd = "cmd"

var initDB = map[string]func(*bolt.Tx) error{
	"initialize command history table": func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketCmd))
		return err
	},
}

// NewStore opens the database at the given path, creating it if it doesn't
// exist yet.
func NewStore(dbname string) (*Store, error) {
	db, err := bolt.Open(dbname, 0644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	return NewStoreFromBolt(db)
}

// NewStoreFromBolt creates a new Store from a bbolt DB.
func NewStoreFromBolt(db *bolt.DB) (*Store, error) {
	logger.Println("initializing store")
	err := db.Update(func(tx *bolt.Tx) error {
		for name, fn := range initDB {
			if err := fn(tx); err != nil {
				return fmt.Errorf("failed to %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	logger.Println("initialized store")
	return &Store{db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
