// Package store persists chat sessions in Badger. Sessions carry a TTL that
// Badger enforces, so abandoned conversations disappear on their own.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/cuepointapp/cuepoint-server/internal/logger"
)

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	// sessionLocks serializes read-modify-write cycles per session ID.
	sessionLocks sync.Map
}

// New opens (or creates) the store at path.
func New(path string, log *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	opts.SyncWrites = true
	opts.CompactL0OnClose = true
	return open(opts, log)
}

// NewInMemory opens a store that lives only as long as the process.
func NewInMemory(log *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return open(opts, log)
}

func open(opts badger.Options, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = logger.Discard()
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}
	log.Info("session store opened", "path", opts.Dir, "in_memory", opts.InMemory)
	return &Store{db: db, logger: log}, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	s.logger.Info("closing session store")
	return s.db.Close()
}

// RunGC reclaims value log space. Badger reports ErrNoRewrite when there was
// nothing to collect; that is not an error here.
func (s *Store) RunGC() error {
	err := s.db.RunValueLogGC(0.5)
	if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrRejected) {
		return nil
	}
	return err
}

func (s *Store) get(key []byte, dest any) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dest)
		})
	})
}

func (s *Store) exists(key []byte) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// entry builds a JSON entry that expires after ttl. A non-positive ttl never expires.
func entry(key []byte, value any, ttl time.Duration) (*badger.Entry, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal value: %w", err)
	}
	e := badger.NewEntry(key, data)
	if ttl > 0 {
		e = e.WithTTL(ttl)
	}
	return e, nil
}
