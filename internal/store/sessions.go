package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/cuepointapp/cuepoint-server/internal/domain"
	domainerrors "github.com/cuepointapp/cuepoint-server/internal/errors"
)

const (
	sessionPrefix        = "session:"
	sessionByVideoPrefix = "idx:session:video:"

	maxUpdateAttempts = 5
)

// Session errors.
var (
	ErrSessionNotFound = &domainerrors.Error{Code: domainerrors.CodeNotFound, Message: "session not found"}
	ErrSessionExists   = &domainerrors.Error{Code: domainerrors.CodeConflict, Message: "session already exists"}
)

func sessionKey(id string) []byte { return []byte(sessionPrefix + id) }

func videoIndexKey(videoID, sessionID string) []byte {
	return []byte(sessionByVideoPrefix + videoID + ":" + sessionID)
}

// CreateSession stores a new session. Its remaining lifetime becomes the record TTL.
func (s *Store) CreateSession(ctx context.Context, session *domain.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	exists, err := s.exists(sessionKey(session.ID))
	if err != nil {
		return fmt.Errorf("check session exists: %w", err)
	}
	if exists {
		return ErrSessionExists
	}
	return s.putSession(session)
}

func (s *Store) putSession(session *domain.Session) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return setSession(txn, session)
	})
}

func setSession(txn *badger.Txn, session *domain.Session) error {
	ttl := session.TTL(time.Now())
	if ttl == 0 {
		return ErrSessionNotFound
	}
	e, err := entry(sessionKey(session.ID), session, ttl)
	if err != nil {
		return err
	}
	if err := txn.SetEntry(e); err != nil {
		return err
	}
	return txn.SetEntry(badger.NewEntry(videoIndexKey(session.VideoID, session.ID), nil).WithTTL(ttl))
}

// UpdateSession loads a session, applies fn and writes the result back in one
// transaction. Concurrent updates of the same session are applied one after
// another, so none is lost. An error from fn aborts the update unchanged.
func (s *Store) UpdateSession(ctx context.Context, id string, fn func(*domain.Session) error) (*domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mu := s.sessionLock(id)
	mu.Lock()
	defer mu.Unlock()

	var updated *domain.Session
	var err error
	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		err = s.db.Update(func(txn *badger.Txn) error {
			session, err := readSession(txn, id)
			if err != nil {
				return err
			}
			if err := fn(session); err != nil {
				return err
			}
			updated = session
			return setSession(txn, session)
		})
		if !errors.Is(err, badger.ErrConflict) {
			break
		}
		s.logger.Debug("session update conflict, retrying", "session_id", id, "attempt", attempt)
	}
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Store) sessionLock(id string) *sync.Mutex {
	mu, _ := s.sessionLocks.LoadOrStore(id, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func readSession(txn *badger.Txn, id string) (*domain.Session, error) {
	item, err := txn.Get(sessionKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var session domain.Session
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &session)
	}); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if session.IsExpired(time.Now()) {
		return nil, ErrSessionNotFound
	}
	return &session, nil
}

// GetSession loads a live session.
func (s *Store) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var session domain.Session
	if err := s.get(sessionKey(id), &session); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session.IsExpired(time.Now()) {
		return nil, ErrSessionNotFound
	}
	return &session, nil
}

// DeleteSession removes a session. Deleting a missing session is not an error.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	session, err := s.GetSession(ctx, id)
	if errors.Is(err, ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(sessionKey(id)); err != nil {
			return err
		}
		return txn.Delete(videoIndexKey(session.VideoID, id))
	})
	if err != nil {
		return err
	}
	s.sessionLocks.Delete(id)
	return nil
}

// ListSessionIDsByVideo returns the IDs of live sessions about a video.
func (s *Store) ListSessionIDsByVideo(ctx context.Context, videoID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prefix := []byte(sessionByVideoPrefix + videoID + ":")

	var ids []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			ids = append(ids, strings.TrimPrefix(string(it.Item().Key()), string(prefix)))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list sessions for %s: %w", videoID, err)
	}
	return ids, nil
}
