package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cuepointapp/cuepoint-server/internal/domain"
	domainerrors "github.com/cuepointapp/cuepoint-server/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewInMemory(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCreateAndGetSession(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	session := domain.NewSession("ses-1", "vid", time.Hour)
	session.AppendTurn(domain.Turn{Query: "what is a loop", Answer: "a repeat"}, time.Hour)
	require.NoError(t, s.CreateSession(ctx, session))

	got, err := s.GetSession(ctx, "ses-1")
	require.NoError(t, err)
	assert.Equal(t, "vid", got.VideoID)
	require.Len(t, got.Turns, 1)
	assert.Equal(t, "what is a loop", got.Turns[0].Query)
}

func TestCreateSession_Duplicate(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateSession(ctx, domain.NewSession("ses-1", "vid", time.Hour)))

	err := s.CreateSession(ctx, domain.NewSession("ses-1", "vid", time.Hour))
	assert.ErrorIs(t, err, domainerrors.ErrConflict)
}

func TestGetSession_NotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.GetSession(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestCreateSession_Expired(t *testing.T) {
	s := setupTestStore(t)
	session := domain.NewSession("ses-1", "vid", time.Hour)
	session.ExpiresAt = time.Now().Add(-time.Second)

	err := s.CreateSession(context.Background(), session)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestUpdateSession(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateSession(ctx, domain.NewSession("ses-1", "vid", time.Hour)))

	updated, err := s.UpdateSession(ctx, "ses-1", func(session *domain.Session) error {
		session.AppendTurn(domain.Turn{Query: "q1"}, time.Hour)
		session.AppendTurn(domain.Turn{Query: "q2"}, time.Hour)
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, updated.Turns, 2)

	got, err := s.GetSession(ctx, "ses-1")
	require.NoError(t, err)
	assert.Len(t, got.Turns, 2)
}

func TestUpdateSession_Errors(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateSession(ctx, domain.NewSession("ses-1", "vid", time.Hour)))

	t.Run("missing session", func(t *testing.T) {
		_, err := s.UpdateSession(ctx, "missing", func(*domain.Session) error { return nil })
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("callback error leaves session unchanged", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := s.UpdateSession(ctx, "ses-1", func(session *domain.Session) error {
			session.AppendTurn(domain.Turn{Query: "dropped"}, time.Hour)
			return boom
		})
		assert.ErrorIs(t, err, boom)

		got, err := s.GetSession(ctx, "ses-1")
		require.NoError(t, err)
		assert.Empty(t, got.Turns)
	})

	t.Run("expiring the session", func(t *testing.T) {
		_, err := s.UpdateSession(ctx, "ses-1", func(session *domain.Session) error {
			session.ExpiresAt = time.Now().Add(-time.Second)
			return nil
		})
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})
}

func TestUpdateSession_ConcurrentAppends(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateSession(ctx, domain.NewSession("ses-1", "vid", time.Hour)))

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.UpdateSession(ctx, "ses-1", func(session *domain.Session) error {
				session.AppendTurn(domain.Turn{Query: fmt.Sprintf("q%d", i)}, time.Hour)
				return nil
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := s.GetSession(ctx, "ses-1")
	require.NoError(t, err)
	assert.Len(t, got.Turns, workers)
}

func TestDeleteSession(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateSession(ctx, domain.NewSession("ses-1", "vid", time.Hour)))

	require.NoError(t, s.DeleteSession(ctx, "ses-1"))

	_, err := s.GetSession(ctx, "ses-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	ids, err := s.ListSessionIDsByVideo(ctx, "vid")
	require.NoError(t, err)
	assert.Empty(t, ids)

	assert.NoError(t, s.DeleteSession(ctx, "ses-1"))
}

func TestListSessionIDsByVideo(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateSession(ctx, domain.NewSession("ses-a", "vid", time.Hour)))
	require.NoError(t, s.CreateSession(ctx, domain.NewSession("ses-b", "vid", time.Hour)))
	require.NoError(t, s.CreateSession(ctx, domain.NewSession("ses-c", "vid2", time.Hour)))

	ids, err := s.ListSessionIDsByVideo(ctx, "vid")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"ses-a", "ses-b"}, ids)
}

func TestNew_OnDisk(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := New(dir, nil)
	require.NoError(t, err)
	require.NoError(t, s.CreateSession(ctx, domain.NewSession("ses-1", "vid", time.Hour)))
	require.NoError(t, s.RunGC())
	require.NoError(t, s.Close())

	reopened, err := New(dir, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	got, err := reopened.GetSession(ctx, "ses-1")
	require.NoError(t, err)
	assert.Equal(t, "vid", got.VideoID)
}
