package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cuepointapp/cuepoint-server/internal/domain"
	domainerrors "github.com/cuepointapp/cuepoint-server/internal/errors"
	"github.com/cuepointapp/cuepoint-server/internal/id"
	"github.com/cuepointapp/cuepoint-server/internal/sse"
	"github.com/cuepointapp/cuepoint-server/internal/store"
	"github.com/cuepointapp/cuepoint-server/internal/store/sqlite"
)

// DefaultSessionTTL applies when no TTL is configured.
const DefaultSessionTTL = 24 * time.Hour

// SessionService manages the conversation state of a video. A session is
// created on first interaction, extended by every question and torn down
// when the client clears it.
type SessionService struct {
	store   *store.Store
	catalog *sqlite.Catalog
	events  EventEmitter
	ttl     time.Duration
	logger  *slog.Logger
}

// NewSessionService creates a new session service.
func NewSessionService(st *store.Store, catalog *sqlite.Catalog, events EventEmitter, ttl time.Duration, logger *slog.Logger) *SessionService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionService{
		store:   st,
		catalog: catalog,
		events:  orNoop(events),
		ttl:     ttl,
		logger:  logger,
	}
}

// Create starts an empty session about an ingested video.
func (s *SessionService) Create(ctx context.Context, videoID string) (*domain.Session, error) {
	if _, err := s.catalog.GetVideo(ctx, videoID); err != nil {
		return nil, err
	}

	sessionID, err := id.Generate("ses")
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}

	session := domain.NewSession(sessionID, videoID, s.ttl)
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Debug("session created", "session_id", sessionID, "video_id", videoID)
	return session, nil
}

// Get loads a live session.
func (s *SessionService) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	return s.store.GetSession(ctx, sessionID)
}

// Delete tears a session down. Deleting an unknown session succeeds.
func (s *SessionService) Delete(ctx context.Context, sessionID string) error {
	return s.store.DeleteSession(ctx, sessionID)
}

// Reset clears the history of a session but keeps it alive.
func (s *SessionService) Reset(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := s.store.UpdateSession(ctx, sessionID, func(session *domain.Session) error {
		session.Reset()
		session.ExpiresAt = session.UpdatedAt.Add(s.ttl)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.events.Emit(sse.NewSessionUpdatedEvent(session.ID, session.VideoID, 0))
	return session, nil
}

// AppendTurn records a turn in a session about videoID. Asking about another
// video inside a session is a validation error.
func (s *SessionService) AppendTurn(ctx context.Context, sessionID, videoID string, turn domain.Turn) (*domain.Session, error) {
	session, err := s.store.UpdateSession(ctx, sessionID, func(session *domain.Session) error {
		if session.VideoID != videoID {
			return otherVideoError(session.VideoID)
		}
		session.AppendTurn(turn, s.ttl)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.events.Emit(sse.NewSessionUpdatedEvent(session.ID, session.VideoID, len(session.Turns)))
	return session, nil
}

// CheckSession verifies a session exists and is about videoID without
// changing it.
func (s *SessionService) CheckSession(ctx context.Context, sessionID, videoID string) error {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.VideoID != videoID {
		return otherVideoError(session.VideoID)
	}
	return nil
}

func otherVideoError(videoID string) error {
	return domainerrors.ValidationWithDetails("session belongs to another video",
		map[string]string{"session_id": fmt.Sprintf("session is about video %s", videoID)})
}

// PurgeVideo deletes every session about a video. Used when the video is
// removed from the catalog.
func (s *SessionService) PurgeVideo(ctx context.Context, videoID string) (int, error) {
	ids, err := s.store.ListSessionIDsByVideo(ctx, videoID)
	if err != nil {
		return 0, err
	}
	for _, sessionID := range ids {
		if err := s.store.DeleteSession(ctx, sessionID); err != nil {
			return 0, err
		}
	}
	return len(ids), nil
}
