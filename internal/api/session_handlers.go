package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/cuepointapp/cuepoint-server/internal/domain"
	domainerrors "github.com/cuepointapp/cuepoint-server/internal/errors"
)

func (s *Server) registerSessionRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createSession",
		Method:        http.MethodPost,
		Path:          "/api/v1/sessions",
		Summary:       "Create session",
		Description:   "Starts a chat session about an ingested video",
		Tags:          []string{"Sessions"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "getSession",
		Method:      http.MethodGet,
		Path:        "/api/v1/sessions/{id}",
		Summary:     "Get session",
		Description: "Returns a session with its chat history",
		Tags:        []string{"Sessions"},
	}, s.handleGetSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "resetSession",
		Method:      http.MethodPost,
		Path:        "/api/v1/sessions/{id}/reset",
		Summary:     "Reset session",
		Description: "Clears a session's chat history and keeps it alive",
		Tags:        []string{"Sessions"},
	}, s.handleResetSession)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteSession",
		Method:        http.MethodDelete,
		Path:          "/api/v1/sessions/{id}",
		Summary:       "Delete session",
		Description:   "Ends a session",
		Tags:          []string{"Sessions"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteSession)
}

// CreateSessionInput names the video to chat about.
type CreateSessionInput struct {
	Body struct {
		VideoID string `json:"video_id" doc:"YouTube video ID"`
	}
}

// SessionIDInput is the session path parameter.
type SessionIDInput struct {
	ID string `path:"id" doc:"Session ID"`
}

// SessionResponse is a session in API responses.
type SessionResponse struct {
	ID        string        `json:"id" doc:"Session ID"`
	VideoID   string        `json:"video_id" doc:"Video the session is about"`
	Turns     []domain.Turn `json:"turns" doc:"Chat history, oldest first"`
	CreatedAt time.Time     `json:"created_at" doc:"Creation time"`
	UpdatedAt time.Time     `json:"updated_at" doc:"Last activity"`
	ExpiresAt time.Time     `json:"expires_at" doc:"Expiry unless extended by another turn"`
}

// SessionOutput wraps a session for Huma.
type SessionOutput struct {
	CacheControl string `header:"Cache-Control"`
	Body         SessionResponse
}

func (s *Server) sessionsEnabled() error {
	if s.services.Sessions == nil {
		return domainerrors.NotFoundf("sessions are not enabled")
	}
	return nil
}

func (s *Server) handleCreateSession(ctx context.Context, input *CreateSessionInput) (*SessionOutput, error) {
	if err := s.sessionsEnabled(); err != nil {
		return nil, err
	}
	session, err := s.services.Sessions.Create(ctx, input.Body.VideoID)
	if err != nil {
		return nil, s.handlerError("create session", err)
	}
	return toSessionOutput(session), nil
}

func (s *Server) handleGetSession(ctx context.Context, input *SessionIDInput) (*SessionOutput, error) {
	if err := s.sessionsEnabled(); err != nil {
		return nil, err
	}
	session, err := s.services.Sessions.Get(ctx, input.ID)
	if err != nil {
		return nil, s.handlerError("get session", err)
	}
	return toSessionOutput(session), nil
}

func (s *Server) handleResetSession(ctx context.Context, input *SessionIDInput) (*SessionOutput, error) {
	if err := s.sessionsEnabled(); err != nil {
		return nil, err
	}
	session, err := s.services.Sessions.Reset(ctx, input.ID)
	if err != nil {
		return nil, s.handlerError("reset session", err)
	}
	return toSessionOutput(session), nil
}

func (s *Server) handleDeleteSession(ctx context.Context, input *SessionIDInput) (*struct{}, error) {
	if err := s.sessionsEnabled(); err != nil {
		return nil, err
	}
	if err := s.services.Sessions.Delete(ctx, input.ID); err != nil {
		return nil, s.handlerError("delete session", err)
	}
	return nil, nil
}

func toSessionOutput(session *domain.Session) *SessionOutput {
	turns := session.Turns
	if turns == nil {
		turns = []domain.Turn{}
	}
	return &SessionOutput{
		CacheControl: CacheNoStore,
		Body: SessionResponse{
			ID:        session.ID,
			VideoID:   session.VideoID,
			Turns:     turns,
			CreatedAt: session.CreatedAt,
			UpdatedAt: session.UpdatedAt,
			ExpiresAt: session.ExpiresAt,
		},
	}
}
