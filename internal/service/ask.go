package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cuepointapp/cuepoint-server/internal/answer"
	"github.com/cuepointapp/cuepoint-server/internal/chapters"
	"github.com/cuepointapp/cuepoint-server/internal/domain"
	domainerrors "github.com/cuepointapp/cuepoint-server/internal/errors"
	"github.com/cuepointapp/cuepoint-server/internal/eval"
	"github.com/cuepointapp/cuepoint-server/internal/search"
	"github.com/cuepointapp/cuepoint-server/internal/store/sqlite"
	"github.com/cuepointapp/cuepoint-server/internal/timecode"
	"github.com/cuepointapp/cuepoint-server/internal/util"
	"github.com/cuepointapp/cuepoint-server/internal/validation"
	"github.com/cuepointapp/cuepoint-server/internal/youtube"
)

// AskOptions tunes retrieval and presentation.
type AskOptions struct {
	K             int     // candidates retrieved when a request leaves k unset
	Threshold     float64 // chapter similarity needed to promote passages
	SnippetLength int     // max characters per source snippet
}

// AskRequest is a question about one video.
type AskRequest struct {
	VideoID   string `json:"video_id" validate:"required,videoid"`
	Query     string `json:"query" validate:"required,max=500"`
	K         int    `json:"k" validate:"omitempty,min=1,max=50"`
	SessionID string `json:"session_id"`
}

// AskResponse is the answer with its cited sources, best first.
type AskResponse struct {
	Answer         string          `json:"answer"`
	Sources        []domain.Source `json:"sources"`
	MatchedChapter *chapters.Match `json:"matched_chapter,omitempty"`
	SessionID      string          `json:"session_id,omitempty"`
	Turns          int             `json:"turns,omitempty"`
}

// AskService answers questions from a video's transcript.
type AskService struct {
	index     *search.Index
	catalog   *sqlite.Catalog
	sessions  *SessionService
	answerer  answer.Answerer
	validator *validation.Validator
	opts      AskOptions
	answerLog AnswerLog
	logger    *slog.Logger
}

// AnswerLog records answered questions for offline grading.
// *eval.Recorder implements it.
type AnswerLog interface {
	Record(entry eval.Entry) error
}

// NewAskService creates a new ask service. sessions may be nil, in which
// case session IDs are rejected.
func NewAskService(index *search.Index, catalog *sqlite.Catalog, sessions *SessionService, answerer answer.Answerer, opts AskOptions, logger *slog.Logger) *AskService {
	if opts.K <= 0 {
		opts.K = 5
	}
	if opts.Threshold <= 0 {
		opts.Threshold = chapters.DefaultThreshold
	}
	if opts.SnippetLength <= 0 {
		opts.SnippetLength = 200
	}
	if answerer == nil {
		answerer = answer.Extractive{}
	}
	return &AskService{
		index:     index,
		catalog:   catalog,
		sessions:  sessions,
		answerer:  answerer,
		validator: validation.New(),
		opts:      opts,
		logger:    logger,
	}
}

// SetAnswerLog enables recording of every answered question.
func (s *AskService) SetAnswerLog(l AnswerLog) {
	s.answerLog = l
}

// Ask retrieves candidate passages, promotes the chapter the question is
// about, composes an answer and, with a session, records the turn.
func (s *AskService) Ask(ctx context.Context, req AskRequest) (*AskResponse, error) {
	req.Query = strings.TrimSpace(req.Query)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	k := req.K
	if k == 0 {
		k = s.opts.K
	}

	if _, err := s.catalog.GetVideo(ctx, req.VideoID); err != nil {
		return nil, err
	}
	if req.SessionID != "" {
		if s.sessions == nil {
			return nil, domainerrors.Validation("sessions are not enabled")
		}
		if err := s.sessions.CheckSession(ctx, req.SessionID, req.VideoID); err != nil {
			return nil, err
		}
	}

	candidates, err := s.index.Retrieve(ctx, req.VideoID, req.Query, k)
	if err != nil {
		return nil, err
	}
	chs, err := s.catalog.Chapters(ctx, req.VideoID)
	if err != nil {
		return nil, err
	}

	ranked := chapters.Reranker{Threshold: s.opts.Threshold}.Rerank(req.Query, candidates, chs)

	text, err := s.answerer.Answer(ctx, req.Query, ranked.Documents)
	if err != nil {
		return nil, fmt.Errorf("compose answer: %w", err)
	}

	resp := &AskResponse{
		Answer:         text,
		Sources:        s.sources(req.VideoID, ranked.Documents),
		MatchedChapter: ranked.Matched,
	}

	s.logger.Debug("question answered",
		"video_id", req.VideoID,
		"candidates", len(candidates),
		"chapters", len(chs),
		"promoted", ranked.Matched != nil)

	s.record(req, resp)

	if req.SessionID == "" {
		return resp, nil
	}

	turn := domain.Turn{
		Query:   req.Query,
		Answer:  text,
		Sources: resp.Sources,
		AskedAt: time.Now(),
	}
	if ranked.Matched != nil {
		turn.MatchedChapter = ranked.Matched.Chapter.Title
	}
	session, err := s.sessions.AppendTurn(ctx, req.SessionID, req.VideoID, turn)
	if err != nil {
		return nil, err
	}
	resp.SessionID = session.ID
	resp.Turns = len(session.Turns)
	return resp, nil
}

func (s *AskService) record(req AskRequest, resp *AskResponse) {
	if s.answerLog == nil {
		return
	}
	err := s.answerLog.Record(eval.Entry{
		Timestamp: time.Now().UTC(),
		VideoID:   req.VideoID,
		Query:     req.Query,
		Answer:    resp.Answer,
		Sources:   resp.Sources,
	})
	if err != nil {
		s.logger.Warn("failed to record answer", "error", err)
	}
}

func (s *AskService) sources(videoID string, docs []domain.LabeledDocument) []domain.Source {
	sources := make([]domain.Source, len(docs))
	for i, doc := range docs {
		sources[i] = domain.Source{
			Timestamp:    doc.Timestamp,
			Seconds:      timecode.ToSeconds(doc.Timestamp),
			ChapterTitle: doc.ChapterTitle,
			Snippet:      util.Snippet(doc.Text, s.opts.SnippetLength),
			JumpURL:      youtube.JumpURL(videoID, doc.Timestamp),
		}
	}
	return sources
}
