package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/cuepointapp/cuepoint-server/internal/domain"
	"github.com/cuepointapp/cuepoint-server/internal/service"
)

func (s *Server) registerAskRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "ask",
		Method:      http.MethodPost,
		Path:        "/api/v1/ask",
		Summary:     "Ask a question",
		Description: "Answers a question from a video's transcript and cites the passages it used",
		Tags:        []string{"Ask"},
		Middlewares: huma.Middlewares{s.rateLimitAsk},
	}, s.handleAsk)
}

// AskInput is a question about one video.
type AskInput struct {
	Body struct {
		VideoID   string `json:"video_id" doc:"YouTube video ID"`
		Query     string `json:"query" doc:"The question"`
		K         int    `json:"k,omitempty" doc:"Passages to retrieve (default server setting)"`
		SessionID string `json:"session_id,omitempty" doc:"Session to record the turn in"`
	}
}

// MatchedChapterResponse is the chapter that drove passage ordering.
type MatchedChapterResponse struct {
	Title     string  `json:"title" doc:"Chapter title"`
	Timestamp string  `json:"timestamp" doc:"Chapter start as written in the description"`
	Score     float64 `json:"score" doc:"Similarity between the question and the title"`
}

// AskResponse is the answer with its cited sources.
type AskResponse struct {
	Answer         string                  `json:"answer" doc:"Composed answer"`
	Sources        []domain.Source         `json:"sources" doc:"Cited passages, best first"`
	MatchedChapter *MatchedChapterResponse `json:"matched_chapter,omitempty" doc:"Chapter the question was about, if any"`
	SessionID      string                  `json:"session_id,omitempty" doc:"Session the turn was recorded in"`
	Turns          int                     `json:"turns,omitempty" doc:"Turns in the session after this one"`
}

// AskOutput wraps the answer for Huma.
type AskOutput struct {
	CacheControl string `header:"Cache-Control"`
	Body         AskResponse
}

func (s *Server) handleAsk(ctx context.Context, input *AskInput) (*AskOutput, error) {
	resp, err := s.services.Ask.Ask(ctx, service.AskRequest{
		VideoID:   input.Body.VideoID,
		Query:     input.Body.Query,
		K:         input.Body.K,
		SessionID: input.Body.SessionID,
	})
	if err != nil {
		return nil, s.handlerError("ask", err)
	}

	body := AskResponse{
		Answer:    resp.Answer,
		Sources:   resp.Sources,
		SessionID: resp.SessionID,
		Turns:     resp.Turns,
	}
	if body.Sources == nil {
		body.Sources = []domain.Source{}
	}
	if m := resp.MatchedChapter; m != nil {
		body.MatchedChapter = &MatchedChapterResponse{
			Title:     m.Chapter.Title,
			Timestamp: m.Chapter.Timestamp,
			Score:     m.Score,
		}
	}

	return &AskOutput{CacheControl: CacheNoStore, Body: body}, nil
}
