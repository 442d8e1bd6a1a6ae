package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/cuepointapp/cuepoint-server/internal/chapters"
	"github.com/cuepointapp/cuepoint-server/internal/domain"
	"github.com/cuepointapp/cuepoint-server/internal/service"
	"github.com/cuepointapp/cuepoint-server/internal/store"
	"github.com/cuepointapp/cuepoint-server/internal/timecode"
	"github.com/cuepointapp/cuepoint-server/internal/util"
	"github.com/cuepointapp/cuepoint-server/internal/youtube"
)

func (s *Server) registerVideoRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listVideos",
		Method:      http.MethodGet,
		Path:        "/api/v1/videos",
		Summary:     "List videos",
		Description: "Returns every ingested video, newest first",
		Tags:        []string{"Videos"},
	}, s.handleListVideos)

	huma.Register(s.api, huma.Operation{
		OperationID: "getVideo",
		Method:      http.MethodGet,
		Path:        "/api/v1/videos/{id}",
		Summary:     "Get video",
		Description: "Returns one ingested video",
		Tags:        []string{"Videos"},
	}, s.handleGetVideo)

	huma.Register(s.api, huma.Operation{
		OperationID: "ingestVideo",
		Method:      http.MethodPost,
		Path:        "/api/v1/videos/{id}/ingest",
		Summary:     "Ingest video",
		Description: "Parses the video's captions and description and replaces its indexed passages",
		Tags:        []string{"Videos"},
	}, s.handleIngestVideo)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteVideo",
		Method:      http.MethodDelete,
		Path:        "/api/v1/videos/{id}",
		Summary:     "Delete video",
		Description: "Removes a video's passages, chapters and sessions",
		Tags:        []string{"Videos"},
	}, s.handleDeleteVideo)

	huma.Register(s.api, huma.Operation{
		OperationID: "listChapters",
		Method:      http.MethodGet,
		Path:        "/api/v1/videos/{id}/chapters",
		Summary:     "List chapters",
		Description: "Returns the chapters declared in the video description with jump links",
		Tags:        []string{"Videos"},
	}, s.handleListChapters)

	huma.Register(s.api, huma.Operation{
		OperationID: "locateChapter",
		Method:      http.MethodPost,
		Path:        "/api/v1/videos/{id}/locate",
		Summary:     "Locate chapter",
		Description: "Names the chapter playing at an offset into the video",
		Tags:        []string{"Videos"},
	}, s.handleLocateChapter)

	huma.Register(s.api, huma.Operation{
		OperationID: "listPassages",
		Method:      http.MethodGet,
		Path:        "/api/v1/videos/{id}/passages",
		Summary:     "List passages",
		Description: "Returns the video's chapter-labeled caption passages in transcript order",
		Tags:        []string{"Videos"},
	}, s.handleListPassages)
}

// === DTOs ===

// VideoIDInput is the path parameter shared by the video routes.
type VideoIDInput struct {
	ID string `path:"id" doc:"YouTube video ID" minLength:"1" maxLength:"64"`
}

// VideoResponse is an ingested video in API responses.
type VideoResponse struct {
	ID           string    `json:"id" doc:"YouTube video ID"`
	ChunkCount   int       `json:"chunk_count" doc:"Indexed caption passages"`
	ChapterCount int       `json:"chapter_count" doc:"Chapters found in the description"`
	IngestedAt   time.Time `json:"ingested_at" doc:"Last ingest time"`
	WatchURL     string    `json:"watch_url" doc:"YouTube watch URL"`
	Ingesting    bool      `json:"ingesting" doc:"A re-ingest of this video is running"`
}

// ListVideosResponse contains every ingested video.
type ListVideosResponse struct {
	Videos    []VideoResponse `json:"videos" doc:"Videos, newest first"`
	Total     int             `json:"total" doc:"Number of videos"`
	UpdatedAt *time.Time      `json:"updated_at,omitempty" doc:"Most recent ingest across the catalog"`
}

// ListVideosOutput wraps the video list for Huma.
type ListVideosOutput struct {
	Body ListVideosResponse
}

// VideoOutput wraps a single video for Huma.
type VideoOutput struct {
	Body VideoResponse
}

// IngestResponse summarizes a completed ingest.
type IngestResponse struct {
	Video            VideoResponse           `json:"video" doc:"The refreshed video"`
	CaptionBlocks    int                     `json:"caption_blocks" doc:"Caption blocks parsed"`
	SkippedBlocks    int                     `json:"skipped_blocks" doc:"Malformed caption blocks skipped"`
	KeywordFound     bool                    `json:"keyword_found" doc:"Whether the description has a Chapters heading"`
	SkippedLines     int                     `json:"skipped_lines" doc:"Chapter lines that did not parse"`
	ReplacedPassages int                     `json:"replaced_passages" doc:"Passages dropped from the previous ingest"`
	Analysis         chapters.AnalysisResult `json:"analysis" doc:"Chapter list quality"`
	DurationMillis   int64                   `json:"duration_ms" doc:"Ingest time in milliseconds"`
}

// IngestOutput wraps the ingest summary for Huma.
type IngestOutput struct {
	Body IngestResponse
}

// DeleteVideoResponse reports what a delete removed.
type DeleteVideoResponse struct {
	Deleted        bool `json:"deleted" doc:"Always true on success"`
	PurgedSessions int  `json:"purged_sessions" doc:"Chat sessions removed with the video"`
}

// DeleteVideoOutput wraps the delete result for Huma.
type DeleteVideoOutput struct {
	Body DeleteVideoResponse
}

// ChapterResponse is one chapter with player links.
type ChapterResponse struct {
	Title     string `json:"title" doc:"Chapter title"`
	Slug      string `json:"slug" doc:"URL-safe title"`
	Timestamp string `json:"timestamp" doc:"Timestamp as written in the description"`
	Seconds   int    `json:"seconds" doc:"Start offset in seconds"`
	JumpURL   string `json:"jump_url" doc:"YouTube link starting at this chapter"`
}

// ListChaptersResponse contains a video's chapters.
type ListChaptersResponse struct {
	VideoID  string            `json:"video_id" doc:"YouTube video ID"`
	Chapters []ChapterResponse `json:"chapters" doc:"Chapters in description order"`
}

// ListChaptersOutput wraps the chapter list for Huma.
type ListChaptersOutput struct {
	CacheControl string `header:"Cache-Control"`
	Body         ListChaptersResponse
}

// LocateInput asks which chapter plays at an offset.
type LocateInput struct {
	ID   string `path:"id" doc:"YouTube video ID" minLength:"1" maxLength:"64"`
	Body struct {
		At FlexTimestamp `json:"at" doc:"Offset as HH:MM:SS, MM:SS or seconds"`
	}
}

// LocateResponse names the chapter at an offset.
type LocateResponse struct {
	Timestamp    string `json:"timestamp" doc:"Normalized offset"`
	Seconds      int    `json:"seconds" doc:"Offset in seconds"`
	ChapterTitle string `json:"chapter_title" doc:"Chapter playing at the offset"`
	JumpURL      string `json:"jump_url" doc:"YouTube link starting at the offset"`
}

// LocateOutput wraps the locate result for Huma.
type LocateOutput struct {
	Body LocateResponse
}

// PassageResponse is one labeled caption passage.
type PassageResponse struct {
	Index        int    `json:"index" doc:"Position in the transcript"`
	Text         string `json:"text" doc:"Caption text"`
	Timestamp    string `json:"timestamp" doc:"Start time as HH:MM:SS"`
	ChapterTitle string `json:"chapter_title" doc:"Chapter active at the timestamp"`
}

// ListPassagesInput pages through a video's passages.
type ListPassagesInput struct {
	ID     string `path:"id" doc:"YouTube video ID" minLength:"1" maxLength:"64"`
	Limit  int    `query:"limit" default:"100" minimum:"1" maximum:"1000" doc:"Passages per page"`
	Cursor string `query:"cursor" doc:"Cursor from the previous page"`
}

// ListPassagesResponse contains one page of a video's passages.
type ListPassagesResponse struct {
	VideoID    string            `json:"video_id" doc:"YouTube video ID"`
	Passages   []PassageResponse `json:"passages" doc:"Passages in transcript order"`
	Total      int               `json:"total" doc:"Number of passages in the video"`
	HasMore    bool              `json:"has_more" doc:"Whether another page follows"`
	NextCursor string            `json:"next_cursor,omitempty" doc:"Cursor for the next page"`
}

// ListPassagesOutput wraps the passage list for Huma.
type ListPassagesOutput struct {
	Body ListPassagesResponse
}

// === Handlers ===

func (s *Server) handleListVideos(ctx context.Context, _ *struct{}) (*ListVideosOutput, error) {
	videos, err := s.services.Videos.List(ctx)
	if err != nil {
		return nil, s.handlerError("list videos", err)
	}

	resp := ListVideosResponse{
		Videos: make([]VideoResponse, 0, len(videos)),
		Total:  len(videos),
	}
	for i := range videos {
		resp.Videos = append(resp.Videos, s.videoResponse(&videos[i]))
	}

	checkpoint, err := s.services.Videos.Checkpoint(ctx)
	if err != nil {
		return nil, s.handlerError("list videos", err)
	}
	if !checkpoint.IsZero() {
		resp.UpdatedAt = &checkpoint
	}
	return &ListVideosOutput{Body: resp}, nil
}

func (s *Server) handleGetVideo(ctx context.Context, input *VideoIDInput) (*VideoOutput, error) {
	video, err := s.services.Videos.Get(ctx, input.ID)
	if err != nil {
		return nil, s.handlerError("get video", err)
	}
	return &VideoOutput{Body: s.videoResponse(video)}, nil
}

func (s *Server) handleIngestVideo(ctx context.Context, input *VideoIDInput) (*IngestOutput, error) {
	result, err := s.services.Ingest.IngestWithTrigger(ctx, input.ID, service.TriggerAPI)
	if err != nil {
		return nil, s.handlerError("ingest video", err)
	}

	return &IngestOutput{Body: IngestResponse{
		Video:            toVideoResponse(result.Video),
		CaptionBlocks:    result.Captions.Blocks,
		SkippedBlocks:    result.Captions.Skipped,
		KeywordFound:     result.Extraction.KeywordFound,
		SkippedLines:     result.Extraction.Skipped,
		ReplacedPassages: result.Replaced,
		Analysis:         result.Analysis,
		DurationMillis:   result.Duration.Milliseconds(),
	}}, nil
}

func (s *Server) handleDeleteVideo(ctx context.Context, input *VideoIDInput) (*DeleteVideoOutput, error) {
	if err := s.services.Ingest.Remove(ctx, input.ID); err != nil {
		return nil, s.handlerError("delete video", err)
	}

	purged := 0
	if s.services.Sessions != nil {
		n, err := s.services.Sessions.PurgeVideo(ctx, input.ID)
		if err != nil {
			// The video itself is gone; stale sessions expire on their own.
			s.logger.Warn("failed to purge sessions", "video_id", input.ID, "error", err)
		}
		purged = n
	}

	return &DeleteVideoOutput{Body: DeleteVideoResponse{Deleted: true, PurgedSessions: purged}}, nil
}

func (s *Server) handleListChapters(ctx context.Context, input *VideoIDInput) (*ListChaptersOutput, error) {
	chs, err := s.services.Videos.Chapters(ctx, input.ID)
	if err != nil {
		return nil, s.handlerError("list chapters", err)
	}

	resp := ListChaptersResponse{
		VideoID:  input.ID,
		Chapters: make([]ChapterResponse, 0, len(chs)),
	}
	for _, ch := range chs {
		resp.Chapters = append(resp.Chapters, ChapterResponse{
			Title:     ch.Title,
			Slug:      util.Slug(ch.Title),
			Timestamp: ch.Timestamp,
			Seconds:   ch.Seconds,
			JumpURL:   youtube.JumpURL(input.ID, timecode.Format(ch.Seconds)),
		})
	}
	return &ListChaptersOutput{CacheControl: CacheShortPrivate, Body: resp}, nil
}

func (s *Server) handleLocateChapter(ctx context.Context, input *LocateInput) (*LocateOutput, error) {
	at := input.Body.At
	title, err := s.services.Videos.ChapterAt(ctx, input.ID, at.Seconds)
	if err != nil {
		return nil, s.handlerError("locate chapter", err)
	}

	return &LocateOutput{Body: LocateResponse{
		Timestamp:    at.String(),
		Seconds:      at.Seconds,
		ChapterTitle: title,
		JumpURL:      youtube.JumpURL(input.ID, at.String()),
	}}, nil
}

func (s *Server) handleListPassages(ctx context.Context, input *ListPassagesInput) (*ListPassagesOutput, error) {
	docs, err := s.services.Videos.Passages(ctx, input.ID)
	if err != nil {
		return nil, s.handlerError("list passages", err)
	}

	page, err := store.Paginate(docs, store.PaginationParams{Limit: input.Limit, Cursor: input.Cursor},
		func(doc domain.LabeledDocument) string { return doc.ID })
	if err != nil {
		return nil, s.handlerError("list passages", err)
	}

	resp := ListPassagesResponse{
		VideoID:    input.ID,
		Passages:   make([]PassageResponse, 0, len(page.Items)),
		Total:      page.Total,
		HasMore:    page.HasMore,
		NextCursor: page.NextCursor,
	}
	for _, doc := range page.Items {
		resp.Passages = append(resp.Passages, PassageResponse{
			Index:        doc.Index,
			Text:         doc.Text,
			Timestamp:    doc.Timestamp,
			ChapterTitle: doc.ChapterTitle,
		})
	}
	return &ListPassagesOutput{Body: resp}, nil
}

// videoResponse is toVideoResponse plus the live ingest state.
func (s *Server) videoResponse(v *domain.Video) VideoResponse {
	resp := toVideoResponse(v)
	resp.Ingesting = s.sseManager != nil && s.sseManager.IsIngesting(v.ID)
	return resp
}

func toVideoResponse(v *domain.Video) VideoResponse {
	return VideoResponse{
		ID:           v.ID,
		ChunkCount:   v.ChunkCount,
		ChapterCount: v.ChapterCount,
		IngestedAt:   v.IngestedAt,
		WatchURL:     youtube.WatchURL(v.ID),
	}
}
