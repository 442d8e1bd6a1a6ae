package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/cuepointapp/cuepoint-server/internal/chapters"
	"github.com/cuepointapp/cuepoint-server/internal/domain"
	"github.com/cuepointapp/cuepoint-server/internal/search"
	"github.com/cuepointapp/cuepoint-server/internal/store/sqlite"
)

// VideoService answers read-only catalog queries.
type VideoService struct {
	catalog *sqlite.Catalog
	index   *search.Index
	logger  *slog.Logger
}

// NewVideoService creates a new video service.
func NewVideoService(catalog *sqlite.Catalog, index *search.Index, logger *slog.Logger) *VideoService {
	return &VideoService{catalog: catalog, index: index, logger: logger}
}

// List returns every ingested video, newest first.
func (s *VideoService) List(ctx context.Context) ([]domain.Video, error) {
	return s.catalog.ListVideos(ctx)
}

// Checkpoint returns when the catalog last changed through an ingest.
// It is zero for an empty catalog.
func (s *VideoService) Checkpoint(ctx context.Context) (time.Time, error) {
	return s.catalog.Checkpoint(ctx)
}

// Get returns one ingested video.
func (s *VideoService) Get(ctx context.Context, videoID string) (*domain.Video, error) {
	return s.catalog.GetVideo(ctx, videoID)
}

// Chapters returns a video's chapters in extraction order.
func (s *VideoService) Chapters(ctx context.Context, videoID string) ([]domain.Chapter, error) {
	if _, err := s.catalog.GetVideo(ctx, videoID); err != nil {
		return nil, err
	}
	return s.catalog.Chapters(ctx, videoID)
}

// Passages returns every labeled passage of a video in transcript order.
func (s *VideoService) Passages(ctx context.Context, videoID string) ([]domain.LabeledDocument, error) {
	if _, err := s.catalog.GetVideo(ctx, videoID); err != nil {
		return nil, err
	}
	return s.index.Passages(ctx, videoID)
}

// ChapterAt names the chapter playing at the given offset into a video.
func (s *VideoService) ChapterAt(ctx context.Context, videoID string, seconds int) (string, error) {
	chs, err := s.Chapters(ctx, videoID)
	if err != nil {
		return "", err
	}
	return chapters.TitleAt(chapters.Sort(chs), seconds), nil
}

// VideoCount returns how many videos the catalog holds.
func (s *VideoService) VideoCount(ctx context.Context) (int, error) {
	videos, err := s.catalog.ListVideos(ctx)
	if err != nil {
		return 0, err
	}
	return len(videos), nil
}

// PassageCount returns how many passages the index holds across all videos.
func (s *VideoService) PassageCount() (uint64, error) {
	return s.index.DocumentCount()
}
