package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cuepointapp/cuepoint-server/internal/captions"
	"github.com/cuepointapp/cuepoint-server/internal/chapters"
	"github.com/cuepointapp/cuepoint-server/internal/description"
	"github.com/cuepointapp/cuepoint-server/internal/domain"
	domainerrors "github.com/cuepointapp/cuepoint-server/internal/errors"
	"github.com/cuepointapp/cuepoint-server/internal/id"
	"github.com/cuepointapp/cuepoint-server/internal/search"
	"github.com/cuepointapp/cuepoint-server/internal/source"
	"github.com/cuepointapp/cuepoint-server/internal/sse"
	"github.com/cuepointapp/cuepoint-server/internal/store/sqlite"
	"github.com/cuepointapp/cuepoint-server/internal/validation"
)

// Ingest triggers, reported in ingest.started events.
const (
	TriggerAPI     = "api"
	TriggerWatcher = "watcher"
	TriggerStartup = "startup"
	TriggerCLI     = "cli"
)

const restoreTimeout = 30 * time.Second

// IngestResult describes one completed ingest.
type IngestResult struct {
	Video      *domain.Video           `json:"video"`
	Chapters   []domain.Chapter        `json:"chapters"`
	Captions   captions.Stats          `json:"captions"`
	Extraction chapters.ExtractStats   `json:"extraction"`
	Analysis   chapters.AnalysisResult `json:"analysis"`
	Replaced   int                     `json:"replaced"`
	Duration   time.Duration           `json:"duration"`
}

// IngestService turns a video's caption and description files into indexed,
// chapter-labeled passages and a catalog entry.
type IngestService struct {
	provider source.Provider
	index    *search.Index
	catalog  *sqlite.Catalog
	events   EventEmitter
	logger   *slog.Logger
	now      func() time.Time

	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewIngestService creates a new ingest service. events may be nil.
func NewIngestService(provider source.Provider, index *search.Index, catalog *sqlite.Catalog, events EventEmitter, logger *slog.Logger) *IngestService {
	return &IngestService{
		provider: provider,
		index:    index,
		catalog:  catalog,
		events:   orNoop(events),
		logger:   logger,
		now:      time.Now,
		inflight: make(map[string]struct{}),
	}
}

// Ingest (re)builds the passages of videoID. Re-ingesting replaces the
// previous passages and chapters.
func (s *IngestService) Ingest(ctx context.Context, videoID string) (*IngestResult, error) {
	return s.IngestWithTrigger(ctx, videoID, TriggerAPI)
}

// IngestWithTrigger is Ingest with the trigger recorded in events and logs.
func (s *IngestService) IngestWithTrigger(ctx context.Context, videoID, trigger string) (*IngestResult, error) {
	if !validation.ValidVideoID(videoID) {
		return nil, domainerrors.ValidationWithDetails("invalid video id",
			map[string]string{"video_id": "must be 1-64 letters, digits, '-' or '_'"})
	}

	if !s.acquire(videoID) {
		return nil, domainerrors.Conflictf("video %s is already being ingested", videoID)
	}
	defer s.release(videoID)

	log := s.logger.With("video_id", videoID, "trigger", trigger)
	s.events.Emit(sse.NewIngestStartedEvent(videoID, trigger))

	start := time.Now()
	res, err := s.run(ctx, videoID)
	if err != nil {
		log.Error("ingest failed", "error", err)
		s.events.Emit(sse.NewIngestFailedEvent(videoID, err))
		return nil, err
	}
	res.Duration = time.Since(start)

	log.Info("video ingested",
		"chunks", res.Video.ChunkCount,
		"chapters", len(res.Chapters),
		"replaced", res.Replaced,
		"duration", res.Duration)
	if res.Captions.Skipped > 0 || res.Extraction.Skipped > 0 {
		log.Debug("malformed records skipped",
			slog.Int("caption_blocks", res.Captions.Skipped),
			slog.Int("chapter_lines", res.Extraction.Skipped),
			slog.Int("untimed_blocks", res.Captions.Untimed))
	}
	if res.Analysis.GenericCount > 0 {
		log.Debug("generic chapter titles", "count", res.Analysis.GenericCount, "percent", res.Analysis.GenericPercent)
	}

	s.events.Emit(sse.NewIngestCompletedEvent(videoID, res.Video.ChunkCount, len(res.Chapters), res.Captions.Skipped, res.Duration))
	return res, nil
}

func (s *IngestService) run(ctx context.Context, videoID string) (*IngestResult, error) {
	raw, err := s.provider.Captions(ctx, videoID)
	if err != nil {
		return nil, err
	}
	desc, err := s.provider.Description(ctx, videoID)
	if err != nil {
		return nil, err
	}

	chs, extraction := chapters.ExtractWithStats(description.Normalize(desc))
	chunks, parseStats := captions.ParseWithStats(raw)

	docs := chapters.Assign(chunks, chs)
	for i := range docs {
		docs[i].VideoID = videoID
		docs[i].ID = id.Passage(videoID, docs[i].Index)
	}

	// The catalog write is staged first and committed only once the index
	// holds the new passages, so chapters and passage labels never diverge.
	video := &domain.Video{ID: videoID, ChunkCount: len(docs), IngestedAt: s.now()}
	vtx, err := s.catalog.BeginSaveVideo(ctx, video, chs)
	if err != nil {
		return nil, fmt.Errorf("save video: %w", err)
	}
	defer vtx.Rollback()

	previous, err := s.index.Passages(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("load old passages: %w", err)
	}
	replaced, err := s.index.DeleteVideo(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("clear old passages: %w", err)
	}
	if err := s.index.IndexPassages(ctx, docs); err != nil {
		s.restorePassages(videoID, previous)
		return nil, fmt.Errorf("index passages: %w", err)
	}
	if err := vtx.Commit(); err != nil {
		s.restorePassages(videoID, previous)
		return nil, fmt.Errorf("save video: %w", err)
	}

	return &IngestResult{
		Video:      video,
		Chapters:   chs,
		Captions:   parseStats,
		Extraction: extraction,
		Analysis:   chapters.Analyze(chs),
		Replaced:   replaced,
	}, nil
}

// restorePassages puts back the passages a failed re-ingest removed. It runs
// on a fresh context because the ingest context may be the reason for the
// failure.
func (s *IngestService) restorePassages(videoID string, previous []domain.LabeledDocument) {
	ctx, cancel := context.WithTimeout(context.Background(), restoreTimeout)
	defer cancel()

	if _, err := s.index.DeleteVideo(ctx, videoID); err != nil {
		s.logger.Error("restore passages: clear", "video_id", videoID, "error", err)
		return
	}
	if err := s.index.IndexPassages(ctx, previous); err != nil {
		s.logger.Error("restore passages: index", "video_id", videoID, "error", err)
	}
}

// IngestFile ingests the video a caption or description file belongs to.
func (s *IngestService) IngestFile(ctx context.Context, path, trigger string) (*IngestResult, error) {
	videoID, ok := source.VideoID(path)
	if !ok {
		return nil, domainerrors.Validation(fmt.Sprintf("%s is not a caption or description file", path))
	}
	return s.IngestWithTrigger(ctx, videoID, trigger)
}

// IngestAll ingests every video the provider lists. One failing video does
// not stop the others; all failures are returned joined.
func (s *IngestService) IngestAll(ctx context.Context, trigger string) (int, error) {
	ids, err := s.provider.List(ctx)
	if err != nil {
		return 0, err
	}

	var errs []error
	ingested := 0
	for _, videoID := range ids {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		if _, err := s.IngestWithTrigger(ctx, videoID, trigger); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", videoID, err))
			continue
		}
		ingested++
	}
	return ingested, errors.Join(errs...)
}

// Remove drops a video's passages and catalog entry.
func (s *IngestService) Remove(ctx context.Context, videoID string) error {
	removed, err := s.index.DeleteVideo(ctx, videoID)
	if err != nil {
		return fmt.Errorf("delete passages: %w", err)
	}
	if err := s.catalog.DeleteVideo(ctx, videoID); err != nil {
		return err
	}
	s.logger.Info("video removed", "video_id", videoID, "passages", removed)
	s.events.Emit(sse.NewVideoDeletedEvent(videoID, removed))
	return nil
}

func (s *IngestService) acquire(videoID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[videoID]; busy {
		return false
	}
	s.inflight[videoID] = struct{}{}
	return true
}

func (s *IngestService) release(videoID string) {
	s.mu.Lock()
	delete(s.inflight, videoID)
	s.mu.Unlock()
}
