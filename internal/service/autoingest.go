package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	domainerrors "github.com/cuepointapp/cuepoint-server/internal/errors"
	"github.com/cuepointapp/cuepoint-server/internal/source"
	"github.com/cuepointapp/cuepoint-server/internal/watcher"
)

// AutoIngester re-ingests videos whose caption files change on disk.
type AutoIngester struct {
	ingest   *IngestService
	sessions *SessionService
	logger   *slog.Logger
}

// NewAutoIngester creates a new auto ingester. sessions may be nil.
func NewAutoIngester(ingest *IngestService, sessions *SessionService, logger *slog.Logger) *AutoIngester {
	return &AutoIngester{ingest: ingest, sessions: sessions, logger: logger}
}

// Run consumes watcher events until ctx is canceled.
func (a *AutoIngester) Run(ctx context.Context, events <-chan watcher.Event, errs <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			a.logger.Warn("watcher error", "error", err)
		case event, ok := <-events:
			if !ok {
				return
			}
			a.Handle(ctx, event)
		}
	}
}

// Handle applies one watcher event. Failures are logged, never returned, so
// one bad file cannot stop the loop.
func (a *AutoIngester) Handle(ctx context.Context, event watcher.Event) {
	videoID, ok := source.VideoID(event.Path)
	if !ok {
		return
	}
	log := a.logger.With("video_id", videoID, "event", event.Type.String())

	switch event.Type {
	case watcher.EventAdded, watcher.EventModified:
		if _, err := a.ingest.IngestWithTrigger(ctx, videoID, TriggerWatcher); err != nil {
			log.Warn("auto ingest failed", "error", err)
		}
	case watcher.EventRemoved:
		// A removed description only drops the chapters.
		if !strings.HasSuffix(event.Path, source.CaptionsSuffix) {
			if _, err := a.ingest.IngestWithTrigger(ctx, videoID, TriggerWatcher); err != nil {
				log.Warn("auto ingest failed", "error", err)
			}
			return
		}
		err := a.ingest.Remove(ctx, videoID)
		if errors.Is(err, domainerrors.ErrNotFound) {
			return
		}
		if err != nil {
			log.Warn("remove video failed", "error", err)
			return
		}
		if a.sessions != nil {
			n, err := a.sessions.PurgeVideo(ctx, videoID)
			if err != nil {
				log.Warn("purge sessions failed", "error", err)
				return
			}
			log.Debug("sessions purged", "count", n)
		}
	}
}
