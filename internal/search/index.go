package search

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/cuepointapp/cuepoint-server/internal/domain"
	"github.com/cuepointapp/cuepoint-server/internal/logger"
)

// Index wraps a Bleve index of transcript passages.
//
// All methods are safe for concurrent use. The mutex only serializes Rebuild
// and Close against everything else.
type Index struct {
	index  bleve.Index
	path   string
	logger *slog.Logger
	mu     sync.RWMutex
}

// Options configures the index.
type Options struct {
	DataPath string       // directory holding the index
	Logger   *slog.Logger // uses a discard logger if nil
}

// mappingVersion is bumped whenever buildIndexMapping changes. A mismatch on
// startup drops the index so it can be rebuilt by re-ingesting.
const mappingVersion = "1"

const batchSize = 500

// Open opens the index under opts.DataPath, creating it when missing and
// recreating it when it is corrupt or built with an older mapping.
func Open(opts Options) (*Index, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}

	if err := os.MkdirAll(opts.DataPath, 0o755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}
	indexPath := filepath.Join(opts.DataPath, "passages.bleve")
	versionPath := filepath.Join(opts.DataPath, "passages.version")

	var index bleve.Index
	if _, err := os.Stat(indexPath); err == nil {
		version, readErr := os.ReadFile(versionPath)
		switch {
		case readErr != nil || string(version) != mappingVersion:
			log.Info("passage index mapping changed, recreating",
				"old_version", string(version),
				"new_version", mappingVersion,
			)
		default:
			index, err = bleve.Open(indexPath)
			if err != nil {
				log.Warn("failed to open passage index, recreating", "path", indexPath, "error", err)
				index = nil
			}
		}
		if index == nil {
			if err := os.RemoveAll(indexPath); err != nil {
				return nil, fmt.Errorf("remove old index: %w", err)
			}
		}
	}

	if index == nil {
		var err error
		index, err = bleve.New(indexPath, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
		if err := os.WriteFile(versionPath, []byte(mappingVersion), 0o644); err != nil {
			log.Warn("failed to write index version file", "error", err)
		}
		log.Info("created passage index", "path", indexPath)
	} else {
		log.Info("opened passage index", "path", indexPath)
	}

	return &Index{index: index, path: indexPath, logger: log}, nil
}

// Close closes the index.
func (s *Index) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexPassages adds or replaces passages, committing in batches of 500.
// Every document needs an ID.
func (s *Index) IndexPassages(ctx context.Context, docs []domain.LabeledDocument) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := 0; i < len(docs); i += batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(i+batchSize, len(docs))

		batch := s.index.NewBatch()
		for _, doc := range docs[i:end] {
			if doc.ID == "" {
				return fmt.Errorf("passage %d of video %s has no id", doc.Index, doc.VideoID)
			}
			if err := batch.Index(doc.ID, NewPassageDocument(doc).ToMap()); err != nil {
				return fmt.Errorf("batch index %s: %w", doc.ID, err)
			}
		}
		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch %d-%d: %w", i, end, err)
		}
	}
	return nil
}

// DeleteVideo removes every passage of a video and returns how many went.
func (s *Index) DeleteVideo(ctx context.Context, videoID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids, err := s.videoDocIDs(ctx, videoID)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	batch := s.index.NewBatch()
	for _, id := range ids {
		batch.Delete(id)
	}
	if err := s.index.Batch(batch); err != nil {
		return 0, fmt.Errorf("delete passages of %s: %w", videoID, err)
	}
	return len(ids), nil
}

// DocumentCount returns the total number of indexed passages.
func (s *Index) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Rebuild drops the index and starts empty. Callers re-ingest afterwards.
func (s *Index) Rebuild() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.index.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}
	if err := os.RemoveAll(s.path); err != nil {
		return fmt.Errorf("remove index: %w", err)
	}

	index, err := bleve.New(s.path, buildIndexMapping())
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	s.index = index
	s.logger.Info("rebuilt passage index", "path", s.path)
	return nil
}
