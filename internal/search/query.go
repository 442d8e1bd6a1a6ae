package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/cuepointapp/cuepoint-server/internal/domain"
)

// chapterBoost weights chapter-title matches against transcript text.
const chapterBoost = 0.5

var storedFields = []string{"video_id", "index", "text", "chapter_title", "timestamp"}

// Retrieve returns up to k passages of one video most relevant to question,
// best first. Equal scores fall back to transcript order.
func (s *Index) Retrieve(ctx context.Context, videoID, question string, k int) ([]domain.LabeledDocument, error) {
	if k <= 0 || strings.TrimSpace(question) == "" {
		return []domain.LabeledDocument{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	req := bleve.NewSearchRequestOptions(buildRetrieveQuery(videoID, question), k, 0, false)
	req.Fields = storedFields
	req.SortBy([]string{"-_score", "index"})

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("retrieve passages: %w", err)
	}

	docs := make([]domain.LabeledDocument, 0, len(res.Hits))
	for _, hit := range res.Hits {
		docs = append(docs, hitToDocument(hit.ID, hit.Fields))
	}
	return docs, nil
}

// Passages returns every passage of a video in transcript order.
func (s *Index) Passages(ctx context.Context, videoID string) ([]domain.LabeledDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var docs []domain.LabeledDocument
	for from := 0; ; from += batchSize {
		req := bleve.NewSearchRequestOptions(videoFilter(videoID), batchSize, from, false)
		req.Fields = storedFields
		req.SortBy([]string{"index"})

		res, err := s.index.SearchInContext(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("list passages: %w", err)
		}
		for _, hit := range res.Hits {
			docs = append(docs, hitToDocument(hit.ID, hit.Fields))
		}
		if len(res.Hits) < batchSize {
			return docs, nil
		}
	}
}

func (s *Index) videoDocIDs(ctx context.Context, videoID string) ([]string, error) {
	var ids []string
	for from := 0; ; from += batchSize {
		req := bleve.NewSearchRequestOptions(videoFilter(videoID), batchSize, from, false)
		res, err := s.index.SearchInContext(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("find passages of %s: %w", videoID, err)
		}
		for _, hit := range res.Hits {
			ids = append(ids, hit.ID)
		}
		if len(res.Hits) < batchSize {
			return ids, nil
		}
	}
}

func videoFilter(videoID string) query.Query {
	q := bleve.NewTermQuery(videoID)
	q.SetField("video_id")
	return q
}

func buildRetrieveQuery(videoID, question string) query.Query {
	text := bleve.NewMatchQuery(question)
	text.SetField("text")

	chapter := bleve.NewMatchQuery(question)
	chapter.SetField("chapter_title")
	chapter.SetBoost(chapterBoost)

	return bleve.NewConjunctionQuery(
		videoFilter(videoID),
		bleve.NewDisjunctionQuery(text, chapter),
	)
}
