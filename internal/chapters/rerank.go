package chapters

import (
	"golang.org/x/text/cases"

	"github.com/cuepointapp/cuepoint-server/internal/domain"
)

// BestMatch finds the chapter whose title is most similar to query. The first
// chapter wins a tie. ok is false only when chapters is empty.
func BestMatch(query string, chapters []domain.Chapter) (match Match, ok bool) {
	for i, ch := range chapters {
		score := Similarity(query, ch.Title)
		if i == 0 || score > match.Score {
			match = Match{Chapter: ch, Score: score}
		}
	}
	return match, len(chapters) > 0
}

// Reranker promotes passages from the chapter a query most resembles.
type Reranker struct {
	// Threshold is the score a chapter must strictly exceed. Zero means DefaultThreshold.
	Threshold float64
}

// Rerank moves candidates labeled with the best-matching chapter to the front,
// keeping relative order on both sides. With no chapters, or no chapter above
// the threshold, candidates come back unchanged.
func (r Reranker) Rerank(query string, candidates []domain.LabeledDocument, chapters []domain.Chapter) RerankResult {
	threshold := r.Threshold
	if threshold == 0 {
		threshold = DefaultThreshold
	}

	best, ok := BestMatch(query, chapters)
	if !ok || best.Score <= threshold {
		return RerankResult{Documents: candidates}
	}

	fold := cases.Fold()
	want := fold.String(best.Chapter.Title)

	preferred := make([]domain.LabeledDocument, 0, len(candidates))
	rest := make([]domain.LabeledDocument, 0, len(candidates))
	for _, doc := range candidates {
		if fold.String(doc.ChapterTitle) == want {
			preferred = append(preferred, doc)
		} else {
			rest = append(rest, doc)
		}
	}

	return RerankResult{
		Documents: append(preferred, rest...),
		Matched:   &best,
	}
}

// Rerank applies a Reranker with DefaultThreshold.
func Rerank(query string, candidates []domain.LabeledDocument, chapters []domain.Chapter) []domain.LabeledDocument {
	return Reranker{}.Rerank(query, candidates, chapters).Documents
}
