package chapters

import (
	"cmp"
	"slices"
	"sort"

	"github.com/cuepointapp/cuepoint-server/internal/domain"
	"github.com/cuepointapp/cuepoint-server/internal/timecode"
)

// Sort returns a copy of chapters ordered by Seconds. Equal times keep their
// extraction order.
func Sort(chapters []domain.Chapter) []domain.Chapter {
	sorted := slices.Clone(chapters)
	slices.SortStableFunc(sorted, func(a, b domain.Chapter) int {
		return cmp.Compare(a.Seconds, b.Seconds)
	})
	return sorted
}

// TitleAt returns the title of the latest chapter starting at or before
// seconds. sorted must already be ordered by Sort. When several chapters share
// that start, the last one wins.
func TitleAt(sorted []domain.Chapter, seconds int) string {
	i := sort.Search(len(sorted), func(i int) bool {
		return sorted[i].Seconds > seconds
	})
	if i == 0 {
		return domain.UnknownChapter
	}
	return sorted[i-1].Title
}

// Assign labels every chunk with the chapter active at its timestamp.
// Chunk order is kept and Index records the chunk's position.
func Assign(chunks []domain.CaptionChunk, chapters []domain.Chapter) []domain.LabeledDocument {
	sorted := Sort(chapters)

	docs := make([]domain.LabeledDocument, len(chunks))
	for i, chunk := range chunks {
		docs[i] = domain.LabeledDocument{
			Index:        i,
			Text:         chunk.Text,
			Timestamp:    chunk.Timestamp,
			ChapterTitle: TitleAt(sorted, timecode.ToSeconds(chunk.Timestamp)),
		}
	}
	return docs
}
