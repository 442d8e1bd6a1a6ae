package domain

import "time"

// Video is the catalog entry for an ingested video.
type Video struct {
	ID           string    `json:"id"`
	ChunkCount   int       `json:"chunk_count"`
	ChapterCount int       `json:"chapter_count"`
	IngestedAt   time.Time `json:"ingested_at"`
}

// HasChapters reports whether the description declared any chapters.
func (v *Video) HasChapters() bool {
	return v.ChapterCount > 0
}
