// Package search indexes labeled transcript passages in Bleve and retrieves
// the best candidates for a question about one video.
package search

import (
	"github.com/cuepointapp/cuepoint-server/internal/domain"
	"github.com/cuepointapp/cuepoint-server/internal/timecode"
)

// PassageDocument is the indexed form of a LabeledDocument.
type PassageDocument struct {
	ID           string `json:"id"`
	VideoID      string `json:"video_id"`
	Index        int    `json:"index"`
	Text         string `json:"text"`
	ChapterTitle string `json:"chapter_title"`
	Timestamp    string `json:"timestamp"`
	Seconds      int    `json:"seconds"`
}

// NewPassageDocument converts a labeled document for indexing.
func NewPassageDocument(doc domain.LabeledDocument) *PassageDocument {
	return &PassageDocument{
		ID:           doc.ID,
		VideoID:      doc.VideoID,
		Index:        doc.Index,
		Text:         doc.Text,
		ChapterTitle: doc.ChapterTitle,
		Timestamp:    doc.Timestamp,
		Seconds:      timecode.ToSeconds(doc.Timestamp),
	}
}

// ToMap converts to a map so field names match the mapping exactly.
func (d *PassageDocument) ToMap() map[string]any {
	return map[string]any{
		"id":            d.ID,
		"video_id":      d.VideoID,
		"index":         float64(d.Index),
		"text":          d.Text,
		"chapter_title": d.ChapterTitle,
		"timestamp":     d.Timestamp,
		"seconds":       float64(d.Seconds),
	}
}

// hitToDocument rebuilds a LabeledDocument from stored fields.
func hitToDocument(id string, fields map[string]any) domain.LabeledDocument {
	doc := domain.LabeledDocument{ID: id}
	if v, ok := fields["video_id"].(string); ok {
		doc.VideoID = v
	}
	if v, ok := fields["index"].(float64); ok {
		doc.Index = int(v)
	}
	if v, ok := fields["text"].(string); ok {
		doc.Text = v
	}
	if v, ok := fields["chapter_title"].(string); ok {
		doc.ChapterTitle = v
	}
	if v, ok := fields["timestamp"].(string); ok {
		doc.Timestamp = v
	}
	return doc
}
