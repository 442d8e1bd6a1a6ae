package domain

// UnknownChapter labels a chunk that precedes every chapter boundary, or a
// video whose description declares no chapters.
const UnknownChapter = "Unknown"

// CaptionChunk is one parsed caption block. Timestamp keeps the HH:MM:SS
// form of the block's start time.
type CaptionChunk struct {
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// Chapter is a named boundary declared in a video description.
// Timestamp retains the notation used in the description, for display.
type Chapter struct {
	Title     string `json:"title"`
	Timestamp string `json:"timestamp"`
	Seconds   int    `json:"seconds"`
}

// LabeledDocument is a caption chunk tagged with the chapter active at its
// timestamp. It is what gets indexed and what retrieval hands back.
type LabeledDocument struct {
	ID           string `json:"id,omitempty"`
	VideoID      string `json:"video_id,omitempty"`
	Index        int    `json:"index"`
	Text         string `json:"text"`
	Timestamp    string `json:"timestamp"`
	ChapterTitle string `json:"chapter_title"`
}
