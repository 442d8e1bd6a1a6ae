// Package sse broadcasts ingestion and session activity to connected clients
// over Server-Sent Events.
package sse

import "time"

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventIngestStarted is sent when a video's sources are picked up.
	EventIngestStarted EventType = "ingest.started"
	// EventIngestCompleted is sent once a video's passages are searchable.
	EventIngestCompleted EventType = "ingest.completed"
	// EventIngestFailed is sent when ingestion of a video stops with an error.
	EventIngestFailed EventType = "ingest.failed"

	// EventVideoDeleted is sent when a video is removed from the catalog.
	EventVideoDeleted EventType = "video.deleted"

	// EventSessionUpdated is sent after a turn is appended to a session.
	EventSessionUpdated EventType = "session.updated"

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`

	// VideoID scopes the event. Clients subscribed to a single video only
	// receive events carrying that ID; heartbeats have none.
	VideoID string `json:"-"`
}

// IngestStartedEventData is the data payload for ingest start events.
type IngestStartedEventData struct {
	StartedAt time.Time `json:"started_at"`
	VideoID   string    `json:"video_id"`
	Trigger   string    `json:"trigger"`
}

// IngestCompletedEventData is the data payload for ingest completion events.
type IngestCompletedEventData struct {
	CompletedAt  time.Time `json:"completed_at"`
	VideoID      string    `json:"video_id"`
	Chunks       int       `json:"chunks"`
	Chapters     int       `json:"chapters"`
	SkippedLines int       `json:"skipped_lines"`
	DurationMS   int64     `json:"duration_ms"`
}

// IngestFailedEventData is the data payload for ingest failure events.
type IngestFailedEventData struct {
	FailedAt time.Time `json:"failed_at"`
	VideoID  string    `json:"video_id"`
	Error    string    `json:"error"`
}

// VideoDeletedEventData is the data payload for video delete events.
type VideoDeletedEventData struct {
	DeletedAt time.Time `json:"deleted_at"`
	VideoID   string    `json:"video_id"`
	Passages  int       `json:"passages"`
}

// SessionUpdatedEventData is the data payload for session update events.
type SessionUpdatedEventData struct {
	SessionID string `json:"session_id"`
	VideoID   string `json:"video_id"`
	Turns     int    `json:"turns"`
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

// NewIngestStartedEvent creates an ingest.started event.
func NewIngestStartedEvent(videoID, trigger string) Event {
	now := time.Now()
	return Event{
		Type:      EventIngestStarted,
		VideoID:   videoID,
		Timestamp: now,
		Data:      IngestStartedEventData{StartedAt: now, VideoID: videoID, Trigger: trigger},
	}
}

// NewIngestCompletedEvent creates an ingest.completed event.
func NewIngestCompletedEvent(videoID string, chunks, chapters, skipped int, took time.Duration) Event {
	now := time.Now()
	return Event{
		Type:      EventIngestCompleted,
		VideoID:   videoID,
		Timestamp: now,
		Data: IngestCompletedEventData{
			CompletedAt:  now,
			VideoID:      videoID,
			Chunks:       chunks,
			Chapters:     chapters,
			SkippedLines: skipped,
			DurationMS:   took.Milliseconds(),
		},
	}
}

// NewIngestFailedEvent creates an ingest.failed event.
func NewIngestFailedEvent(videoID string, err error) Event {
	now := time.Now()
	return Event{
		Type:      EventIngestFailed,
		VideoID:   videoID,
		Timestamp: now,
		Data:      IngestFailedEventData{FailedAt: now, VideoID: videoID, Error: err.Error()},
	}
}

// NewVideoDeletedEvent creates a video.deleted event.
func NewVideoDeletedEvent(videoID string, passages int) Event {
	now := time.Now()
	return Event{
		Type:      EventVideoDeleted,
		VideoID:   videoID,
		Timestamp: now,
		Data:      VideoDeletedEventData{DeletedAt: now, VideoID: videoID, Passages: passages},
	}
}

// NewSessionUpdatedEvent creates a session.updated event.
func NewSessionUpdatedEvent(sessionID, videoID string, turns int) Event {
	return Event{
		Type:      EventSessionUpdated,
		VideoID:   videoID,
		Timestamp: time.Now(),
		Data:      SessionUpdatedEventData{SessionID: sessionID, VideoID: videoID, Turns: turns},
	}
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	now := time.Now()
	return Event{
		Type:      EventHeartbeat,
		Timestamp: now,
		Data:      HeartbeatEventData{ServerTime: now},
	}
}
