package domain

import "time"

// Source is one cited passage in an answer, ready for a player to seek to.
type Source struct {
	Timestamp    string `json:"timestamp"`
	Seconds      int    `json:"seconds"`
	ChapterTitle string `json:"chapter_title"`
	Snippet      string `json:"snippet"`
	JumpURL      string `json:"jump_url"`
}

// Turn is a single question and its answer within a session.
type Turn struct {
	Query          string    `json:"query"`
	Answer         string    `json:"answer"`
	MatchedChapter string    `json:"matched_chapter,omitempty"`
	Sources        []Source  `json:"sources"`
	AskedAt        time.Time `json:"asked_at"`
}

// Session holds the conversation about one video. It is created on the first
// interaction, extended by every query and emptied by Reset.
type Session struct {
	ID        string    `json:"id"`
	VideoID   string    `json:"video_id"`
	Turns     []Turn    `json:"turns"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewSession creates an empty session that expires after ttl.
func NewSession(id, videoID string, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:        id,
		VideoID:   videoID,
		Turns:     []Turn{},
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// AppendTurn records a turn and slides the expiry window forward.
func (s *Session) AppendTurn(turn Turn, ttl time.Duration) {
	if turn.AskedAt.IsZero() {
		turn.AskedAt = time.Now()
	}
	s.Turns = append(s.Turns, turn)
	s.UpdatedAt = turn.AskedAt
	s.ExpiresAt = s.UpdatedAt.Add(ttl)
}

// Reset drops the chat history but keeps the session alive.
func (s *Session) Reset() {
	s.Turns = []Turn{}
	s.UpdatedAt = time.Now()
}

// IsExpired reports whether the session outlived its TTL.
func (s *Session) IsExpired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// TTL returns the remaining lifetime, never negative.
func (s *Session) TTL(now time.Time) time.Duration {
	d := s.ExpiresAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}
