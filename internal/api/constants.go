package api

const eventsPath = "/api/v1/events"

// Cache-Control header values.
const (
	CacheShortPrivate = "private, max-age=60"
	CacheNoStore      = "no-store"
)

// RetryAfterSeconds is sent with 429 responses from the ask endpoint.
const RetryAfterSeconds = "60"
