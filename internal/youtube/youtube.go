// Package youtube knows the URL shapes of YouTube videos. It never talks to
// the network.
package youtube

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/cuepointapp/cuepoint-server/internal/timecode"
)

const watchBase = "https://www.youtube.com/watch"

// ExtractVideoID pulls the video ID out of a youtu.be, /watch, /embed/ or /v/ URL.
func ExtractVideoID(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}

	switch strings.ToLower(u.Hostname()) {
	case "youtu.be", "www.youtu.be":
		id := strings.TrimPrefix(u.Path, "/")
		return id, id != ""
	case "youtube.com", "www.youtube.com":
		if u.Path == "/watch" {
			id := u.Query().Get("v")
			return id, id != ""
		}
		if strings.HasPrefix(u.Path, "/embed/") || strings.HasPrefix(u.Path, "/v/") {
			id := strings.Split(u.Path, "/")[2]
			return id, id != ""
		}
	}
	return "", false
}

// WatchURL returns the canonical watch page for a video.
func WatchURL(videoID string) string {
	return watchBase + "?v=" + url.QueryEscape(videoID)
}

// JumpURL links to the watch page at the given timestamp. Malformed or
// negative timestamps jump to the start.
func JumpURL(videoID, timestamp string) string {
	return fmt.Sprintf("%s&t=%ds", WatchURL(videoID), max(timecode.ToSeconds(timestamp), 0))
}
