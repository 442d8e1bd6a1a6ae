// Package captions parses SubRip caption files into timestamped text chunks.
package captions

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/cuepointapp/cuepoint-server/internal/domain"
	"github.com/cuepointapp/cuepoint-server/internal/timecode"
)

// startTimePattern captures the HH:MM:SS part of "00:00:01,000 --> 00:00:02,000".
var startTimePattern = regexp.MustCompile(`^(\d{2}:\d{2}:\d{2})`)

// minBlockLines is index, time range and at least one text line.
const minBlockLines = 3

// Stats describes what a parse kept and dropped.
type Stats struct {
	Blocks  int // blank-line separated blocks seen
	Chunks  int // blocks turned into chunks
	Skipped int // blocks with fewer than three lines
	Untimed int // chunks whose time line did not match and fell back to 00:00:00
}

// Parse splits raw caption text into chunks in file order.
// Short blocks are dropped silently.
func Parse(raw string) []domain.CaptionChunk {
	chunks, _ := ParseWithStats(raw)
	return chunks
}

// ParseWithStats is Parse but also reports how many blocks were skipped.
func ParseWithStats(raw string) ([]domain.CaptionChunk, Stats) {
	var stats Stats

	raw = strings.TrimSpace(strings.ReplaceAll(raw, "\r\n", "\n"))
	if raw == "" {
		return []domain.CaptionChunk{}, stats
	}

	blocks := strings.Split(raw, "\n\n")
	chunks := make([]domain.CaptionChunk, 0, len(blocks))

	for _, block := range blocks {
		stats.Blocks++

		lines := strings.Split(block, "\n")
		if len(lines) < minBlockLines {
			stats.Skipped++
			continue
		}

		ts := timecode.Zero
		if m := startTimePattern.FindStringSubmatch(lines[1]); m != nil {
			ts = m[1]
		} else {
			stats.Untimed++
		}

		chunks = append(chunks, domain.CaptionChunk{
			Text:      strings.TrimSpace(strings.Join(lines[2:], " ")),
			Timestamp: ts,
		})
	}

	stats.Chunks = len(chunks)
	return chunks, stats
}

// Read parses everything readable from r.
func Read(r io.Reader) ([]domain.CaptionChunk, Stats, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("read captions: %w", err)
	}
	chunks, stats := ParseWithStats(string(data))
	return chunks, stats, nil
}

// ParseFile reads and parses a caption file. Read failures are returned as-is
// (wrapped) so callers can distinguish a missing file from an empty one.
func ParseFile(path string) ([]domain.CaptionChunk, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- caption paths come from the configured data directory
	if err != nil {
		return nil, fmt.Errorf("read caption file %s: %w", path, err)
	}
	return Parse(string(data)), nil
}
