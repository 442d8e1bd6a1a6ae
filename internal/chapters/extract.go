package chapters

import (
	"regexp"
	"strings"

	"github.com/cuepointapp/cuepoint-server/internal/domain"
	"github.com/cuepointapp/cuepoint-server/internal/timecode"
)

var (
	// keywordPattern anchors the chapter list. Text before it is never scanned.
	keywordPattern = regexp.MustCompile(`(?i)chapters|contents`)

	// entryPattern matches one chapter line: optional junk or "(", a
	// D:DD / DD:DD / D:DD:DD / DD:DD:DD timestamp with an optional ")",
	// optional separators, then the title to end of line. Junk may hold
	// numbers ending in ".", ")" or a blank, as in "1) " or "Part 2 - ".
	entryPattern = regexp.MustCompile(`(?m)^(?:[^\d\n]|\d+[.)]?[ \t])*?\(?(\d{1,2}:\d{2}(?::\d{2})?)\)?[ \t–—-]*(.*)$`)
)

// decorations are trimmed from both ends of a title.
const decorations = "() \t-–—•·●▪►*★☆⭐⌨️"

// Extract returns the chapters declared in a description, in the order they
// appear. A description without a "chapters" or "contents" keyword yields an
// empty slice.
func Extract(description string) []domain.Chapter {
	chapters, _ := ExtractWithStats(description)
	return chapters
}

// ExtractWithStats is Extract but also reports how many lines were skipped.
func ExtractWithStats(description string) ([]domain.Chapter, ExtractStats) {
	var stats ExtractStats
	chapters := []domain.Chapter{}

	loc := keywordPattern.FindStringIndex(description)
	if loc == nil {
		return chapters, stats
	}
	stats.KeywordFound = true

	for _, m := range entryPattern.FindAllStringSubmatch(description[loc[1]:], -1) {
		ts := m[1]
		seconds, err := timecode.Parse(ts)
		if err != nil {
			stats.Skipped++
			continue
		}

		chapters = append(chapters, domain.Chapter{
			Title:     cleanTitle(m[2]),
			Timestamp: ts,
			Seconds:   seconds,
		})
	}

	stats.Matched = len(chapters)
	return chapters, stats
}

func cleanTitle(s string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), decorations))
}
