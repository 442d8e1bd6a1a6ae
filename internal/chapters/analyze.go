package chapters

import (
	"regexp"
	"strings"

	"github.com/cuepointapp/cuepoint-server/internal/domain"
)

var genericPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^chapter\s+\d+$`),
	regexp.MustCompile(`(?i)^part\s+\d+$`),
	regexp.MustCompile(`(?i)^section\s+\d+$`),
	regexp.MustCompile(`^\d+\.?$`),
}

// IsGenericTitle reports whether a title carries no topic, such as "Part 3" or
// an empty string. Such titles can never win a rerank on their own merit.
func IsGenericTitle(title string) bool {
	title = strings.TrimSpace(title)
	if title == "" {
		return true
	}
	for _, p := range genericPatterns {
		if p.MatchString(title) {
			return true
		}
	}
	return false
}

// Analyze summarizes an extracted chapter list, in extraction order.
func Analyze(chapters []domain.Chapter) AnalysisResult {
	if len(chapters) == 0 {
		return AnalysisResult{InOrder: true}
	}

	res := AnalysisResult{Total: len(chapters), InOrder: true}
	seen := make(map[int]bool, len(chapters))
	for i, ch := range chapters {
		if IsGenericTitle(ch.Title) {
			res.GenericCount++
		}
		if seen[ch.Seconds] {
			res.DuplicateTimes++
		}
		seen[ch.Seconds] = true
		if i > 0 && ch.Seconds < chapters[i-1].Seconds {
			res.InOrder = false
		}
	}
	res.GenericPercent = float64(res.GenericCount) / float64(res.Total)
	return res
}
