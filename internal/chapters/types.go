// Package chapters turns free-text video descriptions into chapter boundaries,
// labels transcript chunks with the chapter active at their timestamp, and
// reorders retrieved passages toward the chapter a query is about.
//
// Everything here is a pure function over values. Nothing logs, blocks or
// keeps state, so any function is safe to call from concurrent requests.
package chapters

import "github.com/cuepointapp/cuepoint-server/internal/domain"

// DefaultThreshold is the similarity a chapter title must exceed before its
// passages are promoted.
const DefaultThreshold = 0.5

// ExtractStats reports how a description scan went.
type ExtractStats struct {
	KeywordFound bool `json:"keywordFound"`
	Matched      int  `json:"matched"`
	Skipped      int  `json:"skipped"`
}

// Match is the chapter title that best resembles a query.
type Match struct {
	Chapter domain.Chapter `json:"chapter"`
	Score   float64        `json:"score"`
}

// RerankResult carries the reordered documents and the chapter that drove the
// reordering, if any cleared the threshold.
type RerankResult struct {
	Documents []domain.LabeledDocument `json:"documents"`
	Matched   *Match                   `json:"matched,omitempty"`
}

// AnalysisResult contains chapter list statistics.
type AnalysisResult struct {
	Total          int     `json:"total"`
	GenericCount   int     `json:"genericCount"`
	GenericPercent float64 `json:"genericPercent"`
	DuplicateTimes int     `json:"duplicateTimes"`
	InOrder        bool    `json:"inOrder"`
}
