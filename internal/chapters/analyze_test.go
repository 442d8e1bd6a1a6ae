package chapters

import (
	"testing"

	"github.com/cuepointapp/cuepoint-server/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestIsGenericTitle(t *testing.T) {
	tests := []struct {
		title string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"Chapter 3", true},
		{"part 12", true},
		{"Section 2", true},
		{"7", true},
		{"7.", true},
		{"Intro", false},
		{"Part of speech", false},
		{"Chapter 3: Loops", false},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, IsGenericTitle(tt.title))
		})
	}
}

func TestAnalyze(t *testing.T) {
	res := Analyze([]domain.Chapter{
		{Title: "Intro", Seconds: 0},
		{Title: "Part 2", Seconds: 60},
		{Title: "Recap", Seconds: 60},
		{Title: "Earlier", Seconds: 30},
	})

	assert.Equal(t, 4, res.Total)
	assert.Equal(t, 1, res.GenericCount)
	assert.InDelta(t, 0.25, res.GenericPercent, 1e-9)
	assert.Equal(t, 1, res.DuplicateTimes)
	assert.False(t, res.InOrder)
}

func TestAnalyze_Empty(t *testing.T) {
	assert.Equal(t, AnalysisResult{InOrder: true}, Analyze(nil))
}
