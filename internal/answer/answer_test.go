package answer

import (
	"context"
	"testing"

	"github.com/cuepointapp/cuepoint-server/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerms(t *testing.T) {
	assert.Equal(t, []string{"install", "python"}, Terms("How do I install Python? install!"))
	assert.Empty(t, Terms("what is the"))
}

func TestOverlap(t *testing.T) {
	terms := Terms("install python packages")
	assert.Equal(t, 2, Overlap(terms, "First we install Python itself"))
	assert.Zero(t, Overlap(terms, "Welcome to the course"))
}

func TestExtractive_NoPassages(t *testing.T) {
	got, err := Extractive{}.Answer(context.Background(), "anything", nil)
	require.NoError(t, err)
	assert.Equal(t, NoAnswer, got)
}

func TestExtractive_QuotesOverlappingPassagesInOrder(t *testing.T) {
	passages := []domain.LabeledDocument{
		{Text: "Loops repeat a block of code", Timestamp: "00:05:00", ChapterTitle: "Loops"},
		{Text: "Welcome everyone", Timestamp: "00:00:01", ChapterTitle: "Intro"},
		{Text: "A for loop walks a list, loops are handy", Timestamp: "00:06:00", ChapterTitle: "Loops"},
	}

	got, err := Extractive{}.Answer(context.Background(), "how do loops work", passages)
	require.NoError(t, err)

	assert.Equal(t, "This is covered in \"Loops\".\n\n[00:05:00] Loops repeat a block of code\n[00:06:00] A for loop walks a list, loops are handy", got)
}

func TestExtractive_FallsBackToRankedPassages(t *testing.T) {
	passages := []domain.LabeledDocument{
		{Text: "first", Timestamp: "00:00:01", ChapterTitle: domain.UnknownChapter},
		{Text: "second", Timestamp: "00:00:02", ChapterTitle: domain.UnknownChapter},
	}

	got, err := Extractive{MaxPassages: 1}.Answer(context.Background(), "zebra", passages)
	require.NoError(t, err)
	assert.Equal(t, "[00:00:01] first", got)
}

func TestExtractive_TruncatesQuotes(t *testing.T) {
	passages := []domain.LabeledDocument{{Text: "abcdefghij", Timestamp: "00:00:01"}}

	got, err := Extractive{MaxChars: 4}.Answer(context.Background(), "abcdefghij", passages)
	require.NoError(t, err)
	assert.Equal(t, "[00:00:01] abcd", got)
}

func TestExtractive_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Extractive{}.Answer(ctx, "q", []domain.LabeledDocument{{Text: "x"}})
	assert.ErrorIs(t, err, context.Canceled)
}
