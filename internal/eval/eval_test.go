package eval

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cuepointapp/cuepoint-server/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(v int) *int { return &v }

func TestParseScores(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		rel     *int
		acc     *int
		cla     *int
		wantErr bool
	}{
		{
			name: "all metrics",
			text: "Relevance: 4/5\nAccuracy: 5/5\nClarity: 3/5\nOptional Feedback: fine",
			rel:  intp(4), acc: intp(5), cla: intp(3),
		},
		{
			name: "case insensitive and spaced",
			text: "RELEVANCE:  2 / 5\nclarity:1/5",
			rel:  intp(2), cla: intp(1),
		},
		{
			name: "no scores",
			text: "Error during evaluation: timeout",
		},
		{
			name:    "non numeric",
			text:    "Relevance: high/5",
			wantErr: true,
		},
		{
			name:    "missing colon",
			text:    "Relevance 4/5",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rel, acc, cla, err := ParseScores(tt.text)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.rel, rel)
			assert.Equal(t, tt.acc, acc)
			assert.Equal(t, tt.cla, cla)
		})
	}
}

func TestRead(t *testing.T) {
	log := strings.Join([]string{
		`{"timestamp":"t1","query":"what is a loop","evaluation":"Relevance: 4/5\nAccuracy: 4/5\nClarity: 5/5"}`,
		`not json`,
		``,
		`{"timestamp":"t2","query":"dicts","evaluation":"Relevance: 2/5\nAccuracy: x/5"}`,
		`{"timestamp":"t3","query":"sets","evaluation":"Relevance: 2/5\nClarity: 3/5"}`,
	}, "\n")

	rows, stats, err := Read(strings.NewReader(log))
	require.NoError(t, err)

	assert.Equal(t, Stats{Lines: 4, Rows: 2, Malformed: 2}, stats)
	require.Len(t, rows, 2)
	assert.Equal(t, "what is a loop", rows[0].Query)
	assert.Nil(t, rows[1].Accuracy)
}

func TestSummarize(t *testing.T) {
	rows := []Row{
		{Relevance: intp(4), Accuracy: intp(4), Clarity: intp(5)},
		{Relevance: intp(2), Clarity: intp(3)},
	}

	s := Summarize(rows)
	assert.Equal(t, 2, s.Rows)
	assert.Equal(t, Average{Mean: 3, Count: 2}, s.Relevance)
	assert.Equal(t, Average{Mean: 4, Count: 1}, s.Accuracy)
	assert.Equal(t, Average{Mean: 4, Count: 2}, s.Clarity)
}

func TestSummarize_Empty(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))
}

func TestRecorder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eval", "answers.jsonl")
	rec, err := OpenRecorder(path)
	require.NoError(t, err)

	at := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, rec.Record(Entry{Timestamp: at, VideoID: "vid", Query: "q1", Answer: "a1",
		Sources: []domain.Source{{Timestamp: "00:00:01"}}}))
	require.NoError(t, rec.Record(Entry{Timestamp: at, VideoID: "vid", Query: "q2"}))
	require.NoError(t, rec.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var queries []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e Entry
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e))
		queries = append(queries, e.Query)
	}
	assert.Equal(t, []string{"q1", "q2"}, queries)
}
