package captions

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cuepointapp/cuepoint-server/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_TwoBlocks(t *testing.T) {
	raw := "1\n00:00:01,000 --> 00:00:02,000\nHello\n\n2\n00:00:05,500 --> 00:00:06,000\nWorld"

	got := Parse(raw)

	assert.Equal(t, []domain.CaptionChunk{
		{Text: "Hello", Timestamp: "00:00:01"},
		{Text: "World", Timestamp: "00:00:05"},
	}, got)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []domain.CaptionChunk
	}{
		{
			name: "empty input",
			raw:  "",
			want: []domain.CaptionChunk{},
		},
		{
			name: "whitespace only",
			raw:  "\n\n  \n",
			want: []domain.CaptionChunk{},
		},
		{
			name: "multi-line text joined with spaces",
			raw:  "1\n00:01:00,000 --> 00:01:04,000\nfirst line\nsecond line\n",
			want: []domain.CaptionChunk{{Text: "first line second line", Timestamp: "00:01:00"}},
		},
		{
			name: "short trailing block dropped",
			raw:  "1\n00:00:01,000 --> 00:00:02,000\nHello\n\n2\n00:00:03,000 --> 00:00:04,000",
			want: []domain.CaptionChunk{{Text: "Hello", Timestamp: "00:00:01"}},
		},
		{
			name: "unmatched time line defaults to zero",
			raw:  "1\n1:02 --> 1:03\nOdd timing",
			want: []domain.CaptionChunk{{Text: "Odd timing", Timestamp: "00:00:00"}},
		},
		{
			name: "windows line endings",
			raw:  "1\r\n00:00:07,000 --> 00:00:08,000\r\nHi\r\n\r\n2\r\n00:00:09,000 --> 00:00:10,000\r\nThere",
			want: []domain.CaptionChunk{
				{Text: "Hi", Timestamp: "00:00:07"},
				{Text: "There", Timestamp: "00:00:09"},
			},
		},
		{
			name: "order preserved even when not monotonic",
			raw:  "1\n00:00:09,000 --> 00:00:10,000\nlate\n\n2\n00:00:01,000 --> 00:00:02,000\nearly",
			want: []domain.CaptionChunk{
				{Text: "late", Timestamp: "00:00:09"},
				{Text: "early", Timestamp: "00:00:01"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.raw))
		})
	}
}

func TestParseWithStats(t *testing.T) {
	raw := strings.Join([]string{
		"1\n00:00:01,000 --> 00:00:02,000\nHello",
		"2\nbroken",
		"3\nnot a time\nStill text",
	}, "\n\n")

	chunks, stats := ParseWithStats(raw)

	require.Len(t, chunks, 2)
	assert.Equal(t, Stats{Blocks: 3, Chunks: 2, Skipped: 1, Untimed: 1}, stats)
}

func TestRead(t *testing.T) {
	chunks, stats, err := Read(strings.NewReader("1\n00:00:01,000 --> 00:00:02,000\nHello"))
	require.NoError(t, err)
	assert.Len(t, chunks, 1)
	assert.Equal(t, 1, stats.Chunks)
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "abc_captions.srt")
	require.NoError(t, os.WriteFile(path, []byte("1\n00:00:01,000 --> 00:00:02,000\nHello\n"), 0o600))

	chunks, err := ParseFile(path)

	require.NoError(t, err)
	assert.Equal(t, []domain.CaptionChunk{{Text: "Hello", Timestamp: "00:00:01"}}, chunks)
}

func TestParseFile_Missing(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "nope.srt"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}
