package source

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	domainerrors "github.com/cuepointapp/cuepoint-server/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFS(t *testing.T) *FS {
	t.Helper()
	p, err := NewFS(filepath.Join(t.TempDir(), "captions"))
	require.NoError(t, err)
	return p
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestFS_Captions(t *testing.T) {
	p := newTestFS(t)
	write(t, p.CaptionsPath("abc"), "1\n00:00:01,000 --> 00:00:02,000\nHello")

	got, err := p.Captions(context.Background(), "abc")

	require.NoError(t, err)
	assert.Contains(t, got, "Hello")
}

func TestFS_Captions_Missing(t *testing.T) {
	p := newTestFS(t)

	_, err := p.Captions(context.Background(), "nope")

	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrSourceUnavailable)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestFS_Captions_RejectsTraversal(t *testing.T) {
	p := newTestFS(t)

	_, err := p.Captions(context.Background(), "../secret")

	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestFS_Description(t *testing.T) {
	p := newTestFS(t)
	write(t, p.DescriptionPath("abc"), "Chapters\n0:00 Intro")

	got, err := p.Description(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "Chapters\n0:00 Intro", got)

	missing, err := p.Description(context.Background(), "other")
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestFS_List(t *testing.T) {
	p := newTestFS(t)
	write(t, p.CaptionsPath("zeta"), "x")
	write(t, p.CaptionsPath("alpha"), "x")
	write(t, p.DescriptionPath("alpha"), "x")
	write(t, filepath.Join(p.Dir(), "notes.txt"), "x")
	require.NoError(t, os.Mkdir(filepath.Join(p.Dir(), "dir_captions.srt"), 0o755))

	ids, err := p.List(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, ids)
}

func TestFS_CanceledContext(t *testing.T) {
	p := newTestFS(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Captions(ctx, "abc")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestVideoID(t *testing.T) {
	tests := []struct {
		path   string
		want   string
		wantOK bool
	}{
		{"/data/captions/rfscVS0vtbw_captions.srt", "rfscVS0vtbw", true},
		{"a_b-c_description.txt", "a_b-c", true},
		{"/x/notes.txt", "", false},
		{"/x/_captions.srt", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := VideoID(tt.path)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
