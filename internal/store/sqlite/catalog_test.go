package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/cuepointapp/cuepoint-server/internal/domain"
	domainerrors "github.com/cuepointapp/cuepoint-server/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "catalog.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestOpen(t *testing.T) {
	c := newTestCatalog(t)

	var journalMode string
	require.NoError(t, c.db.Get(&journalMode, "PRAGMA journal_mode"))
	assert.Equal(t, "wal", journalMode)

	var fk int
	require.NoError(t, c.db.Get(&fk, "PRAGMA foreign_keys"))
	assert.Equal(t, 1, fk)

	for _, table := range []string{"videos", "chapters"} {
		var name string
		err := c.db.Get(&name, "SELECT name FROM sqlite_master WHERE type='table' AND name=?", table)
		require.NoError(t, err, table)
	}
}

func TestSaveVideo_RoundTrip(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	chapters := []domain.Chapter{
		{Title: "Setup", Timestamp: "1:30", Seconds: 90},
		{Title: "Intro", Timestamp: "0:00", Seconds: 0},
	}
	video := &domain.Video{ID: "vid", ChunkCount: 42, IngestedAt: at}
	require.NoError(t, c.SaveVideo(ctx, video, chapters))
	assert.Equal(t, 2, video.ChapterCount)

	got, err := c.GetVideo(ctx, "vid")
	require.NoError(t, err)
	assert.Equal(t, 42, got.ChunkCount)
	assert.Equal(t, 2, got.ChapterCount)
	assert.True(t, at.Equal(got.IngestedAt))

	gotChapters, err := c.Chapters(ctx, "vid")
	require.NoError(t, err)
	assert.Equal(t, chapters, gotChapters, "extraction order is kept")
}

func TestSaveVideo_ReplacesChapters(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	require.NoError(t, c.SaveVideo(ctx, &domain.Video{ID: "vid", IngestedAt: time.Now()},
		[]domain.Chapter{{Title: "Old", Timestamp: "0:00"}}))
	require.NoError(t, c.SaveVideo(ctx, &domain.Video{ID: "vid", IngestedAt: time.Now()}, nil))

	chapters, err := c.Chapters(ctx, "vid")
	require.NoError(t, err)
	assert.Empty(t, chapters)

	got, err := c.GetVideo(ctx, "vid")
	require.NoError(t, err)
	assert.False(t, got.HasChapters())
}

func TestBeginSaveVideo(t *testing.T) {
	ctx := context.Background()
	video := func() *domain.Video {
		return &domain.Video{ID: "vid", ChunkCount: 4, IngestedAt: time.Now()}
	}
	chs := []domain.Chapter{{Title: "Intro", Timestamp: "0:00"}}

	t.Run("rollback discards", func(t *testing.T) {
		c := newTestCatalog(t)
		vtx, err := c.BeginSaveVideo(ctx, video(), chs)
		require.NoError(t, err)
		vtx.Rollback()

		_, err = c.GetVideo(ctx, "vid")
		assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	})

	t.Run("commit publishes", func(t *testing.T) {
		c := newTestCatalog(t)
		v := video()
		vtx, err := c.BeginSaveVideo(ctx, v, chs)
		require.NoError(t, err)
		require.NoError(t, vtx.Commit())
		vtx.Rollback()
		assert.Equal(t, 1, v.ChapterCount)

		got, err := c.GetVideo(ctx, "vid")
		require.NoError(t, err)
		assert.Equal(t, 4, got.ChunkCount)
	})

	t.Run("failed chapter insert leaves the old entry", func(t *testing.T) {
		c := newTestCatalog(t)
		require.NoError(t, c.SaveVideo(ctx, video(), chs))
		_, err := c.db.Exec(`CREATE TRIGGER reject_chapters BEFORE INSERT ON chapters
			BEGIN SELECT RAISE(ABORT, 'chapters rejected'); END`)
		require.NoError(t, err)

		_, err = c.BeginSaveVideo(ctx, video(), []domain.Chapter{{Title: "Other", Timestamp: "0:10", Seconds: 10}})
		require.Error(t, err)

		got, err := c.Chapters(ctx, "vid")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Intro", got[0].Title)
	})
}

func TestGetVideo_NotFound(t *testing.T) {
	c := newTestCatalog(t)

	_, err := c.GetVideo(context.Background(), "nope")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestListVideos(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, c.SaveVideo(ctx, &domain.Video{ID: "old", IngestedAt: base}, nil))
	require.NoError(t, c.SaveVideo(ctx, &domain.Video{ID: "new", IngestedAt: base.Add(time.Hour)}, nil))

	videos, err := c.ListVideos(ctx)
	require.NoError(t, err)
	require.Len(t, videos, 2)
	assert.Equal(t, "new", videos[0].ID)
	assert.Equal(t, "old", videos[1].ID)
}

func TestDeleteVideo_Cascades(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()
	require.NoError(t, c.SaveVideo(ctx, &domain.Video{ID: "vid", IngestedAt: time.Now()},
		[]domain.Chapter{{Title: "Intro", Timestamp: "0:00"}}))

	require.NoError(t, c.DeleteVideo(ctx, "vid"))

	var n int
	require.NoError(t, c.db.Get(&n, "SELECT COUNT(*) FROM chapters WHERE video_id = 'vid'"))
	assert.Zero(t, n)

	assert.ErrorIs(t, c.DeleteVideo(ctx, "vid"), domainerrors.ErrNotFound)
}
