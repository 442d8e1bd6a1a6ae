package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/cuepointapp/cuepoint-server/internal/domain"
	domainerrors "github.com/cuepointapp/cuepoint-server/internal/errors"
)

type videoRow struct {
	ID           string `db:"id"`
	ChunkCount   int    `db:"chunk_count"`
	ChapterCount int    `db:"chapter_count"`
	IngestedAt   string `db:"ingested_at"`
}

func (r videoRow) toDomain() (*domain.Video, error) {
	at, err := parseTime(r.IngestedAt)
	if err != nil {
		return nil, fmt.Errorf("parse ingested_at of %s: %w", r.ID, err)
	}
	return &domain.Video{
		ID:           r.ID,
		ChunkCount:   r.ChunkCount,
		ChapterCount: r.ChapterCount,
		IngestedAt:   at,
	}, nil
}

type chapterRow struct {
	Position  int    `db:"position"`
	Title     string `db:"title"`
	Timestamp string `db:"timestamp"`
	Seconds   int    `db:"seconds"`
}

// SaveVideo inserts or replaces a video together with its chapters, which are
// stored in extraction order.
func (c *Catalog) SaveVideo(ctx context.Context, video *domain.Video, chapters []domain.Chapter) error {
	vtx, err := c.BeginSaveVideo(ctx, video, chapters)
	if err != nil {
		return err
	}
	defer vtx.Rollback()
	return vtx.Commit()
}

// VideoTx is a video write that is staged but not yet visible.
type VideoTx struct {
	tx       *sqlx.Tx
	video    *domain.Video
	chapters int
}

// BeginSaveVideo stages the same write as SaveVideo inside a transaction and
// leaves it open. The caller must Commit or Rollback.
func (c *Catalog) BeginSaveVideo(ctx context.Context, video *domain.Video, chapters []domain.Chapter) (*VideoTx, error) {
	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}

	if err := stageVideo(ctx, tx, video, chapters); err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	return &VideoTx{tx: tx, video: video, chapters: len(chapters)}, nil
}

// Commit makes the staged video visible.
func (t *VideoTx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("commit video %s: %w", t.video.ID, err)
	}
	t.video.ChapterCount = t.chapters
	return nil
}

// Rollback discards the staged video. It is a no-op after Commit.
func (t *VideoTx) Rollback() {
	_ = t.tx.Rollback()
}

func stageVideo(ctx context.Context, tx *sqlx.Tx, video *domain.Video, chapters []domain.Chapter) error {
	_, err := tx.NamedExecContext(ctx, `
		INSERT INTO videos (id, chunk_count, chapter_count, ingested_at)
		VALUES (:id, :chunk_count, :chapter_count, :ingested_at)
		ON CONFLICT(id) DO UPDATE SET
			chunk_count = excluded.chunk_count,
			chapter_count = excluded.chapter_count,
			ingested_at = excluded.ingested_at`,
		videoRow{
			ID:           video.ID,
			ChunkCount:   video.ChunkCount,
			ChapterCount: len(chapters),
			IngestedAt:   formatTime(video.IngestedAt),
		})
	if err != nil {
		return fmt.Errorf("upsert video %s: %w", video.ID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM chapters WHERE video_id = ?`, video.ID); err != nil {
		return fmt.Errorf("clear chapters of %s: %w", video.ID, err)
	}

	for i, ch := range chapters {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO chapters (video_id, position, title, timestamp, seconds) VALUES (?, ?, ?, ?, ?)`,
			video.ID, i, ch.Title, ch.Timestamp, ch.Seconds)
		if err != nil {
			return fmt.Errorf("insert chapter %d of %s: %w", i, video.ID, err)
		}
	}
	return nil
}

// GetVideo returns one catalog entry.
func (c *Catalog) GetVideo(ctx context.Context, id string) (*domain.Video, error) {
	var row videoRow
	err := c.db.GetContext(ctx, &row, `SELECT id, chunk_count, chapter_count, ingested_at FROM videos WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainerrors.NotFoundf("video %s has not been ingested", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get video %s: %w", id, err)
	}
	return row.toDomain()
}

// ListVideos returns every video, most recently ingested first.
func (c *Catalog) ListVideos(ctx context.Context) ([]domain.Video, error) {
	var rows []videoRow
	if err := c.db.SelectContext(ctx, &rows,
		`SELECT id, chunk_count, chapter_count, ingested_at FROM videos ORDER BY ingested_at DESC, id`); err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}

	videos := make([]domain.Video, 0, len(rows))
	for _, r := range rows {
		v, err := r.toDomain()
		if err != nil {
			return nil, err
		}
		videos = append(videos, *v)
	}
	return videos, nil
}

// Chapters returns the chapters of a video in extraction order. A video
// without chapters yields an empty slice.
func (c *Catalog) Chapters(ctx context.Context, videoID string) ([]domain.Chapter, error) {
	var rows []chapterRow
	if err := c.db.SelectContext(ctx, &rows,
		`SELECT position, title, timestamp, seconds FROM chapters WHERE video_id = ? ORDER BY position`, videoID); err != nil {
		return nil, fmt.Errorf("list chapters of %s: %w", videoID, err)
	}

	chapters := make([]domain.Chapter, len(rows))
	for i, r := range rows {
		chapters[i] = domain.Chapter{Title: r.Title, Timestamp: r.Timestamp, Seconds: r.Seconds}
	}
	return chapters, nil
}

// DeleteVideo removes a video and, by cascade, its chapters.
func (c *Catalog) DeleteVideo(ctx context.Context, id string) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM videos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete video %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domainerrors.NotFoundf("video %s has not been ingested", id)
	}
	return nil
}
