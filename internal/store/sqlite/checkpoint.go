package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Checkpoint returns the most recent ingest time across the catalog. An
// empty catalog returns a zero time.Time.
func (c *Catalog) Checkpoint(ctx context.Context) (time.Time, error) {
	var latest sql.NullString

	if err := c.db.QueryRowxContext(ctx, `SELECT MAX(ingested_at) FROM videos`).Scan(&latest); err != nil {
		return time.Time{}, fmt.Errorf("query catalog checkpoint: %w", err)
	}

	if !latest.Valid || latest.String == "" {
		return time.Time{}, nil
	}

	t, err := parseTime(latest.String)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse checkpoint time: %w", err)
	}

	return t, nil
}
