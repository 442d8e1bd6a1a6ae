// Package sqlite keeps the catalog of ingested videos and their chapters.
package sqlite

import (
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/cuepointapp/cuepoint-server/internal/logger"
)

//go:embed schema.sql
var schemaSQL string

// Catalog provides SQLite-backed video and chapter records.
type Catalog struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// Open creates or opens the catalog at path. It configures WAL mode, sets
// pragmas and applies the schema.
func Open(path string, log *slog.Logger) (*Catalog, error) {
	if log == nil {
		log = logger.Discard()
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	log.Info("catalog opened", "path", path)
	return &Catalog{db: db, logger: log}, nil
}

// Close closes the underlying database connection.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// timeLayout is fixed width so stored times sort correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
