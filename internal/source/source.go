// Package source supplies the raw caption and description text of a video.
// The filesystem provider reads files dropped into the captions directory by
// whatever downloads them.
package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	domainerrors "github.com/cuepointapp/cuepoint-server/internal/errors"
	"github.com/cuepointapp/cuepoint-server/internal/validation"
)

// File name suffixes inside the captions directory.
const (
	CaptionsSuffix    = "_captions.srt"
	DescriptionSuffix = "_description.txt"
)

// Provider loads raw source text for a video.
type Provider interface {
	// Captions returns the caption file contents. A missing file is a
	// SourceUnavailable error.
	Captions(ctx context.Context, videoID string) (string, error)
	// Description returns the description text, or "" when there is none.
	Description(ctx context.Context, videoID string) (string, error)
	// List returns the IDs of every video with captions available.
	List(ctx context.Context) ([]string, error)
}

// FS reads <id>_captions.srt and <id>_description.txt from one directory.
type FS struct {
	dir string
}

// NewFS creates a provider rooted at dir, creating the directory if needed.
func NewFS(dir string) (*FS, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create captions dir: %w", err)
	}
	return &FS{dir: dir}, nil
}

// Dir returns the directory the provider reads from.
func (p *FS) Dir() string { return p.dir }

// CaptionsPath returns where the captions of videoID are expected.
func (p *FS) CaptionsPath(videoID string) string {
	return filepath.Join(p.dir, videoID+CaptionsSuffix)
}

// DescriptionPath returns where the description of videoID is expected.
func (p *FS) DescriptionPath(videoID string) string {
	return filepath.Join(p.dir, videoID+DescriptionSuffix)
}

func (p *FS) Captions(ctx context.Context, videoID string) (string, error) {
	if err := checkID(ctx, videoID); err != nil {
		return "", err
	}
	data, err := os.ReadFile(p.CaptionsPath(videoID))
	if err != nil {
		return "", domainerrors.SourceUnavailable(videoID, err)
	}
	return string(data), nil
}

func (p *FS) Description(ctx context.Context, videoID string) (string, error) {
	if err := checkID(ctx, videoID); err != nil {
		return "", err
	}
	data, err := os.ReadFile(p.DescriptionPath(videoID))
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", domainerrors.SourceUnavailable(videoID, err)
	}
	return string(data), nil
}

func (p *FS) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		return nil, fmt.Errorf("list captions dir: %w", err)
	}

	var ids []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), CaptionsSuffix) {
			continue
		}
		id := strings.TrimSuffix(e.Name(), CaptionsSuffix)
		if validation.ValidVideoID(id) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

func checkID(ctx context.Context, videoID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !validation.ValidVideoID(videoID) {
		return domainerrors.Validation(fmt.Sprintf("invalid video id %q", videoID))
	}
	return nil
}

// VideoID returns the video a source file belongs to, from its name. Files
// that are neither captions nor descriptions report false.
func VideoID(path string) (string, bool) {
	base := filepath.Base(path)
	for _, suffix := range []string{CaptionsSuffix, DescriptionSuffix} {
		if id, ok := strings.CutSuffix(base, suffix); ok && validation.ValidVideoID(id) {
			return id, true
		}
	}
	return "", false
}
