package eval

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cuepointapp/cuepoint-server/internal/domain"
)

// Entry is one answered question, written for later grading.
type Entry struct {
	Timestamp time.Time       `json:"timestamp"`
	VideoID   string          `json:"video_id"`
	Query     string          `json:"query"`
	Answer    string          `json:"answer"`
	Sources   []domain.Source `json:"sources"`
}

// Recorder appends entries to a JSONL file. It is safe for concurrent use.
type Recorder struct {
	mu   sync.Mutex
	file *os.File
}

// OpenRecorder opens path for appending, creating it and its directory.
func OpenRecorder(path string) (*Recorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open answer log: %w", err)
	}
	return &Recorder{file: f}, nil
}

// Record writes one entry as a single line.
func (r *Recorder) Record(e Entry) error {
	line, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}
	line = append(line, '\n')

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.file.Write(line); err != nil {
		return fmt.Errorf("write entry: %w", err)
	}
	return nil
}

// Close closes the log file.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.file.Close()
}
