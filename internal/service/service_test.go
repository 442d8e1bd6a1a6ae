package service

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/cuepointapp/cuepoint-server/internal/logger"
	"github.com/cuepointapp/cuepoint-server/internal/search"
	"github.com/cuepointapp/cuepoint-server/internal/source"
	"github.com/cuepointapp/cuepoint-server/internal/sse"
	"github.com/cuepointapp/cuepoint-server/internal/store"
	"github.com/cuepointapp/cuepoint-server/internal/store/sqlite"
	"github.com/stretchr/testify/require"
)

const testCaptions = "1\n00:00:01,000 --> 00:00:04,000\nwelcome to the python course\n\n" +
	"2\n00:00:25,000 --> 00:00:30,000\na for loop repeats a block of code\n\n" +
	"3\n00:00:40,000 --> 00:00:45,000\nloops can also use while\n"

const testDescription = "Learn Python from scratch.\n\nChapters\n0:00 Intro\n0:20 Python loops ⭐\n"

type recordingEmitter struct {
	mu     sync.Mutex
	events []sse.Event
}

func (r *recordingEmitter) Emit(e sse.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingEmitter) types() []sse.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]sse.EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

type testEnv struct {
	dir         string
	catalogPath string
	provider *source.FS
	index    *search.Index
	catalog  *sqlite.Catalog
	store    *store.Store
	events   *recordingEmitter

	ingest   *IngestService
	videos   *VideoService
	sessions *SessionService
	ask      *AskService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	root := t.TempDir()
	log := logger.Discard()

	provider, err := source.NewFS(filepath.Join(root, "captions"))
	require.NoError(t, err)

	index, err := search.Open(search.Options{DataPath: filepath.Join(root, "index")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	catalogPath := filepath.Join(root, "catalog.db")
	catalog, err := sqlite.Open(catalogPath, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = catalog.Close() })

	st, err := store.NewInMemory(log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	events := &recordingEmitter{}
	env := &testEnv{
		dir:         provider.Dir(),
		catalogPath: catalogPath,
		provider:    provider,
		index:       index,
		catalog:     catalog,
		store:       st,
		events:      events,
	}
	env.ingest = NewIngestService(provider, index, catalog, events, log)
	env.videos = NewVideoService(catalog, index, log)
	env.sessions = NewSessionService(st, catalog, events, time.Hour, log)
	env.ask = NewAskService(index, catalog, env.sessions, nil, AskOptions{}, log)
	return env
}

func (e *testEnv) writeVideo(t *testing.T, videoID, captions, description string) {
	t.Helper()
	require.NoError(t, os.WriteFile(e.provider.CaptionsPath(videoID), []byte(captions), 0o600))
	if description != "" {
		require.NoError(t, os.WriteFile(e.provider.DescriptionPath(videoID), []byte(description), 0o600))
	}
}
