package providers

import (
	"github.com/samber/do/v2"

	"github.com/cuepointapp/cuepoint-server/internal/config"
	"github.com/cuepointapp/cuepoint-server/internal/logger"
	"github.com/cuepointapp/cuepoint-server/internal/search"
)

// SearchIndexHandle wraps the passage index with shutdown capability.
type SearchIndexHandle struct {
	*search.Index
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve passage index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	index, err := search.Open(search.Options{
		DataPath: cfg.IndexPath(),
		Logger:   log.Component("search"),
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "passages", docCount)

	return &SearchIndexHandle{Index: index}, nil
}
