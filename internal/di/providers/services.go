package providers

import (
	"github.com/samber/do/v2"

	"github.com/cuepointapp/cuepoint-server/internal/config"
	"github.com/cuepointapp/cuepoint-server/internal/eval"
	"github.com/cuepointapp/cuepoint-server/internal/logger"
	"github.com/cuepointapp/cuepoint-server/internal/service"
	"github.com/cuepointapp/cuepoint-server/internal/source"
)

// ProvideIngestService provides the caption ingestion service.
func ProvideIngestService(i do.Injector) (*service.IngestService, error) {
	provider := do.MustInvoke[*source.FS](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	catalogHandle := do.MustInvoke[*CatalogHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewIngestService(provider, indexHandle.Index, catalogHandle.Catalog, sseHandle.Manager, log.Component("ingest")), nil
}

// ProvideVideoService provides the catalog read service.
func ProvideVideoService(i do.Injector) (*service.VideoService, error) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	catalogHandle := do.MustInvoke[*CatalogHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewVideoService(catalogHandle.Catalog, indexHandle.Index, log.Logger), nil
}

// ProvideSessionService provides the chat session service.
func ProvideSessionService(i do.Injector) (*service.SessionService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*SessionStoreHandle](i)
	catalogHandle := do.MustInvoke[*CatalogHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSessionService(storeHandle.Store, catalogHandle.Catalog, sseHandle.Manager, cfg.Session.TTL, log.Component("sessions")), nil
}

// AnswerLogHandle wraps the optional answer recorder. Recorder is nil when
// no answer log is configured.
type AnswerLogHandle struct {
	Recorder *eval.Recorder
}

// Shutdown implements do.Shutdownable.
func (h *AnswerLogHandle) Shutdown() error {
	if h.Recorder == nil {
		return nil
	}
	return h.Recorder.Close()
}

// ProvideAnswerLog opens the answer log when one is configured.
func ProvideAnswerLog(i do.Injector) (*AnswerLogHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Retrieval.AnswerLogPath == "" {
		return &AnswerLogHandle{}, nil
	}

	rec, err := eval.OpenRecorder(cfg.Retrieval.AnswerLogPath)
	if err != nil {
		return nil, err
	}
	log.Info("Recording answers", "path", cfg.Retrieval.AnswerLogPath)
	return &AnswerLogHandle{Recorder: rec}, nil
}

// ProvideAskService provides the question answering service.
func ProvideAskService(i do.Injector) (*service.AskService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	catalogHandle := do.MustInvoke[*CatalogHandle](i)
	sessions := do.MustInvoke[*service.SessionService](i)
	answerLog := do.MustInvoke[*AnswerLogHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	svc := service.NewAskService(indexHandle.Index, catalogHandle.Catalog, sessions, nil, service.AskOptions{
		K:             cfg.Retrieval.K,
		Threshold:     cfg.Retrieval.RerankThreshold,
		SnippetLength: cfg.Retrieval.SnippetLength,
	}, log.Component("ask"))

	if answerLog.Recorder != nil {
		svc.SetAnswerLog(answerLog.Recorder)
	}
	return svc, nil
}
