package bootstrap

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/xreal/faqbase/internal/domain/faq"
	"github.com/xreal/faqbase/internal/infra/config"
	"github.com/xreal/faqbase/internal/infra/syncqueue"
)

// App encapsulates the HTTP server lifecycle and the sync job worker.
type App struct {
	cfg    *config.Config
	logger *slog.Logger
	server *http.Server
	queue  syncqueue.HandlerQueue
	faqs   faq.FAQRepository
	syncer *faq.Syncer
}

// NewApp is used by Wire to build the runnable app.
func NewApp(cfg *config.Config, logger *slog.Logger, server *http.Server, queue syncqueue.HandlerQueue, faqs faq.FAQRepository, syncer *faq.Syncer) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With("component", "bootstrap"),
		server: server,
		queue:  queue,
		faqs:   faqs,
		syncer: syncer,
	}
}

// Run starts the queue worker and the HTTP server and blocks until shutdown.
func (a *App) Run(ctx context.Context) error {
	if a.queue != nil {
		a.queue.SetHandler(a.handleSyncJob)
	}

	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("http server starting", "address", a.cfg.HTTP.Address)
		if err := a.server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.logger.Info("shutdown signal received")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// handleSyncJob reloads the queued FAQ ids from the primary store and pushes
// them into the search index. Reloading keeps the job payload small and the
// indexed data fresh even when the job sat on the queue for a while.
func (a *App) handleSyncJob(ctx context.Context, name string, payload map[string]any) {
	if name != faq.JobSyncFAQs {
		a.logger.Warn("unknown job", "name", name)
		return
	}
	ids := decodeIDs(payload["faq_ids"])
	if len(ids) == 0 {
		a.logger.Warn("sync job without faq ids")
		return
	}
	faqs := make([]faq.FAQ, 0, len(ids))
	for _, id := range ids {
		record, found, err := a.faqs.FindByID(ctx, id)
		if err != nil {
			a.logger.Warn("failed to reload FAQ for sync job", "faq_id", id, "error", err)
			continue
		}
		if !found {
			continue
		}
		faqs = append(faqs, record)
	}
	a.syncer.SyncBatch(ctx, faqs)
}

// decodeIDs tolerates the numeric representations JSON round-tripping
// produces.
func decodeIDs(raw any) []int64 {
	list, ok := raw.([]any)
	if !ok {
		if typed, ok := raw.([]int64); ok {
			return typed
		}
		return nil
	}
	ids := make([]int64, 0, len(list))
	for _, item := range list {
		switch v := item.(type) {
		case float64:
			ids = append(ids, int64(v))
		case int64:
			ids = append(ids, v)
		case json.Number:
			if parsed, err := v.Int64(); err == nil {
				ids = append(ids, parsed)
			}
		}
	}
	return ids
}
