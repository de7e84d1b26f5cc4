package faq

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// SyncConfig holds the knobs for index synchronization.
type SyncConfig struct {
	// BatchSize bounds the number of documents per SaveAll call.
	BatchSize int
	// Timeout bounds the guarded synchronous batch path.
	Timeout time.Duration
	// AsyncThreshold is the pending-FAQ count above which Dispatch goes async.
	AsyncThreshold int
	// Dimensions is the embedding vector length; failed embeddings are
	// replaced by a zero vector of this length.
	Dimensions int
}

// Syncer projects primary-store FAQ writes into the search index. Index and
// embedder are optional collaborators; every entry point degrades to a no-op
// when either is absent, and no failure ever propagates to the caller.
type Syncer struct {
	cfg      SyncConfig
	index    DocumentIndex
	embedder Embedder
	queue    JobQueue
	logger   *slog.Logger
}

// NewSyncer wires up the sync engine. index, embedder, and queue may be nil.
func NewSyncer(cfg SyncConfig, index DocumentIndex, embedder Embedder, queue JobQueue, logger *slog.Logger) *Syncer {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.AsyncThreshold <= 0 {
		cfg.AsyncThreshold = 50
	}
	return &Syncer{
		cfg:      cfg,
		index:    index,
		embedder: embedder,
		queue:    queue,
		logger:   logger.With("component", "faq.syncer"),
	}
}

// Available reports whether the index projection is configured at all.
func (s *Syncer) Available() bool {
	return s != nil && s.index != nil && s.embedder != nil
}

// SyncOne upserts the search document for a single persisted FAQ. Failures
// are logged and swallowed so the caller's committed write is unaffected.
func (s *Syncer) SyncOne(ctx context.Context, f FAQ) {
	if !s.Available() {
		s.logAvailability()
		return
	}
	if f.ID == 0 {
		s.logger.Warn("refusing to sync FAQ without id", "question", f.Question)
		return
	}
	doc, err := s.buildDocument(ctx, f)
	if err != nil {
		s.logger.Warn("failed to build search document", "faq_id", f.ID, "error", err)
		return
	}
	if err := s.index.Save(ctx, doc); err != nil {
		s.logger.Warn("failed to save search document", "faq_id", f.ID, "error", err)
		return
	}
	s.logger.Debug("search document synced", "faq_id", f.ID)
}

// SyncBatch projects a list of FAQs in fixed-size chunks. One FAQ's failure
// skips that FAQ; one chunk's save failure skips that chunk; the remainder
// proceeds. Cancelling ctx abandons the unprocessed tail.
func (s *Syncer) SyncBatch(ctx context.Context, faqs []FAQ) {
	if !s.Available() {
		s.logAvailability()
		return
	}
	if len(faqs) == 0 {
		return
	}
	s.logger.Info("starting search index batch sync", "count", len(faqs))

	size := s.cfg.BatchSize
	for start := 0; start < len(faqs); start += size {
		if ctx.Err() != nil {
			s.logger.Warn("batch sync abandoned", "synced", start, "pending", len(faqs)-start, "error", ctx.Err())
			return
		}
		end := start + size
		if end > len(faqs) {
			end = len(faqs)
		}
		docs := make([]Document, 0, end-start)
		for _, f := range faqs[start:end] {
			if f.ID == 0 {
				s.logger.Warn("skipping FAQ without id in batch sync", "question", f.Question)
				continue
			}
			doc, err := s.buildDocument(ctx, f)
			if err != nil {
				s.logger.Warn("failed to prepare FAQ for index", "faq_id", f.ID, "error", err)
				continue
			}
			docs = append(docs, doc)
		}
		if len(docs) == 0 {
			continue
		}
		if err := s.index.SaveAll(ctx, docs); err != nil {
			s.logger.Warn("failed to save document batch", "size", len(docs), "error", err)
			continue
		}
		s.logger.Debug("synced document batch", "size", len(docs))
	}
	s.logger.Info("completed search index batch sync", "count", len(faqs))
}

// SyncBatchWithTimeout runs SyncBatch on its own unit of work bounded by the
// configured wall-clock timeout. On expiry the in-flight work is cancelled
// and abandoned; chunks saved before that stay saved. Never returns an error.
func (s *Syncer) SyncBatchWithTimeout(faqs []FAQ) {
	if !s.Available() || len(faqs) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.SyncBatch(ctx, faqs)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("search index sync timed out, abandoning remainder", "timeout", s.cfg.Timeout, "count", len(faqs))
	}
}

// Dispatch applies the post-import policy: batches above the threshold run
// asynchronously through the job queue, smaller ones take the guarded
// synchronous path so fresh data is searchable when the call returns.
func (s *Syncer) Dispatch(ctx context.Context, faqs []FAQ) {
	if !s.Available() || len(faqs) == 0 {
		return
	}
	if len(faqs) > s.cfg.AsyncThreshold && s.queue != nil {
		ids := make([]int64, 0, len(faqs))
		for _, f := range faqs {
			if f.ID != 0 {
				ids = append(ids, f.ID)
			}
		}
		payload := map[string]any{"faq_ids": ids}
		if err := s.queue.Enqueue(ctx, JobSyncFAQs, payload); err != nil {
			s.logger.Warn("failed to enqueue async sync, falling back to guarded sync", "count", len(faqs), "error", err)
			s.SyncBatchWithTimeout(faqs)
			return
		}
		s.logger.Info("scheduled async search index sync", "count", len(ids))
		return
	}
	s.SyncBatchWithTimeout(faqs)
}

// DeleteOne removes the FAQ's document from the index, best effort.
func (s *Syncer) DeleteOne(ctx context.Context, id int64) {
	if s == nil || s.index == nil {
		return
	}
	if err := s.index.DeleteByID(ctx, strconv.FormatInt(id, 10)); err != nil {
		s.logger.Warn("failed to delete search document", "faq_id", id, "error", err)
	}
}

// Wipe clears the whole index, best effort.
func (s *Syncer) Wipe(ctx context.Context) {
	if s == nil || s.index == nil {
		return
	}
	if err := s.index.DeleteAll(ctx); err != nil {
		s.logger.Warn("failed to wipe search index", "error", err)
	}
}

func (s *Syncer) buildDocument(ctx context.Context, f FAQ) (Document, error) {
	content := buildContent(f)
	embedding, err := s.embedder.Embed(ctx, content)
	if err != nil {
		if ctx.Err() != nil {
			return Document{}, ctx.Err()
		}
		s.logger.Warn("embedding failed, substituting zero vector", "faq_id", f.ID, "error", err)
		embedding = make([]float32, s.cfg.Dimensions)
	}
	return Document{
		ID:        strconv.FormatInt(f.ID, 10),
		Content:   content,
		Embedding: embedding,
		Metadata: DocumentMetadata{
			Question:    f.Question,
			Answer:      f.Answer,
			Tags:        append([]string(nil), f.Tags...),
			Instruction: f.Instruction,
			URL:         f.URL,
			Active:      f.Active,
			Timestamp:   f.Timestamp,
		},
	}, nil
}

// buildContent renders the indexed text for a FAQ. The same template is used
// on both the single-record and batch paths.
func buildContent(f FAQ) string {
	var b strings.Builder
	b.WriteString("Question: ")
	b.WriteString(f.Question)
	b.WriteString("\nAnswer: ")
	b.WriteString(f.Answer)
	b.WriteString("\n")
	if f.Instruction != "" {
		b.WriteString("Instruction: ")
		b.WriteString(f.Instruction)
		b.WriteString("\n")
	}
	if len(f.Tags) > 0 {
		b.WriteString("Tags: ")
		b.WriteString(strings.Join(f.Tags, ", "))
		b.WriteString("\n")
	}
	return b.String()
}

func (s *Syncer) logAvailability() {
	s.logger.Debug("search index or embedder not configured, skipping sync")
}
