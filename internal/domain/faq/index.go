package faq

import (
	"context"
	"time"
)

// DocumentMetadata mirrors the FAQ fields stored alongside the document.
type DocumentMetadata struct {
	Question    string    `json:"question"`
	Answer      string    `json:"answer"`
	Tags        []string  `json:"tags"`
	Instruction string    `json:"instruction,omitempty"`
	URL         string    `json:"url,omitempty"`
	Active      bool      `json:"active"`
	Timestamp   time.Time `json:"timestamp"`
}

// Document is the search-index projection of a FAQ. Its ID is the FAQ id
// rendered as a string; the primary store stays authoritative.
type Document struct {
	ID        string           `json:"id"`
	Content   string           `json:"content"`
	Embedding []float32        `json:"embedding"`
	Metadata  DocumentMetadata `json:"metadata"`
}

// DocumentIndex is the search index store contract. Implementations upsert
// by document ID.
type DocumentIndex interface {
	Save(ctx context.Context, doc Document) error
	SaveAll(ctx context.Context, docs []Document) error
	DeleteByID(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
	SearchByTags(ctx context.Context, tags []string, active *bool, page PageRequest) ([]Document, error)
}

// Embedder converts text to a fixed-dimension vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// JobQueue hands work to a background executor. Enqueue returns once the
// job is accepted; outcomes are observable only through logs.
type JobQueue interface {
	Enqueue(ctx context.Context, name string, payload any) error
}

// JobSyncFAQs is the queue job name for asynchronous index synchronization.
const JobSyncFAQs = "sync_faqs"
