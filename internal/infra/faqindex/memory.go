package faqindex

import (
	"context"
	"sort"
	"sync"

	"github.com/xreal/faqbase/internal/domain/faq"
)

// MemoryIndex is an in-memory faq.DocumentIndex used in tests and when a
// search index is wanted without external services.
type MemoryIndex struct {
	mu   sync.RWMutex
	docs map[string]faq.Document
}

// NewMemoryIndex constructs an empty index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{docs: make(map[string]faq.Document)}
}

func (m *MemoryIndex) Save(_ context.Context, doc faq.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[doc.ID] = doc
	return nil
}

func (m *MemoryIndex) SaveAll(_ context.Context, docs []faq.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, doc := range docs {
		m.docs[doc.ID] = doc
	}
	return nil
}

func (m *MemoryIndex) DeleteByID(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, id)
	return nil
}

func (m *MemoryIndex) DeleteAll(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs = make(map[string]faq.Document)
	return nil
}

func (m *MemoryIndex) SearchByTags(_ context.Context, tags []string, active *bool, page faq.PageRequest) ([]faq.Document, error) {
	wanted := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		wanted[t] = struct{}{}
	}

	m.mu.RLock()
	var matches []faq.Document
	for _, doc := range m.docs {
		if active != nil && doc.Metadata.Active != *active {
			continue
		}
		if len(wanted) > 0 {
			hit := false
			for _, t := range doc.Metadata.Tags {
				if _, ok := wanted[t]; ok {
					hit = true
					break
				}
			}
			if !hit {
				continue
			}
		}
		matches = append(matches, doc)
	}
	m.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Metadata.Timestamp.After(matches[j].Metadata.Timestamp)
	})
	start := page.Offset()
	if start >= len(matches) {
		return []faq.Document{}, nil
	}
	end := start + page.Size
	if page.Size <= 0 || end > len(matches) {
		end = len(matches)
	}
	return matches[start:end], nil
}

// Len reports the number of stored documents.
func (m *MemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}

// Get returns a stored document by FAQ id.
func (m *MemoryIndex) Get(id string) (faq.Document, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[id]
	return doc, ok
}

var _ faq.DocumentIndex = (*MemoryIndex)(nil)
