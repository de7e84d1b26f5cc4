package faqindex

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xreal/faqbase/internal/domain/faq"
)

func seedDocuments(t *testing.T, idx *MemoryIndex) {
	t.Helper()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	docs := []faq.Document{
		{ID: "1", Content: "a", Metadata: faq.DocumentMetadata{Tags: []string{"audio"}, Active: true, Timestamp: base}},
		{ID: "2", Content: "b", Metadata: faq.DocumentMetadata{Tags: []string{"video"}, Active: false, Timestamp: base.Add(time.Hour)}},
		{ID: "3", Content: "c", Metadata: faq.DocumentMetadata{Tags: []string{"audio", "video"}, Active: true, Timestamp: base.Add(2 * time.Hour)}},
	}
	require.NoError(t, idx.SaveAll(context.Background(), docs))
}

func TestMemoryIndexSearchByTags(t *testing.T) {
	idx := NewMemoryIndex()
	seedDocuments(t, idx)

	docs, err := idx.SearchByTags(context.Background(), []string{"video"}, nil, faq.PageRequest{Size: 10})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	require.Equal(t, "3", docs[0].ID)
	require.Equal(t, "2", docs[1].ID)

	active := true
	docs, err = idx.SearchByTags(context.Background(), []string{"video"}, &active, faq.PageRequest{Size: 10})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, "3", docs[0].ID)
}

func TestMemoryIndexSearchPaging(t *testing.T) {
	idx := NewMemoryIndex()
	seedDocuments(t, idx)

	first, err := idx.SearchByTags(context.Background(), []string{"audio", "video"}, nil, faq.PageRequest{Page: 0, Size: 2})
	require.NoError(t, err)
	require.Len(t, first, 2)

	rest, err := idx.SearchByTags(context.Background(), []string{"audio", "video"}, nil, faq.PageRequest{Page: 1, Size: 2})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	require.Equal(t, "1", rest[0].ID)
}

func TestMemoryIndexSaveReplacesByID(t *testing.T) {
	idx := NewMemoryIndex()
	require.NoError(t, idx.Save(context.Background(), faq.Document{ID: "1", Content: "old"}))
	require.NoError(t, idx.Save(context.Background(), faq.Document{ID: "1", Content: "new"}))

	require.Equal(t, 1, idx.Len())
	doc, ok := idx.Get("1")
	require.True(t, ok)
	require.Equal(t, "new", doc.Content)

	require.NoError(t, idx.DeleteByID(context.Background(), "1"))
	require.Zero(t, idx.Len())
}
