package faq_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xreal/faqbase/internal/domain/faq"
	"github.com/xreal/faqbase/internal/infra/embedder"
	"github.com/xreal/faqbase/internal/infra/faqindex"
	"github.com/xreal/faqbase/internal/infra/faqrepo"
	apperrors "github.com/xreal/faqbase/pkg/errors"
)

type fixture struct {
	svc   faq.Service
	tags  faq.TagRepository
	index *faqindex.MemoryIndex
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	faqs := faqrepo.NewMemoryFAQRepository()
	tags := faqrepo.NewMemoryTagRepository(faqs)
	index := faqindex.NewMemoryIndex()
	syncer := faq.NewSyncer(faq.SyncConfig{BatchSize: 10, Timeout: time.Second, AsyncThreshold: 50, Dimensions: 8},
		index, embedder.NewDeterministicEmbedder(8), nil, logger)
	return fixture{
		svc:   faq.NewService(faqs, tags, syncer, logger),
		tags:  tags,
		index: index,
	}
}

func (f fixture) addTag(t *testing.T, name string, active bool) {
	t.Helper()
	require.NoError(t, f.tags.Save(context.Background(), faq.Tag{Name: name, Active: active}))
}

func TestCreateFAQProjectsIntoIndex(t *testing.T) {
	f := newFixture(t)
	f.addTag(t, "setup", true)

	resp, err := f.svc.Create(context.Background(), faq.Request{
		Question: "How do I reset?",
		Answer:   "Hold the power button.",
		Tags:     []string{"setup"},
	})
	require.NoError(t, err)
	require.NotZero(t, resp.ID)
	require.True(t, resp.Active)
	require.Equal(t, []string{"setup"}, resp.Tags)

	doc, ok := f.index.Get("1")
	require.True(t, ok)
	require.Contains(t, doc.Content, "Question: How do I reset?")
	require.Contains(t, doc.Content, "Tags: setup")
	require.Len(t, doc.Embedding, 8)
}

func TestCreateFAQValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), faq.Request{Question: "  ", Answer: "a"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	_, err = f.svc.Create(context.Background(), faq.Request{Question: "q", Answer: " "})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestCreateFAQRejectsUnknownTag(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), faq.Request{Question: "q", Answer: "a", Tags: []string{"nope"}})
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestCreateFAQRejectsInactiveTag(t *testing.T) {
	f := newFixture(t)
	f.addTag(t, "legacy", false)

	_, err := f.svc.Create(context.Background(), faq.Request{Question: "q", Answer: "a", Tags: []string{"legacy"}})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestUpdateFAQ(t *testing.T) {
	f := newFixture(t)
	created, err := f.svc.Create(context.Background(), faq.Request{Question: "q", Answer: "a"})
	require.NoError(t, err)

	inactive := false
	updated, err := f.svc.Update(context.Background(), created.ID, faq.Request{
		Question: "q2", Answer: "a2", Active: &inactive,
	})
	require.NoError(t, err)
	require.Equal(t, created.ID, updated.ID)
	require.Equal(t, "q2", updated.Question)
	require.False(t, updated.Active)

	doc, ok := f.index.Get("1")
	require.True(t, ok)
	require.Contains(t, doc.Content, "Question: q2")
}

func TestUpdateMissingFAQ(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Update(context.Background(), 42, faq.Request{Question: "q", Answer: "a"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestListFAQsPagination(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 5; i++ {
		_, err := f.svc.Create(context.Background(), faq.Request{Question: string(rune('a' + i)), Answer: "x"})
		require.NoError(t, err)
	}

	page, err := f.svc.List(context.Background(), nil, faq.PageRequest{Page: 0, Size: 2, Sort: faq.SortOrder{Field: "id", Desc: false}})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.EqualValues(t, 5, page.TotalElements)
	require.Equal(t, 3, page.TotalPages)
	require.EqualValues(t, 1, page.Items[0].ID)

	last, err := f.svc.List(context.Background(), nil, faq.PageRequest{Page: 2, Size: 2, Sort: faq.SortOrder{Field: "id", Desc: false}})
	require.NoError(t, err)
	require.Len(t, last.Items, 1)
}

func TestListFAQsActiveFilter(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(context.Background(), faq.Request{Question: "on", Answer: "x"})
	require.NoError(t, err)
	off := false
	_, err = f.svc.Create(context.Background(), faq.Request{Question: "off", Answer: "x", Active: &off})
	require.NoError(t, err)

	active := true
	page, err := f.svc.List(context.Background(), &active, faq.PageRequest{Size: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, "on", page.Items[0].Question)
}

func TestSearchByTags(t *testing.T) {
	f := newFixture(t)
	f.addTag(t, "audio", true)
	f.addTag(t, "video", true)
	_, err := f.svc.Create(context.Background(), faq.Request{Question: "sound?", Answer: "x", Tags: []string{"audio"}})
	require.NoError(t, err)
	_, err = f.svc.Create(context.Background(), faq.Request{Question: "display?", Answer: "x", Tags: []string{"video"}})
	require.NoError(t, err)
	_, err = f.svc.Create(context.Background(), faq.Request{Question: "untagged?", Answer: "x"})
	require.NoError(t, err)

	page, err := f.svc.SearchByTags(context.Background(), []string{"audio", "video"}, nil, faq.PageRequest{Size: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)

	// Blank tag filter falls back to a plain listing.
	page, err = f.svc.SearchByTags(context.Background(), []string{" ", ""}, nil, faq.PageRequest{Size: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
}

func TestDeleteFAQRemovesDocument(t *testing.T) {
	f := newFixture(t)
	created, err := f.svc.Create(context.Background(), faq.Request{Question: "q", Answer: "a"})
	require.NoError(t, err)
	require.Equal(t, 1, f.index.Len())

	require.NoError(t, f.svc.Delete(context.Background(), created.ID))
	require.Zero(t, f.index.Len())

	err = f.svc.Delete(context.Background(), created.ID)
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestDeleteAllWipesIndex(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 3; i++ {
		_, err := f.svc.Create(context.Background(), faq.Request{Question: string(rune('a' + i)), Answer: "x"})
		require.NoError(t, err)
	}
	require.Equal(t, 3, f.index.Len())

	require.NoError(t, f.svc.DeleteAll(context.Background()))
	require.Zero(t, f.index.Len())

	page, err := f.svc.List(context.Background(), nil, faq.PageRequest{Size: 10})
	require.NoError(t, err)
	require.Empty(t, page.Items)
}
