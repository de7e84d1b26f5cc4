package faqrepo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xreal/faqbase/internal/domain/faq"
)

func seedFAQs(t *testing.T, repo *MemoryFAQRepository) {
	t.Helper()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	seeds := []faq.FAQ{
		{Question: "alpha", Answer: "x", Active: true, Tags: []string{"audio"}, Timestamp: base},
		{Question: "bravo", Answer: "x", Active: false, Tags: []string{"video"}, Timestamp: base.Add(time.Hour)},
		{Question: "charlie", Answer: "x", Active: true, Tags: []string{"audio", "video"}, Timestamp: base.Add(2 * time.Hour)},
	}
	for i := range seeds {
		require.NoError(t, repo.Save(context.Background(), &seeds[i]))
	}
}

func TestMemorySaveAssignsIDs(t *testing.T) {
	repo := NewMemoryFAQRepository()
	record := faq.FAQ{Question: "q", Answer: "a"}
	require.NoError(t, repo.Save(context.Background(), &record))
	require.EqualValues(t, 1, record.ID)

	record.Answer = "updated"
	require.NoError(t, repo.Save(context.Background(), &record))

	got, found, err := repo.FindByID(context.Background(), record.ID)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "updated", got.Answer)

	missing := faq.FAQ{ID: 99, Question: "q", Answer: "a"}
	require.Error(t, repo.Save(context.Background(), &missing))
}

func TestMemoryListSortsAndPaginates(t *testing.T) {
	repo := NewMemoryFAQRepository()
	seedFAQs(t, repo)

	page, total, err := repo.List(context.Background(), nil, faq.PageRequest{
		Page: 0, Size: 2, Sort: faq.SortOrder{Field: "timestamp", Desc: true},
	})
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	require.Len(t, page, 2)
	require.Equal(t, "charlie", page[0].Question)
	require.Equal(t, "bravo", page[1].Question)

	rest, _, err := repo.List(context.Background(), nil, faq.PageRequest{
		Page: 1, Size: 2, Sort: faq.SortOrder{Field: "timestamp", Desc: true},
	})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	require.Equal(t, "alpha", rest[0].Question)
}

func TestMemoryFindByTagsUnion(t *testing.T) {
	repo := NewMemoryFAQRepository()
	seedFAQs(t, repo)

	page, total, err := repo.FindByTags(context.Background(), []string{"video"}, nil, faq.PageRequest{Size: 10})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, page, 2)

	active := true
	page, total, err = repo.FindByTags(context.Background(), []string{"video"}, &active, faq.PageRequest{Size: 10})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "charlie", page[0].Question)
}

func TestMemoryFindByQuestionFold(t *testing.T) {
	repo := NewMemoryFAQRepository()
	record := faq.FAQ{Question: "  How Do I Pair?  ", Answer: "a"}
	require.NoError(t, repo.Save(context.Background(), &record))

	got, found, err := repo.FindByQuestionFold(context.Background(), "how do i pair?")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, record.ID, got.ID)

	_, found, err = repo.FindByQuestionFold(context.Background(), "unknown")
	require.NoError(t, err)
	require.False(t, found)
}

func TestMemoryTagRepository(t *testing.T) {
	faqs := NewMemoryFAQRepository()
	tags := NewMemoryTagRepository(faqs)
	ctx := context.Background()

	require.NoError(t, tags.Save(ctx, faq.Tag{Name: "b", Active: true}))
	require.NoError(t, tags.Save(ctx, faq.Tag{Name: "a", Active: false}))

	all, err := tags.List(ctx)
	require.NoError(t, err)
	require.Equal(t, "a", all[0].Name)
	require.Equal(t, "b", all[1].Name)

	active, err := tags.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)

	record := faq.FAQ{Question: "q", Answer: "a", Tags: []string{"b"}}
	require.NoError(t, faqs.Save(ctx, &record))

	inUse, err := tags.InUse(ctx, "b")
	require.NoError(t, err)
	require.True(t, inUse)

	inUse, err = tags.InUse(ctx, "a")
	require.NoError(t, err)
	require.False(t, inUse)
}
