package faq_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xreal/faqbase/internal/domain/faq"
	"github.com/xreal/faqbase/internal/infra/faqrepo"
	apperrors "github.com/xreal/faqbase/pkg/errors"
)

func newTagFixture() (faq.TagService, *faqrepo.MemoryFAQRepository) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	faqs := faqrepo.NewMemoryFAQRepository()
	tags := faqrepo.NewMemoryTagRepository(faqs)
	return faq.NewTagService(tags, logger), faqs
}

func TestCreateTagDefaultsActive(t *testing.T) {
	svc, _ := newTagFixture()

	resp, err := svc.Create(context.Background(), faq.TagRequest{Name: " hardware ", Description: "devices"})
	require.NoError(t, err)
	require.Equal(t, "hardware", resp.Name)
	require.True(t, resp.Active)
}

func TestCreateTagRejectsDuplicates(t *testing.T) {
	svc, _ := newTagFixture()
	_, err := svc.Create(context.Background(), faq.TagRequest{Name: "hardware"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), faq.TagRequest{Name: "hardware"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeConflict))
}

func TestCreateTagValidation(t *testing.T) {
	svc, _ := newTagFixture()

	_, err := svc.Create(context.Background(), faq.TagRequest{Name: "   "})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	long := make([]byte, 101)
	for i := range long {
		long[i] = 'x'
	}
	_, err = svc.Create(context.Background(), faq.TagRequest{Name: string(long)})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestUpdateTagNameIsImmutable(t *testing.T) {
	svc, _ := newTagFixture()
	_, err := svc.Create(context.Background(), faq.TagRequest{Name: "hardware"})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), "hardware", faq.TagRequest{Name: "devices"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	inactive := false
	resp, err := svc.Update(context.Background(), "hardware", faq.TagRequest{Name: "hardware", Description: "updated", Active: &inactive})
	require.NoError(t, err)
	require.Equal(t, "updated", resp.Description)
	require.False(t, resp.Active)
}

func TestUpdateMissingTag(t *testing.T) {
	svc, _ := newTagFixture()
	_, err := svc.Update(context.Background(), "nope", faq.TagRequest{})
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestListActiveTags(t *testing.T) {
	svc, _ := newTagFixture()
	_, err := svc.Create(context.Background(), faq.TagRequest{Name: "on"})
	require.NoError(t, err)
	off := false
	_, err = svc.Create(context.Background(), faq.TagRequest{Name: "off", Active: &off})
	require.NoError(t, err)

	all, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)

	active, err := svc.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, "on", active[0].Name)
}

func TestDeleteTagBlockedWhileReferenced(t *testing.T) {
	svc, faqs := newTagFixture()
	_, err := svc.Create(context.Background(), faq.TagRequest{Name: "hardware"})
	require.NoError(t, err)

	record := faq.FAQ{Question: "q", Answer: "a", Tags: []string{"hardware"}}
	require.NoError(t, faqs.Save(context.Background(), &record))

	err = svc.Delete(context.Background(), "hardware")
	require.True(t, apperrors.IsCode(err, apperrors.CodeConflict))

	_, err = faqs.Delete(context.Background(), record.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), "hardware"))

	err = svc.Delete(context.Background(), "hardware")
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}
