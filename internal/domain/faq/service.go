package faq

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	apperrors "github.com/xreal/faqbase/pkg/errors"
)

const maxURLLength = 500

// Service exposes the FAQ lifecycle: CRUD against the primary store plus a
// best-effort projection into the search index after each committed write.
type Service interface {
	Create(ctx context.Context, req Request) (Response, error)
	Update(ctx context.Context, id int64, req Request) (Response, error)
	Get(ctx context.Context, id int64) (Response, error)
	List(ctx context.Context, active *bool, page PageRequest) (Page, error)
	SearchByTags(ctx context.Context, tags []string, active *bool, page PageRequest) (Page, error)
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error
}

type service struct {
	faqs   FAQRepository
	tags   TagRepository
	syncer *Syncer
	logger *slog.Logger
}

// NewService builds the FAQ service. syncer may be nil when no search index
// is configured.
func NewService(faqs FAQRepository, tags TagRepository, syncer *Syncer, logger *slog.Logger) Service {
	return &service{
		faqs:   faqs,
		tags:   tags,
		syncer: syncer,
		logger: logger.With("component", "faq.service"),
	}
}

func (s *service) Create(ctx context.Context, req Request) (Response, error) {
	f, err := s.validate(req)
	if err != nil {
		return Response{}, err
	}
	tags, err := s.resolveTags(ctx, req.Tags)
	if err != nil {
		return Response{}, err
	}
	f.Tags = tags
	f.Timestamp = time.Now().UTC()

	if err := s.faqs.Save(ctx, &f); err != nil {
		return Response{}, apperrors.Wrap(apperrors.CodeStorage, "failed to save FAQ", err)
	}
	s.logger.Info("FAQ created", "faq_id", f.ID)
	s.syncer.SyncOne(ctx, f)
	return toResponse(f), nil
}

func (s *service) Update(ctx context.Context, id int64, req Request) (Response, error) {
	existing, found, err := s.faqs.FindByID(ctx, id)
	if err != nil {
		return Response{}, apperrors.Wrap(apperrors.CodeStorage, "failed to load FAQ", err)
	}
	if !found {
		return Response{}, apperrors.Wrap(apperrors.CodeNotFound, fmt.Sprintf("FAQ %d not found", id), nil)
	}
	f, err := s.validate(req)
	if err != nil {
		return Response{}, err
	}
	tags, err := s.resolveTags(ctx, req.Tags)
	if err != nil {
		return Response{}, err
	}
	f.ID = existing.ID
	f.Tags = tags
	f.Timestamp = time.Now().UTC()

	if err := s.faqs.Save(ctx, &f); err != nil {
		return Response{}, apperrors.Wrap(apperrors.CodeStorage, "failed to update FAQ", err)
	}
	s.logger.Info("FAQ updated", "faq_id", f.ID)
	s.syncer.SyncOne(ctx, f)
	return toResponse(f), nil
}

func (s *service) Get(ctx context.Context, id int64) (Response, error) {
	f, found, err := s.faqs.FindByID(ctx, id)
	if err != nil {
		return Response{}, apperrors.Wrap(apperrors.CodeStorage, "failed to load FAQ", err)
	}
	if !found {
		return Response{}, apperrors.Wrap(apperrors.CodeNotFound, fmt.Sprintf("FAQ %d not found", id), nil)
	}
	return toResponse(f), nil
}

func (s *service) List(ctx context.Context, active *bool, page PageRequest) (Page, error) {
	faqs, total, err := s.faqs.List(ctx, active, page)
	if err != nil {
		return Page{}, apperrors.Wrap(apperrors.CodeStorage, "failed to list FAQs", err)
	}
	return toPage(faqs, total, page), nil
}

func (s *service) SearchByTags(ctx context.Context, tags []string, active *bool, page PageRequest) (Page, error) {
	cleaned := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			cleaned = append(cleaned, t)
		}
	}
	if len(cleaned) == 0 {
		return s.List(ctx, active, page)
	}
	faqs, total, err := s.faqs.FindByTags(ctx, cleaned, active, page)
	if err != nil {
		return Page{}, apperrors.Wrap(apperrors.CodeStorage, "failed to search FAQs by tags", err)
	}
	return toPage(faqs, total, page), nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	deleted, err := s.faqs.Delete(ctx, id)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeStorage, "failed to delete FAQ", err)
	}
	if !deleted {
		return apperrors.Wrap(apperrors.CodeNotFound, fmt.Sprintf("FAQ %d not found", id), nil)
	}
	s.logger.Info("FAQ deleted", "faq_id", id)
	s.syncer.DeleteOne(ctx, id)
	return nil
}

func (s *service) DeleteAll(ctx context.Context) error {
	if err := s.faqs.DeleteAll(ctx); err != nil {
		return apperrors.Wrap(apperrors.CodeStorage, "failed to delete all FAQs", err)
	}
	s.logger.Warn("all FAQs deleted")
	s.syncer.Wipe(ctx)
	return nil
}

func (s *service) validate(req Request) (FAQ, error) {
	question := strings.TrimSpace(req.Question)
	answer := strings.TrimSpace(req.Answer)
	if question == "" {
		return FAQ{}, apperrors.Wrap(apperrors.CodeInvalidInput, "question must not be blank", nil)
	}
	if answer == "" {
		return FAQ{}, apperrors.Wrap(apperrors.CodeInvalidInput, "answer must not be blank", nil)
	}
	url := strings.TrimSpace(req.URL)
	if len(url) > maxURLLength {
		return FAQ{}, apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("url must not exceed %d characters", maxURLLength), nil)
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	return FAQ{
		Question:    question,
		Answer:      answer,
		Instruction: strings.TrimSpace(req.Instruction),
		URL:         url,
		Active:      active,
		Comment:     strings.TrimSpace(req.Comment),
	}, nil
}

// resolveTags checks every requested tag against the tag store. Unknown tags
// reject the request; inactive ones do too, since they are hidden from the
// public tag list. The result is deduplicated and sorted.
func (s *service) resolveTags(ctx context.Context, names []string) ([]string, error) {
	seen := make(map[string]struct{}, len(names))
	resolved := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		tag, found, err := s.tags.FindByName(ctx, name)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeStorage, "failed to look up tag", err)
		}
		if !found {
			return nil, apperrors.Wrap(apperrors.CodeNotFound, fmt.Sprintf("tag %q not found", name), nil)
		}
		if !tag.Active {
			return nil, apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("tag %q is inactive", name), nil)
		}
		resolved = append(resolved, tag.Name)
	}
	sort.Strings(resolved)
	return resolved, nil
}

func toResponse(f FAQ) Response {
	tags := f.Tags
	if tags == nil {
		tags = []string{}
	}
	return Response{
		ID:          f.ID,
		Question:    f.Question,
		Answer:      f.Answer,
		Instruction: f.Instruction,
		URL:         f.URL,
		Active:      f.Active,
		Comment:     f.Comment,
		Timestamp:   f.Timestamp,
		Tags:        tags,
	}
}

func toPage(faqs []FAQ, total int64, page PageRequest) Page {
	items := make([]Response, 0, len(faqs))
	for _, f := range faqs {
		items = append(items, toResponse(f))
	}
	pages := 0
	if page.Size > 0 {
		pages = int((total + int64(page.Size) - 1) / int64(page.Size))
	}
	return Page{
		Items:         items,
		Page:          page.Page,
		Size:          page.Size,
		TotalElements: total,
		TotalPages:    pages,
	}
}
