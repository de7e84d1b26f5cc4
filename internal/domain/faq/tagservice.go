package faq

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	apperrors "github.com/xreal/faqbase/pkg/errors"
)

const maxTagNameLength = 100

// TagService manages the tag vocabulary. Tag names are identities and never
// change; deactivating a tag hides it without touching existing FAQs.
type TagService interface {
	Create(ctx context.Context, req TagRequest) (TagResponse, error)
	Update(ctx context.Context, name string, req TagRequest) (TagResponse, error)
	Get(ctx context.Context, name string) (TagResponse, error)
	List(ctx context.Context) ([]TagResponse, error)
	ListActive(ctx context.Context) ([]TagResponse, error)
	Delete(ctx context.Context, name string) error
}

type tagService struct {
	tags   TagRepository
	logger *slog.Logger
}

func NewTagService(tags TagRepository, logger *slog.Logger) TagService {
	return &tagService{
		tags:   tags,
		logger: logger.With("component", "faq.tagservice"),
	}
}

func (s *tagService) Create(ctx context.Context, req TagRequest) (TagResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return TagResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "tag name must not be blank", nil)
	}
	if len(name) > maxTagNameLength {
		return TagResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("tag name must not exceed %d characters", maxTagNameLength), nil)
	}
	exists, err := s.tags.Exists(ctx, name)
	if err != nil {
		return TagResponse{}, apperrors.Wrap(apperrors.CodeStorage, "failed to check tag", err)
	}
	if exists {
		return TagResponse{}, apperrors.Wrap(apperrors.CodeConflict, fmt.Sprintf("tag %q already exists", name), nil)
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	tag := Tag{Name: name, Description: strings.TrimSpace(req.Description), Active: active}
	if err := s.tags.Save(ctx, tag); err != nil {
		return TagResponse{}, apperrors.Wrap(apperrors.CodeStorage, "failed to save tag", err)
	}
	s.logger.Info("tag created", "tag", name)
	return toTagResponse(tag), nil
}

func (s *tagService) Update(ctx context.Context, name string, req TagRequest) (TagResponse, error) {
	tag, found, err := s.tags.FindByName(ctx, name)
	if err != nil {
		return TagResponse{}, apperrors.Wrap(apperrors.CodeStorage, "failed to load tag", err)
	}
	if !found {
		return TagResponse{}, apperrors.Wrap(apperrors.CodeNotFound, fmt.Sprintf("tag %q not found", name), nil)
	}
	if requested := strings.TrimSpace(req.Name); requested != "" && requested != tag.Name {
		return TagResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "tag name cannot be changed", nil)
	}
	tag.Description = strings.TrimSpace(req.Description)
	if req.Active != nil {
		tag.Active = *req.Active
	}
	if err := s.tags.Save(ctx, tag); err != nil {
		return TagResponse{}, apperrors.Wrap(apperrors.CodeStorage, "failed to update tag", err)
	}
	s.logger.Info("tag updated", "tag", tag.Name, "active", tag.Active)
	return toTagResponse(tag), nil
}

func (s *tagService) Get(ctx context.Context, name string) (TagResponse, error) {
	tag, found, err := s.tags.FindByName(ctx, name)
	if err != nil {
		return TagResponse{}, apperrors.Wrap(apperrors.CodeStorage, "failed to load tag", err)
	}
	if !found {
		return TagResponse{}, apperrors.Wrap(apperrors.CodeNotFound, fmt.Sprintf("tag %q not found", name), nil)
	}
	return toTagResponse(tag), nil
}

func (s *tagService) List(ctx context.Context) ([]TagResponse, error) {
	tags, err := s.tags.List(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorage, "failed to list tags", err)
	}
	return toTagResponses(tags), nil
}

func (s *tagService) ListActive(ctx context.Context) ([]TagResponse, error) {
	tags, err := s.tags.ListActive(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorage, "failed to list active tags", err)
	}
	return toTagResponses(tags), nil
}

func (s *tagService) Delete(ctx context.Context, name string) error {
	exists, err := s.tags.Exists(ctx, name)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeStorage, "failed to check tag", err)
	}
	if !exists {
		return apperrors.Wrap(apperrors.CodeNotFound, fmt.Sprintf("tag %q not found", name), nil)
	}
	inUse, err := s.tags.InUse(ctx, name)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeStorage, "failed to check tag references", err)
	}
	if inUse {
		return apperrors.Wrap(apperrors.CodeConflict, fmt.Sprintf("tag %q is referenced by existing FAQs", name), nil)
	}
	if err := s.tags.Delete(ctx, name); err != nil {
		return apperrors.Wrap(apperrors.CodeStorage, "failed to delete tag", err)
	}
	s.logger.Info("tag deleted", "tag", name)
	return nil
}

func toTagResponse(t Tag) TagResponse {
	return TagResponse{Name: t.Name, Description: t.Description, Active: t.Active}
}

func toTagResponses(tags []Tag) []TagResponse {
	out := make([]TagResponse, 0, len(tags))
	for _, t := range tags {
		out = append(out, toTagResponse(t))
	}
	return out
}
