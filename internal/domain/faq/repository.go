package faq

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/xreal/faqbase/pkg/errors"
)

// PageRequest describes pagination and ordering for list queries.
type PageRequest struct {
	Page int
	Size int
	Sort SortOrder
}

// Offset returns the row offset for the requested page.
func (p PageRequest) Offset() int {
	if p.Page <= 0 {
		return 0
	}
	return p.Page * p.Size
}

// SortOrder is a single-field ordering.
type SortOrder struct {
	Field string
	Desc  bool
}

var sortableFields = map[string]struct{}{
	"id":        {},
	"question":  {},
	"answer":    {},
	"active":    {},
	"timestamp": {},
}

// ParseSort parses a "field,direction" expression against the sortable
// field whitelist. An empty expression falls back to timestamp,desc.
func ParseSort(raw string) (SortOrder, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return SortOrder{Field: "timestamp", Desc: true}, nil
	}
	parts := strings.Split(raw, ",")
	field := strings.TrimSpace(parts[0])
	if _, ok := sortableFields[field]; !ok {
		return SortOrder{}, apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("cannot sort by field %q", field), nil)
	}
	desc := true
	if len(parts) > 1 && strings.EqualFold(strings.TrimSpace(parts[1]), "asc") {
		desc = false
	}
	return SortOrder{Field: field, Desc: desc}, nil
}

// FAQRepository is the primary-store contract for FAQ rows and their tag
// associations. Save persists the record and its associations atomically,
// assigning ID on insert.
type FAQRepository interface {
	Save(ctx context.Context, f *FAQ) error
	FindByID(ctx context.Context, id int64) (FAQ, bool, error)
	FindByQuestionFold(ctx context.Context, question string) (FAQ, bool, error)
	List(ctx context.Context, active *bool, page PageRequest) ([]FAQ, int64, error)
	FindByTags(ctx context.Context, tags []string, active *bool, page PageRequest) ([]FAQ, int64, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	DeleteAll(ctx context.Context) error
}

// TagRepository is the primary-store contract for tags.
type TagRepository interface {
	Save(ctx context.Context, tag Tag) error
	FindByName(ctx context.Context, name string) (Tag, bool, error)
	Exists(ctx context.Context, name string) (bool, error)
	List(ctx context.Context) ([]Tag, error)
	ListActive(ctx context.Context) ([]Tag, error)
	// InUse reports whether any FAQ association references the tag.
	InUse(ctx context.Context, name string) (bool, error)
	Delete(ctx context.Context, name string) error
}
