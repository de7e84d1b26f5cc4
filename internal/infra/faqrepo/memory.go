package faqrepo

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/xreal/faqbase/internal/domain/faq"
)

// MemoryFAQRepository is an in-memory faq.FAQRepository used when no
// Postgres DSN is configured and in tests.
type MemoryFAQRepository struct {
	mu     sync.RWMutex
	nextID int64
	faqs   map[int64]faq.FAQ
}

// NewMemoryFAQRepository constructs an empty repository.
func NewMemoryFAQRepository() *MemoryFAQRepository {
	return &MemoryFAQRepository{nextID: 1, faqs: make(map[int64]faq.FAQ)}
}

func (r *MemoryFAQRepository) Save(_ context.Context, f *faq.FAQ) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f.ID == 0 {
		f.ID = r.nextID
		r.nextID++
	} else if _, ok := r.faqs[f.ID]; !ok {
		return fmt.Errorf("faq %d does not exist", f.ID)
	}
	clone := *f
	clone.Tags = append([]string(nil), f.Tags...)
	r.faqs[f.ID] = clone
	return nil
}

func (r *MemoryFAQRepository) FindByID(_ context.Context, id int64) (faq.FAQ, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.faqs[id]
	if !ok {
		return faq.FAQ{}, false, nil
	}
	return cloneFAQ(f), true, nil
}

func (r *MemoryFAQRepository) FindByQuestionFold(_ context.Context, question string) (faq.FAQ, bool, error) {
	needle := strings.ToLower(strings.TrimSpace(question))
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, f := range r.faqs {
		if strings.ToLower(strings.TrimSpace(f.Question)) == needle {
			return cloneFAQ(f), true, nil
		}
	}
	return faq.FAQ{}, false, nil
}

func (r *MemoryFAQRepository) List(_ context.Context, active *bool, page faq.PageRequest) ([]faq.FAQ, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return paginate(r.filter(active, nil), page)
}

func (r *MemoryFAQRepository) FindByTags(_ context.Context, tags []string, active *bool, page faq.PageRequest) ([]faq.FAQ, int64, error) {
	wanted := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		wanted[t] = struct{}{}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return paginate(r.filter(active, wanted), page)
}

func (r *MemoryFAQRepository) Exists(_ context.Context, id int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.faqs[id]
	return ok, nil
}

func (r *MemoryFAQRepository) Delete(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.faqs[id]; !ok {
		return false, nil
	}
	delete(r.faqs, id)
	return true, nil
}

func (r *MemoryFAQRepository) DeleteAll(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.faqs = make(map[int64]faq.FAQ)
	return nil
}

// filter returns matching FAQs. wanted nil means no tag filter; non-nil
// means at least one tag must match.
func (r *MemoryFAQRepository) filter(active *bool, wanted map[string]struct{}) []faq.FAQ {
	var out []faq.FAQ
	for _, f := range r.faqs {
		if active != nil && f.Active != *active {
			continue
		}
		if wanted != nil {
			hit := false
			for _, t := range f.Tags {
				if _, ok := wanted[t]; ok {
					hit = true
					break
				}
			}
			if !hit {
				continue
			}
		}
		out = append(out, cloneFAQ(f))
	}
	return out
}

func paginate(faqs []faq.FAQ, page faq.PageRequest) ([]faq.FAQ, int64, error) {
	sortFAQs(faqs, page.Sort)
	total := int64(len(faqs))
	start := page.Offset()
	if start >= len(faqs) {
		return []faq.FAQ{}, total, nil
	}
	end := start + page.Size
	if page.Size <= 0 || end > len(faqs) {
		end = len(faqs)
	}
	return faqs[start:end], total, nil
}

func sortFAQs(faqs []faq.FAQ, order faq.SortOrder) {
	less := func(a, b faq.FAQ) bool { return a.Timestamp.Before(b.Timestamp) }
	switch order.Field {
	case "id":
		less = func(a, b faq.FAQ) bool { return a.ID < b.ID }
	case "question":
		less = func(a, b faq.FAQ) bool { return a.Question < b.Question }
	case "answer":
		less = func(a, b faq.FAQ) bool { return a.Answer < b.Answer }
	case "active":
		less = func(a, b faq.FAQ) bool { return !a.Active && b.Active }
	}
	sort.SliceStable(faqs, func(i, j int) bool {
		if order.Desc {
			return less(faqs[j], faqs[i])
		}
		return less(faqs[i], faqs[j])
	})
}

func cloneFAQ(f faq.FAQ) faq.FAQ {
	clone := f
	clone.Tags = append([]string(nil), f.Tags...)
	return clone
}

var _ faq.FAQRepository = (*MemoryFAQRepository)(nil)

// MemoryTagRepository is an in-memory faq.TagRepository. InUse needs the
// FAQ repository to inspect associations.
type MemoryTagRepository struct {
	mu   sync.RWMutex
	tags map[string]faq.Tag
	faqs *MemoryFAQRepository
}

// NewMemoryTagRepository constructs an empty repository sharing the given
// FAQ store for reference checks.
func NewMemoryTagRepository(faqs *MemoryFAQRepository) *MemoryTagRepository {
	return &MemoryTagRepository{tags: make(map[string]faq.Tag), faqs: faqs}
}

func (r *MemoryTagRepository) Save(_ context.Context, tag faq.Tag) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tags[tag.Name] = tag
	return nil
}

func (r *MemoryTagRepository) FindByName(_ context.Context, name string) (faq.Tag, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tag, ok := r.tags[name]
	return tag, ok, nil
}

func (r *MemoryTagRepository) Exists(_ context.Context, name string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tags[name]
	return ok, nil
}

func (r *MemoryTagRepository) List(_ context.Context) ([]faq.Tag, error) {
	return r.collect(func(faq.Tag) bool { return true }), nil
}

func (r *MemoryTagRepository) ListActive(_ context.Context) ([]faq.Tag, error) {
	return r.collect(func(t faq.Tag) bool { return t.Active }), nil
}

func (r *MemoryTagRepository) InUse(_ context.Context, name string) (bool, error) {
	if r.faqs == nil {
		return false, nil
	}
	r.faqs.mu.RLock()
	defer r.faqs.mu.RUnlock()
	for _, f := range r.faqs.faqs {
		for _, t := range f.Tags {
			if t == name {
				return true, nil
			}
		}
	}
	return false, nil
}

func (r *MemoryTagRepository) Delete(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tags, name)
	return nil
}

func (r *MemoryTagRepository) collect(keep func(faq.Tag) bool) []faq.Tag {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]faq.Tag, 0, len(r.tags))
	for _, t := range r.tags {
		if keep(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

var _ faq.TagRepository = (*MemoryTagRepository)(nil)
