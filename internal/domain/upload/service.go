package upload

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/xreal/faqbase/internal/domain/faq"
	apperrors "github.com/xreal/faqbase/pkg/errors"
)

// Config holds the importer settings.
type Config struct {
	// TagSheet names the tab carrying tag definitions.
	TagSheet string
	// FAQSheet names the tab carrying FAQ rows.
	FAQSheet string
	// MaxFileBytes rejects uploads larger than this. Zero disables the check.
	MaxFileBytes int64
}

// Summary reports the outcome of one import run.
type Summary struct {
	TotalFAQsProcessed int      `json:"totalFaqsProcessed"`
	FAQsImported       int      `json:"faqsImported"`
	FAQsUpdated        int      `json:"faqsUpdated"`
	FAQsSkipped        int      `json:"faqsSkipped"`
	TotalTagsProcessed int      `json:"totalTagsProcessed"`
	TagsImported       int      `json:"tagsImported"`
	TagsUpdated        int      `json:"tagsUpdated"`
	UnrecognizedTags   []string `json:"unrecognizedTags"`
	Message            string   `json:"message"`
	ProcessingMs       int64    `json:"processingTimeMs"`
	UploadID           string   `json:"uploadId"`
}

// Service imports tags and FAQs from a spreadsheet. The tag sheet is applied
// first so new tags are recognizable by the FAQ rows in the same file.
type Service struct {
	cfg    Config
	opener WorkbookOpener
	faqs   faq.FAQRepository
	tags   faq.TagRepository
	syncer *faq.Syncer
	logger *slog.Logger
}

func NewService(cfg Config, opener WorkbookOpener, faqs faq.FAQRepository, tags faq.TagRepository, syncer *faq.Syncer, logger *slog.Logger) *Service {
	if cfg.TagSheet == "" {
		cfg.TagSheet = "tag"
	}
	if cfg.FAQSheet == "" {
		cfg.FAQSheet = "xreal_tech_faq"
	}
	return &Service{
		cfg:    cfg,
		opener: opener,
		faqs:   faqs,
		tags:   tags,
		syncer: syncer,
		logger: logger.With("component", "upload.service"),
	}
}

// Import parses the workbook, applies the tag sheet, then the FAQ sheet, and
// finally hands every persisted FAQ to the sync engine in one batch.
func (s *Service) Import(ctx context.Context, data []byte) (Summary, error) {
	started := time.Now()
	uploadID := uuid.New().String()
	log := s.logger.With("upload_id", uploadID)

	if s.cfg.MaxFileBytes > 0 && int64(len(data)) > s.cfg.MaxFileBytes {
		return Summary{}, apperrors.Wrap(apperrors.CodeInvalidInput,
			fmt.Sprintf("file exceeds the %d byte limit", s.cfg.MaxFileBytes), nil)
	}
	if len(data) == 0 {
		return Summary{}, apperrors.Wrap(apperrors.CodeInvalidInput, "uploaded file is empty", nil)
	}

	wb, err := s.opener.Open(data)
	if err != nil {
		return Summary{}, apperrors.Wrap(apperrors.CodeInvalidInput, "failed to parse spreadsheet", err)
	}

	summary := Summary{UploadID: uploadID, UnrecognizedTags: []string{}}

	// Both sheets and both header rows are validated before any row is
	// written, so a malformed workbook aborts without touching the database.
	tagSheet, err := s.sheet(wb, s.cfg.TagSheet)
	if err != nil {
		return Summary{}, err
	}
	tagIdx, err := tagColumns(tagSheet.Rows[0])
	if err != nil {
		return Summary{}, err
	}
	faqSheet, err := s.sheet(wb, s.cfg.FAQSheet)
	if err != nil {
		return Summary{}, err
	}
	faqIdx, err := faqColumns(faqSheet.Rows[0])
	if err != nil {
		return Summary{}, err
	}

	// Tag references in the FAQ sheet resolve against this workbook's tag
	// sheet only, never the whole stored vocabulary.
	known, err := s.importTags(ctx, log, tagSheet, tagIdx, &summary)
	if err != nil {
		return Summary{}, err
	}

	// The accumulator is scoped to this run and travels by parameter, so
	// concurrent imports never see each other's pending FAQs.
	synced, err := s.importFAQs(ctx, log, faqSheet, faqIdx, known, &summary)
	if err != nil {
		return Summary{}, err
	}

	s.syncer.Dispatch(ctx, synced)

	summary.ProcessingMs = time.Since(started).Milliseconds()
	summary.Message = fmt.Sprintf("Processed %d FAQs (%d imported, %d updated, %d skipped) and %d tags",
		summary.TotalFAQsProcessed, summary.FAQsImported, summary.FAQsUpdated, summary.FAQsSkipped, summary.TotalTagsProcessed)
	log.Info("import completed",
		"faqs_processed", summary.TotalFAQsProcessed,
		"faqs_imported", summary.FAQsImported,
		"faqs_updated", summary.FAQsUpdated,
		"faqs_skipped", summary.FAQsSkipped,
		"tags_processed", summary.TotalTagsProcessed,
		"unrecognized_tags", len(summary.UnrecognizedTags),
		"duration_ms", summary.ProcessingMs)
	return summary, nil
}

// sheet fetches a tab and requires it to carry at least a header row.
func (s *Service) sheet(wb Workbook, name string) (Sheet, error) {
	sheet, ok := wb.Sheet(name)
	if !ok {
		return Sheet{}, apperrors.Wrap(apperrors.CodeInvalidInput,
			fmt.Sprintf("workbook has no sheet named %q", name), nil)
	}
	if len(sheet.Rows) == 0 {
		return Sheet{}, apperrors.Wrap(apperrors.CodeInvalidInput,
			fmt.Sprintf("sheet %q has no header row", name), nil)
	}
	return sheet, nil
}

// importTags applies the tag sheet and returns the names of the active tags
// it carried, which form the recognition set for the FAQ rows.
func (s *Service) importTags(ctx context.Context, log *slog.Logger, sheet Sheet, cols tagCols, summary *Summary) (map[string]struct{}, error) {
	known := make(map[string]struct{})
	for _, row := range sheet.Rows[1:] {
		name := strings.TrimSpace(sheet.Cell(row, cols.name))
		if name == "" {
			continue
		}
		summary.TotalTagsProcessed++
		desc := strings.TrimSpace(sheet.Cell(row, cols.description))
		active := true
		if cols.active != -1 {
			active = parseActive(sheet.Cell(row, cols.active))
		}

		existing, found, err := s.tags.FindByName(ctx, name)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeStorage, "failed to look up tag", err)
		}
		if found {
			changed := false
			// An empty description cell means absent, it never clears a
			// stored description.
			if desc != "" && existing.Description != desc {
				existing.Description = desc
				changed = true
			}
			if existing.Active != active {
				existing.Active = active
				changed = true
			}
			if changed {
				if err := s.tags.Save(ctx, existing); err != nil {
					return nil, apperrors.Wrap(apperrors.CodeStorage, "failed to update tag", err)
				}
				summary.TagsUpdated++
			}
		} else {
			if err := s.tags.Save(ctx, faq.Tag{Name: name, Description: desc, Active: active}); err != nil {
				return nil, apperrors.Wrap(apperrors.CodeStorage, "failed to save tag", err)
			}
			summary.TagsImported++
		}
		if active {
			known[name] = struct{}{}
		}
	}
	log.Info("tag sheet applied", "processed", summary.TotalTagsProcessed,
		"imported", summary.TagsImported, "updated", summary.TagsUpdated)
	return known, nil
}

func (s *Service) importFAQs(ctx context.Context, log *slog.Logger, sheet Sheet, cols faqCols, known map[string]struct{}, summary *Summary) ([]faq.FAQ, error) {
	var synced []faq.FAQ
	unrecognized := make(map[string]struct{})
	for _, row := range sheet.Rows[1:] {
		question := strings.TrimSpace(sheet.Cell(row, cols.question))
		answer := strings.TrimSpace(sheet.Cell(row, cols.answer))
		if question == "" && answer == "" {
			continue
		}
		if question == "" || answer == "" {
			summary.FAQsSkipped++
			continue
		}
		summary.TotalFAQsProcessed++

		rawTags := sheet.Cell(row, cols.tags)
		tags, unknown := splitTags(rawTags, known)
		for _, t := range unknown {
			unrecognized[t] = struct{}{}
		}

		existing, found, err := s.faqs.FindByQuestionFold(ctx, question)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeStorage, "failed to look up FAQ by question", err)
		}

		// Updates start from the stored record so columns the workbook does
		// not carry leave the stored values alone.
		record := existing
		record.Question = question
		record.Answer = answer
		record.Active = true
		if cols.instruction != -1 {
			record.Instruction = strings.TrimSpace(sheet.Cell(row, cols.instruction))
		}
		if cols.url != -1 {
			record.URL = strings.TrimSpace(sheet.Cell(row, cols.url))
		}
		if cols.comment != -1 {
			record.Comment = strings.TrimSpace(sheet.Cell(row, cols.comment))
		}
		if !found || strings.TrimSpace(rawTags) != "" {
			record.Tags = tags
		}

		if found {
			if sameFAQ(record, existing) {
				continue
			}
			summary.FAQsUpdated++
		} else {
			summary.FAQsImported++
		}
		record.Timestamp = time.Now().UTC()
		if err := s.faqs.Save(ctx, &record); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeStorage, "failed to save imported FAQ", err)
		}
		synced = append(synced, record)
	}

	for t := range unrecognized {
		summary.UnrecognizedTags = append(summary.UnrecognizedTags, t)
	}
	sort.Strings(summary.UnrecognizedTags)
	if len(summary.UnrecognizedTags) > 0 {
		log.Warn("dropped unrecognized tags", "tags", summary.UnrecognizedTags)
	}
	return synced, nil
}

// sameFAQ reports whether the row leaves the stored record unchanged, the
// timestamp aside.
func sameFAQ(a, b faq.FAQ) bool {
	if a.Question != b.Question || a.Answer != b.Answer || a.Instruction != b.Instruction ||
		a.URL != b.URL || a.Comment != b.Comment || a.Active != b.Active {
		return false
	}
	if len(a.Tags) != len(b.Tags) {
		return false
	}
	for i := range a.Tags {
		if a.Tags[i] != b.Tags[i] {
			return false
		}
	}
	return true
}

type tagCols struct {
	name, description, active int
}

// tagColumns maps the tag sheet header case-insensitively. Only name is
// required.
func tagColumns(header []string) (tagCols, error) {
	cols := tagCols{name: -1, description: -1, active: -1}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "name":
			cols.name = i
		case "description":
			cols.description = i
		case "active":
			cols.active = i
		}
	}
	if cols.name == -1 {
		return tagCols{}, apperrors.Wrap(apperrors.CodeInvalidInput, "tag sheet is missing the name column", nil)
	}
	return cols, nil
}

type faqCols struct {
	question, answer, tags, comment, instruction, url int
}

// faqColumns maps the FAQ sheet header by exact name. Question and Answer
// are required.
func faqColumns(header []string) (faqCols, error) {
	cols := faqCols{question: -1, answer: -1, tags: -1, comment: -1, instruction: -1, url: -1}
	for i, h := range header {
		switch strings.TrimSpace(h) {
		case "Question":
			cols.question = i
		case "Answer":
			cols.answer = i
		case "Tags":
			cols.tags = i
		case "Comment":
			cols.comment = i
		case "Instruction":
			cols.instruction = i
		case "Url":
			cols.url = i
		}
	}
	if cols.question == -1 || cols.answer == -1 {
		return faqCols{}, apperrors.Wrap(apperrors.CodeInvalidInput, "FAQ sheet must have Question and Answer columns", nil)
	}
	return cols, nil
}

// parseActive only applies when the sheet carries an active column; a blank
// cell under that column deactivates the tag.
func parseActive(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

// splitTags partitions a comma separated tag cell into recognized active tag
// names and everything else. The recognized list is deduplicated and sorted.
func splitTags(raw string, known map[string]struct{}) (tags []string, unknown []string) {
	seen := make(map[string]struct{})
	for _, part := range strings.Split(raw, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		if _, ok := known[name]; ok {
			tags = append(tags, name)
		} else {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(tags)
	return tags, unknown
}
