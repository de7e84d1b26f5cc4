package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xreal/faqbase/internal/domain/faq"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Handler exposes the FAQ, tag, and import endpoints.
type Handler struct {
	faqSvc    faq.Service
	tagSvc    faq.TagService
	uploadSvc UploadService
	logger    *slog.Logger
}

// NewHandler constructs the handler. uploadSvc may be nil when the importer
// is disabled.
func NewHandler(faqSvc faq.Service, tagSvc faq.TagService, uploadSvc UploadService, logger *slog.Logger) *Handler {
	return &Handler{
		faqSvc:    faqSvc,
		tagSvc:    tagSvc,
		uploadSvc: uploadSvc,
		logger:    logger.With("component", "http.handler"),
	}
}

// CreateFAQ handles POST /faqs.
func (h *Handler) CreateFAQ(c *gin.Context) {
	var req faq.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_input", errMessage(err), err))
		return
	}
	resp, err := h.faqSvc.Create(c.Request.Context(), req)
	if err != nil {
		abortAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// UpdateFAQ handles PUT /faqs/:id.
func (h *Handler) UpdateFAQ(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req faq.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_input", errMessage(err), err))
		return
	}
	resp, err := h.faqSvc.Update(c.Request.Context(), id, req)
	if err != nil {
		abortAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetFAQ handles GET /faqs/:id.
func (h *Handler) GetFAQ(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	resp, err := h.faqSvc.Get(c.Request.Context(), id)
	if err != nil {
		abortAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListFAQs handles GET /faqs.
func (h *Handler) ListFAQs(c *gin.Context) {
	page, ok := pageRequest(c)
	if !ok {
		return
	}
	resp, err := h.faqSvc.List(c.Request.Context(), activeFilter(c), page)
	if err != nil {
		abortAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SearchFAQs handles GET /faqs/search.
func (h *Handler) SearchFAQs(c *gin.Context) {
	page, ok := pageRequest(c)
	if !ok {
		return
	}
	tags := splitParam(c.QueryArray("tags"))
	resp, err := h.faqSvc.SearchByTags(c.Request.Context(), tags, activeFilter(c), page)
	if err != nil {
		abortAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteFAQ handles DELETE /faqs/:id.
func (h *Handler) DeleteFAQ(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.faqSvc.Delete(c.Request.Context(), id); err != nil {
		abortAppError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteAllFAQs handles DELETE /faqs/all.
func (h *Handler) DeleteAllFAQs(c *gin.Context) {
	if err := h.faqSvc.DeleteAll(c.Request.Context()); err != nil {
		abortAppError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateTag handles POST /tags.
func (h *Handler) CreateTag(c *gin.Context) {
	var req faq.TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_input", errMessage(err), err))
		return
	}
	resp, err := h.tagSvc.Create(c.Request.Context(), req)
	if err != nil {
		abortAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// UpdateTag handles PUT /tags/:name.
func (h *Handler) UpdateTag(c *gin.Context) {
	var req faq.TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_input", errMessage(err), err))
		return
	}
	resp, err := h.tagSvc.Update(c.Request.Context(), c.Param("name"), req)
	if err != nil {
		abortAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetTag handles GET /tags/:name.
func (h *Handler) GetTag(c *gin.Context) {
	resp, err := h.tagSvc.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		abortAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListTags handles GET /tags.
func (h *Handler) ListTags(c *gin.Context) {
	resp, err := h.tagSvc.List(c.Request.Context())
	if err != nil {
		abortAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListActiveTags handles GET /tags/active.
func (h *Handler) ListActiveTags(c *gin.Context) {
	resp, err := h.tagSvc.ListActive(c.Request.Context())
	if err != nil {
		abortAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteTag handles DELETE /tags/:name.
func (h *Handler) DeleteTag(c *gin.Context) {
	if err := h.tagSvc.Delete(c.Request.Context(), c.Param("name")); err != nil {
		abortAppError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_input", "invalid id", err))
		return 0, false
	}
	return id, true
}

// pageRequest parses page, size, and sort query parameters.
func pageRequest(c *gin.Context) (faq.PageRequest, bool) {
	page := 0
	if raw := c.Query("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_input", "invalid page parameter", err))
			return faq.PageRequest{}, false
		}
		page = parsed
	}
	size := defaultPageSize
	if raw := c.Query("size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_input", "invalid size parameter", err))
			return faq.PageRequest{}, false
		}
		if parsed > maxPageSize {
			parsed = maxPageSize
		}
		size = parsed
	}
	sort, err := faq.ParseSort(c.Query("sort"))
	if err != nil {
		abortAppError(c, err)
		return faq.PageRequest{}, false
	}
	return faq.PageRequest{Page: page, Size: size, Sort: sort}, true
}

func activeFilter(c *gin.Context) *bool {
	raw := strings.TrimSpace(c.Query("active"))
	if raw == "" {
		return nil
	}
	active := raw == "1" || strings.EqualFold(raw, "true")
	return &active
}

// splitParam flattens repeated and comma separated query values.
func splitParam(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
