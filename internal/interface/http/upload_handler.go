package http

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xreal/faqbase/internal/domain/upload"
)

// UploadService is the import entry point the handler depends on.
type UploadService interface {
	Import(ctx context.Context, data []byte) (upload.Summary, error)
}

// UploadExcel handles POST /api/excel/upload: a multipart spreadsheet with a
// tag sheet and a FAQ sheet.
func (h *Handler) UploadExcel(c *gin.Context) {
	if h.uploadSvc == nil {
		abortWithError(c, NewHTTPError(http.StatusServiceUnavailable, "upload_disabled", "import service unavailable", nil))
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_input", "file is required", err))
		return
	}
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if ext != ".xlsx" && ext != ".xls" {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_input", "file must be an Excel spreadsheet", nil))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_input", "failed to read upload", err))
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "upload_failed", "failed to read file", err))
		return
	}

	summary, err := h.uploadSvc.Import(c.Request.Context(), data)
	if err != nil {
		abortAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
