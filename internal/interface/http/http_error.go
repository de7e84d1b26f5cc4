package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/xreal/faqbase/pkg/errors"
)

// HTTPError captures the metadata required to serialize an error response consistently.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// NewHTTPError is a helper to build an HTTPError instance.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    "internal_error",
		Message: "something went wrong",
		Err:     err,
	}
}

func abortWithError(c *gin.Context, err *HTTPError) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

// abortAppError translates a domain error into the HTTP envelope.
func abortAppError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := "internal_error"
	switch {
	case apperrors.IsCode(err, apperrors.CodeNotFound):
		status = http.StatusNotFound
		code = apperrors.CodeNotFound
	case apperrors.IsCode(err, apperrors.CodeInvalidInput):
		status = http.StatusBadRequest
		code = apperrors.CodeInvalidInput
	case apperrors.IsCode(err, apperrors.CodeConflict):
		status = http.StatusConflict
		code = apperrors.CodeConflict
	case apperrors.IsCode(err, apperrors.CodeStorage):
		code = apperrors.CodeStorage
	case apperrors.IsCode(err, apperrors.CodeEmbedding):
		code = apperrors.CodeEmbedding
	}
	abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
}

func errMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
