package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"talentmatch/internal/domain"
	"talentmatch/internal/middleware"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// APIError holds error details in the response. Details carries diagnostics
// for failures the caller can act on, such as the storage keys tried.
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// PagMeta holds pagination metadata.
type PagMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondAccepted sends a 202 success response.
func RespondAccepted(c *gin.Context, data interface{}) {
	c.JSON(http.StatusAccepted, APIResponse{Success: true, Data: data})
}

// RespondPaginated sends a 200 success response with pagination metadata.
func RespondPaginated(c *gin.Context, data interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// RespondErrorDetails sends an error response carrying diagnostics.
func RespondErrorDetails(c *gin.Context, status int, code, msg string, details interface{}) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg, Details: details},
	})
}

type errorMapping struct {
	err    error
	status int
	code   string
	msg    string
}

// errorMappings is checked in order; more specific errors come before the
// generic ones they wrap.
var errorMappings = []errorMapping{
	{domain.ErrMissingResumeRef, http.StatusBadRequest, "MISSING_RESUME_REF", "resume_url is required"},
	{domain.ErrEmptyBody, http.StatusBadRequest, "EMPTY_BODY", "request body is empty"},
	{domain.ErrResumeNotFound, http.StatusNotFound, "RESUME_NOT_FOUND", "resume could not be located in storage"},
	{domain.ErrInvalidPDF, http.StatusUnprocessableEntity, "INVALID_PDF", "file is not a valid PDF"},
	{domain.ErrNoExtractableText, http.StatusUnprocessableEntity, "NO_EXTRACTABLE_TEXT", "no text could be extracted from the document"},
	{domain.ErrAnalysisNotComplete, http.StatusConflict, "ANALYSIS_NOT_COMPLETE", "analysis has not completed yet"},
	{domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND", "resource not found"},
	{domain.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"},
	{domain.ErrForbidden, http.StatusForbidden, "FORBIDDEN", "forbidden"},
	{domain.ErrUnsupportedFileType, http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "unsupported file type; allowed: pdf"},
	{domain.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"},
	{domain.ErrUploadFailed, http.StatusInternalServerError, "UPLOAD_FAILED", "file upload to storage failed"},
	{domain.ErrSummarizerFailed, http.StatusBadGateway, "SUMMARIZER_FAILED", "summarization provider failed"},
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			return m.status, m.code, m.msg
		}
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		slog.Error("internal error",
			"request_id", c.GetString(middleware.ContextKeyRequestID),
			"path", c.Request.URL.Path,
			"error", err)
	}
	RespondError(c, status, code, msg)
}

// currentUser reads the authenticated caller. Returns false if the auth
// context is missing (error response already written).
func currentUser(c *gin.Context) (string, bool) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing user context")
		return "", false
	}
	return userID, true
}

func parsePagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}
