package handler

import (
	"errors"
	"io"
	"strings"

	"github.com/gin-gonic/gin"

	"talentmatch/internal/domain"
	"talentmatch/internal/service"
)

// ExtractHandler handles direct PDF text extraction.
type ExtractHandler struct {
	analysisService service.AnalysisService
	maxBytes        int64
}

// NewExtractHandler creates a new ExtractHandler. Bodies larger than
// maxBytes are rejected; zero disables the limit.
func NewExtractHandler(analysisService service.AnalysisService, maxBytes int64) *ExtractHandler {
	return &ExtractHandler{analysisService: analysisService, maxBytes: maxBytes}
}

// Extract handles POST /api/v1/extract
// @Summary Extract text from a PDF
// @Description Run the extraction pipeline over a PDF sent as the raw request body or as multipart field "file"
// @Tags extract
// @Accept application/pdf
// @Accept multipart/form-data
// @Produce json
// @Param file formData file false "PDF file (multipart form)"
// @Success 200 {object} Response{data=service.ExtractOutput} "Extracted text and diagnostics"
// @Failure 400 {object} ErrorResponseBody "Empty body"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Failure 422 {object} ErrorResponseBody "Not a PDF or no extractable text"
// @Security BearerAuth
// @Router /extract [post]
func (h *ExtractHandler) Extract(c *gin.Context) {
	data, err := h.readBody(c)
	if err != nil {
		HandleError(c, err)
		return
	}

	out, err := h.analysisService.Extract(c.Request.Context(), data)
	if err != nil {
		if errors.Is(err, domain.ErrNoExtractableText) && out != nil {
			status, code, msg := MapDomainError(err)
			if out.Hint != "" {
				msg = out.Hint
			}
			RespondErrorDetails(c, status, code, msg, out)
			return
		}
		HandleError(c, err)
		return
	}

	RespondOK(c, out)
}

func (h *ExtractHandler) readBody(c *gin.Context) ([]byte, error) {
	var src io.Reader = c.Request.Body
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		file, _, err := c.Request.FormFile("file")
		if err != nil {
			return nil, domain.ErrEmptyBody
		}
		defer func() { _ = file.Close() }()
		src = file
	}
	if src == nil {
		return nil, domain.ErrEmptyBody
	}
	if h.maxBytes > 0 {
		src = io.LimitReader(src, h.maxBytes+1)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	if h.maxBytes > 0 && int64(len(data)) > h.maxBytes {
		return nil, domain.ErrFileTooLarge
	}
	if len(data) == 0 {
		return nil, domain.ErrEmptyBody
	}
	return data, nil
}
