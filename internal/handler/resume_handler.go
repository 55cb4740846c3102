package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"talentmatch/internal/service"
)

// ResumeHandler handles resume upload endpoints.
type ResumeHandler struct {
	resumeService service.ResumeService
}

// NewResumeHandler creates a new ResumeHandler.
func NewResumeHandler(resumeService service.ResumeService) *ResumeHandler {
	return &ResumeHandler{resumeService: resumeService}
}

// Upload handles POST /api/v1/resumes/upload
// @Summary Upload a resume
// @Description Upload a resume PDF to object storage. The returned path can be passed as resume_url to an analysis.
// @Tags resumes
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Resume PDF"
// @Success 201 {object} Response{data=service.ResumeUploadOutput} "Resume uploaded"
// @Failure 400 {object} ErrorResponseBody "Missing file or unsupported type"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Failure 422 {object} ErrorResponseBody "File is not a valid PDF"
// @Failure 500 {object} ErrorResponseBody "Upload failed"
// @Security BearerAuth
// @Router /resumes/upload [post]
func (h *ResumeHandler) Upload(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	out, err := h.resumeService.Upload(c.Request.Context(), service.ResumeUploadInput{
		UploadedBy: userID,
		File:       file,
		Header:     header,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, out)
}

// List handles GET /api/v1/resumes
// @Summary List uploaded resumes
// @Description List resumes uploaded by the caller with pagination
// @Tags resumes
// @Produce json
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.ResumeFile,meta=PagMeta} "List of resumes"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /resumes [get]
func (h *ResumeHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	offset, limit := parsePagination(c)
	files, total, err := h.resumeService.ListByUploader(c.Request.Context(), userID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, files, PagMeta{Total: total, Offset: offset, Limit: limit})
}
