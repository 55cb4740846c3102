package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"talentmatch/internal/csvexport"
	"talentmatch/internal/domain"
	"talentmatch/internal/port"
	"talentmatch/internal/service"
)

// AnalysisHandler handles resume analysis endpoints.
type AnalysisHandler struct {
	analysisService service.AnalysisService
}

// NewAnalysisHandler creates a new AnalysisHandler.
func NewAnalysisHandler(analysisService service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analysisService: analysisService}
}

func (r *AnalyzeRequest) toInput(recruiterID string) service.AnalyzeInput {
	return service.AnalyzeInput{
		ResumeRef:   r.ResumeURL,
		CandidateID: r.CandidateID,
		Role:        r.Role,
		ProfileHint: r.ProfileHint,
		RecruiterID: recruiterID,
	}
}

// Analyze handles POST /api/v1/analyses
// @Summary Analyze a resume
// @Description Locate a candidate's resume in storage, extract its text and summarize it for a role
// @Tags analyses
// @Accept json
// @Produce json
// @Param body body AnalyzeRequest true "Analysis request"
// @Success 200 {object} Response{data=service.AnalysisOutput} "Analysis result"
// @Failure 400 {object} ErrorResponseBody "Missing resume_url"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 404 {object} ErrorResponseBody "Resume not found in storage"
// @Failure 422 {object} ErrorResponseBody "File is not a valid PDF"
// @Security BearerAuth
// @Router /analyses [post]
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		return
	}

	out, err := h.analysisService.Analyze(c.Request.Context(), req.toInput(userID))
	if err != nil {
		var locErr *service.LocateError
		if errors.As(err, &locErr) {
			status, code, msg := MapDomainError(err)
			RespondErrorDetails(c, status, code, msg, gin.H{
				"object_path":     locErr.Trace.ObjectPath,
				"locate_attempts": locErr.Trace.Attempts,
			})
			return
		}
		HandleError(c, err)
		return
	}

	RespondOK(c, out)
}

// Enqueue handles POST /api/v1/analyses/async
// @Summary Queue a resume analysis
// @Description Record an analysis request and process it in the background
// @Tags analyses
// @Accept json
// @Produce json
// @Param body body AnalyzeRequest true "Analysis request"
// @Success 202 {object} Response{data=domain.ResumeAnalysis} "Analysis queued"
// @Failure 400 {object} ErrorResponseBody "Missing resume_url"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /analyses/async [post]
func (h *AnalysisHandler) Enqueue(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		return
	}

	a, err := h.analysisService.Enqueue(c.Request.Context(), req.toInput(userID))
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondAccepted(c, a)
}

// GetByID handles GET /api/v1/analyses/:id
// @Summary Get an analysis
// @Description Get one of the caller's analyses by ID
// @Tags analyses
// @Produce json
// @Param id path string true "Analysis ID (UUID)"
// @Success 200 {object} Response{data=domain.ResumeAnalysis} "Analysis"
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 403 {object} ErrorResponseBody "Not the owner"
// @Failure 404 {object} ErrorResponseBody "Analysis not found"
// @Security BearerAuth
// @Router /analyses/{id} [get]
func (h *AnalysisHandler) GetByID(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid analysis ID")
		return
	}

	a, err := h.analysisService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, a)
}

// List handles GET /api/v1/analyses
// @Summary List analyses
// @Description List the caller's analyses, newest first
// @Tags analyses
// @Produce json
// @Param candidate_id query string false "Filter by candidate"
// @Param status query string false "Filter by status (queued, processing, completed, failed)"
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.ResumeAnalysis,meta=PagMeta} "List of analyses"
// @Failure 400 {object} ErrorResponseBody "Invalid status"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /analyses [get]
func (h *AnalysisHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	filter, ok := parseAnalysisFilter(c, userID)
	if !ok {
		return
	}
	offset, limit := parsePagination(c)

	items, total, err := h.analysisService.List(c.Request.Context(), filter, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, items, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// ExportCSV handles GET /api/v1/analyses/export
// @Summary Export analyses as CSV
// @Description Download the caller's analyses as a CSV file
// @Tags analyses
// @Produce text/csv
// @Param candidate_id query string false "Filter by candidate"
// @Param status query string false "Filter by status"
// @Param name query string false "File name prefix" default(analyses)
// @Success 200 {file} file "CSV file"
// @Failure 400 {object} ErrorResponseBody "Invalid status"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /analyses/export [get]
func (h *AnalysisHandler) ExportCSV(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	filter, ok := parseAnalysisFilter(c, userID)
	if !ok {
		return
	}

	items, err := h.analysisService.ListForExport(c.Request.Context(), filter)
	if err != nil {
		HandleError(c, err)
		return
	}

	filename := csvexport.BuildFilename(c.DefaultQuery("name", "analyses"), time.Now())
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Status(http.StatusOK)

	if _, err := c.Writer.Write(csvexport.BOM); err != nil {
		return
	}
	w := csvexport.NewWriter(c.Writer)
	if err := w.WriteHeader(); err != nil {
		return
	}
	if err := w.WriteAnalyses(items); err != nil {
		_ = c.Error(err)
		return
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = c.Error(err)
	}
}

func parseAnalysisFilter(c *gin.Context, recruiterID string) (port.AnalysisFilter, bool) {
	filter := port.AnalysisFilter{
		RecruiterID: recruiterID,
		CandidateID: service.NormalizeCandidateID(c.Query("candidate_id")),
	}
	if s := c.Query("status"); s != "" {
		status := domain.AnalysisStatus(s)
		if !domain.IsValidAnalysisStatus(status) {
			RespondError(c, http.StatusBadRequest, "INVALID_STATUS", "status must be one of queued, processing, completed, failed")
			return filter, false
		}
		filter.Status = status
	}
	return filter, true
}
