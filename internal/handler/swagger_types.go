package handler

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// AnalyzeRequest represents the analysis request body.
type AnalyzeRequest struct {
	ResumeURL   string `json:"resume_url" example:"https://xyz.supabase.co/storage/v1/object/public/resumes/user_42/resumes/cv.pdf"`
	CandidateID string `json:"candidate_id" example:"user_42"`
	Role        string `json:"role" example:"Backend Engineer"`
	ProfileHint string `json:"profile_hint" example:"5 years of Go, Kubernetes, PostgreSQL"`
}

// Response wraps a successful response with data.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// ErrorResponseBody wraps an error response.
type ErrorResponseBody struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}
