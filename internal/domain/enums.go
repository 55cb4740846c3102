package domain

// FileType represents the allowed file types for upload.
type FileType string

const (
	FileTypePDF FileType = "pdf"
)

// AllowedContentTypes maps MIME content types back to FileType.
var AllowedContentTypes = map[string]FileType{
	"application/pdf":   FileTypePDF,
	"application/x-pdf": FileTypePDF,
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf": FileTypePDF,
}

// UserRole is the role claim carried by access tokens.
type UserRole string

const (
	RoleRecruiter UserRole = "recruiter"
	RoleCandidate UserRole = "candidate"
)

// ValidUserRoles lists every accepted role.
var ValidUserRoles = []UserRole{RoleRecruiter, RoleCandidate}

// IsValidRole reports whether r is a known role.
func IsValidRole(r UserRole) bool {
	for _, v := range ValidUserRoles {
		if v == r {
			return true
		}
	}
	return false
}

// FileStatus represents the lifecycle of an uploaded resume file.
type FileStatus string

const (
	FileStatusPending  FileStatus = "pending"
	FileStatusUploaded FileStatus = "uploaded"
	FileStatusFailed   FileStatus = "failed"
)

// AnalysisStatus is the lifecycle of a resume analysis.
type AnalysisStatus string

const (
	AnalysisStatusQueued     AnalysisStatus = "queued"
	AnalysisStatusProcessing AnalysisStatus = "processing"
	AnalysisStatusCompleted  AnalysisStatus = "completed"
	AnalysisStatusFailed     AnalysisStatus = "failed"
)

// IsTerminal reports whether no further transitions happen from s.
func (s AnalysisStatus) IsTerminal() bool {
	return s == AnalysisStatusCompleted || s == AnalysisStatusFailed
}

// IsValidAnalysisStatus reports whether s is a known analysis status.
func IsValidAnalysisStatus(s AnalysisStatus) bool {
	switch s {
	case AnalysisStatusQueued, AnalysisStatusProcessing, AnalysisStatusCompleted, AnalysisStatusFailed:
		return true
	}
	return false
}
