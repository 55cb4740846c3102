package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"talentmatch/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row.
var columns = []string{
	"Analysis ID",
	"Candidate ID",
	"Role",
	"Status",
	"Parse Success",
	"Strategy",
	"Variant",
	"Quality Score",
	"Text Length",
	"Model Used",
	"Verdict",
	"Analysis",
	"Hint",
	"Error",
	"Resume Ref",
	"Created At",
	"Completed At",
}

// maxCellRunes keeps long analyses within what spreadsheet apps accept in a cell.
const maxCellRunes = 32000

// Writer wraps csv.Writer for exporting analyses as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteAnalyses converts a batch of analyses to CSV rows and writes them.
func (w *Writer) WriteAnalyses(items []domain.ResumeAnalysis) error {
	for i := range items {
		if err := w.csv.Write(analysisToRow(&items[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

func analysisToRow(a *domain.ResumeAnalysis) []string {
	return []string{
		a.ID.String(),
		a.CandidateID,
		a.Role,
		string(a.Status),
		formatBool(a.ParseSuccess),
		a.Strategy,
		a.Variant,
		strconv.FormatFloat(a.QualityScore, 'f', 1, 64),
		strconv.Itoa(a.TextLength),
		a.ModelUsed,
		Verdict(a.Analysis),
		truncateCell(a.Analysis),
		a.Hint,
		a.ErrorMessage,
		a.ResumeRef,
		a.CreatedAt.Format(time.RFC3339),
		formatTime(a.CompletedAt),
	}
}

var verdictLine = regexp.MustCompile(`(?im)^[ \t#*\d.-]*verdict[ \t*:-]*(.*)$`)

// Verdict returns the first non-empty line of the analysis' verdict section,
// or "" when the analysis has none.
func Verdict(analysis string) string {
	loc := verdictLine.FindStringSubmatchIndex(analysis)
	if loc == nil {
		return ""
	}
	if rest := strings.Trim(analysis[loc[2]:loc[3]], " *"); rest != "" {
		return rest
	}
	for _, line := range strings.Split(analysis[loc[1]:], "\n") {
		if line = strings.Trim(strings.TrimSpace(line), "*-"); line != "" {
			return strings.TrimSpace(line)
		}
	}
	return ""
}

func truncateCell(s string) string {
	r := []rune(s)
	if len(r) <= maxCellRunes {
		return s
	}
	return string(r[:maxCellRunes])
}

func formatBool(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" {
		s = "analyses"
	}
	return s
}

// BuildFilename returns {sanitized_name}_{YYYY-MM-DD}.csv.
func BuildFilename(name string, now time.Time) string {
	return fmt.Sprintf("%s_%s.csv", SanitizeFilename(name), now.Format("2006-01-02"))
}
