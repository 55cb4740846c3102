package port

import (
	"context"

	"talentmatch/internal/pdftext"
)

// TextExtractor turns PDF bytes into plain text. Implementations return an
// error only for input that is not a PDF; every other failure is reported in
// the result.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte) (*pdftext.Result, error)
}
