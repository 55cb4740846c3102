package pdftext

import (
	"strings"
	"unicode/utf8"
)

const (
	signaturePrefix = "%PDF-"
	headerLength    = 8
)

// ValidateSignature checks that data starts with a PDF header. It accepts any
// input, including nil, and has no side effects.
func ValidateSignature(data []byte) SignatureCheckResult {
	n := min(headerLength, len(data))
	sample := asciiString(data[:n])
	return SignatureCheckResult{
		Valid:        len(data) >= headerLength && strings.HasPrefix(sample, signaturePrefix),
		HeaderSample: sample,
	}
}

// asciiString decodes b as 7-bit ASCII, replacing anything outside it.
func asciiString(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		if c < 0x80 {
			sb.WriteByte(c)
		} else {
			sb.WriteRune(utf8.RuneError)
		}
	}
	return sb.String()
}
