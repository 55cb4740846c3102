package pdftext

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"
)

// RawScanStrategyName identifies the byte-pattern fallback in attempt logs.
const RawScanStrategyName = "raw-bytes"

type rawEncoding struct {
	name   string
	decode func([]byte) string
}

var rawEncodings = []rawEncoding{
	{name: "latin1", decode: decodeLatin1},
	{name: "ascii", decode: asciiString},
	{name: "utf8", decode: func(b []byte) string { return strings.ToValidUTF8(string(b), "\uFFFD") }},
}

func decodeLatin1(b []byte) string {
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return asciiString(b)
	}
	return string(out)
}

var (
	literalPattern  = regexp.MustCompile(`(?s)\(((?:[^()\\]|\\.|\\[0-7]{1,3})*)\)`)
	hexPattern      = regexp.MustCompile(`<([0-9A-Fa-f\s]+)>`)
	asciiRunPattern = regexp.MustCompile(`[A-Za-z][A-Za-z0-9\s.,!?@#$%^&*()_+=\-:;'"]{8,}`)
	operatorPattern = regexp.MustCompile(`(?m)(?:Tj|TJ|'|")\s*$[\s\S]*?^\s*(?:\(([^)]*)\)|<([0-9A-Fa-f]+)>)`)

	controlChars = regexp.MustCompile(`[\x00-\x1F\x7F-\x9F]`)
	nonPrintable = regexp.MustCompile(`[^\x20-\x7E\n\r\t]`)
	resourceName = regexp.MustCompile(`^[A-Z][A-Za-z]{0,2}\d+$`)
	hexLikeToken = regexp.MustCompile(`^[0-9A-Fa-f]{6,}$`)
)

const tokenTrimming = "()[]<>{}/;:,.'\"%"

// RawScanStrategy scans the raw bytes for anything that looks like text. It is
// the fallback of last resort for documents the parsers cannot read.
type RawScanStrategy struct{}

// NewRawScanStrategy creates a RawScanStrategy.
func NewRawScanStrategy() *RawScanStrategy {
	return &RawScanStrategy{}
}

func (s *RawScanStrategy) Name() string { return RawScanStrategyName }

// Extract reports one outcome per encoding. The orchestrator scores them and
// keeps the best.
func (s *RawScanStrategy) Extract(ctx context.Context, doc Document) []Outcome {
	outcomes := make([]Outcome, 0, len(rawEncodings))
	for _, enc := range rawEncodings {
		if ctx.Err() != nil {
			outcomes = append(outcomes, Outcome{
				Variant: enc.name,
				Err:     &StrategyTimeoutError{Strategy: RawScanStrategyName, Variant: enc.name},
			})
			break
		}
		start := time.Now()
		text := scanFragments(enc.decode(doc.Bytes()))
		o := Outcome{Variant: enc.name, Text: text, Elapsed: time.Since(start)}
		if text == "" {
			o.Err = &StrategyExecutionError{Strategy: RawScanStrategyName, Variant: enc.name, Err: ErrNoFragments}
		}
		outcomes = append(outcomes, o)
	}
	return outcomes
}

// scanFragments applies every pattern family to s and pools what they find.
func scanFragments(s string) string {
	var frags []string
	frags = append(frags, literalStrings(s)...)
	frags = append(frags, hexStrings(s)...)
	frags = append(frags, asciiRunPattern.FindAllString(s, -1)...)
	frags = append(frags, operatorOperands(s)...)
	return poolFragments(frags)
}

func literalStrings(s string) []string {
	var out []string
	for _, m := range literalPattern.FindAllStringSubmatch(s, -1) {
		text := strings.TrimSpace(controlChars.ReplaceAllString(unescapeLiteral(m[1]), " "))
		if len(text) > 1 && hasAlnum(text) {
			out = append(out, text)
		}
	}
	return out
}

func hexStrings(s string) []string {
	var out []string
	for _, m := range hexPattern.FindAllStringSubmatch(s, -1) {
		text := strings.TrimSpace(decodeHex(m[1]))
		if len(text) > 1 && hasAlnum(text) {
			out = append(out, text)
		}
	}
	return out
}

func operatorOperands(s string) []string {
	var out []string
	for _, m := range operatorPattern.FindAllStringSubmatch(s, -1) {
		text := m[1]
		if text == "" && m[2] != "" {
			text = decodeHex(m[2])
		}
		if len(text) > 1 {
			out = append(out, text)
		}
	}
	return out
}

// unescapeLiteral resolves backslash escapes in a PDF literal string.
func unescapeLiteral(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	rs := []rune(s)
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(rs); i++ {
		if rs[i] != '\\' || i+1 == len(rs) {
			sb.WriteRune(rs[i])
			continue
		}
		i++
		switch c := rs[i]; c {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case '\n':
			// line continuation
		case '0', '1', '2', '3', '4', '5', '6', '7':
			j := i
			for j < len(rs) && j < i+3 && rs[j] >= '0' && rs[j] <= '7' {
				j++
			}
			code, _ := strconv.ParseUint(string(rs[i:j]), 8, 16)
			sb.WriteRune(rune(code & 0xFF))
			i = j - 1
		default:
			sb.WriteRune(c)
		}
	}
	return sb.String()
}

// decodeHex decodes a hex string byte pair by byte pair, keeping printable
// ASCII, the Latin-1 supplement, tab, newline and carriage return.
func decodeHex(h string) string {
	h = strings.Join(strings.Fields(h), "")
	if h == "" || len(h)%2 != 0 {
		return ""
	}
	var sb strings.Builder
	for i := 0; i+1 < len(h); i += 2 {
		v, err := strconv.ParseUint(h[i:i+2], 16, 8)
		if err != nil {
			return ""
		}
		switch c := byte(v); {
		case c >= 32 && c <= 126, c >= 160:
			sb.WriteRune(rune(c))
		case c == '\t', c == '\n', c == '\r':
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

func poolFragments(frags []string) string {
	kept := make([]string, 0, len(frags))
	for _, f := range frags {
		if len(strings.TrimSpace(f)) <= 2 || !hasLetter(f) {
			continue
		}
		f = strings.Join(strings.Fields(nonPrintable.ReplaceAllString(f, " ")), " ")
		if f == "" || isSyntaxOnly(f) {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}

// pdfSyntax holds object keywords, dictionary keys and content-stream
// operators that show up in the clear in any uncompressed PDF.
var pdfSyntax = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`
		PDF obj endobj stream endstream xref trailer startxref R f n EOF true false null
		Type Subtype Catalog Pages Page Kids Count Parent MediaBox CropBox Resources Contents
		Length Filter DecodeParms FlateDecode ASCIIHexDecode DCTDecode Font XObject ExtGState
		ProcSet Text ImageB ImageC Image Form Width Height ColorSpace DeviceGray DeviceRGB DeviceCMYK
		BitsPerComponent BaseFont Encoding WinAnsiEncoding MacRomanEncoding StandardEncoding
		FirstChar LastChar Widths FontDescriptor ToUnicode Type1 TrueType Type0 CIDFontType2
		Size Root Info ID Prev Metadata Annots Rotate
		Courier Helvetica Times Roman Bold Oblique Italic BoldItalic BoldOblique Symbol ZapfDingbats
		BT ET Tf Td TD Tm Tj TJ T* Tc Tw Tz TL Tr Ts cm q Q Do re m l c v y h S s F B b W gs
		CS cs SC sc SCN scn rg RG g G k K w J j M d ri i BI ID EI BDC BMC EMC MP DP d0 d1 sh`) {
		pdfSyntax[w] = struct{}{}
	}
}

// isSyntaxOnly reports whether every token of a fragment is PDF structure
// rather than document text.
func isSyntaxOnly(f string) bool {
	for _, tok := range strings.Fields(f) {
		if !isSyntaxToken(tok) {
			return false
		}
	}
	return true
}

func isSyntaxToken(tok string) bool {
	tok = strings.Trim(tok, tokenTrimming)
	if tok == "" {
		return true
	}
	if _, ok := pdfSyntax[tok]; ok {
		return true
	}
	if _, err := strconv.ParseFloat(tok, 64); err == nil {
		return true
	}
	if resourceName.MatchString(tok) {
		return true
	}
	if hexLikeToken.MatchString(tok) && strings.ContainsAny(tok, "0123456789") {
		return true
	}
	if strings.Contains(tok, "-") {
		for _, part := range strings.Split(tok, "-") {
			if !isSyntaxToken(part) {
				return false
			}
		}
		return true
	}
	return false
}

func hasLetter(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			return true
		}
	}
	return false
}

func hasAlnum(s string) bool {
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= '0' && c <= '9' {
			return true
		}
	}
	return hasLetter(s)
}
