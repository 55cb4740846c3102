package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
)

// StructuredStrategyName identifies the in-process parser strategy in attempt logs.
const StructuredStrategyName = "structured"

const structuredVariant = "content-stream"

// StructuredConfig configures the structured parser strategy.
type StructuredConfig struct {
	Timeout time.Duration
	// LineTolerance is the vertical distance within which runs share a line.
	LineTolerance float64
}

// StructuredStrategy reads text objects from the PDF object graph and
// rebuilds reading order from glyph positions.
type StructuredStrategy struct {
	cfg StructuredConfig
}

// NewStructuredStrategy creates a StructuredStrategy.
func NewStructuredStrategy(cfg StructuredConfig) *StructuredStrategy {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.LineTolerance <= 0 {
		cfg.LineTolerance = 0.5
	}
	return &StructuredStrategy{cfg: cfg}
}

func (s *StructuredStrategy) Name() string { return StructuredStrategyName }

func (s *StructuredStrategy) Extract(ctx context.Context, doc Document) []Outcome {
	start := time.Now()
	text, err := s.parse(ctx, doc.Bytes())
	return []Outcome{{Variant: structuredVariant, Text: text, Err: err, Elapsed: time.Since(start)}}
}

type parseResult struct {
	text string
	err  error
}

// parse runs the parser in its own goroutine and races its single result
// against the timeout. The channel is buffered so an abandoned parse can
// still complete its send and exit.
func (s *StructuredStrategy) parse(ctx context.Context, data []byte) (string, error) {
	pctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	done := make(chan parseResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- parseResult{err: &NoTextLayerError{Reason: "parser crashed", Err: fmt.Errorf("%v", r)}}
			}
		}()
		text, err := readTextLayer(data, s.cfg.LineTolerance)
		done <- parseResult{text: text, err: err}
	}()

	select {
	case r := <-done:
		return r.text, r.err
	case <-pctx.Done():
		return "", &StrategyTimeoutError{Strategy: StructuredStrategyName, Variant: structuredVariant, Budget: s.cfg.Timeout}
	}
}

func readTextLayer(data []byte, tolerance float64) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &NoTextLayerError{Reason: "unreadable document structure", Err: err}
	}

	n := r.NumPage()
	if n == 0 {
		return "", &NoTextLayerError{Reason: "document has no pages"}
	}

	pages := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		runs := collectRuns(p.Content().Text, tolerance)
		if text := layoutPage(runs, tolerance); strings.TrimSpace(text) != "" {
			pages = append(pages, text)
		}
	}
	if len(pages) == 0 {
		return "", &NoTextLayerError{Reason: "no text objects on any page"}
	}
	return strings.Join(pages, "\n\n"), nil
}

// textRun is a horizontal sequence of glyphs drawn on one baseline.
type textRun struct {
	X, Y  float64
	Text  string
	lastX float64
	end   float64
	size  float64
	sb    strings.Builder
}

// collectRuns groups positioned glyphs into runs. The parser does not emit
// space glyphs, so word breaks are recovered from the horizontal gap.
func collectRuns(glyphs []pdf.Text, tolerance float64) []*textRun {
	var runs []*textRun
	var cur *textRun
	flush := func() {
		if cur == nil {
			return
		}
		cur.Text = cur.sb.String()
		if strings.TrimSpace(cur.Text) != "" {
			runs = append(runs, cur)
		}
		cur = nil
	}

	for _, g := range glyphs {
		if g.S == "" {
			continue
		}
		size := math.Max(g.FontSize, 1)
		if cur != nil {
			gap := g.X - cur.end
			switch {
			case math.Abs(g.Y-cur.Y) > tolerance, g.X < cur.lastX-tolerance, gap > 3*size:
				flush()
			case gap > 0.15*size && cur.end > cur.lastX:
				cur.sb.WriteByte(' ')
			}
		}
		if cur == nil {
			cur = &textRun{X: g.X, Y: g.Y, size: size}
		}
		cur.sb.WriteString(g.S)
		cur.lastX = g.X
		cur.end = g.X + g.W
	}
	flush()
	return runs
}

// groupLines splits runs into lines, top of page first, each line ordered
// left to right. Runs are swept in strict baseline order and a run joins the
// current line when its baseline is within tolerance of the line's first
// run, so the grouping does not depend on the order the parser emitted them.
func groupLines(runs []*textRun, tolerance float64) [][]*textRun {
	sorted := append([]*textRun(nil), runs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var lines [][]*textRun
	var anchor float64
	for _, r := range sorted {
		if len(lines) == 0 || anchor-r.Y > tolerance {
			lines = append(lines, nil)
			anchor = r.Y
		}
		lines[len(lines)-1] = append(lines[len(lines)-1], r)
	}
	for _, line := range lines {
		sort.SliceStable(line, func(i, j int) bool { return line[i].X < line[j].X })
	}
	return lines
}

func layoutPage(runs []*textRun, tolerance float64) string {
	out := make([]string, 0, len(runs))
	for _, line := range groupLines(runs, tolerance) {
		parts := make([]string, 0, len(line))
		for _, r := range line {
			if text := strings.Join(strings.Fields(decodeRun(r.Text)), " "); text != "" {
				parts = append(parts, text)
			}
		}
		if len(parts) > 0 {
			out = append(out, strings.Join(parts, " "))
		}
	}
	return strings.Join(out, "\n")
}

var escapedPunctuation = strings.NewReplacer(
	"%20", " ", "%2C", ",", "%2c", ",", "%2E", ".", "%2e", ".",
	"%3A", ":", "%3a", ":", "%3B", ";", "%3b", ";",
	"%28", "(", "%29", ")", "%2D", "-", "%2d", "-",
	"%2F", "/", "%2f", "/", "%40", "@",
)

// decodeRun undoes percent-escaping in run content, keeping the raw content
// when it is not a valid escape sequence.
func decodeRun(raw string) string {
	if !strings.Contains(raw, "%") {
		return raw
	}
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return escapedPunctuation.Replace(raw)
}
