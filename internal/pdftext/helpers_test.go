package pdftext_test

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
)

// textLine is a string drawn at a fixed position with 12pt Courier.
type textLine struct {
	X, Y float64
	Text string
}

// buildTextPDF writes a minimal uncompressed PDF with one page per element of
// pages. Courier carries explicit widths so glyph positions advance.
func buildTextPDF(pages ...[]textLine) []byte {
	var contents []string
	for _, lines := range pages {
		var sb strings.Builder
		for _, l := range lines {
			fmt.Fprintf(&sb, "BT /F1 12 Tf %g %g Td (%s) Tj ET\n", l.X, l.Y, escapeLiteral(l.Text))
		}
		contents = append(contents, sb.String())
	}
	return assemblePDF(contents, nil)
}

// buildImagePDF writes a single-page PDF whose only content is a grayscale
// image of pseudo-random high bytes. It carries no text at all.
func buildImagePDF() []byte {
	img := make([]byte, 64*64)
	seed := uint32(12345)
	for i := range img {
		seed = seed*1103515245 + 12345
		img[i] = 0x80 | byte(seed>>16)
	}
	return assemblePDF([]string{"q 64 0 0 64 0 0 cm /Im1 Do Q\n"}, img)
}

func escapeLiteral(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}

func assemblePDF(contents []string, image []byte) []byte {
	var objs []string
	objs = append(objs, "<< /Type /Catalog /Pages 2 0 R >>")
	objs = append(objs, "") // pages tree, filled in below
	widths := strings.TrimSpace(strings.Repeat("600 ", 95))
	objs = append(objs, "<< /Type /Font /Subtype /Type1 /BaseFont /Courier /Encoding /WinAnsiEncoding /FirstChar 32 /LastChar 126 /Widths ["+widths+"] >>")

	imageRef := ""
	if image != nil {
		objs = append(objs, fmt.Sprintf("<< /Type /XObject /Subtype /Image /Width 64 /Height 64 /ColorSpace /DeviceGray /BitsPerComponent 8 /Length %d >>\nstream\n%s\nendstream", len(image), image))
		imageRef = fmt.Sprintf(" /XObject << /Im1 %d 0 R >>", len(objs))
	}

	var kids []string
	for _, c := range contents {
		objs = append(objs, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(c), c))
		contentRef := len(objs)
		objs = append(objs, fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >>%s >> /Contents %d 0 R >>", imageRef, contentRef))
		kids = append(kids, fmt.Sprintf("%d 0 R", len(objs)))
	}
	objs[1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(kids))

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, o := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, o)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return buf.Bytes()
}

// hexOnlyPDF has a PDF header but no cross-reference table, so only the raw
// byte scan can read it. Its text is drawn with hex strings.
func hexOnlyPDF(lines ...string) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n1 0 obj\n<< /Length 0 >>\nstream\nBT\n/F1 11 Tf\n")
	for _, l := range lines {
		fmt.Fprintf(&buf, "<%X> Tj\n0 -14 Td\n", l)
	}
	buf.WriteString("ET\nendstream\nendobj\n")
	return buf.Bytes()
}

var resumeLines = []textLine{
	{X: 72, Y: 750, Text: "Jane Doe"},
	{X: 72, Y: 730, Text: "Senior Software Engineer"},
	{X: 72, Y: 700, Text: "Experience"},
	{X: 72, Y: 680, Text: "Led development of Python and Go microservices on AWS"},
	{X: 72, Y: 660, Text: "Managed a team of five engineers and improved deployment"},
	{X: 72, Y: 630, Text: "Education"},
	{X: 72, Y: 610, Text: "Bachelor of Science in Computer Science"},
}

const resumeProse = "Senior software engineer with experience in Python, Java and cloud infrastructure. " +
	"Led development of scalable microservices and managed a team of engineers. " +
	"Skills include leadership, communication, project management and agile delivery."

// fakeRunner stands in for external binaries.
type fakeRunner struct {
	mu    sync.Mutex
	calls [][]string
	fn    func(ctx context.Context, name string, args []string) ([]byte, []byte, error)
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string{name}, args...))
	f.mu.Unlock()
	return f.fn(ctx, name, args)
}

func (f *fakeRunner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// writesOutput returns a runner func that writes text to the output path
// pdftotext was given.
func writesOutput(texts ...string) func(context.Context, string, []string) ([]byte, []byte, error) {
	var mu sync.Mutex
	i := 0
	return func(_ context.Context, _ string, args []string) ([]byte, []byte, error) {
		mu.Lock()
		text := texts[min(i, len(texts)-1)]
		i++
		mu.Unlock()
		if err := os.WriteFile(args[len(args)-1], []byte(text), 0o600); err != nil {
			return nil, nil, err
		}
		return nil, nil, nil
	}
}

func blocksUntilDone(ctx context.Context, _ string, _ []string) ([]byte, []byte, error) {
	<-ctx.Done()
	return nil, []byte("killed"), ctx.Err()
}
