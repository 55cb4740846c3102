package pdftext

import (
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func glyphs(x, y float64, s string) []pdf.Text {
	out := make([]pdf.Text, 0, len(s))
	for _, r := range s {
		if r != ' ' {
			out = append(out, pdf.Text{FontSize: 10, X: x, Y: y, W: 6, S: string(r)})
		}
		x += 6
	}
	return out
}

func TestCollectRuns_RecoversWordGaps(t *testing.T) {
	runs := collectRuns(glyphs(50, 700, "Data Engineer"), 0.5)

	require.Len(t, runs, 1)
	assert.Equal(t, "Data Engineer", runs[0].Text)
}

func TestCollectRuns_SplitsOnBaselineAndBackwardsMove(t *testing.T) {
	var g []pdf.Text
	g = append(g, glyphs(50, 700, "Summary")...)
	g = append(g, glyphs(50, 680, "Builds APIs")...)
	g = append(g, glyphs(20, 680, "x")...)

	runs := collectRuns(g, 0.5)

	require.Len(t, runs, 3)
	assert.Equal(t, "Summary", runs[0].Text)
	assert.Equal(t, "Builds APIs", runs[1].Text)
	assert.Equal(t, "x", runs[2].Text)
}

func TestLayoutPage_OrdersTopToBottomLeftToRight(t *testing.T) {
	runs := []*textRun{
		{X: 300, Y: 700.3, Text: "2019-2023"},
		{X: 50, Y: 650, Text: "Shipped billing platform"},
		{X: 50, Y: 700, Text: "Acme Corp"},
	}

	assert.Equal(t, "Acme Corp 2019-2023\nShipped billing platform", layoutPage(runs, 0.5))
}

func TestLayoutPage_DriftingBaselineIsOrderIndependent(t *testing.T) {
	// Each neighbour is within tolerance, but the first and last are not.
	base := []textRun{
		{X: 10, Y: 500.0, Text: "Senior"},
		{X: 60, Y: 499.6, Text: "Engineer"},
		{X: 120, Y: 499.2, Text: "Berlin"},
		{X: 10, Y: 480, Text: "Go, Kubernetes"},
	}
	perms := [][]int{{0, 1, 2, 3}, {2, 1, 0, 3}, {3, 2, 0, 1}, {1, 3, 2, 0}}

	var first string
	for i, p := range perms {
		runs := make([]*textRun, 0, len(p))
		for _, idx := range p {
			r := base[idx]
			runs = append(runs, &r)
		}
		got := layoutPage(runs, 0.5)
		if i == 0 {
			first = got
			continue
		}
		assert.Equal(t, first, got, "permutation %v", p)
	}
	assert.Equal(t, "Senior Engineer\nBerlin\nGo, Kubernetes", first)
}

func TestDecodeRun(t *testing.T) {
	assert.Equal(t, "john.doe@example.com", decodeRun("john.doe%40example.com"))
	assert.Equal(t, "Skills: Go, SQL", decodeRun("Skills%3A%20Go%2C%20SQL"))
	assert.Equal(t, "100% remote, Berlin", decodeRun("100% remote%2C Berlin"))
	assert.Equal(t, "plain", decodeRun("plain"))
}

func TestUnescapeLiteral(t *testing.T) {
	assert.Equal(t, "a(b)c", unescapeLiteral(`a\(b\)c`))
	assert.Equal(t, "line\nnext\ttab", unescapeLiteral(`line\nnext\ttab`))
	assert.Equal(t, "Café", unescapeLiteral(`Caf\351`))
	assert.Equal(t, "joined", unescapeLiteral("join\\\ned"))
	assert.Equal(t, `back\slash`, unescapeLiteral(`back\\slash`))
}

func TestDecodeHex(t *testing.T) {
	assert.Equal(t, "Go dev", decodeHex("476F2064 6576"))
	assert.Equal(t, "AB", decodeHex("41014202"))
	assert.Equal(t, "", decodeHex("414"))
	assert.Equal(t, "", decodeHex("zz"))
}

func TestIsSyntaxOnly(t *testing.T) {
	syntax := []string{
		"endobj 2 0 obj",
		"Im1 Do Q",
		"PDF-1.4 1 0 obj",
		"startxref 1234 %%EOF",
		"A6F686E20446F65",
		"BT F1 12 Tf 72 700 Td",
	}
	for _, s := range syntax {
		assert.True(t, isSyntaxOnly(s), s)
	}

	prose := []string{
		"Jane Doe",
		"Led a team of 5",
		"Type design portfolio",
	}
	for _, s := range prose {
		assert.False(t, isSyntaxOnly(s), s)
	}
}
