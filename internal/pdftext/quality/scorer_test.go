package quality_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talentmatch/internal/pdftext/quality"
)

func TestDefault_LoadsEmbeddedVocabulary(t *testing.T) {
	s := quality.Default()

	assert.Greater(t, s.Len(), 1000)
	assert.Same(t, s, quality.Default())
}

func TestScorer_Breakdown(t *testing.T) {
	s := quality.NewScorer([]string{"Python", "engineer"})

	b := s.Breakdown("Python engineer, python ENGINEER x 42")

	assert.Equal(t, 4, b.Words)
	assert.Equal(t, 4, b.VocabularyHits)
	assert.Equal(t, 29, b.Letters)
	assert.InDelta(t, 2*4+5*4+0.29, b.Score, 1e-9)
}

func TestScorer_CountsWholeWordsOnly(t *testing.T) {
	s := quality.NewScorer([]string{"java"})

	b := s.Breakdown("javascript java_ javas java")

	assert.Equal(t, 1, b.VocabularyHits)
}

func TestScorer_LetterBonusIsCapped(t *testing.T) {
	s := quality.NewScorer(nil)
	text := strings.Repeat("a", 10000)

	b := s.Breakdown(text)

	// One long word plus the capped bonus.
	assert.InDelta(t, 2+50.0, b.Score, 1e-9)
}

func TestScorer_Empty(t *testing.T) {
	assert.Zero(t, quality.Default().Score(""))
	assert.Zero(t, quality.Default().Score("   \n\t"))
}

func TestScorer_AppendingWordNeverLowersScore(t *testing.T) {
	s := quality.Default()
	text := "Managed infrastructure"
	prev := s.Score(text)
	for _, w := range []string{"for", "kubernetes", "zzqx", "teams", "a"} {
		text += " " + w
		next := s.Score(text)
		assert.GreaterOrEqual(t, next, prev, "after appending %q", w)
		prev = next
	}
}

func TestScorer_ResumeProseBeatsNoise(t *testing.T) {
	s := quality.Default()

	prose := s.Score("Experienced software engineer skilled in Python and project management")
	noise := s.Score("Ÿ¤§ ¶Þ× 0x3F 1234 ÆØ ~~ ## 99")

	assert.Greater(t, prose, quality.MinScore*1.0)
	assert.Less(t, noise, quality.MinScore*1.0)
}

func TestAccept_Boundaries(t *testing.T) {
	fifty := strings.Repeat("a", 50)
	fiftyOne := strings.Repeat("a", 51)

	assert.False(t, quality.Accept(fifty, 100), "length must exceed 50")
	assert.True(t, quality.Accept(fiftyOne, 100))
	assert.False(t, quality.Accept(fiftyOne, 10), "score must exceed 10")
	assert.True(t, quality.Accept(fiftyOne, 10.01))
	assert.False(t, quality.Accept("   "+fifty+"   ", 100), "surrounding whitespace does not count")
}

func TestLoadVocabulary(t *testing.T) {
	words, err := quality.LoadVocabulary(strings.NewReader("# comment\npython\n\n  Go  \n#another\nrust\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"python", "Go", "rust"}, words)

	s := quality.NewScorer(words)
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, 1, s.Breakdown("go").VocabularyHits)
}
