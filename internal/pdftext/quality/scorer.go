// Package quality scores how much a candidate extraction looks like resume
// prose rather than encoding noise.
package quality

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"math"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"
)

const (
	// MinScore and MinLength are exclusive lower bounds for acceptance.
	MinScore  = 10
	MinLength = 50

	maxLetterBonus = 50
)

//go:embed vocabulary.txt
var embeddedVocabulary string

var wordPattern = regexp.MustCompile(`\b[a-zA-Z]{2,}\b`)

// Scorer computes the plausibility score of a text. It is safe for
// concurrent use.
type Scorer struct {
	vocabulary map[string]struct{}
}

// Breakdown exposes the terms that make up a score.
type Breakdown struct {
	Words          int
	VocabularyHits int
	Letters        int
	Score          float64
}

// NewScorer creates a Scorer over the given vocabulary. Terms are matched
// case-insensitively.
func NewScorer(vocabulary []string) *Scorer {
	set := make(map[string]struct{}, len(vocabulary))
	for _, w := range vocabulary {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			set[w] = struct{}{}
		}
	}
	return &Scorer{vocabulary: set}
}

var (
	defaultOnce   sync.Once
	defaultScorer *Scorer
)

// Default returns a Scorer over the embedded vocabulary.
func Default() *Scorer {
	defaultOnce.Do(func() {
		words, err := LoadVocabulary(strings.NewReader(embeddedVocabulary))
		if err != nil {
			panic(fmt.Sprintf("quality: embedded vocabulary: %v", err))
		}
		defaultScorer = NewScorer(words)
	})
	return defaultScorer
}

// LoadVocabulary reads one term per line, skipping blank lines and # comments.
func LoadVocabulary(r io.Reader) ([]string, error) {
	var words []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading vocabulary: %w", err)
	}
	return words, nil
}

// Len returns the number of distinct vocabulary terms.
func (s *Scorer) Len() int {
	return len(s.vocabulary)
}

// Score returns 2*words + 5*vocabularyHits + min(letters/100, 50).
func (s *Scorer) Score(text string) float64 {
	return s.Breakdown(text).Score
}

// Breakdown returns the score together with its inputs.
func (s *Scorer) Breakdown(text string) Breakdown {
	words := wordPattern.FindAllString(text, -1)
	hits := 0
	for _, w := range words {
		if _, ok := s.vocabulary[strings.ToLower(w)]; ok {
			hits++
		}
	}
	letters := 0
	for i := 0; i < len(text); i++ {
		if c := text[i]; (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			letters++
		}
	}
	return Breakdown{
		Words:          len(words),
		VocabularyHits: hits,
		Letters:        letters,
		Score:          float64(2*len(words)+5*hits) + math.Min(float64(letters)/100, maxLetterBonus),
	}
}

// Accept reports whether a scored text is good enough to be the final answer.
// Both bounds are strict.
func Accept(text string, score float64) bool {
	return score > MinScore && utf8.RuneCountInString(strings.TrimSpace(text)) > MinLength
}
