// Package fuzzy maps misspelled tokens onto the lexicon vocabulary.
package fuzzy

import (
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/shoppit/backend/internal/lexicon"
)

const DefaultThreshold = 0.6

// Corrector is safe for concurrent use; it only reads the lexicon and its own
// precomputed candidate list.
type Corrector struct {
	lex        *lexicon.Lexicon
	threshold  float64
	candidates []candidate
}

type candidate struct {
	word  string
	runes []string
}

func NewCorrector(lex *lexicon.Lexicon, threshold float64) *Corrector {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}

	vocab := lex.Vocabulary()
	candidates := make([]candidate, 0, len(vocab))
	for _, w := range vocab {
		candidates = append(candidates, candidate{word: w, runes: splitRunes(w)})
	}

	return &Corrector{
		lex:        lex,
		threshold:  threshold,
		candidates: candidates,
	}
}

// Correct returns the canonical lexicon term for token, or token itself when
// it is too short, already known, or nothing is similar enough.
func (c *Corrector) Correct(token string) string {
	if len([]rune(token)) <= 2 {
		return token
	}
	if c.lex.IsKnown(token) {
		return token
	}
	if canonical, ok := c.lex.CanonicalFor(token); ok {
		return canonical
	}

	best, ok := c.closest(token)
	if !ok {
		return token
	}
	// The vocabulary carries misspelling variants too; never hand one back.
	if !c.lex.IsKnown(best) {
		if canonical, ok := c.lex.CanonicalFor(best); ok {
			return canonical
		}
	}
	return best
}

// CorrectAll applies Correct to every token, preserving positions.
func (c *Corrector) CorrectAll(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = c.Correct(t)
	}
	return out
}

type scored struct {
	score float64
	word  string
}

// closest mirrors difflib's get_close_matches with n=1: cheap upper bounds
// first, then the full ratio, keeping the highest (score, word) pair.
func (c *Corrector) closest(token string) (string, bool) {
	target := splitRunes(token)
	matcher := difflib.NewMatcher(nil, target)

	var matches []scored
	for _, cand := range c.candidates {
		matcher.SetSeq1(cand.runes)
		if matcher.RealQuickRatio() < c.threshold {
			continue
		}
		if matcher.QuickRatio() < c.threshold {
			continue
		}
		if r := matcher.Ratio(); r >= c.threshold {
			matches = append(matches, scored{score: r, word: cand.word})
		}
	}

	if len(matches) == 0 {
		return "", false
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return strings.Compare(matches[i].word, matches[j].word) > 0
	})

	return matches[0].word, true
}

// Similarity is the difflib ratio between two words, 2*M/T over matching
// blocks.
func Similarity(a, b string) float64 {
	return difflib.NewMatcher(splitRunes(a), splitRunes(b)).Ratio()
}

func splitRunes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
