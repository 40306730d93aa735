// Package faq answers customer questions from the stored FAQ set.
package faq

import (
	"context"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/shoppit/backend/internal/metrics"
	"github.com/shoppit/backend/internal/storage"
	"github.com/shoppit/backend/internal/storage/models"
	"github.com/shoppit/backend/internal/textnorm"
	"github.com/shoppit/backend/pkg/logger"
)

const (
	MinScore      = 3
	keywordWeight = 2
	minWordLength = 4
)

type entry struct {
	faq      models.FAQ
	question string
	words    map[string]struct{}
	keywords []string
}

// index is immutable once published.
type index struct {
	entries []entry
	exact   map[string]int
}

func buildIndex(faqs []models.FAQ) *index {
	idx := &index{exact: make(map[string]int)}

	for _, f := range faqs {
		if !f.IsActive {
			continue
		}

		question := textnorm.Normalize(f.Question)
		e := entry{faq: f, question: question, words: make(map[string]struct{})}
		for _, w := range strings.Fields(question) {
			e.words[w] = struct{}{}
		}
		e.keywords = ParseKeywords(f.Keywords)

		if _, dup := idx.exact[question]; !dup && question != "" {
			idx.exact[question] = len(idx.entries)
		}
		idx.entries = append(idx.entries, e)
	}

	return idx
}

// ParseKeywords splits a comma separated keyword list into normalized,
// non-empty keywords.
func ParseKeywords(raw string) []string {
	var out []string
	for _, kw := range strings.Split(raw, ",") {
		if n := textnorm.Normalize(kw); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// Matcher is safe for concurrent use. Reload swaps in a fully built index, so
// in-flight matches keep reading the index they started with.
type Matcher struct {
	repo storage.FAQRepository
	idx  atomic.Pointer[index]
}

func NewMatcher(repo storage.FAQRepository) *Matcher {
	m := &Matcher{repo: repo}
	m.idx.Store(buildIndex(nil))
	return m
}

// Reload fetches the active FAQs. On failure the current index is kept.
func (m *Matcher) Reload(ctx context.Context) error {
	faqs, err := m.repo.ListActiveFAQs(ctx)
	if err != nil {
		metrics.FAQReloads.WithLabelValues("error").Inc()
		metrics.StoreErrors.WithLabelValues("faqs", "list_active").Inc()
		return err
	}

	idx := buildIndex(faqs)
	m.idx.Store(idx)

	metrics.FAQReloads.WithLabelValues("ok").Inc()
	metrics.FAQIndexSize.Set(float64(len(idx.entries)))
	logger.Info("FAQ index loaded", zap.Int("faqs", len(idx.entries)))
	return nil
}

func (m *Matcher) Size() int {
	return len(m.idx.Load().entries)
}

// Match returns the answer of the best matching FAQ. An exact normalized
// question match wins outright; otherwise the highest keyword/word overlap
// score is used when it reaches MinScore, the earliest FAQ winning ties.
func (m *Matcher) Match(message string) (string, bool) {
	f, ok := m.MatchFAQ(message)
	if !ok {
		return "", false
	}
	return f.Answer, true
}

func (m *Matcher) MatchFAQ(message string) (models.FAQ, bool) {
	idx := m.idx.Load()
	normalized := textnorm.Normalize(message)
	if normalized == "" || len(idx.entries) == 0 {
		return models.FAQ{}, false
	}

	if i, ok := idx.exact[normalized]; ok {
		metrics.FAQMatches.WithLabelValues("exact").Inc()
		return idx.entries[i].faq, true
	}

	words := strings.Fields(normalized)

	best, bestScore := -1, 0
	for i, e := range idx.entries {
		s := score(e, normalized, words)
		if s > bestScore {
			best, bestScore = i, s
		}
	}

	if best < 0 || bestScore < MinScore {
		metrics.FAQMatches.WithLabelValues("none").Inc()
		return models.FAQ{}, false
	}

	metrics.FAQMatches.WithLabelValues("scored").Inc()
	return idx.entries[best].faq, true
}

func score(e entry, normalized string, words []string) int {
	s := 0
	for _, kw := range e.keywords {
		if strings.Contains(normalized, kw) {
			s += keywordWeight
		}
	}
	for _, w := range words {
		if utf8.RuneCountInString(w) < minWordLength {
			continue
		}
		if _, ok := e.words[w]; ok {
			s++
		}
	}
	return s
}
