// Package search turns free-text product queries into record-store lookups:
// term expansion through the lexicon, category and attribute detection, and
// the broadening retrieval passes.
package search

import (
	"github.com/shoppit/backend/internal/fuzzy"
	"github.com/shoppit/backend/internal/lexicon"
	"github.com/shoppit/backend/internal/textnorm"
)

// Attributes maps an attribute type to the values a query mentioned, in
// vocabulary order.
type Attributes map[lexicon.AttributeType][]string

func (a Attributes) Empty() bool { return len(a) == 0 }

// Values flattens the attributes in lexicon attribute order.
func (a Attributes) Values(order []lexicon.AttributeVocabulary) []string {
	var out []string
	for _, v := range order {
		out = append(out, a[v.Type]...)
	}
	return out
}

type Expander struct {
	lex       *lexicon.Lexicon
	corrector *fuzzy.Corrector

	// categoryTerms holds, per category in lexicon order, every term that
	// places a word in it: the category's own terms plus their expansions.
	categoryTerms []categorySet
}

type categorySet struct {
	name  string
	terms map[string]struct{}
}

func NewExpander(lex *lexicon.Lexicon, corrector *fuzzy.Corrector) *Expander {
	e := &Expander{lex: lex, corrector: corrector}

	for _, c := range lex.Categories() {
		set := categorySet{name: c.Name, terms: make(map[string]struct{})}
		for _, term := range c.Terms {
			for _, w := range e.Expand([]string{term}) {
				set.terms[w] = struct{}{}
			}
		}
		e.categoryTerms = append(e.categoryTerms, set)
	}

	return e
}

// Expand returns tokens plus their corrections and every synonym group any
// of them (or their correction) belongs to, de-duplicated in first-seen
// order.
func (e *Expander) Expand(tokens []string) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(w string) {
		if w == "" {
			return
		}
		if _, ok := seen[w]; ok {
			return
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}

	for _, token := range tokens {
		add(token)
		corrected := e.corrector.Correct(token)
		add(corrected)

		for _, group := range e.lex.SynonymGroups() {
			if !group.Contains(token) && !group.Contains(corrected) {
				continue
			}
			add(group.Term)
			for _, s := range group.Synonyms {
				add(s)
			}
		}
	}

	return out
}

// IdentifyCategories returns the names of categories the query's words (as
// typed or corrected) belong to, directly or through synonyms.
func (e *Expander) IdentifyCategories(query string) []string {
	words := textnorm.Tokens(query)
	if len(words) == 0 {
		return nil
	}
	candidates := append(append([]string(nil), words...), e.corrector.CorrectAll(words)...)

	var out []string
	for _, c := range e.categoryTerms {
		for _, w := range candidates {
			if _, ok := c.terms[w]; ok {
				out = append(out, c.name)
				break
			}
		}
	}
	return out
}

// ExtractAttributes finds attribute values mentioned as whole words.
func (e *Expander) ExtractAttributes(query string) Attributes {
	words := make(map[string]struct{})
	for _, w := range textnorm.Tokens(query) {
		words[w] = struct{}{}
	}

	attrs := make(Attributes)
	for _, vocab := range e.lex.Attributes() {
		for _, v := range vocab.Values {
			if _, ok := words[v]; ok {
				attrs[vocab.Type] = append(attrs[vocab.Type], v)
			}
		}
	}
	return attrs
}
