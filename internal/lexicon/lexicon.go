// Package lexicon holds the static vocabulary tables the chatbot reasons with:
// synonym groups, known misspellings, product categories, attribute
// vocabularies and the stop-word list.
//
// A Lexicon is immutable once built and safe for concurrent use.
package lexicon

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/shoppit/backend/internal/textnorm"
)

//go:embed default.yaml
var defaultTables []byte

// AttributeType names a product attribute vocabulary. Attributes are a
// taxonomy parallel to categories, never a category themselves.
type AttributeType string

const (
	Colors    AttributeType = "colors"
	Materials AttributeType = "materials"
	Sizes     AttributeType = "sizes"
	Brands    AttributeType = "brands"
)

func (a AttributeType) Valid() bool {
	switch a {
	case Colors, Materials, Sizes, Brands:
		return true
	}
	return false
}

type SynonymGroup struct {
	Term     string   `yaml:"term"`
	Synonyms []string `yaml:"synonyms"`
}

// Contains reports whether word is the group key or one of its synonyms.
func (g SynonymGroup) Contains(word string) bool {
	if g.Term == word {
		return true
	}
	for _, s := range g.Synonyms {
		if s == word {
			return true
		}
	}
	return false
}

type Misspelling struct {
	Canonical string   `yaml:"canonical"`
	Variants  []string `yaml:"variants"`
}

type Category struct {
	Name  string   `yaml:"name"`
	Terms []string `yaml:"terms"`
}

type AttributeVocabulary struct {
	Type   AttributeType `yaml:"type"`
	Values []string      `yaml:"values"`
}

// Tables is the serialized form of a lexicon.
type Tables struct {
	Synonyms     []SynonymGroup        `yaml:"synonyms"`
	Misspellings []Misspelling         `yaml:"misspellings"`
	Categories   []Category            `yaml:"categories"`
	Attributes   []AttributeVocabulary `yaml:"attributes"`
	Stopwords    []string              `yaml:"stopwords"`
}

type Lexicon struct {
	synonyms     []SynonymGroup
	misspellings []Misspelling
	categories   []Category
	attributes   []AttributeVocabulary

	stopwords  map[string]struct{}
	known      map[string]struct{}
	variants   map[string]string
	vocabulary []string
}

var (
	defaultOnce sync.Once
	defaultLex  *Lexicon
)

// Default returns the embedded Spanish storefront lexicon.
func Default() *Lexicon {
	defaultOnce.Do(func() {
		lex, err := Parse(defaultTables)
		if err != nil {
			panic(fmt.Sprintf("lexicon: embedded tables are invalid: %v", err))
		}
		defaultLex = lex
	})
	return defaultLex
}

func LoadFile(path string) (*Lexicon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open lexicon file: %w", err)
	}
	defer f.Close()

	return Load(f)
}

func Load(r io.Reader) (*Lexicon, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read lexicon: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Lexicon, error) {
	var tables Tables
	if err := yaml.Unmarshal(data, &tables); err != nil {
		return nil, fmt.Errorf("failed to parse lexicon: %w", err)
	}
	return New(tables)
}

// New validates and normalizes the tables and builds the lookup indexes.
func New(t Tables) (*Lexicon, error) {
	lex := &Lexicon{
		stopwords: make(map[string]struct{}),
		known:     make(map[string]struct{}),
		variants:  make(map[string]string),
	}

	seen := make(map[string]struct{})
	addVocabulary := func(word string) {
		if _, ok := seen[word]; ok {
			return
		}
		seen[word] = struct{}{}
		lex.vocabulary = append(lex.vocabulary, word)
	}

	for _, g := range t.Synonyms {
		term := textnorm.Normalize(g.Term)
		if term == "" {
			return nil, errors.New("synonym group with empty term")
		}
		group := SynonymGroup{Term: term, Synonyms: normalizeAll(g.Synonyms)}
		lex.synonyms = append(lex.synonyms, group)

		addVocabulary(term)
		lex.known[term] = struct{}{}
		for _, s := range group.Synonyms {
			addVocabulary(s)
			lex.known[s] = struct{}{}
		}
	}

	for _, m := range t.Misspellings {
		canonical := textnorm.Normalize(m.Canonical)
		if canonical == "" {
			return nil, errors.New("misspelling group with empty canonical term")
		}
		group := Misspelling{Canonical: canonical, Variants: normalizeAll(m.Variants)}
		lex.misspellings = append(lex.misspellings, group)

		addVocabulary(canonical)
		lex.known[canonical] = struct{}{}
		for _, v := range group.Variants {
			addVocabulary(v)
			if _, ok := lex.variants[v]; !ok {
				lex.variants[v] = canonical
			}
		}
	}

	for _, c := range t.Categories {
		name := textnorm.Normalize(c.Name)
		if name == "" {
			return nil, errors.New("category with empty name")
		}
		category := Category{Name: name, Terms: normalizeAll(c.Terms)}
		lex.categories = append(lex.categories, category)
		for _, term := range category.Terms {
			lex.known[term] = struct{}{}
		}
	}

	for _, a := range t.Attributes {
		if !a.Type.Valid() {
			return nil, fmt.Errorf("unknown attribute type %q", a.Type)
		}
		vocab := AttributeVocabulary{Type: a.Type, Values: normalizeAll(a.Values)}
		lex.attributes = append(lex.attributes, vocab)
		for _, v := range vocab.Values {
			lex.known[v] = struct{}{}
		}
	}

	for _, w := range t.Stopwords {
		if n := textnorm.Normalize(w); n != "" {
			lex.stopwords[n] = struct{}{}
		}
	}

	return lex, nil
}

func normalizeAll(words []string) []string {
	out := make([]string, 0, len(words))
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		n := textnorm.Normalize(w)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// The accessors below return the lexicon's own slices; callers must not
// modify them.

func (l *Lexicon) SynonymGroups() []SynonymGroup { return l.synonyms }

func (l *Lexicon) Misspellings() []Misspelling { return l.misspellings }

func (l *Lexicon) Categories() []Category { return l.categories }

func (l *Lexicon) Attributes() []AttributeVocabulary { return l.attributes }

// Vocabulary is the flattened list of synonym and misspelling terms, in
// first-seen order. It is the candidate list for fuzzy correction.
func (l *Lexicon) Vocabulary() []string { return l.vocabulary }

// IsKnown reports whether word is a correctly spelled lexicon term: a synonym,
// a canonical spelling, a category term or an attribute value. Misspelling
// variants are not known terms unless listed elsewhere.
func (l *Lexicon) IsKnown(word string) bool {
	_, ok := l.known[word]
	return ok
}

// CanonicalFor returns the canonical spelling when word is a listed
// misspelling.
func (l *Lexicon) CanonicalFor(word string) (string, bool) {
	c, ok := l.variants[word]
	return c, ok
}

func (l *Lexicon) IsStopword(word string) bool {
	_, ok := l.stopwords[word]
	return ok
}
