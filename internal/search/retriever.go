package search

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/shoppit/backend/internal/fuzzy"
	"github.com/shoppit/backend/internal/lexicon"
	"github.com/shoppit/backend/internal/metrics"
	"github.com/shoppit/backend/internal/storage"
	"github.com/shoppit/backend/internal/storage/models"
	"github.com/shoppit/backend/internal/textnorm"
	"github.com/shoppit/backend/pkg/logger"
	"github.com/shoppit/backend/pkg/utils"
)

const (
	DefaultMaxResults   = 12
	DefaultMinResults   = 3
	DefaultBroadenLimit = 8
	minQueryLength      = 3
	minTermLength       = 3
)

type Options struct {
	MaxResults   int
	MinResults   int
	BroadenLimit int
}

func (o Options) withDefaults() Options {
	if o.MaxResults <= 0 {
		o.MaxResults = DefaultMaxResults
	}
	if o.MinResults <= 0 {
		o.MinResults = DefaultMinResults
	}
	if o.BroadenLimit <= 0 {
		o.BroadenLimit = DefaultBroadenLimit
	}
	return o
}

// ResultCache stores finished searches keyed by normalized query.
type ResultCache interface {
	GetProducts(ctx context.Context, key string) ([]models.Product, bool, error)
	SetProducts(ctx context.Context, key string, products []models.Product) error
}

// Retriever answers free-text product queries. It never returns an error:
// record-store failures are logged and yield no products.
type Retriever struct {
	lex       *lexicon.Lexicon
	corrector *fuzzy.Corrector
	expander  *Expander
	products  storage.ProductRepository
	cache     ResultCache
	opts      Options
}

func NewRetriever(lex *lexicon.Lexicon, corrector *fuzzy.Corrector, expander *Expander, products storage.ProductRepository, opts Options) *Retriever {
	return &Retriever{
		lex:       lex,
		corrector: corrector,
		expander:  expander,
		products:  products,
		opts:      opts.withDefaults(),
	}
}

func (r *Retriever) WithCache(cache ResultCache) *Retriever {
	r.cache = cache
	return r
}

// plan is everything derived from the query text before touching the store.
type plan struct {
	normalized     string
	searchTerms    []string
	correctedTerms []string
	expanded       []string
	categories     []string
	attributes     Attributes
}

func (r *Retriever) plan(query string) (plan, bool) {
	words := textnorm.Tokens(query)
	corrected := r.corrector.CorrectAll(words)

	p := plan{normalized: strings.Join(words, " ")}
	p.correctedTerms = r.significant(corrected)
	p.searchTerms = union(r.significant(words), p.correctedTerms)
	if len(p.searchTerms) == 0 {
		return p, false
	}

	p.attributes = r.expander.ExtractAttributes(query)
	p.expanded = r.expander.Expand(p.searchTerms)
	p.categories = r.expander.IdentifyCategories(query)
	return p, true
}

func (r *Retriever) significant(words []string) []string {
	var out []string
	for _, w := range words {
		if len([]rune(w)) < minTermLength || r.lex.IsStopword(w) {
			continue
		}
		out = append(out, w)
	}
	return out
}

// FindProducts returns up to MaxResults products for a free-text query, in
// the order the lookup passes discovered them.
func (r *Retriever) FindProducts(ctx context.Context, query string) []models.Product {
	if len([]rune(strings.TrimSpace(query))) < minQueryLength {
		return nil
	}

	p, ok := r.plan(query)
	if !ok {
		return nil
	}

	key := utils.CacheKey("search", p.normalized)
	if cached, hit := r.cached(ctx, key); hit {
		return cached
	}

	products, err := r.lookup(ctx, p)
	if err != nil {
		logger.Error("Product search failed",
			zap.String("query", query),
			zap.Error(err),
		)
		metrics.StoreErrors.WithLabelValues("products", "search").Inc()
		return nil
	}

	metrics.SearchResults.Observe(float64(len(products)))

	if r.cache != nil {
		if err := r.cache.SetProducts(ctx, key, products); err != nil {
			logger.Warn("Failed to cache search results", zap.Error(err))
		}
	}

	return products
}

func (r *Retriever) lookup(ctx context.Context, p plan) ([]models.Product, error) {
	primary := storage.ByNameOrDescriptionContains(p.expanded, r.opts.MaxResults).
		WithPriority(r.priorityClauses(p)...)

	found, err := r.products.SearchProducts(ctx, primary)
	if err != nil {
		return nil, err
	}

	acc := newAccumulator(r.opts.MaxResults)
	acc.add(found)

	if acc.count() < r.opts.MinResults && len(p.correctedTerms) > 0 {
		metrics.SearchBroadening.WithLabelValues("corrected_terms").Inc()

		found, err := r.products.SearchProducts(ctx, storage.ByNameOrDescriptionContains(p.correctedTerms, r.opts.BroadenLimit))
		if err != nil {
			return nil, err
		}
		acc.add(found)
	}

	if acc.count() < r.opts.MinResults && len(p.categories) > 0 {
		metrics.SearchBroadening.WithLabelValues("category").Inc()

		found, err := r.products.SearchProducts(ctx, storage.ByCategoryContains(p.categories[0], r.opts.BroadenLimit))
		if err != nil {
			return nil, err
		}
		acc.add(found)
	}

	return acc.products, nil
}

// priorityClauses ranks products in a detected category or mentioning a
// requested attribute first, without excluding anything else.
func (r *Retriever) priorityClauses(p plan) []storage.Clause {
	var clauses []storage.Clause
	for _, c := range p.categories {
		clauses = append(clauses, storage.Clause{Field: storage.FieldCategory, Term: c})
	}
	for _, v := range p.attributes.Values(r.lex.Attributes()) {
		clauses = append(clauses,
			storage.Clause{Field: storage.FieldName, Term: v},
			storage.Clause{Field: storage.FieldDescription, Term: v},
		)
	}
	return clauses
}

func (r *Retriever) cached(ctx context.Context, key string) ([]models.Product, bool) {
	if r.cache == nil {
		return nil, false
	}

	products, ok, err := r.cache.GetProducts(ctx, key)
	if err != nil {
		logger.Warn("Search cache lookup failed", zap.Error(err))
		ok = false
	}
	if !ok {
		metrics.CacheMisses.WithLabelValues("search").Inc()
		return nil, false
	}

	metrics.CacheHits.WithLabelValues("search").Inc()
	return products, true
}

// Plan exposes the query analysis for diagnostics (CLI and tests).
type Plan struct {
	SearchTerms []string
	Expanded    []string
	Categories  []string
	Attributes  Attributes
}

func (r *Retriever) Explain(query string) Plan {
	p, _ := r.plan(query)
	return Plan{
		SearchTerms: p.searchTerms,
		Expanded:    p.expanded,
		Categories:  p.categories,
		Attributes:  p.attributes,
	}
}

type accumulator struct {
	limit    int
	seen     map[int64]struct{}
	products []models.Product
}

func newAccumulator(limit int) *accumulator {
	return &accumulator{limit: limit, seen: make(map[int64]struct{})}
}

func (a *accumulator) add(products []models.Product) {
	for _, p := range products {
		if len(a.products) >= a.limit {
			return
		}
		if _, ok := a.seen[p.ID]; ok {
			continue
		}
		a.seen[p.ID] = struct{}{}
		a.products = append(a.products, p)
	}
}

func (a *accumulator) count() int { return len(a.products) }

func union(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	var out []string
	for _, list := range [][]string{a, b} {
		for _, w := range list {
			if _, ok := seen[w]; ok {
				continue
			}
			seen[w] = struct{}{}
			out = append(out, w)
		}
	}
	return out
}
