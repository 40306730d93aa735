package search

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/shoppit/backend/internal/storage"
	"github.com/shoppit/backend/internal/storage/models"
	"github.com/shoppit/backend/internal/textnorm"
)

// memoryProducts evaluates product queries the way the SQLite store does:
// folded substring matching, priority ranking, id order, limit.
type memoryProducts struct {
	mu       sync.Mutex
	products []models.Product
	queries  []storage.ProductQuery
	err      error
	failOn   int
}

func (m *memoryProducts) SearchProducts(_ context.Context, q storage.ProductQuery) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.queries = append(m.queries, q)
	if m.err != nil && len(m.queries) >= m.failOn {
		return nil, m.err
	}

	type ranked struct {
		p    models.Product
		rank int
	}
	var hits []ranked
	for _, p := range m.products {
		if !matchAny(p, q.AnyOf) || !matchAll(p, q.AllOf) || q.Empty() {
			continue
		}
		rank := 0
		for _, cl := range q.Priority {
			if matches(p, cl) {
				rank++
			}
		}
		hits = append(hits, ranked{p, rank})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].rank != hits[j].rank {
			return hits[i].rank > hits[j].rank
		}
		return hits[i].p.ID < hits[j].p.ID
	})

	var out []models.Product
	for _, h := range hits {
		if q.Limit > 0 && len(out) >= q.Limit {
			break
		}
		out = append(out, h.p)
	}
	return out, nil
}

func (m *memoryProducts) GetProduct(_ context.Context, id int64) (*models.Product, error) {
	for _, p := range m.products {
		if p.ID == id {
			p := p
			return &p, nil
		}
	}
	return nil, storage.ErrNotFound
}

func matchAny(p models.Product, clauses []storage.Clause) bool {
	if len(clauses) == 0 {
		return true
	}
	for _, cl := range clauses {
		if matches(p, cl) {
			return true
		}
	}
	return false
}

func matchAll(p models.Product, clauses []storage.Clause) bool {
	for _, cl := range clauses {
		if !matches(p, cl) {
			return false
		}
	}
	return true
}

func matches(p models.Product, cl storage.Clause) bool {
	term := textnorm.Normalize(cl.Term)
	if term == "" {
		return false
	}
	var field string
	switch cl.Field {
	case storage.FieldName:
		field = p.Name
	case storage.FieldDescription:
		field = p.Description
	case storage.FieldCategory:
		field = p.Category
	}
	return strings.Contains(textnorm.Normalize(field), term)
}

var errStoreDown = errors.New("store down")

type memoryCache struct {
	entries map[string][]models.Product
	sets    int
}

func (c *memoryCache) GetProducts(_ context.Context, key string) ([]models.Product, bool, error) {
	p, ok := c.entries[key]
	return p, ok, nil
}

func (c *memoryCache) SetProducts(_ context.Context, key string, products []models.Product) error {
	if c.entries == nil {
		c.entries = make(map[string][]models.Product)
	}
	c.entries[key] = products
	c.sets++
	return nil
}
