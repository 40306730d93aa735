package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoppit/backend/internal/fuzzy"
	"github.com/shoppit/backend/internal/lexicon"
	"github.com/shoppit/backend/internal/storage"
	"github.com/shoppit/backend/internal/storage/models"
)

func catalog() []models.Product {
	return []models.Product{
		{ID: 1, Name: "Camiseta Roja Básica", Description: "Camiseta de algodón", Price: 19.9, Category: "Ropa"},
		{ID: 2, Name: "Zapato Negro de Cuero", Description: "Zapato formal", Price: 89, Category: "Ropa"},
		{ID: 3, Name: "Zapatillas Running Negras", Description: "Calzado deportivo", Price: 120, Category: "Ropa"},
		{ID: 4, Name: "Teléfono Samsung Galaxy", Description: "Celular con pantalla AMOLED", Price: 399, Category: "Electrónica"},
		{ID: 5, Name: "Mesa de Comedor", Description: "Mesa de madera", Price: 250, Category: "Hogar"},
		{ID: 6, Name: "Audífonos Sony", Description: "Auriculares inalámbricos", Price: 59, Category: "Electrónica"},
	}
}

func newTestRetriever(repo storage.ProductRepository, opts Options) *Retriever {
	lex := lexicon.Default()
	corrector := fuzzy.NewCorrector(lex, fuzzy.DefaultThreshold)
	return NewRetriever(lex, corrector, NewExpander(lex, corrector), repo, opts)
}

func ids(products []models.Product) []int64 {
	out := make([]int64, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func TestFindProducts_ShortQuery(t *testing.T) {
	repo := &memoryProducts{products: catalog()}
	r := newTestRetriever(repo, Options{})

	assert.Empty(t, r.FindProducts(context.Background(), "ok"))
	assert.Empty(t, r.FindProducts(context.Background(), "  tv "))
	assert.Empty(t, r.FindProducts(context.Background(), ""))
	assert.Empty(t, repo.queries)
}

func TestFindProducts_OnlyStopwords(t *testing.T) {
	repo := &memoryProducts{products: catalog()}
	r := newTestRetriever(repo, Options{})

	assert.Empty(t, r.FindProducts(context.Background(), "de la con"))
	assert.Empty(t, repo.queries)
}

func TestFindProducts_PrimaryThenBroadening(t *testing.T) {
	repo := &memoryProducts{products: catalog()}
	r := newTestRetriever(repo, Options{})

	got := r.FindProducts(context.Background(), "zapato negro")
	assert.Equal(t, []int64{2, 3, 1}, ids(got))

	require.Len(t, repo.queries, 3)
	primary := repo.queries[0]
	assert.Contains(t, primary.Priority, storage.Clause{Field: storage.FieldCategory, Term: "ropa"})
	assert.Contains(t, primary.Priority, storage.Clause{Field: storage.FieldName, Term: "negro"})
	assert.Equal(t, DefaultMaxResults, primary.Limit)
	assert.Equal(t, storage.ByCategoryContains("ropa", DefaultBroadenLimit), repo.queries[2])
}

func TestFindProducts_MisspellingMatchesCorrectSpelling(t *testing.T) {
	r := newTestRetriever(&memoryProducts{products: catalog()}, Options{})
	ctx := context.Background()

	correct := ids(r.FindProducts(ctx, "zapato negro"))
	misspelled := ids(r.FindProducts(ctx, "sapato negro"))

	require.NotEmpty(t, correct)
	assert.Subset(t, misspelled, correct)
}

func TestFindProducts_NoBroadeningWhenEnough(t *testing.T) {
	repo := &memoryProducts{products: catalog()}
	r := newTestRetriever(repo, Options{MinResults: 1})

	got := r.FindProducts(context.Background(), "audifonos")
	assert.Equal(t, []int64{6}, ids(got))
	assert.Len(t, repo.queries, 1)
}

func TestFindProducts_CapsResults(t *testing.T) {
	r := newTestRetriever(&memoryProducts{products: catalog()}, Options{MaxResults: 2})

	got := r.FindProducts(context.Background(), "zapato negro")
	assert.Len(t, got, 2)
}

func TestFindProducts_StoreErrorYieldsEmpty(t *testing.T) {
	r := newTestRetriever(&memoryProducts{products: catalog(), err: errStoreDown, failOn: 1}, Options{})
	assert.Empty(t, r.FindProducts(context.Background(), "zapato negro"))
}

func TestFindProducts_BroadeningErrorYieldsEmpty(t *testing.T) {
	r := newTestRetriever(&memoryProducts{products: catalog(), err: errStoreDown, failOn: 2}, Options{})
	assert.Empty(t, r.FindProducts(context.Background(), "zapato negro"))
}

func TestFindProducts_UsesCache(t *testing.T) {
	repo := &memoryProducts{products: catalog()}
	cache := &memoryCache{}
	r := newTestRetriever(repo, Options{}).WithCache(cache)
	ctx := context.Background()

	first := r.FindProducts(ctx, "Zapato negro")
	queries := len(repo.queries)

	second := r.FindProducts(ctx, "zapato  NEGRO!")
	assert.Equal(t, first, second)
	assert.Len(t, repo.queries, queries, "second search must be served from cache")
	assert.Equal(t, 1, cache.sets)
}

func TestExplain(t *testing.T) {
	r := newTestRetriever(&memoryProducts{}, Options{})

	p := r.Explain("sapato negro")
	assert.Equal(t, []string{"sapato", "negro", "zapato"}, p.SearchTerms)
	assert.Equal(t, []string{"ropa"}, p.Categories)
	assert.Equal(t, []string{"negro"}, p.Attributes[lexicon.Colors])
	assert.Contains(t, p.Expanded, "zapatillas")
}
