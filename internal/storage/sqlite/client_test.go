package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoppit/backend/internal/storage"
	"github.com/shoppit/backend/internal/storage/models"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()

	c, err := NewClient(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	require.NoError(t, c.InitSchema())
	return c
}

func seedProducts(t *testing.T, c *Client, products ...models.Product) []models.Product {
	t.Helper()

	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		p := p
		require.NoError(t, c.UpsertProduct(context.Background(), &p))
		out = append(out, p)
	}
	return out
}

func names(products []models.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.Name
	}
	return out
}

func TestSearchProducts_AccentAndCaseInsensitive(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	seedProducts(t, c,
		models.Product{Name: "Camiseta Roja Básica", Slug: "camiseta-roja", Description: "Algodón 100%", Price: 19.9, Category: "Ropa"},
		models.Product{Name: "Teléfono Samsung A54", Slug: "samsung-a54", Description: "Pantalla AMOLED", Price: 399, Category: "Electrónica"},
		models.Product{Name: "Mesa de centro", Slug: "mesa-centro", Price: 120, Category: "Hogar"},
	)

	got, err := c.SearchProducts(ctx, storage.ByNameOrDescriptionContains([]string{"BASICA"}, 10))
	require.NoError(t, err)
	assert.Equal(t, []string{"Camiseta Roja Básica"}, names(got))

	got, err = c.SearchProducts(ctx, storage.ByNameOrDescriptionContains([]string{"algodon", "amoled"}, 10))
	require.NoError(t, err)
	assert.Equal(t, []string{"Camiseta Roja Básica", "Teléfono Samsung A54"}, names(got))

	got, err = c.SearchProducts(ctx, storage.ByCategoryContains("electronica", 10))
	require.NoError(t, err)
	assert.Equal(t, []string{"Teléfono Samsung A54"}, names(got))
}

func TestSearchProducts_PriorityOrdersWithoutFiltering(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	seedProducts(t, c,
		models.Product{Name: "Zapato Marrón", Slug: "zapato-marron", Category: "Ropa"},
		models.Product{Name: "Zapato Negro", Slug: "zapato-negro", Category: "Ropa"},
		models.Product{Name: "Zapato Azul", Slug: "zapato-azul"},
	)

	q := storage.ByNameOrDescriptionContains([]string{"zapato"}, 10).
		WithPriority(
			storage.Clause{Field: storage.FieldName, Term: "negro"},
			storage.Clause{Field: storage.FieldCategory, Term: "ropa"},
		)

	got, err := c.SearchProducts(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, []string{"Zapato Negro", "Zapato Marrón", "Zapato Azul"}, names(got))
}

func TestSearchProducts_AllOfAndLimit(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	seedProducts(t, c,
		models.Product{Name: "Camiseta Roja", Slug: "a"},
		models.Product{Name: "Camiseta Azul", Slug: "b"},
		models.Product{Name: "Gorra Roja", Slug: "c"},
	)

	got, err := c.SearchProducts(ctx, storage.ByNameContainsAll([]string{"camiseta", "roja"}, 3))
	require.NoError(t, err)
	assert.Equal(t, []string{"Camiseta Roja"}, names(got))

	got, err = c.SearchProducts(ctx, storage.ByNameContainsAny([]string{"camiseta", "roja"}, 2))
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestSearchProducts_EmptyQueryMatchesNothing(t *testing.T) {
	c := newTestClient(t)
	seedProducts(t, c, models.Product{Name: "Mesa", Slug: "mesa"})

	got, err := c.SearchProducts(context.Background(), storage.ByNameOrDescriptionContains([]string{"  ", "?"}, 5))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSearchProducts_UnknownField(t *testing.T) {
	c := newTestClient(t)

	_, err := c.SearchProducts(context.Background(), storage.ProductQuery{AnyOf: []storage.Clause{{Field: "price", Term: "10"}}})
	assert.Error(t, err)
}

func TestGetProduct(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	seeded := seedProducts(t, c, models.Product{Name: "Silla", Slug: "silla", Price: 45.5, Category: "Hogar"})

	p, err := c.GetProduct(ctx, seeded[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Silla", p.Name)
	assert.InDelta(t, 45.5, p.Price, 1e-9)

	_, err = c.GetProduct(ctx, 999)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUpsertProduct_UpdatesBySlug(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	first := seedProducts(t, c, models.Product{Name: "Silla", Slug: "silla", Price: 10})
	second := seedProducts(t, c, models.Product{Name: "Silla Gamer", Slug: "silla", Price: 20})

	assert.Equal(t, first[0].ID, second[0].ID)

	p, err := c.GetProduct(ctx, first[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Silla Gamer", p.Name)
}

func TestFAQs(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	active := &models.FAQ{Question: "¿Cómo puedo pagar?", Answer: "Con PayPal.", Keywords: "pago, paypal", Category: "pagos", IsActive: true}
	inactive := &models.FAQ{Question: "¿Venden online?", Answer: "Sí.", IsActive: false}
	require.NoError(t, c.UpsertFAQ(ctx, active))
	require.NoError(t, c.UpsertFAQ(ctx, inactive))

	faqs, err := c.ListActiveFAQs(ctx)
	require.NoError(t, err)
	require.Len(t, faqs, 1)
	assert.Equal(t, "pago, paypal", faqs[0].Keywords)

	all, err := c.ListFAQs(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestRecordExchangeAndFeedback(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	now := time.Now()

	for i := 0; i < 2; i++ {
		err := c.RecordExchange(ctx, "sess-1",
			models.Turn{Role: models.RoleUser, Text: "hola", CreatedAt: now},
			models.Turn{Role: models.RoleBot, Text: "¡Hola!", CreatedAt: now},
		)
		require.NoError(t, err)
	}

	msgs, err := c.ListMessages(ctx, "sess-1", 3)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, models.RoleBot, msgs[0].Sender)
	assert.Equal(t, models.RoleUser, msgs[1].Sender)
	assert.Equal(t, models.RoleBot, msgs[2].Sender)

	assert.ErrorIs(t, c.SetFeedback(ctx, "sess-1", 6), storage.ErrInvalidFeedback)
	assert.ErrorIs(t, c.SetFeedback(ctx, "missing", 4), storage.ErrNotFound)
	require.NoError(t, c.SetFeedback(ctx, "sess-1", 4))

	conv, err := c.GetConversation(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, conv.Feedback)
	assert.Equal(t, 4, *conv.Feedback)
	assert.NotNil(t, conv.EndedAt)
}
