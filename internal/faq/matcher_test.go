package faq

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoppit/backend/internal/storage/models"
)

type stubFAQs struct {
	faqs []models.FAQ
	err  error
}

func (s *stubFAQs) ListActiveFAQs(context.Context) ([]models.FAQ, error) {
	return s.faqs, s.err
}

func testFAQs() []models.FAQ {
	return []models.FAQ{
		{ID: 1, Question: "¿Cuáles son los métodos de pago?", Answer: "Aceptamos PayPal y ePayco.", Keywords: "pago, tarjeta, paypal", IsActive: true},
		{ID: 2, Question: "¿Cuánto tarda el envío?", Answer: "Entre 3 y 5 días hábiles.", Keywords: "envio, entrega, demora", IsActive: true},
		{ID: 3, Question: "¿Puedo pagar en efectivo?", Answer: "No por ahora.", Keywords: "efectivo, tarjeta", IsActive: false},
	}
}

func newLoadedMatcher(t *testing.T, faqs []models.FAQ) *Matcher {
	t.Helper()

	m := NewMatcher(&stubFAQs{faqs: faqs})
	require.NoError(t, m.Reload(context.Background()))
	return m
}

func TestMatch_ExactQuestion(t *testing.T) {
	m := newLoadedMatcher(t, testFAQs())

	answer, ok := m.Match("cuales son los metodos de pago")
	require.True(t, ok)
	assert.Equal(t, "Aceptamos PayPal y ePayco.", answer)
}

func TestMatch_ScoreThreshold(t *testing.T) {
	m := newLoadedMatcher(t, testFAQs())

	// One keyword: score 2, below the threshold.
	_, ok := m.Match("tarjeta")
	assert.False(t, ok)

	// Two keywords: score 4.
	answer, ok := m.Match("¿Puedo usar tarjeta o PayPal?")
	require.True(t, ok)
	assert.Equal(t, "Aceptamos PayPal y ePayco.", answer)
}

func TestMatch_QuestionWordOverlap(t *testing.T) {
	m := newLoadedMatcher(t, testFAQs())

	// "cuanto" and "tarda" overlap the question (2) plus the "demora"
	// keyword (2).
	f, ok := m.MatchFAQ("cuanto tarda y cuanta demora")
	require.True(t, ok)
	assert.Equal(t, int64(2), f.ID)

	// Words of three letters or fewer never count.
	_, ok = m.Match("son los de el")
	assert.False(t, ok)
}

func TestMatch_InactiveIgnored(t *testing.T) {
	m := newLoadedMatcher(t, testFAQs())

	_, ok := m.Match("aceptan efectivo")
	assert.False(t, ok)
	assert.Equal(t, 2, m.Size())
}

func TestMatch_TieKeepsFirst(t *testing.T) {
	m := newLoadedMatcher(t, []models.FAQ{
		{ID: 10, Question: "Primera", Answer: "uno", Keywords: "cambio, talla", IsActive: true},
		{ID: 11, Question: "Segunda", Answer: "dos", Keywords: "cambio, talla", IsActive: true},
	})

	answer, ok := m.Match("cambio de talla")
	require.True(t, ok)
	assert.Equal(t, "uno", answer)
}

func TestMatch_EmptyIndex(t *testing.T) {
	m := NewMatcher(&stubFAQs{})

	_, ok := m.Match("metodos de pago")
	assert.False(t, ok)
	_, ok = m.Match("")
	assert.False(t, ok)
}

func TestReload_FailureKeepsPreviousIndex(t *testing.T) {
	repo := &stubFAQs{faqs: testFAQs()}
	m := NewMatcher(repo)
	require.NoError(t, m.Reload(context.Background()))

	repo.err = errors.New("database is locked")
	assert.Error(t, m.Reload(context.Background()))

	_, ok := m.Match("tarjeta o paypal")
	assert.True(t, ok)
}

func TestReload_ConcurrentWithMatch(t *testing.T) {
	repo := &stubFAQs{faqs: testFAQs()}
	m := newLoadedMatcher(t, testFAQs())
	m.repo = repo

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = m.Reload(context.Background())
		}()
		go func() {
			defer wg.Done()
			_, ok := m.Match("tarjeta o paypal")
			assert.True(t, ok)
		}()
	}
	wg.Wait()
}

func TestParseKeywords(t *testing.T) {
	assert.Equal(t, []string{"envio", "metodo de pago", "devolucion"}, ParseKeywords(" Envío, método de pago,,Devolución ,"))
	assert.Empty(t, ParseKeywords(""))
}
