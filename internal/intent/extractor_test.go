package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoppit/backend/internal/fuzzy"
	"github.com/shoppit/backend/internal/lexicon"
)

func newTestExtractor() *Extractor {
	lex := lexicon.Default()
	return NewExtractor(lex, fuzzy.NewCorrector(lex, fuzzy.DefaultThreshold))
}

func TestExtractProductQuery_Patterns(t *testing.T) {
	e := newTestExtractor()

	tests := []struct {
		message string
		want    string
	}{
		{"busco una camiseta roja", "camiseta roja"},
		{"Busco un teléfono Samsung.", "telefono samsung"},
		{"necesito zapatos negros", "zapatos negros"},
		{"¿Tienen audífonos Sony?", "audifonos sony"},
		{"¿Me puedes mostrar unas zapatillas?", "zapatillas"},
		{"estoy interesada en una laptop", "laptop"},
		{"me gustaría ver pantalones azules", "pantalones azules"},
		{"quiero ver camisetas", "camisetas"},
		{"Muéstrame zapatos deportivos", "zapatos deportivos"},
		{"¿tienes vestidos?", "vestidos"},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			got, ok := e.ExtractProductQuery(tt.message)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractProductQuery_CategoryWindow(t *testing.T) {
	e := newTestExtractor()

	got, ok := e.ExtractProductQuery("sapato negro")
	require.True(t, ok)
	assert.Equal(t, "sapato negro", got)

	got, ok = e.ExtractProductQuery("algo bonito para la mesa del comedor grande y elegante ya")
	require.True(t, ok)
	assert.Equal(t, "bonito para la mesa del comedor grande", got)
}

func TestExtractProductQuery_None(t *testing.T) {
	e := newTestExtractor()

	for _, msg := range []string{"", "el clima esta agradable", "???"} {
		_, ok := e.ExtractProductQuery(msg)
		assert.False(t, ok, msg)
	}
}

func TestExtractFollowUp(t *testing.T) {
	e := newTestExtractor()

	tests := []struct {
		message string
		want    FollowUpRef
	}{
		{"más información sobre el producto 2", FollowUpRef{Index: 2}},
		{"quiero más detalles del artículo número 3", FollowUpRef{Index: 3}},
		{"me interesa el producto #1", FollowUpRef{Index: 1}},
		{"cuéntame más sobre la camiseta roja", FollowUpRef{Name: "camiseta roja"}},
		{"más información sobre los audífonos sony por favor", FollowUpRef{Name: "audifonos sony"}},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			got, ok := e.ExtractFollowUp(tt.message)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractFollowUp_None(t *testing.T) {
	e := newTestExtractor()

	for _, msg := range []string{"", "hola", "busco una camiseta", "el producto 0", "cuentame mas de tv"} {
		_, ok := e.ExtractFollowUp(msg)
		assert.False(t, ok, msg)
	}
}
