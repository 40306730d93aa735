package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shoppit/backend/internal/fuzzy"
	"github.com/shoppit/backend/internal/lexicon"
)

func newTestExpander() *Expander {
	lex := lexicon.Default()
	return NewExpander(lex, fuzzy.NewCorrector(lex, fuzzy.DefaultThreshold))
}

func TestExpand(t *testing.T) {
	e := newTestExpander()

	assert.Equal(t,
		[]string{"zapato", "zapatos", "calzado", "tenis", "zapatillas", "sneakers", "deportivos"},
		e.Expand([]string{"zapato"}))

	assert.Equal(t,
		[]string{"sapato", "zapato", "zapatos", "calzado", "tenis", "zapatillas", "sneakers", "deportivos"},
		e.Expand([]string{"sapato"}))

	// camiseta is both a group key and a member of the camisa group.
	assert.ElementsMatch(t,
		[]string{"camiseta", "camisa", "playera", "remera", "polo", "blusa", "franela", "polera"},
		e.Expand([]string{"camiseta"}))
}

func TestExpand_Deduplicates(t *testing.T) {
	e := newTestExpander()

	got := e.Expand([]string{"zapato", "zapatos", "tenis"})
	seen := map[string]bool{}
	for _, w := range got {
		assert.False(t, seen[w], "duplicate %q", w)
		seen[w] = true
	}
	assert.Len(t, got, 7)
}

func TestExpand_UnknownTokenKeptAlone(t *testing.T) {
	e := newTestExpander()
	assert.Equal(t, []string{"xyzqw"}, e.Expand([]string{"xyzqw"}))
}

func TestIdentifyCategories(t *testing.T) {
	e := newTestExpander()

	tests := []struct {
		query string
		want  []string
	}{
		{"busco una camiseta roja", []string{"ropa"}},
		{"celular samsung", []string{"electronica"}},
		{"sapato negro", []string{"ropa"}},
		{"Una mesa de madera", []string{"hogar"}},
		{"pantalla grande", []string{"electronica"}},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, e.IdentifyCategories(tt.query))
		})
	}
}

func TestExtractAttributes(t *testing.T) {
	e := newTestExpander()

	attrs := e.ExtractAttributes("Zapato negro talla grande Samsung")
	assert.Equal(t, []string{"negro"}, attrs[lexicon.Colors])
	assert.Equal(t, []string{"grande"}, attrs[lexicon.Sizes])
	assert.Equal(t, []string{"samsung"}, attrs[lexicon.Brands])
	assert.NotContains(t, attrs, lexicon.Materials)

	attrs = e.ExtractAttributes("camiseta de algodón talla M")
	assert.Equal(t, []string{"algodon"}, attrs[lexicon.Materials])
	assert.Equal(t, []string{"m"}, attrs[lexicon.Sizes])
	assert.Equal(t, []string{"algodon", "m"}, attrs.Values(lexicon.Default().Attributes()))

	assert.True(t, e.ExtractAttributes("mesa").Empty())
}
