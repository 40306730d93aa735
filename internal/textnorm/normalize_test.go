package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"accents", "Camión Rápido", "camion rapido"},
		{"enye and cedilla", "Niño FRANÇAIS", "nino francais"},
		{"dieresis", "pingüino", "pinguino"},
		{"punctuation", "¿Tienen zapatos, talla 42?", "tienen zapatos talla 42"},
		{"whitespace runs", "  hola \t\n  mundo  ", "hola mundo"},
		{"symbols only", "!!! ??? ...", ""},
		{"hash reference", "producto #2", "producto 2"},
		{"underscore", "smart_tv", "smart tv"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Normalize(tc.input))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"Camión Rápido",
		"¡¡Hola!! ¿Qué tal?",
		"ÁÉÍÓÚ Ü Ñ Ç",
		"tv-4K  ultra_HD",
		"Ärger über Öl",
		"   ",
		"línea1\nlínea2",
	}

	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestTokens(t *testing.T) {
	assert.Equal(t, []string{"busco", "una", "camiseta", "roja"}, Tokens("Busco una camiseta ROJA!"))
	assert.Empty(t, Tokens(""))
}
