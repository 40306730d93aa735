package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCacheKey(t *testing.T) {
	a := CacheKey("search", "zapato negro")
	b := CacheKey("search", "zapato negro")
	c := CacheKey("search", "zapato", "negro")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.True(t, strings.HasPrefix(a, "search:"))
	assert.Len(t, a, len("search:")+32)
}
