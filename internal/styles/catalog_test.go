package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_OrderAndTitles(t *testing.T) {
	c := Default()

	assert.Equal(t, []Key{Simplified, BulletPoints, PlainLanguage, Restructured}, c.Keys())
	assert.Equal(t, 4, c.Len())
	assert.Equal(t, Simplified, c.First())
	assert.Equal(t, "Plain Language", c.Title(PlainLanguage))
	assert.Equal(t, "Mystery style", c.Title("mystery_style"))
}

func TestOrdinal_RoundTrip(t *testing.T) {
	c := Default()

	for i, key := range c.Keys() {
		assert.Equal(t, i+1, c.Ordinal(key))
		got, ok := c.ByOrdinal(i + 1)
		require.True(t, ok)
		assert.Equal(t, key, got)
	}

	assert.Equal(t, 0, c.Ordinal("unknown"))
	_, ok := c.ByOrdinal(0)
	assert.False(t, ok)
	_, ok = c.ByOrdinal(5)
	assert.False(t, ok)
}

func TestKeys_ReturnsCopy(t *testing.T) {
	c := Default()
	keys := c.Keys()
	keys[0] = "tampered"

	assert.Equal(t, Simplified, c.Keys()[0])
}

func TestNewCatalog_Rejects(t *testing.T) {
	_, err := NewCatalog(nil, nil)
	assert.Error(t, err)

	_, err = NewCatalog([]Style{{Key: "a"}, {Key: "a"}}, nil)
	assert.Error(t, err)

	_, err = NewCatalog([]Style{{Key: "a"}}, map[string]Key{"b": "missing"})
	assert.Error(t, err)
}
