package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"money-server/src/models"
)

func TestCacheGroups(t *testing.T) {
	c, err := NewCache()
	require.NoError(t, err)
	defer c.Close()

	c.Set(AccountCache, "1", "checking")
	c.Set(RetailerCache, "1", "grocer")

	v, ok := c.Get(AccountCache, "1")
	require.True(t, ok)
	assert.Equal(t, "checking", v)

	require.NoError(t, c.ClearGroup(AccountCache))

	_, ok = c.Get(AccountCache, "1")
	assert.False(t, ok)

	v, ok = c.Get(RetailerCache, "1")
	require.True(t, ok)
	assert.Equal(t, "grocer", v)
}

func TestCacheUnknownGroup(t *testing.T) {
	c, err := NewCache()
	require.NoError(t, err)
	defer c.Close()

	assert.Error(t, c.ClearGroup("plaid"))
}

func TestCacheDel(t *testing.T) {
	c, err := NewCache()
	require.NoError(t, err)
	defer c.Close()

	c.Set(DashboardCache, "summary", 42)
	c.Del(DashboardCache, "summary")

	_, ok := c.Get(DashboardCache, "summary")
	assert.False(t, ok)
}

func TestNilCacheIsNoop(t *testing.T) {
	var c *Cache
	c.Set(AccountCache, "1", 1)
	_, ok := c.Get(AccountCache, "1")
	assert.False(t, ok)
	assert.NoError(t, c.ClearGroup(AccountCache))
}

func TestCacheTypedEntries(t *testing.T) {
	c, err := NewCache()
	require.NoError(t, err)
	defer c.Close()

	c.SetRetailer(&models.Retailer{ID: 7, Name: "Cafe"})
	rt, ok := c.Retailer(7)
	require.True(t, ok)
	assert.Equal(t, "Cafe", rt.Name)

	// A value of another shape under the same key is a miss, not a panic.
	c.Set(RetailerCache, "8", models.Retailer{ID: 8})
	_, ok = c.Retailer(8)
	assert.False(t, ok)

	c.SetAccount(&models.Account{ID: 3, Name: "Checking"})
	a, ok := c.Account(3)
	require.True(t, ok)
	assert.Equal(t, int64(3), a.ID)

	c.Invalidate(AccountCache)
	_, ok = c.Account(3)
	assert.False(t, ok)
}

func TestPageNormalize(t *testing.T) {
	assert.Equal(t, Page{Limit: DefaultPageSize}, Page{}.Normalize())
	assert.Equal(t, Page{Limit: MaxPageSize, Offset: 0}, Page{Limit: 10000, Offset: -3}.Normalize())
	assert.Equal(t, Page{Limit: 10, Offset: 20}, Page{Limit: 10, Offset: 20}.Normalize())
}
