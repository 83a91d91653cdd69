package db

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/dgraph-io/ristretto"

	"money-server/src/models"
)

// Cache groups. Keys are tracked per group so a whole group can be dropped
// when the rows behind it change.
const (
	AccountCache   = "accounts"
	RetailerCache  = "retailers"
	DashboardCache = "dashboard"
)

type Cache struct {
	store *ristretto.Cache

	mu     sync.Mutex
	groups map[string]map[string]struct{}
}

func NewCache() (*Cache, error) {
	store, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10000, // number of keys to track frequency of
		MaxCost:     10000,
		BufferItems: 64, // number of keys per Get buffer
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}
	return &Cache{
		store: store,
		groups: map[string]map[string]struct{}{
			AccountCache:   {},
			RetailerCache:  {},
			DashboardCache: {},
		},
	}, nil
}

func (c *Cache) Get(group, key string) (interface{}, bool) {
	if c == nil {
		return nil, false
	}
	return c.store.Get(group + ":" + key)
}

// Set stores value and waits for the write buffer so a following Get sees it.
func (c *Cache) Set(group, key string, value interface{}) {
	if c == nil {
		return
	}
	full := group + ":" + key
	c.mu.Lock()
	if keys, ok := c.groups[group]; ok {
		keys[full] = struct{}{}
	}
	c.mu.Unlock()
	c.store.Set(full, value, 1)
	c.store.Wait()
}

func (c *Cache) Del(group, key string) {
	if c == nil {
		return
	}
	full := group + ":" + key
	c.mu.Lock()
	if keys, ok := c.groups[group]; ok {
		delete(keys, full)
	}
	c.mu.Unlock()
	c.store.Del(full)
}

// ClearGroup drops every key stored under group.
func (c *Cache) ClearGroup(group string) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	keys, ok := c.groups[group]
	if !ok {
		return fmt.Errorf("unknown cache %q", group)
	}
	for key := range keys {
		c.store.Del(key)
	}
	c.groups[group] = map[string]struct{}{}
	return nil
}

func idKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

// Retailer returns the cached retailer with the given id.
func (c *Cache) Retailer(id int64) (*models.Retailer, bool) {
	v, ok := c.Get(RetailerCache, idKey(id))
	if !ok {
		return nil, false
	}
	rt, ok := v.(*models.Retailer)
	return rt, ok && rt != nil
}

func (c *Cache) SetRetailer(rt *models.Retailer) {
	c.Set(RetailerCache, idKey(rt.ID), rt)
}

// Account returns the cached account with the given id.
func (c *Cache) Account(id int64) (*models.Account, bool) {
	v, ok := c.Get(AccountCache, idKey(id))
	if !ok {
		return nil, false
	}
	a, ok := v.(*models.Account)
	return a, ok && a != nil
}

func (c *Cache) SetAccount(a *models.Account) {
	c.Set(AccountCache, idKey(a.ID), a)
}

// Invalidate clears the groups affected by a ledger write.
func (c *Cache) Invalidate(groups ...string) {
	for _, g := range groups {
		_ = c.ClearGroup(g)
	}
}

func (c *Cache) Close() {
	if c != nil {
		c.store.Close()
	}
}
