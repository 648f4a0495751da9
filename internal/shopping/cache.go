package shopping

import (
	"context"
	"log"
	"strings"
	"sync"

	"yourkitchen/internal/domain"
	"yourkitchen/internal/shared"
)

// ItemCategorizer is implemented by Categorizer.
type ItemCategorizer interface {
	Categorize(ctx context.Context, items []domain.GroceryItem) (Categories, shared.AgentMeta, error)
}

type cacheEntry struct {
	key        string
	categories Categories
}

// Cache remembers the last categorized list per profile and only calls the
// categorizer again when the list changes. Fallback results are cached too.
type Cache struct {
	categorizer ItemCategorizer

	mu      sync.Mutex
	entries map[string]cacheEntry
}

// NewCache wraps a categorizer with a per-profile cache.
func NewCache(categorizer ItemCategorizer) *Cache {
	return &Cache{
		categorizer: categorizer,
		entries:     make(map[string]cacheEntry),
	}
}

// CacheKey serializes item names the way the cache compares lists.
func CacheKey(items []domain.GroceryItem) string {
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Item
	}
	return strings.Join(names, "|")
}

// Categorize returns the categories of items for profileID. The meta is nil
// when the result came from the cache. Categorizer failures are logged and the
// fallback is returned.
func (c *Cache) Categorize(ctx context.Context, profileID string, items []domain.GroceryItem) (Categories, *shared.AgentMeta) {
	if len(items) == 0 {
		c.Invalidate(profileID)
		return Categories{}, nil
	}

	key := CacheKey(items)
	c.mu.Lock()
	entry, ok := c.entries[profileID]
	c.mu.Unlock()
	if ok && entry.key == key {
		return entry.categories, nil
	}

	categories, meta, err := c.categorizer.Categorize(ctx, items)
	if err != nil {
		log.Printf("Failed to categorize groceries for %s: %v", profileID, err)
	}

	c.mu.Lock()
	c.entries[profileID] = cacheEntry{key: key, categories: categories}
	c.mu.Unlock()

	return categories, &meta
}

// Invalidate forgets the cached categories of profileID.
func (c *Cache) Invalidate(profileID string) {
	c.mu.Lock()
	delete(c.entries, profileID)
	c.mu.Unlock()
}
