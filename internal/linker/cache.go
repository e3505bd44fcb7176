package linker

import (
	"net/url"
	"sync"

	"workbook-loader/internal/resource"
	"workbook-loader/internal/schema"
)

// Cache remembers the records found or created during one save session, so
// repeated natural keys resolve without another backend call.
type Cache struct {
	mu   sync.RWMutex
	refs map[string]resource.Ref
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{refs: map[string]resource.Ref{}}
}

// Get returns the record cached under key.
func (c *Cache) Get(key string) (resource.Ref, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ref, ok := c.refs[key]

	return ref, ok
}

// Put stores ref under key.
func (c *Cache) Put(key string, ref resource.Ref) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.refs[key] = ref
}

// Len returns the number of cached records.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.refs)
}

// CacheKey is the resource path of rc followed by the filter in canonical
// (key sorted, query encoded) form.
func CacheKey(rc *schema.RelationshipConfig, filter map[string]string) string {
	q := url.Values{}
	for k, v := range filter {
		q.Set(k, v)
	}

	return rc.ResourcePath() + "?" + q.Encode()
}
