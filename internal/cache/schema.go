package cache

import (
	"context"
	"time"
)

const schemaKeyPrefix = "roster:schema:"

// SchemaCache stores rendered OpenAPI documents keyed by version and format.
type SchemaCache struct {
	cache *Cache
	ttl   time.Duration
}

// NewSchemaCache creates a SchemaCache on top of c.
func NewSchemaCache(c *Cache, ttl time.Duration) *SchemaCache {
	return &SchemaCache{cache: c, ttl: ttl}
}

// SchemaKey builds the cache key for a document version and format.
func SchemaKey(version, format string) string {
	return schemaKeyPrefix + version + ":" + format
}

// Get returns a cached document.
func (s *SchemaCache) Get(ctx context.Context, version, format string) ([]byte, bool, error) {
	return s.cache.Get(ctx, SchemaKey(version, format))
}

// Put stores a rendered document.
func (s *SchemaCache) Put(ctx context.Context, version, format string, doc []byte) error {
	return s.cache.Set(ctx, SchemaKey(version, format), doc, s.ttl)
}

// Invalidate drops every cached format of a version.
func (s *SchemaCache) Invalidate(ctx context.Context, version string, formats ...string) error {
	keys := make([]string, len(formats))
	for i, f := range formats {
		keys[i] = SchemaKey(version, f)
	}
	if len(keys) == 0 {
		return nil
	}
	return s.cache.Delete(ctx, keys...)
}
