package middleware

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type cacheEntry struct {
	Content    []byte
	Expiration time.Time
}

type memoryCache struct {
	sync.RWMutex
	items map[string]cacheEntry
	sweep time.Time
}

var cache = &memoryCache{items: make(map[string]cacheEntry), sweep: time.Now()}

// CacheConfig configures Cache
type CacheConfig struct {
	Expiration time.Duration
	KeyFunc    func(*gin.Context) string
}

// DefaultCacheConfig caches for one minute per user and URL
var DefaultCacheConfig = CacheConfig{
	Expiration: time.Minute,
	KeyFunc:    userKeyFunc,
}

// userKeyFunc hashes user id, path and the sorted query
func userKeyFunc(c *gin.Context) string {
	query := c.Request.URL.Query()
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	fmt.Fprintf(&b, "%d|%s?", CurrentUserID(c), c.Request.URL.Path)
	for _, k := range keys {
		values := append([]string(nil), query[k]...)
		sort.Strings(values)
		for _, v := range values {
			b.WriteString(k + "=" + v + "&")
		}
	}
	sum := md5.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// Cache serves successful GET responses from memory until they expire
func Cache(config ...CacheConfig) gin.HandlerFunc {
	cfg := DefaultCacheConfig
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.Expiration <= 0 {
		cfg.Expiration = DefaultCacheConfig.Expiration
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = DefaultCacheConfig.KeyFunc
	}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := cfg.KeyFunc(c)
		cache.RLock()
		entry, found := cache.items[key]
		cache.RUnlock()
		if found && entry.Expiration.After(time.Now()) {
			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, "application/json; charset=utf-8", entry.Content)
			c.Abort()
			return
		}

		writer := &responseWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = writer
		c.Next()

		if writer.Status() == http.StatusOK {
			cache.Lock()
			cache.items[key] = cacheEntry{Content: writer.body.Bytes(), Expiration: time.Now().Add(cfg.Expiration)}
			cache.sweepLocked(time.Now())
			cache.Unlock()
		}
	}
}

// sweepLocked removes expired entries at most once a minute; caller holds the lock
func (m *memoryCache) sweepLocked(now time.Time) {
	if now.Sub(m.sweep) < time.Minute {
		return
	}
	for key, entry := range m.items {
		if entry.Expiration.Before(now) {
			delete(m.items, key)
		}
	}
	m.sweep = now
}

// PurgeCache drops all cached responses
func PurgeCache() {
	cache.Lock()
	cache.items = make(map[string]cacheEntry)
	cache.Unlock()
}

// responseWriter copies the body while writing it
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *responseWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// CacheStats reports the size of the response cache
func CacheStats() map[string]interface{} {
	cache.RLock()
	defer cache.RUnlock()

	now := time.Now()
	expired, size := 0, 0
	for _, entry := range cache.items {
		size += len(entry.Content)
		if entry.Expiration.Before(now) {
			expired++
		}
	}
	return map[string]interface{}{
		"total_items":   len(cache.items),
		"expired_items": expired,
		"total_bytes":   size,
	}
}
