// Package cache memoizes entity phrase lookups. News stories repeat the
// same actors sentence after sentence, so resolved fragments are kept for
// the run instead of re-scanning the dictionaries.
package cache

import (
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Entry is one memoized phrase resolution. Found is false when the phrase
// matched nothing, so misses are cached too.
type Entry struct {
	Code  string
	Root  string
	Found bool
}

// PhraseCache is an in-memory TTL cache of phrase resolutions, safe for
// concurrent use.
type PhraseCache struct {
	cache *gocache.Cache
}

func NewPhraseCache(ttl, cleanup time.Duration) *PhraseCache {
	return &PhraseCache{cache: gocache.New(ttl, cleanup)}
}

// Key builds the cache key for a phrase. The ordinal date is part of the
// key since actor codes may be date restricted.
func Key(words []string, orddate int) string {
	return strings.Join(words, " ") + "|" + strconv.Itoa(orddate)
}

func (c *PhraseCache) Get(key string) (Entry, bool) {
	if val, found := c.cache.Get(key); found {
		return val.(Entry), true
	}
	return Entry{}, false
}

func (c *PhraseCache) Set(key string, entry Entry) {
	c.cache.SetDefault(key, entry)
}

// Flush discards all entries, for dictionary reloads.
func (c *PhraseCache) Flush() {
	c.cache.Flush()
}
