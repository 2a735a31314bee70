package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPhraseCache(t *testing.T) {
	c := NewPhraseCache(time.Minute, time.Minute)

	key := Key([]string{"GERMAN", "POLICE"}, 143000)
	_, found := c.Get(key)
	assert.False(t, found)

	c.Set(key, Entry{Code: "DEUCOP", Root: "GERMANY", Found: true})
	entry, found := c.Get(key)
	assert.True(t, found)
	assert.Equal(t, "DEUCOP", entry.Code)
	assert.Equal(t, "GERMANY", entry.Root)

	// misses are cached too
	miss := Key([]string{"ATLANTIS"}, 143000)
	c.Set(miss, Entry{})
	entry, found = c.Get(miss)
	assert.True(t, found)
	assert.False(t, entry.Found)

	c.Flush()
	_, found = c.Get(key)
	assert.False(t, found)
}

func TestKeyIncludesDate(t *testing.T) {
	words := []string{"RUSSIA"}
	assert.NotEqual(t, Key(words, 1), Key(words, 2))
}
