package performance

import (
	"sync"
)

// ReadCache is an LRU cache for read-heavy blobs, bounded by total byte
// size rather than entry count since cached values vary from a few KB to
// several MB.
type ReadCache struct {
	mutex  sync.Mutex
	budget int64
	used   int64
	cache  map[string]*cacheEntry
	head   *cacheEntry
	tail   *cacheEntry
}

type cacheEntry struct {
	key   string
	value interface{}
	size  int64
	prev  *cacheEntry
	next  *cacheEntry
}

// NewReadCache creates a cache holding at most budget bytes.
func NewReadCache(budget int64) *ReadCache {
	if budget <= 0 {
		budget = 32 * 1024 * 1024
	}

	cache := &ReadCache{
		budget: budget,
		cache:  make(map[string]*cacheEntry),
	}

	// Sentinel nodes keep the list operations branch-free.
	cache.head = &cacheEntry{}
	cache.tail = &cacheEntry{}
	cache.head.next = cache.tail
	cache.tail.prev = cache.head

	return cache
}

// Get retrieves a value and marks it most recently used.
func (rc *ReadCache) Get(key string) (interface{}, bool) {
	rc.mutex.Lock()
	defer rc.mutex.Unlock()

	if entry, exists := rc.cache[key]; exists {
		rc.moveToHead(entry)
		return entry.value, true
	}
	return nil, false
}

// Put adds or updates a value. Values larger than the whole budget are
// not cached at all.
func (rc *ReadCache) Put(key string, value interface{}, size int64) {
	if size > rc.budget {
		return
	}

	rc.mutex.Lock()
	defer rc.mutex.Unlock()

	if entry, exists := rc.cache[key]; exists {
		rc.used += size - entry.size
		entry.value = value
		entry.size = size
		rc.moveToHead(entry)
	} else {
		entry := &cacheEntry{key: key, value: value, size: size}
		rc.cache[key] = entry
		rc.addToHead(entry)
		rc.used += size
	}

	for rc.used > rc.budget && len(rc.cache) > 1 {
		evicted := rc.removeTail()
		delete(rc.cache, evicted.key)
		rc.used -= evicted.size
	}
}

// Remove drops a key from the cache.
func (rc *ReadCache) Remove(key string) {
	rc.mutex.Lock()
	defer rc.mutex.Unlock()

	if entry, exists := rc.cache[key]; exists {
		rc.removeEntry(entry)
		delete(rc.cache, key)
		rc.used -= entry.size
	}
}

// Clear removes all entries.
func (rc *ReadCache) Clear() {
	rc.mutex.Lock()
	defer rc.mutex.Unlock()

	rc.cache = make(map[string]*cacheEntry)
	rc.head.next = rc.tail
	rc.tail.prev = rc.head
	rc.used = 0
}

// Len returns the current number of entries.
func (rc *ReadCache) Len() int {
	rc.mutex.Lock()
	defer rc.mutex.Unlock()
	return len(rc.cache)
}

// Bytes returns the total size of the cached values.
func (rc *ReadCache) Bytes() int64 {
	rc.mutex.Lock()
	defer rc.mutex.Unlock()
	return rc.used
}

func (rc *ReadCache) moveToHead(entry *cacheEntry) {
	rc.removeEntry(entry)
	rc.addToHead(entry)
}

func (rc *ReadCache) addToHead(entry *cacheEntry) {
	entry.prev = rc.head
	entry.next = rc.head.next
	rc.head.next.prev = entry
	rc.head.next = entry
}

func (rc *ReadCache) removeEntry(entry *cacheEntry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
}

func (rc *ReadCache) removeTail() *cacheEntry {
	lastEntry := rc.tail.prev
	rc.removeEntry(lastEntry)
	return lastEntry
}
