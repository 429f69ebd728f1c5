package pdf

import (
	"fmt"
	"os"
	"sync"

	"github.com/a3tai/mcp-cable-extractor/internal/pdf/extraction"
)

// DefaultCacheSize is the number of extraction results kept per service
const DefaultCacheSize = 32

// cachedExtraction is what a repeated request for an unchanged file returns.
// Cached results are shared and must not be modified.
type cachedExtraction struct {
	pages  int
	result *extraction.Result
}

// resultCache is a thread-safe least recently used cache of extractions
type resultCache struct {
	mutex    sync.Mutex
	capacity int
	items    map[string]*cacheNode
	head     *cacheNode // Most recently used
	tail     *cacheNode // Least recently used
	hits     int64
	misses   int64
}

type cacheNode struct {
	key   string
	value cachedExtraction
	prev  *cacheNode
	next  *cacheNode
}

// CacheStats provides statistics about cache performance
type CacheStats struct {
	Hits     int64 `json:"hits"`
	Misses   int64 `json:"misses"`
	Size     int   `json:"current_size"`
	Capacity int   `json:"max_capacity"`
}

func newResultCache(capacity int) *resultCache {
	c := &resultCache{
		capacity: capacity,
		items:    make(map[string]*cacheNode),
		head:     &cacheNode{},
		tail:     &cacheNode{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// cacheKey identifies a file version and the options that shape its result.
// A rewritten file changes size or modification time and misses.
func cacheKey(path string, mode extraction.Mode, ocr bool) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s|%d|%d|%s|%t", path, info.Size(), info.ModTime().UnixNano(), mode, ocr), nil
}

func (c *resultCache) get(key string) (cachedExtraction, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if node, ok := c.items[key]; ok {
		c.moveToFront(node)
		c.hits++
		return node.value, true
	}
	c.misses++
	return cachedExtraction{}, false
}

func (c *resultCache) put(key string, value cachedExtraction) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if node, ok := c.items[key]; ok {
		node.value = value
		c.moveToFront(node)
		return
	}

	node := &cacheNode{key: key, value: value}
	c.addToFront(node)
	c.items[key] = node

	if len(c.items) > c.capacity {
		lru := c.tail.prev
		c.removeNode(lru)
		delete(c.items, lru.key)
	}
}

func (c *resultCache) stats() CacheStats {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return CacheStats{Hits: c.hits, Misses: c.misses, Size: len(c.items), Capacity: c.capacity}
}

func (c *resultCache) moveToFront(node *cacheNode) {
	c.removeNode(node)
	c.addToFront(node)
}

func (c *resultCache) addToFront(node *cacheNode) {
	node.prev = c.head
	node.next = c.head.next
	c.head.next.prev = node
	c.head.next = node
}

func (c *resultCache) removeNode(node *cacheNode) {
	node.prev.next = node.next
	node.next.prev = node.prev
}
