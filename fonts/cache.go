package fonts

import (
	"sync"

	"github.com/benoitkugler/fontmap/model"
)

// Cache builds fonts at most once per document resource.
// It is owned by the document, and is safe for concurrent use.
type Cache struct {
	mu    sync.Mutex
	fonts map[model.Reference]*cacheEntry
}

type cacheEntry struct {
	once sync.Once
	font *Font
	err  error
}

// Resolve returns the font for `ref`, calling `build` if
// it is not known yet. Failures are cached as well.
func (c *Cache) Resolve(ref model.Reference, build func() (*Font, error)) (*Font, error) {
	c.mu.Lock()
	if c.fonts == nil {
		c.fonts = make(map[model.Reference]*cacheEntry)
	}
	entry := c.fonts[ref]
	if entry == nil {
		entry = new(cacheEntry)
		c.fonts[ref] = entry
	}
	c.mu.Unlock()

	entry.once.Do(func() { entry.font, entry.err = build() })
	return entry.font, entry.err
}

// Len returns the number of resources resolved so far.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.fonts)
}
