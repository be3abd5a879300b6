// Package imagecache keeps decoded images in memory keyed by file path, so
// that plugins and the view layer do not decode the same file twice.
package imagecache

import (
	"fmt"
	"image"
	"os"
	"sync"

	// register the decoders for the supported image formats
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Cache is a concurrency-safe image cache keyed by file path.
type Cache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{images: map[string]image.Image{}}
}

// Get returns the cached image for path, if any.
func (c *Cache) Get(path string) (image.Image, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	img, ok := c.images[path]
	return img, ok
}

// Set stores img under path, replacing any previous entry.
func (c *Cache) Set(path string, img image.Image) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.images[path] = img
}

// Load returns the image at path, decoding and caching it on a miss.
func (c *Cache) Load(path string) (image.Image, error) {
	if img, ok := c.Get(path); ok {
		return img, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close() //nolint:errcheck

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", path, err)
	}

	c.Set(path, img)
	return img, nil
}

// Invalidate drops the entry for path.
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.images, path)
}

// InvalidateAll empties the cache.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.images = map[string]image.Image{}
}

// Len returns the number of cached images.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}
