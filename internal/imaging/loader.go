package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"sync"
	"time"

	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// Image is a decoded scorecard photo together with the encoded bytes it was
// read from. Detectors take Raw; overlays and preprocessing take Image.
type Image struct {
	image.Image

	// Raw is the file content exactly as read.
	Raw []byte

	// Format is the name image.Decode reported ("png", "jpeg", "webp", ...).
	Format string

	// ModTime is the file's modification time when it was read. Zero for
	// images decoded from memory.
	ModTime time.Time
}

// fresh reports whether img still matches the file described by info.
func (img *Image) fresh(info os.FileInfo) bool {
	return img.ModTime.Equal(info.ModTime()) && int64(len(img.Raw)) == info.Size()
}

// Decode decodes raw image bytes.
func Decode(raw []byte) (*Image, error) {
	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return &Image{Image: img, Raw: raw, Format: format}, nil
}

// ImageInfo is the metadata reported for a loaded photo.
type ImageInfo struct {
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Format    string `json:"format"`
	SizeBytes int    `json:"size_bytes"`
}

// Info returns the photo's dimensions and format.
func (img *Image) Info() ImageInfo {
	b := img.Bounds()
	return ImageInfo{Width: b.Dx(), Height: b.Dy(), Format: img.Format, SizeBytes: len(img.Raw)}
}

// ImageCache keeps recently loaded photos keyed by path so repeated tool calls
// on the same card (read, then overlay, then export) decode it once.
//
// The cache holds at most max entries and drops the oldest insert first.
// ImageCache is safe for concurrent use.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]*Image
	order  []string
	max    int
}

// NewImageCache returns an empty cache holding up to max photos. max <= 0
// means unbounded.
func NewImageCache(max int) *ImageCache {
	return &ImageCache{
		images: make(map[string]*Image),
		max:    max,
	}
}

// Load returns the cached photo for path or reads and decodes it. A cached
// photo whose file has since been rewritten is evicted and read again.
//
// The path is used as given; a relative and an absolute path to the same file
// are separate entries.
func (c *ImageCache) Load(path string) (*Image, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	c.mu.RLock()
	img, ok := c.images[path]
	c.mu.RUnlock()
	if ok {
		if img.fresh(info) {
			return img, nil
		}
		c.Evict(path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	img, err = Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	img.ModTime = info.ModTime()

	c.mu.Lock()
	defer c.mu.Unlock()
	if cached, ok := c.images[path]; ok {
		if cached.fresh(info) {
			return cached, nil
		}
		c.images[path] = img
		return img, nil
	}
	c.images[path] = img
	c.order = append(c.order, path)
	for c.max > 0 && len(c.order) > c.max {
		delete(c.images, c.order[0])
		c.order = c.order[1:]
	}
	return img, nil
}

// Evict drops path from the cache. Unknown paths are ignored.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.images[path]; !ok {
		return
	}
	delete(c.images, path)
	for i, p := range c.order {
		if p == path {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of cached photos.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}
