package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"sync"

	"github.com/disintegration/imaging"
)

// DefaultMaxDimension caps the longest side of frames loaded from disk.
// Camera frames are analyzed at preview resolution, not sensor resolution.
const DefaultMaxDimension = 1280

// FrameCache provides thread-safe caching of frames decoded from image files.
//
// Frames are keyed by the exact path string given to Load. Decoded frames
// stay in memory until Evict or Clear is called.
//
// # Example Usage
//
//	cache := imaging.NewFrameCache(imaging.DefaultMaxDimension)
//	frame, err := cache.Load("/path/to/snapshot.jpg")
//	if err != nil {
//	    return err
//	}
//	position := imaging.ResolvePosition(frame)
type FrameCache struct {
	mu      sync.RWMutex
	maxDim  int
	frames  map[string]*Frame
	sources map[string]image.Image
}

// NewFrameCache creates an empty cache. Images larger than maxDim on either
// side are downscaled on load; maxDim <= 0 disables scaling.
func NewFrameCache(maxDim int) *FrameCache {
	return &FrameCache{
		maxDim:  maxDim,
		frames:  make(map[string]*Frame),
		sources: make(map[string]image.Image),
	}
}

// Load returns the cached frame for path, decoding it on first use.
//
// EXIF orientation is applied so that "left" in the frame matches "left"
// for the person holding the camera.
func (c *FrameCache) Load(path string) (*Frame, error) {
	c.mu.RLock()
	if f, ok := c.frames[path]; ok {
		c.mu.RUnlock()
		return f, nil
	}
	c.mu.RUnlock()

	img, err := LoadImage(path, c.maxDim)
	if err != nil {
		return nil, err
	}
	f := FromImage(img)

	c.mu.Lock()
	c.frames[path] = f
	c.sources[path] = img
	c.mu.Unlock()

	return f, nil
}

// Image returns the decoded (and possibly downscaled) image behind a cached
// frame, loading it if needed. OCR and annotation work on this form.
func (c *FrameCache) Image(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.sources[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	if _, err := c.Load(path); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sources[path], nil
}

// Evict removes one path from the cache.
func (c *FrameCache) Evict(path string) {
	c.mu.Lock()
	delete(c.frames, path)
	delete(c.sources, path)
	c.mu.Unlock()
}

// Clear removes every cached frame.
func (c *FrameCache) Clear() {
	c.mu.Lock()
	c.frames = make(map[string]*Frame)
	c.sources = make(map[string]image.Image)
	c.mu.Unlock()
}

// Len returns the number of cached frames.
func (c *FrameCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.frames)
}

// LoadImage opens an image file, applies EXIF orientation, and fits it
// within maxDim×maxDim when maxDim > 0.
func LoadImage(path string, maxDim int) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}

	b := img.Bounds()
	if maxDim > 0 && (b.Dx() > maxDim || b.Dy() > maxDim) {
		img = imaging.Fit(img, maxDim, maxDim, imaging.Linear)
	}
	return img, nil
}

// LoadFrame decodes an image file straight into a frame without caching.
func LoadFrame(path string, maxDim int) (*Frame, error) {
	img, err := LoadImage(path, maxDim)
	if err != nil {
		return nil, err
	}
	return FromImage(img), nil
}
