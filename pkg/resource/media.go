package resource

import (
	"bytes"
	"fmt"
	"image"
	"sync"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// Media is a decoded raster with its intrinsic dimensions.
type Media struct {
	Image  image.Image
	Width  int
	Height int
	Format string
}

// MediaDecoder decodes image bytes and caches the result per URL so a
// relayout never re-decodes.
type MediaDecoder struct {
	mu    sync.RWMutex
	cache map[string]*Media
}

func NewMediaDecoder() *MediaDecoder {
	return &MediaDecoder{cache: make(map[string]*Media)}
}

// Decode decodes data and stores the result under rawURL.
func (d *MediaDecoder) Decode(rawURL string, data []byte) (*Media, error) {
	d.mu.RLock()
	cached, ok := d.cache[rawURL]
	d.mu.RUnlock()
	if ok {
		return cached, nil
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", rawURL, err)
	}
	bounds := img.Bounds()
	m := &Media{
		Image:  img,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Format: format,
	}

	d.mu.Lock()
	d.cache[rawURL] = m
	d.mu.Unlock()
	return m, nil
}

// Get returns the decoded media for rawURL if present.
func (d *MediaDecoder) Get(rawURL string) (*Media, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	m, ok := d.cache[rawURL]
	return m, ok
}
