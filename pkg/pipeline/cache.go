package pipeline

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/sudorandom/quake-stencil/pkg/stencil"
	"github.com/sudorandom/quake-stencil/pkg/store"
)

// Cache keeps the last completed raster per map category.
type Cache interface {
	Load(category string) (*image.RGBA, error)
	Save(category string, img *image.RGBA) error
}

// StoreCache keeps rasters as PNG in a key/value store.
type StoreCache struct {
	kv store.KV
}

func NewStoreCache(kv store.KV) *StoreCache {
	return &StoreCache{kv: kv}
}

func rasterKey(category string) string {
	return "raster/" + category
}

func (c *StoreCache) Save(category string, img *image.RGBA) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode raster: %w", err)
	}
	return c.kv.Put(rasterKey(category), buf.Bytes())
}

// Load returns nil, nil when nothing is cached for category.
func (c *StoreCache) Load(category string) (*image.RGBA, error) {
	data, err := c.kv.Get(rasterKey(category))
	if err != nil || data == nil {
		return nil, err
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode cached %s raster: %w", category, err)
	}
	return stencil.Clone(img), nil
}
