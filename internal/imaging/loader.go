package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "golang.org/x/image/tiff" // Register TIFF format decoder

	"github.com/ironsheep/pixfun-mcp/internal/band"
	"github.com/ironsheep/pixfun-mcp/internal/sample"
)

// ImageCache provides thread-safe caching of decoded images and of the
// bands extracted from them.
//
// Images are keyed by the path string given to Load, bands by path and
// channel.  Entries stay cached until Evict or Clear is called.
//
// # Example Usage
//
//	cache := imaging.NewImageCache()
//	src, err := cache.OpenSource("scene.tif", "gray")
//	if err != nil {
//	    return err
//	}
//	buf, err := src.Read(raster.FullWindow(src.Size()))
type ImageCache struct {
	mu      sync.RWMutex
	images  map[string]image.Image
	sources map[string]*ImageSource
}

// NewImageCache creates an empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images:  make(map[string]image.Image),
		sources: make(map[string]*ImageSource),
	}
}

// Load retrieves an image from the cache or decodes it from disk.
// Supported formats are PNG, JPEG, GIF and TIFF.
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// OpenSource returns channel of the image at path as a band source.  An
// empty channel selects gray.
func (c *ImageCache) OpenSource(path, channel string) (band.Source, error) {
	return c.Source(path, channel)
}

// Source is OpenSource with a concrete result type.
func (c *ImageCache) Source(path, channel string) (*ImageSource, error) {
	ch, err := ParseChannel(channel)
	if err != nil {
		return nil, err
	}
	key := path + "\x00" + ch.String()

	c.mu.RLock()
	src, ok := c.sources[key]
	c.mu.RUnlock()
	if ok {
		return src, nil
	}

	img, err := c.Load(path)
	if err != nil {
		return nil, err
	}
	src = NewImageSource(img, ch)

	c.mu.Lock()
	c.sources[key] = src
	c.mu.Unlock()
	return src, nil
}

// Clear removes all images and bands from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.sources = make(map[string]*ImageSource)
	c.mu.Unlock()
}

// Evict removes the image loaded from path and every band taken from it.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	for key := range c.sources {
		if strings.HasPrefix(key, path+"\x00") {
			delete(c.sources, key)
		}
	}
	c.mu.Unlock()
}

// ImageInfo contains metadata about an image file seen as a raster.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is "png", "jpeg", "gif", "tiff" or "unknown", taken from the
	// file extension.
	Format string `json:"format"`

	// DataType is the pixel type of bands read from the image: Byte for
	// 8-bit images, UInt16 for 16-bit ones.
	DataType sample.DataType `json:"data_type"`

	// Channels lists the channels that can be opened as bands.
	Channels []string `json:"channels"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads an image into cache and describes it.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	format := "unknown"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		format = "png"
	case ".jpg", ".jpeg":
		format = "jpeg"
	case ".gif":
		format = "gif"
	case ".tif", ".tiff":
		format = "tiff"
	}

	channels := []string{"gray"}
	if !isGray(img) {
		channels = append(channels, "red", "green", "blue")
	}
	if hasAlpha(img) {
		channels = append(channels, "alpha")
	}

	bounds := img.Bounds()
	return &ImageInfo{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        format,
		DataType:      imageDataType(img),
		Channels:      channels,
		FileSizeBytes: stat.Size(),
	}, nil
}

func isGray(img image.Image) bool {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return true
	}
	return false
}

func hasAlpha(img image.Image) bool {
	switch img.(type) {
	case *image.RGBA, *image.NRGBA, *image.RGBA64, *image.NRGBA64, *image.Paletted:
		return true
	}
	return false
}
