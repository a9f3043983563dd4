package imaging

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"golang.org/x/image/tiff"

	"github.com/ironsheep/pixfun-mcp/internal/raster"
	"github.com/ironsheep/pixfun-mcp/internal/sample"
)

// writeImage encodes img into dir/name, as TIFF for .tif names and PNG
// otherwise, and returns the path.
func writeImage(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()

	if strings.HasSuffix(name, ".tif") {
		err = tiff.Encode(f, img, nil)
	} else {
		err = png.Encode(f, img)
	}
	if err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

// createTestImage writes a solid colour PNG and returns its path.
func createTestImage(t *testing.T, width, height int, c color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return writeImage(t, t.TempDir(), "solid.png", img)
}

// createGray16Image returns a 16-bit gray image with value 300*(y*w+x).
func createGray16Image(width, height int) *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetGray16(x, y, color.Gray16{Y: uint16(300 * (y*width + x))})
		}
	}
	return img
}

func TestNewImageCache(t *testing.T) {
	cache := NewImageCache()
	if cache == nil {
		t.Fatal("NewImageCache returned nil")
	}
	if cache.images == nil || cache.sources == nil {
		t.Fatal("NewImageCache did not initialize its maps")
	}
}

func TestImageCache_Load(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 100, 100, color.RGBA{255, 0, 0, 255})

	img1, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	bounds := img1.Bounds()
	if bounds.Dx() != 100 || bounds.Dy() != 100 {
		t.Errorf("unexpected dimensions: got %dx%d, want 100x100", bounds.Dx(), bounds.Dy())
	}

	// Second load should return cached image
	img2, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if img1 != img2 {
		t.Error("second Load did not return cached image")
	}
}

func TestImageCache_Load_NonExistent(t *testing.T) {
	cache := NewImageCache()
	if _, err := cache.Load("/nonexistent/path/to/image.png"); err == nil {
		t.Error("Load should fail for non-existent file")
	}
}

func TestImageCache_Load_InvalidImage(t *testing.T) {
	cache := NewImageCache()
	path := filepath.Join(t.TempDir(), "invalid.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	if _, err := cache.Load(path); err == nil {
		t.Error("Load should fail for invalid image data")
	}
}

func TestImageCache_Source(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 8, 4, color.NRGBA{200, 100, 50, 255})

	red1, err := cache.Source(imgPath, "red")
	if err != nil {
		t.Fatalf("Source failed: %v", err)
	}
	red2, err := cache.Source(imgPath, "RED")
	if err != nil {
		t.Fatalf("second Source failed: %v", err)
	}
	if red1 != red2 {
		t.Error("channel names should be case-insensitive and cached")
	}

	gray, err := cache.Source(imgPath, "")
	if err != nil {
		t.Fatalf("Source(gray) failed: %v", err)
	}
	if gray == red1 || gray.Channel() != Gray {
		t.Errorf("empty channel should give a separate gray source, got %v", gray.Channel())
	}

	if _, err := cache.Source(imgPath, "infrared"); err == nil {
		t.Error("Source should fail for an unknown channel")
	}

	buf, err := red1.Read(raster.FullWindow(red1.Size()))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	data, ok := raster.Data[uint8](buf)
	if !ok {
		t.Fatalf("expected a Byte band, got %v", buf.Type())
	}
	for i, v := range data {
		if v != 200 {
			t.Fatalf("pixel %d: got %d, want 200", i, v)
		}
	}
}

func TestImageCache_OpenSource_TIFF16(t *testing.T) {
	cache := NewImageCache()
	path := writeImage(t, t.TempDir(), "deep.tif", createGray16Image(6, 5))

	src, err := cache.OpenSource(path, "gray")
	if err != nil {
		t.Fatalf("OpenSource failed: %v", err)
	}
	if src.DataType() != sample.UInt16 {
		t.Errorf("DataType: got %v, want UInt16", src.DataType())
	}
	if w, h := src.Size(); w != 6 || h != 5 {
		t.Errorf("Size: got %dx%d, want 6x5", w, h)
	}

	buf, err := src.Read(raster.WindowFromRect(image.Rect(2, 1, 4, 3)))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	got, _ := raster.Data[uint16](buf)
	want := []uint16{300 * 8, 300 * 9, 300 * 14, 300 * 15}
	if !slices.Equal(got, want) {
		t.Errorf("window values: got %v, want %v", got, want)
	}
}

func TestImageCache_Clear(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 50, 50, color.RGBA{0, 255, 0, 255})

	if _, err := cache.Source(imgPath, "green"); err != nil {
		t.Fatalf("Source failed: %v", err)
	}

	cache.Clear()

	cache.mu.RLock()
	images, sources := len(cache.images), len(cache.sources)
	cache.mu.RUnlock()

	if images != 0 || sources != 0 {
		t.Errorf("Clear did not empty cache: %d images, %d sources remain", images, sources)
	}
}

func TestImageCache_Evict(t *testing.T) {
	cache := NewImageCache()
	dir := t.TempDir()
	keep := createTestImage(t, 10, 10, color.RGBA{0, 0, 255, 255})
	drop := writeImage(t, dir, "drop.png", image.NewGray(image.Rect(0, 0, 10, 10)))

	for _, p := range []string{keep, drop} {
		if _, err := cache.Source(p, "gray"); err != nil {
			t.Fatalf("Source(%s) failed: %v", p, err)
		}
	}

	cache.Evict(drop)

	cache.mu.RLock()
	_, dropped := cache.images[drop]
	_, kept := cache.images[keep]
	sources := len(cache.sources)
	cache.mu.RUnlock()

	if dropped {
		t.Error("Evict did not remove image from cache")
	}
	if !kept {
		t.Error("Evict removed an unrelated image")
	}
	if sources != 1 {
		t.Errorf("Evict should leave 1 source, got %d", sources)
	}
}

func TestImageCache_Evict_NonExistent(t *testing.T) {
	cache := NewImageCache()
	// Should not panic
	cache.Evict("/nonexistent/path")
}

func TestImageCache_ConcurrentAccess(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 50, 50, color.RGBA{128, 128, 128, 255})

	var wg sync.WaitGroup
	errs := make(chan error, 100)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			src, err := cache.Source(imgPath, []string{"gray", "red", "alpha"}[i%3])
			if err == nil {
				_, err = src.Read(raster.FullWindow(src.Size()))
			}
			if err != nil {
				errs <- err
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent Source error: %v", err)
	}
}

func TestLoadImageInfo(t *testing.T) {
	cache := NewImageCache()
	imgPath := createTestImage(t, 200, 150, color.RGBA{255, 128, 64, 255})

	info, err := LoadImageInfo(cache, imgPath)
	if err != nil {
		t.Fatalf("LoadImageInfo failed: %v", err)
	}

	if info.Width != 200 || info.Height != 150 {
		t.Errorf("dimensions: got %dx%d, want 200x150", info.Width, info.Height)
	}
	if info.Format != "png" {
		t.Errorf("Format: got %s, want png", info.Format)
	}
	if info.DataType != sample.Byte {
		t.Errorf("DataType: got %v, want Byte", info.DataType)
	}
	if info.FileSizeBytes <= 0 {
		t.Error("FileSizeBytes should be positive")
	}
}

func TestLoadImageInfo_Channels(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		img      image.Image
		dataType sample.DataType
		channels []string
	}{
		{"gray.png", image.NewGray(image.Rect(0, 0, 4, 4)), sample.Byte, []string{"gray"}},
		{"gray16.tif", createGray16Image(4, 4), sample.UInt16, []string{"gray"}},
		{"rgba.png", image.NewNRGBA(image.Rect(0, 0, 4, 4)), sample.Byte, []string{"gray", "red", "green", "blue", "alpha"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeImage(t, dir, tt.name, tt.img)
			info, err := LoadImageInfo(NewImageCache(), path)
			if err != nil {
				t.Fatalf("LoadImageInfo failed: %v", err)
			}
			if info.DataType != tt.dataType {
				t.Errorf("DataType: got %v, want %v", info.DataType, tt.dataType)
			}
			if !slices.Equal(info.Channels, tt.channels) {
				t.Errorf("Channels: got %v, want %v", info.Channels, tt.channels)
			}
		})
	}
}

func TestLoadImageInfo_FormatDetection(t *testing.T) {
	cache := NewImageCache()
	dir := t.TempDir()

	tests := []struct {
		ext    string
		format string
	}{
		{".png", "png"},
		{".jpg", "jpeg"},
		{".jpeg", "jpeg"},
		{".gif", "gif"},
		{".tiff", "tiff"},
		{".xyz", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			// A valid PNG regardless of extension
			path := writeImage(t, dir, "test-format"+tt.ext, image.NewRGBA(image.Rect(0, 0, 10, 10)))

			info, err := LoadImageInfo(cache, path)
			if err != nil {
				t.Fatalf("LoadImageInfo failed: %v", err)
			}
			if info.Format != tt.format {
				t.Errorf("Format for %s: got %s, want %s", tt.ext, info.Format, tt.format)
			}
		})
	}
}

func TestLoadImageInfo_NonExistent(t *testing.T) {
	cache := NewImageCache()
	if _, err := LoadImageInfo(cache, "/nonexistent/image.png"); err == nil {
		t.Error("LoadImageInfo should fail for non-existent file")
	}
}
