package imaging

import (
	"fmt"
	"image"
	"image/color"
	"strings"
	"sync"

	"github.com/ironsheep/pixfun-mcp/internal/raster"
	"github.com/ironsheep/pixfun-mcp/internal/sample"
)

// Channel selects which component of an image becomes a band.
type Channel int

const (
	Gray Channel = iota
	Red
	Green
	Blue
	Alpha
)

var channelNames = [...]string{"gray", "red", "green", "blue", "alpha"}

func (c Channel) String() string {
	if c < Gray || c > Alpha {
		return fmt.Sprintf("Channel(%d)", int(c))
	}
	return channelNames[c]
}

// ParseChannel parses a channel name.  The empty string means gray.
func ParseChannel(name string) (Channel, error) {
	if name == "" {
		return Gray, nil
	}
	for i, n := range channelNames {
		if strings.EqualFold(name, n) {
			return Channel(i), nil
		}
	}
	return Gray, fmt.Errorf("unknown channel %q (want gray, red, green, blue or alpha)", name)
}

// imageDataType is Byte for 8-bit images and UInt16 for 16-bit ones.
func imageDataType(img image.Image) sample.DataType {
	switch img.(type) {
	case *image.Gray16, *image.RGBA64, *image.NRGBA64:
		return sample.UInt16
	}
	return sample.Byte
}

// BandFromImage extracts one channel of img as a band.  Colour channels
// are read without alpha premultiplication.
func BandFromImage(img image.Image, ch Channel) (*raster.Buffer, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if imageDataType(img) == sample.UInt16 {
		data := make([]uint16, w*h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				data[y*w+x] = channel16(img.At(bounds.Min.X+x, bounds.Min.Y+y), ch)
			}
		}
		return raster.Wrap(w, h, data)
	}

	if g, ok := img.(*image.Gray); ok && ch == Gray {
		data := make([]uint8, 0, w*h)
		for y := 0; y < h; y++ {
			off := g.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			data = append(data, g.Pix[off:off+w]...)
		}
		return raster.Wrap(w, h, data)
	}

	data := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			data[y*w+x] = uint8(channel16(img.At(bounds.Min.X+x, bounds.Min.Y+y), ch) >> 8)
		}
	}
	return raster.Wrap(w, h, data)
}

func channel16(c color.Color, ch Channel) uint16 {
	if ch == Gray {
		return color.Gray16Model.Convert(c).(color.Gray16).Y
	}
	var n color.NRGBA64
	switch v := c.(type) {
	case color.NRGBA:
		n = color.NRGBA64{R: uint16(v.R) * 0x101, G: uint16(v.G) * 0x101, B: uint16(v.B) * 0x101, A: uint16(v.A) * 0x101}
	case color.NRGBA64:
		n = v
	default:
		n = color.NRGBA64Model.Convert(c).(color.NRGBA64)
	}
	switch ch {
	case Red:
		return n.R
	case Green:
		return n.G
	case Blue:
		return n.B
	default:
		return n.A
	}
}

// ImageSource is a band source reading one channel of a decoded image.
// The channel is extracted on first use.
type ImageSource struct {
	img     image.Image
	channel Channel

	once sync.Once
	buf  *raster.Buffer
	err  error
}

// NewImageSource returns a source for channel ch of img.
func NewImageSource(img image.Image, ch Channel) *ImageSource {
	return &ImageSource{img: img, channel: ch}
}

func (s *ImageSource) DataType() sample.DataType { return imageDataType(s.img) }

func (s *ImageSource) Size() (int, int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

// Channel returns the channel read by s.
func (s *ImageSource) Channel() Channel { return s.channel }

// Buffer returns the whole channel.
func (s *ImageSource) Buffer() (*raster.Buffer, error) {
	s.once.Do(func() {
		s.buf, s.err = BandFromImage(s.img, s.channel)
	})
	return s.buf, s.err
}

func (s *ImageSource) Read(win raster.Window) (*raster.Buffer, error) {
	buf, err := s.Buffer()
	if err != nil {
		return nil, err
	}
	return buf.Window(win)
}
