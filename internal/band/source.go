package band

import (
	"image"

	"github.com/ironsheep/pixfun-mcp/internal/raster"
	"github.com/ironsheep/pixfun-mcp/internal/sample"
)

// Source provides the pixels of one input band.
type Source interface {
	DataType() sample.DataType
	Size() (width, height int)
	// Read returns the pixels of win at its buffer size.  The window lies
	// inside the source.
	Read(win raster.Window) (*raster.Buffer, error)
}

// MemSource is a Source backed by an in-memory buffer.
type MemSource struct {
	buf *raster.Buffer
}

// NewMemSource returns a source reading from buf.  The buffer must not be
// modified while the source is in use.
func NewMemSource(buf *raster.Buffer) *MemSource {
	return &MemSource{buf: buf}
}

func (s *MemSource) DataType() sample.DataType { return s.buf.Type() }

func (s *MemSource) Size() (int, int) { return s.buf.Width(), s.buf.Height() }

func (s *MemSource) Read(win raster.Window) (*raster.Buffer, error) {
	return s.buf.Window(win)
}

// SourceRef places a rectangle of a source into band coordinates.  An empty
// SrcRect selects the whole source and an empty DstRect the whole band.
type SourceRef struct {
	Source  Source
	SrcRect image.Rectangle
	DstRect image.Rectangle
}

// placement is a SourceRef with its rectangles resolved.
type placement struct {
	src      Source
	srcRect  image.Rectangle
	dstRect  image.Rectangle
	dataType sample.DataType
}

// srcX maps band column x, which must lie inside dstRect, to a source
// column.
func (p *placement) srcX(x int) int {
	return p.srcRect.Min.X + raster.ResampleIndex(x-p.dstRect.Min.X, p.srcRect.Dx(), p.dstRect.Dx())
}

func (p *placement) srcY(y int) int {
	return p.srcRect.Min.Y + raster.ResampleIndex(y-p.dstRect.Min.Y, p.srcRect.Dy(), p.dstRect.Dy())
}
