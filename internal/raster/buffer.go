package raster

import (
	"fmt"

	"github.com/ironsheep/pixfun-mcp/internal/sample"
)

// Buffer is a row-major width x height grid of pixels of one data type.
//
// A Buffer handed to the evaluation engine is only read; callers must not
// modify it while an evaluation is running.
type Buffer struct {
	typ    sample.DataType
	width  int
	height int
	store  storage
}

// New allocates a zero-filled buffer.
func New(t sample.DataType, width, height int) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrBadShape, width, height)
	}
	st := newStorage(t, width*height)
	if st == nil {
		return nil, fmt.Errorf("%w: %s", ErrDataType, t)
	}
	return &Buffer{typ: t, width: width, height: height, store: st}, nil
}

// Wrap adopts data, which must hold width*height pixels in row-major order.
// The slice is not copied.
func Wrap[T Pixel](width, height int, data []T) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrBadShape, width, height)
	}
	if len(data) != width*height {
		return nil, fmt.Errorf("%w: have %d values for %dx%d", ErrDataLength, len(data), width, height)
	}
	st, t := wrapStorage(data)
	if st == nil {
		return nil, fmt.Errorf("%w: %T", ErrDataType, data)
	}
	return &Buffer{typ: t, width: width, height: height, store: st}, nil
}

// FromSamples builds a buffer of type t from a row-major list of samples,
// converting each with the rules of Set.
func FromSamples(t sample.DataType, width, height int, values []sample.Sample) (*Buffer, error) {
	b, err := New(t, width, height)
	if err != nil {
		return nil, err
	}
	if len(values) != width*height {
		return nil, fmt.Errorf("%w: have %d values for %dx%d", ErrDataLength, len(values), width, height)
	}
	for i, v := range values {
		b.store.set(i, v)
	}
	return b, nil
}

// FromParts builds a buffer of type t from row-major real parts and
// optional imaginary parts, converting with the rules of Set.
func FromParts(t sample.DataType, width, height int, re, im []float64) (*Buffer, error) {
	b, err := New(t, width, height)
	if err != nil {
		return nil, err
	}
	if len(im) == 0 {
		err = b.SetFloat64s(re)
	} else {
		if len(im) != len(re) {
			return nil, fmt.Errorf("%w: have %d imaginary parts for %d values", ErrDataLength, len(im), len(re))
		}
		vals := make([]complex128, len(re))
		for i := range vals {
			vals[i] = complex(re[i], im[i])
		}
		err = b.SetComplex128s(vals)
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Data returns the backing slice of b if it stores pixels of Go type T.
func Data[T Pixel](b *Buffer) ([]T, bool) {
	d, ok := b.store.raw().([]T)
	return d, ok
}

// Type returns the pixel type.
func (b *Buffer) Type() sample.DataType { return b.typ }

// Width returns the number of columns.
func (b *Buffer) Width() int { return b.width }

// Height returns the number of rows.
func (b *Buffer) Height() int { return b.height }

// Len returns width*height.
func (b *Buffer) Len() int { return b.width * b.height }

// SameShape reports whether b and o have the same width and height.
func (b *Buffer) SameShape(o *Buffer) bool {
	return b.width == o.width && b.height == o.height
}

func (b *Buffer) inBounds(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

// At returns the pixel at column x, row y.
func (b *Buffer) At(x, y int) (sample.Sample, error) {
	if !b.inBounds(x, y) {
		return sample.Sample{}, fmt.Errorf("%w: pixel (%d,%d) outside %dx%d", ErrOutOfRange, x, y, b.width, b.height)
	}
	return b.store.at(y*b.width + x), nil
}

// Set stores s at column x, row y, converting it to the buffer type.
// Integer types saturate and truncate toward zero; real types drop the
// imaginary part.
func (b *Buffer) Set(x, y int, s sample.Sample) error {
	if !b.inBounds(x, y) {
		return fmt.Errorf("%w: pixel (%d,%d) outside %dx%d", ErrOutOfRange, x, y, b.width, b.height)
	}
	b.store.set(y*b.width+x, s)
	return nil
}

// Float64s returns the real parts of all pixels as a new row-major slice.
func (b *Buffer) Float64s() []float64 {
	res := make([]float64, b.Len())
	b.store.reals(res)
	return res
}

// Complex128s returns all pixels as complex values in a new slice.
func (b *Buffer) Complex128s() []complex128 {
	res := make([]complex128, b.Len())
	b.store.complexes(res)
	return res
}

// SetFloat64s overwrites all pixels with vals.
func (b *Buffer) SetFloat64s(vals []float64) error {
	if len(vals) != b.Len() {
		return fmt.Errorf("%w: have %d values for %dx%d", ErrDataLength, len(vals), b.width, b.height)
	}
	b.store.setReals(vals)
	return nil
}

// SetComplex128s overwrites all pixels with vals.  Real pixel types keep
// only the real parts.
func (b *Buffer) SetComplex128s(vals []complex128) error {
	if len(vals) != b.Len() {
		return fmt.Errorf("%w: have %d values for %dx%d", ErrDataLength, len(vals), b.width, b.height)
	}
	b.store.setComplexes(vals)
	return nil
}

// Samples returns all pixels as tagged samples in row-major order.
func (b *Buffer) Samples() []sample.Sample {
	res := make([]sample.Sample, b.Len())
	for i := range res {
		res[i] = b.store.at(i)
	}
	return res
}

// SetSamples overwrites all pixels with vals, converting like Set.
func (b *Buffer) SetSamples(vals []sample.Sample) error {
	if len(vals) != b.Len() {
		return fmt.Errorf("%w: have %d values for %dx%d", ErrDataLength, len(vals), b.width, b.height)
	}
	for i, v := range vals {
		b.store.set(i, v)
	}
	return nil
}

// Clone returns a deep copy of b.
func (b *Buffer) Clone() *Buffer {
	idx := make([]int, b.Len())
	for i := range idx {
		idx[i] = i
	}
	return &Buffer{typ: b.typ, width: b.width, height: b.height, store: b.store.gather(idx)}
}

// Window copies the pixels of win into a new buffer of the window's buffer
// size.  The window must lie inside b.
func (b *Buffer) Window(win Window) (*Buffer, error) {
	if err := win.Validate(); err != nil {
		return nil, err
	}
	if win.XOff < 0 || win.YOff < 0 || win.XOff+win.XSize > b.width || win.YOff+win.YSize > b.height {
		return nil, fmt.Errorf("%w: %s not inside %dx%d", ErrOutOfRange, win, b.width, b.height)
	}
	bw, bh := win.BufferSize()
	idx := make([]int, 0, bw*bh)
	for j := 0; j < bh; j++ {
		sy := win.YOff + ResampleIndex(j, win.YSize, bh)
		for i := 0; i < bw; i++ {
			sx := win.XOff + ResampleIndex(i, win.XSize, bw)
			idx = append(idx, sy*b.width+sx)
		}
	}
	return &Buffer{typ: b.typ, width: bw, height: bh, store: b.store.gather(idx)}, nil
}

// Gather builds a width x height buffer of the same type whose pixel k is
// pixel idx[k] of b, counted in row-major order.  Negative indices yield
// zero pixels.
func (b *Buffer) Gather(width, height int, idx []int) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrBadShape, width, height)
	}
	if len(idx) != width*height {
		return nil, fmt.Errorf("%w: have %d indices for %dx%d", ErrDataLength, len(idx), width, height)
	}
	for _, j := range idx {
		if j >= b.Len() {
			return nil, fmt.Errorf("%w: index %d in buffer of %d pixels", ErrOutOfRange, j, b.Len())
		}
	}
	return &Buffer{typ: b.typ, width: width, height: height, store: b.store.gather(idx)}, nil
}

// Resample returns a nearest-neighbour resampled copy of b with the given
// size.
func (b *Buffer) Resample(width, height int) (*Buffer, error) {
	return b.Window(Window{XSize: b.width, YSize: b.height, BufXSize: width, BufYSize: height})
}

// Paste copies src into b with its top-left corner at (x, y).  Pixels are
// converted to the type of b; parts of src outside b are ignored.
func (b *Buffer) Paste(src *Buffer, x, y int) {
	for j := 0; j < src.height; j++ {
		dy := y + j
		if dy < 0 || dy >= b.height {
			continue
		}
		for i := 0; i < src.width; i++ {
			dx := x + i
			if dx < 0 || dx >= b.width {
				continue
			}
			b.store.set(dy*b.width+dx, src.store.at(j*src.width+i))
		}
	}
}

func (b *Buffer) String() string {
	return fmt.Sprintf("%s[%dx%d]", b.typ, b.width, b.height)
}
