package raster

import (
	"fmt"
	"image"
)

// Window is a rectangle in source pixel coordinates, read at an output size
// of BufXSize x BufYSize.  Zero buffer sizes mean "same as the window".
type Window struct {
	XOff, YOff   int
	XSize, YSize int

	BufXSize, BufYSize int
}

// FullWindow returns the window covering a w x h raster at native size.
func FullWindow(w, h int) Window {
	return Window{XSize: w, YSize: h}
}

// WindowFromRect converts an image rectangle to a window at native size.
func WindowFromRect(r image.Rectangle) Window {
	return Window{XOff: r.Min.X, YOff: r.Min.Y, XSize: r.Dx(), YSize: r.Dy()}
}

// BufferSize returns the size of the buffer produced for this window.
func (w Window) BufferSize() (int, int) {
	bw, bh := w.BufXSize, w.BufYSize
	if bw == 0 {
		bw = w.XSize
	}
	if bh == 0 {
		bh = w.YSize
	}
	return bw, bh
}

// Resampled reports whether the output size differs from the window size.
func (w Window) Resampled() bool {
	bw, bh := w.BufferSize()
	return bw != w.XSize || bh != w.YSize
}

// Rect returns the window rectangle in source coordinates.
func (w Window) Rect() image.Rectangle {
	return image.Rect(w.XOff, w.YOff, w.XOff+w.XSize, w.YOff+w.YSize)
}

// Validate checks that all sizes are positive.
func (w Window) Validate() error {
	if w.XSize <= 0 || w.YSize <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrBadShape, w.XSize, w.YSize)
	}
	if w.BufXSize < 0 || w.BufYSize < 0 {
		return fmt.Errorf("%w: buffer size %dx%d", ErrBadShape, w.BufXSize, w.BufYSize)
	}
	return nil
}

func (w Window) String() string {
	s := fmt.Sprintf("(%d,%d)+%dx%d", w.XOff, w.YOff, w.XSize, w.YSize)
	if w.Resampled() {
		bw, bh := w.BufferSize()
		s += fmt.Sprintf("->%dx%d", bw, bh)
	}
	return s
}

// ResampleIndex maps destination index i of an output of length to onto a
// source of length from, using floor(i*from/to).
func ResampleIndex(i, from, to int) int {
	return i * from / to
}
