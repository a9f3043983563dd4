package raster

import "errors"

var (
	// ErrBadShape is returned for non-positive buffer or window sizes.
	ErrBadShape = errors.New("raster: invalid shape")

	// ErrOutOfRange is returned when a window or pixel lies outside a buffer.
	ErrOutOfRange = errors.New("raster: window out of range")

	// ErrDataLength is returned when a slice does not hold width*height values.
	ErrDataLength = errors.New("raster: data length does not match shape")

	// ErrDataType is returned for unknown pixel types or mismatching storage.
	ErrDataType = errors.New("raster: unsupported data type")
)
