// Package raster provides the typed 2-D pixel buffers consumed and produced
// by the pixel-function engine.
//
// A [Buffer] is a row-major grid of pixels of one [sample.DataType]. Pixels
// are kept in their native representation (a []uint16 for UInt16, a
// []complex64 for CFloat32, and so on); the evaluation engine reads them as
// float64 or complex128 planes, or as tagged samples for exact integer
// arithmetic, and writes results back with the conversion rules of the
// destination type.
//
// A [Window] selects a rectangle of a buffer, optionally at a different
// output size. Size changes use nearest-neighbour resampling only:
// destination pixel (i, j) takes source pixel
// (floor(i*fromW/toW), floor(j*fromH/toH)).
package raster
