// Package imaging connects raster bands to ordinary image files.
//
// Decoded images are exposed as band sources, one channel at a time, so
// that derived bands can read from PNG, JPEG, GIF and TIFF files.  In the
// other direction the package renders bands back to PNG, samples single
// pixels and summarises whole bands.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (x1,y1) is inclusive (top-left), (x2,y2) is exclusive (bottom-right)
//
// # Channels and Data Types
//
// A channel is one of gray, red, green, blue or alpha.  Gray is the
// luminance of the pixel.  Bands from 8-bit images are Byte, bands from
// 16-bit images (Gray16, RGBA64, NRGBA64, 16-bit TIFF) are UInt16.
// Colour channels are read without alpha premultiplication.
//
// # Rendering
//
// Render stretches band values linearly between a minimum and maximum
// and maps them to grey levels, to a colour ramp interpolated in CIE
// L*a*b*, or for complex data to a hue wheel keyed on phase.  NaN pixels
// are transparent.  An optional coordinate grid can be drawn on top.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use.  Rendering, sampling
// and statistics do not modify their input buffers.
//
// # Performance Considerations
//
// Channels are extracted once per ImageSource and kept with the cached
// image.  Use Evict() or Clear() to manage memory for long-running
// processes.
package imaging
