// Package band implements derived bands: rasters without stored pixels
// whose values are a pixel function of other bands.
//
// Each source is placed into band coordinates by a SourceRef, following
// the rules of a VRT simple source: SrcRect of the source is stretched onto
// DstRect of the band with nearest-neighbour sampling, and band pixels
// outside DstRect read as zero.  A read request assembles one input buffer
// per source at the requested window and output size, then evaluates the
// band's function over them.
package band
