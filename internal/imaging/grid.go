package imaging

import (
	"fmt"
	"image"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// gridBlend is the weight of the grid colour over an opaque pixel.
const gridBlend = 0.6

// drawGrid draws lines every spacing band pixels on an image zoomed by
// scale.  Labels give band coordinates, offset by origin when a region
// was rendered.
func drawGrid(img *image.NRGBA, spacing, scale int, origin image.Point, gc colorful.Color, showCoordinates bool) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	step := spacing * scale

	// Vertical lines
	for x := step; x < width; x += step {
		for y := 0; y < height; y++ {
			blendPixel(img, x, y, gc)
		}
	}

	// Horizontal lines
	for y := step; y < height; y += step {
		for x := 0; x < width; x++ {
			blendPixel(img, x, y, gc)
		}
	}

	if !showCoordinates {
		return
	}
	labelColor := color.NRGBA{255, 255, 255, 255}
	bgColor := color.NRGBA{0, 0, 0, 180}
	for y := step; y < height; y += step {
		for x := step; x < width; x += step {
			label := fmt.Sprintf("%d,%d", origin.X+x/scale, origin.Y+y/scale)
			drawLabel(img, x+2, y+2, label, labelColor, bgColor)
		}
	}
}

// blendPixel mixes gc into the pixel at (x, y).  Transparent pixels take
// the grid colour as is.
func blendPixel(img *image.NRGBA, x, y int, gc colorful.Color) {
	c := gc
	if under, ok := colorful.MakeColor(img.NRGBAAt(x, y)); ok {
		c = under.BlendRgb(gc, gridBlend)
	}
	img.SetNRGBA(x, y, opaque(c))
}

// drawLabel draws text on a dark box whose top-left corner is (x, y).
func drawLabel(img *image.NRGBA, x, y int, text string, fg, bg color.NRGBA) {
	face := basicfont.Face7x13
	box := image.Rect(x-1, y-1, x+font.MeasureString(face, text).Ceil()+1, y+face.Height).Intersect(img.Bounds())
	for py := box.Min.Y; py < box.Max.Y; py++ {
		for px := box.Min.X; px < box.Max.X; px++ {
			img.SetNRGBA(px, py, bg)
		}
	}

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(fg),
		Face: face,
		Dot:  fixed.P(x, y+face.Ascent),
	}
	d.DrawString(text)
}
