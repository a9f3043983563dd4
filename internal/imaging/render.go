package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"math"
	"math/cmplx"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/pixfun-mcp/internal/raster"
)

// RenderMode selects how band values are mapped to colours.
type RenderMode string

const (
	// ModeGrey maps the stretched value to a grey level.
	ModeGrey RenderMode = "grey"
	// ModeColormap interpolates the stretched value along colour stops.
	ModeColormap RenderMode = "colormap"
	// ModePhase encodes the phase as hue and the stretched modulus as value.
	ModePhase RenderMode = "phase"
)

// DefaultColormap is used when ModeColormap is requested without stops.
var DefaultColormap = []string{"#000004", "#51127c", "#b73779", "#fc8961", "#fcfdbf"}

// DefaultGridColor is the grid line colour when none is given.
const DefaultGridColor = "#ff0000"

// RenderOptions controls how a band is turned into an image.
//
// Complex bands are rendered by modulus in the grey and colormap modes.
// NaN pixels are left transparent.
type RenderOptions struct {
	Mode     RenderMode
	Colormap []string // hex colour stops, at least two

	// Min and Max fix the linear stretch.  A nil bound is taken from the
	// finite values of the rendered region.
	Min *float64
	Max *float64

	Scale  int     // integer nearest-neighbour zoom, 0 or 1 for none
	Region *Region // sub-area to render, nil for the whole band

	GridSpacing     int // grid spacing in band pixels, 0 for no grid
	ShowCoordinates bool
	GridColor       string
}

// RenderResult contains the rendered band as a PNG.
type RenderResult struct {
	Width       int        `json:"width"`
	Height      int        `json:"height"`
	ImageBase64 string     `json:"image_base64"`
	MimeType    string     `json:"mime_type"`
	Mode        RenderMode `json:"mode"`
	StretchMin  float64    `json:"stretch_min"`
	StretchMax  float64    `json:"stretch_max"`
	GridSpacing int        `json:"grid_spacing,omitempty"`
}

// Render draws buf according to opts and encodes the result as PNG.
func Render(buf *raster.Buffer, opts RenderOptions) (*RenderResult, error) {
	img, lo, hi, err := render(buf, opts)
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if err := imaging.Encode(&out, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	mode := opts.Mode
	if mode == "" {
		mode = ModeGrey
	}
	return &RenderResult{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(out.Bytes()),
		MimeType:    "image/png",
		Mode:        mode,
		StretchMin:  lo,
		StretchMax:  hi,
		GridSpacing: opts.GridSpacing,
	}, nil
}

// RenderImage draws buf according to opts.
func RenderImage(buf *raster.Buffer, opts RenderOptions) (*image.NRGBA, error) {
	img, _, _, err := render(buf, opts)
	return img, err
}

func render(buf *raster.Buffer, opts RenderOptions) (*image.NRGBA, float64, float64, error) {
	if buf == nil {
		return nil, 0, 0, fmt.Errorf("no band to render")
	}
	mode := opts.Mode
	if mode == "" {
		mode = ModeGrey
	}

	var stops []colorful.Color
	switch mode {
	case ModeGrey, ModePhase:
	case ModeColormap:
		var err error
		if stops, err = parseColormap(opts.Colormap); err != nil {
			return nil, 0, 0, err
		}
	default:
		return nil, 0, 0, fmt.Errorf("unknown render mode %q (want grey, colormap or phase)", mode)
	}
	if opts.Scale < 0 {
		return nil, 0, 0, fmt.Errorf("scale must be positive, got %d", opts.Scale)
	}
	if opts.GridSpacing < 0 {
		return nil, 0, 0, fmt.Errorf("grid spacing must be positive, got %d", opts.GridSpacing)
	}

	var origin image.Point
	if opts.Region != nil {
		if err := opts.Region.Validate(buf.Width(), buf.Height()); err != nil {
			return nil, 0, 0, err
		}
		win, err := buf.Window(raster.WindowFromRect(opts.Region.Rect()))
		if err != nil {
			return nil, 0, 0, err
		}
		buf, origin = win, image.Pt(opts.Region.X1, opts.Region.Y1)
	}

	mag, phase := magnitudes(buf)
	lo, hi := finiteRange(mag)
	if opts.Min != nil {
		lo = *opts.Min
	}
	if opts.Max != nil {
		hi = *opts.Max
	}
	if lo > hi {
		return nil, 0, 0, fmt.Errorf("stretch minimum %g exceeds maximum %g", lo, hi)
	}

	w, h := buf.Width(), buf.Height()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i, m := range mag {
		if math.IsNaN(m) {
			continue
		}
		t := stretch(m, lo, hi)
		var c color.NRGBA
		switch mode {
		case ModeGrey:
			g := uint8(math.Round(t * 255))
			c = color.NRGBA{R: g, G: g, B: g, A: 255}
		case ModeColormap:
			c = opaque(ramp(stops, t))
		case ModePhase:
			hue := math.Mod(phase[i]*180/math.Pi+360, 360)
			c = opaque(colorful.Hsv(hue, 1, t))
		}
		img.SetNRGBA(i%w, i/w, c)
	}

	scale := max(opts.Scale, 1)
	if scale > 1 {
		img = imaging.Resize(img, w*scale, h*scale, imaging.NearestNeighbor)
	}

	if opts.GridSpacing > 0 {
		gridColor := opts.GridColor
		if gridColor == "" {
			gridColor = DefaultGridColor
		}
		gc, err := colorful.Hex(gridColor)
		if err != nil {
			return nil, 0, 0, fmt.Errorf("invalid grid color %q: %w", gridColor, err)
		}
		drawGrid(img, opts.GridSpacing, scale, origin, gc, opts.ShowCoordinates)
	}
	return img, lo, hi, nil
}

// magnitudes returns the value to stretch for each pixel and its phase.
// Complex pixels contribute their modulus.
func magnitudes(buf *raster.Buffer) (mag, phase []float64) {
	if buf.Type().IsComplex() {
		vals := buf.Complex128s()
		mag = make([]float64, len(vals))
		phase = make([]float64, len(vals))
		for i, z := range vals {
			mag[i] = cmplx.Abs(z)
			phase[i] = cmplx.Phase(z)
		}
		return mag, phase
	}
	mag = buf.Float64s()
	phase = make([]float64, len(mag))
	for i, v := range mag {
		phase[i] = math.Atan2(0, v)
	}
	return mag, phase
}

func finiteRange(vals []float64) (lo, hi float64) {
	first := true
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if first {
			lo, hi, first = v, v, false
			continue
		}
		lo, hi = min(lo, v), max(hi, v)
	}
	return lo, hi
}

func stretch(v, lo, hi float64) float64 {
	var t float64
	switch {
	case hi > lo:
		t = (v - lo) / (hi - lo)
	case v > hi:
		t = 1
	}
	return math.Max(0, math.Min(1, t))
}

func parseColormap(hexes []string) ([]colorful.Color, error) {
	if len(hexes) == 0 {
		hexes = DefaultColormap
	}
	if len(hexes) < 2 {
		return nil, fmt.Errorf("colormap needs at least two stops, got %d", len(hexes))
	}
	stops := make([]colorful.Color, len(hexes))
	for i, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			return nil, fmt.Errorf("invalid colormap stop %q: %w", h, err)
		}
		stops[i] = c
	}
	return stops, nil
}

// ramp interpolates in CIE L*a*b* between the two stops around t.
func ramp(stops []colorful.Color, t float64) colorful.Color {
	if t <= 0 {
		return stops[0]
	}
	if t >= 1 {
		return stops[len(stops)-1]
	}
	pos := t * float64(len(stops)-1)
	i := int(pos)
	return stops[i].BlendLab(stops[i+1], pos-float64(i)).Clamped()
}

func opaque(c colorful.Color) color.NRGBA {
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}
