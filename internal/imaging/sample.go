package imaging

import (
	"fmt"
	"math"
	"strconv"

	"github.com/ironsheep/pixfun-mcp/internal/raster"
	"github.com/ironsheep/pixfun-mcp/internal/sample"
)

// Value is a float64 that survives JSON encoding.  NaN and the
// infinities are written as the strings "NaN", "+Inf" and "-Inf".
type Value float64

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	f := float64(v)
	switch {
	case math.IsNaN(f):
		return []byte(`"NaN"`), nil
	case math.IsInf(f, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(f, -1):
		return []byte(`"-Inf"`), nil
	}
	return strconv.AppendFloat(nil, f, 'g', -1, 64), nil
}

// UnmarshalJSON accepts numbers and the strings written by MarshalJSON.
func (v *Value) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid value %s", data)
	}
	*v = Value(f)
	return nil
}

// Values converts a float64 slice.
func Values(fs []float64) []Value {
	out := make([]Value, len(fs))
	for i, f := range fs {
		out[i] = Value(f)
	}
	return out
}

// SampleResult contains a band value at one pixel.  Imag, Modulus and
// Phase are set for complex bands only.
type SampleResult struct {
	Label    string          `json:"label,omitempty"`
	X        int             `json:"x"`
	Y        int             `json:"y"`
	DataType sample.DataType `json:"data_type"`
	Value    Value           `json:"value"`
	Imag     *Value          `json:"imag,omitempty"`
	Modulus  *Value          `json:"modulus,omitempty"`
	Phase    *Value          `json:"phase,omitempty"`
}

// LabeledPoint represents a pixel coordinate with an optional descriptive label.
type LabeledPoint struct {
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Label string `json:"label,omitempty"`
}

// MultiSampleResult contains samples in the order the points were given.
type MultiSampleResult struct {
	Samples []SampleResult `json:"samples"`
}

// SampleValue reads the band value at (x, y).
//
// Coordinates are 0-based with origin at the top-left pixel.
func SampleValue(buf *raster.Buffer, x, y int) (*SampleResult, error) {
	if x < 0 || x >= buf.Width() || y < 0 || y >= buf.Height() {
		return nil, fmt.Errorf("coordinates (%d,%d) outside band bounds", x, y)
	}
	s, err := buf.At(x, y)
	if err != nil {
		return nil, err
	}

	res := &SampleResult{X: x, Y: y, DataType: buf.Type(), Value: Value(s.Real())}
	if buf.Type().IsComplex() {
		z := s.Complex()
		im := Value(imag(z))
		mod := Value(math.Hypot(real(z), imag(z)))
		ph := Value(math.Atan2(imag(z), real(z)))
		res.Imag, res.Modulus, res.Phase = &im, &mod, &ph
	}
	return res, nil
}

// SampleValuesMulti samples several points.  On error no partial results
// are returned.
func SampleValuesMulti(buf *raster.Buffer, points []LabeledPoint) (*MultiSampleResult, error) {
	results := make([]SampleResult, 0, len(points))

	for _, p := range points {
		s, err := SampleValue(buf, p.X, p.Y)
		if err != nil {
			return nil, fmt.Errorf("failed to sample point (%d,%d): %w", p.X, p.Y, err)
		}
		s.Label = p.Label
		results = append(results, *s)
	}

	return &MultiSampleResult{Samples: results}, nil
}
