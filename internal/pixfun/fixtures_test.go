package pixfun_test

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/pixfun-mcp/internal/pixfun"
	"github.com/ironsheep/pixfun-mcp/internal/raster"
	"github.com/ironsheep/pixfun-mcp/internal/sample"
)

// Fixture rasters.  cintSAR is a small complex SAR-like band; the real
// fixtures are 20x20 so that windows can be cut from them.  No fixture
// contains a complex zero, and uint16Band contains no zero at all.

func cintSAR(t *testing.T) *raster.Buffer {
	t.Helper()
	data := make([]raster.CInt16, 5*6)
	for i := range data {
		data[i] = raster.CInt16{Re: int16(7*i - 100), Im: int16(250 - 13*i)}
	}
	b, err := raster.Wrap(5, 6, data)
	require.NoError(t, err)
	return b
}

func uint16Band(t *testing.T) *raster.Buffer {
	t.Helper()
	data := make([]uint16, 20*20)
	for i := range data {
		data[i] = uint16(131*i + 1)
	}
	b, err := raster.Wrap(20, 20, data)
	require.NoError(t, err)
	return b
}

func int32Band(t *testing.T) *raster.Buffer {
	t.Helper()
	data := make([]int32, 20*20)
	for i := range data {
		data[i] = int32(i*i - 50000)
	}
	b, err := raster.Wrap(20, 20, data)
	require.NoError(t, err)
	return b
}

func float32Band(t *testing.T) *raster.Buffer {
	t.Helper()
	data := make([]float32, 20*20)
	for i := range data {
		data[i] = float32(i%40)*0.25 - 2.5
	}
	b, err := raster.Wrap(20, 20, data)
	require.NoError(t, err)
	return b
}

func cfloat64Band(t *testing.T) *raster.Buffer {
	t.Helper()
	data := make([]complex128, 20*20)
	for i := range data {
		data[i] = complex(float64(i)*0.5-7, float64(i%9)-4)
	}
	b, err := raster.Wrap(20, 20, data)
	require.NoError(t, err)
	return b
}

func window(t *testing.T, b *raster.Buffer, x, y, w, h int) *raster.Buffer {
	t.Helper()
	res, err := b.Window(raster.Window{XOff: x, YOff: y, XSize: w, YSize: h})
	require.NoError(t, err)
	return res
}

func evaluate(t *testing.T, name string, args map[string]float64, out sample.DataType, inputs ...*raster.Buffer) *raster.Buffer {
	t.Helper()
	res, err := pixfun.Evaluate(pixfun.Request{
		Function:   name,
		Inputs:     inputs,
		Args:       args,
		OutputType: out,
	})
	require.NoError(t, err)
	return res
}

func mapReals(in []float64, f func(float64) float64) []float64 {
	res := make([]float64, len(in))
	for i, x := range in {
		res[i] = f(x)
	}
	return res
}

func mapComplex(in []complex128, f func(complex128) complex128) []complex128 {
	res := make([]complex128, len(in))
	for i, z := range in {
		res[i] = f(z)
	}
	return res
}

func reduceComplex(in []complex128, f func(complex128) float64) []float64 {
	res := make([]float64, len(in))
	for i, z := range in {
		res[i] = f(z)
	}
	return res
}

// exact compares bit for bit, treating NaNs as equal.
var exact = cmpopts.EquateNaNs()

// approx is the tolerance used for transcendental results.
var approx = cmp.Options{
	cmpopts.EquateNaNs(),
	cmpopts.EquateApprox(1e-12, 1e-300),
	cmp.Comparer(func(a, b complex128) bool {
		if cmplx.IsNaN(a) || cmplx.IsNaN(b) {
			return cmplx.IsNaN(a) && cmplx.IsNaN(b)
		}
		return cmplx.Abs(a-b) <= 1e-12*math.Max(1, cmplx.Abs(b))
	}),
}

func requireDiff(t *testing.T, want, got any, opts ...cmp.Option) {
	t.Helper()
	if diff := cmp.Diff(want, got, opts...); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}
