package pixfun_test

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/pixfun-mcp/internal/pixfun"
	"github.com/ironsheep/pixfun-mcp/internal/raster"
	"github.com/ironsheep/pixfun-mcp/internal/sample"
)

func TestEvaluate_Errors(t *testing.T) {
	sar := cintSAR(t)
	i32 := int32Band(t)
	small := window(t, i32, 0, 0, 5, 6)

	tests := []struct {
		name string
		req  pixfun.Request
		want error
	}{
		{"unknown function", pixfun.Request{Function: "hypot", Inputs: []*raster.Buffer{i32}}, pixfun.ErrUnknownFunction},
		{"no inputs", pixfun.Request{Function: "sum"}, pixfun.ErrArity},
		{"too many inputs", pixfun.Request{Function: "real", Inputs: []*raster.Buffer{i32, i32}}, pixfun.ErrArity},
		{"diff needs two", pixfun.Request{Function: "diff", Inputs: []*raster.Buffer{i32}}, pixfun.ErrArity},
		{"shape", pixfun.Request{Function: "sum", Inputs: []*raster.Buffer{i32, small}}, pixfun.ErrShapeMismatch},
		{"nil input", pixfun.Request{Function: "sum", Inputs: []*raster.Buffer{i32, nil}}, pixfun.ErrShapeMismatch},
		{"unknown arg", pixfun.Request{Function: "sum", Inputs: []*raster.Buffer{i32}, Args: map[string]float64{"q": 1}}, pixfun.ErrInvalidArgument},
		{"missing arg", pixfun.Request{Function: "pow", Inputs: []*raster.Buffer{i32}}, pixfun.ErrInvalidArgument},
		{"bad flag", pixfun.Request{Function: "dB", Inputs: []*raster.Buffer{i32}, Args: map[string]float64{"power": 2}}, pixfun.ErrInvalidArgument},
		{"complex into real", pixfun.Request{Function: "conj", Inputs: []*raster.Buffer{sar}, OutputType: sample.Float32}, pixfun.ErrUnsupportedConversion},
		{"complex function into real", pixfun.Request{Function: "complex", Inputs: []*raster.Buffer{i32, i32}, OutputType: sample.Int32}, pixfun.ErrUnsupportedConversion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := pixfun.Evaluate(tt.req)
			require.ErrorIs(t, err, tt.want)
			assert.Nil(t, res)

			var perr *pixfun.Error
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.req.Function, perr.Func)
		})
	}
}

func TestEvaluate_OutputConversion(t *testing.T) {
	b, err := raster.Wrap(5, 1, []float64{-1.5, 0.4, 254.9, 300, math.NaN()})
	require.NoError(t, err)

	got := evaluate(t, "real", nil, sample.Byte, b)
	assert.Equal(t, []float64{0, 0, 254, 255, 0}, got.Float64s())

	got = evaluate(t, "real", nil, sample.Int16, b)
	assert.Equal(t, []float64{-1, 0, 254, 300, 0}, got.Float64s())

	// A real result stored in a complex type gets a zero imaginary part.
	got = evaluate(t, "sqrt", nil, sample.CFloat32, window(t, uint16Band(t), 0, 0, 2, 1))
	assert.Equal(t, []complex128{1, complex(float64(float32(math.Sqrt(132))), 0)}, got.Complex128s())
}

func TestEvaluate_ComplexToComplexInt(t *testing.T) {
	sar := cintSAR(t)
	got := evaluate(t, "mul", map[string]float64{"k": 0.5}, sample.CInt32, sar)
	want := mapComplex(sar.Complex128s(), func(z complex128) complex128 {
		return complex(math.Trunc(real(z)/2), math.Trunc(imag(z)/2))
	})
	requireDiff(t, want, got.Complex128s(), exact)
}

func TestEvaluateInto(t *testing.T) {
	sar := cintSAR(t)
	ev := pixfun.NewEvaluator(nil)

	dst, err := raster.New(sample.Float32, 5, 6)
	require.NoError(t, err)
	require.NoError(t, ev.EvaluateInto(pixfun.Request{Function: "intensity", Inputs: []*raster.Buffer{sar}}, dst))
	want := reduceComplex(sar.Complex128s(), func(z complex128) float64 {
		return float64(float32(real(z)*real(z) + imag(z)*imag(z)))
	})
	requireDiff(t, want, dst.Float64s(), exact)

	// Failures leave the destination alone.
	before := dst.Float64s()
	err = ev.EvaluateInto(pixfun.Request{Function: "conj", Inputs: []*raster.Buffer{sar}}, dst)
	require.ErrorIs(t, err, pixfun.ErrUnsupportedConversion)
	assert.Equal(t, before, dst.Float64s())

	wrong, err := raster.New(sample.Float64, 6, 5)
	require.NoError(t, err)
	err = ev.EvaluateInto(pixfun.Request{Function: "real", Inputs: []*raster.Buffer{sar}}, wrong)
	require.ErrorIs(t, err, pixfun.ErrShapeMismatch)
}

func TestCompile(t *testing.T) {
	bound, err := pixfun.Compile("sum", map[string]float64{"k": 1})
	require.NoError(t, err)
	assert.Equal(t, "sum", bound.Descriptor().Name)
	assert.Equal(t, pixfun.Args{"k": 1}, bound.Args())

	assert.Equal(t, sample.Float64, bound.NaturalType(sample.Byte, sample.Int32))
	assert.Equal(t, sample.CFloat64, bound.NaturalType(sample.Byte, sample.CInt16))

	a, err := raster.Wrap(2, 1, []uint8{1, 2})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		res, err := bound.Evaluate([]*raster.Buffer{a, a}, sample.Unknown)
		require.NoError(t, err)
		assert.Equal(t, []float64{3, 5}, res.Float64s())
	}

	_, err = pixfun.Compile("pow", nil)
	require.ErrorIs(t, err, pixfun.ErrInvalidArgument)
}

func TestNaturalType(t *testing.T) {
	tests := []struct {
		fn    string
		types []sample.DataType
		want  sample.DataType
	}{
		{"sum", []sample.DataType{sample.CFloat32, sample.CFloat32}, sample.CFloat32},
		{"conj", []sample.DataType{sample.CFloat32}, sample.CFloat32},
		{"sum", []sample.DataType{sample.CInt16, sample.Float32}, sample.CFloat32},
		{"sum", []sample.DataType{sample.CFloat32, sample.Float64}, sample.CFloat64},
		{"cmul", []sample.DataType{sample.CInt16, sample.CInt16}, sample.CFloat64},
		{"diff", []sample.DataType{sample.Float32, sample.Float32}, sample.Float32},
		{"diff", []sample.DataType{sample.Float32, sample.Int16}, sample.Float64},
		{"sum", []sample.DataType{sample.Int64, sample.Int64}, sample.Float64},
		{"sqrt", []sample.DataType{sample.Float32}, sample.Float64},
		{"mod", []sample.DataType{sample.CFloat32}, sample.Float64},
		{"complex", []sample.DataType{sample.Float32, sample.Float32}, sample.CFloat64},
	}
	for _, tt := range tests {
		bound, err := pixfun.Compile(tt.fn, nil)
		require.NoError(t, err)
		assert.Equal(t, tt.want, bound.NaturalType(tt.types...), "%s%v", tt.fn, tt.types)
	}

	a, err := raster.Wrap(2, 1, []complex64{complex(1, 2), complex(-3, 0.5)})
	require.NoError(t, err)
	got := evaluate(t, "sum", nil, sample.Unknown, a, a)
	assert.Equal(t, sample.CFloat32, got.Type())
	assert.Equal(t, []complex128{complex(2, 4), complex(-6, 1)}, got.Complex128s())
}

func TestEvaluate_Int64Exact(t *testing.T) {
	const big = 1 << 53
	a, err := raster.Wrap(3, 1, []int64{big, -big, math.MaxInt64})
	require.NoError(t, err)
	b, err := raster.Wrap(3, 1, []int64{1, -1, 1})
	require.NoError(t, err)

	sum := evaluate(t, "sum", nil, sample.Int64, a, b)
	got, ok := raster.Data[int64](sum)
	require.True(t, ok)
	// The last pixel overflows and saturates.
	assert.Equal(t, []int64{big + 1, -big - 1, math.MaxInt64}, got)

	diff := evaluate(t, "diff", nil, sample.Int64, a, b)
	got, _ = raster.Data[int64](diff)
	assert.Equal(t, []int64{big - 1, -big + 1, math.MaxInt64 - 1}, got)

	mul := evaluate(t, "mul", map[string]float64{"k": 3}, sample.Int64, a, b)
	got, _ = raster.Data[int64](mul)
	assert.Equal(t, []int64{3 * big, 3 * big, math.MaxInt64}, got)

	withK := evaluate(t, "sum", map[string]float64{"k": -2}, sample.Int64, a)
	got, _ = raster.Data[int64](withK)
	assert.Equal(t, []int64{big - 2, -big - 2, math.MaxInt64 - 2}, got)

	same := evaluate(t, "real", nil, sample.Int64, a)
	got, _ = raster.Data[int64](same)
	assert.Equal(t, []int64{big, -big, math.MaxInt64}, got)
}

func TestEvaluate_UInt64Exact(t *testing.T) {
	a, err := raster.Wrap(2, 1, []uint64{math.MaxUint64 - 1, 5})
	require.NoError(t, err)
	b, err := raster.Wrap(2, 1, []uint64{1, 1 << 60})
	require.NoError(t, err)

	sum := evaluate(t, "sum", nil, sample.UInt64, a, b)
	got, ok := raster.Data[uint64](sum)
	require.True(t, ok)
	assert.Equal(t, []uint64{math.MaxUint64, 1<<60 + 5}, got)

	// Unsigned differences below zero are signed.
	diff := evaluate(t, "diff", nil, sample.Int64, b, a)
	signed, ok := raster.Data[int64](diff)
	require.True(t, ok)
	assert.Equal(t, []int64{math.MinInt64, 1<<60 - 5}, signed)

	cmul := evaluate(t, "cmul", nil, sample.UInt64, b, b)
	got, _ = raster.Data[uint64](cmul)
	assert.Equal(t, []uint64{1, math.MaxUint64}, got)
}

func TestEvaluate_FractionalArgUsesFloat(t *testing.T) {
	a, err := raster.Wrap(2, 1, []int64{1 << 50, 3})
	require.NoError(t, err)
	got := evaluate(t, "sum", map[string]float64{"k": 0.5}, sample.Unknown, a)
	assert.Equal(t, sample.Float64, got.Type())
	assert.Equal(t, []float64{1<<50 + 0.5, 3.5}, got.Float64s())
}

func TestBound_ConcurrentUse(t *testing.T) {
	bound, err := pixfun.Compile("cmul", nil)
	require.NoError(t, err)
	sar := cintSAR(t)
	want, err := bound.Evaluate([]*raster.Buffer{sar, sar}, sample.Unknown)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := bound.Evaluate([]*raster.Buffer{sar, sar}, sample.Unknown)
			if err != nil {
				errs <- err
				return
			}
			if !assert.ObjectsAreEqual(want.Complex128s(), got.Complex128s()) {
				errs <- errors.New("concurrent result differs")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

// The identities below hold for every input; they are checked on the
// fixtures.

func TestRealImag_OfRealInput(t *testing.T) {
	for _, in := range []*raster.Buffer{uint16Band(t), int32Band(t), float32Band(t)} {
		requireDiff(t, in.Float64s(), evaluate(t, "real", nil, sample.Unknown, in).Float64s(), exact)
		assert.Equal(t, make([]float64, in.Len()), evaluate(t, "imag", nil, sample.Unknown, in).Float64s())
	}
}

func TestMod_SquaredIsIntensity(t *testing.T) {
	for _, in := range []*raster.Buffer{cintSAR(t), cfloat64Band(t)} {
		mod := evaluate(t, "mod", nil, sample.Unknown, in).Float64s()
		inten := evaluate(t, "intensity", nil, sample.Unknown, in).Float64s()
		requireDiff(t, inten, mapReals(mod, func(x float64) float64 { return x * x }), approx)
	}
}

func TestConj_Involution(t *testing.T) {
	in := cfloat64Band(t)
	once := evaluate(t, "conj", nil, sample.Unknown, in)
	twice := evaluate(t, "conj", nil, sample.Unknown, once)
	requireDiff(t, in.Complex128s(), twice.Complex128s(), exact)
}

func TestSumMul_Commutative(t *testing.T) {
	u16, i32, f32 := uint16Band(t), int32Band(t), float32Band(t)
	perms := [][]*raster.Buffer{
		{u16, i32, f32}, {u16, f32, i32}, {i32, u16, f32},
		{i32, f32, u16}, {f32, u16, i32}, {f32, i32, u16},
	}
	for _, fn := range []string{"sum", "mul"} {
		want := evaluate(t, fn, nil, sample.Unknown, perms[0]...).Float64s()
		for _, p := range perms[1:] {
			requireDiff(t, want, evaluate(t, fn, nil, sample.Unknown, p...).Float64s(), exact)
		}
	}

	// Integer-only inputs are exact under any grouping.
	a, b := uint16Band(t), int32Band(t)
	ab := evaluate(t, "sum", nil, sample.Unknown, a, b)
	abc := evaluate(t, "sum", nil, sample.Unknown, ab, i32)
	bc := evaluate(t, "sum", nil, sample.Unknown, b, i32)
	abc2 := evaluate(t, "sum", nil, sample.Unknown, a, bc)
	requireDiff(t, abc.Float64s(), abc2.Float64s(), exact)
}

func TestDiff_Antisymmetric(t *testing.T) {
	a, b := int32Band(t), float32Band(t)
	ab := evaluate(t, "diff", nil, sample.Unknown, a, b).Float64s()
	ba := evaluate(t, "diff", nil, sample.Unknown, b, a).Float64s()
	requireDiff(t, ab, mapReals(ba, func(x float64) float64 { return -x }), exact)
}

func TestCmul_IsMulConj(t *testing.T) {
	sar := cintSAR(t)
	c64 := window(t, cfloat64Band(t), 0, 0, 5, 6)

	self := evaluate(t, "cmul", nil, sample.Unknown, sar, sar).Complex128s()
	inten := evaluate(t, "intensity", nil, sample.Unknown, sar).Float64s()
	requireDiff(t, inten, reduceComplex(self, func(z complex128) float64 { return real(z) }), exact)

	conj := evaluate(t, "conj", nil, sample.Unknown, c64)
	want := evaluate(t, "mul", nil, sample.Unknown, sar, conj).Complex128s()
	got := evaluate(t, "cmul", nil, sample.Unknown, sar, c64).Complex128s()
	requireDiff(t, want, got, exact)
}

func TestInv_Involution(t *testing.T) {
	for _, in := range []*raster.Buffer{uint16Band(t), cintSAR(t)} {
		once := evaluate(t, "inv", nil, sample.Unknown, in)
		twice := evaluate(t, "inv", nil, sample.Unknown, once)
		requireDiff(t, in.Complex128s(), twice.Complex128s(), approx)
	}
}

func TestDB2pow_IsDB2ampSquared(t *testing.T) {
	f32 := float32Band(t)
	amp := evaluate(t, "dB2amp", nil, sample.Unknown, f32).Float64s()
	pow := evaluate(t, "dB2pow", nil, sample.Unknown, f32).Float64s()
	requireDiff(t, pow, mapReals(amp, func(x float64) float64 { return x * x }), approx)
}

func TestDiff_WindowRelative(t *testing.T) {
	// A 5x6 window of an integer band at the origin against a 5x6 window of
	// a float band at (10,10): pixels pair up by position in the window.
	i32, f32 := int32Band(t), float32Band(t)
	a := window(t, i32, 0, 0, 5, 6)
	b := window(t, f32, 10, 10, 5, 6)
	got := evaluate(t, "diff", nil, sample.Unknown, a, b)

	for y := 0; y < 6; y++ {
		for x := 0; x < 5; x++ {
			av, err := i32.At(x, y)
			require.NoError(t, err)
			bv, err := f32.At(x+10, y+10)
			require.NoError(t, err)
			gv, err := got.At(x, y)
			require.NoError(t, err)
			assert.Equal(t, av.Real()-bv.Real(), gv.Real(), "pixel (%d,%d)", x, y)
		}
	}
}

func TestSum_ThreeTypes(t *testing.T) {
	u, err := raster.Wrap(2, 1, []uint16{65535, 3})
	require.NoError(t, err)
	i, err := raster.Wrap(2, 1, []int32{-70000, 2147483647})
	require.NoError(t, err)
	f, err := raster.Wrap(2, 1, []float32{0.5, -1.25})
	require.NoError(t, err)

	got := evaluate(t, "sum", nil, sample.Unknown, u, i, f)
	assert.Equal(t, sample.Float64, got.Type())
	assert.Equal(t, []float64{65535 - 70000 + 0.5, 3 + 2147483647 - 1.25}, got.Float64s())
}
