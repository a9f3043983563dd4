package sample

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromote_Table(t *testing.T) {
	tests := []struct {
		a, b DataType
		want DataType
	}{
		{Byte, Byte, Byte},
		{UInt16, Int32, Float64},
		{Int16, Int32, Float64},
		{Byte, UInt16, Float64},
		{Int32, Float32, Float64},
		{Float32, Float32, Float32},
		{Float32, Float64, Float64},
		{Float32, CFloat32, CFloat32},
		{CInt16, Float32, CFloat32},
		{CInt16, UInt16, CFloat64},
		{CFloat32, Float64, CFloat64},
		{CInt16, CInt32, CFloat64},
		{CFloat64, Byte, CFloat64},
		{Unknown, Int16, Int16},
	}

	for _, tt := range tests {
		t.Run(tt.a.String()+"+"+tt.b.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, Promote(tt.a, tt.b))
			assert.Equal(t, tt.want, Promote(tt.b, tt.a), "promotion must be commutative")
		})
	}
}

func TestPromote_TotalAndWidening(t *testing.T) {
	for _, a := range DataTypes() {
		for _, b := range DataTypes() {
			p := Promote(a, b)
			require.True(t, p.Valid(), "%s+%s", a, b)
			if a.IsComplex() || b.IsComplex() {
				assert.True(t, p.IsComplex(), "%s+%s=%s", a, b, p)
			}
			assert.GreaterOrEqual(t, int(p.Kind()), int(a.Kind()), "%s+%s=%s", a, b, p)
			assert.GreaterOrEqual(t, int(p.Kind()), int(b.Kind()), "%s+%s=%s", a, b, p)
		}
	}
}

func TestPromoteAll(t *testing.T) {
	assert.Equal(t, Float64, PromoteAll(UInt16, Int32, Float32))
	assert.Equal(t, CFloat64, PromoteAll(UInt16, CInt16, CFloat64))
	assert.Equal(t, Int32, PromoteAll(Int32))
	assert.Equal(t, Unknown, PromoteAll())
}

func TestPromoteKind(t *testing.T) {
	assert.Equal(t, KindFloat64, PromoteKind(Uint, Int))
	assert.Equal(t, Uint, PromoteKind(Uint, Uint))
	assert.Equal(t, KindFloat64, PromoteKind(KindFloat32, KindFloat64))
	assert.Equal(t, KindComplex64, PromoteKind(KindFloat32, KindComplex64))
	assert.Equal(t, KindComplex128, PromoteKind(KindFloat64, KindComplex64))
	assert.Equal(t, KindComplex128, PromoteKind(Int, KindComplex64))
}

func TestParseDataType(t *testing.T) {
	for _, dt := range DataTypes() {
		got, err := ParseDataType(dt.String())
		require.NoError(t, err)
		assert.Equal(t, dt, got)
	}

	got, err := ParseDataType("uint8")
	require.NoError(t, err)
	assert.Equal(t, Byte, got)

	got, err = ParseDataType("cfloat32")
	require.NoError(t, err)
	assert.Equal(t, CFloat32, got)

	_, err = ParseDataType("Float128")
	assert.Error(t, err)
}

func TestDataType_Properties(t *testing.T) {
	assert.Equal(t, 4, CInt16.Size())
	assert.Equal(t, 16, CFloat64.Size())
	assert.True(t, CInt16.IsInteger())
	assert.True(t, CInt16.IsComplex())
	assert.False(t, Byte.IsSigned())
	assert.Equal(t, KindComplex64, CInt16.Kind())
	assert.Equal(t, KindComplex128, CInt32.Kind())

	lo, hi := Int16.Range()
	assert.Equal(t, -32768.0, lo)
	assert.Equal(t, 32767.0, hi)

	lo, hi = Float32.Range()
	assert.True(t, math.IsInf(lo, -1))
	assert.True(t, math.IsInf(hi, 1))
}

func TestSample_Accessors(t *testing.T) {
	assert.Equal(t, 7.0, UintSample(7).Real())
	assert.Equal(t, 0.0, UintSample(7).Imag())
	assert.Equal(t, complex(-3, 0), IntSample(-3).Complex())
	assert.Equal(t, complex(1.5, -2), Complex64Sample(complex(1.5, -2)).Complex())
	assert.Equal(t, -2.0, Complex128Sample(complex(1.5, -2)).Imag())
	assert.Equal(t, float64(float32(0.1)), Float32Sample(0.1).Real())
}

func TestSample_Convert(t *testing.T) {
	assert.Equal(t, IntSample(-2), Float64Sample(-2.9).Convert(Int))
	assert.Equal(t, UintSample(0), Float64Sample(-2.9).Convert(Uint))
	assert.Equal(t, UintSample(0), IntSample(-5).Convert(Uint))
	assert.Equal(t, IntSample(0), Float64Sample(math.NaN()).Convert(Int))
	assert.Equal(t, IntSample(math.MaxInt64), UintSample(math.MaxUint64).Convert(Int))
	assert.Equal(t, Complex128Sample(complex(4, 0)), IntSample(4).Convert(KindComplex128))
	assert.Equal(t, Float64Sample(1.5), Complex128Sample(complex(1.5, 9)).Convert(KindFloat64))
}

func TestSample_Arithmetic(t *testing.T) {
	sum := UintSample(3).Add(IntSample(-5))
	assert.Equal(t, KindFloat64, sum.Kind())
	assert.Equal(t, -2.0, sum.Real())

	assert.Equal(t, IntSample(-15), IntSample(3).Mul(IntSample(-5)))
	assert.Equal(t, UintSample(4), UintSample(9).Sub(UintSample(5)))

	c := Complex64Sample(complex(1, 2)).Mul(Float64Sample(2))
	assert.Equal(t, KindComplex128, c.Kind())
	assert.Equal(t, complex(2, 4), c.Complex())

	f := Float32Sample(0.5).Sub(Float32Sample(0.25))
	assert.Equal(t, KindFloat32, f.Kind())
	assert.Equal(t, 0.25, f.Real())
}

func TestSample_IntegerExact(t *testing.T) {
	const big = 1 << 53
	assert.Equal(t, IntSample(big+1), IntSample(big).Add(IntSample(1)))
	assert.Equal(t, IntSample(-big-1), IntSample(-big).Sub(IntSample(1)))
	assert.Equal(t, UintSample(math.MaxUint64), UintSample(math.MaxUint64-1).Add(UintSample(1)))
	assert.Equal(t, IntSample((big+1)*3), IntSample(big+1).Mul(IntSample(3)))
	assert.Equal(t, IntSample(math.MinInt64), IntSample(math.MinInt64/2).Mul(IntSample(2)))
}

func TestSample_IntegerOverflow(t *testing.T) {
	tests := []struct {
		name string
		got  Sample
		want Sample
	}{
		{"int add", IntSample(math.MaxInt64).Add(IntSample(1)), Float64Sample(math.MaxInt64 + 1.0)},
		{"int sub", IntSample(math.MinInt64).Sub(IntSample(1)), Float64Sample(math.MinInt64 - 1.0)},
		{"uint add", UintSample(math.MaxUint64).Add(UintSample(1)), Float64Sample(1 << 64)},
		{"uint below zero", UintSample(3).Sub(UintSample(5)), IntSample(-2)},
		{"uint far below zero", UintSample(0).Sub(UintSample(math.MaxUint64)), Float64Sample(-(1 << 64))},
		{"uint mul", UintSample(1 << 40).Mul(UintSample(1 << 40)), Float64Sample(1 << 80)},
		{"int mul", IntSample(1 << 40).Mul(IntSample(-(1 << 40))), Float64Sample(-(1 << 80))},
		{"min times minus one", IntSample(math.MinInt64).Mul(IntSample(-1)), Float64Sample(1 << 63)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestSample_IntUint(t *testing.T) {
	assert.Equal(t, int64(-3), Float64Sample(-3.7).Int())
	assert.Equal(t, uint64(0), IntSample(-3).Uint())
	assert.Equal(t, uint64(math.MaxUint64), UintSample(math.MaxUint64).Uint())
	assert.Equal(t, int64(math.MaxInt64), UintSample(math.MaxUint64).Int())
	assert.Equal(t, int64(1<<53+1), IntSample(1<<53+1).Int())
	assert.Equal(t, int64(math.MaxInt64), Float64Sample(1e30).Int())
	assert.Equal(t, int64(math.MinInt64), Float64Sample(-1e30).Int())
	assert.Equal(t, uint64(math.MaxUint64), Float64Sample(math.Inf(1)).Uint())
	assert.Equal(t, uint64(0), Float64Sample(math.NaN()).Uint())
}

func TestDataType_IntLimits(t *testing.T) {
	lo, hi := Byte.IntLimits()
	assert.Equal(t, int64(0), lo)
	assert.Equal(t, uint64(255), hi)

	lo, hi = CInt16.IntLimits()
	assert.Equal(t, int64(-32768), lo)
	assert.Equal(t, uint64(32767), hi)

	lo, hi = Int64.IntLimits()
	assert.Equal(t, int64(math.MinInt64), lo)
	assert.Equal(t, uint64(math.MaxInt64), hi)

	_, hi = UInt64.IntLimits()
	assert.Equal(t, uint64(math.MaxUint64), hi)
}

func TestSaturate(t *testing.T) {
	tests := []struct {
		x    float64
		typ  DataType
		want float64
	}{
		{254.9, Byte, 254},
		{255, Byte, 255},
		{300, Byte, 255},
		{-1.5, Byte, 0},
		{-1.5, Int16, -1},
		{-40000, Int16, -32768},
		{math.NaN(), Int32, 0},
		{math.Inf(1), UInt32, 4294967295},
		{1e30, Int64, math.Nextafter(9223372036854775808, 0)},
		{2.5, Float32, 2.5},
		{-7.9, CInt16, -7},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Saturate(tt.x, tt.typ), "Saturate(%g, %s)", tt.x, tt.typ)
	}
}
