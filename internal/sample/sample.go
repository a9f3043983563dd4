package sample

import (
	"fmt"
	"math"
	"math/bits"
)

var (
	posInf = math.Inf(1)
	negInf = math.Inf(-1)
)

// Kind is the arithmetic tag of a Sample.
type Kind uint8

// Tags in promotion order.
const (
	Invalid Kind = iota
	Uint
	Int
	KindFloat32
	KindFloat64
	KindComplex64
	KindComplex128
)

func (k Kind) String() string {
	switch k {
	case Uint:
		return "uint"
	case Int:
		return "int"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindComplex64:
		return "complex64"
	case KindComplex128:
		return "complex128"
	default:
		return "invalid"
	}
}

// IsComplex reports whether values of this kind have an imaginary part.
func (k Kind) IsComplex() bool {
	return k == KindComplex64 || k == KindComplex128
}

func (k Kind) floatBits() int {
	if k == KindFloat32 || k == KindComplex64 {
		return 32
	}
	return 64
}

// PromoteKind returns the tag both a and b are widened to before they are
// combined.  Mixing signed and unsigned integers yields KindFloat64.
func PromoteKind(a, b Kind) Kind {
	switch {
	case a == b:
		return a
	case a == Invalid:
		return b
	case b == Invalid:
		return a
	case a.IsComplex() || b.IsComplex():
		if a.floatBits() == 32 && b.floatBits() == 32 {
			return KindComplex64
		}
		return KindComplex128
	default:
		return KindFloat64
	}
}

// Sample is a single pixel value.  The zero value is an invalid sample.
type Sample struct {
	kind Kind
	u    uint64
	i    int64
	c    complex128 // float kinds use the real part only
}

// UintSample returns an unsigned integer sample.
func UintSample(v uint64) Sample { return Sample{kind: Uint, u: v} }

// IntSample returns a signed integer sample.
func IntSample(v int64) Sample { return Sample{kind: Int, i: v} }

// Float32Sample returns a single precision sample.
func Float32Sample(v float32) Sample { return Sample{kind: KindFloat32, c: complex(float64(v), 0)} }

// Float64Sample returns a double precision sample.
func Float64Sample(v float64) Sample { return Sample{kind: KindFloat64, c: complex(v, 0)} }

// Complex64Sample returns a single precision complex sample.
func Complex64Sample(v complex64) Sample { return Sample{kind: KindComplex64, c: complex128(v)} }

// Complex128Sample returns a double precision complex sample.
func Complex128Sample(v complex128) Sample { return Sample{kind: KindComplex128, c: v} }

// Kind returns the tag of s.
func (s Sample) Kind() Kind { return s.kind }

// Real returns the value for real samples and the real part for complex
// samples.
func (s Sample) Real() float64 {
	switch s.kind {
	case Uint:
		return float64(s.u)
	case Int:
		return float64(s.i)
	default:
		return real(s.c)
	}
}

// Imag returns the imaginary part, which is 0 for real samples.
func (s Sample) Imag() float64 {
	if s.kind.IsComplex() {
		return imag(s.c)
	}
	return 0
}

// Int returns s converted to a signed 64-bit integer, saturating and
// truncating like Convert.
func (s Sample) Int() int64 { return s.Convert(Int).i }

// Uint returns s converted to an unsigned 64-bit integer, saturating and
// truncating like Convert.
func (s Sample) Uint() uint64 { return s.Convert(Uint).u }

// Complex returns the sample as a complex number.  This never fails; real
// samples get a zero imaginary part.
func (s Sample) Complex() complex128 {
	return complex(s.Real(), s.Imag())
}

// Convert widens or narrows s to kind k.  Narrowing to an integer kind
// truncates toward zero and saturates at the exact 64-bit limits; NaN
// becomes 0.
func (s Sample) Convert(k Kind) Sample {
	if s.kind == k {
		return s
	}
	switch k {
	case Uint:
		if s.kind == Int {
			if s.i < 0 {
				return UintSample(0)
			}
			return UintSample(uint64(s.i))
		}
		if x := s.Real(); x >= 1<<64 {
			return UintSample(math.MaxUint64)
		}
		return UintSample(uint64(clampTrunc(s.Real(), 0, math.MaxUint64)))
	case Int:
		if s.kind == Uint {
			if s.u > math.MaxInt64 {
				return IntSample(math.MaxInt64)
			}
			return IntSample(int64(s.u))
		}
		if x := s.Real(); x >= 1<<63 {
			return IntSample(math.MaxInt64)
		}
		return IntSample(int64(clampTrunc(s.Real(), math.MinInt64, math.MaxInt64)))
	case KindFloat32:
		return Float32Sample(float32(s.Real()))
	case KindFloat64:
		return Float64Sample(s.Real())
	case KindComplex64:
		return Complex64Sample(complex64(s.Complex()))
	case KindComplex128:
		return Complex128Sample(s.Complex())
	default:
		return Sample{}
	}
}

// clampTrunc maps NaN to 0, clamps x to [lo, hi] and truncates toward zero.
// Upper limits of 2^63 and above are pulled down to the largest float64 that
// still converts to a 64-bit integer.
func clampTrunc(x, lo, hi float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	if hi >= 1<<63 {
		hi = math.Nextafter(hi, 0)
	}
	if x <= lo {
		return lo
	}
	if x >= hi {
		return hi
	}
	return math.Trunc(x)
}

// Saturate returns the value an integer pixel of type t stores for x: NaN
// becomes 0, out-of-range values clamp to the limits of t, everything else
// truncates toward zero.  Non-integer types return x unchanged.
func Saturate(x float64, t DataType) float64 {
	if !t.IsInteger() {
		return x
	}
	lo, hi := t.Range()
	return clampTrunc(x, lo, hi)
}

// Add returns a+b computed at the promoted kind.  Integer sums that
// overflow 64 bits are computed in float64 instead.
func (s Sample) Add(o Sample) Sample {
	k := PromoteKind(s.kind, o.kind)
	a, b := s.Convert(k), o.Convert(k)
	switch k {
	case Uint:
		sum, carry := bits.Add64(a.u, b.u, 0)
		if carry != 0 {
			return Float64Sample(float64(a.u) + float64(b.u))
		}
		return UintSample(sum)
	case Int:
		sum := a.i + b.i
		if (a.i^sum)&(b.i^sum) < 0 {
			return Float64Sample(float64(a.i) + float64(b.i))
		}
		return IntSample(sum)
	case KindFloat32:
		return Float32Sample(float32(real(a.c)) + float32(real(b.c)))
	case KindFloat64:
		return Float64Sample(real(a.c) + real(b.c))
	case KindComplex64:
		return Complex64Sample(complex64(a.c) + complex64(b.c))
	default:
		return Complex128Sample(a.c + b.c)
	}
}

// Sub returns a-b computed at the promoted kind.  Unsigned differences
// below zero and signed ones that overflow are computed in float64.
func (s Sample) Sub(o Sample) Sample {
	k := PromoteKind(s.kind, o.kind)
	a, b := s.Convert(k), o.Convert(k)
	switch k {
	case Uint:
		diff, borrow := bits.Sub64(a.u, b.u, 0)
		if borrow != 0 {
			if b.u-a.u <= 1<<63 {
				return IntSample(-int64(b.u - a.u))
			}
			return Float64Sample(float64(a.u) - float64(b.u))
		}
		return UintSample(diff)
	case Int:
		diff := a.i - b.i
		if (a.i^b.i)&(a.i^diff) < 0 {
			return Float64Sample(float64(a.i) - float64(b.i))
		}
		return IntSample(diff)
	case KindFloat32:
		return Float32Sample(float32(real(a.c)) - float32(real(b.c)))
	case KindFloat64:
		return Float64Sample(real(a.c) - real(b.c))
	case KindComplex64:
		return Complex64Sample(complex64(a.c) - complex64(b.c))
	default:
		return Complex128Sample(a.c - b.c)
	}
}

// Mul returns a*b computed at the promoted kind.  Integer products that
// overflow 64 bits are computed in float64 instead.
func (s Sample) Mul(o Sample) Sample {
	k := PromoteKind(s.kind, o.kind)
	a, b := s.Convert(k), o.Convert(k)
	switch k {
	case Uint:
		hi, lo := bits.Mul64(a.u, b.u)
		if hi != 0 {
			return Float64Sample(float64(a.u) * float64(b.u))
		}
		return UintSample(lo)
	case Int:
		if p, ok := mulInt64(a.i, b.i); ok {
			return IntSample(p)
		}
		return Float64Sample(float64(a.i) * float64(b.i))
	case KindFloat32:
		return Float32Sample(float32(real(a.c)) * float32(real(b.c)))
	case KindFloat64:
		return Float64Sample(real(a.c) * real(b.c))
	case KindComplex64:
		return Complex64Sample(complex64(a.c) * complex64(b.c))
	default:
		return Complex128Sample(a.c * b.c)
	}
}

// mulInt64 returns a*b and whether it fits in an int64.
func mulInt64(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	p := a * b
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) || p/b != a {
		return 0, false
	}
	return p, true
}

func (s Sample) String() string {
	switch s.kind {
	case Uint:
		return fmt.Sprintf("%d", s.u)
	case Int:
		return fmt.Sprintf("%d", s.i)
	case KindFloat32, KindFloat64:
		return fmt.Sprintf("%g", real(s.c))
	case KindComplex64, KindComplex128:
		return fmt.Sprintf("%g", s.c)
	default:
		return "<invalid>"
	}
}
