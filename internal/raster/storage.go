package raster

import (
	"golang.org/x/exp/constraints"

	"github.com/ironsheep/pixfun-mcp/internal/sample"
)

// ComplexInt is a complex pixel with integer components.
type ComplexInt[T int16 | int32] struct {
	Re, Im T
}

// CInt16 is the storage type of sample.CInt16 pixels.
type CInt16 = ComplexInt[int16]

// CInt32 is the storage type of sample.CInt32 pixels.
type CInt32 = ComplexInt[int32]

// Pixel lists the Go types a Buffer can store.
type Pixel interface {
	uint8 | int8 | uint16 | int16 | uint32 | int32 | uint64 | int64 |
		float32 | float64 | complex64 | complex128 | CInt16 | CInt32
}

// storage is the type-specific backing array of a Buffer.  The bulk
// methods run a monomorphic loop per pixel type.
type storage interface {
	len() int
	at(i int) sample.Sample
	set(i int, s sample.Sample)
	reals(dst []float64)
	complexes(dst []complex128)
	setReals(src []float64)
	setComplexes(src []complex128)
	gather(idx []int) storage
	raw() any
}

func newStorage(t sample.DataType, n int) storage {
	switch t {
	case sample.Byte:
		return &intStorage[uint8]{data: make([]uint8, n), typ: t}
	case sample.Int8:
		return &intStorage[int8]{data: make([]int8, n), typ: t}
	case sample.UInt16:
		return &intStorage[uint16]{data: make([]uint16, n), typ: t}
	case sample.Int16:
		return &intStorage[int16]{data: make([]int16, n), typ: t}
	case sample.UInt32:
		return &intStorage[uint32]{data: make([]uint32, n), typ: t}
	case sample.Int32:
		return &intStorage[int32]{data: make([]int32, n), typ: t}
	case sample.UInt64:
		return &intStorage[uint64]{data: make([]uint64, n), typ: t}
	case sample.Int64:
		return &intStorage[int64]{data: make([]int64, n), typ: t}
	case sample.Float32:
		return &floatStorage[float32]{data: make([]float32, n)}
	case sample.Float64:
		return &floatStorage[float64]{data: make([]float64, n)}
	case sample.CInt16:
		return &cintStorage[int16]{data: make([]CInt16, n), typ: t}
	case sample.CInt32:
		return &cintStorage[int32]{data: make([]CInt32, n), typ: t}
	case sample.CFloat32:
		return &complexStorage[complex64]{data: make([]complex64, n)}
	case sample.CFloat64:
		return &complexStorage[complex128]{data: make([]complex128, n)}
	default:
		return nil
	}
}

// wrapStorage adopts data without copying and reports its pixel type.
func wrapStorage(data any) (storage, sample.DataType) {
	switch d := data.(type) {
	case []uint8:
		return &intStorage[uint8]{data: d, typ: sample.Byte}, sample.Byte
	case []int8:
		return &intStorage[int8]{data: d, typ: sample.Int8}, sample.Int8
	case []uint16:
		return &intStorage[uint16]{data: d, typ: sample.UInt16}, sample.UInt16
	case []int16:
		return &intStorage[int16]{data: d, typ: sample.Int16}, sample.Int16
	case []uint32:
		return &intStorage[uint32]{data: d, typ: sample.UInt32}, sample.UInt32
	case []int32:
		return &intStorage[int32]{data: d, typ: sample.Int32}, sample.Int32
	case []uint64:
		return &intStorage[uint64]{data: d, typ: sample.UInt64}, sample.UInt64
	case []int64:
		return &intStorage[int64]{data: d, typ: sample.Int64}, sample.Int64
	case []float32:
		return &floatStorage[float32]{data: d}, sample.Float32
	case []float64:
		return &floatStorage[float64]{data: d}, sample.Float64
	case []CInt16:
		return &cintStorage[int16]{data: d, typ: sample.CInt16}, sample.CInt16
	case []CInt32:
		return &cintStorage[int32]{data: d, typ: sample.CInt32}, sample.CInt32
	case []complex64:
		return &complexStorage[complex64]{data: d}, sample.CFloat32
	case []complex128:
		return &complexStorage[complex128]{data: d}, sample.CFloat64
	default:
		return nil, sample.Unknown
	}
}

// gatherSlice returns src[idx[i]] for each i; negative indices give the
// zero value.
func gatherSlice[T any](src []T, idx []int) []T {
	dst := make([]T, len(idx))
	for i, j := range idx {
		if j >= 0 {
			dst[i] = src[j]
		}
	}
	return dst
}

// intStorage holds real integer pixels.
type intStorage[T constraints.Integer] struct {
	data []T
	typ  sample.DataType
}

func (s *intStorage[T]) len() int { return len(s.data) }
func (s *intStorage[T]) raw() any { return s.data }

func (s *intStorage[T]) at(i int) sample.Sample {
	v := s.data[i]
	if ^T(0) < 0 {
		return sample.IntSample(int64(v))
	}
	return sample.UintSample(uint64(v))
}

// set saturates in integer arithmetic so that 64-bit values survive.
func (s *intStorage[T]) set(i int, v sample.Sample) {
	lo, hi := s.typ.IntLimits()
	if s.typ.IsSigned() {
		x := v.Int()
		switch {
		case x < lo:
			x = lo
		case x > 0 && uint64(x) > hi:
			x = int64(hi)
		}
		s.data[i] = T(x)
		return
	}
	x := v.Uint()
	if x > hi {
		x = hi
	}
	s.data[i] = T(x)
}

func (s *intStorage[T]) reals(dst []float64) {
	for i, v := range s.data {
		dst[i] = float64(v)
	}
}

func (s *intStorage[T]) complexes(dst []complex128) {
	for i, v := range s.data {
		dst[i] = complex(float64(v), 0)
	}
}

func (s *intStorage[T]) setReals(src []float64) {
	for i, v := range src {
		s.set(i, sample.Float64Sample(v))
	}
}

func (s *intStorage[T]) setComplexes(src []complex128) {
	for i, v := range src {
		s.set(i, sample.Float64Sample(real(v)))
	}
}

func (s *intStorage[T]) gather(idx []int) storage {
	return &intStorage[T]{data: gatherSlice(s.data, idx), typ: s.typ}
}

// floatStorage holds float32 or float64 pixels.
type floatStorage[T constraints.Float] struct {
	data []T
}

func (s *floatStorage[T]) len() int { return len(s.data) }
func (s *floatStorage[T]) raw() any { return s.data }

func (s *floatStorage[T]) at(i int) sample.Sample {
	switch v := any(s.data[i]).(type) {
	case float32:
		return sample.Float32Sample(v)
	default:
		return sample.Float64Sample(float64(s.data[i]))
	}
}

func (s *floatStorage[T]) set(i int, v sample.Sample) {
	s.data[i] = T(v.Real())
}

func (s *floatStorage[T]) reals(dst []float64) {
	for i, v := range s.data {
		dst[i] = float64(v)
	}
}

func (s *floatStorage[T]) complexes(dst []complex128) {
	for i, v := range s.data {
		dst[i] = complex(float64(v), 0)
	}
}

func (s *floatStorage[T]) setReals(src []float64) {
	for i, v := range src {
		s.data[i] = T(v)
	}
}

func (s *floatStorage[T]) setComplexes(src []complex128) {
	for i, v := range src {
		s.data[i] = T(real(v))
	}
}

func (s *floatStorage[T]) gather(idx []int) storage {
	return &floatStorage[T]{data: gatherSlice(s.data, idx)}
}

// complexStorage holds complex64 or complex128 pixels.
type complexStorage[T complex64 | complex128] struct {
	data []T
}

func (s *complexStorage[T]) len() int { return len(s.data) }
func (s *complexStorage[T]) raw() any { return s.data }

func (s *complexStorage[T]) at(i int) sample.Sample {
	switch v := any(s.data[i]).(type) {
	case complex64:
		return sample.Complex64Sample(v)
	default:
		return sample.Complex128Sample(complex128(s.data[i]))
	}
}

func (s *complexStorage[T]) set(i int, v sample.Sample) {
	s.data[i] = T(v.Complex())
}

func (s *complexStorage[T]) reals(dst []float64) {
	for i, v := range s.data {
		dst[i] = real(complex128(v))
	}
}

func (s *complexStorage[T]) complexes(dst []complex128) {
	for i, v := range s.data {
		dst[i] = complex128(v)
	}
}

func (s *complexStorage[T]) setReals(src []float64) {
	for i, v := range src {
		s.data[i] = T(complex(v, 0))
	}
}

func (s *complexStorage[T]) setComplexes(src []complex128) {
	for i, v := range src {
		s.data[i] = T(v)
	}
}

func (s *complexStorage[T]) gather(idx []int) storage {
	return &complexStorage[T]{data: gatherSlice(s.data, idx)}
}

// cintStorage holds complex pixels with integer components.
type cintStorage[T int16 | int32] struct {
	data []ComplexInt[T]
	typ  sample.DataType
}

func (s *cintStorage[T]) len() int { return len(s.data) }
func (s *cintStorage[T]) raw() any { return s.data }

func (s *cintStorage[T]) at(i int) sample.Sample {
	v := complex(float64(s.data[i].Re), float64(s.data[i].Im))
	if s.typ == sample.CInt16 {
		return sample.Complex64Sample(complex64(v))
	}
	return sample.Complex128Sample(v)
}

func (s *cintStorage[T]) set(i int, v sample.Sample) {
	s.data[i] = ComplexInt[T]{
		Re: T(sample.Saturate(v.Real(), s.typ)),
		Im: T(sample.Saturate(v.Imag(), s.typ)),
	}
}

func (s *cintStorage[T]) reals(dst []float64) {
	for i, v := range s.data {
		dst[i] = float64(v.Re)
	}
}

func (s *cintStorage[T]) complexes(dst []complex128) {
	for i, v := range s.data {
		dst[i] = complex(float64(v.Re), float64(v.Im))
	}
}

func (s *cintStorage[T]) setReals(src []float64) {
	for i, v := range src {
		s.data[i] = ComplexInt[T]{Re: T(sample.Saturate(v, s.typ))}
	}
}

func (s *cintStorage[T]) setComplexes(src []complex128) {
	for i, v := range src {
		s.data[i] = ComplexInt[T]{
			Re: T(sample.Saturate(real(v), s.typ)),
			Im: T(sample.Saturate(imag(v), s.typ)),
		}
	}
}

func (s *cintStorage[T]) gather(idx []int) storage {
	return &cintStorage[T]{data: gatherSlice(s.data, idx), typ: s.typ}
}
