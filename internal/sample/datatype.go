package sample

import (
	"fmt"
	"math"
	"strings"
)

// DataType identifies the storage type of a raster pixel.
type DataType int

// Pixel types. The zero value Unknown means "not specified".
const (
	Unknown DataType = iota
	Byte
	Int8
	UInt16
	Int16
	UInt32
	Int32
	UInt64
	Int64
	Float32
	Float64
	CInt16
	CInt32
	CFloat32
	CFloat64
)

var dataTypeNames = [...]string{
	Unknown:  "Unknown",
	Byte:     "Byte",
	Int8:     "Int8",
	UInt16:   "UInt16",
	Int16:    "Int16",
	UInt32:   "UInt32",
	Int32:    "Int32",
	UInt64:   "UInt64",
	Int64:    "Int64",
	Float32:  "Float32",
	Float64:  "Float64",
	CInt16:   "CInt16",
	CInt32:   "CInt32",
	CFloat32: "CFloat32",
	CFloat64: "CFloat64",
}

// DataTypes lists all known pixel types in declaration order.
func DataTypes() []DataType {
	res := make([]DataType, 0, len(dataTypeNames)-1)
	for t := Byte; t <= CFloat64; t++ {
		res = append(res, t)
	}
	return res
}

func (t DataType) String() string {
	if t < 0 || int(t) >= len(dataTypeNames) {
		return fmt.Sprintf("DataType(%d)", int(t))
	}
	return dataTypeNames[t]
}

// ParseDataType converts a type name like "Float32" or "cint16" to a
// DataType. Names are matched case-insensitively; "UInt8" is accepted as an
// alias for Byte.
func ParseDataType(name string) (DataType, error) {
	if strings.EqualFold(name, "uint8") {
		return Byte, nil
	}
	for t := Byte; t <= CFloat64; t++ {
		if strings.EqualFold(name, dataTypeNames[t]) {
			return t, nil
		}
	}
	return Unknown, fmt.Errorf("unknown data type %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (t DataType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *DataType) UnmarshalText(text []byte) error {
	dt, err := ParseDataType(string(text))
	if err != nil {
		return err
	}
	*t = dt
	return nil
}

// Valid reports whether t is one of the known pixel types.
func (t DataType) Valid() bool {
	return t >= Byte && t <= CFloat64
}

// Size returns the number of bytes used to store one pixel.
func (t DataType) Size() int {
	switch t {
	case Byte, Int8:
		return 1
	case UInt16, Int16:
		return 2
	case UInt32, Int32, Float32, CInt16:
		return 4
	case UInt64, Int64, Float64, CInt32, CFloat32:
		return 8
	case CFloat64:
		return 16
	default:
		return 0
	}
}

// IsComplex reports whether pixels of this type have an imaginary part.
func (t DataType) IsComplex() bool {
	return t >= CInt16 && t <= CFloat64
}

// IsInteger reports whether the pixel components are integers.
func (t DataType) IsInteger() bool {
	return (t >= Byte && t <= Int64) || t == CInt16 || t == CInt32
}

// IsSigned reports whether the type can represent negative values.
func (t DataType) IsSigned() bool {
	switch t {
	case Int8, Int16, Int32, Int64, Float32, Float64, CInt16, CInt32, CFloat32, CFloat64:
		return true
	}
	return false
}

// Kind returns the arithmetic tag used for values of this pixel type.
func (t DataType) Kind() Kind {
	switch t {
	case Byte, UInt16, UInt32, UInt64:
		return Uint
	case Int8, Int16, Int32, Int64:
		return Int
	case Float32:
		return KindFloat32
	case Float64:
		return KindFloat64
	case CInt16, CFloat32:
		return KindComplex64
	case CInt32, CFloat64:
		return KindComplex128
	default:
		return Invalid
	}
}

// floatBits is the float precision a type contributes when mixed with a
// complex value.  Integers widen to float64.
func (t DataType) floatBits() int {
	switch t {
	case Float32, CFloat32, CInt16:
		return 32
	default:
		return 64
	}
}

// Range returns the smallest and largest value representable by one
// (real) component of the type.  For float types the infinities are
// returned.
func (t DataType) Range() (lo, hi float64) {
	switch t {
	case Byte:
		return 0, 255
	case Int8:
		return -128, 127
	case UInt16:
		return 0, 65535
	case Int16, CInt16:
		return -32768, 32767
	case UInt32:
		return 0, 4294967295
	case Int32, CInt32:
		return -2147483648, 2147483647
	case UInt64:
		return 0, 18446744073709551615
	case Int64:
		return -9223372036854775808, 9223372036854775807
	default:
		return negInf, posInf
	}
}

// IntLimits returns the range of one component of an integer type as
// exact integers.  Non-integer types return the int64 and uint64 limits.
func (t DataType) IntLimits() (lo int64, hi uint64) {
	switch t {
	case Byte:
		return 0, math.MaxUint8
	case Int8:
		return math.MinInt8, math.MaxInt8
	case UInt16:
		return 0, math.MaxUint16
	case Int16, CInt16:
		return math.MinInt16, math.MaxInt16
	case UInt32:
		return 0, math.MaxUint32
	case Int32, CInt32:
		return math.MinInt32, math.MaxInt32
	case Int64:
		return math.MinInt64, math.MaxInt64
	default:
		return math.MinInt64, math.MaxUint64
	}
}

// Promote returns the pixel type both a and b are widened to before they are
// combined.  Unknown operands are ignored.
func Promote(a, b DataType) DataType {
	switch {
	case a == b:
		return a
	case a == Unknown:
		return b
	case b == Unknown:
		return a
	case a.IsComplex() || b.IsComplex():
		if a.floatBits() == 32 && b.floatBits() == 32 {
			return CFloat32
		}
		return CFloat64
	default:
		return Float64
	}
}

// PromoteAll folds Promote over a list of types.
func PromoteAll(types ...DataType) DataType {
	res := Unknown
	for _, t := range types {
		res = Promote(res, t)
	}
	return res
}
