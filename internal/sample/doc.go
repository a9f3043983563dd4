// Package sample implements the numeric value model of the pixel-function
// engine.
//
// Raster bands store their pixels in one of a fixed set of pixel types
// ([DataType]): unsigned and signed integers of various widths, single and
// double precision floats, and complex values with integer or float
// components. For arithmetic the pixel types collapse into six tags
// ([Kind]), ordered from least to most general:
//
//	Uint < Int < Float32 < Float64 < Complex64 < Complex128
//
// A [Sample] is a tagged union holding one value of any kind.
//
// # Promotion
//
// Combining two values of different types first promotes both to a common
// type that represents either operand without loss:
//
//   - any complex operand makes the result complex, at the wider of the two
//     float precisions (integers count as float64 precision);
//   - two different integer types (signedness or width) promote to Float64;
//   - a float mixed with any other real type promotes to Float64.
//
// Promotion is total, commutative and deterministic. [Promote] works on
// pixel types, [PromoteKind] on tags.
package sample
