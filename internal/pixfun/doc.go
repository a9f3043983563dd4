// Package pixfun evaluates pixel functions: named elementwise computations
// that derive a band from the co-registered pixels of source bands.
//
// A Registry maps names to Descriptors.  Default returns the builtin catalog
// (real, imag, complex, mod, phase, conj, sum, diff, mul, cmul, div, inv,
// intensity, sqrt, log10, dB, dB2amp, dB2pow, exp, pow, polar, min, max and
// norm_diff), built once and read-only afterwards.
//
// Kernels compute in float64, or complex128 when a complex-aware function
// receives a complex input.  When every input is a real integer type, real,
// conj, sum, diff, mul and cmul compute on 64-bit integer samples instead,
// falling back to float64 only on overflow.  The result is then stored at
// the requested pixel type: integer targets saturate and truncate toward
// zero, and a complex result is never silently stored in a real type.
// Without a requested type, functions whose result follows their inputs
// keep Float32 or CFloat32 when the inputs promote to it.
//
// Results of real, imag, complex, conj, sum, diff, mul, cmul, intensity,
// min and max are exact for integer inputs (intensity, min and max up to
// 2^53).  Real inv and div are a single
// IEEE division and mod and sqrt a single correctly rounded square root.
// The transcendental functions (phase, log10, dB, dB2amp, dB2pow, exp,
// pow, polar) and complex inv, complex div and norm_diff are only
// accurate to floating point tolerance.
//
// Evaluation is pure: a Bound function can be applied from many goroutines
// at once as long as callers do not modify the input buffers meanwhile.
package pixfun
