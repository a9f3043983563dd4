package pixfun

import (
	"math"
	"math/cmplx"

	"github.com/ironsheep/pixfun-mcp/internal/sample"
)

// Products and sums below are wrapped in explicit float64 conversions so
// the compiler cannot fuse them into multiply-add instructions; the
// integer-input results must match plain IEEE evaluation bit for bit.
// Functions that are exact on integers also carry an Integer kernel, which
// keeps 64-bit values out of float64.

func registerBuiltins(r *Registry) {
	for _, d := range builtins() {
		r.MustRegister(d)
	}
}

func builtins() []*Descriptor {
	return []*Descriptor{
		{
			Name: "real", Doc: "real part of the input",
			MinInputs: 1, MaxInputs: 1,
			Input: ComplexInput, Output: RealOutput,
			Real:          copyReal,
			ComplexToReal: mapReduce(realPart),
			Integer:       copySamples,
		},
		{
			Name: "imag", Doc: "imaginary part of the input, 0 for real input",
			MinInputs: 1, MaxInputs: 1,
			Input: ComplexInput, Output: RealOutput,
			Real:          zeroReal,
			ComplexToReal: mapReduce(imagPart),
		},
		{
			Name: "complex", Doc: "complex value built from a real and an imaginary input",
			MinInputs: 2, MaxInputs: 2,
			Input: RealInput, Output: ComplexOutput,
			RealToComplex: makeComplex,
		},
		{
			Name: "mod", Doc: "modulus sqrt(re^2+im^2)",
			MinInputs: 1, MaxInputs: 1,
			Input: ComplexInput, Output: RealOutput,
			Real:          mapReal(math.Abs),
			ComplexToReal: mapReduce(modulus),
		},
		{
			Name: "phase", Doc: "phase atan2(im, re)",
			MinInputs: 1, MaxInputs: 1,
			Input: ComplexInput, Output: RealOutput,
			Real:          mapReal(func(x float64) float64 { return math.Atan2(0, x) }),
			ComplexToReal: mapReduce(func(z complex128) float64 { return math.Atan2(imag(z), real(z)) }),
		},
		{
			Name: "conj", Doc: "complex conjugate, identity for real input",
			MinInputs: 1, MaxInputs: 1,
			Input: ComplexInput, Output: SameAsInput,
			Real:    copyReal,
			Complex: mapComplex(cmplx.Conj),
			Integer: copySamples,
		},
		{
			Name: "sum", Doc: "k plus the sum of all inputs",
			MinInputs: 1, MaxInputs: Unbounded,
			Args: []ArgSpec{
				{Name: "k", Doc: "constant added to the sum", Default: 0},
			},
			Input: ComplexInput, Output: SameAsInput,
			Real:    sumReal,
			Complex: sumComplex,
			Integer: sumSamples,
		},
		{
			Name: "diff", Doc: "difference x1 - x2",
			MinInputs: 2, MaxInputs: 2,
			Input: ComplexInput, Output: SameAsInput,
			Real: func(dst []float64, in [][]float64, _ Args) {
				for i := range dst {
					dst[i] = in[0][i] - in[1][i]
				}
			},
			Complex: func(dst []complex128, in [][]complex128, _ Args) {
				for i := range dst {
					dst[i] = in[0][i] - in[1][i]
				}
			},
			Integer: func(dst []sample.Sample, in [][]sample.Sample, _ Args) {
				for i := range dst {
					dst[i] = in[0][i].Sub(in[1][i])
				}
			},
		},
		{
			Name: "mul", Doc: "k times the product of all inputs",
			MinInputs: 1, MaxInputs: Unbounded,
			Args: []ArgSpec{
				{Name: "k", Doc: "constant factor", Default: 1},
			},
			Input: ComplexInput, Output: SameAsInput,
			Real:    mulReal,
			Complex: mulComplex,
			Integer: mulSamples,
		},
		{
			Name: "cmul", Doc: "x1 times the conjugate of x2",
			MinInputs: 2, MaxInputs: 2,
			Input: ComplexInput, Output: SameAsInput,
			Real: func(dst []float64, in [][]float64, _ Args) {
				for i := range dst {
					dst[i] = in[0][i] * in[1][i]
				}
			},
			Complex: func(dst []complex128, in [][]complex128, _ Args) {
				for i := range dst {
					dst[i] = mulRounded(in[0][i], cmplx.Conj(in[1][i]))
				}
			},
			Integer: func(dst []sample.Sample, in [][]sample.Sample, _ Args) {
				for i := range dst {
					dst[i] = in[0][i].Mul(in[1][i])
				}
			},
		},
		{
			Name: "div", Doc: "quotient x1 / x2",
			MinInputs: 2, MaxInputs: 2,
			Input: ComplexInput, Output: SameAsInput,
			Real: func(dst []float64, in [][]float64, _ Args) {
				for i := range dst {
					dst[i] = in[0][i] / in[1][i]
				}
			},
			Complex: func(dst []complex128, in [][]complex128, _ Args) {
				for i := range dst {
					dst[i] = divRounded(in[0][i], in[1][i])
				}
			},
		},
		{
			Name: "inv", Doc: "k / x, complex reciprocal for complex input",
			MinInputs: 1, MaxInputs: 1,
			Args: []ArgSpec{
				{Name: "k", Doc: "numerator", Default: 1, Domain: NonZero},
			},
			Input: ComplexInput, Output: SameAsInput,
			Real: func(dst []float64, in [][]float64, a Args) {
				k := a.Get("k")
				for i, x := range in[0] {
					dst[i] = k / x
				}
			},
			Complex: func(dst []complex128, in [][]complex128, a Args) {
				k := a.Get("k")
				for i, z := range in[0] {
					re, im := real(z), imag(z)
					n := float64(re*re) + float64(im*im)
					if n == 0 {
						dst[i] = complex(k, 0) / z
						continue
					}
					dst[i] = complex(float64(k*re)/n, -float64(k*im)/n)
				}
			},
		},
		{
			Name: "intensity", Doc: "re^2 + im^2",
			MinInputs: 1, MaxInputs: 1,
			Input: ComplexInput, Output: RealOutput,
			Real:          mapReal(func(x float64) float64 { return x * x }),
			ComplexToReal: mapReduce(intensity),
		},
		{
			Name: "sqrt", Doc: "square root of the real part, NaN for negative input",
			MinInputs: 1, MaxInputs: 1,
			Input: RealInput, Output: RealOutput,
			Real: mapReal(math.Sqrt),
		},
		{
			Name: "log10", Doc: "base 10 logarithm of the real part",
			MinInputs: 1, MaxInputs: 1,
			Input: RealInput, Output: RealOutput,
			Real: mapReal(math.Log10),
		},
		{
			Name: "dB", Doc: "20*log10(|x|), or 10*log10(|x|) for power values",
			MinInputs: 1, MaxInputs: 1,
			Args: []ArgSpec{
				{Name: "power", Doc: "1 if the input is a power quantity", Default: 0, Allowed: []float64{0, 1}},
			},
			Input: ComplexInput, Output: RealOutput,
			Real: func(dst []float64, in [][]float64, a Args) {
				fact := dBFactor(a)
				for i, x := range in[0] {
					dst[i] = fact * math.Log10(math.Abs(x))
				}
			},
			ComplexToReal: func(dst []float64, in [][]complex128, a Args) {
				fact := dBFactor(a)
				for i, z := range in[0] {
					dst[i] = fact * math.Log10(modulus(z))
				}
			},
		},
		{
			Name: "dB2amp", Doc: "amplitude 10^(x/20) of a dB value",
			MinInputs: 1, MaxInputs: 1,
			Input: RealInput, Output: RealOutput,
			Real: mapReal(func(x float64) float64 { return math.Pow(10, x/20) }),
		},
		{
			Name: "dB2pow", Doc: "power 10^(x/10) of a dB value",
			MinInputs: 1, MaxInputs: 1,
			Input: RealInput, Output: RealOutput,
			Real: mapReal(func(x float64) float64 { return math.Pow(10, x/10) }),
		},
		{
			Name: "exp", Doc: "base^(fact*x)",
			MinInputs: 1, MaxInputs: 1,
			Args: []ArgSpec{
				{Name: "base", Doc: "base of the exponential", Default: math.E, Domain: Positive},
				{Name: "fact", Doc: "factor applied to the exponent", Default: 1},
			},
			Input: RealInput, Output: RealOutput,
			Real: func(dst []float64, in [][]float64, a Args) {
				base, fact := a.Get("base"), a.Get("fact")
				for i, x := range in[0] {
					if base == math.E {
						dst[i] = math.Exp(float64(fact * x))
					} else {
						dst[i] = math.Pow(base, float64(fact*x))
					}
				}
			},
		},
		{
			Name: "pow", Doc: "x raised to a constant power",
			MinInputs: 1, MaxInputs: 1,
			Args: []ArgSpec{
				{Name: "power", Doc: "exponent", Required: true},
			},
			Input: RealInput, Output: RealOutput,
			Real: func(dst []float64, in [][]float64, a Args) {
				p := a.Get("power")
				for i, x := range in[0] {
					dst[i] = math.Pow(x, p)
				}
			},
		},
		{
			Name: "polar", Doc: "complex value A*e^(i*phi) from amplitude and phase inputs",
			MinInputs: 2, MaxInputs: 2,
			Args: []ArgSpec{
				{Name: "amplitude_type", Doc: "0 amplitude, 1 intensity, 2 dB", Default: 0, Allowed: []float64{0, 1, 2}},
			},
			Input: RealInput, Output: ComplexOutput,
			RealToComplex: polar,
		},
		{
			Name: "min", Doc: "smallest input value, NaN inputs skipped",
			MinInputs: 1, MaxInputs: Unbounded,
			Input: RealInput, Output: RealOutput,
			Real: extremum(func(a, b float64) bool { return a < b }),
		},
		{
			Name: "max", Doc: "largest input value, NaN inputs skipped",
			MinInputs: 1, MaxInputs: Unbounded,
			Input: RealInput, Output: RealOutput,
			Real: extremum(func(a, b float64) bool { return a > b }),
		},
		{
			Name: "norm_diff", Doc: "normalized difference (x1-x2)/(x1+x2)",
			MinInputs: 2, MaxInputs: 2,
			Input: RealInput, Output: RealOutput,
			Real: func(dst []float64, in [][]float64, _ Args) {
				for i := range dst {
					a, b := in[0][i], in[1][i]
					dst[i] = (a - b) / (a + b)
				}
			},
		},
	}
}

func mapReal(f func(float64) float64) RealKernel {
	return func(dst []float64, in [][]float64, _ Args) {
		for i, x := range in[0] {
			dst[i] = f(x)
		}
	}
}

func mapReduce(f func(complex128) float64) ReduceKernel {
	return func(dst []float64, in [][]complex128, _ Args) {
		for i, z := range in[0] {
			dst[i] = f(z)
		}
	}
}

func mapComplex(f func(complex128) complex128) ComplexKernel {
	return func(dst []complex128, in [][]complex128, _ Args) {
		for i, z := range in[0] {
			dst[i] = f(z)
		}
	}
}

func copyReal(dst []float64, in [][]float64, _ Args) { copy(dst, in[0]) }

func zeroReal(dst []float64, _ [][]float64, _ Args) { clear(dst) }

func realPart(z complex128) float64 { return real(z) }

func imagPart(z complex128) float64 { return imag(z) }

func modulus(z complex128) float64 {
	return math.Sqrt(intensity(z))
}

func intensity(z complex128) float64 {
	re, im := real(z), imag(z)
	return float64(re*re) + float64(im*im)
}

// mulRounded multiplies a and b with every partial product rounded.
func mulRounded(a, b complex128) complex128 {
	ar, ai, br, bi := real(a), imag(a), real(b), imag(b)
	return complex(float64(ar*br)-float64(ai*bi), float64(ar*bi)+float64(ai*br))
}

// divRounded computes a/b as (a*conj(b))/|b|^2.  A zero divisor gives
// the IEEE result of a/b.
func divRounded(a, b complex128) complex128 {
	ar, ai, br, bi := real(a), imag(a), real(b), imag(b)
	n := float64(br*br) + float64(bi*bi)
	if n == 0 {
		return a / b
	}
	return complex((float64(ar*br)+float64(ai*bi))/n, (float64(ai*br)-float64(ar*bi))/n)
}

func copySamples(dst []sample.Sample, in [][]sample.Sample, _ Args) { copy(dst, in[0]) }

// wholeConst returns the whole number k as a sample of the same signedness
// as like where possible.
func wholeConst(k float64, like sample.Sample) sample.Sample {
	if k >= 0 && like.Kind() == sample.Uint {
		return sample.UintSample(uint64(k))
	}
	return sample.IntSample(int64(k))
}

func sumSamples(dst []sample.Sample, in [][]sample.Sample, a Args) {
	k := a.Get("k")
	for i := range dst {
		s := in[0][i]
		for _, p := range in[1:] {
			s = s.Add(p[i])
		}
		switch {
		case k < 0 && s.Kind() == sample.Uint:
			s = s.Sub(sample.UintSample(uint64(-k)))
		case k != 0:
			s = s.Add(wholeConst(k, s))
		}
		dst[i] = s
	}
}

func mulSamples(dst []sample.Sample, in [][]sample.Sample, a Args) {
	k := a.Get("k")
	for i := range dst {
		prod := in[0][i]
		for _, p := range in[1:] {
			prod = prod.Mul(p[i])
		}
		if k != 1 {
			prod = prod.Mul(wholeConst(k, prod))
		}
		dst[i] = prod
	}
}

func makeComplex(dst []complex128, in [][]float64, _ Args) {
	for i := range dst {
		dst[i] = complex(in[0][i], in[1][i])
	}
}

func sumReal(dst []float64, in [][]float64, a Args) {
	k := a.Get("k")
	for i := range dst {
		s := k
		for _, p := range in {
			s += p[i]
		}
		dst[i] = s
	}
}

func sumComplex(dst []complex128, in [][]complex128, a Args) {
	k := complex(a.Get("k"), 0)
	for i := range dst {
		s := k
		for _, p := range in {
			s += p[i]
		}
		dst[i] = s
	}
}

func mulReal(dst []float64, in [][]float64, a Args) {
	k := a.Get("k")
	for i := range dst {
		prod := k
		for _, p := range in {
			prod = float64(prod * p[i])
		}
		dst[i] = prod
	}
}

func mulComplex(dst []complex128, in [][]complex128, a Args) {
	k := a.Get("k")
	for i := range dst {
		// The first factor is scaled by k rather than multiplied by
		// complex(k, 0) so that k=1 leaves signed zeros and infinities of
		// the inputs alone.
		prod := in[0][i]
		if k != 1 {
			prod = complex(float64(k*real(prod)), float64(k*imag(prod)))
		}
		for _, p := range in[1:] {
			prod = mulRounded(prod, p[i])
		}
		dst[i] = prod
	}
}

func dBFactor(a Args) float64 {
	if a.Get("power") == 1 {
		return 10
	}
	return 20
}

func polar(dst []complex128, in [][]float64, a Args) {
	mode := a.Get("amplitude_type")
	for i := range dst {
		amp, phi := in[0][i], in[1][i]
		switch mode {
		case 1:
			amp = math.Sqrt(amp)
		case 2:
			amp = math.Pow(10, amp/20)
		}
		s, c := math.Sincos(phi)
		dst[i] = complex(float64(amp*c), float64(amp*s))
	}
}

func extremum(better func(a, b float64) bool) RealKernel {
	return func(dst []float64, in [][]float64, _ Args) {
		for i := range dst {
			res := math.NaN()
			for _, p := range in {
				v := p[i]
				if math.IsNaN(v) {
					continue
				}
				if math.IsNaN(res) || better(v, res) {
					res = v
				}
			}
			dst[i] = res
		}
	}
}
