package pixfun

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/ironsheep/pixfun-mcp/internal/sample"
)

// Unbounded is the MaxInputs value of variadic functions.
const Unbounded = -1

// InputKind selects how input pixels are read.
type InputKind int

const (
	// RealInput functions read the real part of every input.
	RealInput InputKind = iota
	// ComplexInput functions read full complex values when any input is
	// complex, and real values otherwise.
	ComplexInput
)

func (k InputKind) String() string {
	if k == ComplexInput {
		return "complex"
	}
	return "real"
}

// OutputKind is the natural kind of a function's result.
type OutputKind int

const (
	// SameAsInput results are complex exactly when the complex path ran.
	SameAsInput OutputKind = iota
	// RealOutput results are always real.
	RealOutput
	// ComplexOutput results are always complex.
	ComplexOutput
)

func (k OutputKind) String() string {
	switch k {
	case RealOutput:
		return "real"
	case ComplexOutput:
		return "complex"
	default:
		return "same as input"
	}
}

// Domain restricts the values an argument accepts.
type Domain int

const (
	AnyValue Domain = iota
	NonZero
	Positive
)

// ArgSpec declares one named scalar argument of a function.
type ArgSpec struct {
	Name     string
	Doc      string
	Default  float64
	Required bool
	Domain   Domain
	// Allowed, when non-empty, lists the only accepted values.
	Allowed []float64
}

func (a ArgSpec) check(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%s=%g is not finite", a.Name, v)
	}
	if len(a.Allowed) > 0 && !slices.Contains(a.Allowed, v) {
		return fmt.Errorf("%s=%g not in %v", a.Name, v, a.Allowed)
	}
	switch a.Domain {
	case NonZero:
		if v == 0 {
			return fmt.Errorf("%s must be non-zero", a.Name)
		}
	case Positive:
		if v <= 0 {
			return fmt.Errorf("%s=%g must be positive", a.Name, v)
		}
	}
	return nil
}

// Args is a validated argument set with defaults applied.
type Args map[string]float64

// Get returns the value of the named argument, or 0 if absent.
func (a Args) Get(name string) float64 { return a[name] }

// Kernels over float64 and complex128 planes.  in[i] holds the pixels of
// input i; every plane has len(dst) elements.
type (
	RealKernel    func(dst []float64, in [][]float64, a Args)
	ComplexKernel func(dst []complex128, in [][]complex128, a Args)
	ReduceKernel  func(dst []float64, in [][]complex128, a Args)
	BuildKernel   func(dst []complex128, in [][]float64, a Args)
	// IntegerKernel computes on tagged samples so that 64-bit integer
	// inputs stay exact.
	IntegerKernel func(dst []sample.Sample, in [][]sample.Sample, a Args)
)

// Descriptor describes a registered pixel function.  A descriptor must not
// be modified after it has been registered.
type Descriptor struct {
	Name      string
	Doc       string
	MinInputs int
	MaxInputs int // Unbounded for variadic functions
	Args      []ArgSpec
	Input     InputKind
	Output    OutputKind

	// Real runs when all inputs are read as real values and the result is
	// real.
	Real RealKernel
	// Complex runs on the complex path of SameAsInput functions.
	Complex ComplexKernel
	// ComplexToReal runs on the complex path of RealOutput functions.
	ComplexToReal ReduceKernel
	// RealToComplex computes ComplexOutput functions of real inputs.
	RealToComplex BuildKernel
	// Integer, if set, replaces Real when every input is a real integer
	// type and every argument is a whole number.
	Integer IntegerKernel
}

// AcceptsInputs reports whether n inputs are within the arity bounds.
func (d *Descriptor) AcceptsInputs(n int) bool {
	return n >= d.MinInputs && (d.MaxInputs == Unbounded || n <= d.MaxInputs)
}

// Arity formats the input bounds, e.g. "2" or ">=1".
func (d *Descriptor) Arity() string {
	switch {
	case d.MaxInputs == Unbounded:
		return fmt.Sprintf(">=%d", d.MinInputs)
	case d.MinInputs == d.MaxInputs:
		return fmt.Sprint(d.MinInputs)
	default:
		return fmt.Sprintf("%d-%d", d.MinInputs, d.MaxInputs)
	}
}

// Arg returns the declaration of the named argument.
func (d *Descriptor) Arg(name string) (ArgSpec, bool) {
	for _, a := range d.Args {
		if a.Name == name {
			return a, true
		}
	}
	return ArgSpec{}, false
}

// ValidateArgs checks provided against the declared arguments and returns
// the complete argument set with defaults filled in.
func (d *Descriptor) ValidateArgs(provided map[string]float64) (Args, error) {
	var unknown []string
	for name := range provided {
		if _, ok := d.Arg(name); !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		slices.Sort(unknown)
		return nil, newError(d.Name, "args", ErrInvalidArgument,
			"unknown argument "+strings.Join(unknown, ", "))
	}

	res := make(Args, len(d.Args))
	for _, spec := range d.Args {
		v, ok := provided[spec.Name]
		if !ok {
			if spec.Required {
				return nil, newError(d.Name, "args", ErrInvalidArgument,
					"missing required argument "+spec.Name)
			}
			v = spec.Default
		}
		if err := spec.check(v); err != nil {
			return nil, newError(d.Name, "args", ErrInvalidArgument, err.Error())
		}
		res[spec.Name] = v
	}
	return res, nil
}

// validate checks that d is complete enough to be evaluated.
func (d *Descriptor) validate() error {
	bad := func(msg string) error {
		return newError(d.Name, "register", ErrBadDescriptor, msg)
	}
	switch {
	case d.Name == "":
		return bad("empty name")
	case d.MinInputs < 1:
		return bad("MinInputs must be at least 1")
	case d.MaxInputs != Unbounded && d.MaxInputs < d.MinInputs:
		return bad("MaxInputs below MinInputs")
	}

	if d.Output == ComplexOutput {
		if d.Integer != nil {
			return bad("complex output functions have no integer kernel")
		}
		if d.RealToComplex == nil {
			return bad("complex output needs RealToComplex")
		}
		if d.Input == ComplexInput {
			return bad("complex output functions read real inputs")
		}
		return nil
	}
	if d.Real == nil {
		return bad("missing Real kernel")
	}
	if d.Input == ComplexInput {
		if d.Output == RealOutput && d.ComplexToReal == nil {
			return bad("missing ComplexToReal kernel")
		}
		if d.Output == SameAsInput && d.Complex == nil {
			return bad("missing Complex kernel")
		}
	}
	return nil
}
