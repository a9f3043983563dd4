package pixfun

import (
	"fmt"
	"math"

	"github.com/ironsheep/pixfun-mcp/internal/raster"
	"github.com/ironsheep/pixfun-mcp/internal/sample"
)

// Request is one evaluation: a function applied to input buffers of
// identical geometry.
type Request struct {
	Function string
	Inputs   []*raster.Buffer
	Args     map[string]float64
	// OutputType is the pixel type of the result.  Unknown selects the
	// natural type (see Bound.NaturalType).
	OutputType sample.DataType
}

// Evaluator runs requests against a registry.
type Evaluator struct {
	reg *Registry
}

// NewEvaluator returns an evaluator over reg, or over Default() if reg is
// nil.
func NewEvaluator(reg *Registry) *Evaluator {
	if reg == nil {
		reg = Default()
	}
	return &Evaluator{reg: reg}
}

// Registry returns the registry used by e.
func (e *Evaluator) Registry() *Registry { return e.reg }

// Evaluate computes req into a new buffer.
func (e *Evaluator) Evaluate(req Request) (*raster.Buffer, error) {
	b, err := e.Compile(req.Function, req.Args)
	if err != nil {
		return nil, err
	}
	return b.Evaluate(req.Inputs, req.OutputType)
}

// EvaluateInto computes req into dst, whose type overrides req.OutputType.
// On error dst is left unchanged.
func (e *Evaluator) EvaluateInto(req Request, dst *raster.Buffer) error {
	b, err := e.Compile(req.Function, req.Args)
	if err != nil {
		return err
	}
	return b.EvaluateInto(req.Inputs, dst)
}

// Compile resolves name and validates args once.  The returned Bound can be
// applied to any number of input sets.
func (e *Evaluator) Compile(name string, args map[string]float64) (*Bound, error) {
	d, err := e.reg.Resolve(name)
	if err != nil {
		return nil, err
	}
	a, err := e.reg.ValidateArgs(d, args)
	if err != nil {
		return nil, err
	}
	return &Bound{desc: d, args: a}, nil
}

// Evaluate runs req with the default registry.
func Evaluate(req Request) (*raster.Buffer, error) {
	return NewEvaluator(nil).Evaluate(req)
}

// Compile binds a function of the default registry.
func Compile(name string, args map[string]float64) (*Bound, error) {
	return NewEvaluator(nil).Compile(name, args)
}

// Bound is a resolved function with validated arguments.  It is immutable
// and safe for concurrent use.
type Bound struct {
	desc *Descriptor
	args Args
}

// Descriptor returns the bound function's descriptor.
func (b *Bound) Descriptor() *Descriptor { return b.desc }

// Args returns a copy of the validated arguments.
func (b *Bound) Args() Args {
	res := make(Args, len(b.args))
	for k, v := range b.args {
		res[k] = v
	}
	return res
}

// complexPath reports whether inputs of the given types are read as
// complex values.
func (b *Bound) complexPath(types []sample.DataType) bool {
	if b.desc.Input != ComplexInput {
		return false
	}
	for _, t := range types {
		if t.IsComplex() {
			return true
		}
	}
	return false
}

// integerPath reports whether inputs of the given types are computed
// exactly on integer samples.
func (b *Bound) integerPath(types []sample.DataType) bool {
	if b.desc.Integer == nil {
		return false
	}
	for _, t := range types {
		if !t.IsInteger() || t.IsComplex() {
			return false
		}
	}
	for _, v := range b.args {
		if v != math.Trunc(v) || v < math.MinInt64 || v >= math.MaxInt64 {
			return false
		}
	}
	return true
}

// NaturalType returns the result type for inputs of the given types when no
// output type is requested.  SameAsInput functions keep single precision
// when all inputs promote to Float32 or CFloat32; integer inputs widen to
// Float64.  RealOutput and ComplexOutput functions give Float64 and
// CFloat64.
func (b *Bound) NaturalType(types ...sample.DataType) sample.DataType {
	switch b.desc.Output {
	case RealOutput:
		return sample.Float64
	case ComplexOutput:
		return sample.CFloat64
	}
	p := sample.PromoteAll(types...)
	if b.complexPath(types) {
		if p == sample.CFloat32 {
			return p
		}
		return sample.CFloat64
	}
	if p == sample.Float32 {
		return p
	}
	return sample.Float64
}

// OutputType resolves the requested output type for inputs of the given
// types, failing if it cannot hold a complex result.
func (b *Bound) OutputType(want sample.DataType, types ...sample.DataType) (sample.DataType, error) {
	natural := b.NaturalType(types...)
	if want == sample.Unknown {
		return natural, nil
	}
	if !want.Valid() {
		return sample.Unknown, newError(b.desc.Name, "convert", ErrUnsupportedConversion,
			fmt.Sprintf("invalid output type %d", int(want)))
	}
	if natural.IsComplex() && !want.IsComplex() {
		return sample.Unknown, newError(b.desc.Name, "convert", ErrUnsupportedConversion,
			fmt.Sprintf("complex result cannot be stored as %s", want))
	}
	return want, nil
}

func (b *Bound) check(inputs []*raster.Buffer) error {
	if !b.desc.AcceptsInputs(len(inputs)) {
		return newError(b.desc.Name, "arity", ErrArity,
			fmt.Sprintf("need %s inputs, have %d", b.desc.Arity(), len(inputs)))
	}
	for i, in := range inputs {
		if in == nil {
			return newError(b.desc.Name, "shape", ErrShapeMismatch, fmt.Sprintf("input %d is nil", i))
		}
		if !in.SameShape(inputs[0]) {
			return newError(b.desc.Name, "shape", ErrShapeMismatch,
				fmt.Sprintf("input %d is %dx%d, input 0 is %dx%d",
					i, in.Width(), in.Height(), inputs[0].Width(), inputs[0].Height()))
		}
	}
	return nil
}

func inputTypes(inputs []*raster.Buffer) []sample.DataType {
	types := make([]sample.DataType, len(inputs))
	for i, in := range inputs {
		types[i] = in.Type()
	}
	return types
}

// Evaluate applies b to inputs and returns a new buffer of type out.
func (b *Bound) Evaluate(inputs []*raster.Buffer, out sample.DataType) (*raster.Buffer, error) {
	if err := b.check(inputs); err != nil {
		return nil, err
	}
	t, err := b.OutputType(out, inputTypes(inputs)...)
	if err != nil {
		return nil, err
	}
	dst, err := raster.New(t, inputs[0].Width(), inputs[0].Height())
	if err != nil {
		return nil, err
	}
	if err := b.run(inputs, dst); err != nil {
		return nil, err
	}
	return dst, nil
}

// EvaluateInto applies b to inputs and stores the result in dst.
func (b *Bound) EvaluateInto(inputs []*raster.Buffer, dst *raster.Buffer) error {
	if err := b.check(inputs); err != nil {
		return err
	}
	if !dst.SameShape(inputs[0]) {
		return newError(b.desc.Name, "shape", ErrShapeMismatch,
			fmt.Sprintf("destination is %dx%d, inputs are %dx%d",
				dst.Width(), dst.Height(), inputs[0].Width(), inputs[0].Height()))
	}
	if _, err := b.OutputType(dst.Type(), inputTypes(inputs)...); err != nil {
		return err
	}
	return b.run(inputs, dst)
}

// run computes into dst.  All validation has been done; the kernel itself
// cannot fail.
func (b *Bound) run(inputs []*raster.Buffer, dst *raster.Buffer) error {
	d := b.desc
	n := dst.Len()
	types := inputTypes(inputs)

	if b.integerPath(types) {
		planes := make([][]sample.Sample, len(inputs))
		for i, in := range inputs {
			planes[i] = in.Samples()
		}
		res := make([]sample.Sample, n)
		d.Integer(res, planes, b.args)
		return dst.SetSamples(res)
	}

	if b.complexPath(types) {
		planes := make([][]complex128, len(inputs))
		for i, in := range inputs {
			planes[i] = in.Complex128s()
		}
		if d.Output == RealOutput {
			res := make([]float64, n)
			d.ComplexToReal(res, planes, b.args)
			return dst.SetFloat64s(res)
		}
		res := make([]complex128, n)
		d.Complex(res, planes, b.args)
		return dst.SetComplex128s(res)
	}

	planes := make([][]float64, len(inputs))
	for i, in := range inputs {
		planes[i] = in.Float64s()
	}
	if d.Output == ComplexOutput {
		res := make([]complex128, n)
		d.RealToComplex(res, planes, b.args)
		return dst.SetComplex128s(res)
	}
	res := make([]float64, n)
	d.Real(res, planes, b.args)
	return dst.SetFloat64s(res)
}
