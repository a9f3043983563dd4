package pixfun

import (
	"slices"
	"sync"
)

// Registry maps function names to descriptors.
//
// A registry is filled by a single goroutine and then shared read-only.
// Resolve needs no locking once registration is finished.
type Registry struct {
	funcs  map[string]*Descriptor
	sealed bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]*Descriptor)}
}

// Register adds d.  It fails if the name is taken, the descriptor is
// incomplete, or the registry has been sealed.
func (r *Registry) Register(d *Descriptor) error {
	if r.sealed {
		return newError(d.Name, "register", ErrReadOnly, "")
	}
	if err := d.validate(); err != nil {
		return err
	}
	if _, ok := r.funcs[d.Name]; ok {
		return newError(d.Name, "register", ErrDuplicateFunction, "")
	}
	r.funcs[d.Name] = d
	return nil
}

// MustRegister is like Register but panics on error.  It is meant for
// catalog construction, where a failure is a programming error.
func (r *Registry) MustRegister(d *Descriptor) {
	if err := r.Register(d); err != nil {
		panic(err)
	}
}

// Seal makes the registry read-only.
func (r *Registry) Seal() { r.sealed = true }

// Resolve returns the descriptor registered under name.
func (r *Registry) Resolve(name string) (*Descriptor, error) {
	d, ok := r.funcs[name]
	if !ok {
		return nil, newError(name, "resolve", ErrUnknownFunction, "")
	}
	return d, nil
}

// ValidateArgs checks provided against the arguments declared by d.
func (r *Registry) ValidateArgs(d *Descriptor, provided map[string]float64) (Args, error) {
	return d.ValidateArgs(provided)
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Descriptors returns all descriptors sorted by name.
func (r *Registry) Descriptors() []*Descriptor {
	names := r.Names()
	res := make([]*Descriptor, len(names))
	for i, name := range names {
		res[i] = r.funcs[name]
	}
	return res
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// Default returns the sealed registry holding the builtin catalog.  It is
// built on first use.
func Default() *Registry {
	defaultRegistryOnce.Do(func() {
		r := NewRegistry()
		registerBuiltins(r)
		r.Seal()
		defaultRegistry = r
	})
	return defaultRegistry
}
