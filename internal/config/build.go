package config

import (
	"fmt"

	"github.com/ironsheep/pixfun-mcp/internal/band"
	"github.com/ironsheep/pixfun-mcp/internal/pixfun"
	"github.com/ironsheep/pixfun-mcp/internal/raster"
)

// Opener turns an image file channel into a band source.
type Opener interface {
	OpenSource(path, channel string) (band.Source, error)
}

// Build compiles the named band together with the bands it references.
// opener may be nil if no source refers to an image file; ev may be nil to
// use the builtin catalog.
func (d *Document) Build(name string, opener Opener, ev *pixfun.Evaluator) (*band.DerivedBand, error) {
	b := &builder{
		doc:      d,
		opener:   opener,
		ev:       ev,
		built:    make(map[string]*band.DerivedBand),
		visiting: make(map[string]bool),
	}
	return b.build(name)
}

type builder struct {
	doc      *Document
	opener   Opener
	ev       *pixfun.Evaluator
	built    map[string]*band.DerivedBand
	visiting map[string]bool
}

func (b *builder) build(name string) (*band.DerivedBand, error) {
	if db, ok := b.built[name]; ok {
		return db, nil
	}
	if b.visiting[name] {
		return nil, fmt.Errorf("%w: band %q is part of a reference cycle", ErrInvalidConfig, name)
	}
	b.visiting[name] = true
	defer delete(b.visiting, name)

	spec, err := b.doc.Band(name)
	if err != nil {
		return nil, err
	}

	def := band.Definition{
		Name:     spec.Name,
		Width:    spec.Width,
		Height:   spec.Height,
		DataType: spec.DataType,
		Function: spec.Function,
		Args:     spec.Args,
	}
	for i := range spec.Sources {
		ref, err := b.source(&spec.Sources[i])
		if err != nil {
			return nil, fmt.Errorf("band %q source %d: %w", name, i, err)
		}
		def.Sources = append(def.Sources, ref)
	}
	if def.Width == 0 || def.Height == 0 {
		first := def.Sources[0]
		w, h := first.Source.Size()
		if !first.DstRect.Empty() {
			w, h = first.DstRect.Max.X, first.DstRect.Max.Y
		}
		if def.Width == 0 {
			def.Width = w
		}
		if def.Height == 0 {
			def.Height = h
		}
	}

	db, err := band.New(def, b.ev)
	if err != nil {
		return nil, err
	}
	b.built[name] = db
	return db, nil
}

func (b *builder) source(s *SourceSpec) (band.SourceRef, error) {
	ref := band.SourceRef{SrcRect: s.srcRect, DstRect: s.dstRect}

	switch {
	case s.Band != "":
		src, err := b.build(s.Band)
		if err != nil {
			return ref, err
		}
		ref.Source = src
	case s.Path != "":
		if b.opener == nil {
			return ref, fmt.Errorf("%w: no image opener for %s", ErrInvalidConfig, s.Path)
		}
		src, err := b.opener.OpenSource(s.Path, s.Channel)
		if err != nil {
			return ref, err
		}
		ref.Source = src
	default:
		buf, err := s.buffer()
		if err != nil {
			return ref, err
		}
		ref.Source = band.NewMemSource(buf)
	}
	return ref, nil
}

// buffer materializes an inline source.
func (s *SourceSpec) buffer() (*raster.Buffer, error) {
	return raster.FromParts(s.DataType, s.Width, s.Height, s.Values, s.Imag)
}
