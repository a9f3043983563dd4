package band

import (
	"context"
	"errors"
	"fmt"
	"image"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/pixfun-mcp/internal/pixfun"
	"github.com/ironsheep/pixfun-mcp/internal/raster"
	"github.com/ironsheep/pixfun-mcp/internal/sample"
)

// ErrInvalidBand is returned for band definitions that cannot be read.
var ErrInvalidBand = errors.New("band: invalid definition")

// DefaultTileRows is the tile height used by ReadTiled when none is given.
const DefaultTileRows = 64

// Definition describes a derived band.
type Definition struct {
	Name   string
	Width  int
	Height int
	// DataType of the band; Unknown selects the function's natural type.
	DataType sample.DataType
	Function string
	Args     map[string]float64
	Sources  []SourceRef
}

// DerivedBand is a compiled Definition.  It is safe for concurrent reads
// if its sources are.
type DerivedBand struct {
	name     string
	width    int
	height   int
	dataType sample.DataType
	bound    *pixfun.Bound
	sources  []placement
}

// New validates def and compiles its function with ev, or with the builtin
// catalog if ev is nil.
func New(def Definition, ev *pixfun.Evaluator) (*DerivedBand, error) {
	if ev == nil {
		ev = pixfun.NewEvaluator(nil)
	}
	if def.Width <= 0 || def.Height <= 0 {
		return nil, fmt.Errorf("%w: band %q has size %dx%d", ErrInvalidBand, def.Name, def.Width, def.Height)
	}

	bound, err := ev.Compile(def.Function, def.Args)
	if err != nil {
		return nil, fmt.Errorf("band %q: %w", def.Name, err)
	}
	if d := bound.Descriptor(); !d.AcceptsInputs(len(def.Sources)) {
		return nil, fmt.Errorf("band %q: %w", def.Name, &pixfun.Error{
			Func: d.Name, Op: "arity", Err: pixfun.ErrArity,
			Detail: fmt.Sprintf("need %s sources, have %d", d.Arity(), len(def.Sources)),
		})
	}

	band := &DerivedBand{
		name:   def.Name,
		width:  def.Width,
		height: def.Height,
		bound:  bound,
	}
	types := make([]sample.DataType, len(def.Sources))
	bandRect := image.Rect(0, 0, def.Width, def.Height)
	for i, ref := range def.Sources {
		if ref.Source == nil {
			return nil, fmt.Errorf("%w: band %q source %d is nil", ErrInvalidBand, def.Name, i)
		}
		w, h := ref.Source.Size()
		full := image.Rect(0, 0, w, h)
		p := placement{src: ref.Source, srcRect: ref.SrcRect, dstRect: ref.DstRect, dataType: ref.Source.DataType()}
		if p.srcRect.Empty() {
			p.srcRect = full
		}
		if p.dstRect.Empty() {
			p.dstRect = bandRect
		}
		if !p.srcRect.In(full) {
			return nil, fmt.Errorf("%w: band %q source %d: rectangle %v outside source %v",
				ErrInvalidBand, def.Name, i, p.srcRect, full)
		}
		types[i] = p.dataType
		band.sources = append(band.sources, p)
	}

	band.dataType, err = bound.OutputType(def.DataType, types...)
	if err != nil {
		return nil, fmt.Errorf("band %q: %w", def.Name, err)
	}
	return band, nil
}

// Name returns the band name.
func (b *DerivedBand) Name() string { return b.name }

// DataType returns the pixel type produced by reads.
func (b *DerivedBand) DataType() sample.DataType { return b.dataType }

// Size returns the band dimensions.
func (b *DerivedBand) Size() (int, int) { return b.width, b.height }

// Function returns the bound pixel function.
func (b *DerivedBand) Function() *pixfun.Bound { return b.bound }

// Read computes the pixels of win.
func (b *DerivedBand) Read(win raster.Window) (*raster.Buffer, error) {
	if err := b.checkWindow(win); err != nil {
		return nil, err
	}
	_, bh := win.BufferSize()
	return b.readRows(win, 0, bh)
}

// ReadTiled computes win like Read, splitting the output into tiles of
// tileRows rows that are evaluated by up to workers goroutines.  A
// cancelled ctx stops tiles that have not started yet.
func (b *DerivedBand) ReadTiled(ctx context.Context, win raster.Window, tileRows, workers int) (*raster.Buffer, error) {
	if err := b.checkWindow(win); err != nil {
		return nil, err
	}
	if tileRows <= 0 {
		tileRows = DefaultTileRows
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	bw, bh := win.BufferSize()
	out, err := raster.New(b.dataType, bw, bh)
	if err != nil {
		return nil, err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for r0 := 0; r0 < bh; r0 += tileRows {
		r1 := min(r0+tileRows, bh)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			tile, err := b.readRows(win, r0, r1)
			if err != nil {
				return fmt.Errorf("rows %d-%d: %w", r0, r1, err)
			}
			// Tiles cover disjoint rows of out.
			out.Paste(tile, 0, r0)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (b *DerivedBand) checkWindow(win raster.Window) error {
	if err := win.Validate(); err != nil {
		return err
	}
	if !win.Rect().In(image.Rect(0, 0, b.width, b.height)) {
		return fmt.Errorf("%w: window %s outside band %q of %dx%d", raster.ErrOutOfRange, win, b.name, b.width, b.height)
	}
	return nil
}

// readRows evaluates output rows [r0, r1) of win.
func (b *DerivedBand) readRows(win raster.Window, r0, r1 int) (*raster.Buffer, error) {
	bw, bh := win.BufferSize()
	cols := make([]int, bw)
	for i := range cols {
		cols[i] = win.XOff + raster.ResampleIndex(i, win.XSize, bw)
	}
	lines := make([]int, r1-r0)
	for j := range lines {
		lines[j] = win.YOff + raster.ResampleIndex(r0+j, win.YSize, bh)
	}

	inputs := make([]*raster.Buffer, len(b.sources))
	for i := range b.sources {
		in, err := b.sources[i].assemble(cols, lines)
		if err != nil {
			return nil, fmt.Errorf("band %q source %d: %w", b.name, i, err)
		}
		inputs[i] = in
	}
	return b.bound.Evaluate(inputs, b.dataType)
}

// assemble builds the input buffer for the band pixels at the given
// columns and lines.  Pixels outside the destination rectangle are zero.
func (p *placement) assemble(cols, lines []int) (*raster.Buffer, error) {
	sx := make([]int, len(cols))
	minX, maxX := -1, -1
	for i, x := range cols {
		sx[i] = -1
		if x >= p.dstRect.Min.X && x < p.dstRect.Max.X {
			sx[i] = p.srcX(x)
			if minX < 0 || sx[i] < minX {
				minX = sx[i]
			}
			maxX = max(maxX, sx[i])
		}
	}
	sy := make([]int, len(lines))
	minY, maxY := -1, -1
	for j, y := range lines {
		sy[j] = -1
		if y >= p.dstRect.Min.Y && y < p.dstRect.Max.Y {
			sy[j] = p.srcY(y)
			if minY < 0 || sy[j] < minY {
				minY = sy[j]
			}
			maxY = max(maxY, sy[j])
		}
	}
	if minX < 0 || minY < 0 {
		return raster.New(p.dataType, len(cols), len(lines))
	}

	win := raster.Window{XOff: minX, YOff: minY, XSize: maxX - minX + 1, YSize: maxY - minY + 1}
	buf, err := p.src.Read(win)
	if err != nil {
		return nil, err
	}
	if buf.Width() != win.XSize || buf.Height() != win.YSize {
		return nil, fmt.Errorf("%w: source returned %dx%d for %s", raster.ErrBadShape, buf.Width(), buf.Height(), win)
	}

	idx := make([]int, 0, len(cols)*len(lines))
	for _, y := range sy {
		for _, x := range sx {
			if x < 0 || y < 0 {
				idx = append(idx, -1)
				continue
			}
			idx = append(idx, (y-minY)*win.XSize+(x-minX))
		}
	}
	return buf.Gather(len(cols), len(lines), idx)
}
