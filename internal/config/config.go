// Package config loads derived band definitions from YAML documents.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/pixfun-mcp/internal/sample"
)

// ErrInvalidConfig is wrapped by all validation errors.
var ErrInvalidConfig = errors.New("config: invalid document")

// Document is a set of derived band definitions.
type Document struct {
	Bands []BandSpec `yaml:"bands"`

	// baseDir resolves relative image paths.
	baseDir string
}

// BandSpec defines one derived band.
type BandSpec struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`

	// Function is the pixel function name, e.g. "intensity".
	Function string             `yaml:"function"`
	Args     map[string]float64 `yaml:"args,omitempty"`

	// DataType of the band.  Empty selects the function's natural type.
	DataType sample.DataType `yaml:"data_type,omitempty"`

	// Width and Height default to the size of the first source.
	Width  int `yaml:"width,omitempty"`
	Height int `yaml:"height,omitempty"`

	Sources []SourceSpec `yaml:"sources"`
}

// SourceSpec is one input of a band.  Exactly one of Path, Band or inline
// Values must be set.
type SourceSpec struct {
	// Path of an image file; Channel selects gray (default), red, green,
	// blue or alpha.
	Path    string `yaml:"path,omitempty"`
	Channel string `yaml:"channel,omitempty"`

	// Band names another band of the same document.
	Band string `yaml:"band,omitempty"`

	// Inline pixels in row-major order.  Imag holds imaginary parts for
	// complex types.
	DataType sample.DataType `yaml:"data_type,omitempty"`
	Width    int             `yaml:"width,omitempty"`
	Height   int             `yaml:"height,omitempty"`
	Values   []float64       `yaml:"values,omitempty"`
	Imag     []float64       `yaml:"imag,omitempty"`

	// SrcRect and DstRect are [x, y, width, height].
	SrcRect []int `yaml:"src_rect,omitempty"`
	DstRect []int `yaml:"dst_rect,omitempty"`

	// Set by validate.
	srcRect, dstRect image.Rectangle
}

// Load reads the document at path.  Relative image paths resolve against
// the directory of path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read band document: %w", err)
	}
	return Parse(data, filepath.Dir(path))
}

// Parse decodes and validates a document.  Unknown fields are rejected.
func Parse(data []byte, baseDir string) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	doc.baseDir = baseDir

	for i := range doc.Bands {
		for j := range doc.Bands[i].Sources {
			src := &doc.Bands[i].Sources[j]
			if src.Path != "" && !filepath.IsAbs(src.Path) && baseDir != "" {
				src.Path = filepath.Join(baseDir, src.Path)
			}
		}
	}
	if err := doc.validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Names returns the band names in document order.
func (d *Document) Names() []string {
	names := make([]string, len(d.Bands))
	for i, b := range d.Bands {
		names[i] = b.Name
	}
	return names
}

// Band returns the definition of the named band.
func (d *Document) Band(name string) (*BandSpec, error) {
	for i := range d.Bands {
		if d.Bands[i].Name == name {
			return &d.Bands[i], nil
		}
	}
	return nil, fmt.Errorf("%w: no band named %q", ErrInvalidConfig, name)
}

func (d *Document) validate() error {
	if len(d.Bands) == 0 {
		return fmt.Errorf("%w: no bands defined", ErrInvalidConfig)
	}
	seen := make(map[string]bool, len(d.Bands))
	for i := range d.Bands {
		b := &d.Bands[i]
		if b.Name == "" {
			return fmt.Errorf("%w: band %d has no name", ErrInvalidConfig, i)
		}
		if seen[b.Name] {
			return fmt.Errorf("%w: band %q defined twice", ErrInvalidConfig, b.Name)
		}
		seen[b.Name] = true
		if err := b.validate(); err != nil {
			return fmt.Errorf("%w: band %q: %v", ErrInvalidConfig, b.Name, err)
		}
	}
	for _, b := range d.Bands {
		for j, src := range b.Sources {
			if src.Band != "" && !seen[src.Band] {
				return fmt.Errorf("%w: band %q source %d: unknown band %q", ErrInvalidConfig, b.Name, j, src.Band)
			}
		}
	}
	return nil
}

func (b *BandSpec) validate() error {
	if b.Function == "" {
		return errors.New("function is required")
	}
	if b.Width < 0 || b.Height < 0 {
		return fmt.Errorf("negative size %dx%d", b.Width, b.Height)
	}
	if len(b.Sources) == 0 {
		return errors.New("at least one source is required")
	}
	for j := range b.Sources {
		if err := b.Sources[j].validate(); err != nil {
			return fmt.Errorf("source %d: %v", j, err)
		}
	}
	return nil
}

func (s *SourceSpec) inline() bool {
	return len(s.Values) > 0
}

func (s *SourceSpec) validate() error {
	kinds := 0
	for _, set := range []bool{s.Path != "", s.Band != "", s.inline()} {
		if set {
			kinds++
		}
	}
	if kinds != 1 {
		return errors.New("exactly one of path, band or values is required")
	}
	if s.Channel != "" && s.Path == "" {
		return errors.New("channel is only valid with path")
	}
	if s.inline() {
		if !s.DataType.Valid() {
			return errors.New("inline source needs data_type")
		}
		if s.Width <= 0 || s.Height <= 0 {
			return fmt.Errorf("inline source has size %dx%d", s.Width, s.Height)
		}
		if len(s.Values) != s.Width*s.Height {
			return fmt.Errorf("have %d values for %dx%d", len(s.Values), s.Width, s.Height)
		}
		if len(s.Imag) > 0 {
			if !s.DataType.IsComplex() {
				return fmt.Errorf("imag given for real type %s", s.DataType)
			}
			if len(s.Imag) != len(s.Values) {
				return fmt.Errorf("have %d imaginary parts for %d values", len(s.Imag), len(s.Values))
			}
		}
	} else if s.DataType != sample.Unknown || s.Width != 0 || s.Height != 0 || len(s.Imag) > 0 {
		return errors.New("data_type, width, height and imag are only valid with values")
	}
	var err error
	if s.srcRect, err = parseRect(s.SrcRect); err != nil {
		return fmt.Errorf("src_rect: %v", err)
	}
	if s.dstRect, err = parseRect(s.DstRect); err != nil {
		return fmt.Errorf("dst_rect: %v", err)
	}
	return nil
}

// parseRect converts [x, y, width, height] to a rectangle.  An empty list
// gives the empty rectangle.
func parseRect(v []int) (image.Rectangle, error) {
	if len(v) == 0 {
		return image.Rectangle{}, nil
	}
	if len(v) != 4 {
		return image.Rectangle{}, fmt.Errorf("want [x, y, width, height], have %d numbers", len(v))
	}
	if v[2] <= 0 || v[3] <= 0 {
		return image.Rectangle{}, fmt.Errorf("size %dx%d is not positive", v[2], v[3])
	}
	return image.Rect(v[0], v[1], v[0]+v[2], v[1]+v[3]), nil
}
