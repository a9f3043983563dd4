package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/pixfun-mcp/internal/band"
	"github.com/ironsheep/pixfun-mcp/internal/config"
	"github.com/ironsheep/pixfun-mcp/internal/imaging"
	"github.com/ironsheep/pixfun-mcp/internal/pixfun"
	"github.com/ironsheep/pixfun-mcp/internal/raster"
	"github.com/ironsheep/pixfun-mcp/internal/sample"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "pixfun_evaluate").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}
	if len(params.Arguments) == 0 {
		params.Arguments = json.RawMessage("{}")
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.log.Warn("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	text, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		s.log.Error("failed to encode tool result", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32603, "Internal error", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": string(text),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Builds or loads the bands it needs
//  4. Calls the appropriate pixfun/imaging function
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Function Catalog
	case "pixfun_list_functions":
		return s.handleListFunctions(args)
	case "pixfun_describe_function":
		return s.handleDescribeFunction(args)
	case "pixfun_promote":
		return s.handlePromote(args)

	// Evaluation
	case "pixfun_evaluate":
		return s.handleEvaluate(args)
	case "pixfun_evaluate_images":
		return s.handleEvaluateImages(args)

	// Band Documents
	case "pixfun_list_bands":
		return s.handleListBands(args)
	case "pixfun_image_info":
		return s.handleImageInfo(args)

	// Inspection
	case "pixfun_render":
		return s.handleRender(args)
	case "pixfun_sample":
		return s.handleSample(args)
	case "pixfun_statistics":
		return s.handleStatistics(args)
	case "pixfun_compare":
		return s.handleCompare(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// === Shared Arguments ===

// bandRef selects a band: a band of a YAML document, or one channel of an
// image file.
type bandRef struct {
	Config  string `json:"config"`
	Band    string `json:"band"`
	Path    string `json:"path"`
	Channel string `json:"channel"`
}

// readBand computes or loads the whole band selected by ref.
func (s *Server) readBand(ref bandRef) (*raster.Buffer, error) {
	switch {
	case ref.Config != "" && ref.Path != "":
		return nil, errors.New("give either config and band, or path, not both")
	case ref.Config != "":
		if ref.Band == "" {
			return nil, errors.New("band is required with config")
		}
		doc, err := config.Load(ref.Config)
		if err != nil {
			return nil, err
		}
		b, err := doc.Build(ref.Band, s.cache, s.eval)
		if err != nil {
			return nil, err
		}
		return b.ReadTiled(context.Background(), raster.FullWindow(b.Size()), 0, 0)
	case ref.Path != "":
		src, err := s.cache.Source(ref.Path, ref.Channel)
		if err != nil {
			return nil, err
		}
		return src.Buffer()
	default:
		return nil, errors.New("either config and band, or path, is required")
	}
}

type regionArg struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

func (r *regionArg) region() *imaging.Region {
	if r == nil {
		return nil
	}
	return &imaging.Region{X1: r.X1, Y1: r.Y1, X2: r.X2, Y2: r.Y2}
}

// bufferArg is an inline buffer.  Values are numbers or "NaN", "+Inf",
// "-Inf".
type bufferArg struct {
	DataType sample.DataType `json:"data_type"`
	Width    int             `json:"width"`
	Height   int             `json:"height"`
	Values   []imaging.Value `json:"values"`
	Imag     []imaging.Value `json:"imag,omitempty"`
}

func floats(vs []imaging.Value) []float64 {
	out := make([]float64, len(vs))
	for i, v := range vs {
		out[i] = float64(v)
	}
	return out
}

func (b bufferArg) buffer() (*raster.Buffer, error) {
	if len(b.Imag) > 0 && !b.DataType.IsComplex() {
		return nil, fmt.Errorf("imag given for real type %s", b.DataType)
	}
	return raster.FromParts(b.DataType, b.Width, b.Height, floats(b.Values), floats(b.Imag))
}

// bufferResult is a buffer returned to the client.
type bufferResult struct {
	DataType sample.DataType `json:"data_type"`
	Width    int             `json:"width"`
	Height   int             `json:"height"`
	Values   []imaging.Value `json:"values"`
	Imag     []imaging.Value `json:"imag,omitempty"`
}

func newBufferResult(buf *raster.Buffer) *bufferResult {
	res := &bufferResult{DataType: buf.Type(), Width: buf.Width(), Height: buf.Height()}
	if !buf.Type().IsComplex() {
		res.Values = imaging.Values(buf.Float64s())
		return res
	}
	zs := buf.Complex128s()
	res.Values = make([]imaging.Value, len(zs))
	res.Imag = make([]imaging.Value, len(zs))
	for i, z := range zs {
		res.Values[i], res.Imag[i] = imaging.Value(real(z)), imaging.Value(imag(z))
	}
	return res
}

// === Function Catalog Handlers ===

type argInfo struct {
	Name     string    `json:"name"`
	Doc      string    `json:"doc,omitempty"`
	Default  float64   `json:"default"`
	Required bool      `json:"required,omitempty"`
	Domain   string    `json:"domain,omitempty"`
	Allowed  []float64 `json:"allowed,omitempty"`
}

type functionInfo struct {
	Name      string    `json:"name"`
	Doc       string    `json:"doc"`
	Arity     string    `json:"arity"`
	MinInputs int       `json:"min_inputs"`
	MaxInputs *int      `json:"max_inputs,omitempty"`
	Input     string    `json:"input"`
	Output    string    `json:"output"`
	Args      []argInfo `json:"args,omitempty"`
}

func describe(d *pixfun.Descriptor, withArgs bool) functionInfo {
	info := functionInfo{
		Name:      d.Name,
		Doc:       d.Doc,
		Arity:     d.Arity(),
		MinInputs: d.MinInputs,
		Input:     d.Input.String(),
		Output:    d.Output.String(),
	}
	if d.MaxInputs != pixfun.Unbounded {
		n := d.MaxInputs
		info.MaxInputs = &n
	}
	if !withArgs {
		return info
	}
	for _, a := range d.Args {
		ai := argInfo{Name: a.Name, Doc: a.Doc, Default: a.Default, Required: a.Required, Allowed: a.Allowed}
		switch a.Domain {
		case pixfun.NonZero:
			ai.Domain = "non-zero"
		case pixfun.Positive:
			ai.Domain = "positive"
		}
		info.Args = append(info.Args, ai)
	}
	return info
}

func (s *Server) handleListFunctions(_ json.RawMessage) (interface{}, error) {
	descs := s.eval.Registry().Descriptors()
	funcs := make([]functionInfo, len(descs))
	for i, d := range descs {
		funcs[i] = describe(d, false)
	}
	return map[string]interface{}{
		"count":     len(funcs),
		"functions": funcs,
	}, nil
}

type describeFunctionArgs struct {
	Name string `json:"name"`
}

func (s *Server) handleDescribeFunction(args json.RawMessage) (interface{}, error) {
	var a describeFunctionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	d, err := s.eval.Registry().Resolve(a.Name)
	if err != nil {
		return nil, err
	}
	return describe(d, true), nil
}

type promoteArgs struct {
	Types []sample.DataType `json:"types"`
}

func (s *Server) handlePromote(args json.RawMessage) (interface{}, error) {
	var a promoteArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if len(a.Types) == 0 {
		return nil, errors.New("at least one type is required")
	}
	return map[string]interface{}{
		"types":     a.Types,
		"data_type": sample.PromoteAll(a.Types...),
	}, nil
}

// === Evaluation Handlers ===

type functionCall struct {
	Function   string             `json:"function"`
	Args       map[string]float64 `json:"args"`
	OutputType sample.DataType    `json:"output_type"`
}

type evaluateArgs struct {
	functionCall
	Inputs []bufferArg `json:"inputs"`
}

func (s *Server) handleEvaluate(args json.RawMessage) (interface{}, error) {
	var a evaluateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	inputs := make([]*raster.Buffer, len(a.Inputs))
	for i, in := range a.Inputs {
		buf, err := in.buffer()
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		inputs[i] = buf
	}

	out, err := s.eval.Evaluate(pixfun.Request{
		Function:   a.Function,
		Inputs:     inputs,
		Args:       a.Args,
		OutputType: a.OutputType,
	})
	if err != nil {
		return nil, err
	}
	return newBufferResult(out), nil
}

type evaluateImagesArgs struct {
	functionCall
	Sources []struct {
		Path    string `json:"path"`
		Channel string `json:"channel"`
	} `json:"sources"`
	Window        *regionArg `json:"window,omitempty"`
	IncludeValues bool       `json:"include_values"`
	Render        bool       `json:"render"`
}

type evaluateImagesResult struct {
	Function   string                `json:"function"`
	Statistics *imaging.StatsResult  `json:"statistics"`
	Pixels     *bufferResult         `json:"pixels,omitempty"`
	Image      *imaging.RenderResult `json:"image,omitempty"`
}

func (s *Server) handleEvaluateImages(args json.RawMessage) (interface{}, error) {
	var a evaluateImagesArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if len(a.Sources) == 0 {
		return nil, errors.New("at least one source is required")
	}

	refs := make([]band.SourceRef, len(a.Sources))
	for i, src := range a.Sources {
		is, err := s.cache.Source(src.Path, src.Channel)
		if err != nil {
			return nil, fmt.Errorf("source %d: %w", i, err)
		}
		refs[i] = band.SourceRef{Source: is}
	}
	width, height := refs[0].Source.Size()
	for i, ref := range refs[1:] {
		if w, h := ref.Source.Size(); w != width || h != height {
			return nil, fmt.Errorf("source %d is %dx%d, source 0 is %dx%d", i+1, w, h, width, height)
		}
	}

	b, err := band.New(band.Definition{
		Name:     a.Function,
		Width:    width,
		Height:   height,
		DataType: a.OutputType,
		Function: a.Function,
		Args:     a.Args,
		Sources:  refs,
	}, s.eval)
	if err != nil {
		return nil, err
	}

	win := raster.FullWindow(width, height)
	if a.Window != nil {
		win = raster.WindowFromRect(image.Rect(a.Window.X1, a.Window.Y1, a.Window.X2, a.Window.Y2))
	}
	out, err := b.ReadTiled(context.Background(), win, 0, 0)
	if err != nil {
		return nil, err
	}

	stats, err := imaging.Statistics(out, nil)
	if err != nil {
		return nil, err
	}
	res := &evaluateImagesResult{Function: a.Function, Statistics: stats}
	if a.IncludeValues {
		res.Pixels = newBufferResult(out)
	}
	if a.Render {
		if res.Image, err = imaging.Render(out, imaging.RenderOptions{}); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// === Band Document Handlers ===

type listBandsArgs struct {
	Config string `json:"config"`
}

type bandInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Function    string `json:"function"`
	DataType    string `json:"data_type,omitempty"`
	Sources     int    `json:"sources"`
}

func (s *Server) handleListBands(args json.RawMessage) (interface{}, error) {
	var a listBandsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	doc, err := config.Load(a.Config)
	if err != nil {
		return nil, err
	}

	bands := make([]bandInfo, 0, len(doc.Bands))
	for _, b := range doc.Bands {
		info := bandInfo{Name: b.Name, Description: b.Description, Function: b.Function, Sources: len(b.Sources)}
		if b.DataType != sample.Unknown {
			info.DataType = b.DataType.String()
		}
		bands = append(bands, info)
	}
	return map[string]interface{}{"bands": bands}, nil
}

type imageInfoArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageInfo(args json.RawMessage) (interface{}, error) {
	var a imageInfoArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

// === Inspection Handlers ===

type renderArgs struct {
	bandRef
	Mode            imaging.RenderMode `json:"mode"`
	Colormap        []string           `json:"colormap"`
	Min             *float64           `json:"min"`
	Max             *float64           `json:"max"`
	Scale           int                `json:"scale"`
	Region          *regionArg         `json:"region,omitempty"`
	GridSpacing     int                `json:"grid_spacing"`
	ShowCoordinates bool               `json:"show_coordinates"`
	GridColor       string             `json:"grid_color"`
}

func (s *Server) handleRender(args json.RawMessage) (interface{}, error) {
	var a renderArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	buf, err := s.readBand(a.bandRef)
	if err != nil {
		return nil, err
	}
	return imaging.Render(buf, imaging.RenderOptions{
		Mode:            a.Mode,
		Colormap:        a.Colormap,
		Min:             a.Min,
		Max:             a.Max,
		Scale:           a.Scale,
		Region:          a.Region.region(),
		GridSpacing:     a.GridSpacing,
		ShowCoordinates: a.ShowCoordinates,
		GridColor:       a.GridColor,
	})
}

type sampleArgs struct {
	bandRef
	Points []imaging.LabeledPoint `json:"points"`
}

func (s *Server) handleSample(args json.RawMessage) (interface{}, error) {
	var a sampleArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	buf, err := s.readBand(a.bandRef)
	if err != nil {
		return nil, err
	}
	return imaging.SampleValuesMulti(buf, a.Points)
}

type statisticsArgs struct {
	bandRef
	Region *regionArg `json:"region,omitempty"`
}

func (s *Server) handleStatistics(args json.RawMessage) (interface{}, error) {
	var a statisticsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	buf, err := s.readBand(a.bandRef)
	if err != nil {
		return nil, err
	}
	return imaging.Statistics(buf, a.Region.region())
}

type compareArgs struct {
	A         bandRef `json:"a"`
	B         bandRef `json:"b"`
	Tolerance float64 `json:"tolerance"`
}

func (s *Server) handleCompare(args json.RawMessage) (interface{}, error) {
	var a compareArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	bufA, err := s.readBand(a.A)
	if err != nil {
		return nil, fmt.Errorf("band a: %w", err)
	}
	bufB, err := s.readBand(a.B)
	if err != nil {
		return nil, fmt.Errorf("band b: %w", err)
	}
	return imaging.Compare(bufA, bufB, a.Tolerance)
}
