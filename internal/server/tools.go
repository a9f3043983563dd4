package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// bandProperties are the schema properties that select a band: either a
// band of a YAML document or one channel of an image file.
func bandProperties() map[string]interface{} {
	return map[string]interface{}{
		"config": map[string]interface{}{
			"type":        "string",
			"description": "Absolute path to a YAML band document (use with band)",
		},
		"band": map[string]interface{}{
			"type":        "string",
			"description": "Name of a band defined in config",
		},
		"path": map[string]interface{}{
			"type":        "string",
			"description": "Absolute path to an image file, used instead of config/band",
		},
		"channel": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"gray", "red", "green", "blue", "alpha"},
			"description": "Image channel read with path. Default gray",
		},
	}
}

func regionProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": description,
		"properties": map[string]interface{}{
			"x1": map[string]interface{}{"type": "integer", "description": "Left edge X coordinate (0-based)"},
			"y1": map[string]interface{}{"type": "integer", "description": "Top edge Y coordinate (0-based)"},
			"x2": map[string]interface{}{"type": "integer", "description": "Right edge X coordinate (exclusive)"},
			"y2": map[string]interface{}{"type": "integer", "description": "Bottom edge Y coordinate (exclusive)"},
		},
		"required": []string{"x1", "y1", "x2", "y2"},
	}
}

func withProperties(base map[string]interface{}, extra map[string]interface{}) map[string]interface{} {
	for k, v := range extra {
		base[k] = v
	}
	return base
}

var functionCallProperties = map[string]interface{}{
	"function": map[string]interface{}{
		"type":        "string",
		"description": "Pixel function name, e.g. \"intensity\" or \"dB\"",
	},
	"args": map[string]interface{}{
		"type":                 "object",
		"description":          "Named numeric arguments, e.g. {\"k\": 2}",
		"additionalProperties": map[string]interface{}{"type": "number"},
	},
	"output_type": map[string]interface{}{
		"type":        "string",
		"description": "Pixel type of the result (Byte, Int16, Float32, CFloat64, ...). Default: the promoted input type, widened to Float64 or CFloat64 unless all inputs are single precision",
	},
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Function Catalog
		{
			Name:        "pixfun_list_functions",
			Description: "List the registered pixel functions with their arity and input/output kinds.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "pixfun_describe_function",
			Description: "Describe one pixel function: documentation, accepted number of inputs and its named arguments with defaults.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name": map[string]interface{}{
						"type":        "string",
						"description": "Function name (case-sensitive)",
					},
				},
				"required": []string{"name"},
			},
		},
		{
			Name:        "pixfun_promote",
			Description: "Return the pixel type that mixed input types promote to.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"types": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Pixel type names, e.g. [\"Int16\", \"Float32\"]",
					},
				},
				"required": []string{"types"},
			},
		},

		// Evaluation
		{
			Name:        "pixfun_evaluate",
			Description: "Apply a pixel function to inline buffers of identical size and return the resulting pixels.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(map[string]interface{}{
					"inputs": map[string]interface{}{
						"type":        "array",
						"description": "Input buffers in function argument order",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"data_type": map[string]interface{}{"type": "string", "description": "Pixel type, e.g. Int16 or CFloat32"},
								"width":     map[string]interface{}{"type": "integer"},
								"height":    map[string]interface{}{"type": "integer"},
								"values": map[string]interface{}{
									"type":        "array",
									"items":       map[string]interface{}{"type": "number"},
									"description": "Row-major pixel values (real parts for complex types)",
								},
								"imag": map[string]interface{}{
									"type":        "array",
									"items":       map[string]interface{}{"type": "number"},
									"description": "Optional imaginary parts for complex types",
								},
							},
							"required": []string{"data_type", "width", "height", "values"},
						},
					},
				}, functionCallProperties),
				"required": []string{"function", "inputs"},
			},
		},
		{
			Name:        "pixfun_evaluate_images",
			Description: "Apply a pixel function to image files used as bands and return statistics of the result, optionally with its pixels and a PNG rendering.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(map[string]interface{}{
					"sources": map[string]interface{}{
						"type":        "array",
						"description": "Image bands in function argument order; all images must have the same size",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"path":    map[string]interface{}{"type": "string", "description": "Absolute path to the image file"},
								"channel": map[string]interface{}{"type": "string", "enum": []string{"gray", "red", "green", "blue", "alpha"}},
							},
							"required": []string{"path"},
						},
					},
					"window":         regionProperty("Optional area to evaluate. Default: whole image"),
					"include_values": map[string]interface{}{"type": "boolean", "description": "Return the pixel values. Default false"},
					"render":         map[string]interface{}{"type": "boolean", "description": "Return a greyscale PNG of the result. Default false"},
				}, functionCallProperties),
				"required": []string{"function", "sources"},
			},
		},

		// Band Documents
		{
			Name:        "pixfun_list_bands",
			Description: "List the derived bands defined in a YAML band document.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"config": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to a YAML band document",
					},
				},
				"required": []string{"config"},
			},
		},
		{
			Name:        "pixfun_image_info",
			Description: "Load an image file and report its size, format, band pixel type and readable channels.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},

		// Inspection
		{
			Name:        "pixfun_render",
			Description: "Render a band as base64-encoded PNG. Values are stretched linearly between min and max; complex bands can be shown as a phase wheel.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(bandProperties(), map[string]interface{}{
					"mode": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"grey", "colormap", "phase"},
						"description": "Colour mapping. Default grey",
					},
					"colormap": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Hex colour stops for colormap mode, e.g. [\"#000000\", \"#ff8800\"]",
					},
					"min":              map[string]interface{}{"type": "number", "description": "Stretch minimum. Default: smallest finite value"},
					"max":              map[string]interface{}{"type": "number", "description": "Stretch maximum. Default: largest finite value"},
					"scale":            map[string]interface{}{"type": "integer", "description": "Integer zoom factor. Default 1", "default": 1},
					"region":           regionProperty("Optional area to render"),
					"grid_spacing":     map[string]interface{}{"type": "integer", "description": "Draw a grid every N band pixels. Default: no grid"},
					"show_coordinates": map[string]interface{}{"type": "boolean", "description": "Label grid intersections with band coordinates"},
					"grid_color":       map[string]interface{}{"type": "string", "description": "Grid colour in hex. Default #ff0000"},
				}),
			},
		},
		{
			Name:        "pixfun_sample",
			Description: "Read the exact band values at one or more pixel coordinates.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(bandProperties(), map[string]interface{}{
					"points": map[string]interface{}{
						"type":        "array",
						"description": "Coordinates to sample",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"x":     map[string]interface{}{"type": "integer"},
								"y":     map[string]interface{}{"type": "integer"},
								"label": map[string]interface{}{"type": "string", "description": "Optional label"},
							},
							"required": []string{"x", "y"},
						},
					},
				}),
				"required": []string{"points"},
			},
		},
		{
			Name:        "pixfun_statistics",
			Description: "Summarise a band: pixel counts, NaN/Inf counts, min, max, mean and standard deviation. Complex bands are summarised by modulus.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(bandProperties(), map[string]interface{}{
					"region": regionProperty("Optional area to summarise"),
				}),
			},
		},
		{
			Name:        "pixfun_compare",
			Description: "Compare two bands of the same size pixel by pixel.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"a": map[string]interface{}{
						"type":        "object",
						"description": "First band (config/band or path/channel)",
						"properties":  bandProperties(),
					},
					"b": map[string]interface{}{
						"type":        "object",
						"description": "Second band (config/band or path/channel)",
						"properties":  bandProperties(),
					},
					"tolerance": map[string]interface{}{
						"type":        "number",
						"description": "Largest difference modulus still counted as equal. Default 0",
					},
				},
				"required": []string{"a", "b"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
