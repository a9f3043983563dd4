// Package server implements the MCP (Model Context Protocol) server for the
// pixel function engine.
//
// This package provides a JSON-RPC 2.0 server that exposes the pixel function
// library, derived band evaluation and band inspection through the MCP
// protocol, so that MCP clients can build and check derived raster bands.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Function Catalog:
//   - pixfun_list_functions: List the registered pixel functions
//   - pixfun_describe_function: Arity, kinds and arguments of one function
//   - pixfun_promote: Common pixel type of a set of types
//
// Evaluation:
//   - pixfun_evaluate: Apply a function to inline buffers
//   - pixfun_evaluate_images: Apply a function to image channels
//
// Band Documents:
//   - pixfun_list_bands: List the bands of a YAML band document
//   - pixfun_image_info: Size, pixel type and channels of an image
//
// Inspection:
//   - pixfun_render: Render a band as a PNG
//   - pixfun_sample: Read band values at points
//   - pixfun_statistics: Summary statistics of a band or region
//   - pixfun_compare: Pixelwise difference of two bands
//
// Bands for the inspection tools are selected either by "config" and "band"
// (a derived band of a document, computed in tiles) or by "path" and
// "channel" (one channel of an image file).
//
// # Non-finite Values
//
// JSON has no NaN or infinity, so pixel values are written as the strings
// "NaN", "+Inf" and "-Inf", and the same strings are accepted in inline
// buffers.
//
// # Image Caching
//
// Decoded images and the bands read from them are cached by path for the
// lifetime of the server process.
//
// # Logging
//
// The server logs through log/slog.  Requests are logged at debug level and
// failed tool calls at warn level.  Without WithLogger, logs are discarded.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
//	srv := server.New(server.WithLogger(logger))
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
