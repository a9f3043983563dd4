package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ironsheep/pixfun-mcp/internal/imaging"
	"github.com/ironsheep/pixfun-mcp/internal/raster"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Evaluation failure
	ExitCommandError = 2 // Command error (bad flags, unreadable document, etc.)
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

func newFormatter(opts *RootOptions, w io.Writer) *OutputFormatter {
	return &OutputFormatter{Format: opts.Format, Writer: w}
}

// CLIResponse is the JSON response format for CLI output.
type CLIResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
}

// Success outputs data as JSON, or calls text with a printer for the
// configured locale and the output writer.
func (f *OutputFormatter) Success(data interface{}, text func(p *message.Printer, w io.Writer)) error {
	if f.Format == "json" {
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(CLIResponse{Status: "ok", Data: data})
	}
	text(message.NewPrinter(language.English), f.Writer)
	return nil
}

// newLogger returns a text logger on w.  The level is Info, or Debug with
// --verbose or PIXFUN_LOG_LEVEL=debug.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose || strings.EqualFold(os.Getenv("PIXFUN_LOG_LEVEL"), "debug") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// num formats a pixel value for text output.
func num(v imaging.Value) string {
	return strconv.FormatFloat(float64(v), 'g', 6, 64)
}

// parseWindow parses "x,y,w,h".
func parseWindow(s string) (raster.Window, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return raster.Window{}, fmt.Errorf("window %q: want x,y,w,h", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return raster.Window{}, fmt.Errorf("window %q: %w", s, err)
		}
		v[i] = n
	}
	win := raster.Window{XOff: v[0], YOff: v[1], XSize: v[2], YSize: v[3]}
	if err := win.Validate(); err != nil {
		return raster.Window{}, fmt.Errorf("window %q: %w", s, err)
	}
	return win, nil
}

// printStats writes s as text.  Pixel counts use the printer's digit
// grouping.
func printStats(p *message.Printer, w io.Writer, s *imaging.StatsResult) {
	kind := ""
	if s.Modulus {
		kind = " (modulus)"
	}
	fmt.Fprintf(w, "%s %dx%d%s\n", s.DataType, s.Width, s.Height, kind)
	p.Fprintf(w, "pixels  %d (valid %d, NaN %d, Inf %d)\n", s.Count, s.Valid, s.NaN, s.Inf)
	fmt.Fprintf(w, "min     %s\n", num(s.Min))
	fmt.Fprintf(w, "max     %s\n", num(s.Max))
	fmt.Fprintf(w, "mean    %s\n", num(s.Mean))
	fmt.Fprintf(w, "stddev  %s\n", num(s.StdDev))
}
