package cli

import (
	"io"
	"time"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/spf13/cobra"
	"golang.org/x/text/message"

	"github.com/ironsheep/pixfun-mcp/internal/config"
	"github.com/ironsheep/pixfun-mcp/internal/imaging"
	"github.com/ironsheep/pixfun-mcp/internal/pixfun"
	"github.com/ironsheep/pixfun-mcp/internal/raster"
)

// EvalOptions holds flags for the eval command.
type EvalOptions struct {
	*RootOptions
	Config   string
	Band     string
	Window   string
	TileRows int
	Workers  int
	Out      string
	Mode     string
	Scale    int
}

// EvalResult is the output of the eval command.
type EvalResult struct {
	Band       string               `json:"band"`
	Window     string               `json:"window"`
	Statistics *imaging.StatsResult `json:"statistics"`
	Output     string               `json:"output,omitempty"`
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EvalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Compute a derived band of a band document",
		Long: `Compute a band of a YAML band document, in tiles of --tile-rows rows
spread over --workers goroutines, and print its statistics.

With --out the computed window is also rendered as a PNG.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Config, "config", "", "band document (YAML)")
	cmd.Flags().StringVar(&opts.Band, "band", "", "band to compute")
	cmd.Flags().StringVar(&opts.Window, "window", "", "window x,y,w,h (default: whole band)")
	cmd.Flags().IntVar(&opts.TileRows, "tile-rows", 0, "rows per tile (default 64)")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "concurrent tiles (default GOMAXPROCS)")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "write the window as a PNG")
	cmd.Flags().StringVar(&opts.Mode, "mode", "grey", "PNG render mode (grey|colormap|phase)")
	cmd.Flags().IntVar(&opts.Scale, "scale", 1, "PNG zoom factor")
	_ = cmd.MarkFlagRequired("config")
	_ = cmd.MarkFlagRequired("band")

	return cmd
}

func runEval(cmd *cobra.Command, opts *EvalOptions) error {
	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)

	doc, err := config.Load(opts.Config)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load band document", err)
	}
	b, err := doc.Build(opts.Band, imaging.NewImageCache(), pixfun.NewEvaluator(nil))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build band", err)
	}

	win := raster.FullWindow(b.Size())
	if opts.Window != "" {
		if win, err = parseWindow(opts.Window); err != nil {
			return WrapExitError(ExitCommandError, "invalid --window", err)
		}
	}

	logger.Debug("reading band", "band", b.Name(), "function", b.Function().Descriptor().Name,
		"window", win.String(), "tile_rows", opts.TileRows, "workers", opts.Workers)
	start := time.Now()
	buf, err := b.ReadTiled(cmd.Context(), win, opts.TileRows, opts.Workers)
	if err != nil {
		return WrapExitError(ExitFailure, "evaluation failed", err)
	}
	logger.Info("band computed", "band", b.Name(), "type", buf.Type().String(),
		"width", buf.Width(), "height", buf.Height(), "elapsed", time.Since(start))

	stats, err := imaging.Statistics(buf, nil)
	if err != nil {
		return WrapExitError(ExitFailure, "statistics failed", err)
	}
	res := &EvalResult{Band: b.Name(), Window: win.String(), Statistics: stats}

	if opts.Out != "" {
		img, err := imaging.RenderImage(buf, imaging.RenderOptions{Mode: imaging.RenderMode(opts.Mode), Scale: opts.Scale})
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to render band", err)
		}
		if err := imgio.Save(opts.Out, img, imgio.PNGEncoder()); err != nil {
			return WrapExitError(ExitFailure, "failed to write image", err)
		}
		logger.Debug("image written", "path", opts.Out)
		res.Output = opts.Out
	}

	return newFormatter(opts.RootOptions, cmd.OutOrStdout()).Success(res, func(p *message.Printer, w io.Writer) {
		p.Fprintf(w, "band %s, window %s\n", res.Band, res.Window)
		printStats(p, w, stats)
		if res.Output != "" {
			p.Fprintf(w, "wrote %s\n", res.Output)
		}
	})
}
