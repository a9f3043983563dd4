package cli

import (
	"context"
	"errors"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/text/message"

	"github.com/ironsheep/pixfun-mcp/internal/config"
	"github.com/ironsheep/pixfun-mcp/internal/imaging"
	"github.com/ironsheep/pixfun-mcp/internal/pixfun"
	"github.com/ironsheep/pixfun-mcp/internal/raster"
)

// StatsOptions holds flags for the stats command.
type StatsOptions struct {
	*RootOptions
	Config  string
	Band    string
	Image   string
	Channel string
	Window  string
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StatsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print statistics of a band or an image channel",
		Long: `Print the pixel count, NaN and infinity counts, range, mean and
standard deviation of a document band (--config, --band) or of one channel
of an image (--image, --channel).  Complex bands are summarized by modulus.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.Config, "config", "", "band document (YAML)")
	cmd.Flags().StringVar(&opts.Band, "band", "", "band of the document")
	cmd.Flags().StringVar(&opts.Image, "image", "", "image file")
	cmd.Flags().StringVar(&opts.Channel, "channel", "gray", "image channel (gray|red|green|blue|alpha)")
	cmd.Flags().StringVar(&opts.Window, "window", "", "region x,y,w,h (default: whole band)")
	cmd.MarkFlagsMutuallyExclusive("config", "image")

	return cmd
}

func (o *StatsOptions) read(ctx context.Context) (*raster.Buffer, error) {
	switch {
	case o.Config != "":
		if o.Band == "" {
			return nil, errors.New("--band is required with --config")
		}
		doc, err := config.Load(o.Config)
		if err != nil {
			return nil, err
		}
		b, err := doc.Build(o.Band, imaging.NewImageCache(), pixfun.NewEvaluator(nil))
		if err != nil {
			return nil, err
		}
		return b.ReadTiled(ctx, raster.FullWindow(b.Size()), 0, 0)
	case o.Image != "":
		src, err := imaging.NewImageCache().Source(o.Image, o.Channel)
		if err != nil {
			return nil, err
		}
		return src.Buffer()
	default:
		return nil, errors.New("either --config and --band, or --image, is required")
	}
}

func runStats(ctx context.Context, opts *StatsOptions, w io.Writer) error {
	var region *imaging.Region
	if opts.Window != "" {
		win, err := parseWindow(opts.Window)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --window", err)
		}
		r := win.Rect()
		region = &imaging.Region{X1: r.Min.X, Y1: r.Min.Y, X2: r.Max.X, Y2: r.Max.Y}
	}

	buf, err := opts.read(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read band", err)
	}
	stats, err := imaging.Statistics(buf, region)
	if err != nil {
		return WrapExitError(ExitCommandError, "statistics failed", err)
	}

	return newFormatter(opts.RootOptions, w).Success(stats, func(p *message.Printer, w io.Writer) {
		printStats(p, w, stats)
	})
}
