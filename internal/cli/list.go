package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/text/message"

	"github.com/ironsheep/pixfun-mcp/internal/pixfun"
)

// functionSummary is one line of the function catalog.
type functionSummary struct {
	Name   string `json:"name"`
	Arity  string `json:"arity"`
	Input  string `json:"input"`
	Output string `json:"output"`
	Doc    string `json:"doc"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "list",
		Short:        "List the pixel functions",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, cmd.OutOrStdout())
		},
	}
}

func runList(opts *RootOptions, w io.Writer) error {
	descs := pixfun.Default().Descriptors()
	funcs := make([]functionSummary, len(descs))
	for i, d := range descs {
		funcs[i] = functionSummary{
			Name:   d.Name,
			Arity:  d.Arity(),
			Input:  d.Input.String(),
			Output: d.Output.String(),
			Doc:    d.Doc,
		}
	}

	return newFormatter(opts, w).Success(funcs, func(p *message.Printer, w io.Writer) {
		fmt.Fprintf(w, "%-10s %-5s %-7s %s\n", "NAME", "ARITY", "INPUT", "OUTPUT")
		for _, f := range funcs {
			fmt.Fprintf(w, "%-10s %-5s %-7s %s\n", f.Name, f.Arity, f.Input, f.Output)
		}
		p.Fprintf(w, "\n%d functions\n", len(funcs))
	})
}
