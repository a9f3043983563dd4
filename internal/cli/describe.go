package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/message"

	"github.com/ironsheep/pixfun-mcp/internal/pixfun"
)

type argSummary struct {
	Name     string    `json:"name"`
	Doc      string    `json:"doc,omitempty"`
	Default  float64   `json:"default"`
	Required bool      `json:"required,omitempty"`
	Allowed  []float64 `json:"allowed,omitempty"`
}

type functionDetail struct {
	functionSummary
	Args []argSummary `json:"args,omitempty"`
}

// NewDescribeCommand creates the describe command.
func NewDescribeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "describe <function>",
		Short:         "Show the inputs and arguments of a pixel function",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDescribe(rootOpts, args[0], cmd.OutOrStdout())
		},
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func runDescribe(opts *RootOptions, name string, w io.Writer) error {
	d, err := pixfun.Default().Resolve(name)
	if err != nil {
		return WrapExitError(ExitCommandError, "cannot describe function", err)
	}

	detail := functionDetail{functionSummary: functionSummary{
		Name:   d.Name,
		Arity:  d.Arity(),
		Input:  d.Input.String(),
		Output: d.Output.String(),
		Doc:    d.Doc,
	}}
	for _, a := range d.Args {
		detail.Args = append(detail.Args, argSummary{
			Name: a.Name, Doc: a.Doc, Default: a.Default, Required: a.Required, Allowed: a.Allowed,
		})
	}

	return newFormatter(opts, w).Success(detail, func(_ *message.Printer, w io.Writer) {
		fmt.Fprintf(w, "%s: %s\n", detail.Name, detail.Doc)
		fmt.Fprintf(w, "inputs: %s (%s -> %s)\n", detail.Arity, detail.Input, detail.Output)
		for _, a := range detail.Args {
			value := "= " + formatFloat(a.Default)
			if a.Required {
				value = "(required)"
			}
			fmt.Fprintf(w, "  %s %s  %s", a.Name, value, a.Doc)
			if len(a.Allowed) > 0 {
				allowed := make([]string, len(a.Allowed))
				for i, v := range a.Allowed {
					allowed[i] = formatFloat(v)
				}
				fmt.Fprintf(w, " [one of %s]", strings.Join(allowed, ", "))
			}
			fmt.Fprintln(w)
		}
	})
}
