package cli

import (
	"fmt"
	"io"

	"github.com/cwbudde/algo-modgraph/dsp/graph/modules"
	"github.com/cwbudde/algo-vecmath/cpu"
	"github.com/spf13/cobra"
)

// NewInfoCommand creates the info command.
func NewInfoCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "info",
		Short:        "Print module types and detected SIMD features",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printInfo(cmd.OutOrStdout(), rootOpts)
		},
	}
}

func printInfo(w io.Writer, opts *RootOptions) error {
	fmt.Fprintf(w, "Module types:\n")

	for _, typ := range modules.DefaultRegistry().Types() {
		fmt.Fprintf(w, "  %s\n", typ)
	}

	f := cpu.DetectFeatures()

	fmt.Fprintf(w, "\nSIMD (%s):\n", f.Architecture)
	fmt.Fprintf(w, "  sse2: %t\n", f.HasSSE2)
	fmt.Fprintf(w, "  avx2: %t\n", f.HasAVX2)
	fmt.Fprintf(w, "  neon: %t\n", f.HasNEON)
	fmt.Fprintf(w, "  forced generic: %t\n", f.ForceGeneric)

	_, err := fmt.Fprintf(w, "\nProcessing: %g Hz, %d samples per block\n", opts.SampleRate, opts.BlockSize)

	return err
}
