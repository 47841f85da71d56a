// Package cli implements the vie command line: offline rendering, patch
// inspection and build information.
package cli

import (
	"fmt"
	"io"

	"github.com/cwbudde/algo-modgraph/dsp/core"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	SampleRate float64
	BlockSize  int
}

// NewRootCommand creates the root command for the vie CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "vie",
		Short: "vie - modular audio graph host",
		Long:  "Build, inspect and render modular audio/event processing graphs described by patch files.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := opts.Config(core.ProcessOffline)
			return err
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().Float64Var(&opts.SampleRate, "sample-rate", 48000, "processing sample rate in Hz")
	cmd.PersistentFlags().IntVar(&opts.BlockSize, "block-size", 256, "samples per processing block")

	cmd.AddCommand(NewRenderCommand(opts))
	cmd.AddCommand(NewInspectCommand(opts))
	cmd.AddCommand(NewInfoCommand(opts))

	return cmd
}

// Config returns the processing configuration selected by the global flags.
func (o *RootOptions) Config(mode core.ProcessMode) (core.ProcessorConfig, error) {
	if o.SampleRate <= 0 {
		return core.ProcessorConfig{}, fmt.Errorf("%w: --sample-rate must be > 0", core.ErrInvalidConfig)
	}

	if o.BlockSize <= 0 {
		return core.ProcessorConfig{}, fmt.Errorf("%w: --block-size must be > 0", core.ErrInvalidConfig)
	}

	cfg := core.ApplyProcessorOptions(
		core.WithSampleRate(o.SampleRate),
		core.WithBlockSize(o.BlockSize),
		core.WithProcessMode(mode),
		core.WithSampleSize(core.Sample64),
	)

	return cfg, cfg.Validate()
}

// Logger returns a logger writing to w, at debug level with --verbose and
// warnings only otherwise.
func (o *RootOptions) Logger(w io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	log.SetLevel(logrus.WarnLevel)

	if o.Verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	return log
}
