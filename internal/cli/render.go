package cli

import (
	"fmt"
	"math"
	"os"

	"github.com/cwbudde/algo-modgraph/dsp/core"
	"github.com/cwbudde/algo-modgraph/dsp/graph"
	"github.com/cwbudde/algo-modgraph/internal/wav"
	"github.com/spf13/cobra"
)

type renderOptions struct {
	output        string
	blocks        int
	channels      int
	untilFinished bool
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render <patch>",
		Short: "Render a patch offline to a WAV file",
		Long: `Render a patch offline, applying its scripted events block by block,
and write output bus 0 as a 32-bit float WAV file.

Without --blocks the render covers the event script plus one second.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, rootOpts, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output WAV file (required)")
	cmd.Flags().IntVar(&opts.blocks, "blocks", 0, "number of blocks to render")
	cmd.Flags().IntVar(&opts.channels, "channels", 2, "output channels")
	cmd.Flags().BoolVar(&opts.untilFinished, "until-finished", false, "stop early once every module has finished")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

// renderResult summarizes an offline render.
type renderResult struct {
	Blocks  int
	Frames  int
	Peak    float64
	Faults  int
	Samples [][]float64
}

func runRender(cmd *cobra.Command, rootOpts *RootOptions, opts *renderOptions, path string) error {
	if opts.channels <= 0 {
		return fmt.Errorf("--channels must be > 0, got %d", opts.channels)
	}

	cfg, err := rootOpts.Config(core.ProcessOffline)
	if err != nil {
		return err
	}

	p, o, _, err := loadGraph(rootOpts, path, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer o.Terminate()

	blocks := opts.blocks
	if blocks <= 0 {
		blocks = int(p.Length()) + int(math.Ceil(cfg.SampleRate/float64(cfg.BlockSize)))
	}

	if err := o.SetupProcessing(cfg); err != nil {
		return err
	}

	res, err := render(o, p.EventsAt, cfg, blocks, opts.channels, opts.untilFinished)
	if err != nil {
		return err
	}

	f, err := os.Create(opts.output)
	if err != nil {
		return err
	}

	if err := wav.Encode(f, int(cfg.SampleRate), res.Samples); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", opts.output, err)
	}

	if err := f.Close(); err != nil {
		return err
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "rendered %d blocks (%.3f s) to %s, peak %.2f dBFS, %d faults\n",
		res.Blocks, float64(res.Frames)/cfg.SampleRate, opts.output, core.LinearToDB(res.Peak), res.Faults)

	return err
}

// render runs blocks of the configured graph, delivering the events
// scripted for each block first, and collects output bus 0.
func render(o *graph.Orchestrator, events func(uint64) []graph.Event, cfg core.ProcessorConfig, blocks, channels int, untilFinished bool) (renderResult, error) {
	ctx := graph.NewBlockContext(cfg, 1, channels)
	res := renderResult{Samples: make([][]float64, channels)}

	for ch := range res.Samples {
		res.Samples[ch] = make([]float64, 0, blocks*cfg.BlockSize)
	}

	for b := 0; b < blocks; b++ {
		for _, ev := range events(uint64(b)) {
			if err := o.ProcessInputEvent(ev); err != nil {
				return res, fmt.Errorf("block %d: %s event: %w", b, ev.Type, err)
			}
		}

		ctx.ClearOutputs()
		o.Process(ctx)
		res.Faults += o.LogFaults()

		for ch, buf := range ctx.Outputs[0].Channels {
			out := buf[:ctx.Samples]
			res.Samples[ch] = append(res.Samples[ch], out...)

			for _, v := range out {
				res.Peak = math.Max(res.Peak, math.Abs(v))
			}
		}

		res.Blocks++
		res.Frames += ctx.Samples

		if untilFinished && o.Finished() {
			break
		}
	}

	return res, nil
}
