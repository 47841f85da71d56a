// Command vie-play plays a patch through the default audio output device.
// The patch's event script runs from the first block and can loop.
//
// Usage:
//
//	vie-play [--loop] [--seconds S] patch.yaml
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/cwbudde/algo-modgraph/dsp/core"
	"github.com/cwbudde/algo-modgraph/dsp/graph"
	"github.com/cwbudde/algo-modgraph/dsp/graph/modules"
	"github.com/cwbudde/algo-modgraph/dsp/patch"
	pa "github.com/gordonklaus/portaudio"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type playOptions struct {
	sampleRate float64
	blockSize  int
	seconds    float64
	loop       bool
	verbose    bool
}

func main() {
	if err := newCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	opts := &playOptions{}

	cmd := &cobra.Command{
		Use:          "vie-play <patch>",
		Short:        "Play a patch on the default output device",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return play(ctx, opts, args[0])
		},
	}

	cmd.Flags().Float64Var(&opts.sampleRate, "sample-rate", 48000, "stream sample rate in Hz")
	cmd.Flags().IntVar(&opts.blockSize, "block-size", 256, "frames per callback")
	cmd.Flags().Float64Var(&opts.seconds, "seconds", 0, "stop after this many seconds (0 plays until interrupted)")
	cmd.Flags().BoolVar(&opts.loop, "loop", false, "restart the event script when it ends")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")

	return cmd
}

// host drives the orchestrator from the PortAudio callback.
type host struct {
	o      *graph.Orchestrator
	patch  *patch.Patch
	ctx    *graph.BlockContext
	block  uint64
	length uint64
	loop   bool
}

func (h *host) process(out [][]float32) {
	for _, ev := range h.patch.EventsAt(h.block) {
		_ = h.o.ProcessInputEvent(ev)
	}

	h.block++
	if h.loop && h.length > 0 && h.block >= h.length {
		h.block = 0
	}

	h.ctx.Samples = len(out[0])
	h.ctx.ClearOutputs()
	h.o.Process(h.ctx)

	bus := h.ctx.Outputs[0].Channels
	for ch := range out {
		src := bus[ch%len(bus)]
		n := min(len(out[ch]), h.ctx.Samples)

		for i := 0; i < n; i++ {
			out[ch][i] = float32(src[i])
		}

		clear(out[ch][n:])
	}
}

func play(ctx context.Context, opts *playOptions, path string) error {
	log := logrus.New()
	log.SetLevel(logrus.InfoLevel)

	if opts.verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	p, err := patch.LoadFile(path)
	if err != nil {
		return err
	}

	o := modules.NewOrchestrator(graph.WithLogger(log))
	defer o.Terminate()

	if _, err := p.Build(o); err != nil {
		return err
	}

	cfg := core.ApplyProcessorOptions(
		core.WithSampleRate(opts.sampleRate),
		core.WithBlockSize(opts.blockSize),
		core.WithProcessMode(core.ProcessRealtime),
		core.WithSampleSize(core.Sample32),
	)

	if err := o.SetupProcessing(cfg); err != nil {
		return err
	}

	if err := pa.Initialize(); err != nil {
		return fmt.Errorf("portaudio: %w", err)
	}
	defer func() {
		if err := pa.Terminate(); err != nil {
			log.WithField("error", err.Error()).Warn("PortAudio termination failed")
		}
	}()

	h := &host{o: o, patch: p, ctx: graph.NewBlockContext(cfg, 1, 2), length: p.Length(), loop: opts.loop}

	stream, err := pa.OpenDefaultStream(0, 2, cfg.SampleRate, cfg.BlockSize, h.process)
	if err != nil {
		return fmt.Errorf("portaudio: open stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("portaudio: start: %w", err)
	}
	defer stream.Stop()

	log.WithFields(logrus.Fields{
		"function":   "play",
		"patch":      path,
		"modules":    o.Count(),
		"sampleRate": cfg.SampleRate,
		"blockSize":  cfg.BlockSize,
	}).Info("Playing")

	if opts.seconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(opts.seconds*float64(time.Second)))
		defer cancel()
	}

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			o.LogFaults()
			return nil
		case <-ticker.C:
			o.LogFaults()
		}
	}
}
