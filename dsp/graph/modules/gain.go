package modules

import (
	"math"

	"github.com/cwbudde/algo-modgraph/dsp/core"
	"github.com/cwbudde/algo-modgraph/dsp/graph"
	vecmath "github.com/cwbudde/algo-vecmath"
)

// Gain slots.
const (
	GainOnOffInput      graph.SlotID = 0
	GainSignalInput     graph.SlotID = 1
	GainGainInput       graph.SlotID = 2
	GainAmplifiedOutput graph.SlotID = 4
)

// Gain scales each signal voice. The on/off input is a switch: values below
// one half mute the output. The gain input overrides the definition gain.
type Gain struct {
	*graph.Base

	gain float64
	bufs voiceBuffers
}

// NewGain returns an uninitialized gain.
func NewGain() *Gain {
	return &Gain{
		Base: graph.NewBase(TypeGain, graph.KindPlain,
			[]graph.SlotSpec{
				latched(GainOnOffInput, "on/off input"),
				fanIn(GainSignalInput, "signal input", graph.MaxValues),
				latched(GainGainInput, "gain input"),
			},
			[]graph.SlotSpec{out(GainAmplifiedOutput, "amplified output")},
		),
		gain: 1,
	}
}

// Initialize reads "gain" as a linear factor, or "db" in decibels. "db"
// wins when both are set.
func (g *Gain) Initialize(def graph.Definition) error {
	g.gain = def.Num("gain", 1)
	if db := def.Num("db", math.NaN()); !math.IsNaN(db) {
		g.gain = core.DBToLinear(db)
	}

	return nil
}

func (g *Gain) SetSampleRate(float64) {}

func (g *Gain) Prepare(cfg core.ProcessorConfig) error {
	g.bufs.prepare(cfg.BlockSize)
	return nil
}

// Enabled reports the on/off switch state for the current block.
func (g *Gain) Enabled() bool {
	return g.ScalarInput(GainOnOffInput, 1) >= 0.5
}

func (g *Gain) Process(ctx *graph.BlockContext) error {
	if !g.Enabled() {
		return nil
	}

	gain := g.ScalarInput(GainGainInput, g.gain)

	for _, v := range g.InputValues(GainSignalInput) {
		if v.Kind != graph.ValueBuffer || !validVoice(v.Voice) {
			continue
		}

		dst := g.bufs.block(v.Voice, min(len(v.Buffer), ctx.Samples))
		vecmath.ScaleBlock(dst, v.Buffer[:len(dst)], gain)
		g.AppendOutput(GainAmplifiedOutput, graph.BufferValue(v.Voice, dst))
	}

	return nil
}
