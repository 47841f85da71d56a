package modules

import (
	"github.com/cwbudde/algo-modgraph/dsp/core"
	"github.com/cwbudde/algo-modgraph/dsp/graph"
	vecmath "github.com/cwbudde/algo-vecmath"
)

// Mixer slots.
const (
	MixerSignalInput graph.SlotID = 0
	MixerLevelInput  graph.SlotID = 1
	MixerMixOutput   graph.SlotID = 2
)

// Mixer sums every buffer delivered to its signal input, across links and
// voices, into one buffer on voice 0 and scales it by the level.
type Mixer struct {
	*graph.Base

	level float64
	mix   []float64
}

// NewMixer returns an uninitialized mixer.
func NewMixer() *Mixer {
	return &Mixer{
		Base: graph.NewBase(TypeMixer, graph.KindPlain,
			[]graph.SlotSpec{
				fanIn(MixerSignalInput, "signal input", graph.MaxValues),
				latched(MixerLevelInput, "level input"),
			},
			[]graph.SlotSpec{mono(MixerMixOutput, "mix output")},
		),
		level: 1,
	}
}

// Initialize reads "level" as a linear factor.
func (m *Mixer) Initialize(def graph.Definition) error {
	m.level = def.Num("level", 1)
	return nil
}

func (m *Mixer) SetSampleRate(float64) {}

func (m *Mixer) Prepare(cfg core.ProcessorConfig) error {
	m.mix = core.EnsureLen(m.mix, cfg.BlockSize)
	return nil
}

func (m *Mixer) Process(ctx *graph.BlockContext) error {
	mix := m.mix[:min(ctx.Samples, len(m.mix))]
	core.Zero(mix)

	for _, v := range m.InputValues(MixerSignalInput) {
		if v.Kind != graph.ValueBuffer {
			continue
		}

		n := min(len(v.Buffer), len(mix))
		vecmath.AddBlockInPlace(mix[:n], v.Buffer[:n])
	}

	level := m.ScalarInput(MixerLevelInput, m.level)
	if level != 1 {
		vecmath.ScaleBlock(mix, mix, level)
	}

	m.SetOutput(MixerMixOutput, graph.BufferValue(0, mix))

	return nil
}
