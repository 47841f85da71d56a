package modules

import (
	"github.com/cwbudde/algo-modgraph/dsp/core"
	"github.com/cwbudde/algo-modgraph/dsp/graph"
	vecmath "github.com/cwbudde/algo-vecmath"
)

// Multiplier slots.
const (
	MultiplierSignalInput   graph.SlotID = 0
	MultiplierFactorInput   graph.SlotID = 1
	MultiplierProductOutput graph.SlotID = 2
)

// Multiplier multiplies each signal voice by the factor buffer of the same
// voice, or by a scalar factor. Voices without a factor are silent. With
// nothing linked to the factor input the signal passes through.
type Multiplier struct {
	*graph.Base

	bufs voiceBuffers
}

// NewMultiplier returns an uninitialized multiplier.
func NewMultiplier() *Multiplier {
	return &Multiplier{
		Base: graph.NewBase(TypeMultiplier, graph.KindPlain,
			[]graph.SlotSpec{
				in(MultiplierSignalInput, "signal input"),
				in(MultiplierFactorInput, "factor input"),
			},
			[]graph.SlotSpec{out(MultiplierProductOutput, "product output")},
		),
	}
}

func (m *Multiplier) Initialize(graph.Definition) error { return nil }
func (m *Multiplier) SetSampleRate(float64)            {}

func (m *Multiplier) Prepare(cfg core.ProcessorConfig) error {
	m.bufs.prepare(cfg.BlockSize)
	return nil
}

func (m *Multiplier) Process(ctx *graph.BlockContext) error {
	factors := m.InputValues(MultiplierFactorInput)
	passthrough := len(factors) == 0 && !m.InputLinked(MultiplierFactorInput)

	for _, v := range m.InputValues(MultiplierSignalInput) {
		if v.Kind != graph.ValueBuffer || !validVoice(v.Voice) {
			continue
		}

		n := min(len(v.Buffer), ctx.Samples)
		dst := m.bufs.block(v.Voice, n)
		src := v.Buffer[:len(dst)]

		switch f, ok := findBuffer(factors, v.Voice); {
		case passthrough:
			copy(dst, src)
		case ok:
			k := min(len(dst), len(f))
			vecmath.MulBlock(dst[:k], src[:k], f[:k])
			core.Zero(dst[k:])
		default:
			if s, scalar := firstScalar(factors); scalar {
				vecmath.ScaleBlock(dst, src, s)
			} else {
				core.Zero(dst)
			}
		}

		m.AppendOutput(MultiplierProductOutput, graph.BufferValue(v.Voice, dst))
	}

	return nil
}

func firstScalar(values []graph.Value) (float64, bool) {
	for i := range values {
		if values[i].Kind == graph.ValueScalar {
			return values[i].Scalar, true
		}
	}

	return 0, false
}
