package modules

import "github.com/cwbudde/algo-modgraph/dsp/graph"

// AudioIn slots.
const (
	AudioInAudioOutput graph.SlotID = 0
)

// AudioIn is the audio source for one host input bus. Each channel of the
// host buffer is emitted as a buffer value whose voice is the channel index.
type AudioIn struct {
	*graph.Base

	buf graph.AudioBuffer
}

// NewAudioIn returns an uninitialized audio-in module.
func NewAudioIn() *AudioIn {
	return &AudioIn{
		Base: graph.NewBase(TypeAudioIn, graph.KindAudioSource, nil, []graph.SlotSpec{out(AudioInAudioOutput, "audio output")}),
	}
}

func (a *AudioIn) Initialize(graph.Definition) error { return nil }
func (a *AudioIn) SetSampleRate(float64)            {}

// SetBuffer stores the host buffer for the next block.
func (a *AudioIn) SetBuffer(buf graph.AudioBuffer) { a.buf = buf }

func (a *AudioIn) Process(ctx *graph.BlockContext) error {
	for ch, samples := range a.buf.Channels {
		if ch >= MaxVoices {
			break
		}

		n := min(len(samples), ctx.Samples)
		a.AppendOutput(AudioInAudioOutput, graph.BufferValue(ch, samples[:n]))
	}

	return nil
}
