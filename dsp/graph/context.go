package graph

import "github.com/cwbudde/algo-modgraph/dsp/core"

// AudioBuffer is a multichannel block of samples, one slice per channel.
type AudioBuffer struct {
	Channels [][]float64
}

// NewAudioBuffer allocates a zeroed buffer.
func NewAudioBuffer(channels, samples int) AudioBuffer {
	buf := AudioBuffer{Channels: make([][]float64, channels)}
	for ch := range buf.Channels {
		buf.Channels[ch] = make([]float64, samples)
	}

	return buf
}

// Len returns the sample count of the shortest channel.
func (b AudioBuffer) Len() int {
	if len(b.Channels) == 0 {
		return 0
	}

	n := len(b.Channels[0])
	for _, ch := range b.Channels[1:] {
		n = min(n, len(ch))
	}

	return n
}

// Clear zeroes every channel.
func (b AudioBuffer) Clear() {
	for _, ch := range b.Channels {
		core.Zero(ch)
	}
}

// BlockContext is the per-block processing context handed to modules.
// The host owns Outputs; the orchestrator fills Config, Samples and Block
// before running the first module.
type BlockContext struct {
	Config  core.ProcessorConfig
	Samples int
	Block   uint64
	Outputs []AudioBuffer
}

// NewBlockContext allocates a context with buses output buses of the given
// channel count, each sized for cfg.BlockSize.
func NewBlockContext(cfg core.ProcessorConfig, buses, channels int) *BlockContext {
	ctx := &BlockContext{Config: cfg, Samples: cfg.BlockSize, Outputs: make([]AudioBuffer, buses)}
	for i := range ctx.Outputs {
		ctx.Outputs[i] = NewAudioBuffer(channels, cfg.BlockSize)
	}

	return ctx
}

// Output returns output bus i, or false when the host did not provide it.
func (c *BlockContext) Output(bus int) (AudioBuffer, bool) {
	if bus < 0 || bus >= len(c.Outputs) {
		return AudioBuffer{}, false
	}

	return c.Outputs[bus], true
}

// ClearOutputs zeroes every output bus.
func (c *BlockContext) ClearOutputs() {
	for _, buf := range c.Outputs {
		buf.Clear()
	}
}
