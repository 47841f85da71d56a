package modules

import (
	"github.com/cwbudde/algo-modgraph/dsp/core"
	"github.com/cwbudde/algo-modgraph/dsp/filter/biquad"
	"github.com/cwbudde/algo-modgraph/dsp/filter/design"
	"github.com/cwbudde/algo-modgraph/dsp/graph"
)

// Filter slots, shared by low-pass and high-pass.
const (
	FilterSignalInput    graph.SlotID = 0
	FilterCutoffInput    graph.SlotID = 1
	FilterResonanceInput graph.SlotID = 2
	FilterOutput         graph.SlotID = 3
)

// Normalized cutoff and resonance inputs map exponentially onto these ranges.
const (
	minCutoff    = 20.0
	maxCutoff    = 20000.0
	minResonance = 0.5
	maxResonance = 20.0
)

type designFunc func(freq, q, sampleRate float64) biquad.Coefficients

// Filter is a per-voice resonant biquad. Coefficients are recomputed only
// when cutoff, resonance or sample rate change.
type Filter struct {
	*graph.Base

	design   designFunc
	cutoff   float64
	q        float64
	rate     float64
	sections [MaxVoices]biquad.Section
	active   [MaxVoices]bool
	coeffs   biquad.Coefficients
	cached   [3]float64
	bufs     voiceBuffers
}

func newFilter(typ string, fn designFunc) *Filter {
	return &Filter{
		Base: graph.NewBase(typ, graph.KindPlain,
			[]graph.SlotSpec{
				in(FilterSignalInput, "signal input"),
				latched(FilterCutoffInput, "cutoff input"),
				latched(FilterResonanceInput, "resonance input"),
			},
			[]graph.SlotSpec{out(FilterOutput, "filtered output")},
		),
		design: fn,
		cutoff: 1000,
		q:      1 / 1.4142135623730951,
		rate:   48000,
	}
}

// NewLowPass returns an uninitialized low-pass filter.
func NewLowPass() *Filter { return newFilter(TypeLowPass, design.Lowpass) }

// NewHighPass returns an uninitialized high-pass filter.
func NewHighPass() *Filter { return newFilter(TypeHighPass, design.Highpass) }

// Initialize reads "cutoff" in Hz and "q".
func (f *Filter) Initialize(def graph.Definition) error {
	f.cutoff = def.Num("cutoff", f.cutoff)
	f.q = def.Num("q", f.q)

	return nil
}

func (f *Filter) SetSampleRate(rate float64) { f.rate = rate }

func (f *Filter) Prepare(cfg core.ProcessorConfig) error {
	f.bufs.prepare(cfg.BlockSize)
	return nil
}

// Cutoff returns the cutoff frequency and quality factor in effect.
func (f *Filter) Cutoff() (freq, q float64) {
	freq, q = f.cutoff, f.q

	if v := f.InputValues(FilterCutoffInput); len(v) > 0 {
		freq = core.ExpRange(graph.ScalarOr(v, 0), minCutoff, maxCutoff)
	}

	if v := f.InputValues(FilterResonanceInput); len(v) > 0 {
		q = core.ExpRange(graph.ScalarOr(v, 0), minResonance, maxResonance)
	}

	return freq, q
}

func (f *Filter) Process(ctx *graph.BlockContext) error {
	freq, q := f.Cutoff()
	if key := [3]float64{freq, q, f.rate}; key != f.cached {
		f.cached = key
		f.coeffs = f.design(freq, q, f.rate)
	}

	var seen [MaxVoices]bool

	for _, v := range f.InputValues(FilterSignalInput) {
		if v.Kind != graph.ValueBuffer || !validVoice(v.Voice) {
			continue
		}

		sec := &f.sections[v.Voice]
		if !f.active[v.Voice] {
			sec.Reset()
		}

		seen[v.Voice] = true
		sec.SetCoefficients(f.coeffs)

		dst := f.bufs.block(v.Voice, min(len(v.Buffer), ctx.Samples))
		sec.ProcessBlockTo(dst, v.Buffer[:len(dst)])
		f.AppendOutput(FilterOutput, graph.BufferValue(v.Voice, dst))
	}

	f.active = seen

	return nil
}

// Reset clears every voice's filter state.
func (f *Filter) Reset() {
	for i := range f.sections {
		f.sections[i].Reset()
	}

	f.active = [MaxVoices]bool{}
}
