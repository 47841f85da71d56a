package modules

import (
	"fmt"

	"github.com/cwbudde/algo-modgraph/dsp/core"
	"github.com/cwbudde/algo-modgraph/dsp/graph"
)

// Envelope slots.
const (
	EnvelopeNoteInput    graph.SlotID = 0
	EnvelopeAttackInput  graph.SlotID = 1
	EnvelopeDecayInput   graph.SlotID = 2
	EnvelopeSustainInput graph.SlotID = 3
	EnvelopeReleaseInput graph.SlotID = 4
	EnvelopeOutput       graph.SlotID = 5
)

// Envelope times controlled by normalized inputs span this range, in seconds.
const (
	minEnvelopeTime = 0.001
	maxEnvelopeTime = 10
)

type envStage uint8

const (
	stageIdle envStage = iota
	stageAttack
	stageDecay
	stageSustain
	stageRelease
)

type envVoice struct {
	stage   envStage
	level   float64
	peak    float64
	relStep float64
	gate    bool
	onset   uint64
}

// ADSR times in seconds and sustain level in [0, 1].
type ADSR struct {
	Attack, Decay, Sustain, Release float64
}

// Envelope renders a linear ADSR buffer per incoming note, scaled by the
// note velocity. A voice absent from the note input is reset.
type Envelope struct {
	*graph.Base

	adsr   ADSR
	rate   float64
	voices [MaxVoices]envVoice
	seen   [MaxVoices]bool
	bufs   voiceBuffers
}

// NewEnvelope returns an uninitialized envelope.
func NewEnvelope() *Envelope {
	return &Envelope{
		Base: graph.NewBase(TypeEnvelope, graph.KindPlain,
			[]graph.SlotSpec{
				in(EnvelopeNoteInput, "note input"),
				latched(EnvelopeAttackInput, "attack input"),
				latched(EnvelopeDecayInput, "decay input"),
				latched(EnvelopeSustainInput, "sustain input"),
				latched(EnvelopeReleaseInput, "release input"),
			},
			[]graph.SlotSpec{out(EnvelopeOutput, "envelope output")},
		),
		adsr: ADSR{Attack: 0.01, Decay: 0.1, Sustain: 0.8, Release: 0.3},
		rate: 48000,
	}
}

// Initialize reads "attack", "decay", "release" in seconds and "sustain".
func (e *Envelope) Initialize(def graph.Definition) error {
	a := ADSR{
		Attack:  def.Num("attack", e.adsr.Attack),
		Decay:   def.Num("decay", e.adsr.Decay),
		Sustain: def.Num("sustain", e.adsr.Sustain),
		Release: def.Num("release", e.adsr.Release),
	}

	if a.Attack < 0 || a.Decay < 0 || a.Release < 0 {
		return fmt.Errorf("envelope: times must be >= 0, got %+v", a)
	}

	if a.Sustain < 0 || a.Sustain > 1 {
		return fmt.Errorf("envelope: sustain must be in [0, 1], got %g", a.Sustain)
	}

	e.adsr = a

	return nil
}

func (e *Envelope) SetSampleRate(rate float64) { e.rate = rate }

func (e *Envelope) Prepare(cfg core.ProcessorConfig) error {
	e.bufs.prepare(cfg.BlockSize)
	return nil
}

// Settings returns the times in effect for the current block.
func (e *Envelope) Settings() ADSR {
	a := e.adsr

	if v := e.InputValues(EnvelopeAttackInput); len(v) > 0 {
		a.Attack = core.ExpRange(graph.ScalarOr(v, 0), minEnvelopeTime, maxEnvelopeTime)
	}

	if v := e.InputValues(EnvelopeDecayInput); len(v) > 0 {
		a.Decay = core.ExpRange(graph.ScalarOr(v, 0), minEnvelopeTime, maxEnvelopeTime)
	}

	if v := e.InputValues(EnvelopeSustainInput); len(v) > 0 {
		a.Sustain = core.LinRange(graph.ScalarOr(v, 0), 0, 1)
	}

	if v := e.InputValues(EnvelopeReleaseInput); len(v) > 0 {
		a.Release = core.ExpRange(graph.ScalarOr(v, 0), minEnvelopeTime, maxEnvelopeTime)
	}

	return a
}

func (e *Envelope) Process(ctx *graph.BlockContext) error {
	a := e.Settings()
	e.seen = [MaxVoices]bool{}

	for _, v := range e.InputValues(EnvelopeNoteInput) {
		if v.Kind != graph.ValueNote || !validVoice(v.Voice) {
			continue
		}

		voice := v.Voice
		e.seen[voice] = true
		st := &e.voices[voice]

		switch {
		case starts(v.Note, st.gate, st.onset):
			st.stage = stageAttack
			st.peak = v.Note.Velocity
		case !v.Note.Gate && st.gate:
			st.stage = stageRelease
			st.relStep = st.level / max(a.Release*e.rate, 1)
		}

		st.gate = v.Note.Gate
		st.onset = v.Note.Onset

		buf := e.bufs.block(voice, ctx.Samples)
		e.render(st, a, buf)
		e.AppendOutput(EnvelopeOutput, graph.BufferValue(voice, buf))
	}

	for i := range e.voices {
		if !e.seen[i] {
			e.voices[i] = envVoice{}
		}
	}

	return nil
}

func (e *Envelope) render(st *envVoice, a ADSR, buf []float64) {
	sustain := a.Sustain * st.peak

	for i := range buf {
		switch st.stage {
		case stageAttack:
			if a.Attack <= 0 {
				st.level = st.peak
			} else {
				st.level += st.peak / (a.Attack * e.rate)
			}

			if st.level >= st.peak {
				st.level = st.peak
				st.stage = stageDecay
			}
		case stageDecay:
			if a.Decay <= 0 {
				st.level = sustain
			} else {
				st.level -= (st.peak - sustain) / (a.Decay * e.rate)
			}

			if st.level <= sustain {
				st.level = sustain
				st.stage = stageSustain
			}
		case stageSustain:
			st.level = sustain
		case stageRelease:
			st.level -= st.relStep
			if st.level <= 0 {
				st.level = 0
				st.stage = stageIdle
			}
		case stageIdle:
			st.level = 0
		}

		buf[i] = st.level
	}
}

// Reset returns every voice to idle.
func (e *Envelope) Reset() {
	e.voices = [MaxVoices]envVoice{}
}
