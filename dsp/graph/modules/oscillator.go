package modules

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-modgraph/dsp/core"
	"github.com/cwbudde/algo-modgraph/dsp/graph"
)

// Oscillator slots.
const (
	OscillatorNoteInput     graph.SlotID = 0
	OscillatorWaveformInput graph.SlotID = 1
	OscillatorSignalOutput  graph.SlotID = 2
)

// Waveform selects the oscillator shape.
type Waveform int

const (
	WaveSine Waveform = iota
	WaveSaw
	WaveSquare
	WaveTriangle
	numWaveforms
)

var waveformNames = [...]string{"sine", "saw", "square", "triangle"}

func (w Waveform) String() string {
	if w >= 0 && w < numWaveforms {
		return waveformNames[w]
	}

	return fmt.Sprintf("waveform(%d)", int(w))
}

// ParseWaveform resolves a waveform name.
func ParseWaveform(name string) (Waveform, error) {
	for i, n := range waveformNames {
		if n == name {
			return Waveform(i), nil
		}
	}

	return WaveSine, fmt.Errorf("oscillator: unknown waveform %q", name)
}

// waveformFromNormalized splits [0, 1] into equal bands, one per waveform.
func waveformFromNormalized(v float64) Waveform {
	w := Waveform(core.Clamp(v, 0, 1) * float64(numWaveforms))
	return min(w, numWaveforms-1)
}

// Oscillator renders one band-limited waveform buffer per incoming note.
// Phase restarts when a voice's gate opens or the voice starts a new note.
type Oscillator struct {
	*graph.Base

	waveform Waveform
	level    float64
	rate     float64
	phase    [MaxVoices]float64
	gate     [MaxVoices]bool
	onset    [MaxVoices]uint64
	bufs     voiceBuffers
}

// NewOscillator returns an uninitialized oscillator.
func NewOscillator() *Oscillator {
	return &Oscillator{
		Base: graph.NewBase(TypeOscillator, graph.KindPlain,
			[]graph.SlotSpec{
				in(OscillatorNoteInput, "note input"),
				latched(OscillatorWaveformInput, "waveform input"),
			},
			[]graph.SlotSpec{out(OscillatorSignalOutput, "signal output")},
		),
		level: 1,
		rate:  48000,
	}
}

// Initialize reads "waveform" (sine, saw, square, triangle) and "level".
func (o *Oscillator) Initialize(def graph.Definition) error {
	w, err := ParseWaveform(def.Str("waveform", "sine"))
	if err != nil {
		return err
	}

	o.waveform = w
	o.level = def.Num("level", 1)

	return nil
}

func (o *Oscillator) SetSampleRate(rate float64) { o.rate = rate }

func (o *Oscillator) Prepare(cfg core.ProcessorConfig) error {
	o.bufs.prepare(cfg.BlockSize)
	return nil
}

// Waveform returns the shape in effect for the current block: the waveform
// input when it holds a value, the definition waveform otherwise.
func (o *Oscillator) Waveform() Waveform {
	if vals := o.InputValues(OscillatorWaveformInput); len(vals) > 0 {
		return waveformFromNormalized(graph.ScalarOr(vals, 0))
	}

	return o.waveform
}

func (o *Oscillator) Process(ctx *graph.BlockContext) error {
	wave := o.Waveform()

	for _, v := range o.InputValues(OscillatorNoteInput) {
		if v.Kind != graph.ValueNote || !validVoice(v.Voice) {
			continue
		}

		voice := v.Voice
		if starts(v.Note, o.gate[voice], o.onset[voice]) {
			o.phase[voice] = 0
		}

		o.gate[voice] = v.Note.Gate
		o.onset[voice] = v.Note.Onset

		buf := o.bufs.block(voice, ctx.Samples)
		o.phase[voice] = render(buf, wave, o.phase[voice], v.Note.Hz()/o.rate, o.level)
		o.AppendOutput(OscillatorSignalOutput, graph.BufferValue(voice, buf))
	}

	return nil
}

// Reset restarts every voice's phase.
func (o *Oscillator) Reset() {
	o.phase = [MaxVoices]float64{}
	o.gate = [MaxVoices]bool{}
	o.onset = [MaxVoices]uint64{}
}

// render fills buf starting at phase (cycles) and returns the next phase.
func render(buf []float64, wave Waveform, phase, inc, level float64) float64 {
	if inc >= 0.5 || inc <= 0 {
		core.Zero(buf)
		return phase
	}

	for i := range buf {
		var s float64

		switch wave {
		case WaveSine:
			s = math.Sin(2 * math.Pi * phase)
		case WaveSaw:
			s = 2*phase - 1 - polyBLEP(phase, inc)
		case WaveSquare:
			s = -1
			if phase < 0.5 {
				s = 1
			}

			s += polyBLEP(phase, inc) - polyBLEP(math.Mod(phase+0.5, 1), inc)
		case WaveTriangle:
			s = 1 - 4*math.Abs(phase-0.5)
		}

		buf[i] = level * s

		phase += inc
		if phase >= 1 {
			phase--
		}
	}

	return phase
}

// polyBLEP is the two-sample polynomial correction for a unit step at
// phase 0.
func polyBLEP(t, dt float64) float64 {
	switch {
	case t < dt:
		t /= dt
		return t + t - t*t - 1
	case t > 1-dt:
		t = (t - 1) / dt
		return t*t + t + t + 1
	default:
		return 0
	}
}
