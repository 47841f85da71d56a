package modules

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-modgraph/dsp/core"
	"github.com/cwbudde/algo-modgraph/dsp/graph"
	"github.com/cwbudde/algo-modgraph/internal/wav"
)

// Sample slots.
const (
	SampleNoteInput    graph.SlotID = 0
	SampleSampleOutput graph.SlotID = 1
)

type sampleVoice struct {
	pos      float64
	step     float64
	velocity float64
	playing  bool
	gate     bool
	onset    uint64
}

// Sample is a one-shot sample player. A rising gate or a new onset on a voice
// starts playback from the beginning, transposed by the note's distance from
// the root pitch; playback continues to the end regardless of note-off.
type Sample struct {
	*graph.Base

	path      string
	root      int
	gain      float64
	data      []float64
	clipRate  float64
	rate      float64
	voices    [MaxVoices]sampleVoice
	triggered bool
	bufs      voiceBuffers
}

// NewSample returns an uninitialized sample player.
func NewSample() *Sample {
	return &Sample{
		Base: graph.NewBase(TypeSample, graph.KindPlain,
			[]graph.SlotSpec{in(SampleNoteInput, "note input")},
			[]graph.SlotSpec{out(SampleSampleOutput, "sample output")},
		),
		root: 60,
		gain: 1,
		rate: 48000,
	}
}

// Initialize reads "path" (required), "root" pitch and "gain", and loads
// the file.
func (s *Sample) Initialize(def graph.Definition) error {
	s.path = def.Str("path", "")
	s.root = def.Int("root", 60)
	s.gain = def.Num("gain", 1)

	if s.path == "" {
		return fmt.Errorf("sample: path is required")
	}

	clip, err := LoadClip(s.path)
	if err != nil {
		return err
	}

	s.SetClip(clip)

	return nil
}

// SetClip replaces the sample data, mixing channels down to mono.
func (s *Sample) SetClip(clip *wav.Clip) {
	s.clipRate = float64(clip.SampleRate)
	s.data = make([]float64, clip.Frames())

	if len(clip.Channels) == 0 {
		return
	}

	for _, ch := range clip.Channels {
		core.AddInto(s.data, ch)
	}

	if n := len(clip.Channels); n > 1 {
		for i := range s.data {
			s.data[i] /= float64(n)
		}
	}
}

// Len returns the sample length in frames.
func (s *Sample) Len() int { return len(s.data) }

func (s *Sample) SetSampleRate(rate float64) { s.rate = rate }

func (s *Sample) Prepare(cfg core.ProcessorConfig) error {
	s.bufs.prepare(cfg.BlockSize)
	return nil
}

func (s *Sample) Process(ctx *graph.BlockContext) error {
	for _, v := range s.InputValues(SampleNoteInput) {
		if v.Kind != graph.ValueNote || !validVoice(v.Voice) {
			continue
		}

		st := &s.voices[v.Voice]
		if starts(v.Note, st.gate, st.onset) {
			semitones := float64(int(v.Note.Pitch)-s.root) + v.Note.Tuning/100
			*st = sampleVoice{
				step:     s.clipRate / s.rate * math.Exp2(semitones/12),
				velocity: v.Note.Velocity,
				playing:  len(s.data) > 0,
			}
			s.triggered = true
		}

		st.gate = v.Note.Gate
		st.onset = v.Note.Onset
	}

	for i := range s.voices {
		st := &s.voices[i]
		if !st.playing {
			continue
		}

		buf := s.bufs.block(i, ctx.Samples)
		s.play(st, buf)
		s.AppendOutput(SampleSampleOutput, graph.BufferValue(i, buf))
	}

	return nil
}

// play renders with linear interpolation and stops at the last frame.
func (s *Sample) play(st *sampleVoice, buf []float64) {
	last := float64(len(s.data) - 1)
	level := s.gain * st.velocity

	for i := range buf {
		if !st.playing || st.pos > last {
			st.playing = false
			buf[i] = 0

			continue
		}

		idx := int(st.pos)
		frac := st.pos - float64(idx)

		x := s.data[idx]
		if idx+1 < len(s.data) {
			x += frac * (s.data[idx+1] - x)
		}

		buf[i] = level * x
		st.pos += st.step
	}
}

// HasFinished reports whether every triggered voice has played to the end.
func (s *Sample) HasFinished() bool {
	if !s.triggered {
		return false
	}

	for i := range s.voices {
		if s.voices[i].playing {
			return false
		}
	}

	return true
}

// Reset stops playback.
func (s *Sample) Reset() {
	s.voices = [MaxVoices]sampleVoice{}
	s.triggered = false
}
