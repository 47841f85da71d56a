package modules

import (
	"fmt"

	"github.com/cwbudde/algo-modgraph/dsp/graph"
)

// MidiIn slots.
const (
	MidiInNoteOutput graph.SlotID = 0
)

const (
	midiNoteOff       = 0x80
	midiNoteOn        = 0x90
	midiControlChange = 0xB0
	midiAllNotesOff   = 123
)

type midiVoice struct {
	note    graph.Note
	active  bool
	release int // samples left after gate off
	started uint64
}

// MidiIn is the event source that turns host note events into voices.
// A released voice stays active with its gate off for the release time so
// downstream envelopes can finish, then it is freed.
type MidiIn struct {
	*graph.Base

	releaseSeconds float64
	rate           float64
	voices         [MaxVoices]midiVoice
	clock          uint64
}

// NewMidiIn returns an uninitialized midi-in module.
func NewMidiIn() *MidiIn {
	return &MidiIn{
		Base:           graph.NewBase(TypeMidiIn, graph.KindEventSource, nil, []graph.SlotSpec{out(MidiInNoteOutput, "note output")}),
		releaseSeconds: 1,
		rate:           48000,
	}
}

// Initialize reads "release" in seconds.
func (m *MidiIn) Initialize(def graph.Definition) error {
	m.releaseSeconds = def.Num("release", 1)
	if m.releaseSeconds < 0 {
		return fmt.Errorf("midi-in: release must be >= 0, got %g", m.releaseSeconds)
	}

	return nil
}

// SetSampleRate sets the rate release times are counted at.
func (m *MidiIn) SetSampleRate(rate float64) { m.rate = rate }

// NoteOn starts a voice, retriggering a held voice of the same pitch or
// stealing the oldest one when all are busy.
func (m *MidiIn) NoteOn(ev graph.NoteEvent) {
	if ev.Velocity <= 0 {
		m.NoteOff(ev)
		return
	}

	slot := -1

	for i := range m.voices {
		v := &m.voices[i]
		if v.active && v.note.Gate && v.note.Pitch == ev.Pitch && v.note.Channel == ev.Channel {
			slot = i
			break
		}
	}

	if slot < 0 {
		slot = m.freeVoice()
	}

	m.clock++
	m.voices[slot] = midiVoice{
		note: graph.Note{
			Channel:  ev.Channel,
			Pitch:    ev.Pitch,
			Velocity: ev.Velocity,
			Tuning:   ev.Tuning,
			NoteID:   ev.NoteID,
			Gate:     true,
			Onset:    m.clock,
		},
		active:  true,
		started: m.clock,
	}
}

func (m *MidiIn) freeVoice() int {
	oldest := 0

	for i := range m.voices {
		if !m.voices[i].active {
			return i
		}

		if m.voices[i].started < m.voices[oldest].started {
			oldest = i
		}
	}

	return oldest
}

// NoteOff releases the held voice matching the event's note id, or its
// pitch and channel when the id is unset.
func (m *MidiIn) NoteOff(ev graph.NoteEvent) {
	for i := range m.voices {
		v := &m.voices[i]
		if !v.active || !v.note.Gate {
			continue
		}

		match := v.note.Pitch == ev.Pitch && v.note.Channel == ev.Channel
		if ev.NoteID >= 0 && v.note.NoteID >= 0 {
			match = v.note.NoteID == ev.NoteID
		}

		if match {
			v.note.Gate = false
			v.release = int(m.releaseSeconds * m.rate)
		}
	}
}

// Data interprets raw MIDI note and all-notes-off messages.
func (m *MidiIn) Data(ev graph.DataEvent) {
	if ev.Size < 3 {
		return
	}

	status := ev.Bytes[0] & 0xF0
	channel := int16(ev.Bytes[0] & 0x0F)
	note := graph.NoteEvent{Channel: channel, Pitch: int16(ev.Bytes[1] & 0x7F), NoteID: -1}

	switch status {
	case midiNoteOn:
		note.Velocity = float64(ev.Bytes[2]&0x7F) / 127
		m.NoteOn(note)
	case midiNoteOff:
		m.NoteOff(note)
	case midiControlChange:
		if ev.Bytes[1] == midiAllNotesOff {
			m.releaseAll()
		}
	}
}

func (m *MidiIn) releaseAll() {
	for i := range m.voices {
		v := &m.voices[i]
		if v.active && v.note.Gate {
			v.note.Gate = false
			v.release = int(m.releaseSeconds * m.rate)
		}
	}
}

// ActiveVoices returns the number of active voices.
func (m *MidiIn) ActiveVoices() int {
	n := 0

	for i := range m.voices {
		if m.voices[i].active {
			n++
		}
	}

	return n
}

// Process emits one note value per active voice.
func (m *MidiIn) Process(ctx *graph.BlockContext) error {
	for i := range m.voices {
		v := &m.voices[i]
		if !v.active {
			continue
		}

		m.AppendOutput(MidiInNoteOutput, graph.NoteValue(i, v.note))

		if !v.note.Gate {
			v.release -= ctx.Samples
			if v.release <= 0 {
				v.active = false
			}
		}
	}

	return nil
}

// Reset frees every voice.
func (m *MidiIn) Reset() {
	m.voices = [MaxVoices]midiVoice{}
}
