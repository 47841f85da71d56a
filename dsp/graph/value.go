package graph

import "github.com/cwbudde/algo-modgraph/dsp/core"

// ValueKind tags the payload carried by a Value.
type ValueKind uint8

const (
	ValueNone ValueKind = iota
	ValueScalar
	ValueBuffer
	ValueNote
)

// Note is a voice state delivered between modules.
type Note struct {
	Channel  int16
	Pitch    int16
	Velocity float64
	Tuning   float64 // cents
	NoteID   int32
	Gate     bool
	Onset    uint64 // changes whenever the voice starts a new note
}

// Hz returns the note frequency.
func (n Note) Hz() float64 {
	return core.PitchToHz(int(n.Pitch), n.Tuning)
}

// Value is one item delivered to or produced by a slot. Voice associates
// values that belong to the same note across modules. Buffer values
// reference memory owned by the producing module and are only valid for the
// current block; receivers must not write to them.
type Value struct {
	Kind   ValueKind
	Voice  int
	Scalar float64
	Buffer []float64
	Note   Note
}

// Scalar wraps a single control value.
func Scalar(v float64) Value {
	return Value{Kind: ValueScalar, Scalar: v}
}

// BufferValue wraps a block of samples for a voice.
func BufferValue(voice int, buf []float64) Value {
	return Value{Kind: ValueBuffer, Voice: voice, Buffer: buf}
}

// NoteValue wraps a voice state.
func NoteValue(voice int, n Note) Value {
	return Value{Kind: ValueNote, Voice: voice, Note: n}
}

// ScalarOr returns the first scalar in values, or def when there is none.
func ScalarOr(values []Value, def float64) float64 {
	for i := range values {
		if values[i].Kind == ValueScalar {
			return values[i].Scalar
		}
	}

	return def
}
