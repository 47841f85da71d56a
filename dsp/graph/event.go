package graph

import "fmt"

// EventType tags the payload of an Event.
type EventType uint8

const (
	EventNoteOn EventType = iota
	EventNoteOff
	EventData
	EventPolyPressure
	EventNoteExpressionValue
	EventNoteExpressionText
	EventChord
	EventScale
	EventLegacyMIDICCOut
)

var eventTypeNames = [...]string{
	EventNoteOn:              "note-on",
	EventNoteOff:             "note-off",
	EventData:                "data",
	EventPolyPressure:        "poly-pressure",
	EventNoteExpressionValue: "note-expression-value",
	EventNoteExpressionText:  "note-expression-text",
	EventChord:               "chord",
	EventScale:               "scale",
	EventLegacyMIDICCOut:     "legacy-midi-cc-out",
}

// String returns the event type name.
func (t EventType) String() string {
	if int(t) < len(eventTypeNames) {
		return eventTypeNames[t]
	}

	return fmt.Sprintf("event(%d)", uint8(t))
}

// ParseEventType resolves an event type name.
func ParseEventType(name string) (EventType, error) {
	for i, n := range eventTypeNames {
		if n == name {
			return EventType(i), nil
		}
	}

	return 0, fmt.Errorf("graph: unknown event type %q", name)
}

// NoteEvent is the payload of note-on and note-off events.
type NoteEvent struct {
	Channel  int16
	Pitch    int16
	Velocity float64 // normalized
	Tuning   float64 // cents
	Length   int32
	NoteID   int32
}

// DataEvent carries raw bytes, typically a MIDI message.
type DataEvent struct {
	Size  int
	Bytes [16]byte
}

// PolyPressureEvent is per-note aftertouch.
type PolyPressureEvent struct {
	Channel  int16
	Pitch    int16
	Pressure float64
	NoteID   int32
}

// NoteExpressionValueEvent changes a per-note expression value.
type NoteExpressionValueEvent struct {
	TypeID uint32
	NoteID int32
	Value  float64
}

// NoteExpressionTextEvent changes a per-note text expression.
type NoteExpressionTextEvent struct {
	TypeID uint32
	NoteID int32
	Text   string
}

// ChordEvent describes the current chord.
type ChordEvent struct {
	Root     int16
	BassNote int16
	Mask     int16
	Text     string
}

// ScaleEvent describes the current scale.
type ScaleEvent struct {
	Root int16
	Mask int16
	Text string
}

// LegacyMIDICCOutEvent is a controller change emitted by a plugin.
type LegacyMIDICCOutEvent struct {
	ControlNumber uint8
	Channel       int8
	Value         int8
	Value2        int8
}

// Event is a host-delivered musical event. Type selects which payload
// field is meaningful.
type Event struct {
	BusIndex     int
	SampleOffset int
	Type         EventType

	Note            NoteEvent
	Data            DataEvent
	PolyPressure    PolyPressureEvent
	ExpressionValue NoteExpressionValueEvent
	ExpressionText  NoteExpressionTextEvent
	Chord           ChordEvent
	Scale           ScaleEvent
	LegacyCCOut     LegacyMIDICCOutEvent
}

// NoteOn builds a note-on event for bus.
func NoteOn(bus int, pitch int16, velocity float64) Event {
	return Event{BusIndex: bus, Type: EventNoteOn, Note: NoteEvent{Pitch: pitch, Velocity: velocity, NoteID: -1}}
}

// NoteOff builds a note-off event for bus.
func NoteOff(bus int, pitch int16) Event {
	return Event{BusIndex: bus, Type: EventNoteOff, Note: NoteEvent{Pitch: pitch, NoteID: -1}}
}

// DataBytes builds a data event carrying up to 16 bytes.
func DataBytes(bus int, b ...byte) Event {
	ev := Event{BusIndex: bus, Type: EventData}
	ev.Data.Size = copy(ev.Data.Bytes[:], b)

	return ev
}
