package graph

import "github.com/cwbudde/algo-modgraph/dsp/core"

// Module is a processing node. The set of variants is closed to types that
// embed *Base, which supplies slot storage, readiness tracking and the
// outgoing link list. A variant implements Initialize, SetSampleRate and
// Process; everything else comes from Base.
type Module interface {
	ID() ModuleID
	Name() string
	Type() string
	Kind() Kind

	// Initialize reads construction parameters. Called once, before the
	// module is registered.
	Initialize(def Definition) error
	// SetSampleRate recomputes sample-rate dependent coefficients.
	SetSampleRate(rate float64)
	// Process computes outputs from the current inputs. Called at most once
	// per block and only when CanProcess is true.
	Process(ctx *BlockContext) error

	Preprocess()
	CanProcess() bool
	HasFinished() bool

	OutputValues(slot SlotID, out []Value) int
	SetInputValues(slot SlotID, values []Value)
	MaxInputValues(slot SlotID) int
	SlotID(name string) (SlotID, bool)
	SlotName(slot SlotID) string
	InputSlots() []SlotSpec
	OutputSlots() []SlotSpec
	Links() []Link

	base() *Base
}

// EventSource is a module that receives host events for one event bus.
type EventSource interface {
	Module
	NoteOn(ev NoteEvent)
	NoteOff(ev NoteEvent)
	Data(ev DataEvent)
}

// AudioSource is a module that receives host audio for one input bus.
type AudioSource interface {
	Module
	SetBuffer(buf AudioBuffer)
}

// Preparer is implemented by modules that allocate block-sized state.
// Prepare runs on the control side whenever the processing setup changes
// and before a module joins a configured graph.
type Preparer interface {
	Prepare(cfg core.ProcessorConfig) error
}

// Resetter is implemented by modules with runtime state that can be cleared
// without re-preparing.
type Resetter interface {
	Reset()
}
