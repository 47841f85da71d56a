package graph

import "fmt"

// Graph capacities. Every per-block structure is sized from these.
const (
	MaxModules = 128 // modules per graph
	MaxLinks   = 32  // outgoing links per module
	MaxValues  = 32  // values held by one slot
	MaxSlots   = 16  // input plus output slots per module
)

// ModuleID is a stable module handle. It is assigned on registration and
// kept until the module is deleted; deleting other modules never changes it.
type ModuleID uint16

// NoModule marks an unassigned module handle.
const NoModule ModuleID = 0xFFFF

// SlotID identifies an input or output slot, unique within its module.
type SlotID uint16

// NoSlot marks an unknown slot.
const NoSlot SlotID = 0xFFFF

// Kind is the capability class of a module, fixed at construction.
type Kind uint8

const (
	KindPlain Kind = iota
	KindEventSource
	KindAudioSource
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindEventSource:
		return "event-source"
	case KindAudioSource:
		return "audio-source"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ParameterID encodes a module input slot as a host parameter id:
// the module handle in the upper 16 bits, the slot in the lower 16.
func ParameterID(module ModuleID, slot SlotID) uint32 {
	return uint32(module)<<16 | uint32(slot)
}

// SplitParameterID decodes a host parameter id. ok is false when the id
// does not fit the 32-bit module/slot layout.
func SplitParameterID(id uint64) (module ModuleID, slot SlotID, ok bool) {
	if id>>32 != 0 {
		return NoModule, NoSlot, false
	}

	return ModuleID(id >> 16), SlotID(id & 0xFFFF), true
}

// Link is a directed edge from an output slot of Source to an input slot of
// Target. Links are values stored in the source module's adjacency list and
// refer to modules by handle only.
type Link struct {
	Enabled    bool
	Source     ModuleID
	SourceSlot SlotID
	Target     ModuleID
	TargetSlot SlotID
}

func (l Link) sameEdge(o Link) bool {
	return l.Source == o.Source && l.SourceSlot == o.SourceSlot &&
		l.Target == o.Target && l.TargetSlot == o.TargetSlot
}

// String formats the link as "src:slot -> dst:slot".
func (l Link) String() string {
	state := "enabled"
	if !l.Enabled {
		state = "disabled"
	}

	return fmt.Sprintf("%d:%d -> %d:%d (%s)", l.Source, l.SourceSlot, l.Target, l.TargetSlot, state)
}
