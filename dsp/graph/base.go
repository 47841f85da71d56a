package graph

import "fmt"

// SlotSpec declares one input or output slot of a module.
type SlotSpec struct {
	ID   SlotID
	Name string
	// MaxValues bounds how many values the slot holds; 0 means MaxValues.
	MaxValues int
	// FanIn bounds how many links may target an input slot; 0 means 1.
	FanIn int
	// Latch keeps the last delivered input values visible in later blocks
	// until a new delivery replaces them. Unlatched inputs only expose
	// values delivered during the current block.
	Latch bool
}

func (s SlotSpec) capacity() int {
	if s.MaxValues <= 0 || s.MaxValues > MaxValues {
		return MaxValues
	}

	return s.MaxValues
}

func (s SlotSpec) fanIn() int {
	if s.FanIn <= 0 {
		return 1
	}

	return s.FanIn
}

type inputSlot struct {
	spec   SlotSpec
	values []Value
	epoch  uint64
	// deliveries this epoch, and enabled incoming links that must deliver
	filled   int
	required int
	linked   int
	// output capacity reserved by incoming links
	load int
}

type outputSlot struct {
	spec   SlotSpec
	values []Value
}

// Base carries the state shared by every module: identity, slot storage,
// per-block readiness and the outgoing link list. Variants embed *Base.
//
// Readiness is counted rather than flagged: an input slot is satisfied once
// it has received one delivery per enabled incoming link in the current
// block. Preprocess starts a new block by advancing an epoch, so clearing
// readiness costs nothing per slot.
type Base struct {
	id         ModuleID
	typ        string
	name       string
	kind       Kind
	inputs     []inputSlot
	outputs    []outputSlot
	links      [MaxLinks]Link
	nLinks     int
	epoch      uint64
	registered bool
}

// NewBase builds the shared state for a module of type typ. It panics on
// duplicate slot ids or names, or when the slot tables exceed MaxSlots,
// since both are programming errors in the variant.
func NewBase(typ string, kind Kind, inputs, outputs []SlotSpec) *Base {
	if len(inputs)+len(outputs) > MaxSlots {
		panic(fmt.Sprintf("graph: module %q declares %d slots, max %d", typ, len(inputs)+len(outputs), MaxSlots))
	}

	b := &Base{
		id:      NoModule,
		typ:     typ,
		name:    typ,
		kind:    kind,
		inputs:  make([]inputSlot, len(inputs)),
		outputs: make([]outputSlot, len(outputs)),
		epoch:   1,
	}

	seen := make(map[SlotID]bool, len(inputs)+len(outputs))
	names := make(map[string]bool, len(inputs)+len(outputs))

	check := func(s SlotSpec) {
		if s.ID == NoSlot || seen[s.ID] || names[s.Name] {
			panic(fmt.Sprintf("graph: module %q: duplicate or reserved slot %d %q", typ, s.ID, s.Name))
		}

		seen[s.ID] = true
		names[s.Name] = true
	}

	for i, s := range inputs {
		check(s)
		b.inputs[i] = inputSlot{spec: s, values: make([]Value, 0, s.capacity())}
	}

	for i, s := range outputs {
		check(s)
		b.outputs[i] = outputSlot{spec: s, values: make([]Value, 0, s.capacity())}
	}

	return b
}

func (b *Base) base() *Base { return b }

// ID returns the module handle, or NoModule while unregistered.
func (b *Base) ID() ModuleID { return b.id }

// Name returns the display name. It defaults to the type.
func (b *Base) Name() string { return b.name }

// SetName changes the display name.
func (b *Base) SetName(name string) {
	if name != "" {
		b.name = name
	}
}

// Type returns the registry type name.
func (b *Base) Type() string { return b.typ }

// Kind returns the capability class.
func (b *Base) Kind() Kind { return b.kind }

// HasFinished reports whether the module has nothing left to produce.
// Variants with a natural end override it.
func (b *Base) HasFinished() bool { return false }

// Preprocess starts a new block: readiness is cleared, unlatched inputs
// are emptied and outputs are reset.
func (b *Base) Preprocess() {
	b.epoch++

	for i := range b.outputs {
		b.outputs[i].values = b.outputs[i].values[:0]
	}
}

// CanProcess reports whether every enabled incoming link has delivered
// during the current block.
func (b *Base) CanProcess() bool {
	for i := range b.inputs {
		in := &b.inputs[i]
		if in.required == 0 {
			continue
		}

		if in.epoch != b.epoch || in.filled < in.required {
			return false
		}
	}

	return true
}

// SetInputValues delivers values into an input slot and counts the
// delivery toward readiness. The first delivery of a block replaces what
// the slot held; later ones append. Linking keeps the summed source
// capacity within the slot capacity, so only direct calls can overflow;
// values beyond it are dropped.
func (b *Base) SetInputValues(slot SlotID, values []Value) {
	in := b.input(slot)
	debugAssert(in != nil, "set on unknown input slot")

	if in == nil {
		return
	}

	if in.epoch != b.epoch || in.filled == 0 {
		in.values = in.values[:0]
		in.epoch = b.epoch
		in.filled = 0
	}

	room := cap(in.values) - len(in.values)
	if len(values) > room {
		values = values[:room]
	}

	in.values = append(in.values, values...)
	in.filled++
}

// setParameter stores a single value for the next block without counting
// a delivery; a link delivery in that block replaces it.
func (b *Base) setParameter(slot SlotID, v float64) bool {
	in := b.input(slot)
	if in == nil {
		return false
	}

	in.values = append(in.values[:0], Scalar(v))
	in.epoch = b.epoch + 1
	in.filled = 0

	return true
}

// InputValues returns the values visible on an input slot in the current
// block. The slice is owned by the module.
func (b *Base) InputValues(slot SlotID) []Value {
	in := b.input(slot)
	if in == nil {
		return nil
	}

	// a parameter staged for the next block stays hidden until then
	if (in.spec.Latch && in.epoch <= b.epoch) || in.epoch == b.epoch {
		return in.values
	}

	return nil
}

// ScalarInput returns the first scalar on an input slot, or def.
func (b *Base) ScalarInput(slot SlotID, def float64) float64 {
	return ScalarOr(b.InputValues(slot), def)
}

// InputLinked reports whether an enabled link targets the input slot.
func (b *Base) InputLinked(slot SlotID) bool {
	in := b.input(slot)
	return in != nil && in.required > 0
}

// MaxInputValues returns the capacity of an input slot, or 0 if unknown.
func (b *Base) MaxInputValues(slot SlotID) int {
	in := b.input(slot)
	if in == nil {
		return 0
	}

	return cap(in.values)
}

// SetOutput replaces the values of an output slot with v.
func (b *Base) SetOutput(slot SlotID, v Value) {
	out := b.output(slot)
	debugAssert(out != nil, "write to unknown output slot")

	if out == nil {
		return
	}

	out.values = append(out.values[:0], v)
}

// AppendOutput adds v to an output slot. It reports false when the slot is
// full or unknown.
func (b *Base) AppendOutput(slot SlotID, v Value) bool {
	out := b.output(slot)
	debugAssert(out != nil, "write to unknown output slot")

	if out == nil || len(out.values) == cap(out.values) {
		return false
	}

	out.values = append(out.values, v)

	return true
}

// ClearOutput empties an output slot.
func (b *Base) ClearOutput(slot SlotID) {
	if out := b.output(slot); out != nil {
		out.values = out.values[:0]
	}
}

// OutputValues copies the values of an output slot into out and returns
// how many were copied.
func (b *Base) OutputValues(slot SlotID, out []Value) int {
	o := b.output(slot)
	if o == nil {
		return 0
	}

	return copy(out, o.values)
}

// SlotID resolves a slot name.
func (b *Base) SlotID(name string) (SlotID, bool) {
	for i := range b.inputs {
		if b.inputs[i].spec.Name == name {
			return b.inputs[i].spec.ID, true
		}
	}

	for i := range b.outputs {
		if b.outputs[i].spec.Name == name {
			return b.outputs[i].spec.ID, true
		}
	}

	return NoSlot, false
}

// SlotName returns the name of a slot, or "" if unknown.
func (b *Base) SlotName(slot SlotID) string {
	if in := b.input(slot); in != nil {
		return in.spec.Name
	}

	if out := b.output(slot); out != nil {
		return out.spec.Name
	}

	return ""
}

// InputSlots lists the input slot declarations.
func (b *Base) InputSlots() []SlotSpec {
	specs := make([]SlotSpec, len(b.inputs))
	for i := range b.inputs {
		specs[i] = b.inputs[i].spec
	}

	return specs
}

// OutputSlots lists the output slot declarations.
func (b *Base) OutputSlots() []SlotSpec {
	specs := make([]SlotSpec, len(b.outputs))
	for i := range b.outputs {
		specs[i] = b.outputs[i].spec
	}

	return specs
}

// Links returns the outgoing links in insertion order. The slice aliases
// module storage and must not be modified.
func (b *Base) Links() []Link { return b.links[:b.nLinks] }

func (b *Base) input(slot SlotID) *inputSlot {
	for i := range b.inputs {
		if b.inputs[i].spec.ID == slot {
			return &b.inputs[i]
		}
	}

	return nil
}

func (b *Base) output(slot SlotID) *outputSlot {
	for i := range b.outputs {
		if b.outputs[i].spec.ID == slot {
			return &b.outputs[i]
		}
	}

	return nil
}

func (b *Base) findLink(l Link) int {
	for i := 0; i < b.nLinks; i++ {
		if b.links[i].sameEdge(l) {
			return i
		}
	}

	return -1
}

func (b *Base) removeLinkAt(i int) {
	copy(b.links[i:b.nLinks], b.links[i+1:b.nLinks])
	b.nLinks--
	b.links[b.nLinks] = Link{}
}

func (b *Base) attach(id ModuleID) {
	b.id = id
	b.registered = true
}

func (b *Base) detach() {
	b.id = NoModule
	b.registered = false

	for b.nLinks > 0 {
		b.removeLinkAt(b.nLinks - 1)
	}

	for i := range b.inputs {
		b.inputs[i].linked = 0
		b.inputs[i].required = 0
		b.inputs[i].load = 0
	}
}
