package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessInputEvent_RoutesByType(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator(t)
	src := newStubSource()
	mustRegister(t, o, src)

	require.NoError(t, o.ProcessInputEvent(NoteOn(0, 60, 0.8)))
	require.NoError(t, o.ProcessInputEvent(NoteOff(0, 60)))
	require.NoError(t, o.ProcessInputEvent(DataBytes(0, 0xB0, 7, 100)))
	require.NoError(t, o.ProcessInputEvent(Event{Type: EventPolyPressure}))

	require.Len(t, src.notesOn, 1)
	assert.Equal(t, int16(60), src.notesOn[0].Pitch)
	assert.InDelta(t, 0.8, src.notesOn[0].Velocity, 0)
	assert.Len(t, src.notesOff, 1)
	require.Len(t, src.data, 1)
	assert.Equal(t, 3, src.data[0].Size)
	assert.Equal(t, byte(7), src.data[0].Bytes[1])
}

func TestProcessInputEvent_UnknownBus(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator(t)
	require.ErrorIs(t, o.ProcessInputEvent(NoteOn(0, 60, 1)), ErrInvalidReference)

	mustRegister(t, o, newStubSource())
	require.ErrorIs(t, o.ProcessInputEvent(NoteOn(1, 60, 1)), ErrInvalidReference)
	require.ErrorIs(t, o.ProcessInputEvent(NoteOn(-1, 60, 1)), ErrInvalidReference)
}

func TestProcessInputAudio(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator(t)
	aid := mustRegister(t, o, newStubAudio())
	n := newStubNode()
	nid := mustRegister(t, o, n)
	mustLink(t, o, aid, slotOut, nid, slotIn)

	buf := NewAudioBuffer(1, 64)
	buf.Channels[0][3] = 0.25

	require.NoError(t, o.ProcessInputAudio(buf, 0))
	require.ErrorIs(t, o.ProcessInputAudio(buf, 1), ErrInvalidReference)

	o.Process(testContext(o))

	require.Len(t, n.inputs, 1)
	assert.Equal(t, ValueBuffer, n.inputs[0].Kind)
	assert.InDelta(t, 0.25, n.inputs[0].Buffer[3], 0)
}

func TestParameterChanged_DeliversToSlot(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator(t)

	var target *stubNode
	for range 4 {
		target = newStubNode()
		mustRegister(t, o, target)
	}

	require.Equal(t, ModuleID(3), target.ID())

	id := uint64(3<<16 | 2)
	assert.Equal(t, uint32(id), ParameterID(3, slotParam))
	require.NoError(t, o.ParameterChanged(id, 0, 0.75))

	o.Process(testContext(o))

	assert.Equal(t, []Value{Scalar(0.75)}, target.InputValues(slotParam))

	// latched across blocks
	o.Process(testContext(o))
	assert.InDelta(t, 0.75, target.ScalarInput(slotParam, 0), 0)
}

func TestParameterChanged_LinkDeliveryReplacesValue(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator(t)
	src := mustRegister(t, o, newStubSource())

	linked := newStubNode()
	lid := mustRegister(t, o, linked)
	mustLink(t, o, src, slotOut, lid, slotParam)

	free := newStubNode()
	fid := mustRegister(t, o, free)

	require.NoError(t, o.ParameterChanged(uint64(ParameterID(lid, slotParam)), 0, 0.75))
	require.NoError(t, o.ParameterChanged(uint64(ParameterID(fid, slotParam)), 0, 0.75))

	o.Process(testContext(o))

	assert.Equal(t, []Value{Scalar(1)}, linked.InputValues(slotParam), "link delivery wins")
	assert.Equal(t, []Value{Scalar(0.75)}, free.InputValues(slotParam))

	// with the link disabled nothing overwrites the staged value
	require.NoError(t, o.DisableLink(src, slotOut, lid, slotParam))
	require.NoError(t, o.ParameterChanged(uint64(ParameterID(lid, slotParam)), 0, 0.5))

	o.Process(testContext(o))
	assert.Equal(t, []Value{Scalar(0.5)}, linked.InputValues(slotParam))
}

func TestParameterChanged_InvalidIDs(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator(t)
	mustRegister(t, o, newStubNode())

	for _, id := range []uint64{
		uint64(ParameterID(1, slotParam)),
		uint64(ParameterID(0, slotOut)),
		uint64(ParameterID(0, 9)),
		1 << 40,
	} {
		require.ErrorIs(t, o.ParameterChanged(id, 0, 1), ErrInvalidReference, "id %#x", id)
	}
}
