package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcess_DiamondRunsEachModuleOnce(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator(t)
	src := newStubSource()
	a, b, c := newStubNode(), newStubNode(), newStubNode()

	sid := mustRegister(t, o, src)
	aid := mustRegister(t, o, a)
	bid := mustRegister(t, o, b)
	cid := mustRegister(t, o, c)

	mustLink(t, o, sid, slotOut, aid, slotIn)
	mustLink(t, o, sid, slotOut, bid, slotIn)
	mustLink(t, o, aid, slotOut, cid, slotIn)
	mustLink(t, o, bid, slotOut, cid, slotIn)

	o.Process(testContext(o))

	assert.Equal(t, 1, src.calls)
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)
	assert.Equal(t, 1, c.calls)

	// both branches deliver 1+1
	require.Len(t, c.inputs, 2)
	assert.InDelta(t, 2.0, c.inputs[0].Scalar, 0)
	assert.InDelta(t, 2.0, c.inputs[1].Scalar, 0)
}

func TestProcess_WaitsForEveryEnabledInput(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator(t)
	src := mustRegister(t, o, newStubSource())
	orphan := mustRegister(t, o, newStubNode())
	n := newStubNode()
	dst := mustRegister(t, o, n)

	mustLink(t, o, src, slotOut, dst, slotIn)
	mustLink(t, o, orphan, slotOut, dst, slotAux)

	ctx := testContext(o)
	o.Process(ctx)
	assert.Equal(t, 0, n.calls, "aux never delivered")

	require.NoError(t, o.DisableLink(orphan, slotOut, dst, slotAux))
	o.Process(ctx)
	assert.Equal(t, 1, n.calls)
}

func TestCanProcess_EitherDeliveryOrder(t *testing.T) {
	t.Parallel()

	for name, order := range map[string][2]SlotID{
		"in first":  {slotIn, slotAux},
		"aux first": {slotAux, slotIn},
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			o := newTestOrchestrator(t)
			a := mustRegister(t, o, newStubSource())
			b := mustRegister(t, o, newStubSource())
			n := newStubNode()
			nid := mustRegister(t, o, n)
			mustLink(t, o, a, slotOut, nid, slotIn)
			mustLink(t, o, b, slotOut, nid, slotAux)

			n.Preprocess()
			assert.False(t, n.CanProcess())

			n.SetInputValues(order[0], []Value{Scalar(1)})
			assert.False(t, n.CanProcess(), "one parent still pending")

			n.SetInputValues(order[1], []Value{Scalar(2)})
			assert.True(t, n.CanProcess())

			// deliveries do not carry into the next block
			n.Preprocess()
			assert.False(t, n.CanProcess())
		})
	}
}

func TestCanProcess_CountsDeliveriesPerSlot(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator(t)
	a := mustRegister(t, o, newStubSource())
	b := mustRegister(t, o, newStubSource())
	n := newStubNode()
	nid := mustRegister(t, o, n)
	mustLink(t, o, a, slotOut, nid, slotIn)
	mustLink(t, o, b, slotOut, nid, slotIn)

	n.Preprocess()
	n.SetInputValues(slotIn, []Value{Scalar(1)})
	assert.False(t, n.CanProcess())

	n.SetInputValues(slotIn, []Value{Scalar(2)})
	assert.True(t, n.CanProcess())
	assert.Equal(t, []Value{Scalar(1), Scalar(2)}, n.InputValues(slotIn))
}

func TestProcess_DisabledLinkDoesNotDeliver(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator(t)
	src := mustRegister(t, o, newStubSource())
	n := newStubNode()
	dst := mustRegister(t, o, n)
	mustLink(t, o, src, slotOut, dst, slotIn)
	require.NoError(t, o.DisableLink(src, slotOut, dst, slotIn))

	o.Process(testContext(o))
	assert.Equal(t, 0, n.calls, "no enabled path from a source")
}

func TestProcess_UnlatchedInputsClearEachBlock(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator(t)
	src := mustRegister(t, o, newStubSource())
	n := newStubNode()
	dst := mustRegister(t, o, n)
	mustLink(t, o, src, slotOut, dst, slotIn)

	ctx := testContext(o)
	o.Process(ctx)
	o.Process(ctx)

	assert.Equal(t, 2, n.calls)
	assert.Len(t, n.inputs, 1)
}

func TestProcess_Bypass(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator(t)
	src := newStubSource()
	sid := mustRegister(t, o, src)
	n := newStubNode()
	nid := mustRegister(t, o, n)
	mustLink(t, o, sid, slotOut, nid, slotIn)

	ctx := testContext(o)
	ctx.Outputs[0].Channels[0][0] = 0.5

	o.SetBypass(true)
	assert.True(t, o.Bypassed())
	o.Process(ctx)

	assert.Equal(t, 0, src.calls)
	assert.Equal(t, 0, n.calls)
	assert.InDelta(t, 0.5, ctx.Outputs[0].Channels[0][0], 0)

	o.SetBypass(false)
	o.Process(ctx)
	assert.Equal(t, 1, n.calls)
}

func TestProcess_FillsContext(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator(t)
	src := mustRegister(t, o, newStubSource())
	n := newStubNode()
	dst := mustRegister(t, o, n)
	mustLink(t, o, src, slotOut, dst, slotIn)

	ctx := testContext(o)
	ctx.Samples = 16
	o.Process(ctx)
	assert.Equal(t, 16, n.samples)
	assert.Equal(t, uint64(1), ctx.Block)

	ctx.Samples = 1 << 20
	o.Process(ctx)
	assert.Equal(t, 64, n.samples)
}

func TestProcess_FaultSkipsBranch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		setup func(n *stubNode)
		want  error
	}{
		{name: "error", setup: func(n *stubNode) { n.fail = errStub }, want: errStub},
		{name: "panic", setup: func(n *stubNode) { n.panics = true }, want: ErrModulePanic},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			o := newTestOrchestrator(t)
			src := mustRegister(t, o, newStubSource())
			bad := newStubNode()
			tc.setup(bad)
			badID := mustRegister(t, o, bad)
			after := newStubNode()
			afterID := mustRegister(t, o, after)
			sibling := newStubNode()
			siblingID := mustRegister(t, o, sibling)

			mustLink(t, o, src, slotOut, badID, slotIn)
			mustLink(t, o, badID, slotOut, afterID, slotIn)
			mustLink(t, o, src, slotOut, siblingID, slotIn)

			assert.NotPanics(t, func() { o.Process(testContext(o)) })

			assert.Equal(t, 1, bad.calls)
			assert.Equal(t, 0, after.calls)
			assert.Equal(t, 1, sibling.calls)

			faults, dropped := o.DrainFaults()
			require.Len(t, faults, 1)
			assert.Zero(t, dropped)
			assert.Equal(t, badID, faults[0].Module)
			require.ErrorIs(t, faults[0], tc.want)
		})
	}
}

func TestProcess_NotConfiguredRecordsFault(t *testing.T) {
	t.Parallel()

	o := New(WithLogger(testLogger()))
	src := newStubSource()
	mustRegister(t, o, src)

	o.Process(&BlockContext{})
	assert.Equal(t, 0, src.calls)

	faults, _ := o.DrainFaults()
	require.Len(t, faults, 1)
	require.ErrorIs(t, faults[0], ErrNotConfigured)
}

func TestProcess_DoesNotAllocate(t *testing.T) {
	o := newTestOrchestrator(t)
	src := mustRegister(t, o, newStubSource())
	prev := src

	for range 8 {
		n := newStubNode()
		n.inputs = make([]Value, 0, MaxValues)
		id := mustRegister(t, o, n)
		mustLink(t, o, prev, slotOut, id, slotIn)
		prev = id
	}

	ctx := testContext(o)
	o.Process(ctx)

	allocs := testing.AllocsPerRun(50, func() { o.Process(ctx) })
	assert.Zero(t, allocs)
}
