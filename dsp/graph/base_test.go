package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBase_PanicsOnBadSlotTables(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		NewBase("dup", KindPlain, []SlotSpec{{ID: 0, Name: "a"}}, []SlotSpec{{ID: 0, Name: "b"}})
	})
	assert.Panics(t, func() {
		NewBase("dup-name", KindPlain, []SlotSpec{{ID: 0, Name: "a"}}, []SlotSpec{{ID: 1, Name: "a"}})
	})

	many := make([]SlotSpec, MaxSlots+1)
	for i := range many {
		many[i] = SlotSpec{ID: SlotID(i), Name: string(rune('a' + i))}
	}

	assert.Panics(t, func() { NewBase("many", KindPlain, many, nil) })
}

func TestBase_SlotLookup(t *testing.T) {
	t.Parallel()

	n := newStubNode()

	id, ok := n.SlotID("param")
	require.True(t, ok)
	assert.Equal(t, slotParam, id)
	assert.Equal(t, "out", n.SlotName(slotOut))
	assert.Empty(t, n.SlotName(42))

	_, ok = n.SlotID("missing")
	assert.False(t, ok)

	assert.Len(t, n.InputSlots(), 3)
	assert.Len(t, n.OutputSlots(), 1)
	assert.Equal(t, MaxValues, n.MaxInputValues(slotIn))
	assert.Zero(t, n.MaxInputValues(slotOut))
}

func TestBase_InputCapacityTruncates(t *testing.T) {
	t.Parallel()

	b := NewBase("small", KindPlain, []SlotSpec{{ID: 0, Name: "in", MaxValues: 2, FanIn: 2}}, nil)
	b.Preprocess()

	b.SetInputValues(0, []Value{Scalar(1), Scalar(2), Scalar(3)})
	assert.Len(t, b.InputValues(0), 2)

	b.SetInputValues(0, []Value{Scalar(4)})
	assert.Len(t, b.InputValues(0), 2, "full slot drops further values")
}

func TestBase_UnlatchedValuesExpire(t *testing.T) {
	t.Parallel()

	b := NewBase("expire", KindPlain, []SlotSpec{
		{ID: 0, Name: "plain"},
		{ID: 1, Name: "latched", Latch: true},
	}, nil)

	b.Preprocess()
	b.SetInputValues(0, []Value{Scalar(1)})
	b.SetInputValues(1, []Value{Scalar(2)})

	b.Preprocess()
	assert.Empty(t, b.InputValues(0))
	assert.InDelta(t, 2.0, b.ScalarInput(1, 0), 0)

	b.SetInputValues(1, []Value{Scalar(3)})
	assert.Equal(t, []Value{Scalar(3)}, b.InputValues(1), "new block replaces latched values")
}

func TestBase_Outputs(t *testing.T) {
	t.Parallel()

	b := NewBase("out", KindPlain, nil, []SlotSpec{{ID: 0, Name: "out", MaxValues: 2}})

	assert.True(t, b.AppendOutput(0, Scalar(1)))
	assert.True(t, b.AppendOutput(0, Scalar(2)))
	assert.False(t, b.AppendOutput(0, Scalar(3)))

	dst := make([]Value, 1)
	assert.Equal(t, 1, b.OutputValues(0, dst))

	dst = make([]Value, MaxValues)
	assert.Equal(t, 2, b.OutputValues(0, dst))
	assert.Zero(t, b.OutputValues(9, dst))

	b.Preprocess()
	assert.Zero(t, b.OutputValues(0, dst))
}
