package graph

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFaultRing_DropsWhenFull(t *testing.T) {
	t.Parallel()

	var r faultRing
	for i := range faultCapacity + 6 {
		r.push(Fault{Block: uint64(i), Module: NoModule, Err: ErrNotConfigured})
	}

	var got []Fault

	r.drain(func(f Fault) { got = append(got, f) })

	require.Len(t, got, faultCapacity)
	assert.Equal(t, uint64(0), got[0].Block)
	assert.Equal(t, uint64(6), r.dropped.Load())

	r.push(Fault{Block: 99})
	got = got[:0]
	r.drain(func(f Fault) { got = append(got, f) })
	require.Len(t, got, 1)
	assert.Equal(t, uint64(99), got[0].Block)
}

func TestLogFaults(t *testing.T) {
	t.Parallel()

	log, hook := test.NewNullLogger()
	o := New(WithLogger(log))

	o.faults.push(Fault{Block: 3, Module: 2, Type: "gain", Err: errStub})
	o.faults.push(Fault{Block: 4, Module: 2, Type: "gain", Err: ErrModulePanic, Panic: "boom"})

	assert.Equal(t, 2, o.LogFaults())
	require.Len(t, hook.AllEntries(), 2)

	entry := hook.AllEntries()[1]
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "boom", entry.Data["panic"])
	assert.Equal(t, ModuleID(2), entry.Data["module"])

	assert.Zero(t, o.LogFaults())
}

func TestFault_Error(t *testing.T) {
	t.Parallel()

	f := Fault{Block: 1, Module: 4, Type: "osc", Err: errStub}
	assert.Equal(t, "block 1: module 4 (osc): stub failure", f.Error())

	f = Fault{Block: 2, Module: NoModule, Err: ErrNotConfigured}
	assert.Contains(t, f.Error(), "not configured")
}
