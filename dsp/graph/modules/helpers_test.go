package modules

import (
	"io"
	"testing"

	"github.com/cwbudde/algo-modgraph/dsp/core"
	"github.com/cwbudde/algo-modgraph/dsp/graph"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

const (
	testRate  = 48000.0
	testBlock = 64
)

type inputs map[graph.SlotID][]graph.Value

func testConfig() core.ProcessorConfig {
	return core.ProcessorConfig{
		SampleRate: testRate,
		BlockSize:  testBlock,
		Mode:       core.ProcessOffline,
		SampleSize: core.Sample64,
	}
}

func testContext() *graph.BlockContext {
	return graph.NewBlockContext(testConfig(), 1, 2)
}

// prepared initializes m from params and prepares it for testConfig.
func prepared(t *testing.T, m graph.Module, params map[string]any) graph.Module {
	t.Helper()

	require.NoError(t, m.Initialize(graph.Definition{Type: m.Type(), Params: params}))
	m.SetSampleRate(testRate)

	if p, ok := m.(graph.Preparer); ok {
		require.NoError(t, p.Prepare(testConfig()))
	}

	return m
}

// step runs one block of m with the given inputs delivered.
func step(t *testing.T, m graph.Module, ctx *graph.BlockContext, in inputs) {
	t.Helper()

	m.Preprocess()

	for slot, vals := range in {
		m.SetInputValues(slot, vals)
	}

	require.True(t, m.CanProcess())
	require.NoError(t, m.Process(ctx))
}

func outputs(m graph.Module, slot graph.SlotID) []graph.Value {
	buf := make([]graph.Value, graph.MaxValues)
	n := m.OutputValues(slot, buf)

	return buf[:n]
}

func note(voice int, pitch int16, gate bool) graph.Value {
	return graph.NoteValue(voice, graph.Note{Pitch: pitch, Velocity: 1, Gate: gate, NoteID: -1})
}

// held is a gated note on voice started at onset.
func held(voice int, pitch int16, onset uint64) graph.Value {
	v := note(voice, pitch, true)
	v.Note.Onset = onset

	return v
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)

	return log
}
