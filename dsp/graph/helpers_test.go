package graph

import (
	"errors"
	"io"
	"testing"

	"github.com/cwbudde/algo-modgraph/dsp/core"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

const (
	slotIn    SlotID = 0
	slotAux   SlotID = 1
	slotParam SlotID = 2
	slotOut   SlotID = 3
)

var errStub = errors.New("stub failure")

type stubSource struct {
	*Base
	notesOn  []NoteEvent
	notesOff []NoteEvent
	data     []DataEvent
	calls    int
}

func newStubSource() *stubSource {
	return newWideSource(1)
}

// newWideSource is a stub source whose output holds up to values values.
func newWideSource(values int) *stubSource {
	return &stubSource{Base: NewBase("stub-source", KindEventSource, nil, []SlotSpec{{ID: slotOut, Name: "out", MaxValues: values}})}
}

func (s *stubSource) Initialize(Definition) error { return nil }
func (s *stubSource) SetSampleRate(float64)      {}
func (s *stubSource) NoteOn(ev NoteEvent)        { s.notesOn = append(s.notesOn, ev) }
func (s *stubSource) NoteOff(ev NoteEvent)       { s.notesOff = append(s.notesOff, ev) }
func (s *stubSource) Data(ev DataEvent)          { s.data = append(s.data, ev) }

func (s *stubSource) Process(*BlockContext) error {
	s.calls++
	s.SetOutput(slotOut, Scalar(1))

	return nil
}

type stubAudio struct {
	*Base
	buf AudioBuffer
}

func newStubAudio() *stubAudio {
	return &stubAudio{Base: NewBase("stub-audio", KindAudioSource, nil, []SlotSpec{{ID: slotOut, Name: "out", MaxValues: 1}})}
}

func (s *stubAudio) Initialize(Definition) error { return nil }
func (s *stubAudio) SetSampleRate(float64)      {}
func (s *stubAudio) SetBuffer(buf AudioBuffer)  { s.buf = buf }

func (s *stubAudio) Process(*BlockContext) error {
	if len(s.buf.Channels) > 0 {
		s.SetOutput(slotOut, BufferValue(0, s.buf.Channels[0]))
	}

	return nil
}

type stubNode struct {
	*Base
	calls    int
	samples  int
	inputs   []Value
	rate     float64
	prepared int
	fail     error
	panics   bool

	// Prepare fails for this sample rate
	rejectRate float64
}

func newStubNode() *stubNode {
	return &stubNode{Base: NewBase("stub-node", KindPlain,
		[]SlotSpec{
			{ID: slotIn, Name: "in", FanIn: 4},
			{ID: slotAux, Name: "aux"},
			{ID: slotParam, Name: "param", Latch: true},
		},
		[]SlotSpec{{ID: slotOut, Name: "out", MaxValues: 1}},
	)}
}

func (n *stubNode) Initialize(Definition) error { return nil }
func (n *stubNode) SetSampleRate(rate float64)  { n.rate = rate }

func (n *stubNode) Prepare(cfg core.ProcessorConfig) error {
	if n.rejectRate > 0 && cfg.SampleRate == n.rejectRate {
		return errStub
	}

	n.prepared++

	return nil
}

func (n *stubNode) Process(ctx *BlockContext) error {
	n.calls++
	n.samples = ctx.Samples
	n.inputs = append(n.inputs[:0], n.InputValues(slotIn)...)

	if n.panics {
		panic("stub panic")
	}

	if n.fail != nil {
		return n.fail
	}

	sum := 1.0
	for _, v := range n.inputs {
		sum += v.Scalar
	}

	n.SetOutput(slotOut, Scalar(sum))

	return nil
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)

	return log
}

func newTestOrchestrator(t *testing.T) *Orchestrator {
	t.Helper()

	o := New(WithLogger(testLogger()))
	require.NoError(t, o.SetupProcessing(core.ProcessorConfig{
		SampleRate: 48000,
		BlockSize:  64,
		Mode:       core.ProcessOffline,
		SampleSize: core.Sample64,
	}))

	return o
}

func mustRegister(t *testing.T, o *Orchestrator, m Module) ModuleID {
	t.Helper()

	id, err := o.Register(m)
	require.NoError(t, err)

	return id
}

func mustLink(t *testing.T, o *Orchestrator, src ModuleID, srcSlot SlotID, dst ModuleID, dstSlot SlotID) {
	t.Helper()

	_, err := o.Link(src, srcSlot, dst, dstSlot)
	require.NoError(t, err)
}

func testContext(o *Orchestrator) *BlockContext {
	cfg, _ := o.Config()
	return NewBlockContext(cfg, 1, 2)
}
