package modules

import (
	"fmt"

	"github.com/cwbudde/algo-modgraph/dsp/core"
	"github.com/cwbudde/algo-modgraph/dsp/graph"
	vecmath "github.com/cwbudde/algo-vecmath"
	"github.com/google/uuid"
)

// Recorder slots.
const (
	RecorderSignalInput graph.SlotID = 0
)

// Recorder sums its input into a take of fixed length. The take buffer is
// allocated when processing is set up; recording stops when it is full.
type Recorder struct {
	*graph.Base

	seconds float64
	take    []float64
	n       int
	id      uuid.UUID
}

// NewRecorder returns an uninitialized recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		Base: graph.NewBase(TypeRecorder, graph.KindPlain,
			[]graph.SlotSpec{fanIn(RecorderSignalInput, "signal input", graph.MaxValues)},
			nil,
		),
		seconds: 10,
		id:      uuid.New(),
	}
}

// Initialize reads "seconds", the take length.
func (r *Recorder) Initialize(def graph.Definition) error {
	r.seconds = def.Num("seconds", 10)
	if r.seconds <= 0 {
		return fmt.Errorf("recorder: seconds must be > 0, got %g", r.seconds)
	}

	return nil
}

func (r *Recorder) SetSampleRate(float64) {}

// Prepare sizes the take for the configured sample rate and starts a new
// take when the size changes.
func (r *Recorder) Prepare(cfg core.ProcessorConfig) error {
	frames := int(r.seconds * cfg.SampleRate)
	if frames != len(r.take) {
		r.take = make([]float64, frames)
		r.n = 0
		r.id = uuid.New()
	}

	return nil
}

func (r *Recorder) Process(ctx *graph.BlockContext) error {
	n := min(ctx.Samples, len(r.take)-r.n)
	if n <= 0 {
		return nil
	}

	dst := r.take[r.n : r.n+n]

	for _, v := range r.InputValues(RecorderSignalInput) {
		if v.Kind != graph.ValueBuffer {
			continue
		}

		k := min(n, len(v.Buffer))
		vecmath.AddBlockInPlace(dst[:k], v.Buffer[:k])
	}

	r.n += n

	return nil
}

// Take returns the take id and the samples recorded so far. The slice
// aliases the recorder's buffer.
func (r *Recorder) Take() (uuid.UUID, []float64) {
	return r.id, r.take[:r.n]
}

// NewTake clears the buffer and starts a take with a fresh id. It must not
// run concurrently with Process.
func (r *Recorder) NewTake() uuid.UUID {
	core.Zero(r.take)
	r.n = 0
	r.id = uuid.New()

	return r.id
}

// HasFinished reports whether the take is full.
func (r *Recorder) HasFinished() bool {
	return len(r.take) > 0 && r.n == len(r.take)
}
