package graph

import (
	"fmt"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

const faultCapacity = 64

// Fault records a failure observed while processing a block.
type Fault struct {
	Block  uint64
	Module ModuleID
	Type   string
	Err    error
	Panic  any
}

func (f Fault) Error() string {
	if f.Module == NoModule {
		return fmt.Sprintf("block %d: %v", f.Block, f.Err)
	}

	if f.Panic != nil {
		return fmt.Sprintf("block %d: module %d (%s): %v: %v", f.Block, f.Module, f.Type, f.Err, f.Panic)
	}

	return fmt.Sprintf("block %d: module %d (%s): %v", f.Block, f.Module, f.Type, f.Err)
}

func (f Fault) Unwrap() error { return f.Err }

// faultRing is a single-producer single-consumer ring. The audio side
// pushes, the control side drains.
type faultRing struct {
	buf     [faultCapacity]Fault
	head    atomic.Uint64
	tail    atomic.Uint64
	dropped atomic.Uint64
}

func (r *faultRing) push(f Fault) {
	h := r.head.Load()
	if h-r.tail.Load() >= faultCapacity {
		r.dropped.Add(1)
		return
	}

	r.buf[h%faultCapacity] = f
	r.head.Store(h + 1)
}

func (r *faultRing) drain(fn func(Fault)) {
	t := r.tail.Load()
	h := r.head.Load()

	for ; t < h; t++ {
		fn(r.buf[t%faultCapacity])
		r.buf[t%faultCapacity] = Fault{}
	}

	r.tail.Store(t)
}

// DrainFaults returns and clears the faults recorded since the last drain,
// along with the number dropped because the ring was full.
func (o *Orchestrator) DrainFaults() ([]Fault, uint64) {
	var faults []Fault

	o.faults.drain(func(f Fault) { faults = append(faults, f) })

	return faults, o.faults.dropped.Swap(0)
}

// LogFaults drains recorded faults to the logger and returns how many
// were logged.
func (o *Orchestrator) LogFaults() int {
	faults, dropped := o.DrainFaults()
	for _, f := range faults {
		entry := o.log.WithFields(logrus.Fields{
			"function": "LogFaults",
			"block":    f.Block,
			"error":    f.Err,
		})
		if f.Module != NoModule {
			entry = entry.WithFields(logrus.Fields{"module": f.Module, "type": f.Type})
		}

		if f.Panic != nil {
			entry = entry.WithField("panic", f.Panic)
		}

		entry.Warn("Module fault")
	}

	if dropped > 0 {
		o.log.WithFields(logrus.Fields{
			"function": "LogFaults",
			"dropped":  dropped,
		}).Warn("Fault ring overflowed")
	}

	return len(faults)
}
