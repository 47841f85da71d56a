package modules

import "github.com/cwbudde/algo-modgraph/dsp/graph"

// MaxVoices bounds polyphony. It fits within graph.MaxValues so one slot
// carries every voice.
const MaxVoices = 16

func validVoice(v int) bool { return v >= 0 && v < MaxVoices }

// voiceBuffers holds one block-sized buffer per voice, sized in Prepare.
type voiceBuffers [MaxVoices][]float64

func (vb *voiceBuffers) prepare(blockSize int) {
	for i := range vb {
		if cap(vb[i]) < blockSize {
			vb[i] = make([]float64, blockSize)
		}

		vb[i] = vb[i][:blockSize]
	}
}

// block returns the first n samples of voice's buffer, clamped to its size.
func (vb *voiceBuffers) block(voice, n int) []float64 {
	buf := vb[voice]
	if n > len(buf) {
		n = len(buf)
	}

	return buf[:n]
}

// starts reports whether n begins a note on a voice last seen with gate and
// onset: the gate opened, or the voice was restarted while held.
func starts(n graph.Note, gate bool, onset uint64) bool {
	return n.Gate && (!gate || n.Onset != onset)
}

func in(id graph.SlotID, name string) graph.SlotSpec {
	return graph.SlotSpec{ID: id, Name: name}
}

func latched(id graph.SlotID, name string) graph.SlotSpec {
	return graph.SlotSpec{ID: id, Name: name, Latch: true, MaxValues: 1}
}

func fanIn(id graph.SlotID, name string, links int) graph.SlotSpec {
	return graph.SlotSpec{ID: id, Name: name, FanIn: links}
}

// out is a per-voice output: at most one value per voice each block.
func out(id graph.SlotID, name string) graph.SlotSpec {
	return graph.SlotSpec{ID: id, Name: name, MaxValues: MaxVoices}
}

func mono(id graph.SlotID, name string) graph.SlotSpec {
	return graph.SlotSpec{ID: id, Name: name, MaxValues: 1}
}

// findBuffer returns the buffer value for voice among values.
func findBuffer(values []graph.Value, voice int) ([]float64, bool) {
	for i := range values {
		if values[i].Kind == graph.ValueBuffer && values[i].Voice == voice {
			return values[i].Buffer, true
		}
	}

	return nil, false
}
