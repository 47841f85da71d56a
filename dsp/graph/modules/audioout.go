package modules

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-modgraph/dsp/graph"
	vecmath "github.com/cwbudde/algo-vecmath"
)

// AudioOut slots.
const (
	AudioOutSignalInput graph.SlotID = 0
)

// Routing modes for audio-out.
const (
	RouteMix   = "mix"   // every value is added to every channel
	RouteVoice = "voice" // voice i is added to channel i mod channels
)

var errMissingBus = errors.New("audio-out: output bus not provided by host")

// AudioOut accumulates its input into a host output bus.
type AudioOut struct {
	*graph.Base

	bus     int
	byVoice bool
}

// NewAudioOut returns an uninitialized audio-out.
func NewAudioOut() *AudioOut {
	return &AudioOut{
		Base: graph.NewBase(TypeAudioOut, graph.KindPlain,
			[]graph.SlotSpec{fanIn(AudioOutSignalInput, "signal input", graph.MaxValues)},
			nil,
		),
	}
}

// Initialize reads "bus" and "route" (mix or voice).
func (a *AudioOut) Initialize(def graph.Definition) error {
	a.bus = def.Int("bus", 0)
	if a.bus < 0 {
		return fmt.Errorf("audio-out: bus must be >= 0, got %d", a.bus)
	}

	switch route := def.Str("route", RouteMix); route {
	case RouteMix:
		a.byVoice = false
	case RouteVoice:
		a.byVoice = true
	default:
		return fmt.Errorf("audio-out: unknown route %q", route)
	}

	return nil
}

func (a *AudioOut) SetSampleRate(float64) {}

// Bus returns the output bus index.
func (a *AudioOut) Bus() int { return a.bus }

func (a *AudioOut) Process(ctx *graph.BlockContext) error {
	out, ok := ctx.Output(a.bus)
	if !ok {
		return errMissingBus
	}

	if len(out.Channels) == 0 {
		return nil
	}

	for _, v := range a.InputValues(AudioOutSignalInput) {
		if v.Kind != graph.ValueBuffer || v.Voice < 0 {
			continue
		}

		if a.byVoice {
			accumulate(out.Channels[v.Voice%len(out.Channels)], v.Buffer, ctx.Samples)
			continue
		}

		for _, ch := range out.Channels {
			accumulate(ch, v.Buffer, ctx.Samples)
		}
	}

	return nil
}

func accumulate(dst, src []float64, samples int) {
	n := min(len(dst), len(src), samples)
	vecmath.AddBlockInPlace(dst[:n], src[:n])
}
