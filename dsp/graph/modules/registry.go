package modules

import "github.com/cwbudde/algo-modgraph/dsp/graph"

// Module type tags.
const (
	TypeMidiIn     = "midi-in"
	TypeAudioIn    = "audio-in"
	TypeOscillator = "oscillator"
	TypeEnvelope   = "envelope"
	TypeMultiplier = "multiplier"
	TypeMixer      = "mixer"
	TypeSample     = "sample"
	TypeAudioOut   = "audio-out"
	TypeLowPass    = "low-pass"
	TypeHighPass   = "high-pass"
	TypeGain       = "gain"
	TypeRecorder   = "recorder"
)

// DefaultRegistry returns a registry with every built-in variant.
func DefaultRegistry() *graph.Registry {
	r := graph.NewRegistry()
	r.MustRegister(TypeMidiIn, func() graph.Module { return NewMidiIn() })
	r.MustRegister(TypeAudioIn, func() graph.Module { return NewAudioIn() })
	r.MustRegister(TypeOscillator, func() graph.Module { return NewOscillator() })
	r.MustRegister(TypeEnvelope, func() graph.Module { return NewEnvelope() })
	r.MustRegister(TypeMultiplier, func() graph.Module { return NewMultiplier() })
	r.MustRegister(TypeMixer, func() graph.Module { return NewMixer() })
	r.MustRegister(TypeSample, func() graph.Module { return NewSample() })
	r.MustRegister(TypeAudioOut, func() graph.Module { return NewAudioOut() })
	r.MustRegister(TypeLowPass, func() graph.Module { return NewLowPass() })
	r.MustRegister(TypeHighPass, func() graph.Module { return NewHighPass() })
	r.MustRegister(TypeGain, func() graph.Module { return NewGain() })
	r.MustRegister(TypeRecorder, func() graph.Module { return NewRecorder() })

	return r
}

// NewOrchestrator returns an orchestrator that resolves definitions
// against DefaultRegistry. Later options override it.
func NewOrchestrator(opts ...graph.Option) *graph.Orchestrator {
	return graph.New(append([]graph.Option{graph.WithRegistry(DefaultRegistry())}, opts...)...)
}
