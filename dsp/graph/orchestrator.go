package graph

import (
	"fmt"
	"sync/atomic"

	"github.com/cwbudde/algo-modgraph/dsp/core"
	"github.com/sirupsen/logrus"
)

// Orchestrator owns the modules of one graph, the event and audio source
// tables, and the per-block traversal state.
//
// Control-side methods (AddModule, DeleteModule, Link and friends,
// SetupProcessing) must not run concurrently with Process; use Enqueue or
// Submit while audio is running.
type Orchestrator struct {
	log      logrus.FieldLogger
	registry *Registry

	modules [MaxModules]Module
	order   [MaxModules]ModuleID
	count   int
	free    [MaxModules]ModuleID
	nFree   int

	eventSources [MaxModules]ModuleID
	nEvent       int
	audioSources [MaxModules]ModuleID
	nAudio       int

	cfg        core.ProcessorConfig
	configured bool
	bypass     atomic.Bool
	block      uint64

	processed [MaxModules]bool
	stack     []ModuleID
	scratch   [MaxValues]Value
	visited   [MaxModules]bool

	faults faultRing
	queue  commandQueue
}

// New returns an empty orchestrator.
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		log:      logrus.StandardLogger(),
		registry: NewRegistry(),
		stack:    make([]ModuleID, 0, MaxModules*MaxLinks),
	}

	for _, opt := range opts {
		opt(o)
	}

	o.resetArena()

	return o
}

func (o *Orchestrator) resetArena() {
	o.count = 0
	o.nEvent = 0
	o.nAudio = 0
	o.nFree = MaxModules

	// lowest handle pops first
	for i := range o.free {
		o.free[i] = ModuleID(MaxModules - 1 - i)
	}
}

// Registry returns the registry used by AddModule.
func (o *Orchestrator) Registry() *Registry { return o.registry }

// Count returns the number of registered modules.
func (o *Orchestrator) Count() int { return o.count }

// Module returns the module with the given handle.
func (o *Orchestrator) Module(id ModuleID) (Module, bool) {
	if int(id) >= MaxModules || o.modules[id] == nil {
		return nil, false
	}

	return o.modules[id], true
}

// ModuleAt returns the module at position i of registration order.
// Positions are dense: deleting a module shifts later ones down by one.
func (o *Orchestrator) ModuleAt(i int) (Module, bool) {
	if i < 0 || i >= o.count {
		return nil, false
	}

	return o.modules[o.order[i]], true
}

// IndexOf returns the registration-order position of a module.
func (o *Orchestrator) IndexOf(id ModuleID) (int, bool) {
	for i := 0; i < o.count; i++ {
		if o.order[i] == id {
			return i, true
		}
	}

	return -1, false
}

// Modules lists the modules in registration order.
func (o *Orchestrator) Modules() []Module {
	mods := make([]Module, o.count)
	for i := range mods {
		mods[i] = o.modules[o.order[i]]
	}

	return mods
}

// EventSourceCount returns the number of event buses.
func (o *Orchestrator) EventSourceCount() int { return o.nEvent }

// AudioSourceCount returns the number of audio input buses.
func (o *Orchestrator) AudioSourceCount() int { return o.nAudio }

// Links lists every link in the graph, grouped by source in registration
// order.
func (o *Orchestrator) Links() []Link {
	var links []Link

	for i := 0; i < o.count; i++ {
		links = append(links, o.modules[o.order[i]].Links()...)
	}

	return links
}

// AddModule builds a module from def through the registry and registers it.
func (o *Orchestrator) AddModule(def Definition) (ModuleID, error) {
	m, err := o.registry.Create(def)
	if err != nil {
		o.log.WithFields(logrus.Fields{
			"function": "AddModule",
			"type":     def.Type,
			"error":    err.Error(),
		}).Debug("Module creation failed")

		return NoModule, err
	}

	return o.Register(m)
}

// Register adds an already initialized module to the graph. Modules that
// declare KindEventSource or KindAudioSource must implement the matching
// interface; they are appended to the source table, so the n-th source of
// a kind serves bus n.
func (o *Orchestrator) Register(m Module) (ModuleID, error) {
	if err := o.prepare(m); err != nil {
		return NoModule, err
	}

	id, err := o.register(m)
	if err != nil {
		return NoModule, err
	}

	o.log.WithFields(logrus.Fields{
		"function": "Register",
		"module":   id,
		"type":     m.Type(),
		"name":     m.Name(),
		"kind":     m.Kind().String(),
	}).Debug("Module registered")

	return id, nil
}

// prepare brings a module up to the current processing setup. It runs on
// the control side, also for queued additions.
func (o *Orchestrator) prepare(m Module) error {
	if m == nil {
		return fmt.Errorf("%w: nil module", ErrInvalidReference)
	}

	if !o.configured {
		return nil
	}

	m.SetSampleRate(o.cfg.SampleRate)

	if p, ok := m.(Preparer); ok {
		if err := p.Prepare(o.cfg); err != nil {
			return fmt.Errorf("graph: prepare %q: %w", m.Type(), err)
		}
	}

	return nil
}

func (o *Orchestrator) register(m Module) (ModuleID, error) {
	b := m.base()
	if b.registered {
		return NoModule, fmt.Errorf("%w: module %q already registered as %d", ErrInvalidReference, m.Name(), b.id)
	}

	if o.nFree == 0 {
		return NoModule, fmt.Errorf("%w: %d modules", ErrCapacityExceeded, MaxModules)
	}

	switch m.Kind() {
	case KindEventSource:
		if _, ok := m.(EventSource); !ok {
			return NoModule, fmt.Errorf("%w: %q declares event-source kind without event handlers", ErrInvalidReference, m.Type())
		}
	case KindAudioSource:
		if _, ok := m.(AudioSource); !ok {
			return NoModule, fmt.Errorf("%w: %q declares audio-source kind without SetBuffer", ErrInvalidReference, m.Type())
		}
	}

	o.nFree--
	id := o.free[o.nFree]

	b.attach(id)
	o.modules[id] = m
	o.order[o.count] = id
	o.count++

	switch m.Kind() {
	case KindEventSource:
		o.eventSources[o.nEvent] = id
		o.nEvent++
	case KindAudioSource:
		o.audioSources[o.nAudio] = id
		o.nAudio++
	}

	return id, nil
}

// DeleteModule removes a module and every link touching it. Handles of
// other modules are unchanged; registration positions after the deleted
// module shift down by one.
func (o *Orchestrator) DeleteModule(id ModuleID) error {
	m, err := o.deleteModule(id)
	if err != nil {
		return err
	}

	o.log.WithFields(logrus.Fields{
		"function": "DeleteModule",
		"module":   id,
		"type":     m.Type(),
	}).Debug("Module deleted")

	return nil
}

func (o *Orchestrator) deleteModule(id ModuleID) (Module, error) {
	m, ok := o.Module(id)
	if !ok {
		return nil, fmt.Errorf("%w: module %d", ErrInvalidReference, id)
	}

	// incoming links live in other modules' lists
	for i := 0; i < o.count; i++ {
		src := o.modules[o.order[i]].base()
		for j := src.nLinks - 1; j >= 0; j-- {
			if src.links[j].Target == id {
				src.removeLinkAt(j)
			}
		}
	}

	// outgoing links hold readiness on their targets
	b := m.base()
	for _, l := range b.Links() {
		o.releaseTarget(l)
	}

	o.count = compact(o.order[:o.count], id)
	o.nEvent = compact(o.eventSources[:o.nEvent], id)
	o.nAudio = compact(o.audioSources[:o.nAudio], id)

	o.modules[id] = nil
	o.processed[id] = false
	b.detach()

	o.free[o.nFree] = id
	o.nFree++

	return m, nil
}

// compact removes id from ids preserving order and returns the new length.
func compact(ids []ModuleID, id ModuleID) int {
	n := 0

	for _, v := range ids {
		if v != id {
			ids[n] = v
			n++
		}
	}

	return n
}

// Clear removes every module. Removed modules may be registered again.
func (o *Orchestrator) Clear() {
	o.clear()
	o.log.WithField("function", "Clear").Debug("Graph cleared")
}

func (o *Orchestrator) clear() {
	for i := 0; i < o.count; i++ {
		id := o.order[i]
		o.modules[id].base().detach()
		o.modules[id] = nil
		o.processed[id] = false
	}

	o.resetArena()
}

// Terminate clears the graph and forgets the processing setup.
func (o *Orchestrator) Terminate() {
	o.clear()
	o.configured = false
	o.log.WithField("function", "Terminate").Debug("Graph terminated")
}

// SetupProcessing validates cfg and prepares every module for it,
// including additions still waiting in the command queue.
func (o *Orchestrator) SetupProcessing(cfg core.ProcessorConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	// queued additions are prepared under the same lock Enqueue holds
	o.queue.mu.Lock()
	defer o.queue.mu.Unlock()

	prev, wasConfigured := o.cfg, o.configured
	o.cfg, o.configured = cfg, true

	for i := 0; i < o.count; i++ {
		m := o.modules[o.order[i]]
		if err := o.prepare(m); err != nil {
			o.cfg, o.configured = prev, wasConfigured
			return fmt.Errorf("graph: module %d: %w", m.ID(), err)
		}
	}

	o.prepareQueued()

	o.log.WithFields(logrus.Fields{
		"function":   "SetupProcessing",
		"sampleRate": cfg.SampleRate,
		"blockSize":  cfg.BlockSize,
		"mode":       cfg.Mode.String(),
		"modules":    o.count,
	}).Debug("Processing configured")

	return nil
}

// Config returns the active processing setup and whether one is set.
func (o *Orchestrator) Config() (core.ProcessorConfig, bool) {
	return o.cfg, o.configured
}

// SetBypass toggles bypass. While bypassed, Process runs no module.
// Safe to call from any goroutine.
func (o *Orchestrator) SetBypass(on bool) { o.bypass.Store(on) }

// Bypassed reports the bypass state.
func (o *Orchestrator) Bypassed() bool { return o.bypass.Load() }

// Finished reports whether every registered module has finished.
func (o *Orchestrator) Finished() bool {
	for i := 0; i < o.count; i++ {
		if !o.modules[o.order[i]].HasFinished() {
			return false
		}
	}

	return o.count > 0
}

// Reset clears the runtime state of every module that supports it.
func (o *Orchestrator) Reset() {
	for i := 0; i < o.count; i++ {
		if r, ok := o.modules[o.order[i]].(Resetter); ok {
			r.Reset()
		}
	}
}
