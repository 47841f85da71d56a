// Package patch loads declarative graph documents and builds them into an
// orchestrator. A patch names its modules by label, links them by slot
// name, stages initial parameter values and can script input events per
// block. Documents are YAML; JSON is accepted as a subset.
package patch

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/cwbudde/algo-modgraph/dsp/graph"
	"gopkg.in/yaml.v3"
)

// Patch is a loaded graph document.
type Patch struct {
	Name       string      `yaml:"name,omitempty"`
	Modules    []Module    `yaml:"modules"`
	Links      []Link      `yaml:"links,omitempty"`
	Parameters []Parameter `yaml:"parameters,omitempty"`
	Events     []Event     `yaml:"events,omitempty"`

	// compiled event script, ordered by block
	blocks []uint64
	script []graph.Event
}

// Module declares one module instance.
type Module struct {
	Label  string         `yaml:"label"`
	Type   string         `yaml:"type"`
	Params map[string]any `yaml:"params,omitempty"`
}

// Link connects module From's output slot Out to module To's input slot In.
type Link struct {
	From     string `yaml:"from"`
	Out      string `yaml:"out"`
	To       string `yaml:"to"`
	In       string `yaml:"in"`
	Disabled bool   `yaml:"disabled,omitempty"`
}

// Parameter stages a value on an input slot before the first block.
// Value accepts a number or a boolean; booleans become 0 or 1.
type Parameter struct {
	Module string  `yaml:"module"`
	Slot   string  `yaml:"slot"`
	Value  float64 `yaml:"-"`
}

// UnmarshalYAML reads value as either a number or a boolean switch.
func (p *Parameter) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Module string    `yaml:"module"`
		Slot   string    `yaml:"slot"`
		Value  yaml.Node `yaml:"value"`
	}

	if err := node.Decode(&raw); err != nil {
		return err
	}

	p.Module, p.Slot = raw.Module, raw.Slot

	if raw.Value.Kind == 0 {
		return fmt.Errorf("line %d: parameter value is required", node.Line)
	}

	if raw.Value.Tag == "!!bool" {
		var on bool
		if err := raw.Value.Decode(&on); err != nil {
			return err
		}

		p.Value = boolValue(on)

		return nil
	}

	if err := raw.Value.Decode(&p.Value); err != nil {
		return fmt.Errorf("line %d: parameter value: %w", raw.Value.Line, err)
	}

	return nil
}

func boolValue(on bool) float64 {
	if on {
		return 1
	}

	return 0
}

// Event is a scripted input event delivered before the given block runs.
type Event struct {
	Block    uint64   `yaml:"block"`
	Bus      int      `yaml:"bus,omitempty"`
	Type     string   `yaml:"type"`
	Offset   int      `yaml:"offset,omitempty"`
	Channel  int16    `yaml:"channel,omitempty"`
	Pitch    int16    `yaml:"pitch,omitempty"`
	Velocity *float64 `yaml:"velocity,omitempty"`
	NoteID   *int32   `yaml:"note_id,omitempty"`
	Bytes    []int    `yaml:"bytes,omitempty"`
}

// Load decodes a patch document from r. Unknown fields are rejected.
func Load(r io.Reader) (*Patch, error) {
	var p Patch

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("patch: empty document")
		}

		return nil, fmt.Errorf("patch: parse: %w", err)
	}

	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("patch: invalid: %w", err)
	}

	return &p, nil
}

// LoadFile reads and decodes the patch at path.
func LoadFile(path string) (*Patch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("patch: %w", err)
	}
	defer f.Close()

	p, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return p, nil
}

func (p *Patch) validate() error {
	if len(p.Modules) == 0 {
		return errors.New("modules list is required and must be non-empty")
	}

	if len(p.Modules) > graph.MaxModules {
		return fmt.Errorf("%d modules, max %d", len(p.Modules), graph.MaxModules)
	}

	labels := make(map[string]bool, len(p.Modules))

	for i, m := range p.Modules {
		switch {
		case m.Label == "":
			return fmt.Errorf("modules[%d]: label is required", i)
		case m.Type == "":
			return fmt.Errorf("modules[%d]: type is required", i)
		case labels[m.Label]:
			return fmt.Errorf("modules[%d]: duplicate label %q", i, m.Label)
		}

		labels[m.Label] = true
	}

	for i, l := range p.Links {
		if l.From == "" || l.Out == "" || l.To == "" || l.In == "" {
			return fmt.Errorf("links[%d]: from, out, to and in are required", i)
		}
	}

	for i, prm := range p.Parameters {
		if prm.Module == "" || prm.Slot == "" {
			return fmt.Errorf("parameters[%d]: module and slot are required", i)
		}

		if math.IsNaN(prm.Value) || math.IsInf(prm.Value, 0) {
			return fmt.Errorf("parameters[%d]: value must be finite", i)
		}
	}

	order := make([]int, len(p.Events))
	for i := range order {
		order[i] = i
	}

	sort.SliceStable(order, func(i, j int) bool { return p.Events[order[i]].Block < p.Events[order[j]].Block })

	p.blocks = make([]uint64, 0, len(p.Events))
	p.script = make([]graph.Event, 0, len(p.Events))

	for _, i := range order {
		ev, err := p.Events[i].toEvent()
		if err != nil {
			return fmt.Errorf("events[%d]: %w", i, err)
		}

		p.blocks = append(p.blocks, p.Events[i].Block)
		p.script = append(p.script, ev)
	}

	return nil
}

func (e Event) toEvent() (graph.Event, error) {
	typ, err := graph.ParseEventType(e.Type)
	if err != nil {
		return graph.Event{}, err
	}

	if e.Bus < 0 {
		return graph.Event{}, fmt.Errorf("bus must be >= 0, got %d", e.Bus)
	}

	ev := graph.Event{BusIndex: e.Bus, SampleOffset: e.Offset, Type: typ}

	switch typ {
	case graph.EventNoteOn, graph.EventNoteOff:
		if e.Pitch < 0 || e.Pitch > 127 {
			return graph.Event{}, fmt.Errorf("pitch %d out of range 0..127", e.Pitch)
		}

		vel := 1.0
		if typ == graph.EventNoteOff {
			vel = 0
		}

		if e.Velocity != nil {
			vel = *e.Velocity
		}

		id := int32(-1)
		if e.NoteID != nil {
			id = *e.NoteID
		}

		ev.Note = graph.NoteEvent{Channel: e.Channel, Pitch: e.Pitch, Velocity: vel, NoteID: id}
	case graph.EventData:
		if len(e.Bytes) > len(ev.Data.Bytes) {
			return graph.Event{}, fmt.Errorf("%d data bytes, max %d", len(e.Bytes), len(ev.Data.Bytes))
		}

		for i, b := range e.Bytes {
			if b < 0 || b > 0xFF {
				return graph.Event{}, fmt.Errorf("data byte %d out of range", b)
			}

			ev.Data.Bytes[i] = byte(b)
		}

		ev.Data.Size = len(e.Bytes)
	}

	return ev, nil
}

// EventsAt returns the scripted events for block, in document order. The
// slice aliases the patch and does not allocate, so hosts may call it from
// the audio callback.
func (p *Patch) EventsAt(block uint64) []graph.Event {
	lo := sort.Search(len(p.blocks), func(i int) bool { return p.blocks[i] >= block })

	hi := lo
	for hi < len(p.blocks) && p.blocks[hi] == block {
		hi++
	}

	return p.script[lo:hi]
}

// Length returns the number of blocks the event script spans.
func (p *Patch) Length() uint64 {
	if len(p.blocks) == 0 {
		return 0
	}

	return p.blocks[len(p.blocks)-1] + 1
}
