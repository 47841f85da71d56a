package patch

import (
	"fmt"

	"github.com/cwbudde/algo-modgraph/dsp/graph"
)

// Build adds the patch's modules to o, wires its links and stages its
// parameters. It returns the id of each module by label. On failure the
// modules added so far are removed again.
func (p *Patch) Build(o *graph.Orchestrator) (map[string]graph.ModuleID, error) {
	ids := make(map[string]graph.ModuleID, len(p.Modules))

	if err := p.build(o, ids); err != nil {
		for _, id := range ids {
			_ = o.DeleteModule(id)
		}

		return nil, err
	}

	return ids, nil
}

func (p *Patch) build(o *graph.Orchestrator, ids map[string]graph.ModuleID) error {
	for _, m := range p.Modules {
		id, err := o.AddModule(graph.Definition{Type: m.Type, Name: m.Label, Params: m.Params})
		if err != nil {
			return fmt.Errorf("patch: module %q: %w", m.Label, err)
		}

		ids[m.Label] = id
	}

	lookup := func(label string) (graph.ModuleID, error) {
		id, ok := ids[label]
		if !ok {
			return graph.NoModule, fmt.Errorf("%w: unknown module %q", graph.ErrInvalidReference, label)
		}

		return id, nil
	}

	for i, l := range p.Links {
		src, err := lookup(l.From)
		if err != nil {
			return fmt.Errorf("patch: links[%d]: %w", i, err)
		}

		dst, err := lookup(l.To)
		if err != nil {
			return fmt.Errorf("patch: links[%d]: %w", i, err)
		}

		link, err := o.LinkByName(src, l.Out, dst, l.In)
		if err != nil {
			return fmt.Errorf("patch: links[%d] %s.%s -> %s.%s: %w", i, l.From, l.Out, l.To, l.In, err)
		}

		if l.Disabled {
			if err := o.DisableLink(link.Source, link.SourceSlot, link.Target, link.TargetSlot); err != nil {
				return fmt.Errorf("patch: links[%d]: %w", i, err)
			}
		}
	}

	for i, prm := range p.Parameters {
		id, err := lookup(prm.Module)
		if err != nil {
			return fmt.Errorf("patch: parameters[%d]: %w", i, err)
		}

		m, _ := o.Module(id)

		slot, ok := m.SlotID(prm.Slot)
		if !ok {
			return fmt.Errorf("patch: parameters[%d]: %w: %s has no slot %q", i, graph.ErrInvalidReference, prm.Module, prm.Slot)
		}

		if err := o.ParameterChanged(uint64(graph.ParameterID(id, slot)), 0, prm.Value); err != nil {
			return fmt.Errorf("patch: parameters[%d] %s.%s: %w", i, prm.Module, prm.Slot, err)
		}
	}

	return nil
}
