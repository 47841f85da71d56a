package graph

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Link connects an output slot of src to an input slot of dst. The new link
// is enabled. It fails when either end is unknown, the link exists, the
// source link table or the target fan-in is full, the source output
// capacity no longer fits in the target input, or the link would close a
// cycle. Disabled links count toward cycle detection and capacity.
func (o *Orchestrator) Link(src ModuleID, srcSlot SlotID, dst ModuleID, dstSlot SlotID) (Link, error) {
	l, err := o.link(Link{Enabled: true, Source: src, SourceSlot: srcSlot, Target: dst, TargetSlot: dstSlot})
	o.logLink("Link", l, err)

	return l, err
}

// LinkByName is Link with slots resolved by name.
func (o *Orchestrator) LinkByName(src ModuleID, srcSlot string, dst ModuleID, dstSlot string) (Link, error) {
	s, d, err := o.resolveSlots(src, srcSlot, dst, dstSlot)
	if err != nil {
		return Link{}, err
	}

	return o.Link(src, s, dst, d)
}

// Unlink removes a link.
func (o *Orchestrator) Unlink(src ModuleID, srcSlot SlotID, dst ModuleID, dstSlot SlotID) error {
	l, err := o.unlink(Link{Source: src, SourceSlot: srcSlot, Target: dst, TargetSlot: dstSlot})
	o.logLink("Unlink", l, err)

	return err
}

// EnableLink makes a link deliver again and count toward its target's
// readiness.
func (o *Orchestrator) EnableLink(src ModuleID, srcSlot SlotID, dst ModuleID, dstSlot SlotID) error {
	l, err := o.setLinkEnabled(Link{Source: src, SourceSlot: srcSlot, Target: dst, TargetSlot: dstSlot}, true)
	o.logLink("EnableLink", l, err)

	return err
}

// DisableLink keeps a link in place but stops delivery through it. The
// target no longer waits for it.
func (o *Orchestrator) DisableLink(src ModuleID, srcSlot SlotID, dst ModuleID, dstSlot SlotID) error {
	l, err := o.setLinkEnabled(Link{Source: src, SourceSlot: srcSlot, Target: dst, TargetSlot: dstSlot}, false)
	o.logLink("DisableLink", l, err)

	return err
}

func (o *Orchestrator) logLink(fn string, l Link, err error) {
	entry := o.log.WithFields(logrus.Fields{
		"function": fn,
		"source":   l.Source,
		"target":   l.Target,
		"srcSlot":  l.SourceSlot,
		"dstSlot":  l.TargetSlot,
	})
	if err != nil {
		entry.WithField("error", err.Error()).Debug("Link operation failed")
		return
	}

	entry.Debug("Link updated")
}

func (o *Orchestrator) resolveSlots(src ModuleID, srcSlot string, dst ModuleID, dstSlot string) (SlotID, SlotID, error) {
	sm, ok := o.Module(src)
	if !ok {
		return NoSlot, NoSlot, fmt.Errorf("%w: module %d", ErrInvalidReference, src)
	}

	dm, ok := o.Module(dst)
	if !ok {
		return NoSlot, NoSlot, fmt.Errorf("%w: module %d", ErrInvalidReference, dst)
	}

	s, ok := sm.SlotID(srcSlot)
	if !ok {
		return NoSlot, NoSlot, fmt.Errorf("%w: %s has no slot %q", ErrInvalidReference, sm.Type(), srcSlot)
	}

	d, ok := dm.SlotID(dstSlot)
	if !ok {
		return NoSlot, NoSlot, fmt.Errorf("%w: %s has no slot %q", ErrInvalidReference, dm.Type(), dstSlot)
	}

	return s, d, nil
}

// endpoints validates both ends of l and returns the source base and the
// target input slot.
func (o *Orchestrator) endpoints(l Link) (*Base, *inputSlot, error) {
	src, ok := o.Module(l.Source)
	if !ok {
		return nil, nil, fmt.Errorf("%w: source module %d", ErrInvalidReference, l.Source)
	}

	dst, ok := o.Module(l.Target)
	if !ok {
		return nil, nil, fmt.Errorf("%w: target module %d", ErrInvalidReference, l.Target)
	}

	sb := src.base()
	if sb.output(l.SourceSlot) == nil {
		return nil, nil, fmt.Errorf("%w: %s has no output slot %d", ErrInvalidReference, src.Type(), l.SourceSlot)
	}

	in := dst.base().input(l.TargetSlot)
	if in == nil {
		return nil, nil, fmt.Errorf("%w: %s has no input slot %d", ErrInvalidReference, dst.Type(), l.TargetSlot)
	}

	return sb, in, nil
}

func (o *Orchestrator) link(l Link) (Link, error) {
	sb, in, err := o.endpoints(l)
	if err != nil {
		return l, err
	}

	if sb.findLink(l) >= 0 {
		return l, fmt.Errorf("%w: link %s already exists", ErrInvalidReference, l)
	}

	if sb.nLinks >= MaxLinks {
		return l, fmt.Errorf("%w: module %d has %d links", ErrCapacityExceeded, l.Source, MaxLinks)
	}

	if in.linked >= in.spec.fanIn() {
		return l, fmt.Errorf("%w: input %q of module %d accepts %d links", ErrCapacityExceeded, in.spec.Name, l.Target, in.spec.fanIn())
	}

	// every link reserves its source's full output capacity, enabled or not,
	// so a block can never deliver more values than the input holds
	load := sb.output(l.SourceSlot).spec.capacity()
	if in.load+load > in.spec.capacity() {
		return l, fmt.Errorf("%w: input %q of module %d holds %d values, links would deliver %d",
			ErrCapacityExceeded, in.spec.Name, l.Target, in.spec.capacity(), in.load+load)
	}

	if l.Source == l.Target || o.reaches(l.Target, l.Source) {
		return l, fmt.Errorf("%w: %s", ErrCycle, l)
	}

	sb.links[sb.nLinks] = l
	sb.nLinks++

	in.linked++
	in.load += load
	if l.Enabled {
		in.required++
	}

	return l, nil
}

func (o *Orchestrator) unlink(l Link) (Link, error) {
	sb, _, err := o.endpoints(l)
	if err != nil {
		return l, err
	}

	i := sb.findLink(l)
	if i < 0 {
		return l, fmt.Errorf("%w: no link %d:%d -> %d:%d", ErrInvalidReference, l.Source, l.SourceSlot, l.Target, l.TargetSlot)
	}

	l = sb.links[i]
	sb.removeLinkAt(i)
	o.releaseTarget(l)

	return l, nil
}

func (o *Orchestrator) setLinkEnabled(l Link, enabled bool) (Link, error) {
	sb, in, err := o.endpoints(l)
	if err != nil {
		return l, err
	}

	i := sb.findLink(l)
	if i < 0 {
		return l, fmt.Errorf("%w: no link %d:%d -> %d:%d", ErrInvalidReference, l.Source, l.SourceSlot, l.Target, l.TargetSlot)
	}

	if sb.links[i].Enabled == enabled {
		return sb.links[i], nil
	}

	sb.links[i].Enabled = enabled
	if enabled {
		in.required++
	} else {
		in.required--
	}

	return sb.links[i], nil
}

// releaseTarget drops the fan-in, capacity and readiness counts l held on
// its target. The source must still be registered.
func (o *Orchestrator) releaseTarget(l Link) {
	src, ok := o.Module(l.Source)
	if !ok {
		return
	}

	dst, ok := o.Module(l.Target)
	if !ok {
		return
	}

	in := dst.base().input(l.TargetSlot)
	if in == nil {
		return
	}

	in.linked--
	if out := src.base().output(l.SourceSlot); out != nil {
		in.load -= out.spec.capacity()
	}

	if l.Enabled {
		in.required--
	}

	debugAssert(in.linked >= 0 && in.required >= 0 && in.load >= 0, "negative link count")
}

// reaches reports whether to is reachable from from along any link,
// enabled or not.
func (o *Orchestrator) reaches(from, to ModuleID) bool {
	o.visited = [MaxModules]bool{}

	stack := append(o.stack[:0], from)
	defer func() { o.stack = stack[:0] }()

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if id == to {
			return true
		}

		if o.visited[id] {
			continue
		}

		o.visited[id] = true

		m := o.modules[id]
		if m == nil {
			continue
		}

		for _, l := range m.Links() {
			if !o.visited[l.Target] {
				stack = append(stack, l.Target)
			}
		}
	}

	return false
}
