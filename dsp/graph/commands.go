package graph

import (
	"context"
	"fmt"
	"sync"
)

type commandOp uint8

const (
	opAdd commandOp = iota
	opDelete
	opLink
	opUnlink
	opEnable
	opDisable
	opClear
)

// Command is a topology edit that can be queued while audio runs.
type Command struct {
	op     commandOp
	module Module
	id     ModuleID
	link   Link
}

// AddCommand queues registration of an initialized module.
func AddCommand(m Module) Command { return Command{op: opAdd, module: m} }

// DeleteCommand queues removal of a module.
func DeleteCommand(id ModuleID) Command { return Command{op: opDelete, id: id} }

// LinkCommand queues a new enabled link.
func LinkCommand(src ModuleID, srcSlot SlotID, dst ModuleID, dstSlot SlotID) Command {
	return Command{op: opLink, link: Link{Enabled: true, Source: src, SourceSlot: srcSlot, Target: dst, TargetSlot: dstSlot}}
}

// UnlinkCommand queues removal of a link.
func UnlinkCommand(src ModuleID, srcSlot SlotID, dst ModuleID, dstSlot SlotID) Command {
	return Command{op: opUnlink, link: Link{Source: src, SourceSlot: srcSlot, Target: dst, TargetSlot: dstSlot}}
}

// EnableCommand queues enabling a link.
func EnableCommand(src ModuleID, srcSlot SlotID, dst ModuleID, dstSlot SlotID) Command {
	return Command{op: opEnable, link: Link{Source: src, SourceSlot: srcSlot, Target: dst, TargetSlot: dstSlot}}
}

// DisableCommand queues disabling a link.
func DisableCommand(src ModuleID, srcSlot SlotID, dst ModuleID, dstSlot SlotID) Command {
	return Command{op: opDisable, link: Link{Source: src, SourceSlot: srcSlot, Target: dst, TargetSlot: dstSlot}}
}

// ClearCommand queues removal of every module.
func ClearCommand() Command { return Command{op: opClear} }

// Result is the outcome of a queued command.
type Result struct {
	ID   ModuleID
	Link Link
	Err  error
}

type pendingCommand struct {
	cmd  Command
	done chan Result
}

type commandQueue struct {
	mu      sync.Mutex
	pending []pendingCommand
}

// Enqueue schedules cmd for the next block boundary and returns a channel
// that receives its result. Module additions are prepared for the current
// setup before they are queued, and again by SetupProcessing if the setup
// changes while they wait.
func (o *Orchestrator) Enqueue(cmd Command) <-chan Result {
	done := make(chan Result, 1)

	o.queue.mu.Lock()
	defer o.queue.mu.Unlock()

	if cmd.op == opAdd {
		if err := o.prepare(cmd.module); err != nil {
			done <- Result{ID: NoModule, Err: err}
			return done
		}
	}

	o.queue.pending = append(o.queue.pending, pendingCommand{cmd: cmd, done: done})

	return done
}

// Submit enqueues cmd and waits for it to be applied or for ctx to end.
func (o *Orchestrator) Submit(ctx context.Context, cmd Command) (Result, error) {
	done := o.Enqueue(cmd)

	select {
	case r := <-done:
		return r, r.Err
	case <-ctx.Done():
		return Result{ID: NoModule}, fmt.Errorf("graph: command not applied: %w", ctx.Err())
	}
}

// Flush applies pending commands immediately. Use it when no block is
// running, for example after the audio stream stopped.
func (o *Orchestrator) Flush() int {
	o.queue.mu.Lock()
	defer o.queue.mu.Unlock()

	return o.applyLocked()
}

// applyPending runs on the audio side and never waits for the queue.
func (o *Orchestrator) applyPending() {
	if !o.queue.mu.TryLock() {
		return
	}

	o.applyLocked()
	o.queue.mu.Unlock()
}

// prepareQueued prepares pending additions for the current setup. An
// addition that fails is answered with the error and dropped from the
// queue. The caller holds the queue lock.
func (o *Orchestrator) prepareQueued() {
	kept := o.queue.pending[:0]

	for _, p := range o.queue.pending {
		if p.cmd.op == opAdd {
			if err := o.prepare(p.cmd.module); err != nil {
				p.done <- Result{ID: NoModule, Err: err}
				continue
			}
		}

		kept = append(kept, p)
	}

	clear(o.queue.pending[len(kept):])
	o.queue.pending = kept
}

func (o *Orchestrator) applyLocked() int {
	n := len(o.queue.pending)

	for i := range o.queue.pending {
		p := &o.queue.pending[i]
		p.done <- o.apply(p.cmd)
		*p = pendingCommand{}
	}

	o.queue.pending = o.queue.pending[:0]

	return n
}

func (o *Orchestrator) apply(cmd Command) Result {
	switch cmd.op {
	case opAdd:
		if cmd.module == nil {
			return Result{ID: NoModule, Err: fmt.Errorf("%w: nil module", ErrInvalidReference)}
		}

		id, err := o.register(cmd.module)

		return Result{ID: id, Err: err}
	case opDelete:
		_, err := o.deleteModule(cmd.id)
		return Result{ID: cmd.id, Err: err}
	case opLink:
		l, err := o.link(cmd.link)
		return Result{ID: cmd.link.Source, Link: l, Err: err}
	case opUnlink:
		l, err := o.unlink(cmd.link)
		return Result{ID: cmd.link.Source, Link: l, Err: err}
	case opEnable, opDisable:
		l, err := o.setLinkEnabled(cmd.link, cmd.op == opEnable)
		return Result{ID: cmd.link.Source, Link: l, Err: err}
	case opClear:
		o.clear()
		return Result{ID: NoModule}
	default:
		return Result{ID: NoModule, Err: fmt.Errorf("graph: unknown command %d", cmd.op)}
	}
}
