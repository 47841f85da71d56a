package graph

// Process runs one block. Pending commands are applied first when the
// command queue is free. Every module is then preprocessed, and data is
// pushed from each event source and each audio source through the graph:
// a module runs once all of its enabled inputs have delivered, hands its
// outputs to every enabled link, and its targets are visited next.
//
// A module whose Process fails or panics is recorded as a fault and its
// outgoing links do not deliver for the block, so the branch below it
// stays idle. Process does not allocate, lock or log.
func (o *Orchestrator) Process(ctx *BlockContext) {
	o.applyPending()

	if o.bypass.Load() {
		return
	}

	o.block++

	if !o.configured {
		o.faults.push(Fault{Block: o.block, Module: NoModule, Err: ErrNotConfigured})
		return
	}

	ctx.Config = o.cfg
	ctx.Block = o.block

	if ctx.Samples <= 0 || ctx.Samples > o.cfg.BlockSize {
		ctx.Samples = o.cfg.BlockSize
	}

	for i := 0; i < o.count; i++ {
		id := o.order[i]
		o.processed[id] = false
		o.modules[id].Preprocess()
	}

	for i := 0; i < o.nEvent; i++ {
		o.push(o.eventSources[i], ctx)
	}

	for i := 0; i < o.nAudio; i++ {
		o.push(o.audioSources[i], ctx)
	}
}

// push runs the subgraph reachable from start. The stack is preallocated
// for the worst case of every module pushing a full link table.
func (o *Orchestrator) push(start ModuleID, ctx *BlockContext) {
	stack := append(o.stack[:0], start)

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		m := o.modules[id]
		if m == nil || o.processed[id] || !m.CanProcess() {
			continue
		}

		o.processed[id] = true

		if !o.run(m, ctx) {
			continue
		}

		links := m.Links()
		for i := range links {
			l := &links[i]
			if !l.Enabled {
				continue
			}

			n := m.OutputValues(l.SourceSlot, o.scratch[:])
			o.modules[l.Target].SetInputValues(l.TargetSlot, o.scratch[:n])
		}

		// reversed so the first link's target is visited first
		for i := len(links) - 1; i >= 0; i-- {
			if links[i].Enabled && !o.processed[links[i].Target] {
				stack = append(stack, links[i].Target)
			}
		}
	}

	o.stack = stack[:0]
}

// run processes one module and reports whether it succeeded.
func (o *Orchestrator) run(m Module, ctx *BlockContext) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			o.faults.push(Fault{Block: o.block, Module: m.ID(), Type: m.Type(), Err: ErrModulePanic, Panic: r})
			ok = false
		}
	}()

	if err := m.Process(ctx); err != nil {
		o.faults.push(Fault{Block: o.block, Module: m.ID(), Type: m.Type(), Err: err})
		return false
	}

	return true
}
