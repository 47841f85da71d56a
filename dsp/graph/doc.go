// Package graph implements a fixed-capacity processing graph of modules
// connected by enable/disable-able links and executed once per audio block.
//
// An [Orchestrator] owns every [Module]. Each block it clears per-block
// readiness, then pushes data from every event source and audio source
// through the outgoing links of each module it processes. A module runs only
// once all of its enabled incoming links have delivered for the block, so
// processing order follows from the topology without a precomputed sort.
//
// Host input reaches the graph three ways: musical events are routed to the
// event source registered for the event's bus, audio buffers to the audio
// source registered for the buffer's bus, and parameter automation is
// delivered straight into a module input slot, addressed by
// [ParameterID].
//
// Topology edits are control-time operations. Call them directly while no
// block is running, or [Orchestrator.Enqueue] them while audio runs; queued
// commands are applied at the next block boundary.
//
// Nothing reached from [Orchestrator.Process] allocates, locks or logs.
// Module failures are recorded as [Fault] values and drained on the control
// side with [Orchestrator.DrainFaults] or [Orchestrator.LogFaults].
package graph
