package graph

import "errors"

var (
	// ErrUnknownModuleType reports a definition type no factory is registered for.
	ErrUnknownModuleType = errors.New("graph: unknown module type")
	// ErrInvalidReference reports an unknown module, slot, bus, link or parameter id.
	ErrInvalidReference = errors.New("graph: invalid reference")
	// ErrCapacityExceeded reports a full module, link, slot or value table.
	ErrCapacityExceeded = errors.New("graph: capacity exceeded")
	// ErrCycle reports a link that would close a cycle.
	ErrCycle = errors.New("graph: link would create a cycle")
	// ErrNotConfigured reports processing before SetupProcessing succeeded.
	ErrNotConfigured = errors.New("graph: processing not configured")
	// ErrModulePanic reports a module whose Process panicked.
	ErrModulePanic = errors.New("graph: module panicked")
)
