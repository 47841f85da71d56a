package graph

import "github.com/sirupsen/logrus"

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger used for control-side operations.
func WithLogger(log logrus.FieldLogger) Option {
	return func(o *Orchestrator) {
		if log != nil {
			o.log = log
		}
	}
}

// WithRegistry sets the registry AddModule resolves definitions against.
func WithRegistry(r *Registry) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.registry = r
		}
	}
}
