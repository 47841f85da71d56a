package cli

import (
	"io"

	"github.com/cwbudde/algo-modgraph/dsp/graph"
	"github.com/cwbudde/algo-modgraph/dsp/graph/modules"
	"github.com/cwbudde/algo-modgraph/dsp/patch"
)

// loadGraph reads the patch at path and builds it into a new orchestrator
// backed by the built-in module registry.
func loadGraph(opts *RootOptions, path string, logw io.Writer) (*patch.Patch, *graph.Orchestrator, map[string]graph.ModuleID, error) {
	p, err := patch.LoadFile(path)
	if err != nil {
		return nil, nil, nil, err
	}

	o := modules.NewOrchestrator(graph.WithLogger(opts.Logger(logw)))

	ids, err := p.Build(o)
	if err != nil {
		return nil, nil, nil, err
	}

	return p, o, ids, nil
}
