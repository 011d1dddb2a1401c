package pipeline

import (
	"context"
	"fmt"
	"os"

	"imgmin.io/cli/internal/core/plugin"
	"imgmin.io/cli/internal/logging"
)

// FileResult is one processed input file. OutputPath is empty until a sink
// decides where the bytes land (destination directory or stdout).
type FileResult struct {
	SourcePath string
	OutputPath string
	Data       []byte
}

// Executor runs inputs through an ordered chain of plugin handles. It owns
// the handles for exactly one invocation; nothing is cached across runs.
type Executor struct {
	handles []plugin.Handle
}

// New creates an executor over the given chain. List order is composition
// order: the output of handle i feeds handle i+1.
func New(handles []plugin.Handle) *Executor {
	return &Executor{handles: handles}
}

// Run passes a single buffer through the full chain.
func (e *Executor) Run(ctx context.Context, data []byte) ([]byte, error) {
	out := data
	for _, h := range e.handles {
		next, err := h.Transform.Apply(ctx, out)
		if err != nil {
			return nil, fmt.Errorf("plugin %s: %w", h.Spec.Name, err)
		}
		logging.L().Debug("transform applied", "plugin", h.Spec.Name, "in", len(out), "out", len(next))
		out = next
	}
	return out, nil
}

// RunFiles reads each path and runs its bytes through the full chain,
// returning results in input order. The first failing file aborts the whole
// run; partial results are discarded.
func (e *Executor) RunFiles(ctx context.Context, paths []string) ([]FileResult, error) {
	results := make([]FileResult, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		out, err := e.Run(ctx, data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		results = append(results, FileResult{SourcePath: path, Data: out})
	}
	return results, nil
}
