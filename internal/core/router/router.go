package router

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"

	"imgmin.io/cli/internal/core/pipeline"
	"imgmin.io/cli/internal/infrastructure/files"
	"imgmin.io/cli/internal/logging"
)

// ErrMultipleFilesStdout is returned when a run produced several files but
// has only the stdout stream to write to.
var ErrMultipleFilesStdout = errors.New("Cannot write multiple files to stdout")

// ErrNoInput is the usage error for an invocation with neither file
// arguments nor a piped stream. The CLI rejects this before the router runs.
var ErrNoInput = errors.New("no input files given")

// Progress is a scoped progress indicator. Stop must be idempotent; the
// router guarantees it fires on every exit path before an error surfaces.
type Progress interface {
	Start(label string)
	Stop()
}

// NopProgress is the Progress used when no indicator should render.
type NopProgress struct{}

// Start implements Progress.
func (NopProgress) Start(string) {}

// Stop implements Progress.
func (NopProgress) Stop() {}

// Config is the explicit per-invocation configuration, passed by value.
type Config struct {
	Kind      InputKind
	Paths     []string // resolved file paths (globs already expanded)
	Stdin     []byte   // piped bytes; only consulted when Kind == InputStream
	OutDir    string
	Overwrite bool

	Stdout   io.Writer
	Stderr   io.Writer
	Progress Progress
}

// Router selects the execution mode for one invocation and drives the
// pipeline executor into the matching sink.
type Router struct {
	cfg  Config
	exec *pipeline.Executor
}

// New creates a router, defaulting the output streams and progress indicator.
func New(cfg Config, exec *pipeline.Executor) *Router {
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.Stderr == nil {
		cfg.Stderr = os.Stderr
	}
	if cfg.Progress == nil {
		cfg.Progress = NopProgress{}
	}
	return &Router{cfg: cfg, exec: exec}
}

// Run executes the invocation in the mode derived from input kind and flags.
func (r *Router) Run(ctx context.Context) error {
	mode := SelectMode(r.cfg.Kind, r.cfg.OutDir != "", r.cfg.Overwrite)
	logging.L().Debug("mode selected", "kind", r.cfg.Kind.String(), "mode", mode.String(), "files", len(r.cfg.Paths))

	switch mode {
	case ModeBuffer:
		return r.runBuffer(ctx)
	case ModeOverwrite:
		return r.runOverwrite(ctx)
	default:
		return r.runDestination(ctx)
	}
}

// runBuffer pushes the piped stream through the chain and writes the single
// result straight to stdout. Any destination directory flag is ignored here.
func (r *Router) runBuffer(ctx context.Context) error {
	out, err := r.exec.Run(ctx, r.cfg.Stdin)
	if err != nil {
		return err
	}
	_, err = r.cfg.Stdout.Write(out)
	return err
}

func (r *Router) runDestination(ctx context.Context) error {
	r.cfg.Progress.Start("Minifying images")
	defer r.cfg.Progress.Stop()

	results, err := r.exec.RunFiles(ctx, r.cfg.Paths)
	r.cfg.Progress.Stop()
	if err != nil {
		return err
	}

	if r.cfg.OutDir == "" {
		switch len(results) {
		case 0:
			// Nothing matched, nothing asked for: a no-op, not an error.
			return nil
		case 1:
			_, err := r.cfg.Stdout.Write(results[0].Data)
			return err
		default:
			return ErrMultipleFilesStdout
		}
	}

	written, err := files.WriteTree(results, r.cfg.OutDir)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.cfg.Stderr, "%d image(s) minified\n", len(written))
	return nil
}

// runOverwrite rewrites every input file in place. Files process
// concurrently but are all joined before returning: every file is attempted
// even when a sibling fails, and all failures come back aggregated.
func (r *Router) runOverwrite(ctx context.Context) error {
	errs := make([]error, len(r.cfg.Paths))
	var mu sync.Mutex // serializes per-file report lines on stderr

	var g errgroup.Group
	for i, path := range r.cfg.Paths {
		g.Go(func() error {
			errs[i] = r.overwriteOne(ctx, path, &mu)
			return errs[i]
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

func (r *Router) overwriteOne(ctx context.Context, path string, mu *sync.Mutex) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	out, err := r.exec.Run(ctx, data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	mu.Lock()
	fmt.Fprintf(r.cfg.Stderr, "%s: %d bytes\n", path, len(out))
	mu.Unlock()

	return files.Overwrite(path, out)
}
