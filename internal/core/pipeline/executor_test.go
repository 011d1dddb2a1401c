package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imgmin.io/cli/internal/core/plugin"
)

func appendTransform(suffix string) plugin.Transform {
	return plugin.TransformFunc(func(_ context.Context, data []byte) ([]byte, error) {
		return append(append([]byte(nil), data...), []byte(suffix)...), nil
	})
}

func failingTransform(msg string) plugin.Transform {
	return plugin.TransformFunc(func(_ context.Context, _ []byte) ([]byte, error) {
		return nil, errors.New(msg)
	})
}

func handle(name string, tr plugin.Transform) plugin.Handle {
	return plugin.Handle{Spec: plugin.Spec{Name: name, Options: plugin.Options{}}, Transform: tr}
}

// TestExecutor_Run_AppliesChainInOrder tests composition order
func TestExecutor_Run_AppliesChainInOrder(t *testing.T) {
	exec := New([]plugin.Handle{
		handle("first", appendTransform("-a")),
		handle("second", appendTransform("-b")),
		handle("third", appendTransform("-c")),
	})

	out, err := exec.Run(context.Background(), []byte("img"))
	require.NoError(t, err)
	assert.Equal(t, "img-a-b-c", string(out), "Output of transform i must feed transform i+1")
}

// TestExecutor_Run_EmptyChain_IsIdentity tests the zero-plugin edge
func TestExecutor_Run_EmptyChain_IsIdentity(t *testing.T) {
	exec := New(nil)

	out, err := exec.Run(context.Background(), []byte("untouched"))
	require.NoError(t, err)
	assert.Equal(t, "untouched", string(out))
}

// TestExecutor_Run_FailureNamesPlugin tests error attribution
func TestExecutor_Run_FailureNamesPlugin(t *testing.T) {
	exec := New([]plugin.Handle{
		handle("ok", appendTransform("-x")),
		handle("exploding", failingTransform("boom")),
		handle("never-reached", appendTransform("-y")),
	})

	_, err := exec.Run(context.Background(), []byte("img"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exploding", "Error should name the failing plugin")
	assert.Contains(t, err.Error(), "boom")
}

// TestExecutor_RunFiles_OrderedResults tests file-mode execution
func TestExecutor_RunFiles_OrderedResults(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"one.png", "two.png", "three.png"} {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(name), 0o644))
		paths = append(paths, p)
	}

	exec := New([]plugin.Handle{handle("tag", appendTransform("!"))})
	results, err := exec.RunFiles(context.Background(), paths)
	require.NoError(t, err)

	require.Len(t, results, 3)
	for i, res := range results {
		assert.Equal(t, paths[i], res.SourcePath, "Results must stay in input order")
		assert.Equal(t, filepath.Base(paths[i])+"!", string(res.Data))
		assert.Empty(t, res.OutputPath, "Executor does not decide the sink")
	}
}

// TestExecutor_RunFiles_FirstFailureAborts tests whole-run abort semantics
func TestExecutor_RunFiles_FirstFailureAborts(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.png")
	require.NoError(t, os.WriteFile(good, []byte("fine"), 0o644))
	missing := filepath.Join(dir, "missing.png")

	exec := New([]plugin.Handle{handle("tag", appendTransform("!"))})
	results, err := exec.RunFiles(context.Background(), []string{good, missing})
	require.Error(t, err)
	assert.Nil(t, results, "A failing item discards the whole run, no partial skipping")
	assert.Contains(t, err.Error(), "missing.png")
}
