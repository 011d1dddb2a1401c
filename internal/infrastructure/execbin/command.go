package execbin

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"imgmin.io/cli/internal/core/plugin"
)

// Placeholders substituted into Args for tools that cannot stream.
const (
	InFile  = "{in}"
	OutFile = "{out}"
)

// Command is a plugin.Transform backed by an external optimizer binary. In
// stream mode the image bytes go through the tool's stdin/stdout; otherwise
// the bytes round-trip through temp files named by the placeholders.
type Command struct {
	Bin    string
	Args   []string
	Stream bool
}

// Apply implements plugin.Transform.
func (c Command) Apply(ctx context.Context, data []byte) ([]byte, error) {
	if c.Stream {
		return c.applyStream(ctx, data)
	}
	return c.applyTempFiles(ctx, data)
}

func (c Command) applyStream(ctx context.Context, data []byte) ([]byte, error) {
	var out, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.Bin, c.Args...)
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, toolError(c.Bin, err, &stderr)
	}
	return out.Bytes(), nil
}

func (c Command) applyTempFiles(ctx context.Context, data []byte) ([]byte, error) {
	dir, err := os.MkdirTemp("", "imgmin-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	inPath := filepath.Join(dir, "input")
	outPath := filepath.Join(dir, "output")
	if err := os.WriteFile(inPath, data, 0o600); err != nil {
		return nil, err
	}

	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		a = strings.ReplaceAll(a, InFile, inPath)
		a = strings.ReplaceAll(a, OutFile, outPath)
		args[i] = a
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.Bin, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, toolError(c.Bin, err, &stderr)
	}
	return os.ReadFile(outPath)
}

func toolError(bin string, err error, stderr *bytes.Buffer) error {
	msg := strings.TrimSpace(stderr.String())
	if msg == "" {
		return fmt.Errorf("%s: %w", bin, err)
	}
	return fmt.Errorf("%s: %w: %s", bin, err, msg)
}

// NewFactory wraps an argv builder into a plugin.Factory. The binary is
// resolved at load time so a missing tool fails the invocation before any
// image bytes are touched.
func NewFactory(name, hint string, build func(opts plugin.Options) Command) plugin.Factory {
	return func(opts plugin.Options) (plugin.Transform, error) {
		cmd := build(opts)
		if _, err := exec.LookPath(cmd.Bin); err != nil {
			return nil, &plugin.NotInstalledError{Name: name, Hint: hint}
		}
		return cmd, nil
	}
}
