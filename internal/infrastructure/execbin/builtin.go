package execbin

import (
	"fmt"
	"sort"

	"imgmin.io/cli/internal/core/plugin"
)

// DefaultPlugins is the chain applied when no plugin selection is given.
var DefaultPlugins = []string{"gifsicle", "jpegtran", "optipng", "svgo"}

// RegisterBuiltins populates the registry with the stock optimizer table.
func RegisterBuiltins(reg *plugin.Registry) {
	reg.Register("gifsicle", NewFactory("gifsicle",
		"brew install gifsicle (or: apt-get install gifsicle)", buildGifsicle))
	reg.Register("jpegtran", NewFactory("jpegtran",
		"brew install jpeg-turbo (or: apt-get install libjpeg-turbo-progs)", buildJpegtran))
	reg.Register("optipng", NewFactory("optipng",
		"brew install optipng (or: apt-get install optipng)", buildOptipng))
	reg.Register("svgo", NewFactory("svgo",
		"npm install -g svgo", buildSvgo))
}

// Definition describes a configuration-defined optimizer: the binary to run,
// its fixed arguments (with {in}/{out} placeholders when Stream is false),
// and whether it streams over stdin/stdout.
type Definition struct {
	Command string
	Args    []string
	Stream  bool
}

// RegisterDefinitions adds configuration-defined optimizers to the registry.
// A definition under a builtin name replaces the builtin.
func RegisterDefinitions(reg *plugin.Registry, defs map[string]Definition) {
	for name, def := range defs {
		hint := fmt.Sprintf("install the %s binary on your PATH", def.Command)
		reg.Register(name, NewFactory(name, hint, func(opts plugin.Options) Command {
			args := append([]string(nil), def.Args...)
			args = append(args, passthrough(opts)...)
			return Command{Bin: def.Command, Args: args, Stream: def.Stream}
		}))
	}
}

func buildGifsicle(opts plugin.Options) Command {
	args := []string{fmt.Sprintf("-O%d", intOpt(opts, "optimizationLevel", 1))}
	if boolOpt(opts, "interlaced") {
		args = append(args, "--interlace")
	}
	args = append(args, passthrough(opts, "optimizationLevel", "interlaced")...)
	return Command{Bin: "gifsicle", Args: args, Stream: true}
}

func buildJpegtran(opts plugin.Options) Command {
	args := []string{"-copy", "none", "-optimize"}
	if boolOpt(opts, "progressive") {
		args = append(args, "-progressive")
	}
	if boolOpt(opts, "arithmetic") {
		args = append(args, "-arithmetic")
	}
	args = append(args, passthrough(opts, "progressive", "arithmetic")...)
	return Command{Bin: "jpegtran", Args: args, Stream: true}
}

func buildOptipng(opts plugin.Options) Command {
	args := []string{"-quiet", fmt.Sprintf("-o%d", intOpt(opts, "optimizationLevel", 3))}
	if boolOpt(opts, "errorRecovery") {
		args = append(args, "-fix")
	}
	if boolOpt(opts, "interlaced") {
		args = append(args, "-i", "1")
	}
	args = append(args, passthrough(opts, "optimizationLevel", "errorRecovery", "interlaced")...)
	args = append(args, "-out", OutFile, InFile)
	return Command{Bin: "optipng", Args: args, Stream: false}
}

func buildSvgo(opts plugin.Options) Command {
	args := []string{"--input", "-", "--output", "-"}
	if boolOpt(opts, "multipass") {
		args = append(args, "--multipass")
	}
	args = append(args, passthrough(opts, "multipass")...)
	return Command{Bin: "svgo", Args: args, Stream: true}
}

// passthrough turns option keys the builders did not consume into generic
// tool flags: bool true becomes --key, anything else --key=value. Keys are
// sorted so a given option set always yields the same argv.
func passthrough(opts plugin.Options, consumed ...string) []string {
	skip := make(map[string]bool, len(consumed))
	for _, k := range consumed {
		skip[k] = true
	}

	keys := make([]string, 0, len(opts))
	for k := range opts {
		if !skip[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var args []string
	for _, k := range keys {
		switch v := opts[k].(type) {
		case bool:
			if v {
				args = append(args, "--"+k)
			}
		default:
			args = append(args, fmt.Sprintf("--%s=%v", k, v))
		}
	}
	return args
}

func intOpt(opts plugin.Options, key string, def int) int {
	switch v := opts[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return def
	}
}

func boolOpt(opts plugin.Options, key string) bool {
	v, _ := opts[key].(bool)
	return v
}
