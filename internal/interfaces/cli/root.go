package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"imgmin.io/cli/internal/core/pipeline"
	"imgmin.io/cli/internal/core/plugin"
	"imgmin.io/cli/internal/core/router"
	"imgmin.io/cli/internal/infrastructure/config"
	"imgmin.io/cli/internal/infrastructure/execbin"
	"imgmin.io/cli/internal/infrastructure/files"
	"imgmin.io/cli/internal/logging"
)

// Version is overridden by ldflags at release time.
var Version = "dev"

// Flags holds the command-line flags for the root command.
type Flags struct {
	Plugins    []string
	OutDir     string
	Overwrite  bool
	ConfigPath string
	Verbose    bool
}

// NewRootCommand builds the imgmin command. imgmin is a single-command CLI:
// the root command is the minifier.
func NewRootCommand() *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:   "imgmin [file|glob ...]",
		Short: "Minify images with a pipeline of optimizer plugins",
		Long: `imgmin routes images through an ordered chain of minification plugins.

Input comes from file paths or glob patterns, or from a piped stream when no
paths are given. Output goes to stdout, to a destination directory, or back
over the original files.

Examples:
  imgmin photo.png > photo.min.png
  imgmin images/* --out-dir=build
  imgmin photo.jpg --overwrite
  imgmin -p jpegtran.progressive=true photo.jpg > out.jpg
  cat photo.png | imgmin > photo.min.png`,
		Version:      Version,
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMinify(cmd, args, flags)
		},
	}

	cmd.Flags().StringArrayVarP(&flags.Plugins, "plugin", "p", nil,
		"plugin name or name.key=value option (repeatable)")
	cmd.Flags().StringVarP(&flags.OutDir, "out-dir", "o", "",
		"write minified files to this directory")
	cmd.Flags().BoolVar(&flags.Overwrite, "overwrite", false,
		"rewrite input files in place")
	cmd.Flags().StringVar(&flags.ConfigPath, "config", "",
		"config file path (default is $XDG_CONFIG_HOME/imgmin/config.yaml)")
	cmd.Flags().BoolVar(&flags.Verbose, "verbose", false,
		"enable debug logging")

	return cmd
}

func runMinify(cmd *cobra.Command, args []string, flags *Flags) error {
	if flags.Verbose {
		logging.Configure(logging.Options{Level: "debug"})
	} else {
		logging.InitFromEnv()
	}

	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		return err
	}

	items, err := pluginItems(flags.Plugins, cfg.Plugins)
	if err != nil {
		return err
	}
	specs, err := plugin.Normalize(items)
	if err != nil {
		return err
	}

	reg := plugin.NewRegistry()
	execbin.RegisterBuiltins(reg)
	execbin.RegisterDefinitions(reg, definitions(cfg.Definitions))

	// Plugins resolve before any image bytes are read, so a missing
	// optimizer never leaves a half-processed run behind.
	handles, err := plugin.Load(cmd.Context(), reg, specs)
	if err != nil {
		return err
	}

	rcfg := router.Config{
		OutDir:    flags.OutDir,
		Overwrite: flags.Overwrite,
		Progress:  NewSpinner(os.Stderr),
	}
	switch {
	case len(args) > 0:
		paths, err := files.Resolve(args)
		if err != nil {
			return err
		}
		rcfg.Kind = router.InputFiles
		rcfg.Paths = paths
	case files.StdinPiped(os.Stdin):
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		rcfg.Kind = router.InputStream
		rcfg.Stdin = data
	default:
		return router.ErrNoInput
	}

	return router.New(rcfg, pipeline.New(handles)).Run(cmd.Context())
}

// pluginItems picks the plugin selection source: --plugin flags win over the
// config file chain, which wins over the stock default chain.
func pluginItems(flagArgs, cfgEntries []string) ([]any, error) {
	source := flagArgs
	if len(source) == 0 {
		source = cfgEntries
	}
	if len(source) == 0 {
		items := make([]any, len(execbin.DefaultPlugins))
		for i, name := range execbin.DefaultPlugins {
			items[i] = name
		}
		return items, nil
	}
	return parsePluginArgs(source)
}

// parsePluginArgs folds repeated dotted options for the same plugin into one
// options map, preserving first-mention order. A bare name repeated after an
// option form keeps the accumulated options.
func parsePluginArgs(args []string) ([]any, error) {
	var items []any
	index := make(map[string]int)

	for _, arg := range args {
		name, opts, err := plugin.ParseArg(arg)
		if err != nil {
			return nil, err
		}
		if i, ok := index[name]; ok {
			if m, ok := items[i].(map[string]plugin.Options); ok {
				for k, v := range opts {
					m[name][k] = v
				}
			} else if len(opts) > 0 {
				items[i] = map[string]plugin.Options{name: opts}
			}
			continue
		}
		index[name] = len(items)
		if len(opts) == 0 {
			items = append(items, name)
		} else {
			items = append(items, map[string]plugin.Options{name: opts})
		}
	}
	return items, nil
}

func definitions(defs map[string]config.PluginDef) map[string]execbin.Definition {
	out := make(map[string]execbin.Definition, len(defs))
	for name, def := range defs {
		out[name] = execbin.Definition{Command: def.Command, Args: def.Args, Stream: def.Stream}
	}
	return out
}

// Execute runs the root command and maps any failure to exit code 1.
func Execute(ctx context.Context) {
	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
