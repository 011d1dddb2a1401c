package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// PluginDef is a configuration-defined optimizer.
type PluginDef struct {
	Command string   `koanf:"command"`
	Args    []string `koanf:"args"`
	Stream  bool     `koanf:"stream"`
}

// File is the imgmin configuration: an optional default plugin chain
// (entries use the same dotted form as the --plugin flag) and extra
// optimizer definitions that extend the builtin registry table.
type File struct {
	Plugins     []string             `koanf:"plugins"`
	Definitions map[string]PluginDef `koanf:"definitions"`
}

// DefaultPath returns the conventional config location
// ($XDG_CONFIG_HOME/imgmin/config.yaml or the OS equivalent).
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "imgmin", "config.yaml")
}

// Load merges the YAML file at path (the default location when path is
// empty) with IMGMIN__ environment overrides. A missing file is not an
// error; explicit paths that fail to parse are.
func Load(path string) (File, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return File{}, fmt.Errorf("config %s: %w", path, err)
			}
		}
	}

	_ = k.Load(env.Provider("IMGMIN__", "__", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "IMGMIN__"))
	}), nil)

	var cfg File
	if err := k.Unmarshal("", &cfg); err != nil {
		return File{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}
