// Package config loads docmodel CLI settings. Values are layered, lowest
// precedence first: built-in defaults, docmodel.yaml, DOCMODEL_ environment
// variables, then command-line flags that were explicitly set.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/jward/docmodel/internal/project"
)

const (
	EnvPrefix     = "DOCMODEL_"
	DefaultFormat = "json"
)

// DefaultDB is the index location relative to the project directory.
var DefaultDB = filepath.Join(".docmodel", "index.db")

// FileNames are the config files looked up in the project directory.
var FileNames = []string{"docmodel.yaml", "docmodel.yml"}

// Config holds every setting the CLI commands read.
type Config struct {
	DB      string `koanf:"db"`
	Format  string `koanf:"format"`
	Verbose bool   `koanf:"verbose"`

	Name           string `koanf:"name"`
	Readme         string `koanf:"readme"`
	IncludeVersion bool   `koanf:"include_version"`
	RootDir        string `koanf:"root_dir"`

	Plugins    []string `koanf:"plugins"`
	ScriptsDir string   `koanf:"scripts_dir"`

	Serial    bool     `koanf:"serial"`
	Workers   int      `koanf:"workers"`
	Languages []string `koanf:"languages"`

	// ProjectDir is the directory the config was resolved against.
	ProjectDir string `koanf:"-"`
	// File is the config file that was loaded, empty if none.
	File string `koanf:"-"`
}

// flagKeys maps flag names whose config key is not the snake_case form.
var flagKeys = map[string]string{
	"plugin":   "plugins",
	"language": "languages",
}

// Load builds the configuration for a command run in projectDir. An
// explicit cfgFile must exist; otherwise docmodel.yaml is looked up in
// projectDir. Relative paths are resolved against projectDir, except
// those given as flags, which are relative to the working directory.
func Load(projectDir, cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	absDir, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", projectDir, err)
	}

	if err := k.Load(confmap.Provider(map[string]any{
		"db":      DefaultDB,
		"format":  DefaultFormat,
		"verbose": false,
		"serial":  false,
		"workers": 0,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}

	used, err := findFile(absDir, cfgFile)
	if err != nil {
		return nil, err
	}
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", used, err)
		}
	}

	// DOCMODEL_ROOT_DIR -> root_dir
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("config: load env: %w", err)
	}

	flagPaths := map[string]bool{}
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			if mapped, ok := flagKeys[f.Name]; ok {
				key = mapped
			}
			flagPaths[key] = true
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("config: load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	cfg.ProjectDir = absDir
	cfg.File = used

	resolve := func(key, path string) string {
		if path == "" || filepath.IsAbs(path) {
			return path
		}
		if flagPaths[key] {
			if abs, err := filepath.Abs(path); err == nil {
				return abs
			}
			return path
		}
		return filepath.Join(absDir, path)
	}
	cfg.DB = resolve("db", cfg.DB)
	cfg.Readme = resolveReadme(resolve, cfg.Readme)
	cfg.RootDir = resolve("root_dir", cfg.RootDir)
	cfg.ScriptsDir = resolve("scripts_dir", cfg.ScriptsDir)
	for i, p := range cfg.Plugins {
		cfg.Plugins[i] = resolve("plugins", p)
	}
	return &cfg, nil
}

// resolveReadme leaves the project.NoReadme sentinel untouched.
func resolveReadme(resolve func(key, path string) string, readme string) string {
	if readme == project.NoReadme {
		return readme
	}
	return resolve("readme", readme)
}

func findFile(dir, explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config: %w", err)
		}
		return explicit, nil
	}
	for _, name := range FileNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", nil
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	switch c.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("invalid format %q: must be json or text", c.Format))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("invalid workers %d: must not be negative", c.Workers))
	}
	if c.DB == "" {
		errs = append(errs, errors.New("db path is required"))
	}
	for _, p := range c.Plugins {
		if filepath.Ext(p) != ".risor" {
			errs = append(errs, fmt.Errorf("plugin %s: expected a .risor script", p))
		}
	}
	return errors.Join(errs...)
}
