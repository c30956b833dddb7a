package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jward/docmodel/internal/config"
	"github.com/jward/docmodel/internal/logging"
	"github.com/jward/docmodel/internal/store"
)

var (
	flagDB      string
	flagFormat  string
	flagConfig  string
	flagVerbose bool
)

// stdout and stderr are swapped out by tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "docmodel",
	Short:         "Build a documentation model from TypeScript and JavaScript sources",
	Long:          "docmodel indexes TypeScript and JavaScript files with tree-sitter into a SQLite semantic model, then converts the exported declarations of each entry file into a reflection tree.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := validateFormat(flagFormat); err != nil {
			return err
		}
		logger := logging.New(stderr, logging.Options{Verbose: flagVerbose})
		ctx := logging.WithLogger(cmd.Context(), logger)
		cmd.SetContext(logging.AddAttrs(ctx, "command", cmd.Name()))
		return nil
	},
	// No Run: prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "database path (default: .docmodel/index.db in the project directory)")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", config.DefaultFormat, "output format: json|text")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: docmodel.yaml in the project directory)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log debug output")

	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(kindsCmd)
}

// loadConfig resolves the settings for a command whose positional args
// are paths. The project directory is the first path (or its directory)
// and defaults to the working directory.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
		if info, err := os.Stat(dir); err == nil && !info.IsDir() {
			dir = filepath.Dir(dir)
		}
	}
	cfg, err := config.Load(dir, flagConfig, cmd.Flags())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// openStore opens and migrates the index at path, creating its directory.
func openStore(path string) (*store.Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	s, err := store.NewStore(path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return s, nil
}

// resolvePaths returns the absolute form of every path argument, checking
// that each exists. No arguments means the working directory.
func resolvePaths(args []string) ([]string, error) {
	if len(args) == 0 {
		args = []string{"."}
	}
	out := make([]string, 0, len(args))
	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, fmt.Errorf("resolving path %q: %w", arg, err)
		}
		if _, err := os.Stat(abs); err != nil {
			return nil, fmt.Errorf("path not found: %s", abs)
		}
		out = append(out, abs)
	}
	return out, nil
}

func commandLogger(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}
