package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/jward/docmodel"
	"github.com/jward/docmodel/internal/config"
	"github.com/jward/docmodel/internal/index"
	"github.com/jward/docmodel/internal/runtime"
	"github.com/jward/docmodel/internal/semantic"
	"github.com/jward/docmodel/internal/store"
)

var convertCmd = &cobra.Command{
	Use:   "convert [paths...]",
	Short: "Index sources and print the documentation model",
	Long:  "Indexes the given files and directories, converts every indexed file as an entry point and prints the resulting reflection tree.",
	RunE:  runConvert,
}

func init() {
	f := convertCmd.Flags()
	f.String("name", "", "project name (default: package.json name)")
	f.String("readme", "", `readme file, or "none" to skip readme discovery`)
	f.Bool("include-version", false, "append the package.json version to the project name")
	f.String("root-dir", "", "directory module names and source paths are relative to")
	f.StringArray("plugin", nil, "Risor plugin script run on conversion events (repeatable)")
	f.String("scripts-dir", "", "directory Risor plugin imports are resolved against")
	addIndexFlags(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := commandLogger(ctx)

	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	paths, err := resolvePaths(args)
	if err != nil {
		return err
	}

	s, err := openStore(cfg.DB)
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := newIndexer(s, cfg, logger).Index(ctx, paths)
	if err != nil {
		return fmt.Errorf("indexing: %w", err)
	}

	program, err := store.NewProgram(s,
		semantic.ProgramOptions{RootDir: cfg.RootDir},
		store.WithRootFiles(res.Files...),
		store.WithProgramLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("loading program: %w", err)
	}

	conv := docmodel.New(
		docmodel.WithLogger(logger),
		docmodel.WithRootDir(cfg.RootDir),
		docmodel.WithProjectOptions(docmodel.ProjectOptions{
			Name:           cfg.Name,
			Readme:         cfg.Readme,
			IncludeVersion: cfg.IncludeVersion,
		}),
	)
	if err := attachPlugins(conv, s, cfg); err != nil {
		return err
	}

	start := time.Now()
	proj, err := conv.Convert(ctx, program, res.Files)
	if err != nil {
		return err
	}
	logger.DebugContext(ctx, "converted project", "modules", len(proj.Modules()), "duration", time.Since(start))

	return outputResult(stdout, cfg.Format, CLIResult{
		Command: "convert",
		Results: toCLIProject(proj),
	})
}

// attachPlugins loads every configured plugin script and registers it on
// conv. Plugins see the index through the store host functions.
func attachPlugins(conv *docmodel.Converter, s *store.Store, cfg *config.Config) error {
	if len(cfg.Plugins) == 0 {
		return nil
	}
	rt := runtime.NewRuntime(cfg.ScriptsDir,
		runtime.WithStore(s),
		runtime.WithRuntimeLogger(conv.Logger()),
	)
	for _, path := range cfg.Plugins {
		p, err := rt.LoadPlugin(path)
		if err != nil {
			return fmt.Errorf("loading plugin: %w", err)
		}
		rt.Attach(conv, p)
	}
	return nil
}

// newIndexer builds an indexer from the shared index settings.
func newIndexer(s *store.Store, cfg *config.Config, logger *slog.Logger) *index.Indexer {
	opts := []index.Option{
		index.WithParallel(!cfg.Serial),
		index.WithLogger(logger),
	}
	if cfg.Workers > 0 {
		opts = append(opts, index.WithWorkers(cfg.Workers))
	}
	if len(cfg.Languages) > 0 {
		opts = append(opts, index.WithLanguages(cfg.Languages...))
	}
	return index.New(s, opts...)
}
