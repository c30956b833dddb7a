package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index [paths...]",
	Short: "Index sources into the semantic-model database",
	Long:  "Parses TypeScript and JavaScript files with tree-sitter and writes their declarations to the SQLite database. Unchanged files are skipped.",
	RunE:  runIndex,
}

func init() {
	addIndexFlags(indexCmd)
}

// addIndexFlags registers the flags shared by index and convert.
func addIndexFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Bool("serial", false, "extract files one at a time")
	f.Int("workers", 0, "parallel extraction workers (default: GOMAXPROCS)")
	f.StringSlice("language", nil, "language filter, repeatable or comma-separated (typescript, tsx, javascript)")
}

func runIndex(cmd *cobra.Command, args []string) error {
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

	return outputResult(stdout, cfg.Format, CLIResult{
		Command: "index",
		Results: CLIIndexSummary{
			Database:   cfg.DB,
			Files:      len(res.Files),
			Indexed:    res.Indexed,
			Unchanged:  res.Unchanged,
			Removed:    res.Removed,
			Bytes:      res.Bytes,
			DurationMS: res.Duration.Milliseconds(),
		},
	})
}
