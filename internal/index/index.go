// Package index keeps the SQLite semantic model in sync with source files
// on disk: it discovers files, skips unchanged ones by content hash, runs
// the tree-sitter extractor and commits the results.
package index

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/jward/docmodel/internal/extract"
	"github.com/jward/docmodel/internal/store"
)

// ExtractorVersion is recorded in the index metadata. Bump it whenever the
// extractor output changes so existing databases are rebuilt.
const ExtractorVersion = "3"

const metaExtractorVersion = "extractor_version"

// Indexer extracts source files into a Store.
type Indexer struct {
	store     *store.Store
	logger    *slog.Logger
	languages map[string]bool // nil means all languages
	parallel  bool
	workers   int
}

// Option configures an Indexer.
type Option func(*Indexer)

// WithLanguages restricts which languages the Indexer will process.
func WithLanguages(languages ...string) Option {
	return func(ix *Indexer) {
		ix.languages = make(map[string]bool, len(languages))
		for _, lang := range languages {
			ix.languages[lang] = true
		}
	}
}

// WithParallel controls parallel extraction. When true (default), files are
// parsed by a worker pool and a single writer commits the batches. Set to
// false for serial mode.
func WithParallel(parallel bool) Option {
	return func(ix *Indexer) { ix.parallel = parallel }
}

// WithWorkers caps the extraction worker pool. Zero means one per CPU.
func WithWorkers(n int) Option {
	return func(ix *Indexer) { ix.workers = n }
}

// WithLogger sets the logger for progress and per-file failures.
func WithLogger(l *slog.Logger) Option {
	return func(ix *Indexer) {
		if l != nil {
			ix.logger = l
		}
	}
}

// New returns an Indexer writing to s.
func New(s *store.Store, opts ...Option) *Indexer {
	ix := &Indexer{
		store:    s,
		logger:   slog.New(slog.DiscardHandler),
		parallel: true,
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// Result summarizes an indexing run.
type Result struct {
	// Files are the absolute paths of every supported file named by the
	// run, indexed or unchanged, in sorted order.
	Files []string

	Indexed   int
	Unchanged int
	Removed   int

	// Bytes is the size of the files extracted by this run.
	Bytes    int64
	Duration time.Duration
}

// Stale reports whether the index was built by a different extractor
// version. Stale indexes are re-extracted regardless of content hashes.
func (ix *Indexer) Stale() bool {
	stored, err := ix.store.Metadata(metaExtractorVersion)
	if err != nil || stored == "" {
		return true
	}
	return stored != ExtractorVersion
}

// Index indexes a mix of files and directories. Directories expand via
// IndexDirectory's discovery rules and prune files that disappeared from
// them.
func (ix *Indexer) Index(ctx context.Context, entries []string) (*Result, error) {
	start := time.Now()
	var paths []string
	var roots []string
	for _, entry := range entries {
		abs, err := filepath.Abs(entry)
		if err != nil {
			return nil, fmt.Errorf("index: resolve %s: %w", entry, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("index: %w", err)
		}
		if !info.IsDir() {
			paths = append(paths, abs)
			continue
		}
		found, err := ix.ListFiles(abs)
		if err != nil {
			return nil, err
		}
		roots = append(roots, abs)
		paths = append(paths, found...)
	}
	slices.Sort(paths)
	paths = slices.Compact(paths)

	res, err := ix.IndexFiles(ctx, paths)
	if err != nil {
		return res, err
	}
	for _, root := range roots {
		n, err := ix.prune(root, res.Files)
		if err != nil {
			return res, err
		}
		res.Removed += n
	}
	res.Duration = time.Since(start)
	return res, nil
}

// IndexDirectory indexes every supported file under root and removes
// previously indexed files under root that no longer exist.
func (ix *Indexer) IndexDirectory(ctx context.Context, root string) (*Result, error) {
	return ix.Index(ctx, []string{root})
}

// IndexFiles indexes the given file paths. Unsupported or filtered-out
// languages are ignored and files whose content hash is unchanged are
// skipped. Errors on individual files are logged and collected; processing
// continues and the first error is returned with a count.
func (ix *Indexer) IndexFiles(ctx context.Context, paths []string) (*Result, error) {
	start := time.Now()
	res := &Result{}
	force := ix.Stale()
	if force {
		ix.logger.Debug("extractor version changed, re-extracting all files")
	}

	var items []*workItem
	var errs []error
	for _, path := range paths {
		item, skip, err := ix.prepareFile(path, force)
		if err != nil {
			errs = append(errs, fmt.Errorf("prepare %s: %w", path, err))
			continue
		}
		if item == nil && !skip {
			continue // unsupported
		}
		res.Files = append(res.Files, path)
		if skip {
			res.Unchanged++
			continue
		}
		items = append(items, item)
	}

	var commitErrs []error
	if ix.parallel {
		commitErrs = ix.extractParallel(ctx, items, res)
	} else {
		commitErrs = ix.extractSerial(ctx, items, res)
	}
	errs = append(errs, commitErrs...)
	if err := ctx.Err(); err != nil {
		return res, err
	}

	slices.Sort(res.Files)
	res.Duration = time.Since(start)
	ix.logger.Debug("indexed files",
		"indexed", res.Indexed, "unchanged", res.Unchanged, "duration", res.Duration)

	if len(errs) > 0 {
		for _, err := range errs {
			ix.logger.Warn("index failed", "err", err)
		}
		return res, fmt.Errorf("indexing had %d error(s): %w", len(errs), errs[0])
	}
	if err := ix.store.SetMetadata(metaExtractorVersion, ExtractorVersion); err != nil {
		return res, err
	}
	return res, nil
}

// workItem holds everything an extraction worker needs.
type workItem struct {
	file    *store.File
	content []byte
	batch   *store.BatchedStore
	result  *extract.Result
}

// prepareFile hashes a file, drops its stale data and inserts a fresh file
// record. It returns (nil, true) for unchanged files and (nil, false) for
// unsupported ones.
func (ix *Indexer) prepareFile(path string, force bool) (*workItem, bool, error) {
	lang, ok := extract.LanguageForFile(path)
	if !ok {
		return nil, false, nil
	}
	if ix.languages != nil && !ix.languages[lang] {
		return nil, false, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("read file: %w", err)
	}
	hash := store.ContentHash(content)

	existing, err := ix.store.FileByPath(path)
	if err != nil {
		return nil, false, fmt.Errorf("lookup file: %w", err)
	}
	if existing != nil && existing.Hash == hash && !force {
		return nil, true, nil
	}
	if existing != nil {
		if err := ix.store.DeleteFile(existing.ID); err != nil {
			return nil, false, fmt.Errorf("delete old data: %w", err)
		}
	}

	file := &store.File{
		Path:        path,
		Language:    lang,
		Hash:        hash,
		Size:        int64(len(content)),
		LastIndexed: time.Now(),
	}
	if _, err := ix.store.InsertFile(file); err != nil {
		return nil, false, err
	}
	return &workItem{file: file, content: content, batch: store.NewBatchedStore()}, false, nil
}

// extractItem runs the extractor for one item into its own batch. It is safe
// to call from several goroutines.
func extractItem(ctx context.Context, item *workItem) error {
	res, err := extract.Extract(ctx, item.batch, item.file, item.content)
	if err != nil {
		return err
	}
	item.result = res
	return nil
}

// commit writes an extracted item. A failed item's file record is removed
// so the next run retries it.
func (ix *Indexer) commit(item *workItem, extractErr error, res *Result) error {
	err := extractErr
	if err == nil {
		err = ix.store.CommitBatch(item.batch)
	}
	if err == nil {
		item.file.Doc = item.result.Doc
		item.file.IsScript = item.result.IsScript
		err = ix.store.UpdateFile(item.file)
	}
	if err != nil {
		if derr := ix.store.DeleteFile(item.file.ID); derr != nil {
			ix.logger.Warn("drop failed file record", "path", item.file.Path, "err", derr)
		}
		return fmt.Errorf("index %s: %w", item.file.Path, err)
	}
	res.Indexed++
	res.Bytes += item.file.Size
	ix.logger.Debug("extracted", "path", item.file.Path, "rows", item.batch.Len())
	return nil
}

func (ix *Indexer) extractSerial(ctx context.Context, items []*workItem, res *Result) []error {
	var errs []error
	for _, item := range items {
		if ctx.Err() != nil {
			break
		}
		if err := ix.commit(item, extractItem(ctx, item), res); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// skipDirs are excluded from directory walks.
var skipDirs = map[string]bool{
	"node_modules":     true,
	"bower_components": true,
	"vendor":           true,
}

// ListFiles returns the supported files under root. Inside a git
// repository it uses git ls-files so .gitignore is respected; otherwise it
// walks the tree, skipping hidden directories and dependency folders.
func (ix *Indexer) ListFiles(root string) ([]string, error) {
	paths, err := ix.gitListFiles(root)
	if err != nil {
		ix.logger.Debug("git ls-files unavailable, walking", "root", root, "err", err)
		paths, err = ix.walkListFiles(root)
		if err != nil {
			return nil, err
		}
	}
	slices.Sort(paths)
	return paths, nil
}

func (ix *Indexer) supported(path string) bool {
	lang, ok := extract.LanguageForFile(path)
	return ok && (ix.languages == nil || ix.languages[lang])
}

func (ix *Indexer) gitListFiles(root string) ([]string, error) {
	// --others with --exclude-standard adds untracked, non-ignored files.
	cmd := exec.Command("git", "ls-files", "--cached", "--others", "--exclude-standard")
	cmd.Dir = root
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("git ls-files: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	var paths []string
	for _, line := range strings.Split(stdout.String(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		abs := filepath.Join(root, line)
		if !ix.supported(abs) {
			continue
		}
		// Deleted but still tracked files are listed by --cached.
		if _, err := os.Stat(abs); err != nil {
			continue
		}
		paths = append(paths, abs)
	}
	return paths, nil
}

func (ix *Indexer) walkListFiles(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || skipDirs[name]) {
				return filepath.SkipDir
			}
			return nil
		}
		if ix.supported(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}
	return paths, nil
}

// prune removes indexed files under root that are not in current.
func (ix *Indexer) prune(root string, current []string) (int, error) {
	files, err := ix.store.Files()
	if err != nil {
		return 0, err
	}
	prefix := root + string(filepath.Separator)
	var stale []int64
	for _, f := range files {
		if !strings.HasPrefix(f.Path, prefix) || !ix.supported(f.Path) {
			continue
		}
		if _, ok := slices.BinarySearch(current, f.Path); ok {
			continue
		}
		ix.logger.Debug("pruning removed file", "path", f.Path)
		stale = append(stale, f.ID)
	}
	if err := ix.store.DeleteFiles(stale); err != nil {
		return 0, err
	}
	return len(stale), nil
}
