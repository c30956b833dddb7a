// Package project discovers the identity of the documented project: its
// name, version and readme, from the nearest package.json.
package project

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultName is used when neither an option nor a package.json names the
// project.
const DefaultName = "Documentation"

// NoReadme disables readme discovery when passed as Options.Readme.
const NoReadme = "none"

// Options override discovered values.
type Options struct {
	Name           string
	Readme         string
	IncludeVersion bool
}

// Info is the discovered project identity.
type Info struct {
	Name    string
	Readme  string
	Version string

	// PackageFile is the package.json consulted, empty if none was found.
	PackageFile string
}

type packageJSON struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Discover looks for package.json in rootDir and its ancestors. An explicit
// readme path is read as given; otherwise a README next to package.json (or
// in rootDir) is used if present.
func Discover(ctx context.Context, rootDir string, opts Options) (Info, error) {
	info := Info{}

	pkgPath, err := findUp(ctx, rootDir, "package.json")
	if err != nil {
		return info, err
	}
	if pkgPath != "" {
		data, err := os.ReadFile(pkgPath)
		if err != nil {
			return info, fmt.Errorf("project: read %s: %w", pkgPath, err)
		}
		var pkg packageJSON
		if err := json.Unmarshal(data, &pkg); err != nil {
			return info, fmt.Errorf("project: parse %s: %w", pkgPath, err)
		}
		info.Name = pkg.Name
		info.Version = pkg.Version
		info.PackageFile = pkgPath
	}

	if opts.Name != "" {
		info.Name = opts.Name
	}
	if info.Name == "" {
		info.Name = DefaultName
	}
	if opts.IncludeVersion && info.Version != "" {
		info.Name = fmt.Sprintf("%s - v%s", info.Name, strings.TrimPrefix(info.Version, "v"))
	}

	readme, err := readReadme(rootDir, pkgPath, opts.Readme)
	if err != nil {
		return info, err
	}
	info.Readme = readme
	return info, nil
}

func readReadme(rootDir, pkgPath, explicit string) (string, error) {
	switch explicit {
	case NoReadme:
		return "", nil
	case "":
	default:
		data, err := os.ReadFile(explicit)
		if err != nil {
			return "", fmt.Errorf("project: read readme: %w", err)
		}
		return string(data), nil
	}

	dir := rootDir
	if pkgPath != "" {
		dir = filepath.Dir(pkgPath)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("project: list %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(e.Name(), "readme.md") || strings.EqualFold(e.Name(), "readme") {
			data, err := os.ReadFile(filepath.Join(dir, e.Name()))
			if err != nil {
				return "", fmt.Errorf("project: read readme: %w", err)
			}
			return string(data), nil
		}
	}
	return "", nil
}

// findUp returns the first path named name in dir or an ancestor, or "".
func findUp(ctx context.Context, dir, name string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("project: resolve %s: %w", dir, err)
	}
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		candidate := filepath.Join(dir, name)
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}
