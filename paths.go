package docmodel

import (
	"path/filepath"
	"regexp"
	"strings"
)

var moduleExtension = regexp.MustCompile(`(\.d)?\.[cm]?[tj]sx?$`)

// splitPath splits on both separators so Windows-style names from a
// provider group the same way as slash-separated ones.
func splitPath(p string) []string {
	return strings.FieldsFunc(p, func(r rune) bool { return r == '/' || r == '\\' })
}

// commonDirectory returns the longest directory shared by all files. A
// single file yields its directory. Identical paths stop at the file's
// directory rather than the file itself.
func commonDirectory(files []string) string {
	if len(files) == 0 {
		return ""
	}
	prefix := ""
	if strings.HasPrefix(files[0], "/") {
		prefix = "/"
	}
	if len(files) == 1 {
		return prefix + strings.Join(dirParts(splitPath(files[0])), "/")
	}

	roots := make([][]string, len(files))
	shortest := -1
	for i, f := range files {
		roots[i] = splitPath(f)
		if shortest < 0 || len(roots[i]) < shortest {
			shortest = len(roots[i])
		}
	}

	i := 0
	for ; i < shortest; i++ {
		part := roots[0][i]
		same := true
		for _, r := range roots[1:] {
			if r[i] != part {
				same = false
				break
			}
		}
		if !same {
			break
		}
	}

	common := roots[0][:i]
	if i == shortest {
		// Every component of the shortest path matched, so it names a file.
		common = dirParts(common)
	}
	return prefix + strings.Join(common, "/")
}

func dirParts(parts []string) []string {
	if len(parts) == 0 {
		return parts
	}
	return parts[:len(parts)-1]
}

// moduleName derives a module's name from its file: the path relative to
// rootDir with forward slashes and the source extension removed.
func moduleName(rootDir, fileName string) string {
	rel := fileName
	if abs, err := filepath.Abs(fileName); err == nil {
		if r, err := filepath.Rel(rootDir, abs); err == nil {
			rel = r
		}
	}
	rel = strings.ReplaceAll(rel, `\`, "/")
	return moduleExtension.ReplaceAllString(rel, "")
}

// relativeSource returns fileName relative to rootDir with forward slashes,
// or fileName unchanged when it lies on another volume.
func relativeSource(rootDir, fileName string) string {
	abs, err := filepath.Abs(fileName)
	if err != nil {
		return fileName
	}
	rel, err := filepath.Rel(rootDir, abs)
	if err != nil {
		return fileName
	}
	return filepath.ToSlash(rel)
}
