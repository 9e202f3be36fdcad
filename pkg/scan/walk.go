package scan

import (
	"fmt"
	"io/fs"
	"path/filepath"
)

// Directory segments excluded from discovery. Build caches are always
// skipped; test trees only when not opted in.
const (
	cacheDirName = "__pycache__"
	testsDirName = "tests"
)

// sourceExtension is the candidate file extension. Language identification
// of the content itself happens later, at analysis time.
const sourceExtension = ".py"

// Walk enumerates candidate source file paths under root. It excludes any
// path containing a __pycache__ segment and, unless includeTests is set, any
// path containing a tests segment. The returned order follows the lexical
// directory walk; callers must not rely on it.
func Walk(root string, includeTests bool) ([]string, error) {
	var paths []string

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if entry.IsDir() {
			if entry.Name() == cacheDirName {
				return filepath.SkipDir
			}

			if !includeTests && entry.Name() == testsDirName {
				return filepath.SkipDir
			}

			return nil
		}

		// Exact-case match: FOO.PY is not a Python source file name.
		if filepath.Ext(path) != sourceExtension {
			return nil
		}

		paths = append(paths, path)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	return paths, nil
}
