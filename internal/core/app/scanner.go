package app

import (
	"depscan/internal/core/app/helpers"
	"depscan/internal/core/errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

// checkRoot fails with INVALID_ROOT unless root is an existing directory.
func checkRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", errors.AddContext(errors.Wrap(err, errors.CodeInvalidRoot, "cannot resolve project root"), errors.CtxPath, root)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", errors.AddContext(errors.Wrap(err, errors.CodeInvalidRoot, "project root does not exist"), errors.CtxPath, root)
	}
	if !info.IsDir() {
		return "", errors.AddContext(errors.New(errors.CodeInvalidRoot, "project root is not a directory"), errors.CtxPath, root)
	}
	return abs, nil
}

// ScanDirectory walks root and returns the sorted project-relative, slash-separated
// paths of every supported file not excluded by the directory or file globs. Globs
// match base names. The root itself is never excluded.
func (a *App) ScanDirectory(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			slog.Warn("skipping unreadable path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		base := filepath.Base(path)
		if d.IsDir() {
			if path != root && helpers.MatchAny(a.excludeDirs, base) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !a.parser.IsSupportedPath(path) {
			return nil
		}
		if helpers.MatchAny(a.excludeFiles, base) {
			return nil
		}

		rel, err := helpers.RelSlash(root, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeInvalidRoot, "walk project root"), errors.CtxPath, root)
	}
	sort.Strings(files)
	return files, nil
}
