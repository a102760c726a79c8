package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ResolvedPaths holds absolute locations derived from the config and the working directory.
type ResolvedPaths struct {
	ProjectRoot string
	DOT         string
	TSV         string
	ASCII       string
	Metrics     string
}

// ResolvePaths anchors project_root and every output file at cwd.
func ResolvePaths(cfg *Config, cwd string) (ResolvedPaths, error) {
	if strings.TrimSpace(cwd) == "" {
		return ResolvedPaths{}, fmt.Errorf("cwd must not be empty")
	}
	resolved := ResolvedPaths{ProjectRoot: ResolveRelative(cwd, cfg.ProjectRoot)}
	for _, out := range []struct {
		value  string
		target *string
	}{
		{cfg.Output.DOT, &resolved.DOT},
		{cfg.Output.TSV, &resolved.TSV},
		{cfg.Output.ASCII, &resolved.ASCII},
		{cfg.Output.Metrics, &resolved.Metrics},
	} {
		if strings.TrimSpace(out.value) != "" {
			*out.target = ResolveRelative(cwd, out.value)
		}
	}
	return resolved, nil
}

func ResolveRelative(base, value string) string {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return filepath.Clean(base)
	}
	if filepath.IsAbs(raw) {
		return filepath.Clean(raw)
	}
	return filepath.Clean(filepath.Join(base, raw))
}
