package report

import (
	"depscan/internal/core/app"
	"depscan/internal/shared/util"
	"fmt"
	"log/slog"
	"strings"
)

// Targets names the artifact files of one run. Empty paths are skipped.
type Targets struct {
	DOT           string
	TSV           string
	ASCII         string
	ASCIIMaxDepth int
}

// WriteArtifacts renders every requested artifact and writes each atomically. It
// returns the paths written, in DOT, TSV, ASCII order.
func WriteArtifacts(r *app.Report, t Targets) ([]string, error) {
	type artifact struct {
		kind string
		path string
		gen  func() (string, error)
	}
	artifacts := []artifact{
		{"dot", t.DOT, NewDOTGenerator(r).Generate},
		{"tsv", t.TSV, func() (string, error) {
			if r == nil {
				return "", fmt.Errorf("tsv: nil report")
			}
			return NewTSVGenerator(r.Graph).Generate()
		}},
		{"ascii", t.ASCII, NewASCIIGenerator(r, t.ASCIIMaxDepth).Generate},
	}

	var written []string
	for _, a := range artifacts {
		if strings.TrimSpace(a.path) == "" {
			continue
		}
		content, err := a.gen()
		if err != nil {
			return written, fmt.Errorf("generate %s output: %w", a.kind, err)
		}
		if err := util.WriteFileAtomic(a.path, []byte(content), 0o644); err != nil {
			return written, fmt.Errorf("write %s output %q: %w", a.kind, a.path, err)
		}
		slog.Info("wrote output", "kind", a.kind, "path", a.path)
		written = append(written, a.path)
	}
	return written, nil
}
