package app

import (
	"context"
	"depscan/internal/core/errors"
	"depscan/internal/engine/graph"
	"depscan/internal/engine/parser"
	"depscan/internal/engine/resolver"
	"depscan/internal/shared/observability"
	"depscan/internal/shared/util"
	stderrors "errors"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// parseResult is one discovered file after extraction. Exactly one of file and
// parseErr is set.
type parseResult struct {
	rel       string // Project-relative path
	module    string // Canonical node path
	lineCount int
	file      *parser.File
	parseErr  *parseFailure
}

type parseFailure struct {
	finding Finding
}

// parseAll extracts every file on a bounded worker pool. Each worker owns one result
// slot, so no locking is needed and result order follows files.
func (a *App) parseAll(ctx context.Context, root string, files []string) (results []parseResult, err error) {
	ctx, span := observability.Tracer.Start(ctx, "app.parse")
	defer func() { observability.EndSpan(span, err) }()

	results = make([]parseResult, len(files))
	var done atomic.Int64
	progress := util.NewThrottle(progressInterval)

	workers := a.Config.Analysis.Workers
	if workers < 1 {
		// SetLimit(0) blocks every Go call.
		workers = runtime.NumCPU()
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, rel := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = a.parseOne(root, rel)
			n := done.Add(1)
			progress.Do(func() {
				slog.Debug("parsing", "done", n, "total", len(files))
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, errors.CodeCanceled, "parsing canceled")
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeCanceled, "parsing canceled")
	}

	span.SetAttributes(attribute.Int("depscan.files", len(files)))
	return results, nil
}

func (a *App) parseOne(root, rel string) parseResult {
	res := parseResult{rel: rel, module: resolver.CanonicalPath(rel)}

	content, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		observability.FilesParsedTotal.WithLabelValues("read_error").Inc()
		slog.Warn("failed to read file", "path", rel, "error", err)
		res.parseErr = &parseFailure{finding: Finding{
			File:    rel,
			Module:  res.module,
			Kind:    KindParseError,
			Message: "unreadable: " + err.Error(),
		}}
		return res
	}
	res.lineCount = parser.CountLines(content)

	file, err := a.parser.ParseFile(rel, content)
	if err != nil {
		observability.FilesParsedTotal.WithLabelValues("parse_error").Inc()
		finding := Finding{File: rel, Module: res.module, Kind: KindParseError, Message: err.Error()}
		var pe *parser.ParseError
		if stderrors.As(err, &pe) {
			finding.Line = pe.Line
			finding.Snippet = pe.Snippet
			finding.Message = pe.Reason
		}
		slog.Debug("parse failed", "path", rel, "line", finding.Line, "reason", finding.Message)
		res.parseErr = &parseFailure{finding: finding}
		return res
	}

	observability.FilesParsedTotal.WithLabelValues("ok").Inc()
	res.file = file
	return res
}

// buildGraph is the single owner of graph mutation. Files that failed to parse
// still become nodes, without edges, so imports of them resolve.
func (a *App) buildGraph(ctx context.Context, results []parseResult, res *resolver.Resolver) (g *graph.Graph, err error) {
	_, span := observability.Tracer.Start(ctx, "app.buildGraph")
	defer func() { observability.EndSpan(span, err) }()

	g = graph.NewGraph()
	for _, r := range results {
		meta := graph.Node{Path: r.module, FilePath: r.rel, LineCount: r.lineCount}
		if r.file != nil {
			meta = graph.NodeFromFile(r.module, r.file)
		}
		if err := g.AddNode(r.module, meta); err != nil {
			return nil, err
		}
	}

	for _, r := range results {
		if r.file == nil {
			continue
		}
		for _, imp := range r.file.Imports {
			rec := graph.ImportRecord{Line: imp.Location.Line, Raw: imp.Raw, Conditional: imp.Conditional}
			for _, target := range res.Resolve(r.module, imp) {
				switch {
				case target.IsUnresolved():
					slog.Debug("unresolved import", "module", r.module, "line", rec.Line, "import", target.Unresolved)
					if err := g.RecordUnresolved(target.Unresolved); err != nil {
						return nil, err
					}
					continue
				case target.IsExternal():
					if err := g.RecordExternal(target.External, target.Stdlib); err != nil {
						return nil, err
					}
					continue
				}
				if err := g.AddEdge(r.module, target.Target, rec); err != nil {
					return nil, err
				}
			}
		}
	}

	g.Freeze()
	span.SetAttributes(
		attribute.Int("depscan.nodes", g.NodeCount()),
		attribute.Int("depscan.edges", g.EdgeCount()),
	)
	return g, nil
}

func baseName(p string) string {
	return path.Base(p)
}
