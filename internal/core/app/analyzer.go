package app

import (
	"context"
	"depscan/internal/core/errors"
	"depscan/internal/engine/dynimport"
	"depscan/internal/engine/resolver"
	"depscan/internal/shared/observability"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	analyzerCycles       = "cycles"
	analyzerReachability = "reachability"
	analyzerSplit        = "split"
	analyzerDynamic      = "dynamic_imports"
)

// analyzer fills one report field from the frozen graph.
type analyzer struct {
	name string
	run  func(fail func(error)) error
}

// analyzers returns the four analyses of one run, bound to report.
func (a *App) analyzers(report *Report, results []parseResult, res *resolver.Resolver) []analyzer {
	return []analyzer{
		{analyzerCycles, func(func(error)) error {
			report.Cycles = report.Graph.DetectCycles()
			return nil
		}},
		{analyzerReachability, func(func(error)) error {
			report.Reachability = report.Graph.FindDeadModules(a.entryPoints(report))
			return nil
		}},
		{analyzerSplit, func(fail func(error)) error {
			oversized, errs := a.splits.Analyze(report.Graph)
			report.Oversized = oversized
			for _, err := range errs {
				observability.AnalyzerFailuresTotal.WithLabelValues(analyzerSplit).Inc()
				slog.Warn("split heuristic failed", "error", err)
				fail(err)
			}
			return nil
		}},
		{analyzerDynamic, func(func(error)) error {
			report.DynamicFindings = a.scanDynamic(results, res)
			return nil
		}},
	}
}

// analyze runs the analyzers concurrently. They only read shared state and each
// writes its own report field. A failing or panicking analyzer is recorded in
// report.AnalyzerErrors; the rest complete.
func (a *App) analyze(ctx context.Context, report *Report, analyzers []analyzer) {
	var mu sync.Mutex
	fail := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		report.AnalyzerErrors = append(report.AnalyzerErrors, err)
	}

	var g errgroup.Group
	for _, an := range analyzers {
		g.Go(func() error {
			if err := a.runAnalyzer(ctx, an.name, func() error { return an.run(fail) }); err != nil {
				observability.AnalyzerFailuresTotal.WithLabelValues(an.name).Inc()
				slog.Error("analyzer failed", "analyzer", an.name, "error", err)
				fail(err)
			}
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(report.AnalyzerErrors, func(i, j int) bool {
		return report.AnalyzerErrors[i].Error() < report.AnalyzerErrors[j].Error()
	})
}

// runAnalyzer times fn, traces it and converts a panic into an INTERNAL error.
func (a *App) runAnalyzer(ctx context.Context, name string, fn func() error) (err error) {
	if err := ctx.Err(); err != nil {
		return errors.AddContext(errors.Wrap(err, errors.CodeCanceled, "analyzer skipped"), errors.CtxAnalyzer, name)
	}
	_, span := observability.Tracer.Start(ctx, "analyze."+name)
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = errors.AddContext(errors.New(errors.CodeInternal, fmt.Sprintf("analyzer panicked: %v", r)), errors.CtxAnalyzer, name)
		}
		observability.AnalysisDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
		observability.EndSpan(span, err)
	}()

	if err := fn(); err != nil {
		return errors.AddContext(err, errors.CtxAnalyzer, name)
	}
	return nil
}

// entryPoints returns the explicit entry points when configured, otherwise the
// inferred ones. Explicit references that match no node are passed through so the
// reachability result lists them as unknown.
func (a *App) entryPoints(report *Report) []string {
	explicit := a.Config.Analysis.EntryPoints
	if len(explicit) == 0 {
		inferred := report.Graph.InferEntryPoints(a.isEntry)
		slog.Debug("inferred entry points", "count", len(inferred), "entries", inferred)
		return inferred
	}

	out := make([]string, 0, len(explicit))
	for _, ref := range explicit {
		path, ok := report.Lookup(ref)
		if !ok {
			slog.Warn("entry point does not match any module", "entry", ref)
			out = append(out, ref)
			continue
		}
		out = append(out, path)
	}
	return out
}

func (a *App) scanDynamic(results []parseResult, res *resolver.Resolver) []Finding {
	out := make([]Finding, 0)
	for _, r := range results {
		if r.file == nil {
			continue
		}
		for _, f := range a.dynamic.Scan(r.file, res) {
			out = append(out, Finding{
				File:     r.rel,
				Module:   r.module,
				Line:     f.Location.Line,
				Kind:     FindingKind(f.Kind),
				Snippet:  f.Snippet,
				Message:  dynimport.Describe(f),
				Target:   f.Literal,
				Resolved: f.Resolved,
			})
		}
	}
	sortFindings(out)
	return out
}
