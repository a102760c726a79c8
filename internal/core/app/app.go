package app

import (
	"context"
	"depscan/internal/core/app/helpers"
	"depscan/internal/core/config"
	"depscan/internal/core/errors"
	"depscan/internal/engine/dynimport"
	"depscan/internal/engine/graph"
	"depscan/internal/engine/parser"
	"depscan/internal/engine/resolver"
	"depscan/internal/engine/split"
	"depscan/internal/shared/observability"
	stderrors "errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"go.opentelemetry.io/otel/attribute"
)

// progressInterval bounds how often the parse phase logs progress.
const progressInterval = 2 * time.Second

// App wires the engine packages into one analysis run. An App holds no per-run
// state, so Run may be called repeatedly.
type App struct {
	Config *config.Config

	parser  *parser.Parser
	dynamic *dynimport.Scanner
	splits  *split.Engine

	excludeDirs   []glob.Glob
	excludeFiles  []glob.Glob
	entryPatterns []glob.Glob
}

// New validates cfg and prepares the engines. A nil cfg uses the defaults.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if errs := config.Validate(cfg); len(errs) > 0 {
		return nil, errors.Wrap(stderrors.Join(errs...), errors.CodeValidationError, "invalid configuration")
	}

	excludeDirs, err := helpers.CompileGlobs(cfg.Exclude.Dirs, "exclude dir")
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeValidationError, "invalid configuration")
	}
	excludeFiles, err := helpers.CompileGlobs(cfg.Exclude.Files, "exclude file")
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeValidationError, "invalid configuration")
	}
	entryPatterns, err := helpers.CompileGlobs(cfg.Analysis.EntryPatterns, "entry")
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeValidationError, "invalid configuration")
	}

	dynamic, err := dynimport.NewScanner(dynimport.Config{
		ImportFunctions: cfg.Dynamic.ImportFunctions,
		EvalFunctions:   cfg.Dynamic.EvalFunctions,
		IncludeEval:     cfg.Dynamic.EvalEnabled(),
	})
	if err != nil {
		return nil, err
	}

	splits, err := split.NewEngine(split.Options{
		Threshold:       cfg.Analysis.OversizedThreshold,
		MinClasses:      cfg.Split.MinClasses,
		MinFunctions:    cfg.Split.MinFunctions,
		MinPrefixLen:    cfg.Split.MinPrefixLen,
		PrefixRule:      split.PrefixRule(strings.ToLower(strings.TrimSpace(cfg.Split.PrefixRule))),
		UtilityPatterns: cfg.Split.UtilityPatterns,
	})
	if err != nil {
		return nil, err
	}

	return &App{
		Config:        cfg,
		parser:        parser.NewParser(dynamic.Callees()),
		dynamic:       dynamic,
		splits:        splits,
		excludeDirs:   excludeDirs,
		excludeFiles:  excludeFiles,
		entryPatterns: entryPatterns,
	}, nil
}

// Run analyzes the project at root. An empty root falls back to the configured
// project_root. The returned report is complete unless ctx was canceled, in which
// case only the error is returned.
func (a *App) Run(ctx context.Context, root string) (report *Report, err error) {
	if root == "" {
		root = a.Config.ProjectRoot
	}
	ctx, span := observability.Tracer.Start(ctx, "app.Run")
	defer func() { observability.EndSpan(span, err) }()

	start := time.Now()
	absRoot, err := checkRoot(root)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("depscan.root", absRoot))

	files, err := a.discover(ctx, absRoot)
	if err != nil {
		return nil, err
	}
	slog.Info("discovered source files", "root", absRoot, "count", len(files))

	res, err := resolver.NewResolver(files, a.Config.SourceRoots, a.Config.Resolver.CacheSize)
	if err != nil {
		return nil, err
	}

	results, err := a.parseAll(ctx, absRoot, files)
	if err != nil {
		return nil, err
	}

	g, err := a.buildGraph(ctx, results, res)
	if err != nil {
		return nil, err
	}

	report = &Report{
		Root:  absRoot,
		Files: len(files),
		Graph: g,
	}
	for _, r := range results {
		if r.parseErr != nil {
			report.ParseErrors = append(report.ParseErrors, r.parseErr.finding)
		}
	}

	a.analyze(ctx, report, a.analyzers(report, results, res))
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeCanceled, "analysis canceled")
	}

	report.Duration = time.Since(start)
	for _, f := range report.Findings() {
		observability.FindingsTotal.WithLabelValues(string(f.Kind)).Inc()
	}
	observability.FindingsTotal.WithLabelValues("cycle").Add(float64(len(report.Cycles)))
	observability.FindingsTotal.WithLabelValues("dead_module").Add(float64(len(report.Reachability.Dead)))
	observability.FindingsTotal.WithLabelValues("oversized").Add(float64(len(report.Oversized)))

	slog.Info("analysis complete",
		"files", report.Files,
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"cycles", len(report.Cycles),
		"dead", len(report.Reachability.Dead),
		"oversized", len(report.Oversized),
		"findings", len(report.DynamicFindings)+len(report.ParseErrors),
		"duration", report.Duration)
	return report, nil
}

func (a *App) discover(ctx context.Context, root string) (files []string, err error) {
	_, span := observability.Tracer.Start(ctx, "app.discover")
	defer func() { observability.EndSpan(span, err) }()

	files, err = a.ScanDirectory(root)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("depscan.files", len(files)))
	return files, nil
}

// isEntry is the default entry-point matcher: a base-name pattern or a main guard.
func (a *App) isEntry(n *graph.Node) bool {
	if n.HasMainGuard {
		return true
	}
	return helpers.MatchAny(a.entryPatterns, baseName(n.FilePath))
}
