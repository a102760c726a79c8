package cli

import (
	"context"
	coreapp "depscan/internal/core/app"
	"depscan/internal/core/config"
	domainerrors "depscan/internal/core/errors"
	"depscan/internal/shared/observability"
	"depscan/internal/shared/util"
	"depscan/internal/ui/report"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

const tracingShutdownTimeout = 5 * time.Second

// Run executes the command line and returns the process exit code. SIGINT and
// SIGTERM cancel the analysis; nothing is written after cancellation.
func Run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return execute(ctx, args, os.Stdout, os.Stderr)
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var opts cliOptions
	root := newRootCommand(ctx, &opts)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		configureLogging(stderr, opts.verbose)
	}

	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}

// session is one loaded configuration plus the root it analyzes.
type session struct {
	cfg   *config.Config
	paths config.ResolvedPaths
	root  string
}

func runAnalyze(ctx context.Context, cmd *cobra.Command, opts *cliOptions, pathArg string) error {
	s, err := newSession(cmd, opts, pathArg)
	if err != nil {
		return err
	}
	rep, err := s.analyze(ctx)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := report.WriteArtifacts(rep, report.Targets{
		DOT:           s.paths.DOT,
		TSV:           s.paths.TSV,
		ASCII:         s.paths.ASCII,
		ASCIIMaxDepth: s.cfg.Output.ASCIIMaxDepth,
	}); err != nil {
		return err
	}
	if format := s.cfg.Output.Format; format != "" {
		if _, err := report.RenderImage(ctx, s.paths.DOT, format); err != nil {
			if !domainerrors.IsCode(err, domainerrors.CodeNotSupported) {
				return err
			}
			slog.Warn("skipping image rendering, keeping DOT output", "format", format, "dot", s.paths.DOT, "error", err)
		}
	}

	out := cmd.OutOrStdout()
	if opts.ascii == stdoutTarget {
		tree, err := report.NewASCIIGenerator(rep, s.cfg.Output.ASCIIMaxDepth).Generate()
		if err != nil {
			return err
		}
		fmt.Fprint(out, tree)
	}
	if !opts.quiet {
		fmt.Fprint(out, report.NewSummaryPrinter(s.cfg.Output.SummaryTop).Render(rep))
	}

	if s.paths.Metrics != "" {
		if err := observability.WriteMetrics(s.paths.Metrics); err != nil {
			return err
		}
		slog.Info("wrote output", "kind", "metrics", "path", s.paths.Metrics)
	}
	return nil
}

func runTrace(ctx context.Context, cmd *cobra.Command, opts *cliOptions, from, to, pathArg string) error {
	s, err := newSession(cmd, opts, pathArg)
	if err != nil {
		return err
	}
	rep, err := s.analyze(ctx)
	if err != nil {
		return err
	}
	out, err := rep.TraceImportChain(from, to)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func runImpact(ctx context.Context, cmd *cobra.Command, opts *cliOptions, ref, pathArg string) error {
	s, err := newSession(cmd, opts, pathArg)
	if err != nil {
		return err
	}
	rep, err := s.analyze(ctx)
	if err != nil {
		return err
	}
	impact, err := rep.AnalyzeImpact(ref)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), coreapp.FormatImpactReport(impact))
	return nil
}

func newSession(cmd *cobra.Command, opts *cliOptions, pathArg string) (*session, error) {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return nil, err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("detect working directory: %w", err)
	}
	paths, err := config.ResolvePaths(cfg, cwd)
	if err != nil {
		return nil, fmt.Errorf("resolve paths: %w", err)
	}

	root := paths.ProjectRoot
	if strings.TrimSpace(pathArg) != "" {
		root = config.ResolveRelative(cwd, pathArg)
	}
	return &session{cfg: cfg, paths: paths, root: root}, nil
}

// loadConfig reads the config file and applies the flags the user actually set.
func loadConfig(cmd *cobra.Command, opts *cliOptions) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("threshold") {
		cfg.Analysis.OversizedThreshold = opts.threshold
	}
	if flags.Changed("entry") {
		cfg.Analysis.EntryPoints = append([]string(nil), opts.entries...)
	}
	if flags.Changed("exclude") {
		cfg.Exclude.Dirs = append(cfg.Exclude.Dirs, opts.exclude...)
	}
	if flags.Changed("workers") {
		cfg.Analysis.Workers = opts.workers
	}
	if flags.Changed("dot") {
		cfg.Output.DOT = opts.dot
	}
	if flags.Changed("format") {
		cfg.Output.Format = strings.ToLower(strings.TrimSpace(opts.format))
	}
	if flags.Changed("tsv") {
		cfg.Output.TSV = opts.tsv
	}
	if flags.Changed("ascii") && opts.ascii != stdoutTarget {
		cfg.Output.ASCII = opts.ascii
	}
	if flags.Changed("metrics") {
		cfg.Output.Metrics = opts.metrics
	}
	if flags.Changed("max-depth") {
		cfg.Output.ASCIIMaxDepth = opts.maxDepth
	}
	if flags.Changed("top") {
		cfg.Output.SummaryTop = opts.top
	}

	if errs := config.Validate(cfg); len(errs) > 0 {
		return nil, fmt.Errorf("invalid options: %w", errors.Join(errs...))
	}
	return cfg, nil
}

func (s *session) analyze(ctx context.Context) (*coreapp.Report, error) {
	tp, err := observability.InitTracing(ctx, observability.TracingConfig{
		ServiceName:    s.cfg.Tracing.ServiceName,
		ServiceVersion: versionString,
		OTLPEndpoint:   s.cfg.Tracing.OTLPEndpoint,
		Insecure:       s.cfg.Tracing.Insecure,
	})
	if err != nil {
		return nil, err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), tracingShutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			slog.Warn("failed to flush traces", "error", err)
		}
	}()

	a, err := coreapp.New(s.cfg)
	if err != nil {
		return nil, err
	}
	rep, err := a.Run(ctx, s.root)
	if err != nil {
		return nil, err
	}
	mem := util.ReadMemStats()
	slog.Debug("memory usage", "heap_alloc_mb", mem.HeapAllocMB, "sys_mb", mem.SysMB, "gc_cycles", mem.NumGC)
	return rep, nil
}

func configureLogging(w io.Writer, verbose bool) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger.With("run", uuid.NewString()))
}
