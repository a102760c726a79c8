package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

const versionString = "1.0.0"

// stdoutTarget as an --ascii value prints the tree instead of writing a file.
const stdoutTarget = "-"

type cliOptions struct {
	configPath string
	verbose    bool
	threshold  int
	entries    []string
	exclude    []string
	workers    int
	dot        string
	format     string
	tsv        string
	ascii      string
	metrics    string
	maxDepth   int
	top        int
	quiet      bool
}

func newRootCommand(ctx context.Context, opts *cliOptions) *cobra.Command {
	root := &cobra.Command{
		Use:   "depscan [path]",
		Short: "Analyze the import graph of a Python project",
		Long: "depscan builds the import graph of a Python project and reports circular imports,\n" +
			"unreachable modules, oversized modules with split suggestions, and dynamic imports.",
		Example: "  depscan .\n" +
			"  depscan ./src --dot graph.dot --ascii -\n" +
			"  depscan . --dot graph.dot --format svg\n" +
			"  depscan . --entry app/main.py --threshold 800\n" +
			"  depscan trace app.api app.models",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(ctx, cmd, opts, optionalArg(args, 0))
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "Path to config file (default ./depscan.toml when present)")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")
	pf.IntVar(&opts.threshold, "threshold", 0, "Report modules with more lines than this")
	pf.StringArrayVar(&opts.entries, "entry", nil, "Entry point file or module (repeatable); disables inference")
	pf.StringArrayVar(&opts.exclude, "exclude", nil, "Extra directory name glob to skip (repeatable)")
	pf.IntVar(&opts.workers, "workers", 0, "Parallel parse workers (default: number of CPUs)")

	f := root.Flags()
	f.StringVar(&opts.dot, "dot", "", "Write the Graphviz DOT graph to this file")
	f.StringVar(&opts.format, "format", "", "Also render the DOT graph with Graphviz as png, svg or pdf")
	f.StringVar(&opts.tsv, "tsv", "", "Write the TSV edge list to this file")
	f.StringVar(&opts.ascii, "ascii", "", "Write the ASCII dependency tree to this file, or - for stdout")
	f.StringVar(&opts.metrics, "metrics", "", "Write Prometheus metrics in text format to this file")
	f.IntVar(&opts.maxDepth, "max-depth", 0, "Maximum depth of the ASCII tree")
	f.IntVar(&opts.top, "top", 0, "Entries per list in the summary")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "Do not print the summary")

	root.AddCommand(
		&cobra.Command{
			Use:   "trace <from> <to> [path]",
			Short: "Print the shortest import chain between two modules",
			Args:  cobra.RangeArgs(2, 3),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runTrace(ctx, cmd, opts, args[0], args[1], optionalArg(args, 2))
			},
		},
		&cobra.Command{
			Use:   "impact <module> [path]",
			Short: "List the modules affected by a change to a module",
			Args:  cobra.RangeArgs(1, 2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runImpact(ctx, cmd, opts, args[0], optionalArg(args, 1))
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "depscan v%s\n", versionString)
			},
		},
	)
	return root
}

func optionalArg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}
