package config

import (
	"depscan/internal/core/config/helpers"
	"depscan/internal/shared/util"
	"fmt"
	"path/filepath"
	"strings"
)

func validateVersion(cfg *Config) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported config version %d; supported version is 1", cfg.Version)
	}
	return nil
}

func validateSourceRoots(cfg *Config) error {
	normalized := make([]string, 0, len(cfg.SourceRoots))
	for i, root := range cfg.SourceRoots {
		ref := fmt.Sprintf("source_roots[%d]", i)
		root = strings.TrimSpace(root)
		if root == "" {
			return fmt.Errorf("%s must not be empty", ref)
		}
		if filepath.IsAbs(root) {
			return fmt.Errorf("%s %q must be relative to project_root", ref, root)
		}
		if util.HasPathPrefix(root, "..") {
			return fmt.Errorf("%s %q escapes project_root", ref, root)
		}
		normalized = append(normalized, util.NormalizePatternPath(root))
	}
	if dups := helpers.DuplicateEntries(normalized); len(dups) > 0 {
		return fmt.Errorf("duplicate source root %q", dups[0])
	}
	return nil
}

// validateExclude checks exclusion globs. They match single path elements, so a
// separator can never match.
func validateExclude(cfg *Config) error {
	check := func(field string, patterns []string) error {
		for i, pattern := range patterns {
			ref := fmt.Sprintf("exclude.%s[%d]", field, i)
			if util.ContainsPathSeparator(pattern) {
				return fmt.Errorf("%s %q must be a base-name pattern without path separators", ref, pattern)
			}
			if _, err := helpers.CompileGlob(ref, pattern); err != nil {
				return err
			}
		}
		return nil
	}
	if err := check("dirs", cfg.Exclude.Dirs); err != nil {
		return err
	}
	return check("files", cfg.Exclude.Files)
}

func validateAnalysis(cfg *Config) error {
	if cfg.Analysis.OversizedThreshold < 1 {
		return fmt.Errorf("analysis.oversized_threshold must be >= 1, got %d", cfg.Analysis.OversizedThreshold)
	}
	if cfg.Analysis.Workers < 1 || cfg.Analysis.Workers > 256 {
		return fmt.Errorf("analysis.workers must be between 1 and 256")
	}
	for i, entry := range cfg.Analysis.EntryPoints {
		if strings.TrimSpace(entry) == "" {
			return fmt.Errorf("analysis.entry_points[%d] must not be empty", i)
		}
		if helpers.HasWildcard(entry) {
			return fmt.Errorf("analysis.entry_points[%d] %q must be a file or module path, use entry_patterns for globs", i, entry)
		}
	}
	if dups := helpers.DuplicateEntries(cfg.Analysis.EntryPoints); len(dups) > 0 {
		return fmt.Errorf("duplicate entry point %q", dups[0])
	}
	for i, pattern := range cfg.Analysis.EntryPatterns {
		if _, err := helpers.CompileGlob(fmt.Sprintf("analysis.entry_patterns[%d]", i), pattern); err != nil {
			return err
		}
	}
	return nil
}

func validateSplit(cfg *Config) error {
	if cfg.Split.MinClasses < 1 {
		return fmt.Errorf("split.min_classes must be >= 1")
	}
	if cfg.Split.MinFunctions < 1 {
		return fmt.Errorf("split.min_functions must be >= 1")
	}
	if cfg.Split.MinPrefixLen < 1 {
		return fmt.Errorf("split.min_prefix_len must be >= 1")
	}
	rule := strings.ToLower(strings.TrimSpace(cfg.Split.PrefixRule))
	if rule != "underscore" && rule != "camel" {
		return fmt.Errorf("split.prefix_rule must be one of: underscore, camel")
	}
	for i, pattern := range cfg.Split.UtilityPatterns {
		if _, err := helpers.CompileGlob(fmt.Sprintf("split.utility_patterns[%d]", i), pattern); err != nil {
			return err
		}
	}
	return nil
}

func validateDynamic(cfg *Config) error {
	seen := make(map[string]string)
	check := func(section string, names []string) error {
		for i, name := range names {
			name = strings.TrimSpace(name)
			ref := fmt.Sprintf("dynamic.%s[%d]", section, i)
			if name == "" {
				return fmt.Errorf("%s must not be empty", ref)
			}
			if strings.ContainsAny(name, " \t\n(") {
				return fmt.Errorf("%s %q must be a dotted callee name", ref, name)
			}
			if owner, ok := seen[name]; ok {
				return fmt.Errorf("%q listed in both dynamic.%s and dynamic.%s", name, owner, section)
			}
			seen[name] = section
		}
		return nil
	}
	if err := check("import_functions", cfg.Dynamic.ImportFunctions); err != nil {
		return err
	}
	return check("eval_functions", cfg.Dynamic.EvalFunctions)
}

// imageFormats are the Graphviz -T values accepted for output.format.
var imageFormats = map[string]bool{"png": true, "svg": true, "pdf": true}

func validateOutput(cfg *Config) error {
	if format := cfg.Output.Format; format != "" {
		if !imageFormats[format] {
			return fmt.Errorf("output.format must be one of png, svg, pdf, got %q", format)
		}
		if strings.TrimSpace(cfg.Output.DOT) == "" {
			return fmt.Errorf("output.format requires output.dot")
		}
	}
	if cfg.Output.ASCIIMaxDepth < 1 {
		return fmt.Errorf("output.ascii_max_depth must be >= 1")
	}
	if cfg.Output.SummaryTop < 1 {
		return fmt.Errorf("output.summary_top must be >= 1")
	}

	outputs := make(map[string]string)
	checkConflict := func(path, name string) error {
		if strings.TrimSpace(path) == "" {
			return nil
		}
		path = filepath.Clean(path)
		for existing, owner := range outputs {
			if helpers.IsPathOverlap(existing, path) {
				return fmt.Errorf("output conflict: %s and %s share the same path %q", owner, name, path)
			}
		}
		outputs[path] = name
		return nil
	}

	if err := checkConflict(cfg.Output.DOT, "output.dot"); err != nil {
		return err
	}
	if err := checkConflict(cfg.Output.TSV, "output.tsv"); err != nil {
		return err
	}
	if err := checkConflict(cfg.Output.ASCII, "output.ascii"); err != nil {
		return err
	}
	return checkConflict(cfg.Output.Metrics, "output.metrics")
}

func validateResolver(cfg *Config) error {
	if cfg.Resolver.CacheSize < 1 {
		return fmt.Errorf("resolver.cache_size must be >= 1")
	}
	return nil
}

func validateTracing(cfg *Config) error {
	endpoint := strings.TrimSpace(cfg.Tracing.OTLPEndpoint)
	if endpoint == "" {
		return nil
	}
	if strings.Contains(endpoint, "://") {
		return fmt.Errorf("tracing.otlp_endpoint must be host:port without a scheme, got %q", endpoint)
	}
	return nil
}

// Validate returns every problem found, not just the first.
func Validate(cfg *Config) []error {
	var errs []error
	for _, check := range []func(*Config) error{
		validateVersion,
		validateSourceRoots,
		validateExclude,
		validateAnalysis,
		validateSplit,
		validateDynamic,
		validateOutput,
		validateResolver,
		validateTracing,
	} {
		if err := check(cfg); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
