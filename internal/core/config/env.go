package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: DEPSCAN_[SECTION]_[KEY] (e.g., DEPSCAN_ANALYSIS_WORKERS). Lists are
// comma-separated.
func ApplyEnvOverrides(cfg *Config) {
	setEnvString(&cfg.ProjectRoot, "DEPSCAN_PROJECT_ROOT")
	setEnvList(&cfg.SourceRoots, "DEPSCAN_SOURCE_ROOTS")

	setEnvList(&cfg.Exclude.Dirs, "DEPSCAN_EXCLUDE_DIRS")
	setEnvList(&cfg.Exclude.Files, "DEPSCAN_EXCLUDE_FILES")

	// Analysis
	setEnvInt(&cfg.Analysis.OversizedThreshold, "DEPSCAN_ANALYSIS_OVERSIZED_THRESHOLD")
	setEnvList(&cfg.Analysis.EntryPoints, "DEPSCAN_ANALYSIS_ENTRY_POINTS")
	setEnvInt(&cfg.Analysis.Workers, "DEPSCAN_ANALYSIS_WORKERS")

	// Split
	setEnvString(&cfg.Split.PrefixRule, "DEPSCAN_SPLIT_PREFIX_RULE")

	// Dynamic
	if val, ok := os.LookupEnv("DEPSCAN_DYNAMIC_INCLUDE_EVAL"); ok {
		if b, err := strconv.ParseBool(strings.ToLower(val)); err == nil {
			slog.Debug("applying env override", "key", "DEPSCAN_DYNAMIC_INCLUDE_EVAL", "value", val)
			cfg.Dynamic.IncludeEval = &b
		}
	}

	// Output
	setEnvString(&cfg.Output.DOT, "DEPSCAN_OUTPUT_DOT")
	setEnvString(&cfg.Output.Format, "DEPSCAN_OUTPUT_FORMAT")
	setEnvString(&cfg.Output.TSV, "DEPSCAN_OUTPUT_TSV")
	setEnvString(&cfg.Output.ASCII, "DEPSCAN_OUTPUT_ASCII")
	setEnvString(&cfg.Output.Metrics, "DEPSCAN_OUTPUT_METRICS")

	setEnvInt(&cfg.Resolver.CacheSize, "DEPSCAN_RESOLVER_CACHE_SIZE")

	// Tracing
	setEnvString(&cfg.Tracing.OTLPEndpoint, "DEPSCAN_TRACING_OTLP_ENDPOINT")
	setEnvBool(&cfg.Tracing.Insecure, "DEPSCAN_TRACING_INSECURE")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = val
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = i
		} else {
			slog.Warn("ignoring env override", "key", key, "value", val, "error", err)
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = b
		}
	}
}

func setEnvList(target *[]string, key string) {
	val, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	slog.Debug("applying env override", "key", key, "value", val)
	out := make([]string, 0)
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*target = out
}
