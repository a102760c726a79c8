package config

import (
	"runtime"
)

// DefaultFile is looked up in the working directory when no --config is given.
const DefaultFile = "depscan.toml"

type Config struct {
	Version     int      `toml:"version"`
	ProjectRoot string   `toml:"project_root"`
	SourceRoots []string `toml:"source_roots"`
	Exclude     Exclude  `toml:"exclude"`
	Analysis    Analysis `toml:"analysis"`
	Split       Split    `toml:"split"`
	Dynamic     Dynamic  `toml:"dynamic"`
	Output      Output   `toml:"output"`
	Resolver    Resolver `toml:"resolver"`
	Tracing     Tracing  `toml:"tracing"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`  // Directory base-name globs
	Files []string `toml:"files"` // File base-name globs
}

type Analysis struct {
	OversizedThreshold int      `toml:"oversized_threshold"`
	EntryPoints        []string `toml:"entry_points"`   // Explicit roots, relative file or module paths
	EntryPatterns      []string `toml:"entry_patterns"` // Base-name globs used when EntryPoints is empty
	Workers            int      `toml:"workers"`
}

type Split struct {
	MinClasses      int      `toml:"min_classes"`
	MinFunctions    int      `toml:"min_functions"`
	MinPrefixLen    int      `toml:"min_prefix_len"`
	PrefixRule      string   `toml:"prefix_rule"`
	UtilityPatterns []string `toml:"utility_patterns"`
}

type Dynamic struct {
	ImportFunctions []string `toml:"import_functions"`
	EvalFunctions   []string `toml:"eval_functions"`
	IncludeEval     *bool    `toml:"include_eval"`
}

func (d Dynamic) EvalEnabled() bool {
	return d.IncludeEval == nil || *d.IncludeEval
}

type Output struct {
	DOT           string `toml:"dot"`
	Format        string `toml:"format"` // Image rendered from the DOT file by Graphviz: png, svg or pdf
	TSV           string `toml:"tsv"`
	ASCII         string `toml:"ascii"`
	Metrics       string `toml:"metrics"`
	ASCIIMaxDepth int    `toml:"ascii_max_depth"`
	SummaryTop    int    `toml:"summary_top"`
}

type Resolver struct {
	CacheSize int `toml:"cache_size"`
}

type Tracing struct {
	OTLPEndpoint string `toml:"otlp_endpoint"` // Empty disables export
	Insecure     bool   `toml:"insecure"`
	ServiceName  string `toml:"service_name"`
}

var (
	defaultExcludeDirs = []string{
		"__pycache__", ".git", ".hg", ".venv", "venv", "env", ".env", ".tox", ".nox",
		"node_modules", ".pytest_cache", ".mypy_cache", "*.egg-info", "build", "dist",
	}
	defaultEntryPatterns = []string{
		"__main__.py", "main.py", "app.py", "run.py", "cli.py",
		"manage.py", "wsgi.py", "asgi.py", "setup.py", "conftest.py",
	}
	defaultUtilityPatterns = []string{"util*", "*utils", "*helpers", "helper*", "common", "misc", "tools"}
	defaultImportFunctions = []string{"__import__", "importlib.import_module", "import_module", "importlib.__import__"}
	defaultEvalFunctions   = []string{"eval", "exec"}
)

// DefaultConfig is the configuration used when no file is present.
func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func defaultWorkers() int {
	if n := runtime.NumCPU(); n > 0 {
		return n
	}
	return 1
}
