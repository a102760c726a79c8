package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	applyDefaults(&cfg)
	ApplyEnvOverrides(&cfg)

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return &cfg, nil
}

// LoadOrDefault loads path when it is set. With an empty path the default file is
// tried, and its absence yields DefaultConfig rather than an error.
func LoadOrDefault(path string) (*Config, error) {
	if strings.TrimSpace(path) != "" {
		return Load(path)
	}
	cfg, err := Load(DefaultFile)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = DefaultConfig()
		ApplyEnvOverrides(cfg)
		if errs := Validate(cfg); len(errs) > 0 {
			return nil, errors.Join(errs...)
		}
		return cfg, nil
	}
	return cfg, err
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}
	if strings.TrimSpace(cfg.ProjectRoot) == "" {
		cfg.ProjectRoot = "."
	}
	if len(cfg.SourceRoots) == 0 {
		cfg.SourceRoots = []string{"."}
	}

	if cfg.Exclude.Dirs == nil {
		cfg.Exclude.Dirs = append([]string(nil), defaultExcludeDirs...)
	}

	if cfg.Analysis.OversizedThreshold == 0 {
		cfg.Analysis.OversizedThreshold = 500
	}
	if cfg.Analysis.EntryPatterns == nil {
		cfg.Analysis.EntryPatterns = append([]string(nil), defaultEntryPatterns...)
	}
	if cfg.Analysis.Workers == 0 {
		cfg.Analysis.Workers = defaultWorkers()
	}

	if cfg.Split.MinClasses == 0 {
		cfg.Split.MinClasses = 3
	}
	if cfg.Split.MinFunctions == 0 {
		cfg.Split.MinFunctions = 10
	}
	if cfg.Split.MinPrefixLen == 0 {
		cfg.Split.MinPrefixLen = 3
	}
	if strings.TrimSpace(cfg.Split.PrefixRule) == "" {
		cfg.Split.PrefixRule = "underscore"
	}
	if cfg.Split.UtilityPatterns == nil {
		cfg.Split.UtilityPatterns = append([]string(nil), defaultUtilityPatterns...)
	}

	if cfg.Dynamic.ImportFunctions == nil {
		cfg.Dynamic.ImportFunctions = append([]string(nil), defaultImportFunctions...)
	}
	if cfg.Dynamic.EvalFunctions == nil {
		cfg.Dynamic.EvalFunctions = append([]string(nil), defaultEvalFunctions...)
	}

	if cfg.Output.ASCIIMaxDepth == 0 {
		cfg.Output.ASCIIMaxDepth = 3
	}
	if cfg.Output.SummaryTop == 0 {
		cfg.Output.SummaryTop = 10
	}

	if cfg.Resolver.CacheSize == 0 {
		cfg.Resolver.CacheSize = 4096
	}
	if strings.TrimSpace(cfg.Tracing.ServiceName) == "" {
		cfg.Tracing.ServiceName = "depscan"
	}
}
