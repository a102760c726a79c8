package dynimport

import (
	"depscan/internal/core/errors"
	"depscan/internal/engine/parser"
	"fmt"
	"sort"
	"strings"
)

type Kind string

const (
	KindDynamicImport Kind = "dynamic_import"
	KindCodeEval      Kind = "code_eval"
)

var (
	DefaultImportFunctions = []string{"__import__", "importlib.import_module", "import_module", "importlib.__import__"}
	DefaultEvalFunctions   = []string{"eval", "exec"}
)

type Config struct {
	ImportFunctions []string
	EvalFunctions   []string
	IncludeEval     bool
}

func DefaultConfig() Config {
	return Config{
		ImportFunctions: append([]string(nil), DefaultImportFunctions...),
		EvalFunctions:   append([]string(nil), DefaultEvalFunctions...),
		IncludeEval:     true,
	}
}

// Finding is one risky call site.
type Finding struct {
	Kind     Kind
	Callee   string
	Snippet  string
	Literal  string // Target string when the first argument is a literal
	Resolved string // Project module the literal names, if any
	Location parser.Location
}

func (f Finding) IsResolved() bool {
	return f.Resolved != ""
}

// ModuleLookup maps an absolute dotted name to a project module.
type ModuleLookup interface {
	ResolveDotted(name string) (string, bool)
}

type Scanner struct {
	imports     map[string]bool
	evals       map[string]bool
	includeEval bool
}

func NewScanner(cfg Config) (*Scanner, error) {
	s := &Scanner{
		imports:     make(map[string]bool, len(cfg.ImportFunctions)),
		evals:       make(map[string]bool, len(cfg.EvalFunctions)),
		includeEval: cfg.IncludeEval,
	}
	for _, name := range cfg.ImportFunctions {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, errors.New(errors.CodeValidationError, "import function name cannot be empty")
		}
		s.imports[name] = true
	}
	for _, name := range cfg.EvalFunctions {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, errors.New(errors.CodeValidationError, "eval function name cannot be empty")
		}
		if s.imports[name] {
			return nil, errors.Newf(errors.CodeValidationError, "%q listed as both import and eval function", name)
		}
		s.evals[name] = true
	}
	return s, nil
}

// Callees is the sorted set of call targets the extractor must record for Scan to see them.
func (s *Scanner) Callees() []string {
	out := make([]string, 0, len(s.imports)+len(s.evals))
	for name := range s.imports {
		out = append(out, name)
	}
	if s.includeEval {
		for name := range s.evals {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Scan turns the recorded call sites of one file into findings, one per call site,
// ordered by position. eval/exec are only reported with a literal argument. lookup
// may be nil.
func (s *Scanner) Scan(file *parser.File, lookup ModuleLookup) []Finding {
	if file == nil {
		return nil
	}

	out := make([]Finding, 0)
	for _, call := range file.DynamicCalls {
		var kind Kind
		switch {
		case s.imports[call.Callee]:
			kind = KindDynamicImport
		case s.includeEval && s.evals[call.Callee] && call.HasLiteral:
			kind = KindCodeEval
		default:
			continue
		}

		f := Finding{
			Kind:     kind,
			Callee:   call.Callee,
			Snippet:  call.Snippet,
			Location: call.Location,
		}
		if call.HasLiteral {
			f.Literal = call.Literal
		}
		if kind == KindDynamicImport && lookup != nil && isDottedName(f.Literal) {
			if target, ok := lookup.ResolveDotted(f.Literal); ok {
				f.Resolved = target
			}
		}
		if f.Location.File == "" {
			f.Location.File = file.Path
		}
		out = append(out, f)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Location.Line != out[j].Location.Line {
			return out[i].Location.Line < out[j].Location.Line
		}
		return out[i].Location.Column < out[j].Location.Column
	})
	return out
}

// Describe renders a finding as a one-line message.
func Describe(f Finding) string {
	switch {
	case f.Kind == KindCodeEval:
		return fmt.Sprintf("%s() evaluates a string literal", f.Callee)
	case f.IsResolved():
		return fmt.Sprintf("%s(%q) loads project module %s", f.Callee, f.Literal, f.Resolved)
	case f.Literal != "":
		return fmt.Sprintf("%s(%q) target is not a project module", f.Callee, f.Literal)
	default:
		return fmt.Sprintf("%s() target is computed at runtime", f.Callee)
	}
}

// isDottedName rejects relative names and anything that is not an identifier path.
func isDottedName(name string) bool {
	if name == "" {
		return false
	}
	for _, part := range strings.Split(name, ".") {
		if part == "" {
			return false
		}
		for i, r := range part {
			if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (i > 0 && r >= '0' && r <= '9') {
				continue
			}
			return false
		}
	}
	return true
}
