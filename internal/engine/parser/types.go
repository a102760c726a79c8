// # internal/engine/parser/types.go
package parser

// File is everything the extractor pulls out of one Python source file.
type File struct {
	Path         string // On-disk path as discovered
	Language     string
	LineCount    int
	Imports      []Import
	Definitions  []Definition // Top-level classes and functions only
	DynamicCalls []DynamicCall
	HasMainGuard bool
}

type Import struct {
	Module      string // Dotted module text without leading dots ("" for "from . import x")
	Items       []ImportItem
	Level       int    // Number of leading dots; 0 for absolute imports
	Alias       string // "import a.b as c"
	Wildcard    bool   // "from x import *"
	Conditional bool   // Nested inside if/try/with/match blocks
	Raw         string // Statement text, whitespace-collapsed
	Location    Location
}

type ImportItem struct {
	Name  string
	Alias string
}

// Bindings returns the local names this import introduces into the module namespace.
func (i Import) Bindings() []string {
	if i.Wildcard {
		return nil
	}
	if len(i.Items) == 0 {
		if i.Alias != "" {
			return []string{i.Alias}
		}
		head := i.Module
		for idx := 0; idx < len(head); idx++ {
			if head[idx] == '.' {
				head = head[:idx]
				break
			}
		}
		if head == "" {
			return nil
		}
		return []string{head}
	}
	out := make([]string, 0, len(i.Items))
	for _, item := range i.Items {
		if item.Alias != "" {
			out = append(out, item.Alias)
		} else {
			out = append(out, item.Name)
		}
	}
	return out
}

// IsRelative reports whether the import uses leading-dot syntax.
func (i Import) IsRelative() bool {
	return i.Level > 0
}

type Definition struct {
	Name     string
	Kind     DefinitionKind
	Location Location
	EndLine  int
	Exported bool
	Uses     []string // Sorted identifiers referenced by the body
	LOC      int
}

type DefinitionKind int

const (
	KindFunction DefinitionKind = iota
	KindClass
)

func (k DefinitionKind) String() string {
	switch k {
	case KindClass:
		return "class"
	default:
		return "function"
	}
}

// DynamicCall is a call site whose callee might load code by name at runtime.
type DynamicCall struct {
	Callee     string // Normalized callee text, e.g. "importlib.import_module"
	Literal    string // First positional argument when it is a plain string literal
	HasLiteral bool
	Snippet    string
	Location   Location
}

type Location struct {
	File   string
	Line   int
	Column int
}

// ParseError describes why a file produced no import records.
type ParseError struct {
	Path    string
	Line    int
	Snippet string
	Reason  string
}

func (e *ParseError) Error() string {
	return e.Path + ": " + e.Reason
}
