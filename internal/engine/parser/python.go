package parser

import (
	"sort"
	"strings"
	"unicode/utf8"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// DefaultDynamicCallees are the call targets recorded when no explicit list is configured.
var DefaultDynamicCallees = []string{
	"__import__",
	"importlib.import_module",
	"import_module",
	"importlib.__import__",
	"eval",
	"exec",
}

const snippetMaxRunes = 120

// conditionalKinds are block kinds that make a nested import conditional.
var conditionalKinds = map[string]bool{
	"if_statement":        true,
	"elif_clause":         true,
	"else_clause":         true,
	"try_statement":       true,
	"except_clause":       true,
	"except_group_clause": true,
	"finally_clause":      true,
	"with_statement":      true,
	"match_statement":     true,
	"case_clause":         true,
}

type PythonExtractor struct {
	callees map[string]bool
}

// NewPythonExtractor builds an extractor that records call sites for the given callee names.
func NewPythonExtractor(dynamicCallees []string) *PythonExtractor {
	if len(dynamicCallees) == 0 {
		dynamicCallees = DefaultDynamicCallees
	}
	callees := make(map[string]bool, len(dynamicCallees))
	for _, c := range dynamicCallees {
		if c = strings.TrimSpace(c); c != "" {
			callees[c] = true
		}
	}
	return &PythonExtractor{callees: callees}
}

func (e *PythonExtractor) Extract(root *sitter.Node, source []byte, filePath string) (*File, error) {
	file := &File{
		Path:      filePath,
		Language:  "python",
		LineCount: CountLines(source),
	}

	ctx := &ExtractionContext{Source: source, File: file}
	engine := NewExtractorEngine(map[string]NodeHandler{
		"import_statement":        e.extractImport,
		"import_from_statement":   e.extractFromImport,
		"future_import_statement": skipNode,
		"function_definition":     e.extractDefinition,
		"class_definition":        e.extractDefinition,
		"if_statement":            e.extractMainGuard,
		"call":                    e.extractCall,
	})
	engine.Walk(ctx, root)

	return file, nil
}

func skipNode(_ *ExtractionContext, _ *sitter.Node) bool { return true }

func (e *PythonExtractor) extractImport(ctx *ExtractionContext, node *sitter.Node) bool {
	conditional := isConditional(node)
	raw := ctx.Snippet(node, 0)

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}

		var module, alias string
		switch child.Kind() {
		case "dotted_name":
			module = ctx.Text(child)
		case "aliased_import":
			module = ctx.Text(child.ChildByFieldName("name"))
			alias = ctx.Text(child.ChildByFieldName("alias"))
		default:
			continue
		}
		if module == "" {
			continue
		}
		ctx.File.Imports = append(ctx.File.Imports, Import{
			Module:      module,
			Alias:       alias,
			Conditional: conditional,
			Raw:         raw,
			Location:    ctx.Location(node),
		})
	}
	return true
}

func (e *PythonExtractor) extractFromImport(ctx *ExtractionContext, node *sitter.Node) bool {
	imp := Import{
		Conditional: isConditional(node),
		Raw:         ctx.Snippet(node, 0),
		Location:    ctx.Location(node),
	}

	if moduleNode := node.ChildByFieldName("module_name"); moduleNode != nil {
		if moduleNode.Kind() == "relative_import" {
			imp.Level = strings.Count(ctx.ChildText(moduleNode, "import_prefix"), ".")
			imp.Module = ctx.ChildText(moduleNode, "dotted_name")
		} else {
			imp.Module = ctx.Text(moduleNode)
		}
	}

	afterImport := false
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		if child.Kind() == "import" {
			afterImport = true
			continue
		}
		if !afterImport {
			continue
		}
		switch child.Kind() {
		case "dotted_name":
			imp.Items = append(imp.Items, ImportItem{Name: ctx.Text(child)})
		case "aliased_import":
			imp.Items = append(imp.Items, ImportItem{
				Name:  ctx.Text(child.ChildByFieldName("name")),
				Alias: ctx.Text(child.ChildByFieldName("alias")),
			})
		case "wildcard_import":
			imp.Wildcard = true
		}
	}

	ctx.File.Imports = append(ctx.File.Imports, imp)
	return true
}

func (e *PythonExtractor) extractDefinition(ctx *ExtractionContext, node *sitter.Node) bool {
	if !isTopLevel(node) {
		return false
	}
	name := ctx.Text(node.ChildByFieldName("name"))
	if name == "" {
		return false
	}

	kind := KindFunction
	if node.Kind() == "class_definition" {
		kind = KindClass
	}

	start := node
	if parent := node.Parent(); parent != nil && parent.Kind() == "decorated_definition" {
		start = parent
	}
	startLine := int(start.StartPosition().Row) + 1
	endLine := int(node.EndPosition().Row) + 1

	uses := make(map[string]bool)
	collectIdentifiers(ctx, node.ChildByFieldName("superclasses"), uses)
	collectIdentifiers(ctx, node.ChildByFieldName("parameters"), uses)
	collectIdentifiers(ctx, node.ChildByFieldName("body"), uses)
	if start != node {
		for i := uint(0); i < start.ChildCount(); i++ {
			if child := start.Child(i); child != nil && child.Kind() == "decorator" {
				collectIdentifiers(ctx, child, uses)
			}
		}
	}
	delete(uses, name)

	ctx.File.Definitions = append(ctx.File.Definitions, Definition{
		Name:     name,
		Kind:     kind,
		Location: Location{File: ctx.File.Path, Line: startLine, Column: int(start.StartPosition().Column) + 1},
		EndLine:  endLine,
		Exported: !strings.HasPrefix(name, "_"),
		Uses:     sortedKeys(uses),
		LOC:      endLine - startLine + 1,
	})
	// Nested imports and call sites still need visiting.
	return false
}

func (e *PythonExtractor) extractMainGuard(ctx *ExtractionContext, node *sitter.Node) bool {
	if parent := node.Parent(); parent == nil || parent.Kind() != "module" {
		return false
	}
	cond := ctx.Text(node.ChildByFieldName("condition"))
	cond = strings.Join(strings.Fields(cond), "")
	cond = strings.ReplaceAll(cond, "'", `"`)
	if cond == `__name__=="__main__"` || cond == `"__main__"==__name__` {
		ctx.File.HasMainGuard = true
	}
	return false
}

func (e *PythonExtractor) extractCall(ctx *ExtractionContext, node *sitter.Node) bool {
	fn := node.ChildByFieldName("function")
	if fn == nil || (fn.Kind() != "identifier" && fn.Kind() != "attribute") {
		return false
	}
	callee := strings.Join(strings.Fields(ctx.Text(fn)), "")
	if !e.callees[callee] {
		return false
	}

	call := DynamicCall{
		Callee:   callee,
		Snippet:  ctx.Snippet(node, snippetMaxRunes),
		Location: ctx.Location(node),
	}
	if arg := firstPositionalArgument(node.ChildByFieldName("arguments")); arg != nil {
		call.Literal, call.HasLiteral = stringLiteral(ctx, arg)
	}
	ctx.File.DynamicCalls = append(ctx.File.DynamicCalls, call)
	return false
}

func firstPositionalArgument(args *sitter.Node) *sitter.Node {
	if args == nil || args.Kind() != "argument_list" {
		return nil
	}
	for i := uint(0); i < args.NamedChildCount(); i++ {
		child := args.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "comment":
			continue
		case "keyword_argument", "list_splat", "dictionary_splat":
			return nil
		}
		return child
	}
	return nil
}

// stringLiteral returns the contents of a plain (non f-string) string node.
func stringLiteral(ctx *ExtractionContext, node *sitter.Node) (string, bool) {
	if node.Kind() != "string" {
		return "", false
	}
	var b strings.Builder
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "interpolation":
			return "", false
		case "string_content", "escape_sequence":
			b.WriteString(ctx.Text(child))
		}
	}
	return b.String(), true
}

func collectIdentifiers(ctx *ExtractionContext, node *sitter.Node, into map[string]bool) {
	if node == nil {
		return
	}
	if node.Kind() == "identifier" {
		into[ctx.Text(node)] = true
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		collectIdentifiers(ctx, node.Child(i), into)
	}
}

func isTopLevel(node *sitter.Node) bool {
	parent := node.Parent()
	if parent != nil && parent.Kind() == "decorated_definition" {
		parent = parent.Parent()
	}
	return parent != nil && parent.Kind() == "module"
}

func isConditional(node *sitter.Node) bool {
	for p := node.Parent(); p != nil; p = p.Parent() {
		if p.Kind() == "module" {
			return false
		}
		if conditionalKinds[p.Kind()] {
			return true
		}
	}
	return false
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// CountLines counts lines the way Python's str.splitlines does. \r\n is one break;
// \r, \n, \v, \f, \x1c-\x1e, U+0085, U+2028 and U+2029 each end a line. A
// trailing unterminated line counts.
func CountLines(content []byte) int {
	n := 0
	open := false
	for i := 0; i < len(content); {
		r, size := utf8.DecodeRune(content[i:])
		i += size
		if !isLineBreak(r) {
			open = true
			continue
		}
		if r == '\r' && i < len(content) && content[i] == '\n' {
			i++
		}
		n++
		open = false
	}
	if open {
		n++
	}
	return n
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}
