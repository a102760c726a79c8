// # internal/engine/parser/parser_test.go
package parser

import (
	"errors"
	"reflect"
	"testing"
)

func parseSource(t *testing.T, path, code string) *File {
	t.Helper()
	p := NewParser(nil)
	file, err := p.ParseFile(path, []byte(code))
	if err != nil {
		t.Fatalf("ParseFile(%s): %v", path, err)
	}
	return file
}

func TestPythonExtraction_Imports(t *testing.T) {
	code := `import os
import sys as system
import a.b.c
from auth.utils import login as auth_login, logout
from . import local_mod
from ..parent import *
from .sub import x
from __future__ import annotations
`
	file := parseSource(t, "pkg/mod.py", code)

	if len(file.Imports) != 7 {
		t.Fatalf("expected 7 imports, got %d: %+v", len(file.Imports), file.Imports)
	}

	tests := []struct {
		module   string
		level    int
		alias    string
		wildcard bool
		items    []ImportItem
		line     int
	}{
		{module: "os", line: 1},
		{module: "sys", alias: "system", line: 2},
		{module: "a.b.c", line: 3},
		{module: "auth.utils", items: []ImportItem{{Name: "login", Alias: "auth_login"}, {Name: "logout"}}, line: 4},
		{module: "", level: 1, items: []ImportItem{{Name: "local_mod"}}, line: 5},
		{module: "parent", level: 2, wildcard: true, line: 6},
		{module: "sub", level: 1, items: []ImportItem{{Name: "x"}}, line: 7},
	}
	for i, tt := range tests {
		got := file.Imports[i]
		if got.Module != tt.module || got.Level != tt.level || got.Alias != tt.alias || got.Wildcard != tt.wildcard {
			t.Errorf("import %d: got %+v", i, got)
		}
		if len(tt.items) > 0 && !reflect.DeepEqual(got.Items, tt.items) {
			t.Errorf("import %d: items got %+v, want %+v", i, got.Items, tt.items)
		}
		if got.Location.Line != tt.line {
			t.Errorf("import %d: line got %d, want %d", i, got.Location.Line, tt.line)
		}
		if got.Conditional {
			t.Errorf("import %d: unexpected conditional flag", i)
		}
	}

	if got := file.Imports[3].Bindings(); !reflect.DeepEqual(got, []string{"auth_login", "logout"}) {
		t.Errorf("unexpected bindings %v", got)
	}
	if got := file.Imports[2].Bindings(); !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("unexpected bindings %v", got)
	}
	if got := file.Imports[5].Bindings(); got != nil {
		t.Errorf("wildcard import should bind nothing, got %v", got)
	}
}

func TestPythonExtraction_ConditionalImports(t *testing.T) {
	code := `try:
    import ujson as json
except ImportError:
    import json

if TYPE_CHECKING:
    from pkg.models import Model

def lazy():
    import heavy
    return heavy
`
	file := parseSource(t, "pkg/io.py", code)

	want := map[string]bool{"ujson": true, "json": true, "pkg.models": true, "heavy": false}
	if len(file.Imports) != len(want) {
		t.Fatalf("expected %d imports, got %d", len(want), len(file.Imports))
	}
	for _, imp := range file.Imports {
		if imp.Conditional != want[imp.Module] {
			t.Errorf("%s: conditional got %v, want %v", imp.Module, imp.Conditional, want[imp.Module])
		}
	}
}

func TestPythonExtraction_Definitions(t *testing.T) {
	code := `import os
from helpers import fmt_name

@decorator
def render(user):
    return fmt_name(user)

async def fetch(url):
    return await get(url)

class Base:
    pass

class Child(Base):
    def method(self):
        return os.getcwd()

def _private():
    pass
`
	file := parseSource(t, "pkg/view.py", code)

	if len(file.Definitions) != 5 {
		t.Fatalf("expected 5 top-level definitions, got %d: %+v", len(file.Definitions), file.Definitions)
	}

	render := file.Definitions[0]
	if render.Name != "render" || render.Kind != KindFunction {
		t.Fatalf("unexpected first definition %+v", render)
	}
	if render.Location.Line != 4 || render.EndLine != 6 || render.LOC != 3 {
		t.Errorf("decorated span: got line %d end %d loc %d", render.Location.Line, render.EndLine, render.LOC)
	}
	if !contains(render.Uses, "fmt_name") || !contains(render.Uses, "decorator") {
		t.Errorf("render uses %v", render.Uses)
	}

	if fetch := file.Definitions[1]; fetch.Name != "fetch" || fetch.Kind != KindFunction {
		t.Errorf("async function not extracted: %+v", fetch)
	}

	child := file.Definitions[3]
	if child.Name != "Child" || child.Kind != KindClass {
		t.Fatalf("unexpected class %+v", child)
	}
	if !contains(child.Uses, "Base") || !contains(child.Uses, "os") {
		t.Errorf("Child uses %v", child.Uses)
	}
	if contains(child.Uses, "Child") {
		t.Error("definition must not list itself as a use")
	}

	if file.Definitions[4].Exported {
		t.Error("_private should not be exported")
	}
	for _, d := range file.Definitions {
		if d.Name == "method" {
			t.Error("nested method must not be a top-level definition")
		}
	}
}

func TestPythonExtraction_MainGuard(t *testing.T) {
	tests := []struct {
		name string
		code string
		want bool
	}{
		{"double quotes", "if __name__ == \"__main__\":\n    main()\n", true},
		{"single quotes", "if __name__ == '__main__':\n    main()\n", true},
		{"reversed", "if '__main__' == __name__:\n    main()\n", true},
		{"nested", "def f():\n    if __name__ == '__main__':\n        pass\n", false},
		{"other", "if DEBUG:\n    pass\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := parseSource(t, "entry.py", tt.code)
			if file.HasMainGuard != tt.want {
				t.Errorf("HasMainGuard got %v, want %v", file.HasMainGuard, tt.want)
			}
		})
	}
}

func TestPythonExtraction_DynamicCalls(t *testing.T) {
	code := `import importlib

def load(name):
    plugin = importlib.import_module("pkg.plugins.csv")
    other = __import__(name)
    fmt = importlib.import_module(f"pkg.{name}")
    print("not dynamic")
    return eval("1 + 1")
`
	file := parseSource(t, "pkg/loader.py", code)

	if len(file.DynamicCalls) != 4 {
		t.Fatalf("expected 4 dynamic calls, got %d: %+v", len(file.DynamicCalls), file.DynamicCalls)
	}

	first := file.DynamicCalls[0]
	if first.Callee != "importlib.import_module" || !first.HasLiteral || first.Literal != "pkg.plugins.csv" {
		t.Errorf("unexpected first call %+v", first)
	}
	if first.Location.Line != 4 {
		t.Errorf("expected line 4, got %d", first.Location.Line)
	}
	if first.Snippet != `importlib.import_module("pkg.plugins.csv")` {
		t.Errorf("unexpected snippet %q", first.Snippet)
	}

	if second := file.DynamicCalls[1]; second.Callee != "__import__" || second.HasLiteral {
		t.Errorf("variable argument must not be a literal: %+v", second)
	}
	if third := file.DynamicCalls[2]; third.HasLiteral {
		t.Errorf("f-string must not be a literal: %+v", third)
	}
	if fourth := file.DynamicCalls[3]; fourth.Callee != "eval" || fourth.Literal != "1 + 1" {
		t.Errorf("unexpected eval call %+v", fourth)
	}
}

func TestPythonExtraction_CustomCallees(t *testing.T) {
	p := NewParser([]string{"load_plugin"})
	file, err := p.ParseFile("a.py", []byte("load_plugin('x')\n__import__('y')\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(file.DynamicCalls) != 1 || file.DynamicCalls[0].Callee != "load_plugin" {
		t.Errorf("unexpected calls %+v", file.DynamicCalls)
	}
}

func TestParseFile_SyntaxError(t *testing.T) {
	p := NewParser(nil)
	_, err := p.ParseFile("broken.py", []byte("import os\n\ndef broken(:\n    pass\n"))
	if err == nil {
		t.Fatal("expected parse error")
	}
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %T: %v", err, err)
	}
	if pe.Path != "broken.py" || pe.Line != 3 {
		t.Errorf("unexpected parse error %+v", pe)
	}
	if pe.Snippet != "def broken(:" {
		t.Errorf("unexpected snippet %q", pe.Snippet)
	}
}

func TestParseFile_InvalidUTF8(t *testing.T) {
	p := NewParser(nil)
	_, err := p.ParseFile("bin.py", []byte("x = 1\ny = '\xff'\n"))
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if pe.Line != 2 {
		t.Errorf("expected line 2, got %d", pe.Line)
	}
}

func TestCountLines(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"x", 1},
		{"x\n", 1},
		{"x\ny", 2},
		{"x\r\ny\r\n", 2},
		{"\n\n", 2},
		{"a\rb\rc\r", 3},
		{"a\n\x0c\nb", 4},
		{"a\r\n\r\nb", 3},
		{"a\vb\x1cc\x1dd\x1ee", 5},
		{"a\u0085b\u2028c\u2029", 3},
		{"a\x85b", 1},
	}
	for _, tt := range tests {
		if got := CountLines([]byte(tt.in)); got != tt.want {
			t.Errorf("CountLines(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestIsSupportedPath(t *testing.T) {
	p := NewParser(nil)
	if !p.IsSupportedPath("pkg/mod.py") || !p.IsSupportedPath("MOD.PY") {
		t.Error("expected .py to be supported")
	}
	if p.IsSupportedPath("pkg/mod.pyc") || p.IsSupportedPath("README.md") {
		t.Error("unexpected supported path")
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
