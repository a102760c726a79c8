// # internal/engine/parser/pool_test.go
package parser

import (
	"sync"
	"testing"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

func pythonLanguage() *sitter.Language {
	return sitter.NewLanguage(tree_sitter_python.Language())
}

func TestParserPool_GetPut(t *testing.T) {
	pool := NewParserPool(pythonLanguage())

	sp := pool.Get()
	if sp == nil {
		t.Fatal("expected non-nil parser from pool")
	}
	if pool.Active() != 1 {
		t.Errorf("expected 1 active parser, got %d", pool.Active())
	}
	pool.Put(sp)
	if pool.Active() != 0 {
		t.Errorf("expected 0 active parsers, got %d", pool.Active())
	}

	// Put(nil) is a no-op.
	pool.Put(nil)
}

func TestParserPool_Parse(t *testing.T) {
	pool := NewParserPool(pythonLanguage())

	tree := pool.Parse([]byte("import os\n"))
	if tree == nil {
		t.Fatal("expected tree")
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.Kind() != "module" {
		t.Errorf("expected module root, got %s", root.Kind())
	}
	if root.HasError() {
		t.Error("unexpected syntax error")
	}
}

func TestParserPool_Concurrent(t *testing.T) {
	pool := NewParserPool(pythonLanguage())
	src := []byte("from . import a\nimport b\n")

	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tree := pool.Parse(src)
			if tree == nil {
				errs <- "nil tree"
				return
			}
			defer tree.Close()
			if tree.RootNode().NamedChildCount() != 2 {
				errs <- "unexpected statement count"
			}
		}()
	}
	wg.Wait()
	close(errs)
	for msg := range errs {
		t.Error(msg)
	}
	if pool.Active() != 0 {
		t.Errorf("leaked parsers: %d", pool.Active())
	}
}
