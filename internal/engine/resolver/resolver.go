// # internal/engine/resolver/resolver.go
package resolver

import (
	"depscan/internal/core/errors"
	"depscan/internal/engine/parser"
	"depscan/internal/shared/observability"
	"fmt"
	"path"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	initModule       = "__init__"
	DefaultCacheSize = 4096
)

// Resolution is the outcome of resolving one import target.
// Exactly one of Target, External and Unresolved is set.
type Resolution struct {
	Target     string // Canonical node path
	External   string // Top-level name of a non-project package
	Stdlib     bool   // External is a standard-library module
	Unresolved string // Project import matching no discovered module, e.g. "..gone"
}

func (r Resolution) IsExternal() bool {
	return r.External != ""
}

func (r Resolution) IsUnresolved() bool {
	return r.Unresolved != ""
}

// Resolver maps import records to canonical node paths over a fixed file set.
// Safe for concurrent use.
type Resolver struct {
	modules map[string]string // canonical path -> discovered file path
	roots   []string
	tops    map[string]bool // first dotted segment of every module under a source root
	cache   *lru.Cache[string, string]
}

// NewResolver indexes the discovered files. paths are project-relative and may use
// either separator. sourceRoots defaults to the project root.
func NewResolver(paths []string, sourceRoots []string, cacheSize int) (*Resolver, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, string](cacheSize)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeValidationError, "invalid resolver cache size")
	}

	r := &Resolver{
		modules: make(map[string]string, len(paths)),
		roots:   normalizeRoots(sourceRoots),
		cache:   cache,
		tops:    make(map[string]bool),
	}
	for _, p := range paths {
		canonical := CanonicalPath(p)
		if canonical == "" {
			continue
		}
		if _, exists := r.modules[canonical]; !exists {
			r.modules[canonical] = p
		}
		for _, root := range r.roots {
			if top, ok := topLevelName(root, canonical); ok {
				r.tops[top] = true
			}
		}
	}
	return r, nil
}

// topLevelName returns the importable first segment of canonical under root.
func topLevelName(root, canonical string) (string, bool) {
	rel := canonical
	if root != "" {
		if !strings.HasPrefix(canonical, root+"/") {
			return "", false
		}
		rel = strings.TrimPrefix(canonical, root+"/")
	}
	top, _, _ := strings.Cut(rel, "/")
	if top == "" || top == initModule {
		return "", false
	}
	return top, true
}

// CanonicalPath turns a project-relative file path into a node path:
// slash-separated with the .py suffix removed.
func CanonicalPath(filePath string) string {
	p := strings.ReplaceAll(filePath, "\\", "/")
	p = path.Clean(p)
	p = strings.TrimPrefix(p, "./")
	if p == "." || p == "" {
		return ""
	}
	return strings.TrimSuffix(p, ".py")
}

// PackageOf returns the package directory a module belongs to.
// Both "pkg/mod" and "pkg/__init__" live in "pkg"; top-level modules return "".
func PackageOf(canonical string) string {
	dir := path.Dir(canonical)
	if dir == "." {
		return ""
	}
	return dir
}

func (r *Resolver) Contains(canonical string) bool {
	_, ok := r.modules[canonical]
	return ok
}

// Resolve maps one import statement made by importer to its targets. A statement
// importing several submodules yields one resolution per distinct target, in
// first-seen order.
func (r *Resolver) Resolve(importer string, imp parser.Import) []Resolution {
	var out []Resolution
	seen := make(map[Resolution]bool)
	add := func(res Resolution) {
		if !seen[res] {
			seen[res] = true
			out = append(out, res)
		}
	}

	if imp.Level == 0 && len(imp.Items) == 0 && !imp.Wildcard {
		add(r.resolveAbsolute(imp.Module))
		return out
	}

	if imp.Wildcard || len(imp.Items) == 0 {
		add(r.resolveFrom(importer, imp, ""))
		return out
	}
	for _, item := range imp.Items {
		add(r.resolveFrom(importer, imp, item.Name))
	}
	return out
}

// ResolveDotted resolves an absolute dotted module name against the source roots.
func (r *Resolver) ResolveDotted(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" || strings.HasPrefix(name, ".") {
		return "", false
	}
	res := r.resolveAbsolute(name)
	return res.Target, res.Target != ""
}

// resolveFrom handles "from X import item". The item is tried as a submodule of X
// before falling back to X itself.
func (r *Resolver) resolveFrom(importer string, imp parser.Import, item string) Resolution {
	if !imp.IsRelative() {
		if item != "" {
			if target, ok := r.lookupAbsolute(joinDotted(imp.Module, item)); ok {
				return Resolution{Target: target}
			}
		}
		return r.resolveAbsolute(imp.Module)
	}

	unresolved := Resolution{Unresolved: strings.Repeat(".", imp.Level) + joinDotted(imp.Module, item)}
	base, ok := ascend(PackageOf(importer), imp.Level-1)
	if !ok {
		return unresolved
	}
	if item != "" {
		if target, ok := r.lookupRelative(base, joinDotted(imp.Module, item)); ok {
			return Resolution{Target: target}
		}
	}
	if target, ok := r.lookupRelative(base, imp.Module); ok {
		return Resolution{Target: target}
	}
	return unresolved
}

func (r *Resolver) resolveAbsolute(module string) Resolution {
	if target, ok := r.lookupAbsolute(module); ok {
		return Resolution{Target: target}
	}
	head, _, _ := strings.Cut(module, ".")
	if r.tops[head] {
		return Resolution{Unresolved: module}
	}
	return Resolution{External: head, Stdlib: IsStdlib(head)}
}

func (r *Resolver) lookupAbsolute(dotted string) (string, bool) {
	if dotted == "" {
		return "", false
	}
	return r.memo("abs|"+dotted, func() (string, bool) {
		rel := strings.ReplaceAll(dotted, ".", "/")
		for _, root := range r.roots {
			if target, ok := r.match(path.Join(root, rel)); ok {
				return target, true
			}
		}
		return "", false
	})
}

func (r *Resolver) lookupRelative(base, dotted string) (string, bool) {
	key := fmt.Sprintf("rel|%s|%s", base, dotted)
	return r.memo(key, func() (string, bool) {
		rel := strings.ReplaceAll(dotted, ".", "/")
		if rel == "" {
			return r.matchPackage(base)
		}
		return r.match(path.Join(base, rel))
	})
}

// match tries the package form before the single-file module form.
func (r *Resolver) match(candidate string) (string, bool) {
	if target, ok := r.matchPackage(candidate); ok {
		return target, true
	}
	if candidate != "" && r.Contains(candidate) {
		return candidate, true
	}
	return "", false
}

func (r *Resolver) matchPackage(dir string) (string, bool) {
	init := path.Join(dir, initModule)
	if r.Contains(init) {
		return init, true
	}
	return "", false
}

func (r *Resolver) memo(key string, compute func() (string, bool)) (string, bool) {
	if v, ok := r.cache.Get(key); ok {
		observability.ResolverCacheLookups.WithLabelValues("hit").Inc()
		return v, v != ""
	}
	observability.ResolverCacheLookups.WithLabelValues("miss").Inc()
	target, _ := compute()
	r.cache.Add(key, target)
	return target, target != ""
}

// ascend walks up levels directories from pkg. Going above the project root fails.
func ascend(pkg string, levels int) (string, bool) {
	for i := 0; i < levels; i++ {
		if pkg == "" {
			return "", false
		}
		pkg = PackageOf(pkg)
	}
	return pkg, true
}

func joinDotted(module, item string) string {
	if module == "" {
		return item
	}
	return module + "." + item
}

func normalizeRoots(roots []string) []string {
	if len(roots) == 0 {
		return []string{""}
	}
	out := make([]string, 0, len(roots))
	seen := make(map[string]bool)
	for _, root := range roots {
		r := CanonicalPath(strings.TrimSpace(root))
		if seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}
