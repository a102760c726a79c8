// # internal/engine/split/heuristics.go
package split

import (
	"depscan/internal/engine/graph"
	"depscan/internal/engine/parser"
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// DefaultHeuristics returns the built-in chain, evaluated in this order.
func DefaultHeuristics() []Heuristic {
	return []Heuristic{
		{Kind: KindClassGrouping, Apply: applyClassGrouping},
		{Kind: KindFunctionGrouping, Apply: applyFunctionGrouping},
		{Kind: KindImportPartition, Apply: applyImportPartition},
		{Kind: KindUtilitySplit, Apply: applyUtilitySplit},
	}
}

func applyClassGrouping(in Input) (Suggestion, bool) {
	classes := definitionsOfKind(in.Node.Definitions, parser.KindClass)
	if len(classes) < in.Options.MinClasses {
		return Suggestion{}, false
	}
	groups := classGroups(classes, in.Options.MinPrefixLen)
	if len(groups) < 2 {
		return Suggestion{}, false
	}
	return Suggestion{
		Reason: fmt.Sprintf("%d classes form %d independent clusters", len(classes), len(groups)),
		Groups: groups,
	}, true
}

func applyFunctionGrouping(in Input) (Suggestion, bool) {
	functions := definitionsOfKind(in.Node.Definitions, parser.KindFunction)
	if len(functions) < in.Options.MinFunctions {
		return Suggestion{}, false
	}
	groups, prefixed := functionGroups(functions, in.Options.PrefixRule, in.Options.MinPrefixLen)
	if prefixed < 2 {
		return Suggestion{}, false
	}
	return Suggestion{
		Reason: fmt.Sprintf("%d functions share %d name prefixes", len(functions), prefixed),
		Groups: groups,
	}, true
}

func applyImportPartition(in Input) (Suggestion, bool) {
	groups, partitions := importGroups(in.Node)
	if partitions < 2 {
		return Suggestion{}, false
	}
	return Suggestion{
		Reason: fmt.Sprintf("top-level symbols fall into %d disjoint import sets", partitions),
		Groups: groups,
	}, true
}

// applyUtilitySplit always fires for utility-named modules. It reuses whichever
// grouping yields the most groups with minimum counts relaxed, falling back to
// grouping symbols by kind.
func applyUtilitySplit(in Input) (Suggestion, bool) {
	if !in.IsUtility {
		return Suggestion{}, false
	}

	classes := definitionsOfKind(in.Node.Definitions, parser.KindClass)
	functions := definitionsOfKind(in.Node.Definitions, parser.KindFunction)
	fnGroups, _ := functionGroups(functions, in.Options.PrefixRule, in.Options.MinPrefixLen)
	impGroups, _ := importGroups(in.Node)

	candidates := []struct {
		basis  string
		groups []Group
	}{
		{"class clusters", classGroups(classes, in.Options.MinPrefixLen)},
		{"function prefixes", fnGroups},
		{"import sets", impGroups},
	}

	best := -1
	for i, c := range candidates {
		if len(c.groups) < 2 {
			continue
		}
		if best < 0 || len(c.groups) > len(candidates[best].groups) {
			best = i
		}
	}
	if best >= 0 {
		return Suggestion{
			Reason: fmt.Sprintf("generic utility module with %d lines; split by %s", in.Node.LineCount, candidates[best].basis),
			Groups: candidates[best].groups,
		}, true
	}

	var groups []Group
	if len(classes) > 0 {
		groups = append(groups, Group{Name: "classes", Members: names(classes)})
	}
	if len(functions) > 0 {
		groups = append(groups, Group{Name: "functions", Members: names(functions)})
	}
	return Suggestion{
		Reason: fmt.Sprintf("generic utility module with %d lines; split into domain-specific modules", in.Node.LineCount),
		Groups: groups,
	}, true
}

// classGroups clusters classes that reference each other or share a name prefix of
// at least minPrefix characters, case-insensitively. Groups follow source order.
func classGroups(classes []parser.Definition, minPrefix int) []Group {
	if len(classes) == 0 {
		return nil
	}
	index := make(map[string]int, len(classes))
	for i, c := range classes {
		index[c.Name] = i
	}

	uf := newUnionFind(len(classes))
	for i, c := range classes {
		for _, use := range c.Uses {
			if j, ok := index[use]; ok {
				uf.union(i, j)
			}
		}
		for j := i + 1; j < len(classes); j++ {
			if commonPrefixLen(strings.ToLower(c.Name), strings.ToLower(classes[j].Name)) >= minPrefix {
				uf.union(i, j)
			}
		}
	}

	var groups []Group
	for _, members := range uf.components() {
		memberNames := make([]string, 0, len(members))
		for _, i := range members {
			memberNames = append(memberNames, classes[i].Name)
		}
		groups = append(groups, Group{Name: clusterName(memberNames, minPrefix), Members: memberNames})
	}
	return groups
}

// functionGroups buckets functions by prefix. Buckets with one member and functions
// without a usable prefix are pooled into a trailing "other" group. The second
// return value counts buckets with at least two members.
func functionGroups(functions []parser.Definition, rule PrefixRule, minPrefix int) ([]Group, int) {
	var order []string
	buckets := make(map[string][]string)
	var unprefixed []string
	for _, fn := range functions {
		prefix := namePrefix(fn.Name, rule)
		if prefix == "" || len(prefix) < minPrefix {
			unprefixed = append(unprefixed, fn.Name)
			continue
		}
		if _, ok := buckets[prefix]; !ok {
			order = append(order, prefix)
		}
		buckets[prefix] = append(buckets[prefix], fn.Name)
	}

	var groups []Group
	var other []string
	for _, prefix := range order {
		if len(buckets[prefix]) < 2 {
			other = append(other, buckets[prefix]...)
			continue
		}
		groups = append(groups, Group{Name: prefix, Members: buckets[prefix]})
	}
	prefixed := len(groups)
	other = append(other, unprefixed...)
	if len(other) > 0 && prefixed > 0 {
		groups = append(groups, Group{Name: "other", Members: sortedCopy(other)})
	}
	return groups, prefixed
}

// importGroups partitions top-level symbols by the import bindings they use.
// Symbols sharing a binding, or referencing one another, land in the same
// partition. Symbols touching no import form a trailing "standalone" group that
// does not count as a partition.
func importGroups(n *graph.Node) ([]Group, int) {
	defs := n.Definitions
	if len(defs) == 0 {
		return nil, 0
	}

	bindings := make(map[string]bool)
	for _, imp := range n.Imports {
		for _, b := range imp.Bindings() {
			bindings[b] = true
		}
	}
	index := make(map[string]int, len(defs))
	for i, d := range defs {
		index[d.Name] = i
	}

	uf := newUnionFind(len(defs))
	owner := make(map[string]int)
	deps := make([][]string, len(defs))
	for i, d := range defs {
		for _, use := range d.Uses {
			if j, ok := index[use]; ok {
				uf.union(i, j)
			}
			if !bindings[use] {
				continue
			}
			deps[i] = append(deps[i], use)
			if j, ok := owner[use]; ok {
				uf.union(i, j)
			} else {
				owner[use] = i
			}
		}
	}

	var groups []Group
	var standalone []string
	for _, members := range uf.components() {
		used := make(map[string]bool)
		memberNames := make([]string, 0, len(members))
		for _, i := range members {
			memberNames = append(memberNames, defs[i].Name)
			for _, b := range deps[i] {
				used[b] = true
			}
		}
		if len(used) == 0 {
			standalone = append(standalone, memberNames...)
			continue
		}
		usedNames := make([]string, 0, len(used))
		for b := range used {
			usedNames = append(usedNames, b)
		}
		sort.Strings(usedNames)
		groups = append(groups, Group{Name: "imports:" + strings.Join(usedNames, ","), Members: memberNames})
	}
	partitions := len(groups)
	if len(standalone) > 0 && partitions > 0 {
		groups = append(groups, Group{Name: "standalone", Members: standalone})
	}
	return groups, partitions
}

// namePrefix cuts a function name at its first word boundary under rule.
// Leading underscores are ignored. Names without a boundary have no prefix.
func namePrefix(name string, rule PrefixRule) string {
	name = strings.TrimLeft(name, "_")
	switch rule {
	case PrefixCamel:
		for i, r := range name {
			if i > 0 && unicode.IsUpper(r) {
				return strings.ToLower(name[:i])
			}
		}
		return ""
	default:
		if i := strings.IndexByte(name, '_'); i > 0 {
			return strings.ToLower(name[:i])
		}
		return ""
	}
}

func clusterName(members []string, minPrefix int) string {
	if len(members) == 1 {
		return strings.ToLower(members[0])
	}
	prefix := strings.ToLower(members[0])
	for _, m := range members[1:] {
		prefix = prefix[:commonPrefixLen(prefix, strings.ToLower(m))]
	}
	prefix = strings.Trim(prefix, "_")
	if len(prefix) >= minPrefix {
		return prefix
	}
	return strings.ToLower(members[0]) + "_cluster"
}

func commonPrefixLen(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}

func definitionsOfKind(defs []parser.Definition, kind parser.DefinitionKind) []parser.Definition {
	var out []parser.Definition
	for _, d := range defs {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

func names(defs []parser.Definition) []string {
	out := make([]string, 0, len(defs))
	for _, d := range defs {
		out = append(out, d.Name)
	}
	return out
}

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}
