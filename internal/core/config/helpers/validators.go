package helpers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

func HasWildcard(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[]{}")
}

// CompileGlob rejects empty patterns and patterns gobwas/glob cannot compile.
func CompileGlob(ref, pattern string) (glob.Glob, error) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return nil, fmt.Errorf("%s must not be empty", ref)
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%s %q is not a valid glob: %w", ref, pattern, err)
	}
	return g, nil
}

// IsPathOverlap reports whether one cleaned path is equal to or nested in the other.
func IsPathOverlap(a, b string) bool {
	a, b = filepath.Clean(a), filepath.Clean(b)
	if a == b {
		return true
	}
	if strings.HasPrefix(a, b+string(os.PathSeparator)) {
		return true
	}
	if strings.HasPrefix(b, a+string(os.PathSeparator)) {
		return true
	}
	return false
}

// DuplicateEntries returns values that occur more than once after trimming, in first-seen order.
func DuplicateEntries(values []string) []string {
	seen := make(map[string]int, len(values))
	var dups []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		seen[v]++
		if seen[v] == 2 {
			dups = append(dups, v)
		}
	}
	return dups
}
