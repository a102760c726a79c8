package graph

// internal/engine/graph/importance.go

import "strings"

// CalculateImportanceScore ranks a module's architectural significance:
//
//	Score = (FanIn * 2) + (FanOut * 1) + (LineCount / 100) + (IsAPI ? 10 : 0)
//
// Parameters:
//   - fanIn:      number of project modules that import this module
//   - fanOut:     number of project modules this module imports
//   - lineCount:  physical lines in the module
//   - modulePath: canonical path, used to detect "API surface" modules
func CalculateImportanceScore(fanIn, fanOut, lineCount int, modulePath string) float64 {
	score := float64(fanIn*2) + float64(fanOut) + float64(lineCount)/100
	if isAPIModule(modulePath) {
		score += 10
	}
	return score
}

// isAPIModule returns true when a path segment suggests a public API surface.
func isAPIModule(modulePath string) bool {
	keywords := []string{"api", "views", "routes", "handlers", "endpoints", "service"}
	for _, segment := range strings.Split(strings.ToLower(modulePath), "/") {
		for _, kw := range keywords {
			if segment == kw || strings.HasPrefix(segment, kw+"_") || strings.HasSuffix(segment, "_"+kw) {
				return true
			}
		}
	}
	return false
}
