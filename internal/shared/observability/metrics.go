package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "depscan_parsing_seconds",
		Help:    "Time spent parsing a source file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"language"})

	FilesParsedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "depscan_files_parsed_total",
		Help: "Source files processed, by outcome (ok, parse_error, read_error).",
	}, []string{"result"})

	GraphNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "depscan_graph_nodes_total",
		Help: "Total number of nodes in the dependency graph.",
	})

	GraphEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "depscan_graph_edges_total",
		Help: "Total number of edges in the dependency graph.",
	})

	ExternalImportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "depscan_external_imports_total",
		Help: "Import targets classified as external to the project, by origin (stdlib, third_party).",
	}, []string{"origin"})

	UnresolvedImportsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "depscan_unresolved_imports_total",
		Help: "Project imports that matched no discovered module.",
	})

	ResolverCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "depscan_resolver_cache_lookups_total",
		Help: "Module resolution cache lookups, by result (hit, miss).",
	}, []string{"result"})

	AnalysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "depscan_analysis_seconds",
		Help:    "Time spent on high-level analysis tasks.",
		Buckets: prometheus.DefBuckets,
	}, []string{"task"})

	FindingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "depscan_findings_total",
		Help: "Findings reported, by kind.",
	}, []string{"kind"})

	AnalyzerFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "depscan_analyzer_failures_total",
		Help: "Analyzers that failed or panicked, by analyzer.",
	}, []string{"analyzer"})
)

// WriteMetrics dumps the default registry in the Prometheus text format.
// The file is written to a temporary name and renamed into place.
func WriteMetrics(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
