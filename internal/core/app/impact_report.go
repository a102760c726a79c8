package app

import (
	"depscan/internal/engine/graph"
	"fmt"
	"strings"
)

func FormatImpactReport(report graph.ImpactReport) string {
	var b strings.Builder

	b.WriteString("Impact Analysis\n")
	b.WriteString("===============\n")
	b.WriteString(fmt.Sprintf("Target module: %s\n", report.Target))
	if report.TargetFile != "" {
		b.WriteString(fmt.Sprintf("Target file: %s\n", report.TargetFile))
	}
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("Direct importers (%d)\n", len(report.DirectImporters)))
	for _, mod := range report.DirectImporters {
		b.WriteString(fmt.Sprintf("- %s\n", mod))
	}
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("Transitive importers (%d)\n", len(report.TransitiveImporters)))
	for _, mod := range report.TransitiveImporters {
		b.WriteString(fmt.Sprintf("- %s\n", mod))
	}
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("Exported names at risk (%d)\n", len(report.ExportedSymbols)))
	for _, sym := range report.ExportedSymbols {
		b.WriteString(fmt.Sprintf("- %s\n", sym))
	}

	return b.String()
}
