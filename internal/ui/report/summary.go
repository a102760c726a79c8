package report

import (
	"depscan/internal/core/app"
	"depscan/internal/engine/graph"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const DefaultSummaryTop = 10

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true)

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6")).
			Underline(true)

	cycleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

// SummaryPrinter renders the terminal summary of one run. Lists longer than Top
// are cut with an "... and N more" line.
type SummaryPrinter struct {
	Top int
}

func NewSummaryPrinter(top int) *SummaryPrinter {
	if top <= 0 {
		top = DefaultSummaryTop
	}
	return &SummaryPrinter{Top: top}
}

func (p *SummaryPrinter) Render(r *app.Report) string {
	if r == nil || r.Graph == nil {
		return ""
	}
	var b strings.Builder
	g := r.Graph

	b.WriteString(titleStyle.Render("Dependency analysis: "+r.Root) + "\n")
	b.WriteString(statusStyle.Render(fmt.Sprintf("%d files, %d modules, %d imports in %v",
		r.Files, g.NodeCount(), g.EdgeCount(), r.Duration.Round(time.Millisecond))) + "\n")

	metrics := g.ComputeModuleMetrics()
	p.writeRanked(&b, "Most imported modules", graph.TopImported(metrics, p.Top), func(m graph.ModuleMetrics) string {
		return fmt.Sprintf("%d importers, %d imports, depth %d", m.FanIn, m.FanOut, m.Depth)
	})
	p.writeRanked(&b, "Most important modules", graph.TopImportance(metrics, p.Top), func(m graph.ModuleMetrics) string {
		return fmt.Sprintf("score %.2f", m.ImportanceScore)
	})
	stdlib, thirdParty := g.ExternalByOrigin()
	p.writeTally(&b, "Third-party packages", thirdParty)
	p.writeTally(&b, "Standard library modules", stdlib)
	p.writeTally(&b, "Unresolved project imports", g.Unresolved())

	b.WriteString("\n")
	if len(r.Cycles) == 0 {
		b.WriteString(successStyle.Render("✓ No circular imports found") + "\n")
	} else {
		b.WriteString(cycleStyle.Render(fmt.Sprintf("⚠ CIRCULAR IMPORTS: %d cycle(s)", len(r.Cycles))) + "\n")
		p.writeList(&b, len(r.Cycles), func(i int) string {
			return strings.Join(r.Cycles[i].Path, " -> ")
		})
	}

	dead := r.Reachability.Dead
	switch {
	case len(r.Reachability.EntryPoints) == 0 && len(dead) > 0:
		b.WriteString(warnStyle.Render(fmt.Sprintf("⚠ NO ENTRY POINTS: all %d module(s) unreachable", len(dead))) + "\n")
	case len(dead) == 0:
		b.WriteString(successStyle.Render("✓ No unreachable modules found") + "\n")
	default:
		b.WriteString(warnStyle.Render(fmt.Sprintf("⚠ UNREACHABLE MODULES: %d module(s)", len(dead))) + "\n")
		p.writeList(&b, len(dead), func(i int) string { return dead[i] })
	}
	if len(r.Reachability.Unknown) > 0 {
		b.WriteString(statusStyle.Render("  unknown entry points: "+strings.Join(r.Reachability.Unknown, ", ")) + "\n")
	}

	if len(r.Oversized) == 0 {
		b.WriteString(successStyle.Render("✓ No oversized modules found") + "\n")
	} else {
		b.WriteString(warnStyle.Render(fmt.Sprintf("⚠ OVERSIZED MODULES: %d module(s)", len(r.Oversized))) + "\n")
		p.writeList(&b, len(r.Oversized), func(i int) string {
			o := r.Oversized[i]
			line := fmt.Sprintf("%s: %d lines", o.Path, o.LineCount)
			for _, s := range o.Suggestions {
				line += fmt.Sprintf("\n      %s: %s", s.Strategy, s.Reason)
				for _, grp := range s.Groups {
					line += fmt.Sprintf("\n        %s: %s", grp.Name, strings.Join(grp.Members, ", "))
				}
			}
			return line
		})
	}

	findings := r.Findings()
	if len(findings) > 0 {
		b.WriteString(warnStyle.Render(fmt.Sprintf("⚠ FINDINGS: %d", len(findings))) + "\n")
		p.writeList(&b, len(findings), func(i int) string {
			f := findings[i]
			return fmt.Sprintf("%s:%d [%s] %s", f.File, f.Line, f.Kind, f.Message)
		})
	}

	for _, err := range r.AnalyzerErrors {
		b.WriteString(cycleStyle.Render("✗ analyzer error: "+err.Error()) + "\n")
	}
	return b.String()
}

func (p *SummaryPrinter) writeRanked(b *strings.Builder, title string, ranked []graph.RankedModule, detail func(graph.ModuleMetrics) string) {
	if len(ranked) == 0 {
		return
	}
	b.WriteString("\n" + sectionStyle.Render(title) + "\n")
	for _, m := range ranked {
		fmt.Fprintf(b, "  %-40s %s\n", m.Path, detail(m.Metrics))
	}
}

// writeTally lists names by descending count, ties by name.
func (p *SummaryPrinter) writeTally(b *strings.Builder, title string, tally map[string]int) {
	if len(tally) == 0 {
		return
	}
	names := make([]string, 0, len(tally))
	for name := range tally {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if tally[names[i]] != tally[names[j]] {
			return tally[names[i]] > tally[names[j]]
		}
		return names[i] < names[j]
	})

	b.WriteString("\n" + sectionStyle.Render(fmt.Sprintf("%s (%d)", title, len(tally))) + "\n")
	for i, name := range names {
		if i == p.Top {
			fmt.Fprintf(b, "  ... and %d more\n", len(names)-p.Top)
			break
		}
		fmt.Fprintf(b, "  %-40s %d\n", name, tally[name])
	}
}

func (p *SummaryPrinter) writeList(b *strings.Builder, n int, item func(int) string) {
	for i := 0; i < n; i++ {
		if i == p.Top {
			fmt.Fprintf(b, "  ... and %d more\n", n-p.Top)
			return
		}
		b.WriteString("  - " + item(i) + "\n")
	}
}
