package report

import (
	"depscan/internal/engine/graph"
	"fmt"
	"strconv"
	"strings"
)

const tsvHeader = "From\tTo\tFile\tLine\tConditional\tImport"

var tsvEscaper = strings.NewReplacer("\t", " ", "\r", " ", "\n", " ")

// TSVGenerator writes one row per import statement behind each edge.
type TSVGenerator struct {
	graph *graph.Graph
}

func NewTSVGenerator(g *graph.Graph) *TSVGenerator {
	return &TSVGenerator{graph: g}
}

func (t *TSVGenerator) Generate() (string, error) {
	if t.graph == nil {
		return "", fmt.Errorf("tsv: nil graph")
	}

	var buf strings.Builder
	buf.WriteString(tsvHeader)
	buf.WriteString("\n")

	for _, e := range t.graph.Edges() {
		file := ""
		if node, ok := t.graph.Node(e.From); ok {
			file = node.FilePath
		}
		for _, rec := range e.Records {
			buf.WriteString(strings.Join([]string{
				tsvEscaper.Replace(e.From),
				tsvEscaper.Replace(e.To),
				tsvEscaper.Replace(file),
				strconv.Itoa(rec.Line),
				strconv.FormatBool(rec.Conditional),
				tsvEscaper.Replace(strings.TrimSpace(rec.Raw)),
			}, "\t"))
			buf.WriteString("\n")
		}
	}

	return buf.String(), nil
}
