package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/xab-mack/optistats/internal/model"
)

const topRankedShown = 5

type markdownEmitter struct{}

func (markdownEmitter) Format() string { return "markdown" }

func (markdownEmitter) Emit(w io.Writer, doc Document) error {
	_, err := io.WriteString(w, renderMarkdown(doc))
	return err
}

func cell(s string) string { return strings.ReplaceAll(s, "|", `\|`) }

func row(b *strings.Builder, cells ...string) {
	b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
}

func headerRow(b *strings.Builder, cells ...string) {
	row(b, cells...)
	sep := make([]string, len(cells))
	for i := range sep {
		sep[i] = "---"
	}
	row(b, sep...)
}

func renderMarkdown(doc Document) string {
	var b strings.Builder
	if a := doc.Analysis; a != nil {
		markdownAnalysis(&b, a, doc.Labels)
	}
	if c := doc.Comparison; c != nil {
		markdownComparison(&b, c, doc.Labels)
	}
	return b.String()
}

func markdownStats(b *strings.Builder, s model.LoadStats) {
	headerRow(b, "Files", "Parsed", "Kept", "Dropped", "Skipped", "Duplicates", "Excluded")
	row(b, num(s.Files), num(s.Parsed), num(s.Kept), num(s.Dropped), num(s.Skipped), num(s.Duplicates), num(s.Excluded))
}

func markdownAnalysis(b *strings.Builder, a *model.Analysis, labels Labels) {
	fmt.Fprintf(b, "# Analysis: %s\n\nRun `%s`.\n\n", a.Dataset, a.RunID)
	markdownStats(b, a.Stats)

	b.WriteString("\n## Detections by type\n\n")
	headerRow(b, "Type", "Label", "Occurrences", "Contracts", "Top ranked contracts")
	for _, t := range a.Aggregate.Types() {
		var top []string
		for _, c := range a.Aggregate.TopRanked(t, topRankedShown) {
			top = append(top, fmt.Sprintf("%s (#%d)", c.ID, c.Rank))
		}
		row(b, "`"+cell(string(t))+"`", cell(labels.Label(t)),
			num(a.Aggregate.PerTypeOccurrenceCount[t]), num(a.Aggregate.AffectedContractCount(t)),
			cell(strings.Join(top, ", ")))
	}

	if hist := countHistogram(a.Aggregate.SortedVulnerabilityCounts()); len(hist) > 0 {
		b.WriteString("\n## Detections per contract\n\n")
		headerRow(b, "Detections", "Contracts")
		for _, p := range hist {
			row(b, num(p[0]), num(p[1]))
		}
	}

	s := a.TimeSummary
	b.WriteString("\n## Execution time (ms)\n\n")
	headerRow(b, "Count", "Min", "Median", "P90", "Max", "Mean", "StdDev")
	row(b, num(s.Count), ms(s.Min), ms(s.Median), ms(s.P90), ms(s.Max), ms(s.Mean), ms(s.StdDev))
}

func markdownComparison(b *strings.Builder, c *model.ComparisonReport, labels Labels) {
	b.WriteString("\n## Baseline corpus\n\n")
	markdownStats(b, c.BaselineStats)

	b.WriteString("\n## Comparison by type\n\n")
	headerRow(b, "Type", "Label", "Native", "Baseline", "Native contracts", "Baseline contracts")
	for _, t := range c.Comparison.Types {
		v := c.Comparison.VulnerabilitiesByType[t]
		k := c.Comparison.ContractsByType[t]
		row(b, "`"+cell(string(t))+"`", cell(labels.Label(t)),
			num(v.Native), num(v.Baseline), num(len(k.Native)), num(len(k.Baseline)))
	}

	tp := c.Comparison.Time
	b.WriteString("\n## Paired execution time\n\n")
	if len(tp.IDs) == 0 {
		b.WriteString("No contract appears in both corpora.\n")
		return
	}
	headerRow(b, "Contract", "Native (ms)", "Baseline (ms)")
	for i, id := range tp.IDs {
		row(b, cell(id), ms(tp.NativeMs[i]), num(int(tp.BaselineMs[i])))
	}
}
