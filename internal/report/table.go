package report

import (
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/xab-mack/optistats/internal/model"
)

var printer = message.NewPrinter(language.English)

// textTable lays out cells in columns sized by terminal display width.
type textTable struct {
	header []string
	rows   [][]string
}

func (t *textTable) add(cells ...string) { t.rows = append(t.rows, cells) }

func (t *textTable) render(b *strings.Builder) {
	widths := make([]int, len(t.header))
	for _, row := range append([][]string{t.header}, t.rows...) {
		for i, c := range row {
			if w := runewidth.StringWidth(c); i < len(widths) && w > widths[i] {
				widths[i] = w
			}
		}
	}
	line := func(row []string) {
		var sb strings.Builder
		for i, c := range row {
			if i > 0 {
				sb.WriteString("  ")
			}
			sb.WriteString(padRight(c, widths[i]))
		}
		b.WriteString(strings.TrimRight(sb.String(), " "))
		b.WriteByte('\n')
	}
	line(t.header)
	for _, r := range t.rows {
		line(r)
	}
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}

func num(n int) string { return printer.Sprintf("%d", n) }

func ms(f float64) string { return printer.Sprintf("%.1f", f) }

// countHistogram groups ascending per-contract detection counts into
// (detections, contracts) pairs.
func countHistogram(sorted []int) [][2]int {
	var out [][2]int
	for _, n := range sorted {
		if l := len(out); l > 0 && out[l-1][0] == n {
			out[l-1][1]++
			continue
		}
		out = append(out, [2]int{n, 1})
	}
	return out
}

type tableEmitter struct{}

func (tableEmitter) Format() string { return "table" }

func (tableEmitter) Emit(w io.Writer, doc Document) error {
	var b strings.Builder
	if a := doc.Analysis; a != nil {
		writeAnalysisTable(&b, a, doc.Labels)
	}
	if c := doc.Comparison; c != nil {
		b.WriteByte('\n')
		writeComparisonTable(&b, c, doc.Labels)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func statsLine(s model.LoadStats) string {
	return printer.Sprintf("files %d, parsed %d, kept %d, dropped %d, skipped %d, duplicates %d, excluded %d",
		s.Files, s.Parsed, s.Kept, s.Dropped, s.Skipped, s.Duplicates, s.Excluded)
}

func writeAnalysisTable(b *strings.Builder, a *model.Analysis, labels Labels) {
	b.WriteString("Dataset: " + a.Dataset + "  run " + a.RunID + "\n")
	b.WriteString(statsLine(a.Stats) + "\n\n")

	t := textTable{header: []string{"TYPE", "LABEL", "OCCURRENCES", "CONTRACTS"}}
	total := 0
	for _, typ := range a.Aggregate.Types() {
		n := a.Aggregate.PerTypeOccurrenceCount[typ]
		total += n
		t.add(string(typ), labels.Label(typ), num(n), num(a.Aggregate.AffectedContractCount(typ)))
	}
	t.add("total", "", num(total), num(a.Aggregate.Contracts))
	t.render(b)

	if hist := countHistogram(a.Aggregate.SortedVulnerabilityCounts()); len(hist) > 0 {
		b.WriteString("\nDetections per contract:\n")
		h := textTable{header: []string{"DETECTIONS", "CONTRACTS"}}
		for _, p := range hist {
			h.add(num(p[0]), num(p[1]))
		}
		h.render(b)
	}

	s := a.TimeSummary
	b.WriteString("\nExecution time (ms): ")
	b.WriteString(printer.Sprintf("n=%d min=%.1f median=%.1f p90=%.1f max=%.1f mean=%.1f stddev=%.1f\n",
		s.Count, s.Min, s.Median, s.P90, s.Max, s.Mean, s.StdDev))
}

func writeComparisonTable(b *strings.Builder, c *model.ComparisonReport, labels Labels) {
	b.WriteString("Baseline: " + statsLine(c.BaselineStats) + "\n\n")

	t := textTable{header: []string{"TYPE", "LABEL", "NATIVE", "BASELINE", "NATIVE CONTRACTS", "BASELINE CONTRACTS"}}
	for _, typ := range c.Comparison.Types {
		v := c.Comparison.VulnerabilitiesByType[typ]
		k := c.Comparison.ContractsByType[typ]
		t.add(string(typ), labels.Label(typ), num(v.Native), num(v.Baseline), num(len(k.Native)), num(len(k.Baseline)))
	}
	t.render(b)

	tp := c.Comparison.Time
	var nativeTotal float64
	var baselineTotal int64
	faster := 0
	for i := range tp.IDs {
		nativeTotal += tp.NativeMs[i]
		baselineTotal += tp.BaselineMs[i]
		if tp.NativeMs[i] < float64(tp.BaselineMs[i]) {
			faster++
		}
	}
	b.WriteString(printer.Sprintf("\nPaired execution time: %d contracts, native %.1f ms, baseline %d ms, native faster on %d\n",
		len(tp.IDs), nativeTotal, baselineTotal, faster))
}
