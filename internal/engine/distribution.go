package engine

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/xab-mack/optistats/internal/model"
)

// Summarize describes an execution time distribution. Quantiles use the
// empirical CDF, so they are always observed values.
func Summarize(times []float64) model.TimeSummary {
	if len(times) == 0 {
		return model.TimeSummary{}
	}
	sorted := make([]float64, len(times))
	copy(sorted, times)
	sort.Float64s(sorted)

	s := model.TimeSummary{
		Count:  len(sorted),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Mean:   stat.Mean(sorted, nil),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P90:    stat.Quantile(0.9, stat.Empirical, sorted, nil),
	}
	if len(sorted) > 1 {
		s.StdDev = stat.StdDev(sorted, nil)
	}
	return s
}
