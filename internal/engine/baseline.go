package engine

import (
	"sort"

	"github.com/xab-mack/optistats/internal/model"
)

// AggregateBaseline derives per-type counts and affected contracts from
// count-only baseline records: a positive count marks the contract affected.
func AggregateBaseline(corpus model.BaselineCorpus) model.BaselineAggregate {
	res := model.BaselineAggregate{
		Contracts:                len(corpus),
		PerTypeOccurrenceCount:   map[model.VulnType]int{},
		PerTypeAffectedContracts: map[model.VulnType][]string{},
		ExecutionTimesMs:         make([]int64, 0, len(corpus)),
	}
	for _, id := range corpus.IDs() {
		rec := corpus[id]
		for t, n := range rec.Counts {
			if n <= 0 {
				continue
			}
			res.PerTypeOccurrenceCount[t] += n
			res.PerTypeAffectedContracts[t] = append(res.PerTypeAffectedContracts[t], id)
		}
		res.ExecutionTimesMs = append(res.ExecutionTimesMs, rec.ExecutionTimeMs())
	}
	sort.Slice(res.ExecutionTimesMs, func(i, j int) bool { return res.ExecutionTimesMs[i] < res.ExecutionTimesMs[j] })
	return res
}
