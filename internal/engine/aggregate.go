package engine

import (
	"sort"

	"github.com/xab-mack/optistats/internal/model"
	"github.com/xab-mack/optistats/internal/rank"
)

// Aggregate computes occurrence counts, affected contracts (rank ordered),
// per-contract counts and the execution time distribution of a corpus.
// A type seen several times in one contract counts once as affected but every
// time as an occurrence.
func Aggregate(corpus model.NativeCorpus, ranks *rank.Table) model.AggregateResult {
	res := model.AggregateResult{
		Contracts:                     len(corpus),
		PerTypeOccurrenceCount:        map[model.VulnType]int{},
		PerTypeAffectedContracts:      map[model.VulnType][]model.RankedContract{},
		PerContractVulnerabilityCount: make(map[string]int, len(corpus)),
		ExecutionTimes:                make([]float64, 0, len(corpus)),
	}
	for _, id := range corpus.IDs() {
		c := corpus[id]
		seen := map[model.VulnType]struct{}{}
		for _, d := range c.Detections {
			res.PerTypeOccurrenceCount[d.Type]++
			seen[d.Type] = struct{}{}
		}
		r := ranks.Lookup(id)
		for t := range seen {
			res.PerTypeAffectedContracts[t] = append(res.PerTypeAffectedContracts[t], model.RankedContract{ID: id, Rank: r})
		}
		res.PerContractVulnerabilityCount[id] = len(c.Detections)
		res.ExecutionTimes = append(res.ExecutionTimes, c.ExecutionTimeMs)
	}
	for t := range res.PerTypeAffectedContracts {
		model.SortByRank(res.PerTypeAffectedContracts[t])
	}
	sort.Float64s(res.ExecutionTimes)
	return res
}
