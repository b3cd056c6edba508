package engine

import (
	"sort"

	"github.com/xab-mack/optistats/internal/model"
)

// comparedTypes is the known enumeration without the noise type, plus any
// other code observed on either side.
func comparedTypes(native model.AggregateResult, baseline model.BaselineAggregate, noise model.VulnType) []model.VulnType {
	set := map[model.VulnType]struct{}{}
	for _, t := range model.KnownTypes() {
		if t != noise {
			set[t] = struct{}{}
		}
	}
	for t := range native.PerTypeOccurrenceCount {
		set[t] = struct{}{}
	}
	for t := range baseline.PerTypeOccurrenceCount {
		set[t] = struct{}{}
	}
	out := make([]model.VulnType, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	model.SortTypes(out)
	return out
}

// Compare reconciles the native and baseline datasets. Every compared type is
// present in both series; a side that never reported it counts zero.
func Compare(native model.AggregateResult, nativeCorpus model.NativeCorpus, baseline model.BaselineAggregate, baselineCorpus model.BaselineCorpus, noise model.VulnType) model.Comparison {
	types := comparedTypes(native, baseline, noise)
	cmp := model.Comparison{
		Types:                 types,
		ContractsByType:       make(map[model.VulnType]model.ContractPair, len(types)),
		VulnerabilitiesByType: make(map[model.VulnType]model.CountPair, len(types)),
	}
	for _, t := range types {
		b := append([]string{}, baseline.PerTypeAffectedContracts[t]...)
		cmp.ContractsByType[t] = model.ContractPair{
			Native:   model.RankedIDs(native.PerTypeAffectedContracts[t]),
			Baseline: b,
		}
		cmp.VulnerabilitiesByType[t] = model.CountPair{
			Native:   native.PerTypeOccurrenceCount[t],
			Baseline: baseline.PerTypeOccurrenceCount[t],
		}
	}
	cmp.Time = pairTimes(nativeCorpus, baselineCorpus)
	return cmp
}

// pairTimes keeps contracts present in both corpora and orders both series by
// the baseline execution time.
func pairTimes(nativeCorpus model.NativeCorpus, baselineCorpus model.BaselineCorpus) model.TimePairs {
	type pair struct {
		id       string
		native   float64
		baseline int64
	}
	var pairs []pair
	for id, b := range baselineCorpus {
		n, ok := nativeCorpus[id]
		if !ok {
			continue
		}
		pairs = append(pairs, pair{id: id, native: n.ExecutionTimeMs, baseline: b.ExecutionTimeMs()})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].baseline != pairs[j].baseline {
			return pairs[i].baseline < pairs[j].baseline
		}
		return pairs[i].id < pairs[j].id
	})
	tp := model.TimePairs{
		IDs:        make([]string, len(pairs)),
		NativeMs:   make([]float64, len(pairs)),
		BaselineMs: make([]int64, len(pairs)),
	}
	for i, p := range pairs {
		tp.IDs[i] = p.id
		tp.NativeMs[i] = p.native
		tp.BaselineMs[i] = p.baseline
	}
	return tp
}
