package model

import "sort"

type AggregateResult struct {
	Contracts                     int                           `json:"contracts"`
	PerTypeOccurrenceCount        map[VulnType]int              `json:"perTypeOccurrenceCount"`
	PerTypeAffectedContracts      map[VulnType][]RankedContract `json:"perTypeAffectedContracts"`
	PerContractVulnerabilityCount map[string]int                `json:"perContractVulnerabilityCount"`
	// ExecutionTimes is sorted ascending.
	ExecutionTimes []float64 `json:"executionTimes"`
}

func (a *AggregateResult) AffectedContractCount(t VulnType) int {
	return len(a.PerTypeAffectedContracts[t])
}

// Types returns every type with at least one occurrence, in display order.
func (a *AggregateResult) Types() []VulnType {
	out := make([]VulnType, 0, len(a.PerTypeOccurrenceCount))
	for t := range a.PerTypeOccurrenceCount {
		out = append(out, t)
	}
	SortTypes(out)
	return out
}

// SortedVulnerabilityCounts returns per-contract detection counts ascending,
// the series behind the "vulnerabilities per contract" curve.
func (a *AggregateResult) SortedVulnerabilityCounts() []int {
	out := make([]int, 0, len(a.PerContractVulnerabilityCount))
	for _, n := range a.PerContractVulnerabilityCount {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

type BaselineAggregate struct {
	Contracts                int                   `json:"contracts"`
	PerTypeOccurrenceCount   map[VulnType]int      `json:"perTypeOccurrenceCount"`
	PerTypeAffectedContracts map[VulnType][]string `json:"perTypeAffectedContracts"`
	ExecutionTimesMs         []int64               `json:"executionTimesMs"`
}

type TimeSummary struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stdDev"`
	Median float64 `json:"median"`
	P90    float64 `json:"p90"`
}

// Analysis is the result of aggregating one native corpus.
type Analysis struct {
	RunID       string          `json:"runId"`
	Dataset     string          `json:"dataset"`
	Stats       LoadStats       `json:"stats"`
	Aggregate   AggregateResult `json:"aggregate"`
	TimeSummary TimeSummary     `json:"timeSummary"`
	Corpus      NativeCorpus    `json:"-"`
}

// TopRanked returns up to n affected contracts of type t that carry a real
// rank, best rank first.
func (a *AggregateResult) TopRanked(t VulnType, n int) []RankedContract {
	var out []RankedContract
	for _, c := range a.PerTypeAffectedContracts[t] {
		if c.Rank == SentinelRank {
			continue
		}
		if len(out) == n {
			break
		}
		out = append(out, c)
	}
	return out
}
