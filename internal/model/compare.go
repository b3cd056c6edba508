package model

type ContractPair struct {
	Native   []string `json:"native"`
	Baseline []string `json:"baseline"`
}

type CountPair struct {
	Native   int `json:"native"`
	Baseline int `json:"baseline"`
}

// TimePairs holds execution times of contracts present in both datasets,
// ordered by the baseline time ascending.
type TimePairs struct {
	IDs        []string  `json:"ids"`
	NativeMs   []float64 `json:"nativeMs"`
	BaselineMs []int64   `json:"baselineMs"`
}

type Comparison struct {
	Types                 []VulnType                `json:"types"`
	ContractsByType       map[VulnType]ContractPair `json:"contractsByType"`
	VulnerabilitiesByType map[VulnType]CountPair    `json:"vulnerabilitiesByType"`
	Time                  TimePairs                 `json:"time"`
}

type ComparisonReport struct {
	RunID         string            `json:"runId"`
	Native        *Analysis         `json:"native"`
	BaselineStats LoadStats         `json:"baselineStats"`
	Baseline      BaselineAggregate `json:"baseline"`
	Comparison    Comparison        `json:"comparison"`
}
