package model

import (
	"encoding/json"
	"sort"
	"strings"
)

type VulnType string

const (
	TypeLoopCalculation       VulnType = "loop-calculation"
	TypeStateDataArrangement  VulnType = "state-data-arrangement"
	TypeDeMorganCondition     VulnType = "de-morgan-condition"
	TypeExternalFunction      VulnType = "external-function"
	TypeImmutableRestrict     VulnType = "immutable-restrict-modification"
	TypeConstantRestrict      VulnType = "constant-restrict-modification"
	TypeLoopDuplication       VulnType = "loop-duplication"
	TypeStructDataArrangement VulnType = "struct-data-arrangement"
)

// NoiseType is reported for nearly every contract by the native tool and
// carries no signal, so it is filtered out of native results.
const NoiseType = TypeStateDataArrangement

var knownTypes = []VulnType{
	TypeLoopCalculation,
	TypeStateDataArrangement,
	TypeDeMorganCondition,
	TypeExternalFunction,
	TypeImmutableRestrict,
	TypeConstantRestrict,
	TypeLoopDuplication,
	TypeStructDataArrangement,
}

// KnownTypes returns the fixed enumeration of type codes in display order.
func KnownTypes() []VulnType {
	out := make([]VulnType, len(knownTypes))
	copy(out, knownTypes)
	return out
}

// ParseVulnType canonicalizes a raw type code. The native tool pads some codes
// with trailing spaces; unknown codes pass through trimmed.
func ParseVulnType(s string) VulnType {
	return VulnType(strings.TrimSpace(s))
}

func (t VulnType) Known() bool {
	for _, k := range knownTypes {
		if k == t {
			return true
		}
	}
	return false
}

// SortTypes places known codes in enumeration order and unknown codes after
// them, alphabetically.
func SortTypes(types []VulnType) {
	index := func(t VulnType) int {
		for i, k := range knownTypes {
			if k == t {
				return i
			}
		}
		return len(knownTypes)
	}
	sort.SliceStable(types, func(i, j int) bool {
		a, b := index(types[i]), index(types[j])
		if a != b {
			return a < b
		}
		return types[i] < types[j]
	})
}

// Detection is one flagged issue. Fields other than "type" are kept verbatim.
type Detection struct {
	Type  VulnType
	Extra map[string]json.RawMessage
}

func (d Detection) MarshalJSON() ([]byte, error) {
	m := make(map[string]json.RawMessage, len(d.Extra)+1)
	for k, v := range d.Extra {
		m[k] = v
	}
	t, err := json.Marshal(string(d.Type))
	if err != nil {
		return nil, err
	}
	m["type"] = t
	return json.Marshal(m)
}

func (d *Detection) UnmarshalJSON(b []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	var t string
	if raw, ok := m["type"]; ok {
		if err := json.Unmarshal(raw, &t); err != nil {
			return err
		}
		delete(m, "type")
	}
	d.Type = ParseVulnType(t)
	if len(m) > 0 {
		d.Extra = m
	} else {
		d.Extra = nil
	}
	return nil
}

type ContractAnalysis struct {
	ID              string      `json:"id"`
	ExecutionTimeMs float64     `json:"executionTimeMs"`
	Detections      []Detection `json:"detections"`
}

type BaselineRecord struct {
	ID                   string           `json:"id"`
	Counts               map[VulnType]int `json:"counts"`
	ExecutionTimeSeconds float64          `json:"executionTimeSeconds"`
}

// ExecutionTimeMs converts seconds to milliseconds, truncating toward zero.
func (r BaselineRecord) ExecutionTimeMs() int64 {
	return int64(r.ExecutionTimeSeconds * 1000)
}

type NativeCorpus map[string]ContractAnalysis

func (c NativeCorpus) IDs() []string { return sortedKeys(c) }

func (c NativeCorpus) TotalDetections() int {
	n := 0
	for _, a := range c {
		n += len(a.Detections)
	}
	return n
}

type BaselineCorpus map[string]BaselineRecord

func (c BaselineCorpus) IDs() []string { return sortedKeys(c) }

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// LoadStats is the operator-facing summary of one corpus load. Files counts
// the files that were parsed; Excluded counts regular files that did not
// match the include pattern.
type LoadStats struct {
	Files      int `json:"files"`
	Parsed     int `json:"parsed"`
	Kept       int `json:"kept"`
	Dropped    int `json:"dropped"`
	Skipped    int `json:"skipped"`
	Duplicates int `json:"duplicates"`
	Excluded   int `json:"excluded"`
}
