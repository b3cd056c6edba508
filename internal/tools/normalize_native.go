package tools

import (
	"encoding/json"

	"github.com/xab-mack/optistats/internal/model"
	"github.com/xab-mack/optistats/internal/validation"
)

// native result JSON: {"time": <ms>, "results": [{"type": ..., ...}]}
type nativeOut struct {
	Time    float64           `json:"time"`
	Results []model.Detection `json:"results"`
}

// NormalizeNative parses a native-tool record. Noise filtering is left to the
// caller so the parsed record stays a faithful copy of the input.
func NormalizeNative(id string, raw []byte) (*model.ContractAnalysis, error) {
	if problems := validation.Native(raw); len(problems) > 0 {
		return nil, &SchemaError{Schema: SchemaNative, Problems: problems}
	}
	var o nativeOut
	if err := json.Unmarshal(raw, &o); err != nil {
		return nil, &SchemaError{Schema: SchemaNative, Problems: []string{err.Error()}}
	}
	dets := o.Results
	if dets == nil {
		dets = []model.Detection{}
	}
	return &model.ContractAnalysis{ID: id, ExecutionTimeMs: o.Time, Detections: dets}, nil
}
