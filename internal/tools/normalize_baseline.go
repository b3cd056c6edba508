package tools

import (
	"encoding/json"

	"github.com/go-viper/mapstructure/v2"
	"github.com/xab-mack/optistats/internal/model"
	"github.com/xab-mack/optistats/internal/validation"
)

// baseline result JSON: {"<type code>": <count>, ..., "time": <seconds>}
type baselineOut struct {
	Time   float64        `mapstructure:"time"`
	Counts map[string]any `mapstructure:",remain"`
}

// NormalizeBaseline parses a baseline-tool record. Counts may arrive as
// numbers or numeric strings; fractional counts are truncated.
func NormalizeBaseline(id string, raw []byte) (*model.BaselineRecord, error) {
	if problems := validation.Baseline(raw); len(problems) > 0 {
		return nil, &SchemaError{Schema: SchemaBaseline, Problems: problems}
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &SchemaError{Schema: SchemaBaseline, Problems: []string{err.Error()}}
	}

	var o baselineOut
	if err := decodeWeak(doc, &o); err != nil {
		return nil, &SchemaError{Schema: SchemaBaseline, Problems: []string{err.Error()}}
	}
	var counts map[string]int
	if err := decodeWeak(o.Counts, &counts); err != nil {
		return nil, &SchemaError{Schema: SchemaBaseline, Problems: []string{err.Error()}}
	}

	rec := &model.BaselineRecord{
		ID:                   id,
		Counts:               make(map[model.VulnType]int, len(counts)),
		ExecutionTimeSeconds: o.Time,
	}
	for k, v := range counts {
		rec.Counts[model.ParseVulnType(k)] += v
	}
	return rec, nil
}

func decodeWeak(input, out any) error {
	d, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return d.Decode(input)
}
