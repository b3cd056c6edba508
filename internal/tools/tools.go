package tools

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Schema names the result format a corpus was produced in.
type Schema string

const (
	SchemaNative   Schema = "native"
	SchemaBaseline Schema = "baseline"
)

func ParseSchema(s string) (Schema, error) {
	switch Schema(s) {
	case SchemaNative, SchemaBaseline:
		return Schema(s), nil
	default:
		return "", fmt.Errorf("unknown schema %q: must be native or baseline", s)
	}
}

// SchemaError reports a document that does not match the expected schema.
type SchemaError struct {
	Schema   Schema
	Problems []string
}

func (e *SchemaError) Error() string {
	if len(e.Problems) == 0 {
		return fmt.Sprintf("%s schema violation", e.Schema)
	}
	return fmt.Sprintf("%s schema violation: %s", e.Schema, e.Problems[0])
}

// Record is the normalized form of one result file: a *model.ContractAnalysis
// for the native schema or a *model.BaselineRecord for the baseline schema.
type Record any

// Normalize converts the raw bytes of one result file into its canonical form.
func Normalize(schema Schema, id string, raw []byte) (Record, error) {
	switch schema {
	case SchemaNative:
		return NormalizeNative(id, raw)
	case SchemaBaseline:
		return NormalizeBaseline(id, raw)
	default:
		return nil, fmt.Errorf("unknown schema %q", schema)
	}
}

// DetectSchema guesses the schema of a document: a "results" list means
// native, anything else with a "time" field is treated as baseline.
func DetectSchema(raw []byte) (Schema, bool) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return "", false
	}
	if r, ok := probe["results"]; ok && bytes.HasPrefix(bytes.TrimSpace(r), []byte("[")) {
		return SchemaNative, true
	}
	if _, ok := probe["time"]; ok {
		return SchemaBaseline, true
	}
	return "", false
}
