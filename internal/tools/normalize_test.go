package tools

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xab-mack/optistats/internal/model"
)

func TestNormalizeNative(t *testing.T) {
	raw := []byte(`{"time": 10, "results": [
		{"type": "loop-calculation", "line": 12, "function": "sum"},
		{"type": "state-data-arrangement "}
	]}`)

	rec, err := Normalize(SchemaNative, "0xAbC", raw)
	require.NoError(t, err)
	c := rec.(*model.ContractAnalysis)

	assert.Equal(t, "0xAbC", c.ID)
	assert.Equal(t, 10.0, c.ExecutionTimeMs)
	require.Len(t, c.Detections, 2)
	assert.Equal(t, model.TypeLoopCalculation, c.Detections[0].Type)
	assert.Equal(t, model.TypeStateDataArrangement, c.Detections[1].Type, "padding is trimmed")
	assert.JSONEq(t, `12`, string(c.Detections[0].Extra["line"]))
	assert.JSONEq(t, `"sum"`, string(c.Detections[0].Extra["function"]))
	assert.Nil(t, c.Detections[1].Extra)

	out, err := json.Marshal(c.Detections[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"loop-calculation","line":12,"function":"sum"}`, string(out))
}

func TestNormalizeNativeUnknownTypePassesThrough(t *testing.T) {
	c, err := NormalizeNative("x", []byte(`{"time": 1, "results": [{"type": "brand-new-check"}]}`))
	require.NoError(t, err)
	require.Len(t, c.Detections, 1)
	assert.Equal(t, model.VulnType("brand-new-check"), c.Detections[0].Type)
	assert.False(t, c.Detections[0].Type.Known())
}

func TestNormalizeNativeSchemaViolation(t *testing.T) {
	_, err := NormalizeNative("x", []byte(`{"time": 1, "results": {"type": "loop-calculation"}}`))
	require.Error(t, err)
	var se *SchemaError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, SchemaNative, se.Schema)
	assert.NotEmpty(t, se.Problems)
}

func TestNormalizeBaseline(t *testing.T) {
	raw := []byte(`{"loop-calculation": 3, "external-function": 0, "loop-duplication": "2", "time": 1.2345}`)

	rec, err := Normalize(SchemaBaseline, "0xabc", raw)
	require.NoError(t, err)
	b := rec.(*model.BaselineRecord)

	assert.Equal(t, "0xabc", b.ID)
	assert.Equal(t, map[model.VulnType]int{
		model.TypeLoopCalculation:  3,
		model.TypeExternalFunction: 0,
		model.TypeLoopDuplication:  2,
	}, b.Counts)
	assert.Equal(t, int64(1234), b.ExecutionTimeMs(), "seconds are truncated, not rounded")
}

func TestNormalizeBaselineMergesPaddedKeys(t *testing.T) {
	b, err := NormalizeBaseline("x", []byte(`{"loop-calculation": 1, "loop-calculation ": 2, "time": 0}`))
	require.NoError(t, err)
	assert.Equal(t, 3, b.Counts[model.TypeLoopCalculation])
}

func TestNormalizeBaselineRejectsNegativeCounts(t *testing.T) {
	_, err := NormalizeBaseline("x", []byte(`{"loop-calculation": -1, "time": 0}`))
	var se *SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, SchemaBaseline, se.Schema)
}

func TestDetectSchema(t *testing.T) {
	tests := []struct {
		doc  string
		want Schema
		ok   bool
	}{
		{`{"time": 1, "results": []}`, SchemaNative, true},
		{`{"time": 1, "loop-calculation": 2}`, SchemaBaseline, true},
		{`{"foo": 1}`, "", false},
		{`[1,2]`, "", false},
	}
	for _, tt := range tests {
		got, ok := DetectSchema([]byte(tt.doc))
		assert.Equal(t, tt.ok, ok, tt.doc)
		assert.Equal(t, tt.want, got, tt.doc)
	}
}

func TestParseSchema(t *testing.T) {
	s, err := ParseSchema("baseline")
	require.NoError(t, err)
	assert.Equal(t, SchemaBaseline, s)
	_, err = ParseSchema("sarif")
	assert.Error(t, err)
}
