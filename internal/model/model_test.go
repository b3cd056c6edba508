package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVulnType(t *testing.T) {
	assert.Equal(t, TypeStateDataArrangement, ParseVulnType("state-data-arrangement "))
	assert.Equal(t, TypeExternalFunction, ParseVulnType("  external-function\t"))
	assert.Equal(t, VulnType("brand-new"), ParseVulnType("brand-new "))
	assert.True(t, ParseVulnType("loop-duplication").Known())
	assert.False(t, VulnType("brand-new").Known())
}

func TestKnownTypesIsACopy(t *testing.T) {
	k := KnownTypes()
	k[0] = "mutated"
	assert.Equal(t, TypeLoopCalculation, KnownTypes()[0])
}

func TestSortTypes(t *testing.T) {
	types := []VulnType{"zeta", TypeLoopDuplication, "alpha", TypeLoopCalculation}
	SortTypes(types)
	assert.Equal(t, []VulnType{TypeLoopCalculation, TypeLoopDuplication, "alpha", "zeta"}, types)
}

func TestSortByRank(t *testing.T) {
	cs := []RankedContract{{"d", 3}, {"b", SentinelRank}, {"c", 1}, {"a", SentinelRank}, {"e", 1}}
	SortByRank(cs)
	assert.Equal(t, []string{"a", "b", "c", "e", "d"}, RankedIDs(cs))
	assert.NotNil(t, RankedIDs(nil))
}

func TestDetectionJSON(t *testing.T) {
	var d Detection
	require.NoError(t, json.Unmarshal([]byte(`{"type":"loop-calculation ","line":12,"function":"f"}`), &d))
	assert.Equal(t, TypeLoopCalculation, d.Type)
	assert.JSONEq(t, `12`, string(d.Extra["line"]))

	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"loop-calculation","line":12,"function":"f"}`, string(out))

	var bare Detection
	require.NoError(t, json.Unmarshal([]byte(`{"type":"x"}`), &bare))
	assert.Nil(t, bare.Extra)
}

func TestBaselineExecutionTimeTruncates(t *testing.T) {
	assert.Equal(t, int64(1234), BaselineRecord{ExecutionTimeSeconds: 1.2345}.ExecutionTimeMs())
	assert.Equal(t, int64(0), BaselineRecord{ExecutionTimeSeconds: 0.0009}.ExecutionTimeMs())
	assert.Equal(t, int64(5000), BaselineRecord{ExecutionTimeSeconds: 5}.ExecutionTimeMs())
}

func TestCorpusHelpers(t *testing.T) {
	c := NativeCorpus{
		"b": {ID: "b", Detections: make([]Detection, 2)},
		"a": {ID: "a", Detections: make([]Detection, 3)},
	}
	assert.Equal(t, []string{"a", "b"}, c.IDs())
	assert.Equal(t, 5, c.TotalDetections())
	assert.Equal(t, []string{}, BaselineCorpus{}.IDs())
}
