package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNative(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{name: "valid", doc: `{"time": 10, "results": [{"type": "loop-calculation", "line": 4}]}`},
		{name: "empty results", doc: `{"time": 0, "results": []}`},
		{name: "missing results", doc: `{"time": 10}`, wantErr: "results"},
		{name: "missing type", doc: `{"time": 10, "results": [{"line": 3}]}`, wantErr: "/results/0"},
		{name: "negative time", doc: `{"time": -1, "results": []}`, wantErr: "/time"},
		{name: "not json", doc: `{"time":`, wantErr: "JSON parse error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Native([]byte(tt.doc))
			if tt.wantErr == "" {
				assert.Empty(t, errs)
				return
			}
			require.NotEmpty(t, errs)
			assert.Contains(t, errs[0], tt.wantErr)
		})
	}
}

func TestBaseline(t *testing.T) {
	assert.Empty(t, Baseline([]byte(`{"loop-calculation": 2, "external-function": 0, "time": 1.2345}`)))
	assert.Empty(t, Baseline([]byte(`{"loop-calculation": "3", "time": 0.5}`)))

	errs := Baseline([]byte(`{"loop-calculation": -2, "time": 1}`))
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0], "/loop-calculation")

	errs = Baseline([]byte(`{"loop-calculation": 1}`))
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0], "time")
}

func TestRankTable(t *testing.T) {
	assert.Empty(t, RankTable([]byte(`[{"to": "0xAbC", "rank": 1}]`)))
	assert.Empty(t, RankTable([]byte(`[{"data": {"to": "0xabc", "rank": 2, "calls": 10}}]`)))
	assert.NotEmpty(t, RankTable([]byte(`[{"address": "0xabc"}]`)))
	assert.NotEmpty(t, RankTable([]byte(`{"to": "0xabc", "rank": 1}`)))
}
