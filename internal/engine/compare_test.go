package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xab-mack/optistats/internal/model"
)

func TestCompareZeroFillsMissingBaselineType(t *testing.T) {
	dets := det(model.TypeLoopCalculation, model.TypeLoopCalculation, model.TypeLoopCalculation)
	native := model.NativeCorpus{
		"A": {ID: "A", ExecutionTimeMs: 1, Detections: dets},
		"B": {ID: "B", ExecutionTimeMs: 2, Detections: det(model.TypeLoopCalculation, model.TypeLoopCalculation)},
	}
	baseline := model.BaselineCorpus{
		"A": {ID: "A", Counts: map[model.VulnType]int{model.TypeExternalFunction: 4}},
	}

	cmp := Compare(Aggregate(native, nil), native, AggregateBaseline(baseline), baseline, model.NoiseType)

	assert.Equal(t, model.CountPair{Native: 5, Baseline: 0}, cmp.VulnerabilitiesByType[model.TypeLoopCalculation])
	assert.Equal(t, model.CountPair{Native: 0, Baseline: 4}, cmp.VulnerabilitiesByType[model.TypeExternalFunction])
	assert.Equal(t, []string{}, cmp.ContractsByType[model.TypeLoopCalculation].Baseline)
	assert.Equal(t, []string{}, cmp.ContractsByType[model.TypeExternalFunction].Native)
}

func TestCompareTypeList(t *testing.T) {
	native := model.NativeCorpus{
		"A": {ID: "A", Detections: det("custom-native-check")},
	}
	baseline := model.BaselineCorpus{
		"A": {ID: "A", Counts: map[model.VulnType]int{"another-check": 1, model.TypeStateDataArrangement: 2}},
	}

	cmp := Compare(Aggregate(native, nil), native, AggregateBaseline(baseline), baseline, model.NoiseType)

	want := []model.VulnType{
		model.TypeLoopCalculation,
		model.TypeStateDataArrangement,
		model.TypeDeMorganCondition,
		model.TypeExternalFunction,
		model.TypeImmutableRestrict,
		model.TypeConstantRestrict,
		model.TypeLoopDuplication,
		model.TypeStructDataArrangement,
		"another-check",
		"custom-native-check",
	}
	assert.Equal(t, want, cmp.Types)
	for _, typ := range cmp.Types {
		require.Contains(t, cmp.VulnerabilitiesByType, typ)
		require.Contains(t, cmp.ContractsByType, typ)
	}
	assert.Equal(t, model.CountPair{Native: 1, Baseline: 0}, cmp.VulnerabilitiesByType["custom-native-check"])
	assert.Equal(t, model.CountPair{Native: 0, Baseline: 1}, cmp.VulnerabilitiesByType["another-check"])
}

func TestCompareOmitsUnreportedNoiseType(t *testing.T) {
	native := model.NativeCorpus{"A": {ID: "A", Detections: det(model.TypeLoopDuplication)}}
	baseline := model.BaselineCorpus{"A": {ID: "A", Counts: map[model.VulnType]int{}}}

	cmp := Compare(Aggregate(native, nil), native, AggregateBaseline(baseline), baseline, model.NoiseType)

	assert.NotContains(t, cmp.Types, model.NoiseType)
	assert.Len(t, cmp.Types, len(model.KnownTypes())-1)
}

func TestPairTimesOnlySharedContracts(t *testing.T) {
	native := model.NativeCorpus{
		"A": {ID: "A", ExecutionTimeMs: 100},
		"B": {ID: "B", ExecutionTimeMs: 50},
		"C": {ID: "C", ExecutionTimeMs: 75},
		"N": {ID: "N", ExecutionTimeMs: 1},
	}
	baseline := model.BaselineCorpus{
		"A": {ID: "A", ExecutionTimeSeconds: 3},
		"B": {ID: "B", ExecutionTimeSeconds: 1},
		"C": {ID: "C", ExecutionTimeSeconds: 1},
		"Z": {ID: "Z", ExecutionTimeSeconds: 0},
	}

	tp := pairTimes(native, baseline)

	assert.Equal(t, []string{"B", "C", "A"}, tp.IDs)
	assert.Equal(t, []int64{1000, 1000, 3000}, tp.BaselineMs)
	assert.Equal(t, []float64{50, 75, 100}, tp.NativeMs)
}

func TestPairTimesEmpty(t *testing.T) {
	tp := pairTimes(model.NativeCorpus{"A": {ID: "A"}}, model.BaselineCorpus{"B": {ID: "B"}})
	assert.Empty(t, tp.IDs)
	assert.NotNil(t, tp.NativeMs)
}
