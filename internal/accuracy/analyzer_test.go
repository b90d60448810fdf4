package accuracy

import (
	"math"
	"testing"

	"forecastbonus/domain/core"
	"forecastbonus/domain/experiment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForTask_SingleHorizon(t *testing.T) {
	task := experiment.Task{ForecastMode: "1", TrainingRounds: 2, TestingRounds: 4, Sigma: 10, BonusDivisor: 20}
	values := make(experiment.Series, 50)
	predictions := make(experiment.Series, 12)
	// testing rounds 2..5 miss by 0, 2, 4, 12
	misses := map[int]float64{2: 0, 3: 2, 4: 4, 5: 12}
	for roundN, miss := range misses {
		predictions[roundN*2] = miss
	}
	// training rounds are ignored even when wildly off
	predictions[0] = 500

	horizons, err := NewAnalyzer().ForTask(task, predictions, values)
	require.NoError(t, err)
	require.Len(t, horizons, 1)

	h := horizons[0]
	assert.Equal(t, 1, h.Horizon)
	assert.Equal(t, 4, h.Rounds)
	assert.Equal(t, 0, h.Skipped)
	assert.InDelta(t, 4.5, h.MeanAbsError, 1e-9)
	assert.InDelta(t, 3.0, h.MedianAbsError, 1e-9)
	assert.InDelta(t, (100+80+60+0)/4.0, h.MeanScore, 1e-9)
	assert.InDelta(t, 0.75, h.WithinSigma, 1e-9)
	assert.LessOrEqual(t, h.CI95Low, h.MeanAbsError)
	assert.GreaterOrEqual(t, h.CI95High, h.MeanAbsError)
	assert.GreaterOrEqual(t, h.CI95Low, 0.0)
}

func TestForTask_TwoHorizonsSkipMissing(t *testing.T) {
	task := experiment.Task{ForecastMode: "1+5", TrainingRounds: 0, TestingRounds: 3, Sigma: 5, BonusDivisor: 20}
	values := make(experiment.Series, 46)
	for i := range values {
		values[i] = float64(i)
	}
	predictions := experiment.Series{
		40, 44, // round 0: exact for both
		41, math.NaN(), // round 1: second horizon missing
		42, 50, // round 2: second horizon needs values[46], out of range
	}

	horizons, err := NewAnalyzer().ForTask(task, predictions, values)
	require.NoError(t, err)
	require.Len(t, horizons, 2)

	assert.Equal(t, 3, horizons[0].Rounds)
	assert.Equal(t, 0.0, horizons[0].MeanAbsError)
	assert.Equal(t, 100.0, horizons[0].MeanScore)

	assert.Equal(t, 5, horizons[1].Horizon)
	assert.Equal(t, 1, horizons[1].Rounds)
	assert.Equal(t, 2, horizons[1].Skipped)
	assert.Equal(t, horizons[1].CI95Low, horizons[1].CI95High)
}

func TestForTask_InvalidConfiguration(t *testing.T) {
	_, err := NewAnalyzer().ForTask(experiment.Task{ForecastMode: "1+2+3", Sigma: 1}, nil, nil)
	assert.ErrorIs(t, err, core.ErrInvalidConfiguration)
}

func TestForAssignment(t *testing.T) {
	task := experiment.Task{ForecastMode: "1", TrainingRounds: 0, TestingRounds: 2, Sigma: 10, BonusDivisor: 20}
	a := &experiment.Assignment{
		Identifier:  experiment.StringIdentifier("abc"),
		Tasks:       []experiment.Task{task, task},
		Predictions: []experiment.Series{{1, 0, 1, 0}},
		Values:      []experiment.Series{make(experiment.Series, 45)},
	}

	out, err := NewAnalyzer().ForAssignment(a)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, 2, out[0].Horizons[0].Rounds)
	assert.Equal(t, 0, out[1].Horizons[0].Rounds, "a task without recorded data has nothing to summarize")
	assert.Equal(t, 2, out[1].Horizons[0].Skipped)
}
