package experiment

import (
	"math"

	"forecastbonus/domain/core"
)

// MaxScore is awarded for an exact prediction.
const MaxScore = 100

// LongRunTarget is the value a long-run average prediction is scored against.
const LongRunTarget = 0.0

// ScoreForPrediction converts the distance between a prediction and the
// realized value into points: 100 * max(0, 1 - |delta| / sigma), rounded.
func ScoreForPrediction(task Task, predicted, actual float64) (int, error) {
	if !(task.Sigma > 0) || math.IsInf(task.Sigma, 0) {
		return 0, core.ErrNonPositiveSigma
	}
	if math.IsNaN(predicted) || math.IsInf(predicted, 0) {
		return 0, core.NewMissingDataError("predicted", 0)
	}
	if math.IsNaN(actual) || math.IsInf(actual, 0) {
		return 0, core.NewMissingDataError("actual", 0)
	}
	delta := math.Abs(predicted - actual)
	score := math.Max(0, 1-delta/task.Sigma) * MaxScore
	return int(RoundHalfUp(score)), nil
}

// GetScore scores every horizon of a round. Diagnostic only; bonus
// computation goes through the selected round.
func GetScore(roundN int, predictions, actuals Series, task Task) ([]int, error) {
	actual, err := GetActuals(roundN, actuals, task)
	if err != nil {
		return nil, err
	}
	predicted, err := GetPredictions(roundN, predictions, task)
	if err != nil {
		return nil, err
	}
	scores := make([]int, len(predicted))
	for i, p := range predicted {
		s, err := ScoreForPrediction(task, p, actual[i])
		if err != nil {
			return nil, err
		}
		scores[i] = s
	}
	return scores, nil
}

// CalculateBonus converts score points into currency, rounded to two decimals.
func CalculateBonus(score int, task Task) (float64, error) {
	if !(task.BonusDivisor > 0) || math.IsInf(task.BonusDivisor, 0) {
		return 0, core.ErrNonPositiveDivisor
	}
	return RoundHalfUp(float64(score)/task.BonusDivisor*100) / 100, nil
}

// RoundHalfUp rounds to the nearest integer with halves going toward
// positive infinity, matching the rounding used when bonuses were first paid.
func RoundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}
