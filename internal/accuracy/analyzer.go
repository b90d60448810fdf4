// Package accuracy summarizes how close a participant's forecasts were across
// all testing rounds. The figures are diagnostic; bonuses only ever look at the
// selected round.
package accuracy

import (
	"math"

	"forecastbonus/domain/experiment"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// HorizonAccuracy describes the forecast errors for one horizon of a task
type HorizonAccuracy struct {
	Horizon        int     `json:"horizon"`
	Rounds         int     `json:"rounds"`
	Skipped        int     `json:"skipped"`
	MeanAbsError   float64 `json:"meanAbsError"`
	MedianAbsError float64 `json:"medianAbsError"`
	StdDevAbsError float64 `json:"stdDevAbsError"`
	CI95Low        float64 `json:"ci95Low"`
	CI95High       float64 `json:"ci95High"`
	MeanScore      float64 `json:"meanScore"`
	WithinSigma    float64 `json:"withinSigma"`
}

// TaskAccuracy groups the horizons of one task
type TaskAccuracy struct {
	TaskIndex int               `json:"taskIndex"`
	Horizons  []HorizonAccuracy `json:"horizons"`
}

// Analyzer computes accuracy summaries
type Analyzer struct{}

// NewAnalyzer creates a new accuracy analyzer
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// ForAssignment summarizes every task of an assignment
func (an *Analyzer) ForAssignment(a *experiment.Assignment) ([]TaskAccuracy, error) {
	out := make([]TaskAccuracy, 0, len(a.Tasks))
	for taskN, task := range a.Tasks {
		horizons, err := an.ForTask(task, a.PredictionsFor(taskN), a.ValuesFor(taskN))
		if err != nil {
			return nil, err
		}
		out = append(out, TaskAccuracy{TaskIndex: taskN, Horizons: horizons})
	}
	return out, nil
}

// ForTask collects the absolute error of every testing round per horizon.
// Rounds with missing predictions or values are counted as skipped.
func (an *Analyzer) ForTask(task experiment.Task, predictions, values experiment.Series) ([]HorizonAccuracy, error) {
	if err := task.ValidateForScoring(); err != nil {
		return nil, err
	}
	modes, err := task.ForecastModes()
	if err != nil {
		return nil, err
	}

	result := make([]HorizonAccuracy, len(modes))
	for i, horizon := range modes {
		var errs, scores stats.Float64Data
		within := 0
		skipped := 0
		for roundN := task.TrainingRounds; roundN < task.TotalRounds(); roundN++ {
			predicted, ok := predictions.At(experiment.PredictionIndex(roundN, i))
			if !ok {
				skipped++
				continue
			}
			actual, ok := values.At(experiment.ActualIndex(roundN, horizon))
			if !ok {
				skipped++
				continue
			}
			score, err := experiment.ScoreForPrediction(task, predicted, actual)
			if err != nil {
				return nil, err
			}
			delta := math.Abs(predicted - actual)
			errs = append(errs, delta)
			scores = append(scores, float64(score))
			if delta < task.Sigma {
				within++
			}
		}

		h, err := summarize(horizon, errs, scores, within)
		if err != nil {
			return nil, err
		}
		h.Skipped = skipped
		result[i] = h
	}
	return result, nil
}

func summarize(horizon int, errs, scores stats.Float64Data, within int) (HorizonAccuracy, error) {
	h := HorizonAccuracy{Horizon: horizon, Rounds: len(errs)}
	if len(errs) == 0 {
		return h, nil
	}

	mean, err := stats.Mean(errs)
	if err != nil {
		return h, err
	}
	median, err := stats.Median(errs)
	if err != nil {
		return h, err
	}
	stdDev, err := stats.StandardDeviation(errs)
	if err != nil {
		return h, err
	}
	meanScore, err := stats.Mean(scores)
	if err != nil {
		return h, err
	}

	low, high := mean, mean
	if len(errs) > 1 {
		sampleSD, err := stats.StandardDeviationSample(errs)
		if err != nil {
			return h, err
		}
		t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(len(errs) - 1)}
		margin := t.Quantile(0.975) * sampleSD / math.Sqrt(float64(len(errs)))
		low, high = math.Max(0, mean-margin), mean+margin
	}

	h.MeanAbsError = mean
	h.MedianAbsError = median
	h.StdDevAbsError = stdDev
	h.CI95Low = low
	h.CI95High = high
	h.MeanScore = meanScore
	h.WithinSigma = float64(within) / float64(len(errs))
	return h, nil
}
