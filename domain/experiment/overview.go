package experiment

import "forecastbonus/domain/core"

// PredictionCount is the number of predictions asked for per round in the
// first task: one per horizon plus the long-run average slot.
func PredictionCount(tasks []Task) (int, error) {
	if len(tasks) == 0 {
		return 0, core.ErrTaskIndexOutOfRange
	}
	modes, err := tasks[0].ForecastModes()
	if err != nil {
		return 0, err
	}
	n := len(modes)
	if tasks[0].PredictLongRunning {
		n++
	}
	return n, nil
}

// TotalRounds sums training and testing rounds over all tasks.
func TotalRounds(tasks []Task) int {
	total := 0
	for _, t := range tasks {
		total += t.TotalRounds()
	}
	return total
}

// EstimatedMinutes is the advertised completion time for a study.
func EstimatedMinutes(tasks []Task) (int, error) {
	n, err := PredictionCount(tasks)
	if err != nil {
		return 0, err
	}
	if n == 1 {
		return 15, nil
	}
	return 20, nil
}

// MaximumEarnings is the best bonus a participant can reach: a perfect
// prediction at every task's bonus round, plus a perfect long-run estimate
// where one is asked for.
func MaximumEarnings(tasks []Task) (float64, error) {
	total := 0.0
	for _, t := range tasks {
		best := MaxScore
		if t.PredictLongRunning {
			best += MaxScore
		}
		bonus, err := CalculateBonus(best, t)
		if err != nil {
			return 0, err
		}
		total += bonus
	}
	return total, nil
}

// Overview gathers the study-level figures shown to participants.
type Overview struct {
	PredictionCount  int     `json:"predictionCount"`
	TotalRounds      int     `json:"totalRounds"`
	EstimatedMinutes int     `json:"estimatedMinutes"`
	MaximumEarnings  float64 `json:"maximumEarnings"`
	BonusDivisor     float64 `json:"bonusDivisor"`
	Sigma            float64 `json:"sigma"`
}

// NewOverview computes the study overview for a task list.
func NewOverview(tasks []Task) (*Overview, error) {
	count, err := PredictionCount(tasks)
	if err != nil {
		return nil, err
	}
	minutes, err := EstimatedMinutes(tasks)
	if err != nil {
		return nil, err
	}
	maxEarnings, err := MaximumEarnings(tasks)
	if err != nil {
		return nil, err
	}
	// the instructions quote the last task's sigma and the first task's divisor
	return &Overview{
		PredictionCount:  count,
		TotalRounds:      TotalRounds(tasks),
		EstimatedMinutes: minutes,
		MaximumEarnings:  maxEarnings,
		BonusDivisor:     tasks[0].BonusDivisor,
		Sigma:            tasks[len(tasks)-1].Sigma,
	}, nil
}
