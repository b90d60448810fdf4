package experiment

import (
	"encoding/json"
	"math"

	"forecastbonus/domain/core"
)

// Task is the configuration of one forecasting task. It is read-only once
// constructed by the survey layer.
type Task struct {
	ForecastMode       string  `json:"forecastMode" yaml:"forecastMode"`
	TrainingRounds     int     `json:"trainingRounds" yaml:"trainingRounds"`
	TestingRounds      int     `json:"testingRounds" yaml:"testingRounds"`
	Sigma              float64 `json:"sigma" yaml:"sigma"`
	BonusDivisor       float64 `json:"bonusDivisor" yaml:"bonusDivisor"`
	PredictLongRunning bool    `json:"predictLongRunning" yaml:"predictLongRunning"`
}

// TotalRounds is the number of training plus testing rounds.
func (t Task) TotalRounds() int {
	return t.TrainingRounds + t.TestingRounds
}

// IsTestingRound reports whether roundN is eligible to contribute score.
func (t Task) IsTestingRound(roundN int) bool {
	return roundN >= t.TrainingRounds && roundN < t.TotalRounds()
}

// ValidateForScoring checks the fields the scoring path depends on.
func (t Task) ValidateForScoring() error {
	if t.TrainingRounds < 0 {
		return core.NewConfigurationError("trainingRounds", "must not be negative")
	}
	if t.TestingRounds < 0 {
		return core.NewConfigurationError("testingRounds", "must not be negative")
	}
	if !(t.Sigma > 0) || math.IsInf(t.Sigma, 0) {
		return core.ErrNonPositiveSigma
	}
	if _, err := t.ForecastModes(); err != nil {
		return err
	}
	return nil
}

// Validate checks every field, including the bonus divisor.
func (t Task) Validate() error {
	if err := t.ValidateForScoring(); err != nil {
		return err
	}
	if !(t.BonusDivisor > 0) || math.IsInf(t.BonusDivisor, 0) {
		return core.ErrNonPositiveDivisor
	}
	return nil
}

// Assignment is one participant's full experiment record. The i-th entry of
// Predictions, Values and LongRunningAveragePredictionHistory belongs to Tasks[i].
type Assignment struct {
	Identifier                          Identifier `json:"_id"`
	Tasks                               []Task     `json:"tasks"`
	Predictions                         []Series   `json:"predictions"`
	Values                              []Series   `json:"values"`
	LongRunningAveragePredictionHistory []Series   `json:"longRunningAveragePredHist,omitempty"`
}

// ID returns the assignment identifier in its string form.
func (a *Assignment) ID() core.AssignmentID {
	return core.AssignmentID(a.Identifier.String())
}

// Task returns the task at index taskN.
func (a *Assignment) Task(taskN int) (Task, error) {
	if taskN < 0 || taskN >= len(a.Tasks) {
		return Task{}, core.ErrTaskIndexOutOfRange
	}
	return a.Tasks[taskN], nil
}

// PredictionsFor returns the flat prediction series of a task; absent series are empty.
func (a *Assignment) PredictionsFor(taskN int) Series {
	return seriesAt(a.Predictions, taskN)
}

// ValuesFor returns the realized value series of a task.
func (a *Assignment) ValuesFor(taskN int) Series {
	return seriesAt(a.Values, taskN)
}

// LongRunHistoryFor returns the long-run average prediction history of a task.
func (a *Assignment) LongRunHistoryFor(taskN int) Series {
	return seriesAt(a.LongRunningAveragePredictionHistory, taskN)
}

// WithTasks returns a shallow copy of the assignment with its task list replaced.
func (a *Assignment) WithTasks(tasks []Task) *Assignment {
	cp := *a
	cp.Tasks = tasks
	return &cp
}

func seriesAt(all []Series, i int) Series {
	if i < 0 || i >= len(all) {
		return nil
	}
	return all[i]
}

// ScoreResult is the outcome of scoring one task.
type ScoreResult struct {
	BonusRound int `json:"bonusRound"`
	TotalScore int `json:"totalScore"`
}

// Series is a flat numeric array recorded by the survey. Missing entries are
// held as NaN and encoded as JSON null.
type Series []float64

// At returns the value at index i, or false when the index is out of range or
// the value is missing.
func (s Series) At(i int) (float64, bool) {
	if i < 0 || i >= len(s) {
		return 0, false
	}
	v := s[i]
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// UnmarshalJSON maps null entries to NaN.
func (s *Series) UnmarshalJSON(data []byte) error {
	var raw []*float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*s = nil
		return nil
	}
	out := make(Series, len(raw))
	for i, v := range raw {
		if v == nil {
			out[i] = math.NaN()
			continue
		}
		out[i] = *v
	}
	*s = out
	return nil
}

// MarshalJSON writes missing entries as null.
func (s Series) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	raw := make([]*float64, len(s))
	for i := range s {
		if math.IsNaN(s[i]) || math.IsInf(s[i], 0) {
			continue
		}
		v := s[i]
		raw[i] = &v
	}
	return json.Marshal(raw)
}
