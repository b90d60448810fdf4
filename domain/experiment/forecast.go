package experiment

import (
	"strconv"
	"strings"

	"forecastbonus/domain/core"
)

const (
	// HistoryLength is the number of realizations shown before the first round;
	// forecastable values start right after them.
	HistoryLength = 40

	// SlotsPerRound is the number of prediction slots stored per round,
	// whether or not the task uses both.
	SlotsPerRound = 2

	// MaxHorizons is the largest number of simultaneous forecasts per round.
	MaxHorizons = 2
)

// ParseForecastModes decodes a forecast mode such as "1+2" into its horizons.
func ParseForecastModes(mode string) ([]int, error) {
	parts := strings.Split(mode, "+")
	if len(parts) > MaxHorizons {
		return nil, core.ErrTooManyHorizons
	}
	horizons := make([]int, 0, len(parts))
	for _, p := range parts {
		h, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, core.NewConfigurationError("forecastMode", "horizon "+strconv.Quote(p)+" is not an integer")
		}
		if h < 1 {
			return nil, core.NewConfigurationError("forecastMode", "horizon must be at least 1")
		}
		horizons = append(horizons, h)
	}
	return horizons, nil
}

// ForecastModes returns the task's horizons in order.
func (t Task) ForecastModes() ([]int, error) {
	return ParseForecastModes(t.ForecastMode)
}

// PredictionIndex locates the i-th horizon's prediction for a round.
func PredictionIndex(roundN, i int) int {
	return roundN*SlotsPerRound + i
}

// ActualIndex locates the realization horizon periods ahead of the last value
// shown in round roundN.
func ActualIndex(roundN, horizon int) int {
	return HistoryLength + roundN + horizon - 1
}

// GetPrediction reads the prediction in slot i of the round.
func GetPrediction(roundN, i int, predictions Series) (float64, error) {
	idx := PredictionIndex(roundN, i)
	v, ok := predictions.At(idx)
	if !ok {
		return 0, core.NewMissingDataError("predictions", idx)
	}
	return v, nil
}

// GetActual reads the realization horizon periods ahead of the round.
func GetActual(roundN, horizon int, actuals Series) (float64, error) {
	idx := ActualIndex(roundN, horizon)
	v, ok := actuals.At(idx)
	if !ok {
		return 0, core.NewMissingDataError("values", idx)
	}
	return v, nil
}

// GetPredictions reads one prediction per horizon for the round.
func GetPredictions(roundN int, predictions Series, task Task) ([]float64, error) {
	modes, err := task.ForecastModes()
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(modes))
	for i := range modes {
		if out[i], err = GetPrediction(roundN, i, predictions); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// GetActuals reads the realized value matching each horizon for the round.
func GetActuals(roundN int, actuals Series, task Task) ([]float64, error) {
	modes, err := task.ForecastModes()
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(modes))
	for i, fm := range modes {
		if out[i], err = GetActual(roundN, fm, actuals); err != nil {
			return nil, err
		}
	}
	return out, nil
}
