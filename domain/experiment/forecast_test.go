package experiment

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"forecastbonus/domain/core"
)

func TestParseForecastModes(t *testing.T) {
	tests := []struct {
		mode     string
		expected []int
		hasError bool
	}{
		{"1", []int{1}, false},
		{"2", []int{2}, false},
		{"1+2", []int{1, 2}, false},
		{"1+10", []int{1, 10}, false},
		{" 1 + 5 ", []int{1, 5}, false},
		{"1+2+3", nil, true},
		{"", nil, true},
		{"a", nil, true},
		{"0", nil, true},
		{"1.0", nil, true},
		{"2x", nil, true},
	}

	for _, test := range tests {
		modes, err := ParseForecastModes(test.mode)
		if test.hasError {
			if err == nil {
				t.Errorf("Expected error for mode %q", test.mode)
			}
			if !errors.Is(err, core.ErrInvalidConfiguration) {
				t.Errorf("Expected configuration error for mode %q, got %v", test.mode, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("Unexpected error for mode %q: %v", test.mode, err)
		}
		if !reflect.DeepEqual(modes, test.expected) {
			t.Errorf("Mode %q: expected %v, got %v", test.mode, test.expected, modes)
		}
	}
}

func TestParseForecastModes_ThreeHorizons(t *testing.T) {
	_, err := Task{ForecastMode: "1+2+3"}.ForecastModes()
	if !errors.Is(err, core.ErrTooManyHorizons) {
		t.Errorf("expected ErrTooManyHorizons, got %v", err)
	}
}

func TestGetPredictions_TwoSlotsPerRound(t *testing.T) {
	predictions := Series{0, 1, 10, 11, 20, 21, 30, 31}

	single, err := GetPredictions(2, predictions, Task{ForecastMode: "1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(single, []float64{20}) {
		t.Errorf("single horizon: got %v", single)
	}

	double, err := GetPredictions(3, predictions, Task{ForecastMode: "1+5"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(double, []float64{30, 31}) {
		t.Errorf("two horizons: got %v", double)
	}
}

func TestGetActuals_OffsetByHistoryAndHorizon(t *testing.T) {
	values := make(Series, 70)
	for i := range values {
		values[i] = float64(i)
	}

	actuals, err := GetActuals(4, values, Task{ForecastMode: "1+10"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// round 4: horizon 1 -> 40+4+0, horizon 10 -> 40+4+9
	if !reflect.DeepEqual(actuals, []float64{44, 53}) {
		t.Errorf("got %v, want [44 53]", actuals)
	}
}

func TestGetPrediction_ReadsOnlyItsSlot(t *testing.T) {
	var sparse Series
	if err := json.Unmarshal([]byte(`[null, 7]`), &sparse); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	v, err := GetPrediction(0, 1, sparse)
	if err != nil || v != 7 {
		t.Errorf("slot 1: got %v, %v", v, err)
	}
	if _, err := GetPrediction(0, 0, sparse); !errors.Is(err, core.ErrMissingData) {
		t.Errorf("slot 0: expected missing data error, got %v", err)
	}

	values := make(Series, 50)
	values[40+3+2-1] = 9
	if v, err := GetActual(3, 2, values); err != nil || v != 9 {
		t.Errorf("actual: got %v, %v", v, err)
	}
}

func TestGetActuals_MissingData(t *testing.T) {
	values := make(Series, 42)
	_, err := GetActuals(5, values, Task{ForecastMode: "1"})
	if !errors.Is(err, core.ErrMissingData) {
		t.Errorf("expected missing data error, got %v", err)
	}

	var sparse Series
	if err := json.Unmarshal([]byte(`[1, null]`), &sparse); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	_, err = GetPredictions(0, sparse, Task{ForecastMode: "1+2"})
	if !errors.Is(err, core.ErrMissingData) {
		t.Errorf("expected missing data error for null slot, got %v", err)
	}
}

func TestTaskValidate(t *testing.T) {
	valid := Task{ForecastMode: "1+2", TrainingRounds: 0, TestingRounds: 40, Sigma: 20, BonusDivisor: 60}
	if err := valid.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	invalid := []Task{
		{ForecastMode: "1+2+3", Sigma: 1, BonusDivisor: 1},
		{ForecastMode: "1", Sigma: 0, BonusDivisor: 1},
		{ForecastMode: "1", Sigma: 1, BonusDivisor: -2},
		{ForecastMode: "1", Sigma: 1, BonusDivisor: 1, TrainingRounds: -1},
	}
	for i, task := range invalid {
		if err := task.Validate(); !core.IsConfigurationError(err) {
			t.Errorf("case %d: expected configuration error, got %v", i, err)
		}
	}
}
