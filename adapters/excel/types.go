package excel

// Sheet layout: one row per (assignment, task) pair
const (
	ColAssignmentID       = "assignment_id"
	ColTaskIndex          = "task_index"
	ColForecastMode       = "forecast_mode"
	ColTrainingRounds     = "training_rounds"
	ColTestingRounds      = "testing_rounds"
	ColSigma              = "sigma"
	ColBonusDivisor       = "bonus_divisor"
	ColPredictLongRunning = "predict_long_running"
	ColPredictions        = "predictions"
	ColValues             = "values"
	ColLongRunning        = "long_running"

	// ListSeparator separates series entries inside a cell; an empty entry is missing
	ListSeparator = ";"

	// DefaultSheet is the sheet read from and written to workbooks
	DefaultSheet = "Sheet1"
)

// Columns lists the header row in write order
var Columns = []string{
	ColAssignmentID,
	ColTaskIndex,
	ColForecastMode,
	ColTrainingRounds,
	ColTestingRounds,
	ColSigma,
	ColBonusDivisor,
	ColPredictLongRunning,
	ColPredictions,
	ColValues,
	ColLongRunning,
}

// RawRowData represents a row of raw sheet data as header/cell pairs
type RawRowData map[string]string

// ExcelData represents the complete sheet
type ExcelData struct {
	Headers []string     // Column headers
	Rows    []RawRowData // Data rows
}
