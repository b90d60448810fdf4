package excel

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"forecastbonus/domain/experiment"
	"forecastbonus/internal"
	"forecastbonus/ports"

	"github.com/xuri/excelize/v2"
)

// DataReader reads assignment exports from Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	logger   *internal.Logger
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{
		filePath: filePath,
		fileType: fileType,
		logger:   internal.DefaultLogger.With("excel"),
	}
}

// ReadAssignments reads the file and groups its rows into assignments, in
// order of first appearance.
func (r *DataReader) ReadAssignments() ([]*experiment.Assignment, error) {
	data, err := r.ReadData()
	if err != nil {
		return nil, err
	}
	return DecodeAssignments(data)
}

// ReadData reads data from Excel or CSV files into structured format
func (r *DataReader) ReadData() (*ExcelData, error) {
	r.logger.Debug("reading %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	switch r.fileType {
	case "csv":
		return r.readCSVData()
	case "xlsx":
		return r.readExcelData()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
}

// readExcelData reads the default sheet into structured format
func (r *DataReader) readExcelData() (*ExcelData, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(DefaultSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", DefaultSheet, err)
	}
	r.logger.Debug("%s read in %.2fms (%d rows)", DefaultSheet, float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, fmt.Errorf("Excel file must have at least a header row and one data row")
	}
	return processRows(rows), nil
}

// readCSVData reads CSV data into structured format
func (r *DataReader) readCSVData() (*ExcelData, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}

	if len(rows) < 2 {
		return nil, fmt.Errorf("CSV file must have at least a header row and one data row")
	}
	return processRows(rows), nil
}

// processRows converts raw string rows into ExcelData format
func processRows(rows [][]string) *ExcelData {
	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.ToLower(strings.TrimSpace(header))
	}

	dataRows := make([]RawRowData, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rowData := make(RawRowData)
		empty := true
		for j, cell := range row {
			if j < len(headers) {
				rowData[headers[j]] = strings.TrimSpace(cell)
				if rowData[headers[j]] != "" {
					empty = false
				}
			}
		}
		if !empty {
			dataRows = append(dataRows, rowData)
		}
	}

	return &ExcelData{Headers: headers, Rows: dataRows}
}

// DecodeAssignments groups rows by assignment id. Task indexes of each
// assignment must run from 0 without gaps, in any row order.
func DecodeAssignments(data *ExcelData) ([]*experiment.Assignment, error) {
	for _, col := range []string{ColAssignmentID, ColTaskIndex, ColForecastMode, ColSigma} {
		if !hasHeader(data.Headers, col) {
			return nil, fmt.Errorf("missing required column %q", col)
		}
	}

	type taskRow struct {
		task        experiment.Task
		predictions experiment.Series
		values      experiment.Series
		longRun     experiment.Series
	}

	var order []string
	grouped := make(map[string]map[int]taskRow)

	for i, row := range data.Rows {
		line := i + 2
		id := row[ColAssignmentID]
		if id == "" {
			return nil, fmt.Errorf("row %d: empty %s", line, ColAssignmentID)
		}

		taskN, err := strconv.Atoi(row[ColTaskIndex])
		if err != nil || taskN < 0 {
			return nil, fmt.Errorf("row %d: invalid %s %q", line, ColTaskIndex, row[ColTaskIndex])
		}
		task, err := decodeTask(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		predictions, err := ParseSeries(row[ColPredictions])
		if err != nil {
			return nil, fmt.Errorf("row %d: %s: %w", line, ColPredictions, err)
		}
		values, err := ParseSeries(row[ColValues])
		if err != nil {
			return nil, fmt.Errorf("row %d: %s: %w", line, ColValues, err)
		}
		longRun, err := ParseSeries(row[ColLongRunning])
		if err != nil {
			return nil, fmt.Errorf("row %d: %s: %w", line, ColLongRunning, err)
		}

		tasks, seen := grouped[id]
		if !seen {
			tasks = make(map[int]taskRow)
			grouped[id] = tasks
			order = append(order, id)
		}
		if _, dup := tasks[taskN]; dup {
			return nil, fmt.Errorf("row %d: duplicate task %d for assignment %s", line, taskN, id)
		}
		tasks[taskN] = taskRow{task: task, predictions: predictions, values: values, longRun: longRun}
	}

	out := make([]*experiment.Assignment, 0, len(order))
	for _, id := range order {
		tasks := grouped[id]
		a := &experiment.Assignment{Identifier: experiment.StringIdentifier(id)}
		hasLongRun := false
		for n := 0; n < len(tasks); n++ {
			tr, ok := tasks[n]
			if !ok {
				return nil, fmt.Errorf("assignment %s: task %d missing", id, n)
			}
			a.Tasks = append(a.Tasks, tr.task)
			a.Predictions = append(a.Predictions, tr.predictions)
			a.Values = append(a.Values, tr.values)
			a.LongRunningAveragePredictionHistory = append(a.LongRunningAveragePredictionHistory, tr.longRun)
			hasLongRun = hasLongRun || tr.longRun != nil
		}
		if !hasLongRun {
			a.LongRunningAveragePredictionHistory = nil
		}
		out = append(out, a)
	}
	return out, nil
}

func decodeTask(row RawRowData) (experiment.Task, error) {
	task := experiment.Task{ForecastMode: row[ColForecastMode]}
	var err error

	if task.TrainingRounds, err = optionalInt(row[ColTrainingRounds]); err != nil {
		return task, fmt.Errorf("%s: %w", ColTrainingRounds, err)
	}
	if task.TestingRounds, err = optionalInt(row[ColTestingRounds]); err != nil {
		return task, fmt.Errorf("%s: %w", ColTestingRounds, err)
	}
	if task.Sigma, err = strconv.ParseFloat(row[ColSigma], 64); err != nil {
		return task, fmt.Errorf("%s: %w", ColSigma, err)
	}
	if v := row[ColBonusDivisor]; v != "" {
		if task.BonusDivisor, err = strconv.ParseFloat(v, 64); err != nil {
			return task, fmt.Errorf("%s: %w", ColBonusDivisor, err)
		}
	}
	if v := row[ColPredictLongRunning]; v != "" {
		if task.PredictLongRunning, err = strconv.ParseBool(strings.ToLower(v)); err != nil {
			return task, fmt.Errorf("%s: %w", ColPredictLongRunning, err)
		}
	}
	return task, nil
}

func optionalInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

// ParseSeries splits a cell into a series. An empty cell is an absent
// series; an empty entry is a missing value.
func ParseSeries(cell string) (experiment.Series, error) {
	if strings.TrimSpace(cell) == "" {
		return nil, nil
	}
	parts := strings.Split(cell, ListSeparator)
	out := make(experiment.Series, len(parts))
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" || strings.EqualFold(part, "null") {
			out[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// FormatSeries is the inverse of ParseSeries
func FormatSeries(s experiment.Series) string {
	parts := make([]string, len(s))
	for i := range s {
		if v, ok := s.At(i); ok {
			parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
	}
	return strings.Join(parts, ListSeparator)
}

func hasHeader(headers []string, name string) bool {
	for _, h := range headers {
		if h == name {
			return true
		}
	}
	return false
}

var _ ports.AssignmentReader = (*DataReader)(nil)
