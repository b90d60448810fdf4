package excel

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"forecastbonus/domain/experiment"

	"github.com/xuri/excelize/v2"
)

// EncodeRows flattens assignments into sheet rows, header first
func EncodeRows(assignments []*experiment.Assignment) [][]string {
	rows := [][]string{append([]string(nil), Columns...)}
	for _, a := range assignments {
		for n, task := range a.Tasks {
			rows = append(rows, []string{
				a.Identifier.String(),
				strconv.Itoa(n),
				task.ForecastMode,
				strconv.Itoa(task.TrainingRounds),
				strconv.Itoa(task.TestingRounds),
				strconv.FormatFloat(task.Sigma, 'g', -1, 64),
				strconv.FormatFloat(task.BonusDivisor, 'g', -1, 64),
				strconv.FormatBool(task.PredictLongRunning),
				FormatSeries(a.PredictionsFor(n)),
				FormatSeries(a.ValuesFor(n)),
				FormatSeries(a.LongRunHistoryFor(n)),
			})
		}
	}
	return rows
}

// WriteAssignments writes assignments to an .xlsx or .csv file, chosen by extension
func WriteAssignments(path string, assignments []*experiment.Assignment) error {
	rows := EncodeRows(assignments)
	if strings.ToLower(filepath.Ext(path)) == ".csv" {
		return writeCSV(path, rows)
	}
	return writeWorkbook(path, rows)
}

func writeWorkbook(path string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j := range row {
			values[j] = row[j]
		}
		if err := f.SetSheetRow(DefaultSheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeCSV(path string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write CSV file: %w", err)
	}
	return nil
}
