// Package fileio loads assignment exports from JSON, YAML, Excel and CSV files.
package fileio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"forecastbonus/adapters/excel"
	"forecastbonus/domain/experiment"
	"forecastbonus/ports"
)

// FileType identifies an export format
type FileType string

const (
	FileTypeJSON  FileType = "json"
	FileTypeYAML  FileType = "yaml"
	FileTypeExcel FileType = "xlsx"
	FileTypeCSV   FileType = "csv"
)

// DetectFileType maps a file extension to an export format
func DetectFileType(path string) (FileType, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FileTypeJSON, nil
	case ".yaml", ".yml":
		return FileTypeYAML, nil
	case ".xlsx":
		return FileTypeExcel, nil
	case ".csv":
		return FileTypeCSV, nil
	default:
		return "", fmt.Errorf("unsupported file extension %q", filepath.Ext(path))
	}
}

// NewReader returns the reader for the file's format
func NewReader(path string) (ports.AssignmentReader, error) {
	fileType, err := DetectFileType(path)
	if err != nil {
		return nil, err
	}
	switch fileType {
	case FileTypeJSON:
		return &JSONReader{path: path}, nil
	case FileTypeYAML:
		return &YAMLReader{path: path}, nil
	default:
		return excel.NewDataReader(path), nil
	}
}

// LoadAssignments reads every assignment from the file at path
func LoadAssignments(path string) ([]*experiment.Assignment, error) {
	reader, err := NewReader(path)
	if err != nil {
		return nil, err
	}
	assignments, err := reader.ReadAssignments()
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return assignments, nil
}

// JSONReader reads a single assignment object or an array of them
type JSONReader struct {
	path string
}

func (r *JSONReader) ReadAssignments() ([]*experiment.Assignment, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, err
	}
	return DecodeJSON(data)
}

// DecodeJSON decodes a single assignment object or an array of them
func DecodeJSON(data []byte) ([]*experiment.Assignment, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty document")
	}

	if trimmed[0] == '[' {
		var list []*experiment.Assignment
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("failed to decode assignments: %w", err)
		}
		for i, a := range list {
			if a == nil {
				return nil, fmt.Errorf("assignment %d is null", i)
			}
		}
		return list, nil
	}

	var a experiment.Assignment
	if err := json.Unmarshal(trimmed, &a); err != nil {
		return nil, fmt.Errorf("failed to decode assignment: %w", err)
	}
	return []*experiment.Assignment{&a}, nil
}

var (
	_ ports.AssignmentReader = (*JSONReader)(nil)
	_ ports.AssignmentReader = (*YAMLReader)(nil)
)
