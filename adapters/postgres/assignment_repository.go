package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"forecastbonus/domain/core"
	"forecastbonus/domain/experiment"
	"forecastbonus/ports"

	"github.com/jmoiron/sqlx"
)

// assignmentRow is the stored form of an assignment: the survey record is
// kept verbatim as JSONB so identifiers and nulls round-trip unchanged
type assignmentRow struct {
	ID         string    `db:"id"`
	Record     []byte    `db:"record"`
	ImportedAt time.Time `db:"imported_at"`
}

// assignmentRepository implements the AssignmentRepository interface
type assignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository creates a new assignment repository
func NewAssignmentRepository(db *sqlx.DB) ports.AssignmentRepository {
	return &assignmentRepository{db: db}
}

// GetAssignment retrieves an assignment by its identifier text
func (r *assignmentRepository) GetAssignment(ctx context.Context, id core.AssignmentID) (*experiment.Assignment, error) {
	query := `SELECT id, record, imported_at FROM assignments WHERE id = $1`

	var row assignmentRow
	if err := r.db.GetContext(ctx, &row, query, string(id)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", core.ErrAssignmentNotFound, id)
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	return decodeAssignmentRow(row)
}

// ListAssignments returns a page of assignments ordered by id
func (r *assignmentRepository) ListAssignments(ctx context.Context, limit, offset int) ([]*experiment.Assignment, error) {
	query := `SELECT id, record, imported_at FROM assignments ORDER BY id LIMIT $1 OFFSET $2`

	var rows []assignmentRow
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	out := make([]*experiment.Assignment, 0, len(rows))
	for _, row := range rows {
		a, err := decodeAssignmentRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// SaveAssignment inserts or replaces an assignment record
func (r *assignmentRepository) SaveAssignment(ctx context.Context, a *experiment.Assignment) error {
	row, err := encodeAssignmentRow(a)
	if err != nil {
		return err
	}

	query := `INSERT INTO assignments (id, record, imported_at)
		VALUES (:id, :record, :imported_at)
		ON CONFLICT (id) DO UPDATE SET record = EXCLUDED.record, imported_at = EXCLUDED.imported_at`

	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("failed to save assignment %s: %w", row.ID, err)
	}
	return nil
}

func encodeAssignmentRow(a *experiment.Assignment) (assignmentRow, error) {
	if a.Identifier.IsAbsent() {
		return assignmentRow{}, fmt.Errorf("assignment without identifier cannot be stored")
	}
	record, err := json.Marshal(a)
	if err != nil {
		return assignmentRow{}, fmt.Errorf("failed to marshal assignment: %w", err)
	}
	return assignmentRow{ID: a.ID().String(), Record: record, ImportedAt: time.Now().UTC()}, nil
}

func decodeAssignmentRow(row assignmentRow) (*experiment.Assignment, error) {
	var a experiment.Assignment
	if err := json.Unmarshal(row.Record, &a); err != nil {
		return nil, fmt.Errorf("failed to unmarshal assignment %s: %w", row.ID, err)
	}
	return &a, nil
}
