package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"forecastbonus/domain/core"
	"forecastbonus/domain/payout"
	"forecastbonus/ports"

	"github.com/jmoiron/sqlx"
)

type payoutRow struct {
	ID            string    `db:"id"`
	AssignmentID  string    `db:"assignment_id"`
	Tasks         []byte    `db:"tasks"`
	TotalScore    int       `db:"total_score"`
	TotalEarnings float64   `db:"total_earnings"`
	Currency      string    `db:"currency"`
	Fingerprint   string    `db:"fingerprint"`
	ComputedAt    time.Time `db:"computed_at"`
}

// payoutRepository implements the PayoutRepository interface
type payoutRepository struct {
	db *sqlx.DB
}

// NewPayoutRepository creates a new payout repository
func NewPayoutRepository(db *sqlx.DB) ports.PayoutRepository {
	return &payoutRepository{db: db}
}

// SavePayout appends a payout; earlier payouts of the assignment are kept
func (r *payoutRepository) SavePayout(ctx context.Context, p *payout.Payout) error {
	row, err := encodePayoutRow(p)
	if err != nil {
		return err
	}

	query := `INSERT INTO payouts (
		id, assignment_id, tasks, total_score, total_earnings, currency, fingerprint, computed_at
	) VALUES (
		:id, :assignment_id, :tasks, :total_score, :total_earnings, :currency, :fingerprint, :computed_at
	)`

	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("failed to save payout: %w", err)
	}
	return nil
}

// GetLatestPayout returns the most recently computed payout of an assignment
func (r *payoutRepository) GetLatestPayout(ctx context.Context, assignmentID core.AssignmentID) (*payout.Payout, error) {
	query := `SELECT id, assignment_id, tasks, total_score, total_earnings::float8 AS total_earnings,
		currency, fingerprint, computed_at
	FROM payouts WHERE assignment_id = $1
	ORDER BY computed_at DESC LIMIT 1`

	var row payoutRow
	if err := r.db.GetContext(ctx, &row, query, string(assignmentID)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", core.ErrPayoutNotFound, assignmentID)
		}
		return nil, fmt.Errorf("failed to get payout: %w", err)
	}
	return decodePayoutRow(row)
}

func encodePayoutRow(p *payout.Payout) (payoutRow, error) {
	tasks, err := json.Marshal(p.Tasks)
	if err != nil {
		return payoutRow{}, fmt.Errorf("failed to marshal payout tasks: %w", err)
	}
	computedAt := p.ComputedAt.Time()
	if p.ComputedAt.IsZero() {
		computedAt = time.Now().UTC()
	}
	return payoutRow{
		ID:            p.ID.String(),
		AssignmentID:  p.AssignmentID.String(),
		Tasks:         tasks,
		TotalScore:    p.TotalScore,
		TotalEarnings: p.TotalEarnings,
		Currency:      p.Currency,
		Fingerprint:   string(p.Fingerprint),
		ComputedAt:    computedAt,
	}, nil
}

func decodePayoutRow(row payoutRow) (*payout.Payout, error) {
	p := &payout.Payout{
		ID:            core.PayoutID(row.ID),
		AssignmentID:  core.AssignmentID(row.AssignmentID),
		TotalScore:    row.TotalScore,
		TotalEarnings: row.TotalEarnings,
		Currency:      row.Currency,
		Fingerprint:   core.Hash(row.Fingerprint),
		ComputedAt:    core.NewTimestamp(row.ComputedAt.UTC()),
	}
	if len(row.Tasks) > 0 {
		if err := json.Unmarshal(row.Tasks, &p.Tasks); err != nil {
			return nil, fmt.Errorf("failed to unmarshal payout tasks: %w", err)
		}
	}
	return p, nil
}
