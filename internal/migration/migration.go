package migration

import (
	"context"

	"forecastbonus/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Steps lists the migration statements in execution order
func (r *MigrationRunner) Steps() []Step {
	return []Step{
		{Name: "create assignments table", SQL: createAssignmentsTable},
		{Name: "create payouts table", SQL: createPayoutsTable},
		{Name: "create indexes", SQL: createIndexes},
	}
}

// Step is a single idempotent schema statement
type Step struct {
	Name string
	SQL  string
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	for _, step := range r.Steps() {
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			return errors.DatabaseError("failed to "+step.Name, err)
		}
	}
	return nil
}

const createAssignmentsTable = `
	CREATE TABLE IF NOT EXISTS assignments (
		id TEXT PRIMARY KEY,
		record JSONB NOT NULL,
		imported_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)
`

const createPayoutsTable = `
	CREATE TABLE IF NOT EXISTS payouts (
		id UUID PRIMARY KEY,
		assignment_id TEXT NOT NULL REFERENCES assignments(id) ON DELETE CASCADE,
		tasks JSONB NOT NULL DEFAULT '[]',
		total_score INTEGER NOT NULL,
		total_earnings NUMERIC(12,2) NOT NULL,
		currency CHAR(3) NOT NULL,
		fingerprint VARCHAR(64) NOT NULL,
		computed_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)
`

const createIndexes = `
	CREATE INDEX IF NOT EXISTS idx_payouts_assignment_computed
		ON payouts (assignment_id, computed_at DESC)
`
