package ports

import (
	"context"

	"forecastbonus/domain/core"
	"forecastbonus/domain/experiment"
	"forecastbonus/domain/payout"
)

// AssignmentRepository provides read access to stored assignment records.
// The scoring engine never writes assignments; Save exists for imports.
type AssignmentRepository interface {
	GetAssignment(ctx context.Context, id core.AssignmentID) (*experiment.Assignment, error)
	ListAssignments(ctx context.Context, limit, offset int) ([]*experiment.Assignment, error)
	SaveAssignment(ctx context.Context, assignment *experiment.Assignment) error
}

// PayoutRepository persists computed payouts
type PayoutRepository interface {
	SavePayout(ctx context.Context, p *payout.Payout) error
	GetLatestPayout(ctx context.Context, assignmentID core.AssignmentID) (*payout.Payout, error)
}

// AssignmentReader loads assignment records from an export file
type AssignmentReader interface {
	ReadAssignments() ([]*experiment.Assignment, error)
}
