package postgres

import (
	"context"
	"math"
	"os"
	"testing"
	"time"

	"forecastbonus/domain/core"
	"forecastbonus/domain/experiment"
	"forecastbonus/domain/payout"
	"forecastbonus/internal/migration"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleAssignment(id string) *experiment.Assignment {
	return &experiment.Assignment{
		Identifier:  experiment.StringIdentifier(id),
		Tasks:       []experiment.Task{{ForecastMode: "1", TestingRounds: 1, Sigma: 10, BonusDivisor: 20}},
		Predictions: []experiment.Series{{5, math.NaN()}},
		Values:      []experiment.Series{{1, 2, 3}},
	}
}

func TestAssignmentRow_RoundTrip(t *testing.T) {
	structured, err := experiment.StructuredIdentifier(map[string]int{"seat": 3})
	require.NoError(t, err)
	a := sampleAssignment("")
	a.Identifier = structured

	row, err := encodeAssignmentRow(a)
	require.NoError(t, err)
	assert.Equal(t, `{"seat":3}`, row.ID)

	got, err := decodeAssignmentRow(row)
	require.NoError(t, err)
	assert.Equal(t, a.ID(), got.ID())
	assert.Equal(t, experiment.IdentifierStructured, got.Identifier.Kind())
	_, ok := got.PredictionsFor(0).At(1)
	assert.False(t, ok, "missing entries survive storage")
}

func TestAssignmentRow_RequiresIdentifier(t *testing.T) {
	a := sampleAssignment("")
	a.Identifier = experiment.Identifier{}
	_, err := encodeAssignmentRow(a)
	assert.Error(t, err)
}

func TestDecodeAssignmentRow_BadRecord(t *testing.T) {
	_, err := decodeAssignmentRow(assignmentRow{ID: "x", Record: []byte("{")})
	assert.Error(t, err)
}

func TestPayoutRow_RoundTrip(t *testing.T) {
	computed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	p := &payout.Payout{
		ID:            core.NewPayoutID(),
		AssignmentID:  "abc",
		Tasks:         []payout.TaskPayout{{TaskIndex: 0, BonusRound: 6, Scored: true, Score: 100, Bonus: 5}},
		TotalScore:    100,
		TotalEarnings: 5,
		Currency:      "GBP",
		Fingerprint:   core.NewHash([]byte("record")),
		ComputedAt:    core.NewTimestamp(computed),
	}

	row, err := encodePayoutRow(p)
	require.NoError(t, err)
	got, err := decodePayoutRow(row)
	require.NoError(t, err)

	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, p.Tasks, got.Tasks)
	assert.Equal(t, p.Fingerprint, got.Fingerprint)
	assert.True(t, computed.Equal(got.ComputedAt.Time()))
}

func TestPayoutRow_DefaultsComputedAt(t *testing.T) {
	row, err := encodePayoutRow(&payout.Payout{ID: core.NewPayoutID()})
	require.NoError(t, err)
	assert.False(t, row.ComputedAt.IsZero())
	assert.JSONEq(t, "null", string(row.Tasks))
}

// TestRepositories_Postgres runs against a live database when
// TEST_DATABASE_URL is set.
func TestRepositories_Postgres(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, migration.NewRunner().Run(ctx, db))

	assignments := NewAssignmentRepository(db)
	payouts := NewPayoutRepository(db)

	id := "it-" + string(core.NewID())
	a := sampleAssignment(id)
	require.NoError(t, assignments.SaveAssignment(ctx, a))
	require.NoError(t, assignments.SaveAssignment(ctx, a), "saving twice replaces the record")

	got, err := assignments.GetAssignment(ctx, core.AssignmentID(id))
	require.NoError(t, err)
	assert.Equal(t, a.Tasks, got.Tasks)

	_, err = assignments.GetAssignment(ctx, "it-missing")
	assert.ErrorIs(t, err, core.ErrAssignmentNotFound)

	p := &payout.Payout{ID: core.NewPayoutID(), AssignmentID: core.AssignmentID(id), TotalEarnings: 1.25, Currency: "GBP", Fingerprint: core.NewHash([]byte(id))}
	require.NoError(t, payouts.SavePayout(ctx, p))
	latest, err := payouts.GetLatestPayout(ctx, core.AssignmentID(id))
	require.NoError(t, err)
	assert.Equal(t, p.ID, latest.ID)
	assert.Equal(t, 1.25, latest.TotalEarnings)

	_, err = db.ExecContext(ctx, `DELETE FROM assignments WHERE id = $1`, id)
	require.NoError(t, err)
}
