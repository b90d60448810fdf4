package app

import (
	"context"
	"fmt"
	"testing"

	"forecastbonus/domain/core"
	"forecastbonus/domain/experiment"
	"forecastbonus/domain/payout"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAssignmentRepository struct {
	mock.Mock
}

func (m *MockAssignmentRepository) GetAssignment(ctx context.Context, id core.AssignmentID) (*experiment.Assignment, error) {
	args := m.Called(ctx, id)
	a, _ := args.Get(0).(*experiment.Assignment)
	return a, args.Error(1)
}

func (m *MockAssignmentRepository) ListAssignments(ctx context.Context, limit, offset int) ([]*experiment.Assignment, error) {
	args := m.Called(ctx, limit, offset)
	list, _ := args.Get(0).([]*experiment.Assignment)
	return list, args.Error(1)
}

func (m *MockAssignmentRepository) SaveAssignment(ctx context.Context, a *experiment.Assignment) error {
	return m.Called(ctx, a).Error(0)
}

type MockPayoutRepository struct {
	mock.Mock
}

func (m *MockPayoutRepository) SavePayout(ctx context.Context, p *payout.Payout) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPayoutRepository) GetLatestPayout(ctx context.Context, id core.AssignmentID) (*payout.Payout, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*payout.Payout)
	return p, args.Error(1)
}

// perfectAssignment scores 100 on every task: every prediction and value is 5.
func perfectAssignment(id string, tasks ...experiment.Task) *experiment.Assignment {
	a := newAssignment(id, tasks...)
	for i := range tasks {
		a.Predictions[i] = filled(20, 5)
		a.Values[i] = filled(60, 5)
	}
	return a
}

func testingOnlyTask(divisor float64) experiment.Task {
	return experiment.Task{ForecastMode: "1", TrainingRounds: 0, TestingRounds: 10, Sigma: 10, BonusDivisor: divisor}
}

func TestComputePayout(t *testing.T) {
	svc := NewPayoutService(newTestService(), nil, nil, PayoutConfig{Currency: "GBP"})
	a := perfectAssignment(seedABC, testingOnlyTask(20), testingOnlyTask(40))

	p, err := svc.ComputePayout(a)
	require.NoError(t, err)

	assert.Equal(t, core.AssignmentID(seedABC), p.AssignmentID)
	assert.False(t, p.ID.String() == "")
	assert.Equal(t, 200, p.TotalScore)
	assert.Equal(t, 7.5, p.TotalEarnings)
	assert.Equal(t, "GBP", p.Currency)
	require.Len(t, p.Tasks, 2)
	assert.Equal(t, 5.0, p.Tasks[0].Bonus)
	assert.Equal(t, 2.5, p.Tasks[1].Bonus)

	again, err := svc.ComputePayout(a)
	require.NoError(t, err)
	assert.Equal(t, p.Fingerprint, again.Fingerprint, "the same record fingerprints the same")
	assert.NotEqual(t, p.ID, again.ID)

	a.Predictions[0][0] = 6
	changed, err := svc.ComputePayout(a)
	require.NoError(t, err)
	assert.NotEqual(t, p.Fingerprint, changed.Fingerprint)
}

func TestComputePayout_PropagatesConfigurationErrors(t *testing.T) {
	svc := NewPayoutService(newTestService(), nil, nil, DefaultPayoutConfig())
	bad := testingOnlyTask(20)
	bad.ForecastMode = "1+2+3"

	_, err := svc.ComputePayout(perfectAssignment(seedABC, bad))
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidConfiguration)
}

func TestPayoutForAssignment_RecordsPayout(t *testing.T) {
	ctx := context.Background()
	a := perfectAssignment(seedABC, testingOnlyTask(20))

	assignments := &MockAssignmentRepository{}
	assignments.On("GetAssignment", ctx, core.AssignmentID(seedABC)).Return(a, nil)
	payouts := &MockPayoutRepository{}
	payouts.On("SavePayout", ctx, mock.MatchedBy(func(p *payout.Payout) bool {
		return p.AssignmentID == core.AssignmentID(seedABC) && p.TotalEarnings == 5
	})).Return(nil)

	svc := NewPayoutService(newTestService(), assignments, payouts, DefaultPayoutConfig())
	p, err := svc.PayoutForAssignment(ctx, core.AssignmentID(seedABC))
	require.NoError(t, err)
	assert.Equal(t, 100, p.TotalScore)

	assignments.AssertExpectations(t)
	payouts.AssertExpectations(t)
}

func TestPayoutForAssignment_NotFound(t *testing.T) {
	ctx := context.Background()
	assignments := &MockAssignmentRepository{}
	assignments.On("GetAssignment", ctx, core.AssignmentID("missing")).Return(nil, core.ErrAssignmentNotFound)

	svc := NewPayoutService(newTestService(), assignments, nil, DefaultPayoutConfig())
	_, err := svc.PayoutForAssignment(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestComputeBatch_PreservesOrder(t *testing.T) {
	svc := NewPayoutService(newTestService(), nil, nil, PayoutConfig{Concurrency: 3})

	var batch []*experiment.Assignment
	for i := 0; i < 25; i++ {
		batch = append(batch, perfectAssignment(fmt.Sprintf("participant-%d", i), testingOnlyTask(20)))
	}

	payouts, err := svc.ComputeBatch(context.Background(), batch)
	require.NoError(t, err)
	require.Len(t, payouts, len(batch))
	for i, p := range payouts {
		assert.Equal(t, batch[i].ID(), p.AssignmentID)
		assert.Equal(t, 5.0, p.TotalEarnings)
	}
}

func TestComputeBatch_FailsOnBadRecord(t *testing.T) {
	svc := NewPayoutService(newTestService(), nil, nil, PayoutConfig{Concurrency: 2})
	good := perfectAssignment("good", testingOnlyTask(20))
	broken := perfectAssignment("broken", testingOnlyTask(20))
	broken.Values[0] = filled(10, 5)

	_, err := svc.ComputeBatch(context.Background(), []*experiment.Assignment{good, broken, good})
	assert.ErrorIs(t, err, core.ErrMissingData)
}

func TestProcessAll_PagesAndSummarizes(t *testing.T) {
	ctx := context.Background()
	page1 := []*experiment.Assignment{
		perfectAssignment("a-1", testingOnlyTask(20)),
		perfectAssignment("a-2", testingOnlyTask(40)),
	}
	page2 := []*experiment.Assignment{
		perfectAssignment("a-3", testingOnlyTask(10)),
	}

	assignments := &MockAssignmentRepository{}
	assignments.On("ListAssignments", mock.Anything, 2, 0).Return(page1, nil)
	assignments.On("ListAssignments", mock.Anything, 2, 2).Return(page2, nil)
	payouts := &MockPayoutRepository{}
	payouts.On("SavePayout", ctx, mock.Anything).Return(nil).Times(3)

	svc := NewPayoutService(newTestService(), assignments, payouts, PayoutConfig{Concurrency: 2, PageSize: 2, Currency: "GBP"})
	summary, err := svc.ProcessAll(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Count)
	assert.Equal(t, 17.5, summary.Total)
	assert.Equal(t, 5.0, summary.Median)
	assert.Equal(t, 10.0, summary.Max)
	assert.InDelta(t, 5.83, summary.Mean, 1e-9)
	assignments.AssertExpectations(t)
	payouts.AssertExpectations(t)
}

func TestSummarize_Empty(t *testing.T) {
	svc := NewPayoutService(newTestService(), nil, nil, DefaultPayoutConfig())
	summary, err := svc.Summarize(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Count)
	assert.Equal(t, "GBP", summary.Currency)
}
