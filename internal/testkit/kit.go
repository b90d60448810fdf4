package testkit

import (
	"context"
	"sort"
	"sync"

	"forecastbonus/adapters/rng"
	"forecastbonus/domain/core"
	"forecastbonus/domain/experiment"
	"forecastbonus/domain/payout"
	"forecastbonus/ports"
)

// TestKit provides in-memory storage and the production RNG for tests and
// database-free runs
type TestKit struct {
	assignments *InMemoryAssignmentRepository
	payouts     *InMemoryPayoutRepository
}

// NewTestKit creates a new test kit with empty stores
func NewTestKit() *TestKit {
	return &TestKit{
		assignments: NewInMemoryAssignmentRepository(),
		payouts:     NewInMemoryPayoutRepository(),
	}
}

// NewTestKitWithStudy creates a test kit preloaded with generated assignments
func NewTestKitWithStudy(ctx context.Context, config StudyGeneratorConfig) (*TestKit, []*experiment.Assignment, error) {
	kit := NewTestKit()
	assignments, err := NewStudyGenerator(config).GenerateAssignments()
	if err != nil {
		return nil, nil, err
	}
	for _, a := range assignments {
		if err := kit.assignments.SaveAssignment(ctx, a); err != nil {
			return nil, nil, err
		}
	}
	return kit, assignments, nil
}

// AssignmentRepository returns the in-memory assignment store
func (t *TestKit) AssignmentRepository() *InMemoryAssignmentRepository {
	return t.assignments
}

// PayoutRepository returns the in-memory payout store
func (t *TestKit) PayoutRepository() *InMemoryPayoutRepository {
	return t.payouts
}

// RNGAdapter returns the Lehmer generator used in production
func (t *TestKit) RNGAdapter() ports.RNGPort {
	return rng.NewAdapter()
}

// InMemoryAssignmentRepository implements AssignmentRepository with a map.
// Listing is ordered by identifier so paging is stable.
type InMemoryAssignmentRepository struct {
	assignments map[core.AssignmentID]*experiment.Assignment
	mu          sync.RWMutex
}

func NewInMemoryAssignmentRepository() *InMemoryAssignmentRepository {
	return &InMemoryAssignmentRepository{
		assignments: make(map[core.AssignmentID]*experiment.Assignment),
	}
}

func (s *InMemoryAssignmentRepository) GetAssignment(ctx context.Context, id core.AssignmentID) (*experiment.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, exists := s.assignments[id]
	if !exists {
		return nil, core.ErrAssignmentNotFound
	}
	return a, nil
}

func (s *InMemoryAssignmentRepository) ListAssignments(ctx context.Context, limit, offset int) ([]*experiment.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.assignments))
	for id := range s.assignments {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)

	if offset >= len(ids) {
		return []*experiment.Assignment{}, nil
	}
	end := len(ids)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	out := make([]*experiment.Assignment, 0, end-offset)
	for _, id := range ids[offset:end] {
		out = append(out, s.assignments[core.AssignmentID(id)])
	}
	return out, nil
}

func (s *InMemoryAssignmentRepository) SaveAssignment(ctx context.Context, a *experiment.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.assignments[a.ID()] = a
	return nil
}

// InMemoryPayoutRepository implements PayoutRepository, keeping every
// recorded payout per assignment
type InMemoryPayoutRepository struct {
	payouts map[core.AssignmentID][]*payout.Payout
	mu      sync.RWMutex
}

func NewInMemoryPayoutRepository() *InMemoryPayoutRepository {
	return &InMemoryPayoutRepository{
		payouts: make(map[core.AssignmentID][]*payout.Payout),
	}
}

func (s *InMemoryPayoutRepository) SavePayout(ctx context.Context, p *payout.Payout) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.payouts[p.AssignmentID] = append(s.payouts[p.AssignmentID], p)
	return nil
}

func (s *InMemoryPayoutRepository) GetLatestPayout(ctx context.Context, id core.AssignmentID) (*payout.Payout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.payouts[id]
	if len(history) == 0 {
		return nil, core.ErrPayoutNotFound
	}
	return history[len(history)-1], nil
}

// Count returns the number of payouts recorded for an assignment
func (s *InMemoryPayoutRepository) Count(id core.AssignmentID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.payouts[id])
}

var (
	_ ports.AssignmentRepository = (*InMemoryAssignmentRepository)(nil)
	_ ports.PayoutRepository     = (*InMemoryPayoutRepository)(nil)
)
