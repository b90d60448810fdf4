package app

import (
	"context"
	"encoding/json"
	"fmt"

	"forecastbonus/domain/core"
	"forecastbonus/domain/experiment"
	"forecastbonus/domain/payout"
	"forecastbonus/internal"
	"forecastbonus/internal/errors"
	"forecastbonus/ports"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"
)

// PayoutConfig holds payout computation settings
type PayoutConfig struct {
	Currency    string
	Concurrency int
	PageSize    int
}

// DefaultPayoutConfig returns the settings used when none are configured
func DefaultPayoutConfig() PayoutConfig {
	return PayoutConfig{Currency: "GBP", Concurrency: 4, PageSize: 100}
}

// PayoutService turns stored assignments into payout records
type PayoutService struct {
	scoring     *ScoringService
	assignments ports.AssignmentRepository
	payouts     ports.PayoutRepository
	config      PayoutConfig
	logger      *internal.Logger
}

// NewPayoutService creates a payout service. Either repository may be nil when
// payouts are only computed from records supplied by the caller.
func NewPayoutService(scoring *ScoringService, assignments ports.AssignmentRepository, payouts ports.PayoutRepository, config PayoutConfig) *PayoutService {
	defaults := DefaultPayoutConfig()
	if config.Currency == "" {
		config.Currency = defaults.Currency
	}
	if config.Concurrency < 1 {
		config.Concurrency = defaults.Concurrency
	}
	if config.PageSize < 1 {
		config.PageSize = defaults.PageSize
	}
	return &PayoutService{
		scoring:     scoring,
		assignments: assignments,
		payouts:     payouts,
		config:      config,
		logger:      internal.DefaultLogger.With("payout"),
	}
}

// ComputePayout scores an assignment and builds its payout record.
func (s *PayoutService) ComputePayout(assignment *experiment.Assignment) (*payout.Payout, error) {
	breakdown, err := s.scoring.Breakdown(assignment)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to score assignment %s", assignment.ID())
	}

	record, err := json.Marshal(assignment)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fingerprint assignment")
	}

	tasks := make([]payout.TaskPayout, len(breakdown.Tasks))
	for i, t := range breakdown.Tasks {
		tasks[i] = payout.TaskPayout{
			TaskIndex:  t.TaskIndex,
			BonusRound: t.BonusRound,
			Scored:     t.Scored,
			Score:      t.Score,
			Bonus:      t.Bonus,
		}
	}

	return &payout.Payout{
		ID:            core.NewPayoutID(),
		AssignmentID:  breakdown.AssignmentID,
		Tasks:         tasks,
		TotalScore:    breakdown.TotalScore,
		TotalEarnings: experiment.RoundHalfUp(breakdown.TotalEarnings*100) / 100,
		Currency:      s.config.Currency,
		Fingerprint:   core.NewHash(record),
		ComputedAt:    core.Now(),
	}, nil
}

// PayoutForAssignment loads a stored assignment, computes its payout and
// records it when a payout repository is configured.
func (s *PayoutService) PayoutForAssignment(ctx context.Context, id core.AssignmentID) (*payout.Payout, error) {
	if s.assignments == nil {
		return nil, errors.InternalError("no assignment repository configured")
	}
	assignment, err := s.assignments.GetAssignment(ctx, id)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load assignment %s", id)
	}
	p, err := s.ComputePayout(assignment)
	if err != nil {
		return nil, err
	}
	if err := s.record(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PayoutService) record(ctx context.Context, p *payout.Payout) error {
	if s.payouts == nil {
		return nil
	}
	if err := s.payouts.SavePayout(ctx, p); err != nil {
		return errors.Wrapf(err, "failed to save payout for %s", p.AssignmentID)
	}
	return nil
}

// ComputeBatch scores assignments concurrently. Output order matches input
// order; the first failure cancels the remaining work.
func (s *PayoutService) ComputeBatch(ctx context.Context, assignments []*experiment.Assignment) ([]*payout.Payout, error) {
	out := make([]*payout.Payout, len(assignments))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Concurrency)

	for i, a := range assignments {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p, err := s.ComputePayout(a)
			if err != nil {
				return err
			}
			out[i] = p
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// ProcessAll pages through every stored assignment, computes and records its
// payout, and summarizes the run.
func (s *PayoutService) ProcessAll(ctx context.Context) (*payout.Summary, error) {
	if s.assignments == nil {
		return nil, errors.InternalError("no assignment repository configured")
	}

	var all []*payout.Payout
	for offset := 0; ; offset += s.config.PageSize {
		page, err := s.assignments.ListAssignments(ctx, s.config.PageSize, offset)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to list assignments at offset %d", offset)
		}
		if len(page) == 0 {
			break
		}

		payouts, err := s.ComputeBatch(ctx, page)
		if err != nil {
			return nil, err
		}
		for _, p := range payouts {
			if err := s.record(ctx, p); err != nil {
				return nil, err
			}
		}
		all = append(all, payouts...)
		s.logger.Info("processed %d assignments", len(all))

		if len(page) < s.config.PageSize {
			break
		}
	}

	summary, err := s.Summarize(all)
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// Summarize describes the earnings of a set of payouts.
func (s *PayoutService) Summarize(payouts []*payout.Payout) (*payout.Summary, error) {
	summary := &payout.Summary{Count: len(payouts), Currency: s.config.Currency}
	if len(payouts) == 0 {
		return summary, nil
	}

	earnings := make(stats.Float64Data, len(payouts))
	for i, p := range payouts {
		earnings[i] = p.TotalEarnings
	}

	total, err := earnings.Sum()
	if err != nil {
		return nil, fmt.Errorf("failed to sum earnings: %w", err)
	}
	mean, err := earnings.Mean()
	if err != nil {
		return nil, fmt.Errorf("failed to average earnings: %w", err)
	}
	median, err := earnings.Median()
	if err != nil {
		return nil, fmt.Errorf("failed to compute median earnings: %w", err)
	}
	max, err := earnings.Max()
	if err != nil {
		return nil, fmt.Errorf("failed to compute max earnings: %w", err)
	}

	summary.Total = roundCurrency(total)
	summary.Mean = roundCurrency(mean)
	summary.Median = roundCurrency(median)
	summary.Max = roundCurrency(max)
	return summary, nil
}

func roundCurrency(v float64) float64 {
	return experiment.RoundHalfUp(v*100) / 100
}
