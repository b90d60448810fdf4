package app

import (
	"fmt"
	"strconv"

	"forecastbonus/domain/core"
	"forecastbonus/domain/experiment"
	"forecastbonus/internal"
	"forecastbonus/ports"
)

// DefaultSeed seeds round selection when an assignment carries no identifier.
const DefaultSeed = "defaultSeed"

// ScoringService selects each task's bonus round and turns prediction error
// into bonus payments. It holds no mutable state and is safe for concurrent use.
//
// Selection rule: the bonus round is drawn uniformly over every round of the
// task, but only a testing round can score. A draw that lands in a training
// round leaves the task with a score of zero. The long-run average prediction
// is scored only at the selected round.
type ScoringService struct {
	rngPort     ports.RNGPort
	defaultSeed string
	logger      *internal.Logger
}

// ScoringOption configures a ScoringService
type ScoringOption func(*ScoringService)

// WithDefaultSeed overrides the seed used for assignments without an identifier.
func WithDefaultSeed(seed string) ScoringOption {
	return func(s *ScoringService) {
		if seed != "" {
			s.defaultSeed = seed
		}
	}
}

// WithLogger sets the logger used for the bonus round trace.
func WithLogger(logger *internal.Logger) ScoringOption {
	return func(s *ScoringService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewScoringService creates a scoring service backed by rngPort
func NewScoringService(rngPort ports.RNGPort, opts ...ScoringOption) *ScoringService {
	s := &ScoringService{
		rngPort:     rngPort,
		defaultSeed: DefaultSeed,
		logger:      internal.DefaultLogger.With("scoring"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// seed returns the main stream seed and the text form used for sub-seeds.
func (s *ScoringService) seed(assignment *experiment.Assignment) (any, string) {
	id := assignment.Identifier
	text := id.String()
	if id.IsAbsent() || text == "" {
		return s.defaultSeed, s.defaultSeed
	}
	return id.SeedValue(), text
}

// TotalTaskScore selects the bonus round of task taskN and scores it.
func (s *ScoringService) TotalTaskScore(taskN int, assignment *experiment.Assignment) (experiment.ScoreResult, error) {
	task, err := assignment.Task(taskN)
	if err != nil {
		return experiment.ScoreResult{}, err
	}
	if err := task.ValidateForScoring(); err != nil {
		return experiment.ScoreResult{}, fmt.Errorf("task %d: %w", taskN, err)
	}

	seedValue, seedText := s.seed(assignment)
	random := s.rngPort.SeededStream(seedValue)
	bonusRound := random.RandomInt(0, task.TotalRounds()-1)
	// negative numeric identifiers drive the generator below zero
	if bonusRound < 0 || bonusRound > max(task.TotalRounds()-1, 0) {
		return experiment.ScoreResult{}, fmt.Errorf("task %d: %w: %s drew round %d", taskN, core.ErrBonusRoundOutOfRange, seedText, bonusRound)
	}

	result := experiment.ScoreResult{BonusRound: bonusRound}
	if !task.IsTestingRound(bonusRound) {
		s.logger.Debug("bonus round %s %d %d", seedText, bonusRound, 0)
		return result, nil
	}

	score, err := s.scoreRound(task, bonusRound, seedText,
		assignment.PredictionsFor(taskN),
		assignment.ValuesFor(taskN),
		assignment.LongRunHistoryFor(taskN))
	if err != nil {
		return experiment.ScoreResult{}, fmt.Errorf("task %d round %d: %w", taskN, bonusRound, err)
	}
	result.TotalScore = score

	s.logger.Debug("bonus round %s %d %d", seedText, bonusRound, result.TotalScore)
	return result, nil
}

func (s *ScoringService) scoreRound(task experiment.Task, roundN int, seedText string, predictions, actuals, longRun experiment.Series) (int, error) {
	modes, err := task.ForecastModes()
	if err != nil {
		return 0, err
	}

	// with two horizons only one of them counts, picked by a stream seeded
	// from the identifier text followed by the round number; only its slots are read
	pick := 0
	if len(modes) > 1 {
		pick = s.rngPort.SeededStream(seedText + strconv.Itoa(roundN)).RandomInt(0, len(modes)-1)
	}
	if pick < 0 || pick >= len(modes) {
		return 0, fmt.Errorf("%w: horizon draw %d", core.ErrBonusRoundOutOfRange, pick)
	}
	predicted, err := experiment.GetPrediction(roundN, pick, predictions)
	if err != nil {
		return 0, err
	}
	actual, err := experiment.GetActual(roundN, modes[pick], actuals)
	if err != nil {
		return 0, err
	}
	total, err := experiment.ScoreForPrediction(task, predicted, actual)
	if err != nil {
		return 0, err
	}

	if task.PredictLongRunning {
		if estimate, ok := longRun.At(roundN); ok {
			longRunScore, err := experiment.ScoreForPrediction(task, estimate, experiment.LongRunTarget)
			if err != nil {
				return 0, err
			}
			total += longRunScore
		}
	}
	return total, nil
}

// TotalExperimentScore sums every task's score. Each task draws its bonus
// round from a fresh stream.
func (s *ScoringService) TotalExperimentScore(assignment *experiment.Assignment) (int, error) {
	total := 0
	for taskN := range assignment.Tasks {
		result, err := s.TotalTaskScore(taskN, assignment)
		if err != nil {
			return 0, err
		}
		total += result.TotalScore
	}
	return total, nil
}

// TotalEarnings converts each task's score with that task's divisor and sums
// the bonuses.
func (s *ScoringService) TotalEarnings(assignment *experiment.Assignment) (float64, error) {
	total := 0.0
	for taskN, task := range assignment.Tasks {
		result, err := s.TotalTaskScore(taskN, assignment)
		if err != nil {
			return 0, err
		}
		bonus, err := experiment.CalculateBonus(result.TotalScore, task)
		if err != nil {
			return 0, fmt.Errorf("task %d: %w", taskN, err)
		}
		total += bonus
	}
	return total, nil
}

// TotalBonus computes earnings for a stored result scored against tasks.
func (s *ScoringService) TotalBonus(result *experiment.Assignment, tasks []experiment.Task) (float64, error) {
	return s.TotalEarnings(result.WithTasks(tasks))
}

// GetScore scores every horizon of a round without selecting one.
func (s *ScoringService) GetScore(roundN int, predictions, actuals experiment.Series, task experiment.Task) ([]int, error) {
	return experiment.GetScore(roundN, predictions, actuals, task)
}

// CalculateBonus converts score points into currency.
func (s *ScoringService) CalculateBonus(score int, task experiment.Task) (float64, error) {
	return experiment.CalculateBonus(score, task)
}

// TaskBreakdown is the per-task detail of an assignment's earnings.
type TaskBreakdown struct {
	TaskIndex  int     `json:"taskIndex"`
	BonusRound int     `json:"bonusRound"`
	Scored     bool    `json:"scored"`
	Score      int     `json:"score"`
	Bonus      float64 `json:"bonus"`
}

// Breakdown is the full scoring detail of an assignment.
type Breakdown struct {
	AssignmentID  core.AssignmentID `json:"assignmentId"`
	Tasks         []TaskBreakdown   `json:"tasks"`
	TotalScore    int               `json:"totalScore"`
	TotalEarnings float64           `json:"totalEarnings"`
}

// Breakdown scores every task once and reports per-task detail. Totals agree
// with TotalExperimentScore and TotalEarnings.
func (s *ScoringService) Breakdown(assignment *experiment.Assignment) (*Breakdown, error) {
	out := &Breakdown{
		AssignmentID: assignment.ID(),
		Tasks:        make([]TaskBreakdown, 0, len(assignment.Tasks)),
	}
	for taskN, task := range assignment.Tasks {
		result, err := s.TotalTaskScore(taskN, assignment)
		if err != nil {
			return nil, err
		}
		bonus, err := experiment.CalculateBonus(result.TotalScore, task)
		if err != nil {
			return nil, fmt.Errorf("task %d: %w", taskN, err)
		}
		out.Tasks = append(out.Tasks, TaskBreakdown{
			TaskIndex:  taskN,
			BonusRound: result.BonusRound,
			Scored:     task.IsTestingRound(result.BonusRound),
			Score:      result.TotalScore,
			Bonus:      bonus,
		})
		out.TotalScore += result.TotalScore
		out.TotalEarnings += bonus
	}
	return out, nil
}
