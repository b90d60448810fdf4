package testkit

import (
	"encoding/binary"
	"math"
	"math/rand/v2"

	"forecastbonus/domain/experiment"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat/distuv"
)

// StudyGeneratorConfig configures the synthetic study generator
type StudyGeneratorConfig struct {
	Participants   int               `json:"participants"`
	Tasks          []experiment.Task `json:"tasks"`
	ProcessMean    float64           `json:"process_mean"`
	Persistence    float64           `json:"persistence"`
	ShockStdDev    float64           `json:"shock_std_dev"`
	ForecastStdDev float64           `json:"forecast_std_dev"`
	LongRunStdDev  float64           `json:"long_run_std_dev"`
	MissingRate    float64           `json:"missing_rate"` // share of entries left empty
	Seed           uint64            `json:"seed"`
}

// DefaultStudyConfig mirrors the standard two-horizon study: forty testing
// rounds predicting one and two periods ahead plus the long-run average.
func DefaultStudyConfig() StudyGeneratorConfig {
	return StudyGeneratorConfig{
		Participants: 10,
		Tasks: []experiment.Task{{
			ForecastMode:       "1+2",
			TrainingRounds:     0,
			TestingRounds:      40,
			Sigma:              20,
			BonusDivisor:       60,
			PredictLongRunning: true,
		}},
		ProcessMean:    0,
		Persistence:    0.8,
		ShockStdDev:    10,
		ForecastStdDev: 8,
		LongRunStdDev:  6,
		Seed:           42,
	}
}

// StudyGenerator produces assignments whose values follow an AR(1) process
// and whose predictions scatter around the realized values.
type StudyGenerator struct {
	config StudyGeneratorConfig
	src    *rand.ChaCha8
	rng    *rand.Rand
}

// NewStudyGenerator creates a generator; the same config always yields the
// same assignments, identifiers included.
func NewStudyGenerator(config StudyGeneratorConfig) *StudyGenerator {
	var seed [32]byte
	binary.LittleEndian.PutUint64(seed[:8], config.Seed)
	src := rand.NewChaCha8(seed)
	return &StudyGenerator{
		config: config,
		src:    src,
		rng:    rand.New(src),
	}
}

// GenerateAssignments generates one assignment per participant
func (g *StudyGenerator) GenerateAssignments() ([]*experiment.Assignment, error) {
	out := make([]*experiment.Assignment, 0, g.config.Participants)
	for i := 0; i < g.config.Participants; i++ {
		a, err := g.GenerateAssignment()
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// GenerateAssignment generates a single participant record
func (g *StudyGenerator) GenerateAssignment() (*experiment.Assignment, error) {
	id, err := uuid.NewRandomFromReader(g.src)
	if err != nil {
		return nil, err
	}

	a := &experiment.Assignment{
		Identifier: experiment.StringIdentifier(id.String()),
		Tasks:      append([]experiment.Task(nil), g.config.Tasks...),
	}
	for _, task := range g.config.Tasks {
		modes, err := task.ForecastModes()
		if err != nil {
			return nil, err
		}
		maxHorizon := 0
		for _, h := range modes {
			maxHorizon = max(maxHorizon, h)
		}

		values := g.process(experiment.HistoryLength + task.TotalRounds() + maxHorizon)
		a.Values = append(a.Values, values)
		a.Predictions = append(a.Predictions, g.predictions(task, modes, values))
		if task.PredictLongRunning {
			a.LongRunningAveragePredictionHistory = append(a.LongRunningAveragePredictionHistory, g.longRun(task))
		} else {
			a.LongRunningAveragePredictionHistory = append(a.LongRunningAveragePredictionHistory, nil)
		}
	}
	return a, nil
}

func (g *StudyGenerator) process(n int) experiment.Series {
	shock := distuv.Normal{Mu: 0, Sigma: g.config.ShockStdDev, Src: g.rng}
	values := make(experiment.Series, n)
	prev := g.config.ProcessMean
	for i := range values {
		prev = g.config.ProcessMean + g.config.Persistence*(prev-g.config.ProcessMean) + shock.Rand()
		values[i] = prev
	}
	return values
}

func (g *StudyGenerator) predictions(task experiment.Task, modes []int, values experiment.Series) experiment.Series {
	noise := distuv.Normal{Mu: 0, Sigma: g.config.ForecastStdDev, Src: g.rng}
	out := make(experiment.Series, task.TotalRounds()*experiment.SlotsPerRound)
	for i := range out {
		out[i] = math.NaN()
	}
	for roundN := 0; roundN < task.TotalRounds(); roundN++ {
		for i, h := range modes {
			if g.missing() {
				continue
			}
			actual := values[experiment.ActualIndex(roundN, h)]
			out[experiment.PredictionIndex(roundN, i)] = actual + noise.Rand()
		}
	}
	return out
}

func (g *StudyGenerator) longRun(task experiment.Task) experiment.Series {
	noise := distuv.Normal{Mu: experiment.LongRunTarget, Sigma: g.config.LongRunStdDev, Src: g.rng}
	out := make(experiment.Series, task.TotalRounds())
	for i := range out {
		if g.missing() {
			out[i] = math.NaN()
			continue
		}
		out[i] = noise.Rand()
	}
	return out
}

func (g *StudyGenerator) missing() bool {
	return g.config.MissingRate > 0 && g.rng.Float64() < g.config.MissingRate
}
