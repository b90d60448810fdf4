package container

import (
	"context"
	"fmt"

	"forecastbonus/adapters/postgres"
	"forecastbonus/adapters/rng"
	"forecastbonus/app"
	"forecastbonus/internal"
	"forecastbonus/internal/accuracy"
	"forecastbonus/internal/api"
	"forecastbonus/internal/config"
	"forecastbonus/internal/errors"
	"forecastbonus/internal/migration"
	"forecastbonus/ports"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB  *sqlx.DB
	RNG ports.RNGPort

	// Repositories (data access layer); nil without a database
	AssignmentRepo ports.AssignmentRepository
	PayoutRepo     ports.PayoutRepository

	// Services
	Scoring  *app.ScoringService
	Payouts  *app.PayoutService
	Analyzer *accuracy.Analyzer
}

// New creates a new dependency injection container with the stateless
// services wired
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	logger := internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))
	internal.DefaultLogger = logger

	c := &Container{
		Config:   cfg,
		Logger:   logger,
		RNG:      rng.NewAdapter(),
		Analyzer: accuracy.NewAnalyzer(),
	}
	c.Scoring = app.NewScoringService(c.RNG,
		app.WithDefaultSeed(cfg.Scoring.DefaultSeed),
		app.WithLogger(logger.With("scoring")))
	c.initPayouts()

	return c, nil
}

// Connect opens the configured database, applies migrations and wires the
// repositories. It is a no-op when no database is configured.
func (c *Container) Connect(ctx context.Context) error {
	if !c.Config.Database.Enabled() {
		c.Logger.Info("no DATABASE_URL configured, running without storage")
		return nil
	}

	db, err := sqlx.Connect("postgres", c.Config.Database.URL)
	if err != nil {
		return errors.DatabaseError("failed to connect to database", err)
	}
	db.SetMaxOpenConns(c.Config.Database.MaxOpenConns)
	db.SetConnMaxLifetime(c.Config.Database.ConnMaxLifetime)

	if err := migration.NewRunner().Run(ctx, db); err != nil {
		db.Close()
		return errors.Wrap(err, "failed to run migrations")
	}
	return c.InitWithDatabase(db)
}

// InitWithDatabase initializes components that require database access
func (c *Container) InitWithDatabase(db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}

	c.DB = db

	if err := db.Ping(); err != nil {
		return fmt.Errorf("database connection test failed: %w", err)
	}

	c.AssignmentRepo = postgres.NewAssignmentRepository(db)
	c.PayoutRepo = postgres.NewPayoutRepository(db)
	c.initPayouts()

	c.Logger.Info("container initialized with database connection")
	return nil
}

// UseRepositories wires externally provided repositories, such as in-memory
// stores
func (c *Container) UseRepositories(assignments ports.AssignmentRepository, payouts ports.PayoutRepository) {
	c.AssignmentRepo = assignments
	c.PayoutRepo = payouts
	c.initPayouts()
}

// Stored reports whether assignment storage is available
func (c *Container) Stored() bool {
	return c.AssignmentRepo != nil
}

func (c *Container) initPayouts() {
	c.Payouts = app.NewPayoutService(c.Scoring, c.AssignmentRepo, c.PayoutRepo, app.PayoutConfig{
		Currency:    c.Config.Payout.Currency,
		Concurrency: c.Config.Payout.Concurrency,
		PageSize:    c.Config.Payout.PageSize,
	})
}

// Router builds the HTTP router over the wired services
func (c *Container) Router() *gin.Engine {
	gin.SetMode(c.Config.Server.GinMode)
	return api.NewRouter(api.Handlers{
		Scoring: api.NewScoringHandler(c.Scoring, c.Analyzer),
		Payouts: api.NewPayoutHandler(c.Payouts, c.PayoutRepo),
		Stored:  c.Stored(),
	}, c.Logger.With("http"))
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
