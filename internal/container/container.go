package container

import (
	"context"
	"fmt"

	"bayesbet/adapters/db/postgres/migrations"
	"bayesbet/adapters/excel"
	"bayesbet/adapters/memory"
	"bayesbet/adapters/postgres"
	"bayesbet/app"
	"bayesbet/internal"
	"bayesbet/internal/config"
	"bayesbet/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB *sqlx.DB

	// Adapters
	GameRepo ports.GameStateRepository
	Reader   *excel.DataReader

	// Services
	GameService *app.GameService
}

// New wires the in-memory store. Call Connect to switch to postgres when
// DATABASE_URL is configured.
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	logger := internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))
	c := &Container{
		Config:   cfg,
		Logger:   logger,
		GameRepo: memory.NewGameStateRepository(),
		Reader:   excel.NewDataReader(logger),
	}
	c.initServices()
	return c, nil
}

// Connect opens the configured database, if any, and moves game storage
// onto it. Without DATABASE_URL it is a no-op.
func (c *Container) Connect(ctx context.Context) error {
	if !c.Config.Database.Enabled() {
		c.Logger.Debug("DATABASE_URL not set, games are kept in memory")
		return nil
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", c.Config.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := c.InitWithDatabase(ctx, db); err != nil {
		db.Close()
		return err
	}
	return nil
}

// InitWithDatabase migrates the schema and swaps in the postgres repository
func (c *Container) InitWithDatabase(ctx context.Context, db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection test failed: %w", err)
	}
	if err := migrations.NewMigrator(db.DB, c.Logger).Up(ctx); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	c.DB = db
	c.GameRepo = postgres.NewGameStateRepository(db)
	c.initServices()

	c.Logger.Info("container initialized with database connection")
	return nil
}

func (c *Container) initServices() {
	c.GameService = app.NewGameService(c.GameRepo, c.Reader, c.Reader, c.Config, c.Logger)
}

// Close releases the database connection, if one was opened
func (c *Container) Close() error {
	if c.DB == nil {
		return nil
	}
	err := c.DB.Close()
	c.DB = nil
	return err
}
