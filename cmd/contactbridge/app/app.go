// Package app provides the application context and dependency wiring for
// the contactbridge CLI: configuration, logging, and lazily constructed
// backend collaborators.
package app

import (
	"sync"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/agentstation/contactbridge"
	"github.com/agentstation/contactbridge/internal/directory/people"
	"github.com/agentstation/contactbridge/internal/store/gormstore"
	"github.com/agentstation/contactbridge/pkg/errors"
	"github.com/agentstation/contactbridge/pkg/logging"
)

// App represents the contactbridge application with its dependencies.
type App struct {
	version string
	commit  string
	date    string

	config *Config
	logger *zerolog.Logger

	// Lazily initialized backends, shared across commands.
	mu     sync.Mutex
	db     *gorm.DB
	bridge contactbridge.Bridge
	sink   *gormstore.LogSink
}

// New creates an App with the given version information.
func New(version, commit, date string) (*App, error) {
	config, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		config:  config,
	}

	logger := NewLogger(config)
	app.logger = &logger
	logging.SetDefault(logger)

	return app, nil
}

// Version returns the version string.
func (a *App) Version() string {
	return a.version
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// DB returns the shared database handle, opening and migrating it on
// first use.
func (a *App) DB() (*gorm.DB, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dbLocked()
}

func (a *App) dbLocked() (*gorm.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	if a.config.DSN == "" {
		return nil, errors.NewConfigError("dsn", "database DSN is required")
	}

	db, err := gormstore.Open(a.config.DSN)
	if err != nil {
		return nil, err
	}
	if err := gormstore.AutoMigrate(db); err != nil {
		return nil, err
	}
	a.db = db
	return db, nil
}

// Bridge returns the bridge instance, creating it lazily.
func (a *App) Bridge() (contactbridge.Bridge, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.bridge != nil {
		return a.bridge, nil
	}
	if a.config.APIBaseURL == "" {
		return nil, errors.NewConfigError("api_base_url", "directory API base URL is required")
	}

	db, err := a.dbLocked()
	if err != nil {
		return nil, err
	}
	a.sink = gormstore.NewLogSink(db)

	bridge, err := contactbridge.New(
		a.config.Bridge,
		contactbridge.WithDirectory(people.New(a.config.APIBaseURL, nil)),
		contactbridge.WithBufferStore(gormstore.NewStore(db)),
		contactbridge.WithLocker(gormstore.NewLock(db, a.config.LockName)),
		contactbridge.WithRunLog(a.sink),
	)
	if err != nil {
		return nil, err
	}
	a.bridge = bridge
	return bridge, nil
}

// RunLog returns the run-log sink, creating the database handle if needed.
func (a *App) RunLog() (*gormstore.LogSink, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.sink != nil {
		return a.sink, nil
	}
	db, err := a.dbLocked()
	if err != nil {
		return nil, err
	}
	a.sink = gormstore.NewLogSink(db)
	return a.sink, nil
}
