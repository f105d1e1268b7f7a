package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/gorm"

	"github.com/user/opsboard/internal/config"
	"github.com/user/opsboard/internal/database"
	"github.com/user/opsboard/internal/logger"
	"github.com/user/opsboard/internal/session"
	"github.com/user/opsboard/internal/views"
	"github.com/user/opsboard/pkg/opsapi"
)

var ErrNotLoggedIn = errors.New("not logged in, run `opsboard login` first")

// Options are the global command-line settings shared by every command.
type Options struct {
	ConfigFile string
	Debug      bool
	// LogToFile sends logs to the configured log file instead of stderr.
	// The interactive dashboard needs this because it owns the terminal.
	LogToFile bool
}

// App holds everything a command needs, wired together.
type App struct {
	Config  *config.Config
	DB      *gorm.DB
	Client  *opsapi.Client
	Session *session.Manager
	Actions *database.ActionLog
	Engine  *views.Engine

	logFile *os.File
}

func Open(ctx context.Context, opts Options) (*App, error) {
	logger.SetDebug(opts.Debug)

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	a := &App{Config: cfg}

	if opts.LogToFile {
		f, err := openLogFile(cfg.LogFile)
		if err != nil {
			return nil, err
		}
		a.logFile = f
		logger.SetOutput(f)
	}

	db, err := database.NewSQLiteDB(cfg.StatePath)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("initializing database: %w", err)
	}
	a.DB = db

	a.Client = opsapi.NewClient(cfg.APIURL, cfg.RequestTimeout)
	a.Session = session.NewManager(a.Client, database.NewTokenStore(db, a.Client.BaseURL()))
	a.Client.SetCredentials(a.Session)
	a.Actions = database.NewActionLog(db)
	a.Engine = views.NewEngine(cfg.Language())

	if err := a.Session.Restore(ctx); err != nil {
		logger.Warn().Err(err).Msg("Could not restore session")
	}

	logger.Debug().
		Str("api_url", cfg.APIURL).
		Str("state_path", cfg.StatePath).
		Bool("authenticated", a.Session.Authenticated()).
		Msg("Application initialized")

	return a, nil
}

// RequireSession fails unless a token is available.
func (a *App) RequireSession() error {
	if !a.Session.Authenticated() {
		return ErrNotLoggedIn
	}
	return nil
}

// FindTarget resolves a target by key, optionally restricted to one type.
// An empty key picks the only target of that type, if there is exactly one.
func (a *App) FindTarget(ctx context.Context, key string, typ opsapi.TargetType) (opsapi.Target, error) {
	targets, err := a.Client.Targets(ctx)
	if err != nil {
		return opsapi.Target{}, fmt.Errorf("listing targets: %w", err)
	}

	var candidates []opsapi.Target
	for _, t := range targets {
		if typ != "" && t.Type != typ {
			continue
		}
		if key != "" && t.Key != key {
			continue
		}
		candidates = append(candidates, t)
	}

	switch {
	case len(candidates) == 1:
		return candidates[0], nil
	case len(candidates) == 0 && key != "":
		return opsapi.Target{}, fmt.Errorf("no %s target with key %q", typ, key)
	case len(candidates) == 0:
		return opsapi.Target{}, fmt.Errorf("no %s targets available", typ)
	default:
		return opsapi.Target{}, fmt.Errorf("%d %s targets available, choose one with --target", len(candidates), typ)
	}
}

func (a *App) Close() error {
	var errs []error
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	if a.logFile != nil {
		logger.SetOutput(os.Stderr)
		errs = append(errs, a.logFile.Close())
	}
	return errors.Join(errs...)
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, nil
}

// Explain turns client errors into messages that tell the user what to do.
func (a *App) Explain(err error) error {
	switch {
	case err == nil:
		return nil
	case opsapi.IsUnauthorized(err):
		return fmt.Errorf("session expired, run `opsboard login`: %w", err)
	case opsapi.IsNetwork(err):
		return fmt.Errorf("cannot reach %s: %w", a.Config.APIURL, err)
	}
	return err
}
