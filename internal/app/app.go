package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vk/boardsmith/internal/artifactcache"
	"github.com/vk/boardsmith/internal/boards"
	"github.com/vk/boardsmith/internal/catalog"
	"github.com/vk/boardsmith/internal/config"
	"github.com/vk/boardsmith/internal/ctxlog"
	"github.com/vk/boardsmith/internal/executor"
	"github.com/vk/boardsmith/internal/source"
)

// App encapsulates the application's dependencies and settings.
type App struct {
	logger   *slog.Logger
	settings *config.Settings
	catalog  catalog.Catalog
	boards   boards.Database
	locator  source.Locator
	runner   executor.Runner
	project  executor.ProjectRunner
	cache    *artifactcache.Cache

	catalogSet bool
}

// Option customises an App. Options exist mainly so tests can substitute
// collaborators.
type Option func(*App)

// WithSettings skips settings discovery and uses s as-is.
func WithSettings(s *config.Settings) Option {
	return func(a *App) { a.settings = s }
}

// WithCatalog replaces the built-in library catalog. Library declarations
// from the settings are still applied on top of it.
func WithCatalog(c catalog.Catalog) Option {
	return func(a *App) {
		a.catalog = c
		a.catalogSet = true
	}
}

// WithBoards replaces the boards.txt database.
func WithBoards(db boards.Database) Option {
	return func(a *App) { a.boards = db }
}

// WithLocator replaces the filesystem source locator.
func WithLocator(l source.Locator) Option {
	return func(a *App) { a.locator = l }
}

// WithRunner replaces the process-spawning build runner.
func WithRunner(r executor.Runner) Option {
	return func(a *App) { a.runner = r }
}

// WithProjectRunner replaces the runner used for the project build.
func WithProjectRunner(r executor.ProjectRunner) Option {
	return func(a *App) { a.project = r }
}

// NewApp is the constructor for the main application. Logs go to logW.
// Settings are layered from defaults, the loader's files and the
// environment unless WithSettings is given.
func NewApp(logW io.Writer, cfg *Config, loader config.Loader, opts ...Option) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	a := &App{logger: logger}
	for _, opt := range opts {
		opt(a)
	}

	if a.settings == nil {
		settings, err := loadSettings(ctx, cfg, loader)
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		a.settings = settings
	}
	logger.Debug("Configuration loaded.")

	if !a.catalogSet {
		a.catalog = catalog.Default()
	}
	a.catalog = a.catalog.With(a.settings.Libraries)

	if a.locator == nil {
		locator, err := source.NewFSLocator(a.settings.ArduinoRoot)
		if err != nil {
			return nil, err
		}
		a.locator = locator
	}
	if a.runner == nil || a.project == nil {
		cmd := &executor.CommandRunner{Tool: a.settings.BuildTool, ToolRoot: a.settings.ToolRoot}
		if a.runner == nil {
			a.runner = cmd
		}
		if a.project == nil {
			a.project = cmd
		}
	}
	a.cache = artifactcache.New(a.settings.CompileRoot)

	logger.Debug("App initialised.", "libraries", len(a.catalog.Libraries()), "compile_root", a.cache.Root())
	return a, nil
}

func loadSettings(ctx context.Context, cfg *Config, loader config.Loader) (*config.Settings, error) {
	logger := ctxlog.FromContext(ctx)

	if err := config.LoadDotEnv(ctx, cfg.DotEnvPaths...); err != nil {
		return nil, err
	}

	model := config.Defaults()
	fileModel, err := loader.Load(ctx, cfg.SettingsPaths...)
	if err != nil {
		return nil, err
	}
	model.Merge(fileModel)

	envModel, err := config.FromEnv(os.LookupEnv)
	if err != nil {
		return nil, err
	}
	model.Merge(envModel)

	home, err := os.UserHomeDir()
	if err != nil {
		logger.Warn("Home directory unknown, '~' will not be expanded.", "error", err)
		home = "~"
	}
	return config.Resolve(ctx, model, home)
}

// Settings returns the resolved settings.
func (a *App) Settings() *config.Settings {
	return a.settings
}

// withLogger attaches the app's logger to ctx.
func (a *App) withLogger(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}

// boardDB loads boards.txt on first use; most commands never need it.
func (a *App) boardDB(ctx context.Context) (boards.Database, error) {
	if a.boards != nil {
		return a.boards, nil
	}
	db, err := boards.Load(ctx, a.settings.ArduinoRoot, a.settings.ArduinoVersion)
	if err != nil {
		return nil, err
	}
	a.boards = db
	return db, nil
}
