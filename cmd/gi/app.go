// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"

	"github.com/charmbracelet/log"

	"github.com/gi-cli/gi/internal/cache"
	"github.com/gi-cli/gi/internal/catalog"
	"github.com/gi-cli/gi/internal/clock"
	"github.com/gi-cli/gi/internal/config"
	"github.com/gi-cli/gi/internal/detect"
	"github.com/gi-cli/gi/internal/fetch"
	"github.com/gi-cli/gi/internal/issue"
	"github.com/gi-cli/gi/internal/metrics"
	"github.com/gi-cli/gi/internal/names"
)

type (
	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer; every command handler receives an App and builds
	// a session from it.
	App struct {
		Config     ConfigProvider
		HTTPClient *http.Client
		Clock      clock.Clock
		Getenv     func(string) string
		LookPath   func(string) (string, error)
		// ConfigDir overrides the platform config directory.
		ConfigDir string
		// WorkDir is the directory scanned by auto-detection.
		WorkDir string
		stdout  io.Writer
		stderr  io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config     ConfigProvider
		HTTPClient *http.Client
		Clock      clock.Clock
		Getenv     func(string) string
		LookPath   func(string) (string, error)
		ConfigDir  string
		WorkDir    string
		Stdout     io.Writer
		Stderr     io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// globalFlags are the persistent flags shared by every command.
	globalFlags struct {
		configPath  string
		verbose     bool
		offline     bool
		noCache     bool
		updateIndex bool
		from        string
		metricsFile string
		cacheDir    string
	}

	// session holds the services built for one invocation.
	session struct {
		cfg         *config.Config
		verbose     bool
		logger      *log.Logger
		store       *cache.Store
		client      *catalog.Client
		metrics     *metrics.Recorder
		engine      *fetch.Engine
		metricsFile string
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.HTTPClient == nil {
		deps.HTTPClient = http.DefaultClient
	}
	if deps.Clock == nil {
		deps.Clock = clock.Real{}
	}
	if deps.Getenv == nil {
		deps.Getenv = os.Getenv
	}
	if deps.LookPath == nil {
		deps.LookPath = exec.LookPath
	}
	if deps.WorkDir == "" {
		deps.WorkDir = "."
	}

	return &App{
		Config:     deps.Config,
		HTTPClient: deps.HTTPClient,
		Clock:      deps.Clock,
		Getenv:     deps.Getenv,
		LookPath:   deps.LookPath,
		ConfigDir:  deps.ConfigDir,
		WorkDir:    deps.WorkDir,
		stdout:     deps.Stdout,
		stderr:     deps.Stderr,
	}, nil
}

// loadConfig loads the configuration honoring --config.
func (a *App) loadConfig(ctx context.Context, g *globalFlags) (*config.Config, error) {
	return a.Config.Load(ctx, config.LoadOptions{
		ConfigFilePath: g.configPath,
		ConfigDirPath:  a.ConfigDir,
		Getenv:         a.Getenv,
	})
}

// configDir returns the directory holding config.cue and aliases.jsonc.
func (a *App) configDir() (string, error) {
	if a.ConfigDir != "" {
		return a.ConfigDir, nil
	}
	return config.ConfigDir()
}

// newLogger returns the CLI logger: debug level when verbose, warnings otherwise.
func newLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix: "gi",
		Level:  level,
	})
}

// newSession loads configuration and builds the cache, catalog client,
// metrics recorder and fetch engine for one command.
func (a *App) newSession(ctx context.Context, g *globalFlags) (*session, error) {
	cfg, err := a.loadConfig(ctx, g)
	if err != nil {
		return nil, err
	}

	verbose := g.verbose || cfg.UI.Verbose
	logger := newLogger(a.stderr, verbose)

	cacheDir := g.cacheDir
	if cacheDir == "" {
		if cacheDir, err = cfg.ResolvedCacheDir(); err != nil {
			return nil, fmt.Errorf("resolving cache directory: %w", err)
		}
	}

	src := cfg.Source
	if g.from != "" {
		ref, err := parseSource(g.from)
		if err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("parse --from").
				WithResource(g.from).
				WithSuggestion("Use owner/repo, owner/repo@ref or https://github.com/owner/repo").
				Wrap(err).
				BuildError()
		}
		src = ref.apply(src)
		// Each source gets its own cache so names never mix across repositories.
		cacheDir = sourceCacheDir(cacheDir, ref)
	}

	cfgDir, err := a.configDir()
	if err != nil {
		return nil, err
	}
	userAliases, err := cfg.UserAliases(cfgDir)
	if err != nil {
		return nil, err
	}

	store := cache.New(cacheDir, cache.WithClock(a.Clock), cache.WithLogger(logger))
	client := catalog.NewClient(
		catalog.WithHTTPClient(a.HTTPClient),
		catalog.WithAPIURL(src.APIURL),
		catalog.WithRepo(src.Owner, src.Repo),
		catalog.WithRef(src.Ref),
		catalog.WithDirectories(src.Directories...),
		catalog.WithToken(src.Token),
		catalog.WithUserAgent("gi/"+Version),
		catalog.WithTimeout(cfg.NetworkTimeout),
	)
	rec := metrics.New()

	engine := fetch.NewEngine(client, store,
		fetch.WithTTL(cfg.CacheTTL),
		fetch.WithCatalogTTL(cfg.CatalogTTL),
		fetch.WithWorkers(cfg.Workers),
		fetch.WithAliases(names.MergeAliases(names.DefaultAliases(), userAliases)),
		fetch.WithLogger(logger),
		fetch.WithMetrics(rec),
		fetch.WithOffline(g.offline),
		fetch.WithNoCache(g.noCache),
		fetch.WithRefreshCatalog(g.updateIndex),
	)

	metricsFile := g.metricsFile
	if metricsFile == "" {
		metricsFile = cfg.MetricsFile
	}

	logger.Debug("session ready", "cache", cacheDir, "source", client.Source(), "config", cfg.Path)
	return &session{
		cfg:         cfg,
		verbose:     verbose,
		logger:      logger,
		store:       store,
		client:      client,
		metrics:     rec,
		engine:      engine,
		metricsFile: metricsFile,
	}, nil
}

// close writes the metrics textfile when one is configured. Failures are
// logged; they never change the command's outcome.
func (s *session) close() {
	if s == nil || s.metricsFile == "" {
		return
	}
	if err := s.metrics.WriteTextfile(s.metricsFile); err != nil {
		s.logger.Warn("could not write metrics", "path", s.metricsFile, "error", err)
	}
}

// detector returns the auto-detector for the working directory.
func (a *App) detector() *detect.Detector {
	return detect.New(detect.WithDir(a.WorkDir), detect.WithLookPath(a.LookPath))
}
