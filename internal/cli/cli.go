// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/sandy-sp/ollama-scout/internal/benchmark"
	"github.com/sandy-sp/ollama-scout/internal/catalog"
	"github.com/sandy-sp/ollama-scout/internal/config"
	"github.com/sandy-sp/ollama-scout/internal/detect"
	"github.com/sandy-sp/ollama-scout/internal/logging"
	"github.com/sandy-sp/ollama-scout/internal/ollama"
	"github.com/sandy-sp/ollama-scout/internal/storage"
)

// =============================================================================
// COLLABORATORS
// =============================================================================

// ModelRunner is the local ollama binary.
type ModelRunner interface {
	Installed() bool
	Version(ctx context.Context) (string, error)
	ListPulled(ctx context.Context) []string
	ListPulledTags(ctx context.Context) []string
	Pull(ctx context.Context, model string, stdout, stderr io.Writer) error
	Run(ctx context.Context, model, prompt string) (string, error)
	StartServer(ctx context.Context) error
}

// ServerProbe checks the local ollama HTTP server.
type ServerProbe interface {
	CheckRunning(ctx context.Context) error
}

// CatalogLoader produces the model catalog.
type CatalogLoader interface {
	Load(ctx context.Context, opts catalog.LoadOptions) (*catalog.LoadResult, error)
}

// Store persists the catalog snapshot and benchmark history.
type Store interface {
	catalog.Cache
	benchmark.History
	Close() error
}

// App holds the state shared by every command. Nil collaborators are built
// from the effective settings on first use.
type App struct {
	Version string

	In  io.Reader
	Out io.Writer
	Err io.Writer

	Hardware func(ctx context.Context) *detect.HardwareProfile
	Runner   ModelRunner
	Server   ServerProbe
	Loader   CatalogLoader
	Store    Store
	// DiskFree returns free space in GB for a path.
	DiskFree func(path string) (float64, error)
	// Dial checks internet reachability.
	Dial func(ctx context.Context) error
	Now  func() time.Time

	// Global flags
	verbose bool
	noColor bool
	profile string

	cfg      *config.Config
	cfgPath  string
	cfgErr   error
	settings config.Settings
	log      zerolog.Logger

	storeOpened bool
	// built tracks collaborators created here so a reload can rebuild them.
	built struct{ runner, server, loader bool }
}

// NewApp creates an App writing to the process streams.
func NewApp(version string) *App {
	return &App{
		Version: version,
		In:      os.Stdin,
		Out:     os.Stdout,
		Err:     os.Stderr,
		log:     zerolog.Nop(),
	}
}

// =============================================================================
// ROOT COMMAND
// =============================================================================

// NewRootCommand builds the command tree. Running the root without a
// subcommand starts the guided session when given -i, or when no flags are
// set and a terminal is attached. Otherwise it behaves like "recommend".
func (a *App) NewRootCommand() *cobra.Command {
	opts := &recommendOptions{}
	var interactive bool
	cmd := &cobra.Command{
		Use:   "ollama-scout",
		Short: "Scan your hardware and find compatible Ollama LLMs",
		Long: `ollama-scout inspects this machine's GPUs, CPU and RAM, scores every model
in the Ollama library against them and recommends the ones that will run well.`,
		Version:       a.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if interactive || (cmd.Flags().NFlag() == 0 && CanPrompt(a.In, a.Out)) {
				return a.runInteractive(cmd)
			}
			return a.runRecommend(cmd, opts)
		},
	}
	cmd.SetIn(a.In)
	cmd.SetOut(a.Out)
	cmd.SetErr(a.Err)

	pf := cmd.PersistentFlags()
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	pf.BoolVar(&a.noColor, "no-color", false, "Disable colored output")
	pf.StringVar(&a.profile, "profile", "", "Use a named config profile for this run")

	bindRecommendFlags(cmd, opts)
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Start a guided step-by-step session")

	cmd.AddCommand(a.newRecommendCommand())
	cmd.AddCommand(a.newModelCommand())
	cmd.AddCommand(a.newCompareCommand())
	cmd.AddCommand(a.newBenchmarkCommand())
	cmd.AddCommand(a.newPullCommand())
	cmd.AddCommand(a.newUpdateModelsCommand())
	cmd.AddCommand(a.newDoctorCommand())
	cmd.AddCommand(a.newConfigCommand())
	cmd.AddCommand(a.newProfileCommand())
	cmd.AddCommand(a.newVersionCommand())

	return cmd
}

// Execute runs the CLI and returns the process exit code.
func Execute(version string) int {
	a := NewApp(version)
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := a.NewRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		DisplayError(a.Err, err, false)
		return GetExitCode(err)
	}
	return ExitSuccess
}

// Close releases the store.
func (a *App) Close() {
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			a.log.Debug().Err(err).Msg("closing store")
		}
	}
}

// =============================================================================
// SETUP
// =============================================================================

// setup loads config, resolves the effective settings for this run and
// builds the logger.
func (a *App) setup() error {
	if a.noColor {
		ForceColorsEnabled(false)
	}

	path, err := config.Path()
	if err != nil {
		return &CommandError{Command: "config", Action: "locate", Reason: "cannot resolve config path", Err: err}
	}
	a.cfgPath = path
	a.cfg, a.cfgErr = config.LoadFromPath(path)

	settings, err := a.cfg.Effective(a.profile)
	if err != nil {
		return err
	}
	settings.ApplyEnvOverrides()
	a.settings = settings

	a.log = logging.New(logging.Options{
		Level:   settings.LogLevel,
		Verbose: a.verbose,
		NoColor: a.noColor || !ColorsEnabled(),
		Out:     a.Err,
	})
	switch {
	case errors.Is(a.cfgErr, config.ErrActiveProfileMissing):
		a.log.Warn().Err(a.cfgErr).Msg("using base settings")
	case a.cfgErr != nil:
		a.log.Warn().Err(a.cfgErr).Msg("using default settings")
	}
	if a.Now == nil {
		a.Now = time.Now
	}
	return nil
}

// reload re-reads the config file for --watch and drops collaborators
// that were built from the previous settings.
func (a *App) reload() error {
	if a.built.runner {
		a.Runner, a.built.runner = nil, false
	}
	if a.built.server {
		a.Server, a.built.server = nil, false
	}
	if a.built.loader {
		a.Loader, a.built.loader = nil, false
	}
	return a.setup()
}

// =============================================================================
// LAZY COLLABORATORS
// =============================================================================

func (a *App) hardware(ctx context.Context) *detect.HardwareProfile {
	if a.Hardware != nil {
		return a.Hardware(ctx)
	}
	return detect.DetectCached(ctx)
}

func (a *App) client() *ollama.Client {
	return ollama.NewClient(a.settings.OllamaHost)
}

func (a *App) runner() ModelRunner {
	if a.Runner == nil {
		a.Runner = ollama.NewRunner(a.client(), logging.Component(a.log, "ollama"))
		a.built.runner = true
	}
	return a.Runner
}

func (a *App) server() ServerProbe {
	if a.Server == nil {
		a.Server = a.client()
		a.built.server = true
	}
	return a.Server
}

// store opens the SQLite store once. A store that cannot be opened
// disables caching and history rather than failing the command.
func (a *App) store() Store {
	if a.Store != nil || a.storeOpened {
		return a.Store
	}
	a.storeOpened = true

	path, err := config.DBPath()
	if err != nil {
		a.log.Warn().Err(err).Msg("store disabled")
		return nil
	}
	s, err := storage.Open(path)
	if err != nil {
		a.log.Warn().Err(err).Str("path", path).Msg("store disabled")
		return nil
	}
	a.Store = s
	return a.Store
}

func (a *App) loader() CatalogLoader {
	if a.Loader != nil {
		return a.Loader
	}
	log := logging.Component(a.log, "catalog")
	fcfg := catalog.DefaultFetcherConfig()
	if a.settings.CatalogURL != "" {
		fcfg.URL = a.settings.CatalogURL
	}
	fetcher := catalog.NewFetcher(fcfg, log)

	var cache catalog.Cache
	if s := a.store(); s != nil {
		cache = s
	}
	overlay, err := config.OverlayPath()
	if err != nil {
		overlay = ""
	}

	ttl := time.Duration(a.settings.CacheTTLHours) * time.Hour
	a.Loader = catalog.NewLoader(fetcher, cache, ttl, a.settings.CatalogLimit, overlay, log)
	a.built.loader = true
	return a.Loader
}

func (a *App) measurer() *benchmark.Measurer {
	timeout := time.Duration(a.settings.BenchmarkTimeoutSecs) * time.Second
	m := benchmark.NewMeasurer(a.runner(), timeout, logging.Component(a.log, "benchmark"))
	if s := a.store(); s != nil {
		m.WithHistory(s)
	}
	return m
}

func (a *App) diskFree(path string) (float64, error) {
	if a.DiskFree != nil {
		return a.DiskFree(path)
	}
	return detect.FreeDiskGB(path)
}

// =============================================================================
// OUTPUT HELPERS
// =============================================================================

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.Out, format, args...)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.Out, args...)
}

func (a *App) info(msg string) {
	fmt.Fprintf(a.Out, "%s %s\n", InfoStyle.Render("[i]"), msg)
}

func (a *App) success(msg string) {
	fmt.Fprintf(a.Out, "%s %s\n", SuccessStyle.Render("[OK]"), msg)
}

func (a *App) warn(msg string) {
	fmt.Fprintf(a.Err, "%s %s\n", WarningStyle.Render("[!!]"), msg)
}
