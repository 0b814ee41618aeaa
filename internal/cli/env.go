package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/audioctl/internal/catalog"
	"github.com/roach88/audioctl/internal/config"
	"github.com/roach88/audioctl/internal/endpoint"
	"github.com/roach88/audioctl/internal/ir"
	"github.com/roach88/audioctl/internal/logging"
	"github.com/roach88/audioctl/internal/platform"
	"github.com/roach88/audioctl/internal/store"
	"github.com/roach88/audioctl/internal/vendor"
)

// Env is everything a device command needs, built from flags and config.
type Env struct {
	Config    config.Config
	Logger    *slog.Logger
	Catalog   *catalog.Store
	Service   *vendor.Service
	Sessions  *store.Store
	Formatter *OutputFormatter

	fixture *platform.Fixture
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// loadConfig resolves the config file and applies flag overrides.
func loadConfig(opts *RootOptions) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return cfg, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.CatalogPath != "" {
		cfg.Catalog = opts.CatalogPath
	}
	if opts.SessionDB != "" {
		cfg.SessionDB = opts.SessionDB
	}
	if opts.Verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

// openEnv wires config, logging, the platform backend, the catalog and
// the optional session log into a vendor service. Callers must Close it.
func openEnv(opts *RootOptions, cmd *cobra.Command) (*Env, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Writer: cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid log settings", err)
	}

	env := &Env{
		Config:    cfg,
		Logger:    logger,
		Formatter: newFormatter(opts, cmd),
	}

	var sys *platform.System
	if opts.FixturePath != "" {
		fx, err := platform.LoadFixture(opts.FixturePath)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to load registry fixture", err)
		}
		env.fixture = fx
		sys, _ = fx.Simulated()
		logger.Debug("using simulated registry", "fixture", opts.FixturePath)
	} else {
		sys, err = platform.NewSystem()
		if errors.Is(err, platform.ErrUnsupported) {
			return nil, WrapExitError(ExitCommandError, "no platform backend on this OS; pass --registry-fixture", err)
		}
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to open platform backend", err)
		}
	}

	env.Catalog = catalog.NewStore(cfg.Catalog,
		catalog.WithQuorumPolicy(cfg.QuorumPolicy()),
		catalog.WithLogger(logger))

	svcOpts := append(cfg.ServiceOptions(platform.WallClock{}), vendor.WithLogger(logger))
	if cfg.SessionDB != "" {
		st, err := store.Open(cfg.SessionDB)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to open session log", err)
		}
		env.Sessions = st
		svcOpts = append(svcOpts, vendor.WithSessionLog(st, nil))
	}
	env.Service = vendor.New(env.Catalog, sys, svcOpts...)
	return env, nil
}

// Close releases the session log.
func (e *Env) Close() error {
	if e.Sessions == nil {
		return nil
	}
	return e.Sessions.Close()
}

// endpointFlags selects the target endpoint of a device command.
type endpointFlags struct {
	ID   string
	Flow string
	Name string
}

func (f *endpointFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.ID, "id", "", "endpoint device ID (required)")
	_ = cmd.MarkFlagRequired("id")
	cmd.Flags().StringVar(&f.Flow, "flow", "playback", "endpoint flow (playback|recording)")
	cmd.Flags().StringVar(&f.Name, "name", "", "friendly name recorded in catalog notes")
}

// resolve builds the endpoint. A fixture-declared device supplies the
// flow and name unless the flags set them.
func (f *endpointFlags) resolve(cmd *cobra.Command, env *Env) (endpoint.Endpoint, error) {
	flow, err := ir.ParseFlow(f.Flow)
	if err != nil {
		return endpoint.Endpoint{}, NewExitError(ExitCommandError, err.Error())
	}
	ep := endpoint.Endpoint{ID: f.ID, Flow: flow, Name: f.Name}
	if env.fixture != nil {
		if declared, ok := env.fixture.Endpoint(f.ID); ok {
			if !cmd.Flags().Changed("flow") {
				ep.Flow = declared.Flow
			}
			if ep.Name == "" {
				ep.Name = declared.Name
			}
		}
	}
	if ep.Name == "" {
		ep.Name = ep.ID
	}
	if _, ok := ep.Key(); !ok {
		return ep, NewExitError(ExitCommandError, fmt.Sprintf("device id %q has no endpoint GUID", f.ID))
	}
	return ep, nil
}
