package cli

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jhu-idc/idce2e/internal/browser"
	"github.com/jhu-idc/idce2e/internal/config"
	"github.com/jhu-idc/idce2e/internal/drupal"
	"github.com/jhu-idc/idce2e/internal/flock"
	"github.com/jhu-idc/idce2e/internal/poll"
	"github.com/jhu-idc/idce2e/internal/tui"
)

// services are the side effects a command depends on.
type services struct {
	initLogger func(verbose, quiet bool) zerolog.Logger
	loadConfig func(ctx context.Context, overrides *config.Config) (*config.Config, error)
	openPage   func(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (browser.Page, func(), error)
	lockSite   func(cfg *config.Config, logger zerolog.Logger) (func(), error)
}

func defaultServices() services {
	return services{
		initLogger: InitLogger,
		loadConfig: config.LoadWithOverrides,
		openPage:   openChrome,
		lockSite:   lockSite,
	}
}

// lockSite takes the migration lock for the configured site.
func lockSite(cfg *config.Config, logger zerolog.Logger) (func(), error) {
	path, err := config.SiteLockPath(cfg.Site.BaseURL)
	if err != nil {
		return nil, err
	}
	lock, err := flock.Acquire(path)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("lock", path).Msg("acquired site lock")
	return func() {
		if err := lock.Release(); err != nil {
			logger.Warn().Err(err).Str("lock", path).Msg("failed to release site lock")
		}
	}, nil
}

// openChrome starts a Chrome session configured from cfg.
func openChrome(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (browser.Page, func(), error) {
	opts := browser.DefaultOptions()
	opts.Headless = cfg.Browser.Headless
	opts.ExecPath = cfg.Browser.ExecPath
	opts.Width = cfg.Browser.Width
	opts.Height = cfg.Browser.Height
	opts.ElementWait = cfg.Browser.ElementWait

	chrome, err := browser.NewChrome(ctx, opts, logger)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := chrome.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close browser")
		}
	}
	return chrome, closeFn, nil
}

// app carries the global flags and services into subcommands.
type app struct {
	flags *GlobalFlags
	svc   services
}

// env is what a running command works with.
type env struct {
	ctx    context.Context //nolint:containedctx // scoped to a single command run
	cfg    *config.Config
	out    tui.Output
	logger zerolog.Logger
	json   bool
}

// newEnv loads the configuration with the global flag overrides applied and
// creates the output for the selected format.
func (a *app) newEnv(cmd *cobra.Command) (*env, error) {
	out, err := a.output(cmd)
	if err != nil {
		return nil, err
	}

	logger := GetLogger()
	ctx := logger.WithContext(cmd.Context())

	cfg, err := a.svc.loadConfig(ctx, a.overrides())
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("headed") {
		cfg.Browser.Headless = !a.flags.Headed
	}

	return &env{ctx: ctx, cfg: cfg, out: out, logger: logger, json: a.flags.Output == OutputJSON}, nil
}

// output creates the Output for --output on the command's stdout.
func (a *app) output(cmd *cobra.Command) (tui.Output, error) {
	return tui.NewOutput(cmd.OutOrStdout(), a.flags.Output)
}

// overrides maps the global flags onto configuration keys.
func (a *app) overrides() *config.Config {
	o := &config.Config{}
	o.Site.BaseURL = a.flags.BaseURL
	o.Site.Username = a.flags.Username
	o.Poll.Timeout = a.flags.Timeout
	o.Browser.ArtifactsDir = a.flags.ArtifactsDir
	return o
}

// poller returns the poller every wait of the run shares.
func (e *env) poller() *poll.Poller {
	return poll.New(e.cfg.Poll.Timeout, poll.WithLogger(e.logger))
}

// driverOptions configures the drupal page drivers from the run's config.
func (e *env) driverOptions() []drupal.Option {
	return []drupal.Option{
		drupal.WithPoller(e.poller()),
		drupal.WithLogger(e.logger),
		drupal.WithBenignPolicy(drupal.MatchAny(e.cfg.Migration.BenignErrorPatterns...)),
		drupal.WithArtifactsDir(e.cfg.Browser.ArtifactsDir),
	}
}

// site is the site under test.
func (e *env) site() (drupal.Site, error) {
	return drupal.NewSite(e.cfg.Site.BaseURL)
}

// loggedIn opens a browser page, signs in with the configured account and
// returns the page with its close func.
func (a *app) loggedIn(e *env) (browser.Page, drupal.Site, func(), error) {
	site, err := e.site()
	if err != nil {
		return nil, drupal.Site{}, nil, err
	}
	page, closeFn, err := a.svc.openPage(e.ctx, e.cfg, e.logger)
	if err != nil {
		return nil, drupal.Site{}, nil, err
	}
	if err := drupal.NewSession(page, site, e.driverOptions()...).Login(e.ctx, e.cfg.Site.Username, e.cfg.Site.Password); err != nil {
		closeFn()
		return nil, drupal.Site{}, nil, err
	}
	return page, site, closeFn, nil
}
