package drupal

import (
	"github.com/rs/zerolog"

	"github.com/jhu-idc/idce2e/internal/poll"
)

// settings are shared by every page driver in this package.
type settings struct {
	poller       *poll.Poller
	logger       zerolog.Logger
	policy       BenignPolicy
	artifactsDir string
}

// Option configures a page driver.
type Option func(*settings)

// WithPoller sets the poller used for waits. Its timeout is the default
// deadline of every wait that is not given one explicitly.
func WithPoller(p *poll.Poller) Option {
	return func(s *settings) {
		if p != nil {
			s.poller = p
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// WithBenignPolicy sets the policy deciding which error banner messages a
// migration, login or media save may ignore.
func WithBenignPolicy(policy BenignPolicy) Option {
	return func(s *settings) {
		if policy != nil {
			s.policy = policy
		}
	}
}

// WithArtifactsDir sets where failure screenshots are written. Empty disables
// screenshots.
func WithArtifactsDir(dir string) Option {
	return func(s *settings) { s.artifactsDir = dir }
}

func newSettings(component string, opts []Option) settings {
	s := settings{
		poller: poll.New(0),
		logger: zerolog.Nop(),
		policy: DefaultBenignPolicy(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	s.logger = s.logger.With().Str("component", component).Logger()
	return s
}
