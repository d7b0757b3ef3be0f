package scheduler

import (
	"time"

	"github.com/campuskit/utilitrack/internal/config"
)

// Config controls the sweep interval and per-pair evaluation budget. The
// zero value runs the sweep with the defaults; Disabled opts out.
type Config struct {
	RunInterval time.Duration
	PairTimeout time.Duration
	Disabled    bool
}

func DefaultConfig() Config {
	return Config{
		RunInterval: time.Minute,
		PairTimeout: 30 * time.Second,
	}
}

// FromAppConfig maps the application scheduler settings onto sweep config.
func FromAppConfig(appCfg config.Config) Config {
	return Config{
		RunInterval: appCfg.Scheduler.RunInterval,
		PairTimeout: appCfg.Scheduler.PairTimeout,
		Disabled:    !appCfg.Scheduler.Enabled,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.PairTimeout <= 0 {
		c.PairTimeout = defaults.PairTimeout
	}
	return c
}
