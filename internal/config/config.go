package config

import (
	"fmt"
	"time"

	"github.com/roach88/audioctl/internal/engine"
	"github.com/roach88/audioctl/internal/platform"
	"github.com/roach88/audioctl/internal/rule"
	"github.com/roach88/audioctl/internal/vendor"
)

// Environment variables consulted by Load.
const (
	EnvConfig    = "AUDIOCTL_CONFIG"
	EnvDebug     = "AUDIOCTL_DEBUG"
	EnvConfirmed = "AUDIOCTL_LEARN_CONFIRMED"
)

// Config is the resolved configuration. Zero durations never reach
// callers; Default fills every field.
type Config struct {
	Catalog   string          `json:"catalog"`
	SessionDB string          `json:"session_db,omitempty"`
	Log       LogConfig       `json:"log"`
	Verify    VerifyConfig    `json:"verify"`
	Stability StabilityConfig `json:"stability"`
	Quorum    QuorumConfig    `json:"quorum"`
	Learn     LearnConfig     `json:"learn"`

	// Source is the file the values came from, empty for defaults.
	Source string `json:"source,omitempty"`
}

type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

type VerifyConfig struct {
	Timeout     time.Duration `json:"timeout"`
	Interval    time.Duration `json:"interval"`
	Consecutive int           `json:"consecutive"`
}

type StabilityConfig struct {
	Repeats int           `json:"repeats"`
	Delay   time.Duration `json:"delay"`
}

type QuorumConfig struct {
	Default float64 `json:"default"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
}

type LearnConfig struct {
	Settle    time.Duration `json:"settle"`
	Confirmed bool          `json:"confirmed"`
}

// Default returns the built-in configuration. Catalog is left empty;
// Load fills it from DefaultCatalogPath.
func Default() Config {
	return Config{
		Log: LogConfig{Level: "info", Format: "text"},
		Verify: VerifyConfig{
			Timeout:     engine.DefaultVerifyTimeout,
			Interval:    engine.DefaultVerifyInterval,
			Consecutive: engine.DefaultVerifyConsecutive,
		},
		Stability: StabilityConfig{
			Repeats: vendor.DefaultStabilityRepeats,
			Delay:   vendor.DefaultStabilityDelay,
		},
		Quorum: QuorumConfig{
			Default: rule.DefaultQuorumPolicy.Default,
			Min:     rule.DefaultQuorumPolicy.Min,
			Max:     rule.DefaultQuorumPolicy.Max,
		},
		Learn: LearnConfig{Settle: vendor.DefaultSettle},
	}
}

// Validate checks the constraints the schema cannot express.
func (c Config) Validate() error {
	switch {
	case c.Verify.Timeout <= 0:
		return fmt.Errorf("verify.timeout must be positive, got %s", c.Verify.Timeout)
	case c.Verify.Interval <= 0:
		return fmt.Errorf("verify.interval must be positive, got %s", c.Verify.Interval)
	case c.Stability.Delay < 0:
		return fmt.Errorf("stability.delay must not be negative")
	case c.Learn.Settle < 0:
		return fmt.Errorf("learn.settle must not be negative")
	}
	q := c.Quorum
	if q.Min > q.Default || q.Default > q.Max {
		return fmt.Errorf("quorum bounds must satisfy min <= default <= max, got %.2f <= %.2f <= %.2f", q.Min, q.Default, q.Max)
	}
	return nil
}

// QuorumPolicy returns the compound-rule threshold policy.
func (c Config) QuorumPolicy() rule.QuorumPolicy {
	return rule.QuorumPolicy{Default: c.Quorum.Default, Min: c.Quorum.Min, Max: c.Quorum.Max}
}

// Verifier returns a read-back verifier on clock.
func (c Config) Verifier(clock platform.Clock) engine.Verifier {
	return engine.Verifier{
		Clock:       clock,
		Timeout:     c.Verify.Timeout,
		Interval:    c.Verify.Interval,
		Consecutive: c.Verify.Consecutive,
	}
}

// ServiceOptions translates the learning and verification settings into
// vendor service options.
func (c Config) ServiceOptions(clock platform.Clock) []vendor.Option {
	return []vendor.Option{
		vendor.WithClock(clock),
		vendor.WithVerifier(c.Verifier(clock)),
		vendor.WithQuorumPolicy(c.QuorumPolicy()),
		vendor.WithStability(c.Stability.Repeats, c.Stability.Delay),
		vendor.WithSettle(c.Learn.Settle),
	}
}
