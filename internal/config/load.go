package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the YAML layout. Durations stay strings until the
// schema has accepted them.
type fileConfig struct {
	Catalog   string `yaml:"catalog"`
	SessionDB string `yaml:"session_db"`
	Log       struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Verify struct {
		Timeout     string `yaml:"timeout"`
		Interval    string `yaml:"interval"`
		Consecutive int    `yaml:"consecutive"`
	} `yaml:"verify"`
	Stability struct {
		Repeats int    `yaml:"repeats"`
		Delay   string `yaml:"delay"`
	} `yaml:"stability"`
	Quorum struct {
		Default float64 `yaml:"default"`
		Min     float64 `yaml:"min"`
		Max     float64 `yaml:"max"`
	} `yaml:"quorum"`
	Learn struct {
		Settle    string `yaml:"settle"`
		Confirmed bool   `yaml:"confirmed"`
	} `yaml:"learn"`
}

func fromConfig(c Config) fileConfig {
	var f fileConfig
	f.Catalog = c.Catalog
	f.SessionDB = c.SessionDB
	f.Log.Level, f.Log.Format = c.Log.Level, c.Log.Format
	f.Verify.Timeout = c.Verify.Timeout.String()
	f.Verify.Interval = c.Verify.Interval.String()
	f.Verify.Consecutive = c.Verify.Consecutive
	f.Stability.Repeats = c.Stability.Repeats
	f.Stability.Delay = c.Stability.Delay.String()
	f.Quorum.Default, f.Quorum.Min, f.Quorum.Max = c.Quorum.Default, c.Quorum.Min, c.Quorum.Max
	f.Learn.Settle = c.Learn.Settle.String()
	f.Learn.Confirmed = c.Learn.Confirmed
	return f
}

func (f fileConfig) resolve() (Config, error) {
	c := Config{
		Catalog:   f.Catalog,
		SessionDB: f.SessionDB,
		Log:       LogConfig{Level: f.Log.Level, Format: f.Log.Format},
		Verify:    VerifyConfig{Consecutive: f.Verify.Consecutive},
		Stability: StabilityConfig{Repeats: f.Stability.Repeats},
		Quorum:    QuorumConfig{Default: f.Quorum.Default, Min: f.Quorum.Min, Max: f.Quorum.Max},
		Learn:     LearnConfig{Confirmed: f.Learn.Confirmed},
	}
	durations := []struct {
		field string
		text  string
		dst   *time.Duration
	}{
		{"verify.timeout", f.Verify.Timeout, &c.Verify.Timeout},
		{"verify.interval", f.Verify.Interval, &c.Verify.Interval},
		{"stability.delay", f.Stability.Delay, &c.Stability.Delay},
		{"learn.settle", f.Learn.Settle, &c.Learn.Settle},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(d.text)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", d.field, err)
		}
		*d.dst = v
	}
	return c, nil
}

// Parse decodes YAML configuration data over the defaults. name is used
// in error messages only.
func Parse(data []byte, name string) (Config, error) {
	if err := validateSchema(data); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", name, err)
	}
	f := fromConfig(Default())
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", name, err)
	}
	c, err := f.resolve()
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", name, err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", name, err)
	}
	return c, nil
}

// LoadFile reads and parses the file at path. Relative catalog and
// session database paths are taken relative to the file's directory.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	c, err := Parse(data, path)
	if err != nil {
		return Config{}, err
	}
	dir := filepath.Dir(path)
	c.Catalog = relativeTo(dir, c.Catalog)
	c.SessionDB = relativeTo(dir, c.SessionDB)
	c.Source = path
	return c, nil
}

func relativeTo(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// Locate returns the config file to read and whether it was named
// explicitly by flag or environment.
func Locate(flag string) (path string, explicit bool) {
	if flag != "" {
		return flag, true
	}
	if env := os.Getenv(EnvConfig); env != "" {
		return env, true
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", false
	}
	return filepath.Join(dir, "audioctl", "config.yaml"), false
}

// Load resolves the configuration file from flag, the environment and
// the user config dir, then applies environment overrides and fills the
// default catalog path.
func Load(flag string) (Config, error) {
	path, explicit := Locate(flag)
	c := Default()
	if path != "" {
		loaded, err := LoadFile(path)
		switch {
		case err == nil:
			c = loaded
		case !explicit && errors.Is(err, fs.ErrNotExist):
		default:
			return Config{}, err
		}
	}
	applyEnv(&c)
	if c.Catalog == "" {
		c.Catalog = DefaultCatalogPath()
	}
	return c, nil
}

func applyEnv(c *Config) {
	if os.Getenv(EnvDebug) == "1" {
		c.Log.Level = "debug"
	}
	if os.Getenv(EnvConfirmed) == "1" {
		c.Learn.Confirmed = true
	}
}
