package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, 2500*time.Millisecond, c.Verify.Timeout)
	assert.Equal(t, 200*time.Millisecond, c.Verify.Interval)
	assert.Equal(t, 2, c.Verify.Consecutive)
	assert.Equal(t, 3, c.Stability.Repeats)
	assert.Equal(t, 150*time.Millisecond, c.Stability.Delay)
	assert.Equal(t, 180*time.Millisecond, c.Learn.Settle)
	assert.InDelta(t, 0.60, c.Quorum.Default, 1e-9)
	assert.Equal(t, "info", c.Log.Level)
}

func TestParse_Empty(t *testing.T) {
	c, err := Parse(nil, "empty")
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestParse_Overrides(t *testing.T) {
	c, err := Parse([]byte(`
log:
  level: debug
  format: json
verify:
  timeout: 4s
  consecutive: 3
stability:
  delay: 50ms
quorum:
  default: 0.75
learn:
  settle: 350ms
  confirmed: true
`), "test")
	require.NoError(t, err)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, "json", c.Log.Format)
	assert.Equal(t, 4*time.Second, c.Verify.Timeout)
	assert.Equal(t, 200*time.Millisecond, c.Verify.Interval, "unset fields keep defaults")
	assert.Equal(t, 3, c.Verify.Consecutive)
	assert.Equal(t, 50*time.Millisecond, c.Stability.Delay)
	assert.Equal(t, 3, c.Stability.Repeats)
	assert.InDelta(t, 0.75, c.Quorum.Default, 1e-9)
	assert.Equal(t, 350*time.Millisecond, c.Learn.Settle)
	assert.True(t, c.Learn.Confirmed)

	p := c.QuorumPolicy()
	assert.InDelta(t, 0.75, p.Default, 1e-9)
	assert.InDelta(t, 0.50, p.Min, 1e-9)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown field", "bogus: 1\n", "bogus"},
		{"unknown nested field", "verify:\n  retries: 3\n", "retries"},
		{"bad level", "log:\n  level: loud\n", "level"},
		{"bad format", "log:\n  format: xml\n", "format"},
		{"zero consecutive", "verify:\n  consecutive: 0\n", "consecutive"},
		{"bad duration", "verify:\n  timeout: soon\n", "timeout"},
		{"numeric duration", "stability:\n  delay: 150\n", "delay"},
		{"fraction out of range", "quorum:\n  max: 1.5\n", "max"},
		{"inverted bounds", "quorum:\n  default: 0.4\n", "min <= default <= max"},
		{"zero timeout", "verify:\n  timeout: 0s\n", "verify.timeout"},
		{"not yaml", "verify: [\n", "config test"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.body), "test")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadFile_RelativePaths(t *testing.T) {
	path := writeConfig(t, "catalog: rules/vendor_toggles.ini\nsession_db: /var/lib/audioctl/sessions.db\n")

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "rules", "vendor_toggles.ini"), c.Catalog)
	assert.Equal(t, "/var/lib/audioctl/sessions.db", c.SessionDB)
	assert.Equal(t, path, c.Source)
}

func TestLoad_Resolution(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv(EnvDebug, "")
	t.Setenv(EnvConfirmed, "")

	t.Run("flag wins over environment", func(t *testing.T) {
		flag := writeConfig(t, "log:\n  level: warn\n")
		env := writeConfig(t, "log:\n  level: error\n")
		t.Setenv(EnvConfig, env)

		c, err := Load(flag)
		require.NoError(t, err)
		assert.Equal(t, "warn", c.Log.Level)
		assert.Equal(t, flag, c.Source)
	})

	t.Run("environment", func(t *testing.T) {
		env := writeConfig(t, "log:\n  level: error\n")
		t.Setenv(EnvConfig, env)

		c, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "error", c.Log.Level)
	})

	t.Run("explicit file must exist", func(t *testing.T) {
		t.Setenv(EnvConfig, "")
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
	})

	t.Run("missing user file means defaults", func(t *testing.T) {
		t.Setenv(EnvConfig, "")
		c, err := Load("")
		require.NoError(t, err)
		assert.Empty(t, c.Source)
		assert.NotEmpty(t, c.Catalog)
		assert.Equal(t, CatalogFile, filepath.Base(c.Catalog))
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv(EnvConfig, "")
		t.Setenv(EnvDebug, "1")
		t.Setenv(EnvConfirmed, "1")
		c, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "debug", c.Log.Level)
		assert.True(t, c.Learn.Confirmed)
	})
}

func TestCatalogPathFor(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, filepath.Join(dir, CatalogFile), catalogPathFor(dir))

	local := t.TempDir()
	t.Setenv("LOCALAPPDATA", local)
	missing := filepath.Join(dir, "does-not-exist")
	assert.Equal(t, filepath.Join(local, "audioctl", CatalogFile), catalogPathFor(missing))
}

func TestServiceOptions(t *testing.T) {
	c := Default()
	c.Verify.Consecutive = 5
	v := c.Verifier(nil)
	assert.Equal(t, 5, v.Consecutive)
	assert.Equal(t, c.Verify.Timeout, v.Timeout)
	assert.Len(t, c.ServiceOptions(nil), 5)
}
