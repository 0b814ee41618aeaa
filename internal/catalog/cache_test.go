package catalog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/audioctl/internal/rule"
)

func parseDefault(data []byte) *Catalog {
	return Parse(data, rule.DefaultQuorumPolicy)
}

const oneMain = "[m]\nvalue_name = {a},1\ndword_enable = 0\ndword_disable = 1\ndevices = {aaa}\n"

func TestCache_ReusesUnchangedFile(t *testing.T) {
	path := writeCatalog(t, oneMain)
	c := NewCache()

	first, err := c.Load(path, parseDefault)
	require.NoError(t, err)
	second, err := c.Load(path, parseDefault)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, c.Parses())
}

func TestCache_ReparsesWhenModTimeChanges(t *testing.T) {
	path := writeCatalog(t, oneMain)
	c := NewCache()

	_, err := c.Load(path, parseDefault)
	require.NoError(t, err)

	// Same size, different content and timestamp.
	require.NoError(t, os.WriteFile(path, []byte(oneMain[:len(oneMain)-6]+"{bbb}\n"), 0o644))
	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, later, later))

	got, err := c.Load(path, parseDefault)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Parses())
	require.Len(t, got.Mains, 1)
	assert.Equal(t, []string{"{bbb}"}, got.Mains[0].Devices)
}

func TestCache_MissingThenCreated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vendor_toggles.ini")
	c := NewCache()

	empty, err := c.Load(path, parseDefault)
	require.NoError(t, err)
	assert.Zero(t, empty.Len())
	again, err := c.Load(path, parseDefault)
	require.NoError(t, err)
	assert.Same(t, empty, again)
	assert.Zero(t, c.Parses())

	require.NoError(t, os.WriteFile(path, []byte(oneMain), 0o644))
	got, err := c.Load(path, parseDefault)
	require.NoError(t, err)
	assert.Len(t, got.Mains, 1)
}

func TestCache_PathChange(t *testing.T) {
	a := writeCatalog(t, oneMain)
	b := writeCatalog(t, "")
	c := NewCache()

	got, err := c.Load(a, parseDefault)
	require.NoError(t, err)
	assert.Len(t, got.Mains, 1)

	got, err = c.Load(b, parseDefault)
	require.NoError(t, err)
	assert.Zero(t, got.Len())
}

func TestCache_Invalidate(t *testing.T) {
	path := writeCatalog(t, oneMain)
	c := NewCache()

	_, err := c.Load(path, parseDefault)
	require.NoError(t, err)
	c.Invalidate()
	_, err = c.Load(path, parseDefault)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Parses())
}
