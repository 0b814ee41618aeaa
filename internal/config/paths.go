package config

import (
	"os"
	"path/filepath"
)

// CatalogFile is the catalog's file name.
const CatalogFile = "vendor_toggles.ini"

// DefaultCatalogPath returns the catalog next to the executable when that
// directory is writable, else under the per-user local data directory.
func DefaultCatalogPath() string {
	dir := "."
	if exe, err := os.Executable(); err == nil {
		dir = filepath.Dir(exe)
	}
	return catalogPathFor(dir)
}

func catalogPathFor(exeDir string) string {
	if writable(exeDir) {
		return filepath.Join(exeDir, CatalogFile)
	}
	return filepath.Join(localDataDir(), "audioctl", CatalogFile)
}

func localDataDir() string {
	if d := os.Getenv("LOCALAPPDATA"); d != "" {
		return d
	}
	if d, err := os.UserCacheDir(); err == nil {
		return d
	}
	return os.TempDir()
}

func writable(dir string) bool {
	f, err := os.CreateTemp(dir, ".writetest-*")
	if err != nil {
		return false
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return true
}
