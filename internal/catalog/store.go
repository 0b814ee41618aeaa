package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/roach88/audioctl/internal/endpoint"
	"github.com/roach88/audioctl/internal/ir"
	"github.com/roach88/audioctl/internal/rule"
)

var (
	// ErrSectionExists is returned when appending a section whose name is taken.
	ErrSectionExists = errors.New("catalog section already exists")

	// ErrSectionNotFound is returned when editing a section that is absent.
	ErrSectionNotFound = errors.New("catalog section not found")
)

var writeDevicesKey = regexp.MustCompile(`^write\d+_devices$`)

// Store reads and edits one catalog file. Concurrent writers from
// different processes are not coordinated.
type Store struct {
	path   string
	cache  *Cache
	policy rule.QuorumPolicy
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithCache shares a parse cache between stores.
func WithCache(c *Cache) Option {
	return func(s *Store) {
		s.cache = c
	}
}

// WithQuorumPolicy sets the clamp applied to compound thresholds.
func WithQuorumPolicy(p rule.QuorumPolicy) Option {
	return func(s *Store) {
		s.policy = p
	}
}

// WithLogger sets the logger for skipped sections and edits.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// NewStore returns a store for the catalog at path.
func NewStore(path string, opts ...Option) *Store {
	s := &Store{
		path:   path,
		policy: rule.DefaultQuorumPolicy,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache = NewCache()
	}
	return s
}

// Path is the catalog file location.
func (s *Store) Path() string {
	return s.path
}

// Load returns the parsed catalog. Skipped sections are logged once per
// parse.
func (s *Store) Load() (*Catalog, error) {
	return s.cache.Load(s.path, func(data []byte) *Catalog {
		c := Parse(data, s.policy)
		for _, sk := range c.Skipped {
			s.logger.Warn("skipping catalog section",
				"path", s.path,
				"section", sk.Section,
				"reason", sk.Reason,
				"unknown_type", errors.Is(sk.Err, ir.ErrUnknownType))
		}
		s.logger.Debug("catalog parsed",
			"path", s.path,
			"main", len(c.Mains),
			"effects", len(c.Effects),
			"skipped", len(c.Skipped))
		return c
	})
}

// AppendMain adds m as a new section at the end of the catalog.
func (s *Store) AppendMain(m rule.MainRule) error {
	return s.appendSection(m.Section, mainLines(m))
}

// AppendEffect adds e as a new section at the end of the catalog.
func (s *Store) AppendEffect(e rule.EffectRule) error {
	return s.appendSection(e.Section, effectLines(e))
}

func (s *Store) appendSection(name string, body []string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("append to %s: empty section name", s.path)
	}
	return s.edit(func(doc *document) (bool, error) {
		if _, ok := doc.find(name); ok {
			return false, fmt.Errorf("append [%s]: %w", name, ErrSectionExists)
		}
		doc.appendSection(name, body)
		s.logger.Info("catalog section appended", "path", s.path, "section", name)
		return true, nil
	})
}

// AddDeviceMembership adds key to the devices line of section. It
// reports whether the file changed; a key already listed is a no-op.
func (s *Store) AddDeviceMembership(section, key string) (bool, error) {
	key = endpoint.NormalizeKey(key)
	if key == "" {
		return false, fmt.Errorf("add membership to [%s]: empty correlation key", section)
	}
	changed := false
	err := s.edit(func(doc *document) (bool, error) {
		sp, ok := doc.find(section)
		if !ok {
			return false, fmt.Errorf("add membership to [%s]: %w", section, ErrSectionNotFound)
		}
		_, current, _ := doc.field(sp, keyDevices)
		members := splitList(current)
		if rule.HasMember(members, key) {
			return false, nil
		}
		members = append(members, key)
		slices.Sort(members)
		doc.upsert(sp, keyDevices, strings.Join(slices.Compact(members), ","))
		s.logger.Info("catalog membership added", "path", s.path, "section", section, "device", key)
		changed = true
		return true, nil
	})
	return changed && err == nil, err
}

// RemoveDeviceMembership drops key from the devices line of section and
// from every explicit write{i}_devices line. Emptied per-write lines are
// kept, since an empty list means the write applies to nobody.
func (s *Store) RemoveDeviceMembership(section, key string) (bool, error) {
	key = endpoint.NormalizeKey(key)
	changed := false
	err := s.edit(func(doc *document) (bool, error) {
		sp, ok := doc.find(section)
		if !ok {
			return false, fmt.Errorf("remove membership from [%s]: %w", section, ErrSectionNotFound)
		}
		for i := sp.start + 1; i < sp.end; i++ {
			k, v, ok := splitEntry(doc.lines[i])
			if !ok || (k != keyDevices && !writeDevicesKey.MatchString(k)) {
				continue
			}
			members := splitList(v)
			kept := slices.DeleteFunc(slices.Clone(members), func(m string) bool {
				return endpoint.NormalizeKey(m) == key
			})
			if len(kept) == len(members) {
				continue
			}
			doc.setLine(i, entryLine(k, strings.Join(kept, ",")))
			changed = true
		}
		if changed {
			s.logger.Info("catalog membership removed", "path", s.path, "section", section, "device", key)
		}
		return changed, nil
	})
	return changed && err == nil, err
}

// edit reads the file, applies fn and writes the result back when fn
// reports a change.
func (s *Store) edit(fn func(*document) (bool, error)) error {
	data, err := os.ReadFile(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("read catalog %s: %w", s.path, err)
	}
	doc := parseDocument(data)
	changed, err := fn(doc)
	if err != nil || !changed {
		return err
	}
	if err := writeFileAtomic(s.path, doc.bytes()); err != nil {
		return err
	}
	s.cache.Invalidate()
	return nil
}

// writeFileAtomic replaces path with data through a temporary file in the
// same directory, so readers never observe a partial catalog.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create catalog directory %s: %w", dir, err)
	}
	mode := fs.FileMode(0o644)
	if st, err := os.Stat(path); err == nil {
		mode = st.Mode().Perm()
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("write catalog %s: %w", path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write catalog %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync catalog %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write catalog %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		return fmt.Errorf("chmod catalog %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace catalog %s: %w", path, err)
	}
	return nil
}
