package platform

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/roach88/audioctl/internal/ir"
)

type memKeyID struct {
	scope ir.Scope
	path  string
}

type memKey struct {
	path    string
	values  []NamedValue
	written time.Time
}

func (k *memKey) index(name string) int {
	for i, nv := range k.values {
		if strings.EqualFold(nv.Name, name) {
			return i
		}
	}
	return -1
}

// WriteRecord is one write observed by Memory.
type WriteRecord struct {
	Scope ir.Scope
	Path  string
	Name  string
	Value ir.Value
	Err   error
}

// Memory is an in-memory Registry. It is safe for concurrent use.
type Memory struct {
	mu     sync.Mutex
	keys   map[memKeyID]*memKey
	denied map[ir.Scope]bool
	log    []WriteRecord
	now    func() time.Time
}

// NewMemory returns an empty registry using the wall clock for last-write times.
func NewMemory() *Memory {
	return &Memory{
		keys:   make(map[memKeyID]*memKey),
		denied: make(map[ir.Scope]bool),
		now:    time.Now,
	}
}

// SetClock replaces the time source for last-write stamps.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// DenyWrites makes every write under scope fail with ErrAccessDenied.
func (m *Memory) DenyWrites(scope ir.Scope, deny bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.denied[scope] = deny
}

func normPath(path string) string {
	return strings.ToLower(strings.Trim(path, `\`))
}

// CreateKey creates path and all of its ancestors.
func (m *Memory) CreateKey(scope ir.Scope, path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createLocked(scope, path)
}

func (m *Memory) createLocked(scope ir.Scope, path string) *memKey {
	path = strings.Trim(path, `\`)
	parts := strings.Split(path, `\`)
	var k *memKey
	for i := range parts {
		p := strings.Join(parts[:i+1], `\`)
		id := memKeyID{scope, normPath(p)}
		existing, ok := m.keys[id]
		if !ok {
			existing = &memKey{path: p, written: m.now()}
			m.keys[id] = existing
		}
		k = existing
	}
	return k
}

// Set stores a value, creating the key if needed. Set is a fixture
// operation: it ignores DenyWrites and is not recorded in the write log.
func (m *Memory) Set(scope ir.Scope, path, name string, v ir.Value) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := m.createLocked(scope, path)
	m.putLocked(k, name, v)
}

// SetLastWrite overrides the last-write stamp of an existing key.
func (m *Memory) SetLastWrite(scope ir.Scope, path string, t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, ok := m.keys[memKeyID{scope, normPath(path)}]
	if !ok {
		return fmt.Errorf("%s\\%s: %w", scope, path, ErrNotExist)
	}
	k.written = t
	return nil
}

// Delete removes a value if present.
func (m *Memory) Delete(scope ir.Scope, path, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, ok := m.keys[memKeyID{scope, normPath(path)}]
	if !ok {
		return
	}
	if i := k.index(name); i >= 0 {
		k.values = append(k.values[:i], k.values[i+1:]...)
		k.written = m.now()
	}
}

func (m *Memory) putLocked(k *memKey, name string, v ir.Value) {
	v.Bin = bytes.Clone(v.Bin)
	if i := k.index(name); i >= 0 {
		k.values[i].Value = v
	} else {
		k.values = append(k.values, NamedValue{Name: name, Value: v})
	}
	k.written = m.now()
}

func (m *Memory) ReadValue(scope ir.Scope, path, name string) (ir.Value, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, ok := m.keys[memKeyID{scope, normPath(path)}]
	if !ok {
		return ir.Value{}, fmt.Errorf("%s\\%s: %w", scope, path, ErrNotExist)
	}
	i := k.index(name)
	if i < 0 {
		return ir.Value{}, fmt.Errorf("%s\\%s\\%s: %w", scope, path, name, ErrNotExist)
	}
	v := k.values[i].Value
	v.Bin = bytes.Clone(v.Bin)
	return v, nil
}

func (m *Memory) WriteValue(scope ir.Scope, path, name string, v ir.Value) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	err := m.writeLocked(scope, path, name, v)
	m.log = append(m.log, WriteRecord{Scope: scope, Path: path, Name: name, Value: v, Err: err})
	return err
}

func (m *Memory) writeLocked(scope ir.Scope, path, name string, v ir.Value) error {
	if m.denied[scope] {
		return fmt.Errorf("%s\\%s: %w", scope, path, ErrAccessDenied)
	}
	k, ok := m.keys[memKeyID{scope, normPath(path)}]
	if !ok {
		return fmt.Errorf("%s\\%s: %w", scope, path, ErrNotExist)
	}
	m.putLocked(k, name, v)
	return nil
}

func (m *Memory) Values(scope ir.Scope, path string) ([]NamedValue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, ok := m.keys[memKeyID{scope, normPath(path)}]
	if !ok {
		return nil, fmt.Errorf("%s\\%s: %w", scope, path, ErrNotExist)
	}
	out := make([]NamedValue, len(k.values))
	for i, nv := range k.values {
		nv.Value.Bin = bytes.Clone(nv.Value.Bin)
		out[i] = nv
	}
	return out, nil
}

func (m *Memory) Subkeys(scope ir.Scope, path string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	parent := normPath(path)
	if _, ok := m.keys[memKeyID{scope, parent}]; !ok {
		return nil, fmt.Errorf("%s\\%s: %w", scope, path, ErrNotExist)
	}
	prefix := parent + `\`
	var names []string
	for id, k := range m.keys {
		if id.scope != scope || !strings.HasPrefix(id.path, prefix) {
			continue
		}
		rest := id.path[len(prefix):]
		if rest == "" || strings.Contains(rest, `\`) {
			continue
		}
		names = append(names, k.path[len(k.path)-len(rest):])
	}
	sort.Strings(names)
	return names, nil
}

func (m *Memory) LastWrite(scope ir.Scope, path string) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, ok := m.keys[memKeyID{scope, normPath(path)}]
	if !ok {
		return time.Time{}, fmt.Errorf("%s\\%s: %w", scope, path, ErrNotExist)
	}
	return k.written, nil
}

// Writes returns every WriteValue call observed so far.
func (m *Memory) Writes() []WriteRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]WriteRecord(nil), m.log...)
}

// ResetWrites clears the write log.
func (m *Memory) ResetWrites() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log = nil
}
