package activation

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"SessionScreener/internal/catalog"
)

var (
	// ErrNotInvertible is returned when inverting a condition without a known comparator.
	ErrNotInvertible = errors.New("condition has no inverse form")
	ErrInvalidMode   = errors.New("invalid activation mode")
)

// Manager owns the activation map with concurrency safety. Normal and inverted
// forms of one condition are mutually exclusive by construction.
type Manager struct {
	mu       sync.Mutex
	cat      *catalog.Catalog
	modes    map[int]Mode
	filePath string
}

// NewManager creates a Manager, loading state from filePath when it is set.
// An empty filePath keeps the state in memory only.
func NewManager(cat *catalog.Catalog, filePath string) (*Manager, error) {
	m := &Manager{cat: cat, modes: make(map[int]Mode), filePath: filePath}
	if filePath == "" {
		return m, nil
	}

	state, err := LoadState(filePath)
	if err != nil {
		return nil, fmt.Errorf("load activation state: %w", err)
	}
	if err := m.Apply(state.Normal, state.Inverted); err != nil {
		return nil, fmt.Errorf("activation state %s: %w", filePath, err)
	}
	return m, nil
}

// Set puts id into mode, replacing whatever form was active before.
func (m *Manager) Set(id int, mode Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidMode, int(mode))
	}
	def, err := m.cat.Lookup(id)
	if err != nil {
		return err
	}
	if mode == Inverted && !def.Invertible() {
		return fmt.Errorf("%w: %d", ErrNotInvertible, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if mode == Inactive {
		delete(m.modes, id)
	} else {
		m.modes[id] = mode
	}
	log.Debug().Int("condition", id).Stringer("mode", mode).Msg("activation changed")
	m.persist()
	return nil
}

// SetNormal checks or unchecks the normal form. Checking clears the inverted form.
func (m *Manager) SetNormal(id int, on bool) error {
	return m.toggle(id, Normal, on)
}

// SetInverted checks or unchecks the inverted form. Checking clears the normal form.
func (m *Manager) SetInverted(id int, on bool) error {
	return m.toggle(id, Inverted, on)
}

func (m *Manager) toggle(id int, mode Mode, on bool) error {
	if on {
		return m.Set(id, mode)
	}
	if _, err := m.cat.Lookup(id); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.modes[id] == mode {
		delete(m.modes, id)
		m.persist()
	}
	return nil
}

// Apply replaces the whole map. Ids listed in both slices are rejected.
func (m *Manager) Apply(normal, inverted []int) error {
	next := make(map[int]Mode, len(normal)+len(inverted))
	for _, id := range normal {
		if _, err := m.cat.Lookup(id); err != nil {
			return err
		}
		next[id] = Normal
	}
	for _, id := range inverted {
		def, err := m.cat.Lookup(id)
		if err != nil {
			return err
		}
		if next[id] == Normal {
			return fmt.Errorf("condition %d active in both normal and inverted form", id)
		}
		if !def.Invertible() {
			return fmt.Errorf("%w: %d", ErrNotInvertible, id)
		}
		next[id] = Inverted
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.modes = next
	m.persist()
	return nil
}

// Mode returns the current activation of id.
func (m *Manager) Mode(id int) Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.modes[id]
}

// Snapshot returns an immutable copy for one screening run.
func (m *Manager) Snapshot() Set {
	m.mu.Lock()
	defer m.mu.Unlock()
	return NewSet(m.modes)
}

// Clear deactivates every condition.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modes = make(map[int]Mode)
	log.Info().Msg("all conditions deactivated")
	m.persist()
}

// persist must be called with mu held.
func (m *Manager) persist() {
	if m.filePath == "" {
		return
	}
	if err := SaveState(m.filePath, stateFrom(m.modes)); err != nil {
		log.Error().Err(err).Str("path", m.filePath).Msg("failed to save activation state")
	}
}
