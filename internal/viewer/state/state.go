// Package state persists viewer session state between runs: the last open
// conversation, the attachment being viewed per conversation, and UI
// preferences. Writes are debounced and go through a lock file plus an
// atomic rename so concurrent viewers cannot corrupt the file.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"
)

const (
	CurrentVersion = 1

	defaultDebounce = 1 * time.Second
	maxActiveSource = 200
)

// ViewerState is the serialized session state.
type ViewerState struct {
	Version          int               `json:"version"`
	LastConversation string            `json:"last_conversation,omitempty"` // resume target for bare `lightbox view`
	ActiveSources    map[string]string `json:"active_sources,omitempty"`    // conversation ID -> attachment key
	Preferences      Preferences       `json:"preferences,omitempty"`
}

// Preferences holds UI preferences that survive restarts.
type Preferences struct {
	Theme      string `json:"theme,omitempty"`
	ShowArrows bool   `json:"show_arrows,omitempty"`
}

// Manager owns one state file.
type Manager struct {
	path     string
	lockPath string

	mu        sync.Mutex
	state     ViewerState
	dirty     bool
	timer     *time.Timer
	debounce  time.Duration
	lastWrite time.Time
}

// New builds a manager for path. An empty path disables persistence; all
// accessors still work in memory.
func New(path string) *Manager {
	path = strings.TrimSpace(path)
	return &Manager{
		path:     path,
		lockPath: path + ".lock",
		state: ViewerState{
			Version:       CurrentVersion,
			ActiveSources: make(map[string]string),
		},
		debounce: defaultDebounce,
	}
}

func (m *Manager) Path() string { return m.path }

// Load reads the state file, tolerating a missing or empty file.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.path == "" {
		return nil
	}

	loaded, err := m.loadLocked()
	if err != nil {
		return err
	}
	m.state = loaded
	m.dirty = false
	return nil
}

// Snapshot returns a copy of the current state.
func (m *Manager) Snapshot() ViewerState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneState(m.state)
}

// LastConversation returns the most recently opened conversation ID.
func (m *Manager) LastConversation() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.LastConversation
}

// SetLastConversation records the conversation the viewer has open.
func (m *Manager) SetLastConversation(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id = strings.TrimSpace(id)
	if id == "" || id == m.state.LastConversation {
		return
	}
	m.state.LastConversation = id
	m.markDirtyLocked()
}

// ActiveSource returns the attachment key last viewed in a conversation.
func (m *Manager) ActiveSource(conversationID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.ActiveSources[strings.TrimSpace(conversationID)]
}

// SetActiveSource records which attachment is open in a conversation.
func (m *Manager) SetActiveSource(conversationID, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	conversationID = strings.TrimSpace(conversationID)
	key = strings.TrimSpace(key)
	if conversationID == "" {
		return
	}
	if m.state.ActiveSources == nil {
		m.state.ActiveSources = make(map[string]string)
	}
	if key == "" {
		if _, ok := m.state.ActiveSources[conversationID]; !ok {
			return
		}
		delete(m.state.ActiveSources, conversationID)
		m.markDirtyLocked()
		return
	}
	if m.state.ActiveSources[conversationID] == key {
		return
	}
	m.state.ActiveSources[conversationID] = key
	m.markDirtyLocked()
}

// Preferences returns the stored UI preferences.
func (m *Manager) Preferences() Preferences {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Preferences
}

// SetPreferences replaces the stored UI preferences.
func (m *Manager) SetPreferences(p Preferences) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Preferences == p {
		return
	}
	m.state.Preferences = p
	m.markDirtyLocked()
}

// SaveSoon schedules a debounced save.
func (m *Manager) SaveSoon() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.markDirtyLocked()
}

// Close flushes pending changes.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	needsSave := m.dirty
	m.mu.Unlock()
	if !needsSave {
		return nil
	}
	return m.SaveNow()
}

// SaveNow writes the state file immediately.
func (m *Manager) SaveNow() error {
	m.mu.Lock()
	if m.path == "" {
		m.mu.Unlock()
		return nil
	}
	state := cloneState(m.state)
	m.dirty = false
	m.mu.Unlock()

	state.Version = CurrentVersion
	state = normalizeState(state)

	if err := withFileLock(m.lockPath, func() error {
		return writeAtomicJSON(m.path, state)
	}); err != nil {
		m.mu.Lock()
		m.dirty = true
		m.mu.Unlock()
		return err
	}

	m.mu.Lock()
	m.lastWrite = time.Now().UTC()
	m.mu.Unlock()
	return nil
}

func (m *Manager) markDirtyLocked() {
	m.dirty = true
	if m.path == "" {
		return
	}
	if m.timer == nil {
		m.timer = time.AfterFunc(m.debounce, func() {
			_ = m.SaveNow()
		})
		return
	}
	_ = m.timer.Reset(m.debounce)
}

func (m *Manager) loadLocked() (ViewerState, error) {
	var out ViewerState
	if err := withFileLock(m.lockPath, func() error {
		payload, err := os.ReadFile(m.path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				out = ViewerState{Version: CurrentVersion}
				return nil
			}
			return err
		}
		if len(payload) == 0 {
			out = ViewerState{Version: CurrentVersion}
			return nil
		}
		return json.Unmarshal(payload, &out)
	}); err != nil {
		return ViewerState{}, err
	}

	if out.Version <= 0 {
		out.Version = CurrentVersion
	}
	if out.ActiveSources == nil {
		out.ActiveSources = make(map[string]string)
	}
	return out, nil
}

func withFileLock(lockPath string, fn func() error) error {
	if strings.TrimSpace(lockPath) == "" || lockPath == ".lock" {
		return fn()
	}
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		return fmt.Errorf("lock %s: %w", lockPath, err)
	}
	defer func() {
		_ = syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
	}()
	return fn()
}

func writeAtomicJSON(path string, state ViewerState) error {
	payload, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// normalizeState drops empty entries and caps the per-conversation map so
// the file cannot grow without bound.
func normalizeState(state ViewerState) ViewerState {
	if state.ActiveSources == nil {
		state.ActiveSources = make(map[string]string)
	}
	for conv, key := range state.ActiveSources {
		if strings.TrimSpace(conv) == "" || strings.TrimSpace(key) == "" {
			delete(state.ActiveSources, conv)
		}
	}
	if len(state.ActiveSources) > maxActiveSource {
		// Arbitrary eviction is fine here; entries are only resume hints.
		for conv := range state.ActiveSources {
			if len(state.ActiveSources) <= maxActiveSource {
				break
			}
			if conv != state.LastConversation {
				delete(state.ActiveSources, conv)
			}
		}
	}
	return state
}

func cloneState(state ViewerState) ViewerState {
	out := state
	if state.ActiveSources != nil {
		out.ActiveSources = make(map[string]string, len(state.ActiveSources))
		for k, v := range state.ActiveSources {
			out.ActiveSources[k] = v
		}
	}
	return out
}
