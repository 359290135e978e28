package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FieldState stores the view state of a single surface.
type FieldState struct {
	Caret   int `json:"caret"`
	ScrollX int `json:"scroll_x,omitempty"`
}

// DocumentState stores the form state for one body file.
type DocumentState struct {
	Fields      map[string]FieldState `json:"fields"`
	ActiveField string                `json:"active_field,omitempty"`
}

// State is everything restored on the next start.
type State struct {
	Documents map[string]DocumentState `json:"documents"`
	LastSaved time.Time                `json:"last_saved"`
}

// Manager handles state persistence
type Manager struct {
	mu       sync.RWMutex
	state    State
	path     string
	dirty    bool
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewManager loads the state file under the XDG state directory and starts
// the autosave loop.
func NewManager() (*Manager, error) {
	path, err := statePath()
	if err != nil {
		return nil, err
	}
	return NewManagerAt(path), nil
}

func NewManagerAt(path string) *Manager {
	m := &Manager{
		state:    State{Documents: make(map[string]DocumentState)},
		path:     path,
		stopChan: make(chan struct{}),
	}
	m.load()
	go m.autosaveLoop()
	return m
}

func statePath() (string, error) {
	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		stateDir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateDir, "qtranslit", "state.json"), nil
}

func (m *Manager) load() {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return // No existing state, start fresh
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return
	}
	if st.Documents == nil {
		st.Documents = make(map[string]DocumentState)
	}
	m.state = st
}

// Save persists the state to disk
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.dirty {
		return nil
	}

	m.state.LastSaved = time.Now()
	data, err := json.MarshalIndent(m.state, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(m.path, data, 0o644); err != nil {
		return err
	}

	m.dirty = false
	return nil
}

// Document returns the saved state for a body file.
func (m *Manager) Document(absPath string) (DocumentState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.state.Documents[absPath]
	return doc, ok
}

// SetDocument replaces the saved state for a body file.
func (m *Manager) SetDocument(absPath string, doc DocumentState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Documents[absPath] = doc
	m.dirty = true
}

func (m *Manager) autosaveLoop() {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = m.Save()
		case <-m.stopChan:
			return
		}
	}
}

// Stop stops the autosave loop and saves final state
func (m *Manager) Stop() error {
	m.stopOnce.Do(func() { close(m.stopChan) })
	return m.Save()
}
