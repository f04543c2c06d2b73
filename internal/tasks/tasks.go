// Package tasks tracks long-running operations (dataset loads, schema
// inference) for progress display. The manager is an in-process registry;
// callers create a task, report progress counts, and mark completion.
package tasks

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

// Status of a task.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
)

// Type of a task.
type Type string

const (
	TypeDatasetLoad Type = "dataset_load"
	TypeSchemaInfer Type = "schema_infer"
)

// Info is a snapshot of one task's metadata.
type Info struct {
	Name        string
	Type        Type
	Status      Status
	Description string
	Message     string
	Error       string
	Start       time.Time
	End         time.Time
	TotalLen    int
	Progress    int
}

// Manifest is a snapshot of all tasks plus the aggregate progress fraction
// of the ones still running (nil when none report progress).
type Manifest struct {
	Tasks    map[string]Info
	Progress *float64
}

// Manager registers tasks and their progress. Safe for concurrent use.
type Manager struct {
	mu    sync.Mutex
	tasks map[string]*Info
}

// NewManager returns an empty task manager.
func NewManager() *Manager {
	return &Manager{tasks: make(map[string]*Info)}
}

// Start registers a new task and returns its id.
func (m *Manager) Start(name string, typ Type, description string, totalLen int) string {
	id := newTaskID()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[id] = &Info{
		Name:        name,
		Type:        typ,
		Status:      StatusPending,
		Description: description,
		Start:       time.Now(),
		TotalLen:    totalLen,
	}
	return id
}

// Report updates a task's progress count.
func (m *Manager) Report(id string, progress int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tasks[id]; ok {
		t.Progress = progress
	}
}

// SetError marks a task as failed.
func (m *Manager) SetError(id string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return
	}
	t.Status = StatusError
	t.Error = err.Error()
	t.End = time.Now()
}

// SetCompleted marks a task as finished and records its elapsed message.
// A task already marked errored stays errored.
func (m *Manager) SetCompleted(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return
	}
	t.End = time.Now()
	if t.Status != StatusError {
		t.Status = StatusCompleted
		t.Message = fmt.Sprintf("Completed in %s", prettyDuration(t.End.Sub(t.Start)))
	}
}

// Get returns a snapshot of one task.
func (m *Manager) Get(id string) (Info, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return Info{}, false
	}
	return *t, true
}

// Manifest returns a snapshot of all tasks with aggregate progress over the
// unfinished ones.
func (m *Manager) Manifest() Manifest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := Manifest{Tasks: make(map[string]Info, len(m.tasks))}
	var fractions []float64
	for id, t := range m.tasks {
		out.Tasks[id] = *t
		if t.Status != StatusCompleted && t.TotalLen > 0 && t.Progress > 0 {
			fractions = append(fractions, float64(t.Progress)/float64(t.TotalLen))
		}
	}
	if len(fractions) > 0 {
		sum := 0.0
		for _, f := range fractions {
			sum += f
		}
		avg := sum / float64(len(fractions))
		out.Progress = &avg
	}
	return out
}

func newTaskID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("tasks: read random bytes: %v", err))
	}
	return hex.EncodeToString(buf)
}

func prettyDuration(d time.Duration) string {
	switch {
	case d >= time.Hour:
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	case d >= time.Minute:
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	case d >= time.Second:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
}
