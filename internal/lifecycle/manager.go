package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Task is one maintenance pass. Run reports how many records it changed.
type Task struct {
	Name string
	Run  func(ctx context.Context) (int, error)
}

// JobStatus is the last known state of a task
type JobStatus struct {
	Name      string    `json:"name"`
	NextRun   time.Time `json:"next_run"`
	PrevRun   time.Time `json:"prev_run"`
	LastCount int       `json:"last_count"`
	LastError string    `json:"last_error,omitempty"`
	Runs      int       `json:"runs"`
}

// Manager runs status maintenance tasks on a cron schedule
type Manager struct {
	cron     *cron.Cron
	schedule string
	tasks    []Task
	timeout  time.Duration
	logger   *zap.Logger

	mu      sync.RWMutex
	entries map[string]cron.EntryID
	status  map[string]*JobStatus
	running bool
}

var parser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ValidateSchedule checks a cron expression with an optional seconds field
func ValidateSchedule(expr string) error {
	_, err := parser.Parse(expr)
	return err
}

// NewManager creates a manager that runs every task on schedule
func NewManager(schedule string, tasks []Task, logger *zap.Logger) (*Manager, error) {
	if err := ValidateSchedule(schedule); err != nil {
		return nil, fmt.Errorf("invalid lifecycle schedule %q: %w", schedule, err)
	}
	m := &Manager{
		cron:     cron.New(cron.WithParser(parser)),
		schedule: schedule,
		tasks:    tasks,
		timeout:  5 * time.Minute,
		logger:   logger,
		entries:  make(map[string]cron.EntryID),
		status:   make(map[string]*JobStatus),
	}
	for _, task := range tasks {
		m.status[task.Name] = &JobStatus{Name: task.Name}
	}
	return m, nil
}

// Start registers the tasks and starts the cron scheduler
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return fmt.Errorf("lifecycle manager already running")
	}

	for _, task := range m.tasks {
		entryID, err := m.cron.AddFunc(m.schedule, func() {
			ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
			defer cancel()
			m.execute(ctx, task)
		})
		if err != nil {
			return fmt.Errorf("failed to add cron job %s: %w", task.Name, err)
		}
		m.entries[task.Name] = entryID
	}

	m.cron.Start()
	m.running = true
	m.logger.Info("Lifecycle manager started", zap.String("schedule", m.schedule), zap.Int("tasks", len(m.tasks)))
	return nil
}

// Stop stops the scheduler and waits for running tasks
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	for name, entryID := range m.entries {
		m.cron.Remove(entryID)
		delete(m.entries, name)
	}
	m.mu.Unlock()

	m.logger.Info("Stopping lifecycle manager")
	<-m.cron.Stop().Done()
}

// RunNow executes every task once, in order
func (m *Manager) RunNow(ctx context.Context) []JobStatus {
	out := make([]JobStatus, 0, len(m.tasks))
	for _, task := range m.tasks {
		out = append(out, m.execute(ctx, task))
	}
	return out
}

func (m *Manager) execute(ctx context.Context, task Task) JobStatus {
	count, err := task.Run(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.status[task.Name]
	st.Runs++
	st.PrevRun = time.Now()
	st.LastCount = count
	st.LastError = ""
	if err != nil {
		st.LastError = err.Error()
		m.logger.Error("Lifecycle task failed", zap.String("task", task.Name), zap.Error(err))
	} else if count > 0 {
		m.logger.Info("Lifecycle task completed", zap.String("task", task.Name), zap.Int("changed", count))
	}
	return *st
}

// Status returns the state of every task
func (m *Manager) Status() []JobStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]JobStatus, 0, len(m.tasks))
	for _, task := range m.tasks {
		st := *m.status[task.Name]
		if entryID, ok := m.entries[task.Name]; ok {
			st.NextRun = m.cron.Entry(entryID).Next
		}
		out = append(out, st)
	}
	return out
}
