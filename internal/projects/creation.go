package projects

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cairn/research-portal/portal-backend/pkg/chain"
	"cairn/research-portal/portal-backend/pkg/storage"
)

var (
	ErrCreationNotFound = errors.New("project creation not found")
	ErrCreationBusy     = errors.New("project creation is still running")
)

// StepStatus is the progress of one simulated on-chain step
type StepStatus string

const (
	StepPending StepStatus = "pending"
	StepActive  StepStatus = "active"
	StepSuccess StepStatus = "success"
	StepError   StepStatus = "error"
)

// CreationStatus is the state of the whole wizard. "form" only exists on
// the client before a creation is started.
type CreationStatus string

const (
	CreationForm     CreationStatus = "form"
	CreationCreating CreationStatus = "creating"
	CreationSuccess  CreationStatus = "success"
	CreationFailed   CreationStatus = "error"
)

type CreationStep struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      StepStatus `json:"status"`
}

// CreationError mirrors the step failure shown to the user
type CreationError struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Retryable bool      `json:"retryable"`
}

// Creation tracks one run of the project creation wizard
type Creation struct {
	ID        string               `json:"id"`
	Owner     string               `json:"owner"`
	Request   CreateProjectRequest `json:"request"`
	Status    CreationStatus       `json:"status"`
	Steps     []CreationStep       `json:"steps"`
	CID       string               `json:"cid,omitempty"`
	ProjectID string               `json:"project_id,omitempty"`
	Attempts  int                  `json:"attempts"`
	Error     *CreationError       `json:"error,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

func (c *Creation) clone() *Creation {
	cp := *c
	cp.Steps = append([]CreationStep(nil), c.Steps...)
	if c.Error != nil {
		e := *c.Error
		cp.Error = &e
	}
	return &cp
}

// CreationSettings drives the simulated chain steps. Finished creations are
// forgotten Retention after their last update.
type CreationSettings struct {
	StepDelays  []time.Duration
	FailureRate float64
	Retention   time.Duration
}

var creationSteps = []CreationStep{
	{Name: "1. Create Project Metadata", Description: "Storing project details on the smart contract."},
	{Name: "2. Mint Hypercert", Description: "Generating the fractionalized impact certificate."},
	{Name: "3. Link Impact Assets", Description: "Connecting the project and Hypercert token ID."},
}

// CreationWorkflow runs creation wizards in the background. Runs outlive the
// request that started them and stop when the workflow is closed.
type CreationWorkflow struct {
	service  *Service
	ipfs     storage.IPFSClient
	settings CreationSettings
	roll     func() float64
	logger   *zap.Logger

	mu        sync.RWMutex
	creations map[string]*Creation

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewCreationWorkflow creates a wizard runner on top of the project service
func NewCreationWorkflow(service *Service, ipfs storage.IPFSClient, settings CreationSettings, logger *zap.Logger) *CreationWorkflow {
	if len(settings.StepDelays) == 0 {
		settings.StepDelays = []time.Duration{2 * time.Second, 2500 * time.Millisecond, 2 * time.Second}
	}
	if settings.Retention <= 0 {
		settings.Retention = time.Hour
	}
	ctx, cancel := context.WithCancel(context.Background())
	w := &CreationWorkflow{
		service:   service,
		ipfs:      ipfs,
		settings:  settings,
		roll:      rand.Float64,
		logger:    logger,
		creations: make(map[string]*Creation),
		ctx:       ctx,
		cancel:    cancel,
	}

	w.wg.Add(1)
	go w.cleanupLoop()

	return w
}

func (w *CreationWorkflow) cleanupLoop() {
	defer w.wg.Done()

	interval := min(w.settings.Retention, time.Minute)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.removeFinished(w.service.now())
		case <-w.ctx.Done():
			return
		}
	}
}

// removeFinished drops succeeded and failed creations past their retention
func (w *CreationWorkflow) removeFinished(now time.Time) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	cutoff := now.Add(-w.settings.Retention)
	removed := 0
	for id, c := range w.creations {
		if c.Status == CreationCreating || c.UpdatedAt.After(cutoff) {
			continue
		}
		delete(w.creations, id)
		removed++
	}
	if removed > 0 {
		w.logger.Debug("Finished creations removed", zap.Int("count", removed))
	}
	return removed
}

func (w *CreationWorkflow) delay(step int) time.Duration {
	if step < len(w.settings.StepDelays) {
		return w.settings.StepDelays[step]
	}
	return w.settings.StepDelays[len(w.settings.StepDelays)-1]
}

// StartCreation validates the form and the owner's eligibility, then runs
// the chain steps in the background
func (w *CreationWorkflow) StartCreation(ctx context.Context, owner string, req CreateProjectRequest) (*Creation, error) {
	if err := w.service.validateCreate(&req); err != nil {
		return nil, err
	}
	eligibility, err := w.service.CheckEligibility(ctx, owner)
	if err != nil {
		return nil, err
	}
	if !eligibility.Eligible {
		return nil, fmt.Errorf("%w: %d of %d contributions", ErrNotEligible, eligibility.Contributed, eligibility.Required)
	}

	now := w.service.now()
	c := &Creation{
		ID:        "create-" + uuid.NewString(),
		Owner:     owner,
		Request:   req,
		CreatedAt: now,
	}
	w.reset(c, now)

	w.mu.Lock()
	w.creations[c.ID] = c
	snapshot := c.clone()
	w.mu.Unlock()

	w.logger.Info("Project creation started", zap.String("creation_id", c.ID), zap.String("owner", owner))
	w.launch(c.ID)
	return snapshot, nil
}

// RetryCreation restarts a failed creation from the first step
func (w *CreationWorkflow) RetryCreation(ctx context.Context, owner, id string) (*Creation, error) {
	w.mu.Lock()
	c, ok := w.creations[id]
	if !ok || !chain.SameAddress(c.Owner, owner) {
		w.mu.Unlock()
		return nil, ErrCreationNotFound
	}
	if c.Status != CreationFailed {
		status := c.Status
		w.mu.Unlock()
		if status == CreationSuccess {
			return nil, fmt.Errorf("%w: creation already succeeded", ErrInvalidTransition)
		}
		return nil, ErrCreationBusy
	}
	w.reset(c, w.service.now())
	snapshot := c.clone()
	w.mu.Unlock()

	w.logger.Info("Project creation retried", zap.String("creation_id", id), zap.Int("attempt", snapshot.Attempts))
	w.launch(id)
	return snapshot, nil
}

// GetCreation returns the current state of a creation owned by the caller
func (w *CreationWorkflow) GetCreation(ctx context.Context, owner, id string) (*Creation, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	c, ok := w.creations[id]
	if !ok || !chain.SameAddress(c.Owner, owner) {
		return nil, ErrCreationNotFound
	}
	return c.clone(), nil
}

// Close cancels running creations and waits for them to stop
func (w *CreationWorkflow) Close() {
	w.cancel()
	w.wg.Wait()
}

// reset must be called with mu held
func (w *CreationWorkflow) reset(c *Creation, now time.Time) {
	c.Status = CreationCreating
	c.Steps = make([]CreationStep, len(creationSteps))
	copy(c.Steps, creationSteps)
	for i := range c.Steps {
		c.Steps[i].Status = StepPending
	}
	c.Steps[0].Status = StepActive
	c.Attempts++
	c.Error = nil
	c.UpdatedAt = now
}

func (w *CreationWorkflow) launch(id string) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run(id)
	}()
}

func (w *CreationWorkflow) update(id string, fn func(c *Creation)) *Creation {
	w.mu.Lock()
	defer w.mu.Unlock()
	c := w.creations[id]
	fn(c)
	c.UpdatedAt = w.service.now()
	return c.clone()
}

func (w *CreationWorkflow) run(id string) {
	snapshot := w.update(id, func(*Creation) {})
	owner, req := snapshot.Owner, snapshot.Request

	for i := range creationSteps {
		w.update(id, func(c *Creation) { c.Steps[i].Status = StepActive })

		select {
		case <-w.ctx.Done():
			w.fail(id, "CANCELLED", "project creation was interrupted", true)
			return
		case <-time.After(w.delay(i)):
		}

		if i == 0 {
			cid, err := w.pinMetadata(owner, req)
			if err != nil {
				w.fail(id, "METADATA_PIN_FAILED", err.Error(), true)
				return
			}
			req.CID = cid
			w.update(id, func(c *Creation) { c.CID = cid })
		}

		if w.settings.FailureRate > 0 && w.roll() < w.settings.FailureRate {
			w.fail(id, "STEP_FAILED", fmt.Sprintf("%s failed. Please try again.", creationSteps[i].Name), true)
			return
		}

		w.update(id, func(c *Creation) { c.Steps[i].Status = StepSuccess })
	}

	result, err := w.service.CreateProject(w.ctx, owner, req)
	if err != nil {
		retryable := !errors.Is(err, ErrNotEligible) && !errors.Is(err, ErrValidation)
		w.failLast(id, "CREATE_FAILED", err.Error(), retryable)
		return
	}

	w.update(id, func(c *Creation) {
		c.Status = CreationSuccess
		c.ProjectID = result.Project.ID
	})
	w.logger.Info("Project creation completed",
		zap.String("creation_id", id),
		zap.String("project_id", result.Project.ID))
}

func (w *CreationWorkflow) pinMetadata(owner string, req CreateProjectRequest) (string, error) {
	doc, err := json.Marshal(map[string]any{
		"owner":               owner,
		"title":               req.Title,
		"description":         req.Description,
		"domain":              req.Domain,
		"tags":                splitTags(req.Tags),
		"organization":        req.Organization,
		"additional_info_url": req.AdditionalInfoURL,
		"created_at":          w.service.now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return "", err
	}
	return w.ipfs.PinFile(w.ctx, bytes.NewReader(doc))
}

// fail marks the active step and the creation as errored
func (w *CreationWorkflow) fail(id, code, message string, retryable bool) {
	w.update(id, func(c *Creation) {
		for i := range c.Steps {
			if c.Steps[i].Status == StepActive {
				c.Steps[i].Status = StepError
			}
		}
		c.Status = CreationFailed
		c.Error = &CreationError{Code: code, Message: message, Timestamp: w.service.now(), Retryable: retryable}
	})
	w.logger.Warn("Project creation failed", zap.String("creation_id", id), zap.String("code", code), zap.String("message", message))
}

// failLast is used once every step succeeded but the project could not be stored
func (w *CreationWorkflow) failLast(id, code, message string, retryable bool) {
	w.update(id, func(c *Creation) {
		c.Steps[len(c.Steps)-1].Status = StepActive
	})
	w.fail(id, code, message, retryable)
}
