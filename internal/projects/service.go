package projects

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cairn/research-portal/portal-backend/internal/notifications"
	"cairn/research-portal/portal-backend/internal/profiles"
	"cairn/research-portal/portal-backend/pkg/chain"
	"cairn/research-portal/portal-backend/pkg/events"
	"cairn/research-portal/portal-backend/pkg/search"
	"cairn/research-portal/portal-backend/pkg/storage"
	"cairn/research-portal/portal-backend/pkg/workflows"
)

// ProfileStore is the slice of the profile service projects depend on
type ProfileStore interface {
	Get(ctx context.Context, wallet string) (*profiles.Profile, error)
	IncrementContributions(ctx context.Context, wallet string) (*profiles.Profile, error)
	SpendContributions(ctx context.Context, wallet string, required int) (int, error)
	RestoreContributions(ctx context.Context, wallet string, n int) (*profiles.Profile, error)
}

// Settings tunes project rules
type Settings struct {
	PoRRequirement     int
	DefaultFundingGoal float64
	DisputeWindow      time.Duration
	// ArchiveGracePeriod of zero disables automatic archival
	ArchiveGracePeriod time.Duration
}

// Service implements the project workflows
type Service struct {
	repo          Repository
	profiles      ProfileStore
	notifier      notifications.Notifier
	publisher     events.Publisher
	index         search.Index
	projectStates *workflows.StateMachine
	porStates     *workflows.StateMachine
	settings      Settings
	now           func() time.Time
	logger        *zap.Logger
}

type Option func(*Service)

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithIndex(idx search.Index) Option {
	return func(s *Service) { s.index = idx }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a project service. Without options events only go to
// the log and search uses an in-process index.
func NewService(repo Repository, profileStore ProfileStore, notifier notifications.Notifier, settings Settings, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		repo:          repo,
		profiles:      profileStore,
		notifier:      notifier,
		publisher:     events.NewLogPublisher(logger),
		index:         search.NewMemoryIndex(),
		projectStates: workflows.NewProjectStateMachine(),
		porStates:     workflows.NewReproducibilityStateMachine(),
		settings:      settings,
		now:           time.Now,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) today() time.Time {
	return s.now().UTC().Truncate(24 * time.Hour)
}

// Seed loads projects given in display order, skipping ones already present
func (s *Service) Seed(ctx context.Context, seed []*Project) error {
	for i := len(seed) - 1; i >= 0; i-- {
		p := seed[i]
		if _, err := s.repo.GetByID(ctx, p.ID); err == nil {
			continue
		}
		if err := s.repo.Create(ctx, p); err != nil {
			return fmt.Errorf("failed to seed project %s: %w", p.ID, err)
		}
		s.indexProject(ctx, p)
	}
	return nil
}

// Get returns a project by id
func (s *Service) Get(ctx context.Context, id string) (*Project, error) {
	return s.repo.GetByID(ctx, id)
}

// Eligibility describes whether a wallet may open a new project
type Eligibility struct {
	Contributed int  `json:"contributed"`
	Required    int  `json:"required"`
	Eligible    bool `json:"eligible"`
}

// CheckEligibility compares the wallet's PoR contributions with the requirement
func (s *Service) CheckEligibility(ctx context.Context, wallet string) (*Eligibility, error) {
	profile, err := s.profiles.Get(ctx, wallet)
	if err != nil {
		if errors.Is(err, profiles.ErrNotFound) {
			return &Eligibility{Required: s.settings.PoRRequirement}, nil
		}
		return nil, err
	}
	return &Eligibility{
		Contributed: profile.PoRContributedCount,
		Required:    s.settings.PoRRequirement,
		Eligible:    profile.PoRContributedCount >= s.settings.PoRRequirement,
	}, nil
}

func (s *Service) validateCreate(req *CreateProjectRequest) error {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if req.Title == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if req.Description == "" {
		return fmt.Errorf("%w: description is required", ErrValidation)
	}
	if req.Domain == "" {
		req.Domain = DomainRobotics
	}
	if _, ok := ReproducibilityTemplates[req.Domain]; !ok {
		return fmt.Errorf("%w: unknown research domain %q", ErrValidation, req.Domain)
	}
	return nil
}

// MetadataCID derives the content id of the project metadata document
func MetadataCID(owner string, req CreateProjectRequest, at time.Time) string {
	doc, _ := json.Marshal(map[string]any{
		"owner":       owner,
		"title":       req.Title,
		"description": req.Description,
		"domain":      req.Domain,
		"tags":        splitTags(req.Tags),
		"created_at":  at.UTC().Format(time.RFC3339Nano),
	})
	digest := sha256.Sum256(doc)
	return storage.ContentID(digest[:])
}

// CreateProject opens a Draft project for an eligible scientist and spends
// their PoR contributions
func (s *Service) CreateProject(ctx context.Context, owner string, req CreateProjectRequest) (*ActionResult, error) {
	if err := s.validateCreate(&req); err != nil {
		return nil, err
	}

	spent, err := s.profiles.SpendContributions(ctx, owner, s.settings.PoRRequirement)
	switch {
	case errors.Is(err, profiles.ErrInsufficientContributions):
		return nil, fmt.Errorf("%w: %d of %d contributions", ErrNotEligible, spent, s.settings.PoRRequirement)
	case errors.Is(err, profiles.ErrNotFound):
		return nil, fmt.Errorf("%w: 0 of %d contributions", ErrNotEligible, s.settings.PoRRequirement)
	case err != nil:
		return nil, err
	}

	now := s.now()
	today := s.today()
	if req.CID == "" {
		req.CID = MetadataCID(owner, req, now)
	}
	fundingGoal := s.settings.DefaultFundingGoal

	project := &Project{
		ID:                          "proj-" + uuid.NewString(),
		OwnerID:                     owner,
		Title:                       req.Title,
		Description:                 req.Description,
		Tags:                        splitTags(req.Tags),
		Status:                      StatusDraft,
		Domain:                      req.Domain,
		CID:                         req.CID,
		StartDate:                   today,
		EndDate:                     today.AddDate(1, 0, 0),
		Reproducibilities:           []Reproducibility{},
		FundingGoal:                 &fundingGoal,
		Outputs:                     []Output{},
		ReproducibilityRequirements: append([]string(nil), ReproducibilityTemplates[req.Domain]...),
		Organization:                strings.TrimSpace(req.Organization),
		AdditionalInfoURL:           strings.TrimSpace(req.AdditionalInfoURL),
		ImpactAssetOwners:           []ImpactAssetOwner{},
	}

	if err := s.repo.Create(ctx, project); err != nil {
		if _, rerr := s.profiles.RestoreContributions(context.WithoutCancel(ctx), owner, spent); rerr != nil {
			s.logger.Error("Failed to restore PoR counter",
				zap.String("wallet", owner),
				zap.Int("spent", spent),
				zap.Error(rerr))
		}
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	s.logger.Info("Project created",
		zap.String("project_id", project.ID),
		zap.String("owner", owner),
		zap.String("domain", string(project.Domain)))

	const msg = "Project created! Your PoR contribution counter has been reset."
	s.notifier.Notify(ctx, owner, notifications.ToastSuccess, msg)
	s.publish(ctx, events.TypeProjectCreated, project.ID, owner, map[string]any{"title": project.Title, "cid": project.CID})
	s.indexProject(ctx, project)

	return &ActionResult{Project: project, Message: msg}, nil
}

func (s *Service) transition(p *Project, to ProjectStatus) error {
	if p.Status == to {
		return nil
	}
	if !s.projectStates.CanTransition(string(p.Status), string(to)) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, p.Status, to)
	}
	p.Status = to
	return nil
}

// AddOutputs records research outputs on the caller's project. Outputs are
// recorded once; a Draft becomes Active and is publicly visible from then on.
func (s *Service) AddOutputs(ctx context.Context, caller, projectID string, req AddOutputsRequest) (*ActionResult, error) {
	if len(req.Outputs) == 0 {
		return nil, fmt.Errorf("%w: at least one output is required", ErrValidation)
	}
	outputs, err := buildOutputs(req.Outputs, s.today(), false)
	if err != nil {
		return nil, err
	}

	activated := false
	updated, err := s.repo.Update(ctx, projectID, func(p *Project) error {
		if !chain.SameAddress(p.OwnerID, caller) {
			return fmt.Errorf("%w: only the owner records outputs", ErrForbidden)
		}
		if p.Status == StatusArchived {
			return fmt.Errorf("%w: project is archived", ErrClosed)
		}
		if len(p.Outputs) > 0 {
			return fmt.Errorf("%w: outputs were already recorded", ErrInvalidTransition)
		}
		if p.Status == StatusDraft {
			if err := s.transition(p, StatusActive); err != nil {
				return err
			}
			activated = true
		}
		p.Outputs = outputs
		p.LastOutputDate = latestOutputDate(p.Outputs)
		return nil
	})
	if err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("%d output(s) recorded successfully!", len(outputs))
	if activated {
		msg = "Project activated! It is now publicly visible."
		s.publish(ctx, events.TypeProjectActivated, updated.ID, caller, nil)
		s.indexProject(ctx, updated)
	}
	s.notifier.Notify(ctx, caller, notifications.ToastSuccess, msg)

	s.logger.Info("Outputs recorded",
		zap.String("project_id", updated.ID),
		zap.Int("count", len(outputs)),
		zap.Bool("activated", activated))

	return &ActionResult{Project: updated, Message: msg}, nil
}

// SubmitPoR records a reproducibility claim from someone other than the owner
func (s *Service) SubmitPoR(ctx context.Context, caller, projectID string, req SubmitPoRRequest) (*ActionResult, error) {
	notes := strings.TrimSpace(req.Notes)
	if notes == "" {
		return nil, fmt.Errorf("%w: notes are required", ErrValidation)
	}
	if len(req.Evidence) == 0 {
		return nil, fmt.Errorf("%w: at least one piece of evidence is required", ErrValidation)
	}
	if _, err := s.profiles.Get(ctx, caller); err != nil {
		return nil, fmt.Errorf("%w: unknown wallet", ErrForbidden)
	}

	today := s.today()
	evidence, err := buildOutputs(req.Evidence, today, true)
	if err != nil {
		return nil, err
	}

	submission := Reproducibility{
		ID:        "rep-" + uuid.NewString(),
		Timestamp: today,
		Evidence:  evidence,
		Notes:     notes,
		Verifier:  caller,
		Status:    PoRWaiting,
	}

	updated, err := s.repo.Update(ctx, projectID, func(p *Project) error {
		if chain.SameAddress(p.OwnerID, caller) {
			return fmt.Errorf("%w: owners cannot reproduce their own project", ErrForbidden)
		}
		if p.Status != StatusActive {
			return fmt.Errorf("%w: project is %s", ErrClosed, p.Status)
		}
		p.Reproducibilities = append(p.Reproducibilities, submission)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.profiles.IncrementContributions(ctx, caller); err != nil {
		s.logger.Error("Failed to increment PoR counter", zap.String("wallet", caller), zap.Error(err))
	}

	const msg = "PoR submitted! Your contribution is recorded."
	s.notifier.Notify(ctx, caller, notifications.ToastSuccess, msg)
	s.publish(ctx, events.TypeReproducibilityAdded, updated.ID, caller, map[string]any{"reproducibility_id": submission.ID})

	return &ActionResult{Project: updated, Message: msg}, nil
}

// Dispute flags a Waiting submission for review
func (s *Service) Dispute(ctx context.Context, caller, projectID, reproducibilityID string) (*ActionResult, error) {
	var verifier string
	updated, err := s.repo.Update(ctx, projectID, func(p *Project) error {
		if chain.SameAddress(p.OwnerID, caller) {
			return fmt.Errorf("%w: owners cannot dispute submissions on their project", ErrForbidden)
		}
		idx := p.FindReproducibility(reproducibilityID)
		if idx < 0 {
			return ErrPoRNotFound
		}
		r := &p.Reproducibilities[idx]
		if !s.porStates.CanTransition(string(r.Status), string(PoRDisputed)) {
			return fmt.Errorf("%w: submission is %s", ErrInvalidTransition, r.Status)
		}
		r.Status = PoRDisputed
		verifier = r.Verifier
		return nil
	})
	if err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("Submission from %s... has been flagged for review.", chain.ShortAddress(verifier, 8))
	s.notifier.Notify(ctx, caller, notifications.ToastInfo, msg)
	s.publish(ctx, events.TypeReproducibilityFlag, updated.ID, caller, map[string]any{
		"reproducibility_id": reproducibilityID,
		"verifier":           verifier,
	})

	return &ActionResult{Project: updated, Message: msg}, nil
}

// FundingResult reports the effect of a contribution on a project
type FundingResult struct {
	Project     *Project
	FullyFunded bool
}

// AddFunding adds amount to the pool of an Active or Funded project and
// marks it Funded once the goal is reached. Without a goal it never is.
func (s *Service) AddFunding(ctx context.Context, projectID string, amount float64) (*FundingResult, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}

	fullyFunded := false
	updated, err := s.repo.Update(ctx, projectID, func(p *Project) error {
		if p.Status != StatusActive && p.Status != StatusFunded {
			return fmt.Errorf("%w: project is %s", ErrClosed, p.Status)
		}
		p.FundingPool += amount
		if p.Status == StatusActive && p.FundingGoal != nil && p.FundingPool >= *p.FundingGoal {
			if err := s.transition(p, StatusFunded); err != nil {
				return err
			}
			fullyFunded = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if fullyFunded {
		s.publish(ctx, events.TypeProjectFunded, updated.ID, "", map[string]any{"funding_pool": updated.FundingPool})
		s.indexProject(ctx, updated)
	}
	return &FundingResult{Project: updated, FullyFunded: fullyFunded}, nil
}

// RevertFunding takes back a contribution added by AddFunding whose record
// could not be stored. reopen undoes the Funded transition that contribution
// caused.
func (s *Service) RevertFunding(ctx context.Context, projectID string, amount float64, reopen bool) (*Project, error) {
	reopened := false
	updated, err := s.repo.Update(ctx, projectID, func(p *Project) error {
		p.FundingPool = max(p.FundingPool-amount, 0)
		reopened = false
		if reopen && p.Status == StatusFunded && p.FundingGoal != nil && p.FundingPool < *p.FundingGoal {
			p.Status = StatusActive
			reopened = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Warn("Funding reverted",
		zap.String("project_id", projectID),
		zap.Float64("amount", amount),
		zap.Bool("reopened", reopened))
	if reopened {
		s.indexProject(ctx, updated)
	}
	return updated, nil
}

// FinalizeReproducibilities accepts Waiting submissions that went
// undisputed for the whole dispute window
func (s *Service) FinalizeReproducibilities(ctx context.Context) (int, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := s.now().Add(-s.settings.DisputeWindow)
	finalized := 0
	for _, candidate := range all {
		if !hasExpiredWaiting(candidate, cutoff) {
			continue
		}
		n := 0
		_, err := s.repo.Update(ctx, candidate.ID, func(p *Project) error {
			n = 0
			for i := range p.Reproducibilities {
				r := &p.Reproducibilities[i]
				if r.Status == PoRWaiting && !r.Timestamp.After(cutoff) &&
					s.porStates.CanTransition(string(r.Status), string(PoRSuccess)) {
					r.Status = PoRSuccess
					n++
				}
			}
			return nil
		})
		if err != nil {
			s.logger.Error("Failed to finalize submissions", zap.String("project_id", candidate.ID), zap.Error(err))
			continue
		}
		finalized += n
	}

	if finalized > 0 {
		s.logger.Info("Reproducibility submissions finalized", zap.Int("count", finalized))
	}
	return finalized, nil
}

func hasExpiredWaiting(p *Project, cutoff time.Time) bool {
	for _, r := range p.Reproducibilities {
		if r.Status == PoRWaiting && !r.Timestamp.After(cutoff) {
			return true
		}
	}
	return false
}

// ArchiveExpired archives Active and Funded projects whose end date passed
// more than the grace period ago
func (s *Service) ArchiveExpired(ctx context.Context) (int, error) {
	if s.settings.ArchiveGracePeriod <= 0 {
		return 0, nil
	}

	all, err := s.repo.List(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := s.now().Add(-s.settings.ArchiveGracePeriod)
	archived := 0
	for _, candidate := range all {
		if candidate.Status != StatusActive && candidate.Status != StatusFunded {
			continue
		}
		if !candidate.EndDate.Before(cutoff) {
			continue
		}
		changed := false
		updated, err := s.repo.Update(ctx, candidate.ID, func(p *Project) error {
			changed = false
			if p.Status == StatusArchived {
				return nil
			}
			if err := s.transition(p, StatusArchived); err != nil {
				return err
			}
			changed = true
			return nil
		})
		if err != nil {
			s.logger.Error("Failed to archive project", zap.String("project_id", candidate.ID), zap.Error(err))
			continue
		}
		if !changed {
			continue
		}
		archived++
		s.publish(ctx, events.TypeProjectArchived, updated.ID, "", nil)
		s.indexProject(ctx, updated)
	}
	return archived, nil
}

func (s *Service) publish(ctx context.Context, typ, projectID, wallet string, payload map[string]any) {
	err := s.publisher.Publish(ctx, events.Event{
		Type:       typ,
		ProjectID:  projectID,
		Wallet:     wallet,
		Payload:    payload,
		OccurredAt: s.now(),
	})
	if err != nil {
		s.logger.Warn("Failed to publish event", zap.String("type", typ), zap.Error(err))
	}
}

func (s *Service) indexProject(ctx context.Context, p *Project) {
	err := s.index.Index(ctx, search.Document{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Tags:        p.Tags,
		Domain:      string(p.Domain),
		Status:      string(p.Status),
	})
	if err != nil {
		s.logger.Warn("Failed to index project", zap.String("project_id", p.ID), zap.Error(err))
	}
}
