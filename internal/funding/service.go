package funding

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"cairn/research-portal/portal-backend/internal/notifications"
	"cairn/research-portal/portal-backend/internal/projects"
	"cairn/research-portal/portal-backend/pkg/chain"
	"cairn/research-portal/portal-backend/pkg/events"
)

// ProjectLedger is the part of the project service funding needs
type ProjectLedger interface {
	AddFunding(ctx context.Context, projectID string, amount float64) (*projects.FundingResult, error)
	RevertFunding(ctx context.Context, projectID string, amount float64, reopen bool) (*projects.Project, error)
	List(ctx context.Context, f projects.ListFilter) ([]*projects.Project, error)
}

// Service records instant funding and derives funding dashboards
type Service struct {
	repo      Repository
	projects  ProjectLedger
	notifier  notifications.Notifier
	publisher events.Publisher
	printer   *message.Printer
	nonce     atomic.Uint64
	now       func() time.Time
	logger    *zap.Logger
}

type Option func(*Service)

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, ledger ProjectLedger, notifier notifications.Notifier, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		projects:  ledger,
		notifier:  notifier,
		publisher: events.NewLogPublisher(logger),
		printer:   message.NewPrinter(language.English),
		now:       time.Now,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Seed loads events given in display order when the history is empty
func (s *Service) Seed(ctx context.Context, seed []FundingEvent) error {
	existing, err := s.repo.List(ctx, Filter{})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	for i := len(seed) - 1; i >= 0; i-- {
		e := seed[i]
		if err := s.repo.Create(ctx, &e); err != nil {
			return fmt.Errorf("failed to seed funding event %s: %w", e.ID, err)
		}
	}
	return nil
}

func walletKey(wallet string) string {
	return strings.ToLower(strings.TrimSpace(wallet))
}

// MaxAmount keeps amounts exactly representable as whole dollars
const MaxAmount = 1 << 53

func validAmount(amount float64) bool {
	return amount > 0 && amount <= MaxAmount && amount == math.Trunc(amount)
}

// InstantFund moves amount from funder into the project's pool
func (s *Service) InstantFund(ctx context.Context, funder, projectID string, amount float64) (*FundResult, error) {
	if !validAmount(amount) {
		return nil, ErrInvalidAmount
	}

	res, err := s.projects.AddFunding(ctx, projectID, amount)
	if err != nil {
		return nil, err
	}
	project := res.Project

	now := s.now()
	event := &FundingEvent{
		ID:           "fh-" + uuid.NewString(),
		ProjectID:    project.ID,
		ProjectTitle: project.Title,
		Amount:       amount,
		Timestamp:    now.UTC().Truncate(24 * time.Hour),
		FunderWallet: funder,
		TxHash:       chain.TxHash(funder, project.ID, amount, now, s.nonce.Add(1)),
	}
	if err := s.repo.Create(ctx, event); err != nil {
		s.logger.Error("Failed to record funding event",
			zap.String("project_id", project.ID),
			zap.String("funder", funder),
			zap.Float64("amount", amount),
			zap.Error(err))
		if _, rerr := s.projects.RevertFunding(context.WithoutCancel(ctx), project.ID, amount, res.FullyFunded); rerr != nil {
			s.logger.Error("Failed to revert project funding",
				zap.String("project_id", project.ID),
				zap.Float64("amount", amount),
				zap.Error(rerr))
		}
		return nil, fmt.Errorf("failed to record funding event: %w", err)
	}

	var msg string
	if res.FullyFunded {
		msg = fmt.Sprintf("Project \"%s\" has been fully funded!", project.Title)
	} else {
		msg = s.printer.Sprintf("Successfully funded $%d to \"%s\"!", int64(amount), project.Title)
	}
	s.notifier.Notify(ctx, funder, notifications.ToastSuccess, msg)

	err = s.publisher.Publish(ctx, events.Event{
		Type:      events.TypeFundingRecorded,
		ProjectID: project.ID,
		Wallet:    funder,
		Payload: map[string]any{
			"event_id": event.ID,
			"amount":   amount,
			"tx_hash":  event.TxHash,
		},
		OccurredAt: now,
	})
	if err != nil {
		s.logger.Warn("Failed to publish funding event", zap.String("event_id", event.ID), zap.Error(err))
	}

	s.logger.Info("Project funded",
		zap.String("project_id", project.ID),
		zap.String("funder", funder),
		zap.Float64("amount", amount),
		zap.Bool("fully_funded", res.FullyFunded))

	return &FundResult{Event: event, Project: project, FullyFunded: res.FullyFunded, Message: msg}, nil
}

// History lists funding events, most recent first
func (s *Service) History(ctx context.Context, filter Filter) ([]*FundingEvent, error) {
	return s.repo.List(ctx, filter)
}

// FunderMetrics totals a funder's contributions. A shared project is one
// funded by more than one distinct wallet.
func (s *Service) FunderMetrics(ctx context.Context, funder string) (*FunderMetrics, error) {
	all, err := s.repo.List(ctx, Filter{})
	if err != nil {
		return nil, err
	}

	fundersByProject := make(map[string]map[string]struct{})
	mine := make(map[string]struct{})
	m := &FunderMetrics{}
	for _, e := range all {
		wallet := walletKey(e.FunderWallet)
		if fundersByProject[e.ProjectID] == nil {
			fundersByProject[e.ProjectID] = make(map[string]struct{})
		}
		fundersByProject[e.ProjectID][wallet] = struct{}{}

		if chain.SameAddress(e.FunderWallet, funder) {
			m.TotalDeployed += e.Amount
			mine[e.ProjectID] = struct{}{}
		}
	}

	m.ProjectsFunded = len(mine)
	for projectID := range mine {
		if len(fundersByProject[projectID]) > 1 {
			m.SharedProjects++
		}
	}
	return m, nil
}

// ScientistFunding lists the owner's Active and Funded projects by pool,
// largest first, with the funding received by each
func (s *Service) ScientistFunding(ctx context.Context, owner string) ([]ProjectFunding, error) {
	owned, err := s.projects.List(ctx, projects.ListFilter{
		Owner:      owner,
		Statuses:   []projects.ProjectStatus{projects.StatusActive, projects.StatusFunded},
		Sort:       projects.SortFundingPool,
		Descending: true,
	})
	if err != nil {
		return nil, err
	}

	all, err := s.repo.List(ctx, Filter{})
	if err != nil {
		return nil, err
	}
	byProject := make(map[string][]*FundingEvent)
	for _, e := range all {
		byProject[e.ProjectID] = append(byProject[e.ProjectID], e)
	}

	rows := make([]ProjectFunding, 0, len(owned))
	for _, p := range owned {
		row := ProjectFunding{
			ProjectID:      p.ID,
			Title:          p.Title,
			Status:         p.Status,
			FundingPool:    p.FundingPool,
			FundingGoal:    p.FundingGoal,
			Funders:        []string{},
			TxHashes:       []string{},
			ImpactLevel:    p.ImpactLevel(),
			HasCertificate: p.HasCertificate(),
		}

		received := byProject[p.ID]
		sort.SliceStable(received, func(i, j int) bool { return received[i].Timestamp.Before(received[j].Timestamp) })
		seen := make(map[string]struct{})
		for _, e := range received {
			if row.FirstFundedAt == nil {
				first := e.Timestamp
				row.FirstFundedAt = &first
			}
			key := walletKey(e.FunderWallet)
			if _, ok := seen[key]; !ok {
				seen[key] = struct{}{}
				row.Funders = append(row.Funders, e.FunderWallet)
			}
			row.TxHashes = append(row.TxHashes, e.TxHash)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
