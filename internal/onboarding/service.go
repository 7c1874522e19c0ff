package onboarding

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"cairn/research-portal/portal-backend/internal/notifications"
	"cairn/research-portal/portal-backend/internal/profiles"
)

// ProfileStore is the part of the profile service onboarding needs
type ProfileStore interface {
	Get(ctx context.Context, wallet string) (*profiles.Profile, error)
	MarkVerified(ctx context.Context, wallet string) (*profiles.Profile, error)
}

// Service runs the one-time identity check for new wallets
type Service struct {
	verifier Verifier
	flags    FlagStore
	profiles ProfileStore
	notifier notifications.Notifier
	logger   *zap.Logger
	now      func() time.Time

	mu       sync.Mutex
	progress map[string]*Progress
}

func NewService(verifier Verifier, flags FlagStore, profileStore ProfileStore, notifier notifications.Notifier, logger *zap.Logger) *Service {
	return &Service{
		verifier: verifier,
		flags:    flags,
		profiles: profileStore,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
		progress: make(map[string]*Progress),
	}
}

func progressKey(wallet string) string {
	return strings.ToLower(strings.TrimSpace(wallet))
}

// Required reports whether wallet still has to verify. A wallet is done when
// either its profile or the persisted flag says so.
func (s *Service) Required(ctx context.Context, wallet string) (bool, error) {
	profile, err := s.profiles.Get(ctx, wallet)
	switch {
	case err == nil && profile.IsVerified:
		return false, nil
	case err != nil && !errors.Is(err, profiles.ErrNotFound):
		return false, err
	}

	verified, err := s.flags.IsVerified(ctx, wallet)
	if err != nil {
		return false, err
	}
	return !verified, nil
}

// Status returns the wallet's onboarding progress
func (s *Service) Status(ctx context.Context, wallet string) (*Progress, error) {
	if strings.TrimSpace(wallet) == "" {
		return nil, ErrInvalidWallet
	}
	required, err := s.Required(ctx, wallet)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p := Progress{Wallet: wallet, Step: StepIntro}
	if current, ok := s.progress[progressKey(wallet)]; ok {
		p = *current
	}
	p.Required = required
	if !required {
		p.Step = StepCompleted
	}
	return &p, nil
}

// Verify asks the identity provider about wallet and blocks until it answers.
// A failed verification can be retried.
func (s *Service) Verify(ctx context.Context, wallet string) (*Progress, error) {
	if strings.TrimSpace(wallet) == "" {
		return nil, ErrInvalidWallet
	}
	key := progressKey(wallet)

	s.mu.Lock()
	p, ok := s.progress[key]
	if ok && p.Step == StepVerifying {
		s.mu.Unlock()
		return nil, ErrVerificationBusy
	}
	if !ok {
		p = &Progress{Wallet: wallet}
		s.progress[key] = p
	}
	p.Step = StepVerifying
	p.Message = ""
	p.Attempts++
	p.UpdatedAt = s.now()
	s.mu.Unlock()

	s.logger.Info("Identity verification started", zap.String("wallet", wallet))
	result, err := s.verifier.Verify(ctx, wallet)

	s.mu.Lock()
	defer s.mu.Unlock()
	p.UpdatedAt = s.now()
	if err != nil {
		p.Step = StepError
		p.Message = failedMessage
		s.logger.Error("Identity verification errored", zap.String("wallet", wallet), zap.Error(err))
		return nil, err
	}
	if result.Success {
		p.Step = StepSuccess
	} else {
		p.Step = StepError
		s.logger.Warn("Identity verification failed", zap.String("wallet", wallet), zap.Int("attempt", p.Attempts))
	}
	p.Message = result.Message
	p.Required = true

	snapshot := *p
	return &snapshot, nil
}

// Complete finishes onboarding after a successful verification
func (s *Service) Complete(ctx context.Context, wallet string) (*Progress, error) {
	key := progressKey(wallet)

	s.mu.Lock()
	p, ok := s.progress[key]
	if !ok || p.Step != StepSuccess {
		s.mu.Unlock()
		return nil, ErrNotVerified
	}
	s.mu.Unlock()

	if _, err := s.profiles.MarkVerified(ctx, wallet); err != nil && !errors.Is(err, profiles.ErrNotFound) {
		return nil, err
	}
	if err := s.flags.SetVerified(ctx, wallet); err != nil {
		return nil, err
	}

	s.mu.Lock()
	p.Step = StepCompleted
	p.Required = false
	p.UpdatedAt = s.now()
	snapshot := *p
	s.mu.Unlock()

	s.notifier.Notify(ctx, wallet, notifications.ToastSuccess, "Identity verified successfully!")
	s.logger.Info("Onboarding completed", zap.String("wallet", wallet))
	return &snapshot, nil
}
