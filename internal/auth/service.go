package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cairn/research-portal/portal-backend/internal/notifications"
	"cairn/research-portal/portal-backend/internal/profiles"
	"cairn/research-portal/portal-backend/pkg/chain"
	"cairn/research-portal/portal-backend/pkg/security"
)

const connectFailedMessage = "Failed to connect wallet. Please try again."

// ProfileStore is the part of the profile service sessions need
type ProfileStore interface {
	Get(ctx context.Context, wallet string) (*profiles.Profile, error)
	FindOrCreate(ctx context.Context, wallet, name string) (*profiles.Profile, bool, error)
}

// OnboardingChecker reports whether a wallet still has to verify its identity
type OnboardingChecker interface {
	Required(ctx context.Context, wallet string) (bool, error)
}

// Service connects wallets and manages their sessions
type Service struct {
	sessions   SessionStore
	wallets    WalletProvider
	profiles   ProfileStore
	onboarding OnboardingChecker
	signer     security.TokenSigner
	notifier   notifications.Notifier
	ttl        time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

func NewService(
	sessions SessionStore,
	wallets WalletProvider,
	profileStore ProfileStore,
	onboarding OnboardingChecker,
	signer security.TokenSigner,
	notifier notifications.Notifier,
	ttl time.Duration,
	logger *zap.Logger,
) *Service {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{
		sessions:   sessions,
		wallets:    wallets,
		profiles:   profileStore,
		onboarding: onboarding,
		signer:     signer,
		notifier:   notifier,
		ttl:        ttl,
		logger:     logger,
		now:        time.Now,
	}
}

// Connect resolves the caller's wallet, registers a profile for it if
// needed and opens a session with role
func (s *Service) Connect(ctx context.Context, role Role) (*ConnectResult, error) {
	if role == "" {
		role = RoleScientist
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	accounts, err := s.wallets.RequestAccounts(ctx)
	if err == nil && (len(accounts) == 0 || accounts[0] == "") {
		err = ErrWalletUnavailable
	}
	if err != nil {
		s.logger.Error("Failed to connect wallet", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrWalletUnavailable, err)
	}
	wallet := accounts[0]
	mock := s.wallets.Simulated()

	prefix := chain.ShortAddress(wallet, 6)
	name := fmt.Sprintf("New User (%s...)", prefix)
	if mock {
		name = fmt.Sprintf("Mock User (%s...)", prefix)
	}
	profile, created, err := s.profiles.FindOrCreate(ctx, wallet, name)
	if err != nil {
		return nil, err
	}

	required, err := s.onboarding.Required(ctx, profile.WalletAddress)
	if err != nil {
		return nil, err
	}

	now := s.now()
	session := &Session{
		ID:        uuid.NewString(),
		Wallet:    profile.WalletAddress,
		Role:      role,
		Mock:      mock,
		CreatedAt: now,
	}
	token, err := s.issue(ctx, session)
	if err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("Wallet connected: %s...", prefix)
	if mock {
		msg = fmt.Sprintf("Wallet connected (mock): %s...", prefix)
	}
	s.notifier.Notify(ctx, session.Wallet, notifications.ToastSuccess, msg)

	s.logger.Info("Wallet connected",
		zap.String("wallet", session.Wallet),
		zap.String("role", string(role)),
		zap.Bool("mock", mock),
		zap.Bool("new_profile", created),
		zap.Bool("onboarding_required", required))

	return &ConnectResult{
		Token:              token,
		Session:            session,
		Profile:            profile,
		OnboardingRequired: required,
		Message:            msg,
	}, nil
}

func (s *Service) issue(ctx context.Context, session *Session) (string, error) {
	token, expiresAt, err := s.signer.Sign(session.ID, session.Wallet, string(session.Role), s.ttl)
	if err != nil {
		return "", err
	}
	session.ExpiresAt = expiresAt
	if err := s.sessions.Save(ctx, session); err != nil {
		return "", fmt.Errorf("failed to save session: %w", err)
	}
	return token, nil
}

// Authenticate resolves a token to its live session
func (s *Service) Authenticate(ctx context.Context, token string) (*Session, error) {
	claims, err := s.signer.Parse(token)
	if err != nil {
		return nil, err
	}
	session, err := s.sessions.Get(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	return session, nil
}

// Disconnect revokes the session
func (s *Service) Disconnect(ctx context.Context, sessionID string) error {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return err
	}
	s.notifier.Notify(ctx, session.Wallet, notifications.ToastInfo, "Wallet disconnected.")
	s.logger.Info("Wallet disconnected", zap.String("wallet", session.Wallet))
	return nil
}

// SetRole switches the dashboard of a session. The returned token carries
// the new role; the old token keeps resolving to the same session.
func (s *Service) SetRole(ctx context.Context, sessionID string, role Role) (*Session, string, error) {
	if !role.Valid() {
		return nil, "", ErrInvalidRole
	}
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, "", err
	}
	session.Role = role
	token, err := s.issue(ctx, session)
	if err != nil {
		return nil, "", err
	}
	return session, token, nil
}

// Me returns the session with the wallet's current profile
func (s *Service) Me(ctx context.Context, sessionID string) (*Me, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	profile, err := s.profiles.Get(ctx, session.Wallet)
	if err != nil && !errors.Is(err, profiles.ErrNotFound) {
		return nil, err
	}
	required, err := s.onboarding.Required(ctx, session.Wallet)
	if err != nil {
		return nil, err
	}
	return &Me{Session: session, Profile: profile, OnboardingRequired: required}, nil
}
