package profiles

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Service manages wallet profiles and their PoR contribution counters
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new profile service
func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Get returns the profile for a wallet
func (s *Service) Get(ctx context.Context, wallet string) (*Profile, error) {
	if strings.TrimSpace(wallet) == "" {
		return nil, ErrInvalidWallet
	}
	return s.repo.Get(ctx, wallet)
}

// FindOrCreate returns the existing profile for wallet or registers a new
// unverified one named name. The boolean reports whether it was created.
func (s *Service) FindOrCreate(ctx context.Context, wallet, name string) (*Profile, bool, error) {
	if strings.TrimSpace(wallet) == "" {
		return nil, false, ErrInvalidWallet
	}

	existing, err := s.repo.Get(ctx, wallet)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	profile := &Profile{WalletAddress: strings.TrimSpace(wallet), Name: name}
	if err := s.repo.Create(ctx, profile); err != nil {
		return nil, false, fmt.Errorf("failed to create profile: %w", err)
	}
	s.logger.Info("Profile created", zap.String("wallet", profile.WalletAddress))

	// a concurrent connect may have won the insert
	created, err := s.repo.Get(ctx, wallet)
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}

// IncrementContributions records one more PoR submission
func (s *Service) IncrementContributions(ctx context.Context, wallet string) (*Profile, error) {
	return s.repo.Update(ctx, wallet, func(p *Profile) error {
		p.PoRContributedCount++
		return nil
	})
}

// SpendContributions zeroes the PoR counter if it holds at least required
// contributions and returns how many were spent. The check and the reset
// happen under the same row lock. On ErrInsufficientContributions the
// returned count is the current balance.
func (s *Service) SpendContributions(ctx context.Context, wallet string, required int) (int, error) {
	count := 0
	_, err := s.repo.Update(ctx, wallet, func(p *Profile) error {
		count = p.PoRContributedCount
		if count < required {
			return ErrInsufficientContributions
		}
		p.PoRContributedCount = 0
		return nil
	})
	if err != nil && !errors.Is(err, ErrInsufficientContributions) {
		return 0, err
	}
	return count, err
}

// RestoreContributions gives back contributions spent on a project that
// could not be stored
func (s *Service) RestoreContributions(ctx context.Context, wallet string, n int) (*Profile, error) {
	return s.repo.Update(ctx, wallet, func(p *Profile) error {
		p.PoRContributedCount += n
		return nil
	})
}

// MarkVerified flags the wallet as identity-verified
func (s *Service) MarkVerified(ctx context.Context, wallet string) (*Profile, error) {
	return s.repo.Update(ctx, wallet, func(p *Profile) error {
		p.IsVerified = true
		return nil
	})
}

// Leaderboard lists profiles by contribution count, highest first
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]*Profile, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].PoRContributedCount != all[j].PoRContributedCount {
			return all[i].PoRContributedCount > all[j].PoRContributedCount
		}
		return all[i].Name < all[j].Name
	})
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// Seed inserts profiles that are not yet present
func (s *Service) Seed(ctx context.Context, seed []Profile) error {
	for i := range seed {
		p := seed[i]
		if err := s.repo.Create(ctx, &p); err != nil {
			return fmt.Errorf("failed to seed profile %s: %w", p.WalletAddress, err)
		}
	}
	return nil
}
