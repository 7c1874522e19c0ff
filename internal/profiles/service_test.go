package profiles

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc := NewService(NewMemoryRepository(), zap.NewNop())
	require.NoError(t, svc.Seed(context.Background(), SeedProfiles()))
	return svc
}

func TestFindOrCreateIsCaseInsensitive(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	p, created, err := svc.FindOrCreate(ctx, "0xALICE...e5f6", "ignored")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "Dr. Alice", p.Name)
	assert.Equal(t, WalletAlice, p.WalletAddress)

	p, created, err = svc.FindOrCreate(ctx, "0xNewcomer", "New User (0xNewc...)")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 0, p.PoRContributedCount)
	assert.False(t, p.IsVerified)
}

func TestFindOrCreateRejectsEmptyWallet(t *testing.T) {
	svc := newTestService(t)
	_, _, err := svc.FindOrCreate(context.Background(), "  ", "x")
	assert.ErrorIs(t, err, ErrInvalidWallet)
}

func TestContributionCounter(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	p, err := svc.IncrementContributions(ctx, MockWallet)
	require.NoError(t, err)
	assert.Equal(t, 3, p.PoRContributedCount)

	spent, err := svc.SpendContributions(ctx, MockWallet, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, spent)

	held, err := svc.SpendContributions(ctx, MockWallet, 3)
	assert.ErrorIs(t, err, ErrInsufficientContributions)
	assert.Zero(t, held)

	p, err = svc.RestoreContributions(ctx, MockWallet, spent)
	require.NoError(t, err)
	assert.Equal(t, 3, p.PoRContributedCount)

	_, err = svc.IncrementContributions(ctx, "0xmissing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConcurrentIncrements(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.IncrementContributions(ctx, WalletBob)
		}()
	}
	wg.Wait()

	p, err := svc.Get(ctx, WalletBob)
	require.NoError(t, err)
	assert.Equal(t, 58, p.PoRContributedCount)
}

func TestConcurrentSpendsConsumeOneBalance(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.SpendContributions(ctx, WalletAlice, 3); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	p, err := svc.Get(ctx, WalletAlice)
	require.NoError(t, err)
	assert.Equal(t, 0, p.PoRContributedCount)
}

func TestMarkVerifiedAndLeaderboard(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	p, err := svc.MarkVerified(ctx, WalletCharlie)
	require.NoError(t, err)
	assert.True(t, p.IsVerified)

	top, err := svc.Leaderboard(ctx, 3)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, "Dr. Eve", top[0].Name)
	assert.Equal(t, "Mallory", top[1].Name)
	assert.Equal(t, "Verifier Alpha", top[2].Name)
}
