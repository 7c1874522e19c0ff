package profiles

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository stores profiles keyed by wallet, compared case-insensitively
type Repository interface {
	Get(ctx context.Context, wallet string) (*Profile, error)
	Create(ctx context.Context, profile *Profile) error
	Update(ctx context.Context, wallet string, fn func(*Profile) error) (*Profile, error)
	List(ctx context.Context) ([]*Profile, error)
}

func walletKey(wallet string) string {
	return strings.ToLower(strings.TrimSpace(wallet))
}

type memoryRepository struct {
	mu       sync.RWMutex
	profiles map[string]*Profile
}

// NewMemoryRepository creates an in-process profile store
func NewMemoryRepository() Repository {
	return &memoryRepository{profiles: make(map[string]*Profile)}
}

func (r *memoryRepository) Get(ctx context.Context, wallet string) (*Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[walletKey(wallet)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memoryRepository) Create(ctx context.Context, profile *Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := walletKey(profile.WalletAddress)
	if _, exists := r.profiles[key]; exists {
		return nil
	}
	now := time.Now()
	cp := *profile
	cp.WalletKey = key
	cp.CreatedAt, cp.UpdatedAt = now, now
	r.profiles[key] = &cp
	*profile = cp
	return nil
}

func (r *memoryRepository) Update(ctx context.Context, wallet string, fn func(*Profile) error) (*Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[walletKey(wallet)]
	if !ok {
		return nil, ErrNotFound
	}
	working := *p
	if err := fn(&working); err != nil {
		return nil, err
	}
	working.UpdatedAt = time.Now()
	*p = working
	return &working, nil
}

func (r *memoryRepository) List(ctx context.Context) ([]*Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WalletKey < out[j].WalletKey })
	return out, nil
}

type gormRepository struct {
	db *gorm.DB
}

// NewGormRepository stores profiles in the user_profiles table
func NewGormRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Get(ctx context.Context, wallet string) (*Profile, error) {
	var p Profile
	err := r.db.WithContext(ctx).Where("wallet_key = ?", walletKey(wallet)).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *gormRepository) Create(ctx context.Context, profile *Profile) error {
	profile.WalletKey = walletKey(profile.WalletAddress)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "wallet_key"}}, DoNothing: true}).
		Create(profile).Error
}

func (r *gormRepository) Update(ctx context.Context, wallet string, fn func(*Profile) error) (*Profile, error) {
	var updated Profile
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("wallet_key = ?", walletKey(wallet)).
			First(&updated).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := fn(&updated); err != nil {
			return err
		}
		return tx.Save(&updated).Error
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *gormRepository) List(ctx context.Context) ([]*Profile, error) {
	var out []*Profile
	if err := r.db.WithContext(ctx).Order("wallet_key").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Migrate creates or updates the user_profiles table
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Profile{})
}
