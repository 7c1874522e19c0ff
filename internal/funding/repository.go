package funding

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"

	"cairn/research-portal/portal-backend/pkg/chain"
)

// Repository stores funding events, most recent first
type Repository interface {
	Create(ctx context.Context, event *FundingEvent) error
	List(ctx context.Context, filter Filter) ([]*FundingEvent, error)
}

func (f Filter) matches(e *FundingEvent) bool {
	if f.FunderWallet != "" && !chain.SameAddress(e.FunderWallet, f.FunderWallet) {
		return false
	}
	if f.ProjectID != "" && e.ProjectID != f.ProjectID {
		return false
	}
	return true
}

type memoryRepository struct {
	mu     sync.RWMutex
	events []FundingEvent
}

func NewMemoryRepository() Repository {
	return &memoryRepository{}
}

func (r *memoryRepository) Create(ctx context.Context, event *FundingEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	r.events = append([]FundingEvent{*event}, r.events...)
	return nil
}

func (r *memoryRepository) List(ctx context.Context, filter Filter) ([]*FundingEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*FundingEvent{}
	for i := range r.events {
		if filter.matches(&r.events[i]) {
			e := r.events[i]
			out = append(out, &e)
		}
	}
	return out, nil
}

type gormRepository struct {
	db *gorm.DB
}

// NewGormRepository stores funding events in Postgres
func NewGormRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// Migrate creates or updates the funding_events table
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&FundingEvent{})
}

func (r *gormRepository) Create(ctx context.Context, event *FundingEvent) error {
	return r.db.WithContext(ctx).Omit("Seq").Create(event).Error
}

func (r *gormRepository) List(ctx context.Context, filter Filter) ([]*FundingEvent, error) {
	query := r.db.WithContext(ctx).Model(&FundingEvent{})
	if filter.FunderWallet != "" {
		query = query.Where("LOWER(funder_wallet) = LOWER(?)", filter.FunderWallet)
	}
	if filter.ProjectID != "" {
		query = query.Where("project_id = ?", filter.ProjectID)
	}

	var events []*FundingEvent
	if err := query.Order("seq DESC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
