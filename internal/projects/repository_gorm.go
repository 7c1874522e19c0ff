package projects

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// projectRecord is the relational row of a project. Nested collections are
// stored as jsonb since they are always read and written with the project.
type projectRecord struct {
	ID                string         `gorm:"primaryKey"`
	Seq               int64          `gorm:"type:bigserial;not null;index"`
	OwnerID           string         `gorm:"not null;index"`
	Title             string         `gorm:"not null"`
	Description       string         `gorm:"not null"`
	Tags              pq.StringArray `gorm:"type:text[]"`
	Status            string         `gorm:"not null;index"`
	Domain            string         `gorm:"not null"`
	CID               string
	HypercertFraction float64
	StartDate         time.Time
	EndDate           time.Time
	LastOutputDate    *time.Time
	FundingGoal       *float64
	FundingPool       float64
	ImpactScore       float64
	Requirements      pq.StringArray `gorm:"type:text[]"`
	Organization      string
	AdditionalInfoURL string
	Outputs           datatypes.JSONSlice[Output]            `gorm:"type:jsonb"`
	Reproducibilities datatypes.JSONSlice[Reproducibility]   `gorm:"type:jsonb"`
	ImpactAssetOwners datatypes.JSONType[[]ImpactAssetOwner] `gorm:"type:jsonb"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (projectRecord) TableName() string {
	return "research_projects"
}

func toRecord(p *Project) *projectRecord {
	return &projectRecord{
		ID:                p.ID,
		OwnerID:           p.OwnerID,
		Title:             p.Title,
		Description:       p.Description,
		Tags:              pq.StringArray(p.Tags),
		Status:            string(p.Status),
		Domain:            string(p.Domain),
		CID:               p.CID,
		HypercertFraction: p.HypercertFraction,
		StartDate:         p.StartDate,
		EndDate:           p.EndDate,
		LastOutputDate:    p.LastOutputDate,
		FundingGoal:       p.FundingGoal,
		FundingPool:       p.FundingPool,
		ImpactScore:       p.ImpactScore,
		Requirements:      pq.StringArray(p.ReproducibilityRequirements),
		Organization:      p.Organization,
		AdditionalInfoURL: p.AdditionalInfoURL,
		Outputs:           datatypes.JSONSlice[Output](p.Outputs),
		Reproducibilities: datatypes.JSONSlice[Reproducibility](p.Reproducibilities),
		ImpactAssetOwners: datatypes.NewJSONType(p.ImpactAssetOwners),
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func (r *projectRecord) toModel() *Project {
	return &Project{
		ID:                          r.ID,
		OwnerID:                     r.OwnerID,
		Title:                       r.Title,
		Description:                 r.Description,
		Tags:                        []string(r.Tags),
		Status:                      ProjectStatus(r.Status),
		Domain:                      ResearchDomain(r.Domain),
		CID:                         r.CID,
		HypercertFraction:           r.HypercertFraction,
		StartDate:                   r.StartDate,
		EndDate:                     r.EndDate,
		LastOutputDate:              r.LastOutputDate,
		FundingGoal:                 r.FundingGoal,
		FundingPool:                 r.FundingPool,
		ImpactScore:                 r.ImpactScore,
		ReproducibilityRequirements: []string(r.Requirements),
		Organization:                r.Organization,
		AdditionalInfoURL:           r.AdditionalInfoURL,
		Outputs:                     []Output(r.Outputs),
		Reproducibilities:           []Reproducibility(r.Reproducibilities),
		ImpactAssetOwners:           r.ImpactAssetOwners.Data(),
		CreatedAt:                   r.CreatedAt,
		UpdatedAt:                   r.UpdatedAt,
	}
}

type gormRepository struct {
	db *gorm.DB
}

// NewGormRepository stores projects in Postgres
func NewGormRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// Migrate creates or updates the projects table
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&projectRecord{})
}

func (r *gormRepository) Create(ctx context.Context, project *Project) error {
	rec := toRecord(project)
	if err := r.db.WithContext(ctx).Omit("Seq").Create(rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrValidation
		}
		return err
	}
	project.CreatedAt = rec.CreatedAt
	project.UpdatedAt = rec.UpdatedAt
	return nil
}

func (r *gormRepository) GetByID(ctx context.Context, id string) (*Project, error) {
	var rec projectRecord
	err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec.toModel(), nil
}

func (r *gormRepository) List(ctx context.Context) ([]*Project, error) {
	var recs []projectRecord
	if err := r.db.WithContext(ctx).Order("seq DESC").Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]*Project, len(recs))
	for i := range recs {
		out[i] = recs[i].toModel()
	}
	return out, nil
}

func (r *gormRepository) Update(ctx context.Context, id string, fn func(*Project) error) (*Project, error) {
	var updated *Project
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec projectRecord
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&rec, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		working := rec.toModel()
		if err := fn(working); err != nil {
			return err
		}
		working.ID = rec.ID
		working.CreatedAt = rec.CreatedAt

		next := toRecord(working)
		next.Seq = rec.Seq
		if err := tx.Save(next).Error; err != nil {
			return err
		}
		working.UpdatedAt = next.UpdatedAt
		updated = working
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
