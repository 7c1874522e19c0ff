package funding

import (
	"errors"
	"time"

	"cairn/research-portal/portal-backend/internal/projects"
)

var (
	ErrInvalidAmount = errors.New("amount must be a positive whole number")
	ErrInvalidFormat = errors.New("unsupported export format")
)

// FundingEvent is one instant contribution to a project's pool
type FundingEvent struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(64)"`
	Seq          int64     `json:"-" gorm:"type:bigserial;not null;index"`
	ProjectID    string    `json:"project_id" gorm:"type:varchar(64);not null;index"`
	ProjectTitle string    `json:"project_title" gorm:"not null"`
	Amount       float64   `json:"amount" gorm:"type:numeric(18,2);not null"`
	Timestamp    time.Time `json:"timestamp" gorm:"type:date;not null"`
	FunderWallet string    `json:"funder_wallet" gorm:"type:varchar(128);not null;index"`
	TxHash       string    `json:"tx_hash" gorm:"type:varchar(66);uniqueIndex"`
	CreatedAt    time.Time `json:"-"`
}

func (FundingEvent) TableName() string {
	return "funding_events"
}

// Filter narrows the funding history. Zero values match all.
type Filter struct {
	FunderWallet string
	ProjectID    string
}

type FundRequest struct {
	Amount float64 `json:"amount"`
}

// FundResult is returned by InstantFund
type FundResult struct {
	Event       *FundingEvent     `json:"event"`
	Project     *projects.Project `json:"project"`
	FullyFunded bool              `json:"fully_funded"`
	Message     string            `json:"message"`
}

// FunderMetrics summarises a funder's portfolio
type FunderMetrics struct {
	TotalDeployed  float64 `json:"total_deployed"`
	ProjectsFunded int     `json:"projects_funded"`
	SharedProjects int     `json:"shared_projects"`
}

// ProjectFunding is a row of the scientist funding table
type ProjectFunding struct {
	ProjectID      string                 `json:"project_id"`
	Title          string                 `json:"title"`
	Status         projects.ProjectStatus `json:"status"`
	FundingPool    float64                `json:"funding_pool"`
	FundingGoal    *float64               `json:"funding_goal,omitempty"`
	FirstFundedAt  *time.Time             `json:"first_funded_at,omitempty"`
	Funders        []string               `json:"funders"`
	TxHashes       []string               `json:"tx_hashes"`
	ImpactLevel    projects.ImpactLevel   `json:"impact_level"`
	HasCertificate bool                   `json:"has_certificate"`
}
