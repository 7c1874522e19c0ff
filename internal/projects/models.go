package projects

import (
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("project not found")
	ErrPoRNotFound       = errors.New("reproducibility not found")
	ErrForbidden         = errors.New("operation not permitted for this wallet")
	ErrNotEligible       = errors.New("not enough PoR contributions to create a project")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrValidation        = errors.New("validation failed")
	ErrNoCertificate     = errors.New("project has no impact certificate")
	ErrClosed            = errors.New("project is not open for this operation")
)

// ProjectStatus is the lifecycle stage of a project
type ProjectStatus string

const (
	StatusDraft    ProjectStatus = "Draft"
	StatusActive   ProjectStatus = "Active"
	StatusFunded   ProjectStatus = "Funded"
	StatusArchived ProjectStatus = "Archived"
)

// ResearchDomain selects the reproducibility template of a project
type ResearchDomain string

const (
	DomainRobotics   ResearchDomain = "Robotics"
	DomainSimulation ResearchDomain = "Simulation"
	DomainHardware   ResearchDomain = "Hardware"
)

var ResearchDomains = []ResearchDomain{DomainRobotics, DomainSimulation, DomainHardware}

// PoRStatus is the review state of a reproducibility submission
type PoRStatus string

const (
	PoRWaiting  PoRStatus = "Waiting"
	PoRDisputed PoRStatus = "Disputed"
	PoRSuccess  PoRStatus = "Success"
)

// OutputType classifies a research output
type OutputType string

const (
	OutputDocument OutputType = "Document"
	OutputDataset  OutputType = "Dataset"
	OutputCode     OutputType = "Code"
	OutputTools    OutputType = "Tools & External Services"
	OutputLog      OutputType = "Output Log"
	OutputOthers   OutputType = "Others"
	OutputVideo    OutputType = "Video"
)

// EvidenceTypes are the output types accepted as PoR evidence
var EvidenceTypes = []OutputType{OutputDocument, OutputVideo, OutputLog, OutputOthers}

// Tool is a technology referenced by a Tools & External Services output
type Tool string

var ToolOptions = []Tool{"Python", "ROS", "MuJoCo", "AWS", "BitRobot"}

// ImpactLevel buckets the hypercert fraction
type ImpactLevel string

const (
	ImpactHigh   ImpactLevel = "High"
	ImpactMedium ImpactLevel = "Medium"
	ImpactLow    ImpactLevel = "Low"
)

// ImpactLevelFor maps a hypercert fraction to its level
func ImpactLevelFor(fraction float64) ImpactLevel {
	switch {
	case fraction >= 0.75:
		return ImpactHigh
	case fraction >= 0.3:
		return ImpactMedium
	default:
		return ImpactLow
	}
}

// ReproducibilityTemplates lists the requirements copied onto new projects
var ReproducibilityTemplates = map[ResearchDomain][]string{
	DomainRobotics: {
		"Provide full simulation environment files.",
		"List all hardware components and firmware versions.",
		"Include ROS bag files for all experiments.",
		"Document calibration procedures for all sensors.",
	},
	DomainSimulation: {
		"Specify simulation software and version.",
		"Include all environment and agent configuration files.",
		"Provide random seeds for all runs.",
		"Document results for baseline comparisons.",
	},
	DomainHardware: {
		"Provide complete schematics and PCB layout files.",
		"List all components in a detailed Bill of Materials (BOM).",
		"Include firmware source code and compiled binaries.",
		"Document assembly instructions with photos or diagrams.",
	},
}

// OutputData is the type-dependent payload of an output
type OutputData struct {
	URL       string `json:"url,omitempty"`
	IPFSCID   string `json:"ipfs_cid,omitempty"`
	FileName  string `json:"file_name,omitempty"`
	Tools     []Tool `json:"tools,omitempty"`
	OtherText string `json:"other_text,omitempty"`
}

type Output struct {
	ID          string     `json:"id"`
	Type        OutputType `json:"type"`
	Timestamp   time.Time  `json:"timestamp"`
	Description string     `json:"description"`
	Data        OutputData `json:"data"`
}

// Reproducibility is a proof-of-reproducibility submission
type Reproducibility struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Evidence  []Output  `json:"evidence"`
	Notes     string    `json:"notes"`
	Verifier  string    `json:"verifier"`
	Status    PoRStatus `json:"status"`
}

type ImpactAssetOwner struct {
	WalletAddress       string  `json:"wallet_address"`
	Contribution        string  `json:"contribution"`
	OwnershipPercentage float64 `json:"ownership_percentage"`
}

// Project is a research project and everything recorded against it
type Project struct {
	ID                          string             `json:"id"`
	OwnerID                     string             `json:"owner_id"`
	Title                       string             `json:"title"`
	Description                 string             `json:"description"`
	Tags                        []string           `json:"tags"`
	Status                      ProjectStatus      `json:"status"`
	Domain                      ResearchDomain     `json:"domain"`
	CID                         string             `json:"cid"`
	HypercertFraction           float64            `json:"hypercert_fraction"`
	StartDate                   time.Time          `json:"start_date"`
	EndDate                     time.Time          `json:"end_date"`
	LastOutputDate              *time.Time         `json:"last_output_date,omitempty"`
	Reproducibilities           []Reproducibility  `json:"reproducibilities"`
	FundingGoal                 *float64           `json:"funding_goal,omitempty"`
	FundingPool                 float64            `json:"funding_pool"`
	ImpactScore                 float64            `json:"impact_score"`
	Outputs                     []Output           `json:"outputs"`
	ReproducibilityRequirements []string           `json:"reproducibility_requirements"`
	Organization                string             `json:"organization,omitempty"`
	AdditionalInfoURL           string             `json:"additional_info_url,omitempty"`
	ImpactAssetOwners           []ImpactAssetOwner `json:"impact_asset_owners"`
	CreatedAt                   time.Time          `json:"created_at"`
	UpdatedAt                   time.Time          `json:"updated_at"`
}

// PoRCounts tallies submissions by status
type PoRCounts struct {
	Success  int `json:"success"`
	Waiting  int `json:"waiting"`
	Disputed int `json:"disputed"`
}

func (p *Project) PoRCounts() PoRCounts {
	var c PoRCounts
	for _, r := range p.Reproducibilities {
		switch r.Status {
		case PoRSuccess:
			c.Success++
		case PoRWaiting:
			c.Waiting++
		case PoRDisputed:
			c.Disputed++
		}
	}
	return c
}

func (p *Project) ImpactLevel() ImpactLevel {
	return ImpactLevelFor(p.HypercertFraction)
}

// HasCertificate reports whether an impact certificate has been minted
func (p *Project) HasCertificate() bool {
	return p.Status != StatusDraft && p.HypercertFraction > 0
}

// FindReproducibility returns the index of the submission with id or -1
func (p *Project) FindReproducibility(id string) int {
	for i := range p.Reproducibilities {
		if p.Reproducibilities[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy so repository callers never share slices
func (p *Project) Clone() *Project {
	cp := *p
	cp.Tags = append([]string(nil), p.Tags...)
	cp.ReproducibilityRequirements = append([]string(nil), p.ReproducibilityRequirements...)
	cp.ImpactAssetOwners = append([]ImpactAssetOwner(nil), p.ImpactAssetOwners...)
	cp.Outputs = cloneOutputs(p.Outputs)
	if p.Reproducibilities != nil {
		cp.Reproducibilities = make([]Reproducibility, len(p.Reproducibilities))
		for i, r := range p.Reproducibilities {
			r.Evidence = cloneOutputs(r.Evidence)
			cp.Reproducibilities[i] = r
		}
	}
	if p.FundingGoal != nil {
		goal := *p.FundingGoal
		cp.FundingGoal = &goal
	}
	if p.LastOutputDate != nil {
		d := *p.LastOutputDate
		cp.LastOutputDate = &d
	}
	return &cp
}

func cloneOutputs(in []Output) []Output {
	if in == nil {
		return nil
	}
	out := make([]Output, len(in))
	for i, o := range in {
		o.Data.Tools = append([]Tool(nil), o.Data.Tools...)
		out[i] = o
	}
	return out
}

// Requests

type CreateProjectRequest struct {
	Title             string         `json:"title"`
	Description       string         `json:"description"`
	Domain            ResearchDomain `json:"domain"`
	Tags              string         `json:"tags"`
	Organization      string         `json:"organization"`
	AdditionalInfoURL string         `json:"additional_info_url"`
	// CID is set by the creation wizard once metadata is pinned
	CID string `json:"-"`
}

type OutputInput struct {
	Type        OutputType `json:"type"`
	Description string     `json:"description"`
	Timestamp   *time.Time `json:"timestamp,omitempty"`
	Data        OutputData `json:"data"`
}

type AddOutputsRequest struct {
	Outputs []OutputInput `json:"outputs"`
}

type SubmitPoRRequest struct {
	Notes    string        `json:"notes"`
	Evidence []OutputInput `json:"evidence"`
}

// ActionResult pairs the updated project with the toast raised for it
type ActionResult struct {
	Project *Project `json:"project"`
	Message string   `json:"message"`
}
