package projects

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"cairn/research-portal/portal-backend/pkg/pdf"
)

// Certificates renders impact certificate summaries
type Certificates struct {
	service   *Service
	generator pdf.Generator
}

func NewCertificates(service *Service, generator pdf.Generator) *Certificates {
	return &Certificates{service: service, generator: generator}
}

// Render builds the certificate PDF of a project that has one minted
func (c *Certificates) Render(ctx context.Context, caller, projectID string) (io.ReadSeeker, error) {
	p, err := c.service.GetVisible(ctx, caller, projectID)
	if err != nil {
		return nil, err
	}
	if !p.HasCertificate() {
		return nil, ErrNoCertificate
	}
	return c.generator.Generate(ctx, certificateDocument(p))
}

func certificateDocument(p *Project) pdf.Document {
	counts := p.PoRCounts()
	summary := pdf.Section{
		Heading: "Impact Summary",
		Rows: []pdf.Row{
			{Label: "Project ID", Value: p.ID},
			{Label: "Domain", Value: string(p.Domain)},
			{Label: "Status", Value: string(p.Status)},
			{Label: "Content ID", Value: p.CID},
			{Label: "Hypercert Fraction", Value: fmt.Sprintf("%.0f%%", p.HypercertFraction*100)},
			{Label: "Impact Level", Value: string(p.ImpactLevel())},
			{Label: "Impact Score", Value: strconv.FormatFloat(p.ImpactScore, 'f', -1, 64)},
			{Label: "Period", Value: p.StartDate.Format("2006-01-02") + " to " + p.EndDate.Format("2006-01-02")},
		},
	}

	assets := pdf.Section{
		Heading: "Impact Assets",
		Rows: []pdf.Row{
			{Label: "High (verified)", Value: strconv.Itoa(counts.Success)},
			{Label: "Medium (pending)", Value: strconv.Itoa(counts.Waiting)},
			{Label: "Low (disputed)", Value: strconv.Itoa(counts.Disputed)},
		},
	}

	owners := pdf.Section{Heading: "Impact Asset Owners"}
	for _, o := range p.ImpactAssetOwners {
		owners.Rows = append(owners.Rows, pdf.Row{
			Label: o.WalletAddress,
			Value: fmt.Sprintf("%s (%.0f%%)", o.Contribution, o.OwnershipPercentage),
		})
	}
	if len(owners.Rows) == 0 {
		owners.Rows = []pdf.Row{{Label: "Owner", Value: p.OwnerID}}
	}

	return pdf.Document{
		Title:    "Impact Certificate",
		Subtitle: p.Title,
		Sections: []pdf.Section{summary, assets, owners},
		Footer:   "CAIRN Research Portal",
	}
}
