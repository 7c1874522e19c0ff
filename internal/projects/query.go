package projects

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"

	"cairn/research-portal/portal-backend/pkg/chain"
)

// SortKey orders project listings
type SortKey string

const (
	SortNewest            SortKey = "newest"
	SortOldest            SortKey = "oldest"
	SortMostPoRs          SortKey = "mostPors"
	SortLeastPoRs         SortKey = "leastPors"
	SortTitle             SortKey = "title"
	SortStatus            SortKey = "status"
	SortStartDate         SortKey = "startDate"
	SortReproducibilities SortKey = "reproducibilities"
	SortHypercert         SortKey = "hypercertFraction"
	SortEvaluated         SortKey = "evaluated"
	SortFundingPool       SortKey = "fundingPool"
)

var statusRank = map[ProjectStatus]int{
	StatusDraft:    0,
	StatusActive:   1,
	StatusFunded:   2,
	StatusArchived: 3,
}

// ListFilter narrows and orders a project listing. Zero values match all.
type ListFilter struct {
	Statuses     []ProjectStatus
	Owner        string
	ExcludeOwner string
	Domain       ResearchDomain
	Tag          string
	Text         string
	// VisibleTo hides drafts not owned by the wallet; anonymous viewers
	// see no drafts
	VisibleTo  *string
	Sort       SortKey
	Descending bool
	Limit      int
	Offset     int
}

func (f *ListFilter) matches(p *Project) bool {
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, p.Status) {
		return false
	}
	if f.Owner != "" && !chain.SameAddress(p.OwnerID, f.Owner) {
		return false
	}
	if f.ExcludeOwner != "" && chain.SameAddress(p.OwnerID, f.ExcludeOwner) {
		return false
	}
	if f.VisibleTo != nil && p.Status == StatusDraft &&
		(*f.VisibleTo == "" || !chain.SameAddress(p.OwnerID, *f.VisibleTo)) {
		return false
	}
	if f.Domain != "" && p.Domain != f.Domain {
		return false
	}
	if f.Tag != "" && !slices.ContainsFunc(p.Tags, func(t string) bool { return strings.EqualFold(t, f.Tag) }) {
		return false
	}
	if f.Text != "" {
		needle := strings.ToLower(f.Text)
		if !strings.Contains(strings.ToLower(p.Title), needle) &&
			!strings.Contains(strings.ToLower(p.Description), needle) {
			return false
		}
	}
	return true
}

func evaluatedCount(p *Project) int {
	c := p.PoRCounts()
	return c.Success + c.Disputed
}

// lessFunc returns the ascending comparison for key
func lessFunc(key SortKey) (func(a, b *Project) int, error) {
	switch key {
	case SortTitle:
		return func(a, b *Project) int { return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title)) }, nil
	case SortStatus:
		return func(a, b *Project) int { return statusRank[a.Status] - statusRank[b.Status] }, nil
	case SortStartDate, SortOldest:
		return func(a, b *Project) int { return a.StartDate.Compare(b.StartDate) }, nil
	case SortNewest:
		return func(a, b *Project) int { return b.StartDate.Compare(a.StartDate) }, nil
	case SortReproducibilities:
		return func(a, b *Project) int { return len(a.Reproducibilities) - len(b.Reproducibilities) }, nil
	case SortLeastPoRs:
		return func(a, b *Project) int { return a.PoRCounts().Success - b.PoRCounts().Success }, nil
	case SortMostPoRs:
		return func(a, b *Project) int { return b.PoRCounts().Success - a.PoRCounts().Success }, nil
	case SortHypercert:
		return func(a, b *Project) int { return compareFloat(a.HypercertFraction, b.HypercertFraction) }, nil
	case SortEvaluated:
		return func(a, b *Project) int { return evaluatedCount(a) - evaluatedCount(b) }, nil
	case SortFundingPool:
		return func(a, b *Project) int { return compareFloat(a.FundingPool, b.FundingPool) }, nil
	}
	return nil, fmt.Errorf("%w: unknown sort %q", ErrValidation, key)
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// applyFilter filters, sorts and pages projects. Ties keep repository order.
func applyFilter(all []*Project, f ListFilter) ([]*Project, error) {
	out := make([]*Project, 0, len(all))
	for _, p := range all {
		if f.matches(p) {
			out = append(out, p)
		}
	}

	if f.Sort != "" {
		cmp, err := lessFunc(f.Sort)
		if err != nil {
			return nil, err
		}
		sort.SliceStable(out, func(i, j int) bool {
			if f.Descending {
				return cmp(out[j], out[i]) < 0
			}
			return cmp(out[i], out[j]) < 0
		})
	}

	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return []*Project{}, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// List returns projects matching the filter
func (s *Service) List(ctx context.Context, f ListFilter) ([]*Project, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return applyFilter(all, f)
}

// Discover lists Active projects the caller can reproduce
func (s *Service) Discover(ctx context.Context, caller string, key SortKey) ([]*Project, error) {
	if key == "" {
		key = SortNewest
	}
	switch key {
	case SortNewest, SortOldest, SortMostPoRs, SortLeastPoRs:
	default:
		return nil, fmt.Errorf("%w: unknown discover sort %q", ErrValidation, key)
	}
	return s.List(ctx, ListFilter{
		Statuses:     []ProjectStatus{StatusActive},
		ExcludeOwner: caller,
		Sort:         key,
	})
}

// ActionRequired lists the caller's drafts waiting for outputs
func (s *Service) ActionRequired(ctx context.Context, caller string) ([]*Project, error) {
	return s.List(ctx, ListFilter{
		Statuses: []ProjectStatus{StatusDraft},
		Owner:    caller,
		Sort:     SortTitle,
	})
}

// Contribution is a reproducibility submission with its project reference
type Contribution struct {
	Reproducibility
	ProjectID    string `json:"project_id"`
	ProjectTitle string `json:"project_title"`
}

func (s *Service) contributions(ctx context.Context, keep func(*Reproducibility) bool) ([]Contribution, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := []Contribution{}
	for _, p := range all {
		for _, r := range p.Reproducibilities {
			if keep(&r) {
				out = append(out, Contribution{Reproducibility: r, ProjectID: p.ID, ProjectTitle: p.Title})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

// MyContributions lists the caller's submissions, newest first
func (s *Service) MyContributions(ctx context.Context, caller string) ([]Contribution, error) {
	return s.contributions(ctx, func(r *Reproducibility) bool {
		return chain.SameAddress(r.Verifier, caller)
	})
}

// MyDisputes lists the caller's submissions that were disputed
func (s *Service) MyDisputes(ctx context.Context, caller string) ([]Contribution, error) {
	return s.contributions(ctx, func(r *Reproducibility) bool {
		return r.Status == PoRDisputed && chain.SameAddress(r.Verifier, caller)
	})
}

// ActivityFeed lists the most recent submissions across all projects
func (s *Service) ActivityFeed(ctx context.Context, limit int) ([]Contribution, error) {
	if limit <= 0 {
		limit = 10
	}
	all, err := s.contributions(ctx, func(*Reproducibility) bool { return true })
	if err != nil {
		return nil, err
	}
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// ScientistMetrics summarises a scientist's standing
type ScientistMetrics struct {
	TotalPoRsContributed int          `json:"total_pors_contributed"`
	OwnedProjects        int          `json:"owned_projects"`
	Eligibility          *Eligibility `json:"eligibility"`
}

func (s *Service) ScientistMetrics(ctx context.Context, caller string) (*ScientistMetrics, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	eligibility, err := s.CheckEligibility(ctx, caller)
	if err != nil {
		return nil, err
	}

	m := &ScientistMetrics{Eligibility: eligibility}
	for _, p := range all {
		if chain.SameAddress(p.OwnerID, caller) {
			m.OwnedProjects++
		}
		for _, r := range p.Reproducibilities {
			if chain.SameAddress(r.Verifier, caller) {
				m.TotalPoRsContributed++
			}
		}
	}
	return m, nil
}

// Search runs a full-text query. Drafts are only visible to their owner.
func (s *Service) Search(ctx context.Context, caller, query string, limit int) ([]*Project, error) {
	if limit <= 0 {
		limit = 20
	}
	ids, err := s.index.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	out := make([]*Project, 0, len(ids))
	for _, id := range ids {
		p, err := s.repo.GetByID(ctx, id)
		if err != nil {
			continue
		}
		if p.Status == StatusDraft && !chain.SameAddress(p.OwnerID, caller) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// GetVisible returns a project unless it is someone else's draft
func (s *Service) GetVisible(ctx context.Context, caller, id string) (*Project, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status == StatusDraft && !chain.SameAddress(p.OwnerID, caller) {
		return nil, ErrNotFound
	}
	return p, nil
}
