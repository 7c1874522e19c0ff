package projects

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cairn/research-portal/portal-backend/internal/profiles"
)

func ids(projects []*Project) []string {
	out := make([]string, len(projects))
	for i, p := range projects {
		out[i] = p.ID
	}
	return out
}

func TestDiscover(t *testing.T) {
	f := newFixture(t, Settings{})
	ctx := context.Background()

	projects, err := f.svc.Discover(ctx, profiles.MockWallet, SortMostPoRs)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"proj-005", "proj-002", "proj-006", "proj-009"}, ids(projects))
	assert.Equal(t, "proj-002", projects[0].ID)

	projects, err = f.svc.Discover(ctx, profiles.WalletBob, "")
	require.NoError(t, err)
	assert.NotContains(t, ids(projects), "proj-002")
	assert.Contains(t, ids(projects), "proj-004")

	_, err = f.svc.Discover(ctx, profiles.MockWallet, SortFundingPool)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestActionRequiredSortsDraftsByTitle(t *testing.T) {
	f := newFixture(t, Settings{})

	projects, err := f.svc.ActionRequired(context.Background(), profiles.MockWallet)
	require.NoError(t, err)
	assert.Equal(t, []string{"proj-draft-002", "proj-draft-001", "proj-003", "proj-draft-003"}, ids(projects))

	projects, err = f.svc.ActionRequired(context.Background(), profiles.WalletAlice)
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestListFilterAndSort(t *testing.T) {
	f := newFixture(t, Settings{})
	ctx := context.Background()

	anonymous := ""
	projects, err := f.svc.List(ctx, ListFilter{VisibleTo: &anonymous})
	require.NoError(t, err)
	assert.Len(t, projects, 9)

	me := profiles.MockWallet
	projects, err = f.svc.List(ctx, ListFilter{VisibleTo: &me})
	require.NoError(t, err)
	assert.Len(t, projects, 13)

	projects, err = f.svc.List(ctx, ListFilter{
		Statuses:   []ProjectStatus{StatusActive, StatusFunded},
		Sort:       SortFundingPool,
		Descending: true,
		Limit:      2,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"proj-008", "proj-010"}, ids(projects))

	projects, err = f.svc.List(ctx, ListFilter{Tag: "testing"})
	require.NoError(t, err)
	assert.Equal(t, []string{"proj-004"}, ids(projects))

	projects, err = f.svc.List(ctx, ListFilter{Domain: DomainHardware, Owner: profiles.WalletCharlie})
	require.NoError(t, err)
	for _, p := range projects {
		assert.Equal(t, DomainHardware, p.Domain)
	}

	projects, err = f.svc.List(ctx, ListFilter{Offset: 100})
	require.NoError(t, err)
	assert.Empty(t, projects)

	_, err = f.svc.List(ctx, ListFilter{Sort: "random"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGetVisibleHidesForeignDrafts(t *testing.T) {
	f := newFixture(t, Settings{})
	ctx := context.Background()

	_, err := f.svc.GetVisible(ctx, profiles.WalletAlice, "proj-003")
	assert.ErrorIs(t, err, ErrNotFound)

	p, err := f.svc.GetVisible(ctx, "0X1a2b...c3d4", "proj-003")
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, p.Status)

	p, err = f.svc.GetVisible(ctx, "", "proj-001")
	require.NoError(t, err)
	assert.Equal(t, ImpactHigh, p.ImpactLevel())
}

func TestContributionsNewestFirst(t *testing.T) {
	f := newFixture(t, Settings{})
	ctx := context.Background()

	mine, err := f.svc.MyContributions(ctx, profiles.MockWallet)
	require.NoError(t, err)
	require.Len(t, mine, 4)
	assert.Equal(t, "rep-15", mine[0].ID)
	assert.Equal(t, "proj-001", mine[0].ProjectID)
	assert.Equal(t, "rep-17", mine[3].ID)

	disputes, err := f.svc.MyDisputes(ctx, profiles.WalletFunderThree)
	require.NoError(t, err)
	require.Len(t, disputes, 1)
	assert.Equal(t, "rep-12", disputes[0].ID)

	feed, err := f.svc.ActivityFeed(ctx, 0)
	require.NoError(t, err)
	require.Len(t, feed, 10)
	assert.Equal(t, "rep-16", feed[0].ID)

	feed, err = f.svc.ActivityFeed(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, feed, 2)
}

func TestScientistMetrics(t *testing.T) {
	f := newFixture(t, Settings{})

	m, err := f.svc.ScientistMetrics(context.Background(), profiles.MockWallet)
	require.NoError(t, err)
	assert.Equal(t, 4, m.TotalPoRsContributed)
	assert.Equal(t, 7, m.OwnedProjects)
	assert.Equal(t, 2, m.Eligibility.Contributed)
	assert.Equal(t, 3, m.Eligibility.Required)
	assert.False(t, m.Eligibility.Eligible)
}

func TestSearchHidesForeignDrafts(t *testing.T) {
	f := newFixture(t, Settings{})
	ctx := context.Background()

	projects, err := f.svc.Search(ctx, profiles.WalletAlice, "drone", 0)
	require.NoError(t, err)
	assert.Contains(t, ids(projects), "proj-001")
	assert.NotContains(t, ids(projects), "proj-draft-003")

	projects, err = f.svc.Search(ctx, profiles.MockWallet, "drone", 0)
	require.NoError(t, err)
	assert.Contains(t, ids(projects), "proj-draft-003")
}
