package projects

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cairn/research-portal/portal-backend/internal/notifications"
	"cairn/research-portal/portal-backend/internal/profiles"
)

type sentToast struct {
	wallet  string
	kind    notifications.ToastType
	message string
}

type recordingNotifier struct {
	mu     sync.Mutex
	toasts []sentToast
}

func (n *recordingNotifier) Notify(ctx context.Context, wallet string, kind notifications.ToastType, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.toasts = append(n.toasts, sentToast{wallet: wallet, kind: kind, message: message})
}

func (n *recordingNotifier) last() sentToast {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.toasts) == 0 {
		return sentToast{}
	}
	return n.toasts[len(n.toasts)-1]
}

var testNow = time.Date(2024, 8, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc      *Service
	profiles *profiles.Service
	notifier *recordingNotifier
}

func newFixture(t *testing.T, settings Settings) *fixture {
	t.Helper()
	ctx := context.Background()

	profileSvc := profiles.NewService(profiles.NewMemoryRepository(), zap.NewNop())
	require.NoError(t, profileSvc.Seed(ctx, profiles.SeedProfiles()))

	if settings.PoRRequirement == 0 {
		settings.PoRRequirement = 3
	}
	if settings.DefaultFundingGoal == 0 {
		settings.DefaultFundingGoal = 15000
	}
	if settings.DisputeWindow == 0 {
		settings.DisputeWindow = 7 * 24 * time.Hour
	}

	notifier := &recordingNotifier{}
	svc := NewService(NewMemoryRepository(), profileSvc, notifier, settings, zap.NewNop(),
		WithClock(func() time.Time { return testNow }))
	require.NoError(t, svc.Seed(ctx, SeedProjects()))

	return &fixture{svc: svc, profiles: profileSvc, notifier: notifier}
}

func TestSeedKeepsDisplayOrder(t *testing.T) {
	f := newFixture(t, Settings{})

	all, err := f.svc.List(context.Background(), ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 13)
	assert.Equal(t, "proj-008", all[0].ID)
	assert.Equal(t, "proj-007", all[len(all)-1].ID)
}

func TestCreateProject(t *testing.T) {
	f := newFixture(t, Settings{})
	ctx := context.Background()

	result, err := f.svc.CreateProject(ctx, profiles.WalletAlice, CreateProjectRequest{
		Title:       "  Legged Locomotion  ",
		Description: "Sim-to-real transfer for quadrupeds",
		Domain:      DomainSimulation,
		Tags:        "RL, Sim2Real,, ",
	})
	require.NoError(t, err)

	p := result.Project
	assert.Equal(t, "Legged Locomotion", p.Title)
	assert.Equal(t, StatusDraft, p.Status)
	assert.Equal(t, []string{"RL", "Sim2Real"}, p.Tags)
	require.NotNil(t, p.FundingGoal)
	assert.Equal(t, 15000.0, *p.FundingGoal)
	assert.Equal(t, p.StartDate.AddDate(1, 0, 0), p.EndDate)
	assert.Equal(t, ReproducibilityTemplates[DomainSimulation], p.ReproducibilityRequirements)
	assert.Zero(t, p.HypercertFraction)
	assert.NotEmpty(t, p.CID)
	assert.Equal(t, "Project created! Your PoR contribution counter has been reset.", result.Message)

	all, err := f.svc.List(ctx, ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, p.ID, all[0].ID)

	profile, err := f.profiles.Get(ctx, profiles.WalletAlice)
	require.NoError(t, err)
	assert.Equal(t, 0, profile.PoRContributedCount)

	toast := f.notifier.last()
	assert.Equal(t, profiles.WalletAlice, toast.wallet)
	assert.Equal(t, notifications.ToastSuccess, toast.kind)
}

func TestCreateProjectRejectsIneligibleCreator(t *testing.T) {
	f := newFixture(t, Settings{})

	_, err := f.svc.CreateProject(context.Background(), profiles.MockWallet, CreateProjectRequest{
		Title:       "Too early",
		Description: "Only two contributions so far",
	})
	assert.ErrorIs(t, err, ErrNotEligible)
}

func TestConcurrentCreationsSpendOneBalance(t *testing.T) {
	f := newFixture(t, Settings{})
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	created, rejected := 0, 0
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.CreateProject(ctx, profiles.WalletAlice, CreateProjectRequest{Title: "Parallel", Description: "d"})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				created++
			} else if assert.ErrorIs(t, err, ErrNotEligible) {
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, 4, rejected)

	profile, err := f.profiles.Get(ctx, profiles.WalletAlice)
	require.NoError(t, err)
	assert.Equal(t, 0, profile.PoRContributedCount)
}

type failingCreateRepository struct {
	Repository
}

func (r *failingCreateRepository) Create(ctx context.Context, p *Project) error {
	return errors.New("db down")
}

func TestCreateProjectRestoresCounterWhenStoreFails(t *testing.T) {
	f := newFixture(t, Settings{})
	ctx := context.Background()
	f.svc.repo = &failingCreateRepository{Repository: f.svc.repo}

	_, err := f.svc.CreateProject(ctx, profiles.WalletAlice, CreateProjectRequest{Title: "Lost", Description: "d"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotEligible)

	profile, err := f.profiles.Get(ctx, profiles.WalletAlice)
	require.NoError(t, err)
	assert.Equal(t, 5, profile.PoRContributedCount)
}

func TestCreateProjectValidation(t *testing.T) {
	f := newFixture(t, Settings{})
	ctx := context.Background()

	_, err := f.svc.CreateProject(ctx, profiles.WalletAlice, CreateProjectRequest{Description: "no title"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.CreateProject(ctx, profiles.WalletAlice, CreateProjectRequest{Title: "t", Description: "d", Domain: "Chemistry"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAddOutputsActivatesDraft(t *testing.T) {
	f := newFixture(t, Settings{})
	ctx := context.Background()

	early := time.Date(2024, 8, 2, 0, 0, 0, 0, time.UTC)
	late := time.Date(2024, 8, 6, 0, 0, 0, 0, time.UTC)
	result, err := f.svc.AddOutputs(ctx, profiles.MockWallet, "proj-003", AddOutputsRequest{Outputs: []OutputInput{
		{Type: OutputCode, Description: "Controller", Timestamp: &late, Data: OutputData{URL: "github.com/org/ctrl", FileName: "dropped.txt"}},
		{Type: OutputDataset, Description: "Runs", Timestamp: &early, Data: OutputData{IPFSCID: "bafy", FileName: "runs.zip"}},
	}})
	require.NoError(t, err)

	p := result.Project
	assert.Equal(t, StatusActive, p.Status)
	require.NotNil(t, p.LastOutputDate)
	assert.Equal(t, late, *p.LastOutputDate)
	assert.Len(t, p.Outputs, 2)
	assert.Equal(t, OutputData{URL: "github.com/org/ctrl"}, p.Outputs[0].Data)
	assert.Equal(t, "Project activated! It is now publicly visible.", result.Message)
}

func TestAddOutputsIsOneTime(t *testing.T) {
	f := newFixture(t, Settings{})
	ctx := context.Background()

	_, err := f.svc.AddOutputs(ctx, profiles.MockWallet, "proj-004", AddOutputsRequest{Outputs: []OutputInput{
		{Type: OutputTools, Description: "Stack", Data: OutputData{Tools: []Tool{"ROS", "Python"}}},
	}})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	p, err := f.svc.Get(ctx, "proj-004")
	require.NoError(t, err)
	assert.Len(t, p.Outputs, 3)

	_, err = f.svc.AddOutputs(ctx, profiles.MockWallet, "proj-003", AddOutputsRequest{Outputs: []OutputInput{
		{Type: OutputTools, Description: "Stack", Data: OutputData{Tools: []Tool{"ROS", "ROS", "Python"}}},
	}})
	require.NoError(t, err)

	_, err = f.svc.AddOutputs(ctx, profiles.MockWallet, "proj-003", AddOutputsRequest{Outputs: []OutputInput{
		{Type: OutputCode, Description: "Second batch"},
	}})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	p, err = f.svc.Get(ctx, "proj-003")
	require.NoError(t, err)
	require.Len(t, p.Outputs, 1)
	assert.Equal(t, []Tool{"ROS", "Python"}, p.Outputs[0].Data.Tools)
	assert.Equal(t, testNow.Truncate(24*time.Hour), p.Outputs[0].Timestamp)
}

func TestAddOutputsRules(t *testing.T) {
	f := newFixture(t, Settings{})
	ctx := context.Background()
	valid := []OutputInput{{Type: OutputCode, Description: "x"}}

	_, err := f.svc.AddOutputs(ctx, profiles.WalletAlice, "proj-003", AddOutputsRequest{Outputs: valid})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.AddOutputs(ctx, profiles.MockWallet, "proj-003", AddOutputsRequest{})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.AddOutputs(ctx, profiles.MockWallet, "proj-003", AddOutputsRequest{Outputs: []OutputInput{{Type: OutputCode}}})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.AddOutputs(ctx, profiles.MockWallet, "proj-003", AddOutputsRequest{Outputs: []OutputInput{{Type: OutputTools, Description: "none"}}})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.AddOutputs(ctx, profiles.MockWallet, "proj-007", AddOutputsRequest{Outputs: valid})
	assert.ErrorIs(t, err, ErrClosed)

	_, err = f.svc.AddOutputs(ctx, profiles.MockWallet, "proj-missing", AddOutputsRequest{Outputs: valid})
	assert.ErrorIs(t, err, ErrNotFound)

	p, err := f.svc.Get(ctx, "proj-003")
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, p.Status)
	assert.Empty(t, p.Outputs)
}

func TestSubmitPoR(t *testing.T) {
	f := newFixture(t, Settings{})
	ctx := context.Background()

	result, err := f.svc.SubmitPoR(ctx, profiles.WalletAlice, "proj-004", SubmitPoRRequest{
		Notes: "Reran the fusion pipeline",
		Evidence: []OutputInput{
			{Type: OutputOthers, Description: "Bag files from my run", Data: OutputData{URL: "ipfs://bag", OtherText: "ignored"}},
			{Type: OutputVideo, Description: "Recording", Data: OutputData{URL: "https://video", FileName: "dropped.mp4"}},
		},
	})
	require.NoError(t, err)

	reps := result.Project.Reproducibilities
	require.Len(t, reps, 1)
	rep := reps[0]
	assert.Equal(t, PoRWaiting, rep.Status)
	assert.Equal(t, profiles.WalletAlice, rep.Verifier)
	assert.Equal(t, "Bag files from my run", rep.Evidence[0].Data.OtherText)
	assert.Equal(t, OutputData{URL: "https://video"}, rep.Evidence[1].Data)
	assert.Equal(t, "PoR submitted! Your contribution is recorded.", result.Message)

	profile, err := f.profiles.Get(ctx, profiles.WalletAlice)
	require.NoError(t, err)
	assert.Equal(t, 6, profile.PoRContributedCount)
}

func TestSubmitPoRRules(t *testing.T) {
	f := newFixture(t, Settings{})
	ctx := context.Background()
	evidence := []OutputInput{{Type: OutputDocument, Description: "report"}}

	_, err := f.svc.SubmitPoR(ctx, profiles.MockWallet, "proj-004", SubmitPoRRequest{Notes: "mine", Evidence: evidence})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.SubmitPoR(ctx, profiles.MockWallet, "proj-008", SubmitPoRRequest{Notes: "funded", Evidence: evidence})
	assert.ErrorIs(t, err, ErrClosed)

	_, err = f.svc.SubmitPoR(ctx, profiles.WalletAlice, "proj-004", SubmitPoRRequest{Evidence: evidence})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.SubmitPoR(ctx, profiles.WalletAlice, "proj-004", SubmitPoRRequest{Notes: "n"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.SubmitPoR(ctx, profiles.WalletAlice, "proj-004", SubmitPoRRequest{
		Notes: "n", Evidence: []OutputInput{{Type: OutputDataset, Description: "not evidence"}},
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDispute(t *testing.T) {
	f := newFixture(t, Settings{})
	ctx := context.Background()

	result, err := f.svc.Dispute(ctx, profiles.MockWallet, "proj-001", "rep-16")
	require.NoError(t, err)

	idx := result.Project.FindReproducibility("rep-16")
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, PoRDisputed, result.Project.Reproducibilities[idx].Status)
	assert.Equal(t, "Submission from 0xBob...... has been flagged for review.", result.Message)
	assert.Equal(t, notifications.ToastInfo, f.notifier.last().kind)

	// a disputed submission never moves again
	_, err = f.svc.Dispute(ctx, profiles.MockWallet, "proj-001", "rep-16")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestDisputeRules(t *testing.T) {
	f := newFixture(t, Settings{})
	ctx := context.Background()

	_, err := f.svc.Dispute(ctx, profiles.WalletAlice, "proj-001", "rep-16")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Dispute(ctx, profiles.MockWallet, "proj-001", "rep-1")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.svc.Dispute(ctx, profiles.MockWallet, "proj-001", "rep-404")
	assert.ErrorIs(t, err, ErrPoRNotFound)
}

func TestAddFunding(t *testing.T) {
	f := newFixture(t, Settings{})
	ctx := context.Background()

	_, err := f.svc.AddFunding(ctx, "proj-003", 100)
	assert.ErrorIs(t, err, ErrClosed)

	_, err = f.svc.AddFunding(ctx, "proj-004", 0)
	assert.ErrorIs(t, err, ErrValidation)

	// no goal means never fully funded
	res, err := f.svc.AddFunding(ctx, "proj-004", 1_000_000)
	require.NoError(t, err)
	assert.False(t, res.FullyFunded)
	assert.Equal(t, StatusActive, res.Project.Status)
	assert.Equal(t, 1_001_000.0, res.Project.FundingPool)

	_, err = f.svc.AddOutputs(ctx, profiles.MockWallet, "proj-draft-002", AddOutputsRequest{Outputs: []OutputInput{{Type: OutputCode, Description: "grip"}}})
	require.NoError(t, err)

	res, err = f.svc.AddFunding(ctx, "proj-draft-002", 4999)
	require.NoError(t, err)
	assert.False(t, res.FullyFunded)

	res, err = f.svc.AddFunding(ctx, "proj-draft-002", 1)
	require.NoError(t, err)
	assert.True(t, res.FullyFunded)
	assert.Equal(t, StatusFunded, res.Project.Status)

	// funded projects keep accepting contributions
	res, err = f.svc.AddFunding(ctx, "proj-draft-002", 10)
	require.NoError(t, err)
	assert.Equal(t, StatusFunded, res.Project.Status)
	assert.Equal(t, 5010.0, res.Project.FundingPool)
}

func TestRevertFundingReopensProject(t *testing.T) {
	f := newFixture(t, Settings{})
	ctx := context.Background()

	_, err := f.svc.AddOutputs(ctx, profiles.MockWallet, "proj-draft-002", AddOutputsRequest{Outputs: []OutputInput{{Type: OutputCode, Description: "grip"}}})
	require.NoError(t, err)
	res, err := f.svc.AddFunding(ctx, "proj-draft-002", 5000)
	require.NoError(t, err)
	require.True(t, res.FullyFunded)

	p, err := f.svc.RevertFunding(ctx, "proj-draft-002", 5000, true)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, p.Status)
	assert.Zero(t, p.FundingPool)

	res, err = f.svc.AddFunding(ctx, "proj-004", 250)
	require.NoError(t, err)
	p, err = f.svc.RevertFunding(ctx, "proj-004", 250, false)
	require.NoError(t, err)
	assert.Equal(t, res.Project.FundingPool-250, p.FundingPool)
}

func TestFinalizeReproducibilities(t *testing.T) {
	f := newFixture(t, Settings{})
	ctx := context.Background()

	n, err := f.svc.FinalizeReproducibilities(ctx)
	require.NoError(t, err)
	assert.Positive(t, n)

	cutoff := testNow.Add(-7 * 24 * time.Hour)
	all, err := f.svc.List(ctx, ListFilter{})
	require.NoError(t, err)
	for _, p := range all {
		for _, r := range p.Reproducibilities {
			if r.Status == PoRWaiting {
				assert.True(t, r.Timestamp.After(cutoff), "%s should have been finalized", r.ID)
			}
		}
	}

	p, err := f.svc.Get(ctx, "proj-001")
	require.NoError(t, err)
	assert.Equal(t, PoRSuccess, p.Reproducibilities[p.FindReproducibility("rep-16")].Status)

	n, err = f.svc.FinalizeReproducibilities(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestArchiveExpired(t *testing.T) {
	ctx := context.Background()

	disabled := newFixture(t, Settings{})
	n, err := disabled.svc.ArchiveExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	f := newFixture(t, Settings{ArchiveGracePeriod: 24 * time.Hour})
	f.svc.now = func() time.Time { return time.Date(2040, 1, 1, 0, 0, 0, 0, time.UTC) }

	open, err := f.svc.List(ctx, ListFilter{Statuses: []ProjectStatus{StatusActive, StatusFunded}})
	require.NoError(t, err)

	n, err = f.svc.ArchiveExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(open), n)

	open, err = f.svc.List(ctx, ListFilter{Statuses: []ProjectStatus{StatusActive, StatusFunded}})
	require.NoError(t, err)
	assert.Empty(t, open)

	drafts, err := f.svc.List(ctx, ListFilter{Statuses: []ProjectStatus{StatusDraft}})
	require.NoError(t, err)
	assert.Len(t, drafts, 4)
}

type staleListRepository struct {
	Repository
	snapshot []*Project
}

func (r *staleListRepository) List(ctx context.Context) ([]*Project, error) {
	return r.snapshot, nil
}

func TestArchiveExpiredSkipsAlreadyArchived(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Settings{ArchiveGracePeriod: 24 * time.Hour})
	f.svc.now = func() time.Time { return time.Date(2040, 1, 1, 0, 0, 0, 0, time.UTC) }

	snapshot, err := f.svc.repo.List(ctx)
	require.NoError(t, err)

	n, err := f.svc.ArchiveExpired(ctx)
	require.NoError(t, err)
	require.Positive(t, n)

	// candidates listed before another pass archived them
	f.svc.repo = &staleListRepository{Repository: f.svc.repo, snapshot: snapshot}
	n, err = f.svc.ArchiveExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestConcurrentSubmissionsAreAllRecorded(t *testing.T) {
	f := newFixture(t, Settings{})
	ctx := context.Background()

	verifiers := []string{profiles.WalletAlice, profiles.WalletBob, profiles.WalletCharlie, profiles.WalletFunderOne}
	var wg sync.WaitGroup
	for _, v := range verifiers {
		wg.Add(1)
		go func(wallet string) {
			defer wg.Done()
			_, err := f.svc.SubmitPoR(ctx, wallet, "proj-004", SubmitPoRRequest{
				Notes:    "parallel",
				Evidence: []OutputInput{{Type: OutputLog, Description: "log"}},
			})
			assert.NoError(t, err)
		}(v)
	}
	wg.Wait()

	p, err := f.svc.Get(ctx, "proj-004")
	require.NoError(t, err)
	assert.Len(t, p.Reproducibilities, len(verifiers))
}
