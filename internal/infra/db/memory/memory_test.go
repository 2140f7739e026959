package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domann "github.com/fanoo2/backend/internal/domain/annotation"
	domain "github.com/fanoo2/backend/internal/domain/dashboard"
)

func TestAnnotationRepository_AppendAndList(t *testing.T) {
	repo := NewAnnotationRepository()
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		id, err := repo.Append(ctx, domann.NewRecord(fmt.Sprintf("t%d", i), []string{"a"}, domann.MethodBasic, now))
		require.NoError(t, err)
		assert.EqualValues(t, i+1, id)
	}

	got, err := repo.ListRecent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "t4", got[0].InputText)
	assert.Equal(t, "t2", got[2].InputText)

	all, err := repo.ListRecent(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestAnnotationRepository_ListedRecordsAreCopies(t *testing.T) {
	repo := NewAnnotationRepository()
	ctx := context.Background()
	_, err := repo.Append(ctx, domann.NewRecord("x", []string{"orig"}, domann.MethodAI, time.Now()))
	require.NoError(t, err)

	got, err := repo.ListRecent(ctx, 1)
	require.NoError(t, err)
	got[0].Result.Annotations[0] = "changed"
	got[0].InputText = "changed"

	again, err := repo.ListRecent(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"orig"}, again[0].Result.Annotations)
	assert.Equal(t, "x", again[0].InputText)
}

func TestAnnotationRepository_ConcurrentAppend(t *testing.T) {
	repo := NewAnnotationRepository()
	const n = 200

	var wg sync.WaitGroup
	ids := make(chan domann.RecordID, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := repo.Append(context.Background(), domann.NewRecord("x", nil, domann.MethodAI, time.Now()))
			assert.NoError(t, err)
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[domann.RecordID]bool{}
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
	assert.Equal(t, n, repo.Len())
}

func TestAnnotationRepository_CancelledContext(t *testing.T) {
	repo := NewAnnotationRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.Append(ctx, domann.NewRecord("x", nil, domann.MethodAI, time.Now()))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, repo.Len())
}

func TestDashboardStore_SeedWithoutCredentials(t *testing.T) {
	s := NewDashboardStore(Integrations{}, nil)
	ctx := context.Background()

	agents, err := s.ListAgents(ctx)
	require.NoError(t, err)
	require.Len(t, agents, 7)

	byType := map[string]*domain.Agent{}
	for _, a := range agents {
		byType[a.Type] = a
	}
	assert.Equal(t, domain.StatusConfiguring, byType["webrtc"].Status)
	assert.Equal(t, domain.StatusConfiguring, byType["payment"].Status)
	assert.Equal(t, domain.StatusConfiguring, byType["moderation"].Status)
	assert.Equal(t, domain.StatusPending, byType["devops"].Status)
	assert.Equal(t, "", byType["payment"].Config["stripeSecretKey"])

	stats := domain.ComputeStats(agents, mustPhases(t, s))
	assert.Equal(t, 3, stats.ActiveAgents)
	assert.Equal(t, 22, stats.CompletedTasks)
	assert.Equal(t, 59, stats.Progress)
}

func TestDashboardStore_SeedWithCredentials(t *testing.T) {
	s := NewDashboardStore(Integrations{
		OpenAI: true, Database: true, StripeSecret: true, StripePublishable: true,
		LiveKitURL: "wss://rtc.example", LiveKitKeys: true, GitHubToken: true,
	}, nil)
	ctx := context.Background()

	agents, err := s.ListAgents(ctx)
	require.NoError(t, err)
	for _, a := range agents {
		assert.Equal(t, domain.StatusActive, a.Status, a.Type)
	}

	services, err := s.ListServices(ctx)
	require.NoError(t, err)
	for _, sv := range services {
		assert.Equal(t, domain.StatusHealthy, sv.Status, sv.Name)
	}

	wfs, err := s.ListWorkflows(ctx)
	require.NoError(t, err)
	assert.Len(t, wfs, 5)
}

func TestDashboardStore_PhasesOrdered(t *testing.T) {
	phases := mustPhases(t, NewDashboardStore(Integrations{}, nil))
	require.Len(t, phases, 4)
	for i, p := range phases {
		assert.Equal(t, i, p.Order)
	}
}

func TestDashboardStore_GetAndUpdateAgent(t *testing.T) {
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewDashboardStore(Integrations{}, func() time.Time { return clock })
	ctx := context.Background()

	_, err := s.GetAgent(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	clock = clock.Add(time.Hour)
	status := domain.StatusActive
	updated, err := s.UpdateAgent(ctx, 2, domain.AgentPatch{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, updated.Status)
	assert.Equal(t, clock, updated.LastUpdated)

	got, err := s.GetAgent(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "WebRTC Engineer", got.Name)
	assert.Equal(t, domain.StatusActive, got.Status)

	_, err = s.UpdateAgent(ctx, 999, domain.AgentPatch{Status: &status})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDashboardStore_ReturnedAgentsAreCopies(t *testing.T) {
	s := NewDashboardStore(Integrations{}, nil)
	ctx := context.Background()

	a, err := s.GetAgent(ctx, 1)
	require.NoError(t, err)
	a.Name = "changed"
	a.Config["tool"] = "changed"

	again, err := s.GetAgent(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "UI/UX Designer", again.Name)
	assert.Equal(t, "FigmaAI+Uizard", again.Config["tool"])
}

func TestDashboardStore_Activities(t *testing.T) {
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewDashboardStore(Integrations{}, func() time.Time { return clock })
	ctx := context.Background()

	seeded, err := s.RecentActivities(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, seeded, 6)

	clock = clock.Add(time.Minute)
	created, err := s.CreateActivity(ctx, "payment-specialist completed", domain.ActivitySuccess)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	recent, err := s.RecentActivities(ctx, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "payment-specialist completed", recent[0].Title)
	assert.Equal(t, "Frontend integration verified", recent[1].Title)
}

func mustPhases(t *testing.T, s *DashboardStore) []*domain.Phase {
	t.Helper()
	phases, err := s.ListPhases(context.Background())
	require.NoError(t, err)
	return phases
}
