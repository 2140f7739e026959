package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeStats(t *testing.T) {
	agents := []*Agent{
		{Status: StatusActive},
		{Status: StatusConfiguring},
		{Status: StatusActive},
		{Status: StatusPending},
	}
	phases := []*Phase{
		{Progress: 100},
		{Progress: 85},
		{Progress: 35},
		{Progress: 15},
	}

	got := ComputeStats(agents, phases)

	assert.Equal(t, 2, got.ActiveAgents)
	assert.Equal(t, 10+8+3+1, got.CompletedTasks)
	assert.Equal(t, 59, got.Progress) // 235/4 = 58.75
}

func TestComputeStats_NoPhases(t *testing.T) {
	got := ComputeStats(nil, nil)
	assert.Equal(t, Stats{}, got)
}

func TestAgentPatch_Apply(t *testing.T) {
	name := "Renamed"
	status := StatusError
	base := Agent{ID: 1, Name: "UI/UX Designer", Status: StatusActive, Emoji: "🎨"}
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	got := AgentPatch{Name: &name, Status: &status, Config: map[string]any{"k": "v"}}.Apply(base, now)

	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, StatusError, got.Status)
	assert.Equal(t, "🎨", got.Emoji)
	assert.Equal(t, map[string]any{"k": "v"}, got.Config)
	assert.Equal(t, now, got.LastUpdated)
	assert.Equal(t, "UI/UX Designer", base.Name)
}
