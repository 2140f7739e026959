package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu     sync.Mutex
	agents []string
	err    error
}

func (n *recordingNotifier) Notify(ctx context.Context, agentID, status string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.agents = append(n.agents, agentID+":"+status)
	return n.err
}

func nopLog() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func TestLoadAgents(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "agents.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"agents":[{"id":"uiux-designer","name":"UI/UX Designer","tool":"FigmaAI+Uizard","output":"npm:@org/design-system"}]}`), 0o644))

	agents, err := LoadAgents(good)
	require.NoError(t, err)
	require.Len(t, agents, 1)
	assert.Equal(t, "FigmaAI+Uizard", agents[0].Tool)

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`{"agents":[]}`), 0o644))
	_, err = LoadAgents(empty)
	assert.Error(t, err)

	noID := filepath.Join(dir, "noid.json")
	require.NoError(t, os.WriteFile(noID, []byte(`{"agents":[{"name":"x"}]}`), 0o644))
	_, err = LoadAgents(noID)
	assert.Error(t, err)

	_, err = LoadAgents(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRun_SequentialIncludingUnknown(t *testing.T) {
	n := &recordingNotifier{}
	r := &Runner{Notifier: n, Log: nopLog()}

	err := r.Run(context.Background(), []AgentConfig{
		{ID: "backend-developer", Name: "Backend Developer"},
		{ID: "mystery", Name: "Mystery"},
		{ID: "payment-specialist", Name: "Payment Specialist"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"backend-developer:completed", "mystery:completed", "payment-specialist:completed"}, n.agents)
}

func TestRun_NotifierErrorsDoNotStop(t *testing.T) {
	n := &recordingNotifier{err: errors.New("api down")}
	r := &Runner{Notifier: n, Log: nopLog()}

	require.NoError(t, r.Run(context.Background(), []AgentConfig{{ID: "a"}, {ID: "b"}}))
	assert.Len(t, n.agents, 2)
}

func TestRun_CancelDuringDelay(t *testing.T) {
	n := &recordingNotifier{}
	r := &Runner{Delay: time.Hour, Notifier: n, Log: nopLog()}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := r.Run(ctx, []AgentConfig{{ID: "devops-engineer"}, {ID: "moderation-agent"}})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, n.agents)
}

func TestHTTPNotifier(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewHTTPNotifier(srv.URL+"/agent-events", "1.0.0")
	require.NoError(t, n.Notify(context.Background(), "payment-specialist", "completed"))
	assert.Equal(t, map[string]string{"agent": "payment-specialist", "status": "completed", "version": "1.0.0"}, got)

	rejecting := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer rejecting.Close()
	assert.Error(t, NewHTTPNotifier(rejecting.URL, "").Notify(context.Background(), "x", "completed"))
}
