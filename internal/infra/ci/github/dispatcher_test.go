package github

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fanoo2/backend/internal/domain/integrations"
)

func TestDispatch(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/repos/fanoo2/frontend/actions/workflows/run-frontend-agent.yml/dispatches", r.URL.Path)
		assert.Equal(t, "Bearer ghp_test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/vnd.github+json", r.Header.Get("Accept"))
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &body))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	d := NewDispatcher(Options{
		Token: "ghp_test", Owner: "fanoo2", Repo: "frontend",
		Workflow: "run-frontend-agent.yml", APIURL: srv.URL,
	})
	err := d.Dispatch(context.Background(), map[string]string{"sdk_version": "1.2.3"})
	require.NoError(t, err)

	assert.Equal(t, "main", body["ref"])
	assert.Equal(t, map[string]any{"sdk_version": "1.2.3"}, body["inputs"])
}

func TestDispatch_Failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"message":"Unexpected inputs provided"}`)
	}))
	defer srv.Close()

	d := NewDispatcher(Options{Token: "t", Owner: "o", Repo: "r", Workflow: "w.yml", APIURL: srv.URL})
	err := d.Dispatch(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
	assert.Contains(t, err.Error(), "Unexpected inputs provided")
}

func TestDispatch_Disabled(t *testing.T) {
	err := NewDispatcher(Options{Owner: "o", Repo: "r", Workflow: "w.yml"}).Dispatch(context.Background(), nil)
	assert.ErrorIs(t, err, integrations.ErrDisabled)
}
