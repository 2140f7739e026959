package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	appagents "github.com/fanoo2/backend/internal/application/agents"
	domann "github.com/fanoo2/backend/internal/domain/annotation"
	domdash "github.com/fanoo2/backend/internal/domain/dashboard"
	"github.com/fanoo2/backend/internal/domain/integrations"
	"github.com/fanoo2/backend/internal/middleware"
)

const (
	maxAnnotateBody = 1 << 20
	maxWebhookBody  = 64 << 10
)

var errServiceDown = fail(http.StatusServiceUnavailable, "service not configured", nil)

// POST /api/annotate
// Body: {"text": "..."}. Anything that is not a JSON string counts as missing text.
func (r *Router) handleAnnotate(w http.ResponseWriter, req *http.Request) error {
	if r.annSvc == nil {
		return errServiceDown
	}
	maxLen := r.annSvc.Limit()
	var body struct {
		Text any `json:"text"`
	}
	// a malformed body leaves Text nil and is rejected as INVALID_TEXT below
	err := json.NewDecoder(http.MaxBytesReader(w, req.Body, annotateBodyLimit(maxLen))).Decode(&body)
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		r.metrics.ObserveRejected()
		return &domann.ValidationError{
			Code:         domann.CodeTextTooLong,
			Reason:       fmt.Sprintf("request body exceeds %d bytes", mbe.Limit),
			MaxLength:    maxLen,
			ActualLength: int(mbe.Limit) + 1,
		}
	}
	text, _ := body.Text.(string)

	resp, err := r.annSvc.Annotate(req.Context(), text)
	if err != nil {
		r.metrics.ObserveRejected()
		return err
	}
	r.metrics.ObserveAnnotation(string(resp.Method))
	writeJSON(w, http.StatusOK, resp)
	return nil
}

// annotateBodyLimit leaves room for a maximal text written entirely as
// \uXXXX escapes plus the surrounding object.
func annotateBodyLimit(maxRunes int) int64 {
	limit := int64(maxRunes)*12 + 1024
	if limit < maxAnnotateBody {
		return maxAnnotateBody
	}
	return limit
}

// GET /api/annotations?limit=10
func (r *Router) handleAnnotations(w http.ResponseWriter, req *http.Request) error {
	if r.annSvc == nil {
		return errServiceDown
	}
	list, err := r.annSvc.Recent(req.Context(), middleware.ParseLimit(req, 10, 100))
	if err != nil {
		return fail(http.StatusInternalServerError, "Failed to fetch annotations", err)
	}
	writeJSON(w, http.StatusOK, list)
	return nil
}

// POST /api/annotations/export?limit=100
func (r *Router) handleExport(w http.ResponseWriter, req *http.Request) error {
	if r.annSvc == nil {
		return errServiceDown
	}
	url, err := r.annSvc.Export(req.Context(), middleware.ParseLimit(req, 100, 100))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
	return nil
}

// GET /api/stats
func (r *Router) handleStats(w http.ResponseWriter, req *http.Request) error {
	if r.dashSvc == nil {
		return errServiceDown
	}
	stats, err := r.dashSvc.Stats(req.Context())
	if err != nil {
		return fail(http.StatusInternalServerError, "Failed to fetch stats", err)
	}
	writeJSON(w, http.StatusOK, stats)
	return nil
}

// GET /api/agents
func (r *Router) handleAgents(w http.ResponseWriter, req *http.Request) error {
	if r.dashSvc == nil {
		return errServiceDown
	}
	list, err := r.dashSvc.Agents(req.Context())
	if err != nil {
		return fail(http.StatusInternalServerError, "Failed to fetch agents", err)
	}
	writeJSON(w, http.StatusOK, list)
	return nil
}

// GET /api/agents/{id}
func (r *Router) handleAgent(w http.ResponseWriter, req *http.Request) error {
	if r.dashSvc == nil {
		return errServiceDown
	}
	id, err := agentID(req)
	if err != nil {
		return err
	}
	agent, err := r.dashSvc.Agent(req.Context(), id)
	if errors.Is(err, domdash.ErrNotFound) {
		return fail(http.StatusNotFound, "Agent not found", nil)
	}
	if err != nil {
		return fail(http.StatusInternalServerError, "Failed to fetch agent", err)
	}
	writeJSON(w, http.StatusOK, agent)
	return nil
}

// PATCH /api/agents/{id}
func (r *Router) handleUpdateAgent(w http.ResponseWriter, req *http.Request) error {
	if r.dashSvc == nil {
		return errServiceDown
	}
	id, err := agentID(req)
	if err != nil {
		return err
	}
	patch, err := middleware.BindJSON[domdash.AgentPatch](req)
	if err != nil {
		return err
	}
	agent, err := r.dashSvc.UpdateAgent(req.Context(), id, patch)
	if errors.Is(err, domdash.ErrNotFound) {
		return fail(http.StatusNotFound, "Agent not found", nil)
	}
	if err != nil {
		return fail(http.StatusInternalServerError, "Failed to update agent", err)
	}
	writeJSON(w, http.StatusOK, agent)
	return nil
}

func agentID(req *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(req, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fail(http.StatusBadRequest, "Invalid agent id", nil)
	}
	return id, nil
}

// GET /api/phases
func (r *Router) handlePhases(w http.ResponseWriter, req *http.Request) error {
	if r.dashSvc == nil {
		return errServiceDown
	}
	list, err := r.dashSvc.Phases(req.Context())
	if err != nil {
		return fail(http.StatusInternalServerError, "Failed to fetch phases", err)
	}
	writeJSON(w, http.StatusOK, list)
	return nil
}

// GET /api/repositories
func (r *Router) handleRepositories(w http.ResponseWriter, req *http.Request) error {
	if r.dashSvc == nil {
		return errServiceDown
	}
	list, err := r.dashSvc.Repositories(req.Context())
	if err != nil {
		return fail(http.StatusInternalServerError, "Failed to fetch repositories", err)
	}
	writeJSON(w, http.StatusOK, list)
	return nil
}

// GET /api/services
func (r *Router) handleServices(w http.ResponseWriter, req *http.Request) error {
	if r.dashSvc == nil {
		return errServiceDown
	}
	list, err := r.dashSvc.Services(req.Context())
	if err != nil {
		return fail(http.StatusInternalServerError, "Failed to fetch services", err)
	}
	writeJSON(w, http.StatusOK, list)
	return nil
}

// GET /api/workflows
func (r *Router) handleWorkflows(w http.ResponseWriter, req *http.Request) error {
	if r.dashSvc == nil {
		return errServiceDown
	}
	list, err := r.dashSvc.Workflows(req.Context())
	if err != nil {
		return fail(http.StatusInternalServerError, "Failed to fetch workflows", err)
	}
	writeJSON(w, http.StatusOK, list)
	return nil
}

// GET /api/activities?limit=10
func (r *Router) handleActivities(w http.ResponseWriter, req *http.Request) error {
	if r.dashSvc == nil {
		return errServiceDown
	}
	list, err := r.dashSvc.Activities(req.Context(), middleware.ParseLimit(req, 10, 100))
	if err != nil {
		return fail(http.StatusInternalServerError, "Failed to fetch activities", err)
	}
	writeJSON(w, http.StatusOK, list)
	return nil
}

// POST /api/rtc/token
// Body: {"room": "...", "identity": "..."}
func (r *Router) handleRoomToken(w http.ResponseWriter, req *http.Request) error {
	if r.tokens == nil {
		return fail(http.StatusServiceUnavailable, "LiveKit configuration missing", nil)
	}
	body, err := middleware.BindJSON[integrations.RoomTokenRequest](req)
	if err != nil {
		return err
	}
	tok, err := r.tokens.IssueToken(body)
	if errors.Is(err, integrations.ErrDisabled) {
		return fail(http.StatusServiceUnavailable, "LiveKit configuration missing", nil)
	}
	if err != nil {
		return fail(http.StatusInternalServerError, "Failed to issue room token", err)
	}
	writeJSON(w, http.StatusOK, tok)
	return nil
}

// POST /payments/create-session
// Body: {"amount": 1999, "currency": "usd"}
func (r *Router) handleCreateSession(w http.ResponseWriter, req *http.Request) error {
	if r.paySvc == nil {
		return fail(http.StatusServiceUnavailable, "Stripe configuration missing", nil)
	}
	var body integrations.CheckoutRequest
	if err := json.NewDecoder(io.LimitReader(req.Body, maxAnnotateBody)).Decode(&body); err != nil || body.Amount == 0 || body.Currency == "" {
		return fail(http.StatusBadRequest, "Amount and currency are required", nil)
	}
	if err := middleware.Validate(body); err != nil {
		return err
	}

	sess, err := r.paySvc.CreateCheckoutSession(req.Context(), body)
	if errors.Is(err, integrations.ErrDisabled) {
		return fail(http.StatusServiceUnavailable, "Stripe configuration missing", nil)
	}
	if err != nil {
		return fail(http.StatusInternalServerError, "Failed to create payment session", err)
	}
	writeJSON(w, http.StatusOK, sess)
	return nil
}

// POST /payments/webhook
// The raw body is needed for signature verification.
func (r *Router) handleWebhook(w http.ResponseWriter, req *http.Request) error {
	if r.paySvc == nil {
		return fail(http.StatusServiceUnavailable, "Webhook secret not configured", nil)
	}
	payload, err := io.ReadAll(io.LimitReader(req.Body, maxWebhookBody))
	if err != nil {
		return fail(http.StatusBadRequest, "Webhook Error: unreadable body", nil)
	}

	_, err = r.paySvc.HandleWebhook(req.Context(), payload, req.Header.Get("Stripe-Signature"))
	switch {
	case errors.Is(err, integrations.ErrDisabled):
		return fail(http.StatusServiceUnavailable, "Webhook secret not configured", nil)
	case errors.Is(err, integrations.ErrInvalidSignature):
		return fail(http.StatusBadRequest, fmt.Sprintf("Webhook Error: %v", err), nil)
	case err != nil:
		return err
	}
	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
	return nil
}

// POST /agent-events
// Body: {"agent": "payment-specialist", "status": "completed", "version": "1.2.0"}
func (r *Router) handleAgentEvent(w http.ResponseWriter, req *http.Request) error {
	if r.agentSvc == nil {
		return errServiceDown
	}
	var ev appagents.Event
	if err := json.NewDecoder(io.LimitReader(req.Body, maxAnnotateBody)).Decode(&ev); err != nil || ev.Agent == "" || ev.Status == "" {
		return fail(http.StatusBadRequest, "Agent and status are required", nil)
	}
	if err := middleware.Validate(ev); err != nil {
		return err
	}

	handled, err := r.agentSvc.Handle(req.Context(), ev)
	if err != nil {
		return fail(http.StatusInternalServerError, "Failed to process agent event", err)
	}
	if !handled {
		w.WriteHeader(http.StatusNoContent)
		return nil
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Agent event processed",
		"agent":   ev.Agent,
		"status":  ev.Status,
	})
	return nil
}
