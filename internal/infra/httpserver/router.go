package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	chicors "github.com/go-chi/cors"

	appagents "github.com/fanoo2/backend/internal/application/agents"
	appann "github.com/fanoo2/backend/internal/application/annotations"
	appdash "github.com/fanoo2/backend/internal/application/dashboard"
	apppay "github.com/fanoo2/backend/internal/application/payments"
	domann "github.com/fanoo2/backend/internal/domain/annotation"
	domdash "github.com/fanoo2/backend/internal/domain/dashboard"
	"github.com/fanoo2/backend/internal/domain/integrations"
	"github.com/fanoo2/backend/internal/logger"
	"github.com/fanoo2/backend/internal/middleware"
)

// Options carries everything the router serves. Services left nil are
// still routed; their handlers answer 503.
type Options struct {
	Service     string
	Annotations *appann.Service
	Dashboard   *appdash.Service
	Agents      *appagents.Service
	Payments    *apppay.Service
	RoomTokens  integrations.RoomTokens

	Metrics     *middleware.Metrics
	Limiter     *middleware.RateLimiter
	Checkers    map[string]middleware.HealthChecker
	AdminKey    string
	CORSOrigins []string
	Log         *logger.Logger
}

type Router struct {
	annSvc   *appann.Service
	dashSvc  *appdash.Service
	agentSvc *appagents.Service
	paySvc   *apppay.Service
	tokens   integrations.RoomTokens
	metrics  *middleware.Metrics
	log      *logger.Logger
}

func NewRouter(opt Options) http.Handler {
	if opt.Metrics == nil {
		opt.Metrics = middleware.NewMetrics()
	}
	if opt.Log == nil {
		opt.Log = logger.Named("http")
	}
	if opt.Service == "" {
		opt.Service = "fanno-backend"
	}
	origins := opt.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := &Router{
		annSvc:   opt.Annotations,
		dashSvc:  opt.Dashboard,
		agentSvc: opt.Agents,
		paySvc:   opt.Payments,
		tokens:   opt.RoomTokens,
		metrics:  opt.Metrics,
		log:      opt.Log,
	}

	mux := chi.NewRouter()
	mux.Use(chimw.RequestID)
	mux.Use(chimw.RealIP)
	mux.Use(chimw.Recoverer)
	mux.Use(middleware.AccessLog(opt.Log))
	mux.Use(opt.Metrics.Middleware)
	mux.Use(chicors.Handler(chicors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", middleware.AdminKeyHeader, "Stripe-Signature"},
		MaxAge:         300,
	}))

	admin := middleware.AdminKey(opt.AdminKey)
	live := middleware.LivenessHandler(opt.Service)

	mux.Get("/", handleIndex)
	mux.Get("/health", live)
	mux.Get("/health/ready", middleware.ReadinessHandler(opt.Checkers))
	mux.Get("/metrics", opt.Metrics.Handler)

	mux.Route("/api", func(rt chi.Router) {
		rt.Get("/health", live)
		rt.Get("/stats", r.wrap(r.handleStats))

		rt.Get("/agents", r.wrap(r.handleAgents))
		rt.Get("/agents/{id}", r.wrap(r.handleAgent))
		rt.With(admin).Patch("/agents/{id}", r.wrap(r.handleUpdateAgent))

		rt.Get("/phases", r.wrap(r.handlePhases))
		rt.Get("/repositories", r.wrap(r.handleRepositories))
		rt.Get("/services", r.wrap(r.handleServices))
		rt.Get("/workflows", r.wrap(r.handleWorkflows))
		rt.Get("/activities", r.wrap(r.handleActivities))

		annotate := rt.With()
		if opt.Limiter != nil {
			annotate = rt.With(opt.Limiter.Middleware)
		}
		annotate.Post("/annotate", r.wrap(r.handleAnnotate))
		rt.Get("/annotations", r.wrap(r.handleAnnotations))
		rt.With(admin).Post("/annotations/export", r.wrap(r.handleExport))

		rt.Post("/rtc/token", r.wrap(r.handleRoomToken))
	})

	mux.Post("/payments/create-session", r.wrap(r.handleCreateSession))
	mux.Post("/payments/webhook", r.wrap(r.handleWebhook))
	mux.Post("/agent-events", r.wrap(r.handleAgentEvent))

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// httpError is a handler failure with a client-facing status and body.
type httpError struct {
	status  int
	message string
	extra   map[string]any
	cause   error
}

func (e *httpError) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

func (e *httpError) Unwrap() error { return e.cause }

func fail(status int, message string, cause error) *httpError {
	return &httpError{status: status, message: message, cause: cause}
}

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}

		var he *httpError
		var ve *domann.ValidationError
		var be *middleware.BindError
		switch {
		case errors.As(err, &he):
			body := map[string]any{"message": he.message}
			for k, v := range he.extra {
				body[k] = v
			}
			if he.status >= http.StatusInternalServerError {
				r.logFailure(req, err)
				if he.cause != nil {
					body["error"] = he.cause.Error()
				}
			}
			writeJSON(w, he.status, body)
		case errors.As(err, &ve):
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"message": validationMessage(ve.Code),
				"code":    ve.Code,
				"details": ve.Details(),
			})
		case errors.As(err, &be):
			body := map[string]any{"message": be.Message}
			if be.Field != "" {
				body["field"] = be.Field
			}
			writeJSON(w, http.StatusBadRequest, body)
		case errors.Is(err, domdash.ErrNotFound):
			writeMessage(w, http.StatusNotFound, "not found")
		case errors.Is(err, integrations.ErrInvalidSignature):
			writeMessage(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, integrations.ErrDisabled), errors.Is(err, domann.ErrArchiveDisabled):
			writeMessage(w, http.StatusServiceUnavailable, err.Error())
		default:
			r.logFailure(req, err)
			writeMessage(w, http.StatusInternalServerError, "internal server error")
		}
	}
}

func (r *Router) logFailure(req *http.Request, err error) {
	logger.From(req.Context(), r.log).Error().Err(err).
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Msg("request failed")
}

func validationMessage(code string) string {
	if code == domann.CodeTextTooLong {
		return "Text too long"
	}
	return "Invalid request"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
