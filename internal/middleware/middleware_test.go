package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestAdminKey(t *testing.T) {
	guarded := AdminKey("s3cret")(okHandler)

	tests := []struct {
		name   string
		header map[string]string
		want   int
	}{
		{"missing", nil, http.StatusUnauthorized},
		{"wrong", map[string]string{AdminKeyHeader: "nope"}, http.StatusUnauthorized},
		{"header", map[string]string{AdminKeyHeader: "s3cret"}, http.StatusOK},
		{"bearer", map[string]string{"Authorization": "Bearer s3cret"}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPatch, "/api/agents/1", nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			guarded.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestAdminKey_DisabledWhenEmpty(t *testing.T) {
	rec := httptest.NewRecorder()
	AdminKey("")(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAccessLog(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf)

	h := AccessLog(&l)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("hi"))
	}))
	req := httptest.NewRequest(http.MethodGet, "/brew", nil)
	req = req.WithContext(context.WithValue(req.Context(), chimw.RequestIDKey, "rid-1"))
	h.ServeHTTP(httptest.NewRecorder(), req)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "rid-1", line["request_id"])
	assert.Equal(t, "/brew", line["path"])
	assert.EqualValues(t, 418, line["status"])
	assert.EqualValues(t, 2, line["bytes"])
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/fail" {
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fail", nil))
	m.ObserveAnnotation("ai")
	m.ObserveAnnotation("basic")
	m.ObserveAnnotation("basic")
	m.ObserveRejected()

	rec := httptest.NewRecorder()
	m.Handler(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	var snap map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.EqualValues(t, 2, snap["requests_total"])
	assert.EqualValues(t, 1, snap["requests_success"])
	assert.EqualValues(t, 1, snap["requests_failed"])
	assert.EqualValues(t, 0, snap["requests_in_progress"])
	assert.EqualValues(t, 3, snap["annotations_total"])
	assert.EqualValues(t, 1, snap["annotations_ai"])
	assert.EqualValues(t, 2, snap["annotations_basic"])
	assert.EqualValues(t, 1, snap["annotations_rejected"])
}

func TestRateLimiter_PerClient(t *testing.T) {
	rl := NewRateLimiter(2, 1)
	defer rl.Stop()
	h := rl.Middleware(okHandler)

	call := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/annotate", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1:1111").Code)
	assert.Equal(t, http.StatusOK, call("10.0.0.1:2222").Code)
	limited := call("10.0.0.1:3333")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "1", limited.Header().Get("Retry-After"))
	assert.Contains(t, limited.Body.String(), "rate limit exceeded")

	assert.Equal(t, http.StatusOK, call("10.0.0.2:1111").Code)
}

func TestRateLimiter_EvictIdle(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	defer rl.Stop()
	rl.Allow("a")
	rl.evictIdle(time.Now().Add(time.Hour))

	rl.mu.RLock()
	defer rl.mu.RUnlock()
	assert.Empty(t, rl.buckets)
}

func TestTokenBucket_Refills(t *testing.T) {
	tb := NewTokenBucket(1, 1000)
	assert.True(t, tb.Allow())
	time.Sleep(5 * time.Millisecond)
	assert.True(t, tb.Allow())
}

type payload struct {
	Room     string `json:"room" validate:"required"`
	Identity string `json:"identity" validate:"required,max=5"`
}

func TestBindJSON(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
		msg   string
	}{
		{"ok", `{"room":"r","identity":"me"}`, "", ""},
		{"empty body", ``, "", "request body is required"},
		{"bad json", `{"room":`, "", "invalid JSON"},
		{"missing field", `{"identity":"me"}`, "room", "room is a required field"},
		{"too long", `{"room":"r","identity":"toolong"}`, "identity", "identity must be a maximum of 5 characters in length"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			got, err := BindJSON[payload](req)
			if tt.msg == "" {
				require.NoError(t, err)
				assert.Equal(t, "r", got.Room)
				return
			}
			var be *BindError
			require.True(t, errors.As(err, &be))
			assert.Equal(t, tt.field, be.Field)
			assert.Contains(t, be.Message, tt.msg)
		})
	}
}

func TestParseLimit(t *testing.T) {
	cases := map[string]int{"": 10, "abc": 10, "-1": 10, "0": 10, "5": 5, "100": 100, "1000": 100}
	for q, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/x?limit="+q, nil)
		assert.Equal(t, want, ParseLimit(req, 10, 100), "limit=%q", q)
	}
}

type stubChecker struct{ err error }

func (s stubChecker) Check(ctx context.Context) error { return s.err }

func TestReadinessHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	ReadinessHandler(map[string]HealthChecker{"db": stubChecker{}})(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	ReadinessHandler(map[string]HealthChecker{"db": stubChecker{errors.New("down")}})(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unhealthy", body.Status)
	assert.Equal(t, "down", body.Checks["db"].Message)
}

func TestLivenessHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	LivenessHandler("fanno-backend")(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "fanno-backend", body["service"])
	assert.NotEmpty(t, body["timestamp"])
}
