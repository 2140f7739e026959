package middleware

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"
)

// Metrics stores application counters
type Metrics struct {
	RequestsTotal       atomic.Uint64
	RequestsInProgress  atomic.Int64
	RequestsSuccess     atomic.Uint64
	RequestsFailed      atomic.Uint64
	AnnotationsTotal    atomic.Uint64
	AnnotationsAI       atomic.Uint64
	AnnotationsBasic    atomic.Uint64
	AnnotationsRejected atomic.Uint64
	StartTime           time.Time
}

func NewMetrics() *Metrics {
	return &Metrics{StartTime: time.Now()}
}

// ObserveAnnotation counts a finished annotation by the method that produced it
func (m *Metrics) ObserveAnnotation(method string) {
	m.AnnotationsTotal.Add(1)
	switch method {
	case "ai":
		m.AnnotationsAI.Add(1)
	case "basic":
		m.AnnotationsBasic.Add(1)
	}
}

func (m *Metrics) ObserveRejected() {
	m.AnnotationsRejected.Add(1)
}

// Snapshot returns current metrics
func (m *Metrics) Snapshot() map[string]any {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return map[string]any{
		"requests_total":       m.RequestsTotal.Load(),
		"requests_in_progress": m.RequestsInProgress.Load(),
		"requests_success":     m.RequestsSuccess.Load(),
		"requests_failed":      m.RequestsFailed.Load(),
		"annotations_total":    m.AnnotationsTotal.Load(),
		"annotations_ai":       m.AnnotationsAI.Load(),
		"annotations_basic":    m.AnnotationsBasic.Load(),
		"annotations_rejected": m.AnnotationsRejected.Load(),
		"uptime_seconds":       time.Since(m.StartTime).Seconds(),
		"memory": map[string]any{
			"alloc_bytes":       mem.Alloc,
			"total_alloc_bytes": mem.TotalAlloc,
			"sys_bytes":         mem.Sys,
			"num_gc":            mem.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	}
}

// Middleware tracks request counts and outcomes
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.RequestsTotal.Add(1)
		m.RequestsInProgress.Add(1)
		defer m.RequestsInProgress.Add(-1)

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		if wrapped.statusCode >= 200 && wrapped.statusCode < 400 {
			m.RequestsSuccess.Add(1)
		} else {
			m.RequestsFailed.Add(1)
		}
	})
}

// Handler returns metrics as JSON
func (m *Metrics) Handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(m.Snapshot())
}
