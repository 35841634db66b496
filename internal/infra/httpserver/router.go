package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/bryanwahyu/policywatch/internal/application/monitor"
	domai "github.com/bryanwahyu/policywatch/internal/domain/ai"
	"github.com/bryanwahyu/policywatch/internal/domain/changes"
	"github.com/bryanwahyu/policywatch/internal/domain/documents"
	"github.com/bryanwahyu/policywatch/internal/middleware"
)

type Router struct {
	monitorSvc *monitor.Service
	changes    changes.Repository
	documents  documents.Repository
}

// NewRouter wires the operator-facing API. Checkers feed /health.
func NewRouter(monitorSvc *monitor.Service, changesRepo changes.Repository, documentsRepo documents.Repository, checkers map[string]middleware.HealthChecker) http.Handler {
	r := &Router{monitorSvc: monitorSvc, changes: changesRepo, documents: documentsRepo}
	mux := chi.NewRouter()

	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)

	mux.Get("/health", middleware.HealthHandler(checkers))
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/v1", func(rt chi.Router) {
		rt.Post("/monitor/run", r.wrap(r.handleRunChecks))
		rt.Get("/documents", r.wrap(r.handleListDocuments))
		rt.Get("/changes/latest", r.wrap(r.handleLatestChanges))
		rt.Get("/changes/{id}", r.wrap(r.handleGetChange))
		rt.Post("/changes/{id}/reanalyze", r.wrap(r.handleReanalyze))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// wrap maps domain sentinels onto HTTP statuses. Internal error text is
// confined to the message field, never a stack or SQL detail.
func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		switch {
		case errors.Is(err, monitor.ErrChangeNotFound), errors.Is(err, sql.ErrNoRows):
			writeError(w, http.StatusNotFound, err)
		case errors.Is(err, monitor.ErrSnapshotMissing),
			errors.Is(err, monitor.ErrSnapshotEmpty),
			errors.Is(err, monitor.ErrEmptyDiff):
			writeError(w, http.StatusUnprocessableEntity, err)
		case errors.Is(err, domai.ErrQuotaExceeded):
			writeError(w, http.StatusTooManyRequests, err)
		default:
			writeError(w, http.StatusInternalServerError, err)
		}
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, v any) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(v)
}

// POST /v1/monitor/run
// Runs the full batch synchronously under the batch budget and returns
// a per-document outcome list.
func (r *Router) handleRunChecks(w http.ResponseWriter, req *http.Request) error {
	started := time.Now()

	budget := r.monitorSvc.Policy.BatchBudget
	if budget <= 0 {
		budget = monitor.DefaultPolicy().BatchBudget
	}
	ctx, cancel := context.WithTimeout(req.Context(), budget)
	defer cancel()

	outcomes := r.monitorSvc.RunAll(ctx)

	middleware.AddChecks(len(outcomes))
	counts := map[monitor.Status]int{}
	for _, o := range outcomes {
		counts[o.Status]++
		if o.Status == monitor.StatusChanged {
			middleware.IncrementChangesDetected()
		}
	}
	return writeJSON(w, map[string]any{
		"started_at":  started,
		"duration_ms": time.Since(started).Milliseconds(),
		"counts":      counts,
		"outcomes":    outcomes,
	})
}

// POST /v1/changes/{id}/reanalyze
func (r *Router) handleReanalyze(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	ch, err := r.monitorSvc.Reanalyze(req.Context(), changes.ChangeID(id))
	if err != nil {
		return err
	}
	return writeJSON(w, ch)
}

// GET /v1/changes/latest?limit=20
func (r *Router) handleLatestChanges(w http.ResponseWriter, req *http.Request) error {
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	list, err := r.changes.Latest(req.Context(), limit)
	if err != nil {
		return err
	}
	return writeJSON(w, list)
}

// GET /v1/changes/{id}
func (r *Router) handleGetChange(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	ch, err := r.changes.Get(req.Context(), changes.ChangeID(id))
	if err != nil {
		return err
	}
	if ch == nil {
		return monitor.ErrChangeNotFound
	}
	return writeJSON(w, ch)
}

// GET /v1/documents
func (r *Router) handleListDocuments(w http.ResponseWriter, req *http.Request) error {
	docs, err := r.documents.ListActive(req.Context())
	if err != nil {
		return err
	}
	return writeJSON(w, docs)
}
