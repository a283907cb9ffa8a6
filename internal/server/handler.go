package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/forPelevin/storycut/internal/metrics"
	"github.com/forPelevin/storycut/internal/types"
)

const maxManifestBytes = 1 << 20

var ErrOutputOutsideRoot = errors.New("output must be inside the server output root")

// Handler exposes the job API.
type Handler struct {
	worker *Worker
	store  *Store
	base   types.CompositionConfig
	log    *zap.Logger
	// outputRoot resolves relative manifest paths and bounds every output.
	outputRoot string
}

// NewHandler serves jobs whose outputs resolve under outputRoot.
func NewHandler(worker *Worker, store *Store, base types.CompositionConfig, outputRoot string, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{worker: worker, store: store, base: base, log: log, outputRoot: filepath.Clean(outputRoot)}
}

// Router wires the API routes; met may be nil.
func Router(h *Handler, log *zap.Logger, met *metrics.Metrics) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(log))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if met != nil {
		r.Method(http.MethodGet, "/metrics", met.Handler())
	}
	r.Route("/jobs", func(r chi.Router) {
		r.Post("/", h.CreateJob)
		r.Get("/", h.ListJobs)
		r.Get("/{job_id}", h.GetJob)
	})
	return r
}

// CreateJob handles POST /jobs with a manifest body and answers 202 with the job.
func (h *Handler) CreateJob(w http.ResponseWriter, r *http.Request) {
	m, err := types.DecodeManifest(http.MaxBytesReader(w, r.Body, maxManifestBytes), h.base)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	m = m.Resolve(h.outputRoot)
	if err := m.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if !within(h.outputRoot, m.Output) {
		writeError(w, http.StatusBadRequest, ErrOutputOutsideRoot)
		return
	}
	if err := m.Config.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	j, err := h.worker.Enqueue(uuid.NewString(), m)
	if errors.Is(err, ErrQueueFull) {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	if err != nil {
		h.log.Error("enqueue job", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	h.log.Info("job accepted", zap.String("job_id", j.ID), zap.Int("shots", j.Shots))
	writeJSON(w, http.StatusAccepted, j)
}

// GetJob handles GET /jobs/{job_id}.
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	j, ok := h.store.Get(chi.URLParam(r, "job_id"))
	if !ok {
		writeError(w, http.StatusNotFound, ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, j)
}

// ListJobs handles GET /jobs.
func (h *Handler) ListJobs(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.store.List())
}

// within reports whether path lies strictly below root.
func within(root, path string) bool {
	rel, err := filepath.Rel(root, filepath.Clean(path))
	if err != nil || rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
