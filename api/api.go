// Package api exposes the ingestion trigger endpoints over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	ingest "github.com/jovie-dev/ingest"
	"github.com/jovie-dev/ingest/job"
	"github.com/jovie-dev/ingest/store"
)

// Handler serves the trigger API.
type Handler struct {
	store        store.Store
	orchestrator *ingest.Orchestrator
	log          *slog.Logger
}

// New creates a Handler.
func New(s store.Store, o *ingest.Orchestrator, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{store: s, orchestrator: o, log: log}
}

// Router builds the chi router for the API.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/ingestions", h.createIngestion)
		r.Get("/profiles/{id}/ingestion", h.profileIngestion)
	})
	return r
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.log.Info("request",
			"method", r.Method, "path", r.URL.Path,
			"status", ww.Status(), "duration", time.Since(start))
	})
}

// createIngestionRequest is the body of POST /api/v1/ingestions.
type createIngestionRequest struct {
	ProfileID string `json:"profileId"`
	JobType   string `json:"jobType"`
	SourceURL string `json:"sourceUrl,omitempty"`
	TrackID   string `json:"trackId,omitempty"`
	Priority  int    `json:"priority,omitempty"`
}

type createIngestionResponse struct {
	JobID string `json:"jobId"`
}

func (h *Handler) createIngestion(w http.ResponseWriter, r *http.Request) {
	var req createIngestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	profileID, err := uuid.Parse(req.ProfileID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid profileId")
		return
	}

	jobType := job.Type(req.JobType)
	if !jobType.Valid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown jobType %q", req.JobType))
		return
	}

	var payload job.Payload
	if jobType == job.TypeLyrics {
		payload = job.LyricsPayload{TrackID: req.TrackID}
	} else {
		payload = job.NewPagePayload(jobType, req.SourceURL)
	}

	id, err := h.orchestrator.EnqueueIngestion(r.Context(), profileID, payload, req.Priority)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateJob):
			writeError(w, http.StatusConflict, "an equivalent ingestion is already in progress")
		case errors.Is(err, job.ErrInvalidPayload), errors.Is(err, job.ErrUnknownType):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.log.Error("enqueue failed", "error", err)
			writeError(w, http.StatusInternalServerError, "enqueue failed")
		}
		return
	}

	writeJSON(w, http.StatusAccepted, createIngestionResponse{JobID: id.String()})
}

// profileIngestionResponse is the body of GET /api/v1/profiles/{id}/ingestion.
type profileIngestionResponse struct {
	ProfileID string `json:"profileId"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

func (h *Handler) profileIngestion(w http.ResponseWriter, r *http.Request) {
	profileID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid profile id")
		return
	}

	profile, err := h.store.Profile().Get(r.Context(), profileID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "profile not found")
			return
		}
		h.log.Error("profile lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "lookup failed")
		return
	}

	writeJSON(w, http.StatusOK, profileIngestionResponse{
		ProfileID: profile.ID.String(),
		Status:    profile.IngestionStatus,
		Error:     profile.IngestionError,
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck // response already committed
}
