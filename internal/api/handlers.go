package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/ignite/open-tracker/internal/store"
)

// Handlers contains the query-API HTTP handlers. Unlike the beacon routes,
// this surface reports store failures to the caller: NotFound becomes 404
// and anything unexpected becomes 500, both with a structured error body.
type Handlers struct {
	store store.Store
}

// NewHandlers creates a Handlers instance backed by the given store.
func NewHandlers(st store.Store) *Handlers {
	return &Handlers{store: st}
}

// HandleGetEvent returns the tracking record for one id.
//
//	GET /api/tracking/{id}
func (h *Handlers) HandleGetEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	evt, err := h.store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Tracking ID not found")
		return
	}
	if err != nil {
		log.Printf("ERROR get tracking id=%s: %v", id, err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, evt)
}

// HandleListEvents returns every tracking record, most recently sent first.
//
//	GET /api/tracking
func (h *Handlers) HandleListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.store.GetAll(r.Context())
	if err != nil {
		log.Printf("ERROR list tracking events: %v", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, events)
}

type registerRequest struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// HandleRegister pre-registers a send so the open report carries the real
// recipient instead of the unknown placeholder. Mints an id when the sender
// does not supply one.
//
//	POST /api/tracking
func (h *Handlers) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" {
		respondError(w, http.StatusBadRequest, "email is required")
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	evt, err := h.store.Register(r.Context(), req.ID, req.Email)
	if err != nil {
		log.Printf("ERROR register tracking id=%s: %v", req.ID, err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	log.Printf("REGISTER id=%s email=%s", evt.ID, evt.Email)
	respondJSON(w, http.StatusCreated, evt)
}

// HandleHealth is the liveness probe used by the hosting platform.
//
//	GET /health
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Response helpers

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
