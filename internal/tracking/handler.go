package tracking

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ignite/open-tracker/internal/domain"
	"github.com/ignite/open-tracker/internal/notify"
)

// 1x1 transparent GIF
var pixelGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00,
	0x80, 0x00, 0x00, 0xff, 0xff, 0xff, 0x00, 0x00, 0x00, 0x21,
	0xf9, 0x04, 0x01, 0x00, 0x00, 0x00, 0x00, 0x2c, 0x00, 0x00,
	0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02, 0x44,
	0x01, 0x00, 0x3b,
}

// 1x1 transparent PNG, for clients that flag GIF beacons
var pixelPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00,
	0x00, 0x0d, 0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01,
	0x00, 0x00, 0x00, 0x01, 0x08, 0x06, 0x00, 0x00, 0x00, 0x1f,
	0x15, 0xc4, 0x89, 0x00, 0x00, 0x00, 0x0a, 0x49, 0x44, 0x41,
	0x54, 0x78, 0x9c, 0x63, 0x00, 0x00, 0x00, 0x02, 0x00, 0x01,
	0xe5, 0x27, 0xde, 0xfc, 0x00, 0x00, 0x00, 0x00, 0x49, 0x45,
	0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

// OpenRecorder is the slice of the event store the beacon needs.
type OpenRecorder interface {
	RecordOpen(ctx context.Context, id, ip, userAgent string) (domain.TrackingEvent, error)
}

// Handler serves the beacon endpoints. Every variant runs the same store
// call and differs only in the decoy payload it answers with. Store failures
// are logged and discarded: a beacon that errors (or serves a broken image)
// tips off the recipient, so these routes always answer 200.
type Handler struct {
	store OpenRecorder
	pub   *notify.Publisher
}

// NewHandler creates a beacon handler. pub may be nil.
func NewHandler(store OpenRecorder, pub *notify.Publisher) *Handler {
	return &Handler{store: store, pub: pub}
}

// Register mounts the beacon endpoints on r. They sit at the root of the
// host so the URLs embedded in mail stay short and unremarkable.
func (h *Handler) Register(r chi.Router) {
	r.Get("/track/{id}", h.HandleTrackGIF)
	r.Get("/pixel/{id}", h.HandleTrackPNG)
	r.Get("/analytics/{id}", h.HandleAnalytics)
}

// HandleTrackGIF records an open and serves the classic GIF pixel.
func (h *Handler) HandleTrackGIF(w http.ResponseWriter, r *http.Request) {
	h.recordOpen(r)
	serveDecoy(w, "image/gif", pixelGIF)
}

// HandleTrackPNG records an open and serves a PNG pixel.
func (h *Handler) HandleTrackPNG(w http.ResponseWriter, r *http.Request) {
	h.recordOpen(r)
	serveDecoy(w, "image/png", pixelPNG)
}

// HandleAnalytics records an open behind a response shaped like an ordinary
// site-analytics acknowledgment.
func (h *Handler) HandleAnalytics(w http.ResponseWriter, r *http.Request) {
	h.recordOpen(r)

	body, _ := json.Marshal(map[string]string{
		"status":    "success",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"message":   "Analytics data recorded successfully",
	})
	serveDecoy(w, "application/json", body)
}

// recordOpen performs the store mutation shared by all beacon variants.
// The result is discarded and errors never reach the response.
func (h *Handler) recordOpen(r *http.Request) {
	id := chi.URLParam(r, "id")
	ip := realIP(r)

	evt, err := h.store.RecordOpen(r.Context(), id, ip, r.UserAgent())
	if err != nil {
		log.Printf("ERROR recording open id=%s: %v", id, err)
		return
	}

	log.Printf("OPEN id=%s ip=%s", evt.ID, ip)

	if evt.OpenTime != nil {
		h.pub.Publish(r.Context(), notify.OpenEvent{
			ID:        evt.ID,
			Email:     evt.Email,
			IPAddress: evt.IPAddress,
			UserAgent: evt.UserAgent,
			OpenTime:  *evt.OpenTime,
		})
	}
}

func serveDecoy(w http.ResponseWriter, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
	w.Write(body)
}

func realIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx > 0 {
			return strings.TrimSpace(xff[:idx])
		}
		return xff
	}
	if xri := r.Header.Get("X-Real-Ip"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
