package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/pcrawford/timeclock/internal/auth"
	"github.com/pcrawford/timeclock/internal/metrics"
	"github.com/pcrawford/timeclock/internal/model"
	"github.com/pcrawford/timeclock/internal/store"
	"github.com/pcrawford/timeclock/internal/websocket"
	"github.com/pcrawford/timeclock/internal/week"
)

type WeekHandler struct {
	recordStore *store.WeeklyRecordStore
	hub         *websocket.Hub
	logger      *slog.Logger
}

func NewWeekHandler(rs *store.WeeklyRecordStore, hub *websocket.Hub, logger *slog.Logger) *WeekHandler {
	return &WeekHandler{
		recordStore: rs,
		hub:         hub,
		logger:      logger,
	}
}

// Current returns the authenticated user's record for the week
// containing today, creating it with the default payload on first
// access.
func (h *WeekHandler) Current(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return
	}

	rec, created, err := h.recordStore.GetOrCreate(ac.UserID, week.Monday(time.Now()))
	if err != nil {
		h.logger.Error("get or create week", "error", err, "user_id", ac.UserID)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load current week"})
		return
	}
	if created {
		metrics.RecordWeekCreated()
		h.logger.Info("created weekly record", "user_id", ac.UserID, "week_start", rec.WeekStart.String())
	}

	writeJSON(w, http.StatusOK, rec)
}

type saveWeekRequest struct {
	WeekData json.RawMessage `json:"week_data"`
}

// Save overwrites the current week's payload wholesale. The payload must
// have the canonical 7-day shape; partial or reordered weeks are
// rejected. Concurrent saves are last-writer-wins.
func (h *WeekHandler) Save(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return
	}

	var req saveWeekRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if len(req.WeekData) == 0 || string(req.WeekData) == "null" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "week_data is required"})
		return
	}

	var payload week.Payload
	if err := json.Unmarshal(req.WeekData, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "week_data must be a list of day entries"})
		return
	}
	if err := payload.Validate(); err != nil {
		var shapeErr *week.ShapeError
		msg := "invalid week_data"
		if errors.As(err, &shapeErr) {
			msg = shapeErr.Reason
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	rec, created, err := h.recordStore.GetOrCreate(ac.UserID, week.Monday(time.Now()))
	if err != nil {
		h.logger.Error("get or create week", "error", err, "user_id", ac.UserID)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load current week"})
		return
	}
	if created {
		metrics.RecordWeekCreated()
	}

	updated, err := h.recordStore.ReplacePayload(rec.ID, payload)
	if err != nil {
		h.logger.Error("replace payload", "error", err, "record_id", rec.ID)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save week"})
		return
	}
	metrics.RecordWeekSaved()

	h.hub.NotifyUser(ac.UserID, websocket.WeekSaved(updated.ID, updated.WeekStart.String()))

	writeJSON(w, http.StatusOK, updated)
}

// History returns every week the user has recorded, newest first.
func (h *WeekHandler) History(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return
	}

	records, err := h.recordStore.ListForUser(ac.UserID)
	if err != nil {
		h.logger.Error("list weeks", "error", err, "user_id", ac.UserID)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list weeks"})
		return
	}
	if records == nil {
		records = []model.WeeklyRecord{}
	}

	writeJSON(w, http.StatusOK, records)
}
