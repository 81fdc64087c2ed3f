package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/fernwood/nestling/internal/auth"
	"github.com/fernwood/nestling/internal/model"
	"github.com/fernwood/nestling/internal/store"
)

type DiaperHandler struct {
	store    *store.DiaperStore
	babies   *store.BabyStore
	settings *store.SettingsStore
	notifier Notifier
	logger   *slog.Logger
}

func NewDiaperHandler(s *store.DiaperStore, babies *store.BabyStore, settings *store.SettingsStore, n Notifier, logger *slog.Logger) *DiaperHandler {
	return &DiaperHandler{store: s, babies: babies, settings: settings, notifier: n, logger: logger}
}

func (h *DiaperHandler) notify(r *http.Request, action, id string) {
	if h.notifier != nil {
		h.notifier.Notify(auth.FamilyID(r.Context()), "diaper_log", action, id)
	}
}

func (h *DiaperHandler) Get(w http.ResponseWriter, r *http.Request) {
	familyID := auth.FamilyID(r.Context())

	if id := r.URL.Query().Get("id"); id != "" {
		log, err := h.store.GetByID(id, familyID)
		if err != nil {
			h.logger.Error("get diaper log", "error", err)
			fail(w, http.StatusInternalServerError, "failed to get diaper log")
			return
		}
		if log == nil {
			fail(w, http.StatusNotFound, "diaper log not found")
			return
		}
		respond(w, http.StatusOK, log)
		return
	}

	loc := familyLocation(r, h.settings)
	start, end, err := dateRange(r, loc)
	if err != nil {
		fail(w, http.StatusBadRequest, "invalid date range")
		return
	}

	logs, err := h.store.List(r.URL.Query().Get("babyId"), familyID, start, end)
	if err != nil {
		h.logger.Error("list diaper logs", "error", err)
		fail(w, http.StatusInternalServerError, "failed to list diaper logs")
		return
	}
	if logs == nil {
		logs = []model.DiaperLog{}
	}
	respond(w, http.StatusOK, logs)
}

type diaperRequest struct {
	BabyID    *string `json:"babyId"`
	Time      *string `json:"time"`
	Type      *string `json:"type"`
	Condition *string `json:"condition"`
	Color     *string `json:"color"`
}

func validDiaperType(s string) bool {
	switch model.DiaperType(s) {
	case model.DiaperTypeWet, model.DiaperTypeDirty, model.DiaperTypeBoth:
		return true
	}
	return false
}

func (h *DiaperHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req diaperRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.BabyID == nil || *req.BabyID == "" {
		fail(w, http.StatusBadRequest, "babyId is required")
		return
	}
	if req.Time == nil {
		fail(w, http.StatusBadRequest, "time is required")
		return
	}
	if req.Type == nil || !validDiaperType(*req.Type) {
		fail(w, http.StatusBadRequest, "type must be WET, DIRTY, or BOTH")
		return
	}

	familyID := auth.FamilyID(r.Context())
	baby, err := h.babies.GetByID(*req.BabyID, familyID)
	if err != nil {
		h.logger.Error("get baby", "error", err)
		fail(w, http.StatusInternalServerError, "failed to create diaper log")
		return
	}
	if baby == nil {
		fail(w, http.StatusNotFound, "baby not found")
		return
	}

	loc := familyLocation(r, h.settings)
	fields := store.DiaperFields{
		BabyID:      *req.BabyID,
		CaretakerID: caretakerRef(r),
		Type:        model.DiaperType(*req.Type),
	}
	fields.Time, err = parseTimeParam(*req.Time, loc)
	if err != nil {
		fail(w, http.StatusBadRequest, "invalid time")
		return
	}
	if req.Condition != nil {
		fields.Condition = *req.Condition
	}
	if req.Color != nil {
		fields.Color = *req.Color
	}

	log, err := h.store.Create(fields)
	if err != nil {
		h.logger.Error("create diaper log", "error", err)
		fail(w, http.StatusInternalServerError, "failed to create diaper log")
		return
	}

	h.notify(r, "created", log.ID)
	respond(w, http.StatusCreated, log)
}

func (h *DiaperHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		fail(w, http.StatusBadRequest, "id is required")
		return
	}

	existing, err := h.store.GetByID(id, auth.FamilyID(r.Context()))
	if err != nil {
		h.logger.Error("get diaper log", "error", err)
		fail(w, http.StatusInternalServerError, "failed to get diaper log")
		return
	}
	if existing == nil {
		fail(w, http.StatusNotFound, "diaper log not found")
		return
	}

	var req diaperRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	loc := familyLocation(r, h.settings)
	fields := store.DiaperFields{
		BabyID:      existing.BabyID,
		CaretakerID: existing.CaretakerID,
		Time:        existing.Time,
		Type:        existing.Type,
		Condition:   existing.Condition,
		Color:       existing.Color,
	}
	if req.Time != nil {
		fields.Time, err = parseTimeParam(*req.Time, loc)
		if err != nil {
			fail(w, http.StatusBadRequest, "invalid time")
			return
		}
	}
	if req.Type != nil {
		if !validDiaperType(*req.Type) {
			fail(w, http.StatusBadRequest, "type must be WET, DIRTY, or BOTH")
			return
		}
		// Stool details do not carry over to a wet-only change.
		if model.DiaperType(*req.Type) == model.DiaperTypeWet {
			fields.Condition = ""
			fields.Color = ""
		}
		fields.Type = model.DiaperType(*req.Type)
	}
	if req.Condition != nil {
		fields.Condition = *req.Condition
	}
	if req.Color != nil {
		fields.Color = *req.Color
	}

	log, err := h.store.Update(id, fields)
	if err != nil {
		h.logger.Error("update diaper log", "error", err)
		fail(w, http.StatusInternalServerError, "failed to update diaper log")
		return
	}

	h.notify(r, "updated", id)
	respond(w, http.StatusOK, log)
}

func (h *DiaperHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		fail(w, http.StatusBadRequest, "id is required")
		return
	}

	existing, err := h.store.GetByID(id, auth.FamilyID(r.Context()))
	if err != nil {
		h.logger.Error("get diaper log", "error", err)
		fail(w, http.StatusInternalServerError, "failed to get diaper log")
		return
	}
	if existing == nil {
		fail(w, http.StatusNotFound, "diaper log not found")
		return
	}

	if err := h.store.SoftDelete(id); err != nil {
		h.logger.Error("delete diaper log", "error", err)
		fail(w, http.StatusInternalServerError, "failed to delete diaper log")
		return
	}

	h.notify(r, "deleted", id)
	respond(w, http.StatusOK, existing)
}
