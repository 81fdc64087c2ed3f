package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/fernwood/nestling/internal/auth"
	"github.com/fernwood/nestling/internal/model"
	"github.com/fernwood/nestling/internal/store"
)

type BathHandler struct {
	store    *store.BathStore
	babies   *store.BabyStore
	settings *store.SettingsStore
	notifier Notifier
	logger   *slog.Logger
}

func NewBathHandler(s *store.BathStore, babies *store.BabyStore, settings *store.SettingsStore, n Notifier, logger *slog.Logger) *BathHandler {
	return &BathHandler{store: s, babies: babies, settings: settings, notifier: n, logger: logger}
}

func (h *BathHandler) notify(r *http.Request, action, id string) {
	if h.notifier != nil {
		h.notifier.Notify(auth.FamilyID(r.Context()), "bath_log", action, id)
	}
}

func (h *BathHandler) Get(w http.ResponseWriter, r *http.Request) {
	familyID := auth.FamilyID(r.Context())

	if id := r.URL.Query().Get("id"); id != "" {
		log, err := h.store.GetByID(id, familyID)
		if err != nil {
			h.logger.Error("get bath log", "error", err)
			fail(w, http.StatusInternalServerError, "failed to get bath log")
			return
		}
		if log == nil {
			fail(w, http.StatusNotFound, "bath log not found")
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
		h.logger.Error("list bath logs", "error", err)
		fail(w, http.StatusInternalServerError, "failed to list bath logs")
		return
	}
	if logs == nil {
		logs = []model.BathLog{}
	}
	respond(w, http.StatusOK, logs)
}

type bathRequest struct {
	BabyID   *string `json:"babyId"`
	Time     *string `json:"time"`
	SoapUsed *bool   `json:"soapUsed"`
	Notes    *string `json:"notes"`
}

func (h *BathHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req bathRequest
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

	familyID := auth.FamilyID(r.Context())
	baby, err := h.babies.GetByID(*req.BabyID, familyID)
	if err != nil {
		h.logger.Error("get baby", "error", err)
		fail(w, http.StatusInternalServerError, "failed to create bath log")
		return
	}
	if baby == nil {
		fail(w, http.StatusNotFound, "baby not found")
		return
	}

	loc := familyLocation(r, h.settings)
	fields := store.BathFields{
		BabyID:      *req.BabyID,
		CaretakerID: caretakerRef(r),
	}
	fields.Time, err = parseTimeParam(*req.Time, loc)
	if err != nil {
		fail(w, http.StatusBadRequest, "invalid time")
		return
	}
	if req.SoapUsed != nil {
		fields.SoapUsed = *req.SoapUsed
	}
	if req.Notes != nil {
		fields.Notes = *req.Notes
	}

	log, err := h.store.Create(fields)
	if err != nil {
		h.logger.Error("create bath log", "error", err)
		fail(w, http.StatusInternalServerError, "failed to create bath log")
		return
	}

	h.notify(r, "created", log.ID)
	respond(w, http.StatusCreated, log)
}

func (h *BathHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		fail(w, http.StatusBadRequest, "id is required")
		return
	}

	existing, err := h.store.GetByID(id, auth.FamilyID(r.Context()))
	if err != nil {
		h.logger.Error("get bath log", "error", err)
		fail(w, http.StatusInternalServerError, "failed to get bath log")
		return
	}
	if existing == nil {
		fail(w, http.StatusNotFound, "bath log not found")
		return
	}

	var req bathRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	loc := familyLocation(r, h.settings)
	fields := store.BathFields{
		BabyID:      existing.BabyID,
		CaretakerID: existing.CaretakerID,
		Time:        existing.Time,
		SoapUsed:    existing.SoapUsed,
		Notes:       existing.Notes,
	}
	if req.Time != nil {
		fields.Time, err = parseTimeParam(*req.Time, loc)
		if err != nil {
			fail(w, http.StatusBadRequest, "invalid time")
			return
		}
	}
	if req.SoapUsed != nil {
		fields.SoapUsed = *req.SoapUsed
	}
	if req.Notes != nil {
		fields.Notes = *req.Notes
	}

	log, err := h.store.Update(id, fields)
	if err != nil {
		h.logger.Error("update bath log", "error", err)
		fail(w, http.StatusInternalServerError, "failed to update bath log")
		return
	}

	h.notify(r, "updated", id)
	respond(w, http.StatusOK, log)
}

func (h *BathHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		fail(w, http.StatusBadRequest, "id is required")
		return
	}

	existing, err := h.store.GetByID(id, auth.FamilyID(r.Context()))
	if err != nil {
		h.logger.Error("get bath log", "error", err)
		fail(w, http.StatusInternalServerError, "failed to get bath log")
		return
	}
	if existing == nil {
		fail(w, http.StatusNotFound, "bath log not found")
		return
	}

	if err := h.store.SoftDelete(id); err != nil {
		h.logger.Error("delete bath log", "error", err)
		fail(w, http.StatusInternalServerError, "failed to delete bath log")
		return
	}

	h.notify(r, "deleted", id)
	respond(w, http.StatusOK, existing)
}
