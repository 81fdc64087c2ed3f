package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/fernwood/nestling/internal/auth"
	"github.com/fernwood/nestling/internal/model"
	"github.com/fernwood/nestling/internal/store"
	"github.com/fernwood/nestling/internal/timeutil"
)

type SleepHandler struct {
	store    *store.SleepStore
	babies   *store.BabyStore
	settings *store.SettingsStore
	notifier Notifier
	logger   *slog.Logger
}

func NewSleepHandler(s *store.SleepStore, babies *store.BabyStore, settings *store.SettingsStore, n Notifier, logger *slog.Logger) *SleepHandler {
	return &SleepHandler{store: s, babies: babies, settings: settings, notifier: n, logger: logger}
}

func (h *SleepHandler) notify(r *http.Request, action, id string) {
	if h.notifier != nil {
		h.notifier.Notify(auth.FamilyID(r.Context()), "sleep_log", action, id)
	}
}

func (h *SleepHandler) Get(w http.ResponseWriter, r *http.Request) {
	familyID := auth.FamilyID(r.Context())

	if id := r.URL.Query().Get("id"); id != "" {
		log, err := h.store.GetByID(id, familyID)
		if err != nil {
			h.logger.Error("get sleep log", "error", err)
			fail(w, http.StatusInternalServerError, "failed to get sleep log")
			return
		}
		if log == nil {
			fail(w, http.StatusNotFound, "sleep log not found")
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
		h.logger.Error("list sleep logs", "error", err)
		fail(w, http.StatusInternalServerError, "failed to list sleep logs")
		return
	}
	if logs == nil {
		logs = []model.SleepLog{}
	}
	respond(w, http.StatusOK, logs)
}

type sleepRequest struct {
	BabyID    *string `json:"babyId"`
	StartTime *string `json:"startTime"`
	EndTime   *string `json:"endTime"`
	Type      *string `json:"type"`
	Location  *string `json:"location"`
	Quality   *string `json:"quality"`
}

func validSleepType(s string) bool {
	switch model.SleepType(s) {
	case model.SleepTypeNap, model.SleepTypeNight:
		return true
	}
	return false
}

func validSleepQuality(s string) bool {
	switch model.SleepQuality(s) {
	case "", model.SleepQualityPoor, model.SleepQualityFair, model.SleepQualityGood, model.SleepQualityExcellent:
		return true
	}
	return false
}

func (h *SleepHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req sleepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.BabyID == nil || *req.BabyID == "" {
		fail(w, http.StatusBadRequest, "babyId is required")
		return
	}
	if req.StartTime == nil {
		fail(w, http.StatusBadRequest, "startTime is required")
		return
	}
	if req.Type == nil || !validSleepType(*req.Type) {
		fail(w, http.StatusBadRequest, "type must be NAP or NIGHT_SLEEP")
		return
	}
	if req.Quality != nil && !validSleepQuality(*req.Quality) {
		fail(w, http.StatusBadRequest, "invalid quality")
		return
	}

	familyID := auth.FamilyID(r.Context())
	baby, err := h.babies.GetByID(*req.BabyID, familyID)
	if err != nil {
		h.logger.Error("get baby", "error", err)
		fail(w, http.StatusInternalServerError, "failed to create sleep log")
		return
	}
	if baby == nil {
		fail(w, http.StatusNotFound, "baby not found")
		return
	}

	// A create without an endTime opens a session; refuse a second one.
	if req.EndTime == nil || *req.EndTime == "" {
		open, err := h.store.OpenSession(*req.BabyID)
		if err != nil {
			h.logger.Error("open sleep session", "error", err)
			fail(w, http.StatusInternalServerError, "failed to create sleep log")
			return
		}
		if open != nil {
			fail(w, http.StatusConflict, "baby already has an open sleep session")
			return
		}
	}

	loc := familyLocation(r, h.settings)
	fields := store.SleepFields{
		BabyID:      *req.BabyID,
		CaretakerID: caretakerRef(r),
		Type:        model.SleepType(*req.Type),
	}
	fields.StartTime, err = parseTimeParam(*req.StartTime, loc)
	if err != nil {
		fail(w, http.StatusBadRequest, "invalid startTime")
		return
	}
	if req.Location != nil {
		fields.Location = *req.Location
	}
	if req.Quality != nil {
		fields.Quality = model.SleepQuality(*req.Quality)
	}
	if req.EndTime != nil && *req.EndTime != "" {
		endTime, err := parseTimeParam(*req.EndTime, loc)
		if err != nil {
			fail(w, http.StatusBadRequest, "invalid endTime")
			return
		}
		duration, err := timeutil.DurationMinutes(fields.StartTime, endTime)
		if err != nil {
			fail(w, http.StatusBadRequest, "endTime must not precede startTime")
			return
		}
		fields.EndTime = &endTime
		fields.Duration = &duration
	}

	log, err := h.store.Create(fields)
	if err != nil {
		h.logger.Error("create sleep log", "error", err)
		fail(w, http.StatusInternalServerError, "failed to create sleep log")
		return
	}

	h.notify(r, "created", log.ID)
	respond(w, http.StatusCreated, log)
}

// Update merges the provided fields into the existing record. Setting an
// endTime on an open session closes it and computes the duration; concurrent
// closes are last-write-wins.
func (h *SleepHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		fail(w, http.StatusBadRequest, "id is required")
		return
	}

	existing, err := h.store.GetByID(id, auth.FamilyID(r.Context()))
	if err != nil {
		h.logger.Error("get sleep log", "error", err)
		fail(w, http.StatusInternalServerError, "failed to get sleep log")
		return
	}
	if existing == nil {
		fail(w, http.StatusNotFound, "sleep log not found")
		return
	}

	var req sleepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	loc := familyLocation(r, h.settings)
	fields := store.SleepFields{
		BabyID:    existing.BabyID,
		StartTime: existing.StartTime,
		EndTime:   existing.EndTime,
		Duration:  existing.Duration,
		Type:      existing.Type,
		Location:  existing.Location,
		Quality:   existing.Quality,
	}
	if req.StartTime != nil {
		fields.StartTime, err = parseTimeParam(*req.StartTime, loc)
		if err != nil {
			fail(w, http.StatusBadRequest, "invalid startTime")
			return
		}
	}
	if req.Type != nil {
		if !validSleepType(*req.Type) {
			fail(w, http.StatusBadRequest, "type must be NAP or NIGHT_SLEEP")
			return
		}
		fields.Type = model.SleepType(*req.Type)
	}
	if req.Location != nil {
		fields.Location = *req.Location
	}
	if req.Quality != nil {
		if !validSleepQuality(*req.Quality) {
			fail(w, http.StatusBadRequest, "invalid quality")
			return
		}
		fields.Quality = model.SleepQuality(*req.Quality)
	}
	if req.EndTime != nil && *req.EndTime != "" {
		endTime, err := parseTimeParam(*req.EndTime, loc)
		if err != nil {
			fail(w, http.StatusBadRequest, "invalid endTime")
			return
		}
		fields.EndTime = &endTime
	}
	if fields.EndTime != nil {
		duration, err := timeutil.DurationMinutes(fields.StartTime, *fields.EndTime)
		if err != nil {
			fail(w, http.StatusBadRequest, "endTime must not precede startTime")
			return
		}
		fields.Duration = &duration
	}

	log, err := h.store.Update(id, fields)
	if err != nil {
		h.logger.Error("update sleep log", "error", err)
		fail(w, http.StatusInternalServerError, "failed to update sleep log")
		return
	}

	h.notify(r, "updated", id)
	respond(w, http.StatusOK, log)
}

func (h *SleepHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		fail(w, http.StatusBadRequest, "id is required")
		return
	}

	existing, err := h.store.GetByID(id, auth.FamilyID(r.Context()))
	if err != nil {
		h.logger.Error("get sleep log", "error", err)
		fail(w, http.StatusInternalServerError, "failed to get sleep log")
		return
	}
	if existing == nil {
		fail(w, http.StatusNotFound, "sleep log not found")
		return
	}

	if err := h.store.SoftDelete(id); err != nil {
		h.logger.Error("delete sleep log", "error", err)
		fail(w, http.StatusInternalServerError, "failed to delete sleep log")
		return
	}

	h.notify(r, "deleted", id)
	respond(w, http.StatusOK, existing)
}

// Open reports the baby's currently open sleep session, if any.
func (h *SleepHandler) Open(w http.ResponseWriter, r *http.Request) {
	babyID := r.URL.Query().Get("babyId")
	if babyID == "" {
		fail(w, http.StatusBadRequest, "babyId is required")
		return
	}

	baby, err := h.babies.GetByID(babyID, auth.FamilyID(r.Context()))
	if err != nil {
		h.logger.Error("get baby", "error", err)
		fail(w, http.StatusInternalServerError, "failed to get open session")
		return
	}
	if baby == nil {
		fail(w, http.StatusNotFound, "baby not found")
		return
	}

	open, err := h.store.OpenSession(babyID)
	if err != nil {
		h.logger.Error("open sleep session", "error", err)
		fail(w, http.StatusInternalServerError, "failed to get open session")
		return
	}
	respond(w, http.StatusOK, open)
}
