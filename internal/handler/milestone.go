package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/fernwood/nestling/internal/auth"
	"github.com/fernwood/nestling/internal/model"
	"github.com/fernwood/nestling/internal/store"
)

type MilestoneHandler struct {
	store    *store.MilestoneStore
	babies   *store.BabyStore
	settings *store.SettingsStore
	notifier Notifier
	logger   *slog.Logger
}

func NewMilestoneHandler(s *store.MilestoneStore, babies *store.BabyStore, settings *store.SettingsStore, n Notifier, logger *slog.Logger) *MilestoneHandler {
	return &MilestoneHandler{store: s, babies: babies, settings: settings, notifier: n, logger: logger}
}

func (h *MilestoneHandler) notify(r *http.Request, action, id string) {
	if h.notifier != nil {
		h.notifier.Notify(auth.FamilyID(r.Context()), "milestone", action, id)
	}
}

func (h *MilestoneHandler) Get(w http.ResponseWriter, r *http.Request) {
	familyID := auth.FamilyID(r.Context())

	if id := r.URL.Query().Get("id"); id != "" {
		m, err := h.store.GetByID(id, familyID)
		if err != nil {
			h.logger.Error("get milestone", "error", err)
			fail(w, http.StatusInternalServerError, "failed to get milestone")
			return
		}
		if m == nil {
			fail(w, http.StatusNotFound, "milestone not found")
			return
		}
		respond(w, http.StatusOK, m)
		return
	}

	loc := familyLocation(r, h.settings)
	start, end, err := dateRange(r, loc)
	if err != nil {
		fail(w, http.StatusBadRequest, "invalid date range")
		return
	}

	milestones, err := h.store.List(r.URL.Query().Get("babyId"), familyID, start, end)
	if err != nil {
		h.logger.Error("list milestones", "error", err)
		fail(w, http.StatusInternalServerError, "failed to list milestones")
		return
	}
	if milestones == nil {
		milestones = []model.Milestone{}
	}
	respond(w, http.StatusOK, milestones)
}

type milestoneRequest struct {
	BabyID      *string `json:"babyId"`
	Date        *string `json:"date"`
	Title       *string `json:"title"`
	Category    *string `json:"category"`
	Description *string `json:"description"`
}

func validMilestoneCategory(s string) bool {
	switch model.MilestoneCategory(s) {
	case model.MilestoneMotor, model.MilestoneCognitive, model.MilestoneSocial, model.MilestoneLanguage, model.MilestoneCustom:
		return true
	}
	return false
}

func (h *MilestoneHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req milestoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.BabyID == nil || *req.BabyID == "" {
		fail(w, http.StatusBadRequest, "babyId is required")
		return
	}
	if req.Date == nil {
		fail(w, http.StatusBadRequest, "date is required")
		return
	}
	if req.Title == nil || strings.TrimSpace(*req.Title) == "" {
		fail(w, http.StatusBadRequest, "title is required")
		return
	}
	category := string(model.MilestoneCustom)
	if req.Category != nil {
		if !validMilestoneCategory(*req.Category) {
			fail(w, http.StatusBadRequest, "invalid category")
			return
		}
		category = *req.Category
	}

	familyID := auth.FamilyID(r.Context())
	baby, err := h.babies.GetByID(*req.BabyID, familyID)
	if err != nil {
		h.logger.Error("get baby", "error", err)
		fail(w, http.StatusInternalServerError, "failed to create milestone")
		return
	}
	if baby == nil {
		fail(w, http.StatusNotFound, "baby not found")
		return
	}

	loc := familyLocation(r, h.settings)
	fields := store.MilestoneFields{
		BabyID:      *req.BabyID,
		CaretakerID: caretakerRef(r),
		Title:       strings.TrimSpace(*req.Title),
		Category:    model.MilestoneCategory(category),
	}
	fields.Date, err = parseTimeParam(*req.Date, loc)
	if err != nil {
		fail(w, http.StatusBadRequest, "invalid date")
		return
	}
	if req.Description != nil {
		fields.Description = *req.Description
	}

	m, err := h.store.Create(fields)
	if err != nil {
		h.logger.Error("create milestone", "error", err)
		fail(w, http.StatusInternalServerError, "failed to create milestone")
		return
	}

	h.notify(r, "created", m.ID)
	respond(w, http.StatusCreated, m)
}

func (h *MilestoneHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		fail(w, http.StatusBadRequest, "id is required")
		return
	}

	existing, err := h.store.GetByID(id, auth.FamilyID(r.Context()))
	if err != nil {
		h.logger.Error("get milestone", "error", err)
		fail(w, http.StatusInternalServerError, "failed to get milestone")
		return
	}
	if existing == nil {
		fail(w, http.StatusNotFound, "milestone not found")
		return
	}

	var req milestoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	loc := familyLocation(r, h.settings)
	fields := store.MilestoneFields{
		BabyID:      existing.BabyID,
		CaretakerID: existing.CaretakerID,
		Date:        existing.Date,
		Title:       existing.Title,
		Category:    existing.Category,
		Description: existing.Description,
	}
	if req.Date != nil {
		fields.Date, err = parseTimeParam(*req.Date, loc)
		if err != nil {
			fail(w, http.StatusBadRequest, "invalid date")
			return
		}
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			fail(w, http.StatusBadRequest, "title is required")
			return
		}
		fields.Title = title
	}
	if req.Category != nil {
		if !validMilestoneCategory(*req.Category) {
			fail(w, http.StatusBadRequest, "invalid category")
			return
		}
		fields.Category = model.MilestoneCategory(*req.Category)
	}
	if req.Description != nil {
		fields.Description = *req.Description
	}

	m, err := h.store.Update(id, fields)
	if err != nil {
		h.logger.Error("update milestone", "error", err)
		fail(w, http.StatusInternalServerError, "failed to update milestone")
		return
	}

	h.notify(r, "updated", id)
	respond(w, http.StatusOK, m)
}

func (h *MilestoneHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		fail(w, http.StatusBadRequest, "id is required")
		return
	}

	existing, err := h.store.GetByID(id, auth.FamilyID(r.Context()))
	if err != nil {
		h.logger.Error("get milestone", "error", err)
		fail(w, http.StatusInternalServerError, "failed to get milestone")
		return
	}
	if existing == nil {
		fail(w, http.StatusNotFound, "milestone not found")
		return
	}

	if err := h.store.SoftDelete(id); err != nil {
		h.logger.Error("delete milestone", "error", err)
		fail(w, http.StatusInternalServerError, "failed to delete milestone")
		return
	}

	h.notify(r, "deleted", id)
	respond(w, http.StatusOK, existing)
}
