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

type BabyHandler struct {
	store    *store.BabyStore
	settings *store.SettingsStore
	notifier Notifier
	logger   *slog.Logger
}

func NewBabyHandler(s *store.BabyStore, settings *store.SettingsStore, n Notifier, logger *slog.Logger) *BabyHandler {
	return &BabyHandler{store: s, settings: settings, notifier: n, logger: logger}
}

func (h *BabyHandler) notify(r *http.Request, action, id string) {
	if h.notifier != nil {
		h.notifier.Notify(auth.FamilyID(r.Context()), "baby", action, id)
	}
}

// Get serves both single-record lookup (?id=) and the family listing.
func (h *BabyHandler) Get(w http.ResponseWriter, r *http.Request) {
	familyID := auth.FamilyID(r.Context())

	if id := r.URL.Query().Get("id"); id != "" {
		baby, err := h.store.GetByID(id, familyID)
		if err != nil {
			h.logger.Error("get baby", "error", err)
			fail(w, http.StatusInternalServerError, "failed to get baby")
			return
		}
		if baby == nil {
			fail(w, http.StatusNotFound, "baby not found")
			return
		}
		respond(w, http.StatusOK, baby)
		return
	}

	babies, err := h.store.List(familyID)
	if err != nil {
		h.logger.Error("list babies", "error", err)
		fail(w, http.StatusInternalServerError, "failed to list babies")
		return
	}
	if babies == nil {
		babies = []model.Baby{}
	}
	respond(w, http.StatusOK, babies)
}

type babyRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Gender    string `json:"gender"`
	BirthDate string `json:"birthDate"`
}

func (req *babyRequest) validate() string {
	req.FirstName = strings.TrimSpace(req.FirstName)
	if req.FirstName == "" {
		return "firstName is required"
	}
	if req.BirthDate == "" {
		return "birthDate is required"
	}
	switch model.Gender(req.Gender) {
	case "", model.GenderMale, model.GenderFemale:
		return ""
	}
	return "gender must be MALE or FEMALE"
}

func (h *BabyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req babyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		fail(w, http.StatusBadRequest, msg)
		return
	}

	loc := familyLocation(r, h.settings)
	birthDate, err := parseTimeParam(req.BirthDate, loc)
	if err != nil {
		fail(w, http.StatusBadRequest, "invalid birthDate")
		return
	}

	baby, err := h.store.Create(auth.FamilyID(r.Context()), req.FirstName, req.LastName, model.Gender(req.Gender), birthDate)
	if err != nil {
		h.logger.Error("create baby", "error", err)
		fail(w, http.StatusInternalServerError, "failed to create baby")
		return
	}

	h.notify(r, "created", baby.ID)
	respond(w, http.StatusCreated, baby)
}

func (h *BabyHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		fail(w, http.StatusBadRequest, "id is required")
		return
	}

	familyID := auth.FamilyID(r.Context())
	existing, err := h.store.GetByID(id, familyID)
	if err != nil {
		h.logger.Error("get baby", "error", err)
		fail(w, http.StatusInternalServerError, "failed to get baby")
		return
	}
	if existing == nil {
		fail(w, http.StatusNotFound, "baby not found")
		return
	}

	var req babyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		fail(w, http.StatusBadRequest, msg)
		return
	}

	loc := familyLocation(r, h.settings)
	birthDate, err := parseTimeParam(req.BirthDate, loc)
	if err != nil {
		fail(w, http.StatusBadRequest, "invalid birthDate")
		return
	}

	baby, err := h.store.Update(id, familyID, req.FirstName, req.LastName, model.Gender(req.Gender), birthDate)
	if err != nil {
		h.logger.Error("update baby", "error", err)
		fail(w, http.StatusInternalServerError, "failed to update baby")
		return
	}

	h.notify(r, "updated", id)
	respond(w, http.StatusOK, baby)
}

func (h *BabyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		fail(w, http.StatusBadRequest, "id is required")
		return
	}

	existing, err := h.store.GetByID(id, auth.FamilyID(r.Context()))
	if err != nil {
		h.logger.Error("get baby", "error", err)
		fail(w, http.StatusInternalServerError, "failed to get baby")
		return
	}
	if existing == nil {
		fail(w, http.StatusNotFound, "baby not found")
		return
	}

	if err := h.store.SoftDelete(id); err != nil {
		h.logger.Error("delete baby", "error", err)
		fail(w, http.StatusInternalServerError, "failed to delete baby")
		return
	}

	h.notify(r, "deleted", id)
	respond(w, http.StatusOK, existing)
}
