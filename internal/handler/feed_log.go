package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/fernwood/nestling/internal/auth"
	"github.com/fernwood/nestling/internal/model"
	"github.com/fernwood/nestling/internal/store"
)

type FeedHandler struct {
	store    *store.FeedStore
	babies   *store.BabyStore
	settings *store.SettingsStore
	notifier Notifier
	logger   *slog.Logger
}

func NewFeedHandler(s *store.FeedStore, babies *store.BabyStore, settings *store.SettingsStore, n Notifier, logger *slog.Logger) *FeedHandler {
	return &FeedHandler{store: s, babies: babies, settings: settings, notifier: n, logger: logger}
}

func (h *FeedHandler) notify(r *http.Request, action, id string) {
	if h.notifier != nil {
		h.notifier.Notify(auth.FamilyID(r.Context()), "feed_log", action, id)
	}
}

func (h *FeedHandler) Get(w http.ResponseWriter, r *http.Request) {
	familyID := auth.FamilyID(r.Context())

	if id := r.URL.Query().Get("id"); id != "" {
		log, err := h.store.GetByID(id, familyID)
		if err != nil {
			h.logger.Error("get feed log", "error", err)
			fail(w, http.StatusInternalServerError, "failed to get feed log")
			return
		}
		if log == nil {
			fail(w, http.StatusNotFound, "feed log not found")
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
		h.logger.Error("list feed logs", "error", err)
		fail(w, http.StatusInternalServerError, "failed to list feed logs")
		return
	}
	if logs == nil {
		logs = []model.FeedLog{}
	}
	respond(w, http.StatusOK, logs)
}

type feedRequest struct {
	BabyID       *string  `json:"babyId"`
	Time         *string  `json:"time"`
	Type         *string  `json:"type"`
	Amount       *float64 `json:"amount"`
	UnitAbbr     *string  `json:"unitAbbr"`
	Side         *string  `json:"side"`
	FeedDuration *int     `json:"feedDuration"`
	Food         *string  `json:"food"`
}

func validFeedType(s string) bool {
	switch model.FeedType(s) {
	case model.FeedTypeBreast, model.FeedTypeBottle, model.FeedTypeSolids:
		return true
	}
	return false
}

func validBreastSide(s string) bool {
	switch model.BreastSide(s) {
	case "", model.BreastSideLeft, model.BreastSideRight:
		return true
	}
	return false
}

// applyFeedDefaults fills the unit from family settings when the client
// omits it on an amount-bearing feed.
func applyFeedDefaults(f *store.FeedFields, st *model.Settings) {
	if f.Amount == nil || f.UnitAbbr != "" || st == nil {
		return
	}
	switch f.Type {
	case model.FeedTypeBottle:
		f.UnitAbbr = st.DefaultBottleUnit
	case model.FeedTypeSolids:
		f.UnitAbbr = st.DefaultSolidsUnit
	}
}

func (h *FeedHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req feedRequest
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
	if req.Type == nil || !validFeedType(*req.Type) {
		fail(w, http.StatusBadRequest, "type must be BREAST, BOTTLE, or SOLIDS")
		return
	}
	if req.Side != nil && !validBreastSide(*req.Side) {
		fail(w, http.StatusBadRequest, "side must be LEFT or RIGHT")
		return
	}

	familyID := auth.FamilyID(r.Context())
	baby, err := h.babies.GetByID(*req.BabyID, familyID)
	if err != nil {
		h.logger.Error("get baby", "error", err)
		fail(w, http.StatusInternalServerError, "failed to create feed log")
		return
	}
	if baby == nil {
		fail(w, http.StatusNotFound, "baby not found")
		return
	}

	loc := familyLocation(r, h.settings)
	fields := store.FeedFields{
		BabyID:       *req.BabyID,
		CaretakerID:  caretakerRef(r),
		Type:         model.FeedType(*req.Type),
		Amount:       req.Amount,
		FeedDuration: req.FeedDuration,
	}
	fields.Time, err = parseTimeParam(*req.Time, loc)
	if err != nil {
		fail(w, http.StatusBadRequest, "invalid time")
		return
	}
	if req.UnitAbbr != nil {
		fields.UnitAbbr = *req.UnitAbbr
	}
	if req.Side != nil {
		fields.Side = model.BreastSide(*req.Side)
	}
	if req.Food != nil {
		fields.Food = *req.Food
	}
	if st, err := h.settings.GetByFamily(familyID); err == nil {
		applyFeedDefaults(&fields, st)
	}

	log, err := h.store.Create(fields)
	if err != nil {
		h.logger.Error("create feed log", "error", err)
		fail(w, http.StatusInternalServerError, "failed to create feed log")
		return
	}

	h.notify(r, "created", log.ID)
	respond(w, http.StatusCreated, log)
}

func (h *FeedHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		fail(w, http.StatusBadRequest, "id is required")
		return
	}

	existing, err := h.store.GetByID(id, auth.FamilyID(r.Context()))
	if err != nil {
		h.logger.Error("get feed log", "error", err)
		fail(w, http.StatusInternalServerError, "failed to get feed log")
		return
	}
	if existing == nil {
		fail(w, http.StatusNotFound, "feed log not found")
		return
	}

	var req feedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	loc := familyLocation(r, h.settings)
	fields := store.FeedFields{
		BabyID:       existing.BabyID,
		CaretakerID:  existing.CaretakerID,
		Time:         existing.Time,
		Type:         existing.Type,
		Amount:       existing.Amount,
		UnitAbbr:     existing.UnitAbbr,
		Side:         existing.Side,
		FeedDuration: existing.FeedDuration,
		Food:         existing.Food,
	}
	if req.Time != nil {
		fields.Time, err = parseTimeParam(*req.Time, loc)
		if err != nil {
			fail(w, http.StatusBadRequest, "invalid time")
			return
		}
	}
	if req.Type != nil {
		if !validFeedType(*req.Type) {
			fail(w, http.StatusBadRequest, "type must be BREAST, BOTTLE, or SOLIDS")
			return
		}
		// A type change resets the type-specific fields; the request
		// supplies the ones that apply.
		if model.FeedType(*req.Type) != existing.Type {
			fields.Amount = nil
			fields.UnitAbbr = ""
			fields.Side = ""
			fields.FeedDuration = nil
			fields.Food = ""
		}
		fields.Type = model.FeedType(*req.Type)
	}
	if req.Amount != nil {
		fields.Amount = req.Amount
	}
	if req.UnitAbbr != nil {
		fields.UnitAbbr = *req.UnitAbbr
	}
	if req.Side != nil {
		if !validBreastSide(*req.Side) {
			fail(w, http.StatusBadRequest, "side must be LEFT or RIGHT")
			return
		}
		fields.Side = model.BreastSide(*req.Side)
	}
	if req.FeedDuration != nil {
		fields.FeedDuration = req.FeedDuration
	}
	if req.Food != nil {
		fields.Food = *req.Food
	}

	log, err := h.store.Update(id, fields)
	if err != nil {
		h.logger.Error("update feed log", "error", err)
		fail(w, http.StatusInternalServerError, "failed to update feed log")
		return
	}

	h.notify(r, "updated", id)
	respond(w, http.StatusOK, log)
}

func (h *FeedHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		fail(w, http.StatusBadRequest, "id is required")
		return
	}

	existing, err := h.store.GetByID(id, auth.FamilyID(r.Context()))
	if err != nil {
		h.logger.Error("get feed log", "error", err)
		fail(w, http.StatusInternalServerError, "failed to get feed log")
		return
	}
	if existing == nil {
		fail(w, http.StatusNotFound, "feed log not found")
		return
	}

	if err := h.store.SoftDelete(id); err != nil {
		h.logger.Error("delete feed log", "error", err)
		fail(w, http.StatusInternalServerError, "failed to delete feed log")
		return
	}

	h.notify(r, "deleted", id)
	respond(w, http.StatusOK, existing)
}
