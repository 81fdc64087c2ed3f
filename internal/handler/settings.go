package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/fernwood/nestling/internal/auth"
	"github.com/fernwood/nestling/internal/store"
)

type SettingsHandler struct {
	store    *store.SettingsStore
	notifier Notifier
	logger   *slog.Logger
}

func NewSettingsHandler(s *store.SettingsStore, n Notifier, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{store: s, notifier: n, logger: logger}
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.GetByFamily(auth.FamilyID(r.Context()))
	if err != nil {
		h.logger.Error("get settings", "error", err)
		fail(w, http.StatusInternalServerError, "failed to get settings")
		return
	}
	respond(w, http.StatusOK, settings)
}

func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	familyID := auth.FamilyID(r.Context())

	existing, err := h.store.GetByFamily(familyID)
	if err != nil {
		h.logger.Error("get settings", "error", err)
		fail(w, http.StatusInternalServerError, "failed to update settings")
		return
	}

	var req struct {
		Timezone            *string `json:"timezone"`
		DefaultBottleUnit   *string `json:"defaultBottleUnit"`
		DefaultSolidsUnit   *string `json:"defaultSolidsUnit"`
		FeedGapMinutes      *int    `json:"feedGapMinutes"`
		OpenSleepAlertHours *int    `json:"openSleepAlertHours"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	timezone := existing.Timezone
	if req.Timezone != nil {
		if _, err := time.LoadLocation(*req.Timezone); err != nil {
			fail(w, http.StatusBadRequest, "invalid timezone")
			return
		}
		timezone = *req.Timezone
	}
	bottleUnit := existing.DefaultBottleUnit
	if req.DefaultBottleUnit != nil {
		bottleUnit = *req.DefaultBottleUnit
	}
	solidsUnit := existing.DefaultSolidsUnit
	if req.DefaultSolidsUnit != nil {
		solidsUnit = *req.DefaultSolidsUnit
	}
	feedGap := existing.FeedGapMinutes
	if req.FeedGapMinutes != nil {
		if *req.FeedGapMinutes < 0 {
			fail(w, http.StatusBadRequest, "feedGapMinutes must not be negative")
			return
		}
		feedGap = *req.FeedGapMinutes
	}
	openSleepAlert := existing.OpenSleepAlertHours
	if req.OpenSleepAlertHours != nil {
		if *req.OpenSleepAlertHours < 0 {
			fail(w, http.StatusBadRequest, "openSleepAlertHours must not be negative")
			return
		}
		openSleepAlert = *req.OpenSleepAlertHours
	}

	settings, err := h.store.Update(familyID, timezone, bottleUnit, solidsUnit, feedGap, openSleepAlert)
	if err != nil {
		h.logger.Error("update settings", "error", err)
		fail(w, http.StatusInternalServerError, "failed to update settings")
		return
	}

	if h.notifier != nil {
		h.notifier.Notify(familyID, "settings", "updated", settings.ID)
	}
	respond(w, http.StatusOK, settings)
}
