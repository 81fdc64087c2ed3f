package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/fernwood/nestling/internal/auth"
	"github.com/fernwood/nestling/internal/stats"
	"github.com/fernwood/nestling/internal/store"
	"github.com/fernwood/nestling/internal/timeutil"
)

type StatsHandler struct {
	source   *ActivitySource
	babies   *store.BabyStore
	settings *store.SettingsStore
	logger   *slog.Logger
}

func NewStatsHandler(source *ActivitySource, babies *store.BabyStore, settings *store.SettingsStore, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{source: source, babies: babies, settings: settings, logger: logger}
}

// Get computes the daily statistics for one baby and one local calendar day.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	babyID := r.URL.Query().Get("babyId")
	if babyID == "" {
		fail(w, http.StatusBadRequest, "babyId is required")
		return
	}

	familyID := auth.FamilyID(r.Context())
	baby, err := h.babies.GetByID(babyID, familyID)
	if err != nil {
		h.logger.Error("get baby", "error", err)
		fail(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}
	if baby == nil {
		fail(w, http.StatusNotFound, "baby not found")
		return
	}

	loc := familyLocation(r, h.settings)
	day := time.Now().In(loc)
	if d := r.URL.Query().Get("date"); d != "" {
		day, err = timeutil.ParseToUTC(d, loc)
		if err != nil {
			fail(w, http.StatusBadRequest, "invalid date")
			return
		}
	}

	// Pull a window one day wider than the target so a night sleep that
	// started before local midnight still contributes its in-window slice.
	windowStart, windowEnd := timeutil.DayWindow(day, loc)
	activities, err := h.source.Load(babyID, familyID, windowStart.Add(-24*time.Hour), windowEnd)
	if err != nil {
		h.logger.Error("load activities", "error", err)
		fail(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}

	respond(w, http.StatusOK, stats.ComputeDailyStats(activities, day, time.Now(), loc))
}
