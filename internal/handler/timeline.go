package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/fernwood/nestling/internal/auth"
	"github.com/fernwood/nestling/internal/model"
	"github.com/fernwood/nestling/internal/store"
	"github.com/fernwood/nestling/internal/timeline"
)

// ActivitySource gathers a baby's logs of every kind into one activity list.
type ActivitySource struct {
	Sleep     *store.SleepStore
	Feed      *store.FeedStore
	Diaper    *store.DiaperStore
	Note      *store.NoteStore
	Bath      *store.BathStore
	Milestone *store.MilestoneStore
}

// Load returns all activities for the baby, family-scoped, optionally
// bounded by [start, end] over each record's primary time column.
func (src *ActivitySource) Load(babyID, familyID string, start, end time.Time) ([]model.Activity, error) {
	var activities []model.Activity

	sleeps, err := src.Sleep.List(babyID, familyID, start, end)
	if err != nil {
		return nil, fmt.Errorf("load sleep logs: %w", err)
	}
	for i := range sleeps {
		activities = append(activities, model.SleepActivity(&sleeps[i]))
	}

	feeds, err := src.Feed.List(babyID, familyID, start, end)
	if err != nil {
		return nil, fmt.Errorf("load feed logs: %w", err)
	}
	for i := range feeds {
		activities = append(activities, model.FeedActivity(&feeds[i]))
	}

	diapers, err := src.Diaper.List(babyID, familyID, start, end)
	if err != nil {
		return nil, fmt.Errorf("load diaper logs: %w", err)
	}
	for i := range diapers {
		activities = append(activities, model.DiaperActivity(&diapers[i]))
	}

	notes, err := src.Note.List(babyID, familyID, start, end)
	if err != nil {
		return nil, fmt.Errorf("load notes: %w", err)
	}
	for i := range notes {
		activities = append(activities, model.NoteActivity(&notes[i]))
	}

	baths, err := src.Bath.List(babyID, familyID, start, end)
	if err != nil {
		return nil, fmt.Errorf("load bath logs: %w", err)
	}
	for i := range baths {
		activities = append(activities, model.BathActivity(&baths[i]))
	}

	milestones, err := src.Milestone.List(babyID, familyID, start, end)
	if err != nil {
		return nil, fmt.Errorf("load milestones: %w", err)
	}
	for i := range milestones {
		activities = append(activities, model.MilestoneActivity(&milestones[i]))
	}

	return activities, nil
}

type TimelineHandler struct {
	source   *ActivitySource
	babies   *store.BabyStore
	settings *store.SettingsStore
	logger   *slog.Logger
}

func NewTimelineHandler(source *ActivitySource, babies *store.BabyStore, settings *store.SettingsStore, logger *slog.Logger) *TimelineHandler {
	return &TimelineHandler{source: source, babies: babies, settings: settings, logger: logger}
}

const defaultPageSize = 20

// Get serves the merged, filtered, paginated activity timeline.
func (h *TimelineHandler) Get(w http.ResponseWriter, r *http.Request) {
	babyID := r.URL.Query().Get("babyId")
	if babyID == "" {
		fail(w, http.StatusBadRequest, "babyId is required")
		return
	}

	familyID := auth.FamilyID(r.Context())
	baby, err := h.babies.GetByID(babyID, familyID)
	if err != nil {
		h.logger.Error("get baby", "error", err)
		fail(w, http.StatusInternalServerError, "failed to load timeline")
		return
	}
	if baby == nil {
		fail(w, http.StatusNotFound, "baby not found")
		return
	}

	var kind *model.ActivityKind
	if k := r.URL.Query().Get("kind"); k != "" {
		parsed, ok := model.ParseActivityKind(k)
		if !ok {
			fail(w, http.StatusBadRequest, "invalid kind")
			return
		}
		kind = &parsed
	}

	page := 1
	if p := r.URL.Query().Get("page"); p != "" {
		page, err = strconv.Atoi(p)
		if err != nil || page < 1 {
			fail(w, http.StatusBadRequest, "invalid page")
			return
		}
	}
	pageSize := defaultPageSize
	if ps := r.URL.Query().Get("pageSize"); ps != "" {
		pageSize, err = strconv.Atoi(ps)
		if err != nil || pageSize < 1 || pageSize > 200 {
			fail(w, http.StatusBadRequest, "invalid pageSize")
			return
		}
	}

	loc := familyLocation(r, h.settings)
	start, end, err := dateRange(r, loc)
	if err != nil {
		fail(w, http.StatusBadRequest, "invalid date range")
		return
	}

	activities, err := h.source.Load(babyID, familyID, start, end)
	if err != nil {
		h.logger.Error("load activities", "error", err)
		fail(w, http.StatusInternalServerError, "failed to load timeline")
		return
	}

	respond(w, http.StatusOK, timeline.Page(activities, kind, page, pageSize))
}
