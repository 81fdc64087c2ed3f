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

type NoteHandler struct {
	store    *store.NoteStore
	babies   *store.BabyStore
	settings *store.SettingsStore
	notifier Notifier
	logger   *slog.Logger
}

func NewNoteHandler(s *store.NoteStore, babies *store.BabyStore, settings *store.SettingsStore, n Notifier, logger *slog.Logger) *NoteHandler {
	return &NoteHandler{store: s, babies: babies, settings: settings, notifier: n, logger: logger}
}

func (h *NoteHandler) notify(r *http.Request, action, id string) {
	if h.notifier != nil {
		h.notifier.Notify(auth.FamilyID(r.Context()), "note", action, id)
	}
}

func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	familyID := auth.FamilyID(r.Context())

	if id := r.URL.Query().Get("id"); id != "" {
		note, err := h.store.GetByID(id, familyID)
		if err != nil {
			h.logger.Error("get note", "error", err)
			fail(w, http.StatusInternalServerError, "failed to get note")
			return
		}
		if note == nil {
			fail(w, http.StatusNotFound, "note not found")
			return
		}
		respond(w, http.StatusOK, note)
		return
	}

	loc := familyLocation(r, h.settings)
	start, end, err := dateRange(r, loc)
	if err != nil {
		fail(w, http.StatusBadRequest, "invalid date range")
		return
	}

	notes, err := h.store.List(r.URL.Query().Get("babyId"), familyID, start, end)
	if err != nil {
		h.logger.Error("list notes", "error", err)
		fail(w, http.StatusInternalServerError, "failed to list notes")
		return
	}
	if notes == nil {
		notes = []model.Note{}
	}
	respond(w, http.StatusOK, notes)
}

type noteRequest struct {
	BabyID   *string `json:"babyId"`
	Time     *string `json:"time"`
	Content  *string `json:"content"`
	Category *string `json:"category"`
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
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
	if req.Content == nil || strings.TrimSpace(*req.Content) == "" {
		fail(w, http.StatusBadRequest, "content is required")
		return
	}

	familyID := auth.FamilyID(r.Context())
	baby, err := h.babies.GetByID(*req.BabyID, familyID)
	if err != nil {
		h.logger.Error("get baby", "error", err)
		fail(w, http.StatusInternalServerError, "failed to create note")
		return
	}
	if baby == nil {
		fail(w, http.StatusNotFound, "baby not found")
		return
	}

	loc := familyLocation(r, h.settings)
	fields := store.NoteFields{
		BabyID:      *req.BabyID,
		CaretakerID: caretakerRef(r),
		Content:     strings.TrimSpace(*req.Content),
	}
	fields.Time, err = parseTimeParam(*req.Time, loc)
	if err != nil {
		fail(w, http.StatusBadRequest, "invalid time")
		return
	}
	if req.Category != nil {
		fields.Category = *req.Category
	}

	note, err := h.store.Create(fields)
	if err != nil {
		h.logger.Error("create note", "error", err)
		fail(w, http.StatusInternalServerError, "failed to create note")
		return
	}

	h.notify(r, "created", note.ID)
	respond(w, http.StatusCreated, note)
}

func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		fail(w, http.StatusBadRequest, "id is required")
		return
	}

	existing, err := h.store.GetByID(id, auth.FamilyID(r.Context()))
	if err != nil {
		h.logger.Error("get note", "error", err)
		fail(w, http.StatusInternalServerError, "failed to get note")
		return
	}
	if existing == nil {
		fail(w, http.StatusNotFound, "note not found")
		return
	}

	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	loc := familyLocation(r, h.settings)
	fields := store.NoteFields{
		BabyID:      existing.BabyID,
		CaretakerID: existing.CaretakerID,
		Time:        existing.Time,
		Content:     existing.Content,
		Category:    existing.Category,
	}
	if req.Time != nil {
		fields.Time, err = parseTimeParam(*req.Time, loc)
		if err != nil {
			fail(w, http.StatusBadRequest, "invalid time")
			return
		}
	}
	if req.Content != nil {
		content := strings.TrimSpace(*req.Content)
		if content == "" {
			fail(w, http.StatusBadRequest, "content is required")
			return
		}
		fields.Content = content
	}
	if req.Category != nil {
		fields.Category = *req.Category
	}

	note, err := h.store.Update(id, fields)
	if err != nil {
		h.logger.Error("update note", "error", err)
		fail(w, http.StatusInternalServerError, "failed to update note")
		return
	}

	h.notify(r, "updated", id)
	respond(w, http.StatusOK, note)
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		fail(w, http.StatusBadRequest, "id is required")
		return
	}

	existing, err := h.store.GetByID(id, auth.FamilyID(r.Context()))
	if err != nil {
		h.logger.Error("get note", "error", err)
		fail(w, http.StatusInternalServerError, "failed to get note")
		return
	}
	if existing == nil {
		fail(w, http.StatusNotFound, "note not found")
		return
	}

	if err := h.store.SoftDelete(id); err != nil {
		h.logger.Error("delete note", "error", err)
		fail(w, http.StatusInternalServerError, "failed to delete note")
		return
	}

	h.notify(r, "deleted", id)
	respond(w, http.StatusOK, existing)
}
