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

type CaretakerHandler struct {
	store  *store.CaretakerStore
	logger *slog.Logger
}

func NewCaretakerHandler(s *store.CaretakerStore, logger *slog.Logger) *CaretakerHandler {
	return &CaretakerHandler{store: s, logger: logger}
}

func (h *CaretakerHandler) List(w http.ResponseWriter, r *http.Request) {
	caretakers, err := h.store.ListByFamily(auth.FamilyID(r.Context()))
	if err != nil {
		h.logger.Error("list caretakers", "error", err)
		fail(w, http.StatusInternalServerError, "failed to list caretakers")
		return
	}
	if caretakers == nil {
		caretakers = []model.Caretaker{}
	}
	respond(w, http.StatusOK, caretakers)
}

func validCaretakerRole(role string) bool {
	switch role {
	case "parent", "grandparent", "sitter":
		return true
	}
	return false
}

func (h *CaretakerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LoginID string `json:"loginId"`
		Name    string `json:"name"`
		Role    string `json:"role"`
		PIN     string `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.LoginID = strings.TrimSpace(req.LoginID)
	req.Name = strings.TrimSpace(req.Name)
	if req.LoginID == "" || req.Name == "" {
		fail(w, http.StatusBadRequest, "loginId and name are required")
		return
	}
	if len(req.PIN) < 4 {
		fail(w, http.StatusBadRequest, "pin must be at least 4 digits")
		return
	}
	if req.Role == "" {
		req.Role = "sitter"
	}
	if !validCaretakerRole(req.Role) {
		fail(w, http.StatusBadRequest, "role must be parent, grandparent, or sitter")
		return
	}

	caretaker, err := h.store.Create(auth.FamilyID(r.Context()), req.LoginID, req.Name, req.Role, req.PIN)
	if err != nil {
		h.logger.Error("create caretaker", "error", err)
		fail(w, http.StatusInternalServerError, "failed to create caretaker")
		return
	}
	respond(w, http.StatusCreated, caretaker)
}

// SetPIN lets a caretaker rotate their own PIN.
func (h *CaretakerHandler) SetPIN(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PIN string `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.PIN) < 4 {
		fail(w, http.StatusBadRequest, "pin must be at least 4 digits")
		return
	}

	if err := h.store.SetPIN(auth.CaretakerID(r.Context()), req.PIN); err != nil {
		h.logger.Error("set pin", "error", err)
		fail(w, http.StatusInternalServerError, "failed to set pin")
		return
	}
	respond(w, http.StatusOK, nil)
}

func (h *CaretakerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		fail(w, http.StatusBadRequest, "id is required")
		return
	}
	if id == auth.CaretakerID(r.Context()) {
		fail(w, http.StatusBadRequest, "cannot delete yourself")
		return
	}

	existing, err := h.store.GetByID(id)
	if err != nil {
		h.logger.Error("get caretaker", "error", err)
		fail(w, http.StatusInternalServerError, "failed to get caretaker")
		return
	}
	if existing == nil || existing.FamilyID != auth.FamilyID(r.Context()) {
		fail(w, http.StatusNotFound, "caretaker not found")
		return
	}

	if err := h.store.SoftDelete(id); err != nil {
		h.logger.Error("delete caretaker", "error", err)
		fail(w, http.StatusInternalServerError, "failed to delete caretaker")
		return
	}
	respond(w, http.StatusOK, existing)
}
