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

type AuthHandler struct {
	caretakers *store.CaretakerStore
	issuer     *auth.TokenIssuer
	logger     *slog.Logger
}

func NewAuthHandler(caretakers *store.CaretakerStore, issuer *auth.TokenIssuer, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{caretakers: caretakers, issuer: issuer, logger: logger}
}

type loginResponse struct {
	Token     string           `json:"token"`
	Caretaker *model.Caretaker `json:"caretaker"`
}

// Login exchanges a loginId + PIN pair for a signed token. Bad credentials
// get a uniform 401 regardless of which half was wrong.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LoginID string `json:"loginId"`
		PIN     string `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.LoginID = strings.TrimSpace(req.LoginID)
	if req.LoginID == "" || req.PIN == "" {
		fail(w, http.StatusBadRequest, "loginId and pin are required")
		return
	}

	caretaker, err := h.caretakers.Authenticate(req.LoginID, req.PIN)
	if err != nil {
		h.logger.Error("authenticate caretaker", "error", err)
		fail(w, http.StatusInternalServerError, "login failed")
		return
	}
	if caretaker == nil {
		fail(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.issuer.Issue(caretaker.ID, caretaker.FamilyID, caretaker.Role)
	if err != nil {
		h.logger.Error("issue token", "error", err)
		fail(w, http.StatusInternalServerError, "login failed")
		return
	}

	respond(w, http.StatusOK, loginResponse{Token: token, Caretaker: caretaker})
}

// Me reports the authenticated caretaker, for session restore on page load.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	caretaker, err := h.caretakers.GetByID(auth.CaretakerID(r.Context()))
	if err != nil {
		h.logger.Error("get caretaker", "error", err)
		fail(w, http.StatusInternalServerError, "failed to get caretaker")
		return
	}
	if caretaker == nil {
		fail(w, http.StatusNotFound, "caretaker not found")
		return
	}
	respond(w, http.StatusOK, caretaker)
}
