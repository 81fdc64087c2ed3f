package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/fernwood/nestling/internal/auth"
	"github.com/fernwood/nestling/internal/model"
	"github.com/fernwood/nestling/internal/store"
)

type PushHandler struct {
	store     *store.PushStore
	publicKey string
	logger    *slog.Logger
}

func NewPushHandler(s *store.PushStore, vapidPublicKey string, logger *slog.Logger) *PushHandler {
	return &PushHandler{store: s, publicKey: vapidPublicKey, logger: logger}
}

// PublicKey hands the VAPID public key to the browser for subscription.
func (h *PushHandler) PublicKey(w http.ResponseWriter, r *http.Request) {
	if h.publicKey == "" {
		fail(w, http.StatusNotFound, "push notifications are not configured")
		return
	}
	respond(w, http.StatusOK, map[string]string{"publicKey": h.publicKey})
}

func (h *PushHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Endpoint string `json:"endpoint"`
		Keys     struct {
			P256dh string `json:"p256dh"`
			Auth   string `json:"auth"`
		} `json:"keys"`
		Device string `json:"device"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Endpoint == "" || req.Keys.P256dh == "" || req.Keys.Auth == "" {
		fail(w, http.StatusBadRequest, "endpoint and keys are required")
		return
	}

	sub, err := h.store.Subscribe(auth.FamilyID(r.Context()), req.Endpoint, req.Keys.P256dh, req.Keys.Auth, req.Device)
	if err != nil {
		h.logger.Error("subscribe push", "error", err)
		fail(w, http.StatusInternalServerError, "failed to subscribe")
		return
	}
	respond(w, http.StatusCreated, sub)
}

func (h *PushHandler) List(w http.ResponseWriter, r *http.Request) {
	subs, err := h.store.ListByFamily(auth.FamilyID(r.Context()))
	if err != nil {
		h.logger.Error("list push subscriptions", "error", err)
		fail(w, http.StatusInternalServerError, "failed to list subscriptions")
		return
	}
	if subs == nil {
		subs = []model.PushSubscription{}
	}
	respond(w, http.StatusOK, subs)
}

func (h *PushHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil {
		fail(w, http.StatusBadRequest, "invalid id")
		return
	}

	sub, err := h.store.GetByID(id)
	if err != nil {
		h.logger.Error("get push subscription", "error", err)
		fail(w, http.StatusInternalServerError, "failed to unsubscribe")
		return
	}
	if sub == nil || sub.FamilyID != auth.FamilyID(r.Context()) {
		fail(w, http.StatusNotFound, "subscription not found")
		return
	}

	if err := h.store.Delete(id); err != nil {
		h.logger.Error("delete push subscription", "error", err)
		fail(w, http.StatusInternalServerError, "failed to unsubscribe")
		return
	}
	respond(w, http.StatusOK, sub)
}
