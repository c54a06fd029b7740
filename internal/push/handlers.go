package push

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/matth2611/Holy-navigator/internal/apperr"
	"github.com/matth2611/Holy-navigator/internal/utils"
)

type Handler struct {
	store     Store
	publicKey string
}

func NewHandler(store Store, vapidPublicKey string) *Handler {
	return &Handler{store: store, publicKey: vapidPublicKey}
}

func (h *Handler) VAPIDKey(w http.ResponseWriter, r *http.Request) {
	if h.publicKey == "" {
		apperr.Write(w, r, apperr.Unavailable("Push notifications are not configured"))
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"publicKey": h.publicKey})
}

func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	var req subscribeRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		apperr.Write(w, r, apperr.Validation("Invalid request body"))
		return
	}
	endpoint := strings.TrimSpace(req.Endpoint)
	if u, err := url.Parse(endpoint); err != nil || u.Scheme != "https" || u.Host == "" {
		apperr.Write(w, r, apperr.Validation("endpoint must be an https URL"))
		return
	}
	if req.Keys.P256dh == "" || req.Keys.Auth == "" {
		apperr.Write(w, r, apperr.Validation("keys.p256dh and keys.auth are required"))
		return
	}

	now := time.Now().UTC()
	sub := &Subscription{
		SubscriptionID: utils.NewID("psub"),
		UserID:         userID,
		Endpoint:       endpoint,
		P256dh:         req.Keys.P256dh,
		Auth:           req.Keys.Auth,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := h.store.Upsert(r.Context(), sub); err != nil {
		apperr.Write(w, r, apperr.Internal(err))
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"message": "Subscribed to push notifications", "subscribed": true})
}

func (h *Handler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	var req unsubscribeRequest
	if r.ContentLength != 0 {
		if err := utils.DecodeJSON(w, r, &req); err != nil {
			apperr.Write(w, r, apperr.Validation("Invalid request body"))
			return
		}
	}

	removed, err := h.store.Delete(r.Context(), userID, strings.TrimSpace(req.Endpoint))
	if err != nil {
		apperr.Write(w, r, apperr.Internal(err))
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"message": "Unsubscribed from push notifications", "removed": removed})
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	n, err := h.store.Count(r.Context(), userID)
	if err != nil {
		apperr.Write(w, r, apperr.Internal(err))
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]bool{"subscribed": n > 0})
}
