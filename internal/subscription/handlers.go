package subscription

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matth2611/Holy-navigator/internal/apperr"
	"github.com/matth2611/Holy-navigator/internal/utils"
)

const (
	maxWebhookBody = 1 << 20
	currency       = "usd"
	productName    = "Holy Navigator Premium"

	SourceStatus  = "status"
	SourceWebhook = "webhook"
)

var features = []string{
	"Personal spiritual journal",
	"Community forum",
	"Prophecy video and audio library",
	"Scripture analysis of current news",
}

// PaymentRecorder observes confirmed payments for metrics.
type PaymentRecorder interface {
	RecordPaymentConfirmed(source string)
}

type Handler struct {
	store         Store
	stripe        CheckoutClient
	priceCents    int64
	webhookSecret string
	metrics       PaymentRecorder
	log           *slog.Logger
	now           func() time.Time
}

func NewHandler(store Store, stripe CheckoutClient, priceCents int64, webhookSecret string, metrics PaymentRecorder, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		store:         store,
		stripe:        stripe,
		priceCents:    priceCents,
		webhookSecret: webhookSecret,
		metrics:       metrics,
		log:           log,
		now:           time.Now,
	}
}

func (h *Handler) Plan(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, Plan{
		Amount:   float64(h.priceCents) / 100,
		Currency: currency,
		Interval: "month",
		Features: features,
	})
}

func (h *Handler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	var req checkoutRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		apperr.Write(w, r, apperr.Validation("Invalid request body"))
		return
	}
	origin, err := parseOrigin(req.OriginURL)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}

	session, err := h.stripe.CreateSession(r.Context(), CheckoutParams{
		AmountCents: h.priceCents,
		Currency:    currency,
		ProductName: productName,
		SuccessURL:  origin + "/subscription/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:   origin + "/pricing",
		Metadata: map[string]string{
			"user_id":           userID,
			"subscription_type": planType,
		},
	})
	if errors.Is(err, ErrNotConfigured) {
		apperr.Write(w, r, apperr.Unavailable("Payments are not configured"))
		return
	}
	if err != nil {
		apperr.Write(w, r, apperr.Upstream("Payment provider error", err))
		return
	}

	txn := &Transaction{
		TransactionID: utils.NewID("txn"),
		SessionID:     session.ID,
		UserID:        userID,
		AmountCents:   h.priceCents,
		Currency:      currency,
		PaymentStatus: StatusPending,
	}
	if err := h.store.CreateTransaction(r.Context(), txn); err != nil {
		apperr.Write(w, r, apperr.Internal(err))
		return
	}

	utils.WriteJSON(w, http.StatusOK, checkoutResponse{URL: session.URL, SessionID: session.ID})
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())
	sessionID := chi.URLParam(r, "sessionID")

	txn, err := h.store.GetBySession(r.Context(), sessionID)
	if errors.Is(err, ErrNotFound) || (err == nil && txn.UserID != userID) {
		apperr.Write(w, r, apperr.NotFound("Transaction not found"))
		return
	}
	if err != nil {
		apperr.Write(w, r, apperr.Internal(err))
		return
	}

	session, err := h.stripe.GetSession(r.Context(), sessionID)
	if errors.Is(err, ErrNotConfigured) {
		apperr.Write(w, r, apperr.Unavailable("Payments are not configured"))
		return
	}
	if err != nil {
		apperr.Write(w, r, apperr.Upstream("Payment provider error", err))
		return
	}

	if session.PaymentStatus == StatusPaid {
		_, err := h.confirm(r, Confirmation{
			SessionID:   sessionID,
			UserID:      userID,
			AmountCents: session.AmountTotal,
			Currency:    session.Currency,
			Source:      SourceStatus,
		})
		if err != nil {
			apperr.Write(w, r, apperr.Internal(err))
			return
		}
	}

	amount := txn.AmountCents
	if session.AmountTotal > 0 {
		amount = session.AmountTotal
	}
	utils.WriteJSON(w, http.StatusOK, statusResponse{
		Status:        session.Status,
		PaymentStatus: session.PaymentStatus,
		Amount:        float64(amount) / 100,
	})
}

func (h *Handler) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBody)
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		webhookError(w, http.StatusRequestEntityTooLarge, "payload too large or unreadable")
		return
	}

	if h.webhookSecret == "" {
		h.log.Error("stripe webhook received but STRIPE_WEBHOOK_SECRET is not set")
		webhookError(w, http.StatusInternalServerError, "server misconfigured")
		return
	}
	if err := VerifySignature(raw, r.Header.Get("Stripe-Signature"), h.webhookSecret, h.now()); err != nil {
		h.log.Warn("stripe webhook rejected", slog.Any("error", err))
		webhookError(w, http.StatusBadRequest, err.Error())
		return
	}

	ev, err := ParseEvent(raw)
	if err != nil {
		webhookError(w, http.StatusBadRequest, "bad json")
		return
	}

	if ev.confirmsPayment() {
		s := ev.Session
		applied, err := h.confirm(r, Confirmation{
			SessionID:   s.ID,
			UserID:      s.Metadata["user_id"],
			AmountCents: s.AmountTotal,
			Currency:    s.Currency,
			Source:      SourceWebhook,
		})
		if err != nil {
			h.log.Error("stripe webhook confirm failed", slog.String("event_id", ev.ID), slog.Any("error", err))
			webhookError(w, http.StatusInternalServerError, "confirmation failed")
			return
		}
		h.log.Info("stripe webhook processed",
			slog.String("event_id", ev.ID),
			slog.String("session_id", s.ID),
			slog.Bool("applied", applied),
		)
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (h *Handler) confirm(r *http.Request, c Confirmation) (bool, error) {
	applied, err := h.store.Confirm(r.Context(), c)
	if err != nil {
		return false, err
	}
	if applied && h.metrics != nil {
		h.metrics.RecordPaymentConfirmed(c.Source)
	}
	return applied, nil
}

func webhookError(w http.ResponseWriter, status int, msg string) {
	utils.WriteJSON(w, status, map[string]string{"error": msg})
}

// parseOrigin accepts an absolute http(s) URL and returns scheme://host[/path]
// without a trailing slash.
func parseOrigin(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", apperr.Validation("origin_url must be an absolute http(s) URL")
	}
	return strings.TrimRight(u.Scheme+"://"+u.Host+u.Path, "/"), nil
}
