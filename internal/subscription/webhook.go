package subscription

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"
)

const signatureTolerance = 5 * time.Minute

var (
	ErrMissingSignature = errors.New("missing Stripe-Signature header")
	ErrBadSignature     = errors.New("signature mismatch")
	ErrStaleSignature   = errors.New("signature timestamp outside tolerance")
)

// Event is a verified Stripe webhook event. Session is set for
// checkout.session.* events.
type Event struct {
	ID      string
	Type    stripe.EventType
	Session *CheckoutSession
}

// confirmsPayment reports whether ev moves a checkout session to paid.
func (ev *Event) confirmsPayment() bool {
	if ev.Session == nil {
		return false
	}
	switch ev.Type {
	case stripe.EventTypeCheckoutSessionCompleted, stripe.EventTypeCheckoutSessionAsyncPaymentSucceeded:
		return ev.Session.PaymentStatus == StatusPaid
	}
	return false
}

// ParseEvent decodes a webhook body that has already passed VerifySignature.
func ParseEvent(raw []byte) (*Event, error) {
	var e stripe.Event
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	ev := &Event{ID: e.ID, Type: e.Type}
	if e.Data != nil && strings.HasPrefix(string(e.Type), "checkout.session.") {
		var s stripe.CheckoutSession
		if err := json.Unmarshal(e.Data.Raw, &s); err != nil {
			return nil, fmt.Errorf("decode checkout session: %w", err)
		}
		ev.Session = fromStripe(&s)
	}
	return ev, nil
}

// VerifySignature checks a Stripe-Signature header ("t=...,v1=...") with
// stripe-go and enforces the tolerance against now.
func VerifySignature(payload []byte, header, secret string, now time.Time) error {
	if header == "" {
		return ErrMissingSignature
	}
	signedAt, ok := signatureTime(header)
	if !ok {
		return ErrBadSignature
	}
	if err := webhook.ValidatePayloadIgnoringTolerance(payload, header, secret); err != nil {
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	}

	age := now.Sub(signedAt)
	if age > signatureTolerance || age < -signatureTolerance {
		return ErrStaleSignature
	}
	return nil
}

// signatureTime returns the t= value. The signature is recomputed over the
// decimal form of the parsed timestamp, so any other spelling of t ("+1",
// "01") is refused rather than verified against different bytes.
func signatureTime(header string) (time.Time, bool) {
	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok || k != "t" {
			continue
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || strconv.FormatInt(n, 10) != v {
			return time.Time{}, false
		}
		return time.Unix(n, 0), true
	}
	return time.Time{}, false
}
