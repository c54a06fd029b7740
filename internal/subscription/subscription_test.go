package subscription

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81/webhook"

	"github.com/matth2611/Holy-navigator/internal/auth"
	"github.com/matth2611/Holy-navigator/internal/testutil"
)

const webhookSecret = "whsec_test"

type premiumState struct {
	premium bool
	since   time.Time
}

type fakeStore struct {
	mu    sync.Mutex
	txns  map[string]*Transaction
	users map[string]*premiumState
	clock time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		txns:  make(map[string]*Transaction),
		users: make(map[string]*premiumState),
		clock: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (s *fakeStore) CreateTransaction(_ context.Context, t *Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.txns[t.SessionID] = &cp
	return nil
}

func (s *fakeStore) GetBySession(_ context.Context, sessionID string) (*Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.txns[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *fakeStore) Confirm(_ context.Context, c Confirmation) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = s.clock.Add(time.Minute)

	userID := c.UserID
	if t, ok := s.txns[c.SessionID]; ok {
		if t.PaymentStatus == StatusPaid {
			return false, nil
		}
		t.PaymentStatus = StatusPaid
		userID = t.UserID
	} else {
		if userID == "" {
			return false, nil
		}
		s.txns[c.SessionID] = &Transaction{SessionID: c.SessionID, UserID: userID, PaymentStatus: StatusPaid}
	}

	u, ok := s.users[userID]
	if !ok {
		u = &premiumState{}
		s.users[userID] = u
	}
	u.premium = true
	if u.since.IsZero() {
		u.since = s.clock
	}
	return true, nil
}

func (s *fakeStore) user(id string) premiumState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		return *u
	}
	return premiumState{}
}

type fakeStripe struct {
	mu       sync.Mutex
	sessions map[string]*CheckoutSession
	params   []CheckoutParams
	err      error
}

func newFakeStripe() *fakeStripe {
	return &fakeStripe{sessions: make(map[string]*CheckoutSession)}
}

func (f *fakeStripe) CreateSession(_ context.Context, p CheckoutParams) (*CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.params = append(f.params, p)
	s := &CheckoutSession{
		ID:            "cs_test_1",
		URL:           "https://checkout.stripe.test/cs_test_1",
		Status:        "open",
		PaymentStatus: "unpaid",
		AmountTotal:   p.AmountCents,
		Currency:      p.Currency,
		Metadata:      p.Metadata,
	}
	f.sessions[s.ID] = s
	return s, nil
}

func (f *fakeStripe) GetSession(_ context.Context, id string) (*CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	s, ok := f.sessions[id]
	if !ok {
		return nil, errors.New("no such session")
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStripe) markPaid(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[id].Status = "complete"
	f.sessions[id].PaymentStatus = StatusPaid
}

type countingRecorder struct {
	mu  sync.Mutex
	got map[string]int
}

func (c *countingRecorder) RecordPaymentConfirmed(source string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.got == nil {
		c.got = make(map[string]int)
	}
	c.got[source]++
}

type fixture struct {
	auth    *testutil.Auth
	store   *fakeStore
	stripe  *fakeStripe
	metrics *countingRecorder
	handler *Handler
	router  http.Handler
	webhook http.Handler
}

func newFixture() *fixture {
	f := &fixture{
		auth:    testutil.NewAuth(),
		store:   newFakeStore(),
		stripe:  newFakeStripe(),
		metrics: &countingRecorder{},
	}
	f.handler = NewHandler(f.store, f.stripe, 999, webhookSecret, f.metrics, nil)
	f.router = f.handler.SetupRoutes(f.auth.Resolver)
	f.webhook = f.handler.WebhookRoutes()
	return f
}

func (f *fixture) postWebhook(t *testing.T, ev any, signer func([]byte) string) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(ev)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/stripe", strings.NewReader(string(raw)))
	if signer != nil {
		req.Header.Set("Stripe-Signature", signer(raw))
	}
	rec := httptest.NewRecorder()
	f.webhook.ServeHTTP(rec, req)
	return rec
}

func paidEvent(sessionID, userID string) map[string]any {
	return map[string]any{
		"id":   "evt_1",
		"type": "checkout.session.completed",
		"data": map[string]any{"object": map[string]any{
			"id":             sessionID,
			"payment_status": "paid",
			"amount_total":   999,
			"currency":       "usd",
			"metadata":       map[string]string{"user_id": userID},
		}},
	}
}

func sign(payload []byte, secret string, at time.Time) string {
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: at,
	}).Header
}

func validSig(raw []byte) string { return sign(raw, webhookSecret, time.Now()) }

func TestPlan(t *testing.T) {
	f := newFixture()
	rec := testutil.Do(t, f.router, http.MethodGet, "/plan", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var p Plan
	testutil.Decode(t, rec, &p)
	assert.Equal(t, 9.99, p.Amount)
	assert.Equal(t, "usd", p.Currency)
	assert.NotEmpty(t, p.Features)
}

func TestCreateCheckout(t *testing.T) {
	f := newFixture()
	tok := f.auth.Free(t, "user_buyer")

	rec := testutil.Do(t, f.router, http.MethodPost, "/create-checkout", "", map[string]string{"origin_url": "https://app.example"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = testutil.Do(t, f.router, http.MethodPost, "/create-checkout", tok, map[string]string{"origin_url": "javascript:alert(1)"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = testutil.Do(t, f.router, http.MethodPost, "/create-checkout", tok, map[string]string{"origin_url": "https://app.example/"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp checkoutResponse
	testutil.Decode(t, rec, &resp)
	assert.Equal(t, "cs_test_1", resp.SessionID)

	require.Len(t, f.stripe.params, 1)
	p := f.stripe.params[0]
	assert.Equal(t, int64(999), p.AmountCents)
	assert.Equal(t, "https://app.example/subscription/success?session_id={CHECKOUT_SESSION_ID}", p.SuccessURL)
	assert.Equal(t, "https://app.example/pricing", p.CancelURL)
	assert.Equal(t, "user_buyer", p.Metadata["user_id"])
	assert.Equal(t, "premium_monthly", p.Metadata["subscription_type"])

	txn, err := f.store.GetBySession(context.Background(), "cs_test_1")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, txn.PaymentStatus)
	assert.True(t, strings.HasPrefix(txn.TransactionID, "txn_"))
}

func TestCreateCheckout_NotConfigured(t *testing.T) {
	f := newFixture()
	f.stripe.err = ErrNotConfigured
	tok := f.auth.Free(t, "user_buyer")

	rec := testutil.Do(t, f.router, http.MethodPost, "/create-checkout", tok, map[string]string{"origin_url": "https://app.example"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStatus_ConfirmsOnce(t *testing.T) {
	f := newFixture()
	tok := f.auth.Free(t, "user_buyer")

	rec := testutil.Do(t, f.router, http.MethodPost, "/create-checkout", tok, map[string]string{"origin_url": "https://app.example"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = testutil.Do(t, f.router, http.MethodGet, "/status/cs_test_1", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var st statusResponse
	testutil.Decode(t, rec, &st)
	assert.Equal(t, "unpaid", st.PaymentStatus)
	assert.False(t, f.store.user("user_buyer").premium)

	f.stripe.markPaid("cs_test_1")

	rec = testutil.Do(t, f.router, http.MethodGet, "/status/cs_test_1", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	testutil.Decode(t, rec, &st)
	assert.Equal(t, statusResponse{Status: "complete", PaymentStatus: "paid", Amount: 9.99}, st)

	first := f.store.user("user_buyer")
	assert.True(t, first.premium)

	rec = testutil.Do(t, f.router, http.MethodGet, "/status/cs_test_1", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, first.since, f.store.user("user_buyer").since)
	assert.Equal(t, 1, f.metrics.got[SourceStatus])
}

func TestStatus_OtherUsersSessionIsNotFound(t *testing.T) {
	f := newFixture()
	owner := f.auth.Free(t, "user_owner")
	other := f.auth.Free(t, "user_other")

	rec := testutil.Do(t, f.router, http.MethodPost, "/create-checkout", owner, map[string]string{"origin_url": "https://app.example"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = testutil.Do(t, f.router, http.MethodGet, "/status/cs_test_1", other, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = testutil.Do(t, f.router, http.MethodGet, "/status/cs_missing", owner, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWebhook_ConvergesWithStatusPoll(t *testing.T) {
	f := newFixture()
	tok := f.auth.Free(t, "user_buyer")

	rec := testutil.Do(t, f.router, http.MethodPost, "/create-checkout", tok, map[string]string{"origin_url": "https://app.example"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.postWebhook(t, paidEvent("cs_test_1", "user_buyer"), validSig)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"status":"success"}`, rec.Body.String())

	first := f.store.user("user_buyer")
	require.True(t, first.premium)

	// Replayed webhook and a later poll both see the session as already paid.
	rec = f.postWebhook(t, paidEvent("cs_test_1", "user_buyer"), validSig)
	require.Equal(t, http.StatusOK, rec.Code)
	f.stripe.markPaid("cs_test_1")
	rec = testutil.Do(t, f.router, http.MethodGet, "/status/cs_test_1", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, first.since, f.store.user("user_buyer").since)
	assert.Equal(t, 1, f.metrics.got[SourceWebhook])
	assert.Zero(t, f.metrics.got[SourceStatus])
}

func TestWebhook_Rejections(t *testing.T) {
	f := newFixture()

	rec := f.postWebhook(t, paidEvent("cs_x", "user_x"), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.postWebhook(t, paidEvent("cs_x", "user_x"), func(raw []byte) string {
		return sign(raw, "wrong", time.Now())
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.postWebhook(t, paidEvent("cs_x", "user_x"), func(raw []byte) string {
		return sign(raw, webhookSecret, time.Now().Add(-10*time.Minute))
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "error")

	assert.False(t, f.store.user("user_x").premium)
}

func TestWebhook_IgnoresOtherEvents(t *testing.T) {
	f := newFixture()
	ev := paidEvent("cs_x", "user_x")
	ev["type"] = "customer.created"

	rec := f.postWebhook(t, ev, validSig)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, f.store.user("user_x").premium)
}

func TestVerifySignature(t *testing.T) {
	payload := []byte(`{"id":"evt"}`)
	now := time.Unix(1_700_000_000, 0)
	header := sign(payload, "s", now)

	assert.NoError(t, VerifySignature(payload, header, "s", now.Add(time.Minute)))
	assert.NoError(t, VerifySignature(payload, header+",v1=deadbeef", "s", now))
	assert.ErrorIs(t, VerifySignature(payload, "", "s", now), ErrMissingSignature)
	assert.ErrorIs(t, VerifySignature(payload, "t=abc,v1=00", "s", now), ErrBadSignature)
	assert.ErrorIs(t, VerifySignature([]byte(`{}`), header, "s", now), ErrBadSignature)
	assert.ErrorIs(t, VerifySignature(payload, header, "s", now.Add(6*time.Minute)), ErrStaleSignature)
}

func TestVerifySignature_NonCanonicalTimestamp(t *testing.T) {
	payload := []byte(`{"id":"evt"}`)
	now := time.Unix(1_700_000_000, 0)
	ts := "1700000000"

	hmacHex := func(signed string) string {
		mac := hmac.New(sha256.New, []byte("s"))
		mac.Write([]byte(signed + "."))
		mac.Write(payload)
		return hex.EncodeToString(mac.Sum(nil))
	}

	for _, spelled := range []string{"0" + ts, "+" + ts} {
		// Signed over the bytes as sent, and over the parsed value.
		overRaw := "t=" + spelled + ",v1=" + hmacHex(spelled)
		overParsed := "t=" + spelled + ",v1=" + hmacHex(ts)

		assert.ErrorIs(t, VerifySignature(payload, overRaw, "s", now), ErrBadSignature, spelled)
		assert.ErrorIs(t, VerifySignature(payload, overParsed, "s", now), ErrBadSignature, spelled)
	}
	assert.NoError(t, VerifySignature(payload, "t="+ts+",v1="+hmacHex(ts), "s", now))
}

func TestParseEvent(t *testing.T) {
	raw, err := json.Marshal(paidEvent("cs_p", "user_p"))
	require.NoError(t, err)

	ev, err := ParseEvent(raw)
	require.NoError(t, err)
	assert.Equal(t, "evt_1", ev.ID)
	require.NotNil(t, ev.Session)
	assert.Equal(t, "cs_p", ev.Session.ID)
	assert.Equal(t, "user_p", ev.Session.Metadata["user_id"])
	assert.Equal(t, int64(999), ev.Session.AmountTotal)
	assert.True(t, ev.confirmsPayment())

	ev, err = ParseEvent([]byte(`{"id":"evt_2","type":"customer.created","data":{"object":{"id":"cus_1"}}}`))
	require.NoError(t, err)
	assert.Nil(t, ev.Session)
	assert.False(t, ev.confirmsPayment())

	_, err = ParseEvent([]byte(`not json`))
	assert.Error(t, err)
}

func TestStripeClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer sk_test" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"bad key"}}`))
			return
		}
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/checkout/sessions":
			assert.NoError(t, r.ParseForm())
			assert.Equal(t, "payment", r.PostForm.Get("mode"))
			assert.Equal(t, "999", r.PostForm.Get("line_items[0][price_data][unit_amount]"))
			assert.Equal(t, "user_1", r.PostForm.Get("metadata[user_id]"))
			w.Write([]byte(`{"id":"cs_1","url":"https://pay.test/cs_1","status":"open","payment_status":"unpaid","amount_total":999,"currency":"usd"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/v1/checkout/sessions/cs_1":
			w.Write([]byte(`{"id":"cs_1","status":"complete","payment_status":"paid","amount_total":999,"metadata":{"user_id":"user_1"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := NewStripeClient(srv.URL+"/", "sk_test", srv.Client(), quiet)
	s, err := c.CreateSession(context.Background(), CheckoutParams{
		AmountCents: 999,
		Currency:    "usd",
		ProductName: "p",
		SuccessURL:  "https://a/s",
		CancelURL:   "https://a/c",
		Metadata:    map[string]string{"user_id": "user_1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.test/cs_1", s.URL)

	s, err = c.GetSession(context.Background(), "cs_1")
	require.NoError(t, err)
	assert.Equal(t, "paid", s.PaymentStatus)
	assert.Equal(t, "user_1", s.Metadata["user_id"])

	_, err = NewStripeClient(srv.URL, "sk_wrong", srv.Client(), quiet).GetSession(context.Background(), "cs_1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad key")

	_, err = NewStripeClient(srv.URL, "", nil, quiet).GetSession(context.Background(), "cs_1")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestGormStore_ConfirmIsIdempotent(t *testing.T) {
	d := testutil.OpenDB(t)
	require.NoError(t, auth.Init(d))
	require.NoError(t, Init(d))
	ctx := context.Background()

	u := &auth.User{UserID: "user_it_pay", Email: "it-pay@example.com", Name: "Payer"}
	require.NoError(t, auth.NewGormStore(d).CreateUser(ctx, u))
	t.Cleanup(func() {
		d.Where("session_id LIKE ?", "cs_it_%").Delete(&Transaction{})
		d.Where("user_id = ?", u.UserID).Delete(&auth.User{})
	})

	store := NewGormStore(d)
	require.NoError(t, store.CreateTransaction(ctx, &Transaction{
		TransactionID: "txn_it_1", SessionID: "cs_it_1", UserID: u.UserID,
		AmountCents: 999, Currency: "usd", PaymentStatus: StatusPending,
	}))

	applied, err := store.Confirm(ctx, Confirmation{SessionID: "cs_it_1", Source: SourceStatus})
	require.NoError(t, err)
	assert.True(t, applied)

	var first auth.User
	require.NoError(t, d.First(&first, "user_id = ?", u.UserID).Error)
	require.True(t, first.IsPremium)
	require.NotNil(t, first.PremiumSince)

	applied, err = store.Confirm(ctx, Confirmation{SessionID: "cs_it_1", UserID: u.UserID, Source: SourceWebhook})
	require.NoError(t, err)
	assert.False(t, applied)

	var second auth.User
	require.NoError(t, d.First(&second, "user_id = ?", u.UserID).Error)
	assert.True(t, first.PremiumSince.Equal(*second.PremiumSince))

	// A webhook for a session never stored still lands exactly once.
	applied, err = store.Confirm(ctx, Confirmation{SessionID: "cs_it_2", UserID: u.UserID, AmountCents: 999, Currency: "usd", Source: SourceWebhook})
	require.NoError(t, err)
	assert.True(t, applied)
	applied, err = store.Confirm(ctx, Confirmation{SessionID: "cs_it_2", UserID: u.UserID, Source: SourceWebhook})
	require.NoError(t, err)
	assert.False(t, applied)
}
