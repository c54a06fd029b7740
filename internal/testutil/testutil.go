// Package testutil holds helpers shared by the feature handler tests.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/matth2611/Holy-navigator/internal/middleware"
	"github.com/matth2611/Holy-navigator/internal/token"
	"github.com/matth2611/Holy-navigator/internal/utils"
)

const Secret = "test-secret"

// Users is an in-memory middleware.UserFinder.
type Users struct {
	mu sync.RWMutex
	m  map[string]utils.Principal
}

func NewUsers() *Users {
	return &Users{m: make(map[string]utils.Principal)}
}

func (u *Users) Put(p utils.Principal) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.m[p.UserID] = p
}

func (u *Users) Delete(userID string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.m, userID)
}

func (u *Users) FindPrincipal(_ context.Context, userID string) (utils.Principal, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	p, ok := u.m[userID]
	if !ok {
		return utils.Principal{}, middleware.ErrUserNotFound
	}
	return p, nil
}

// Auth bundles a codec, a user table and a resolver over both.
type Auth struct {
	Codec    *token.Codec
	Users    *Users
	Resolver *middleware.Resolver
}

func NewAuth() *Auth {
	codec := token.NewCodec(Secret)
	users := NewUsers()
	return &Auth{
		Codec:    codec,
		Users:    users,
		Resolver: middleware.NewResolver(codec, users),
	}
}

// Login registers a principal and returns a token for it.
func (a *Auth) Login(t *testing.T, p utils.Principal) string {
	t.Helper()
	a.Users.Put(p)
	tok, _, err := a.Codec.Issue(p.UserID)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return tok
}

func (a *Auth) Free(t *testing.T, userID string) string {
	return a.Login(t, utils.Principal{UserID: userID, Email: userID + "@example.com", Name: userID})
}

func (a *Auth) Premium(t *testing.T, userID string) string {
	return a.Login(t, utils.Principal{UserID: userID, Email: userID + "@example.com", Name: userID, IsPremium: true})
}

// Do sends a request to h. body is JSON-encoded unless it is nil or a string.
// An empty tok sends no credentials.
func Do(t *testing.T, h http.Handler, method, path, tok string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// Decode unmarshals the recorded body into v.
func Decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
}

// Detail returns the "detail" field of an error body.
func Detail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Detail string `json:"detail"`
	}
	Decode(t, rec, &body)
	return body.Detail
}
