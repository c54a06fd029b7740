package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/matth2611/Holy-navigator/internal/apperr"
	"github.com/matth2611/Holy-navigator/internal/token"
	"github.com/matth2611/Holy-navigator/internal/utils"
)

// SessionCookieName is the cookie the session token travels in.
const SessionCookieName = "session_token"

// TokenVerifier decodes a session token into a user id.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// UserFinder loads the caller behind a verified user id.
// It must return an error wrapping ErrUserNotFound when the account is gone.
type UserFinder interface {
	FindPrincipal(ctx context.Context, userID string) (utils.Principal, error)
}

var ErrUserNotFound = errors.New("user not found")

// Resolver turns request credentials into a Principal.
// There is no cache: each call costs one UserFinder lookup.
type Resolver struct {
	verifier TokenVerifier
	users    UserFinder
}

func NewResolver(verifier TokenVerifier, users UserFinder) *Resolver {
	return &Resolver{verifier: verifier, users: users}
}

// ExtractToken returns the session cookie value, else the Bearer token.
func ExtractToken(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

// Resolve authenticates r. Every failure is an Unauthenticated apperr.
func (res *Resolver) Resolve(r *http.Request) (utils.Principal, error) {
	raw := ExtractToken(r)
	if raw == "" {
		return utils.Principal{}, apperr.Unauthenticated("Not authenticated")
	}

	userID, err := res.verifier.Verify(raw)
	if err != nil {
		if errors.Is(err, token.ErrTokenExpired) {
			return utils.Principal{}, apperr.Unauthenticated("Token expired")
		}
		return utils.Principal{}, apperr.Unauthenticated("Invalid token")
	}

	p, err := res.users.FindPrincipal(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return utils.Principal{}, apperr.Unauthenticated("User not found")
		}
		return utils.Principal{}, apperr.Internal(err)
	}
	return p, nil
}

// RequireAuth rejects unauthenticated requests with 401 and stores the
// Principal in the context for downstream handlers.
func (res *Resolver) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := res.Resolve(r)
		if err != nil {
			apperr.Write(w, r, err)
			return
		}
		setLoggedUser(r, p.UserID)
		next.ServeHTTP(w, r.WithContext(utils.WithPrincipal(r.Context(), p)))
	})
}

// RequirePremium authenticates first, so a missing credential is always
// 401, and then answers 403 for non-premium callers.
func (res *Resolver) RequirePremium(next http.Handler) http.Handler {
	return res.RequireAuth(PremiumMiddleware(next))
}

// PremiumMiddleware checks the tier of a Principal already in the context.
func PremiumMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := utils.PrincipalFromContext(r.Context())
		if !ok {
			apperr.Write(w, r, apperr.Unauthenticated("Not authenticated"))
			return
		}
		if !p.IsPremium {
			apperr.Write(w, r, apperr.Forbidden("Premium subscription required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
