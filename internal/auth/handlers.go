package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/matth2611/Holy-navigator/internal/apperr"
	"github.com/matth2611/Holy-navigator/internal/middleware"
	"github.com/matth2611/Holy-navigator/internal/token"
	"github.com/matth2611/Holy-navigator/internal/utils"
)

const minPasswordLength = 6

type Handler struct {
	store        Store
	codec        *token.Codec
	identity     IdentityClient
	cookieSecure bool
	log          *slog.Logger
}

func NewHandler(store Store, codec *token.Codec, identity IdentityClient, cookieSecure bool, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		store:        store,
		codec:        codec,
		identity:     identity,
		cookieSecure: cookieSecure,
		log:          log,
	}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		apperr.Write(w, r, apperr.Validation("Invalid request body"))
		return
	}

	email, ok := normalizeEmail(req.Email)
	if !ok {
		apperr.Write(w, r, apperr.Validation("A valid email is required"))
		return
	}
	if len(req.Password) < minPasswordLength {
		apperr.Write(w, r, apperr.Validation("Password must be at least 6 characters"))
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		apperr.Write(w, r, apperr.Validation("Name is required"))
		return
	}

	if _, err := h.store.FindByEmail(r.Context(), email); err == nil {
		apperr.Write(w, r, apperr.Validation("Email already registered"))
		return
	} else if !errors.Is(err, ErrNotFound) {
		apperr.Write(w, r, apperr.Internal(err))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		apperr.Write(w, r, apperr.Internal(err))
		return
	}
	hash := string(hashed)

	user := &User{
		UserID:         utils.NewID("user"),
		Email:          email,
		Name:           name,
		HashedPassword: &hash,
		CreatedAt:      time.Now().UTC(),
	}

	// The unique index settles concurrent registrations of the same email.
	if err := h.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			apperr.Write(w, r, apperr.Validation("Email already registered"))
			return
		}
		apperr.Write(w, r, apperr.Internal(err))
		return
	}

	h.log.InfoContext(r.Context(), "user registered", slog.String("user_id", user.UserID))
	h.respondWithSession(w, r, user)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		apperr.Write(w, r, apperr.Validation("Invalid request body"))
		return
	}

	email, _ := normalizeEmail(req.Email)
	user, err := h.store.FindByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			apperr.Write(w, r, apperr.Unauthenticated("Invalid credentials"))
			return
		}
		apperr.Write(w, r, apperr.Internal(err))
		return
	}

	if user.HashedPassword == nil ||
		bcrypt.CompareHashAndPassword([]byte(*user.HashedPassword), []byte(req.Password)) != nil {
		apperr.Write(w, r, apperr.Unauthenticated("Invalid credentials"))
		return
	}

	h.respondWithSession(w, r, user)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.cookie("", -1))
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		apperr.Write(w, r, apperr.Unauthenticated("Not authenticated"))
		return
	}

	user, err := h.store.FindByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			apperr.Write(w, r, apperr.Unauthenticated("User not found"))
			return
		}
		apperr.Write(w, r, apperr.Internal(err))
		return
	}

	utils.WriteJSON(w, http.StatusOK, MeResponse{
		UserID:       user.UserID,
		Email:        user.Email,
		Name:         user.Name,
		Picture:      user.Picture,
		IsPremium:    user.IsPremium,
		PremiumSince: user.PremiumSince,
		CreatedAt:    user.CreatedAt,
	})
}

// Session exchanges a federated login session id for a local session.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	// The id may come in the header alone, so an empty body is fine.
	_ = utils.DecodeJSON(w, r, &req)

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = strings.TrimSpace(r.Header.Get("X-Session-ID"))
	}
	if sessionID == "" {
		apperr.Write(w, r, apperr.Validation("Session ID required"))
		return
	}

	ident, err := h.identity.SessionData(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, ErrInvalidSession) {
			apperr.Write(w, r, apperr.Unauthenticated("Invalid session"))
			return
		}
		apperr.Write(w, r, apperr.Upstream("Authentication failed", err))
		return
	}

	email, ok := normalizeEmail(ident.Email)
	if !ok {
		apperr.Write(w, r, apperr.Unauthenticated("Invalid session"))
		return
	}
	name := strings.TrimSpace(ident.Name)
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	var picture *string
	if ident.Picture != "" {
		picture = &ident.Picture
	}

	user, err := h.store.UpsertFederated(r.Context(), email, name, picture)
	if err != nil {
		apperr.Write(w, r, apperr.Internal(err))
		return
	}

	h.respondWithSession(w, r, user)
}

func (h *Handler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		apperr.Write(w, r, apperr.Unauthenticated("Not authenticated"))
		return
	}

	var req updatePasswordRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		apperr.Write(w, r, apperr.Validation("Invalid request body"))
		return
	}
	if len(req.NewPassword) < minPasswordLength {
		apperr.Write(w, r, apperr.Validation("Password must be at least 6 characters"))
		return
	}

	user, err := h.store.FindByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			apperr.Write(w, r, apperr.Unauthenticated("User not found"))
			return
		}
		apperr.Write(w, r, apperr.Internal(err))
		return
	}
	if user.HashedPassword == nil {
		apperr.Write(w, r, apperr.Validation("Password login is not enabled for this account"))
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(*user.HashedPassword), []byte(req.CurrentPassword)) != nil {
		apperr.Write(w, r, apperr.Unauthenticated("Invalid current password"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		apperr.Write(w, r, apperr.Internal(err))
		return
	}
	if err := h.store.UpdatePassword(r.Context(), userID, string(hashed)); err != nil {
		apperr.Write(w, r, apperr.Internal(err))
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Password updated"})
}

func (h *Handler) respondWithSession(w http.ResponseWriter, r *http.Request, user *User) {
	tok, _, err := h.codec.Issue(user.UserID)
	if err != nil {
		apperr.Write(w, r, apperr.Internal(err))
		return
	}

	http.SetCookie(w, h.cookie(tok, int(token.Lifetime/time.Second)))
	utils.WriteJSON(w, http.StatusOK, AuthResponse{
		UserID:    user.UserID,
		Email:     user.Email,
		Name:      user.Name,
		Picture:   user.Picture,
		IsPremium: user.IsPremium,
		Token:     tok,
	})
}

func (h *Handler) cookie(value string, maxAge int) *http.Cookie {
	sameSite := http.SameSiteLaxMode
	if h.cookieSecure {
		sameSite = http.SameSiteNoneMode
	}
	return &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: sameSite,
	}
}

func normalizeEmail(raw string) (string, bool) {
	email := strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return email, false
	}
	return email, true
}
