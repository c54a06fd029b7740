package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err  *Error
		want int
	}{
		{Validation("bad"), http.StatusBadRequest},
		{Unauthenticated("Not authenticated"), http.StatusUnauthorized},
		{Forbidden("Premium subscription required"), http.StatusForbidden},
		{NotFound("Bookmark not found"), http.StatusNotFound},
		{Conflict("dup"), http.StatusConflict},
		{Unavailable("off"), http.StatusServiceUnavailable},
		{Upstream("Payment provider error", errors.New("timeout")), http.StatusInternalServerError},
		{Internal(errors.New("db down")), http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.err.Status(), c.err.Error())
	}
}

func TestAs_WrappedAndPlain(t *testing.T) {
	wrapped := fmt.Errorf("create bookmark: %w", NotFound("Bookmark not found"))
	assert.Equal(t, KindNotFound, As(wrapped).Kind)
	assert.True(t, Is(wrapped, KindNotFound))

	plain := errors.New("boom")
	got := As(plain)
	assert.Equal(t, KindInternal, got.Kind)
	assert.ErrorIs(t, got, plain)
}

func TestWrite_HidesInternalCause(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rec := httptest.NewRecorder()

	Write(rec, req, errors.New("pq: connection refused"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var got map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "Internal server error", got["detail"])
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestWrite_ClientError(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rec := httptest.NewRecorder()

	Write(rec, req, Forbidden("Premium subscription required"))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"detail":"Premium subscription required","code":"forbidden"}`, rec.Body.String())
}
