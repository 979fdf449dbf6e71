package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kindred-stories/kindred/internal/auth"
	_ "github.com/kindred-stories/kindred/testing"
)

func newService() *auth.Service {
	return auth.NewService("test-secret", "kindred-auth", "authenticated")
}

func TestVerifyRoundTrip(t *testing.T) {
	svc := newService()
	want := auth.Identity{UserID: uuid.NewString(), Email: "mod@kindred.test", LegacyRole: "moderator"}

	token, err := svc.Issue(want, time.Hour)
	require.NoError(t, err)

	got, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	svc := newService()
	id := auth.Identity{UserID: uuid.NewString(), LegacyRole: "admin"}

	expired, err := svc.Issue(id, -time.Minute)
	require.NoError(t, err)
	_, err = svc.Verify(expired)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	foreign, err := auth.NewService("other-secret", "kindred-auth", "authenticated").Issue(id, time.Hour)
	require.NoError(t, err)
	_, err = svc.Verify(foreign)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	wrongAudience, err := auth.NewService("test-secret", "kindred-auth", "anon").Issue(id, time.Hour)
	require.NoError(t, err)
	_, err = svc.Verify(wrongAudience)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	_, err = svc.Verify("")
	assert.ErrorIs(t, err, auth.ErrMissingToken)
}

func TestVerifyRejectsNonUUIDSubject(t *testing.T) {
	svc := newService()
	token, err := svc.Issue(auth.Identity{UserID: "42", LegacyRole: "admin"}, time.Hour)
	require.NoError(t, err)
	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifyRejectsUnexpectedAlgorithm(t *testing.T) {
	claims := auth.Claims{
		UserRole: "super_admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			Issuer:    "kindred-auth",
			Audience:  jwt.ClaimStrings{"authenticated"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = newService().Verify(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestRequireBearer(t *testing.T) {
	svc := newService()
	mw := auth.Middleware{Service: svc}
	var seen auth.Identity
	handler := mw.RequireBearer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.IdentityFromContext(r.Context())
		require.True(t, ok)
		seen = id
		w.WriteHeader(http.StatusNoContent)
	}))

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/admin/me", nil))
	assert.Equal(t, http.StatusUnauthorized, res.Code)
	assert.Contains(t, res.Body.String(), "Unauthorized")

	id := auth.Identity{UserID: uuid.NewString(), Email: "owner@kindred.test", LegacyRole: "super_admin"}
	token, err := svc.Issue(id, time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/admin/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	res = httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	assert.Equal(t, http.StatusNoContent, res.Code)
	assert.Equal(t, id, seen)
}
