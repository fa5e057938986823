package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func runAuthenticated(t *testing.T, authorization string) (*httptest.ResponseRecorder, int) {
	t.Helper()
	auth := NewAuthenticator(testSecret)

	var capturedID int
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := GetUserIDFromContext(r.Context())
		require.NoError(t, err)
		capturedID = id
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	auth.Authenticate(next).ServeHTTP(rec, req)
	return rec, capturedID
}

func TestAuthenticateValidToken(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"sub": float64(42),
		"exp": time.Now().Add(time.Hour).Unix(),
	}, testSecret)

	rec, userID := runAuthenticated(t, "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 42, userID)
}

func TestAuthenticateStringSubject(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"sub": "17",
		"exp": time.Now().Add(time.Hour).Unix(),
	}, testSecret)

	rec, userID := runAuthenticated(t, "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 17, userID)
}

func TestAuthenticateMissingHeader(t *testing.T) {
	rec, _ := runAuthenticated(t, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateWrongSecret(t *testing.T) {
	token := signToken(t, jwt.MapClaims{"sub": float64(42)}, "other-secret")

	rec, _ := runAuthenticated(t, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateExpiredToken(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"sub": float64(42),
		"exp": time.Now().Add(-time.Hour).Unix(),
	}, testSecret)

	rec, _ := runAuthenticated(t, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateMissingSubject(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}, testSecret)

	rec, _ := runAuthenticated(t, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetUserIDFromContextWithoutAuth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := GetUserIDFromContext(req.Context())
	assert.ErrorIs(t, err, ErrNoUserInContext)
}
