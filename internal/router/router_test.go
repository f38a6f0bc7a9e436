package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrimap/internal/auth"
	apperrors "agrimap/internal/errors"
	"agrimap/internal/service"
)

// memoryRevocations is an in-memory RevocationStore for middleware tests.
type memoryRevocations struct {
	revoked map[string]bool
}

func newMemoryRevocations() *memoryRevocations {
	return &memoryRevocations{revoked: map[string]bool{}}
}

func (s *memoryRevocations) Revoke(_ context.Context, tokenID string, _ time.Duration) error {
	s.revoked[tokenID] = true
	return nil
}

func (s *memoryRevocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	return s.revoked[tokenID], nil
}

// invokeSecured runs a request through the JWT middleware and revocation guard
// exactly as Register chains them for secured routes.
func invokeSecured(t *testing.T, jwtService *auth.JWTService, store auth.RevocationStore, authHeader string) (*httptest.ResponseRecorder, error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := jwtMiddleware(jwtService)(revocationGuard(store)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}))
	return rec, h(c)
}

func errorCode(t *testing.T, err error) (int, string) {
	t.Helper()
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	resp, ok := httpErr.Message.(apperrors.ErrorResponse)
	require.True(t, ok, "expected ErrorResponse message, got %T", httpErr.Message)
	return httpErr.Code, resp.Code
}

func TestSecuredMiddleware_AcceptsValidToken(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", time.Hour)
	token, err := jwtService.Issue(3, "a@b.com", "User")
	require.NoError(t, err)

	rec, err := invokeSecured(t, jwtService, newMemoryRevocations(), "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestSecuredMiddleware_RejectsRevokedToken(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", time.Hour)
	token, err := jwtService.Issue(3, "a@b.com", "User")
	require.NoError(t, err)
	claims, err := jwtService.Verify(token)
	require.NoError(t, err)

	store := newMemoryRevocations()
	require.NoError(t, store.Revoke(context.Background(), claims.ID, time.Hour))

	// The token has not expired, yet it no longer passes.
	_, err = invokeSecured(t, jwtService, store, "Bearer "+token)
	status, code := errorCode(t, err)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "TOKEN_REVOKED", code)
}

func TestSecuredMiddleware_RevokedViaLogout(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", time.Hour)
	token, err := jwtService.Issue(5, "a@b.com", "User")
	require.NoError(t, err)

	store := newMemoryRevocations()
	authService := service.NewAuthService(nil, jwtService, store)

	// Accepted before logout.
	rec, err := invokeSecured(t, jwtService, store, "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, authService.Logout(context.Background(), token))

	// Rejected after, well before expiry.
	_, err = invokeSecured(t, jwtService, store, "Bearer "+token)
	status, code := errorCode(t, err)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "TOKEN_REVOKED", code)
}

func TestSecuredMiddleware_MissingToken(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", time.Hour)

	_, err := invokeSecured(t, jwtService, newMemoryRevocations(), "")
	status, code := errorCode(t, err)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "TOKEN_MISSING", code)
}

func TestSecuredMiddleware_MalformedToken(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", time.Hour)

	_, err := invokeSecured(t, jwtService, newMemoryRevocations(), "Bearer not-a-jwt")
	status, code := errorCode(t, err)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "TOKEN_INVALID", code)
}

func TestSecuredMiddleware_ExpiredToken(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", time.Nanosecond)
	token, err := jwtService.Issue(3, "a@b.com", "User")
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	_, err = invokeSecured(t, jwtService, newMemoryRevocations(), "Bearer "+token)
	status, code := errorCode(t, err)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "TOKEN_EXPIRED", code)
}
