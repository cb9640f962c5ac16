package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/infrastructure/auth"
	"github.com/retailcore/backend/internal/infrastructure/config"
	"github.com/retailcore/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingRevocations struct{}

func (failingRevocations) Revoke(context.Context, string, time.Duration) error { return nil }
func (failingRevocations) IsRevoked(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func newJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret",
		Issuer:                "retailcore",
		AccessTokenExpiration: time.Hour,
	})
}

func actorRouter(cfg ActorConfig, seen *shared.Actor) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), Actor(cfg))
	r.GET("/api/v1/sales", func(c *gin.Context) {
		*seen = shared.ActorFromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func bearer(t *testing.T, svc *auth.JWTService) string {
	t.Helper()
	token, err := svc.GenerateToken("u-1", "maria")
	require.NoError(t, err)
	return BearerPrefix + token.AccessToken
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp.Error.Code
}

func TestActor_ValidTokenSetsActor(t *testing.T) {
	svc := newJWTService()
	var seen shared.Actor
	r := actorRouter(ActorConfig{JWTService: svc, Required: true}, &seen)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sales", nil)
	req.Header.Set(AuthHeaderKey, bearer(t, svc))
	w := serve(r, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u-1", seen.UserID)
	assert.Equal(t, "maria", seen.Username)
}

func TestActor_OptionalAllowsAnonymous(t *testing.T) {
	var seen shared.Actor
	r := actorRouter(ActorConfig{JWTService: newJWTService()}, &seen)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/sales", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, seen.UserID)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sales", nil)
	req.Header.Set(AuthHeaderKey, "Bearer garbage")
	w = serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, seen.UserID)
}

func TestActor_RequiredRejects(t *testing.T) {
	svc := newJWTService()
	var seen shared.Actor
	r := actorRouter(ActorConfig{JWTService: svc, Required: true, SkipPaths: []string{"/health"}}, &seen)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/sales", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, shared.CodeUnauthorized, errorCode(t, w))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sales", nil)
	req.Header.Set(AuthHeaderKey, "Token abc")
	w = serve(r, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeTokenInvalid, errorCode(t, w))

	w = serve(r, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestActor_RevokedToken(t *testing.T) {
	svc := newJWTService()
	revocations := auth.NewInMemoryRevocationList()
	var seen shared.Actor
	r := actorRouter(ActorConfig{JWTService: svc, Revocations: revocations, Required: true}, &seen)

	header := bearer(t, svc)
	claims, err := svc.ValidateToken(header[len(BearerPrefix):])
	require.NoError(t, err)
	require.NoError(t, revocations.Revoke(context.Background(), claims.ID, time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sales", nil)
	req.Header.Set(AuthHeaderKey, header)
	w := serve(r, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeTokenRevoked, errorCode(t, w))
}

func TestActor_RevocationLookupFailureRejects(t *testing.T) {
	svc := newJWTService()
	var seen shared.Actor
	r := actorRouter(ActorConfig{JWTService: svc, Revocations: failingRevocations{}, Required: true}, &seen)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sales", nil)
	req.Header.Set(AuthHeaderKey, bearer(t, svc))
	w := serve(r, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeTokenRevoked, errorCode(t, w))
}

func TestActor_NoSecretPassesThrough(t *testing.T) {
	var seen shared.Actor
	r := actorRouter(ActorConfig{
		JWTService: auth.NewJWTService(config.JWTConfig{}),
		Required:   true,
	}, &seen)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/sales", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetJWTClaims(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, GetJWTClaims(c))

	claims := &auth.Claims{UserID: "u-2"}
	c.Set(JWTClaimsKey, claims)
	assert.Same(t, claims, GetJWTClaims(c))
}
