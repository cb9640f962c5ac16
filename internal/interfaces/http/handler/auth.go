package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/infrastructure/auth"
	"github.com/retailcore/backend/internal/infrastructure/logger"
	"github.com/retailcore/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// AuthHandler handles token revocation. Tokens are issued outside this
// service.
type AuthHandler struct {
	BaseHandler
	revocations auth.RevocationList
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(revocations auth.RevocationList) *AuthHandler {
	return &AuthHandler{revocations: revocations}
}

// Logout revokes the bearer token of the request until it would have
// expired anyway
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil || claims.ID == "" {
		h.Error(c, shared.CodeUnauthorized, "A valid bearer token is required")
		return
	}

	if err := h.revocations.Revoke(c.Request.Context(), claims.ID, claims.RemainingTTL()); err != nil {
		h.HandleError(c, err)
		return
	}
	logger.L(c.Request.Context()).Info("Token revoked",
		zap.String("user_id", claims.UserID),
		zap.String("jti", claims.ID),
	)
	h.NoContent(c)
}
