package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/infrastructure/auth"
	"github.com/retailcore/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey  = "jwt_claims"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// ActorConfig configures the bearer token middleware
type ActorConfig struct {
	JWTService *auth.JWTService
	// Revocations is optional
	Revocations auth.RevocationList
	// Required rejects anonymous and invalid tokens with 401. Otherwise
	// both fall through as anonymous.
	Required  bool
	SkipPaths []string
	Logger    *zap.Logger
}

// Actor resolves the acting user from an optional bearer token and stores it
// on the request context with shared.WithActor.
func Actor(cfg ActorConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if cfg.JWTService == nil || !cfg.JWTService.Enabled() {
			c.Next()
			return
		}
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		header := c.GetHeader(AuthHeaderKey)
		if header == "" {
			if cfg.Required {
				abortUnauthorized(c, shared.CodeUnauthorized, "Authentication required")
				return
			}
			c.Next()
			return
		}

		claims, err := validateBearer(c, cfg, header)
		if err != nil {
			cfg.Logger.Debug("Bearer token rejected",
				zap.Error(err),
				zap.String("path", c.Request.URL.Path),
			)
			if cfg.Required {
				code, message := authErrorCode(err)
				abortUnauthorized(c, code, message)
				return
			}
			c.Next()
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Request = c.Request.WithContext(shared.WithActor(c.Request.Context(), claims.Actor()))
		c.Next()
	}
}

func validateBearer(c *gin.Context, cfg ActorConfig, header string) (*auth.Claims, error) {
	if !strings.HasPrefix(header, BearerPrefix) {
		return nil, auth.ErrInvalidToken
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
	if token == "" {
		return nil, auth.ErrInvalidToken
	}

	claims, err := cfg.JWTService.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	if cfg.Revocations != nil && claims.ID != "" {
		revoked, err := cfg.Revocations.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			// an unreadable revocation list counts as revoked
			cfg.Logger.Warn("Failed to check token revocation", zap.Error(err))
			return nil, auth.ErrTokenRevoked
		}
		if revoked {
			return nil, auth.ErrTokenRevoked
		}
	}
	return claims, nil
}

func authErrorCode(err error) (string, string) {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrTokenRevoked):
		return dto.ErrCodeTokenRevoked, "Token has been revoked"
	default:
		return dto.ErrCodeTokenInvalid, "Invalid token"
	}
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}

// GetJWTClaims returns the validated claims or nil for anonymous requests
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(JWTClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}
