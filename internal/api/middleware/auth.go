// server/internal/api/middleware/auth.go
package middleware

import (
	"context"
	"strings"

	"coffee-os-api-server/internal/apperror"
	"coffee-os-api-server/internal/auth"

	"github.com/gin-gonic/gin"
)

const (
	ContextClaims = "claims"
	ContextUserID = "user_id"
	ContextRole   = "user_role"
)

// TokenVerifier parses a bearer token and rejects revoked ones.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*auth.JWTClaims, error)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(header string) (string, bool) {
	token, ok := strings.CutPrefix(header, "Bearer ")
	token = strings.TrimSpace(token)
	return token, ok && token != ""
}

// Authenticate rejects requests without a valid bearer token and stores the
// claims in the context.
func Authenticate(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c.GetHeader("Authorization"))
		if !ok {
			abort(c, apperror.ErrNoToken)
			return
		}

		claims, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			abort(c, err)
			return
		}

		SetClaims(c, claims)
		c.Next()
	}
}

// SetClaims stores the authenticated identity in the context.
func SetClaims(c *gin.Context, claims *auth.JWTClaims) {
	c.Set(ContextClaims, claims)
	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextRole, claims.Role)
}

// Claims returns the claims set by Authenticate.
func Claims(c *gin.Context) (*auth.JWTClaims, bool) {
	v, ok := c.Get(ContextClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.JWTClaims)
	return claims, ok
}

// Authorize only lets through users holding one of allowedRoles. It must run
// after Authenticate.
func Authorize(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole := c.GetString(ContextRole)
		for _, role := range allowedRoles {
			if role == userRole {
				c.Next()
				return
			}
		}
		abort(c, apperror.ErrForbiddenRole)
	}
}

func abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
