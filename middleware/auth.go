package middleware

import (
	"context"
	"net/http"
	"strings"

	"farmconnect/models"
	"farmconnect/utils"

	"github.com/gin-gonic/gin"
)

const (
	ContextClaims = "claims"
	ContextToken  = "token"
)

// Authenticator checks a bearer token against the accepted scopes.
type Authenticator interface {
	Authenticate(ctx context.Context, token string, scopes ...string) (*utils.Claims, error)
}

// AuthMiddleware requires a bearer token. Without scopes only session tokens
// pass.
func AuthMiddleware(auth Authenticator, scopes ...string) gin.HandlerFunc {
	if len(scopes) == 0 {
		scopes = []string{utils.ScopeSession}
	}
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Success: false,
				Message: "Authorization header required",
			})
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Success: false,
				Message: "Invalid authorization header format",
			})
			return
		}

		claims, err := auth.Authenticate(c.Request.Context(), tokenParts[1], scopes...)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Success: false,
				Message: "Invalid or expired token",
				Error:   err.Error(),
			})
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)
		c.Set("user_role", claims.Role)
		c.Set(ContextClaims, claims)
		c.Set(ContextToken, tokenParts[1])
		c.Next()
	}
}

// RequireRole lets through only accounts whose role is one of roles. It must
// run after AuthMiddleware.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("user_role")
		if !exists {
			c.AbortWithStatusJSON(http.StatusForbidden, models.ErrorResponse{
				Success: false,
				Message: "User role not found",
			})
			return
		}

		for _, r := range roles {
			if role == string(r) {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, models.ErrorResponse{
			Success: false,
			Message: "Access denied. " + string(roles[0]) + " role required",
		})
	}
}

// Claims returns the claims AuthMiddleware stored, or nil.
func Claims(c *gin.Context) *utils.Claims {
	v, ok := c.Get(ContextClaims)
	if !ok {
		return nil
	}
	claims, _ := v.(*utils.Claims)
	return claims
}
