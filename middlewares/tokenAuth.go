package middlewares

import (
	"SalvadoDental/utils"
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ContextKey defines a custom context key type to store profile details in the context.
type contextKey string

const (
	profileIDKey   contextKey = "profileID"
	profileRoleKey contextKey = "profileRole"
)

// AccessTokenQueryParam is the query parameter carrying the session token.
const AccessTokenQueryParam = "accessToken"

// TokenAuthMiddleware validates the session token and adds profile details to the request context.
func TokenAuthMiddleware(tokens *utils.TokenMaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := AccessTokenFromRequest(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing access token"})
			c.Abort()
			return
		}

		claims, err := tokens.ValidateToken(token, utils.AccessTokenType)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(WithProfile(c.Request.Context(), claims.UserID, claims.Role))
		c.Next()
	}
}

// RoleAuthMiddleware restricts access to profiles holding one of roles.
func RoleAuthMiddleware(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := ExtractProfileRoleFromContext(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Profile role not found in context"})
			c.Abort()
			return
		}

		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden: insufficient privileges"})
		c.Abort()
	}
}

// AccessTokenFromRequest reads the session token from the query string, falling back to the cookie.
func AccessTokenFromRequest(c *gin.Context) string {
	if token := c.Query(AccessTokenQueryParam); token != "" {
		return token
	}
	if token, err := c.Cookie(utils.AccessTokenCookie); err == nil {
		return token
	}
	return ""
}

// WithProfile stores the authenticated profile in ctx.
func WithProfile(ctx context.Context, profileID, role string) context.Context {
	ctx = context.WithValue(ctx, profileIDKey, profileID)
	return context.WithValue(ctx, profileRoleKey, role)
}

// ExtractProfileIDFromContext retrieves the profile ID from the context.
func ExtractProfileIDFromContext(ctx context.Context) (string, error) {
	profileID, ok := ctx.Value(profileIDKey).(string)
	if !ok || profileID == "" {
		return "", errors.New("profile ID not found in context")
	}
	return profileID, nil
}

// ExtractProfileRoleFromContext retrieves the profile role from the context.
func ExtractProfileRoleFromContext(ctx context.Context) (string, error) {
	role, ok := ctx.Value(profileRoleKey).(string)
	if !ok || role == "" {
		return "", errors.New("profile role not found in context")
	}
	return role, nil
}
