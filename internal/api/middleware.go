package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"courtside/team-ops/internal/domain"
	"courtside/team-ops/internal/service"

	"github.com/gin-gonic/gin"
)

// Constants for context keys
const (
	ContextUserIDKey   = "userID"
	ContextUserRoleKey = "userRole"
	ContextPlayerIDKey = "playerID"
)

// ClientIDHeader identifies the device a write or event stream belongs to.
const ClientIDHeader = "X-Client-ID"

// AuthMiddleware creates a Gin middleware for JWT authentication.
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			// EventSource cannot set headers, so streams may pass the token as a query parameter.
			if t := c.Query("access_token"); t != "" && strings.HasSuffix(c.FullPath(), "/events") {
				authHeader = "Bearer " + t
			}
		}
		if authHeader == "" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header is missing")
			return
		}

		// Expecting "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
			return
		}

		claims, err := authService.ParseToken(parts[1])
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, err.Error())
			return
		}

		c.Set(ContextUserIDKey, claims.UserID.Hex())
		c.Set(ContextUserRoleKey, claims.Role)
		c.Set(ContextPlayerIDKey, claims.PlayerID)
		c.Next()
	}
}

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

// RoleMiddleware creates middleware to check if user has the required role(s).
// Must run AFTER AuthMiddleware.
func RoleMiddleware(allowedRoles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, err := getUserRoleFromContext(c)
		if err != nil {
			abortWithError(c, http.StatusInternalServerError, err.Error())
			return
		}

		for _, allowedRole := range allowedRoles {
			if userRole == allowedRole {
				c.Next()
				return
			}
		}
		abortWithError(c, http.StatusForbidden, fmt.Sprintf("Access denied: Role '%s' does not have permission", userRole))
	}
}

// Helper function to get User ID from context (used by handlers)
func getUserIDFromContext(c *gin.Context) (string, error) {
	idRaw, exists := c.Get(ContextUserIDKey)
	if !exists {
		return "", errors.New("user ID not found in context")
	}
	idStr, ok := idRaw.(string)
	if !ok {
		return "", errors.New("invalid user ID type in context")
	}
	return idStr, nil
}

// Helper function to get User Role from context (used by handlers)
func getUserRoleFromContext(c *gin.Context) (domain.Role, error) {
	roleRaw, exists := c.Get(ContextUserRoleKey)
	if !exists {
		return "", errors.New("user role not found in context")
	}
	role, ok := roleRaw.(domain.Role)
	if !ok {
		return "", errors.New("invalid user role type in context")
	}
	return role, nil
}

// actingPlayer resolves whose answer a request records. Coaches may act for any player,
// players only for the roster entry linked to their account.
func actingPlayer(c *gin.Context, requested string) (string, bool) {
	role, err := getUserRoleFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return "", false
	}
	if role == domain.RoleCoach {
		if requested == "" {
			abortWithError(c, http.StatusBadRequest, "playerId is required")
			return "", false
		}
		return requested, true
	}
	own := c.GetString(ContextPlayerIDKey)
	if own == "" {
		abortWithError(c, http.StatusForbidden, "Account is not linked to a roster player")
		return "", false
	}
	if requested != "" && requested != own {
		abortWithError(c, http.StatusForbidden, "Players may only answer for themselves")
		return "", false
	}
	return own, true
}

// clientID names the calling device; writes without one are attributed to the server.
func clientID(c *gin.Context) string {
	if id := c.GetHeader(ClientIDHeader); id != "" {
		return id
	}
	if id := c.Query("clientId"); id != "" {
		return id
	}
	return service.ServerClientID
}
