package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/danLeBrown/tripple-t-backend-sub000/internal/domain"
	"github.com/danLeBrown/tripple-t-backend-sub000/internal/service"
	"github.com/danLeBrown/tripple-t-backend-sub000/pkg/response"
)

const (
	// ContextUserID is the gin context key holding the authenticated user id.
	ContextUserID = "user_id"
	// ContextUserRole is the gin context key holding the token role flag.
	ContextUserRole = "user_role"
	// ContextAccessToken is the gin context key holding the raw bearer token.
	ContextAccessToken = "access_token"
)

// Auth validates the bearer access token and stores its claims on the
// context. Refresh tokens are rejected here even though they carry the same
// signature.
func Auth(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			response.Unauthorized(c, "Authorization header is required")
			c.Abort()
			return
		}

		claims, err := authService.ValidateAccessToken(token)
		if err != nil {
			switch {
			case err == domain.ErrTokenExpired:
				response.Unauthorized(c, "Token has expired")
			case err == domain.ErrWrongTokenType:
				response.Unauthorized(c, "Access token required")
			default:
				response.Unauthorized(c, "Invalid token")
			}
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserRole, string(claims.Role))
		c.Set(ContextAccessToken, token)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
