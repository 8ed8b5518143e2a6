package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/forum-inscriptions-api/pkg/errors"
	"github.com/noah-isme/forum-inscriptions-api/pkg/response"
)

type sessionVerifier interface {
	Verify(token string) error
}

// Session protects admin routes. The marker is read from a bearer header
// first, then from the session cookie.
func Session(verifier sessionVerifier, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := SessionToken(c, cookieName)
		if token == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			return
		}
		if err := verifier.Verify(token); err != nil {
			response.Error(c, err)
			return
		}
		c.Next()
	}
}

// SessionToken extracts the marker from the request, or "".
func SessionToken(c *gin.Context, cookieName string) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookie, err := c.Cookie(cookieName); err == nil {
		return cookie
	}
	return ""
}
