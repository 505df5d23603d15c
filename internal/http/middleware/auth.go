package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"report-service/internal/auth"
	"report-service/internal/model"
)

const (
	authorizationHeader = "Authorization"
	bearerPrefix        = "Bearer"
	tokenQueryParam     = "token"
	principalContextKey = "principal"
)

// Auth verifies the bearer token on every request.
func Auth(parser *auth.Parser) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(authorizationHeader)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header missing"})
			return
		}
		parts := strings.SplitN(raw, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}
		authenticate(c, parser, parts[1])
	}
}

// QueryAuth reads the token from the query string. Browsers cannot set headers
// on a websocket handshake.
func QueryAuth(parser *auth.Parser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.Query(tokenQueryParam))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token missing"})
			return
		}
		authenticate(c, parser, token)
	}
}

func authenticate(c *gin.Context, parser *auth.Parser, token string) {
	claims, err := parser.Parse(token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	c.Set(principalContextKey, claims.Principal())
	c.Next()
}

// RequireAdmin lets only the ADMIN role through. It must run after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := MustPrincipal(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "principal missing"})
			return
		}
		if !principal.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "permission denied"})
			return
		}
		c.Next()
	}
}

func MustPrincipal(c *gin.Context) (model.Principal, bool) {
	value, exists := c.Get(principalContextKey)
	if !exists {
		return model.Principal{}, false
	}
	principal, ok := value.(model.Principal)
	if !ok {
		return model.Principal{}, false
	}
	return principal, true
}
