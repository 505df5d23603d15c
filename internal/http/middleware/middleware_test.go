package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"report-service/internal/auth"
	"report-service/internal/model"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(60, 2)
	defer rl.Stop()

	ok, _ := rl.Allow("10.0.0.1")
	assert.True(t, ok)
	ok, _ = rl.Allow("10.0.0.1")
	assert.True(t, ok)

	ok, delay := rl.Allow("10.0.0.1")
	assert.False(t, ok)
	assert.Greater(t, delay, time.Duration(0))
	assert.LessOrEqual(t, delay, time.Second)

	ok, _ = rl.Allow("10.0.0.2")
	assert.True(t, ok, "buckets are per key")

	rl.Stop()
}

func newTestRouter(parser *auth.Parser) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	echo := func(c *gin.Context) {
		principal, _ := MustPrincipal(c)
		c.JSON(http.StatusOK, principal)
	}
	router.GET("/header", Auth(parser), echo)
	router.GET("/query", QueryAuth(parser), echo)
	router.GET("/admin", Auth(parser), RequireAdmin(), echo)
	return router
}

func serve(router *gin.Engine, path, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAuthMiddleware(t *testing.T) {
	parser := auth.NewParser("secret")
	router := newTestRouter(parser)

	counselor := model.Admin{ID: uuid.New(), Email: "k@qomarun.com", Name: "K", Role: model.AdminRoleCounselor}
	token, _, err := parser.Issue(counselor, time.Hour)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, serve(router, "/header", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, "/header", "Token "+token).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, "/header", "Bearer nope").Code)

	rec := serve(router, "/header", "bearer "+token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), counselor.ID.String())

	assert.Equal(t, http.StatusOK, serve(router, "/query?token="+token, "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, "/query", "").Code)

	assert.Equal(t, http.StatusForbidden, serve(router, "/admin", "Bearer "+token).Code)

	admin := model.Admin{ID: uuid.New(), Email: "a@qomarun.com", Name: "A", Role: model.AdminRoleAdmin}
	adminToken, _, err := parser.Issue(admin, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, serve(router, "/admin", "Bearer "+adminToken).Code)
}
