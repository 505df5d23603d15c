package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"report-service/internal/model"
)

func TestParser_IssueAndParse(t *testing.T) {
	parser := NewParser("secret")
	admin := model.Admin{ID: uuid.New(), Email: "bk@qomarun.com", Name: "Konselor", Role: model.AdminRoleCounselor}

	token, expiresAt, err := parser.Issue(admin, 30*time.Minute)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), expiresAt, 5*time.Second)

	claims, err := parser.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, claims.AdminID)
	assert.NotEqual(t, uuid.Nil, claims.SessionID)

	principal := claims.Principal()
	assert.Equal(t, model.AdminRoleCounselor, principal.Role)
	assert.True(t, principal.CanTriage())
	assert.False(t, principal.IsAdmin())
}

func TestParser_Rejects(t *testing.T) {
	parser := NewParser("secret")
	admin := model.Admin{ID: uuid.New(), Role: model.AdminRoleAdmin}

	t.Run("wrong secret", func(t *testing.T) {
		token, _, err := NewParser("other").Issue(admin, time.Hour)
		require.NoError(t, err)
		_, err = parser.Parse(token)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		past := NewParser("secret")
		past.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, _, err := past.Issue(admin, time.Hour)
		require.NoError(t, err)
		_, err = parser.Parse(token)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("unknown role", func(t *testing.T) {
		token, _, err := parser.Issue(model.Admin{ID: uuid.New(), Role: "STUDENT"}, time.Hour)
		require.NoError(t, err)
		_, err = parser.Parse(token)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := parser.Parse("not-a-token")
		assert.Error(t, err)
	})
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "s3cret!"))
	assert.False(t, CheckPassword(hash, "wrong"))
}
