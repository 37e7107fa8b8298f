package middlewares

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/prabhdip/recipebox/internal/domain/user"
	"github.com/prabhdip/recipebox/internal/session"
)

// Small interface so tests can fake the user lookup.
type UserGetter interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

type SessionAuth struct {
	sessions session.Store
	users    UserGetter
}

func NewSessionAuth(sessions session.Store, users UserGetter) *SessionAuth {
	return &SessionAuth{sessions: sessions, users: users}
}

// RequireSession resolves the session cookie before any domain logic runs.
// Absent cookie, unknown token, or a token pointing at a deleted user all
// abort with 401.
func (m *SessionAuth) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(session.CookieName)

		if err != nil || token == "" {
			abortUnauthorized(c)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		userID, err := m.sessions.Get(ctx, token)

		if err != nil {
			abortUnauthorized(c)
			return
		}

		u, err := m.users.GetByID(ctx, userID)

		if err != nil {
			abortUnauthorized(c)
			return
		}

		c.Set(ctxUserIDKey, u.ID)
		c.Set(ctxUserKey, u)

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":    "unauthorized",
			"message": "Not authorized",
		},
	})
}

// Helpers so handlers don't need to know the magic keys.

func UserIDFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxUserIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}

func UserFromContext(c *gin.Context) (user.User, bool) {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return user.User{}, false
	}
	u, ok := v.(user.User)
	return u, ok
}
