package middleware

import (
	"net/http"

	"github.com/ds124wfegd/negative-web/internal/service"
	"github.com/ds124wfegd/negative-web/internal/store"
	"github.com/gin-gonic/gin"
)

const sessionKey = "session"

// Session resolves the visitor's session from cookie and keeps the cookie
// pointed at it.
func Session(sessions service.SessionService, cookie string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := c.Cookie(cookie)
		sess := sessions.Resolve(c.Request.Context(), id)
		if sess.ID != id {
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(cookie, sess.ID, 0, "/", "", false, true)
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

func CurrentSession(c *gin.Context) *store.Session {
	return c.MustGet(sessionKey).(*store.Session)
}

// SessionID returns the id of the request's session, or "" before Session
// has run.
func SessionID(c *gin.Context) string {
	if v, ok := c.Get(sessionKey); ok {
		if sess, ok := v.(*store.Session); ok {
			return sess.ID
		}
	}
	return ""
}
