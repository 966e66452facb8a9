package middleware

import (
	"time"

	"shoplite/internal/session"

	"github.com/gofiber/fiber/v2"
)

const (
	// SessionHeader carries the session id on requests and responses.
	SessionHeader = "X-Session-ID"
	// SessionCookie is the cookie fallback for browsers.
	SessionCookie = "shoplite_session"

	sessionLocalsKey = "session"
)

// SessionRequired attaches the caller's session to the request, starting a
// new one when the request carries no known session id.
func SessionRequired(store *session.Store, ttl time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(SessionHeader)
		if id == "" {
			id = c.Cookies(SessionCookie)
		}

		sess, _ := store.GetOrCreate(id)

		c.Set(SessionHeader, sess.ID)
		cookie := &fiber.Cookie{
			Name:     SessionCookie,
			Value:    sess.ID,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		}
		if ttl > 0 {
			cookie.Expires = time.Now().Add(ttl)
		}
		c.Cookie(cookie)

		// Store the session in Fiber context for subsequent handlers
		c.Locals(sessionLocalsKey, sess)
		return c.Next()
	}
}

// CurrentSession returns the session attached by SessionRequired.
func CurrentSession(c *fiber.Ctx) *session.Session {
	sess, _ := c.Locals(sessionLocalsKey).(*session.Session)
	return sess
}
