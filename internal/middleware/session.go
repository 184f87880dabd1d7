package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
)

const sessionLocalsKey = "session_id"

// SessionConfig controls the anonymous session cookie.
type SessionConfig struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Session makes sure every request carries an anonymous session id. Widget
// state and downloads are keyed by it; there is no login behind it.
func Session(cfg SessionConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// The cookie value points into the request buffer, which fasthttp reuses.
		sessionID := utils.CopyString(c.Cookies(cfg.CookieName))
		if _, err := uuid.Parse(sessionID); err != nil {
			sessionID = uuid.New().String()
		}

		// Refresh on every request so an active session does not expire.
		c.Cookie(&fiber.Cookie{
			Name:     cfg.CookieName,
			Value:    sessionID,
			Path:     "/",
			MaxAge:   int(cfg.TTL.Seconds()),
			Secure:   cfg.Secure,
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})

		c.Locals(sessionLocalsKey, sessionID)
		return c.Next()
	}
}

// SessionID returns the id set by Session, or "" outside of it.
func SessionID(c *fiber.Ctx) string {
	sessionID, _ := c.Locals(sessionLocalsKey).(string)
	return sessionID
}
