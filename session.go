package identity

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// SessionCookieName is the default cookie carrying the opaque session
// token.
const SessionCookieName = "identity.session-token"

// NewSessionResolver returns a SessionResolver backed by the adapter's
// session store. Browser clients present the session cookie; a bearer
// token in the Authorization header works for everything else. Expired
// sessions resolve to nil, same as no session at all.
func NewSessionResolver(store *Adapter, cookieName string) SessionResolver {
	if cookieName == "" {
		cookieName = SessionCookieName
	}

	return func(c *fiber.Ctx) (*User, error) {
		token := c.Cookies(cookieName)
		if token == "" {
			header := c.Get(fiber.HeaderAuthorization)
			if strings.HasPrefix(header, "Bearer ") {
				token = strings.TrimPrefix(header, "Bearer ")
			}
		}
		if token == "" {
			return nil, nil
		}

		session, user, err := store.GetSessionWithUser(c.UserContext(), token)
		if err != nil {
			return nil, err
		}
		if session == nil || time.Now().After(session.Expires) {
			return nil, nil
		}

		return user, nil
	}
}
