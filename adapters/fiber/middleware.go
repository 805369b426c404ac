package fiber

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rmarchant/tudu"
)

// HeaderAuth is the request and response header carrying the session token.
const HeaderAuth = "x-auth"

// Context keys used by buildRequireAuth.
const (
	localUser  = "user"
	localToken = "token"
)

// buildRequireAuth creates a Fiber middleware that resolves the x-auth
// token into a user and stores user/token in the context for downstream
// handlers. Every request re-resolves against the store; a revoked token
// fails here even though its signature still verifies.
func buildRequireAuth(auth *tudu.AuthService) fiber.Handler {
	return func(c fiber.Ctx) error {
		token := c.Get(HeaderAuth)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": tudu.ErrMissingAuthHeader.Error(),
			})
		}

		sessionData, err := auth.GetSession(token)
		if err != nil {
			// Always the same body: the client learns nothing about
			// whether the token was malformed, forged or revoked.
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": tudu.ErrInvalidToken.Error(),
			})
		}

		c.Locals(localUser, sessionData.User)
		c.Locals(localToken, sessionData.Token)

		return c.Next()
	}
}

func currentUser(c fiber.Ctx) *tudu.User {
	return c.Locals(localUser).(*tudu.User)
}

func currentToken(c fiber.Ctx) string {
	return c.Locals(localToken).(string)
}
