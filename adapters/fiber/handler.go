package fiber

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v3"

	"github.com/rmarchant/tudu"
)

type credentialsInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleRegister returns a handler for POST /users. On success the fresh
// session token travels in the x-auth response header and the body is the
// sanitized user.
func handleRegister(auth *tudu.AuthService) fiber.Handler {
	return func(c fiber.Ctx) error {
		var input credentialsInput
		if err := c.Bind().Body(&input); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}

		result, err := auth.Register(input.Email, input.Password)
		if err != nil {
			return handleError(c, err)
		}

		c.Set(HeaderAuth, result.Token)
		return c.Status(fiber.StatusOK).JSON(result.User)
	}
}

// handleLogin returns a handler for POST /users/login.
func handleLogin(auth *tudu.AuthService) fiber.Handler {
	return func(c fiber.Ctx) error {
		var input credentialsInput
		if err := c.Bind().Body(&input); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}

		result, err := auth.Login(input.Email, input.Password)
		if err != nil {
			return handleError(c, err)
		}

		c.Set(HeaderAuth, result.Token)
		return c.Status(fiber.StatusOK).JSON(result.User)
	}
}

// handleMe returns the sanitized user resolved by the auth middleware.
func handleMe(c fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(currentUser(c))
}

// handleLogout revokes the exact token the request authenticated with.
func handleLogout(auth *tudu.AuthService) fiber.Handler {
	return func(c fiber.Ctx) error {
		user := currentUser(c)
		token := currentToken(c)

		if err := auth.Logout(user.ID, token); err != nil {
			return handleError(c, err)
		}

		return c.SendStatus(fiber.StatusOK)
	}
}

// handleError maps service errors to HTTP responses.
func handleError(c fiber.Ctx, err error) error {
	status := mapErrorToStatus(err)
	return c.Status(status).JSON(fiber.Map{
		"error": clientMessage(err),
	})
}

// clientErrors are the only errors whose text reaches a response body.
var clientErrors = []error{
	tudu.ErrEmailTaken,
	tudu.ErrInvalidCredentials,
	tudu.ErrMissingAuthHeader,
	tudu.ErrInvalidToken,
	tudu.ErrEmailRequired,
	tudu.ErrEmailTooShort,
	tudu.ErrInvalidEmail,
	tudu.ErrPasswordRequired,
	tudu.ErrPasswordTooShort,
	tudu.ErrTextRequired,
	tudu.ErrTodoNotFound,
}

func clientMessage(err error) string {
	for _, known := range clientErrors {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	// Internal store failures leak nothing
	return "request failed"
}

// mapErrorToStatus maps service error kinds to HTTP status codes.
func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, tudu.ErrMissingAuthHeader),
		errors.Is(err, tudu.ErrInvalidToken):
		return http.StatusUnauthorized

	case errors.Is(err, tudu.ErrTodoNotFound):
		return http.StatusNotFound

	default:
		// Validation failures, duplicate email, bad credentials and
		// unexpected store failures all surface as 400.
		return http.StatusBadRequest
	}
}
