package fiber

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rmarchant/tudu"
)

type Adapter struct {
	app *fiber.App
}

func New(app *fiber.App) *Adapter {
	return &Adapter{app: app}
}

func (a *Adapter) RegisterRoutes(t *tudu.Tudu) error {
	requireAuth := buildRequireAuth(t.Auth)

	a.app.Get("/healthz", handleHealth)

	// Public routes
	a.app.Post("/users", handleRegister(t.Auth))
	a.app.Post("/users/login", handleLogin(t.Auth))

	// Protected routes
	a.app.Get("/users/me", requireAuth, handleMe)
	a.app.Delete("/users/me/token", requireAuth, handleLogout(t.Auth))

	a.app.Post("/todos", requireAuth, handleCreateTodo(t.Todos))
	a.app.Get("/todos", requireAuth, handleListTodos(t.Todos))
	a.app.Get("/todos/:id", requireAuth, handleGetTodo(t.Todos))
	a.app.Patch("/todos/:id", requireAuth, handleUpdateTodo(t.Todos))
	a.app.Delete("/todos/:id", requireAuth, handleDeleteTodo(t.Todos))

	return nil
}

func handleHealth(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
