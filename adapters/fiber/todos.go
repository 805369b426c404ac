package fiber

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rmarchant/tudu"
)

type createTodoInput struct {
	Text string `json:"text"`
}

// handleCreateTodo returns a handler for POST /todos.
func handleCreateTodo(todos *tudu.TodoService) fiber.Handler {
	return func(c fiber.Ctx) error {
		var input createTodoInput
		if err := c.Bind().Body(&input); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}

		todo, err := todos.Create(currentUser(c).ID, input.Text)
		if err != nil {
			return handleError(c, err)
		}

		return c.Status(fiber.StatusOK).JSON(todo)
	}
}

// handleListTodos returns a handler for GET /todos. Only the caller's own
// todos are visible.
func handleListTodos(todos *tudu.TodoService) fiber.Handler {
	return func(c fiber.Ctx) error {
		list, err := todos.List(currentUser(c).ID)
		if err != nil {
			return handleError(c, err)
		}

		return c.Status(fiber.StatusOK).JSON(fiber.Map{"todos": list})
	}
}

// handleGetTodo returns a handler for GET /todos/:id. Malformed ids,
// missing records and records owned by someone else all answer 404.
func handleGetTodo(todos *tudu.TodoService) fiber.Handler {
	return func(c fiber.Ctx) error {
		todo, err := todos.Get(c.Params("id"), currentUser(c).ID)
		if err != nil {
			return handleError(c, err)
		}

		return c.Status(fiber.StatusOK).JSON(fiber.Map{"todo": todo})
	}
}

// handleUpdateTodo returns a handler for PATCH /todos/:id.
func handleUpdateTodo(todos *tudu.TodoService) fiber.Handler {
	return func(c fiber.Ctx) error {
		var input tudu.UpdateTodoInput
		if err := c.Bind().Body(&input); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}

		todo, err := todos.Update(c.Params("id"), currentUser(c).ID, input)
		if err != nil {
			return handleError(c, err)
		}

		return c.Status(fiber.StatusOK).JSON(fiber.Map{"todo": todo})
	}
}

// handleDeleteTodo returns a handler for DELETE /todos/:id. The deleted
// record is echoed back.
func handleDeleteTodo(todos *tudu.TodoService) fiber.Handler {
	return func(c fiber.Ctx) error {
		todo, err := todos.Delete(c.Params("id"), currentUser(c).ID)
		if err != nil {
			return handleError(c, err)
		}

		return c.Status(fiber.StatusOK).JSON(fiber.Map{"todo": todo})
	}
}
