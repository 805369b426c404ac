package fiber

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/require"

	"github.com/rmarchant/tudu"
	"github.com/rmarchant/tudu/adapters/memory"
)

const testSecret = "01234567890123456789012345678901"

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	hasher := tudu.NewBcrypt()
	hasher.Cost = 4 // keep the suite fast

	instance, err := tudu.New(tudu.Config{
		Secret:         testSecret,
		Database:       memory.New(),
		PasswordHasher: hasher,
	})
	require.NoError(t, err)

	app := fiber.New()
	require.NoError(t, New(app).RegisterRoutes(instance))
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(HeaderAuth, token)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) []byte {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if out != nil {
		require.NoError(t, json.Unmarshal(raw, out))
	}
	return raw
}

type userBody struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type todoBody struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	Completed   bool   `json:"completed"`
	CompletedAt *int64 `json:"completedAt"`
	OwnerID     string `json:"ownerId"`
}

func registerUser(t *testing.T, app *fiber.App, email, password string) (userBody, string) {
	t.Helper()

	resp := doJSON(t, app, http.MethodPost, "/users", "", fiber.Map{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	token := resp.Header.Get(HeaderAuth)
	require.NotEmpty(t, token)

	var user userBody
	decodeBody(t, resp, &user)
	return user, token
}

func createTodo(t *testing.T, app *fiber.App, token, text string) todoBody {
	t.Helper()

	resp := doJSON(t, app, http.MethodPost, "/todos", token, fiber.Map{"text": text})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var todo todoBody
	decodeBody(t, resp, &todo)
	return todo
}

func TestRegisterThenCreateThenList(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	user, token := registerUser(t, app, "a@b.com", "123456")
	require.Equal(t, "a@b.com", user.Email)
	require.NotEmpty(t, user.ID)

	todo := createTodo(t, app, token, "x")
	require.Equal(t, "x", todo.Text)
	require.False(t, todo.Completed)
	require.Nil(t, todo.CompletedAt)
	require.Equal(t, user.ID, todo.OwnerID)

	resp := doJSON(t, app, http.MethodGet, "/todos", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list struct {
		Todos []todoBody `json:"todos"`
	}
	decodeBody(t, resp, &list)
	require.Len(t, list.Todos, 1)
	require.Equal(t, "x", list.Todos[0].Text)
}

func TestRegister_NeverLeaksCredentialMaterial(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/users", "", fiber.Map{
		"email":    "a@b.com",
		"password": "123456",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw := decodeBody(t, resp, nil)
	require.NotContains(t, string(raw), "password")
	require.NotContains(t, string(raw), "123456")
	require.NotContains(t, string(raw), "tokens")
}

func TestRegister_Failures(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	registerUser(t, app, "taken@b.com", "123456")

	tests := []struct {
		name string
		body fiber.Map
	}{
		{name: "duplicate email", body: fiber.Map{"email": "taken@b.com", "password": "123456"}},
		{name: "missing email", body: fiber.Map{"password": "123456"}},
		{name: "malformed email", body: fiber.Map{"email": "notanemail", "password": "123456"}},
		{name: "short password", body: fiber.Map{"email": "ok@b.com", "password": "12345"}},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			resp := doJSON(t, app, http.MethodPost, "/users", "", test.body)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestLogin(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	registerUser(t, app, "a@b.com", "123456")

	resp := doJSON(t, app, http.MethodPost, "/users/login", "", fiber.Map{
		"email":    "a@b.com",
		"password": "123456",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, resp.Header.Get(HeaderAuth))

	var user userBody
	decodeBody(t, resp, &user)
	require.Equal(t, "a@b.com", user.Email)
}

func TestLogin_BadCredentialsAreIndistinguishable(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	registerUser(t, app, "a@b.com", "123456")

	wrongPw := doJSON(t, app, http.MethodPost, "/users/login", "", fiber.Map{
		"email":    "a@b.com",
		"password": "wrongpw",
	})
	unknown := doJSON(t, app, http.MethodPost, "/users/login", "", fiber.Map{
		"email":    "nobody@b.com",
		"password": "123456",
	})

	require.Equal(t, http.StatusBadRequest, wrongPw.StatusCode)
	require.Equal(t, http.StatusBadRequest, unknown.StatusCode)

	bodyWrongPw := decodeBody(t, wrongPw, nil)
	bodyUnknown := decodeBody(t, unknown, nil)
	require.Equal(t, string(bodyWrongPw), string(bodyUnknown))
}

func TestUsersMe(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	user, token := registerUser(t, app, "a@b.com", "123456")

	resp := doJSON(t, app, http.MethodGet, "/users/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var me userBody
	decodeBody(t, resp, &me)
	require.Equal(t, user.ID, me.ID)
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	routes := []struct {
		method string
		path   string
	}{
		{method: http.MethodGet, path: "/users/me"},
		{method: http.MethodDelete, path: "/users/me/token"},
		{method: http.MethodPost, path: "/todos"},
		{method: http.MethodGet, path: "/todos"},
		{method: http.MethodGet, path: "/todos/someid"},
		{method: http.MethodPatch, path: "/todos/someid"},
		{method: http.MethodDelete, path: "/todos/someid"},
	}

	for _, route := range routes {
		resp := doJSON(t, app, route.method, route.path, "", nil)
		require.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "%s %s without token", route.method, route.path)

		resp = doJSON(t, app, route.method, route.path, "garbage-token", nil)
		require.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "%s %s with garbage token", route.method, route.path)
	}
}

func TestLogout_RevokesToken(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	_, token := registerUser(t, app, "a@b.com", "123456")

	resp := doJSON(t, app, http.MethodDelete, "/users/me/token", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The very same token - whose signature is still perfectly valid - no
	// longer authenticates.
	resp = doJSON(t, app, http.MethodGet, "/users/me", token, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreateTodo_RejectsMissingText(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	_, token := registerUser(t, app, "a@b.com", "123456")

	resp := doJSON(t, app, http.MethodPost, "/todos", token, fiber.Map{})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/todos", token, fiber.Map{"text": "  "})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestOwnershipIsolation(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	_, tokenA := registerUser(t, app, "usera@b.com", "123456")
	_, tokenB := registerUser(t, app, "userb@b.com", "123456")

	todoA := createTodo(t, app, tokenA, "a's todo")
	todoB := createTodo(t, app, tokenB, "b's todo")

	// A probing B's todo: 404 on every verb, never 403
	resp := doJSON(t, app, http.MethodGet, "/todos/"+todoB.ID, tokenA, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPatch, "/todos/"+todoB.ID, tokenA, fiber.Map{"completed": true})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, app, http.MethodDelete, "/todos/"+todoB.ID, tokenA, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Each list stays owner-scoped
	resp = doJSON(t, app, http.MethodGet, "/todos", tokenA, nil)
	var list struct {
		Todos []todoBody `json:"todos"`
	}
	decodeBody(t, resp, &list)
	require.Len(t, list.Todos, 1)
	require.Equal(t, todoA.ID, list.Todos[0].ID)
}

func TestGetUpdateDeleteTodo(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	_, token := registerUser(t, app, "a@b.com", "123456")
	todo := createTodo(t, app, token, "walk the dog")

	var wrapped struct {
		Todo todoBody `json:"todo"`
	}

	resp := doJSON(t, app, http.MethodGet, "/todos/"+todo.ID, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &wrapped)
	require.Equal(t, "walk the dog", wrapped.Todo.Text)

	resp = doJSON(t, app, http.MethodPatch, "/todos/"+todo.ID, token, fiber.Map{"completed": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &wrapped)
	require.True(t, wrapped.Todo.Completed)
	require.NotNil(t, wrapped.Todo.CompletedAt)

	resp = doJSON(t, app, http.MethodPatch, "/todos/"+todo.ID, token, fiber.Map{"completed": false})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &wrapped)
	require.False(t, wrapped.Todo.Completed)
	require.Nil(t, wrapped.Todo.CompletedAt)

	resp = doJSON(t, app, http.MethodDelete, "/todos/"+todo.ID, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &wrapped)
	require.Equal(t, todo.ID, wrapped.Todo.ID)

	resp = doJSON(t, app, http.MethodGet, "/todos/"+todo.ID, token, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMalformedTodoID_Returns404(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	_, token := registerUser(t, app, "a@b.com", "123456")

	for _, route := range []struct {
		method string
	}{
		{method: http.MethodGet},
		{method: http.MethodPatch},
		{method: http.MethodDelete},
	} {
		var body any
		if route.method == http.MethodPatch {
			body = fiber.Map{"completed": true}
		}
		resp := doJSON(t, app, route.method, "/todos/123", token, body)
		require.Equalf(t, http.StatusNotFound, resp.StatusCode, "%s /todos/123", route.method)
	}
}

func TestHealthz(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	resp := doJSON(t, app, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMapErrorToStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "missing header to 401", err: tudu.ErrMissingAuthHeader, wantStatus: http.StatusUnauthorized},
		{name: "invalid token to 401", err: tudu.ErrInvalidToken, wantStatus: http.StatusUnauthorized},
		{name: "todo not found to 404", err: tudu.ErrTodoNotFound, wantStatus: http.StatusNotFound},
		{name: "user not found treated as internal", err: tudu.ErrUserNotFound, wantStatus: http.StatusBadRequest},
		{name: "duplicate email to 400", err: tudu.ErrEmailTaken, wantStatus: http.StatusBadRequest},
		{name: "bad credentials to 400", err: tudu.ErrInvalidCredentials, wantStatus: http.StatusBadRequest},
		{name: "unknown errors to 400", err: io.ErrUnexpectedEOF, wantStatus: http.StatusBadRequest},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.wantStatus, mapErrorToStatus(test.err))
		})
	}
}

func TestClientMessage_HidesInternalErrors(t *testing.T) {
	t.Parallel()

	require.Equal(t, tudu.ErrEmailTaken.Error(), clientMessage(tudu.ErrEmailTaken))
	require.Equal(t, "request failed", clientMessage(io.ErrUnexpectedEOF))
	// ErrUserNotFound only travels between core and the stores; the services
	// collapse it before it can reach a response.
	require.Equal(t, "request failed", clientMessage(tudu.ErrUserNotFound))
}
