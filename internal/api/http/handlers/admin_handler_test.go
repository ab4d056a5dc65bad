package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	httptransport "github.com/hoodmarket/ticket-bot/internal/api/http"
	"github.com/hoodmarket/ticket-bot/internal/api/http/handlers"
	"github.com/hoodmarket/ticket-bot/internal/auth"
)

func newLoginApp(t *testing.T, passwordHash string) *fiber.App {
	t.Helper()
	app := fiber.New()
	httptransport.RegisterMiddlewares(app, zap.NewNop(), 0)

	tokens := auth.NewTokenManager("test-secret", 30)
	handler := handlers.NewAdminHandler(tokens, passwordHash, nil)
	app.Post("/admin/login", handler.Login)
	return app
}

func loginRequest(password string) *http.Request {
	body, _ := json.Marshal(map[string]string{"password": password})
	req := httptest.NewRequest(http.MethodPost, "/admin/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestAdminLogin(t *testing.T) {
	hash, err := auth.HashPassword("hunter2", bcrypt.MinCost)
	require.NoError(t, err)
	app := newLoginApp(t, hash)

	resp, err := app.Test(loginRequest("hunter2"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.NotEmpty(t, payload.Data.Token)

	// The issued token carries the admin role.
	claims, err := auth.NewTokenManager("test-secret", 30).ParseToken(payload.Data.Token)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, claims.Role)
}

func TestAdminLoginWrongPassword(t *testing.T) {
	hash, err := auth.HashPassword("hunter2", bcrypt.MinCost)
	require.NoError(t, err)
	app := newLoginApp(t, hash)

	resp, err := app.Test(loginRequest("letmein"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminLoginDisabledWithoutHash(t *testing.T) {
	app := newLoginApp(t, "")

	resp, err := app.Test(loginRequest("anything"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
