package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"catalog-backend/internal/audit"
	"catalog-backend/internal/config"
	"catalog-backend/internal/dashboard"
	"catalog-backend/internal/inventory"
	"catalog-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type client struct {
	t   *testing.T
	app *fiber.App
}

func (cl client) do(method, path, token string, body any) *http.Response {
	cl.t.Helper()
	var buf *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(cl.t, err)
		buf = bytes.NewReader(raw)
	} else {
		buf = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := cl.app.Test(req, -1)
	require.NoError(cl.t, err)
	return resp
}

func (cl client) login(email, password string) string {
	cl.t.Helper()
	resp := cl.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(cl.t, http.StatusOK, resp.StatusCode)
	var body struct {
		Token string `json:"token"`
	}
	require.NoError(cl.t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Token
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func newClient(t *testing.T) client {
	cfg := &config.Config{
		JWTSecret:   strings.Repeat("k", 32),
		TokenTTL:    time.Hour,
		CORSOrigins: "http://localhost:5173",
	}
	return client{t: t, app: New(cfg, testutil.NewDB(t))}
}

func TestCatalogFlow(t *testing.T) {
	cl := newClient(t)

	resp := cl.do(http.MethodPost, "/api/auth/register-admin", "", map[string]string{
		"name": "Root", "email": "root@example.com", "password": "root-password",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	adminToken := cl.login("root@example.com", "root-password")

	for _, u := range []map[string]string{
		{"name": "Ed", "email": "ed@example.com", "password": "editor-password", "role": "editor"},
		{"name": "Vi", "email": "vi@example.com", "password": "viewer-password", "role": "viewer"},
	} {
		resp = cl.do(http.MethodPost, "/api/admin/users", adminToken, u)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}
	resp = cl.do(http.MethodPost, "/api/admin/users", adminToken, map[string]string{
		"name": "Dup", "email": "ED@example.com", "password": "editor-password",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	editor := cl.login("ed@example.com", "editor-password")
	viewer := cl.login("vi@example.com", "viewer-password")

	t.Run("roles", func(t *testing.T) {
		resp := cl.do(http.MethodPost, "/api/admin/brands", viewer, map[string]string{"name": "Nope"})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "You are not allowed to perform this action", decode[map[string]string](t, resp)["error"])

		resp = cl.do(http.MethodGet, "/api/admin/users", editor, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		resp = cl.do(http.MethodGet, "/api/brands", "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		resp = cl.do(http.MethodGet, "/api/resources/products", viewer, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	resp = cl.do(http.MethodPost, "/api/admin/brands", editor, map[string]string{"name": "Michelin"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	brand := decode[inventory.BrandResponse](t, resp)

	resp = cl.do(http.MethodPost, "/api/admin/products", editor, map[string]any{
		"name": "Pilot Sport 4", "brand_id": brand.ID, "price": "189.99", "stock_qty": 4,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	product := decode[inventory.ProductResponse](t, resp)

	t.Run("viewer reads", func(t *testing.T) {
		resp := cl.do(http.MethodGet, "/api/products?low_stock=1", viewer, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		list := decode[inventory.ListResponse[inventory.ProductResponse]](t, resp)
		require.Len(t, list.Data, 1)
		assert.Equal(t, "warning", string(list.Data[0].StockBadge))

		resp = cl.do(http.MethodGet, "/api/products?out_of_stock=1", viewer, nil)
		assert.Empty(t, decode[inventory.ListResponse[inventory.ProductResponse]](t, resp).Data)

		resp = cl.do(http.MethodGet, "/api/dashboard/stats", viewer, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		stats := decode[dashboard.Stats](t, resp)
		assert.EqualValues(t, 1, stats.Products)
		assert.Equal(t, "759.96", stats.InventoryValue)
	})

	t.Run("delete brand and undo", func(t *testing.T) {
		resp := cl.do(http.MethodDelete, "/api/admin/brands/"+strconv.Itoa(int(brand.ID)), editor, nil)
		require.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp = cl.do(http.MethodGet, "/api/products/"+strconv.Itoa(int(product.ID)), viewer, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "Product not found", decode[map[string]string](t, resp)["error"])

		resp = cl.do(http.MethodGet, "/api/audit-logs?entity_type=brand", editor, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		logs := decode[[]audit.AuditLogResponse](t, resp)
		require.Len(t, logs, 2)
		assert.Equal(t, "delete", string(logs[0].Action))
		assert.Equal(t, "Ed", logs[0].UserName)

		undoPath := "/api/audit-logs/" + strconv.Itoa(int(logs[0].ID)) + "/undo"
		resp = cl.do(http.MethodPost, undoPath, viewer, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		resp = cl.do(http.MethodPost, undoPath, adminToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp = cl.do(http.MethodPost, undoPath, adminToken, nil)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)

		resp = cl.do(http.MethodGet, "/api/products/"+strconv.Itoa(int(product.ID)), viewer, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Michelin", decode[inventory.ProductResponse](t, resp).BrandName)
	})

	t.Run("users", func(t *testing.T) {
		resp := cl.do(http.MethodGet, "/api/admin/users", adminToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		users := decode[[]map[string]any](t, resp)
		assert.Len(t, users, 3)

		resp = cl.do(http.MethodGet, "/api/auth/me", adminToken, nil)
		me := decode[map[string]any](t, resp)
		id := strconv.Itoa(int(me["id"].(float64)))

		resp = cl.do(http.MethodDelete, "/api/admin/users/"+id, adminToken, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		var editorID string
		for _, u := range users {
			if u["email"] == "ed@example.com" {
				editorID = strconv.Itoa(int(u["id"].(float64)))
			}
		}
		require.NotEmpty(t, editorID)
		resp = cl.do(http.MethodDelete, "/api/admin/users/"+editorID, adminToken, nil)
		require.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp = cl.do(http.MethodPost, "/api/admin/brands", editor, map[string]string{"name": "Late"})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "deleted user's token is refused")
		resp = cl.do(http.MethodGet, "/api/brands", editor, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestErrorHandler_HidesUnexpectedErrors(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("connection reset")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Unexpected server error", decode[map[string]string](t, resp)["error"])
}
