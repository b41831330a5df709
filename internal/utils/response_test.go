package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestSuccessResponseEnvelope(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return SuccessResponse(c, fiber.StatusCreated, "created", fiber.Map{"id": 7})
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, fiber.StatusCreated, body["statusCode"])
	assert.Equal(t, "created", body["message"])
	assert.Equal(t, map[string]interface{}{"id": float64(7)}, body["data"])
	assert.NotContains(t, body, "meta")

	_, err = time.Parse(time.RFC3339, body["timestamp"].(string))
	assert.NoError(t, err)
}

func TestPaginatedResponseMeta(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return PaginatedResponse(c, "listed", []int{1, 2}, PaginationMeta{
			CurrentPage: 2,
			PageSize:    2,
			TotalItems:  5,
			TotalPages:  3,
		})
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	body := decodeBody(t, resp)
	meta, ok := body["meta"].(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 2, meta["currentPage"])
	assert.EqualValues(t, 5, meta["totalItems"])
	assert.EqualValues(t, 3, meta["totalPages"])
	assert.Equal(t, true, meta["hasNextPage"])
	assert.Equal(t, true, meta["hasPreviousPage"])
}

func TestErrorResponseEnvelope(t *testing.T) {
	app := fiber.New()
	app.Get("/boom", func(c *fiber.Ctx) error {
		return ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", []ValidationError{
			{Field: "Email", Tag: "required", Message: "Email is required"},
		})
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, false, body["success"])
	assert.EqualValues(t, fiber.StatusBadRequest, body["statusCode"])
	assert.Equal(t, "Validation failed", body["message"])
	assert.Equal(t, "/boom", body["path"])

	errs, ok := body["errors"].([]interface{})
	require.True(t, ok)
	require.Len(t, errs, 1)
}
