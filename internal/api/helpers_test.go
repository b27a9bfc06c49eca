package api

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pageParamsFor runs a request through a throwaway app and captures the
// parsed pagination window.
func pageParamsFor(t *testing.T, target string) PageParams {
	t.Helper()

	var got PageParams
	app := fiber.New()
	app.Get("/list", func(c *fiber.Ctx) error {
		got = parsePageParams(c)
		return c.SendStatus(200)
	})

	resp, err := app.Test(httptest.NewRequest("GET", target, nil))
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	return got
}

func TestParsePageParams(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   PageParams
	}{
		{"defaults", "/list", PageParams{Page: 1, Limit: 10, Offset: 0}},
		{"explicit window", "/list?page=3&limit=25", PageParams{Page: 3, Limit: 25, Offset: 50}},
		{"zero page falls back", "/list?page=0", PageParams{Page: 1, Limit: 10, Offset: 0}},
		{"negative limit falls back", "/list?limit=-5", PageParams{Page: 1, Limit: 10, Offset: 0}},
		{"oversized limit falls back", "/list?limit=5000", PageParams{Page: 1, Limit: 10, Offset: 0}},
		{"garbage falls back", "/list?page=abc&limit=xyz", PageParams{Page: 1, Limit: 10, Offset: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pageParamsFor(t, tt.target))
		})
	}
}

func TestPaginatedEnvelope(t *testing.T) {
	p := PageParams{Page: 2, Limit: 10, Offset: 10}
	env := paginated([]string{"a", "b"}, p, 42)

	assert.Equal(t, 2, env["page"])
	assert.Equal(t, 10, env["limit"])
	assert.Equal(t, 10, env["offset"])
	assert.Equal(t, int64(42), env["total"])
	assert.Equal(t, []string{"a", "b"}, env["data"])
}

func TestParamID(t *testing.T) {
	app := fiber.New()
	var id int64
	var idErr error
	app.Get("/thing/:thing_id", func(c *fiber.Ctx) error {
		id, idErr = paramID(c, "thing_id")
		return c.SendStatus(200)
	})

	t.Run("valid id", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/thing/42", nil))
		require.NoError(t, err)
		require.Equal(t, 200, resp.StatusCode)
		require.NoError(t, idErr)
		assert.Equal(t, int64(42), id)
	})

	t.Run("non-numeric id", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/thing/abc", nil))
		require.NoError(t, err)
		require.Equal(t, 200, resp.StatusCode)
		assert.Error(t, idErr)
	})

	t.Run("zero id", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/thing/0", nil))
		require.NoError(t, err)
		require.Equal(t, 200, resp.StatusCode)
		assert.Error(t, idErr)
	})
}
