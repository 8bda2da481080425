package helper

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseQuery(t *testing.T, query string, opt Options) Params {
	t.Helper()
	var got Params
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		got = ParseFiber(c, opt)
		return nil
	})
	_, err := app.Test(httptest.NewRequest("GET", "/"+query, nil), -1)
	require.NoError(t, err)
	return got
}

func TestParseFiber(t *testing.T) {
	assert.Equal(t, Params{Page: 1, PerPage: 25}, parseQuery(t, "", DefaultOpts))
	assert.Equal(t, Params{Page: 3, PerPage: 10}, parseQuery(t, "?page=3&per_page=10", DefaultOpts))
	assert.Equal(t, Params{Page: 1, PerPage: 200}, parseQuery(t, "?page=0&limit=5000", DefaultOpts))
	assert.Equal(t, Params{Page: 1, PerPage: 50}, parseQuery(t, "?per_page=abc", AdminOpts))
}

func TestBuildMeta(t *testing.T) {
	p := Params{Page: 2, PerPage: 10}
	assert.Equal(t, 10, p.Offset())

	m := BuildMeta(25, p)
	assert.Equal(t, 3, m.TotalPages)
	assert.True(t, m.HasNext)
	assert.True(t, m.HasPrev)

	empty := BuildMeta(0, Params{Page: 1, PerPage: 10})
	assert.Zero(t, empty.TotalPages)
	assert.False(t, empty.HasNext)
}
