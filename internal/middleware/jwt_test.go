package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventix/ticket-ledger/internal/utils"
)

const testSecret = "test-secret"

func doAuthed(t *testing.T, mw echo.MiddlewareFunc, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := mw(func(c echo.Context) error {
		id, _ := AccountID(c)
		return c.JSON(http.StatusOK, echo.Map{"id": id, "role": c.Get(CtxRole)})
	})
	require.NoError(t, handler(c))
	return rec
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	at, err := utils.NewAccessToken(testSecret, 42, "TRADER", 5)
	require.NoError(t, err)

	rec := doAuthed(t, JWTAuth(testSecret), "Bearer "+at.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":42`)
	assert.Contains(t, rec.Body.String(), `"role":"TRADER"`)
}

func TestJWTAuthRejections(t *testing.T) {
	at, err := utils.NewAccessToken("other-secret", 42, "TRADER", 5)
	require.NoError(t, err)

	cases := map[string]string{
		"missing header": "",
		"not bearer":     "Basic abc",
		"garbage token":  "Bearer not.a.jwt",
		"wrong secret":   "Bearer " + at.Token,
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			rec := doAuthed(t, JWTAuth(testSecret), header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	run := func(role string, allowed ...string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if role != "" {
			c.Set(CtxRole, role)
		}
		h := RequireRole(allowed...)(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})
		require.NoError(t, h(c))
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, run("ADMIN", "ADMIN"))
	assert.Equal(t, http.StatusOK, run("TRADER", "TRADER", "ADMIN"))
	assert.Equal(t, http.StatusForbidden, run("TRADER", "ADMIN"))
	assert.Equal(t, http.StatusForbidden, run("", "ADMIN"))
}
