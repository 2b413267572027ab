package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, app *App, authHeader string, h echo.HandlerFunc, mw ...echo.MiddlewareFunc) (*httptest.ResponseRecorder, *AppUser) {
	t.Helper()
	var seen *AppUser

	e := echo.New()
	e.Use(AppContextMiddleware(app))
	handler := func(c echo.Context) error {
		seen = c.(*AppContext).User
		return h(c)
	}
	e.GET("/", handler, append([]echo.MiddlewareFunc{AuthMiddleware}, mw...)...)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec, seen
}

func ok(c echo.Context) error { return c.NoContent(http.StatusNoContent) }

func masterApp() *App {
	return &App{MasterAPIKey: "secret", MasterUserID: 7, MasterUserRole: "admin"}
}

func TestAuthMiddlewareMasterKey(t *testing.T) {
	rec, user := serve(t, masterApp(), "Bearer secret", ok)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, user)
	assert.Equal(t, int32(7), user.UserID)
	assert.Equal(t, "admin", user.Role)
	assert.ElementsMatch(t, AllPermissions(), user.Permissions)
}

func TestAuthMiddlewareRejects(t *testing.T) {
	cases := map[string]struct {
		app    *App
		header string
	}{
		"missing header":      {masterApp(), ""},
		"not bearer":          {masterApp(), "Basic secret"},
		"wrong key, no jwks":  {masterApp(), "Bearer other"},
		"master key disabled": {&App{MasterAPIKey: "secret"}, "Bearer secret"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rec, user := serve(t, tc.app, tc.header, ok)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Nil(t, user)
		})
	}
}

func TestRequirePermission(t *testing.T) {
	rec, _ := serve(t, masterApp(), "Bearer secret", ok, RequirePermission(PermGraphCreate))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, _ = serve(t, masterApp(), "Bearer secret", ok, RequirePermission("graph.unknown"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = serve(t, masterApp(), "Bearer secret", ok, RequireAnyPermission("graph.unknown", PermGraphView))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestPermissionHelpers(t *testing.T) {
	user := &AppUser{Role: "user", Permissions: []string{PermGraphView}}

	assert.True(t, HasPermission(user, PermGraphView))
	assert.False(t, HasPermission(user, PermGraphViewAll))
	assert.True(t, HasAnyPermission(user, PermGraphViewAll, PermGraphView))
	assert.False(t, HasAnyPermission(nil, PermGraphView))
	assert.False(t, IsAdmin(user))
	assert.True(t, IsAdmin(&AppUser{Role: "admin"}))
}

func TestAllPermissionsReturnsCopy(t *testing.T) {
	perms := AllPermissions()
	perms[0] = "mutated"
	assert.Equal(t, PermGraphCreate, AllPermissions()[0])
}
