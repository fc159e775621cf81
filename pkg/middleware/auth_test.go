package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackicons2020/skillskonnect-sub001/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newManager(t *testing.T) *jwt.Manager {
	t.Helper()
	m, err := jwt.NewManager("0123456789abcdef0123456789abcdef", time.Hour, 24*time.Hour, "test", nil)
	require.NoError(t, err)
	return m
}

func issue(t *testing.T, m *jwt.Manager, id jwt.Identity) string {
	t.Helper()
	pair, err := m.GenerateTokenPair(context.Background(), id)
	require.NoError(t, err)
	return pair.AccessToken
}

func newRouter(m *jwt.Manager, extra ...gin.HandlerFunc) *gin.Engine {
	auth := NewAuthMiddleware(m)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{auth.RequireAuth()}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"id":        GetUserID(c),
			"role":      GetRole(c),
			"isAdmin":   IsAdmin(c),
			"adminRole": GetAdminRole(c),
		})
	})
	r.GET("/p", handlers...)
	return r
}

func do(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	m := newManager(t)
	r := newRouter(m)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "Bearer " + issue(t, m, jwt.Identity{ID: "u1", Role: "client"}), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, tt.header)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRequireAuth_SetsSession(t *testing.T) {
	m := newManager(t)
	r := newRouter(m)

	w := do(r, "Bearer "+issue(t, m, jwt.Identity{ID: "a1", Role: "admin", IsAdmin: true, AdminRole: "support"}))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"a1","role":"admin","isAdmin":true,"adminRole":"support"}`, w.Body.String())
}

func TestRequireAuth_RevokedToken(t *testing.T) {
	m := newManager(t)
	r := newRouter(m)
	token := issue(t, m, jwt.Identity{ID: "u1", Role: "client"})

	require.NoError(t, m.RevokeUserTokens(context.Background(), "u1"))

	w := do(r, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "revoked")
}

func TestRequireRole(t *testing.T) {
	m := newManager(t)
	r := newRouter(m, RequireRole("cleaner"))

	assert.Equal(t, http.StatusForbidden, do(r, "Bearer "+issue(t, m, jwt.Identity{ID: "u1", Role: "client"})).Code)
	assert.Equal(t, http.StatusOK, do(r, "Bearer "+issue(t, m, jwt.Identity{ID: "u2", Role: "cleaner"})).Code)
}

func TestRequireAdmin(t *testing.T) {
	m := newManager(t)
	r := newRouter(m, RequireAdmin("support"))

	client := jwt.Identity{ID: "u1", Role: "client"}
	support := jwt.Identity{ID: "a1", Role: "admin", IsAdmin: true, AdminRole: "support"}
	moderator := jwt.Identity{ID: "a2", Role: "admin", IsAdmin: true, AdminRole: "moderator"}
	super := jwt.Identity{ID: "a3", Role: "admin", IsAdmin: true, AdminRole: SuperAdminRole}

	assert.Equal(t, http.StatusForbidden, do(r, "Bearer "+issue(t, m, client)).Code)
	assert.Equal(t, http.StatusOK, do(r, "Bearer "+issue(t, m, support)).Code)
	assert.Equal(t, http.StatusForbidden, do(r, "Bearer "+issue(t, m, moderator)).Code)
	assert.Equal(t, http.StatusOK, do(r, "Bearer "+issue(t, m, super)).Code)
}

func TestRequireAuthQuery(t *testing.T) {
	m := newManager(t)
	auth := NewAuthMiddleware(m)
	r := gin.New()
	r.GET("/ws", auth.RequireAuthQuery(), func(c *gin.Context) { c.String(http.StatusOK, GetUserID(c)) })

	token := issue(t, m, jwt.Identity{ID: "u9", Role: "cleaner"})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws?token="+token, nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u9", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
