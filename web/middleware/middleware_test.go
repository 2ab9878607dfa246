package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"punchme/web/auth"
	"punchme/web/db"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func do(r http.Handler, method, path, token, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if ip != "" {
		req.RemoteAddr = ip + ":40000"
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Hour)
	r := gin.New()
	r.GET("/ping", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ping", "", "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ping", "", "10.0.0.1").Code)
	w := do(r, http.MethodGet, "/ping", "", "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"error":"Too many requests, please try later."}`, w.Body.String())

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ping", "", "10.0.0.2").Code)
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	rl.limiter("10.0.0.1")
	rl.limiter("10.0.0.2")
	rl.visitors["10.0.0.1"].lastSeen = time.Now().Add(-2 * time.Minute)

	rl.cleanup(time.Now())
	assert.NotContains(t, rl.visitors, "10.0.0.1")
	assert.Contains(t, rl.visitors, "10.0.0.2")
}

func authRouter(t *testing.T) (*gin.Engine, *auth.Tokens, *db.Customer, *db.Manager) {
	t.Helper()
	store := db.NewMemoryStore()
	ctx := context.Background()
	customer := &db.Customer{PhoneNumber: "+13105550100"}
	require.NoError(t, store.CreateCustomer(ctx, customer))
	manager := &db.Manager{Email: "owner@cafe.com"}
	require.NoError(t, store.CreateManager(ctx, manager))

	tokens := auth.NewTokens("test-secret", time.Hour)
	r := gin.New()
	authed := r.Group("/", RequireAuth(tokens, store))
	authed.GET("/customer", RequireCustomer, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": CurrentCustomer(c).ID})
	})
	authed.GET("/manager", RequireManager, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": CurrentManager(c).ID})
	})
	authed.GET("/any", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r, tokens, customer, manager
}

func TestRequireAuth(t *testing.T) {
	r, tokens, customer, manager := authRouter(t)

	ct, err := tokens.Issue(customer.ID, auth.RoleCustomer)
	require.NoError(t, err)
	mt, err := tokens.Issue(manager.ID, auth.RoleManager)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/any", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/any", "garbage", "").Code)

	other, err := auth.NewTokens("other-secret", time.Hour).Issue(customer.ID, auth.RoleCustomer)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/any", other, "").Code)

	ghost, err := tokens.Issue(9999, auth.RoleCustomer)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/any", ghost, "").Code)

	assert.Equal(t, http.StatusNoContent, do(r, http.MethodGet, "/any", ct, "").Code)
	assert.Equal(t, http.StatusNoContent, do(r, http.MethodGet, "/any", mt, "").Code)

	w := do(r, http.MethodGet, "/customer", ct, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/customer", mt, "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/manager", mt, "").Code)
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/manager", ct, "").Code)
}

func TestTokenScheme(t *testing.T) {
	r, tokens, customer, _ := authRouter(t)
	ct, err := tokens.Issue(customer.ID, auth.RoleCustomer)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/customer", nil)
	req.Header.Set("Authorization", "Token "+ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
