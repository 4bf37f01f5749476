package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func echo(body string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, body)
	}
}

func TestNewRouterDefaults(t *testing.T) {
	r := NewRouter(gin.New())

	assert.NotNil(t, r)
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)
}

func TestWithAPIVersion(t *testing.T) {
	r := NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetupMountsUnderVersionPrefix(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v2"))

	catalog := NewDomainGroup("catalog", "/catalog")
	catalog.GET("/products", echo("products"))

	r.Register(catalog).Setup()

	w := serve(engine, http.MethodGet, "/api/v2/catalog/products")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "products", w.Body.String())
}

func TestRouterUseAppliesToRegisteredRoutes(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	r.Use(func(c *gin.Context) {
		c.Header("X-API-Middleware", "applied")
		c.Next()
	})

	orders := NewDomainGroup("orders", "/orders")
	orders.GET("/mine", echo("mine"))

	r.Register(orders).Setup()

	w := serve(engine, http.MethodGet, "/api/v1/orders/mine")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "applied", w.Header().Get("X-API-Middleware"))
}

func TestDomainGroupNameAndPrefix(t *testing.T) {
	g := NewDomainGroup("catalog", "/catalog")
	assert.Equal(t, "catalog", g.Name())
	assert.Equal(t, "/catalog", g.Prefix())
}

func TestDomainGroupMethods(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("orders", "/orders")
	g.GET("", echo("list")).
		POST("", echo("created")).
		PUT("/:id", echo("replaced")).
		PATCH("/:id", echo("patched")).
		DELETE("/:id", echo("deleted"))

	g.RegisterRoutes(engine.Group("/api/v1"))

	cases := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodGet, "/api/v1/orders", "list"},
		{http.MethodPost, "/api/v1/orders", "created"},
		{http.MethodPut, "/api/v1/orders/42", "replaced"},
		{http.MethodPatch, "/api/v1/orders/42", "patched"},
		{http.MethodDelete, "/api/v1/orders/42", "deleted"},
	}
	for _, tc := range cases {
		w := serve(engine, tc.method, tc.path)
		assert.Equal(t, http.StatusOK, w.Code, "%s %s", tc.method, tc.path)
		assert.Equal(t, tc.body, w.Body.String())
	}
}

func TestDomainGroupMiddleware(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("artisan", "/artisan")
	g.Use(func(c *gin.Context) {
		c.Header("X-Role-Checked", "artisan")
		c.Next()
	})
	g.GET("/feed", echo("feed"))

	g.RegisterRoutes(engine.Group("/api/v1"))

	w := serve(engine, http.MethodGet, "/api/v1/artisan/feed")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "artisan", w.Header().Get("X-Role-Checked"))
}

func TestDomainGroupSubgroups(t *testing.T) {
	engine := gin.New()
	admin := NewDomainGroup("admin", "/admin")

	orders := admin.Group("orders", "/orders")
	orders.GET("", echo("orders list"))

	threads := admin.Group("chat", "/chat/threads")
	threads.GET("", echo("threads list"))

	admin.RegisterRoutes(engine.Group("/api/v1"))

	w := serve(engine, http.MethodGet, "/api/v1/admin/orders")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "orders list", w.Body.String())

	w = serve(engine, http.MethodGet, "/api/v1/admin/chat/threads")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "threads list", w.Body.String())
}

func TestMultipleDomainGroups(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	catalog := NewDomainGroup("catalog", "/catalog")
	catalog.GET("/products", echo("products"))

	chat := NewDomainGroup("chat", "/chat")
	chat.GET("/threads", echo("threads"))

	r.Register(catalog).Register(chat).Setup()

	w := serve(engine, http.MethodGet, "/api/v1/catalog/products")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "products", w.Body.String())

	w = serve(engine, http.MethodGet, "/api/v1/chat/threads")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "threads", w.Body.String())
}
