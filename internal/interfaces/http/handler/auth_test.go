package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	identityapp "github.com/costerbox/backend/internal/application/identity"
	"github.com/costerbox/backend/internal/infrastructure/auth"
	"github.com/costerbox/backend/internal/infrastructure/config"
	"github.com/costerbox/backend/internal/infrastructure/persistence"
	"github.com/costerbox/backend/internal/infrastructure/persistence/models"
	"github.com/costerbox/backend/internal/interfaces/http/dto"
	"github.com/costerbox/backend/internal/interfaces/http/middleware"
)

func setupAuthRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.UserModel{}))

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-access-secret",
		RefreshSecret:          "test-refresh-secret",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "costerbox-test",
		MaxRefreshCount:        3,
	})
	blacklist := auth.NewInMemoryTokenBlacklist()
	service := identityapp.NewAuthService(persistence.NewGormUserRepository(db), jwtService, blacklist, nil, nil)
	handler := NewAuthHandler(service)

	router := gin.New()
	api := router.Group("/api/v1")
	api.POST("/auth/register", handler.Register)
	api.POST("/auth/login", handler.Login)
	api.POST("/auth/refresh", handler.Refresh)

	authed := api.Group("")
	authed.Use(middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
	}))
	authed.GET("/auth/me", handler.Me)
	authed.POST("/auth/logout", handler.Logout)
	authed.PUT("/auth/password", handler.ChangePassword)
	authed.PUT("/auth/zone", middleware.RequireArtisan(), handler.UpdateZone)

	return router
}

func doJSON(router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func registerAccount(t *testing.T, router *gin.Engine, email, role string) {
	t.Helper()
	w := doJSON(router, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email":        email,
		"password":     "s3cret-pass",
		"display_name": "Test User",
		"role":         role,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func loginAccount(t *testing.T, router *gin.Engine, email string) (access, refresh string) {
	t.Helper()
	w := doJSON(router, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    email,
		"password": "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeResponse(t, w)
	data := resp.Data.(map[string]interface{})
	return data["access_token"].(string), data["refresh_token"].(string)
}

func TestAuthHandler_Register(t *testing.T) {
	router := setupAuthRouter(t)

	t.Run("creates a customer account", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/api/v1/auth/register", "", gin.H{
			"email":        "asha@example.com",
			"password":     "s3cret-pass",
			"display_name": "Asha",
			"role":         "customer",
		})

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		resp := decodeResponse(t, w)
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "asha@example.com", data["email"])
		assert.Equal(t, "customer", data["role"])
		assert.NotEmpty(t, data["id"])
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/api/v1/auth/register", "", gin.H{
			"email":        "asha@example.com",
			"password":     "another-pass",
			"display_name": "Asha Again",
			"role":         "customer",
		})

		assert.Equal(t, http.StatusConflict, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeAlreadyExists, resp.Error.Code)
	})

	t.Run("rejects admin role", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/api/v1/auth/register", "", gin.H{
			"email":        "root@example.com",
			"password":     "s3cret-pass",
			"display_name": "Root",
			"role":         "admin",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects short password", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/api/v1/auth/register", "", gin.H{
			"email":        "short@example.com",
			"password":     "short",
			"display_name": "Short",
			"role":         "customer",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthHandler_LoginAndMe(t *testing.T) {
	router := setupAuthRouter(t)
	registerAccount(t, router, "ravi@example.com", "customer")

	access, _ := loginAccount(t, router, "ravi@example.com")

	w := doJSON(router, http.MethodGet, "/api/v1/auth/me", access, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeResponse(t, w)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "ravi@example.com", data["email"])
}

func TestAuthHandler_LoginWrongPassword(t *testing.T) {
	router := setupAuthRouter(t)
	registerAccount(t, router, "meera@example.com", "customer")

	w := doJSON(router, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "meera@example.com",
		"password": "wrong-pass",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, dto.ErrCodeInvalidCredentials, resp.Error.Code)
}

func TestAuthHandler_Refresh(t *testing.T) {
	router := setupAuthRouter(t)
	registerAccount(t, router, "dev@example.com", "customer")
	_, refresh := loginAccount(t, router, "dev@example.com")

	w := doJSON(router, http.MethodPost, "/api/v1/auth/refresh", "", gin.H{
		"refresh_token": refresh,
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeResponse(t, w)
	data := resp.Data.(map[string]interface{})
	assert.NotEmpty(t, data["access_token"])
	assert.NotEmpty(t, data["refresh_token"])
	assert.NotEqual(t, refresh, data["refresh_token"])
}

func TestAuthHandler_RefreshWithGarbageToken(t *testing.T) {
	router := setupAuthRouter(t)

	w := doJSON(router, http.MethodPost, "/api/v1/auth/refresh", "", gin.H{
		"refresh_token": "not-a-token",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_LogoutRevokesToken(t *testing.T) {
	router := setupAuthRouter(t)
	registerAccount(t, router, "kiran@example.com", "customer")
	access, _ := loginAccount(t, router, "kiran@example.com")

	w := doJSON(router, http.MethodPost, "/api/v1/auth/logout", access, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	// the revoked token no longer authenticates
	w = doJSON(router, http.MethodGet, "/api/v1/auth/me", access, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	router := setupAuthRouter(t)
	registerAccount(t, router, "uma@example.com", "customer")
	access, _ := loginAccount(t, router, "uma@example.com")

	w := doJSON(router, http.MethodPut, "/api/v1/auth/password", access, gin.H{
		"old_password": "s3cret-pass",
		"new_password": "brand-new-pass",
	})
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	// old password stops working
	w = doJSON(router, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "uma@example.com",
		"password": "s3cret-pass",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// new password works
	w = doJSON(router, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "uma@example.com",
		"password": "brand-new-pass",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthHandler_ZoneRequiresArtisanRole(t *testing.T) {
	router := setupAuthRouter(t)
	registerAccount(t, router, "buyer@example.com", "customer")
	registerAccount(t, router, "maker@example.com", "artisan")

	customerToken, _ := loginAccount(t, router, "buyer@example.com")
	artisanToken, _ := loginAccount(t, router, "maker@example.com")

	w := doJSON(router, http.MethodPut, "/api/v1/auth/zone", customerToken, gin.H{"zone": "south"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(router, http.MethodPut, "/api/v1/auth/zone", artisanToken, gin.H{"zone": "south"})
	assert.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
}

func TestAuthHandler_MissingTokenRejected(t *testing.T) {
	router := setupAuthRouter(t)

	for _, path := range []string{"/auth/me", "/auth/logout"} {
		method := http.MethodGet
		if path == "/auth/logout" {
			method = http.MethodPost
		}
		w := doJSON(router, method, fmt.Sprintf("/api/v1%s", path), "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}
