package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/costerbox/backend/internal/domain/shared"
	"github.com/costerbox/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// recordedContext builds a gin context backed by a recorder, with a
// request attached so header lookups do not panic.
func recordedContext() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

// authenticate stores the context keys the JWT middleware would set.
func authenticate(c *gin.Context, userID uuid.UUID, role string) {
	c.Set("jwt_user_id", userID.String())
	c.Set("jwt_role", role)
}

func TestGetRequestIDFromContext(t *testing.T) {
	c, _ := recordedContext()
	c.Set(RequestIDKey, "req-from-ctx")

	assert.Equal(t, "req-from-ctx", getRequestID(c))
}

func TestGetRequestIDFallsBackToHeader(t *testing.T) {
	c, _ := recordedContext()
	c.Request.Header.Set(RequestIDKey, "req-from-header")

	assert.Equal(t, "req-from-header", getRequestID(c))
}

func TestGetRequestIDContextWins(t *testing.T) {
	c, _ := recordedContext()
	c.Set(RequestIDKey, "ctx-id")
	c.Request.Header.Set(RequestIDKey, "header-id")

	assert.Equal(t, "ctx-id", getRequestID(c))
}

func TestGetRequestIDUnset(t *testing.T) {
	c, _ := recordedContext()

	assert.Empty(t, getRequestID(c))
}

func TestGetUserIDAuthenticated(t *testing.T) {
	c, _ := recordedContext()
	customer := uuid.New()
	authenticate(c, customer, "customer")

	id, err := getUserID(c)
	require.NoError(t, err)
	assert.Equal(t, customer, id)
}

func TestGetUserIDAnonymous(t *testing.T) {
	c, _ := recordedContext()

	_, err := getUserID(c)
	assert.Error(t, err)
}

func TestIsAdmin(t *testing.T) {
	for role, want := range map[string]bool{
		"admin":    true,
		"artisan":  false,
		"customer": false,
	} {
		c, _ := recordedContext()
		authenticate(c, uuid.New(), role)
		assert.Equal(t, want, isAdmin(c), "role %s", role)
	}
}

func TestBaseHandlerSuccess(t *testing.T) {
	h := &BaseHandler{}
	c, w := recordedContext()

	h.Success(c, map[string]string{"status": "shipped"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeResponse(t, w).Success)
}

func TestBaseHandlerSuccessWithMeta(t *testing.T) {
	h := &BaseHandler{}
	c, w := recordedContext()

	h.SuccessWithMeta(c, []string{"walnut bowl", "ceramic vase"}, 100, 1, 10)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(100), resp.Meta.Total)
}

func TestBaseHandlerCreated(t *testing.T) {
	h := &BaseHandler{}
	c, w := recordedContext()

	h.Created(c, map[string]string{"id": uuid.NewString()})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, decodeResponse(t, w).Success)
}

func TestBaseHandlerNoContent(t *testing.T) {
	h := &BaseHandler{}
	router := gin.New()
	router.DELETE("/products/:id", func(c *gin.Context) {
		h.NoContent(c)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/products/abc", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.Bytes())
}

func TestBaseHandlerErrorHelpers(t *testing.T) {
	tests := []struct {
		name    string
		respond func(*BaseHandler, *gin.Context)
		status  int
		errCode string
	}{
		{"BadRequest", func(h *BaseHandler, c *gin.Context) { h.BadRequest(c, "Invalid request") }, http.StatusBadRequest, dto.ErrCodeBadRequest},
		{"NotFound", func(h *BaseHandler, c *gin.Context) { h.NotFound(c, "Product not found") }, http.StatusNotFound, dto.ErrCodeNotFound},
		{"Unauthorized", func(h *BaseHandler, c *gin.Context) { h.Unauthorized(c, "Not authenticated") }, http.StatusUnauthorized, dto.ErrCodeUnauthorized},
		{"Forbidden", func(h *BaseHandler, c *gin.Context) { h.Forbidden(c, "Access denied") }, http.StatusForbidden, dto.ErrCodeForbidden},
		{"Conflict", func(h *BaseHandler, c *gin.Context) { h.Conflict(c, "Order already claimed") }, http.StatusConflict, dto.ErrCodeConflict},
		{"InternalError", func(h *BaseHandler, c *gin.Context) { h.InternalError(c, "Server error") }, http.StatusInternalServerError, dto.ErrCodeInternal},
		{"TooManyRequests", func(h *BaseHandler, c *gin.Context) { h.TooManyRequests(c, "Rate limit exceeded") }, http.StatusTooManyRequests, dto.ErrCodeRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			c, w := recordedContext()

			tt.respond(h, c)

			assert.Equal(t, tt.status, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.errCode, resp.Error.Code)
		})
	}
}

func TestBaseHandlerErrorCarriesRequestID(t *testing.T) {
	h := &BaseHandler{}
	c, w := recordedContext()
	c.Set(RequestIDKey, "req-9f2c")

	h.BadRequest(c, "Invalid request")

	assert.Equal(t, "req-9f2c", decodeResponse(t, w).Error.RequestID)
}

func TestBaseHandlerErrorWithCode(t *testing.T) {
	h := &BaseHandler{}
	c, w := recordedContext()

	h.ErrorWithCode(c, dto.ErrCodePaymentRequired, "Outstanding balance must be settled")

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Equal(t, dto.ErrCodePaymentRequired, decodeResponse(t, w).Error.Code)
}

func TestBaseHandlerValidationError(t *testing.T) {
	h := &BaseHandler{}
	c, w := recordedContext()
	c.Set(RequestIDKey, "req-val-1")

	h.ValidationError(c, []dto.ValidationDetail{
		{Field: "email", Message: "Invalid format"},
		{Field: "name", Message: "Required"},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-val-1", resp.Error.RequestID)
	assert.Len(t, resp.Error.Details, 2)
}

func TestBaseHandlerDomainErrorMapping(t *testing.T) {
	tests := []struct {
		err     error
		status  int
		errCode string
	}{
		{shared.ErrNotFound, http.StatusNotFound, dto.ErrCodeNotFound},
		{shared.ErrAlreadyExists, http.StatusConflict, dto.ErrCodeAlreadyExists},
		{shared.ErrInvalidInput, http.StatusBadRequest, dto.ErrCodeInvalidInput},
		{shared.ErrUnauthorized, http.StatusUnauthorized, dto.ErrCodeUnauthorized},
		{shared.ErrForbidden, http.StatusForbidden, dto.ErrCodeForbidden},
		{shared.ErrInvalidState, http.StatusUnprocessableEntity, dto.ErrCodeInvalidState},
		{shared.ErrConcurrencyConflict, http.StatusConflict, dto.ErrCodeConcurrencyConflict},
		{shared.ErrAlreadyClaimed, http.StatusConflict, dto.ErrCodeAlreadyClaimed},
		{shared.ErrPaymentRequired, http.StatusPaymentRequired, dto.ErrCodePaymentRequired},
		{shared.ErrThreadLocked, http.StatusLocked, dto.ErrCodeThreadLocked},
	}

	for _, tt := range tests {
		t.Run(tt.errCode, func(t *testing.T) {
			h := &BaseHandler{}
			c, w := recordedContext()

			h.HandleDomainError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.errCode, resp.Error.Code)
		})
	}
}

func TestBaseHandlerDomainErrorCarriesRequestID(t *testing.T) {
	h := &BaseHandler{}
	c, w := recordedContext()
	c.Set(RequestIDKey, "req-claim-7")

	h.HandleDomainError(c, shared.ErrAlreadyClaimed)

	assert.Equal(t, "req-claim-7", decodeResponse(t, w).Error.RequestID)
}

func TestBaseHandlerUnknownErrorMasked(t *testing.T) {
	h := &BaseHandler{}
	c, w := recordedContext()

	h.HandleDomainError(c, assert.AnError)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeResponse(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, dto.ErrCodeInternal, resp.Error.Code)
	assert.Equal(t, "An unexpected error occurred", resp.Error.Message)
}

func TestBaseHandlerHandleErrorNil(t *testing.T) {
	h := &BaseHandler{}
	c, w := recordedContext()

	h.HandleError(c, nil)

	// Nothing written; recorder keeps its default status.
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBaseHandlerHandleErrorDomain(t *testing.T) {
	h := &BaseHandler{}
	c, w := recordedContext()

	h.HandleError(c, shared.ErrNotFound)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBaseHandlerHandleErrorOpaque(t *testing.T) {
	h := &BaseHandler{}
	c, w := recordedContext()

	h.HandleError(c, assert.AnError)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestBaseHandlerHandleErrorWrapped(t *testing.T) {
	h := &BaseHandler{}
	c, w := recordedContext()

	h.HandleError(c, fmt.Errorf("loading order: %w", shared.ErrNotFound))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, dto.ErrCodeNotFound, decodeResponse(t, w).Error.Code)
}

func TestBaseHandlerUnprocessableEntity(t *testing.T) {
	h := &BaseHandler{}
	c, w := recordedContext()

	h.UnprocessableEntity(c, dto.ErrCodeBusinessRule, "Advance payment below required share")

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, dto.ErrCodeBusinessRule, decodeResponse(t, w).Error.Code)
}
