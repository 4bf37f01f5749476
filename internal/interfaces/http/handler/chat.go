package handler

import (
	chatapp "github.com/costerbox/backend/internal/application/chat"
	"github.com/costerbox/backend/internal/domain/chat"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ChatHandler handles conversation endpoints
type ChatHandler struct {
	BaseHandler
	chatService *chatapp.ChatService
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(chatService *chatapp.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// OpenThreadRequest represents opening (or resuming) a conversation
type OpenThreadRequest struct {
	CounterpartID string  `json:"counterpart_id" binding:"required,uuid"`
	OrderID       *string `json:"order_id" binding:"omitempty,uuid"`
}

// PostTextRequest represents posting a text message
type PostTextRequest struct {
	Body string `json:"body" binding:"required,max=4000"`
}

// PostMediaRequest represents posting an uploaded attachment
type PostMediaRequest struct {
	Kind     string `json:"kind" binding:"required,oneof=image audio"`
	MediaKey string `json:"media_key" binding:"required"`
}

// MediaUploadRequest represents requesting a presigned attachment upload
type MediaUploadRequest struct {
	ContentType string `json:"content_type" binding:"required"`
	Extension   string `json:"extension" binding:"required,max=10"`
}

// OpenThread godoc
// @Summary      Open or resume a conversation
// @Description  Returns the existing thread for the participant pair and
// @Description  order scope, creating it on first contact.
// @Tags         chat
// @Security     BearerAuth
// @Router       /chat/threads [post]
func (h *ChatHandler) OpenThread(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req OpenThreadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	counterpartID, err := uuid.Parse(req.CounterpartID)
	if err != nil {
		h.BadRequest(c, "Invalid counterpart ID format")
		return
	}

	input := chatapp.OpenThreadInput{
		CustomerID:    userID,
		CounterpartID: counterpartID,
	}
	if req.OrderID != nil {
		orderID, err := uuid.Parse(*req.OrderID)
		if err != nil {
			h.BadRequest(c, "Invalid order ID format")
			return
		}
		input.OrderID = &orderID
	}

	thread, err := h.chatService.OpenThread(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toThreadResponse(thread))
}

// ListThreads godoc
// @Summary      List my conversations
// @Tags         chat
// @Security     BearerAuth
// @Router       /chat/threads [get]
func (h *ChatHandler) ListThreads(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	threads, err := h.chatService.ListThreads(c.Request.Context(), userID, parseListFilter(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toThreadResponses(threads))
}

// ListHijacked godoc
// @Summary      List conversations routed to support
// @Tags         admin
// @Security     BearerAuth
// @Router       /admin/chat/threads [get]
func (h *ChatHandler) ListHijacked(c *gin.Context) {
	threads, err := h.chatService.ListHijackedThreads(c.Request.Context(), parseListFilter(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toThreadResponses(threads))
}

// GetThread godoc
// @Summary      Get a conversation
// @Tags         chat
// @Security     BearerAuth
// @Router       /chat/threads/{id} [get]
func (h *ChatHandler) GetThread(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	threadID, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid thread ID format")
		return
	}

	thread, err := h.chatService.GetThread(c.Request.Context(), threadID, userID, isAdmin(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toThreadResponse(thread))
}

// ListMessages godoc
// @Summary      List messages in a conversation
// @Description  Messages come back oldest first with attachment URLs
// @Description  presigned for download.
// @Tags         chat
// @Security     BearerAuth
// @Router       /chat/threads/{id}/messages [get]
func (h *ChatHandler) ListMessages(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	threadID, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid thread ID format")
		return
	}

	views, err := h.chatService.ListMessages(c.Request.Context(), threadID, userID, isAdmin(c), parseListFilter(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toMessageViewResponses(views))
}

// PostText godoc
// @Summary      Post a text message
// @Tags         chat
// @Security     BearerAuth
// @Router       /chat/threads/{id}/messages [post]
func (h *ChatHandler) PostText(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	threadID, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid thread ID format")
		return
	}

	var req PostTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	msg, err := h.chatService.PostText(c.Request.Context(), chatapp.PostTextInput{
		ThreadID: threadID,
		SenderID: userID,
		IsAdmin:  isAdmin(c),
		Body:     req.Body,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toMessageResponse(msg, ""))
}

// PostMedia godoc
// @Summary      Post an uploaded attachment
// @Tags         chat
// @Security     BearerAuth
// @Router       /chat/threads/{id}/media [post]
func (h *ChatHandler) PostMedia(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	threadID, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid thread ID format")
		return
	}

	var req PostMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	msg, err := h.chatService.PostMedia(c.Request.Context(), chatapp.PostMediaInput{
		ThreadID: threadID,
		SenderID: userID,
		IsAdmin:  isAdmin(c),
		Kind:     chat.MessageKind(req.Kind),
		MediaKey: req.MediaKey,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toMessageResponse(msg, ""))
}

// RequestMediaUpload godoc
// @Summary      Request a presigned attachment upload URL
// @Tags         chat
// @Security     BearerAuth
// @Router       /chat/threads/{id}/media/upload-url [post]
func (h *ChatHandler) RequestMediaUpload(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	threadID, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid thread ID format")
		return
	}

	var req MediaUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.chatService.RequestMediaUpload(c.Request.Context(), chatapp.MediaUploadInput{
		ThreadID:    threadID,
		SenderID:    userID,
		IsAdmin:     isAdmin(c),
		ContentType: req.ContentType,
		Extension:   req.Extension,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{
		"media_key":  result.MediaKey,
		"upload_url": result.UploadURL,
		"expires_at": result.ExpiresAt,
	})
}

// Hijack godoc
// @Summary      Route a conversation to support
// @Description  Locks the original counterpart out of the thread until it is
// @Description  released.
// @Tags         admin
// @Security     BearerAuth
// @Router       /admin/chat/threads/{id}/hijack [post]
func (h *ChatHandler) Hijack(c *gin.Context) {
	adminID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	threadID, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid thread ID format")
		return
	}

	thread, err := h.chatService.HijackThread(c.Request.Context(), threadID, adminID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toThreadResponse(thread))
}

// Release godoc
// @Summary      Hand a conversation back to its counterpart
// @Tags         admin
// @Security     BearerAuth
// @Router       /admin/chat/threads/{id}/release [post]
func (h *ChatHandler) Release(c *gin.Context) {
	threadID, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid thread ID format")
		return
	}

	thread, err := h.chatService.ReleaseThread(c.Request.Context(), threadID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toThreadResponse(thread))
}
