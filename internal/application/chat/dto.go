package chat

import (
	"time"

	"github.com/google/uuid"

	"github.com/costerbox/backend/internal/domain/chat"
)

// OpenThreadInput contains the input for opening (or resuming) a thread
type OpenThreadInput struct {
	CustomerID    uuid.UUID
	CounterpartID uuid.UUID
	OrderID       *uuid.UUID
}

// PostTextInput contains the input for posting a text message
type PostTextInput struct {
	ThreadID uuid.UUID
	SenderID uuid.UUID
	IsAdmin  bool
	Body     string
}

// PostMediaInput contains the input for posting an uploaded attachment
type PostMediaInput struct {
	ThreadID uuid.UUID
	SenderID uuid.UUID
	IsAdmin  bool
	Kind     chat.MessageKind
	MediaKey string
}

// MediaUploadInput contains the input for requesting an attachment upload URL
type MediaUploadInput struct {
	ThreadID    uuid.UUID
	SenderID    uuid.UUID
	IsAdmin     bool
	ContentType string
	Extension   string
}

// MediaUploadResult contains a presigned upload URL for a chat attachment
type MediaUploadResult struct {
	MediaKey  string
	UploadURL string
	ExpiresAt time.Time
}

// MessageView is a message with its media URL resolved for delivery
type MessageView struct {
	Message  chat.Message
	MediaURL string
}
