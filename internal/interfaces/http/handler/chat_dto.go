package handler

import (
	"time"

	chatapp "github.com/costerbox/backend/internal/application/chat"
	"github.com/costerbox/backend/internal/domain/chat"
)

// ThreadResponse represents a conversation in API responses
type ThreadResponse struct {
	ID            string     `json:"id"`
	ThreadKey     string     `json:"thread_key"`
	CustomerID    string     `json:"customer_id"`
	CounterpartID string     `json:"counterpart_id"`
	OrderID       *string    `json:"order_id,omitempty"`
	Hijacked      bool       `json:"hijacked"`
	HijackedBy    *string    `json:"hijacked_by,omitempty"`
	HijackedAt    *time.Time `json:"hijacked_at,omitempty"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// MessageResponse represents a chat message in API responses
type MessageResponse struct {
	ID        string    `json:"id"`
	ThreadID  string    `json:"thread_id"`
	SenderID  string    `json:"sender_id"`
	Kind      string    `json:"kind"`
	Body      string    `json:"body,omitempty"`
	MediaURL  string    `json:"media_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toThreadResponse(t *chat.Thread) ThreadResponse {
	resp := ThreadResponse{
		ID:            t.ID.String(),
		ThreadKey:     t.ThreadKey,
		CustomerID:    t.CustomerID.String(),
		CounterpartID: t.CounterpartID.String(),
		Hijacked:      t.Hijacked,
		HijackedAt:    t.HijackedAt,
		LastMessageAt: t.LastMessageAt,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
	if t.OrderID != nil {
		id := t.OrderID.String()
		resp.OrderID = &id
	}
	if t.HijackedBy != nil {
		id := t.HijackedBy.String()
		resp.HijackedBy = &id
	}
	return resp
}

func toThreadResponses(threads []chat.Thread) []ThreadResponse {
	responses := make([]ThreadResponse, 0, len(threads))
	for i := range threads {
		responses = append(responses, toThreadResponse(&threads[i]))
	}
	return responses
}

func toMessageResponse(msg *chat.Message, mediaURL string) MessageResponse {
	return MessageResponse{
		ID:        msg.ID.String(),
		ThreadID:  msg.ThreadID.String(),
		SenderID:  msg.SenderID.String(),
		Kind:      string(msg.Kind),
		Body:      msg.Body,
		MediaURL:  mediaURL,
		CreatedAt: msg.CreatedAt,
	}
}

func toMessageViewResponses(views []chatapp.MessageView) []MessageResponse {
	responses := make([]MessageResponse, 0, len(views))
	for i := range views {
		responses = append(responses, toMessageResponse(&views[i].Message, views[i].MediaURL))
	}
	return responses
}
