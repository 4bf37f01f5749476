package chat

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/costerbox/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// MessageKind is the payload type of a chat message
type MessageKind string

const (
	MessageKindText  MessageKind = "text"
	MessageKindImage MessageKind = "image"
	MessageKindAudio MessageKind = "audio"
)

// Message is a single chat message. Text messages carry Body; image and
// audio messages carry the object-storage key of the uploaded media.
type Message struct {
	shared.BaseEntity
	ThreadID uuid.UUID
	SenderID uuid.UUID
	Kind     MessageKind
	Body     string
	MediaKey string
}

// Thread is a conversation between a customer and a counterpart (artisan or
// support). When support hijacks the thread the original counterpart is
// locked out and replies route to the admin console instead.
type Thread struct {
	shared.BaseAggregateRoot
	ThreadKey     string
	CustomerID    uuid.UUID
	CounterpartID uuid.UUID
	OrderID       *uuid.UUID

	Hijacked   bool
	HijackedBy *uuid.UUID
	HijackedAt *time.Time

	LastMessageAt *time.Time
	Messages      []Message
}

// SynthesizeKey builds the deterministic key a thread is looked up by:
// the participant pair (order-independent) plus the optional order scope.
func SynthesizeKey(customerID, counterpartID uuid.UUID, orderID *uuid.UUID) string {
	pair := []string{customerID.String(), counterpartID.String()}
	sort.Strings(pair)
	key := strings.Join(pair, ":")
	if orderID != nil {
		key = fmt.Sprintf("%s:%s", key, orderID.String())
	}
	return key
}

// NewThread creates a conversation between a customer and a counterpart
func NewThread(customerID, counterpartID uuid.UUID, orderID *uuid.UUID) (*Thread, error) {
	if customerID == uuid.Nil || counterpartID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_THREAD", "Both participants are required")
	}
	if customerID == counterpartID {
		return nil, shared.NewDomainError("INVALID_THREAD", "A thread needs two distinct participants")
	}

	return &Thread{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ThreadKey:         SynthesizeKey(customerID, counterpartID, orderID),
		CustomerID:        customerID,
		CounterpartID:     counterpartID,
		OrderID:           orderID,
	}, nil
}

// CanPost reports whether the sender may post to the thread right now.
// Admins may always post. While hijacked, the original counterpart is
// locked out; the customer keeps posting as usual.
func (t *Thread) CanPost(senderID uuid.UUID, isAdmin bool) bool {
	if isAdmin {
		return true
	}
	if senderID == t.CustomerID {
		return true
	}
	if senderID == t.CounterpartID {
		return !t.Hijacked
	}
	return false
}

// PostText appends a text message
func (t *Thread) PostText(senderID uuid.UUID, isAdmin bool, body string) (*Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, shared.NewDomainError("INVALID_MESSAGE", "Message body is required")
	}
	if len(body) > 4000 {
		return nil, shared.NewDomainError("INVALID_MESSAGE", "Message body cannot exceed 4000 characters")
	}
	return t.post(senderID, isAdmin, MessageKindText, body, "")
}

// PostMedia appends an image or audio message referencing uploaded media
func (t *Thread) PostMedia(senderID uuid.UUID, isAdmin bool, kind MessageKind, mediaKey string) (*Message, error) {
	if kind != MessageKindImage && kind != MessageKindAudio {
		return nil, shared.NewDomainError("INVALID_MESSAGE", fmt.Sprintf("unsupported media kind %q", kind))
	}
	if mediaKey == "" {
		return nil, shared.NewDomainError("INVALID_MESSAGE", "Media key is required")
	}
	return t.post(senderID, isAdmin, kind, "", mediaKey)
}

func (t *Thread) post(senderID uuid.UUID, isAdmin bool, kind MessageKind, body, mediaKey string) (*Message, error) {
	if !t.CanPost(senderID, isAdmin) {
		if t.Hijacked && senderID == t.CounterpartID {
			return nil, shared.ErrThreadLocked
		}
		return nil, shared.ErrForbidden
	}

	now := time.Now()
	msg := Message{
		BaseEntity: shared.NewBaseEntity(),
		ThreadID:   t.ID,
		SenderID:   senderID,
		Kind:       kind,
		Body:       body,
		MediaKey:   mediaKey,
	}
	t.Messages = append(t.Messages, msg)
	t.LastMessageAt = &now
	t.Touch()
	return &t.Messages[len(t.Messages)-1], nil
}

// Hijack routes the thread to the admin console, locking the counterpart out
func (t *Thread) Hijack(adminID uuid.UUID) error {
	if t.Hijacked {
		return shared.ErrInvalidState
	}
	now := time.Now()
	t.Hijacked = true
	t.HijackedBy = &adminID
	t.HijackedAt = &now
	t.Touch()
	t.AddDomainEvent(NewThreadHijackedEvent(t, adminID))
	return nil
}

// Release hands the thread back to the original counterpart
func (t *Thread) Release() error {
	if !t.Hijacked {
		return shared.ErrInvalidState
	}
	t.Hijacked = false
	t.HijackedBy = nil
	t.HijackedAt = nil
	t.Touch()
	return nil
}
