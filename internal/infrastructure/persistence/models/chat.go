package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/costerbox/backend/internal/domain/chat"
)

// ThreadModel is the persistence model for the chat Thread aggregate root.
type ThreadModel struct {
	AggregateModel
	ThreadKey     string     `gorm:"type:varchar(120);not null;uniqueIndex"`
	CustomerID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	CounterpartID uuid.UUID  `gorm:"type:uuid;not null;index"`
	OrderID       *uuid.UUID `gorm:"type:uuid;index"`

	Hijacked   bool       `gorm:"not null;default:false;index"`
	HijackedBy *uuid.UUID `gorm:"type:uuid"`
	HijackedAt *time.Time

	LastMessageAt *time.Time     `gorm:"index"`
	Messages      []MessageModel `gorm:"foreignKey:ThreadID;references:ID"`
}

// TableName returns the table name for GORM
func (ThreadModel) TableName() string {
	return "chat_threads"
}

// ToDomain converts the persistence model to a domain Thread aggregate.
func (m *ThreadModel) ToDomain() *chat.Thread {
	t := &chat.Thread{
		ThreadKey:     m.ThreadKey,
		CustomerID:    m.CustomerID,
		CounterpartID: m.CounterpartID,
		OrderID:       m.OrderID,
		Hijacked:      m.Hijacked,
		HijackedBy:    m.HijackedBy,
		HijackedAt:    m.HijackedAt,
		LastMessageAt: m.LastMessageAt,
	}
	m.PopulateAggregateRoot(&t.BaseAggregateRoot)

	t.Messages = make([]chat.Message, len(m.Messages))
	for i := range m.Messages {
		t.Messages[i] = *m.Messages[i].ToDomain()
	}
	return t
}

// FromDomain populates the persistence model from a domain Thread aggregate.
func (m *ThreadModel) FromDomain(t *chat.Thread) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.ThreadKey = t.ThreadKey
	m.CustomerID = t.CustomerID
	m.CounterpartID = t.CounterpartID
	m.OrderID = t.OrderID
	m.Hijacked = t.Hijacked
	m.HijackedBy = t.HijackedBy
	m.HijackedAt = t.HijackedAt
	m.LastMessageAt = t.LastMessageAt

	m.Messages = make([]MessageModel, len(t.Messages))
	for i := range t.Messages {
		m.Messages[i] = *MessageModelFromDomain(&t.Messages[i])
	}
}

// ThreadModelFromDomain creates a persistence model from a domain Thread.
func ThreadModelFromDomain(t *chat.Thread) *ThreadModel {
	m := &ThreadModel{}
	m.FromDomain(t)
	return m
}

// MessageModel is the persistence model for a chat message.
type MessageModel struct {
	BaseModel
	ThreadID uuid.UUID        `gorm:"type:uuid;not null;index"`
	SenderID uuid.UUID        `gorm:"type:uuid;not null"`
	Kind     chat.MessageKind `gorm:"type:varchar(10);not null"`
	Body     string           `gorm:"type:text"`
	MediaKey string           `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (MessageModel) TableName() string {
	return "chat_messages"
}

// ToDomain converts the persistence model to a domain Message.
func (m *MessageModel) ToDomain() *chat.Message {
	return &chat.Message{
		BaseEntity: m.BaseModel.ToDomain(),
		ThreadID:   m.ThreadID,
		SenderID:   m.SenderID,
		Kind:       m.Kind,
		Body:       m.Body,
		MediaKey:   m.MediaKey,
	}
}

// MessageModelFromDomain creates a persistence model from a domain Message.
func MessageModelFromDomain(msg *chat.Message) *MessageModel {
	m := &MessageModel{
		ThreadID: msg.ThreadID,
		SenderID: msg.SenderID,
		Kind:     msg.Kind,
		Body:     msg.Body,
		MediaKey: msg.MediaKey,
	}
	m.FromDomainBaseEntity(msg.BaseEntity)
	return m
}
