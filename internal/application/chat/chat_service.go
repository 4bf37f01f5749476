package chat

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/costerbox/backend/internal/application/media"
	"github.com/costerbox/backend/internal/domain/chat"
	"github.com/costerbox/backend/internal/domain/shared"
)

const (
	mediaUploadURLTTL   = 15 * time.Minute
	mediaDownloadURLTTL = time.Hour
)

// ChatService handles conversations between customers, artisans and support
type ChatService struct {
	threadRepo chat.ThreadRepository
	storage    media.ObjectStorage
	eventBus   shared.EventPublisher
	logger     *zap.Logger
}

// NewChatService creates a new chat service
func NewChatService(
	threadRepo chat.ThreadRepository,
	storage media.ObjectStorage,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{
		threadRepo: threadRepo,
		storage:    storage,
		eventBus:   eventBus,
		logger:     logger,
	}
}

// OpenThread returns the thread for the participant pair and order scope,
// creating it on first contact. The lookup key is deterministic, so both
// sides always land in the same conversation.
func (s *ChatService) OpenThread(ctx context.Context, input OpenThreadInput) (*chat.Thread, error) {
	key := chat.SynthesizeKey(input.CustomerID, input.CounterpartID, input.OrderID)
	thread, err := s.threadRepo.FindByKey(ctx, key)
	if err == nil {
		return thread, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	thread, err = chat.NewThread(input.CustomerID, input.CounterpartID, input.OrderID)
	if err != nil {
		return nil, err
	}
	if err := s.threadRepo.Save(ctx, thread); err != nil {
		return nil, err
	}

	s.logger.Info("thread opened", zap.String("thread_key", thread.ThreadKey))
	return thread, nil
}

// GetThread returns a thread visible to the requesting user
func (s *ChatService) GetThread(ctx context.Context, threadID, requesterID uuid.UUID, isAdmin bool) (*chat.Thread, error) {
	thread, err := s.threadRepo.FindByID(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && requesterID != thread.CustomerID && requesterID != thread.CounterpartID {
		return nil, shared.ErrForbidden
	}
	return thread, nil
}

// ListThreads lists the conversations a user participates in
func (s *ChatService) ListThreads(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]chat.Thread, error) {
	return s.threadRepo.FindForUser(ctx, userID, filter)
}

// ListHijackedThreads lists conversations currently routed to support
func (s *ChatService) ListHijackedThreads(ctx context.Context, filter shared.Filter) ([]chat.Thread, error) {
	return s.threadRepo.FindHijacked(ctx, filter)
}

// PostText appends a text message to the thread
func (s *ChatService) PostText(ctx context.Context, input PostTextInput) (*chat.Message, error) {
	thread, err := s.threadRepo.FindByID(ctx, input.ThreadID)
	if err != nil {
		return nil, err
	}
	msg, err := thread.PostText(input.SenderID, input.IsAdmin, input.Body)
	if err != nil {
		return nil, err
	}
	if err := s.threadRepo.Save(ctx, thread); err != nil {
		return nil, err
	}
	return msg, nil
}

// PostMedia appends an uploaded image or voice note to the thread
func (s *ChatService) PostMedia(ctx context.Context, input PostMediaInput) (*chat.Message, error) {
	thread, err := s.threadRepo.FindByID(ctx, input.ThreadID)
	if err != nil {
		return nil, err
	}

	exists, err := s.storage.ObjectExists(ctx, input.MediaKey)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, shared.NewDomainError("UPLOAD_NOT_FOUND", "Uploaded media was not found in storage")
	}

	msg, err := thread.PostMedia(input.SenderID, input.IsAdmin, input.Kind, input.MediaKey)
	if err != nil {
		return nil, err
	}
	if err := s.threadRepo.Save(ctx, thread); err != nil {
		return nil, err
	}
	return msg, nil
}

// RequestMediaUpload returns a presigned URL for uploading an attachment.
// The sender must be allowed to post before any storage key is handed out.
func (s *ChatService) RequestMediaUpload(ctx context.Context, input MediaUploadInput) (*MediaUploadResult, error) {
	thread, err := s.threadRepo.FindByID(ctx, input.ThreadID)
	if err != nil {
		return nil, err
	}
	if !thread.CanPost(input.SenderID, input.IsAdmin) {
		if thread.Hijacked && input.SenderID == thread.CounterpartID {
			return nil, shared.ErrThreadLocked
		}
		return nil, shared.ErrForbidden
	}

	key := media.ChatMediaKey(thread.ID, input.Extension)
	url, expiresAt, err := s.storage.GenerateUploadURL(ctx, key, input.ContentType, mediaUploadURLTTL)
	if err != nil {
		return nil, err
	}
	return &MediaUploadResult{
		MediaKey:  key,
		UploadURL: url,
		ExpiresAt: expiresAt,
	}, nil
}

// ListMessages returns a page of messages, oldest first, with media URLs
// resolved to presigned downloads
func (s *ChatService) ListMessages(ctx context.Context, threadID, requesterID uuid.UUID, isAdmin bool, filter shared.Filter) ([]MessageView, error) {
	thread, err := s.threadRepo.FindByID(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && requesterID != thread.CustomerID && requesterID != thread.CounterpartID {
		return nil, shared.ErrForbidden
	}

	messages, err := s.threadRepo.FindMessages(ctx, threadID, filter)
	if err != nil {
		return nil, err
	}

	views := make([]MessageView, 0, len(messages))
	for _, msg := range messages {
		view := MessageView{Message: msg}
		if msg.MediaKey != "" {
			url, _, err := s.storage.GenerateDownloadURL(ctx, msg.MediaKey, mediaDownloadURLTTL)
			if err != nil {
				s.logger.Warn("failed to presign media download",
					zap.String("media_key", msg.MediaKey),
					zap.Error(err),
				)
			} else {
				view.MediaURL = url
			}
		}
		views = append(views, view)
	}
	return views, nil
}

// HijackThread routes a conversation to the admin console
func (s *ChatService) HijackThread(ctx context.Context, threadID, adminID uuid.UUID) (*chat.Thread, error) {
	thread, err := s.threadRepo.FindByID(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if err := thread.Hijack(adminID); err != nil {
		return nil, err
	}
	if err := s.threadRepo.Save(ctx, thread); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, thread)
	s.logger.Info("thread hijacked",
		zap.String("thread_key", thread.ThreadKey),
		zap.String("admin_id", adminID.String()),
	)
	return thread, nil
}

// ReleaseThread hands a hijacked conversation back to the counterpart
func (s *ChatService) ReleaseThread(ctx context.Context, threadID uuid.UUID) (*chat.Thread, error) {
	thread, err := s.threadRepo.FindByID(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if err := thread.Release(); err != nil {
		return nil, err
	}
	if err := s.threadRepo.Save(ctx, thread); err != nil {
		return nil, err
	}

	s.logger.Info("thread released", zap.String("thread_key", thread.ThreadKey))
	return thread, nil
}

func (s *ChatService) publishEvents(ctx context.Context, thread *chat.Thread) {
	if s.eventBus == nil {
		return
	}
	events := thread.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish events", zap.Error(err))
	}
	thread.ClearDomainEvents()
}
