package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/costerbox/backend/internal/domain/chat"
	"github.com/costerbox/backend/internal/domain/shared"
	"github.com/costerbox/backend/internal/infrastructure/persistence/models"
)

// GormThreadRepository implements chat.ThreadRepository using GORM
type GormThreadRepository struct {
	db *gorm.DB
}

// NewGormThreadRepository creates a new GormThreadRepository
func NewGormThreadRepository(db *gorm.DB) *GormThreadRepository {
	return &GormThreadRepository{db: db}
}

var _ chat.ThreadRepository = (*GormThreadRepository)(nil)

// FindByID finds a thread with its messages
func (r *GormThreadRepository) FindByID(ctx context.Context, id uuid.UUID) (*chat.Thread, error) {
	var model models.ThreadModel
	if err := r.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByKey finds a thread by its synthesized key
func (r *GormThreadRepository) FindByKey(ctx context.Context, threadKey string) (*chat.Thread, error) {
	var model models.ThreadModel
	if err := r.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("thread_key = ?", threadKey).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindForUser finds threads the user participates in, most recent first
func (r *GormThreadRepository) FindForUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]chat.Thread, error) {
	query := r.db.WithContext(ctx).Model(&models.ThreadModel{}).
		Where("customer_id = ? OR counterpart_id = ?", userID, userID)
	return r.findAll(query, filter)
}

// FindHijacked finds threads currently routed to the admin console
func (r *GormThreadRepository) FindHijacked(ctx context.Context, filter shared.Filter) ([]chat.Thread, error) {
	query := r.db.WithContext(ctx).Model(&models.ThreadModel{}).
		Where("hijacked = ?", true)
	return r.findAll(query, filter)
}

func (r *GormThreadRepository) findAll(query *gorm.DB, filter shared.Filter) ([]chat.Thread, error) {
	if filter.OrderBy == "" {
		filter.OrderBy = "last_message_at"
	}
	var threadModels []models.ThreadModel
	if err := applyFilter(query, filter, ThreadSortFields).Find(&threadModels).Error; err != nil {
		return nil, err
	}
	threads := make([]chat.Thread, len(threadModels))
	for i := range threadModels {
		threads[i] = *threadModels[i].ToDomain()
	}
	return threads, nil
}

// Save creates or updates a thread and upserts its messages.
// Messages are append-only; existing rows are never deleted.
func (r *GormThreadRepository) Save(ctx context.Context, t *chat.Thread) error {
	model := models.ThreadModelFromDomain(t)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Messages").Save(model).Error; err != nil {
			return err
		}
		for i := range model.Messages {
			model.Messages[i].ThreadID = model.ID
			if err := tx.Save(&model.Messages[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// FindMessages returns a page of messages for a thread, oldest first
func (r *GormThreadRepository) FindMessages(ctx context.Context, threadID uuid.UUID, filter shared.Filter) ([]chat.Message, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 50
	}

	var messageModels []models.MessageModel
	if err := r.db.WithContext(ctx).Model(&models.MessageModel{}).
		Where("thread_id = ?", threadID).
		Order("created_at ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&messageModels).Error; err != nil {
		return nil, err
	}

	messages := make([]chat.Message, len(messageModels))
	for i := range messageModels {
		messages[i] = *messageModels[i].ToDomain()
	}
	return messages, nil
}
