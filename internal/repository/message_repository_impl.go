package repository

import (
	"context"

	"mediconnect/internal/domain/entity"
	domainRepo "mediconnect/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message Repository

type messageRepository struct{}

func NewMessageRepository() domainRepo.MessageRepository {
	return &messageRepository{}
}

func (r *messageRepository) Create(ctx context.Context, db *gorm.DB, message *entity.Message) error {
	return db.WithContext(ctx).Create(message).Error
}

func (r *messageRepository) FindConversation(ctx context.Context, db *gorm.DB, a, b uuid.UUID) ([]entity.Message, error) {
	var messages []entity.Message
	err := db.WithContext(ctx).
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)", a, b, b, a).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *messageRepository) MarkConversationRead(ctx context.Context, db *gorm.DB, recipientID, senderID uuid.UUID) (int64, error) {
	result := db.WithContext(ctx).Model(&entity.Message{}).
		Where("recipient_id = ? AND sender_id = ? AND read = ?", recipientID, senderID, false).
		Update("read", true)
	return result.RowsAffected, result.Error
}

// Notification Repository

type notificationRepository struct{}

func NewNotificationRepository() domainRepo.NotificationRepository {
	return &notificationRepository{}
}

func (r *notificationRepository) Create(ctx context.Context, db *gorm.DB, notification *entity.Notification) error {
	return db.WithContext(ctx).Create(notification).Error
}

func (r *notificationRepository) FindByUserID(ctx context.Context, db *gorm.DB, userID uuid.UUID, limit int) ([]entity.Notification, error) {
	var notifications []entity.Notification
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, db *gorm.DB, userID uuid.UUID) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&entity.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&total).Error
	return total, err
}

func (r *notificationRepository) MarkRead(ctx context.Context, db *gorm.DB, userID, id uuid.UUID) (int64, error) {
	result := db.WithContext(ctx).Model(&entity.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	return result.RowsAffected, result.Error
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, db *gorm.DB, userID uuid.UUID) (int64, error) {
	result := db.WithContext(ctx).Model(&entity.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true)
	return result.RowsAffected, result.Error
}
