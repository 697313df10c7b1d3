package repository

import (
	"context"

	"mediconnect/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageRepository interface {
	Create(ctx context.Context, db *gorm.DB, message *entity.Message) error
	FindConversation(ctx context.Context, db *gorm.DB, a, b uuid.UUID) ([]entity.Message, error)
	MarkConversationRead(ctx context.Context, db *gorm.DB, recipientID, senderID uuid.UUID) (int64, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, db *gorm.DB, notification *entity.Notification) error
	FindByUserID(ctx context.Context, db *gorm.DB, userID uuid.UUID, limit int) ([]entity.Notification, error)
	CountUnread(ctx context.Context, db *gorm.DB, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, db *gorm.DB, userID, id uuid.UUID) (int64, error)
	MarkAllRead(ctx context.Context, db *gorm.DB, userID uuid.UUID) (int64, error)
}
