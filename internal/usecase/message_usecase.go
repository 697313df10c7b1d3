package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"mediconnect/internal/converter"
	"mediconnect/internal/delivery/dto"
	"mediconnect/internal/domain/entity"
	"mediconnect/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrRecipientNotFound    = errors.New("recipient not found")
	ErrMessageToSelf        = errors.New("cannot send a message to yourself")
	ErrNotificationNotFound = errors.New("notification not found")
)

const (
	// notificationListLimit caps how many notifications are listed at once.
	notificationListLimit = 50

	notificationPreviewRunes = 80
)

type MessageUsecase interface {
	Send(ctx context.Context, senderID uuid.UUID, req *dto.SendMessageRequest) (*dto.MessageResponse, error)
	Conversation(ctx context.Context, userID, peerID uuid.UUID) ([]dto.MessageResponse, error)
	MarkConversationRead(ctx context.Context, userID, peerID uuid.UUID) (int64, error)
}

type NotificationUsecase interface {
	List(ctx context.Context, userID uuid.UUID) ([]dto.NotificationResponse, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

type messageUsecase struct {
	db               *gorm.DB
	log              *logrus.Logger
	messageRepo      repository.MessageRepository
	notificationRepo repository.NotificationRepository
	profileRepo      repository.ProfileRepository
	publisher        repository.ChangePublisher
}

func NewMessageUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	messageRepo repository.MessageRepository,
	notificationRepo repository.NotificationRepository,
	profileRepo repository.ProfileRepository,
	publisher repository.ChangePublisher,
) MessageUsecase {
	return &messageUsecase{
		db:               db,
		log:              log,
		messageRepo:      messageRepo,
		notificationRepo: notificationRepo,
		profileRepo:      profileRepo,
		publisher:        publisher,
	}
}

// Send stores the message and a notification for the recipient in one transaction.
func (u *messageUsecase) Send(ctx context.Context, senderID uuid.UUID, req *dto.SendMessageRequest) (*dto.MessageResponse, error) {
	if req.RecipientID == senderID {
		return nil, ErrMessageToSelf
	}

	if _, err := u.profileRepo.FindByID(ctx, u.db, req.RecipientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipientNotFound
		}
		u.log.Warnf("Failed to find recipient %s: %+v", req.RecipientID, err)
		return nil, err
	}

	senderName := "Someone"
	if sender, err := u.profileRepo.FindByID(ctx, u.db, senderID); err == nil && sender.FullName() != "" {
		senderName = sender.FullName()
	}

	message := &entity.Message{
		SenderID:    senderID,
		RecipientID: req.RecipientID,
		Content:     strings.TrimSpace(req.Content),
	}
	notification := &entity.Notification{
		UserID: req.RecipientID,
		Title:  fmt.Sprintf("New message from %s", senderName),
		Body:   preview(message.Content),
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.messageRepo.Create(ctx, tx, message); err != nil {
		u.log.Warnf("Failed to create message: %+v", err)
		return nil, err
	}

	if err := u.notificationRepo.Create(ctx, tx, notification); err != nil {
		u.log.Warnf("Failed to create notification: %+v", err)
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	response := converter.MessageToResponse(message)
	publishChange(u.log, u.publisher, entity.ChangeEvent{
		Table:    "messages",
		Type:     entity.ChangeInsert,
		RecordID: message.ID.String(),
		Record:   response,
		Audience: []uuid.UUID{message.SenderID, message.RecipientID},
	})
	publishChange(u.log, u.publisher, entity.ChangeEvent{
		Table:    "notifications",
		Type:     entity.ChangeInsert,
		RecordID: notification.ID.String(),
		Record:   converter.NotificationsToResponses([]entity.Notification{*notification})[0],
		Audience: []uuid.UUID{notification.UserID},
	})

	return response, nil
}

func (u *messageUsecase) Conversation(ctx context.Context, userID, peerID uuid.UUID) ([]dto.MessageResponse, error) {
	messages, err := u.messageRepo.FindConversation(ctx, u.db, userID, peerID)
	if err != nil {
		u.log.Warnf("Failed to load conversation %s/%s: %+v", userID, peerID, err)
		return nil, err
	}
	return converter.MessagesToResponses(messages), nil
}

// MarkConversationRead marks the messages peerID sent to userID as read.
func (u *messageUsecase) MarkConversationRead(ctx context.Context, userID, peerID uuid.UUID) (int64, error) {
	updated, err := u.messageRepo.MarkConversationRead(ctx, u.db, userID, peerID)
	if err != nil {
		u.log.Warnf("Failed to mark conversation read: %+v", err)
		return 0, err
	}
	return updated, nil
}

func preview(content string) string {
	if utf8.RuneCountInString(content) <= notificationPreviewRunes {
		return content
	}
	runes := []rune(content)
	return string(runes[:notificationPreviewRunes]) + "…"
}

type notificationUsecase struct {
	db               *gorm.DB
	log              *logrus.Logger
	notificationRepo repository.NotificationRepository
}

func NewNotificationUsecase(db *gorm.DB, log *logrus.Logger, notificationRepo repository.NotificationRepository) NotificationUsecase {
	return &notificationUsecase{
		db:               db,
		log:              log,
		notificationRepo: notificationRepo,
	}
}

func (u *notificationUsecase) List(ctx context.Context, userID uuid.UUID) ([]dto.NotificationResponse, error) {
	notifications, err := u.notificationRepo.FindByUserID(ctx, u.db, userID, notificationListLimit)
	if err != nil {
		u.log.Warnf("Failed to list notifications: %+v", err)
		return nil, err
	}
	return converter.NotificationsToResponses(notifications), nil
}

func (u *notificationUsecase) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := u.notificationRepo.CountUnread(ctx, u.db, userID)
	if err != nil {
		u.log.Warnf("Failed to count unread notifications: %+v", err)
		return 0, err
	}
	return count, nil
}

func (u *notificationUsecase) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	updated, err := u.notificationRepo.MarkRead(ctx, u.db, userID, id)
	if err != nil {
		u.log.Warnf("Failed to mark notification read: %+v", err)
		return err
	}
	if updated == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (u *notificationUsecase) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	updated, err := u.notificationRepo.MarkAllRead(ctx, u.db, userID)
	if err != nil {
		u.log.Warnf("Failed to mark notifications read: %+v", err)
		return 0, err
	}
	return updated, nil
}
