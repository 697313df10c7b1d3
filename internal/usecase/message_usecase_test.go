package usecase

import (
	"context"
	"strings"
	"testing"

	"mediconnect/internal/delivery/dto"
	"mediconnect/internal/domain/entity"
	repoimpl "mediconnect/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type messageFixture struct {
	messages      MessageUsecase
	notifications NotificationUsecase
	publisher     *recordingPublisher
	alice         uuid.UUID
	bob           uuid.UUID
}

func newMessageFixture(t *testing.T) *messageFixture {
	t.Helper()
	db := setupTestDB(t)
	log := quietLogger()
	profiles := repoimpl.NewProfileRepository()
	notificationRepo := repoimpl.NewNotificationRepository()
	ctx := context.Background()

	f := &messageFixture{publisher: &recordingPublisher{}, alice: uuid.New(), bob: uuid.New()}
	require.NoError(t, profiles.Upsert(ctx, db, &entity.Profile{ID: f.alice, FirstName: "Alice", LastName: "Lima", Role: entity.RolePatient}))
	require.NoError(t, profiles.Upsert(ctx, db, &entity.Profile{ID: f.bob, FirstName: "Bob", Role: entity.RoleDoctor}))

	f.messages = NewMessageUsecase(db, log, repoimpl.NewMessageRepository(), notificationRepo, profiles, f.publisher)
	f.notifications = NewNotificationUsecase(db, log, notificationRepo)
	return f
}

func TestMessage_SendCreatesNotificationForRecipient(t *testing.T) {
	f := newMessageFixture(t)
	ctx := context.Background()

	msg, err := f.messages.Send(ctx, f.alice, &dto.SendMessageRequest{RecipientID: f.bob, Content: "  See you tomorrow  "})
	require.NoError(t, err)
	assert.Equal(t, "See you tomorrow", msg.Content)

	notifications, err := f.notifications.List(ctx, f.bob)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, "New message from Alice Lima", notifications[0].Title)
	assert.Equal(t, "See you tomorrow", notifications[0].Body)

	mine, err := f.notifications.List(ctx, f.alice)
	require.NoError(t, err)
	assert.Empty(t, mine)

	require.Len(t, f.publisher.events, 2)
	assert.ElementsMatch(t, []uuid.UUID{f.alice, f.bob}, f.publisher.events[0].Audience)
	assert.Equal(t, []uuid.UUID{f.bob}, f.publisher.events[1].Audience)
}

func TestMessage_SendValidation(t *testing.T) {
	f := newMessageFixture(t)
	ctx := context.Background()

	_, err := f.messages.Send(ctx, f.alice, &dto.SendMessageRequest{RecipientID: f.alice, Content: "hi"})
	assert.ErrorIs(t, err, ErrMessageToSelf)

	_, err = f.messages.Send(ctx, f.alice, &dto.SendMessageRequest{RecipientID: uuid.New(), Content: "hi"})
	assert.ErrorIs(t, err, ErrRecipientNotFound)

	assert.Empty(t, f.publisher.events)
}

func TestMessage_ConversationAndMarkRead(t *testing.T) {
	f := newMessageFixture(t)
	ctx := context.Background()

	_, err := f.messages.Send(ctx, f.alice, &dto.SendMessageRequest{RecipientID: f.bob, Content: "one"})
	require.NoError(t, err)
	_, err = f.messages.Send(ctx, f.bob, &dto.SendMessageRequest{RecipientID: f.alice, Content: "two"})
	require.NoError(t, err)
	_, err = f.messages.Send(ctx, f.alice, &dto.SendMessageRequest{RecipientID: f.bob, Content: "three"})
	require.NoError(t, err)

	conversation, err := f.messages.Conversation(ctx, f.bob, f.alice)
	require.NoError(t, err)
	assert.Len(t, conversation, 3)

	updated, err := f.messages.MarkConversationRead(ctx, f.bob, f.alice)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	updated, err = f.messages.MarkConversationRead(ctx, f.bob, f.alice)
	require.NoError(t, err)
	assert.Zero(t, updated)
}

func TestNotification_UnreadCountAndMarkRead(t *testing.T) {
	f := newMessageFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.messages.Send(ctx, f.alice, &dto.SendMessageRequest{RecipientID: f.bob, Content: "ping"})
		require.NoError(t, err)
	}

	unread, err := f.notifications.UnreadCount(ctx, f.bob)
	require.NoError(t, err)
	assert.Equal(t, int64(3), unread)

	list, err := f.notifications.List(ctx, f.bob)
	require.NoError(t, err)
	require.NoError(t, f.notifications.MarkRead(ctx, f.bob, list[0].ID))

	// Another user cannot mark it.
	assert.ErrorIs(t, f.notifications.MarkRead(ctx, f.alice, list[1].ID), ErrNotificationNotFound)

	updated, err := f.notifications.MarkAllRead(ctx, f.bob)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	unread, err = f.notifications.UnreadCount(ctx, f.bob)
	require.NoError(t, err)
	assert.Zero(t, unread)
}

func TestPreview_TruncatesLongContent(t *testing.T) {
	short := "hello"
	assert.Equal(t, short, preview(short))

	long := strings.Repeat("é", notificationPreviewRunes+10)
	got := preview(long)
	assert.Equal(t, strings.Repeat("é", notificationPreviewRunes)+"…", got)
}
