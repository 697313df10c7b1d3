package handler

import (
	"net/http"

	"mediconnect/internal/delivery/dto"
	"mediconnect/internal/usecase"
	"mediconnect/pkg/response"
	"mediconnect/pkg/validator"
)

type MessageHandler struct {
	messageUsecase      usecase.MessageUsecase
	notificationUsecase usecase.NotificationUsecase
	validator           *validator.CustomValidator
}

func NewMessageHandler(messageUsecase usecase.MessageUsecase, notificationUsecase usecase.NotificationUsecase, validator *validator.CustomValidator) *MessageHandler {
	return &MessageHandler{
		messageUsecase:      messageUsecase,
		notificationUsecase: notificationUsecase,
		validator:           validator,
	}
}

// Send handles sending a direct message
// @Summary Send message
// @Tags Messages
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.SendMessageRequest true "Send Message Request"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /messages [post]
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	message, err := h.messageUsecase.Send(r.Context(), userID, &req)
	if err != nil {
		switch err {
		case usecase.ErrRecipientNotFound:
			response.NotFound(w, "Recipient not found")
		case usecase.ErrMessageToSelf:
			response.Error(w, http.StatusBadRequest, err.Error(), nil)
		default:
			response.InternalServerError(w, "Failed to send message")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Message sent successfully", message)
}

// Conversation handles reading the thread with one peer
// @Summary Get conversation
// @Tags Messages
// @Security BearerAuth
// @Produce json
// @Param peerId path string true "Peer user ID"
// @Success 200 {object} response.Response
// @Router /messages/{peerId} [get]
func (h *MessageHandler) Conversation(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	peerID, ok := pathID(w, r, "peerId", "user")
	if !ok {
		return
	}

	messages, err := h.messageUsecase.Conversation(r.Context(), userID, peerID)
	if err != nil {
		response.InternalServerError(w, "Failed to get conversation")
		return
	}

	response.Success(w, http.StatusOK, "Conversation retrieved successfully", messages)
}

// MarkConversationRead handles marking a thread as read
// @Summary Mark conversation read
// @Tags Messages
// @Security BearerAuth
// @Produce json
// @Param peerId path string true "Peer user ID"
// @Success 200 {object} response.Response
// @Router /messages/{peerId}/read [post]
func (h *MessageHandler) MarkConversationRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	peerID, ok := pathID(w, r, "peerId", "user")
	if !ok {
		return
	}

	updated, err := h.messageUsecase.MarkConversationRead(r.Context(), userID, peerID)
	if err != nil {
		response.InternalServerError(w, "Failed to mark conversation read")
		return
	}

	response.Success(w, http.StatusOK, "Conversation marked as read", dto.MarkReadResponse{Updated: updated})
}

// ListNotifications handles the notification feed
// @Summary List notifications
// @Tags Notifications
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /notifications [get]
func (h *MessageHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	notifications, err := h.notificationUsecase.List(r.Context(), userID)
	if err != nil {
		response.InternalServerError(w, "Failed to get notifications")
		return
	}

	response.Success(w, http.StatusOK, "Notifications retrieved successfully", notifications)
}

// UnreadCount handles the notification badge
// @Summary Unread notification count
// @Tags Notifications
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /notifications/unread-count [get]
func (h *MessageHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	unread, err := h.notificationUsecase.UnreadCount(r.Context(), userID)
	if err != nil {
		response.InternalServerError(w, "Failed to count notifications")
		return
	}

	response.Success(w, http.StatusOK, "Unread count retrieved successfully", dto.UnreadCountResponse{Unread: unread})
}

// MarkNotificationRead handles marking one notification as read
// @Summary Mark notification read
// @Tags Notifications
// @Security BearerAuth
// @Produce json
// @Param id path string true "Notification ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /notifications/{id}/read [post]
func (h *MessageHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "notification")
	if !ok {
		return
	}

	if err := h.notificationUsecase.MarkRead(r.Context(), userID, id); err != nil {
		switch err {
		case usecase.ErrNotificationNotFound:
			response.NotFound(w, "Notification not found")
		default:
			response.InternalServerError(w, "Failed to mark notification read")
		}
		return
	}

	response.Success(w, http.StatusOK, "Notification marked as read", nil)
}

// MarkAllNotificationsRead handles clearing the badge
// @Summary Mark all notifications read
// @Tags Notifications
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /notifications/read-all [post]
func (h *MessageHandler) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	updated, err := h.notificationUsecase.MarkAllRead(r.Context(), userID)
	if err != nil {
		response.InternalServerError(w, "Failed to mark notifications read")
		return
	}

	response.Success(w, http.StatusOK, "Notifications marked as read", dto.MarkReadResponse{Updated: updated})
}
