package usecase

import (
	"context"
	"errors"

	"mediconnect/internal/delivery/dto"
	"mediconnect/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var ErrAssistantEmptyReply = errors.New("assistant returned an empty reply")

// assistantSystemPrompt frames every conversation.
const assistantSystemPrompt = "You are a health information assistant for a medical portal. " +
	"Give general guidance only, never a diagnosis, and recommend booking a doctor for anything specific."

type AssistantUsecase interface {
	Chat(ctx context.Context, userID uuid.UUID, req *dto.ChatRequest) (*dto.ChatResponse, error)
}

type assistantUsecase struct {
	log  *logrus.Logger
	chat repository.ChatProvider
}

func NewAssistantUsecase(log *logrus.Logger, chat repository.ChatProvider) AssistantUsecase {
	return &assistantUsecase{log: log, chat: chat}
}

func (u *assistantUsecase) Chat(ctx context.Context, userID uuid.UUID, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	messages := make([]repository.ChatMessage, 0, len(req.Messages)+1)
	messages = append(messages, repository.ChatMessage{Role: "system", Content: assistantSystemPrompt})
	for _, m := range req.Messages {
		messages = append(messages, repository.ChatMessage{Role: m.Role, Content: m.Content})
	}

	reply, err := u.chat.Complete(ctx, messages)
	if err != nil {
		u.log.Warnf("Assistant chat failed for %s: %+v", userID, err)
		return nil, err
	}
	if reply == "" {
		return nil, ErrAssistantEmptyReply
	}

	return &dto.ChatResponse{Reply: reply}, nil
}
