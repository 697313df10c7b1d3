package dto

type ChatMessageRequest struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required,max=4000"`
}

type ChatRequest struct {
	Messages []ChatMessageRequest `json:"messages" validate:"required,min=1,max=50,dive"`
}

type ChatResponse struct {
	Reply string `json:"reply"`
}
