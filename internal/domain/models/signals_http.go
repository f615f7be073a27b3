package models

// Requests for dashboard HTTP endpoints. Defined in domain for consistency and reuse.

type LoginRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=128"`
}

type SystemRequest struct {
	// On is optional; an absent value toggles.
	On *bool `json:"on"`
}

type StockRequest struct {
	Stock string `json:"stock" validate:"required,oneof=CAMBRICON BYD ZTE"`
}

type LanguageRequest struct {
	Language string `json:"language" query:"lang" validate:"required,oneof=CN EN"`
}

type I18nRequest struct {
	Lang string `query:"lang" default:"CN" validate:"oneof=CN EN"`
}

type SplashRequest struct {
	ElapsedMs int `query:"elapsed_ms" default:"0" validate:"gte=0,lte=600000"`
}

type ChartRequest struct {
	Limit int `query:"limit" default:"40" validate:"gte=1,lte=40"`
}

type ChatRequest struct {
	Message string `json:"message" validate:"required,max=4000"`
}

// ChatRole is the speaker of a chat turn.
type ChatRole string

const (
	RoleSystem    ChatRole = "system"
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ChatMessage is one chat turn.
type ChatMessage struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}
