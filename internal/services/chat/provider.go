package chat

import (
	"fmt"

	"YiJinJing/internal/domain/repository"
	"YiJinJing/pkg/config"
)

const (
	ProviderDeepSeek  = "deepseek"
	ProviderAnthropic = "anthropic"
)

// NewCompleter picks the provider named in config.
func NewCompleter(cfg *config.Config) (repository.ChatCompleter, error) {
	c := cfg.Chat
	switch c.Provider {
	case ProviderDeepSeek, "":
		return NewDeepSeekCompleter(c.URL, c.APIKey, c.Model, c.Timeout), nil
	case ProviderAnthropic:
		baseURL := ""
		if c.URL != config.DefaultChatURL {
			baseURL = c.URL
		}
		return NewAnthropicCompleter(c.APIKey, baseURL, c.Model, c.MaxTokens), nil
	default:
		return nil, fmt.Errorf("unknown chat provider %q", c.Provider)
	}
}
