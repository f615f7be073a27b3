package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"YiJinJing/internal/domain/models"
	xhttp "YiJinJing/pkg/http"
)

// ErrNoChoices is returned when the provider answers without a completion.
var ErrNoChoices = errors.New("chat: response has no choices")

type deepSeekRequest struct {
	Model    string               `json:"model"`
	Messages []models.ChatMessage `json:"messages"`
	Stream   bool                 `json:"stream"`
}

type deepSeekResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// DeepSeekCompleter talks to an OpenAI-style chat completions endpoint.
type DeepSeekCompleter struct {
	url    string
	apiKey string
	model  string
	client *xhttp.Client
}

// NewDeepSeekCompleter builds a completer. Extra client options are appended after the timeout.
func NewDeepSeekCompleter(url, apiKey, model string, timeout time.Duration, opts ...xhttp.ClientOption) *DeepSeekCompleter {
	return &DeepSeekCompleter{
		url:    url,
		apiKey: apiKey,
		model:  model,
		client: xhttp.NewClient(append([]xhttp.ClientOption{xhttp.WithTimeout(timeout)}, opts...)...),
	}
}

func (d *DeepSeekCompleter) Name() string { return ProviderDeepSeek }

// Complete sends the whole transcript, system turn included.
func (d *DeepSeekCompleter) Complete(ctx context.Context, messages []models.ChatMessage) (string, error) {
	var resp deepSeekResponse
	err := d.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    d.url,
		Headers: map[string]string{
			"Content-Type":  "application/json",
			"Authorization": "Bearer " + d.apiKey,
		},
		Body: deepSeekRequest{Model: d.model, Messages: messages, Stream: false},
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("deepseek completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	return resp.Choices[0].Message.Content, nil
}
