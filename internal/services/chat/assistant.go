package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"YiJinJing/internal/domain/models"
	"YiJinJing/internal/domain/repository"
	"YiJinJing/pkg/cache"
	applogger "YiJinJing/pkg/logger"
)

var (
	ErrEmptyMessage = errors.New("chat: message is empty")
	ErrTurnInFlight = errors.New("chat: a reply is already pending")
)

const (
	transcriptPrefix = "chat:transcript"
	inflightPrefix   = "chat:inflight"
)

// Prompts holds the fixed texts of a conversation.
type Prompts struct {
	System   string
	Greeting string
	Fallback string
}

type transcript struct {
	Messages []models.ChatMessage `json:"messages"`
}

// Assistant keeps one transcript per session and asks the completer for replies.
type Assistant struct {
	completer repository.ChatCompleter
	store     cache.Service
	prompts   Prompts
	ttl       time.Duration
	lockTTL   time.Duration
	metrics   repository.Metrics
	log       *applogger.Logger
}

// AssistantOption configures Assistant.
type AssistantOption func(*Assistant)

// WithTranscriptTTL sets how long an idle transcript is kept.
func WithTranscriptTTL(ttl time.Duration) AssistantOption {
	return func(a *Assistant) { a.ttl = ttl }
}

// WithTurnTimeout bounds how long a session stays locked by a pending reply.
func WithTurnTimeout(d time.Duration) AssistantOption {
	return func(a *Assistant) { a.lockTTL = d }
}

func WithMetrics(m repository.Metrics) AssistantOption {
	return func(a *Assistant) { a.metrics = m }
}

func WithLogger(l *applogger.Logger) AssistantOption {
	return func(a *Assistant) { a.log = l }
}

// NewAssistant wires a completer to a transcript store.
func NewAssistant(completer repository.ChatCompleter, store cache.Service, prompts Prompts, opts ...AssistantOption) *Assistant {
	a := &Assistant{
		completer: completer,
		store:     store,
		prompts:   prompts,
		ttl:       12 * time.Hour,
		lockTTL:   time.Minute,
		metrics:   repository.NopMetrics{},
		log:       applogger.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Transcript returns the visible turns of a session, greeting first.
func (a *Assistant) Transcript(ctx context.Context, session string) ([]models.ChatMessage, error) {
	t, err := a.load(ctx, session)
	if err != nil {
		return nil, err
	}
	return visible(t.Messages), nil
}

// Send appends the user turn and the reply. Provider failures become the fallback reply, not an error.
func (a *Assistant) Send(ctx context.Context, session, text string) (models.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.ChatMessage{}, ErrEmptyMessage
	}

	lockKey := cache.GenerateKey(inflightPrefix, session)
	ok, err := a.store.TryLock(ctx, lockKey, a.lockTTL)
	if err != nil {
		return models.ChatMessage{}, fmt.Errorf("lock session: %w", err)
	}
	if !ok {
		return models.ChatMessage{}, ErrTurnInFlight
	}
	defer func() {
		if err := a.store.Unlock(context.WithoutCancel(ctx), lockKey); err != nil {
			a.log.Warn("chat unlock failed", applogger.String("session", session), applogger.Error(err))
		}
	}()

	t, err := a.load(ctx, session)
	if err != nil {
		return models.ChatMessage{}, err
	}
	t.Messages = append(t.Messages, models.ChatMessage{Role: models.RoleUser, Content: text})
	if err := a.save(ctx, session, t); err != nil {
		return models.ChatMessage{}, err
	}

	start := time.Now()
	content, err := a.completer.Complete(ctx, t.Messages)
	a.metrics.RecordLatency("chat_complete", time.Since(start).Seconds())
	if err != nil {
		a.log.Warn("chat completion failed",
			applogger.String("session", session),
			applogger.String("provider", a.completer.Name()),
			applogger.Error(err),
		)
		a.metrics.RecordChat(a.completer.Name(), "error")
		content = a.prompts.Fallback
	} else {
		a.metrics.RecordChat(a.completer.Name(), "ok")
	}

	reply := models.ChatMessage{Role: models.RoleAssistant, Content: content}
	t.Messages = append(t.Messages, reply)
	if err := a.save(context.WithoutCancel(ctx), session, t); err != nil {
		return reply, err
	}
	return reply, nil
}

// Reset drops the transcript so the next read starts from the greeting.
func (a *Assistant) Reset(ctx context.Context, session string) error {
	return a.store.Delete(ctx, cache.GenerateKey(transcriptPrefix, session))
}

func (a *Assistant) load(ctx context.Context, session string) (*transcript, error) {
	var t transcript
	err := a.store.Get(ctx, cache.GenerateKey(transcriptPrefix, session), &t)
	switch {
	case err == nil:
		return &t, nil
	case errors.Is(err, cache.ErrCacheMiss):
		return a.seed(), nil
	default:
		return nil, fmt.Errorf("load transcript: %w", err)
	}
}

func (a *Assistant) save(ctx context.Context, session string, t *transcript) error {
	if err := a.store.Set(ctx, cache.GenerateKey(transcriptPrefix, session), t, a.ttl); err != nil {
		return fmt.Errorf("save transcript: %w", err)
	}
	return nil
}

func (a *Assistant) seed() *transcript {
	return &transcript{Messages: []models.ChatMessage{
		{Role: models.RoleSystem, Content: a.prompts.System},
		{Role: models.RoleAssistant, Content: a.prompts.Greeting},
	}}
}

func visible(msgs []models.ChatMessage) []models.ChatMessage {
	out := make([]models.ChatMessage, 0, len(msgs))
	for _, m := range msgs {
		if m.Role != models.RoleSystem {
			out = append(out, m)
		}
	}
	return out
}
