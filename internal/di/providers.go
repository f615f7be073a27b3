package di

import (
	"fmt"
	"time"

	"YiJinJing/internal/domain/repository"
	"YiJinJing/internal/handler/api"
	"YiJinJing/internal/handler/ws"
	mid "YiJinJing/internal/middleware"
	internalrepo "YiJinJing/internal/repository"
	"YiJinJing/internal/service/ratelimit"
	"YiJinJing/internal/services/auth"
	"YiJinJing/internal/services/chat"
	"YiJinJing/internal/usecase"
	"YiJinJing/pkg/cache"
	"YiJinJing/pkg/clock"
	"YiJinJing/pkg/config"
	pkgkafka "YiJinJing/pkg/kafka"
	applogger "YiJinJing/pkg/logger"
	"YiJinJing/pkg/metrics"
	"YiJinJing/pkg/server"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideClock returns the wall clock.
func ProvideClock() clock.Clock {
	return clock.Real{}
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideCache returns Redis behind a ristretto L1 when redis is enabled, else an in-process LRU.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Redis.Enabled {
		return cache.NewMemoryCache(), nil
	}
	rc, err := cache.NewRedisCache(
		cache.WithRedisAddr(cfg.Redis.Addr),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
		cache.WithRedisPrefix(cfg.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	lc, err := cache.NewLayeredCache(rc, cache.WithLayeredTTL(cfg.Redis.L1TTL))
	if err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("layered cache: %w", err)
	}
	return lc, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config, log *applogger.Logger) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
		pkgkafka.WithProducerMetrics(prometheus.DefaultRegisterer),
		pkgkafka.WithProducerLogger(log),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideKafkaConsumer creates the relay consumer, or nil when Kafka is disabled.
// Each instance joins its own group so it receives every session's events.
func ProvideKafkaConsumer(cfg *config.Config, log *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	c := cfg.Kafka.Consumer
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(c.GroupPrefix+"-"+uuid.NewString()),
		pkgkafka.WithConsumerAutoOffsetReset("latest"),
		pkgkafka.WithConsumerWorkers(c.Workers),
		pkgkafka.WithConsumerBufferSize(c.BufferSize),
		pkgkafka.WithConsumerRetry(c.RetryMax, c.BackoffMin, c.BackoffMax),
		pkgkafka.WithConsumerDLQ(c.DLQTopic),
		pkgkafka.WithConsumerFetch(c.MinBytes, c.MaxBytes),
		pkgkafka.WithConsumerMetrics(prometheus.DefaultRegisterer),
		pkgkafka.WithConsumerLogger(log),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideHub creates the local WebSocket fan-out.
func ProvideHub(log *applogger.Logger) *ws.Hub {
	return ws.NewHub(log)
}

// ProvideEventPipeline builds the broker pipeline, or nil when Kafka is disabled.
func ProvideEventPipeline(producer *pkgkafka.Producer, cfg *config.Config, m repository.Metrics) *mid.EventPipeline {
	if producer == nil {
		return nil
	}
	return mid.NewEventPipeline(
		internalrepo.NewKafkaEventPublisher(producer, cfg.Kafka.EventsTopic),
		m,
		mid.WithBufferSize(2000),
	)
}

// ProvideEventPublisher routes engine events through Kafka when enabled, else straight to the hub.
func ProvideEventPublisher(hub *ws.Hub, pipeline *mid.EventPipeline) repository.EventPublisher {
	if pipeline == nil {
		return hub
	}
	return pipeline
}

// ProvideEventRelay creates the consumer handler feeding the hub, or nil when Kafka is disabled.
func ProvideEventRelay(cfg *config.Config, hub *ws.Hub, log *applogger.Logger) *internalrepo.EventRelay {
	if !cfg.Kafka.Enabled {
		return nil
	}
	return internalrepo.NewEventRelay(cfg.Kafka.EventsTopic, hub, log)
}

// ProvideSessionManager creates the per-user engine registry.
func ProvideSessionManager(
	cfg *config.Config,
	clk clock.Clock,
	pub repository.EventPublisher,
	m repository.Metrics,
	log *applogger.Logger,
) *usecase.SessionManager {
	return usecase.NewSessionManager(usecase.EngineConfigFrom(cfg), clk, pub,
		usecase.WithSeed(cfg.Simulation.Seed),
		usecase.WithIdleTimeout(cfg.Feeds.SessionIdleAfter),
		usecase.WithSessionMetrics(m),
		usecase.WithSessionLogger(log),
	)
}

// ProvideAuthService hashes the demo accounts.
func ProvideAuthService(cfg *config.Config) (*auth.Service, error) {
	return auth.NewService(cfg.Auth.JWTSecret, cfg.Auth.BcryptCost,
		auth.WithTokenTTL(cfg.Auth.TokenTTL),
		auth.WithLoginDelay(cfg.Auth.LoginDelay),
	)
}

// ProvideChatCompleter picks the configured chat provider.
func ProvideChatCompleter(cfg *config.Config) (repository.ChatCompleter, error) {
	return chat.NewCompleter(cfg)
}

// ProvideAssistant creates the chat assistant. Transcripts live as long as a login token.
func ProvideAssistant(
	cfg *config.Config,
	completer repository.ChatCompleter,
	store cache.Service,
	m repository.Metrics,
	log *applogger.Logger,
) *chat.Assistant {
	return chat.NewAssistant(completer, store,
		chat.Prompts{
			System:   cfg.Chat.SystemPrompt,
			Greeting: cfg.Chat.Greeting,
			Fallback: cfg.Chat.Fallback,
		},
		chat.WithTranscriptTTL(cfg.Auth.TokenTTL),
		chat.WithTurnTimeout(cfg.Chat.Timeout+5*time.Second),
		chat.WithMetrics(m),
		chat.WithLogger(log),
	)
}

// ProvideDashboardHandler creates the HTTP/WebSocket handler.
func ProvideDashboardHandler(
	cfg *config.Config,
	log *applogger.Logger,
	authSvc *auth.Service,
	sessions *usecase.SessionManager,
	assistant *chat.Assistant,
	hub *ws.Hub,
) *api.DashboardEchoHandler {
	rl := cfg.RateLimit
	return api.NewDashboardEchoHandler(log, authSvc, sessions, assistant, hub,
		ratelimit.PerMinute(rl.LoginPerMinute, rl.LoginBurst),
		ratelimit.PerMinute(rl.ChatPerMinute, rl.ChatBurst),
	)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	clk clock.Clock,
	handler *api.DashboardEchoHandler,
	sessions *usecase.SessionManager,
	pipeline *mid.EventPipeline,
	producer *pkgkafka.Producer,
	consumer *pkgkafka.Consumer,
	relay *internalrepo.EventRelay,
	store cache.Service,
) *server.App {
	return server.New(cfg, log, clk, handler, sessions, pipeline, producer, consumer, relay, store)
}
