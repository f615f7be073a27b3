package server

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"YiJinJing/internal/handler/api"
	mid "YiJinJing/internal/middleware"
	"YiJinJing/internal/repository"
	"YiJinJing/internal/usecase"
	"YiJinJing/pkg/clock"
	"YiJinJing/pkg/config"
	xhttp "YiJinJing/pkg/http"
	pkgkafka "YiJinJing/pkg/kafka"
	applogger "YiJinJing/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
)

const limiterIdle = 15 * time.Minute

// App encapsulates the entire application lifecycle.
type App struct {
	cfg      *config.Config
	log      *applogger.Logger
	clk      clock.Clock
	handler  *api.DashboardEchoHandler
	sessions *usecase.SessionManager
	pipeline *mid.EventPipeline
	producer *pkgkafka.Producer
	consumer *pkgkafka.Consumer
	relay    *repository.EventRelay
	store    io.Closer

	httpServer *xhttp.Server
	pruner     clock.Timer
}

// New creates a new App instance with all dependencies.
// pipeline, producer, consumer and relay are nil when Kafka is disabled.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	clk clock.Clock,
	handler *api.DashboardEchoHandler,
	sessions *usecase.SessionManager,
	pipeline *mid.EventPipeline,
	producer *pkgkafka.Producer,
	consumer *pkgkafka.Consumer,
	relay *repository.EventRelay,
	store io.Closer,
) *App {
	return &App{
		cfg:      cfg,
		log:      log,
		clk:      clk,
		handler:  handler,
		sessions: sessions,
		pipeline: pipeline,
		producer: producer,
		consumer: consumer,
		relay:    relay,
		store:    store,
	}
}

// Start brings up the pipeline, the relay consumer and the HTTP server.
func (a *App) Start(ctx context.Context) error {
	if a.producer != nil && a.cfg.Log.Collect {
		a.log.AddCollector(&applogger.CollectionConfig{
			TimeInterval: a.cfg.Log.CollectInterval,
			Topic:        a.cfg.Kafka.LogsTopic,
			Publisher:    repository.NewKafkaPublisher(a.producer),
		})
	}

	if a.pipeline != nil {
		a.pipeline.Start(ctx)
	}

	if a.consumer != nil && a.relay != nil {
		a.consumer.RegisterHandler(a.relay)
		a.consumer.WithConsumerHook(pkgkafka.LoggingHook(a.log))
		if err := a.consumer.Start(); err != nil {
			return err
		}
	}

	opts := []xhttp.ServerOption{
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithAllowOrigins(a.cfg.Server.AllowOrigins),
	}
	path := ""
	if a.cfg.Metrics.Enabled {
		path = a.cfg.Metrics.Path
	}
	opts = append(opts, xhttp.WithMetrics(path, prometheus.DefaultRegisterer, prometheus.DefaultGatherer))
	a.httpServer = xhttp.NewServer(a.handler, a.log, opts...)

	a.pruner = a.clk.Every(limiterIdle, func() {
		if n := a.handler.PruneLimits(limiterIdle); n > 0 {
			a.log.Debug("rate limit buckets pruned", applogger.Int("count", n))
		}
	})

	a.log.Info("application started",
		applogger.String("env", a.cfg.Environment),
		applogger.Bool("kafka", a.producer != nil),
		applogger.Bool("redis", a.cfg.Redis.Enabled),
		applogger.String("chat_provider", a.cfg.Chat.Provider))
	return a.httpServer.Start()
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.Start(ctx); err != nil {
		a.log.Error("start failed", applogger.Error(err))
		_ = a.Shutdown(ctx)
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.Shutdown(ctx)
}

// Shutdown stops everything in reverse dependency order.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error

	if a.pruner != nil {
		a.pruner.Stop()
	}

	// Streams are hijacked connections; the HTTP server does not wait for them.
	a.handler.Close()
	if a.httpServer != nil {
		if err := a.httpServer.Stop(ctx); err != nil {
			a.log.Error("http shutdown error", applogger.Error(err))
			errs = append(errs, err)
		}
	}

	a.sessions.Close()

	if a.consumer != nil {
		stopCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
		if err := a.consumer.Stop(stopCtx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
			errs = append(errs, err)
		}
		cancel()
	}
	if a.pipeline != nil {
		a.pipeline.Stop()
	}

	// Flush collected logs while the producer is still open.
	a.log.RemoveCollector()
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.log.Warn("kafka producer close error", applogger.Error(err))
			errs = append(errs, err)
		}
	}

	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn("cache close error", applogger.Error(err))
			errs = append(errs, err)
		}
	}

	a.log.Info("shutdown complete")
	return errors.Join(errs...)
}
