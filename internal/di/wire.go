//go:build wireinject
// +build wireinject

package di

import (
	"YiJinJing/pkg/config"
	"YiJinJing/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideClock,
		ProvideMetrics,

		// Infrastructure clients
		ProvideCache,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// Event flow
		ProvideHub,
		ProvideEventPipeline,
		ProvideEventPublisher,
		ProvideEventRelay,

		// Use cases and services
		ProvideSessionManager,
		ProvideAuthService,
		ProvideChatCompleter,
		ProvideAssistant,

		// Transport
		ProvideDashboardHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
