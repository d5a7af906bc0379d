// Package monolith provides the application container and module interface.
package monolith

import (
	"context"
	"fmt"

	"github.com/fd1az/quote-engine/internal/config"
	"github.com/fd1az/quote-engine/internal/delay"
	"github.com/fd1az/quote-engine/internal/di"
	"github.com/fd1az/quote-engine/internal/httpclient"
	"github.com/fd1az/quote-engine/internal/logger"
)

// Global service names shared by every module.
const (
	ServiceConfig         = "config"
	ServiceLogger         = "logger"
	ServiceDelayPolicy    = "delayPolicy"
	ServiceDelayOverrides = "delayOverrides"
	ServiceHTTPClient     = "httpClient"
)

// Monolith is the main application container providing access to shared infrastructure.
type Monolith interface {
	Config() *config.Config
	Logger() logger.LoggerInterface
	Delay() *delay.Policy
	Services() di.ServiceRegistry
}

// Module represents a bounded context module that can register services and start up.
type Module interface {
	RegisterServices(di.Container) error
	Startup(context.Context, Monolith) error
}

// app implements the Monolith interface.
type app struct {
	config    *config.Config
	logger    logger.LoggerInterface
	delay     *delay.Policy
	overrides *delay.MapOverrides
	container di.Container
}

// New creates a new Monolith instance.
func New(cfg *config.Config, log logger.LoggerInterface) (*app, error) {
	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName(cfg.App.Name),
		httpclient.WithHeaders(map[string]string{
			"Accept":     "application/json",
			"User-Agent": cfg.App.Name,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http client: %w", err)
	}

	overrides := delay.NewMapOverrides()
	policy := delay.New(cfg.Delays, overrides)

	container := di.NewContainer()

	// Register global services
	container.Register(ServiceConfig, cfg)
	container.Register(ServiceLogger, log)
	container.Register(ServiceDelayPolicy, policy)
	container.Register(ServiceDelayOverrides, overrides)
	container.Register(ServiceHTTPClient, client)

	return &app{
		config:    cfg,
		logger:    log,
		delay:     policy,
		overrides: overrides,
		container: container,
	}, nil
}

func (a *app) Config() *config.Config {
	return a.config
}

func (a *app) Logger() logger.LoggerInterface {
	return a.logger
}

func (a *app) Delay() *delay.Policy {
	return a.delay
}

// Overrides returns the live delay override store.
func (a *app) Overrides() *delay.MapOverrides {
	return a.overrides
}

func (a *app) Services() di.ServiceRegistry {
	return a.container
}

// Container returns the DI container for module registration.
func (a *app) Container() di.Container {
	return a.container
}

// RegisterModules registers all provided modules.
func (a *app) RegisterModules(modules ...Module) error {
	for _, m := range modules {
		if err := m.RegisterServices(a.container); err != nil {
			return err
		}
	}
	return nil
}

// StartModules starts all provided modules.
func (a *app) StartModules(ctx context.Context, modules ...Module) error {
	for _, m := range modules {
		if err := m.Startup(ctx, a); err != nil {
			return err
		}
	}
	return nil
}
