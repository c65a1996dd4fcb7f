// Package app configures and runs application.
package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	ginpprof "github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"github.com/signage-toolkit/gateway/config"
	"github.com/signage-toolkit/gateway/internal/controller/httpapi"
	v1 "github.com/signage-toolkit/gateway/internal/controller/httpapi/v1"
	wsv1 "github.com/signage-toolkit/gateway/internal/controller/ws/v1"
	"github.com/signage-toolkit/gateway/internal/repository/bus"
	"github.com/signage-toolkit/gateway/internal/repository/codes"
	"github.com/signage-toolkit/gateway/internal/repository/kvstore"
	"github.com/signage-toolkit/gateway/internal/repository/revocations"
	"github.com/signage-toolkit/gateway/internal/repository/sessions"
	"github.com/signage-toolkit/gateway/internal/usecase"
	"github.com/signage-toolkit/gateway/internal/usecase/connections"
	"github.com/signage-toolkit/gateway/internal/usecase/identity"
	"github.com/signage-toolkit/gateway/internal/usecase/pairing"
	"github.com/signage-toolkit/gateway/pkg/httpserver"
	"github.com/signage-toolkit/gateway/pkg/logger"
	"github.com/signage-toolkit/gateway/pkg/ratelimiter"
)

var Version = "DEVELOPMENT"

const _startupTimeout = 10 * time.Second

// stores groups the shared-state backends. Redis when configured, in-memory
// otherwise.
type stores struct {
	registry    pairing.CodeRegistry
	sessions    usecase.SessionStore
	bus         bus.Bus
	revocations identity.RevocationStore
	limiter     ratelimiter.Store
}

// Run creates objects via constructors.
func Run(cfg *config.Config) {
	log := logger.New(cfg.Level)
	cfg.Version = Version

	if cfg.ProcessID == "" {
		cfg.ProcessID = uuid.NewString()
	}

	log.Info("app - Run - version: " + cfg.Version + " process: " + cfg.ProcessID)
	// route standard and Gin logs through our JSON logger
	logger.SetupStdLog(log)
	logger.SetupGin(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Repository
	st, client, err := setupStores(ctx, cfg, log)
	if err != nil {
		log.Fatal(fmt.Errorf("app - Run - setupStores: %w", err))
	}

	if client != nil {
		defer client.Close()
	}

	// Use case
	usecases := usecase.NewUseCases(
		cfg.ProcessID,
		st.registry,
		st.sessions,
		st.bus,
		st.revocations,
		pairing.PassthroughCatalog{},
		log,
		usecase.Config{
			Connections: connections.Config{
				HeartbeatInterval: cfg.Connections.HeartbeatInterval,
				MissedThreshold:   cfg.Connections.MissedThreshold,
				MaxPerAddr:        cfg.Connections.MaxPerAddr,
			},
			Pairing: pairing.Config{
				CodeLength:   cfg.Pairing.CodeLength,
				GracePeriod:  cfg.Pairing.GracePeriod,
				StoreTimeout: cfg.Pairing.StoreTimeout,
			},
			SigningKey: cfg.Tokens.SigningKey,
			TokenTTL:   cfg.Tokens.TTL,
		},
	)

	// Cross-process frames land on this process's bus channel and are pushed
	// out through the local relay.
	if err := st.bus.Subscribe(ctx, cfg.ProcessID, usecases.Relay.HandleInbound); err != nil {
		log.Fatal(fmt.Errorf("app - Run - bus.Subscribe: %w", err))
	}

	go usecases.Pairing.ConsumeDisconnects(ctx, usecases.Connections.Disconnects())

	auth, err := v1.NewAuth(ctx, v1.AuthConfig{
		Disabled:     cfg.Auth.Disabled,
		JWTSecret:    cfg.Auth.JWTSecret,
		OIDCIssuer:   cfg.Auth.Issuer,
		OIDCClientID: cfg.Auth.ClientID,
	})
	if err != nil {
		log.Fatal(fmt.Errorf("app - Run - v1.NewAuth: %w", err))
	}

	limiter, err := ratelimiter.New(st.limiter, ratelimiter.Config{
		Limit:  cfg.Pairing.ClaimLimit,
		Window: cfg.Pairing.ClaimWindow,
	})
	if err != nil {
		log.Fatal(fmt.Errorf("app - Run - ratelimiter.New: %w", err))
	}

	handler := setupHTTPHandler(cfg, log, usecases, auth, limiter)

	httpServer := httpserver.New(
		handler,
		httpserver.Port(cfg.Host, cfg.Port),
		httpserver.TLS(cfg.TLS.Enabled, cfg.TLS.CertFile, cfg.TLS.KeyFile),
		httpserver.Logger(log),
	)

	waitForShutdown(log, httpServer)
	shutdownServers(log, httpServer, usecases.Connections, st.bus)
}

func setupStores(ctx context.Context, cfg *config.Config, log logger.Interface) (stores, *redis.Client, error) {
	if cfg.Redis.Addr == "" {
		log.Warn("app - setupStores - no redis configured, using in-memory stores (single instance only)")

		return stores{
			registry: codes.NewMemoryRegistry(codes.Config{
				Length: cfg.Pairing.CodeLength,
				TTL:    cfg.Pairing.CodeTTL,
			}),
			sessions:    sessions.NewMemoryStore(),
			bus:         bus.NewMemoryBus(),
			revocations: revocations.NewMemoryStore(),
			limiter:     ratelimiter.NewMemoryStore(time.Minute),
		}, nil, nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, _startupTimeout)
	defer cancel()

	client, err := kvstore.New(pingCtx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return stores{}, nil, err
	}

	prefix := cfg.Redis.KeyPrefix

	return stores{
		registry: codes.NewRedisRegistry(client, prefix, codes.Config{
			Length: cfg.Pairing.CodeLength,
			TTL:    cfg.Pairing.CodeTTL,
		}),
		sessions:    sessions.NewRedisStore(client, prefix),
		bus:         bus.NewRedisBus(client, prefix, log),
		revocations: revocations.NewRedisStore(client, prefix),
		limiter:     ratelimiter.NewRedisStore(client, prefix),
	}, client, nil
}

func setupHTTPHandler(cfg *config.Config, log logger.Interface, usecases *usecase.Usecases, auth *v1.Auth, limiter *ratelimiter.Limiter) *gin.Engine {
	if os.Getenv("GIN_MODE") != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	handler := gin.New()

	defaultConfig := cors.DefaultConfig()
	defaultConfig.AllowOrigins = cfg.AllowedOrigins
	defaultConfig.AllowHeaders = cfg.AllowedHeaders

	handler.Use(cors.New(defaultConfig))
	httpapi.NewRouter(handler, log, *usecases, auth, cfg)

	// Optionally enable pprof endpoints (e.g., for staging) via env ENABLE_PPROF=true
	if os.Getenv("ENABLE_PPROF") == "true" {
		ginpprof.Register(handler, "debug/pprof")
		log.Info("pprof enabled at /debug/pprof/")
	}

	upgrader := &websocket.Upgrader{
		ReadBufferSize:    64 * 1024,
		WriteBufferSize:   64 * 1024,
		CheckOrigin:       func(_ *http.Request) bool { return true },
		EnableCompression: cfg.WSCompression,
	}

	wsv1.RegisterRoutes(handler, log, usecases.Pairing, usecases.Connections, auth, limiter, upgrader)

	return handler
}

func waitForShutdown(log logger.Interface, httpServer *httpserver.Server) {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		log.Info("app - Run - signal: " + s.String())
	case err := <-httpServer.Notify():
		log.Error(fmt.Errorf("app - Run - httpServer.Notify: %w", err))
	}
}

func shutdownServers(log logger.Interface, httpServer *httpserver.Server, manager *connections.Manager, eventBus bus.Bus) {
	if err := httpServer.Shutdown(); err != nil {
		log.Error(fmt.Errorf("app - Run - httpServer.Shutdown: %w", err))
	}

	// Closing the sockets emits disconnect events, which detach sessions in
	// the shared store before the process exits.
	manager.Shutdown()

	if err := eventBus.Close(); err != nil {
		log.Error(fmt.Errorf("app - Run - bus.Close: %w", err))
	}
}
