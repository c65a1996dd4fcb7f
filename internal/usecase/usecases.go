// Package usecase wires the gateway's business logic together.
package usecase

import (
	"context"
	"time"

	"github.com/signage-toolkit/gateway/internal/entity"
	"github.com/signage-toolkit/gateway/internal/repository/bus"
	"github.com/signage-toolkit/gateway/internal/usecase/connections"
	"github.com/signage-toolkit/gateway/internal/usecase/identity"
	"github.com/signage-toolkit/gateway/internal/usecase/pairing"
	"github.com/signage-toolkit/gateway/internal/usecase/relay"
	"github.com/signage-toolkit/gateway/pkg/logger"
)

// SessionStore is the full shared-store surface the usecases need. Both the
// redis and the in-memory stores satisfy it.
type SessionStore interface {
	pairing.SessionStore
	GetControllerLocation(ctx context.Context, principalID string) (*entity.Location, error)
}

// Config collects the tunables for every usecase.
type Config struct {
	Connections connections.Config
	Pairing     pairing.Config
	SigningKey  string
	TokenTTL    time.Duration
}

// Usecases -.
type Usecases struct {
	Connections *connections.Manager
	Identity    *identity.UseCase
	Relay       *relay.Service
	Pairing     *pairing.UseCase
}

// NewUseCases builds the usecase graph on top of the shared stores.
func NewUseCases(
	processID string,
	registry pairing.CodeRegistry,
	store SessionStore,
	eventBus bus.Bus,
	revocations identity.RevocationStore,
	catalog pairing.ContentCatalog,
	log logger.Interface,
	cfg Config,
) *Usecases {
	manager := connections.NewManager(processID, cfg.Connections, log)
	tokens := identity.New(cfg.SigningKey, cfg.TokenTTL, revocations)
	relaySvc := relay.New(store, manager, eventBus, log)
	pairingUC := pairing.New(registry, store, manager, relaySvc, tokens, catalog, log, cfg.Pairing)

	return &Usecases{
		Connections: manager,
		Identity:    tokens,
		Relay:       relaySvc,
		Pairing:     pairingUC,
	}
}
