package common

import (
	"context"
	"os"

	"github.com/NilFoundation/tokenctl/common/logging"
	"github.com/NilFoundation/tokenctl/internal/identity"
	"github.com/NilFoundation/tokenctl/services/invoker"
)

// Session is what a token command works with: the identities and an invoker bound to the endpoint.
type Session struct {
	Identities *identity.Registry
	Invoker    invoker.Invoker
}

func NewRegistryFromEnv(cfg *Config, logger logging.Logger) (*identity.Registry, error) {
	registry, err := NewRegistry(cfg, os.Environ())
	if err != nil {
		return nil, err
	}
	if registry.Len() == 0 {
		logger.Warn().Msgf("no identities configured; add them to the [%s] section or set %s<NAME>",
			IdentitiesSection, IdentityEnvPrefix)
	}
	return registry, nil
}

func NewSession(ctx context.Context, cfg *Config, logger logging.Logger) (*Session, error) {
	if err := ValidateConfig(cfg, logger); err != nil {
		return nil, err
	}

	registry, err := NewRegistryFromEnv(cfg, logger)
	if err != nil {
		return nil, err
	}

	inv, err := invoker.NewInvoker(ctx, cfg.Token, registry, logger)
	if err != nil {
		return nil, err
	}
	return &Session{Identities: registry, Invoker: inv}, nil
}

// Account resolves an identity name to its address; anything else is returned unchanged.
func (s *Session) Account(nameOrAddress string) string {
	if id, err := s.Identities.Get(nameOrAddress); err == nil {
		return id.Address.Hex()
	}
	return nameOrAddress
}

func (s *Session) Close() {
	s.Invoker.Close()
}
