package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/digitalwallet/wallet-web/internal/core/ports"
	"github.com/digitalwallet/wallet-web/internal/infrastructure/db/memory"
	mongodb "github.com/digitalwallet/wallet-web/internal/infrastructure/db/mongo"
	redisdb "github.com/digitalwallet/wallet-web/internal/infrastructure/db/redis"
	"github.com/digitalwallet/wallet-web/internal/infrastructure/http/handlers"
	"github.com/digitalwallet/wallet-web/internal/infrastructure/tokenseal"
	"github.com/digitalwallet/wallet-web/internal/pkg/config"
)

// stores holds the persistence selected by SESSION_STORE.
type stores struct {
	tokens  ports.TokenStore
	pending ports.PendingTransferStore
	checks  map[string]handlers.Check
	close   func(context.Context) error
}

func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	s := &stores{
		checks: make(map[string]handlers.Check),
		close:  func(context.Context) error { return nil },
	}

	switch cfg.Session.Store {
	case config.StoreRedis:
		client, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		s.tokens = redisdb.NewTokenStore(client, cfg.Session.TokenTTL)
		s.pending = redisdb.NewPendingTransferStore(client)
		s.checks["redis"] = redisdb.HealthCheck(client)
		s.close = func(context.Context) error { return client.Close() }
		log.Info().Str("addr", cfg.Redis.Addr).Msg("session store: redis")

	case config.StoreMongo:
		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		repo := mongodb.NewTokenRepository(db, cfg.Session.TokenTTL)
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("ensure mongo indexes: %w", err)
		}
		s.tokens = repo
		// Pending transfers are short-lived; a process-local store is enough.
		s.pending = memory.NewPendingTransferStore()
		s.checks["mongo"] = mongodb.HealthCheck(db)
		s.close = client.Disconnect
		log.Info().Str("database", cfg.Mongo.Database).Msg("session store: mongo")

	default:
		s.tokens = memory.NewTokenStore()
		s.pending = memory.NewPendingTransferStore()
		log.Info().Msg("session store: memory")
	}

	if cfg.Session.SealSecret != "" {
		sealer, err := tokenseal.NewSealer(cfg.Session.SealSecret)
		if err != nil {
			_ = s.close(ctx)
			return nil, fmt.Errorf("token sealer: %w", err)
		}
		s.tokens = tokenseal.NewStore(s.tokens, sealer)
	}
	return s, nil
}
