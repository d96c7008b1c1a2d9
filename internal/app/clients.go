package app

import (
	"context"
	"fmt"

	"github.com/yungbote/edh-dashboard-backend/internal/clients/decksites"
	"github.com/yungbote/edh-dashboard-backend/internal/clients/redis"
	"github.com/yungbote/edh-dashboard-backend/internal/observability"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/kv"
	"github.com/yungbote/edh-dashboard-backend/internal/platform/logger"
)

type Clients struct {
	// Sessions is Redis when configured, otherwise process memory.
	Sessions  kv.Store
	Redis     *redis.Store
	DeckSites decksites.Client
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config, metrics *observability.Metrics) (Clients, error) {
	log.Info("Wiring clients...")

	var out Clients
	if cfg.Redis.Addr != "" {
		store, err := redis.NewStore(ctx, log, cfg.Redis)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis session store: %w", err)
		}
		out.Redis = store
		out.Sessions = store
	} else {
		log.Warn("REDIS_ADDR not set; sessions are kept in memory and lost on restart")
		out.Sessions = kv.NewMemory()
	}

	sitesCfg := cfg.DeckSites
	sitesCfg.Metrics = metrics
	out.DeckSites = decksites.New(log, sitesCfg)
	return out, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
