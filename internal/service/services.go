package service

import (
	"log/slog"

	postgres "github.com/kirinyoku/gigbook/internal/repository/postgres"
	redis "github.com/kirinyoku/gigbook/internal/repository/redis"
	"github.com/kirinyoku/gigbook/internal/service/booking"
	"github.com/kirinyoku/gigbook/internal/service/ports"
	"github.com/kirinyoku/gigbook/internal/uow"
)

type Services struct {
	Booking *booking.Service
}

type Config struct {
	Booking booking.Config
}

// NewServices wires the services over the stores. cache and limiter may be
// nil.
func NewServices(
	store *postgres.Store,
	cache *redis.Cache,
	limiter *redis.SlidingWindowLimiter,
	logger *slog.Logger,
	cfg Config,
) *Services {
	var (
		views  ports.ViewCache
		limits ports.RateLimiter
	)
	if cache != nil {
		views = cache
	}
	if limiter != nil {
		limits = limiter
	}

	return &Services{
		Booking: booking.New(uow.NewUoW(store), store.Repos(nil), views, limits, logger, cfg.Booking),
	}
}
