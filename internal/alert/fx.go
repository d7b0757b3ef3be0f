package alert

import (
	"strings"

	"github.com/campuskit/utilitrack/internal/alert/evaluator"
	"github.com/campuskit/utilitrack/internal/alert/repository"
	"github.com/campuskit/utilitrack/internal/alert/service"
	"github.com/campuskit/utilitrack/internal/config"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// newRedisClient connects only when redis is enabled; everything that
// depends on the client tolerates a nil value and falls back to in-process
// behavior.
func newRedisClient(cfg config.Config, log *zap.Logger) *redis.Client {
	if !cfg.Redis.Enabled {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: strings.TrimSpace(cfg.Redis.Password),
		DB:       cfg.Redis.DB,
	})
	log.Info("redis client configured", zap.String("addr", cfg.Redis.Addr))
	return client
}

func newStreakStore(client *redis.Client) evaluator.StreakStore {
	if client == nil {
		return evaluator.NewMemoryStreakStore()
	}
	return evaluator.NewRedisStreakStore(client)
}

// Module wires the alert sink, the lifecycle service, and the evaluator.
var Module = fx.Module("alert",
	fx.Provide(
		repository.New,
		service.NewService,
		newRedisClient,
		newStreakStore,
		evaluator.NewLocker,
		evaluator.FromAppConfig,
		evaluator.New,
	),
)
