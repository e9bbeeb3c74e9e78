package shared

import (
	"context"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	AppEnv      string `env:"APP_ENV, default=prod"`
	HTTPAddr    string `env:"HTTP_ADDR, default=:8080"`
	MetricsAddr string `env:"METRICS_ADDR, default=:9100"`

	// the HBnB REST backend this gateway fronts
	APIBase string `env:"HBNB_API_BASE, default=http://localhost:5001/api/v1"`
	APIRPS  int    `env:"HBNB_API_RPS, default=5"`

	RedisAddr string `env:"REDIS_ADDR, default=localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD"`
	RedisDB   int    `env:"REDIS_DB, default=0"`

	CacheTTL   time.Duration `env:"CACHE_TTL, default=15m"`
	ConfirmTTL time.Duration `env:"DELETE_CONFIRM_TTL, default=5m"`
}

func Load(ctx context.Context) (Config, error) {
	var c Config
	if err := envconfig.Process(ctx, &c); err != nil {
		return Config{}, err
	}
	return c, nil
}
