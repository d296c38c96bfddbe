package redis

import "time"

// Config describes the Redis connection settings. Redis is optional for
// single-instance deployments; the service falls back to in-memory stores
// when no URL is configured.
type Config struct {
	ConnectionURL  string        `env:"REDIS_URL"`
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
}
