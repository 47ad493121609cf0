package config

import (
	"time"

	"github.com/spf13/viper"
)

type Redis struct {
	// Are pipeline events published to Redis
	Enabled bool

	Port     uint16
	Host     string
	User     string
	Password string
	DB       int

	// TLS configuration
	ClientKey  string
	ClientCert string
	CaCert     string

	// Connection configuration
	MinIdleConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	MaxOpenConns    int
	ConnMaxLifetime time.Duration

	// Publish backoff configuration, 0 is no limit
	MaxElapsedTime time.Duration
	MaxInterval    time.Duration

	// Num of workers that publish messages
	MaxWorkers int

	// Max num of requests in worker's queue
	MaxQueueSize int
}

func setRedisDefaults(v *viper.Viper) {
	v.SetDefault("Redis.Enabled", "false")
	v.SetDefault("Redis.Port", "6379")
	v.SetDefault("Redis.Host", "localhost")
	v.SetDefault("Redis.DB", "0")
	v.SetDefault("Redis.MinIdleConns", "1")
	v.SetDefault("Redis.MaxIdleConns", "5")
	v.SetDefault("Redis.ConnMaxIdleTime", "10m")
	v.SetDefault("Redis.MaxOpenConns", "15")
	v.SetDefault("Redis.ConnMaxLifetime", "1h")
	v.SetDefault("Redis.MaxElapsedTime", "10m")
	v.SetDefault("Redis.MaxInterval", "60s")
	v.SetDefault("Redis.MaxWorkers", "5")
	v.SetDefault("Redis.MaxQueueSize", "10")
}
