package config

import (
	"time"

	"github.com/spf13/viper"
)

type Database struct {
	Port              uint16
	Host              string
	User              string
	Password          string
	Name              string
	SslMode           string
	PingTimeout       time.Duration
	ClientKey         string
	ClientCert        string
	CaCert            string
	MigrationUser     string
	MigrationPassword string

	// Connection pool
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
}

func setDatabaseDefaults(v *viper.Viper) {
	v.SetDefault("Database.Port", "5432")
	v.SetDefault("Database.Host", "127.0.0.1")
	v.SetDefault("Database.User", "postgres")
	v.SetDefault("Database.Password", "postgres")
	v.SetDefault("Database.Name", "publisher")
	v.SetDefault("Database.SslMode", "disable")
	v.SetDefault("Database.PingTimeout", "15s")
	v.SetDefault("Database.MigrationUser", "postgres")
	v.SetDefault("Database.MigrationPassword", "postgres")
	v.SetDefault("Database.MaxOpenConns", "5")
	v.SetDefault("Database.MaxIdleConns", "2")
	v.SetDefault("Database.ConnMaxIdleTime", "10m")
	v.SetDefault("Database.ConnMaxLifetime", "1h")
}
