package config

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	JWTSecret   string `mapstructure:"JWT_SECRET"`
	Port        int    `mapstructure:"PORT"`

	// Sync tuning. Defaults are fine for production; tests shrink them.
	ResyncInterval    time.Duration `mapstructure:"RESYNC_INTERVAL"`
	PendingTimeout    time.Duration `mapstructure:"PENDING_TIMEOUT"`
	HeartbeatInterval time.Duration `mapstructure:"HEARTBEAT_INTERVAL"`
	HostStaleAfter    time.Duration `mapstructure:"HOST_STALE_AFTER"`
}

var AppConfig *Config

// LoadConfig loads the configuration from a .env file and environment variables.
func LoadConfig() {
	viper.AddConfigPath(".")
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	viper.AutomaticEnv()

	viper.SetDefault("PORT", 8080)
	viper.SetDefault("RESYNC_INTERVAL", "15s")
	viper.SetDefault("PENDING_TIMEOUT", "5s")
	viper.SetDefault("HEARTBEAT_INTERVAL", "30s")
	viper.SetDefault("HOST_STALE_AFTER", "2m")

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Msg(".env file not found, loading from environment variables")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatal().Err(err).Str("module", "config").Msg("unable to decode config")
	}
}
