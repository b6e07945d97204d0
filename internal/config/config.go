package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/shareloop/service-share/internal/database"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port string
}

// KafkaConfig holds event broker settings.
type KafkaConfig struct {
	Brokers []string
}

// RedisConfig holds cache settings. An empty Addr disables the cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// GatewayConfig holds settings for the validation gateway binary.
type GatewayConfig struct {
	Port      string
	ServerURL string
	RateRPS   float64
	RateBurst int
}

// ServiceConfig holds all configuration for the share service.
type ServiceConfig struct {
	AppEnv  string
	Server  ServerConfig
	DB      database.PostgresConfig
	Kafka   KafkaConfig
	Redis   RedisConfig
	Gateway GatewayConfig
}

// Load reads configuration from SHARE_-prefixed environment variables with
// development defaults.
func Load() (*ServiceConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("SHARE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("SERVER_PORT", ":9090")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "shareloop")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("KAFKA_BROKERS", "localhost:9092")

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("GATEWAY_PORT", ":8080")
	v.SetDefault("GATEWAY_SERVER_URL", "http://localhost:9090")
	v.SetDefault("GATEWAY_RATE_RPS", 10.0)
	v.SetDefault("GATEWAY_RATE_BURST", 20)

	return &ServiceConfig{
		AppEnv: v.GetString("APP_ENV"),
		Server: ServerConfig{
			Port: v.GetString("SERVER_PORT"),
		},
		DB: database.PostgresConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(v.GetString("KAFKA_BROKERS")),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Gateway: GatewayConfig{
			Port:      v.GetString("GATEWAY_PORT"),
			ServerURL: strings.TrimRight(v.GetString("GATEWAY_SERVER_URL"), "/"),
			RateRPS:   v.GetFloat64("GATEWAY_RATE_RPS"),
			RateBurst: v.GetInt("GATEWAY_RATE_BURST"),
		},
	}, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
