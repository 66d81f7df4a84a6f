package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Payment configuration.
	PaymentProvider          string `mapstructure:"PAYMENT_PROVIDER"`
	PaymentSessionTTLSeconds int    `mapstructure:"PAYMENT_SESSION_TTL_SECONDS"`
	PaymentWebhookSecret     string `mapstructure:"PAYMENT_WEBHOOK_SECRET"`
	StripeKey                string `mapstructure:"STRIPE_KEY"`

	// Catalog cache TTL (rates and holiday calendar).
	CatalogCacheTTLSeconds int `mapstructure:"CATALOG_CACHE_TTL_SECONDS"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_QUEUE_DB", 3)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "stayhub")
	viper.SetDefault("PAYMENT_PROVIDER", "transfer")
	viper.SetDefault("PAYMENT_SESSION_TTL_SECONDS", 600)
	viper.SetDefault("CATALOG_CACHE_TTL_SECONDS", 60)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// PaymentSessionTTL returns the configured session time-to-live.
func PaymentSessionTTL() time.Duration {
	return time.Duration(AppConfig.PaymentSessionTTLSeconds) * time.Second
}

// CatalogCacheTTL returns how long catalog rates may be served from cache.
func CatalogCacheTTL() time.Duration {
	return time.Duration(AppConfig.CatalogCacheTTLSeconds) * time.Second
}
